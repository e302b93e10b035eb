package tags

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound la devuelven los repos cuando la chapita no existe.
	// Cualquier otro error es una falla del storage, no un 404.
	ErrNotFound = errors.New("tag does not exist")

	// ErrAlreadyActivated la devuelve Activate cuando la chapita ya estaba
	// activada; el repo devuelve igual el estado actual para que el
	// coordinador decida si es idempotencia o conflicto.
	ErrAlreadyActivated = errors.New("tag already activated")
)

type Repository interface {
	Create(ctx context.Context, t Tag) error
	GetByID(ctx context.Context, id string) (Tag, error)

	// Activate hace el compare-and-set atómico false→true.
	// Si la chapita ya estaba activada devuelve su estado actual junto
	// con ErrAlreadyActivated.
	Activate(ctx context.Context, tagID, petID string, at time.Time) (Tag, error)
}
