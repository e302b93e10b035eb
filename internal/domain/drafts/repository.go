package drafts

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("draft not found")
)

type Repository interface {
	Save(ctx context.Context, d Draft) error
	Load(ctx context.Context, userID, formID string) (Draft, error)
	Clear(ctx context.Context, userID, formID string) error

	// Touched indica si la sesión ya tocó este formulario (guardó al
	// menos una vez). Clear no lo resetea: la marca es de la sesión,
	// no del borrador.
	Touched(ctx context.Context, userID, formID string) (bool, error)
}
