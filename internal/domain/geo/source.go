package geo

import (
	"context"
	"fmt"
)

// Source es el puerto hacia el dataset geográfico remoto.
type Source interface {
	// Provinces devuelve todas las provincias, ordenadas por nombre.
	Provinces(ctx context.Context) ([]Province, error)

	// Localities devuelve hasta MaxLocalities localidades de una provincia,
	// ordenadas por nombre, en el orden que entrega el server.
	Localities(ctx context.Context, provinceName string) ([]Locality, error)
}

// FetchError marca una falla de lectura del dataset (red o non-2xx).
// Es reintentable: el caller decide si re-emite el request; acá nunca
// hay retry automático.
type FetchError struct {
	Resource string // "provincias" | "localidades"
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("georef fetch %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
