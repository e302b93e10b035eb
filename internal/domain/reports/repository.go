package reports

import "context"

type Repository interface {
	Create(ctx context.Context, rep Report) error
	ListByPet(ctx context.Context, petID string) ([]Report, error)
}
