package owners

import "context"

type Repository interface {
	Upsert(ctx context.Context, o Owner) error
	GetByID(ctx context.Context, userID string) (Owner, error)
}
