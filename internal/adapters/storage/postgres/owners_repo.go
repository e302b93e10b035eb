package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"pet-tag-registry/internal/domain/owners"
)

type OwnersRepo struct {
	db *sql.DB
}

func NewOwnersRepo(db *sql.DB) *OwnersRepo {
	return &OwnersRepo{db: db}
}

func (r *OwnersRepo) Upsert(ctx context.Context, o owners.Owner) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO owner_contacts (user_id, name, email, phone, address, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			address = EXCLUDED.address,
			updated_at = EXCLUDED.updated_at
	`,
		o.UserID,
		o.Name,
		o.Email,
		o.Phone,
		o.Address,
		o.UpdatedAt,
	)
	return err
}

func (r *OwnersRepo) GetByID(ctx context.Context, userID string) (owners.Owner, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return owners.Owner{}, ErrNotFound
	}

	var o owners.Owner
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, name, email, phone, address, updated_at
		FROM owner_contacts WHERE user_id = $1
	`, userID).Scan(
		&o.UserID,
		&o.Name,
		&o.Email,
		&o.Phone,
		&o.Address,
		&o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return owners.Owner{}, ErrNotFound
	}
	if err != nil {
		return owners.Owner{}, err
	}
	return o, nil
}
