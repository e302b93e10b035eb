package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"pet-tag-registry/internal/domain/tags"
)

type TagsRepo struct {
	db *sql.DB
}

func NewTagsRepo(db *sql.DB) *TagsRepo {
	return &TagsRepo{db: db}
}

func (r *TagsRepo) Create(ctx context.Context, t tags.Tag) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tags (
			id, batch_number, qr_url,
			is_activated, pet_id, activated_at,
			created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		t.ID,
		t.BatchNumber,
		t.QRURL,
		t.Activated,
		toNullString(t.PetID),
		toNullTime(t.ActivatedAt),
		t.CreatedAt,
	)
	return err
}

func (r *TagsRepo) GetByID(ctx context.Context, id string) (tags.Tag, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return tags.Tag{}, tags.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, batch_number, qr_url, is_activated, pet_id, activated_at, created_at
		FROM tags WHERE id = $1
	`, id)

	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return tags.Tag{}, tags.ErrNotFound
	}
	return t, err
}

// Activate hace el false→true con un UPDATE condicional: si no afecta
// filas es porque la chapita no existe o ya estaba activada; en el
// segundo caso se devuelve el estado actual con ErrAlreadyActivated.
func (r *TagsRepo) Activate(ctx context.Context, tagID, petID string, at time.Time) (tags.Tag, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tags
		SET is_activated = true, pet_id = $2, activated_at = $3
		WHERE id = $1 AND is_activated = false
	`, tagID, petID, at)
	if err != nil {
		return tags.Tag{}, err
	}

	n, _ := res.RowsAffected()
	if n == 1 {
		return r.GetByID(ctx, tagID)
	}

	current, err := r.GetByID(ctx, tagID)
	if err != nil {
		return tags.Tag{}, err
	}
	return current, tags.ErrAlreadyActivated
}

func scanTag(row rowScanner) (tags.Tag, error) {
	var (
		t           tags.Tag
		petID       sql.NullString
		activatedAt sql.NullTime
	)

	err := row.Scan(
		&t.ID,
		&t.BatchNumber,
		&t.QRURL,
		&t.Activated,
		&petID,
		&activatedAt,
		&t.CreatedAt,
	)
	if err != nil {
		return tags.Tag{}, err
	}

	t.PetID = petID.String
	t.ActivatedAt = fromNullTime(activatedAt)
	return t, nil
}
