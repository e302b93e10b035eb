package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"pet-tag-registry/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

const petColumns = `
	id, owner_id,
	name, breed, gender, birth_date,
	description, temperament, medical_information,
	photos, tag_id,
	is_lost, lost_location, lost_at,
	created_at, updated_at
`

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	photos, err := json.Marshal(p.Photos)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO pets (`+petColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`,
		p.ID,
		p.OwnerID,
		p.Name,
		p.Breed,
		string(p.Gender),
		toNullTime(p.BirthDate),
		p.Description,
		p.Temperament,
		p.MedicalInformation,
		photos,
		toNullString(p.TagID),
		p.IsLost,
		toNullString(p.LostLocation),
		toNullTime(p.LostAt),
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	photos, err := json.Marshal(p.Photos)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE pets
		SET
			name = $2,
			breed = $3,
			gender = $4,
			birth_date = $5,
			description = $6,
			temperament = $7,
			medical_information = $8,
			photos = $9,
			tag_id = $10,
			is_lost = $11,
			lost_location = $12,
			lost_at = $13,
			updated_at = $14
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		p.Breed,
		string(p.Gender),
		toNullTime(p.BirthDate),
		p.Description,
		p.Temperament,
		p.MedicalInformation,
		photos,
		toNullString(p.TagID),
		p.IsLost,
		toNullString(p.LostLocation),
		toNullTime(p.LostAt),
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+petColumns+` FROM pets WHERE id = $1
	`, id)

	p, err := scanPet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return pets.Pet{}, ErrNotFound
	}
	return p, err
}

func (r *PetsRepo) ListByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+petColumns+` FROM pets
		WHERE owner_id = $1
		ORDER BY created_at ASC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPets(rows)
}

func (r *PetsRepo) ListLost(ctx context.Context) ([]pets.Pet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+petColumns+` FROM pets
		WHERE is_lost = true
		ORDER BY lost_at DESC NULLS LAST
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPets(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPet(row rowScanner) (pets.Pet, error) {
	var (
		p            pets.Pet
		gender       string
		birthDate    sql.NullTime
		photos       []byte
		tagID        sql.NullString
		lostLocation sql.NullString
		lostAt       sql.NullTime
	)

	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Breed,
		&gender,
		&birthDate,
		&p.Description,
		&p.Temperament,
		&p.MedicalInformation,
		&photos,
		&tagID,
		&p.IsLost,
		&lostLocation,
		&lostAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return pets.Pet{}, err
	}

	p.Gender = pets.Gender(gender)
	p.BirthDate = fromNullTime(birthDate)
	p.TagID = tagID.String
	p.LostLocation = lostLocation.String
	p.LostAt = fromNullTime(lostAt)

	p.Photos = []string{}
	if len(photos) > 0 {
		if err := json.Unmarshal(photos, &p.Photos); err != nil {
			return pets.Pet{}, err
		}
	}

	return p, nil
}

func collectPets(rows *sql.Rows) ([]pets.Pet, error) {
	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func toNullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
