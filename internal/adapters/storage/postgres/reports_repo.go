package postgres

import (
	"context"
	"database/sql"

	"pet-tag-registry/internal/domain/reports"
)

type ReportsRepo struct {
	db *sql.DB
}

func NewReportsRepo(db *sql.DB) *ReportsRepo {
	return &ReportsRepo{db: db}
}

func (r *ReportsRepo) Create(ctx context.Context, rep reports.Report) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO lost_reports (
			id, pet_id, type, location, actor_id, occurred_at, recorded_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		rep.ID,
		rep.PetID,
		string(rep.Type),
		rep.Location,
		rep.ActorID,
		rep.OccurredAt,
		rep.RecordedAt,
	)
	return err
}

func (r *ReportsRepo) ListByPet(ctx context.Context, petID string) ([]reports.Report, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pet_id, type, location, actor_id, occurred_at, recorded_at
		FROM lost_reports
		WHERE pet_id = $1
		ORDER BY occurred_at DESC
	`, petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]reports.Report, 0)
	for rows.Next() {
		var (
			rep reports.Report
			typ string
		)
		if err := rows.Scan(
			&rep.ID,
			&rep.PetID,
			&typ,
			&rep.Location,
			&rep.ActorID,
			&rep.OccurredAt,
			&rep.RecordedAt,
		); err != nil {
			return nil, err
		}
		rep.Type = reports.ReportType(typ)
		out = append(out, rep)
	}
	return out, rows.Err()
}
