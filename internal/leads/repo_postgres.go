package leads

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepo persists leads in Postgres via database/sql (pgx stdlib driver).
//
// NOTE: This repository assumes a `leads` table with columns matching the
// Lead db struct tags, plus indexes on email and phone for duplicate lookups.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const leadColumns = `
id, first_name, last_name, phone, email, source, notes, status,
assigned_to, campaign_id, created_by, created_at, updated_at
`

func scanLead(row *sql.Row) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.FirstName, &l.LastName, &l.Phone, &l.Email, &l.Source,
		&l.Notes, &l.Status, &l.AssignedTo, &l.CampaignID, &l.CreatedBy,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return l, err
}

func (r *PostgresRepo) Insert(ctx context.Context, l Lead) error {
	const q = `
INSERT INTO leads (` + leadColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
`
	_, err := r.db.ExecContext(ctx, q,
		l.ID, l.FirstName, l.LastName, l.Phone, l.Email, l.Source, l.Notes,
		l.Status, l.AssignedTo, l.CampaignID, l.CreatedBy, l.CreatedAt, l.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Lead, error) {
	const q = `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	return scanLead(r.db.QueryRowContext(ctx, q, id))
}

func (r *PostgresRepo) List(ctx context.Context, f ListFilter) ([]Lead, error) {
	// Filters are optional; empty strings disable each predicate.
	const q = `
SELECT ` + leadColumns + `
FROM leads
WHERE ($1 = '' OR created_by = $1 OR assigned_to = $1)
  AND ($2 = '' OR campaign_id = $2)
  AND ($3 = '' OR status = $3)
ORDER BY created_at DESC
`
	rows, err := r.db.QueryContext(ctx, q, f.VisibleTo, f.CampaignID, string(f.Status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Lead
	for rows.Next() {
		var l Lead
		if err := rows.Scan(
			&l.ID, &l.FirstName, &l.LastName, &l.Phone, &l.Email, &l.Source,
			&l.Notes, &l.Status, &l.AssignedTo, &l.CampaignID, &l.CreatedBy,
			&l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, l Lead) error {
	const q = `
UPDATE leads
SET first_name = $2, last_name = $3, phone = $4, email = $5, source = $6,
    notes = $7, status = $8, assigned_to = $9, campaign_id = $10, updated_at = $11
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q,
		l.ID, l.FirstName, l.LastName, l.Phone, l.Email, l.Source, l.Notes,
		l.Status, l.AssignedTo, l.CampaignID, l.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) FindDuplicate(ctx context.Context, email, phone string) (Lead, bool, error) {
	const q = `
SELECT ` + leadColumns + `
FROM leads
WHERE ($1 <> '' AND email = $1) OR ($2 <> '' AND phone = $2)
LIMIT 1
`
	l, err := scanLead(r.db.QueryRowContext(ctx, q, email, phone))
	if errors.Is(err, ErrNotFound) {
		return Lead{}, false, nil
	}
	if err != nil {
		return Lead{}, false, err
	}
	return l, true, nil
}
