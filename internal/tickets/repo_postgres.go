package tickets

import (
	"context"
	"database/sql"
	"errors"
)

const ticketColumns = `id, title, description, priority, status, created_by, assigned_to, created_at, updated_at, resolved_at`

// PostgresRepo persists support tickets in Postgres.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func scanTicket(row interface{ Scan(...any) error }) (Ticket, error) {
	var t Ticket
	var assigned sql.NullString
	var resolved sql.NullTime
	if err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Priority,
		&t.Status,
		&t.CreatedBy,
		&assigned,
		&t.CreatedAt,
		&t.UpdatedAt,
		&resolved,
	); err != nil {
		return Ticket{}, err
	}
	t.AssignedTo = assigned.String
	if resolved.Valid {
		at := resolved.Time
		t.ResolvedAt = &at
	}
	return t, nil
}

func (r *PostgresRepo) Insert(ctx context.Context, t Ticket) error {
	const q = `
INSERT INTO tickets (` + ticketColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`
	var resolved sql.NullTime
	if t.ResolvedAt != nil {
		resolved = sql.NullTime{Time: *t.ResolvedAt, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, q,
		t.ID, t.Title, t.Description, t.Priority, t.Status,
		t.CreatedBy, t.AssignedTo, t.CreatedAt, t.UpdatedAt, resolved,
	)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Ticket, error) {
	const q = `
SELECT ` + ticketColumns + `
FROM tickets
WHERE id = $1
`
	t, err := scanTicket(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Ticket{}, ErrNotFound
	}
	return t, err
}

func (r *PostgresRepo) List(ctx context.Context, visibleTo string) ([]Ticket, error) {
	const q = `
SELECT ` + ticketColumns + `
FROM tickets
WHERE ($1 = '' OR created_by = $1 OR assigned_to = $1)
ORDER BY created_at
`
	rows, err := r.db.QueryContext(ctx, q, visibleTo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, t Ticket) error {
	const q = `
UPDATE tickets
SET title = $2, description = $3, priority = $4, status = $5,
    assigned_to = $6, updated_at = $7, resolved_at = $8
WHERE id = $1
`
	var resolved sql.NullTime
	if t.ResolvedAt != nil {
		resolved = sql.NullTime{Time: *t.ResolvedAt, Valid: true}
	}
	res, err := r.db.ExecContext(ctx, q,
		t.ID, t.Title, t.Description, t.Priority, t.Status,
		t.AssignedTo, t.UpdatedAt, resolved,
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
	const q = `DELETE FROM tickets WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
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
