package users

import (
	"context"
	"database/sql"
	"errors"
)

const userColumns = `id, email, first_name, last_name, role, is_active, password_hash, created_at, updated_at`

// PostgresRepo persists user accounts in Postgres.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.Role,
		&u.IsActive,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepo) Insert(ctx context.Context, u User) error {
	const q = `
INSERT INTO users (` + userColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`
	_, err := r.db.ExecContext(ctx, q,
		u.ID, u.Email, u.FirstName, u.LastName, u.Role,
		u.IsActive, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE id = $1
`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE lower(email) = lower($1)
`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, email))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *PostgresRepo) List(ctx context.Context) ([]User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
ORDER BY created_at
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, u User) error {
	const q = `
UPDATE users
SET email = $2, first_name = $3, last_name = $4, role = $5,
    is_active = $6, password_hash = $7, updated_at = $8
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q,
		u.ID, u.Email, u.FirstName, u.LastName, u.Role,
		u.IsActive, u.PasswordHash, u.UpdatedAt,
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
