package meetings

import (
	"context"
	"database/sql"
	"errors"
)

// NOTE: This repository assumes a meetings table with start_time/end_time
// stored as RFC 3339 text, which compares correctly with < and >.

const meetingColumns = `id, title, start_time, end_time, notes, status, lead_id, lead_name, meeting_url, organizer_id, created_at, updated_at`

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func scanMeeting(row interface{ Scan(...any) error }) (Meeting, error) {
	var m Meeting
	var notes, leadID, leadName, meetingURL sql.NullString
	if err := row.Scan(
		&m.ID,
		&m.Title,
		&m.StartTime,
		&m.EndTime,
		&notes,
		&m.Status,
		&leadID,
		&leadName,
		&meetingURL,
		&m.OrganizerID,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return Meeting{}, err
	}
	m.Notes = notes.String
	m.LeadID = leadID.String
	m.LeadName = leadName.String
	m.MeetingURL = meetingURL.String
	return m, nil
}

func (r *PostgresRepo) Insert(ctx context.Context, m Meeting) error {
	const q = `
INSERT INTO meetings (` + meetingColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`
	_, err := r.db.ExecContext(ctx, q,
		m.ID, m.Title, m.StartTime, m.EndTime, m.Notes, m.Status,
		m.LeadID, m.LeadName, m.MeetingURL, m.OrganizerID, m.CreatedAt, m.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Meeting, error) {
	const q = `
SELECT ` + meetingColumns + `
FROM meetings
WHERE id = $1
`
	m, err := scanMeeting(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Meeting{}, ErrNotFound
	}
	return m, err
}

func (r *PostgresRepo) List(ctx context.Context, visibleTo string) ([]Meeting, error) {
	const q = `
SELECT ` + meetingColumns + `
FROM meetings
WHERE ($1 = '' OR organizer_id = $1)
ORDER BY start_time
`
	rows, err := r.db.QueryContext(ctx, q, visibleTo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, m Meeting) error {
	const q = `
UPDATE meetings
SET title = $2, start_time = $3, end_time = $4, notes = $5, status = $6,
    lead_id = $7, lead_name = $8, meeting_url = $9, updated_at = $10
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q,
		m.ID, m.Title, m.StartTime, m.EndTime, m.Notes, m.Status,
		m.LeadID, m.LeadName, m.MeetingURL, m.UpdatedAt,
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
	const q = `DELETE FROM meetings WHERE id = $1`
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

func (r *PostgresRepo) FindConflict(ctx context.Context, organizerID, startTime, endTime, excludeID string) (Meeting, bool, error) {
	const q = `
SELECT ` + meetingColumns + `
FROM meetings
WHERE organizer_id = $1
  AND id <> $4
  AND status <> 'cancelled'
  AND start_time < $3
  AND end_time > $2
LIMIT 1
`
	m, err := scanMeeting(r.db.QueryRowContext(ctx, q, organizerID, startTime, endTime, excludeID))
	if errors.Is(err, sql.ErrNoRows) {
		return Meeting{}, false, nil
	}
	if err != nil {
		return Meeting{}, false, err
	}
	return m, true, nil
}
