package campaigns

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"crm-platform/pkg/utils"
)

// NOTE: This repository assumes the following tables exist:
// - campaigns
// - campaign_leads
// - call_logs (immutable append-only)

const campaignColumns = `id, name, description, created_by, is_active, max_attempts, total_leads, completed_leads, created_at, updated_at`

const campaignLeadColumns = `id, campaign_id, lead_id, assigned_agent, status, attempts_made, max_attempts, last_call_outcome, last_attempt_at, next_attempt_at, created_at, updated_at`

// PostgresRepo persists campaigns and call activity in Postgres.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func scanCampaign(row interface{ Scan(...any) error }) (Campaign, error) {
	var c Campaign
	var desc sql.NullString
	if err := row.Scan(
		&c.ID,
		&c.Name,
		&desc,
		&c.CreatedBy,
		&c.IsActive,
		&c.MaxAttempts,
		&c.TotalLeads,
		&c.CompletedLeads,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return Campaign{}, err
	}
	c.Description = desc.String
	return c, nil
}

func scanCampaignLead(row interface{ Scan(...any) error }) (CampaignLead, error) {
	var cl CampaignLead
	var outcome sql.NullString
	var lastAt, nextAt sql.NullTime
	if err := row.Scan(
		&cl.ID,
		&cl.CampaignID,
		&cl.LeadID,
		&cl.AssignedAgent,
		&cl.Status,
		&cl.AttemptsMade,
		&cl.MaxAttempts,
		&outcome,
		&lastAt,
		&nextAt,
		&cl.CreatedAt,
		&cl.UpdatedAt,
	); err != nil {
		return CampaignLead{}, err
	}
	cl.LastCallOutcome = CallOutcome(outcome.String)
	if lastAt.Valid {
		t := lastAt.Time
		cl.LastAttemptAt = &t
	}
	if nextAt.Valid {
		t := nextAt.Time
		cl.NextAttemptAt = &t
	}
	return cl, nil
}

func (r *PostgresRepo) InsertCampaign(ctx context.Context, c Campaign) error {
	const q = `
INSERT INTO campaigns (` + campaignColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`
	_, err := r.db.ExecContext(ctx, q,
		c.ID, c.Name, c.Description, c.CreatedBy, c.IsActive,
		c.MaxAttempts, c.TotalLeads, c.CompletedLeads, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) GetCampaign(ctx context.Context, id string) (Campaign, error) {
	const q = `
SELECT ` + campaignColumns + `
FROM campaigns
WHERE id = $1
`
	c, err := scanCampaign(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Campaign{}, ErrNotFound
	}
	return c, err
}

func (r *PostgresRepo) ListCampaigns(ctx context.Context, visibleTo string) ([]Campaign, error) {
	const q = `
SELECT ` + campaignColumns + `
FROM campaigns
WHERE ($1 = '' OR created_by = $1)
ORDER BY created_at
`
	rows, err := r.db.QueryContext(ctx, q, visibleTo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) UpdateCampaign(ctx context.Context, c Campaign) error {
	const q = `
UPDATE campaigns
SET name = $2, description = $3, is_active = $4, max_attempts = $5,
    total_leads = $6, completed_leads = $7, updated_at = $8
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q,
		c.ID, c.Name, c.Description, c.IsActive, c.MaxAttempts,
		c.TotalLeads, c.CompletedLeads, c.UpdatedAt,
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

// DeleteCampaign removes the campaign and its campaign leads in one
// transaction. Call logs are kept; they reference campaign leads by id only.
func (r *PostgresRepo) DeleteCampaign(ctx context.Context, id string) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM campaign_leads WHERE campaign_id = $1`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
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
	})
}

func (r *PostgresRepo) InsertCampaignLead(ctx context.Context, cl CampaignLead) error {
	const q = `
INSERT INTO campaign_leads (` + campaignLeadColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`
	_, err := r.db.ExecContext(ctx, q,
		cl.ID, cl.CampaignID, cl.LeadID, cl.AssignedAgent, cl.Status,
		cl.AttemptsMade, cl.MaxAttempts, nullString(string(cl.LastCallOutcome)),
		nullTime(cl.LastAttemptAt), nullTime(cl.NextAttemptAt), cl.CreatedAt, cl.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) GetCampaignLead(ctx context.Context, id string) (CampaignLead, error) {
	const q = `
SELECT ` + campaignLeadColumns + `
FROM campaign_leads
WHERE id = $1
`
	cl, err := scanCampaignLead(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return CampaignLead{}, ErrCampaignLeadNotFound
	}
	return cl, err
}

func (r *PostgresRepo) UpdateCampaignLead(ctx context.Context, cl CampaignLead) error {
	const q = `
UPDATE campaign_leads
SET assigned_agent = $2, status = $3, attempts_made = $4, max_attempts = $5,
    last_call_outcome = $6, last_attempt_at = $7, next_attempt_at = $8, updated_at = $9
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q,
		cl.ID, cl.AssignedAgent, cl.Status, cl.AttemptsMade, cl.MaxAttempts,
		nullString(string(cl.LastCallOutcome)), nullTime(cl.LastAttemptAt),
		nullTime(cl.NextAttemptAt), cl.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCampaignLeadNotFound
	}
	return nil
}

func (r *PostgresRepo) ListCampaignLeads(ctx context.Context, campaignID string) ([]CampaignLead, error) {
	const q = `
SELECT ` + campaignLeadColumns + `
FROM campaign_leads
WHERE campaign_id = $1
ORDER BY created_at
`
	rows, err := r.db.QueryContext(ctx, q, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CampaignLead
	for rows.Next() {
		cl, err := scanCampaignLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cl)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) NextWorkableLead(ctx context.Context, campaignID, agentID string, now time.Time) (CampaignLead, bool, error) {
	const q = `
SELECT ` + campaignLeadColumns + `
FROM campaign_leads
WHERE campaign_id = $1
  AND assigned_agent = $2
  AND status = 'pending'
  AND attempts_made < max_attempts
  AND (next_attempt_at IS NULL OR next_attempt_at <= $3)
ORDER BY created_at
LIMIT 1
`
	cl, err := scanCampaignLead(r.db.QueryRowContext(ctx, q, campaignID, agentID, now))
	if errors.Is(err, sql.ErrNoRows) {
		return CampaignLead{}, false, nil
	}
	if err != nil {
		return CampaignLead{}, false, err
	}
	return cl, true, nil
}

func (r *PostgresRepo) CountInProgress(ctx context.Context, campaignID string) (int, error) {
	const q = `
SELECT COUNT(*)
FROM campaign_leads
WHERE campaign_id = $1 AND status = 'in_progress'
`
	var n int
	err := r.db.QueryRowContext(ctx, q, campaignID).Scan(&n)
	return n, err
}

func (r *PostgresRepo) AppendCallLog(ctx context.Context, log CallLog) error {
	const q = `
INSERT INTO call_logs (id, campaign_lead_id, agent_id, outcome, duration_seconds, notes, call_time)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	_, err := r.db.ExecContext(ctx, q,
		log.ID, log.CampaignLeadID, log.AgentID, log.Outcome,
		log.DurationSeconds, log.Notes, log.CallTime,
	)
	return err
}

func (r *PostgresRepo) CountCallLogs(ctx context.Context, campaignID string) (int, error) {
	const q = `
SELECT COUNT(*)
FROM call_logs cl
JOIN campaign_leads l ON l.id = cl.campaign_lead_id
WHERE l.campaign_id = $1
`
	var n int
	err := r.db.QueryRowContext(ctx, q, campaignID).Scan(&n)
	return n, err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
