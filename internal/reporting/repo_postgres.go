package reporting

import (
	"context"
	"database/sql"
	"time"

	"crm-platform/internal/campaigns"
	"crm-platform/internal/leads"
)

// PostgresRepo reads the tables owned by the campaigns, leads and meetings
// packages. Reporting never writes.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) ListCallLogs(ctx context.Context, from, to time.Time, campaignID string) ([]campaigns.CallLog, error) {
	const q = `
SELECT l.id, l.campaign_lead_id, l.agent_id, l.outcome, l.duration_seconds, l.notes, l.call_time
FROM call_logs l
JOIN campaign_leads cl ON cl.id = l.campaign_lead_id
WHERE l.call_time >= $1
  AND l.call_time < $2
  AND ($3 = '' OR cl.campaign_id = $3)
ORDER BY l.call_time
`
	rows, err := r.db.QueryContext(ctx, q, from, to, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []campaigns.CallLog
	for rows.Next() {
		var log campaigns.CallLog
		var notes sql.NullString
		if err := rows.Scan(
			&log.ID,
			&log.CampaignLeadID,
			&log.AgentID,
			&log.Outcome,
			&log.DurationSeconds,
			&notes,
			&log.CallTime,
		); err != nil {
			return nil, err
		}
		log.Notes = notes.String
		out = append(out, log)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) ListCampaignLeads(ctx context.Context, campaignID string) ([]campaigns.CampaignLead, error) {
	const q = `
SELECT id, campaign_id, lead_id, assigned_agent, status, attempts_made, max_attempts,
       last_call_outcome, last_attempt_at, next_attempt_at, created_at, updated_at
FROM campaign_leads
WHERE campaign_id = $1
ORDER BY created_at
`
	rows, err := r.db.QueryContext(ctx, q, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []campaigns.CampaignLead
	for rows.Next() {
		var cl campaigns.CampaignLead
		var outcome sql.NullString
		var lastAt, nextAt sql.NullTime
		if err := rows.Scan(
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
			return nil, err
		}
		cl.LastCallOutcome = campaigns.CallOutcome(outcome.String)
		if lastAt.Valid {
			t := lastAt.Time
			cl.LastAttemptAt = &t
		}
		if nextAt.Valid {
			t := nextAt.Time
			cl.NextAttemptAt = &t
		}
		out = append(out, cl)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) CountLeadsByStatus(ctx context.Context) (map[leads.LeadStatus]int, error) {
	const q = `SELECT status, COUNT(*) FROM leads GROUP BY status`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[leads.LeadStatus]int)
	for rows.Next() {
		var status leads.LeadStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

// CountMeetingsOnDay counts by the calendar date prefix of start_time, which
// is stored as RFC 3339 text. This matches the day-view filter.
func (r *PostgresRepo) CountMeetingsOnDay(ctx context.Context, day time.Time) (int, error) {
	const q = `
SELECT COUNT(*)
FROM meetings
WHERE substr(start_time, 1, 10) = $1
`
	var n int
	err := r.db.QueryRowContext(ctx, q, day.Format("2006-01-02")).Scan(&n)
	return n, err
}

func (r *PostgresRepo) CountOpenTickets(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM tickets WHERE status IN ('open', 'in_progress')`
	var n int
	err := r.db.QueryRowContext(ctx, q).Scan(&n)
	return n, err
}

func (r *PostgresRepo) CountActiveCampaigns(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM campaigns WHERE is_active`
	var n int
	err := r.db.QueryRowContext(ctx, q).Scan(&n)
	return n, err
}
