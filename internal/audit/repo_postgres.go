package audit

import (
	"context"
	"database/sql"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

// Append only inserts. Audit rows are never updated or deleted.
func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO audit_events
	(id, type, actor_user_id, actor_role, ip_address,
	 lead_id, campaign_id, ticket_id, meeting_id,
	 message, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID, e.Type, e.ActorUserID, e.ActorRole, e.IPAddress,
		e.LeadID, e.CampaignID, e.TicketID, e.MeetingID,
		e.Message, e.Metadata, e.CreatedAt,
	)
	return err
}
