package campaigns

import (
	"context"
	"time"
)

// Repository is the persistence contract for campaigns, campaign leads and
// call logs.
//
// Call logs are append-only; there are no update or delete methods for them.
type Repository interface {
	InsertCampaign(ctx context.Context, c Campaign) error
	GetCampaign(ctx context.Context, id string) (Campaign, error)
	ListCampaigns(ctx context.Context, visibleTo string) ([]Campaign, error)
	UpdateCampaign(ctx context.Context, c Campaign) error
	DeleteCampaign(ctx context.Context, id string) error

	InsertCampaignLead(ctx context.Context, cl CampaignLead) error
	GetCampaignLead(ctx context.Context, id string) (CampaignLead, error)
	UpdateCampaignLead(ctx context.Context, cl CampaignLead) error
	ListCampaignLeads(ctx context.Context, campaignID string) ([]CampaignLead, error)

	// NextWorkableLead returns the next pending lead for the agent in the
	// campaign: assigned to them, attempts below ceiling and not gated by a
	// future next_attempt_at. Selection order is insertion order; no
	// fairness guarantee is made.
	NextWorkableLead(ctx context.Context, campaignID, agentID string, now time.Time) (CampaignLead, bool, error)

	// CountInProgress reports leads currently being worked in a campaign.
	CountInProgress(ctx context.Context, campaignID string) (int, error)

	AppendCallLog(ctx context.Context, log CallLog) error
	CountCallLogs(ctx context.Context, campaignID string) (int, error)
}
