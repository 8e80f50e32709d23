package reporting

import (
	"context"
	"sync"
	"time"

	"crm-platform/internal/campaigns"
	"crm-platform/internal/leads"
	"crm-platform/internal/meetings"
	"crm-platform/internal/tickets"
)

// MemoryRepo is a simple in-memory reporting repository for tests and early
// development. Fields are exported so tests can seed data directly.

type MemoryRepo struct {
	mu sync.Mutex

	Logs []campaigns.CallLog

	// LogCampaign joins call logs to campaigns: campaign_lead_id -> campaign_id.
	LogCampaign map[string]string

	CampaignLeads []campaigns.CampaignLead
	Leads         []leads.Lead
	Meetings      []meetings.Meeting
	Tickets       []tickets.Ticket
	Campaigns     []campaigns.Campaign
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{LogCampaign: map[string]string{}}
}

func (r *MemoryRepo) ListCallLogs(ctx context.Context, from, to time.Time, campaignID string) ([]campaigns.CallLog, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]campaigns.CallLog, 0)
	for _, log := range r.Logs {
		if !log.CallTime.IsZero() {
			if log.CallTime.Before(from) || !log.CallTime.Before(to) {
				continue
			}
		}
		if campaignID != "" && r.LogCampaign[log.CampaignLeadID] != campaignID {
			continue
		}
		out = append(out, log)
	}
	return out, nil
}

func (r *MemoryRepo) ListCampaignLeads(ctx context.Context, campaignID string) ([]campaigns.CampaignLead, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]campaigns.CampaignLead, 0)
	for _, cl := range r.CampaignLeads {
		if campaignID != "" && cl.CampaignID != campaignID {
			continue
		}
		out = append(out, cl)
	}
	return out, nil
}

func (r *MemoryRepo) CountLeadsByStatus(ctx context.Context) (map[leads.LeadStatus]int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[leads.LeadStatus]int)
	for _, l := range r.Leads {
		out[l.Status]++
	}
	return out, nil
}

func (r *MemoryRepo) CountMeetingsOnDay(ctx context.Context, day time.Time) (int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(meetings.MeetingsForDay(r.Meetings, day)), nil
}

func (r *MemoryRepo) CountOpenTickets(ctx context.Context) (int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.Tickets {
		if t.Status == tickets.TicketStatusOpen || t.Status == tickets.TicketStatusInProgress {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepo) CountActiveCampaigns(ctx context.Context) (int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.Campaigns {
		if c.IsActive {
			n++
		}
	}
	return n, nil
}
