package campaigns

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is a simple in-memory repository useful for tests and early development.
//
// NOTE: This is not intended for production; use the Postgres implementation.
type MemoryRepo struct {
	mu sync.Mutex

	campaigns     map[string]Campaign
	campaignOrder []string

	campaignLeads map[string]CampaignLead
	leadOrder     []string

	callLogs []CallLog
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		campaigns:     make(map[string]Campaign),
		campaignLeads: make(map[string]CampaignLead),
	}
}

func (r *MemoryRepo) InsertCampaign(ctx context.Context, c Campaign) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.campaigns[c.ID]; !ok {
		r.campaignOrder = append(r.campaignOrder, c.ID)
	}
	r.campaigns[c.ID] = c
	return nil
}

func (r *MemoryRepo) GetCampaign(ctx context.Context, id string) (Campaign, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return Campaign{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) ListCampaigns(ctx context.Context, visibleTo string) ([]Campaign, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Campaign, 0, len(r.campaignOrder))
	for _, id := range r.campaignOrder {
		c := r.campaigns[id]
		if visibleTo != "" && c.CreatedBy != visibleTo {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *MemoryRepo) UpdateCampaign(ctx context.Context, c Campaign) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.campaigns[c.ID]; !ok {
		return ErrNotFound
	}
	r.campaigns[c.ID] = c
	return nil
}

func (r *MemoryRepo) DeleteCampaign(ctx context.Context, id string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.campaigns[id]; !ok {
		return ErrNotFound
	}
	delete(r.campaigns, id)
	for i, v := range r.campaignOrder {
		if v == id {
			r.campaignOrder = append(r.campaignOrder[:i], r.campaignOrder[i+1:]...)
			break
		}
	}
	var keep []string
	for _, clID := range r.leadOrder {
		if cl, ok := r.campaignLeads[clID]; ok && cl.CampaignID == id {
			delete(r.campaignLeads, clID)
			continue
		}
		keep = append(keep, clID)
	}
	r.leadOrder = keep
	return nil
}

func (r *MemoryRepo) InsertCampaignLead(ctx context.Context, cl CampaignLead) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.campaignLeads[cl.ID]; !ok {
		r.leadOrder = append(r.leadOrder, cl.ID)
	}
	r.campaignLeads[cl.ID] = cl
	return nil
}

func (r *MemoryRepo) GetCampaignLead(ctx context.Context, id string) (CampaignLead, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	cl, ok := r.campaignLeads[id]
	if !ok {
		return CampaignLead{}, ErrCampaignLeadNotFound
	}
	return cl, nil
}

func (r *MemoryRepo) UpdateCampaignLead(ctx context.Context, cl CampaignLead) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.campaignLeads[cl.ID]; !ok {
		return ErrCampaignLeadNotFound
	}
	r.campaignLeads[cl.ID] = cl
	return nil
}

func (r *MemoryRepo) ListCampaignLeads(ctx context.Context, campaignID string) ([]CampaignLead, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []CampaignLead
	for _, id := range r.leadOrder {
		cl := r.campaignLeads[id]
		if cl.CampaignID == campaignID {
			out = append(out, cl)
		}
	}
	return out, nil
}

func (r *MemoryRepo) NextWorkableLead(ctx context.Context, campaignID, agentID string, now time.Time) (CampaignLead, bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.leadOrder {
		cl := r.campaignLeads[id]
		if cl.CampaignID != campaignID {
			continue
		}
		if cl.AssignedAgent != agentID {
			continue
		}
		if cl.Status != CampaignLeadStatusPending {
			continue
		}
		if cl.AttemptsMade >= cl.MaxAttempts {
			continue
		}
		if cl.NextAttemptAt != nil && now.Before(*cl.NextAttemptAt) {
			continue
		}
		return cl, true, nil
	}
	return CampaignLead{}, false, nil
}

func (r *MemoryRepo) CountInProgress(ctx context.Context, campaignID string) (int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, cl := range r.campaignLeads {
		if cl.CampaignID == campaignID && cl.Status == CampaignLeadStatusInProgress {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepo) AppendCallLog(ctx context.Context, log CallLog) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callLogs = append(r.callLogs, log)
	return nil
}

func (r *MemoryRepo) CountCallLogs(ctx context.Context, campaignID string) (int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, log := range r.callLogs {
		cl, ok := r.campaignLeads[log.CampaignLeadID]
		if ok && cl.CampaignID == campaignID {
			n++
		}
	}
	return n, nil
}

// CallLogs returns a copy of all appended logs, for tests.
func (r *MemoryRepo) CallLogs() []CallLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CallLog, len(r.callLogs))
	copy(out, r.callLogs)
	return out
}
