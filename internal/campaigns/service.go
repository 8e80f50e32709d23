package campaigns

import (
	"context"
	"errors"
	"strings"
	"time"

	"crm-platform/internal/leads"
	"crm-platform/internal/rbac"

	"github.com/google/uuid"
)

var (
	ErrNotFound             = errors.New("campaign not found")
	ErrCampaignLeadNotFound = errors.New("campaign lead not found")
	ErrNoLeadsAvailable     = errors.New("no available leads in this campaign")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrForbidden            = errors.New("not authorized")
	ErrCallsInProgress      = errors.New("campaign has calls in progress")
)

// Policy holds the server-side calling rules. The client never reimplements
// these transitions; it only displays the resulting status.
type Policy struct {
	// DefaultMaxAttempts applies when a campaign has no override.
	DefaultMaxAttempts int

	// RetryDelay schedules the next attempt after an unanswered call.
	RetryDelay time.Duration
}

// LeadSource is the minimal lead lookup the calling workflow needs.
// *leads.MemoryRepo and *leads.PostgresRepo both satisfy it.
type LeadSource interface {
	Get(ctx context.Context, id string) (leads.Lead, error)
}

// Service owns the campaign-lead call-attempt state machine:
//
//	pending --start--> in_progress --log(answered)--> completed
//	                   in_progress --log(other, attempts < max)--> pending (retry later)
//	                   in_progress --log(other, attempts == max)--> failed
//
// Invariant: attempts_made <= max_attempts once a lead is completed or failed.
type Service struct {
	repo     Repository
	leadRepo LeadSource
	policy   Policy
	clock    func() time.Time
}

func NewService(repo Repository, leadRepo LeadSource, policy Policy) *Service {
	if policy.DefaultMaxAttempts <= 0 {
		policy.DefaultMaxAttempts = 3
	}
	if policy.RetryDelay <= 0 {
		policy.RetryDelay = time.Hour
	}
	return &Service{repo: repo, leadRepo: leadRepo, policy: policy, clock: time.Now}
}

/* ===================== CAMPAIGN CRUD ===================== */

type CreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MaxAttempts int    `json:"max_attempts,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`

	// LeadIDs become campaign leads assigned to AssignedAgent.
	LeadIDs       []string `json:"lead_ids,omitempty"`
	AssignedAgent string   `json:"assigned_agent,omitempty"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest, userID, role string) (Campaign, error) {
	if role != rbac.RoleAdmin && role != rbac.RoleAgent {
		return Campaign{}, ErrForbidden
	}
	if strings.TrimSpace(req.Name) == "" {
		return Campaign{}, ErrInvalidArgument
	}

	now := s.clock().UTC()
	c := Campaign{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CreatedBy:   userID,
		IsActive:    true,
		MaxAttempts: req.MaxAttempts,
		TotalLeads:  len(req.LeadIDs),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if err := s.repo.InsertCampaign(ctx, c); err != nil {
		return Campaign{}, err
	}

	agent := req.AssignedAgent
	if agent == "" && role == rbac.RoleAgent {
		agent = userID
	}
	maxAttempts := c.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = s.policy.DefaultMaxAttempts
	}
	for _, leadID := range req.LeadIDs {
		cl := CampaignLead{
			ID:            uuid.NewString(),
			CampaignID:    c.ID,
			LeadID:        leadID,
			AssignedAgent: agent,
			Status:        CampaignLeadStatusPending,
			MaxAttempts:   maxAttempts,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.repo.InsertCampaignLead(ctx, cl); err != nil {
			return Campaign{}, err
		}
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, userID, role string) ([]Campaign, error) {
	visibleTo := userID
	if role == rbac.RoleAdmin {
		visibleTo = ""
	}
	return s.repo.ListCampaigns(ctx, visibleTo)
}

func (s *Service) Get(ctx context.Context, id string) (Campaign, error) {
	return s.repo.GetCampaign(ctx, id)
}

type UpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	MaxAttempts *int    `json:"max_attempts,omitempty"`
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest, userID, role string) (Campaign, error) {
	if role != rbac.RoleAdmin && role != rbac.RoleAgent {
		return Campaign{}, ErrForbidden
	}
	c, err := s.repo.GetCampaign(ctx, id)
	if err != nil {
		return Campaign{}, err
	}
	// Only the creator or an admin can edit.
	if role != rbac.RoleAdmin && c.CreatedBy != userID {
		return Campaign{}, ErrForbidden
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return Campaign{}, ErrInvalidArgument
		}
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if req.MaxAttempts != nil {
		c.MaxAttempts = *req.MaxAttempts
	}
	c.UpdatedAt = s.clock().UTC()
	if err := s.repo.UpdateCampaign(ctx, c); err != nil {
		return Campaign{}, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id, userID, role string) error {
	if role != rbac.RoleAdmin && role != rbac.RoleAgent {
		return ErrForbidden
	}
	c, err := s.repo.GetCampaign(ctx, id)
	if err != nil {
		return err
	}
	if role != rbac.RoleAdmin && c.CreatedBy != userID {
		return ErrForbidden
	}

	active, err := s.repo.CountInProgress(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrCallsInProgress
	}
	return s.repo.DeleteCampaign(ctx, id)
}

/* ===================== CALLING WORKFLOW ===================== */

// NextLeadResponse is the payload for POST /campaigns/:id/start.
type NextLeadResponse struct {
	Lead         leads.Lead   `json:"lead"`
	CampaignLead CampaignLead `json:"campaign_lead"`
	Message      string       `json:"message"`
}

// StartAgent picks the agent's next workable lead and marks it in_progress.
// Running out of workable leads is the expected terminal condition, reported
// as ErrNoLeadsAvailable (HTTP 404), not a failure.
func (s *Service) StartAgent(ctx context.Context, campaignID, agentID, role string) (NextLeadResponse, error) {
	if role != rbac.RoleAgent {
		return NextLeadResponse{}, ErrForbidden
	}
	if _, err := s.repo.GetCampaign(ctx, campaignID); err != nil {
		return NextLeadResponse{}, err
	}

	now := s.clock().UTC()
	cl, ok, err := s.repo.NextWorkableLead(ctx, campaignID, agentID, now)
	if err != nil {
		return NextLeadResponse{}, err
	}
	if !ok {
		return NextLeadResponse{}, ErrNoLeadsAvailable
	}

	lead, err := s.leadRepo.Get(ctx, cl.LeadID)
	if err != nil {
		return NextLeadResponse{}, err
	}

	cl.Status = CampaignLeadStatusInProgress
	cl.UpdatedAt = now
	if err := s.repo.UpdateCampaignLead(ctx, cl); err != nil {
		return NextLeadResponse{}, err
	}

	return NextLeadResponse{
		Lead:         lead,
		CampaignLead: cl,
		Message:      "Next lead ready for contact",
	}, nil
}

type LogCallRequest struct {
	CampaignLeadID  string      `json:"campaign_lead_id"`
	Outcome         CallOutcome `json:"outcome"`
	DurationSeconds int         `json:"duration_seconds"`
	Notes           string      `json:"notes,omitempty"`
}

// LogCall appends an immutable call log and advances the campaign lead.
// This is the single place attempt counting and status transitions happen.
func (s *Service) LogCall(ctx context.Context, req LogCallRequest, agentID, role string) (CallLog, CampaignLead, error) {
	if role != rbac.RoleAgent {
		return CallLog{}, CampaignLead{}, ErrForbidden
	}
	if req.CampaignLeadID == "" || !IsValidOutcome(req.Outcome) || req.DurationSeconds < 0 {
		return CallLog{}, CampaignLead{}, ErrInvalidArgument
	}

	cl, err := s.repo.GetCampaignLead(ctx, req.CampaignLeadID)
	if err != nil {
		return CallLog{}, CampaignLead{}, err
	}

	now := s.clock().UTC()
	log := CallLog{
		ID:              uuid.NewString(),
		CampaignLeadID:  req.CampaignLeadID,
		AgentID:         agentID,
		Outcome:         req.Outcome,
		DurationSeconds: req.DurationSeconds,
		Notes:           req.Notes,
		CallTime:        now,
	}
	if err := s.repo.AppendCallLog(ctx, log); err != nil {
		return CallLog{}, CampaignLead{}, err
	}

	cl.AttemptsMade++
	cl.LastCallOutcome = req.Outcome
	cl.LastAttemptAt = &now
	cl.NextAttemptAt = nil

	switch {
	case req.Outcome == CallOutcomeAnswered:
		cl.Status = CampaignLeadStatusCompleted
	case cl.AttemptsMade >= cl.MaxAttempts:
		cl.Status = CampaignLeadStatusFailed
	default:
		retryAt := now.Add(s.policy.RetryDelay)
		cl.NextAttemptAt = &retryAt
		cl.Status = CampaignLeadStatusPending
	}
	cl.UpdatedAt = now

	if err := s.repo.UpdateCampaignLead(ctx, cl); err != nil {
		return CallLog{}, CampaignLead{}, err
	}

	if cl.Status == CampaignLeadStatusCompleted {
		if c, err := s.repo.GetCampaign(ctx, cl.CampaignID); err == nil {
			c.CompletedLeads++
			c.UpdatedAt = now
			_ = s.repo.UpdateCampaign(ctx, c)
		}
	}

	return log, cl, nil
}

// Stats aggregates campaign-lead progress. Derived entirely from stored
// rows; safe to recompute at any time.
func (s *Service) Stats(ctx context.Context, campaignID string) (Stats, error) {
	if _, err := s.repo.GetCampaign(ctx, campaignID); err != nil {
		return Stats{}, err
	}
	rows, err := s.repo.ListCampaignLeads(ctx, campaignID)
	if err != nil {
		return Stats{}, err
	}
	out := Stats{CampaignID: campaignID}
	for _, cl := range rows {
		out.TotalLeads++
		switch cl.Status {
		case CampaignLeadStatusPending:
			out.PendingLeads++
		case CampaignLeadStatusInProgress:
			out.InProgressLeads++
		case CampaignLeadStatusCompleted:
			out.CompletedLeads++
		case CampaignLeadStatusFailed:
			out.FailedLeads++
		}
	}
	calls, err := s.repo.CountCallLogs(ctx, campaignID)
	if err != nil {
		return Stats{}, err
	}
	out.TotalCalls = calls
	return out, nil
}
