package reporting

import (
	"context"
	"errors"
	"time"

	"crm-platform/internal/campaigns"
	"crm-platform/internal/leads"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts data access for reporting.
//
// Implementations should query immutable sources when possible (call logs,
// audit events) so reports are reproducible.

type Repository interface {
	ListCallLogs(ctx context.Context, from, to time.Time, campaignID string) ([]campaigns.CallLog, error)
	ListCampaignLeads(ctx context.Context, campaignID string) ([]campaigns.CampaignLead, error)
	CountLeadsByStatus(ctx context.Context) (map[leads.LeadStatus]int, error)
	CountMeetingsOnDay(ctx context.Context, day time.Time) (int, error)

	// CountOpenTickets counts tickets not yet resolved or closed.
	CountOpenTickets(ctx context.Context) (int, error)
	CountActiveCampaigns(ctx context.Context) (int, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) CallsSummary(ctx context.Context, req CallsSummaryRequest) (CallsSummary, error) {
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return CallsSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return CallsSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListCallLogs(ctx, req.Range.From, req.Range.To, req.CampaignID)
	if err != nil {
		return CallsSummary{}, err
	}

	out := CallsSummary{CampaignID: req.CampaignID}
	for _, log := range rows {
		out.TotalCalls++
		out.TotalDurationSeconds += log.DurationSeconds
		switch log.Outcome {
		case campaigns.CallOutcomeAnswered:
			out.AnsweredCalls++
		case campaigns.CallOutcomeNoAnswer:
			out.NoAnswerCalls++
		case campaigns.CallOutcomeBusy:
			out.BusyCalls++
		case campaigns.CallOutcomeVoicemail:
			out.VoicemailCalls++
		}
	}
	if out.TotalCalls > 0 {
		out.AverageDurationSeconds = out.TotalDurationSeconds / out.TotalCalls
	}
	return out, nil
}

func (s *Service) ConversionMetrics(ctx context.Context, req ConversionMetricsRequest) (ConversionMetrics, error) {
	if req.CampaignID == "" {
		return ConversionMetrics{}, ErrInvalidRequest
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return ConversionMetrics{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return ConversionMetrics{}, errors.New("reporting: repository not configured")
	}

	logs, err := s.repo.ListCallLogs(ctx, req.Range.From, req.Range.To, req.CampaignID)
	if err != nil {
		return ConversionMetrics{}, err
	}
	cls, err := s.repo.ListCampaignLeads(ctx, req.CampaignID)
	if err != nil {
		return ConversionMetrics{}, err
	}

	out := ConversionMetrics{CampaignID: req.CampaignID}
	out.CallsAttempted = len(logs)
	for _, log := range logs {
		if log.Outcome == campaigns.CallOutcomeAnswered {
			out.CallsConnected++
		}
	}
	for _, cl := range cls {
		switch cl.Status {
		case campaigns.CampaignLeadStatusCompleted:
			out.LeadsCompleted++
		case campaigns.CampaignLeadStatusFailed:
			out.LeadsFailed++
		}
	}

	if out.CallsAttempted > 0 {
		out.ConnectionRate = float64(out.CallsConnected) / float64(out.CallsAttempted)
	}
	if worked := out.LeadsCompleted + out.LeadsFailed; worked > 0 {
		out.CompletionRate = float64(out.LeadsCompleted) / float64(worked)
	}
	return out, nil
}

// DashboardFor builds the landing-page summary for a calendar day.
func (s *Service) DashboardFor(ctx context.Context, day time.Time) (Dashboard, error) {
	if s.repo == nil {
		return Dashboard{}, errors.New("reporting: repository not configured")
	}

	byStatus, err := s.repo.CountLeadsByStatus(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	meetings, err := s.repo.CountMeetingsOnDay(ctx, day)
	if err != nil {
		return Dashboard{}, err
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	logs, err := s.repo.ListCallLogs(ctx, dayStart, dayStart.AddDate(0, 0, 1), "")
	if err != nil {
		return Dashboard{}, err
	}
	openTickets, err := s.repo.CountOpenTickets(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	activeCampaigns, err := s.repo.CountActiveCampaigns(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	out := Dashboard{
		LeadsByStatus:   byStatus,
		MeetingsToday:   meetings,
		CallsToday:      len(logs),
		OpenTickets:     openTickets,
		ActiveCampaigns: activeCampaigns,
	}
	for _, n := range byStatus {
		out.TotalLeads += n
	}
	return out, nil
}
