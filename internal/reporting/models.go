package reporting

import (
	"time"

	"crm-platform/internal/leads"
)

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// CallsSummaryRequest requests aggregated call-attempt metrics.

type CallsSummaryRequest struct {
	Range      TimeRange `json:"range"`
	CampaignID string    `json:"campaign_id,omitempty"`
}

type CallsSummary struct {
	CampaignID string `json:"campaign_id,omitempty"`

	TotalCalls     int `json:"total_calls"`
	AnsweredCalls  int `json:"answered_calls"`
	NoAnswerCalls  int `json:"no_answer_calls"`
	BusyCalls      int `json:"busy_calls"`
	VoicemailCalls int `json:"voicemail_calls"`

	TotalDurationSeconds   int `json:"total_duration_seconds"`
	AverageDurationSeconds int `json:"average_duration_seconds"`
}

// ConversionMetricsRequest captures campaign conversion metrics derived
// from call logs and campaign-lead status.

type ConversionMetricsRequest struct {
	Range      TimeRange `json:"range"`
	CampaignID string    `json:"campaign_id"`
}

type ConversionMetrics struct {
	CampaignID string `json:"campaign_id"`

	CallsAttempted int `json:"calls_attempted"`
	CallsConnected int `json:"calls_connected"`
	LeadsCompleted int `json:"leads_completed"`
	LeadsFailed    int `json:"leads_failed"`

	ConnectionRate float64 `json:"connection_rate"`
	CompletionRate float64 `json:"completion_rate"`
}

// Dashboard is the landing-page summary: lead pipeline, today's calendar
// and call activity at a glance.

type Dashboard struct {
	LeadsByStatus   map[leads.LeadStatus]int `json:"leads_by_status"`
	TotalLeads      int                      `json:"total_leads"`
	MeetingsToday   int                      `json:"meetings_today"`
	CallsToday      int                      `json:"calls_today"`
	OpenTickets     int                      `json:"open_tickets"`
	ActiveCampaigns int                      `json:"active_campaigns"`
}
