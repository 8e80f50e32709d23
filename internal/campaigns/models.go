package campaigns

import "time"

// Campaign is a named outreach effort grouping leads and agent call activity.
type Campaign struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`
	CreatedBy   string `json:"created_by" db:"created_by"`

	IsActive bool `json:"is_active" db:"is_active"`

	// MaxAttempts overrides the configured default when > 0.
	MaxAttempts int `json:"max_attempts,omitempty" db:"max_attempts"`

	// Denormalized counters kept in sync by the call-log state machine.
	TotalLeads     int `json:"total_leads" db:"total_leads"`
	CompletedLeads int `json:"completed_leads" db:"completed_leads"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CampaignLead is the join entity tracking one lead's call progress within
// one campaign.
//
// Invariant: AttemptsMade <= MaxAttempts once Status is completed or failed.
// All transitions are decided here on the server; clients only display the
// status and ask for the next lead.
type CampaignLead struct {
	ID         string `json:"id" db:"id"`
	CampaignID string `json:"campaign_id" db:"campaign_id"`
	LeadID     string `json:"lead_id" db:"lead_id"`

	// AssignedAgent is the agent user expected to work this lead.
	AssignedAgent string `json:"assigned_agent" db:"assigned_agent"`

	Status       CampaignLeadStatus `json:"status" db:"status"`
	AttemptsMade int                `json:"attempts_made" db:"attempts_made"`
	MaxAttempts  int                `json:"max_attempts" db:"max_attempts"`

	LastCallOutcome CallOutcome `json:"last_call_outcome,omitempty" db:"last_call_outcome"`
	LastAttemptAt   *time.Time  `json:"last_attempt_at,omitempty" db:"last_attempt_at"`

	// NextAttemptAt gates retry scheduling: a pending lead is not workable
	// before this instant.
	NextAttemptAt *time.Time `json:"next_attempt_at,omitempty" db:"next_attempt_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CampaignLeadStatus string

const (
	CampaignLeadStatusPending    CampaignLeadStatus = "pending"
	CampaignLeadStatusInProgress CampaignLeadStatus = "in_progress"
	CampaignLeadStatusCompleted  CampaignLeadStatus = "completed"
	CampaignLeadStatusFailed     CampaignLeadStatus = "failed"
)

// CallLog is an immutable record of one call attempt and its outcome.
// It is append-only: never updated or deleted.
type CallLog struct {
	ID             string `json:"id" db:"id"`
	CampaignLeadID string `json:"campaign_lead_id" db:"campaign_lead_id"`
	AgentID        string `json:"agent_id" db:"agent_id"`

	Outcome CallOutcome `json:"outcome" db:"outcome"`

	// DurationSeconds is reported by the client as the wall-clock delta
	// between call start and submission.
	DurationSeconds int    `json:"duration_seconds" db:"duration_seconds"`
	Notes           string `json:"notes,omitempty" db:"notes"`

	CallTime time.Time `json:"call_time" db:"call_time"`
}

type CallOutcome string

const (
	CallOutcomeAnswered  CallOutcome = "answered"
	CallOutcomeNoAnswer  CallOutcome = "no_answer"
	CallOutcomeBusy      CallOutcome = "busy"
	CallOutcomeVoicemail CallOutcome = "voicemail"
)

func IsValidOutcome(o CallOutcome) bool {
	switch o {
	case CallOutcomeAnswered, CallOutcomeNoAnswer, CallOutcomeBusy, CallOutcomeVoicemail:
		return true
	default:
		return false
	}
}

// Stats aggregates a campaign's lead progress for dashboards.
type Stats struct {
	CampaignID      string `json:"campaign_id"`
	TotalLeads      int    `json:"total_leads"`
	PendingLeads    int    `json:"pending_leads"`
	InProgressLeads int    `json:"in_progress_leads"`
	CompletedLeads  int    `json:"completed_leads"`
	FailedLeads     int    `json:"failed_leads"`
	TotalCalls      int    `json:"total_calls"`
}
