package leads

import "time"

// Lead represents a contact/business record worked by campaigns.
//
// Leads are server-owned: clients render them and trigger actions, but all
// progression (campaign membership, call attempts) is decided here.
type Lead struct {
	ID        string `json:"id" db:"id"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`

	Phone  string `json:"phone,omitempty" db:"phone"`
	Email  string `json:"email,omitempty" db:"email"`
	Source string `json:"source,omitempty" db:"source"`
	Notes  string `json:"notes,omitempty" db:"notes"`

	Status LeadStatus `json:"status" db:"status"`

	// AssignedTo is the agent user working this lead, if any.
	AssignedTo string `json:"assigned_to,omitempty" db:"assigned_to"`
	CampaignID string `json:"campaign_id,omitempty" db:"campaign_id"`

	CreatedBy string    `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type LeadStatus string

const (
	LeadStatusNew        LeadStatus = "new"
	LeadStatusReady      LeadStatus = "ready"
	LeadStatusLost       LeadStatus = "lost"
	LeadStatusNoResponse LeadStatus = "no_response"
	LeadStatusBusy       LeadStatus = "busy"
	LeadStatusNoAnswer   LeadStatus = "no_answer"
	LeadStatusCompleted  LeadStatus = "completed"
	LeadStatusConverted  LeadStatus = "converted"
)

func IsValidLeadStatus(s LeadStatus) bool {
	switch s {
	case LeadStatusNew, LeadStatusReady, LeadStatusLost, LeadStatusNoResponse,
		LeadStatusBusy, LeadStatusNoAnswer, LeadStatusCompleted, LeadStatusConverted:
		return true
	default:
		return false
	}
}
