package meetings

import "time"

// Meeting is a scheduled time interval, stored in the flat shape. Records
// arriving in the calendar-provider shape are flattened by NormalizeMeeting
// before anything else looks at them.
type Meeting struct {
	ID    string `json:"id" db:"id"`
	Title string `json:"title" db:"title"`

	// ISO-8601 datetimes. Kept as strings at this layer; layout drops
	// records it cannot parse.
	StartTime string `json:"start_time" db:"start_time"`
	EndTime   string `json:"end_time" db:"end_time"`

	Notes  string        `json:"notes,omitempty" db:"notes"`
	Status MeetingStatus `json:"status" db:"status"`

	LeadID   string `json:"lead_id,omitempty" db:"lead_id"`
	LeadName string `json:"lead_name,omitempty" db:"lead_name"`

	// MeetingURL is the conferencing link, when one exists.
	MeetingURL string `json:"meeting_url,omitempty" db:"meeting_url"`

	OrganizerID string    `json:"organizer_id" db:"organizer_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type MeetingStatus string

const (
	MeetingStatusProposed    MeetingStatus = "proposed"
	MeetingStatusConfirmed   MeetingStatus = "confirmed"
	MeetingStatusRescheduled MeetingStatus = "rescheduled"
	MeetingStatusCancelled   MeetingStatus = "cancelled"
)

func IsValidMeetingStatus(s MeetingStatus) bool {
	switch s {
	case MeetingStatusProposed, MeetingStatusConfirmed, MeetingStatusRescheduled, MeetingStatusCancelled:
		return true
	default:
		return false
	}
}

// RawMeeting accepts both wire shapes: the flat one above and the nested
// calendar-provider one (start.dateTime / start.date, summary, entry points).
type RawMeeting struct {
	ID    string `json:"id"`
	Title string `json:"title"`

	// Provider shape uses "summary" for the title.
	Summary string `json:"summary,omitempty"`

	StartTime string        `json:"start_time,omitempty"`
	EndTime   string        `json:"end_time,omitempty"`
	Start     *ProviderTime `json:"start,omitempty"`
	End       *ProviderTime `json:"end,omitempty"`

	// DurationMinutes derives the end time when no end is given.
	DurationMinutes int `json:"duration_minutes,omitempty"`

	Notes  string `json:"notes,omitempty"`
	Status string `json:"status,omitempty"`

	LeadID   string `json:"lead_id,omitempty"`
	LeadName string `json:"lead_name,omitempty"`

	MeetingURL     string          `json:"meeting_url,omitempty"`
	ConferenceData *ConferenceData `json:"conference_data,omitempty"`
}

// ProviderTime is the calendar-provider time object: dateTime for timed
// events, date for all-day events.
type ProviderTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
}

type ConferenceData struct {
	EntryPoints []EntryPoint `json:"entryPoints,omitempty"`
}

type EntryPoint struct {
	EntryPointType string `json:"entryPointType,omitempty"`
	URI            string `json:"uri,omitempty"`
}
