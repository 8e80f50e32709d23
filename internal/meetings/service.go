package meetings

import (
	"context"
	"errors"
	"strings"
	"time"

	"crm-platform/internal/rbac"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("meeting not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrForbidden       = errors.New("not authorized")
	ErrTimeConflict    = errors.New("time slot conflicts with existing meeting")
)

// Service owns meeting scheduling rules: interval validity, the
// per-organizer conflict check and organizer-or-admin access.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

type CreateRequest struct {
	Title     string `json:"title"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`

	// DurationMinutes derives the end time when end_time is omitted.
	DurationMinutes int `json:"duration_minutes,omitempty"`

	Notes    string `json:"notes,omitempty"`
	Status   string `json:"status,omitempty"`
	LeadID   string `json:"lead_id,omitempty"`
	LeadName string `json:"lead_name,omitempty"`

	MeetingURL string `json:"meeting_url,omitempty"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest, userID string) (Meeting, error) {
	endTime := req.EndTime
	if endTime == "" && req.DurationMinutes > 0 {
		st, ok := parseMeetingTime(req.StartTime, time.UTC)
		if !ok {
			return Meeting{}, ErrInvalidArgument
		}
		endTime = st.Add(time.Duration(req.DurationMinutes) * time.Minute).Format(time.RFC3339)
	}
	start, end, err := validateInterval(req.StartTime, endTime)
	if err != nil {
		return Meeting{}, err
	}

	status := MeetingStatus(req.Status)
	if status == "" {
		status = MeetingStatusConfirmed
	}
	if !IsValidMeetingStatus(status) {
		return Meeting{}, ErrInvalidArgument
	}

	if _, found, err := s.repo.FindConflict(ctx, userID, start, end, ""); err != nil {
		return Meeting{}, err
	} else if found {
		return Meeting{}, ErrTimeConflict
	}

	now := s.clock().UTC()
	title := strings.TrimSpace(req.Title)
	if title == "" && req.LeadName != "" {
		title = "Meeting with " + req.LeadName
	}
	m := Meeting{
		ID:          uuid.NewString(),
		Title:       title,
		StartTime:   start,
		EndTime:     end,
		Notes:       req.Notes,
		Status:      status,
		LeadID:      req.LeadID,
		LeadName:    req.LeadName,
		MeetingURL:  req.MeetingURL,
		OrganizerID: userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, m); err != nil {
		return Meeting{}, err
	}
	return m, nil
}

func (s *Service) List(ctx context.Context, userID, role string) ([]Meeting, error) {
	visibleTo := userID
	if role == rbac.RoleAdmin {
		visibleTo = ""
	}
	return s.repo.List(ctx, visibleTo)
}

func (s *Service) Get(ctx context.Context, id, userID, role string) (Meeting, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return Meeting{}, err
	}
	if role != rbac.RoleAdmin && m.OrganizerID != userID {
		return Meeting{}, ErrForbidden
	}
	return m, nil
}

type UpdateRequest struct {
	Title     *string `json:"title,omitempty"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	Status    *string `json:"status,omitempty"`

	MeetingURL *string `json:"meeting_url,omitempty"`
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest, userID, role string) (Meeting, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return Meeting{}, err
	}
	if role != rbac.RoleAdmin && m.OrganizerID != userID {
		return Meeting{}, ErrForbidden
	}

	if req.Title != nil {
		m.Title = strings.TrimSpace(*req.Title)
	}
	if req.StartTime != nil {
		m.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		m.EndTime = *req.EndTime
	}
	if req.Notes != nil {
		m.Notes = *req.Notes
	}
	if req.Status != nil {
		status := MeetingStatus(*req.Status)
		if !IsValidMeetingStatus(status) {
			return Meeting{}, ErrInvalidArgument
		}
		m.Status = status
	}
	if req.MeetingURL != nil {
		m.MeetingURL = *req.MeetingURL
	}

	start, end, err := validateInterval(m.StartTime, m.EndTime)
	if err != nil {
		return Meeting{}, err
	}
	m.StartTime, m.EndTime = start, end

	if req.StartTime != nil || req.EndTime != nil {
		if _, found, err := s.repo.FindConflict(ctx, m.OrganizerID, start, end, m.ID); err != nil {
			return Meeting{}, err
		} else if found {
			return Meeting{}, ErrTimeConflict
		}
	}

	m.UpdatedAt = s.clock().UTC()
	if err := s.repo.Update(ctx, m); err != nil {
		return Meeting{}, err
	}
	return m, nil
}

func (s *Service) Delete(ctx context.Context, id, userID, role string) error {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if role != rbac.RoleAdmin && m.OrganizerID != userID {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

// Layout exposes the day view computation over the caller's visible
// meetings. Raw records in either wire shape are accepted.
func (s *Service) Layout(ctx context.Context, userID, role string, day time.Time) ([]LayoutEntry, error) {
	ms, err := s.List(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	return MeetingsForDay(ms, day), nil
}

// validateInterval parses both endpoints and requires end > start. It
// returns the canonical RFC 3339 strings actually stored.
func validateInterval(startStr, endStr string) (string, string, error) {
	start, ok := parseMeetingTime(startStr, time.UTC)
	if !ok {
		return "", "", ErrInvalidArgument
	}
	end, ok := parseMeetingTime(endStr, time.UTC)
	if !ok {
		return "", "", ErrInvalidArgument
	}
	if !end.After(start) {
		return "", "", ErrInvalidArgument
	}
	return start.Format(time.RFC3339), end.Format(time.RFC3339), nil
}
