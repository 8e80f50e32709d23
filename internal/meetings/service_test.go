package meetings

import (
	"context"
	"errors"
	"testing"
	"time"

	"crm-platform/internal/rbac"
)

func newMeetingService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(NewMemoryRepo())
	svc.clock = func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestCreateRejectsConflictingSlot(t *testing.T) {
	svc := newMeetingService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateRequest{
		Title:     "first",
		StartTime: "2025-06-02T09:00:00Z",
		EndTime:   "2025-06-02T10:00:00Z",
	}, "agent-1"); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := svc.Create(ctx, CreateRequest{
		Title:     "second",
		StartTime: "2025-06-02T09:30:00Z",
		EndTime:   "2025-06-02T10:30:00Z",
	}, "agent-1")
	if !errors.Is(err, ErrTimeConflict) {
		t.Fatalf("err = %v, want ErrTimeConflict", err)
	}

	// A different organizer can book the same slot.
	if _, err := svc.Create(ctx, CreateRequest{
		Title:     "other agent",
		StartTime: "2025-06-02T09:30:00Z",
		EndTime:   "2025-06-02T10:30:00Z",
	}, "agent-2"); err != nil {
		t.Fatalf("create for other organizer: %v", err)
	}
}

func TestCreateIgnoresCancelledMeetingsForConflicts(t *testing.T) {
	svc := newMeetingService(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, CreateRequest{
		Title:     "cancelled",
		StartTime: "2025-06-02T09:00:00Z",
		EndTime:   "2025-06-02T10:00:00Z",
	}, "agent-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	status := string(MeetingStatusCancelled)
	if _, err := svc.Update(ctx, m.ID, UpdateRequest{Status: &status}, "agent-1", rbac.RoleAgent); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := svc.Create(ctx, CreateRequest{
		Title:     "replacement",
		StartTime: "2025-06-02T09:00:00Z",
		EndTime:   "2025-06-02T10:00:00Z",
	}, "agent-1"); err != nil {
		t.Fatalf("create over cancelled slot: %v", err)
	}
}

func TestCreateValidatesInterval(t *testing.T) {
	svc := newMeetingService(t)
	ctx := context.Background()

	cases := []CreateRequest{
		{StartTime: "bad", EndTime: "2025-06-02T10:00:00Z"},
		{StartTime: "2025-06-02T10:00:00Z", EndTime: "bad"},
		{StartTime: "2025-06-02T10:00:00Z", EndTime: "2025-06-02T09:00:00Z"},
		{StartTime: "2025-06-02T10:00:00Z", EndTime: "2025-06-02T10:00:00Z"},
	}
	for _, req := range cases {
		if _, err := svc.Create(ctx, req, "agent-1"); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("req %+v err = %v, want ErrInvalidArgument", req, err)
		}
	}
}

func TestCreateDerivesEndFromDuration(t *testing.T) {
	svc := newMeetingService(t)

	m, err := svc.Create(context.Background(), CreateRequest{
		Title:           "demo",
		StartTime:       "2025-06-02T09:00:00Z",
		DurationMinutes: 45,
	}, "agent-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if m.EndTime != "2025-06-02T09:45:00Z" {
		t.Fatalf("end = %q, want 09:45", m.EndTime)
	}
}

func TestCreateSynthesizesTitleFromLeadName(t *testing.T) {
	svc := newMeetingService(t)
	m, err := svc.Create(context.Background(), CreateRequest{
		StartTime: "2025-06-02T09:00:00Z",
		EndTime:   "2025-06-02T10:00:00Z",
		LeadName:  "Ada Lovelace",
	}, "agent-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if m.Title != "Meeting with Ada Lovelace" {
		t.Fatalf("title = %q", m.Title)
	}
}

func TestGetEnforcesOrganizerOrAdmin(t *testing.T) {
	svc := newMeetingService(t)
	ctx := context.Background()
	m, err := svc.Create(ctx, CreateRequest{
		Title:     "private",
		StartTime: "2025-06-02T09:00:00Z",
		EndTime:   "2025-06-02T10:00:00Z",
	}, "agent-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(ctx, m.ID, "agent-2", rbac.RoleAgent); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger get err = %v, want ErrForbidden", err)
	}
	if _, err := svc.Get(ctx, m.ID, "admin-1", rbac.RoleAdmin); err != nil {
		t.Fatalf("admin get: %v", err)
	}
	if _, err := svc.Get(ctx, "missing", "agent-1", rbac.RoleAgent); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing get err = %v, want ErrNotFound", err)
	}
}

func TestLayoutScopedToCaller(t *testing.T) {
	svc := newMeetingService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateRequest{
		Title:     "mine",
		StartTime: "2025-06-02T09:00:00Z",
		EndTime:   "2025-06-02T10:00:00Z",
	}, "agent-1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateRequest{
		Title:     "theirs",
		StartTime: "2025-06-02T11:00:00Z",
		EndTime:   "2025-06-02T12:00:00Z",
	}, "agent-2"); err != nil {
		t.Fatalf("create: %v", err)
	}

	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	mine, err := svc.Layout(ctx, "agent-1", rbac.RoleAgent, day)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if len(mine) != 1 || mine[0].Title != "mine" {
		t.Fatalf("agent layout = %v, want only own meeting", ids(mine))
	}

	all, err := svc.Layout(ctx, "admin-1", rbac.RoleAdmin, day)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("admin layout = %d entries, want 2", len(all))
	}
}
