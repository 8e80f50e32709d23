package tickets

import (
	"context"
	"errors"
	"testing"
	"time"

	"crm-platform/internal/rbac"
)

func newTicketService(t *testing.T) (*Service, *time.Time) {
	t.Helper()
	svc := NewService(NewMemoryRepo())
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	svc.clock = func() time.Time { return now }
	return svc, &now
}

func TestCreateDefaultsToOpenMediumPriority(t *testing.T) {
	svc, _ := newTicketService(t)
	tk, err := svc.Create(context.Background(), CreateRequest{
		Title:       "Cannot log in",
		Description: "Password reset link never arrives.",
	}, "client-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tk.Status != TicketStatusOpen || tk.Priority != TicketPriorityMedium {
		t.Fatalf("defaults = %s/%s, want open/medium", tk.Status, tk.Priority)
	}
	if tk.CreatedBy != "client-1" {
		t.Fatalf("created_by = %q", tk.CreatedBy)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTicketService(t)
	cases := []CreateRequest{
		{Title: "", Description: "d"},
		{Title: "t", Description: ""},
		{Title: "t", Description: "d", Priority: "critical"},
	}
	for _, req := range cases {
		if _, err := svc.Create(context.Background(), req, "client-1"); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("req %+v err = %v, want ErrInvalidArgument", req, err)
		}
	}
}

func TestClientsOnlySeeTheirOwnTickets(t *testing.T) {
	svc, _ := newTicketService(t)
	ctx := context.Background()
	mine, err := svc.Create(ctx, CreateRequest{Title: "mine", Description: "d"}, "client-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateRequest{Title: "theirs", Description: "d"}, "client-2"); err != nil {
		t.Fatalf("create: %v", err)
	}

	visible, err := svc.List(ctx, "client-1", rbac.RoleClient)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != mine.ID {
		t.Fatalf("client list = %d tickets, want only their own", len(visible))
	}

	all, err := svc.List(ctx, "agent-1", rbac.RoleAgent)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("agent list = %d tickets, want 2", len(all))
	}

	if _, err := svc.Get(ctx, mine.ID, "client-2", rbac.RoleClient); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger get err = %v, want ErrForbidden", err)
	}
}

func TestResolvedAtStampedOnce(t *testing.T) {
	svc, now := newTicketService(t)
	ctx := context.Background()
	tk, err := svc.Create(ctx, CreateRequest{Title: "t", Description: "d"}, "client-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	resolved := TicketStatusResolved
	tk, err = svc.Update(ctx, tk.ID, UpdateRequest{Status: &resolved}, "agent-1", rbac.RoleAgent)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if tk.ResolvedAt == nil || !tk.ResolvedAt.Equal(*now) {
		t.Fatalf("resolved_at = %v, want %v", tk.ResolvedAt, now)
	}
	firstStamp := *tk.ResolvedAt

	// Reopen and resolve again later; the original stamp survives.
	*now = now.Add(2 * time.Hour)
	open := TicketStatusOpen
	if _, err := svc.Update(ctx, tk.ID, UpdateRequest{Status: &open}, "agent-1", rbac.RoleAgent); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	tk, err = svc.Update(ctx, tk.ID, UpdateRequest{Status: &resolved}, "agent-1", rbac.RoleAgent)
	if err != nil {
		t.Fatalf("re-resolve: %v", err)
	}
	if !tk.ResolvedAt.Equal(firstStamp) {
		t.Fatalf("resolved_at overwritten: %v, want %v", tk.ResolvedAt, firstStamp)
	}
}

func TestDeleteIsAdminOnly(t *testing.T) {
	svc, _ := newTicketService(t)
	ctx := context.Background()
	tk, err := svc.Create(ctx, CreateRequest{Title: "t", Description: "d"}, "client-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, tk.ID, rbac.RoleAgent); !errors.Is(err, ErrForbidden) {
		t.Fatalf("agent delete err = %v, want ErrForbidden", err)
	}
	if err := svc.Delete(ctx, tk.ID, rbac.RoleAdmin); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
}

func TestStatsAdminOnly(t *testing.T) {
	svc, _ := newTicketService(t)
	ctx := context.Background()
	if _, err := svc.Create(ctx, CreateRequest{Title: "a", Description: "d"}, "client-1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	tk, err := svc.Create(ctx, CreateRequest{Title: "b", Description: "d"}, "client-2")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	resolved := TicketStatusResolved
	if _, err := svc.Update(ctx, tk.ID, UpdateRequest{Status: &resolved}, "agent-1", rbac.RoleAgent); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if _, err := svc.Stats(ctx, rbac.RoleAgent); !errors.Is(err, ErrForbidden) {
		t.Fatalf("agent stats err = %v, want ErrForbidden", err)
	}
	stats, err := svc.Stats(ctx, rbac.RoleAdmin)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 2 || stats.Open != 1 || stats.Resolved != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}
