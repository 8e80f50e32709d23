package campaigns

import (
	"context"
	"errors"
	"testing"
	"time"

	"crm-platform/internal/leads"
	"crm-platform/internal/rbac"
)

func newTestService(t *testing.T) (*Service, *MemoryRepo, *leads.MemoryRepo, *time.Time) {
	t.Helper()
	repo := NewMemoryRepo()
	leadRepo := leads.NewMemoryRepo()
	svc := NewService(repo, leadRepo, Policy{DefaultMaxAttempts: 3, RetryDelay: time.Hour})
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	svc.clock = func() time.Time { return now }
	return svc, repo, leadRepo, &now
}

func seedLead(t *testing.T, leadRepo *leads.MemoryRepo, id string) {
	t.Helper()
	err := leadRepo.Insert(context.Background(), leads.Lead{
		ID:        id,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Phone:     "+15550100",
		Status:    leads.LeadStatusReady,
		CreatedBy: "agent-1",
	})
	if err != nil {
		t.Fatalf("seed lead: %v", err)
	}
}

func createCampaignWithLead(t *testing.T, svc *Service, leadRepo *leads.MemoryRepo) Campaign {
	t.Helper()
	seedLead(t, leadRepo, "lead-1")
	c, err := svc.Create(context.Background(), CreateRequest{
		Name:    "Q3 outreach",
		LeadIDs: []string{"lead-1"},
	}, "agent-1", rbac.RoleAgent)
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	return c
}

func TestStartAgentMarksLeadInProgress(t *testing.T) {
	svc, repo, leadRepo, _ := newTestService(t)
	c := createCampaignWithLead(t, svc, leadRepo)

	resp, err := svc.StartAgent(context.Background(), c.ID, "agent-1", rbac.RoleAgent)
	if err != nil {
		t.Fatalf("StartAgent: %v", err)
	}
	if resp.Lead.ID != "lead-1" {
		t.Fatalf("lead = %q, want lead-1", resp.Lead.ID)
	}
	if resp.CampaignLead.Status != CampaignLeadStatusInProgress {
		t.Fatalf("status = %q, want in_progress", resp.CampaignLead.Status)
	}
	if resp.Message != "Next lead ready for contact" {
		t.Fatalf("unexpected message %q", resp.Message)
	}

	stored, err := repo.GetCampaignLead(context.Background(), resp.CampaignLead.ID)
	if err != nil {
		t.Fatalf("GetCampaignLead: %v", err)
	}
	if stored.Status != CampaignLeadStatusInProgress {
		t.Fatalf("stored status = %q, want in_progress", stored.Status)
	}
}

func TestStartAgentRequiresAgentRole(t *testing.T) {
	svc, _, leadRepo, _ := newTestService(t)
	c := createCampaignWithLead(t, svc, leadRepo)

	if _, err := svc.StartAgent(context.Background(), c.ID, "admin-1", rbac.RoleAdmin); !errors.Is(err, ErrForbidden) {
		t.Fatalf("admin start err = %v, want ErrForbidden", err)
	}
}

func TestStartAgentNoLeadsAvailable(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	c, err := svc.Create(context.Background(), CreateRequest{Name: "empty"}, "agent-1", rbac.RoleAgent)
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	if _, err := svc.StartAgent(context.Background(), c.ID, "agent-1", rbac.RoleAgent); !errors.Is(err, ErrNoLeadsAvailable) {
		t.Fatalf("err = %v, want ErrNoLeadsAvailable", err)
	}
}

func TestLogCallAnsweredCompletesLead(t *testing.T) {
	svc, repo, leadRepo, _ := newTestService(t)
	c := createCampaignWithLead(t, svc, leadRepo)

	resp, err := svc.StartAgent(context.Background(), c.ID, "agent-1", rbac.RoleAgent)
	if err != nil {
		t.Fatalf("StartAgent: %v", err)
	}

	log, cl, err := svc.LogCall(context.Background(), LogCallRequest{
		CampaignLeadID:  resp.CampaignLead.ID,
		Outcome:         CallOutcomeAnswered,
		DurationSeconds: 95,
		Notes:           "booked a demo",
	}, "agent-1", rbac.RoleAgent)
	if err != nil {
		t.Fatalf("LogCall: %v", err)
	}
	if cl.Status != CampaignLeadStatusCompleted {
		t.Fatalf("status = %q, want completed", cl.Status)
	}
	if cl.AttemptsMade != 1 {
		t.Fatalf("attempts = %d, want 1", cl.AttemptsMade)
	}
	if cl.NextAttemptAt != nil {
		t.Fatalf("completed lead must not be scheduled for retry")
	}
	if log.DurationSeconds != 95 || log.Outcome != CallOutcomeAnswered {
		t.Fatalf("unexpected log %+v", log)
	}

	updated, err := repo.GetCampaign(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("GetCampaign: %v", err)
	}
	if updated.CompletedLeads != 1 {
		t.Fatalf("completed_leads = %d, want 1", updated.CompletedLeads)
	}
}

func TestLogCallUnansweredSchedulesRetry(t *testing.T) {
	svc, _, leadRepo, now := newTestService(t)
	c := createCampaignWithLead(t, svc, leadRepo)

	resp, err := svc.StartAgent(context.Background(), c.ID, "agent-1", rbac.RoleAgent)
	if err != nil {
		t.Fatalf("StartAgent: %v", err)
	}

	_, cl, err := svc.LogCall(context.Background(), LogCallRequest{
		CampaignLeadID: resp.CampaignLead.ID,
		Outcome:        CallOutcomeNoAnswer,
	}, "agent-1", rbac.RoleAgent)
	if err != nil {
		t.Fatalf("LogCall: %v", err)
	}
	if cl.Status != CampaignLeadStatusPending {
		t.Fatalf("status = %q, want pending", cl.Status)
	}
	if cl.NextAttemptAt == nil || !cl.NextAttemptAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("next_attempt_at = %v, want %v", cl.NextAttemptAt, now.Add(time.Hour))
	}

	// Gated until the retry delay elapses.
	if _, err := svc.StartAgent(context.Background(), c.ID, "agent-1", rbac.RoleAgent); !errors.Is(err, ErrNoLeadsAvailable) {
		t.Fatalf("err before retry window = %v, want ErrNoLeadsAvailable", err)
	}

	*now = now.Add(time.Hour)
	resp2, err := svc.StartAgent(context.Background(), c.ID, "agent-1", rbac.RoleAgent)
	if err != nil {
		t.Fatalf("StartAgent after retry window: %v", err)
	}
	if resp2.CampaignLead.AttemptsMade != 1 {
		t.Fatalf("attempts = %d, want 1", resp2.CampaignLead.AttemptsMade)
	}
}

func TestLogCallExhaustsAttempts(t *testing.T) {
	svc, repo, leadRepo, now := newTestService(t)
	c := createCampaignWithLead(t, svc, leadRepo)

	var last CampaignLead
	for i := 0; i < 3; i++ {
		resp, err := svc.StartAgent(context.Background(), c.ID, "agent-1", rbac.RoleAgent)
		if err != nil {
			t.Fatalf("StartAgent attempt %d: %v", i+1, err)
		}
		_, last, err = svc.LogCall(context.Background(), LogCallRequest{
			CampaignLeadID: resp.CampaignLead.ID,
			Outcome:        CallOutcomeBusy,
		}, "agent-1", rbac.RoleAgent)
		if err != nil {
			t.Fatalf("LogCall attempt %d: %v", i+1, err)
		}
		*now = now.Add(2 * time.Hour)
	}

	if last.Status != CampaignLeadStatusFailed {
		t.Fatalf("status = %q, want failed", last.Status)
	}
	if last.AttemptsMade != last.MaxAttempts {
		t.Fatalf("attempts = %d, max = %d; must be equal at exhaustion", last.AttemptsMade, last.MaxAttempts)
	}
	if last.NextAttemptAt != nil {
		t.Fatalf("failed lead must not be scheduled for retry")
	}

	// The failed lead is never offered again.
	if _, err := svc.StartAgent(context.Background(), c.ID, "agent-1", rbac.RoleAgent); !errors.Is(err, ErrNoLeadsAvailable) {
		t.Fatalf("err after exhaustion = %v, want ErrNoLeadsAvailable", err)
	}
	if got := len(repo.CallLogs()); got != 3 {
		t.Fatalf("call logs = %d, want 3", got)
	}
}

func TestLogCallRejectsInvalidInput(t *testing.T) {
	svc, _, leadRepo, _ := newTestService(t)
	createCampaignWithLead(t, svc, leadRepo)

	cases := []LogCallRequest{
		{CampaignLeadID: "", Outcome: CallOutcomeBusy},
		{CampaignLeadID: "x", Outcome: "shouted"},
		{CampaignLeadID: "x", Outcome: CallOutcomeBusy, DurationSeconds: -1},
	}
	for _, req := range cases {
		if _, _, err := svc.LogCall(context.Background(), req, "agent-1", rbac.RoleAgent); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("req %+v err = %v, want ErrInvalidArgument", req, err)
		}
	}

	if _, _, err := svc.LogCall(context.Background(), LogCallRequest{
		CampaignLeadID: "missing", Outcome: CallOutcomeBusy,
	}, "agent-1", rbac.RoleAgent); !errors.Is(err, ErrCampaignLeadNotFound) {
		t.Fatalf("err = %v, want ErrCampaignLeadNotFound", err)
	}
}

func TestDeleteBlockedWhileCallsInProgress(t *testing.T) {
	svc, _, leadRepo, _ := newTestService(t)
	c := createCampaignWithLead(t, svc, leadRepo)

	resp, err := svc.StartAgent(context.Background(), c.ID, "agent-1", rbac.RoleAgent)
	if err != nil {
		t.Fatalf("StartAgent: %v", err)
	}

	if err := svc.Delete(context.Background(), c.ID, "agent-1", rbac.RoleAgent); !errors.Is(err, ErrCallsInProgress) {
		t.Fatalf("delete err = %v, want ErrCallsInProgress", err)
	}

	if _, _, err := svc.LogCall(context.Background(), LogCallRequest{
		CampaignLeadID: resp.CampaignLead.ID,
		Outcome:        CallOutcomeAnswered,
	}, "agent-1", rbac.RoleAgent); err != nil {
		t.Fatalf("LogCall: %v", err)
	}
	if err := svc.Delete(context.Background(), c.ID, "agent-1", rbac.RoleAgent); err != nil {
		t.Fatalf("delete after completion: %v", err)
	}
}

func TestListScopedToCreator(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	if _, err := svc.Create(context.Background(), CreateRequest{Name: "mine"}, "agent-1", rbac.RoleAgent); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateRequest{Name: "theirs"}, "agent-2", rbac.RoleAgent); err != nil {
		t.Fatalf("create: %v", err)
	}

	mine, err := svc.List(context.Background(), "agent-1", rbac.RoleAgent)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 1 || mine[0].Name != "mine" {
		t.Fatalf("agent list = %+v, want only own campaign", mine)
	}

	all, err := svc.List(context.Background(), "admin-1", rbac.RoleAdmin)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("admin list = %d campaigns, want 2", len(all))
	}
}

func TestUpdateRequiresCreatorOrAdmin(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	c, err := svc.Create(context.Background(), CreateRequest{Name: "mine"}, "agent-1", rbac.RoleAgent)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "renamed"
	if _, err := svc.Update(context.Background(), c.ID, UpdateRequest{Name: &name}, "agent-2", rbac.RoleAgent); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger update err = %v, want ErrForbidden", err)
	}
	if _, err := svc.Update(context.Background(), c.ID, UpdateRequest{Name: &name}, "admin-1", rbac.RoleAdmin); err != nil {
		t.Fatalf("admin update: %v", err)
	}
}

func TestStats(t *testing.T) {
	svc, _, leadRepo, _ := newTestService(t)
	seedLead(t, leadRepo, "lead-1")
	seedLead(t, leadRepo, "lead-2")
	c, err := svc.Create(context.Background(), CreateRequest{
		Name:    "stats",
		LeadIDs: []string{"lead-1", "lead-2"},
	}, "agent-1", rbac.RoleAgent)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	resp, err := svc.StartAgent(context.Background(), c.ID, "agent-1", rbac.RoleAgent)
	if err != nil {
		t.Fatalf("StartAgent: %v", err)
	}
	if _, _, err := svc.LogCall(context.Background(), LogCallRequest{
		CampaignLeadID: resp.CampaignLead.ID,
		Outcome:        CallOutcomeAnswered,
	}, "agent-1", rbac.RoleAgent); err != nil {
		t.Fatalf("LogCall: %v", err)
	}

	stats, err := svc.Stats(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := Stats{
		CampaignID:     c.ID,
		TotalLeads:     2,
		PendingLeads:   1,
		CompletedLeads: 1,
		TotalCalls:     1,
	}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
}
