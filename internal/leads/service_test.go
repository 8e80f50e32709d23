package leads

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"crm-platform/internal/rbac"
)

func fixedClock() time.Time { return time.Unix(1700000000, 0).UTC() }

func newTestService() (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	svc.clock = fixedClock
	return svc, repo
}

func TestCreate_RejectsClientRole(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Create(context.Background(), CreateRequest{FirstName: "A", LastName: "B"}, "u1", rbac.RoleClient)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCreate_DetectsDuplicateByEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateRequest{FirstName: "A", LastName: "B", Email: "a@b.com"}, "u1", rbac.RoleAgent); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(ctx, CreateRequest{FirstName: "C", LastName: "D", Email: "a@b.com"}, "u1", rbac.RoleAgent)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestList_ScopesNonAdminToOwnLeads(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateRequest{FirstName: "A", LastName: "B", Email: "a@b.com"}, "agent-1", rbac.RoleAgent); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateRequest{FirstName: "C", LastName: "D", Email: "c@d.com"}, "agent-2", rbac.RoleAgent); err != nil {
		t.Fatalf("create: %v", err)
	}

	mine, err := svc.List(ctx, "agent-1", rbac.RoleAgent, "", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 1 || mine[0].CreatedBy != "agent-1" {
		t.Fatalf("expected only agent-1 leads, got %+v", mine)
	}

	all, err := svc.List(ctx, "admin-1", rbac.RoleAdmin, "", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected admin to see 2 leads, got %d", len(all))
	}
}

func TestImportCSV_RequiresColumns(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.ImportCSV(context.Background(), strings.NewReader("first_name,last_name\nA,B\n"), "", "u1", rbac.RoleAgent)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestImportCSV_MixedRows(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	// Seed one lead so the duplicate row gets skipped.
	if _, err := svc.Create(ctx, CreateRequest{FirstName: "Ada", LastName: "L", Email: "ada@x.com"}, "u1", rbac.RoleAgent); err != nil {
		t.Fatalf("seed: %v", err)
	}

	csvBody := strings.Join([]string{
		"first_name,last_name,email,phone,status",
		"Ada,L,ada@x.com,,new",        // duplicate
		"Bob,M,bob@x.com,,nonsense",   // invalid status
		"Cyd,N,cyd@x.com,555-01,new",  // ok
		",Q,noname@x.com,,new",        // missing first name
	}, "\n")

	res, err := svc.ImportCSV(ctx, strings.NewReader(csvBody), "camp-1", "u1", rbac.RoleAgent)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Created != 1 {
		t.Fatalf("expected 1 created, got %d", res.Created)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Row != 2 {
		t.Fatalf("expected row 2 skipped as duplicate, got %+v", res.Skipped)
	}
	if len(res.Errors) != 2 {
		t.Fatalf("expected 2 row errors, got %+v", res.Errors)
	}
	if len(res.Leads) != 1 || res.Leads[0].CampaignID != "camp-1" {
		t.Fatalf("expected imported lead assigned to camp-1, got %+v", res.Leads)
	}
}

func TestImportCSV_RowCampaignWins(t *testing.T) {
	svc, _ := newTestService()

	csvBody := strings.Join([]string{
		"first_name,last_name,email,phone,status,campaign_id",
		"Eve,P,eve@x.com,,new,camp-own",
	}, "\n")

	res, err := svc.ImportCSV(context.Background(), strings.NewReader(csvBody), "camp-param", "u1", rbac.RoleAgent)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(res.Leads) != 1 || res.Leads[0].CampaignID != "camp-own" {
		t.Fatalf("expected row-level campaign_id to win, got %+v", res.Leads)
	}
}
