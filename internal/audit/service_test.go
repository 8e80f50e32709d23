package audit

import (
	"context"
	"testing"
)

func TestService_AppendRequiresTypeAndActor(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.Append(context.Background(), Event{ActorUserID: "u"}); err == nil {
		t.Fatalf("expected error")
	}
	if err := svc.Append(context.Background(), Event{Type: EventTypeLeadImport}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestService_AppendsImmutableEvents(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.LogLeadImport(context.Background(), "u", "admin", "1.2.3.4", 10, 2); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := svc.LogCampaignDelete(context.Background(), "u", "agent", "1.2.3.4", "camp-1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	evs := repo.Events()
	if len(evs) != 2 {
		t.Fatalf("expected 2 events")
	}
	if evs[0].IPAddress != "1.2.3.4" {
		t.Fatalf("expected ip captured")
	}
	if evs[0].Type != EventTypeLeadImport {
		t.Fatalf("expected lead_import")
	}
	if evs[1].CampaignID != "camp-1" {
		t.Fatalf("expected campaign target captured")
	}
}
