package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It is append-only; no Update/Delete methods are provided.

type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information.
//
// IMPORTANT:
// - Audit is internal-only. Do not expose these records to end users by default.
// - Callers should treat audit logging as best-effort.

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}
	if e.ActorUserID == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogLeadImport records a CSV lead import with its created/skipped counts.
func (s *Service) LogLeadImport(ctx context.Context, actorUserID, actorRole, ip string, created, skipped int) error {
	return s.Append(ctx, Event{
		Type:        EventTypeLeadImport,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		IPAddress:   ip,
		Message:     fmt.Sprintf("imported %d leads, skipped %d", created, skipped),
	})
}

// LogCampaignDelete records the removal of a campaign and its call history.
func (s *Service) LogCampaignDelete(ctx context.Context, actorUserID, actorRole, ip, campaignID string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeCampaignDelete,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		IPAddress:   ip,
		CampaignID:  campaignID,
		Message:     "campaign deleted",
	})
}

// LogTicketResolve records a support ticket being resolved or closed.
func (s *Service) LogTicketResolve(ctx context.Context, actorUserID, actorRole, ip, ticketID, status string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeTicketResolve,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		IPAddress:   ip,
		TicketID:    ticketID,
		Message:     "ticket moved to " + status,
	})
}

// LogMeetingCancel records a meeting cancellation.
func (s *Service) LogMeetingCancel(ctx context.Context, actorUserID, actorRole, ip, meetingID string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeMeetingCancel,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		IPAddress:   ip,
		MeetingID:   meetingID,
		Message:     "meeting cancelled",
	})
}
