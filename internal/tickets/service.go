package tickets

import (
	"context"
	"errors"
	"strings"
	"time"

	"crm-platform/internal/rbac"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("ticket not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrForbidden       = errors.New("not authorized")
)

// Service owns ticket access rules: clients only ever touch their own
// tickets, deletion is admin-only, and resolved_at is stamped exactly once.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

type CreateRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    TicketPriority `json:"priority,omitempty"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest, userID string) (Ticket, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
		return Ticket{}, ErrInvalidArgument
	}
	priority := req.Priority
	if priority == "" {
		priority = TicketPriorityMedium
	}
	if !IsValidPriority(priority) {
		return Ticket{}, ErrInvalidArgument
	}

	now := s.clock().UTC()
	t := Ticket{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Priority:    priority,
		Status:      TicketStatusOpen,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, t); err != nil {
		return Ticket{}, err
	}
	return t, nil
}

// List scopes results by role: clients see tickets they created or are
// assigned to, agents and admins see everything.
func (s *Service) List(ctx context.Context, userID, role string) ([]Ticket, error) {
	visibleTo := ""
	if role == rbac.RoleClient {
		visibleTo = userID
	}
	return s.repo.List(ctx, visibleTo)
}

func (s *Service) Get(ctx context.Context, id, userID, role string) (Ticket, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return Ticket{}, err
	}
	if role == rbac.RoleClient && t.CreatedBy != userID {
		return Ticket{}, ErrForbidden
	}
	return t, nil
}

type UpdateRequest struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	Priority    *TicketPriority `json:"priority,omitempty"`
	Status      *TicketStatus   `json:"status,omitempty"`
	AssignedTo  *string         `json:"assigned_to,omitempty"`
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest, userID, role string) (Ticket, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return Ticket{}, err
	}
	if role == rbac.RoleClient && t.CreatedBy != userID {
		return Ticket{}, ErrForbidden
	}

	now := s.clock().UTC()
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return Ticket{}, ErrInvalidArgument
		}
		t.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Priority != nil {
		if !IsValidPriority(*req.Priority) {
			return Ticket{}, ErrInvalidArgument
		}
		t.Priority = *req.Priority
	}
	if req.AssignedTo != nil {
		t.AssignedTo = *req.AssignedTo
	}
	if req.Status != nil {
		if !IsValidStatus(*req.Status) {
			return Ticket{}, ErrInvalidArgument
		}
		// First transition into resolved stamps resolved_at; it is never
		// overwritten by later status churn.
		if *req.Status == TicketStatusResolved && t.Status != TicketStatusResolved && t.ResolvedAt == nil {
			t.ResolvedAt = &now
		}
		t.Status = *req.Status
	}

	t.UpdatedAt = now
	if err := s.repo.Update(ctx, t); err != nil {
		return Ticket{}, err
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, id, role string) error {
	if !rbac.IsAdmin(role) {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

// Stats is admin-only.
func (s *Service) Stats(ctx context.Context, role string) (Stats, error) {
	if !rbac.IsAdmin(role) {
		return Stats{}, ErrForbidden
	}
	rows, err := s.repo.List(ctx, "")
	if err != nil {
		return Stats{}, err
	}
	var out Stats
	for _, t := range rows {
		out.Total++
		switch t.Status {
		case TicketStatusOpen:
			out.Open++
		case TicketStatusInProgress:
			out.InProgress++
		case TicketStatusResolved:
			out.Resolved++
		case TicketStatusClosed:
			out.Closed++
		}
	}
	return out, nil
}
