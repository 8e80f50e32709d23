package leads

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"crm-platform/internal/rbac"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("lead not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrForbidden       = errors.New("not authorized")
	ErrDuplicate       = errors.New("duplicate lead")
)

// Service provides lead management.
//
// Visibility contract:
// - admin sees every lead
// - agents and clients see leads they created or are assigned to
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

type CreateRequest struct {
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Phone      string     `json:"phone,omitempty"`
	Email      string     `json:"email,omitempty"`
	Source     string     `json:"source,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	Status     LeadStatus `json:"status,omitempty"`
	AssignedTo string     `json:"assigned_to,omitempty"`
	CampaignID string     `json:"campaign_id,omitempty"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest, userID, role string) (Lead, error) {
	if role != rbac.RoleAdmin && role != rbac.RoleAgent {
		return Lead{}, ErrForbidden
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return Lead{}, ErrInvalidArgument
	}
	if req.Status == "" {
		req.Status = LeadStatusNew
	}
	if !IsValidLeadStatus(req.Status) {
		return Lead{}, ErrInvalidArgument
	}

	if _, dup, err := s.repo.FindDuplicate(ctx, req.Email, req.Phone); err != nil {
		return Lead{}, err
	} else if dup {
		return Lead{}, ErrDuplicate
	}

	now := s.clock().UTC()
	l := Lead{
		ID:         uuid.NewString(),
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		Phone:      strings.TrimSpace(req.Phone),
		Email:      strings.TrimSpace(req.Email),
		Source:     req.Source,
		Notes:      req.Notes,
		Status:     req.Status,
		AssignedTo: req.AssignedTo,
		CampaignID: req.CampaignID,
		CreatedBy:  userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Insert(ctx, l); err != nil {
		return Lead{}, err
	}
	return l, nil
}

func (s *Service) Get(ctx context.Context, id, userID, role string) (Lead, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return Lead{}, err
	}
	if !canSee(l, userID, role) {
		return Lead{}, ErrForbidden
	}
	return l, nil
}

func (s *Service) List(ctx context.Context, userID, role string, campaignID string, status LeadStatus) ([]Lead, error) {
	f := ListFilter{CampaignID: campaignID, Status: status}
	if role != rbac.RoleAdmin {
		f.VisibleTo = userID
	}
	return s.repo.List(ctx, f)
}

type UpdateRequest struct {
	FirstName  *string     `json:"first_name,omitempty"`
	LastName   *string     `json:"last_name,omitempty"`
	Phone      *string     `json:"phone,omitempty"`
	Email      *string     `json:"email,omitempty"`
	Source     *string     `json:"source,omitempty"`
	Notes      *string     `json:"notes,omitempty"`
	Status     *LeadStatus `json:"status,omitempty"`
	AssignedTo *string     `json:"assigned_to,omitempty"`
	CampaignID *string     `json:"campaign_id,omitempty"`
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest, userID, role string) (Lead, error) {
	if role != rbac.RoleAdmin && role != rbac.RoleAgent {
		return Lead{}, ErrForbidden
	}
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return Lead{}, err
	}
	if role != rbac.RoleAdmin && !canSee(l, userID, role) {
		return Lead{}, ErrForbidden
	}

	if req.FirstName != nil {
		l.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		l.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		l.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		l.Email = strings.TrimSpace(*req.Email)
	}
	if req.Source != nil {
		l.Source = *req.Source
	}
	if req.Notes != nil {
		l.Notes = *req.Notes
	}
	if req.Status != nil {
		if !IsValidLeadStatus(*req.Status) {
			return Lead{}, ErrInvalidArgument
		}
		l.Status = *req.Status
	}
	if req.AssignedTo != nil {
		l.AssignedTo = *req.AssignedTo
	}
	if req.CampaignID != nil {
		l.CampaignID = *req.CampaignID
	}
	if l.FirstName == "" || l.LastName == "" {
		return Lead{}, ErrInvalidArgument
	}

	l.UpdatedAt = s.clock().UTC()
	if err := s.repo.Update(ctx, l); err != nil {
		return Lead{}, err
	}
	return l, nil
}

func (s *Service) Delete(ctx context.Context, id, userID, role string) error {
	if role != rbac.RoleAdmin && role != rbac.RoleAgent {
		return ErrForbidden
	}
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if role != rbac.RoleAdmin && l.CreatedBy != userID {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

func canSee(l Lead, userID, role string) bool {
	if role == rbac.RoleAdmin {
		return true
	}
	return l.CreatedBy == userID || l.AssignedTo == userID
}

/* ===================== CSV IMPORT ===================== */

// ImportResult summarizes one CSV upload. Bad rows never abort the batch;
// they are reported per row instead.
type ImportResult struct {
	Created int          `json:"created"`
	Skipped []SkippedRow `json:"skipped"`
	Errors  []string     `json:"errors"`
	Leads   []Lead       `json:"-"`
}

type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

var requiredCSVColumns = []string{"first_name", "last_name", "email", "phone", "status"}

// ImportCSV reads leads from a CSV stream and inserts the valid ones.
// campaignID applies to rows that do not carry their own campaign_id column.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader, campaignID, userID, role string) (ImportResult, error) {
	if role != rbac.RoleAdmin && role != rbac.RoleAgent {
		return ImportResult{}, ErrForbidden
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: unreadable CSV header", ErrInvalidArgument)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, want := range requiredCSVColumns {
		if _, ok := col[want]; !ok {
			return ImportResult{}, fmt.Errorf("%w: CSV must contain columns: %s",
				ErrInvalidArgument, strings.Join(requiredCSVColumns, ", "))
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := ImportResult{}
	// Row numbering starts at 2: row 1 is the header.
	for rowNum := 2; ; rowNum++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			out.Errors = append(out.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}

		status := LeadStatus(strings.ToLower(field(row, "status")))
		if status == "" {
			status = LeadStatusNew
		}
		if !IsValidLeadStatus(status) {
			out.Errors = append(out.Errors, fmt.Sprintf("Row %d: invalid status %q", rowNum, field(row, "status")))
			continue
		}
		first := field(row, "first_name")
		last := field(row, "last_name")
		if first == "" || last == "" {
			out.Errors = append(out.Errors, fmt.Sprintf("Row %d: first_name and last_name are required", rowNum))
			continue
		}

		email := field(row, "email")
		phone := field(row, "phone")
		if _, dup, err := s.repo.FindDuplicate(ctx, email, phone); err != nil {
			return out, err
		} else if dup {
			ident := email
			if ident == "" {
				ident = phone
			}
			out.Skipped = append(out.Skipped, SkippedRow{Row: rowNum, Reason: "duplicate: " + ident})
			continue
		}

		rowCampaign := field(row, "campaign_id")
		if rowCampaign == "" {
			rowCampaign = campaignID
		}

		now := s.clock().UTC()
		l := Lead{
			ID:         uuid.NewString(),
			FirstName:  first,
			LastName:   last,
			Phone:      phone,
			Email:      email,
			Source:     field(row, "source"),
			Notes:      field(row, "notes"),
			Status:     status,
			CampaignID: rowCampaign,
			CreatedBy:  userID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.repo.Insert(ctx, l); err != nil {
			out.Errors = append(out.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		out.Created++
		out.Leads = append(out.Leads, l)
	}
	return out, nil
}
