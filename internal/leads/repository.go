package leads

import "context"

// Repository is the persistence contract for leads.
//
// Implementations must treat (email, phone) duplicate detection as a single
// lookup so CSV imports cannot race themselves into duplicates.
type Repository interface {
	Insert(ctx context.Context, l Lead) error
	Get(ctx context.Context, id string) (Lead, error)
	List(ctx context.Context, f ListFilter) ([]Lead, error)
	Update(ctx context.Context, l Lead) error
	Delete(ctx context.Context, id string) error

	// FindDuplicate returns a lead matching the given email or phone.
	// Empty arguments never match.
	FindDuplicate(ctx context.Context, email, phone string) (Lead, bool, error)
}

// ListFilter narrows List results. Zero values mean "no restriction".
type ListFilter struct {
	// VisibleTo restricts results to leads the user created or is assigned.
	VisibleTo  string
	CampaignID string
	Status     LeadStatus
}
