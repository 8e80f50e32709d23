package tickets

import "context"

// Repository is the persistence contract for support tickets.
type Repository interface {
	Insert(ctx context.Context, t Ticket) error
	Get(ctx context.Context, id string) (Ticket, error)

	// List returns all tickets when visibleTo is empty, otherwise those
	// created by or assigned to that user.
	List(ctx context.Context, visibleTo string) ([]Ticket, error)

	Update(ctx context.Context, t Ticket) error
	Delete(ctx context.Context, id string) error
}
