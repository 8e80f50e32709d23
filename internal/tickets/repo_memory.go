package tickets

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory ticket store for tests and early development.
type MemoryRepo struct {
	mu      sync.Mutex
	tickets map[string]Ticket
	order   []string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{tickets: make(map[string]Ticket)}
}

func (r *MemoryRepo) Insert(ctx context.Context, t Ticket) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[t.ID]; !ok {
		r.order = append(r.order, t.ID)
	}
	r.tickets[t.ID] = t
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Ticket, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return Ticket{}, ErrNotFound
	}
	return t, nil
}

func (r *MemoryRepo) List(ctx context.Context, visibleTo string) ([]Ticket, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Ticket, 0, len(r.order))
	for _, id := range r.order {
		t := r.tickets[id]
		if visibleTo != "" && t.CreatedBy != visibleTo && t.AssignedTo != visibleTo {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *MemoryRepo) Update(ctx context.Context, t Ticket) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[t.ID]; !ok {
		return ErrNotFound
	}
	r.tickets[t.ID] = t
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return ErrNotFound
	}
	delete(r.tickets, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
