package leads

import (
	"context"
	"sync"
)

// MemoryRepo is a simple in-memory repository useful for tests and early development.
//
// NOTE: This is not intended for production; use the Postgres implementation.
type MemoryRepo struct {
	mu    sync.Mutex
	rows  map[string]Lead
	order []string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: make(map[string]Lead)}
}

func (r *MemoryRepo) Insert(ctx context.Context, l Lead) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[l.ID]; !ok {
		r.order = append(r.order, l.ID)
	}
	r.rows[l.ID] = l
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Lead, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.rows[id]
	if !ok {
		return Lead{}, ErrNotFound
	}
	return l, nil
}

func (r *MemoryRepo) List(ctx context.Context, f ListFilter) ([]Lead, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Lead, 0, len(r.order))
	for _, id := range r.order {
		l := r.rows[id]
		if f.VisibleTo != "" && l.CreatedBy != f.VisibleTo && l.AssignedTo != f.VisibleTo {
			continue
		}
		if f.CampaignID != "" && l.CampaignID != f.CampaignID {
			continue
		}
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *MemoryRepo) Update(ctx context.Context, l Lead) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[l.ID]; !ok {
		return ErrNotFound
	}
	r.rows[l.ID] = l
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return ErrNotFound
	}
	delete(r.rows, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryRepo) FindDuplicate(ctx context.Context, email, phone string) (Lead, bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		l := r.rows[id]
		if email != "" && l.Email == email {
			return l, true, nil
		}
		if phone != "" && l.Phone == phone {
			return l, true, nil
		}
	}
	return Lead{}, false, nil
}
