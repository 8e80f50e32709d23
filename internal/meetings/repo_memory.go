package meetings

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory repository for tests and early development.
type MemoryRepo struct {
	mu       sync.Mutex
	meetings map[string]Meeting
	order    []string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{meetings: make(map[string]Meeting)}
}

func (r *MemoryRepo) Insert(ctx context.Context, m Meeting) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.meetings[m.ID]; !ok {
		r.order = append(r.order, m.ID)
	}
	r.meetings[m.ID] = m
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Meeting, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meetings[id]
	if !ok {
		return Meeting{}, ErrNotFound
	}
	return m, nil
}

func (r *MemoryRepo) List(ctx context.Context, visibleTo string) ([]Meeting, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Meeting, 0, len(r.order))
	for _, id := range r.order {
		m := r.meetings[id]
		if visibleTo != "" && m.OrganizerID != visibleTo {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *MemoryRepo) Update(ctx context.Context, m Meeting) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.meetings[m.ID]; !ok {
		return ErrNotFound
	}
	r.meetings[m.ID] = m
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.meetings[id]; !ok {
		return ErrNotFound
	}
	delete(r.meetings, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryRepo) FindConflict(ctx context.Context, organizerID, startTime, endTime, excludeID string) (Meeting, bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		m := r.meetings[id]
		if m.ID == excludeID || m.OrganizerID != organizerID {
			continue
		}
		if m.Status == MeetingStatusCancelled {
			continue
		}
		// ISO-8601 strings in the same offset compare correctly as text.
		if m.StartTime < endTime && m.EndTime > startTime {
			return m, true, nil
		}
	}
	return Meeting{}, false, nil
}
