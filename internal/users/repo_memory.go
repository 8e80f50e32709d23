package users

import (
	"context"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory user store for tests and early development.
type MemoryRepo struct {
	mu    sync.Mutex
	users map[string]User
	order []string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]User)}
}

func (r *MemoryRepo) Insert(ctx context.Context, u User) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		r.order = append(r.order, u.ID)
	}
	r.users[u.ID] = u
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (User, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		if strings.EqualFold(r.users[id].Email, email) {
			return r.users[id], nil
		}
	}
	return User{}, ErrNotFound
}

func (r *MemoryRepo) List(ctx context.Context) ([]User, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.users[id])
	}
	return out, nil
}

func (r *MemoryRepo) Update(ctx context.Context, u User) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return ErrNotFound
	}
	r.users[u.ID] = u
	return nil
}
