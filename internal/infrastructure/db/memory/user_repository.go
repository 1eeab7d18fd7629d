package memory

import (
	"context"
	"sync"

	"github.com/bookshelf/library-api/internal/core/domain"
	"github.com/bookshelf/library-api/internal/core/ports"
)

type UserRepository struct {
	mu     sync.RWMutex
	rows   map[int64]*domain.User
	nextID int64
}

func NewUserRepository() *UserRepository {
	return &UserRepository{rows: make(map[int64]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	if u.Email != nil {
		email := *u.Email
		c.Email = &email
	}
	if u.FullName != nil {
		name := *u.FullName
		c.FullName = &name
	}
	return &c
}

// uniqueness must be called with mu held.
func (r *UserRepository) uniqueness(u *domain.User) error {
	for id, existing := range r.rows {
		if id == u.ID {
			continue
		}
		if existing.Username == u.Username {
			return domain.NewConflict("user", "username", u.Username)
		}
		if u.Email != nil && existing.Email != nil && *existing.Email == *u.Email {
			return domain.NewConflict("user", "email", *u.Email)
		}
	}
	return nil
}

func (r *UserRepository) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row := cloneUser(u)
	row.ID = 0
	if err := r.uniqueness(row); err != nil {
		return nil, err
	}
	r.nextID++
	row.ID = r.nextID
	r.rows[row.ID] = row
	return cloneUser(row), nil
}

func (r *UserRepository) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.rows[id]
	if !ok {
		return nil, domain.NewNotFound("user", id)
	}
	return cloneUser(u), nil
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.rows {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.NewNotFound("user", username)
}

func (r *UserRepository) List(_ context.Context, f ports.ListFilter) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.User{}
	for _, id := range page(r.rows, f) {
		out = append(out, cloneUser(r.rows[id]))
	}
	return out, nil
}

func (r *UserRepository) Update(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rows[u.ID]
	if !ok {
		return nil, domain.NewNotFound("user", u.ID)
	}
	if err := r.uniqueness(u); err != nil {
		return nil, err
	}
	row := cloneUser(u)
	row.CreatedAt = existing.CreatedAt
	r.rows[u.ID] = row
	return cloneUser(row), nil
}

func (r *UserRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return domain.NewNotFound("user", id)
	}
	delete(r.rows, id)
	return nil
}
