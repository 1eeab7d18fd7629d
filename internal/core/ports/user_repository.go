package ports

import (
	"context"

	"github.com/bookshelf/library-api/internal/core/domain"
)

// ListFilter carries pagination for list queries. Results are ordered by id.
type ListFilter struct {
	Offset int
	Limit  int
}

// UserRepository is the credential store. Implementations return
// *domain.NotFoundError for missing rows and *domain.ConflictError when a
// unique constraint (username, email) is violated.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.User, error)
	// Update writes every mutable field of user, keyed by user.ID.
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}
