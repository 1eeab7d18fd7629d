package ports

import (
	"context"

	"github.com/bookshelf/library-api/internal/core/domain"
)

// CreateUserInput carries registration data. Password is plaintext and is
// hashed by the service.
type CreateUserInput struct {
	Username string
	Password string
	Email    *string
	FullName *string
}

// UpdateUserInput is a partial update: nil fields are left unchanged.
// ClearEmail removes the stored email and wins over Email.
type UpdateUserInput struct {
	Username   *string
	Password   *string
	Email      *string
	ClearEmail bool
	FullName   *string
	Disabled   *bool
}

// UserService defines use-case operations for users.
type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.User, error)
	Update(ctx context.Context, id int64, input UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}
