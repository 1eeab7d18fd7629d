package ports

import (
	"context"

	"github.com/bookshelf/library-api/internal/core/domain"
)

// BookInput carries a full book definition (create and replace).
type BookInput struct {
	Title         string
	Author        string
	PublishedYear int
}

// UpdateBookInput is a partial update: nil fields are left unchanged.
type UpdateBookInput struct {
	Title         *string
	Author        *string
	PublishedYear *int
}

// BookService defines use-case operations for books.
type BookService interface {
	Create(ctx context.Context, input BookInput) (*domain.Book, error)
	Get(ctx context.Context, id int64) (*domain.Book, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.Book, error)
	Replace(ctx context.Context, id int64, input BookInput) (*domain.Book, error)
	Update(ctx context.Context, id int64, input UpdateBookInput) (*domain.Book, error)
	Delete(ctx context.Context, id int64) error
}
