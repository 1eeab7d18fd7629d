package ports

import (
	"context"

	"github.com/bookshelf/library-api/internal/core/domain"
)

// BookRepository defines persistence operations for books.
type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) (*domain.Book, error)
	FindByID(ctx context.Context, id int64) (*domain.Book, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.Book, error)
	Update(ctx context.Context, book *domain.Book) (*domain.Book, error)
	Delete(ctx context.Context, id int64) error
}
