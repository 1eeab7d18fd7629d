package memory

import (
	"context"
	"sync"

	"github.com/bookshelf/library-api/internal/core/domain"
	"github.com/bookshelf/library-api/internal/core/ports"
)

type BookRepository struct {
	mu     sync.RWMutex
	rows   map[int64]domain.Book
	nextID int64
}

func NewBookRepository() *BookRepository {
	return &BookRepository{rows: make(map[int64]domain.Book)}
}

func (r *BookRepository) Create(_ context.Context, b *domain.Book) (*domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	row := *b
	row.ID = r.nextID
	r.rows[row.ID] = row
	return &row, nil
}

func (r *BookRepository) FindByID(_ context.Context, id int64) (*domain.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, domain.NewNotFound("book", id)
	}
	return &row, nil
}

func (r *BookRepository) List(_ context.Context, f ports.ListFilter) ([]*domain.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.Book{}
	for _, id := range page(r.rows, f) {
		row := r.rows[id]
		out = append(out, &row)
	}
	return out, nil
}

func (r *BookRepository) Update(_ context.Context, b *domain.Book) (*domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[b.ID]; !ok {
		return nil, domain.NewNotFound("book", b.ID)
	}
	row := *b
	r.rows[b.ID] = row
	return &row, nil
}

func (r *BookRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return domain.NewNotFound("book", id)
	}
	delete(r.rows, id)
	return nil
}
