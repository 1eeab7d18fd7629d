package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bookshelf/library-api/internal/core/domain"
	"github.com/bookshelf/library-api/internal/core/ports"
)

type BookRepository struct {
	db Querier
}

func NewBookRepository(db Querier) *BookRepository {
	return &BookRepository{db: db}
}

func scanBook(row pgx.Row) (*domain.Book, error) {
	var b domain.Book
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &b.PublishedYear); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookRepository) Create(ctx context.Context, b *domain.Book) (*domain.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	created, err := scanBook(r.db.QueryRow(ctx,
		`INSERT INTO books (title, author, published_year) VALUES ($1, $2, $3)
		 RETURNING id, title, author, published_year`,
		b.Title, b.Author, b.PublishedYear))
	if err != nil {
		return nil, fmt.Errorf("insert book: %w", err)
	}
	return created, nil
}

func (r *BookRepository) FindByID(ctx context.Context, id int64) (*domain.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	b, err := scanBook(r.db.QueryRow(ctx,
		`SELECT id, title, author, published_year FROM books WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFound("book", id)
		}
		return nil, fmt.Errorf("find book: %w", err)
	}
	return b, nil
}

func (r *BookRepository) List(ctx context.Context, f ports.ListFilter) ([]*domain.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx,
		`SELECT id, title, author, published_year FROM books ORDER BY id LIMIT $1 OFFSET $2`,
		f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books := []*domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}

func (r *BookRepository) Update(ctx context.Context, b *domain.Book) (*domain.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	updated, err := scanBook(r.db.QueryRow(ctx,
		`UPDATE books SET title = $2, author = $3, published_year = $4 WHERE id = $1
		 RETURNING id, title, author, published_year`,
		b.ID, b.Title, b.Author, b.PublishedYear))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFound("book", b.ID)
		}
		return nil, fmt.Errorf("update book: %w", err)
	}
	return updated, nil
}

func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound("book", id)
	}
	return nil
}
