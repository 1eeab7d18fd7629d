package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bookshelf/library-api/internal/core/domain"
	"github.com/bookshelf/library-api/internal/core/ports"
)

type BookService struct {
	repo   ports.BookRepository
	logger zerolog.Logger
}

func NewBookService(repo ports.BookRepository, logger zerolog.Logger) *BookService {
	return &BookService{repo: repo, logger: logger}
}

func (s *BookService) Create(ctx context.Context, input ports.BookInput) (*domain.Book, error) {
	created, err := s.repo.Create(ctx, &domain.Book{
		Title:         input.Title,
		Author:        input.Author,
		PublishedYear: input.PublishedYear,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("book_id", created.ID).Str("title", created.Title).Msg("book created")
	return created, nil
}

func (s *BookService) Get(ctx context.Context, id int64) (*domain.Book, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *BookService) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Book, error) {
	return s.repo.List(ctx, normalizeFilter(filter))
}

// Replace overwrites every field of an existing book.
func (s *BookService) Replace(ctx context.Context, id int64, input ports.BookInput) (*domain.Book, error) {
	return s.repo.Update(ctx, &domain.Book{
		ID:            id,
		Title:         input.Title,
		Author:        input.Author,
		PublishedYear: input.PublishedYear,
	})
}

func (s *BookService) Update(ctx context.Context, id int64, input ports.UpdateBookInput) (*domain.Book, error) {
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		book.Title = *input.Title
	}
	if input.Author != nil {
		book.Author = *input.Author
	}
	if input.PublishedYear != nil {
		book.PublishedYear = *input.PublishedYear
	}
	return s.repo.Update(ctx, book)
}

func (s *BookService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("book_id", id).Msg("book deleted")
	return nil
}
