package handler

import (
	"github.com/bookshelf/library-api/internal/core/domain"
	"github.com/bookshelf/library-api/internal/core/ports"
)

type bookRequest struct {
	Title         string `json:"title"          validate:"required,max=255"`
	Author        string `json:"author"         validate:"required,max=255"`
	PublishedYear int    `json:"published_year" validate:"gte=0,lte=9999"`
}

type patchBookRequest struct {
	Title         *string `json:"title"          validate:"omitempty,min=1,max=255"`
	Author        *string `json:"author"         validate:"omitempty,min=1,max=255"`
	PublishedYear *int    `json:"published_year" validate:"omitempty,gte=0,lte=9999"`
}

type bookResponse struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	PublishedYear int    `json:"published_year"`
}

func (r bookRequest) toInput() ports.BookInput {
	return ports.BookInput{Title: r.Title, Author: r.Author, PublishedYear: r.PublishedYear}
}

func (r patchBookRequest) toInput() ports.UpdateBookInput {
	return ports.UpdateBookInput{Title: r.Title, Author: r.Author, PublishedYear: r.PublishedYear}
}

func toBookResponse(b *domain.Book) bookResponse {
	return bookResponse{ID: b.ID, Title: b.Title, Author: b.Author, PublishedYear: b.PublishedYear}
}

func toBookResponses(books []*domain.Book) []bookResponse {
	out := make([]bookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, toBookResponse(b))
	}
	return out
}
