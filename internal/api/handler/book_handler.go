package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bookshelf/library-api/internal/api/metrics"
	"github.com/bookshelf/library-api/internal/core/ports"
)

type BookHandler struct {
	books ports.BookService
}

func NewBookHandler(books ports.BookService) *BookHandler {
	return &BookHandler{books: books}
}

// bindBook decodes and validates a request body into dst.
func bindBook(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(dst)
}

// Create adds a book to the catalogue.
//
// @Summary      Create a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string       false  "Replay key"
// @Param        body             body      bookRequest  true   "New book"
// @Success      201              {object}  bookResponse
// @Failure      401              {object}  errorBody
// @Failure      422              {object}  errorBody
// @Router       /books/ [post]
func (h *BookHandler) Create(c echo.Context) error {
	var req bookRequest
	if err := bindBook(c, &req); err != nil {
		return err
	}
	book, err := h.books.Create(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}
	metrics.BooksCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, toBookResponse(book))
}

// List returns a page of books ordered by id.
//
// @Summary      List books
// @Tags         books
// @Produce      json
// @Param        offset  query    int  false  "Rows to skip"
// @Param        limit   query    int  false  "Page size (max 100)"
// @Success      200     {array}  bookResponse
// @Router       /books/ [get]
func (h *BookHandler) List(c echo.Context) error {
	filter, err := listFilter(c)
	if err != nil {
		return err
	}
	books, err := h.books.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookResponses(books))
}

// Get returns one book.
//
// @Summary      Get a book
// @Tags         books
// @Produce      json
// @Param        id   path      int  true  "Book ID"
// @Success      200  {object}  bookResponse
// @Failure      404  {object}  errorBody
// @Router       /books/{id} [get]
func (h *BookHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	book, err := h.books.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookResponse(book))
}

// Replace overwrites every field of a book.
//
// @Summary      Replace a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int          true  "Book ID"
// @Param        body  body      bookRequest  true  "Book"
// @Success      200   {object}  bookResponse
// @Failure      401   {object}  errorBody
// @Failure      404   {object}  errorBody
// @Failure      422   {object}  errorBody
// @Router       /books/{id} [put]
func (h *BookHandler) Replace(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req bookRequest
	if err := bindBook(c, &req); err != nil {
		return err
	}
	book, err := h.books.Replace(c.Request().Context(), id, req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookResponse(book))
}

// Update changes the supplied fields of a book.
//
// @Summary      Update a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int               true  "Book ID"
// @Param        body  body      patchBookRequest  true  "Fields to change"
// @Success      200   {object}  bookResponse
// @Failure      401   {object}  errorBody
// @Failure      404   {object}  errorBody
// @Failure      422   {object}  errorBody
// @Router       /books/{id} [patch]
func (h *BookHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req patchBookRequest
	if err := bindBook(c, &req); err != nil {
		return err
	}
	book, err := h.books.Update(c.Request().Context(), id, req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookResponse(book))
}

// Delete removes a book.
//
// @Summary      Delete a book
// @Tags         books
// @Security     BearerAuth
// @Param        id   path  int  true  "Book ID"
// @Success      204
// @Failure      401  {object}  errorBody
// @Failure      404  {object}  errorBody
// @Router       /books/{id} [delete]
func (h *BookHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.books.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
