package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bookshelf/library-api/internal/api/handler"
	"github.com/bookshelf/library-api/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
		wantAuth   bool
	}{
		{
			name:       "not found",
			err:        domain.NewNotFound("user", int64(7)),
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"user 7 not found"}`,
		},
		{
			name:       "conflict names field",
			err:        fmt.Errorf("create: %w", domain.NewConflict("user", "username", "bob")),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"username 'bob' already exists","field":"username"}`,
		},
		{
			name:       "conflict without field hides driver text",
			err:        fmt.Errorf("user: %w: E11000 index: users_x dup key", domain.ErrConflict),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"already exists"}`,
		},
		{
			name:       "invalid credentials",
			err:        domain.ErrInvalidCredentials,
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Incorrect username or password"}`,
			wantAuth:   true,
		},
		{
			name:       "unauthorized",
			err:        fmt.Errorf("%w: token is expired", domain.ErrUnauthorized),
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Could not validate credentials"}`,
			wantAuth:   true,
		},
		{
			name:       "validation",
			err:        &handler.ValidationError{Message: "title is required"},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `{"error":"title is required"}`,
		},
		{
			name:       "echo error",
			err:        echo.NewHTTPError(http.StatusBadRequest, "invalid id"),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"invalid id"}`,
		},
		{
			name:       "unexpected",
			err:        errors.New("pq: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if got := rec.Body.String(); got != tt.wantBody+"\n" {
				t.Errorf("expected body %s, got %s", tt.wantBody, got)
			}
			if gotAuth := rec.Header().Get("WWW-Authenticate") == "Bearer"; gotAuth != tt.wantAuth {
				t.Errorf("WWW-Authenticate presence: expected %v, got %v", tt.wantAuth, gotAuth)
			}
		})
	}
}

func TestHTTPErrorHandler_SkipsCommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.String(http.StatusOK, "done")

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("late"), c)

	if rec.Body.String() != "done" {
		t.Fatalf("committed response must not be rewritten, got %q", rec.Body.String())
	}
}
