package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bookshelf/library-api/internal/api/metrics"
	"github.com/bookshelf/library-api/internal/core/domain"
	"github.com/bookshelf/library-api/internal/core/ports"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
)

// Idempotency replays the stored 201 response when a create request repeats
// its Idempotency-Key with the same body. Reusing a key with a different body
// is rejected with 422 and nothing is created. Requests without the header, or
// with a nil store, pass through untouched. Store failures never fail the
// request.
func Idempotency(store ports.IdempotencyStore, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get(HeaderIdempotencyKey)
			if store == nil || key == "" {
				return next(c)
			}
			scope := scopeKey(c, key)
			ctx := c.Request().Context()

			fingerprint, err := bodyFingerprint(c.Request())
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
			}

			stored, err := store.Lookup(ctx, scope)
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("idempotency lookup failed")
			}
			if stored != nil {
				if stored.Fingerprint != fingerprint {
					return echo.NewHTTPError(http.StatusUnprocessableEntity,
						"Idempotency-Key was already used with a different request body")
				}
				metrics.IdempotentReplaysTotal.Inc()
				c.Response().Header().Set(HeaderReplayed, "true")
				return c.Blob(stored.Status, stored.ContentType, stored.Body)
			}

			rec := &recorder{ResponseWriter: c.Response().Writer}
			c.Response().Writer = rec
			defer func() { c.Response().Writer = rec.ResponseWriter }()

			if err := next(c); err != nil {
				return err
			}
			if c.Response().Status != http.StatusCreated {
				return nil
			}

			resp := ports.StoredResponse{
				Status:      c.Response().Status,
				ContentType: c.Response().Header().Get(echo.HeaderContentType),
				Body:        rec.body.Bytes(),
				Fingerprint: fingerprint,
			}
			if err := store.Save(ctx, scope, resp); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("idempotency save failed")
			}
			return nil
		}
	}
}

// scopeKey binds a client key to the route and caller so two callers cannot
// replay each other's responses.
func scopeKey(c echo.Context, key string) string {
	caller := "anonymous"
	if u, ok := c.Get("user").(*domain.User); ok && u != nil {
		caller = u.Username
	}
	return c.Request().Method + ":" + c.Path() + ":" + caller + ":" + key
}

// bodyFingerprint hashes the request body and puts it back for the handler.
func bodyFingerprint(r *http.Request) (string, error) {
	if r.Body == nil {
		return "", nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}

// recorder tees the response body so it can be stored after the handler ran.
type recorder struct {
	http.ResponseWriter
	body bytes.Buffer
}

func (r *recorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
