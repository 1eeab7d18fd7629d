package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bookshelf/library-api/internal/api/metrics"
	"github.com/bookshelf/library-api/internal/core/domain"
	"github.com/bookshelf/library-api/internal/core/ports"
)

// Auth resolves the bearer token to an enabled account and stores it under
// the "user" context key. Every rejection is the same ErrUnauthorized and
// carries a WWW-Authenticate challenge.
func Auth(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return unauthorized(c)
			}

			user, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					metrics.TokenValidationsTotal.WithLabelValues("rejected").Inc()
					return unauthorized(c)
				}
				metrics.TokenValidationsTotal.WithLabelValues("error").Inc()
				return err
			}
			metrics.TokenValidationsTotal.WithLabelValues("accepted").Inc()

			c.Set("user", user)
			return next(c)
		}
	}
}

// bearerToken extracts the credentials of an "Authorization: Bearer <token>"
// header. The scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

func unauthorized(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return domain.ErrUnauthorized
}
