package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/bookshelf/library-api/internal/core/domain"
)

// currentUser returns the account resolved by the Auth middleware, which
// stores it under the "user" key. A missing value means the route was
// registered without the middleware; report it as unauthenticated.
func currentUser(c echo.Context) (*domain.User, error) {
	u, ok := c.Get("user").(*domain.User)
	if !ok || u == nil {
		return nil, domain.ErrUnauthorized
	}
	return u, nil
}
