package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bookshelf/library-api/internal/core/ports"
)

type listQuery struct {
	Offset int `query:"offset" validate:"gte=0"`
	Limit  int `query:"limit"  validate:"gte=0"`
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// listFilter reads offset and limit from the query string. Limits above the
// maximum are capped by the services.
func listFilter(c echo.Context) (ports.ListFilter, error) {
	var q listQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return ports.ListFilter{}, echo.NewHTTPError(http.StatusBadRequest, "invalid pagination parameters")
	}
	if err := c.Validate(&q); err != nil {
		return ports.ListFilter{}, err
	}
	return ports.ListFilter{Offset: q.Offset, Limit: q.Limit}, nil
}
