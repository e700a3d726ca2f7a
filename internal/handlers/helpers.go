package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/openshelf/openshelf/backend/internal/apperrors"
	"github.com/openshelf/openshelf/backend/internal/feed"
)

// currentUserID returns the authenticated user's ID set by the auth
// middleware, or 0 when the request is unauthenticated.
func currentUserID(c echo.Context) uint {
	if id, ok := c.Get("userID").(uint); ok {
		return id
	}
	return 0
}

// targetFromPath parses the :kind/:id route segments into a typed target key.
func targetFromPath(c echo.Context) (feed.TargetKey, error) {
	kind := feed.ItemKind(c.Param("kind"))
	if !kind.Valid() {
		return feed.TargetKey{}, echo.NewHTTPError(http.StatusBadRequest, "unknown item kind")
	}
	id := c.Param("id")
	if id == "" {
		return feed.TargetKey{}, echo.NewHTTPError(http.StatusBadRequest, "missing item id")
	}
	return feed.TargetKey{Kind: kind, ID: id}, nil
}

// serviceError maps a service-layer error onto an HTTP error response.
func serviceError(err error) *echo.HTTPError {
	return echo.NewHTTPError(apperrors.HTTPStatus(err), apperrors.PublicMessage(err))
}
