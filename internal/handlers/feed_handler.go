package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/openshelf/openshelf/backend/internal/services"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	feedService *services.FeedService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feedService *services.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed composes and returns the viewer's activity feed
func (h *FeedHandler) GetFeed(c echo.Context) error {
	viewerID := currentUserID(c)

	result, err := h.feedService.BuildFeed(c.Request().Context(), viewerID)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"items":   result.Items,
			"partial": result.Partial,
		},
	})
}
