package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/openshelf/openshelf/backend/internal/services"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	engagement *services.EngagementService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(engagement *services.EngagementService) *LikeHandler {
	return &LikeHandler{engagement: engagement}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/items/:kind/:id/like", h.ToggleLike)
}

// ToggleLike flips the current user's like on an item and returns the
// authoritative count. Callers replace their local count with the response
// value instead of incrementing.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	userID := currentUserID(c)
	key, err := targetFromPath(c)
	if err != nil {
		return err
	}

	newCount, nowLiked, err := h.engagement.ToggleLike(userID, key)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"kind":       key.Kind,
		"id":         key.ID,
		"like_count": newCount,
		"liked":      nowLiked,
	})
}
