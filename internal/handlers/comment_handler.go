package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/openshelf/openshelf/backend/internal/models"
	"github.com/openshelf/openshelf/backend/internal/services"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	engagement *services.EngagementService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(engagement *services.EngagementService) *CommentHandler {
	return &CommentHandler{engagement: engagement}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/items/:kind/:id/comments", h.CreateComment)
	g.GET("/items/:kind/:id/comments", h.ListComments)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CreateComment adds a comment to an item and returns it with the
// authoritative comment count
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID := currentUserID(c)
	key, err := targetFromPath(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment, newCount, err := h.engagement.AddComment(userID, key, req.Content)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"comment":       comment,
		"comment_count": newCount,
	})
}

// ListComments returns an item's comments, oldest first
func (h *CommentHandler) ListComments(c echo.Context) error {
	key, err := targetFromPath(c)
	if err != nil {
		return err
	}

	comments, err := h.engagement.ListComments(key)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, comments)
}

// UpdateComment edits a comment (author only)
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	userID := currentUserID(c)

	var req models.UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment, err := h.engagement.EditComment(userID, c.Param("id"), req.Content)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, comment)
}

// DeleteComment removes a comment (author only) and returns the new count
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID := currentUserID(c)

	newCount, err := h.engagement.DeleteComment(userID, c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"comment_count": newCount})
}
