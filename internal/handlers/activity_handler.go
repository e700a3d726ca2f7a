package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/openshelf/openshelf/backend/internal/models"
	"github.com/openshelf/openshelf/backend/internal/repositories"
)

// ActivityHandler handles creation of progress-update and review events
type ActivityHandler struct {
	progressRepository repositories.ProgressRepository
	reviewRepository   repositories.ReviewRepository
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(
	progressRepo repositories.ProgressRepository,
	reviewRepo repositories.ReviewRepository,
) *ActivityHandler {
	return &ActivityHandler{
		progressRepository: progressRepo,
		reviewRepository:   reviewRepo,
	}
}

// RegisterActivityRoutes registers progress and review routes
func (h *ActivityHandler) RegisterActivityRoutes(g *echo.Group) {
	g.POST("/progress", h.LogProgress)
	g.POST("/reviews", h.CreateReview)
}

// LogProgress records a reading-progress event for the current user
func (h *ActivityHandler) LogProgress(c echo.Context) error {
	userID := currentUserID(c)

	var req models.LogProgressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.FromPage != nil && *req.FromPage > *req.ToPage {
		return echo.NewHTTPError(http.StatusBadRequest, "from_page must not exceed to_page")
	}

	progress := &models.ProgressUpdate{
		AuthorID: userID,
		BookID:   req.BookID,
		FromPage: req.FromPage,
		ToPage:   *req.ToPage,
	}
	if err := h.progressRepository.CreateProgress(c.Request().Context(), progress); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, progress)
}

// CreateReview records a book review for the current user
func (h *ActivityHandler) CreateReview(c echo.Context) error {
	userID := currentUserID(c)

	var req models.CreateReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	review := &models.Review{
		AuthorID:   userID,
		BookID:     req.BookID,
		Rating:     req.Rating,
		ReviewText: req.ReviewText,
	}
	if err := h.reviewRepository.CreateReview(c.Request().Context(), review); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, review)
}
