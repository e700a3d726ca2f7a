package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/openshelf/openshelf/backend/internal/models"
	"github.com/openshelf/openshelf/backend/internal/repositories"
)

// BookHandler handles HTTP requests for the book catalog
type BookHandler struct {
	bookRepository repositories.BookRepository
}

// NewBookHandler creates a new BookHandler
func NewBookHandler(bookRepo repositories.BookRepository) *BookHandler {
	return &BookHandler{bookRepository: bookRepo}
}

// RegisterBookRoutes registers book catalog routes
func (h *BookHandler) RegisterBookRoutes(g *echo.Group) {
	g.POST("/books", h.CreateBook)
	g.GET("/books/:id", h.GetBook)
}

// CreateBook adds a new catalog entry
func (h *BookHandler) CreateBook(c echo.Context) error {
	var req models.CreateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	book := &models.Book{
		Title:    req.Title,
		Author:   req.Author,
		CoverURL: req.CoverURL,
	}
	if err := h.bookRepository.CreateBook(book); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, book)
}

// GetBook retrieves a catalog entry
func (h *BookHandler) GetBook(c echo.Context) error {
	book, err := h.bookRepository.GetBookByID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if book == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Book not found")
	}
	return c.JSON(http.StatusOK, book)
}
