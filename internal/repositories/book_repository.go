package repositories

import (
	"errors"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf/backend/internal/models"
	"gorm.io/gorm"
)

// BookRepository defines the interface for the book catalog
type BookRepository interface {
	CreateBook(book *models.Book) error
	// GetBookByID returns (nil, nil) when the book does not exist; a deleted
	// book must degrade to a null summary, not an error.
	GetBookByID(id string) (*models.Book, error)
	GetBooksByIDs(ids []string) (map[string]models.Book, error)
}

// PostgresBookRepository implements BookRepository for PostgreSQL
type PostgresBookRepository struct {
	db *gorm.DB
}

// NewPostgresBookRepository creates a new PostgresBookRepository
func NewPostgresBookRepository(db *gorm.DB) *PostgresBookRepository {
	return &PostgresBookRepository{db: db}
}

// CreateBook creates a new catalog entry in PostgreSQL
func (r *PostgresBookRepository) CreateBook(book *models.Book) error {
	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	return r.db.Create(book).Error
}

// GetBookByID retrieves a book by ID, nil when missing
func (r *PostgresBookRepository) GetBookByID(id string) (*models.Book, error) {
	var book models.Book
	if err := r.db.First(&book, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &book, nil
}

// GetBooksByIDs retrieves all books matching the given IDs in one query.
// Missing IDs are simply absent from the map.
func (r *PostgresBookRepository) GetBooksByIDs(ids []string) (map[string]models.Book, error) {
	out := make(map[string]models.Book, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var books []models.Book
	if err := r.db.Where("id IN ?", ids).Find(&books).Error; err != nil {
		return nil, err
	}
	for _, b := range books {
		out[b.ID] = b
	}
	return out, nil
}
