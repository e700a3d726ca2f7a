package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf/backend/internal/models"
	"gorm.io/gorm"
)

// ReviewRepository defines the interface for review events
type ReviewRepository interface {
	CreateReview(ctx context.Context, review *models.Review) error
	GetReviewByID(ctx context.Context, id string) (*models.Review, error)
	GetReviewsByAuthorIDs(ctx context.Context, authorIDs []uint, limit int) ([]models.Review, error)
}

// PostgresReviewRepository implements ReviewRepository for PostgreSQL
type PostgresReviewRepository struct {
	db *gorm.DB
}

// NewPostgresReviewRepository creates a new PostgresReviewRepository
func NewPostgresReviewRepository(db *gorm.DB) *PostgresReviewRepository {
	return &PostgresReviewRepository{db: db}
}

// CreateReview creates a new review in PostgreSQL
func (r *PostgresReviewRepository) CreateReview(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(review).Error
}

// GetReviewByID retrieves a review by ID
func (r *PostgresReviewRepository) GetReviewByID(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// GetReviewsByAuthorIDs retrieves the newest reviews authored by any of the
// given users, newest first, at most limit rows.
func (r *PostgresReviewRepository) GetReviewsByAuthorIDs(ctx context.Context, authorIDs []uint, limit int) ([]models.Review, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	var rows []models.Review
	err := r.db.WithContext(ctx).
		Where("author_id IN ?", authorIDs).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
