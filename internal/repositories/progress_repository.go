package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf/backend/internal/models"
	"gorm.io/gorm"
)

// ProgressRepository defines the interface for reading-progress events
type ProgressRepository interface {
	CreateProgress(ctx context.Context, progress *models.ProgressUpdate) error
	GetProgressByID(ctx context.Context, id string) (*models.ProgressUpdate, error)
	GetProgressByAuthorIDs(ctx context.Context, authorIDs []uint, limit int) ([]models.ProgressUpdate, error)
}

// PostgresProgressRepository implements ProgressRepository for PostgreSQL
type PostgresProgressRepository struct {
	db *gorm.DB
}

// NewPostgresProgressRepository creates a new PostgresProgressRepository
func NewPostgresProgressRepository(db *gorm.DB) *PostgresProgressRepository {
	return &PostgresProgressRepository{db: db}
}

// CreateProgress creates a new progress update in PostgreSQL
func (r *PostgresProgressRepository) CreateProgress(ctx context.Context, progress *models.ProgressUpdate) error {
	if progress.ID == "" {
		progress.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(progress).Error
}

// GetProgressByID retrieves a progress update by ID
func (r *PostgresProgressRepository) GetProgressByID(ctx context.Context, id string) (*models.ProgressUpdate, error) {
	var progress models.ProgressUpdate
	if err := r.db.WithContext(ctx).First(&progress, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

// GetProgressByAuthorIDs retrieves the newest progress updates authored by any
// of the given users, newest first, at most limit rows.
func (r *PostgresProgressRepository) GetProgressByAuthorIDs(ctx context.Context, authorIDs []uint, limit int) ([]models.ProgressUpdate, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	var rows []models.ProgressUpdate
	err := r.db.WithContext(ctx).
		Where("author_id IN ?", authorIDs).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
