package repositories

import (
	"time"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf/backend/internal/feed"
	"github.com/openshelf/openshelf/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(comment *models.Comment) error
	GetCommentByID(id string) (*models.Comment, error)
	ListByTarget(key feed.TargetKey) ([]models.Comment, error)
	CountForTarget(key feed.TargetKey) (int64, error)
	CountByTargets(kind feed.ItemKind, ids []string) (map[string]int64, error)
	UpdateComment(comment *models.Comment) error
	DeleteComment(id string) error
	DeleteForTarget(key feed.TargetKey) error
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// CreateComment creates a new comment in PostgreSQL
func (r *PostgresCommentRepository) CreateComment(comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	return r.db.Create(comment).Error
}

// GetCommentByID retrieves a comment by ID from PostgreSQL
func (r *PostgresCommentRepository) GetCommentByID(id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.First(&comment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByTarget retrieves all comments for a target, oldest first.
// Conversations read top to bottom, unlike the feed itself.
func (r *PostgresCommentRepository) ListByTarget(key feed.TargetKey) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Where("target_kind = ? AND target_id = ?", string(key.Kind), key.ID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

// CountForTarget returns the comment count for a single target
func (r *PostgresCommentRepository) CountForTarget(key feed.TargetKey) (int64, error) {
	var count int64
	err := r.db.Model(&models.Comment{}).
		Where("target_kind = ? AND target_id = ?", string(key.Kind), key.ID).
		Count(&count).Error
	return count, err
}

// CountByTargets returns comment counts for all given IDs of one kind in a
// single grouped query. IDs with no comments are absent from the map.
func (r *PostgresCommentRepository) CountByTargets(kind feed.ItemKind, ids []string) (map[string]int64, error) {
	out := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		TargetID string
		Count    int64
	}
	err := r.db.Model(&models.Comment{}).
		Select("target_id, COUNT(*) as count").
		Where("target_kind = ? AND target_id IN ?", string(kind), ids).
		Group("target_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.TargetID] = row.Count
	}
	return out, nil
}

// UpdateComment updates an existing comment in PostgreSQL
func (r *PostgresCommentRepository) UpdateComment(comment *models.Comment) error {
	comment.UpdatedAt = time.Now()
	return r.db.Save(comment).Error
}

// DeleteComment deletes a comment by ID from PostgreSQL
func (r *PostgresCommentRepository) DeleteComment(id string) error {
	return r.db.Delete(&models.Comment{}, "id = ?", id).Error
}

// DeleteForTarget removes every comment attached to a target (cascade on delete)
func (r *PostgresCommentRepository) DeleteForTarget(key feed.TargetKey) error {
	return r.db.Where("target_kind = ? AND target_id = ?", string(key.Kind), key.ID).
		Delete(&models.Comment{}).Error
}
