package repositories

import (
	"github.com/openshelf/openshelf/backend/internal/feed"
	"github.com/openshelf/openshelf/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines the interface for like data operations. All lookups
// are keyed by the composite (kind, id) target, and the batch queries are one
// SQL statement per kind, never one per item.
type LikeRepository interface {
	Toggle(userID uint, key feed.TargetKey) (nowLiked bool, err error)
	CountForTarget(key feed.TargetKey) (int64, error)
	CountByTargets(kind feed.ItemKind, ids []string) (map[string]int64, error)
	LikedByUser(userID uint, kind feed.ItemKind, ids []string) (map[string]bool, error)
	DeleteForTarget(key feed.TargetKey) error
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// Toggle flips the like state for the exact (user, kind, id) triple inside a
// transaction. The delete-then-insert on the unique index keeps rapid
// double-taps deterministic: the second call always observes the first.
func (r *PostgresLikeRepository) Toggle(userID uint, key feed.TargetKey) (bool, error) {
	var nowLiked bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND target_kind = ? AND target_id = ?",
			userID, string(key.Kind), key.ID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			nowLiked = false
			return nil
		}
		like := models.Like{
			UserID:     userID,
			TargetKind: string(key.Kind),
			TargetID:   key.ID,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
			return err
		}
		nowLiked = true
		return nil
	})
	return nowLiked, err
}

// CountForTarget returns the like count for a single target
func (r *PostgresLikeRepository) CountForTarget(key feed.TargetKey) (int64, error) {
	var count int64
	err := r.db.Model(&models.Like{}).
		Where("target_kind = ? AND target_id = ?", string(key.Kind), key.ID).
		Count(&count).Error
	return count, err
}

// CountByTargets returns like counts for all given IDs of one kind in a
// single grouped query. IDs with no likes are absent from the map.
func (r *PostgresLikeRepository) CountByTargets(kind feed.ItemKind, ids []string) (map[string]int64, error) {
	out := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		TargetID string
		Count    int64
	}
	err := r.db.Model(&models.Like{}).
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

// LikedByUser returns, for one kind, the subset of the given IDs the user has
// liked. One query regardless of how many IDs are passed.
func (r *PostgresLikeRepository) LikedByUser(userID uint, kind feed.ItemKind, ids []string) (map[string]bool, error) {
	out := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var likedIDs []string
	err := r.db.Model(&models.Like{}).
		Where("user_id = ? AND target_kind = ? AND target_id IN ?", userID, string(kind), ids).
		Pluck("target_id", &likedIDs).Error
	if err != nil {
		return nil, err
	}
	for _, id := range likedIDs {
		out[id] = true
	}
	return out, nil
}

// DeleteForTarget removes every like attached to a target (cascade on delete)
func (r *PostgresLikeRepository) DeleteForTarget(key feed.TargetKey) error {
	return r.db.Where("target_kind = ? AND target_id = ?", string(key.Kind), key.ID).
		Delete(&models.Like{}).Error
}
