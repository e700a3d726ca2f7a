package models

import "time"

// Like represents one user liking one feed target. Presence of the row is
// the liked state; the like count for a target is the row count. The unique
// index over the full (user, kind, id) triple is what makes ToggleLike safe
// under concurrent double-taps.
type Like struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"uniqueIndex:idx_like_user_target"`
	TargetKind string    `json:"target_kind" gorm:"size:20;uniqueIndex:idx_like_user_target;index:idx_like_target"`
	TargetID   string    `json:"target_id" gorm:"size:64;uniqueIndex:idx_like_user_target;index:idx_like_target"`
	CreatedAt  time.Time `json:"created_at"`
}
