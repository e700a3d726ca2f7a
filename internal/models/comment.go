package models

import "time"

// Comment represents a comment on a feed target. Comments are keyed by the
// composite (target_kind, target_id) pair, never by a bare ID.
type Comment struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	TargetKind string    `json:"target_kind" gorm:"size:20;index:idx_comment_target"`
	TargetID   string    `json:"target_id" gorm:"size:64;index:idx_comment_target"`
	UserID     uint      `json:"user_id" gorm:"index"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"` // equals CreatedAt until edited
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}

// UpdateCommentRequest defines the request body for editing a comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}
