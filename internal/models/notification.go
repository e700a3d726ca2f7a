package models

import "time"

// Notification represents a user notification (PostgreSQL). Rows are written
// by the event-bus consumer when someone engages with the recipient's items.
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Type        string    `json:"type" gorm:"size:30;index"` // like, comment
	ActorID     uint      `json:"actor_id" gorm:"index"`
	RecipientID uint      `json:"recipient_id" gorm:"index"`
	TargetKind  string    `json:"target_kind" gorm:"size:20"`
	TargetID    string    `json:"target_id" gorm:"size:64"`
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}
