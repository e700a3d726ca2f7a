package models

import "time"

// ProgressUpdate represents a reading-progress event (PostgreSQL)
type ProgressUpdate struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	AuthorID  uint      `json:"author_id" gorm:"index"`
	BookID    string    `json:"book_id" gorm:"index;size:36"`
	FromPage  *int      `json:"from_page,omitempty"`
	ToPage    int       `json:"to_page"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// LogProgressRequest defines the request body for logging reading progress
type LogProgressRequest struct {
	BookID   string `json:"book_id" validate:"required,max=64"`
	FromPage *int   `json:"from_page,omitempty" validate:"omitempty,gte=0"`
	ToPage   *int   `json:"to_page" validate:"required,gte=0"`
}
