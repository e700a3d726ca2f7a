package models

import "time"

// Review represents a book review event (PostgreSQL)
type Review struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	AuthorID   uint      `json:"author_id" gorm:"index"`
	BookID     string    `json:"book_id" gorm:"index;size:36"`
	Rating     int       `json:"rating"`
	ReviewText *string   `json:"review_text,omitempty"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

// CreateReviewRequest defines the request body for reviewing a book
type CreateReviewRequest struct {
	BookID     string  `json:"book_id" validate:"required,max=64"`
	Rating     int     `json:"rating" validate:"required,min=1,max=5"`
	ReviewText *string `json:"review_text,omitempty" validate:"omitempty,max=5000"`
}
