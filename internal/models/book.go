package models

import "time"

// Book is a catalog entry referenced by progress updates, reviews and posts.
// Items keep rendering with a null summary after the row is deleted.
type Book struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	CoverURL  string    `json:"cover_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateBookRequest defines the request body for adding a catalog entry
type CreateBookRequest struct {
	Title    string `json:"title" validate:"required,min=1,max=300"`
	Author   string `json:"author" validate:"required,min=1,max=200"`
	CoverURL string `json:"cover_url,omitempty" validate:"omitempty,url"`
}
