package feed

import (
	"sort"
	"time"
)

// ItemKind discriminates the three activity sources merged into the feed.
type ItemKind string

const (
	KindPost     ItemKind = "post"
	KindProgress ItemKind = "progress"
	KindReview   ItemKind = "review"
)

// Kinds lists every item kind. Code that dispatches on ItemKind must handle
// all of them.
var Kinds = []ItemKind{KindPost, KindProgress, KindReview}

// Valid reports whether k is one of the known item kinds.
func (k ItemKind) Valid() bool {
	switch k {
	case KindPost, KindProgress, KindReview:
		return true
	}
	return false
}

// TargetKey identifies an engagement target. IDs are only unique within a
// kind, so likes and comments are always keyed by the full pair.
type TargetKey struct {
	Kind ItemKind `json:"kind"`
	ID   string   `json:"id"`
}

// BookSummary is the denormalized book reference attached to items that point
// at a catalog entry. Nil when the referenced book no longer exists.
type BookSummary struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	CoverURL string `json:"cover_url,omitempty"`
}

// PostFields carries the post-specific part of a feed item.
type PostFields struct {
	Content   string       `json:"content"`
	UpdatedAt time.Time    `json:"updated_at"`
	Book      *BookSummary `json:"book,omitempty"`
}

// ProgressFields carries the reading-progress part of a feed item.
type ProgressFields struct {
	Book     *BookSummary `json:"book,omitempty"`
	FromPage *int         `json:"from_page,omitempty"`
	ToPage   int          `json:"to_page"`
}

// ReviewFields carries the review part of a feed item.
type ReviewFields struct {
	Book       *BookSummary `json:"book,omitempty"`
	Rating     int          `json:"rating"`
	ReviewText *string      `json:"review_text,omitempty"`
}

// Item is one normalized unit of activity, merged from several tables.
// Exactly one of Post, Progress or Review is set, matching Kind.
type Item struct {
	ID                string    `json:"id"`
	Kind              ItemKind  `json:"kind"`
	AuthorID          uint      `json:"author_id"`
	CreatedAt         time.Time `json:"created_at"`
	AuthorDisplayName string    `json:"author_display_name,omitempty"`
	AuthorAvatarRef   string    `json:"author_avatar_ref,omitempty"`
	LikeCount         int       `json:"like_count"`
	ViewerHasLiked    bool      `json:"viewer_has_liked"`
	CommentCount      int       `json:"comment_count"`

	Post     *PostFields     `json:"post,omitempty"`
	Progress *ProgressFields `json:"progress,omitempty"`
	Review   *ReviewFields   `json:"review,omitempty"`
}

// Target returns the engagement key for the item.
func (it Item) Target() TargetKey {
	return TargetKey{Kind: it.Kind, ID: it.ID}
}

// Edited reports whether a post item was modified after creation. Always
// false for the other kinds.
func (it Item) Edited() bool {
	return it.Kind == KindPost && it.Post != nil && it.Post.UpdatedAt.After(it.CreatedAt)
}

// SortItems orders items newest first. Ties on CreatedAt fall back to
// (Kind, ID) so repeated composition over unchanged data yields an identical
// order.
func SortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.ID < b.ID
	})
}
