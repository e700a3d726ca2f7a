package services

import (
	"context"
	"time"

	"github.com/openshelf/openshelf/backend/internal/apperrors"
	"github.com/openshelf/openshelf/backend/internal/feed"
	"github.com/openshelf/openshelf/backend/internal/models"
	"github.com/openshelf/openshelf/backend/internal/repositories"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// FeedConfig tunes feed composition. LimitPerSource bounds each kind
// independently so a burst of one kind cannot starve the others out of the
// merge; MaxItems caps the merged result.
type FeedConfig struct {
	LimitPerSource int
	MaxItems       int
	SourceTimeout  time.Duration
}

// DefaultFeedConfig returns the composition defaults.
func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		LimitPerSource: 50,
		MaxItems:       100,
		SourceTimeout:  3 * time.Second,
	}
}

// Feed is one composed feed. Partial is set when an event source failed and
// its items were dropped rather than failing the whole call.
type Feed struct {
	Items   []feed.Item `json:"items"`
	Partial bool        `json:"partial"`
}

// FeedService merges the three event sources into one reverse-chronological
// feed scoped to the viewer's social graph, decorated with identity and
// engagement state. Nothing is precomputed; every call composes fresh.
type FeedService struct {
	follows    repositories.FollowRepository
	posts      repositories.PostRepository
	progress   repositories.ProgressRepository
	reviews    repositories.ReviewRepository
	books      repositories.BookRepository
	identity   *IdentityResolver
	engagement *EngagementService
	cfg        FeedConfig
	log        *logrus.Entry
}

// NewFeedService creates a new FeedService
func NewFeedService(
	follows repositories.FollowRepository,
	posts repositories.PostRepository,
	progress repositories.ProgressRepository,
	reviews repositories.ReviewRepository,
	books repositories.BookRepository,
	identity *IdentityResolver,
	engagement *EngagementService,
	cfg FeedConfig,
	log *logrus.Entry,
) *FeedService {
	return &FeedService{
		follows:    follows,
		posts:      posts,
		progress:   progress,
		reviews:    reviews,
		books:      books,
		identity:   identity,
		engagement: engagement,
		cfg:        cfg,
		log:        log,
	}
}

// BuildFeed composes the viewer's feed. A zero viewer sees an empty feed. A
// failing event source degrades to a partial feed; a failing social graph or
// profile store fails the call, since visibility and identity cannot be
// defaulted safely.
func (s *FeedService) BuildFeed(ctx context.Context, viewerID uint) (*Feed, error) {
	if viewerID == 0 {
		return &Feed{Items: []feed.Item{}}, nil
	}

	followingIDs, err := s.follows.GetFollowingIDs(viewerID)
	if err != nil {
		s.log.WithError(err).WithField("viewer_id", viewerID).Error("social graph lookup failed")
		return nil, apperrors.ErrDependencyUnavailable
	}
	authorIDs := dedupeAuthors(append(followingIDs, viewerID))

	var (
		posts        []models.Post
		progressRows []models.ProgressUpdate
		reviewRows   []models.Review
		postsFailed, progressFailed, reviewsFailed bool
	)

	// The three sources have no ordering dependency; fetch them in parallel,
	// each under its own timeout. A failed source logs and drops out instead
	// of cancelling its siblings.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cctx, cancel := context.WithTimeout(gctx, s.cfg.SourceTimeout)
		defer cancel()
		rows, err := s.posts.GetPostsByAuthorIDs(cctx, authorIDs, int64(s.cfg.LimitPerSource))
		if err != nil {
			s.log.WithError(err).Warn("post source unavailable, composing without posts")
			postsFailed = true
			return nil
		}
		posts = rows
		return nil
	})
	g.Go(func() error {
		cctx, cancel := context.WithTimeout(gctx, s.cfg.SourceTimeout)
		defer cancel()
		rows, err := s.progress.GetProgressByAuthorIDs(cctx, authorIDs, s.cfg.LimitPerSource)
		if err != nil {
			s.log.WithError(err).Warn("progress source unavailable, composing without progress updates")
			progressFailed = true
			return nil
		}
		progressRows = rows
		return nil
	})
	g.Go(func() error {
		cctx, cancel := context.WithTimeout(gctx, s.cfg.SourceTimeout)
		defer cancel()
		rows, err := s.reviews.GetReviewsByAuthorIDs(cctx, authorIDs, s.cfg.LimitPerSource)
		if err != nil {
			s.log.WithError(err).Warn("review source unavailable, composing without reviews")
			reviewsFailed = true
			return nil
		}
		reviewRows = rows
		return nil
	})
	_ = g.Wait() // source goroutines never return errors

	// One batched identity lookup over the union of authors present.
	identities, err := s.identity.Resolve(collectAuthors(posts, progressRows, reviewRows))
	if err != nil {
		return nil, err
	}

	// One batched book lookup; items whose book was deleted keep a nil summary.
	books, err := s.books.GetBooksByIDs(collectBookIDs(posts, progressRows, reviewRows))
	if err != nil {
		s.log.WithError(err).Warn("book catalog unavailable, composing without book summaries")
		books = map[string]models.Book{}
	}

	// One batched engagement lookup over the union of target keys.
	targets := make([]feed.TargetKey, 0, len(posts)+len(progressRows)+len(reviewRows))
	for _, p := range posts {
		targets = append(targets, feed.TargetKey{Kind: feed.KindPost, ID: p.ID.Hex()})
	}
	for _, p := range progressRows {
		targets = append(targets, feed.TargetKey{Kind: feed.KindProgress, ID: p.ID})
	}
	for _, r := range reviewRows {
		targets = append(targets, feed.TargetKey{Kind: feed.KindReview, ID: r.ID})
	}
	counts, err := s.engagement.GetCounts(viewerID, targets)
	if err != nil {
		s.log.WithError(err).Error("engagement lookup failed")
		return nil, apperrors.ErrDependencyUnavailable
	}

	items := make([]feed.Item, 0, len(targets))
	for _, p := range posts {
		items = append(items, s.postItem(p, identities, books, counts))
	}
	for _, p := range progressRows {
		items = append(items, s.progressItem(p, identities, books, counts))
	}
	for _, r := range reviewRows {
		items = append(items, s.reviewItem(r, identities, books, counts))
	}

	feed.SortItems(items)
	if len(items) > s.cfg.MaxItems {
		items = items[:s.cfg.MaxItems]
	}

	return &Feed{
		Items:   items,
		Partial: postsFailed || progressFailed || reviewsFailed,
	}, nil
}

func (s *FeedService) postItem(p models.Post, ids map[uint]Identity, books map[string]models.Book, counts map[feed.TargetKey]Counts) feed.Item {
	key := feed.TargetKey{Kind: feed.KindPost, ID: p.ID.Hex()}
	item := newItem(key, p.AuthorID, p.CreatedAt, ids, counts)
	item.Post = &feed.PostFields{
		Content:   p.Content,
		UpdatedAt: p.UpdatedAt,
		Book:      bookSummary(books, p.BookID),
	}
	return item
}

func (s *FeedService) progressItem(p models.ProgressUpdate, ids map[uint]Identity, books map[string]models.Book, counts map[feed.TargetKey]Counts) feed.Item {
	key := feed.TargetKey{Kind: feed.KindProgress, ID: p.ID}
	item := newItem(key, p.AuthorID, p.CreatedAt, ids, counts)
	item.Progress = &feed.ProgressFields{
		Book:     bookSummary(books, p.BookID),
		FromPage: p.FromPage,
		ToPage:   p.ToPage,
	}
	return item
}

func (s *FeedService) reviewItem(r models.Review, ids map[uint]Identity, books map[string]models.Book, counts map[feed.TargetKey]Counts) feed.Item {
	key := feed.TargetKey{Kind: feed.KindReview, ID: r.ID}
	item := newItem(key, r.AuthorID, r.CreatedAt, ids, counts)
	item.Review = &feed.ReviewFields{
		Book:       bookSummary(books, r.BookID),
		Rating:     r.Rating,
		ReviewText: r.ReviewText,
	}
	return item
}

func newItem(key feed.TargetKey, authorID uint, createdAt time.Time, ids map[uint]Identity, counts map[feed.TargetKey]Counts) feed.Item {
	identity := ids[authorID]
	c := counts[key]
	return feed.Item{
		ID:                key.ID,
		Kind:              key.Kind,
		AuthorID:          authorID,
		CreatedAt:         createdAt,
		AuthorDisplayName: identity.DisplayName,
		AuthorAvatarRef:   identity.AvatarRef,
		LikeCount:         c.LikeCount,
		ViewerHasLiked:    c.ViewerHasLiked,
		CommentCount:      c.CommentCount,
	}
}

func bookSummary(books map[string]models.Book, bookID string) *feed.BookSummary {
	if bookID == "" {
		return nil
	}
	b, ok := books[bookID]
	if !ok {
		return nil
	}
	return &feed.BookSummary{Title: b.Title, Author: b.Author, CoverURL: b.CoverURL}
}

func dedupeAuthors(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func collectAuthors(posts []models.Post, progress []models.ProgressUpdate, reviews []models.Review) []uint {
	seen := make(map[uint]struct{})
	var out []uint
	add := func(id uint) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	for _, p := range posts {
		add(p.AuthorID)
	}
	for _, p := range progress {
		add(p.AuthorID)
	}
	for _, r := range reviews {
		add(r.AuthorID)
	}
	return out
}

func collectBookIDs(posts []models.Post, progress []models.ProgressUpdate, reviews []models.Review) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	for _, p := range posts {
		add(p.BookID)
	}
	for _, p := range progress {
		add(p.BookID)
	}
	for _, r := range reviews {
		add(r.BookID)
	}
	return out
}
