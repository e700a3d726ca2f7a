package services

import (
	"context"
	"strings"

	"github.com/openshelf/openshelf/backend/internal/apperrors"
	"github.com/openshelf/openshelf/backend/internal/events"
	"github.com/openshelf/openshelf/backend/internal/feed"
	"github.com/openshelf/openshelf/backend/internal/models"
	"github.com/openshelf/openshelf/backend/internal/repositories"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// PostService owns the post lifecycle: create, author-only edit and delete,
// with engagement rows cascaded on delete.
type PostService struct {
	posts      repositories.PostRepository
	engagement *EngagementService
	bus        *events.Bus
	log        *logrus.Entry
}

// NewPostService creates a new PostService
func NewPostService(posts repositories.PostRepository, engagement *EngagementService, bus *events.Bus, log *logrus.Entry) *PostService {
	return &PostService{posts: posts, engagement: engagement, bus: bus, log: log}
}

// CreatePost stores a new post authored by the given user.
func (s *PostService) CreatePost(ctx context.Context, authorID uint, req models.CreatePostRequest) (*models.Post, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, pkgerrors.Wrap(apperrors.ErrValidation, "post content must not be empty")
	}
	post := &models.Post{
		AuthorID: authorID,
		Content:  content,
		BookID:   req.BookID,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, pkgerrors.Wrap(err, "create post")
	}
	return post, nil
}

// GetPost loads a single post.
func (s *PostService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	return s.posts.GetPostByID(ctx, id)
}

// EditPost replaces a post's content. Author only; updated_at is bumped so
// the item renders as edited.
func (s *PostService) EditPost(ctx context.Context, userID uint, id, content string) (*models.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, pkgerrors.Wrap(apperrors.ErrValidation, "post content must not be empty")
	}

	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, pkgerrors.Wrap(apperrors.ErrUnauthorized, "only the author can edit a post")
	}
	return s.posts.UpdatePostContent(ctx, id, content)
}

// DeletePost removes a post and cascades its likes and comments, then
// publishes PostDeleted so held feeds can drop the item.
func (s *PostService) DeletePost(ctx context.Context, userID uint, id string) error {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return pkgerrors.Wrap(apperrors.ErrUnauthorized, "only the author can delete a post")
	}

	if err := s.posts.DeletePost(ctx, id); err != nil {
		return err
	}
	key := feed.TargetKey{Kind: feed.KindPost, ID: id}
	if err := s.engagement.RemoveAllFor(key); err != nil {
		// The post is already gone; orphaned engagement rows are unreachable
		// through the feed but still worth flagging.
		s.log.WithError(err).WithField("post_id", id).Error("engagement cascade failed")
		return err
	}

	if err := s.bus.PublishPostDeleted(events.PostDeleted{Kind: feed.KindPost, ID: id}); err != nil {
		s.log.WithError(err).Warn("failed to publish post deleted event")
	}
	return nil
}
