package services

import (
	"errors"
	"strings"
	"time"

	"github.com/openshelf/openshelf/backend/internal/apperrors"
	"github.com/openshelf/openshelf/backend/internal/events"
	"github.com/openshelf/openshelf/backend/internal/feed"
	"github.com/openshelf/openshelf/backend/internal/models"
	"github.com/openshelf/openshelf/backend/internal/repositories"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Counts is the engagement snapshot for one feed target.
type Counts struct {
	LikeCount      int  `json:"like_count"`
	ViewerHasLiked bool `json:"viewer_has_liked"`
	CommentCount   int  `json:"comment_count"`
}

// EngagementService is the engagement store: likes and comments keyed by the
// composite (kind, id) target, with batched count queries and atomic
// mutations. Every mutation returns the authoritative post-mutation counters;
// callers replace their cached values rather than incrementing.
type EngagementService struct {
	likes    repositories.LikeRepository
	comments repositories.CommentRepository
	bus      *events.Bus
	log      *logrus.Entry
}

// NewEngagementService creates a new EngagementService
func NewEngagementService(
	likes repositories.LikeRepository,
	comments repositories.CommentRepository,
	bus *events.Bus,
	log *logrus.Entry,
) *EngagementService {
	return &EngagementService{likes: likes, comments: comments, bus: bus, log: log}
}

// GetCounts resolves like count, viewer-liked flag and comment count for all
// targets in batch: at most one query per concern per kind, never one per
// item. The result has an entry for every requested target; targets nobody
// has touched report zeros.
func (s *EngagementService) GetCounts(viewerID uint, targets []feed.TargetKey) (map[feed.TargetKey]Counts, error) {
	out := make(map[feed.TargetKey]Counts, len(targets))
	if len(targets) == 0 {
		return out, nil
	}

	byKind := make(map[feed.ItemKind][]string)
	for _, t := range targets {
		byKind[t.Kind] = append(byKind[t.Kind], t.ID)
		out[t] = Counts{}
	}

	for kind, ids := range byKind {
		likeCounts, err := s.likes.CountByTargets(kind, ids)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "batch like counts")
		}
		commentCounts, err := s.comments.CountByTargets(kind, ids)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "batch comment counts")
		}
		liked := map[string]bool{}
		if viewerID != 0 {
			liked, err = s.likes.LikedByUser(viewerID, kind, ids)
			if err != nil {
				return nil, pkgerrors.Wrap(err, "batch viewer likes")
			}
		}
		for _, id := range ids {
			key := feed.TargetKey{Kind: kind, ID: id}
			out[key] = Counts{
				LikeCount:      int(likeCounts[id]),
				ViewerHasLiked: liked[id],
				CommentCount:   int(commentCounts[id]),
			}
		}
	}
	return out, nil
}

// ToggleLike flips the viewer's like state on a target and returns the
// authoritative like count. Calling it twice returns to the initial state.
func (s *EngagementService) ToggleLike(userID uint, key feed.TargetKey) (newLikeCount int, nowLiked bool, err error) {
	nowLiked, err = s.likes.Toggle(userID, key)
	if err != nil {
		return 0, false, pkgerrors.Wrap(err, "toggle like")
	}
	count, err := s.likes.CountForTarget(key)
	if err != nil {
		return 0, false, pkgerrors.Wrap(err, "count likes after toggle")
	}

	if err := s.bus.PublishLikeChanged(events.LikeChanged{
		Kind:     key.Kind,
		ID:       key.ID,
		NewCount: int(count),
		ActorID:  userID,
		Liked:    nowLiked,
	}); err != nil {
		s.log.WithError(err).Warn("failed to publish like event")
	}
	return int(count), nowLiked, nil
}

// AddComment appends a comment to a target and returns it together with the
// authoritative comment count. Content that trims to empty is rejected.
func (s *EngagementService) AddComment(userID uint, key feed.TargetKey, content string) (*models.Comment, int, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, 0, pkgerrors.Wrap(apperrors.ErrValidation, "comment content must not be empty")
	}

	comment := &models.Comment{
		TargetKind: string(key.Kind),
		TargetID:   key.ID,
		UserID:     userID,
		Content:    content,
	}
	if err := s.comments.CreateComment(comment); err != nil {
		return nil, 0, pkgerrors.Wrap(err, "create comment")
	}
	count, err := s.comments.CountForTarget(key)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(err, "count comments after add")
	}

	if err := s.bus.PublishCommentAdded(events.CommentAdded{
		Kind:      key.Kind,
		ID:        key.ID,
		CommentID: comment.ID,
		NewCount:  int(count),
		ActorID:   userID,
	}); err != nil {
		s.log.WithError(err).Warn("failed to publish comment event")
	}
	return comment, int(count), nil
}

// EditComment rewrites a comment's content. Only the original author may
// edit; UpdatedAt is bumped so the UI can mark it edited.
func (s *EngagementService) EditComment(userID uint, commentID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, pkgerrors.Wrap(apperrors.ErrValidation, "comment content must not be empty")
	}

	comment, err := s.comments.GetCommentByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(apperrors.ErrNotFound, "comment "+commentID)
		}
		return nil, pkgerrors.Wrap(err, "load comment")
	}
	if comment.UserID != userID {
		return nil, pkgerrors.Wrap(apperrors.ErrUnauthorized, "only the author can edit a comment")
	}

	comment.Content = content
	comment.UpdatedAt = time.Now()
	if err := s.comments.UpdateComment(comment); err != nil {
		return nil, pkgerrors.Wrap(err, "update comment")
	}
	return comment, nil
}

// DeleteComment removes a comment (author only) and returns the authoritative
// comment count for its target.
func (s *EngagementService) DeleteComment(userID uint, commentID string) (int, error) {
	comment, err := s.comments.GetCommentByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.Wrap(apperrors.ErrNotFound, "comment "+commentID)
		}
		return 0, pkgerrors.Wrap(err, "load comment")
	}
	if comment.UserID != userID {
		return 0, pkgerrors.Wrap(apperrors.ErrUnauthorized, "only the author can delete a comment")
	}

	if err := s.comments.DeleteComment(commentID); err != nil {
		return 0, pkgerrors.Wrap(err, "delete comment")
	}
	key := feed.TargetKey{Kind: feed.ItemKind(comment.TargetKind), ID: comment.TargetID}
	count, err := s.comments.CountForTarget(key)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "count comments after delete")
	}
	return int(count), nil
}

// ListComments returns a target's comments oldest first.
func (s *EngagementService) ListComments(key feed.TargetKey) ([]models.Comment, error) {
	return s.comments.ListByTarget(key)
}

// RemoveAllFor drops every like and comment attached to a target. Used when
// the target itself is deleted so no orphaned engagement rows remain.
func (s *EngagementService) RemoveAllFor(key feed.TargetKey) error {
	if err := s.likes.DeleteForTarget(key); err != nil {
		return pkgerrors.Wrap(err, "cascade likes")
	}
	if err := s.comments.DeleteForTarget(key); err != nil {
		return pkgerrors.Wrap(err, "cascade comments")
	}
	return nil
}
