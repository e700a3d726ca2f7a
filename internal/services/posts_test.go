package services

import (
	"context"
	"errors"
	"testing"

	"github.com/openshelf/openshelf/backend/internal/apperrors"
	"github.com/openshelf/openshelf/backend/internal/events"
	"github.com/openshelf/openshelf/backend/internal/feed"
	"github.com/openshelf/openshelf/backend/internal/models"
	"github.com/openshelf/openshelf/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostServiceForTest(t *testing.T) (*PostService, *fakePostRepository, *EngagementService) {
	db := setupTestDB(t)
	bus := events.NewBus()
	t.Cleanup(func() { bus.Close() })

	engagement := NewEngagementService(
		repositories.NewPostgresLikeRepository(db),
		repositories.NewPostgresCommentRepository(db),
		bus,
		testLog(),
	)
	posts := newFakePostRepository()
	return NewPostService(posts, engagement, bus, testLog()), posts, engagement
}

func TestCreatePost_TrimsAndValidatesContent(t *testing.T) {
	svc, _, _ := newPostServiceForTest(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, 1, models.CreatePostRequest{Content: "  loving chapter three  "})
	require.NoError(t, err)
	assert.Equal(t, "loving chapter three", post.Content)
	assert.Equal(t, uint(1), post.AuthorID)
	assert.False(t, post.ID.IsZero())

	_, err = svc.CreatePost(ctx, 1, models.CreatePostRequest{Content: "   "})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestEditPost_AuthorOnly(t *testing.T) {
	svc, _, _ := newPostServiceForTest(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, 1, models.CreatePostRequest{Content: "first draft"})
	require.NoError(t, err)

	_, err = svc.EditPost(ctx, 2, post.ID.Hex(), "not yours")
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))

	edited, err := svc.EditPost(ctx, 1, post.ID.Hex(), "second draft")
	require.NoError(t, err)
	assert.Equal(t, "second draft", edited.Content)
	assert.True(t, edited.UpdatedAt.After(edited.CreatedAt))

	_, err = svc.EditPost(ctx, 1, "64a000000000000000000000", "gone")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestDeletePost_CascadesEngagement(t *testing.T) {
	svc, postsRepo, engagement := newPostServiceForTest(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, 1, models.CreatePostRequest{Content: "short lived"})
	require.NoError(t, err)
	key := feed.TargetKey{Kind: feed.KindPost, ID: post.ID.Hex()}

	_, _, err = engagement.ToggleLike(2, key)
	require.NoError(t, err)
	_, _, err = engagement.AddComment(3, key, "goodbye soon")
	require.NoError(t, err)

	err = svc.DeletePost(ctx, 2, post.ID.Hex())
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))

	require.NoError(t, svc.DeletePost(ctx, 1, post.ID.Hex()))

	_, err = postsRepo.GetPostByID(ctx, post.ID.Hex())
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	counts, err := engagement.GetCounts(2, []feed.TargetKey{key})
	require.NoError(t, err)
	assert.Equal(t, Counts{}, counts[key])

	comments, err := engagement.ListComments(key)
	require.NoError(t, err)
	assert.Empty(t, comments)
}
