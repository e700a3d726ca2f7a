package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf/backend/internal/apperrors"
	"github.com/openshelf/openshelf/backend/internal/events"
	"github.com/openshelf/openshelf/backend/internal/feed"
	"github.com/openshelf/openshelf/backend/internal/models"
	"github.com/openshelf/openshelf/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockFollowRepository is a mock implementation of the social graph store
type MockFollowRepository struct {
	mock.Mock
}

func (m *MockFollowRepository) CreateFollow(follow *models.Follow) error {
	args := m.Called(follow)
	return args.Error(0)
}

func (m *MockFollowRepository) DeleteFollow(followerID, followingID uint) error {
	args := m.Called(followerID, followingID)
	return args.Error(0)
}

func (m *MockFollowRepository) IsFollowing(followerID, followingID uint) (bool, error) {
	args := m.Called(followerID, followingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) GetFollowingIDs(userID uint) ([]uint, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockFollowRepository) GetFollowersCount(userID uint) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFollowRepository) GetFollowingCount(userID uint) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockProgressRepository is a mock implementation of the progress event source
type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) CreateProgress(ctx context.Context, progress *models.ProgressUpdate) error {
	args := m.Called(ctx, progress)
	return args.Error(0)
}

func (m *MockProgressRepository) GetProgressByID(ctx context.Context, id string) (*models.ProgressUpdate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProgressUpdate), args.Error(1)
}

func (m *MockProgressRepository) GetProgressByAuthorIDs(ctx context.Context, authorIDs []uint, limit int) ([]models.ProgressUpdate, error) {
	args := m.Called(ctx, authorIDs, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProgressUpdate), args.Error(1)
}

type feedFixture struct {
	db         *gorm.DB
	posts      *fakePostRepository
	engagement *EngagementService
	svc        *FeedService
}

func newFeedFixture(t *testing.T, cfg FeedConfig) *feedFixture {
	db := setupTestDB(t)
	bus := events.NewBus()
	t.Cleanup(func() { bus.Close() })

	engagement := NewEngagementService(
		repositories.NewPostgresLikeRepository(db),
		repositories.NewPostgresCommentRepository(db),
		bus,
		testLog(),
	)
	identity := NewIdentityResolver(repositories.NewPostgresUserRepository(db), testLog())
	posts := newFakePostRepository()

	svc := NewFeedService(
		repositories.NewPostgresFollowRepository(db),
		posts,
		repositories.NewPostgresProgressRepository(db),
		repositories.NewPostgresReviewRepository(db),
		repositories.NewPostgresBookRepository(db),
		identity,
		engagement,
		cfg,
		testLog(),
	)
	return &feedFixture{db: db, posts: posts, engagement: engagement, svc: svc}
}

func (f *feedFixture) seedUser(t *testing.T, id uint, name string) {
	require.NoError(t, f.db.Create(&models.User{
		ID:          id,
		Name:        name,
		Email:       name + "@example.com",
		FirebaseUID: "test-uid-" + name,
	}).Error)
}

func (f *feedFixture) seedFollow(t *testing.T, followerID, followingID uint) {
	require.NoError(t, f.db.Create(&models.Follow{FollowerID: followerID, FollowingID: followingID}).Error)
}

func (f *feedFixture) seedBook(t *testing.T, id, title string) {
	require.NoError(t, f.db.Create(&models.Book{ID: id, Title: title, Author: "Test Author"}).Error)
}

func (f *feedFixture) seedProgress(t *testing.T, authorID uint, bookID string, toPage int, at time.Time) string {
	id := uuid.NewString()
	require.NoError(t, f.db.Create(&models.ProgressUpdate{
		ID: id, AuthorID: authorID, BookID: bookID, ToPage: toPage, CreatedAt: at,
	}).Error)
	return id
}

func (f *feedFixture) seedReview(t *testing.T, authorID uint, bookID string, rating int, at time.Time) string {
	id := uuid.NewString()
	require.NoError(t, f.db.Create(&models.Review{
		ID: id, AuthorID: authorID, BookID: bookID, Rating: rating, CreatedAt: at,
	}).Error)
	return id
}

func (f *feedFixture) seedPost(t *testing.T, authorID uint, bookID, content string, at time.Time) string {
	post := &models.Post{AuthorID: authorID, BookID: bookID, Content: content, CreatedAt: at, UpdatedAt: at}
	require.NoError(t, f.posts.CreatePost(context.Background(), post))
	return post.ID.Hex()
}

func TestBuildFeed_MergesSourcesNewestFirst(t *testing.T) {
	f := newFeedFixture(t, DefaultFeedConfig())
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	f.seedUser(t, 1, "viewer")
	f.seedUser(t, 2, "alice")
	f.seedUser(t, 3, "bob")
	f.seedFollow(t, 1, 2)
	f.seedFollow(t, 1, 3)
	f.seedBook(t, "book-1", "Dune")

	postID := f.seedPost(t, 2, "book-1", "just started this", base.Add(10*time.Minute))
	reviewID := f.seedReview(t, 2, "book-1", 5, base.Add(15*time.Minute))
	progressID := f.seedProgress(t, 3, "book-1", 120, base.Add(20*time.Minute))

	result, err := f.svc.BuildFeed(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, result.Partial)
	require.Len(t, result.Items, 3)

	assert.Equal(t, progressID, result.Items[0].ID)
	assert.Equal(t, feed.KindProgress, result.Items[0].Kind)
	assert.Equal(t, reviewID, result.Items[1].ID)
	assert.Equal(t, feed.KindReview, result.Items[1].Kind)
	assert.Equal(t, postID, result.Items[2].ID)
	assert.Equal(t, feed.KindPost, result.Items[2].Kind)

	assert.Equal(t, "bob", result.Items[0].AuthorDisplayName)
	require.NotNil(t, result.Items[0].Progress)
	require.NotNil(t, result.Items[0].Progress.Book)
	assert.Equal(t, "Dune", result.Items[0].Progress.Book.Title)
	assert.Nil(t, result.Items[0].Post)
	assert.Nil(t, result.Items[0].Review)
}

func TestBuildFeed_TieBreakIsStable(t *testing.T) {
	f := newFeedFixture(t, DefaultFeedConfig())
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	f.seedUser(t, 1, "viewer")
	f.seedUser(t, 2, "alice")
	f.seedFollow(t, 1, 2)
	f.seedReview(t, 2, "", 4, at)
	f.seedProgress(t, 2, "", 30, at)
	f.seedPost(t, 2, "", "same instant", at)

	first, err := f.svc.BuildFeed(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, first.Items, 3)

	for i := 0; i < 3; i++ {
		again, err := f.svc.BuildFeed(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, again.Items, 3)
		for j := range first.Items {
			assert.Equal(t, first.Items[j].Kind, again.Items[j].Kind)
			assert.Equal(t, first.Items[j].ID, again.Items[j].ID)
		}
	}
}

func TestBuildFeed_ScopedToSocialGraph(t *testing.T) {
	f := newFeedFixture(t, DefaultFeedConfig())
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	f.seedUser(t, 1, "viewer")
	f.seedUser(t, 2, "followed")
	f.seedUser(t, 3, "stranger")
	f.seedFollow(t, 1, 2)

	followedID := f.seedProgress(t, 2, "", 10, at)
	f.seedProgress(t, 3, "", 10, at.Add(time.Minute))
	ownID := f.seedReview(t, 1, "", 3, at.Add(2*time.Minute))

	result, err := f.svc.BuildFeed(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, ownID, result.Items[0].ID)
	assert.Equal(t, followedID, result.Items[1].ID)
}

func TestBuildFeed_ZeroViewerGetsEmptyFeed(t *testing.T) {
	f := newFeedFixture(t, DefaultFeedConfig())

	result, err := f.svc.BuildFeed(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.False(t, result.Partial)
}

func TestBuildFeed_DecoratesEngagement(t *testing.T) {
	f := newFeedFixture(t, DefaultFeedConfig())
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	f.seedUser(t, 1, "viewer")
	f.seedUser(t, 2, "alice")
	f.seedFollow(t, 1, 2)
	progressID := f.seedProgress(t, 2, "", 50, at)

	key := feed.TargetKey{Kind: feed.KindProgress, ID: progressID}
	_, _, err := f.engagement.ToggleLike(1, key)
	require.NoError(t, err)
	_, _, err = f.engagement.ToggleLike(2, key)
	require.NoError(t, err)
	_, _, err = f.engagement.AddComment(2, key, "nice pace")
	require.NoError(t, err)

	result, err := f.svc.BuildFeed(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, 2, result.Items[0].LikeCount)
	assert.True(t, result.Items[0].ViewerHasLiked)
	assert.Equal(t, 1, result.Items[0].CommentCount)
}

func TestBuildFeed_PartialWhenSourceFails(t *testing.T) {
	f := newFeedFixture(t, DefaultFeedConfig())
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	f.seedUser(t, 1, "viewer")
	f.seedUser(t, 2, "alice")
	f.seedFollow(t, 1, 2)
	reviewID := f.seedReview(t, 2, "", 5, at)
	postID := f.seedPost(t, 2, "", "still here", at.Add(time.Minute))

	broken := new(MockProgressRepository)
	broken.On("GetProgressByAuthorIDs", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))
	f.svc.progress = broken

	result, err := f.svc.BuildFeed(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, result.Partial)
	require.Len(t, result.Items, 2)
	assert.Equal(t, postID, result.Items[0].ID)
	assert.Equal(t, reviewID, result.Items[1].ID)
}

func TestBuildFeed_SocialGraphFailureFailsTheCall(t *testing.T) {
	f := newFeedFixture(t, DefaultFeedConfig())

	broken := new(MockFollowRepository)
	broken.On("GetFollowingIDs", uint(1)).Return(nil, errors.New("connection refused"))
	f.svc.follows = broken

	_, err := f.svc.BuildFeed(context.Background(), 1)
	assert.True(t, errors.Is(err, apperrors.ErrDependencyUnavailable))
}

func TestBuildFeed_MissingProfileAndBookDegradeGracefully(t *testing.T) {
	f := newFeedFixture(t, DefaultFeedConfig())
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	f.seedUser(t, 1, "viewer")
	f.seedFollow(t, 1, 2) // followed author has no profile row
	id := f.seedProgress(t, 2, "deleted-book", 80, at)

	result, err := f.svc.BuildFeed(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, id, result.Items[0].ID)
	assert.Empty(t, result.Items[0].AuthorDisplayName)
	require.NotNil(t, result.Items[0].Progress)
	assert.Nil(t, result.Items[0].Progress.Book)
}

// countingLikeRepository wraps a real like store and records how many batch
// count queries a feed composition issues.
type countingLikeRepository struct {
	repositories.LikeRepository
	batchCalls int
}

func (c *countingLikeRepository) CountByTargets(kind feed.ItemKind, ids []string) (map[string]int64, error) {
	c.batchCalls++
	return c.LikeRepository.CountByTargets(kind, ids)
}

func TestBuildFeed_BatchesEngagementPerKind(t *testing.T) {
	f := newFeedFixture(t, DefaultFeedConfig())
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	f.seedUser(t, 1, "viewer")
	f.seedUser(t, 2, "alice")
	f.seedFollow(t, 1, 2)
	for i := 0; i < 5; i++ {
		f.seedProgress(t, 2, "", 10+i, at.Add(time.Duration(i)*time.Minute))
	}
	f.seedReview(t, 2, "", 4, at.Add(10*time.Minute))

	counting := &countingLikeRepository{
		LikeRepository: repositories.NewPostgresLikeRepository(f.db),
	}
	bus := events.NewBus()
	t.Cleanup(func() { bus.Close() })
	f.svc.engagement = NewEngagementService(
		counting,
		repositories.NewPostgresCommentRepository(f.db),
		bus,
		testLog(),
	)

	result, err := f.svc.BuildFeed(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, result.Items, 6)

	// Two kinds are present, so two grouped queries; never one per item.
	assert.Equal(t, 2, counting.batchCalls)
}

func TestBuildFeed_CapsMergedItems(t *testing.T) {
	cfg := DefaultFeedConfig()
	cfg.MaxItems = 2
	f := newFeedFixture(t, cfg)
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	f.seedUser(t, 1, "viewer")
	f.seedUser(t, 2, "alice")
	f.seedFollow(t, 1, 2)
	f.seedProgress(t, 2, "", 10, at)
	newer := f.seedReview(t, 2, "", 4, at.Add(time.Minute))
	newest := f.seedPost(t, 2, "", "latest", at.Add(2*time.Minute))

	result, err := f.svc.BuildFeed(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, newest, result.Items[0].ID)
	assert.Equal(t, newer, result.Items[1].ID)
}
