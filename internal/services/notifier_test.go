package services

import (
	"context"
	"testing"
	"time"

	"github.com/openshelf/openshelf/backend/internal/events"
	"github.com/openshelf/openshelf/backend/internal/feed"
	"github.com/openshelf/openshelf/backend/internal/models"
	"github.com/openshelf/openshelf/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type notifierFixture struct {
	db  *gorm.DB
	bus *events.Bus
}

func newNotifierFixture(t *testing.T) *notifierFixture {
	db := setupTestDB(t)
	bus := events.NewBus()
	t.Cleanup(func() { bus.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	notifier := NewNotifier(
		bus,
		repositories.NewPostgresNotificationRepository(db),
		newFakePostRepository(),
		repositories.NewPostgresProgressRepository(db),
		repositories.NewPostgresReviewRepository(db),
		testLog(),
	)
	require.NoError(t, notifier.Start(ctx))

	return &notifierFixture{db: db, bus: bus}
}

func (f *notifierFixture) notificationCount(recipientID uint) int64 {
	var count int64
	f.db.Model(&models.Notification{}).
		Where("recipient_id = ?", recipientID).Count(&count)
	return count
}

func TestNotifier_LikeNotifiesTheAuthor(t *testing.T) {
	f := newNotifierFixture(t)

	require.NoError(t, f.db.Create(&models.Review{
		ID: "review-1", AuthorID: 5, BookID: "book-1", Rating: 4, CreatedAt: time.Now(),
	}).Error)

	require.NoError(t, f.bus.PublishLikeChanged(events.LikeChanged{
		Kind: feed.KindReview, ID: "review-1", NewCount: 1, ActorID: 2, Liked: true,
	}))

	assert.Eventually(t, func() bool {
		return f.notificationCount(5) == 1
	}, 2*time.Second, 20*time.Millisecond)

	var stored models.Notification
	require.NoError(t, f.db.First(&stored, "recipient_id = ?", 5).Error)
	assert.Equal(t, "like", stored.Type)
	assert.Equal(t, uint(2), stored.ActorID)
	assert.Equal(t, "review", stored.TargetKind)
	assert.Equal(t, "review-1", stored.TargetID)
	assert.False(t, stored.IsRead)
}

func TestNotifier_SkipsUnlikesAndSelfEngagement(t *testing.T) {
	f := newNotifierFixture(t)

	require.NoError(t, f.db.Create(&models.ProgressUpdate{
		ID: "prog-1", AuthorID: 5, BookID: "book-1", ToPage: 10, CreatedAt: time.Now(),
	}).Error)

	// An unlike and a self-like; neither should produce a row.
	require.NoError(t, f.bus.PublishLikeChanged(events.LikeChanged{
		Kind: feed.KindProgress, ID: "prog-1", NewCount: 0, ActorID: 2, Liked: false,
	}))
	require.NoError(t, f.bus.PublishLikeChanged(events.LikeChanged{
		Kind: feed.KindProgress, ID: "prog-1", NewCount: 1, ActorID: 5, Liked: true,
	}))

	// A real like afterwards proves the consumer processed the queue.
	require.NoError(t, f.bus.PublishLikeChanged(events.LikeChanged{
		Kind: feed.KindProgress, ID: "prog-1", NewCount: 2, ActorID: 3, Liked: true,
	}))

	assert.Eventually(t, func() bool {
		return f.notificationCount(5) == 1
	}, 2*time.Second, 20*time.Millisecond)

	var stored models.Notification
	require.NoError(t, f.db.First(&stored, "recipient_id = ?", 5).Error)
	assert.Equal(t, uint(3), stored.ActorID)
}

func TestNotifier_CommentNotifiesTheAuthor(t *testing.T) {
	f := newNotifierFixture(t)

	require.NoError(t, f.db.Create(&models.Review{
		ID: "review-2", AuthorID: 8, BookID: "book-1", Rating: 2, CreatedAt: time.Now(),
	}).Error)

	require.NoError(t, f.bus.PublishCommentAdded(events.CommentAdded{
		Kind: feed.KindReview, ID: "review-2", CommentID: "comment-1", NewCount: 1, ActorID: 4,
	}))

	assert.Eventually(t, func() bool {
		return f.notificationCount(8) == 1
	}, 2*time.Second, 20*time.Millisecond)

	var stored models.Notification
	require.NoError(t, f.db.First(&stored, "recipient_id = ?", 8).Error)
	assert.Equal(t, "comment", stored.Type)
	assert.Equal(t, "commented on your review", stored.Message)
}
