package services

import (
	"context"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/openshelf/openshelf/backend/internal/apperrors"
	"github.com/openshelf/openshelf/backend/internal/models"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Every new pool connection to a plain ":memory:" DSN opens a separate
	// empty database, so concurrent queries would see no tables; pin the
	// pool to the single connection that holds the migrated schema.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to access test database pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Book{},
		&models.ProgressUpdate{},
		&models.Review{},
		&models.Like{},
		&models.Comment{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func testLog() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

// fakePostRepository is an in-memory stand-in for the Mongo post store.
type fakePostRepository struct {
	mu    sync.Mutex
	posts map[string]models.Post
	err   error
}

func errNotFoundPost(id string) error {
	return pkgerrors.Wrapf(apperrors.ErrNotFound, "post %s", id)
}

func newFakePostRepository() *fakePostRepository {
	return &fakePostRepository{posts: make(map[string]models.Post)}
}

func (f *fakePostRepository) CreatePost(_ context.Context, post *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	post.ID = primitive.NewObjectID()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	if post.UpdatedAt.IsZero() {
		post.UpdatedAt = post.CreatedAt
	}
	f.posts[post.ID.Hex()] = *post
	return nil
}

func (f *fakePostRepository) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	post, ok := f.posts[id]
	if !ok {
		return nil, errNotFoundPost(id)
	}
	return &post, nil
}

func (f *fakePostRepository) GetPostsByAuthorIDs(_ context.Context, authorIDs []uint, limit int64) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	allowed := make(map[uint]bool, len(authorIDs))
	for _, id := range authorIDs {
		allowed[id] = true
	}
	var out []models.Post
	for _, p := range f.posts {
		if allowed[p.AuthorID] {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakePostRepository) UpdatePostContent(_ context.Context, id, content string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	post, ok := f.posts[id]
	if !ok {
		return nil, errNotFoundPost(id)
	}
	post.Content = content
	post.UpdatedAt = time.Now()
	f.posts[id] = post
	return &post, nil
}

func (f *fakePostRepository) DeletePost(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.posts[id]; !ok {
		return errNotFoundPost(id)
	}
	delete(f.posts, id)
	return nil
}
