package services

import (
	"testing"

	"github.com/openshelf/openshelf/backend/internal/models"
	"github.com/openshelf/openshelf/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityResolver_Resolve(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.User{
		ID:          1,
		Name:        "alice",
		Email:       "alice@example.com",
		AvatarURL:   "https://cdn.example.com/alice.png",
		FirebaseUID: "test-uid-alice",
	}).Error)

	resolver := NewIdentityResolver(repositories.NewPostgresUserRepository(db), testLog())

	t.Run("resolves known users and fills gaps", func(t *testing.T) {
		identities, err := resolver.Resolve([]uint{1, 99})
		require.NoError(t, err)
		require.Len(t, identities, 2)
		assert.Equal(t, Identity{DisplayName: "alice", AvatarRef: "https://cdn.example.com/alice.png"}, identities[1])
		assert.Equal(t, Identity{}, identities[99])
	})

	t.Run("empty input yields empty map", func(t *testing.T) {
		identities, err := resolver.Resolve(nil)
		require.NoError(t, err)
		assert.Empty(t, identities)
	})
}
