package services

import (
	"github.com/openshelf/openshelf/backend/internal/apperrors"
	"github.com/openshelf/openshelf/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// Identity is the minimal display identity attached to feed items.
type Identity struct {
	DisplayName string `json:"display_name"`
	AvatarRef   string `json:"avatar_ref,omitempty"`
}

// IdentityResolver batches profile lookups for feed decoration.
type IdentityResolver struct {
	users repositories.UserRepository
	log   *logrus.Entry
}

// NewIdentityResolver creates a new IdentityResolver
func NewIdentityResolver(users repositories.UserRepository, log *logrus.Entry) *IdentityResolver {
	return &IdentityResolver{users: users, log: log}
}

// Resolve maps every requested user ID to its display identity in a single
// batched lookup. The result always contains an entry for every requested ID;
// a missing profile yields a zero-value Identity so callers can render a
// fallback without nil checks.
func (r *IdentityResolver) Resolve(ids []uint) (map[uint]Identity, error) {
	out := make(map[uint]Identity, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	users, err := r.users.GetUsersByIDs(ids)
	if err != nil {
		r.log.WithError(err).Error("profile store lookup failed")
		return nil, apperrors.ErrDependencyUnavailable
	}
	for _, u := range users {
		out[u.ID] = Identity{DisplayName: u.Name, AvatarRef: u.AvatarURL}
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			out[id] = Identity{}
		}
	}
	return out, nil
}
