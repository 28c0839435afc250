// Package friendship implements the state machine governing a pair of
// users' relationship (C8): add, accept, revert, delete. The stored row
// is always keyed (id0, id1) with id0 < id1; callers pass raw user ids in
// either order.
package friendship

import (
	"context"

	"github.com/streamspace-dev/chatcore/internal/apperr"
	"github.com/streamspace-dev/chatcore/internal/logger"
	"github.com/streamspace-dev/chatcore/internal/models"
	"github.com/streamspace-dev/chatcore/internal/store"
)

// Machine wraps a Store with the friendship transition rules.
type Machine struct {
	store *store.Store
}

// New builds a Machine backed by s.
func New(s *store.Store) *Machine {
	return &Machine{store: s}
}

func ordered(user, other int64) (lo, hi int64) {
	if user < other {
		return user, other
	}
	return other, user
}

// Add records user's friend request toward other. If no row exists, one
// is inserted at Adding (from user's view). If a row exists at Deleted,
// it transitions back to Adding. Any other existing status fails.
func (m *Machine) Add(ctx context.Context, user, other int64) (*models.Friendship, error) {
	lo, hi := ordered(user, other)

	existing, err := m.store.FindFriendship(ctx, user, other)
	if err != nil {
		return nil, err
	}

	status := statusForInitiator(user, lo)

	if existing == nil {
		fs, err := m.store.InsertFriendship(ctx, lo, hi, status)
		if err != nil {
			return nil, err
		}
		logger.Friendship().Info().Int64("lo", lo).Int64("hi", hi).Msg("friendship added")
		return fs, nil
	}

	if existing.Status != models.FriendDeleted {
		return nil, apperr.BadRequest("status must be deleted")
	}
	return m.store.UpdateFriendshipStatus(ctx, lo, hi, status)
}

// statusForInitiator is the status stored for a fresh/reopened request:
// Adding from the initiator's own view when they are id0, Added when they
// are id1 - so viewpoint() always reports "Adding" back to whoever placed
// the request, regardless of which side of the (id0, id1) ordering they
// landed on.
func statusForInitiator(initiator, id0 int64) models.FriendStatus {
	if initiator == id0 {
		return models.FriendAdding
	}
	return models.FriendAdded
}

// Accept requires the row to currently read Added from user's viewpoint
// (i.e., other initiated the request) and transitions it to Accepted.
func (m *Machine) Accept(ctx context.Context, user, other int64) (*models.Friendship, error) {
	lo, hi := ordered(user, other)

	existing, err := m.store.FindFriendship(ctx, user, other)
	if err != nil {
		return nil, err
	}
	if existing == nil || viewpoint(existing, user) != models.FriendAdded {
		return nil, apperr.BadRequest("status must be added")
	}

	fs, err := m.store.UpdateFriendshipStatus(ctx, lo, hi, models.FriendAccepted)
	if err != nil {
		return nil, err
	}
	logger.Friendship().Info().Int64("lo", lo).Int64("hi", hi).Msg("friendship accepted")
	return fs, nil
}

// Revert requires status ∈ {Adding, Added} and transitions to Deleted.
func (m *Machine) Revert(ctx context.Context, user, other int64) (*models.Friendship, error) {
	lo, hi := ordered(user, other)

	existing, err := m.store.FindFriendship(ctx, user, other)
	if err != nil {
		return nil, err
	}
	if existing == nil || (existing.Status != models.FriendAdding && existing.Status != models.FriendAdded) {
		return nil, apperr.BadRequest("status must be adding or added")
	}

	return m.store.UpdateFriendshipStatus(ctx, lo, hi, models.FriendDeleted)
}

// Delete requires status = Accepted and transitions to Deleted.
func (m *Machine) Delete(ctx context.Context, user, other int64) (*models.Friendship, error) {
	lo, hi := ordered(user, other)

	existing, err := m.store.FindFriendship(ctx, user, other)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.Status != models.FriendAccepted {
		return nil, apperr.BadRequest("status must be accepted")
	}

	return m.store.UpdateFriendshipStatus(ctx, lo, hi, models.FriendDeleted)
}

// Viewpoint projects fs's stored status onto user's side of the pair;
// exported so callers outside this package (the client session, when
// building a ReceiveFriend/ReceiveRoom projection) can reuse it.
func Viewpoint(fs *models.Friendship, user int64) models.FriendStatus {
	return viewpoint(fs, user)
}

// viewpoint projects fs's stored status onto user's side of the pair.
// Adding/Added are stored relative to id0: Adding means id0 initiated,
// Added means id1 initiated. id0 always sees the stored value directly;
// id1 sees it flipped, since a request id0 is "Adding" reads as "Added"
// from id1's side and vice versa. Accepted/Deleted are symmetric and
// need no projection.
func viewpoint(fs *models.Friendship, user int64) models.FriendStatus {
	if fs.Status != models.FriendAdding && fs.Status != models.FriendAdded {
		return fs.Status
	}
	if user == fs.ID0 {
		return fs.Status
	}
	if fs.Status == models.FriendAdding {
		return models.FriendAdded
	}
	return models.FriendAdding
}
