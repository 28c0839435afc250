// Package session implements the authentication session registry (C2):
// issuing, verifying, listing, and revoking per-user login tokens against
// the store's sorted-set session backend.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/streamspace-dev/chatcore/internal/apperr"
	"github.com/streamspace-dev/chatcore/internal/models"
	"github.com/streamspace-dev/chatcore/internal/store"
)

// Registry issues and verifies session tokens on top of a Store.
type Registry struct {
	store *store.Store
}

// New builds a Registry backed by store.
func New(s *store.Store) *Registry {
	return &Registry{store: s}
}

// Info describes one session entry as returned by List.
type Info struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
	Current   bool   `json:"current"`
}

// Issue generates a new token for userID, records it with the current
// timestamp, and trims the user's session set to the 5 newest.
func (r *Registry) Issue(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	now := float64(time.Now().Unix())

	if err := r.store.SessionAdd(ctx, userID, token, now); err != nil {
		return "", err
	}
	if err := r.store.SessionTrim(ctx, userID); err != nil {
		return "", err
	}
	return token, nil
}

// Verify checks that token belongs to userID's active session set and
// returns the associated User. If refresh is set, the token's score is
// bumped to the current time so it survives the next trim.
func (r *Registry) Verify(ctx context.Context, userID int64, token string, refresh bool) (*models.User, error) {
	if _, err := r.store.SessionScore(ctx, userID, token); err != nil {
		return nil, apperr.Unauthorized("session not found")
	}

	user, err := r.store.GetUser(ctx, userID)
	if err != nil {
		return nil, apperr.Unauthorized("session not found")
	}
	if !user.Active {
		return nil, apperr.Forbidden("account is disabled")
	}

	if refresh {
		if err := r.store.SessionAdd(ctx, userID, token, float64(time.Now().Unix())); err != nil {
			return nil, err
		}
	}

	return user, nil
}

// List returns every session for userID as {id, timestamp, current}.
// callerToken must itself be a live session, or List fails with
// Unauthorized to prevent session enumeration from a stale token.
func (r *Registry) List(ctx context.Context, userID int64, callerToken string) ([]Info, error) {
	if _, err := r.store.SessionScore(ctx, userID, callerToken); err != nil {
		return nil, apperr.Unauthorized("session not found")
	}

	entries, err := r.store.SessionList(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]Info, 0, len(entries))
	for _, e := range entries {
		token, _ := e.Member.(string)
		out = append(out, Info{
			ID:        token,
			Timestamp: int64(e.Score),
			Current:   token == callerToken,
		})
	}
	return out, nil
}

// Revoke removes token from userID's session set.
func (r *Registry) Revoke(ctx context.Context, userID int64, token string) error {
	return r.store.SessionRemove(ctx, userID, token)
}
