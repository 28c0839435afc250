package session

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamspace-dev/chatcore/internal/apperr"
	"github.com/streamspace-dev/chatcore/internal/cache"
	"github.com/streamspace-dev/chatcore/internal/db"
	"github.com/streamspace-dev/chatcore/internal/store"
)

// newTestRegistry wires a Registry atop a disabled cache, which makes
// SessionScore/SessionAdd fail deterministically without a real Redis -
// enough to exercise the Unauthorized paths these tests target.
func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	c, err := cache.NewCache(cache.Config{Enabled: false})
	require.NoError(t, err)

	return New(store.New(db.NewDatabaseForTesting(sqlDB), c))
}

func TestVerify_UnknownTokenIsUnauthorized(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Verify(context.Background(), 1, "bogus-token", false)
	require.Error(t, err)
	appErr, ok := err.(*apperr.AppError)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeUnauthorized, appErr.Code)
}

func TestList_StaleCallerTokenIsUnauthorized(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.List(context.Background(), 1, "stale-token")
	require.Error(t, err)
	appErr, ok := err.(*apperr.AppError)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeUnauthorized, appErr.Code)
}
