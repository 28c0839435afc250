package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamspace-dev/chatcore/internal/cache"
	"github.com/streamspace-dev/chatcore/internal/db"
	"github.com/streamspace-dev/chatcore/internal/friendship"
	"github.com/streamspace-dev/chatcore/internal/hub"
	"github.com/streamspace-dev/chatcore/internal/session"
	"github.com/streamspace-dev/chatcore/internal/store"
)

func TestHealthz_AlwaysOK(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	c, err := cache.NewCache(cache.Config{Enabled: false})
	require.NoError(t, err)
	database := db.NewDatabaseForTesting(sqlDB)
	s := store.New(database, c)
	router := New(Deps{
		Hub: hub.New(), Store: s, Friendships: friendship.New(s),
		Sessions: session.New(s), Database: database,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReadyz_DatabaseDownReturns500(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	mock.ExpectPing().WillReturnError(assert.AnError)

	c, err := cache.NewCache(cache.Config{Enabled: false})
	require.NoError(t, err)
	database := db.NewDatabaseForTesting(sqlDB)
	s := store.New(database, c)
	router := New(Deps{
		Hub: hub.New(), Store: s, Friendships: friendship.New(s),
		Sessions: session.New(s), Database: database,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
