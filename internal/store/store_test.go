package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamspace-dev/chatcore/internal/cache"
	"github.com/streamspace-dev/chatcore/internal/db"
	"github.com/streamspace-dev/chatcore/internal/models"
)

func newTestStore(t *testing.T, sqlDB *sqlmock.Sqlmock) *Store {
	t.Helper()
	c, err := cache.NewCache(cache.Config{Enabled: false})
	require.NoError(t, err)
	return &Store{
		users:       db.NewUserDB(nil),
		friendships: db.NewFriendshipDB(nil),
		filelinks:   db.NewFileLinkDB(nil),
		cache:       c,
	}
}

func TestGetUser_CacheDisabledFallsBackToDB(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	c, err := cache.NewCache(cache.Config{Enabled: false})
	require.NoError(t, err)

	s := &Store{
		users:       db.NewUserDB(sqlDB),
		friendships: db.NewFriendshipDB(sqlDB),
		filelinks:   db.NewFileLinkDB(sqlDB),
		cache:       c,
	}

	rows := sqlmock.NewRows([]string{"id", "username", "password", "nickname", "avatar", "role", "active", "created_at", "updated_at"}).
		AddRow(1, "alice", "hash", "Alice", "", models.RoleUser, true, time.Now(), time.Now())
	mock.ExpectQuery("SELECT").WithArgs(int64(1)).WillReturnRows(rows)

	user, err := s.GetUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentMessages_CacheDisabledReturnsEmpty(t *testing.T) {
	c, err := cache.NewCache(cache.Config{Enabled: false})
	require.NoError(t, err)
	s := &Store{cache: c}

	messages, err := s.RecentMessages(context.Background(), "chats:room-1-2")
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestCacheMessage_CacheDisabledIsNoop(t *testing.T) {
	c, err := cache.NewCache(cache.Config{Enabled: false})
	require.NoError(t, err)
	s := &Store{cache: c}

	err = s.CacheMessage(context.Background(), "chats:room-1-2", models.Message{ID: "m1", Content: "hi"})
	assert.NoError(t, err)
}

func TestSessionList_CacheDisabledReturnsError(t *testing.T) {
	c, err := cache.NewCache(cache.Config{Enabled: false})
	require.NoError(t, err)
	s := &Store{cache: c}

	_, err = s.SessionList(context.Background(), 1)
	assert.Error(t, err)
}
