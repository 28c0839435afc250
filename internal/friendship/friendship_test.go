package friendship

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamspace-dev/chatcore/internal/apperr"
	"github.com/streamspace-dev/chatcore/internal/cache"
	"github.com/streamspace-dev/chatcore/internal/db"
	"github.com/streamspace-dev/chatcore/internal/models"
	"github.com/streamspace-dev/chatcore/internal/store"
)

func newTestMachine(t *testing.T) (*Machine, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	c, err := cache.NewCache(cache.Config{Enabled: false})
	require.NoError(t, err)

	return New(store.New(db.NewDatabaseForTesting(sqlDB), c)), mock
}

func TestAdd_NoExistingRowInserts(t *testing.T) {
	m, mock := newTestMachine(t)

	mock.ExpectQuery("SELECT id0, id1, status").
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id0", "id1", "status"}))
	mock.ExpectExec("INSERT INTO friendships").
		WithArgs(int64(1), int64(2), models.FriendAdding).
		WillReturnResult(sqlmock.NewResult(0, 1))

	fs, err := m.Add(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, models.FriendAdding, fs.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdd_HigherIDInitiatorStoresAddedAndRecipientCanAccept(t *testing.T) {
	m, mock := newTestMachine(t)

	// User 2 (the higher id) initiates: the row is still keyed (id0=1,
	// id1=2), but the stored status must read Added - the literal value
	// id0's side (user 1, the recipient) sees - not Adding.
	mock.ExpectQuery("SELECT id0, id1, status").
		WithArgs(int64(2), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id0", "id1", "status"}))
	mock.ExpectExec("INSERT INTO friendships").
		WithArgs(int64(1), int64(2), models.FriendAdded).
		WillReturnResult(sqlmock.NewResult(0, 1))

	fs, err := m.Add(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.Equal(t, models.FriendAdded, fs.Status)
	assert.NoError(t, mock.ExpectationsWereMet())

	// The recipient (user 1, id0) now accepts: their viewpoint on the
	// stored Added row is Added directly, so Accept must succeed.
	rows := sqlmock.NewRows([]string{"id0", "id1", "status"}).AddRow(1, 2, models.FriendAdded)
	mock.ExpectQuery("SELECT id0, id1, status").WithArgs(int64(1), int64(2)).WillReturnRows(rows)
	mock.ExpectExec("UPDATE friendships SET status").
		WithArgs(models.FriendAccepted, int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	accepted, err := m.Accept(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, models.FriendAccepted, accepted.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdd_ExistingActiveRowFails(t *testing.T) {
	m, mock := newTestMachine(t)

	rows := sqlmock.NewRows([]string{"id0", "id1", "status"}).AddRow(1, 2, models.FriendAccepted)
	mock.ExpectQuery("SELECT id0, id1, status").WithArgs(int64(1), int64(2)).WillReturnRows(rows)

	_, err := m.Add(context.Background(), 1, 2)
	require.Error(t, err)
	appErr, ok := err.(*apperr.AppError)
	require.True(t, ok)
	assert.Equal(t, "status must be deleted", appErr.Message)
}

func TestAccept_RequiresAddedViewpoint(t *testing.T) {
	m, mock := newTestMachine(t)

	// Stored as Adding from id0=1's view; user 2 (id1) sees it as Added.
	rows := sqlmock.NewRows([]string{"id0", "id1", "status"}).AddRow(1, 2, models.FriendAdding)
	mock.ExpectQuery("SELECT id0, id1, status").WithArgs(int64(2), int64(1)).WillReturnRows(rows)
	mock.ExpectExec("UPDATE friendships SET status").
		WithArgs(models.FriendAccepted, int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	fs, err := m.Accept(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.Equal(t, models.FriendAccepted, fs.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccept_RequesterCannotAcceptOwnRequest(t *testing.T) {
	m, mock := newTestMachine(t)

	rows := sqlmock.NewRows([]string{"id0", "id1", "status"}).AddRow(1, 2, models.FriendAdding)
	mock.ExpectQuery("SELECT id0, id1, status").WithArgs(int64(1), int64(2)).WillReturnRows(rows)

	_, err := m.Accept(context.Background(), 1, 2)
	require.Error(t, err)
	appErr, ok := err.(*apperr.AppError)
	require.True(t, ok)
	assert.Equal(t, "status must be added", appErr.Message)
}

func TestDelete_RequiresAccepted(t *testing.T) {
	m, mock := newTestMachine(t)

	rows := sqlmock.NewRows([]string{"id0", "id1", "status"}).AddRow(1, 2, models.FriendAdding)
	mock.ExpectQuery("SELECT id0, id1, status").WithArgs(int64(1), int64(2)).WillReturnRows(rows)

	_, err := m.Delete(context.Background(), 1, 2)
	require.Error(t, err)
}
