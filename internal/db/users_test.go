package db

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/streamspace-dev/chatcore/internal/models"
)

func TestCreateUser_Success(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	userDB := NewUserDB(sqlDB)
	ctx := context.Background()

	req := &models.CreateUserRequest{
		Username: "alice",
		Password: "securepassword",
		Nickname: "Alice",
	}

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(req.Username, sqlmock.AnyArg(), req.Nickname, models.RoleUser, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	user, err := userDB.CreateUser(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.True(t, user.Active)

	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("securepassword")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByUsername_NotFound(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	userDB := NewUserDB(sqlDB)

	mock.ExpectQuery("SELECT").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "nickname", "avatar", "role", "active", "created_at", "updated_at"}))

	_, err = userDB.GetUserByUsername(context.Background(), "ghost")
	assert.EqualError(t, err, "user not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyPassword_WrongPassword(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	userDB := NewUserDB(sqlDB)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "username", "password", "nickname", "avatar", "role", "active", "created_at", "updated_at"}).
		AddRow(1, "alice", string(hash), "Alice", "", models.RoleUser, true, time.Now(), time.Now())
	mock.ExpectQuery("SELECT").WithArgs("alice").WillReturnRows(rows)

	_, err = userDB.VerifyPassword(context.Background(), "alice", "wrong-password")
	assert.EqualError(t, err, "The password is incorrect")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyPassword_InactiveAccount(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	userDB := NewUserDB(sqlDB)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.DefaultCost)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "username", "password", "nickname", "avatar", "role", "active", "created_at", "updated_at"}).
		AddRow(1, "alice", string(hash), "Alice", "", models.RoleUser, false, time.Now(), time.Now())
	mock.ExpectQuery("SELECT").WithArgs("alice").WillReturnRows(rows)

	_, err = userDB.VerifyPassword(context.Background(), "alice", "secret")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUser_NoFields(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	userDB := NewUserDB(sqlDB)
	err = userDB.UpdateUser(context.Background(), 1, &models.UpdateUserRequest{})
	assert.NoError(t, err)
}

func TestUpdateUser_PartialFields(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	userDB := NewUserDB(sqlDB)

	nickname := "New Nick"
	mock.ExpectExec("UPDATE users SET nickname").
		WithArgs(nickname, sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = userDB.UpdateUser(context.Background(), 1, &models.UpdateUserRequest{Nickname: &nickname})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
