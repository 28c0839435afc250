package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/streamspace-dev/chatcore/internal/models"
)

// UserDB handles relational access to the users table.
type UserDB struct {
	db *sql.DB
}

// NewUserDB creates a new UserDB instance.
func NewUserDB(db *sql.DB) *UserDB {
	return &UserDB{db: db}
}

const userColumns = "id, username, password, nickname, avatar, role, active, created_at, updated_at"

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Nickname,
		&user.Avatar, &user.Role, &user.Active, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}
	return user, nil
}

// CreateUser hashes req.Password with bcrypt (cost 10) and inserts a new
// row, defaulting Role to "user" and Active to true.
func (u *UserDB) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Nickname:     req.Nickname,
		Role:         models.RoleUser,
		Active:       true,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	query := `
		INSERT INTO users (username, password, nickname, avatar, role, active, created_at, updated_at)
		VALUES ($1, $2, $3, '', $4, $5, $6, $7)
		RETURNING id
	`
	err = u.db.QueryRowContext(ctx, query,
		user.Username, user.PasswordHash, user.Nickname, user.Role, user.Active,
		user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUser retrieves a user by id.
func (u *UserDB) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	row := u.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", userID)
	return scanUser(row)
}

// GetUserByUsername retrieves a user by username, including the
// password hash - used only by VerifyPassword during login.
func (u *UserDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := u.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = $1", username)
	return scanUser(row)
}

// UpdateUser applies only the non-nil fields of req, preserving the rest.
func (u *UserDB) UpdateUser(ctx context.Context, userID int64, req *models.UpdateUserRequest) error {
	updates := []string{}
	args := []interface{}{}
	argIdx := 1

	if req.Nickname != nil {
		updates = append(updates, fmt.Sprintf("nickname = $%d", argIdx))
		args = append(args, *req.Nickname)
		argIdx++
	}
	if req.Avatar != nil {
		updates = append(updates, fmt.Sprintf("avatar = $%d", argIdx))
		args = append(args, *req.Avatar)
		argIdx++
	}
	if req.Active != nil {
		updates = append(updates, fmt.Sprintf("active = $%d", argIdx))
		args = append(args, *req.Active)
		argIdx++
	}

	if len(updates) == 0 {
		return nil
	}

	updates = append(updates, fmt.Sprintf("updated_at = $%d", argIdx))
	args = append(args, time.Now())
	argIdx++
	args = append(args, userID)

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", join(updates, ", "), argIdx)
	_, err := u.db.ExecContext(ctx, query, args...)
	return err
}

// UpdatePassword re-hashes and stores a new password for userID.
func (u *UserDB) UpdatePassword(ctx context.Context, userID int64, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	_, err = u.db.ExecContext(ctx,
		"UPDATE users SET password = $1, updated_at = $2 WHERE id = $3",
		string(hash), time.Now(), userID)
	return err
}

// DeleteUser removes a user row; friendships cascade via the foreign key.
func (u *UserDB) DeleteUser(ctx context.Context, userID int64) error {
	_, err := u.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", userID)
	return err
}

// VerifyPassword looks up username and compares password against its
// bcrypt hash in constant time. Errors distinguish "no such user" from
// "wrong password" so handlers can surface the exact spec'd messages.
func (u *UserDB) VerifyPassword(ctx context.Context, username, password string) (*models.User, error) {
	user, err := u.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("User not found")
	}

	if !user.Active {
		return nil, fmt.Errorf("user account is disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("The password is incorrect")
	}

	return user, nil
}

// join concatenates strs with sep; used to build dynamic SET clauses.
func join(strs []string, sep string) string {
	if len(strs) == 0 {
		return ""
	}
	result := strs[0]
	for i := 1; i < len(strs); i++ {
		result += sep + strs[i]
	}
	return result
}
