package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/streamspace-dev/chatcore/internal/models"
)

// FriendshipDB handles relational access to the friendships table.
type FriendshipDB struct {
	db *sql.DB
}

// NewFriendshipDB creates a new FriendshipDB instance.
func NewFriendshipDB(db *sql.DB) *FriendshipDB {
	return &FriendshipDB{db: db}
}

// Find looks up the single row for an unordered pair, trying both
// column orders since callers may not know which id is the lower one.
func (f *FriendshipDB) Find(ctx context.Context, userA, userB int64) (*models.Friendship, error) {
	row := f.db.QueryRowContext(ctx, `
		SELECT id0, id1, status FROM friendships
		WHERE (id0 = $1 AND id1 = $2) OR (id0 = $2 AND id1 = $1)
	`, userA, userB)

	var fs models.Friendship
	if err := row.Scan(&fs.ID0, &fs.ID1, &fs.Status); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &fs, nil
}

// Insert creates a new row at the given status. Callers must already
// have ordered id0 < id1.
func (f *FriendshipDB) Insert(ctx context.Context, id0, id1 int64, status models.FriendStatus) (*models.Friendship, error) {
	_, err := f.db.ExecContext(ctx,
		`INSERT INTO friendships (id0, id1, status) VALUES ($1, $2, $3)`,
		id0, id1, status)
	if err != nil {
		return nil, fmt.Errorf("failed to insert friendship: %w", err)
	}
	return &models.Friendship{ID0: id0, ID1: id1, Status: status}, nil
}

// UpdateStatus transitions an existing row to a new status and returns
// the updated row.
func (f *FriendshipDB) UpdateStatus(ctx context.Context, id0, id1 int64, status models.FriendStatus) (*models.Friendship, error) {
	_, err := f.db.ExecContext(ctx,
		`UPDATE friendships SET status = $1 WHERE id0 = $2 AND id1 = $3`,
		status, id0, id1)
	if err != nil {
		return nil, fmt.Errorf("failed to update friendship: %w", err)
	}
	return &models.Friendship{ID0: id0, ID1: id1, Status: status}, nil
}

// ListForUser returns every non-Deleted friendship row involving userID,
// used by the chat initializer to build the friend list on connect.
func (f *FriendshipDB) ListForUser(ctx context.Context, userID int64) ([]models.Friendship, error) {
	rows, err := f.db.QueryContext(ctx, `
		SELECT id0, id1, status FROM friendships
		WHERE (id0 = $1 OR id1 = $1) AND status != $2
	`, userID, models.FriendDeleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Friendship
	for rows.Next() {
		var fs models.Friendship
		if err := rows.Scan(&fs.ID0, &fs.ID1, &fs.Status); err != nil {
			return nil, err
		}
		out = append(out, fs)
	}
	return out, rows.Err()
}
