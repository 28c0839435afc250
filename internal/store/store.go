// Package store is the C1 facade: the single place the rest of
// chatcore goes to read or write persisted state, fronting Postgres
// (relational: users, friendships, filelinks) and Redis (key-value:
// user cache, session registry, per-room message cache) behind one API.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/streamspace-dev/chatcore/internal/cache"
	"github.com/streamspace-dev/chatcore/internal/db"
	"github.com/streamspace-dev/chatcore/internal/models"
)

const userCacheTTL = 7 * 24 * time.Hour

// maxCachedMessages bounds the per-room recent-message list (spec: 36,
// trim to indices [0..35]).
const maxCachedMessages = 36

// maxSessions bounds the per-user session set (spec: 5 newest kept).
const maxSessions = 5

// Store composes the relational and key-value backends behind one API.
type Store struct {
	users       *db.UserDB
	friendships *db.FriendshipDB
	filelinks   *db.FileLinkDB
	cache       *cache.Cache
}

// New builds a Store from an already-open Database and Cache.
func New(database *db.Database, c *cache.Cache) *Store {
	return &Store{
		users:       db.NewUserDB(database.DB()),
		friendships: db.NewFriendshipDB(database.DB()),
		filelinks:   db.NewFileLinkDB(database.DB()),
		cache:       c,
	}
}

// --- Users ---

// GetUser fetches a user by id, serving from the user:{id} cache when
// present and falling back to Postgres on a miss.
func (s *Store) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	var cached models.User
	if err := s.cache.Get(ctx, cache.UserKey(userID), &cached); err == nil {
		return &cached, nil
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	_ = s.cache.Set(ctx, cache.UserKey(userID), user, userCacheTTL)
	return user, nil
}

// GetUserByUsername always reads Postgres directly: usernames are only
// looked up during login, where the freshest password hash matters.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.users.GetUserByUsername(ctx, username)
}

// VerifyPassword authenticates a username/password pair.
func (s *Store) VerifyPassword(ctx context.Context, username, password string) (*models.User, error) {
	return s.users.VerifyPassword(ctx, username, password)
}

// CreateUser inserts a new account.
func (s *Store) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	return s.users.CreateUser(ctx, req)
}

// UpdateUser applies a partial update and invalidates the user cache.
func (s *Store) UpdateUser(ctx context.Context, userID int64, req *models.UpdateUserRequest) error {
	if err := s.users.UpdateUser(ctx, userID, req); err != nil {
		return err
	}
	return s.cache.Delete(ctx, cache.UserKey(userID))
}

// DeleteUser removes an account and invalidates its cache entry.
func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return err
	}
	return s.cache.Delete(ctx, cache.UserKey(userID))
}

// --- Friendships ---

// FindFriendship looks up the row for an unordered pair, nil if absent.
func (s *Store) FindFriendship(ctx context.Context, userA, userB int64) (*models.Friendship, error) {
	return s.friendships.Find(ctx, userA, userB)
}

// InsertFriendship creates a new row at the given status, id0 < id1.
func (s *Store) InsertFriendship(ctx context.Context, id0, id1 int64, status models.FriendStatus) (*models.Friendship, error) {
	return s.friendships.Insert(ctx, id0, id1, status)
}

// UpdateFriendshipStatus transitions an existing row.
func (s *Store) UpdateFriendshipStatus(ctx context.Context, id0, id1 int64, status models.FriendStatus) (*models.Friendship, error) {
	return s.friendships.UpdateStatus(ctx, id0, id1, status)
}

// ListFriendships returns every non-Deleted row involving userID.
func (s *Store) ListFriendships(ctx context.Context, userID int64) ([]models.Friendship, error) {
	return s.friendships.ListForUser(ctx, userID)
}

// --- File links ---

func (s *Store) InsertFileLink(ctx context.Context, link models.FileLink) error {
	return s.filelinks.Insert(ctx, link)
}

func (s *Store) GetFileLink(ctx context.Context, id string) (*models.FileLink, error) {
	return s.filelinks.Get(ctx, id)
}

// --- Recent messages ---

// CacheMessage pushes msg onto the head of its room's list and trims the
// list to the 36 most recent entries.
func (s *Store) CacheMessage(ctx context.Context, roomID string, msg models.Message) error {
	if err := s.cache.LPush(ctx, cache.RoomMessagesKey(roomID), msg); err != nil {
		return fmt.Errorf("failed to cache message: %w", err)
	}
	return s.cache.LTrim(ctx, cache.RoomMessagesKey(roomID), 0, maxCachedMessages-1)
}

// RecentMessages returns up to the 36 most recent messages for a room,
// oldest first (the cache stores newest first, so this reverses it).
func (s *Store) RecentMessages(ctx context.Context, roomID string) ([]models.Message, error) {
	raw, err := s.cache.LRange(ctx, cache.RoomMessagesKey(roomID), 0, maxCachedMessages-1)
	if err != nil {
		if err.Error() == "cache not enabled" {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read room messages: %w", err)
	}

	messages, err := decodeMessages(raw)
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// --- Sessions (low-level sorted-set ops; internal/session builds the
// Issue/Verify/List/Revoke API on top of these) ---

// SessionAdd upserts token into userID's session set with score now.
func (s *Store) SessionAdd(ctx context.Context, userID int64, token string, score float64) error {
	return s.cache.ZAdd(ctx, cache.SessionSetKey(userID), score, token)
}

// SessionScore returns the score for token, or an error if absent.
func (s *Store) SessionScore(ctx context.Context, userID int64, token string) (float64, error) {
	return s.cache.ZScore(ctx, cache.SessionSetKey(userID), token)
}

// SessionList returns every (token, score) pair for userID, ordered by
// score ascending (least recently used first).
func (s *Store) SessionList(ctx context.Context, userID int64) ([]redis.Z, error) {
	entries, err := s.cache.ZRangeWithScores(ctx, cache.SessionSetKey(userID), 0, -1)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Score < entries[j].Score })
	return entries, nil
}

// SessionRemove deletes token from userID's session set.
func (s *Store) SessionRemove(ctx context.Context, userID int64, token string) error {
	return s.cache.ZRem(ctx, cache.SessionSetKey(userID), token)
}

// SessionTrim drops every entry but the 5 highest-scored (most recently
// used), per spec's ZREMRANGEBYRANK 0 -6.
func (s *Store) SessionTrim(ctx context.Context, userID int64) error {
	return s.cache.ZRemRangeByRank(ctx, cache.SessionSetKey(userID), 0, -int64(maxSessions)-1)
}

// decodeMessages unmarshals the raw JSON entries LRange returns.
func decodeMessages(raw []string) ([]models.Message, error) {
	messages := make([]models.Message, 0, len(raw))
	for _, entry := range raw {
		var msg models.Message
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			return nil, fmt.Errorf("failed to decode cached message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
