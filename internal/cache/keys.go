// Package cache provides Redis-based caching for chatcore.
//
// This file defines the Redis key conventions used across the chat
// domain: per-user session registries, per-room message caches, and the
// user profile cache that fronts the Postgres users table.
package cache

import "fmt"

const (
	PrefixSession = "sessions"
	PrefixUser    = "user"
)

// SessionSetKey is the sorted set tracking live session tokens for a
// user, scored by last-used time (set on issue, bumped by a refreshing
// verify) so the least recently used can be evicted first.
func SessionSetKey(userID int64) string {
	return fmt.Sprintf("session:%d", userID)
}

// SessionKey names a per-token key. The session registry does not read or
// write it: tokens live only in the per-user set at SessionSetKey.
func SessionKey(token string) string {
	return fmt.Sprintf("%s:token:%s", PrefixSession, token)
}

// UserKey caches a user profile by id.
func UserKey(userID int64) string {
	return fmt.Sprintf("%s:%d", PrefixUser, userID)
}

// UserByUsernameKey names a username-to-id cache key. The store does not
// use it: username lookups always read Postgres.
func UserByUsernameKey(username string) string {
	return fmt.Sprintf("%s:username:%s", PrefixUser, username)
}

// RoomMessagesKey is the bounded list of recent messages cached for a
// room, keyed by the room id produced by models.UserRoomID/FriendRoomID.
func RoomMessagesKey(roomID string) string {
	return roomID
}
