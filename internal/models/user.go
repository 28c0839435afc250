// Package models defines the core data structures for chatcore.
//
// This package contains:
//   - User and friendship models
//   - Chat message and room models
//   - File-link models for avatar/attachment hosting
//
// These models are used for:
//   - Database persistence (via database/sql scans)
//   - JSON serialization over the WebSocket wire and HTTP auth endpoints
package models

import "time"

// Role is a user's system-wide permission level.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User represents a chatcore account.
//
// Accounts are local-auth only: a username and a bcrypt password hash.
// There is no organization, quota, or SSO provider concept here - chat
// identity is flat, every user can friend every other user.
type User struct {
	ID       int64  `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
	Nickname string `json:"nickname" db:"nickname"`
	Avatar   string `json:"avatar" db:"avatar"`
	Role     Role   `json:"role" db:"role"`
	Active   bool   `json:"active" db:"active"`

	// PasswordHash stores the bcrypt hash. Never serialized to clients.
	PasswordHash string `json:"-" db:"password"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CreateUserRequest is the signup payload.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Password string `json:"password" binding:"required,min=6"`
	Nickname string `json:"nickname" binding:"required,min=1,max=64"`
}

// UpdateUserRequest carries optional profile fields; nil means unchanged.
type UpdateUserRequest struct {
	Nickname *string `json:"nickname,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

// LoginRequest is the signin payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
