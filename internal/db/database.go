// Package db provides PostgreSQL access for chatcore's relational half:
// users, friendships, and filelinks. Recent messages and sessions live
// in Redis (internal/cache) instead - this package never touches them.
package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Config holds connection parameters for the relational store.
type Config struct {
	// DSN is a libpq connection string, e.g. CHAT_DATABASE_URL verbatim.
	DSN string

	// MaxOpenConns caps the pool size (spec: ~8 connections).
	MaxOpenConns int
}

// Database wraps a pooled *sql.DB.
type Database struct {
	db *sql.DB
}

// NewDatabase opens a connection pool and verifies it with a ping.
func NewDatabase(config Config) (*Database, error) {
	if config.DSN == "" {
		return nil, fmt.Errorf("database: DSN is required")
	}

	sqlDB, err := sql.Open("postgres", config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen := config.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 8
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{db: sqlDB}, nil
}

// NewDatabaseForTesting wraps an already-open *sql.DB (typically a
// sqlmock connection) without pinging or tuning the pool.
func NewDatabaseForTesting(sqlDB *sql.DB) *Database {
	return &Database{db: sqlDB}
}

// DB returns the underlying connection pool.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Close closes the connection pool.
func (d *Database) Close() error {
	return d.db.Close()
}

// Ping verifies connectivity, used by the /readyz handler.
func (d *Database) Ping() error {
	return d.db.Ping()
}

// migrations is applied in order, each statement idempotent via
// IF NOT EXISTS, so Migrate is safe to call on every process start.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		username VARCHAR(32) UNIQUE NOT NULL,
		password VARCHAR(255) NOT NULL,
		nickname VARCHAR(64) NOT NULL,
		avatar VARCHAR(255) NOT NULL DEFAULT '',
		role VARCHAR(16) NOT NULL DEFAULT 'user',
		active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS friendships (
		id0 BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		id1 BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		status SMALLINT NOT NULL,
		PRIMARY KEY (id0, id1),
		CHECK (id0 < id1)
	)`,
	`CREATE TABLE IF NOT EXISTS filelinks (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		link VARCHAR(1024) NOT NULL,
		qrlink VARCHAR(1024) NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_friendships_id1 ON friendships (id1)`,
}

// Migrate applies the schema. Unlike the wider catalog/quota/template
// schema this teacher's migrations carry, chatcore's relational surface
// is exactly the three tables named in the persisted-state layout.
func (d *Database) Migrate() error {
	for i, stmt := range migrations {
		if _, err := d.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
