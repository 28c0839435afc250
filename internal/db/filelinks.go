package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/streamspace-dev/chatcore/internal/models"
)

// FileLinkDB handles relational access to the filelinks table.
//
// Upload and QR-generation handlers are out of this module's scope (see
// SPEC_FULL.md §3), but the table and its row type are carried so that
// whatever eventually writes a row has a typed Store surface to call.
type FileLinkDB struct {
	db *sql.DB
}

// NewFileLinkDB creates a new FileLinkDB instance.
func NewFileLinkDB(db *sql.DB) *FileLinkDB {
	return &FileLinkDB{db: db}
}

// Insert stores a new file link.
func (f *FileLinkDB) Insert(ctx context.Context, link models.FileLink) error {
	_, err := f.db.ExecContext(ctx,
		`INSERT INTO filelinks (id, name, link, qrlink) VALUES ($1, $2, $3, $4)`,
		link.ID, link.Name, link.Link, link.QRLink)
	if err != nil {
		return fmt.Errorf("failed to insert file link: %w", err)
	}
	return nil
}

// Get retrieves a file link by id.
func (f *FileLinkDB) Get(ctx context.Context, id string) (*models.FileLink, error) {
	row := f.db.QueryRowContext(ctx, `SELECT id, name, link, qrlink FROM filelinks WHERE id = $1`, id)

	var link models.FileLink
	if err := row.Scan(&link.ID, &link.Name, &link.Link, &link.QRLink); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("file link not found")
		}
		return nil, err
	}
	return &link, nil
}

// GetByLink looks up a file link by its retrieval URL.
func (f *FileLinkDB) GetByLink(ctx context.Context, link string) (*models.FileLink, error) {
	row := f.db.QueryRowContext(ctx, `SELECT id, name, link, qrlink FROM filelinks WHERE link = $1`, link)

	var fl models.FileLink
	if err := row.Scan(&fl.ID, &fl.Name, &fl.Link, &fl.QRLink); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("file link not found")
		}
		return nil, err
	}
	return &fl, nil
}
