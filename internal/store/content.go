package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ContentTable is the table compiled filters run against.
const ContentTable = "content"

// Content is one content record. Body is nil for records without a body,
// which "field=!" (is not null) filters exclude.
type Content struct {
	ID          int64
	ContentType string
	Slug        string
	Title       string
	Username    string
	Email       string
	Status      string
	OwnerID     int64
	Body        *string
	DatePublish string
}

// InsertContent inserts one record and returns its id. A zero ID lets
// SQLite assign one.
func (s *Store) InsertContent(ctx context.Context, c Content) (int64, error) {
	return insertContent(ctx, s.db, c)
}

// InsertContents inserts records in a single transaction. Either all rows
// are written or none are.
func (s *Store) InsertContents(ctx context.Context, records []Content) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	for i, c := range records {
		if _, err := insertContent(ctx, tx, c); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

// CountContent returns the number of stored records.
func (s *Store) CountContent(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM content`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count content: %w", err)
	}
	return n, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertContent(ctx context.Context, db execer, c Content) (int64, error) {
	var id any
	if c.ID != 0 {
		id = c.ID
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO content
		(id, contenttype, slug, title, username, email, status, ownerid, body, datepublish)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		c.ContentType,
		c.Slug,
		c.Title,
		c.Username,
		c.Email,
		c.Status,
		c.OwnerID,
		c.Body,
		c.DatePublish,
	)
	if err != nil {
		return 0, fmt.Errorf("insert content %q: %w", c.Slug, err)
	}

	newID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert content %q: %w", c.Slug, err)
	}
	return newID, nil
}
