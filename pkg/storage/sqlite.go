package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "embed"

	"feedharvest/pkg/dedup"
	"feedharvest/pkg/models"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// SQLiteSink accumulates harvested records across runs in a SQLite table
// keyed by the dedup key.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the schema
func OpenSQLite(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

// Insert stores records that are not already present and returns how many
// rows were added. The batch is one transaction: on error nothing is
// stored and 0 is returned.
func (s *SQLiteSink) Insert(ctx context.Context, doc *models.Document) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR IGNORE INTO posts
    (key, query, display_name, handle, text, timestamp, permalink, replies, retweets, likes, harvested_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	harvestedAt := doc.GeneratedAt.UTC().Format(time.RFC3339)
	added := 0
	for _, r := range doc.Tweets {
		res, err := stmt.ExecContext(ctx,
			dedup.Key(r),
			doc.Query,
			r.DisplayName,
			r.Handle,
			r.Text,
			nullable(r.TimestampString()),
			nullable(r.PermalinkString()),
			r.Replies,
			r.Retweets,
			r.Likes,
			harvestedAt,
		)
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		added += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// Count returns the number of stored rows
func (s *SQLiteSink) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&n)
	return n, err
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
