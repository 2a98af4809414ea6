package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no cached response exists for a URL
var ErrNotFound = errors.New("cached response not found")

// DB represents the metadata cache with separate read/write pools
type DB struct {
	write *sql.DB
	read  *sql.DB
	path  string
}

// Response is a cached API response keyed by request URL. Body holds the
// serialized HTTP response, status line and headers included.
type Response struct {
	URL       string
	Body      []byte
	FetchedAt time.Time
}

// New opens (and creates if needed) the cache database at dbPath
func New(ctx context.Context, dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath)

	// Write pool: MUST be 1 connection only
	write, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open write connection: %w", err)
	}
	write.SetMaxOpenConns(1)
	write.SetMaxIdleConns(1)
	write.SetConnMaxIdleTime(time.Minute)

	read, err := sql.Open("sqlite", connStr)
	if err != nil {
		write.Close()
		return nil, fmt.Errorf("open read connection: %w", err)
	}
	read.SetMaxOpenConns(4)
	read.SetMaxIdleConns(2)
	read.SetConnMaxIdleTime(time.Minute)

	db := &DB{
		write: write,
		read:  read,
		path:  dbPath,
	}

	if err := db.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return db, nil
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Close closes both database connections
func (db *DB) Close() error {
	writeErr := db.write.Close()
	readErr := db.read.Close()
	if writeErr != nil {
		return writeErr
	}
	return readErr
}

func (db *DB) initSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS responses (
    url TEXT PRIMARY KEY,
    body BLOB NOT NULL,
    fetched_at DATETIME NOT NULL
);
	`

	if _, err := db.write.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Get returns the cached response for url or ErrNotFound
func (db *DB) Get(ctx context.Context, url string) (*Response, error) {
	query := `
SELECT url, body, fetched_at
FROM responses WHERE url = ?
	`

	var resp Response
	err := db.read.QueryRowContext(ctx, query, url).Scan(
		&resp.URL,
		&resp.Body,
		&resp.FetchedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query response: %w", err)
	}
	return &resp, nil
}

// Put inserts or replaces the cached response for resp.URL
func (db *DB) Put(ctx context.Context, resp *Response) error {
	if resp.FetchedAt.IsZero() {
		resp.FetchedAt = time.Now()
	}

	query := `
INSERT INTO responses (url, body, fetched_at)
VALUES (?, ?, ?)
ON CONFLICT(url) DO UPDATE SET
    body = excluded.body,
    fetched_at = excluded.fetched_at
	`

	_, err := db.write.ExecContext(ctx, query,
		resp.URL,
		resp.Body,
		resp.FetchedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert response: %w", err)
	}
	return nil
}

// Delete removes the cached response for url
func (db *DB) Delete(ctx context.Context, url string) error {
	result, err := db.write.ExecContext(ctx, "DELETE FROM responses WHERE url = ?", url)
	if err != nil {
		return fmt.Errorf("delete response: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Prune removes responses fetched before cutoff and returns how many were removed
func (db *DB) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := db.write.ExecContext(ctx, "DELETE FROM responses WHERE fetched_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune responses: %w", err)
	}
	return result.RowsAffected()
}
