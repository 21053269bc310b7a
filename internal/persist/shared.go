package persist

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const sharedSchema = `
CREATE TABLE IF NOT EXISTS collections (
	name       TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SharedSink is a SQLite key/value table that other processes can read
// while this one writes.
type SharedSink struct {
	db *sql.DB
}

// NewSharedSink opens or creates the database at path.
func NewSharedSink(path string) (*SharedSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating shared directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening shared database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite doesn't handle multiple writers well
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(sharedSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating shared schema: %w", err)
	}
	return &SharedSink{db: db}, nil
}

// Load implements Sink.
func (s *SharedSink) Load(name string) ([]byte, bool, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT value FROM collections WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Save implements Sink.
func (s *SharedSink) Save(name string, data []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO collections (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		name, data, time.Now().Unix())
	return err
}

// Close closes the database.
func (s *SharedSink) Close() error {
	return s.db.Close()
}
