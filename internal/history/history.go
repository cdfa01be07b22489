// Package history keeps a local log of invocations: what was asked, what
// command came back, and whether it ran.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/nlshell/nlsh/internal/config"
)

const HistoryFileName = "history.db"

// Record is one completed session
type Record struct {
	ID        string
	Timestamp time.Time
	Request   string
	Command   string
	Executed  bool
	Edited    bool
}

// Store is the SQLite-backed invocation log
type Store struct {
	db *sql.DB
}

// DefaultPath returns the history database location
func DefaultPath() (string, error) {
	dir, err := config.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, HistoryFileName), nil
}

// Open opens (creating if needed) the history database at path
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS invocations (
			id        TEXT PRIMARY KEY,
			timestamp INTEGER NOT NULL,
			request   TEXT NOT NULL,
			command   TEXT NOT NULL,
			executed  INTEGER NOT NULL,
			edited    INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_invocations_timestamp ON invocations(timestamp);
	`)
	return err
}

// Add appends a record, filling in id and timestamp when empty
func (s *Store) Add(r Record) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}

	_, err := s.db.Exec(
		`INSERT INTO invocations (id, timestamp, request, command, executed, edited) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Timestamp.Unix(), r.Request, r.Command, boolToInt(r.Executed), boolToInt(r.Edited),
	)
	if err != nil {
		return fmt.Errorf("failed to save history entry: %w", err)
	}
	return nil
}

// Recent returns up to n records, newest first
func (s *Store) Recent(n int) ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT id, timestamp, request, command, executed, edited FROM invocations ORDER BY timestamp DESC, id LIMIT ?`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var ts int64
		var executed, edited int
		if err := rows.Scan(&r.ID, &ts, &r.Request, &r.Command, &executed, &edited); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		r.Timestamp = time.Unix(ts, 0)
		r.Executed = executed != 0
		r.Edited = edited != 0
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
