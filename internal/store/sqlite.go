package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLite stores events in a private in-memory SQLite database. Nothing is
// written to disk; the data is gone once the store is closed.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite creates a fresh in-memory database and applies the schema.
func OpenSQLite() (*SQLite, error) {
	// A unique name keeps concurrently opened stores apart; a single
	// connection keeps the shared in-memory database alive until Close.
	conn := fmt.Sprintf("file:webhook-events-%s?mode=memory&cache=shared", uuid.NewString())
	db, err := sql.Open("sqlite", conn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite datastore: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			body TEXT NOT NULL,
			received_at INTEGER NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("schema apply failed: %w", err)
		}
	}
	return nil
}

// Close shuts down the datastore and discards its contents.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append inserts a new event row.
func (s *SQLite) Append(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO events (body, received_at) VALUES (?, ?)`, string(body), evt.Timestamp); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// ListAll returns every event ordered from newest to oldest insertion.
func (s *SQLite) ListAll(ctx context.Context) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT body FROM events ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := []Event{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		evt, err := DecodeEvent([]byte(body))
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	return events, rows.Err()
}

// Len returns the number of stored events.
func (s *SQLite) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
