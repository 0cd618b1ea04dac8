// internal/store/sqlite.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when an inverter has no stored snapshot.
var ErrNotFound = errors.New("store: not found")

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
  id        INTEGER PRIMARY KEY AUTOINCREMENT,
  inverter  TEXT    NOT NULL,
  at_ms     INTEGER NOT NULL,
  error     TEXT    NOT NULL DEFAULT '',
  payload   TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS snapshots_inverter_at ON snapshots (inverter, at_ms);
`

// Record is one persisted poll cycle.
type Record struct {
	Inverter string          `json:"inverter"`
	At       time.Time       `json:"at"`
	Error    string          `json:"error,omitempty"`
	Values   json.RawMessage `json:"values"`
}

// Store persists snapshots in SQLite.
// Safe for concurrent use; database/sql serializes writers.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// ":memory:" gives a private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// single writer; also keeps ":memory:" on one connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save inserts one record.
func (s *Store) Save(ctx context.Context, rec Record) error {
	if rec.Inverter == "" {
		return errors.New("store: inverter required")
	}
	if rec.At.IsZero() {
		rec.At = time.Now()
	}
	if len(rec.Values) == 0 {
		rec.Values = json.RawMessage("{}")
	}

	const insertStmt = `INSERT INTO snapshots (inverter, at_ms, error, payload) VALUES (?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, insertStmt,
		rec.Inverter,
		rec.At.UnixMilli(),
		rec.Error,
		string(rec.Values),
	); err != nil {
		return fmt.Errorf("store: insert: %w", err)
	}
	return nil
}

// Latest returns the newest record for an inverter.
func (s *Store) Latest(ctx context.Context, inverter string) (Record, error) {
	recs, err := s.History(ctx, inverter, 1)
	if err != nil {
		return Record{}, err
	}
	if len(recs) == 0 {
		return Record{}, ErrNotFound
	}
	return recs[0], nil
}

// History returns up to limit records for an inverter, newest first.
// limit <= 0 returns everything.
func (s *Store) History(ctx context.Context, inverter string, limit int) ([]Record, error) {
	q := `SELECT inverter, at_ms, error, payload FROM snapshots WHERE inverter = ? ORDER BY at_ms DESC, id DESC`
	args := []any{inverter}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r       Record
			atMs    int64
			payload string
		)
		if err := rows.Scan(&r.Inverter, &atMs, &r.Error, &payload); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		r.At = time.UnixMilli(atMs)
		r.Values = json.RawMessage(payload)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: rows: %w", err)
	}
	return out, nil
}

// Prune deletes records older than before and returns how many went.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE at_ms < ?`, before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("store: prune: %w", err)
	}
	return res.RowsAffected()
}
