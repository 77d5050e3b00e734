// Package audit is the durable append-only sink for consequential actions:
// order submissions, cancellations, and risk breaches. It is independent of
// the in-memory event bus.
package audit

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts TEXT NOT NULL,
	kind TEXT NOT NULL,
	detail TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_kind ON audit_log(kind);
`

// Record is one row of the audit trail.
type Record struct {
	ID     int64          `json:"id"`
	TS     time.Time      `json:"ts"`
	Kind   string         `json:"kind"`
	Detail map[string]any `json:"detail"`
}

// Trail wraps the SQLite handle. Writes are append-only; nothing updates or
// deletes rows.
type Trail struct {
	db *sql.DB
}

// Open creates the database file (and its directory) if needed and applies
// the schema.
func Open(path string) (*Trail, error) {
	if path == "" {
		return nil, errors.New("audit db path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite prefers single writer.
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply audit schema: %w", err)
	}
	return &Trail{db: db}, nil
}

// Close releases the underlying handle.
func (t *Trail) Close() error {
	if t == nil || t.db == nil {
		return nil
	}
	return t.db.Close()
}

// Append writes one record with the current UTC timestamp.
func (t *Trail) Append(kind string, detail map[string]any) error {
	payload, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("marshal audit detail: %w", err)
	}
	_, err = t.db.Exec(
		`INSERT INTO audit_log (ts, kind, detail) VALUES (?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano), kind, string(payload),
	)
	if err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}

// Recent returns up to n records, newest first.
func (t *Trail) Recent(n int) ([]Record, error) {
	rows, err := t.db.Query(
		`SELECT id, ts, kind, detail FROM audit_log ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec    Record
			ts     string
			detail string
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.Kind, &detail); err != nil {
			return nil, err
		}
		if rec.TS, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parse audit timestamp: %w", err)
		}
		if err := json.Unmarshal([]byte(detail), &rec.Detail); err != nil {
			return nil, fmt.Errorf("decode audit detail: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Count returns the total number of records.
func (t *Trail) Count() (int64, error) {
	var n int64
	err := t.db.QueryRow(`SELECT COUNT(*) FROM audit_log`).Scan(&n)
	return n, err
}
