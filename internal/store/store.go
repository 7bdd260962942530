// Package store keeps an optional history of runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	// DBFileName is the history database inside the config directory.
	DBFileName = "history.db"

	sqliteDriverName = "sqlite"
	timeLayout       = "2006-01-02 15:04:05.000"
)

const schemaRuns = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    started_at TEXT NOT NULL,
    duration_ms INTEGER NOT NULL,
    port TEXT NOT NULL,
    firmware TEXT NOT NULL,
    outcome TEXT NOT NULL,
    version TEXT,
    raw_voltage INTEGER NOT NULL,
    voltage REAL NOT NULL,
    message TEXT NOT NULL
);
`

// Store reads and writes run records.
type Store struct {
	db *sql.DB
}

// New wraps an already opened database. The schema must exist.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Path returns the history database path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, DBFileName)
}

// Exists reports whether a history database has been created in dir.
func Exists(dir string) (bool, error) {
	_, err := os.Stat(Path(dir))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// Open opens or creates the history database in dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := Path(dir)

	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaRuns); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add inserts r. Empty ID and zero StartedAt are filled in.
func (s *Store) Add(ctx context.Context, r Record) (Record, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	r.StartedAt = r.StartedAt.UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, duration_ms, port, firmware, outcome, version, raw_voltage, voltage, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID,
		r.StartedAt.Format(timeLayout),
		r.Duration.Milliseconds(),
		r.Port,
		r.Firmware,
		r.Outcome,
		r.Version,
		r.RawVoltage,
		r.Voltage,
		r.Message,
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert run: %w", err)
	}
	return r, nil
}

// Recent returns up to n records, newest first. n <= 0 returns all.
func (s *Store) Recent(ctx context.Context, n int) ([]Record, error) {
	q := `SELECT id, started_at, duration_ms, port, firmware, outcome, version, raw_voltage, voltage, message
		FROM runs ORDER BY started_at DESC`
	var args []any
	if n > 0 {
		q += " LIMIT ?"
		args = append(args, n)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r          Record
			startedAt  string
			durationMS int64
			version    sql.NullString
		)
		if err := rows.Scan(&r.ID, &startedAt, &durationMS, &r.Port, &r.Firmware,
			&r.Outcome, &version, &r.RawVoltage, &r.Voltage, &r.Message); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		t, err := time.Parse(timeLayout, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parse started_at %q: %w", startedAt, err)
		}
		r.StartedAt = t
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.Version = version.String
		out = append(out, r)
	}
	return out, rows.Err()
}
