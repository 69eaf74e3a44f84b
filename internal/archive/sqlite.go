package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"sampleval/internal/engine"
)

// SQLite archives reports in a single local database file.
type SQLite struct {
	db   *sql.DB
	path string
}

// NewSQLite opens (creating if needed) a SQLite-backed archive at path.
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = "sampleval.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create reports table: %w", err)
	}
	return &SQLite{db: db, path: path}, nil
}

func (s *SQLite) Save(ctx context.Context, report *engine.BatchReport) (Entry, error) {
	entry, err := entryFrom(report)
	if err != nil {
		return Entry{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports(id,kind,status,created_at,payload) VALUES(?,?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET kind=excluded.kind, status=excluded.status,
		 created_at=excluded.created_at, payload=excluded.payload`,
		entry.ID, entry.Kind, entry.Status, entry.CreatedAt, []byte(entry.Report))
	if err != nil {
		return Entry{}, fmt.Errorf("upsert report: %w", err)
	}
	return entry, nil
}

func (s *SQLite) Get(ctx context.Context, id string) (Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, status, created_at, payload FROM reports WHERE id = ?`, id)
	return scanEntry(row)
}

func (s *SQLite) List(ctx context.Context, kind string) ([]Entry, error) {
	query := `SELECT id, kind, status, created_at, payload FROM reports ORDER BY created_at`
	args := []any{}
	if kind != "" {
		query = `SELECT id, kind, status, created_at, payload FROM reports WHERE kind = ? ORDER BY created_at`
		args = append(args, kind)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select reports: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return collectEntries(rows)
}

func (s *SQLite) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

// Path returns the configured database path.
func (s *SQLite) Path() string { return s.path }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *SQLite) DB() *sql.DB { return s.db }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var entry Entry
	var payload []byte
	err := row.Scan(&entry.ID, &entry.Kind, &entry.Status, &entry.CreatedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("scan report: %w", err)
	}
	entry.Report = payload
	return entry, nil
}

func collectEntries(rows *sql.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}
