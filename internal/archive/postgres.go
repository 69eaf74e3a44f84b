package archive

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"sampleval/internal/engine"
)

const (
	postgresDriver     = "pgx"
	defaultPostgresDSN = "postgres://localhost/sampleval?sslmode=disable"
)

// Postgres archives reports in a shared database for multi-instance
// deployments.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a Postgres-backed archive using the provided DSN,
// falling back to a local default.
func NewPostgres(dsn string) (*Postgres, error) {
	if dsn == "" {
		dsn = defaultPostgresDSN
	}
	db, err := sql.Open(postgresDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		payload JSONB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create reports table: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Save(ctx context.Context, report *engine.BatchReport) (Entry, error) {
	entry, err := entryFrom(report)
	if err != nil {
		return Entry{}, err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO reports(id,kind,status,created_at,payload) VALUES($1,$2,$3,$4,$5)
		 ON CONFLICT(id) DO UPDATE SET kind=excluded.kind, status=excluded.status,
		 created_at=excluded.created_at, payload=excluded.payload`,
		entry.ID, entry.Kind, entry.Status, entry.CreatedAt, []byte(entry.Report))
	if err != nil {
		return Entry{}, fmt.Errorf("upsert report: %w", err)
	}
	return entry, nil
}

func (p *Postgres) Get(ctx context.Context, id string) (Entry, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT id, kind, status, created_at, payload FROM reports WHERE id = $1`, id)
	return scanEntry(row)
}

func (p *Postgres) List(ctx context.Context, kind string) ([]Entry, error) {
	query := `SELECT id, kind, status, created_at, payload FROM reports ORDER BY created_at`
	args := []any{}
	if kind != "" {
		query = `SELECT id, kind, status, created_at, payload FROM reports WHERE kind = $1 ORDER BY created_at`
		args = append(args, kind)
	}
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select reports: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return collectEntries(rows)
}

func (p *Postgres) Delete(ctx context.Context, id string) (bool, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (p *Postgres) Close() error { return p.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (p *Postgres) DB() *sql.DB { return p.db }
