// Package archive persists finished batch validation reports so earlier runs
// can be retrieved and compared. Backends: memory, SQLite and Postgres.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sampleval/internal/engine"
)

// ErrNotFound is returned when no report exists under the requested ID.
var ErrNotFound = errors.New("archive: report not found")

// Driver identifies a concrete archive backend.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Entry is one archived validation report.
type Entry struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	Report    json.RawMessage `json:"report"`
}

// Store archives batch reports.
type Store interface {
	Save(ctx context.Context, report *engine.BatchReport) (Entry, error)
	Get(ctx context.Context, id string) (Entry, error)
	List(ctx context.Context, kind string) ([]Entry, error)
	Delete(ctx context.Context, id string) (bool, error)
	Close() error
}

// Open constructs the named archive backend. The dsn parameter is the SQLite
// file path or the Postgres connection string; the memory driver ignores it.
func Open(driver Driver, dsn string) (Store, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemory(), nil
	case DriverSQLite:
		return NewSQLite(dsn)
	case DriverPostgres:
		return NewPostgres(dsn)
	default:
		return nil, fmt.Errorf("unknown archive driver %s", driver)
	}
}

func entryFrom(report *engine.BatchReport) (Entry, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return Entry{}, fmt.Errorf("encode report: %w", err)
	}
	return Entry{
		ID:        report.ID,
		Kind:      report.Kind,
		Status:    report.Status,
		CreatedAt: time.Now().UTC(),
		Report:    payload,
	}, nil
}
