// Package report persists and publishes finished batch validation reports:
// each report is archived for later retrieval and rendered to a JSON artifact
// in blob storage.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"sampleval/internal/archive"
	"sampleval/internal/blob"
	"sampleval/internal/config"
	"sampleval/internal/engine"
	"sampleval/internal/telemetry"
)

// Publisher stores reports in the archive and exports rendered artifacts.
type Publisher struct {
	archive archive.Store
	blobs   blob.Store
	log     telemetry.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger; the default discards everything.
func WithLogger(l telemetry.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.log = l
		}
	}
}

// New wires a Publisher from explicit backends.
func New(ar archive.Store, bl blob.Store, opts ...Option) *Publisher {
	p := &Publisher{archive: ar, blobs: bl, log: telemetry.NopLogger{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Open constructs a Publisher with the backends named in cfg.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Publisher, error) {
	dsn := cfg.Archive.Path
	if archive.Driver(cfg.Archive.Driver) == archive.DriverPostgres {
		dsn = cfg.Archive.DSN
	}
	ar, err := archive.Open(archive.Driver(cfg.Archive.Driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	bl, err := blob.OpenDriver(ctx, blob.Driver(cfg.Blob.Driver), cfg.Blob.Root)
	if err != nil {
		_ = ar.Close()
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	return New(ar, bl, opts...), nil
}

// Key returns the blob key a report's artifact is published under.
func Key(reportID string) string {
	return "reports/" + reportID + ".json"
}

// Publish archives the report and writes its rendered JSON artifact. The
// archive write is authoritative; an artifact write failure is returned after
// the archive entry is already durable.
func (p *Publisher) Publish(ctx context.Context, rep *engine.BatchReport) (archive.Entry, blob.Info, error) {
	entry, err := p.archive.Save(ctx, rep)
	if err != nil {
		return archive.Entry{}, blob.Info{}, fmt.Errorf("archive report: %w", err)
	}
	rendered, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return entry, blob.Info{}, fmt.Errorf("render report: %w", err)
	}
	info, err := p.blobs.Put(ctx, Key(rep.ID), bytes.NewReader(rendered), blob.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"kind": rep.Kind, "status": rep.Status},
	})
	if err != nil {
		return entry, blob.Info{}, fmt.Errorf("publish artifact: %w", err)
	}
	p.log.Info("report published", "id", rep.ID, "status", rep.Status, "key", info.Key)
	return entry, info, nil
}

// Get returns the archived entry for a report ID.
func (p *Publisher) Get(ctx context.Context, id string) (archive.Entry, error) {
	return p.archive.Get(ctx, id)
}

// List returns archived entries, optionally filtered by sample kind.
func (p *Publisher) List(ctx context.Context, kind string) ([]archive.Entry, error) {
	return p.archive.List(ctx, kind)
}

// Close releases the underlying archive.
func (p *Publisher) Close() error {
	return p.archive.Close()
}
