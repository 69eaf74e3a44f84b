package archive

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"sampleval/internal/engine"
	"sampleval/pkg/outcome"
)

func sampleReport(id, kind, status string) *engine.BatchReport {
	node := outcome.New()
	node.AddError("This item is mandatory but was not provided")
	return &engine.BatchReport{
		ID:       id,
		Kind:     kind,
		Status:   status,
		Outcomes: map[string]*outcome.Node{"S1": node},
		Order:    []string{"S1"},
	}
}

func runStoreSuite(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	first, err := store.Save(ctx, sampleReport("run-1", "organism", "Fix issues"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if first.ID != "run-1" || first.Kind != "organism" || first.Status != "Fix issues" {
		t.Fatalf("entry = %+v", first)
	}
	if _, err := store.Save(ctx, sampleReport("run-2", "organoid", "Ready for submission")); err != nil {
		t.Fatalf("save second: %v", err)
	}

	got, err := store.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var decoded engine.BatchReport
	if err := json.Unmarshal(got.Report, &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded.ID != "run-1" || len(decoded.Order) != 1 {
		t.Fatalf("decoded report = %+v", decoded)
	}

	if _, err := store.Get(ctx, "run-404"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get absent: %v", err)
	}

	all, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("list all = %d entries", len(all))
	}
	organoids, err := store.List(ctx, "organoid")
	if err != nil {
		t.Fatalf("list kind: %v", err)
	}
	if len(organoids) != 1 || organoids[0].ID != "run-2" {
		t.Fatalf("list organoid = %+v", organoids)
	}

	// Saving under an existing ID replaces the archived report.
	if _, err := store.Save(ctx, sampleReport("run-1", "organism", "Ready for submission")); err != nil {
		t.Fatalf("resave: %v", err)
	}
	got, err = store.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("get after resave: %v", err)
	}
	if got.Status != "Ready for submission" {
		t.Fatalf("status after resave = %q", got.Status)
	}

	deleted, err := store.Delete(ctx, "run-1")
	if err != nil || !deleted {
		t.Fatalf("delete = %v, %v", deleted, err)
	}
	if _, err := store.Get(ctx, "run-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete: %v", err)
	}
	deleted, err = store.Delete(ctx, "run-1")
	if err != nil || deleted {
		t.Fatalf("second delete = %v, %v", deleted, err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemory()
	defer store.Close()
	runStoreSuite(t, store)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLite(filepath.Join(t.TempDir(), "reports", "sampleval.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()
	runStoreSuite(t, store)
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sampleval.db")
	store, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if _, err := store.Save(context.Background(), sampleReport("run-9", "organism", "Ready for submission")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	entry, err := reopened.Get(context.Background(), "run-9")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if entry.Kind != "organism" {
		t.Fatalf("entry = %+v", entry)
	}
}

func TestOpenSelectsDriver(t *testing.T) {
	store, err := Open(DriverMemory, "")
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if _, ok := store.(*Memory); !ok {
		t.Fatalf("store = %T", store)
	}
	store.Close()

	if _, err := Open(Driver("etcd"), ""); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
