package report

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"sampleval/internal/archive"
	"sampleval/internal/blob"
	"sampleval/internal/config"
	"sampleval/internal/engine"
	"sampleval/pkg/outcome"
)

func sampleReport(id string) *engine.BatchReport {
	return &engine.BatchReport{
		ID:       id,
		Kind:     "organism",
		Status:   engine.StatusReady,
		Outcomes: map[string]*outcome.Node{"S1": outcome.New()},
		Order:    []string{"S1"},
	}
}

func TestPublish(t *testing.T) {
	blobs := blob.NewMemory()
	pub := New(archive.NewMemory(), blobs)
	defer pub.Close()
	ctx := context.Background()

	rep := sampleReport("run-1")
	entry, info, err := pub.Publish(ctx, rep)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if entry.ID != "run-1" || entry.Status != engine.StatusReady {
		t.Fatalf("entry = %+v", entry)
	}
	if info.Key != "reports/run-1.json" || info.ContentType != "application/json" {
		t.Fatalf("info = %+v", info)
	}
	if info.Metadata["kind"] != "organism" || info.Metadata["status"] != engine.StatusReady {
		t.Fatalf("metadata = %+v", info.Metadata)
	}

	// The artifact body is the rendered report.
	_, rc, err := blobs.Get(ctx, Key("run-1"))
	if err != nil {
		t.Fatalf("get artifact: %v", err)
	}
	body, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	var decoded engine.BatchReport
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("decode artifact: %v", err)
	}
	if decoded.ID != "run-1" || decoded.Kind != "organism" {
		t.Fatalf("decoded = %+v", decoded)
	}

	got, err := pub.Get(ctx, "run-1")
	if err != nil || got.ID != "run-1" {
		t.Fatalf("get = %+v, %v", got, err)
	}
	entries, err := pub.List(ctx, "organism")
	if err != nil || len(entries) != 1 {
		t.Fatalf("list = %+v, %v", entries, err)
	}
}

func TestPublishDuplicateArtifact(t *testing.T) {
	pub := New(archive.NewMemory(), blob.NewMemory())
	defer pub.Close()
	ctx := context.Background()

	if _, _, err := pub.Publish(ctx, sampleReport("run-1")); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	// The blob store is create-only, so republishing the same run fails on
	// the artifact write while the archive entry stays durable.
	if _, _, err := pub.Publish(ctx, sampleReport("run-1")); err == nil {
		t.Fatalf("expected artifact conflict")
	}
	if _, err := pub.Get(ctx, "run-1"); err != nil {
		t.Fatalf("archive entry lost: %v", err)
	}
}

func TestOpenFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Archive.Driver = "memory"
	cfg.Blob.Driver = "memory"

	pub, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer pub.Close()
	if _, _, err := pub.Publish(context.Background(), sampleReport("run-2")); err != nil {
		t.Fatalf("publish: %v", err)
	}
}

func TestKey(t *testing.T) {
	if got := Key("abc"); got != "reports/abc.json" {
		t.Fatalf("key = %q", got)
	}
}
