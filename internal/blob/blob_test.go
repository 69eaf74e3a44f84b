package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func runStoreSuite(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	body := `{"status":"Ready for submission"}`

	info, err := store.Put(ctx, "reports/run-1.json", strings.NewReader(body), PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"kind": "organism"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "reports/run-1.json" || info.Size != int64(len(body)) {
		t.Fatalf("info = %+v", info)
	}
	if info.ContentType != "application/json" || info.Metadata["kind"] != "organism" {
		t.Fatalf("info = %+v", info)
	}

	// Create-only: a second put under the same key fails.
	if _, err := store.Put(ctx, "reports/run-1.json", strings.NewReader("x"), PutOptions{}); err == nil {
		t.Fatalf("overwrite must be rejected")
	}

	got, rc, err := store.Get(ctx, "reports/run-1.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil || string(data) != body {
		t.Fatalf("get body = %q, %v", data, err)
	}
	if got.Metadata["kind"] != "organism" {
		t.Fatalf("get info = %+v", got)
	}

	head, err := store.Head(ctx, "reports/run-1.json")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.Size != int64(len(body)) {
		t.Fatalf("head info = %+v", head)
	}

	if _, err := store.Put(ctx, "exports/run-1.json", strings.NewReader(body), PutOptions{}); err != nil {
		t.Fatalf("put second: %v", err)
	}
	infos, err := store.List(ctx, "reports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 1 || infos[0].Key != "reports/run-1.json" {
		t.Fatalf("list = %+v", infos)
	}
	all, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("list all = %+v", all)
	}

	deleted, err := store.Delete(ctx, "reports/run-1.json")
	if err != nil || !deleted {
		t.Fatalf("delete = %v, %v", deleted, err)
	}
	if _, _, err := store.Get(ctx, "reports/run-1.json"); err == nil {
		t.Fatalf("get after delete must fail")
	}
	deleted, err = store.Delete(ctx, "reports/run-1.json")
	if err != nil || deleted {
		t.Fatalf("second delete = %v, %v", deleted, err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemory()
	if store.Driver() != DriverMemory {
		t.Fatalf("driver = %s", store.Driver())
	}
	runStoreSuite(t, store)

	if _, err := store.PresignURL(context.Background(), "reports/run-1.json", SignedURLOptions{}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("presign err = %v", err)
	}
}

func TestFilesystemStore(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("driver = %s", store.Driver())
	}
	runStoreSuite(t, store)
}

func TestFilesystemPresignURL(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	url, err := store.PresignURL(context.Background(), "reports/run-1.json", SignedURLOptions{})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if url != "http://local.blob/reports/run-1.json" {
		t.Fatalf("url = %q", url)
	}
	if _, err := store.PresignURL(context.Background(), "reports/run-1.json", SignedURLOptions{Method: "PUT"}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("put presign err = %v", err)
	}
}

func TestFilesystemRejectsBadKeys(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for _, key := range []string{"", "  ", "../escape.json", "/abs.json", "a/../../b"} {
		if _, err := store.Put(context.Background(), key, strings.NewReader("x"), PutOptions{}); err == nil {
			t.Fatalf("key %q must be rejected", key)
		}
	}
}

func TestOpenDriver(t *testing.T) {
	ctx := context.Background()
	store, err := OpenDriver(ctx, DriverMemory, "")
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if store.Driver() != DriverMemory {
		t.Fatalf("driver = %s", store.Driver())
	}

	store, err = OpenDriver(ctx, DriverFilesystem, t.TempDir())
	if err != nil {
		t.Fatalf("open fs: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("driver = %s", store.Driver())
	}

	if _, err := OpenDriver(ctx, Driver("ftp"), ""); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
