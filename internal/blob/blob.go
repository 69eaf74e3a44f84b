// Package blob stores validation report artifacts (rendered JSON reports,
// submission exports) behind a thin S3-like abstraction with filesystem,
// S3 and in-memory drivers.
package blob

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver identifies a concrete blob storage backend implementation.
type Driver string

const (
	// DriverFilesystem is the local filesystem backend (default, dev).
	DriverFilesystem Driver = "fs"
	// DriverS3 is an S3 / MinIO compatible backend.
	DriverS3 Driver = "s3"
	// DriverMemory is the in-memory backend used in tests.
	DriverMemory Driver = "memory"
)

// PutOptions specifies optional parameters for Put.
type PutOptions struct {
	ContentType string            // MIME type, optional
	Metadata    map[string]string // user metadata, small flat key-value
}

// SignedURLOptions holds options for generating a pre-signed URL.
type SignedURLOptions struct {
	Method string        // GET|PUT (only GET used internally)
	Expiry time.Duration // default 15m
}

// Info describes a stored artifact.
type Info struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
	URL          string            `json:"url,omitempty"`
}

// Store is the interface report artifact backends implement.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Head(ctx context.Context, key string) (Info, error)
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	PresignURL(ctx context.Context, key string, opts SignedURLOptions) (string, error)
	Driver() Driver
}

// ErrUnsupported is returned when an optional capability is not available.
var ErrUnsupported = errors.New("blob: unsupported operation")

func cloneMetadata(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
