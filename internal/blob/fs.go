package blob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Filesystem implements Store on the local filesystem. Keys map to relative
// file paths under the root; a sidecar file (key + ".meta") carries content
// type and user metadata. Not safe for concurrent writers beyond per-file
// creation.
type Filesystem struct {
	root string
}

// NewFilesystem returns a filesystem-backed artifact store rooted at path,
// creating the directory if needed.
func NewFilesystem(root string) (*Filesystem, error) {
	if root == "" {
		root = "./reportdata"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Filesystem{root: root}, nil
}

func (s *Filesystem) Driver() Driver { return DriverFilesystem }

// sanitizeKey forbids empty keys, traversal and absolute paths.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key contains '..'")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid absolute key")
	}
	clean := filepath.ToSlash(filepath.Clean(key))
	if strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid key traversal")
	}
	return clean, nil
}

func (s *Filesystem) pathFor(key string) (dataPath, metaPath string, err error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return "", "", err
	}
	dataPath = filepath.Join(s.root, k)
	metaPath = dataPath + ".meta"
	return
}

// fsMeta is the sidecar record for one artifact. The store is create-only,
// so a single write timestamp suffices.
type fsMeta struct {
	ContentType string            `json:"content_type,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	ETag        string            `json:"etag"`
	Size        int64             `json:"size"`
	WrittenAt   time.Time         `json:"written_at"`
}

func (s *Filesystem) Put(_ context.Context, key string, r io.Reader, opts PutOptions) (Info, error) {
	dataPath, metaPath, err := s.pathFor(key)
	if err != nil {
		return Info{}, err
	}
	if _, err := os.Stat(dataPath); err == nil {
		return Info{}, fmt.Errorf("artifact %s already exists", key)
	}
	if err := os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
		return Info{}, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dataPath), ".tmp-*")
	if err != nil {
		return Info{}, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	h := sha256.New()
	size, copyErr := io.Copy(io.MultiWriter(tmp, h), r)
	if copyErr != nil {
		_ = tmp.Close()
		return Info{}, copyErr
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return Info{}, err
	}
	etag := hex.EncodeToString(h.Sum(nil))
	if err := os.Rename(tmp.Name(), dataPath); err != nil {
		_ = tmp.Close()
		return Info{}, err
	}
	_ = tmp.Close()
	now := time.Now().UTC()
	meta := fsMeta{ContentType: opts.ContentType, Metadata: cloneMetadata(opts.Metadata), ETag: etag, Size: size, WrittenAt: now}
	b, err := json.Marshal(meta)
	if err != nil {
		return Info{}, err
	}
	if err := os.WriteFile(metaPath, b, 0o644); err != nil {
		return Info{}, err
	}
	return Info{Key: key, Size: size, ContentType: opts.ContentType, ETag: etag, Metadata: cloneMetadata(opts.Metadata), LastModified: now, URL: s.localURL(key)}, nil
}

func (s *Filesystem) Get(_ context.Context, key string) (Info, io.ReadCloser, error) {
	dataPath, metaPath, err := s.pathFor(key)
	if err != nil {
		return Info{}, nil, err
	}
	file, err := os.Open(dataPath)
	if err != nil {
		return Info{}, nil, err
	}
	meta, err := readFsMeta(metaPath)
	if err != nil {
		_ = file.Close()
		return Info{}, nil, err
	}
	return s.infoFrom(key, meta), file, nil
}

func (s *Filesystem) Head(_ context.Context, key string) (Info, error) {
	_, metaPath, err := s.pathFor(key)
	if err != nil {
		return Info{}, err
	}
	meta, err := readFsMeta(metaPath)
	if err != nil {
		return Info{}, err
	}
	return s.infoFrom(key, meta), nil
}

func (s *Filesystem) Delete(_ context.Context, key string) (bool, error) {
	dataPath, metaPath, err := s.pathFor(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(dataPath); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err := os.Remove(dataPath); err != nil {
		return false, err
	}
	_ = os.Remove(metaPath)
	return true, nil
}

func (s *Filesystem) List(_ context.Context, prefix string) ([]Info, error) {
	var infos []Info
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".meta") {
			return nil
		}
		meta, err := readFsMeta(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.root, strings.TrimSuffix(path, ".meta"))
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if prefix == "" || strings.HasPrefix(key, prefix) {
			infos = append(infos, s.infoFrom(key, meta))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

// PresignURL returns a pseudo URL for local development; no auth.
func (s *Filesystem) PresignURL(_ context.Context, key string, opts SignedURLOptions) (string, error) {
	if opts.Method != "" && strings.ToUpper(opts.Method) != "GET" {
		return "", ErrUnsupported
	}
	return s.localURL(key), nil
}

func (s *Filesystem) localURL(key string) string {
	return (&url.URL{Scheme: "http", Host: "local.blob", Path: "/" + key}).String()
}

func (s *Filesystem) infoFrom(key string, meta fsMeta) Info {
	return Info{Key: key, Size: meta.Size, ContentType: meta.ContentType, ETag: meta.ETag, Metadata: cloneMetadata(meta.Metadata), LastModified: meta.WrittenAt, URL: s.localURL(key)}
}

func readFsMeta(path string) (fsMeta, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return fsMeta{}, err
	}
	var meta fsMeta
	if err := json.Unmarshal(b, &meta); err != nil {
		return fsMeta{}, err
	}
	return meta, nil
}
