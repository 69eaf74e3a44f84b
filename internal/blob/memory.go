package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	info Info
	data []byte
}

// Memory implements Store backed by process memory. Intended for tests.
type Memory struct {
	mu   sync.RWMutex
	objs map[string]memoryEntry
}

// NewMemory returns an in-memory artifact store.
func NewMemory() *Memory { return &Memory{objs: make(map[string]memoryEntry)} }

func (s *Memory) Driver() Driver { return DriverMemory }

// Put stores a new artifact; errors if key exists.
func (s *Memory) Put(_ context.Context, key string, r io.Reader, opts PutOptions) (Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objs[key]; exists {
		return Info{}, fmt.Errorf("artifact %s already exists", key)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return Info{}, err
	}
	info := Info{
		Key:          key,
		Size:         int64(len(b)),
		ContentType:  opts.ContentType,
		Metadata:     cloneMetadata(opts.Metadata),
		LastModified: time.Now().UTC(),
	}
	s.objs[key] = memoryEntry{info: info, data: b}
	return info, nil
}

func (s *Memory) Get(_ context.Context, key string) (Info, io.ReadCloser, error) {
	s.mu.RLock()
	obj, ok := s.objs[key]
	s.mu.RUnlock()
	if !ok {
		return Info{}, nil, fmt.Errorf("artifact %s not found", key)
	}
	data := make([]byte, len(obj.data))
	copy(data, obj.data)
	info := obj.info
	info.Metadata = cloneMetadata(info.Metadata)
	return info, io.NopCloser(bytes.NewReader(data)), nil
}

func (s *Memory) Head(_ context.Context, key string) (Info, error) {
	s.mu.RLock()
	obj, ok := s.objs[key]
	s.mu.RUnlock()
	if !ok {
		return Info{}, fmt.Errorf("artifact %s not found", key)
	}
	info := obj.info
	info.Metadata = cloneMetadata(info.Metadata)
	return info, nil
}

func (s *Memory) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objs[key]
	if ok {
		delete(s.objs, key)
	}
	return ok, nil
}

func (s *Memory) List(_ context.Context, prefix string) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Info, 0, len(s.objs))
	for k, v := range s.objs {
		if prefix == "" || strings.HasPrefix(k, prefix) {
			info := v.info
			info.Metadata = cloneMetadata(info.Metadata)
			out = append(out, info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *Memory) PresignURL(_ context.Context, _ string, _ SignedURLOptions) (string, error) {
	return "", ErrUnsupported
}
