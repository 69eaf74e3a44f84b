package archive

import (
	"context"
	"sort"
	"sync"

	"sampleval/internal/engine"
)

// Memory is an in-process archive used in tests and single-run tooling.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemory returns an empty in-memory archive.
func NewMemory() *Memory { return &Memory{entries: make(map[string]Entry)} }

func (m *Memory) Save(_ context.Context, report *engine.BatchReport) (Entry, error) {
	entry, err := entryFrom(report)
	if err != nil {
		return Entry{}, err
	}
	m.mu.Lock()
	m.entries[entry.ID] = entry
	m.mu.Unlock()
	return entry, nil
}

func (m *Memory) Get(_ context.Context, id string) (Entry, error) {
	m.mu.RLock()
	entry, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok {
		return Entry{}, ErrNotFound
	}
	return entry, nil
}

func (m *Memory) List(_ context.Context, kind string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, 0, len(m.entries))
	for _, entry := range m.entries {
		if kind == "" || entry.Kind == kind {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[id]
	if ok {
		delete(m.entries, id)
	}
	return ok, nil
}

func (m *Memory) Close() error { return nil }
