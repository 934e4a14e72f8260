package catalog

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"
)

// Store persists run records.
type Store interface {
	SaveRun(run *Run) error
	GetRun(id string) (*Run, error)
	// LoadRuns returns every run, newest first.
	LoadRuns() ([]*Run, error)
	DeleteRun(id string) error

	Close() error
}

func encodeJSON(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return data, nil
}

func decodeJSON(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}
	return nil
}

func sortNewestFirst(runs []*Run) {
	slices.SortFunc(runs, func(a, b *Run) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
}

// MemoryStore implements Store using an in-memory map (not persistent)
type MemoryStore struct {
	runs map[string][]byte
	mu   sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string][]byte)}
}

func (m *MemoryStore) SaveRun(run *Run) error {
	// Store encoded copies so callers cannot mutate stored runs
	data, err := encodeJSON(run)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = data

	return nil
}

func (m *MemoryStore) GetRun(id string) (*Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, exists := m.runs[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}

	var run Run
	if err := decodeJSON(data, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (m *MemoryStore) LoadRuns() ([]*Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := make([]*Run, 0, len(m.runs))
	for _, data := range m.runs {
		var run Run
		if err := decodeJSON(data, &run); err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}
	sortNewestFirst(runs)

	return runs, nil
}

func (m *MemoryStore) DeleteRun(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.runs, id)
	return nil
}

// Close is a no-op for the memory store
func (m *MemoryStore) Close() error {
	return nil
}
