package store

import (
	"context"
	"sync"
	"time"
)

// Memory keeps loan data in process; contents are lost on restart.
type Memory struct {
	mu   sync.RWMutex
	data map[string]LoanData
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]LoanData)}
}

// Get returns the loan data stored under id.
func (m *Memory) Get(_ context.Context, id string) (LoanData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.data[id]
	if !ok {
		return LoanData{}, ErrNotFound
	}
	return data, nil
}

// Save stores data under id, replacing any previous value.
func (m *Memory) Save(_ context.Context, id string, data LoanData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data.UpdatedAt = time.Now().UTC()
	m.data[id] = data
	return nil
}

// Update merges partial into the data stored under id.
func (m *Memory) Update(_ context.Context, id string, partial LoanData) (LoanData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.data[id]
	if !ok {
		return LoanData{}, ErrNotFound
	}
	merged := existing.Merge(partial)
	merged.UpdatedAt = time.Now().UTC()
	m.data[id] = merged
	return merged, nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
