package kvstore

import (
	"context"
	"sync"
)

// Memory keeps values in process. Used in tests and single-node development.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
	revs map[string]int64
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte), revs: make(map[string]int64)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.data[key] = append([]byte(nil), value...)
	m.mu.Unlock()
	return nil
}

func (m *Memory) SetIfNewer(_ context.Context, key string, rev int64, value []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revs[key] > rev {
		return false, nil
	}
	m.data[key] = append([]byte(nil), value...)
	m.revs[key] = rev
	return true, nil
}

func (m *Memory) Revision(_ context.Context, key string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.revs[key], nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.data, k)
		delete(m.revs, k)
	}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

// Len reports the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
