package store

import (
	"bytes"
	"context"
	"sync"
)

type MemoryKV struct { // implements KV
	mu       sync.RWMutex
	items    map[string][]byte
	watchers *watchers
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		items:    make(map[string][]byte),
		watchers: newWatchers(),
	}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(v), nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.items[key] = bytes.Clone(value)
	m.mu.Unlock()

	m.watchers.publish(key)
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	_, ok := m.items[key]
	delete(m.items, key)
	m.mu.Unlock()

	if ok {
		m.watchers.publish(key)
	}
	return nil
}

func (m *MemoryKV) Watch(ctx context.Context) (<-chan Change, error) {
	return m.watchers.subscribe(ctx)
}

func (m *MemoryKV) Close() error {
	m.watchers.close()
	return nil
}
