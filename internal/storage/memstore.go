// internal/storage/memstore.go
package storage

import (
	"context"
	"sync"
)

// MemStore 為純記憶體後端，程式結束即遺失；適合測試與單次示範。
type MemStore struct {
	mu     sync.RWMutex
	nextID int64
	docs   map[Collection][]byte
}

// NewMemStore 建立空白的記憶體後端。
func NewMemStore() *MemStore {
	return &MemStore{docs: make(map[Collection][]byte)}
}

func (m *MemStore) Load(_ context.Context, c Collection) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[c]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), doc...), nil
}

func (m *MemStore) Save(_ context.Context, c Collection, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[c] = append([]byte(nil), doc...)
	return nil
}

func (m *MemStore) Delete(_ context.Context, c Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, c)
	return nil
}

func (m *MemStore) NextID(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	return m.nextID, nil
}

func (m *MemStore) Close() error { return nil }

var _ Store = (*MemStore)(nil)
