package gcs

import (
	"context"
	"fmt"
	"sync"

	"github.com/dvloznov/lifeos/internal/domain"
)

// MemoryStore is a BlobStore kept in process memory. It backs local runs
// without a bucket and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) PutNamed(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[name] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStore) GetNamed(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[name]
	if !ok {
		return nil, fmt.Errorf("GetNamed: %s: %w", name, domain.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

var _ BlobStore = (*MemoryStore)(nil)
