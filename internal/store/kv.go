package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// KV is the local key-value persistence the store sits on.
// Get reports found=false for an absent key.
type KV interface {
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
	Close() error
}

// BucketRecords holds one entry per logical record.
const BucketRecords = "records"

// BoltKV is a KV backed by a bbolt file.
type BoltKV struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the bbolt file at path.
func OpenBolt(path string) (*BoltKV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("OpenBolt: creating data dir: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("OpenBolt: opening %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BucketRecords))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("OpenBolt: creating bucket: %w", err)
	}

	return &BoltKV{db: db}, nil
}

func (k *BoltKV) Get(key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := k.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketRecords))
		if b == nil {
			return fmt.Errorf("bucket %s not found", BucketRecords)
		}
		data := b.Get([]byte(key))
		if data == nil {
			return nil
		}
		// data is only valid inside the transaction.
		value = string(data)
		found = true
		return nil
	})
	return value, found, err
}

func (k *BoltKV) Set(key, value string) error {
	return k.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketRecords))
		if b == nil {
			return fmt.Errorf("bucket %s not found", BucketRecords)
		}
		return b.Put([]byte(key), []byte(value))
	})
}

func (k *BoltKV) Close() error {
	return k.db.Close()
}

// MemoryKV is an in-process KV, used for ephemeral sessions and tests.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKV creates a MemoryKV, optionally seeded with raw values.
func NewMemoryKV(seed map[string]string) *MemoryKV {
	data := make(map[string]string, len(seed))
	for k, v := range seed {
		data[k] = v
	}
	return &MemoryKV{data: data}
}

func (m *MemoryKV) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryKV) Close() error {
	return nil
}

var (
	_ KV = (*BoltKV)(nil)
	_ KV = (*MemoryKV)(nil)
)
