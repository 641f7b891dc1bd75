package storage

import (
	"bytes"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
)

// memoryMaxEntries bounds the in-process cache; the least recently used entry
// is evicted first.
const memoryMaxEntries = 1024

type memoryEntry struct {
	expiry  time.Time
	payload []byte
}

// memoryStore keeps entries for the life of the process.
type memoryStore struct {
	mu    sync.Mutex
	cache *lru.Cache
	ttl   time.Duration
	now   func() time.Time
}

func newMemoryStore(opts Options, now func() time.Time) *memoryStore {
	return &memoryStore{
		cache: lru.New(memoryMaxEntries),
		ttl:   opts.TTL,
		now:   now,
	}
}

func (m *memoryStore) Close() error {
	m.mu.Lock()
	m.cache.Clear()
	m.mu.Unlock()
	return nil
}

func (m *memoryStore) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	e := v.(memoryEntry)
	if !e.expiry.After(m.now()) {
		m.cache.Remove(key)
		return nil, false, nil
	}
	return bytes.Clone(e.payload), true, nil
}

func (m *memoryStore) Put(key string, value []byte) error {
	m.mu.Lock()
	m.cache.Add(key, memoryEntry{expiry: m.now().Add(m.ttl), payload: bytes.Clone(value)})
	m.mu.Unlock()
	return nil
}

func (m *memoryStore) Delete(key string) error {
	m.mu.Lock()
	m.cache.Remove(key)
	m.mu.Unlock()
	return nil
}
