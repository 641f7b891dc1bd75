// Package storage caches raw secret payloads between reads.
package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Store caches payloads under an opaque key. An expired entry reads as a miss.
type Store interface {
	Close() error
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Delete(key string) error
}

// Backends accepted by NewStore.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendBolt   = "bbolt"
)

// Options controls entry lifetime and how often expired entries are swept.
type Options struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = 5 * time.Minute
	}
	if o.CleanupInterval <= 0 {
		o.CleanupInterval = 10 * time.Minute
	}
	return o
}

// NewStore opens the named backend. path is only used by bbolt.
func NewStore(backend, path string, opts Options) (Store, error) {
	opts = opts.withDefaults()

	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendNone:
		return noopStore{}, nil
	case BackendMemory:
		return newMemoryStore(opts, time.Now), nil
	case BackendBolt:
		if strings.TrimSpace(path) == "" {
			return nil, errors.New("bbolt cache requires a path")
		}
		return openBolt(path, opts)
	}
	return nil, fmt.Errorf("unknown cache backend %q", backend)
}

// noopStore never hits.
type noopStore struct{}

func (noopStore) Close() error                     { return nil }
func (noopStore) Get(string) ([]byte, bool, error) { return nil, false, nil }
func (noopStore) Put(string, []byte) error         { return nil }
func (noopStore) Delete(string) error              { return nil }
