package storage

import (
	"fmt"
	"testing"
	"time"
)

func TestMemoryStoreExpiresEntries(t *testing.T) {
	now := time.Now()
	store := newMemoryStore(Options{TTL: time.Minute, CleanupInterval: time.Hour}, func() time.Time { return now })

	if err := store.Put("secret/app", []byte("v1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get("secret/app")
	if err != nil || !ok || string(got) != "v1" {
		t.Fatalf("expected hit, got %q ok=%v err=%v", got, ok, err)
	}

	got[0] = 'x'
	if again, _, _ := store.Get("secret/app"); string(again) != "v1" {
		t.Fatalf("cached payload was mutated through a returned slice: %q", again)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := store.Get("secret/app"); ok {
		t.Fatalf("expected expired entry to miss")
	}
}

func TestMemoryStoreEvictsLeastRecentlyUsed(t *testing.T) {
	store := newMemoryStore(Options{TTL: time.Hour}, time.Now)

	for i := 0; i <= memoryMaxEntries; i++ {
		_ = store.Put(fmt.Sprintf("secret/%d", i), []byte("v"))
	}

	if _, ok, _ := store.Get("secret/0"); ok {
		t.Fatalf("oldest entry should be evicted once the cache is full")
	}
	if _, ok, _ := store.Get(fmt.Sprintf("secret/%d", memoryMaxEntries)); !ok {
		t.Fatalf("newest entry missing")
	}
}

func TestNewStoreMemoryBackend(t *testing.T) {
	store, err := NewStore(" Memory ", "", Options{})
	if err != nil {
		t.Fatalf("NewStore memory: %v", err)
	}
	defer store.Close()

	if err := store.Put("k", []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := store.Get("k"); ok {
		t.Fatalf("deleted entry still present")
	}
}
