package dedup

import (
	"context"
	"sync"
	"time"
)

// memoryDeduplicator keeps dedup records in process memory. It backs tests
// and deployments that run without Redis.
type memoryDeduplicator struct {
	mu      sync.Mutex
	ttl     time.Duration
	records map[string]time.Time
	now     func() time.Time
}

// NewMemoryDeduplicator builds an in-memory Deduplicator with the given
// retention window.
func NewMemoryDeduplicator(ttl time.Duration) Deduplicator {
	return &memoryDeduplicator{
		ttl:     ttl,
		records: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (d *memoryDeduplicator) Deduplication(namespace string, keys ...string) Token {
	return &memoryToken{store: d, key: recordKey(namespace, keys)}
}

func (d *memoryDeduplicator) executed(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	expiry, ok := d.records[key]
	if !ok {
		return false
	}
	if d.now().After(expiry) {
		delete(d.records, key)
		return false
	}
	return true
}

func (d *memoryDeduplicator) save(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.records[key] = d.now().Add(d.ttl)
}

type memoryToken struct {
	store *memoryDeduplicator
	key   string
}

func (t *memoryToken) IsExecuted(_ context.Context) bool {
	return t.store.executed(t.key)
}

func (t *memoryToken) Save(_ context.Context) {
	t.store.save(t.key)
}
