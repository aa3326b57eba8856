package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func TestMemoryDeduplicator_FreshKeyNotExecuted(t *testing.T) {
	d := NewMemoryDeduplicator(time.Hour)
	token := d.Deduplication("telegram-support", "m1", "inbound-merge")
	if token.IsExecuted(context.Background()) {
		t.Fatal("fresh (namespace, keys) pair must start as not executed")
	}
}

func TestMemoryDeduplicator_SaveThenExecuted(t *testing.T) {
	d := NewMemoryDeduplicator(time.Hour)
	ctx := context.Background()

	token := d.Deduplication("telegram-support", "m1", "inbound-merge")
	token.Save(ctx)

	if !token.IsExecuted(ctx) {
		t.Fatal("token must report executed after Save")
	}

	// a second token over the same pair sees the same record
	again := d.Deduplication("telegram-support", "m1", "inbound-merge")
	if !again.IsExecuted(ctx) {
		t.Fatal("executed flag must be visible across token instances")
	}
}

func TestMemoryDeduplicator_NamespaceIsolation(t *testing.T) {
	d := NewMemoryDeduplicator(time.Hour)
	ctx := context.Background()

	d.Deduplication("telegram-support", "m1").Save(ctx)

	if d.Deduplication("telegram-support-reply", "m1").IsExecuted(ctx) {
		t.Fatal("namespaces must not share records")
	}
}

func TestMemoryDeduplicator_KeyOrderSignificant(t *testing.T) {
	d := NewMemoryDeduplicator(time.Hour)
	ctx := context.Background()

	d.Deduplication("ns", "a", "b").Save(ctx)

	if d.Deduplication("ns", "b", "a").IsExecuted(ctx) {
		t.Fatal("keys form an ordered idempotency key")
	}
}

func TestRedisDeduplicator_UnreachableStoreFailsOpen(t *testing.T) {
	// nothing listens on this port; every command errors out
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	d := NewRedisDeduplicator(client, time.Hour, zap.NewNop())
	ctx := context.Background()

	token := d.Deduplication("telegram-support", "m1", "inbound-merge")
	if token.IsExecuted(ctx) {
		t.Fatal("an unreachable store must report not executed, reprocessing beats dropping")
	}

	// Save only logs; a broken store must not panic or block processing
	token.Save(ctx)
	if token.IsExecuted(ctx) {
		t.Fatal("a failed save leaves the record absent")
	}
}

func TestMemoryDeduplicator_RecordExpires(t *testing.T) {
	d := NewMemoryDeduplicator(time.Minute).(*memoryDeduplicator)
	ctx := context.Background()

	base := time.Now()
	d.now = func() time.Time { return base }

	token := d.Deduplication("ns", "m1")
	token.Save(ctx)
	if !token.IsExecuted(ctx) {
		t.Fatal("record must be live inside the retention window")
	}

	d.now = func() time.Time { return base.Add(2 * time.Minute) }
	if token.IsExecuted(ctx) {
		t.Fatal("record must expire after the retention window")
	}
}
