// Package dedup implements the idempotency guard used by the bridge
// dispatchers: a namespaced, keyed executed-flag with bounded retention.
package dedup

import "context"

// Token tracks whether the effect keyed by one (namespace, keys) pair has
// already been applied within the retention window.
type Token interface {
	// IsExecuted reports whether Save was called for the same key within the
	// retention window. When the backing store cannot be reached it reports
	// false, so the event is reprocessed instead of silently dropped.
	IsExecuted(ctx context.Context) bool

	// Save marks the effect as applied and refreshes the record's expiry.
	// Callers invoke it only after the effect is durably committed; the
	// executed flag is monotonic within the retention window.
	Save(ctx context.Context)
}

// Deduplicator hands out tokens for namespaced key sets. The ordered keys
// are concatenated into the idempotency key, so key order is significant.
type Deduplicator interface {
	Deduplication(namespace string, keys ...string) Token
}
