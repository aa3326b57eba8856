package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const executedValue = "1"

type redisDeduplicator struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisDeduplicator builds a Deduplicator backed by Redis, with records
// retained for ttl after each Save.
func NewRedisDeduplicator(client *redis.Client, ttl time.Duration, logger *zap.Logger) Deduplicator {
	return &redisDeduplicator{client: client, ttl: ttl, logger: logger}
}

func (d *redisDeduplicator) Deduplication(namespace string, keys ...string) Token {
	return &redisToken{
		client: d.client,
		key:    recordKey(namespace, keys),
		ttl:    d.ttl,
		logger: d.logger,
	}
}

type redisToken struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

func (t *redisToken) IsExecuted(ctx context.Context) bool {
	val, err := t.client.Get(ctx, t.key).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		// fail open: reprocessing is recoverable, a dropped event is not
		t.logger.Warn("dedup store unreachable, treating event as not executed",
			zap.String("key", t.key), zap.Error(err))
		return false
	}
	return val == executedValue
}

func (t *redisToken) Save(ctx context.Context) {
	if err := t.client.Set(ctx, t.key, executedValue, t.ttl).Err(); err != nil {
		t.logger.Error("failed to persist dedup record",
			zap.String("key", t.key), zap.Error(err))
	}
}

func recordKey(namespace string, keys []string) string {
	sum := sha256.Sum256([]byte(strings.Join(keys, "\x1f")))
	return "dedup:" + namespace + ":" + hex.EncodeToString(sum[:])
}
