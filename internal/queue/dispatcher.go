package queue

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Handler processes one payload delivered on a channel.
type Handler func(ctx context.Context, payload any) error

// Dispatcher publishes payloads onto named channels, optionally after a
// delay, and registers channel handlers.
type Dispatcher interface {
	Dispatch(ctx context.Context, payload any, delay time.Duration, channel string) error
	Subscribe(channel string, handler Handler)
}

// inMemoryDispatcher is a synchronous per-channel dispatcher with timer-based
// delayed delivery. It stands in for an external broker in single-process
// deployments and in tests.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	logger    *zap.Logger
	listeners map[string][]Handler
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher(logger *zap.Logger) Dispatcher {
	return &inMemoryDispatcher{
		logger:    logger,
		listeners: make(map[string][]Handler),
	}
}

// Dispatch delivers payload to the channel's handlers. Immediate delivery is
// synchronous and reports the first handler error, so an ingress caller can
// answer with a failure and lean on the sender's redelivery. A positive delay
// defers delivery without blocking the caller; the delayed invocation runs
// with a fresh context because the triggering one is gone by then, and its
// failures are only logged.
func (d *inMemoryDispatcher) Dispatch(ctx context.Context, payload any, delay time.Duration, channel string) error {
	if delay <= 0 {
		return d.deliver(ctx, payload, channel)
	}
	time.AfterFunc(delay, func() {
		d.deliver(context.Background(), payload, channel) //nolint:errcheck
	})
	return nil
}

// Subscribe registers a handler for the given channel.
func (d *inMemoryDispatcher) Subscribe(channel string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[channel] = append(d.listeners[channel], handler)
}

// deliver runs every handler even when an earlier one fails and returns the
// first failure.
func (d *inMemoryDispatcher) deliver(ctx context.Context, payload any, channel string) error {
	d.mu.RLock()
	handlers := append([]Handler{}, d.listeners[channel]...)
	d.mu.RUnlock()

	var first error
	for _, handler := range handlers {
		if err := handler(ctx, payload); err != nil {
			d.logger.Error("queue handler failed",
				zap.String("channel", channel), zap.Error(err))
			if first == nil {
				first = err
			}
		}
	}
	return first
}
