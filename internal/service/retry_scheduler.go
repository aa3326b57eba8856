package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/telegram-support/internal/observability"
	"github.com/spec-kit/telegram-support/internal/queue"
)

// RetryScheduler re-enqueues a delivery attempt after a fixed delay,
// preserving the original payload. There is no backoff growth and no attempt
// cap; the per-attempt log is the only bound on a stuck delivery.
type RetryScheduler struct {
	dispatcher queue.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewRetryScheduler constructs the scheduler.
func NewRetryScheduler(dispatcher queue.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *RetryScheduler {
	return &RetryScheduler{dispatcher: dispatcher, logger: logger, metrics: metrics}
}

// Reschedule re-submits payload onto channel after delay elapses.
func (r *RetryScheduler) Reschedule(ctx context.Context, payload any, delay time.Duration, channel string) {
	r.logger.Warn("scheduling delivery retry",
		zap.Duration("delay", delay),
		zap.String("channel", channel))
	r.metrics.RecordBridge(observability.CounterRetryScheduled)

	if err := r.dispatcher.Dispatch(ctx, payload, delay, channel); err != nil {
		r.logger.Error("failed to schedule delivery retry",
			zap.String("channel", channel), zap.Error(err))
	}
}
