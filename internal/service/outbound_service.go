package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/telegram-support/internal/dedup"
	"github.com/spec-kit/telegram-support/internal/domain"
	"github.com/spec-kit/telegram-support/internal/observability"
	"github.com/spec-kit/telegram-support/internal/queue"
	"github.com/spec-kit/telegram-support/internal/repository"
)

const (
	outboundNamespace = "telegram-support-reply"
	outboundConsumer  = "reply-delivery"
)

// ChannelSender delivers a reply text to an external chat. A false return
// means delivery failed and should be retried later.
type ChannelSender interface {
	Send(ctx context.Context, chatID, text string) bool
}

// OutboundService watches ticket changes and delivers agent replies back
// through the bot channel. A reply is the message that closed the ticket:
// closure is the delivery trigger, not an explicit reply marker.
type OutboundService struct {
	tickets    repository.TicketEventRepository
	sender     ChannelSender
	dedup      dedup.Deduplicator
	retry      *RetryScheduler
	logger     *zap.Logger
	metrics    *observability.Metrics
	retryDelay time.Duration
}

// OutboundDependencies bundles collaborators for the outbound service.
type OutboundDependencies struct {
	TicketRepo repository.TicketEventRepository
	Sender     ChannelSender
	Dedup      dedup.Deduplicator
	Retry      *RetryScheduler
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	RetryDelay time.Duration
}

// NewOutboundService constructs the service.
func NewOutboundService(deps OutboundDependencies) *OutboundService {
	return &OutboundService{
		tickets:    deps.TicketRepo,
		sender:     deps.Sender,
		dedup:      deps.Dedup,
		retry:      deps.Retry,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		retryDelay: deps.RetryDelay,
	}
}

// HandleTicketChanged inspects a changed ticket and sends the pending agent
// reply, if any. At most one delivery attempt happens per triggering event;
// failed sends are rescheduled with the identical payload.
func (s *OutboundService) HandleTicketChanged(ctx context.Context, trigger queue.TicketChanged) error {
	token := s.dedup.Deduplication(outboundNamespace, trigger.TicketID, outboundConsumer)
	if token.IsExecuted(ctx) {
		return nil
	}

	current, err := s.tickets.CurrentByTicket(ctx, trigger.TicketID)
	if err != nil {
		return err
	}
	if current == nil {
		s.logger.Error("no current event for changed ticket",
			zap.String("ticket", trigger.TicketID))
		return nil
	}

	// only telegram-chat tickets concern this dispatcher
	if current.Type != domain.TicketTypeTelegramChat {
		token.Save(ctx)
		return nil
	}

	// agent replies close the ticket; anything else is not ready for delivery
	if current.Status != domain.TicketStatusClosed {
		return nil
	}

	last := current.LastMessage()
	if last == nil || last.Inbound() {
		// the newest message came from the customer, nothing of ours to send
		return nil
	}

	if !s.sender.Send(ctx, current.ExternalKey, last.Text) {
		s.logger.Error("failed to deliver reply to chat, will retry",
			zap.String("ticket", trigger.TicketID),
			zap.String("chat", current.ExternalKey))
		s.metrics.RecordBridge(observability.CounterSendFailed)
		s.retry.Reschedule(ctx, trigger, s.retryDelay, queue.ChannelDelivery)
		return nil
	}

	token.Save(ctx)
	s.metrics.RecordBridge(observability.CounterReplySent)
	return nil
}
