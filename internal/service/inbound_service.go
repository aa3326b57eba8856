package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/telegram-support/internal/config"
	"github.com/spec-kit/telegram-support/internal/dedup"
	"github.com/spec-kit/telegram-support/internal/domain"
	"github.com/spec-kit/telegram-support/internal/observability"
	"github.com/spec-kit/telegram-support/internal/queue"
	"github.com/spec-kit/telegram-support/internal/repository"
)

const (
	inboundNamespace = "telegram-support"
	inboundConsumer  = "inbound-merge"
)

// InboundService merges customer messages from the bot channel into
// existing-or-new tickets. Any inbound message reopens its ticket.
type InboundService struct {
	tickets    repository.TicketEventRepository
	accounts   repository.AccountRepository
	dedup      dedup.Deduplicator
	dispatcher queue.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	cfg        config.SupportConfig
	commands   []string
}

// InboundDependencies bundles collaborators for the inbound service.
type InboundDependencies struct {
	TicketRepo  repository.TicketEventRepository
	AccountRepo repository.AccountRepository
	Dedup       dedup.Deduplicator
	Dispatcher  queue.Dispatcher
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	Support     config.SupportConfig
	BotCommands []string
}

// NewInboundService constructs the service.
func NewInboundService(deps InboundDependencies) *InboundService {
	return &InboundService{
		tickets:    deps.TicketRepo,
		accounts:   deps.AccountRepo,
		dedup:      deps.Dedup,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		cfg:        deps.Support,
		commands:   deps.BotCommands,
	}
}

// HandleInbound applies one customer message to ticket state. Re-entry with
// the same external message id is a no-op; infrastructure errors are returned
// to the queue so its redelivery policy can retry, everything else is
// terminal to this invocation.
func (s *InboundService) HandleInbound(ctx context.Context, msg queue.InboundTelegramMessage) error {
	if s.isBotCommand(msg.Text) {
		return nil
	}

	token := s.dedup.Deduplication(inboundNamespace, msg.MessageID, inboundConsumer)
	if token.IsExecuted(ctx) {
		s.metrics.RecordBridge(observability.CounterDuplicateDropped)
		return nil
	}

	exists, err := s.tickets.ExistsExternal(ctx, msg.MessageID)
	if err != nil {
		return err
	}
	if exists {
		// the message already made it into storage on a previous attempt
		token.Save(ctx)
		s.metrics.RecordBridge(observability.CounterDuplicateDropped)
		return nil
	}

	userID, err := s.accounts.FindUserByChat(ctx, msg.ChatID)
	if err != nil {
		return err
	}
	if userID == "" {
		s.logger.Warn("no linked user for chat, dropping message",
			zap.String("chat", msg.ChatID))
		s.metrics.RecordBridge(observability.CounterLinkageDropped)
		return nil
	}

	profileID, err := s.accounts.FindActiveProfileByChat(ctx, msg.ChatID)
	if err != nil {
		return err
	}
	if profileID == "" {
		s.logger.Warn("no active profile for chat, dropping message",
			zap.String("chat", msg.ChatID))
		s.metrics.RecordBridge(observability.CounterLinkageDropped)
		return nil
	}

	current, err := s.tickets.CurrentByChannel(ctx, msg.ChatID)
	if err != nil {
		return err
	}

	var draft domain.TicketDraft
	if current != nil {
		draft = domain.DraftFromEvent(current)
	} else {
		profile := s.cfg.DefaultProfile
		if profile == "" {
			profile = profileID
		}
		draft = domain.NewTicketDraft(profile, domain.TicketTypeTelegramChat, msg.ChatID, msg.Text)
	}

	draft.SetStatus(domain.TicketStatusOpen)

	externalID := msg.MessageID
	draft.AppendMessage(domain.Message{
		Text:       msg.Text,
		SentAt:     msg.SentAt,
		SenderName: senderName(msg.FirstName, msg.LastName),
		ExternalID: &externalID,
	})

	ticket, err := s.tickets.Commit(ctx, draft)
	if errors.Is(err, repository.ErrStaleDraft) {
		// a concurrent merge won the head move; hand the event back to the
		// queue so it is replayed against the fresh snapshot
		s.logger.Warn("ticket head moved during merge, leaving event for redelivery",
			zap.String("ticket", draft.TicketID),
			zap.String("chat", msg.ChatID))
		return err
	}
	if err != nil {
		// not retried here: the guard stays unexecuted, an operator must look
		s.logger.Error("failed to commit support ticket",
			zap.String("ticket", draft.TicketID),
			zap.String("chat", msg.ChatID),
			zap.Error(err))
		return nil
	}

	token.Save(ctx)
	s.metrics.RecordBridge(observability.CounterInboundMerged)

	if err := s.dispatcher.Dispatch(ctx, queue.TicketChanged{TicketID: ticket.ID}, 0, queue.ChannelDelivery); err != nil {
		s.logger.Error("failed to publish ticket change",
			zap.String("ticket", ticket.ID), zap.Error(err))
	}
	return nil
}

func (s *InboundService) isBotCommand(text string) bool {
	for _, cmd := range s.commands {
		if text == cmd {
			return true
		}
	}
	return false
}

func senderName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
