package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/telegram-support/internal/domain"
	"github.com/spec-kit/telegram-support/internal/repository"
)

// telegramChatTypeSort orders the channel type within the taxonomy listing.
const telegramChatTypeSort = 300

// BootstrapService prepares reference data the bridge depends on.
type BootstrapService struct {
	types  repository.TicketTypeRepository
	logger *zap.Logger
}

// NewBootstrapService constructs the service.
func NewBootstrapService(types repository.TicketTypeRepository, logger *zap.Logger) *BootstrapService {
	return &BootstrapService{types: types, logger: logger}
}

// EnsureTelegramChatType registers the telegram-chat ticket type when it is
// missing. Safe to run on every startup.
func (s *BootstrapService) EnsureTelegramChatType(ctx context.Context) error {
	exists, err := s.types.Exists(ctx, domain.TicketTypeTelegramChat)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	s.logger.Info("registering telegram chat ticket type")
	record := &domain.TicketTypeRecord{
		ID:          domain.TicketTypeTelegramChat,
		Name:        "Telegram Chat",
		Description: "Support tickets opened from the Telegram bot channel",
		Active:      false,
		Sort:        telegramChatTypeSort,
	}
	return s.types.Create(ctx, record)
}
