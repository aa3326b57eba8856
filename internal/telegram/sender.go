// Package telegram adapts the bridge to the Telegram Bot API via telego.
package telegram

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"go.uber.org/zap"
)

// Sender delivers reply texts through the bot's SendMessage endpoint.
type Sender struct {
	bot    *telego.Bot
	logger *zap.Logger
}

// NewSender creates a bot client for the given token.
func NewSender(token string, logger *zap.Logger) (*Sender, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Sender{bot: bot, logger: logger}, nil
}

// Send pushes text to the chat. A false return means delivery failed and the
// caller should schedule a retry.
func (s *Sender) Send(ctx context.Context, chatID, text string) bool {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		s.logger.Error("invalid telegram chat id",
			zap.String("chat", chatID), zap.Error(err))
		return false
	}

	if _, err := s.bot.SendMessage(ctx, tu.Message(tu.ID(id), text)); err != nil {
		s.logger.Warn("telegram send failed",
			zap.String("chat", chatID), zap.Error(err))
		return false
	}
	return true
}
