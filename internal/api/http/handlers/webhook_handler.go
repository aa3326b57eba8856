package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mymmrac/telego"
	"go.uber.org/zap"

	"github.com/spec-kit/telegram-support/internal/queue"
	"github.com/spec-kit/telegram-support/internal/telegram"
	"github.com/spec-kit/telegram-support/pkg/util"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookHandler receives bot updates pushed by the Telegram webhook and
// feeds customer messages onto the inbound queue channel.
type WebhookHandler struct {
	dispatcher queue.Dispatcher
	logger     *zap.Logger
	secret     string
	commands   []string
}

// NewWebhookHandler returns a new handler instance.
func NewWebhookHandler(dispatcher queue.Dispatcher, logger *zap.Logger, secret string, commands []string) *WebhookHandler {
	return &WebhookHandler{
		dispatcher: dispatcher,
		logger:     logger,
		secret:     secret,
		commands:   commands,
	}
}

// Telegram handles one webhook update. Updates without a usable customer
// message (service updates, bot commands) are acknowledged and discarded.
func (h *WebhookHandler) Telegram(c *fiber.Ctx) error {
	if h.secret != "" && c.Get(secretTokenHeader) != h.secret {
		return util.NewUnauthorized("invalid webhook secret")
	}

	var update telego.Update
	if err := c.BodyParser(&update); err != nil {
		return util.NewValidationError("malformed update payload", nil)
	}

	inbound, ok := telegram.InboundFromUpdate(update, h.commands)
	if !ok {
		return c.SendStatus(fiber.StatusOK)
	}

	if err := h.dispatcher.Dispatch(c.UserContext(), inbound, 0, queue.ChannelInbound); err != nil {
		h.logger.Error("failed to enqueue inbound message",
			zap.String("chat", inbound.ChatID), zap.Error(err))
		return util.NewInternalError(err)
	}
	return c.SendStatus(fiber.StatusOK)
}
