package worker

import (
	"context"
	"fmt"

	"github.com/spec-kit/telegram-support/internal/queue"
	"github.com/spec-kit/telegram-support/internal/service"
)

// StartBridgeWorkers subscribes the inbound merge and reply delivery
// dispatchers to their queue channels.
func StartBridgeWorkers(dispatcher queue.Dispatcher, inbound *service.InboundService, outbound *service.OutboundService) {
	if dispatcher == nil {
		return
	}

	dispatcher.Subscribe(queue.ChannelInbound, func(ctx context.Context, payload any) error {
		msg, ok := payload.(queue.InboundTelegramMessage)
		if !ok {
			return fmt.Errorf("unexpected payload on %s: %T", queue.ChannelInbound, payload)
		}
		return inbound.HandleInbound(ctx, msg)
	})

	dispatcher.Subscribe(queue.ChannelDelivery, func(ctx context.Context, payload any) error {
		trigger, ok := payload.(queue.TicketChanged)
		if !ok {
			return fmt.Errorf("unexpected payload on %s: %T", queue.ChannelDelivery, payload)
		}
		return outbound.HandleTicketChanged(ctx, trigger)
	})
}
