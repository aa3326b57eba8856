// Package queue carries the message transport the bridge dispatchers hang
// off: named channels with immediate or delayed delivery. Handlers must
// tolerate redelivery; the dedup guard makes re-entry idempotent.
package queue

import "time"

// Channel names used by the bridge.
const (
	// ChannelInbound receives customer messages decoded from bot updates.
	ChannelInbound = "telegram-support-inbound"
	// ChannelDelivery receives ticket-changed triggers and delayed
	// redeliveries of failed reply sends.
	ChannelDelivery = "telegram-support"
)

// InboundTelegramMessage is one customer message received from the bot
// channel.
type InboundTelegramMessage struct {
	MessageID string
	ChatID    string
	Text      string
	SentAt    time.Time
	FirstName string
	LastName  string
}

// TicketChanged signals that a ticket aggregate was updated. Redelivery
// converges on the same ticket: the payload carries no identity beyond the
// ticket id.
type TicketChanged struct {
	TicketID string
}
