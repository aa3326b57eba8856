package domain

import "time"

// Message is one entry in a ticket's thread. Order within a ticket is
// append-only.
type Message struct {
	ID         string
	Text       string
	SentAt     time.Time
	SenderName string
	// ExternalID is the platform-side message identifier. It is present only
	// for messages that arrived from the channel; replies authored inside
	// the ticketing system have none.
	ExternalID *string
}

// Inbound reports whether the message originated from the external channel.
func (m Message) Inbound() bool {
	return m.ExternalID != nil
}
