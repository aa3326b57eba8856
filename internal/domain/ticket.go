package domain

import (
	"time"
	"unicode/utf8"
)

// TicketStatus enumerates lifecycle states for support tickets.
type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "OPEN"
	TicketStatusProgress TicketStatus = "IN_PROGRESS"
	TicketStatusClosed   TicketStatus = "CLOSED"
)

// TicketType classifies the channel a ticket originated from. The type is
// assigned once at creation and never re-derived.
type TicketType string

// TicketTypeTelegramChat marks tickets opened from the Telegram bot channel.
const TicketTypeTelegramChat TicketType = "telegram-chat"

// TitleMaxLen caps ticket titles derived from the first inbound message.
const TitleMaxLen = 255

// Ticket is the persisted head of a support thread. The full state lives in
// the event stream; the head only pins the current event.
type Ticket struct {
	ID        string
	EventID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TicketEvent is an immutable snapshot of a ticket's state at one point of
// its event stream. The newest event per ticket is the current state.
type TicketEvent struct {
	ID          string
	TicketID    string
	Status      TicketStatus
	Type        TicketType
	Profile     string
	ExternalKey string
	Title       string
	Messages    []Message
	CreatedAt   time.Time
}

// LastMessage returns the newest message in the snapshot, or nil when the
// snapshot carries none.
func (e *TicketEvent) LastMessage() *Message {
	if e == nil || len(e.Messages) == 0 {
		return nil
	}
	return &e.Messages[len(e.Messages)-1]
}

// TicketTypeRecord is a registered channel type in the ticket taxonomy.
type TicketTypeRecord struct {
	ID          TicketType
	Name        string
	Description string
	Active      bool
	Sort        int
	CreatedAt   time.Time
}

// TruncateTitle clips text to at most TitleMaxLen characters.
func TruncateTitle(text string) string {
	if utf8.RuneCountInString(text) <= TitleMaxLen {
		return text
	}
	return string([]rune(text)[:TitleMaxLen])
}
