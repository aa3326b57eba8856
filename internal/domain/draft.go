package domain

import "github.com/google/uuid"

// TicketDraft is the not-yet-committed next state of a ticket. A draft is
// value-copied from the latest snapshot and replaces it wholesale on commit;
// persisted events are never mutated in place.
type TicketDraft struct {
	TicketID string
	// PriorEvent is the snapshot the draft was taken from. Empty for tickets
	// that do not exist yet. Commit fails when the head has moved past it.
	PriorEvent  string
	Status      TicketStatus
	Type        TicketType
	Profile     string
	ExternalKey string
	Title       string
	Messages    []Message
}

// NewTicketDraft starts a draft for a ticket that does not exist yet. The
// invariable fields are set exactly once here and survive every later event.
func NewTicketDraft(profile string, ticketType TicketType, externalKey, title string) TicketDraft {
	return TicketDraft{
		TicketID:    uuid.NewString(),
		Type:        ticketType,
		Profile:     profile,
		ExternalKey: externalKey,
		Title:       TruncateTitle(title),
	}
}

// DraftFromEvent rebuilds a draft from the latest persisted snapshot.
func DraftFromEvent(ev *TicketEvent) TicketDraft {
	messages := make([]Message, len(ev.Messages))
	copy(messages, ev.Messages)
	return TicketDraft{
		TicketID:    ev.TicketID,
		PriorEvent:  ev.ID,
		Status:      ev.Status,
		Type:        ev.Type,
		Profile:     ev.Profile,
		ExternalKey: ev.ExternalKey,
		Title:       ev.Title,
		Messages:    messages,
	}
}

// SetStatus moves the draft to the given lifecycle state.
func (d *TicketDraft) SetStatus(status TicketStatus) {
	d.Status = status
}

// AppendMessage adds msg to the end of the thread.
func (d *TicketDraft) AppendMessage(msg Message) {
	d.Messages = append(d.Messages, msg)
}
