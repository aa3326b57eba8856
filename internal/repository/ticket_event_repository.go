package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/telegram-support/internal/domain"
)

// ErrStaleDraft is returned by Commit when the ticket head moved past the
// snapshot the draft was taken from. Callers rely on the upstream queue's
// redelivery plus the dedup guard to reprocess.
var ErrStaleDraft = errors.New("ticket head changed since the draft snapshot was taken")

// TicketEventRepository resolves ticket snapshots and commits drafts as new
// events. A nil snapshot (without error) means no ticket exists yet for the
// key — the signal to create one.
type TicketEventRepository interface {
	CurrentByChannel(ctx context.Context, channelID string) (*domain.TicketEvent, error)
	CurrentByTicket(ctx context.Context, ticketID string) (*domain.TicketEvent, error)
	Commit(ctx context.Context, draft domain.TicketDraft) (*domain.Ticket, error)
	ExistsExternal(ctx context.Context, externalID string) (bool, error)
}

type ticketEventRepository struct {
	pool *pgxpool.Pool
}

// NewTicketEventRepository returns a Postgres-backed implementation.
func NewTicketEventRepository(pool *pgxpool.Pool) TicketEventRepository {
	return &ticketEventRepository{pool: pool}
}

func (r *ticketEventRepository) CurrentByChannel(ctx context.Context, channelID string) (*domain.TicketEvent, error) {
	const query = `
        SELECT e.id, e.ticket_id, e.status, e.type, e.profile, e.external_key, e.title, e.created_at
        FROM tickets t
        JOIN ticket_events e ON e.id = t.event_id
        WHERE e.external_key = $1`
	return r.fetchCurrent(ctx, query, channelID)
}

func (r *ticketEventRepository) CurrentByTicket(ctx context.Context, ticketID string) (*domain.TicketEvent, error) {
	const query = `
        SELECT e.id, e.ticket_id, e.status, e.type, e.profile, e.external_key, e.title, e.created_at
        FROM tickets t
        JOIN ticket_events e ON e.id = t.event_id
        WHERE t.id = $1`
	return r.fetchCurrent(ctx, query, ticketID)
}

func (r *ticketEventRepository) fetchCurrent(ctx context.Context, query string, arg any) (*domain.TicketEvent, error) {
	var event domain.TicketEvent
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&event.ID,
		&event.TicketID,
		&event.Status,
		&event.Type,
		&event.Profile,
		&event.ExternalKey,
		&event.Title,
		&event.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	messages, err := r.listMessages(ctx, event.TicketID)
	if err != nil {
		return nil, err
	}
	event.Messages = messages
	return &event, nil
}

func (r *ticketEventRepository) listMessages(ctx context.Context, ticketID string) ([]domain.Message, error) {
	const query = `
        SELECT id, text, sent_at, sender_name, external_id
        FROM ticket_messages WHERE ticket_id=$1 ORDER BY seq ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.Text,
			&msg.SentAt,
			&msg.SenderName,
			&msg.ExternalID,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}

// Commit appends a new event for the draft and moves the ticket head to it.
// Messages already persisted (non-empty id) are left untouched; only the
// draft's new tail messages are inserted.
func (r *ticketEventRepository) Commit(ctx context.Context, draft domain.TicketDraft) (*domain.Ticket, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	ticket := &domain.Ticket{ID: draft.TicketID, EventID: uuid.NewString()}

	const insertEvent = `
        INSERT INTO ticket_events (id, ticket_id, status, type, profile, external_key, title)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	if _, err := tx.Exec(ctx, insertEvent,
		ticket.EventID,
		draft.TicketID,
		draft.Status,
		draft.Type,
		draft.Profile,
		draft.ExternalKey,
		draft.Title,
	); err != nil {
		return nil, fmt.Errorf("insert ticket event: %w", err)
	}

	if draft.PriorEvent == "" {
		const insertHead = `
            INSERT INTO tickets (id, event_id) VALUES ($1,$2)
            RETURNING created_at, updated_at`
		if err := tx.QueryRow(ctx, insertHead, draft.TicketID, ticket.EventID).
			Scan(&ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
			return nil, fmt.Errorf("insert ticket head: %w", err)
		}
	} else {
		const moveHead = `
            UPDATE tickets SET event_id=$1, updated_at=NOW()
            WHERE id=$2 AND event_id=$3
            RETURNING created_at, updated_at`
		err := tx.QueryRow(ctx, moveHead, ticket.EventID, draft.TicketID, draft.PriorEvent).
			Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStaleDraft
		}
		if err != nil {
			return nil, fmt.Errorf("move ticket head: %w", err)
		}
	}

	const insertMessage = `
        INSERT INTO ticket_messages (id, ticket_id, seq, text, sent_at, sender_name, external_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	for seq, msg := range draft.Messages {
		if msg.ID != "" {
			continue
		}
		if _, err := tx.Exec(ctx, insertMessage,
			uuid.NewString(),
			draft.TicketID,
			seq,
			msg.Text,
			msg.SentAt,
			msg.SenderName,
			msg.ExternalID,
		); err != nil {
			return nil, fmt.Errorf("insert ticket message: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketEventRepository) ExistsExternal(ctx context.Context, externalID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM ticket_messages WHERE external_id=$1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, externalID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
