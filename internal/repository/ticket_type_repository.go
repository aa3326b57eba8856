package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/telegram-support/internal/domain"
)

// TicketTypeRepository manages the channel type taxonomy.
type TicketTypeRepository interface {
	Exists(ctx context.Context, typeID domain.TicketType) (bool, error)
	Create(ctx context.Context, record *domain.TicketTypeRecord) error
}

type ticketTypeRepository struct {
	pool *pgxpool.Pool
}

// NewTicketTypeRepository returns a Postgres-backed implementation.
func NewTicketTypeRepository(pool *pgxpool.Pool) TicketTypeRepository {
	return &ticketTypeRepository{pool: pool}
}

func (r *ticketTypeRepository) Exists(ctx context.Context, typeID domain.TicketType) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM ticket_types WHERE id=$1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, typeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *ticketTypeRepository) Create(ctx context.Context, record *domain.TicketTypeRecord) error {
	const query = `
        INSERT INTO ticket_types (id, name, description, active, sort)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		record.ID,
		record.Name,
		record.Description,
		record.Active,
		record.Sort,
	).Scan(&record.CreatedAt)
}
