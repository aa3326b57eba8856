package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountRepository resolves Telegram chat ids to internal account linkage.
// Empty results signal a missing link, not an error: the upstream
// account-linking step is a precondition the bridge cannot repair.
type AccountRepository interface {
	FindUserByChat(ctx context.Context, chatID string) (string, error)
	FindActiveProfileByChat(ctx context.Context, chatID string) (string, error)
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

func (r *accountRepository) FindUserByChat(ctx context.Context, chatID string) (string, error) {
	const query = `SELECT user_id FROM telegram_accounts WHERE chat_id=$1 AND active`
	return r.fetchID(ctx, query, chatID)
}

func (r *accountRepository) FindActiveProfileByChat(ctx context.Context, chatID string) (string, error) {
	const query = `SELECT profile_id FROM telegram_accounts WHERE chat_id=$1 AND active`
	return r.fetchID(ctx, query, chatID)
}

func (r *accountRepository) fetchID(ctx context.Context, query, chatID string) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, query, chatID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}
