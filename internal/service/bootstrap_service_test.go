package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/telegram-support/internal/domain"
)

type fakeTypeRepo struct {
	existing map[domain.TicketType]bool
	created  []*domain.TicketTypeRecord
}

func (r *fakeTypeRepo) Exists(_ context.Context, typeID domain.TicketType) (bool, error) {
	return r.existing[typeID], nil
}

func (r *fakeTypeRepo) Create(_ context.Context, record *domain.TicketTypeRecord) error {
	r.created = append(r.created, record)
	return nil
}

func TestEnsureTelegramChatType_CreatesWhenMissing(t *testing.T) {
	repo := &fakeTypeRepo{existing: map[domain.TicketType]bool{}}
	svc := NewBootstrapService(repo, zap.NewNop())

	if err := svc.EnsureTelegramChatType(context.Background()); err != nil {
		t.Fatalf("ensure type: %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 create, got %d", len(repo.created))
	}
	if repo.created[0].ID != domain.TicketTypeTelegramChat {
		t.Fatalf("created type = %q", repo.created[0].ID)
	}
}

func TestEnsureTelegramChatType_IdempotentWhenPresent(t *testing.T) {
	repo := &fakeTypeRepo{existing: map[domain.TicketType]bool{domain.TicketTypeTelegramChat: true}}
	svc := NewBootstrapService(repo, zap.NewNop())

	if err := svc.EnsureTelegramChatType(context.Background()); err != nil {
		t.Fatalf("ensure type: %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatal("existing type must not be recreated")
	}
}
