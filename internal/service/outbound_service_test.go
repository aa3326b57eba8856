package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/telegram-support/internal/dedup"
	"github.com/spec-kit/telegram-support/internal/domain"
	"github.com/spec-kit/telegram-support/internal/observability"
	"github.com/spec-kit/telegram-support/internal/queue"
)

// fakeSender records send attempts and returns a scripted result.
type fakeSender struct {
	sent []sentMessage
	fail bool
}

type sentMessage struct {
	chatID string
	text   string
}

func (s *fakeSender) Send(_ context.Context, chatID, text string) bool {
	s.sent = append(s.sent, sentMessage{chatID: chatID, text: text})
	return !s.fail
}

func newOutboundFixture(repo *fakeTicketRepo, sender *fakeSender) (*OutboundService, *captureDispatcher, dedup.Deduplicator) {
	dispatcher := &captureDispatcher{}
	guard := dedup.NewMemoryDeduplicator(time.Hour)
	metrics := observability.NewMetrics()
	svc := NewOutboundService(OutboundDependencies{
		TicketRepo: repo,
		Sender:     sender,
		Dedup:      guard,
		Retry:      NewRetryScheduler(dispatcher, zap.NewNop(), metrics),
		Logger:     zap.NewNop(),
		Metrics:    metrics,
		RetryDelay: 30 * time.Second,
	})
	return svc, dispatcher, guard
}

func closedTicketEvent(lastExternal *string) *domain.TicketEvent {
	ext := "m1"
	return &domain.TicketEvent{
		ID:          "ev-2",
		TicketID:    "t1",
		Status:      domain.TicketStatusClosed,
		Type:        domain.TicketTypeTelegramChat,
		Profile:     "profile-1",
		ExternalKey: "42",
		Title:       "Hello",
		Messages: []domain.Message{
			{ID: "msg-1", Text: "Hello", ExternalID: &ext},
			{ID: "msg-2", Text: "We can help", ExternalID: lastExternal},
		},
	}
}

func TestHandleTicketChanged_ClosedTicketSendsLastMessage(t *testing.T) {
	repo := newFakeTicketRepo()
	repo.byTicket["t1"] = closedTicketEvent(nil)
	sender := &fakeSender{}
	svc, dispatcher, guard := newOutboundFixture(repo, sender)
	ctx := context.Background()

	if err := svc.HandleTicketChanged(ctx, queue.TicketChanged{TicketID: "t1"}); err != nil {
		t.Fatalf("handle ticket changed: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 send, got %d", len(sender.sent))
	}
	if sender.sent[0].chatID != "42" || sender.sent[0].text != "We can help" {
		t.Fatalf("sent %+v", sender.sent[0])
	}
	if len(dispatcher.dispatched) != 0 {
		t.Fatal("no retry may be scheduled on success")
	}
	if !guard.Deduplication(outboundNamespace, "t1", outboundConsumer).IsExecuted(ctx) {
		t.Fatal("success must mark the trigger executed")
	}
}

func TestHandleTicketChanged_DuplicateTriggerSendsOnce(t *testing.T) {
	repo := newFakeTicketRepo()
	repo.byTicket["t1"] = closedTicketEvent(nil)
	sender := &fakeSender{}
	svc, _, _ := newOutboundFixture(repo, sender)
	ctx := context.Background()

	trigger := queue.TicketChanged{TicketID: "t1"}
	if err := svc.HandleTicketChanged(ctx, trigger); err != nil {
		t.Fatalf("first trigger: %v", err)
	}
	if err := svc.HandleTicketChanged(ctx, trigger); err != nil {
		t.Fatalf("redelivered trigger: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 send across redeliveries, got %d", len(sender.sent))
	}
}

func TestHandleTicketChanged_LastMessageInboundNothingToSend(t *testing.T) {
	repo := newFakeTicketRepo()
	ext := "m2"
	repo.byTicket["t1"] = closedTicketEvent(&ext)
	sender := &fakeSender{}
	svc, _, _ := newOutboundFixture(repo, sender)

	if err := svc.HandleTicketChanged(context.Background(), queue.TicketChanged{TicketID: "t1"}); err != nil {
		t.Fatalf("handle ticket changed: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatal("a customer-authored last message carries no reply to deliver")
	}
}

func TestHandleTicketChanged_OpenTicketNotDelivered(t *testing.T) {
	repo := newFakeTicketRepo()
	event := closedTicketEvent(nil)
	event.Status = domain.TicketStatusOpen
	repo.byTicket["t1"] = event
	sender := &fakeSender{}
	svc, _, guard := newOutboundFixture(repo, sender)
	ctx := context.Background()

	if err := svc.HandleTicketChanged(ctx, queue.TicketChanged{TicketID: "t1"}); err != nil {
		t.Fatalf("handle ticket changed: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatal("only closure triggers delivery")
	}
	if guard.Deduplication(outboundNamespace, "t1", outboundConsumer).IsExecuted(ctx) {
		t.Fatal("a not-yet-closed ticket must stay deliverable on a later trigger")
	}
}

func TestHandleTicketChanged_ForeignTypeSkippedAndExecuted(t *testing.T) {
	repo := newFakeTicketRepo()
	event := closedTicketEvent(nil)
	event.Type = domain.TicketType("email")
	repo.byTicket["t1"] = event
	sender := &fakeSender{}
	svc, _, guard := newOutboundFixture(repo, sender)
	ctx := context.Background()

	if err := svc.HandleTicketChanged(ctx, queue.TicketChanged{TicketID: "t1"}); err != nil {
		t.Fatalf("handle ticket changed: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatal("foreign ticket types are not this dispatcher's concern")
	}
	if !guard.Deduplication(outboundNamespace, "t1", outboundConsumer).IsExecuted(ctx) {
		t.Fatal("skipping a foreign type still consumes the trigger")
	}
}

func TestHandleTicketChanged_MissingSnapshotAborts(t *testing.T) {
	repo := newFakeTicketRepo()
	sender := &fakeSender{}
	svc, dispatcher, _ := newOutboundFixture(repo, sender)

	if err := svc.HandleTicketChanged(context.Background(), queue.TicketChanged{TicketID: "missing"}); err != nil {
		t.Fatalf("handle ticket changed: %v", err)
	}
	if len(sender.sent) != 0 || len(dispatcher.dispatched) != 0 {
		t.Fatal("a missing snapshot is fatal for the attempt, no send and no retry")
	}
}

func TestHandleTicketChanged_SendFailureSchedulesRetry(t *testing.T) {
	repo := newFakeTicketRepo()
	repo.byTicket["t1"] = closedTicketEvent(nil)
	sender := &fakeSender{fail: true}
	svc, dispatcher, guard := newOutboundFixture(repo, sender)
	ctx := context.Background()

	trigger := queue.TicketChanged{TicketID: "t1"}
	if err := svc.HandleTicketChanged(ctx, trigger); err != nil {
		t.Fatalf("handle ticket changed: %v", err)
	}

	if len(dispatcher.dispatched) != 1 {
		t.Fatalf("expected 1 retry, got %d", len(dispatcher.dispatched))
	}
	retry := dispatcher.dispatched[0]
	if retry.payload != trigger {
		t.Fatalf("retry must carry the original payload unchanged, got %#v", retry.payload)
	}
	if retry.delay != 30*time.Second {
		t.Fatalf("retry delay = %v", retry.delay)
	}
	if retry.channel != queue.ChannelDelivery {
		t.Fatalf("retry channel = %q", retry.channel)
	}
	if guard.Deduplication(outboundNamespace, "t1", outboundConsumer).IsExecuted(ctx) {
		t.Fatal("a failed send must not mark the trigger executed")
	}
}
