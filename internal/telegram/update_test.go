package telegram

import (
	"testing"

	"github.com/mymmrac/telego"
)

func textUpdate(text string) telego.Update {
	return telego.Update{
		Message: &telego.Message{
			MessageID: 7,
			Date:      1750000000,
			Text:      text,
			Chat:      telego.Chat{ID: 42},
			From:      &telego.User{FirstName: "Jane", LastName: "Doe"},
		},
	}
}

func TestInboundFromUpdate_MapsFields(t *testing.T) {
	msg, ok := InboundFromUpdate(textUpdate("Hello"), nil)
	if !ok {
		t.Fatal("expected a usable inbound message")
	}
	if msg.MessageID != "7" {
		t.Fatalf("message id = %q", msg.MessageID)
	}
	if msg.ChatID != "42" {
		t.Fatalf("chat id = %q", msg.ChatID)
	}
	if msg.Text != "Hello" {
		t.Fatalf("text = %q", msg.Text)
	}
	if msg.FirstName != "Jane" || msg.LastName != "Doe" {
		t.Fatalf("sender = %q %q", msg.FirstName, msg.LastName)
	}
	if msg.SentAt.Unix() != 1750000000 {
		t.Fatalf("sent at = %v", msg.SentAt)
	}
}

func TestInboundFromUpdate_FiltersBotCommands(t *testing.T) {
	if _, ok := InboundFromUpdate(textUpdate("/start"), []string{"/start", "/help"}); ok {
		t.Fatal("bot command literals must be filtered")
	}
	if _, ok := InboundFromUpdate(textUpdate("/starting over"), []string{"/start"}); !ok {
		t.Fatal("only exact command matches are filtered")
	}
}

func TestInboundFromUpdate_RejectsUnusableUpdates(t *testing.T) {
	if _, ok := InboundFromUpdate(telego.Update{}, nil); ok {
		t.Fatal("update without a message is unusable")
	}

	noText := textUpdate("")
	if _, ok := InboundFromUpdate(noText, nil); ok {
		t.Fatal("update without text is unusable")
	}

	noFrom := textUpdate("Hello")
	noFrom.Message.From = nil
	if _, ok := InboundFromUpdate(noFrom, nil); ok {
		t.Fatal("update without a sender is unusable")
	}
}
