package telegram

import (
	"strconv"
	"time"

	"github.com/mymmrac/telego"

	"github.com/spec-kit/telegram-support/internal/queue"
)

// InboundFromUpdate extracts a customer message from a bot update. The second
// return is false for updates that carry no usable text message or whose text
// matches a bot command literal — those never reach the merge engine.
func InboundFromUpdate(update telego.Update, commands []string) (queue.InboundTelegramMessage, bool) {
	msg := update.Message
	if msg == nil || msg.Text == "" || msg.From == nil {
		return queue.InboundTelegramMessage{}, false
	}
	for _, cmd := range commands {
		if msg.Text == cmd {
			return queue.InboundTelegramMessage{}, false
		}
	}

	return queue.InboundTelegramMessage{
		MessageID: strconv.Itoa(msg.MessageID),
		ChatID:    strconv.FormatInt(msg.Chat.ID, 10),
		Text:      msg.Text,
		SentAt:    time.Unix(int64(msg.Date), 0),
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
	}, true
}
