package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Transport delivers notification messages through the Telegram client.
// It satisfies the notification dispatcher's outbound interface.
type Transport struct {
	tg Telegram
}

// NewTransport wraps the Telegram client for outbound-only delivery.
func NewTransport(tg Telegram) *Transport {
	return &Transport{tg: tg}
}

// Send delivers one plain-text message to one user.
func (t *Transport) Send(ctx context.Context, userID int64, text string) error {
	if _, err := t.tg.Send(tgbotapi.NewMessage(userID, text)); err != nil {
		return fmt.Errorf("send to %d: %w", userID, err)
	}
	return nil
}
