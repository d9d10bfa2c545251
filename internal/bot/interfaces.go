package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dvloznov/ledgerbot/internal/domain"
)

// Telegram is the slice of the Bot API client the handlers use.
type Telegram interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Ledger is the row store commands read from and entries append to.
type Ledger interface {
	Records(ctx context.Context) ([]domain.Record, error)
	Append(ctx context.Context, r domain.Record) error
}

// UserStore keeps registered users and their notification preference.
type UserStore interface {
	GetUser(ctx context.Context, telegramID int64) (*domain.User, error)
	UpsertUser(ctx context.Context, u domain.User) error
	SetNotifications(ctx context.Context, telegramID int64, enabled bool) error
}

// Reconciler triggers an out-of-schedule ledger check.
type Reconciler interface {
	ForceCheck(ctx context.Context)
}
