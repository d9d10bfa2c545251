// Package bot is the Telegram front end: it routes updates to the
// guided entry flow, the quick-entry parser, and the query commands,
// and delivers outbound notifications.
package bot

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dvloznov/ledgerbot/internal/balance"
	"github.com/dvloznov/ledgerbot/internal/conversation"
	"github.com/dvloznov/ledgerbot/internal/format"
	"github.com/dvloznov/ledgerbot/internal/logger"
)

// After a local append the sheet may not reflect the new row right
// away; the forced reconciliation pass waits this long before reading.
const forcedCheckDelay = 2 * time.Second

// Deps are the collaborators a Bot is wired from.
type Deps struct {
	Telegram   Telegram
	Users      UserStore
	Ledger     Ledger
	Flows      *conversation.Manager
	Calc       balance.Calculator
	Formatter  format.Formatter
	Reconciler Reconciler
	AdminID    int64
}

// Bot handles incoming Telegram updates and sends outbound messages.
type Bot struct {
	tg         Telegram
	users      UserStore
	ledger     Ledger
	flows      *conversation.Manager
	calc       balance.Calculator
	fmtr       format.Formatter
	recon      Reconciler
	admin      int64
	checkDelay time.Duration

	wg sync.WaitGroup
}

// New builds a Bot from its collaborators.
func New(deps Deps) *Bot {
	return &Bot{
		tg:         deps.Telegram,
		users:      deps.Users,
		ledger:     deps.Ledger,
		flows:      deps.Flows,
		calc:       deps.Calc,
		fmtr:       deps.Formatter,
		recon:      deps.Reconciler,
		admin:      deps.AdminID,
		checkDelay: forcedCheckDelay,
	}
}

// Run consumes updates until the context is cancelled or the update
// channel closes. Handlers run inline, one update at a time.
func (b *Bot) Run(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := b.tg.GetUpdatesChan(updateConfig)

	log := logger.FromContext(ctx)
	log.Info().Msg("Listening for Telegram updates")

	for {
		select {
		case <-ctx.Done():
			b.tg.StopReceivingUpdates()
			b.wg.Wait()
			return nil
		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

// scheduleCheck runs a forced reconciliation pass shortly after a local
// append so the counterpart is notified without waiting a full tick.
func (b *Bot) scheduleCheck(ctx context.Context) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		select {
		case <-ctx.Done():
		case <-time.After(b.checkDelay):
			b.recon.ForceCheck(ctx)
		}
	}()
}

// reply sends plain text to the chat, logging delivery failures.
func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	b.send(ctx, tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(ctx context.Context, c tgbotapi.Chattable) {
	if _, err := b.tg.Send(c); err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("Failed to send message")
	}
}
