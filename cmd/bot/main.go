package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dvloznov/ledgerbot/internal/balance"
	"github.com/dvloznov/ledgerbot/internal/bot"
	"github.com/dvloznov/ledgerbot/internal/config"
	"github.com/dvloznov/ledgerbot/internal/conversation"
	"github.com/dvloznov/ledgerbot/internal/format"
	"github.com/dvloznov/ledgerbot/internal/logger"
	"github.com/dvloznov/ledgerbot/internal/notify"
	"github.com/dvloznov/ledgerbot/internal/reconcile"
	"github.com/dvloznov/ledgerbot/internal/sheets"
	"github.com/dvloznov/ledgerbot/internal/store"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fallback := logger.New(false)
		fallback.Fatal().Err(err).Msg("Invalid configuration")
	}

	log := logger.New(cfg.Debug)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open local database")
	}
	defer db.Close()

	sheetsClient, err := sheets.NewClient(ctx, cfg.GoogleCredentialsPath, cfg.SpreadsheetID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Sheets client")
	}
	ledger := sheets.NewLedger(sheetsClient, cfg.SheetName)

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Telegram")
	}
	log.Info().Str("bot", api.Self.UserName).Msg("Authorized on Telegram")

	calc := balance.Calculator{A: cfg.Participants.A, B: cfg.Participants.B}
	fmtr := format.Formatter{Symbol: cfg.CurrencySymbol, ParticipantA: cfg.Participants.A}

	transport := bot.NewTransport(api)
	dispatcher := notify.NewDispatcher(notify.NewComposer(calc, fmtr), db, transport, cfg.AllowedUsers)
	checker := reconcile.NewChecker(ledger, db, dispatcher)
	poller := reconcile.NewPoller(checker, cfg.PollInterval)

	tgBot := bot.New(bot.Deps{
		Telegram:   api,
		Users:      db,
		Ledger:     ledger,
		Flows:      conversation.NewManager(ledger, fmtr),
		Calc:       calc,
		Formatter:  fmtr,
		Reconciler: poller,
		AdminID:    cfg.AdminUserID,
	})

	poller.Start(ctx)

	runErr := make(chan error, 1)
	go func() {
		runErr <- tgBot.Run(ctx)
	}()

	log.Info().
		Str("sheet", cfg.SheetName).
		Dur("poll_interval", cfg.PollInterval).
		Msg("Ledger bot started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("Shutting down...")
		cancel()
		poller.Stop()
		select {
		case <-runErr:
		case <-time.After(10 * time.Second):
			log.Warn().Msg("Update loop did not stop in time")
		}
	case err := <-runErr:
		if err != nil {
			log.Error().Err(err).Msg("Update loop failed")
		}
		cancel()
		poller.Stop()
	}

	log.Info().Msg("Ledger bot exited")
}
