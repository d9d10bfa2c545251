package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/dvloznov/ledgerbot/internal/balance"
	"github.com/dvloznov/ledgerbot/internal/config"
	"github.com/dvloznov/ledgerbot/internal/domain"
	"github.com/dvloznov/ledgerbot/internal/format"
	"github.com/dvloznov/ledgerbot/internal/logger"
	"github.com/dvloznov/ledgerbot/internal/notify"
	"github.com/dvloznov/ledgerbot/internal/parse"
	"github.com/dvloznov/ledgerbot/internal/reconcile"
	"github.com/dvloznov/ledgerbot/internal/sheets"
	"github.com/dvloznov/ledgerbot/internal/store"
)

func main() {
	log := logger.New(false)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "balance":
		runBalance(log)
	case "history":
		runHistory(log)
	case "add":
		runAdd(log)
	case "check":
		runCheck(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Ledger Bot CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  balance   Print who owes whom right now")
	fmt.Println("  history   Print the last ledger entries")
	fmt.Println("  add       Append a transaction, e.g. cli add \"100 lunch\"")
	fmt.Println("  check     Run one reconciliation pass, printing notifications")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// env holds the wired collaborators every command needs.
type env struct {
	cfg    config.Config
	db     *store.Store
	ledger *sheets.Ledger
	calc   balance.Calculator
	fmtr   format.Formatter
}

func setup(ctx context.Context, log zerolog.Logger) (*env, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	client, err := sheets.NewClient(ctx, cfg.GoogleCredentialsPath, cfg.SpreadsheetID)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &env{
		cfg:    cfg,
		db:     db,
		ledger: sheets.NewLedger(client, cfg.SheetName),
		calc:   balance.Calculator{A: cfg.Participants.A, B: cfg.Participants.B},
		fmtr:   format.Formatter{Symbol: cfg.CurrencySymbol, ParticipantA: cfg.Participants.A},
	}, nil
}

func runBalance(log zerolog.Logger) {
	ctx, cancel := commandContext(log)
	defer cancel()

	e, err := setup(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Setup failed")
	}
	defer e.db.Close()

	rows, err := e.ledger.Records(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read ledger")
	}

	bal := e.calc.Compute(rows)
	fmt.Printf("Balance: %s\n", e.fmtr.Balance(bal))
	if bal.IsSettled() {
		fmt.Println("All square.")
	} else {
		fmt.Printf("%s %s\n", bal.Narrative, e.fmtr.Currency(bal.Amount))
	}
}

func runHistory(log zerolog.Logger) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("n", 10, "number of entries to show")
	fs.Parse(os.Args[2:])

	if *limit < 1 {
		log.Fatal().Msg("Error: -n must be at least 1")
	}

	ctx, cancel := commandContext(log)
	defer cancel()

	e, err := setup(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Setup failed")
	}
	defer e.db.Close()

	rows, err := e.ledger.Records(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read ledger")
	}
	if len(rows) == 0 {
		fmt.Println("The ledger is empty.")
		return
	}
	if len(rows) > *limit {
		rows = rows[len(rows)-*limit:]
	}

	fmt.Print(e.fmtr.HistoryTable(rows))
}

func runAdd(log zerolog.Logger) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	actor := fs.String("actor", "", "actor name recorded on the row (defaults to participant A)")
	fs.Parse(os.Args[2:])

	text := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(text) == "" {
		log.Fatal().Msg("Usage: cli add [-actor NAME] \"100 lunch\"")
	}

	intent, err := parse.Transaction(text)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid transaction")
	}

	ctx, cancel := commandContext(log)
	defer cancel()

	e, err := setup(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Setup failed")
	}
	defer e.db.Close()

	if *actor == "" {
		*actor = e.cfg.Participants.A
	}

	record := domain.Record{
		Date:        civil.DateOf(time.Now()),
		Actor:       *actor,
		Amount:      intent.Amount,
		Description: intent.Description,
		Direction:   intent.Direction,
	}
	if err := e.ledger.Append(ctx, record); err != nil {
		log.Fatal().Err(err).Msg("Append failed")
	}

	fmt.Printf("Added: %s\n", e.fmtr.Entry(record))
}

func runCheck(log zerolog.Logger) {
	ctx, cancel := commandContext(log)
	defer cancel()

	e, err := setup(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Setup failed")
	}
	defer e.db.Close()

	composer := notify.NewComposer(e.calc, e.fmtr)
	dispatcher := notify.NewDispatcher(composer, e.db, stdoutTransport{}, e.cfg.AllowedUsers)
	checker := reconcile.NewChecker(e.ledger, e.db, dispatcher)

	if err := checker.Check(ctx); err != nil {
		log.Fatal().Err(err).Msg("Reconciliation pass failed")
	}
	fmt.Println("Reconciliation pass completed.")
}

// stdoutTransport prints notifications instead of sending them, so a
// check run from a terminal shows what the bot would have delivered.
type stdoutTransport struct{}

func (stdoutTransport) Send(ctx context.Context, userID int64, text string) error {
	fmt.Printf("--- notification for %d ---\n%s\n", userID, text)
	return nil
}

func commandContext(log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	return logger.WithContext(ctx, log), cancel
}
