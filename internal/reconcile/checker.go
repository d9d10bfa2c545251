package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/ledgerbot/internal/domain"
	"github.com/dvloznov/ledgerbot/internal/logger"
	"github.com/google/uuid"
)

// LedgerReader is the ledger surface the checker polls.
type LedgerReader interface {
	Records(ctx context.Context) ([]domain.Record, error)
}

// SnapshotStore persists the last verified row count.
type SnapshotStore interface {
	GetSnapshot(ctx context.Context) (*domain.Snapshot, error)
	PutSnapshot(ctx context.Context, snap domain.Snapshot) error
}

// Notifier receives detected ledger changes. An error means dispatch
// could not even be attempted; per-recipient failures are the
// notifier's own business and must not surface here.
type Notifier interface {
	LedgerGrew(ctx context.Context, all []domain.Record, added []domain.Record) error
	LedgerShrank(ctx context.Context, removed int, remaining []domain.Record) error
}

// Checker runs one reconciliation pass: read, diff, notify, persist.
//
// The snapshot only advances after a verified read (and, when a change
// was detected, after notification dispatch). A read error aborts the
// pass with the stored snapshot untouched, so a transient outage can
// never masquerade as a mass deletion.
type Checker struct {
	ledger   LedgerReader
	store    SnapshotStore
	notifier Notifier
	now      func() time.Time
}

// NewChecker wires a checker from its collaborators.
func NewChecker(ledger LedgerReader, store SnapshotStore, notifier Notifier) *Checker {
	return &Checker{
		ledger:   ledger,
		store:    store,
		notifier: notifier,
		now:      time.Now,
	}
}

// Check performs one reconciliation pass.
func (c *Checker) Check(ctx context.Context) error {
	log := logger.FromContext(ctx).With().
		Str("run_id", uuid.New().String()).
		Logger()
	ctx = logger.WithContext(ctx, log)

	rows, err := c.ledger.Records(ctx)
	if err != nil {
		// Snapshot deliberately untouched.
		return fmt.Errorf("reconcile: %w", err)
	}

	last, err := c.store.GetSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	result := Diff(rows, last, c.now())

	if last == nil {
		log.Info().Int("row_count", result.Snapshot.RowCount).
			Msg("First reconciliation pass, seeding snapshot")
	} else {
		log.Debug().
			Str("kind", result.Kind.String()).
			Int("delta", result.Delta).
			Int("last", last.RowCount).
			Int("current", result.Snapshot.RowCount).
			Msg("Reconciled ledger")
	}

	switch result.Kind {
	case Grew:
		log.Info().Int("delta", result.Delta).Msg("Detected new ledger rows")
		if err := c.notifier.LedgerGrew(ctx, rows, result.Added); err != nil {
			return fmt.Errorf("reconcile: notify growth: %w", err)
		}
	case Shrank:
		log.Info().Int("delta", result.Delta).Msg("Detected removed ledger rows")
		if err := c.notifier.LedgerShrank(ctx, result.Delta, rows); err != nil {
			return fmt.Errorf("reconcile: notify shrinkage: %w", err)
		}
	}

	if err := c.store.PutSnapshot(ctx, result.Snapshot); err != nil {
		return fmt.Errorf("reconcile: persist snapshot: %w", err)
	}
	return nil
}
