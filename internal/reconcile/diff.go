// Package reconcile compares the live ledger against the remembered
// snapshot and turns the difference into notification events.
package reconcile

import (
	"time"

	"github.com/dvloznov/ledgerbot/internal/domain"
)

// Kind classifies one reconciliation pass.
type Kind int

const (
	// NoChange covers both an unchanged ledger and the cold-start
	// pass that seeds the snapshot.
	NoChange Kind = iota
	Grew
	Shrank
)

func (k Kind) String() string {
	switch k {
	case Grew:
		return "grew"
	case Shrank:
		return "shrank"
	default:
		return "none"
	}
}

// Result is the outcome of diffing the current rows against the last
// snapshot. Snapshot is the value to persist once the pass (including
// notification dispatch) succeeds.
type Result struct {
	Kind  Kind
	Delta int

	// Added holds the newly appended rows when Kind is Grew. Growth is
	// assumed to happen at the tail; the diff is count-based and has
	// no row-level identity, so simultaneous external inserts and
	// deletes that net to the same count are indistinguishable from no
	// change. Accepted limitation, not to be fixed silently.
	Added []domain.Record

	Snapshot domain.Snapshot
}

// Diff classifies the delta between the rows read now and the last
// remembered snapshot. last == nil is the first pass ever: the
// snapshot is seeded from the current count and nothing is reported,
// so pre-existing history never triggers notifications.
func Diff(rows []domain.Record, last *domain.Snapshot, now time.Time) Result {
	current := len(rows)
	next := domain.Snapshot{RowCount: current, ObservedAt: now}

	if last == nil {
		return Result{Kind: NoChange, Snapshot: next}
	}

	switch {
	case current > last.RowCount:
		delta := current - last.RowCount
		return Result{
			Kind:     Grew,
			Delta:    delta,
			Added:    rows[current-delta:],
			Snapshot: next,
		}
	case current < last.RowCount:
		return Result{
			Kind:     Shrank,
			Delta:    last.RowCount - current,
			Snapshot: next,
		}
	default:
		// Row count unchanged: keep the count, refresh the timestamp.
		return Result{Kind: NoChange, Snapshot: next}
	}
}
