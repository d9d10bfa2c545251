package reconcile

import (
	"testing"
	"time"

	"github.com/dvloznov/ledgerbot/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func makeRows(n int) []domain.Record {
	rows := make([]domain.Record, n)
	for i := range rows {
		rows[i] = domain.Record{
			Actor:       "Dmitry",
			Amount:      decimal.NewFromInt(int64(i + 1)),
			Description: "row",
			Direction:   domain.Give,
		}
	}
	return rows
}

func TestDiff_ColdStart(t *testing.T) {
	now := time.Now()
	rows := makeRows(5)

	got := Diff(rows, nil, now)

	if got.Kind != NoChange {
		t.Errorf("Kind = %s, want none on cold start", got.Kind)
	}
	if got.Snapshot.RowCount != 5 {
		t.Errorf("Snapshot.RowCount = %d, want 5", got.Snapshot.RowCount)
	}
	if len(got.Added) != 0 {
		t.Errorf("Added = %d rows, want none on cold start", len(got.Added))
	}
}

func TestDiff_Growth(t *testing.T) {
	rows := makeRows(7)
	last := &domain.Snapshot{RowCount: 5}

	got := Diff(rows, last, time.Now())

	if got.Kind != Grew {
		t.Fatalf("Kind = %s, want grew", got.Kind)
	}
	if got.Delta != 2 {
		t.Errorf("Delta = %d, want 2", got.Delta)
	}
	if diff := cmp.Diff(rows[5:7], got.Added); diff != "" {
		t.Errorf("Added should be the tail rows (-want +got):\n%s", diff)
	}
	if got.Snapshot.RowCount != 7 {
		t.Errorf("Snapshot.RowCount = %d, want 7", got.Snapshot.RowCount)
	}
}

func TestDiff_Shrinkage(t *testing.T) {
	rows := makeRows(5)
	last := &domain.Snapshot{RowCount: 7}

	got := Diff(rows, last, time.Now())

	if got.Kind != Shrank {
		t.Fatalf("Kind = %s, want shrank", got.Kind)
	}
	if got.Delta != 2 {
		t.Errorf("Delta = %d, want 2", got.Delta)
	}
	if got.Snapshot.RowCount != 5 {
		t.Errorf("Snapshot.RowCount = %d, want 5", got.Snapshot.RowCount)
	}
}

func TestDiff_NoChangeRefreshesTimestamp(t *testing.T) {
	observed := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	last := &domain.Snapshot{RowCount: 5, ObservedAt: observed.Add(-time.Hour)}

	got := Diff(makeRows(5), last, observed)

	if got.Kind != NoChange {
		t.Fatalf("Kind = %s, want none", got.Kind)
	}
	if got.Snapshot.RowCount != 5 {
		t.Errorf("Snapshot.RowCount = %d, want unchanged 5", got.Snapshot.RowCount)
	}
	if !got.Snapshot.ObservedAt.Equal(observed) {
		t.Errorf("ObservedAt = %s, want refreshed to %s", got.Snapshot.ObservedAt, observed)
	}
}

func TestDiff_EmptyLedgerAfterHistory(t *testing.T) {
	last := &domain.Snapshot{RowCount: 3}

	got := Diff(nil, last, time.Now())

	if got.Kind != Shrank || got.Delta != 3 {
		t.Errorf("Kind = %s, Delta = %d, want shrank by 3", got.Kind, got.Delta)
	}
}
