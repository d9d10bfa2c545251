package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/dvloznov/ledgerbot/internal/domain"
)

// mockLedger is a mock LedgerReader with an optional failure.
type mockLedger struct {
	rows []domain.Record
	err  error
}

func (m *mockLedger) Records(ctx context.Context) ([]domain.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.rows, nil
}

// mockSnapshots is an in-memory SnapshotStore that records writes.
type mockSnapshots struct {
	snap *domain.Snapshot
	puts int
}

func (m *mockSnapshots) GetSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	return m.snap, nil
}

func (m *mockSnapshots) PutSnapshot(ctx context.Context, snap domain.Snapshot) error {
	m.snap = &snap
	m.puts++
	return nil
}

// mockNotifier records what it was asked to announce.
type mockNotifier struct {
	grewAdded   []domain.Record
	shrankCount int
	err         error
}

func (m *mockNotifier) LedgerGrew(ctx context.Context, all, added []domain.Record) error {
	if m.err != nil {
		return m.err
	}
	m.grewAdded = append(m.grewAdded, added...)
	return nil
}

func (m *mockNotifier) LedgerShrank(ctx context.Context, removed int, remaining []domain.Record) error {
	if m.err != nil {
		return m.err
	}
	m.shrankCount += removed
	return nil
}

func TestCheck_ColdStartSeedsWithoutNotifying(t *testing.T) {
	snaps := &mockSnapshots{}
	notifier := &mockNotifier{}
	checker := NewChecker(&mockLedger{rows: makeRows(5)}, snaps, notifier)

	if err := checker.Check(context.Background()); err != nil {
		t.Fatalf("Check failed: %v", err)
	}

	if snaps.snap == nil || snaps.snap.RowCount != 5 {
		t.Errorf("snapshot = %+v, want seeded with row count 5", snaps.snap)
	}
	if len(notifier.grewAdded) != 0 || notifier.shrankCount != 0 {
		t.Error("cold start must not notify about pre-existing history")
	}
}

func TestCheck_GrowthNotifiesThenAdvances(t *testing.T) {
	snaps := &mockSnapshots{snap: &domain.Snapshot{RowCount: 5}}
	notifier := &mockNotifier{}
	checker := NewChecker(&mockLedger{rows: makeRows(7)}, snaps, notifier)

	if err := checker.Check(context.Background()); err != nil {
		t.Fatalf("Check failed: %v", err)
	}

	if len(notifier.grewAdded) != 2 {
		t.Errorf("notified about %d rows, want 2", len(notifier.grewAdded))
	}
	if snaps.snap.RowCount != 7 {
		t.Errorf("snapshot row count = %d, want 7", snaps.snap.RowCount)
	}
}

func TestCheck_ShrinkageNotifies(t *testing.T) {
	snaps := &mockSnapshots{snap: &domain.Snapshot{RowCount: 7}}
	notifier := &mockNotifier{}
	checker := NewChecker(&mockLedger{rows: makeRows(5)}, snaps, notifier)

	if err := checker.Check(context.Background()); err != nil {
		t.Fatalf("Check failed: %v", err)
	}

	if notifier.shrankCount != 2 {
		t.Errorf("notified about %d removed rows, want 2", notifier.shrankCount)
	}
	if snaps.snap.RowCount != 5 {
		t.Errorf("snapshot row count = %d, want 5", snaps.snap.RowCount)
	}
}

func TestCheck_ReadErrorLeavesSnapshotUntouched(t *testing.T) {
	readErr := errors.New("sheet unreachable")
	snaps := &mockSnapshots{snap: &domain.Snapshot{RowCount: 7}}
	notifier := &mockNotifier{}
	checker := NewChecker(&mockLedger{err: readErr}, snaps, notifier)

	err := checker.Check(context.Background())
	if !errors.Is(err, readErr) {
		t.Fatalf("Check error = %v, want wrapped read error", err)
	}

	// The central correctness property: a transient outage must never
	// be mistaken for a mass deletion.
	if snaps.puts != 0 {
		t.Error("snapshot was written despite a failed read")
	}
	if snaps.snap.RowCount != 7 {
		t.Errorf("snapshot row count = %d, want untouched 7", snaps.snap.RowCount)
	}
	if notifier.shrankCount != 0 {
		t.Error("read failure was misreported as shrinkage")
	}
}

func TestCheck_NotifyFailureBlocksSnapshotAdvance(t *testing.T) {
	snaps := &mockSnapshots{snap: &domain.Snapshot{RowCount: 5}}
	notifier := &mockNotifier{err: errors.New("dispatch broken")}
	checker := NewChecker(&mockLedger{rows: makeRows(7)}, snaps, notifier)

	if err := checker.Check(context.Background()); err == nil {
		t.Fatal("Expected error when dispatch fails")
	}

	if snaps.puts != 0 {
		t.Error("snapshot advanced although nobody was notified; rows would be silently lost")
	}
}

func TestCheck_NoChangeStillRefreshesSnapshot(t *testing.T) {
	snaps := &mockSnapshots{snap: &domain.Snapshot{RowCount: 5}}
	notifier := &mockNotifier{}
	checker := NewChecker(&mockLedger{rows: makeRows(5)}, snaps, notifier)

	if err := checker.Check(context.Background()); err != nil {
		t.Fatalf("Check failed: %v", err)
	}

	if snaps.puts != 1 {
		t.Errorf("snapshot writes = %d, want 1 (timestamp refresh)", snaps.puts)
	}
	if snaps.snap.RowCount != 5 {
		t.Errorf("row count = %d, want unchanged 5", snaps.snap.RowCount)
	}
}
