package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/ledgerbot/internal/domain"
	"github.com/dvloznov/ledgerbot/internal/format"
	"github.com/dvloznov/ledgerbot/internal/parse"
)

// mockAppender records appended transactions and can fail on demand.
type mockAppender struct {
	appended []domain.Record
	err      error
}

func (m *mockAppender) Append(ctx context.Context, r domain.Record) error {
	if m.err != nil {
		return m.err
	}
	m.appended = append(m.appended, r)
	return nil
}

var testFormatter = format.Formatter{Symbol: "$", ParticipantA: "Dmitry"}

func TestManager_FullFlow(t *testing.T) {
	ledger := &mockAppender{}
	m := NewManager(ledger, testFormatter)
	ctx := context.Background()

	if m.Active(7) {
		t.Fatal("new user should have no flow")
	}

	m.Begin(7, domain.Give)
	if !m.Active(7) {
		t.Fatal("flow should be live after Begin")
	}

	// A bad amount keeps the flow on the same step.
	if _, _, err := m.Input(ctx, 7, "Dmitry", "abc"); !errors.Is(err, parse.ErrBadCharacter) {
		t.Fatalf("bad amount error = %v, want ErrBadCharacter", err)
	}
	if !m.Active(7) {
		t.Fatal("flow must survive a rejected amount")
	}

	reply, appended, err := m.Input(ctx, 7, "Dmitry", "200")
	if err != nil {
		t.Fatalf("valid amount rejected: %v", err)
	}
	if appended != nil {
		t.Fatal("nothing should be appended before the description step")
	}
	if reply == "" {
		t.Fatal("amount step should prompt for a description")
	}

	reply, appended, err = m.Input(ctx, 7, "Dmitry", "groceries")
	if err != nil {
		t.Fatalf("description step failed: %v", err)
	}
	if appended == nil {
		t.Fatal("completed flow should return the appended record")
	}
	if !appended.Amount.Equal(decimal.NewFromInt(200)) {
		t.Errorf("amount = %s, want 200", appended.Amount)
	}
	if appended.Description != "groceries" {
		t.Errorf("description = %q, want groceries", appended.Description)
	}
	if appended.Direction != domain.Give {
		t.Errorf("direction = %v, want Give", appended.Direction)
	}
	if appended.Actor != "Dmitry" {
		t.Errorf("actor = %q, want Dmitry", appended.Actor)
	}
	if reply == "" {
		t.Error("completed flow should confirm the entry")
	}

	if m.Active(7) {
		t.Error("flow must reset to idle after completion")
	}
	if len(ledger.appended) != 1 {
		t.Errorf("ledger got %d appends, want 1", len(ledger.appended))
	}
}

func TestManager_InputWithoutFlow(t *testing.T) {
	m := NewManager(&mockAppender{}, testFormatter)

	if _, _, err := m.Input(context.Background(), 7, "Dmitry", "100 lunch"); !errors.Is(err, ErrNoFlow) {
		t.Errorf("idle input error = %v, want ErrNoFlow", err)
	}
}

func TestManager_EmptyDescriptionKeepsFlow(t *testing.T) {
	m := NewManager(&mockAppender{}, testFormatter)
	ctx := context.Background()

	m.Begin(7, domain.Take)
	if _, _, err := m.Input(ctx, 7, "Alexander", "50"); err != nil {
		t.Fatalf("amount step failed: %v", err)
	}

	if _, _, err := m.Input(ctx, 7, "Alexander", "   "); !errors.Is(err, parse.ErrEmptyDescription) {
		t.Fatalf("blank description error = %v, want ErrEmptyDescription", err)
	}
	if !m.Active(7) {
		t.Error("flow must survive a blank description")
	}
}

func TestManager_AppendFailureStillResets(t *testing.T) {
	ledger := &mockAppender{err: errors.New("sheet unavailable")}
	m := NewManager(ledger, testFormatter)
	ctx := context.Background()

	m.Begin(7, domain.Give)
	if _, _, err := m.Input(ctx, 7, "Dmitry", "100"); err != nil {
		t.Fatalf("amount step failed: %v", err)
	}

	if _, _, err := m.Input(ctx, 7, "Dmitry", "lunch"); err == nil {
		t.Fatal("append failure must surface to the caller")
	}
	if m.Active(7) {
		t.Error("flow must reset even when the append fails")
	}
}

func TestManager_Cancel(t *testing.T) {
	m := NewManager(&mockAppender{}, testFormatter)

	if m.Cancel(7) {
		t.Error("cancel with no flow should report false")
	}

	m.Begin(7, domain.Give)
	if !m.Cancel(7) {
		t.Error("cancel of a live flow should report true")
	}
	if m.Active(7) {
		t.Error("cancel must clear the flow")
	}
}

func TestManager_UsersAreIsolated(t *testing.T) {
	m := NewManager(&mockAppender{}, testFormatter)
	ctx := context.Background()

	m.Begin(1, domain.Give)
	m.Begin(2, domain.Take)

	if _, _, err := m.Input(ctx, 1, "Dmitry", "100"); err != nil {
		t.Fatalf("user 1 amount step failed: %v", err)
	}
	m.Cancel(1)

	// User 2 is still on the amount step of their own flow.
	if !m.Active(2) {
		t.Fatal("cancelling user 1 must not touch user 2")
	}
	if _, _, err := m.Input(ctx, 2, "Alexander", "30"); err != nil {
		t.Errorf("user 2 amount step failed: %v", err)
	}
}
