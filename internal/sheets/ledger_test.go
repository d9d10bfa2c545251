package sheets

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/ledgerbot/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

// mockValues is a mock ValuesService backed by a slice of rows.
type mockValues struct {
	rows     [][]string
	getErr   error
	appended [][]string
}

func (m *mockValues) Get(ctx context.Context, readRange string) ([][]string, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.rows, nil
}

func (m *mockValues) Append(ctx context.Context, writeRange string, row []string) error {
	m.appended = append(m.appended, row)
	return nil
}

func TestRecords_SkipsHeaderAndMalformed(t *testing.T) {
	svc := &mockValues{rows: [][]string{
		{"Date", "User", "Amount", "Description"},
		{"27.08.2026", "Dmitry", "100,00", "lunch"},
		{"28.08.2026", "Alexander"}, // short row
		{"28.08.2026", "Alexander", "-50,25", "taxi"},
		{"28.08.2026", "Dmitry", "not a number", "broken"},
	}}
	ledger := NewLedger(svc, "Transactions")

	got, err := ledger.Records(context.Background())
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}

	want := []domain.Record{
		{
			Date:        civil.Date{Year: 2026, Month: 8, Day: 27},
			Actor:       "Dmitry",
			Amount:      decimal.RequireFromString("100"),
			Description: "lunch",
			Direction:   domain.Give,
		},
		{
			Date:        civil.Date{Year: 2026, Month: 8, Day: 28},
			Actor:       "Alexander",
			Amount:      decimal.RequireFromString("50.25"),
			Description: "taxi",
			Direction:   domain.Take,
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Records mismatch (-want +got):\n%s", diff)
	}
}

func TestRecords_NoHeader(t *testing.T) {
	svc := &mockValues{rows: [][]string{
		{"27.08.2026", "Dmitry", "100,00", "lunch"},
	}}
	ledger := NewLedger(svc, "Transactions")

	got, err := ledger.Records(context.Background())
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
}

func TestRecords_PropagatesReadError(t *testing.T) {
	readErr := errors.New("transport down")
	ledger := NewLedger(&mockValues{getErr: readErr}, "Transactions")

	_, err := ledger.Records(context.Background())
	if !errors.Is(err, readErr) {
		t.Errorf("Records error = %v, want wrapped %v", err, readErr)
	}
}

func TestAppend_EncodesRow(t *testing.T) {
	svc := &mockValues{}
	ledger := NewLedger(svc, "Transactions")

	record := domain.Record{
		Date:        civil.Date{Year: 2026, Month: 8, Day: 28},
		Actor:       "Alexander",
		Amount:      decimal.RequireFromString("50.25"),
		Description: "taxi",
		Direction:   domain.Take,
	}
	if err := ledger.Append(context.Background(), record); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if len(svc.appended) != 1 {
		t.Fatalf("appended %d rows, want 1", len(svc.appended))
	}
	want := []string{"28.08.2026", "Alexander", "-50,25", "taxi"}
	if diff := cmp.Diff(want, svc.appended[0]); diff != "" {
		t.Errorf("appended row mismatch (-want +got):\n%s", diff)
	}
}

func TestCodec_RoundTripSign(t *testing.T) {
	give := domain.Record{
		Date:        civil.Date{Year: 2026, Month: 8, Day: 28},
		Actor:       "Dmitry",
		Amount:      decimal.RequireFromString("1500.50"),
		Description: "rent",
		Direction:   domain.Give,
	}

	row := encodeRow(give)
	if row[2] != "1500,50" {
		t.Errorf("give amount cell = %q, want 1500,50", row[2])
	}

	decoded, err := decodeRow(row)
	if err != nil {
		t.Fatalf("decodeRow failed: %v", err)
	}
	if decoded.Direction != domain.Give {
		t.Errorf("direction = %q, want give", decoded.Direction)
	}
	if !decoded.Amount.Equal(give.Amount) {
		t.Errorf("amount = %s, want %s", decoded.Amount, give.Amount)
	}
}

func TestIsHeaderRow(t *testing.T) {
	if !isHeaderRow([]string{"Дата", "User", "Сумма", "Описание"}) {
		t.Error("mixed-language header not detected")
	}
	if isHeaderRow([]string{"27.08.2026", "Dmitry", "100,00", "lunch"}) {
		t.Error("data row misdetected as header")
	}
}
