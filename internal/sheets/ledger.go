// Package sheets reads and appends ledger rows stored in a Google
// Sheets spreadsheet.
package sheets

import (
	"context"
	"fmt"

	"github.com/dvloznov/ledgerbot/internal/domain"
	"github.com/dvloznov/ledgerbot/internal/logger"
)

// Ledger is the ordered row store the reconciler and the entry flows
// work against. Rows live in a single sheet, 4 columns wide.
type Ledger struct {
	svc       ValuesService
	sheetName string
}

// NewLedger wraps a ValuesService with the row codec for one sheet.
func NewLedger(svc ValuesService, sheetName string) *Ledger {
	return &Ledger{svc: svc, sheetName: sheetName}
}

// Records reads every data row in ledger order. A header row is
// skipped; a malformed row is logged and skipped so one corrupt cell
// cannot poison the balance. A transport error is returned as-is:
// callers must be able to tell "the sheet is unreachable" from "the
// sheet is empty".
func (l *Ledger) Records(ctx context.Context) ([]domain.Record, error) {
	log := logger.FromContext(ctx)

	rows, err := l.svc.Get(ctx, l.readRange())
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	records := make([]domain.Record, 0, len(rows))
	for i, row := range rows {
		if i == 0 && isHeaderRow(row) {
			continue
		}
		record, err := decodeRow(row)
		if err != nil {
			log.Warn().Err(err).Int("row", i+1).Msg("Skipping malformed ledger row")
			continue
		}
		records = append(records, record)
	}

	log.Debug().Int("rows", len(rows)).Int("records", len(records)).Msg("Read ledger")
	return records, nil
}

// Append writes one record after the last row of the sheet.
func (l *Ledger) Append(ctx context.Context, r domain.Record) error {
	if err := l.svc.Append(ctx, l.readRange(), encodeRow(r)); err != nil {
		return fmt.Errorf("append ledger row: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("actor", r.Actor).
		Str("direction", string(r.Direction)).
		Str("amount", r.Amount.String()).
		Msg("Appended ledger row")
	return nil
}

func (l *Ledger) readRange() string {
	return l.sheetName + "!A:D"
}
