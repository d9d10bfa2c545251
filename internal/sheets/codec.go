package sheets

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/ledgerbot/internal/domain"
	"github.com/shopspring/decimal"
)

// The sheet carries 4 columns: date, actor, signed amount, description.
// Amounts use a comma decimal separator (the sheet's locale); the sign
// determines the direction, there is no separate direction column.

var headerWords = []string{"date", "user", "amount", "description"}

// Dates appear in a few historical formats; dd.MM.yyyy is what the bot
// writes.
var dateLayouts = []string{"02.01.2006", "02/01/2006", "2006-01-02"}

// isHeaderRow reports whether the row looks like a column header: any
// of the first four cells case-insensitively containing one of the
// known column names.
func isHeaderRow(row []string) bool {
	for i, cell := range row {
		if i >= 4 {
			break
		}
		lower := strings.ToLower(cell)
		for _, word := range headerWords {
			if strings.Contains(lower, word) {
				return true
			}
		}
	}
	return false
}

// decodeRow parses one data row into a Record.
func decodeRow(row []string) (domain.Record, error) {
	if len(row) < 4 {
		return domain.Record{}, fmt.Errorf("row has %d cells, want 4", len(row))
	}

	amount, err := parseCellAmount(row[2])
	if err != nil {
		return domain.Record{}, fmt.Errorf("bad amount cell %q: %w", row[2], err)
	}

	direction := domain.Give
	if amount.IsNegative() {
		direction = domain.Take
	}

	// A date the codec cannot read should not drop a money row; the
	// balance does not depend on it. The zero date marks it unknown.
	date, _ := parseCellDate(row[0])

	return domain.Record{
		Date:        date,
		Actor:       strings.TrimSpace(row[1]),
		Amount:      amount.Abs(),
		Description: strings.TrimSpace(row[3]),
		Direction:   direction,
	}, nil
}

// encodeRow renders a Record as sheet cells. Take rows get a leading
// minus; the comma decimal separator follows the sheet's locale.
func encodeRow(r domain.Record) []string {
	signed := r.Amount
	if r.Direction == domain.Take {
		signed = signed.Neg()
	}
	return []string{
		formatCellDate(r.Date),
		r.Actor,
		formatCellAmount(signed),
		r.Description,
	}
}

// parseCellAmount normalizes a locale-formatted cell ("1 500,50",
// "-50,25") back to a decimal.
func parseCellAmount(cell string) (decimal.Decimal, error) {
	normalized := strings.ReplaceAll(cell, " ", "")
	normalized = strings.ReplaceAll(normalized, " ", "") // sheets group thousands with nbsp
	normalized = strings.ReplaceAll(normalized, ",", ".")
	return decimal.NewFromString(normalized)
}

// formatCellAmount renders a signed decimal with two digits and a
// comma separator.
func formatCellAmount(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}

func parseCellDate(cell string) (civil.Date, error) {
	cell = strings.TrimSpace(cell)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return civil.DateOf(t), nil
		}
	}
	return civil.Date{}, fmt.Errorf("unrecognized date %q", cell)
}

func formatCellDate(d civil.Date) string {
	return d.In(time.UTC).Format("02.01.2006")
}
