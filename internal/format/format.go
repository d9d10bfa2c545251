// Package format renders amounts, balances, and ledger rows for
// display. The core operates on decimals; everything locale-shaped
// (grouping, currency symbol, dd.MM.yyyy dates) lives here.
package format

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/ledgerbot/internal/domain"
	"github.com/shopspring/decimal"
)

const dateLayout = "02.01.2006"

// Formatter renders amounts with a currency symbol and resolves the
// display sign convention: a balance where participant A is the debtor
// renders negative, the opposite renders positive.
type Formatter struct {
	Symbol       string
	ParticipantA string
}

// Money renders "1,234.56": en-US thousands grouping, two decimals.
func (f Formatter) Money(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	whole, fraction, _ := strings.Cut(fixed, ".")
	return groupThousands(whole) + "." + fraction
}

// Currency renders the amount with the configured symbol: "$1,234.56".
func (f Formatter) Currency(d decimal.Decimal) string {
	return f.Symbol + f.Money(d)
}

// Balance renders a signed compact balance: "+$150.00", "-$70.00", or
// "$0.00" when settled.
func (f Formatter) Balance(b domain.Balance) string {
	if b.IsSettled() {
		return f.Symbol + "0.00"
	}
	sign := "+"
	if b.Debtor == f.ParticipantA {
		sign = "-"
	}
	return sign + f.Currency(b.Amount)
}

// Date renders a calendar day as dd.MM.yyyy, the sheet's convention.
func (f Formatter) Date(d civil.Date) string {
	return d.In(time.UTC).Format(dateLayout)
}

// Entry renders a one-line transaction summary: "💰 +$100.00 - lunch".
func (f Formatter) Entry(r domain.Record) string {
	emoji, sign := "💰", "+"
	if r.Direction == domain.Take {
		emoji, sign = "💸", "-"
	}
	return fmt.Sprintf("%s %s%s - %s", emoji, sign, f.Currency(r.Amount), r.Description)
}

// HistoryTable renders the rows as a fixed-width table for a <pre>
// block, oldest first, matching the sheet's own ordering.
func (f Formatter) HistoryTable(rows []domain.Record) string {
	var sb strings.Builder
	sb.WriteString("Date            Amount Description\n")
	sb.WriteString("---------- ----------- -----------\n")

	for _, r := range rows {
		sign := "+"
		if r.Direction == domain.Take {
			sign = "-"
		}
		description := r.Description
		if runes := []rune(description); len(runes) > 20 {
			description = string(runes[:17]) + "..."
		}
		fmt.Fprintf(&sb, "%-10s %11s %s\n", f.Date(r.Date), sign+f.Money(r.Amount), description)
	}

	return sb.String()
}

// groupThousands inserts commas into a plain digit string: "1234567"
// becomes "1,234,567".
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var sb strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}
