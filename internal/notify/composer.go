// Package notify turns detected ledger changes into user-facing
// messages and fans them out to everyone who opted in.
package notify

import (
	"fmt"
	"strings"

	"github.com/dvloznov/ledgerbot/internal/balance"
	"github.com/dvloznov/ledgerbot/internal/domain"
	"github.com/dvloznov/ledgerbot/internal/format"
	"github.com/shopspring/decimal"
)

// Composer renders change notifications. Growth messages carry the
// arithmetic line "before <op> amount = after" for each appended row;
// shrinkage messages carry only counts and the current balance, since
// a count-based diff cannot tell which rows disappeared.
type Composer struct {
	calc balance.Calculator
	fmtr format.Formatter
}

// NewComposer builds a composer over the participant pair and the
// display formatter.
func NewComposer(calc balance.Calculator, fmtr format.Formatter) *Composer {
	return &Composer{calc: calc, fmtr: fmtr}
}

// Grew renders one message per appended row, in ledger order. For each
// row the balance after it is computed over the prefix of the full row
// set ending at that row, and the balance before is derived by
// removing the row's signed contribution.
func (c *Composer) Grew(all []domain.Record, added []domain.Record) []string {
	messages := make([]string, 0, len(added))
	base := len(all) - len(added)

	for i, row := range added {
		prefix := all[:base+i+1]
		after := c.calc.Compute(prefix)

		beforeTotal := c.calc.Signed(prefix).Sub(row.Signed())
		before := c.signedBalance(beforeTotal)

		op := "+"
		if row.Direction == domain.Take {
			op = "-"
		}

		var sb strings.Builder
		sb.WriteString("🔔 New transaction:\n")
		sb.WriteString(c.fmtr.Entry(row))
		sb.WriteString("\n📅 " + c.fmtr.Date(row.Date))
		sb.WriteString("\n\n")
		sb.WriteString(c.transferLine(row))
		sb.WriteString("\n\nBalance:\n")
		fmt.Fprintf(&sb, "%s %s %s = %s",
			c.fmtr.Balance(before), op, c.fmtr.Currency(row.Amount), c.fmtr.Balance(after))

		messages = append(messages, sb.String())
	}
	return messages
}

// Shrank renders the single removal notice: how many rows vanished,
// how many remain, and where the balance stands now.
func (c *Composer) Shrank(removed int, remaining []domain.Record) string {
	current := c.calc.Compute(remaining)

	var sb strings.Builder
	sb.WriteString("🗑 Rows removed from the ledger:\n")
	fmt.Fprintf(&sb, "Removed entries: %d\n", removed)
	fmt.Fprintf(&sb, "Entries left: %d\n\n", len(remaining))
	fmt.Fprintf(&sb, "💰 Current balance: %s", c.fmtr.Balance(current))
	return sb.String()
}

// transferLine names who handed money to whom on this row.
func (c *Composer) transferLine(r domain.Record) string {
	if r.Direction == domain.Take {
		return fmt.Sprintf("💸 %s → %s: %s", c.calc.B, c.calc.A, c.fmtr.Currency(r.Amount))
	}
	return fmt.Sprintf("💰 %s → %s: %s", c.calc.A, c.calc.B, c.fmtr.Currency(r.Amount))
}

// signedBalance builds a Balance from a raw signed total, reusing the
// calculator's sign-to-role mapping.
func (c *Composer) signedBalance(total decimal.Decimal) domain.Balance {
	if total.IsZero() {
		return c.calc.Compute(nil)
	}
	synthetic := domain.Record{Amount: total.Abs(), Direction: domain.Give}
	if total.IsNegative() {
		synthetic.Direction = domain.Take
	}
	return c.calc.Compute([]domain.Record{synthetic})
}
