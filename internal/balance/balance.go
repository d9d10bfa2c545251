// Package balance derives the mutual debt between the two participants
// from the ordered ledger rows.
package balance

import (
	"fmt"

	"github.com/dvloznov/ledgerbot/internal/domain"
	"github.com/shopspring/decimal"
)

// Calculator maps a signed ledger total onto the two participants.
// A is the giver on "give" rows, so a positive total means B has
// received more than they gave back and owes A.
type Calculator struct {
	A string
	B string
}

// Signed folds the rows into the net signed total. Positive favors A.
func (c Calculator) Signed(rows []domain.Record) decimal.Decimal {
	return domain.SumSigned(rows)
}

// Compute derives the debtor/creditor balance from the rows. The
// sign-to-role mapping is a pure function of the sign of the total:
// positive means B owes A, negative means A owes B, zero means settled
// with both names empty.
func (c Calculator) Compute(rows []domain.Record) domain.Balance {
	total := c.Signed(rows)

	switch {
	case total.IsPositive():
		return domain.Balance{
			Debtor:    c.B,
			Creditor:  c.A,
			Amount:    total,
			Narrative: fmt.Sprintf("%s owes %s", c.B, c.A),
		}
	case total.IsNegative():
		return domain.Balance{
			Debtor:    c.A,
			Creditor:  c.B,
			Amount:    total.Neg(),
			Narrative: fmt.Sprintf("%s owes %s", c.A, c.B),
		}
	default:
		return domain.Balance{
			Amount:    decimal.Zero,
			Narrative: "all square",
		}
	}
}
