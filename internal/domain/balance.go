package domain

import "github.com/shopspring/decimal"

// Balance is the derived state of the mutual ledger: who owes whom and
// how much. It is recomputed from the full row set on demand, never
// stored. Amount is zero iff both participant fields are empty.
type Balance struct {
	Debtor    string
	Creditor  string
	Amount    decimal.Decimal // non-negative
	Narrative string
}

// IsSettled reports whether nobody owes anything.
func (b Balance) IsSettled() bool {
	return b.Amount.IsZero()
}
