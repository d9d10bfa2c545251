package domain

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Direction tells which way money moved between the two participants.
// Give means participant A transferred to participant B; Take is the
// opposite. The amount on a record is always positive, the direction
// carries the sign.
type Direction string

const (
	Give Direction = "give"
	Take Direction = "take"
)

// Record is one row of the shared ledger.
type Record struct {
	Date        civil.Date // calendar day, no time component
	Actor       string     // participant who entered the row
	Amount      decimal.Decimal
	Description string
	Direction   Direction
}

// Signed returns the record's contribution to the running balance:
// +Amount for Give rows, -Amount for Take rows.
func (r Record) Signed() decimal.Decimal {
	if r.Direction == Take {
		return r.Amount.Neg()
	}
	return r.Amount
}

// SumSigned folds an ordered row sequence into the net signed total.
// The total is order-independent; ordering only matters to callers that
// narrate intermediate balances.
func SumSigned(rows []Record) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Signed())
	}
	return total
}
