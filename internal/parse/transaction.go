package parse

import (
	"errors"
	"strings"

	"github.com/dvloznov/ledgerbot/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrNeedAmountAndDescription = errors.New("need amount and description, e.g. '100 lunch'")
	ErrEmptyDescription         = errors.New("description must not be empty")
)

// Intent is a parsed transaction the user wants to record. It is not
// yet a ledger row: the caller supplies the actor and date.
type Intent struct {
	Amount      decimal.Decimal
	Description string
	Direction   domain.Direction
}

// Transaction parses one quick-entry message.
//
// Supported forms:
//
//	"+100 card transfer"  give
//	"-50,25 taxi"         take
//	"100 lunch"           give (default)
//
// The amount token is validated by Amount; its error is propagated
// verbatim so the user sees the precise rejection reason.
func Transaction(text string) (Intent, error) {
	clean := strings.Join(strings.Fields(text), " ")
	if clean == "" {
		return Intent{}, ErrEmptyAmount
	}

	direction := domain.Give
	var amountToken, description string

	switch {
	case strings.HasPrefix(clean, "+"):
		amountToken, description = splitFirst(strings.TrimSpace(clean[1:]))
	case strings.HasPrefix(clean, "-"):
		direction = domain.Take
		amountToken, description = splitFirst(strings.TrimSpace(clean[1:]))
	default:
		amountToken, description = splitFirst(clean)
		if description == "" {
			return Intent{}, ErrNeedAmountAndDescription
		}
	}

	amount, err := Amount(amountToken)
	if err != nil {
		return Intent{}, err
	}

	description = strings.TrimSpace(description)
	if description == "" {
		return Intent{}, ErrEmptyDescription
	}

	return Intent{Amount: amount, Description: description, Direction: direction}, nil
}

// splitFirst cuts on the first run of whitespace: amount token first,
// description tail second (possibly empty).
func splitFirst(s string) (string, string) {
	head, tail, _ := strings.Cut(s, " ")
	return head, tail
}
