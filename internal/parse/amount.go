// Package parse validates free-form transaction input: a monetary
// amount and, for full entries, the sign/description grammar around it.
package parse

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors, one per rejection category so callers can branch
// with errors.Is and surface the exact reason to the user.
var (
	ErrEmptyAmount   = errors.New("amount must not be empty")
	ErrBadCharacter  = errors.New("amount contains invalid characters")
	ErrTooManyPoints = errors.New("too many decimal points")
	ErrNotANumber    = errors.New("unrecognized number")
	ErrNotPositive   = errors.New("amount must be greater than zero")
	ErrTooLarge      = errors.New("amount too large")
	ErrTooPrecise    = errors.New("at most 2 decimal digits")
)

// Digits, separators, internal spaces (thousands) and an optional
// leading minus. Anything else is rejected outright.
var amountPattern = regexp.MustCompile(`^-?[0-9,. ]+$`)

var maxAmount = decimal.NewFromInt(1_000_000)

// Amount turns a free-form string into a validated positive amount.
//
// The sign is discarded: a leading "-" is syntactically allowed but the
// returned value is always the absolute amount. Direction is conveyed
// by the caller's context (leading +/- in the full message, or an
// explicit button in the guided flow), never by this value.
func Amount(text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return decimal.Decimal{}, ErrEmptyAmount
	}
	if !amountPattern.MatchString(s) {
		return decimal.Decimal{}, ErrBadCharacter
	}

	// "1 500,50" -> "1500.50": spaces are thousands separators, the
	// comma is the locale decimal separator.
	normalized := strings.ReplaceAll(s, " ", "")
	normalized = strings.ReplaceAll(normalized, ",", ".")
	if strings.Count(normalized, ".") > 1 {
		return decimal.Decimal{}, ErrTooManyPoints
	}

	amount, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Decimal{}, ErrNotANumber
	}

	amount = amount.Abs()
	if amount.IsZero() {
		return decimal.Decimal{}, ErrNotPositive
	}
	if amount.GreaterThan(maxAmount) {
		return decimal.Decimal{}, ErrTooLarge
	}
	if _, fraction, ok := strings.Cut(normalized, "."); ok && len(fraction) > 2 {
		return decimal.Decimal{}, ErrTooPrecise
	}

	return amount, nil
}
