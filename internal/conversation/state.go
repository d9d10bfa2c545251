// Package conversation drives the guided two-step transaction entry
// flow, one independent state machine per user.
package conversation

import (
	"github.com/dvloznov/ledgerbot/internal/domain"
	"github.com/shopspring/decimal"
)

// State is the tagged variant of a user's flow position. Each variant
// carries exactly the data valid in that phase, so a pending amount
// without a phase (or vice versa) cannot be represented.
type State interface {
	isState()
}

// Idle means no guided flow is live for the user.
type Idle struct{}

// AwaitingAmount means the direction was chosen and the next message
// is expected to be the amount.
type AwaitingAmount struct {
	Direction domain.Direction
}

// AwaitingDescription means the amount was accepted and the next
// message is expected to be the description.
type AwaitingDescription struct {
	Direction domain.Direction
	Amount    decimal.Decimal
}

func (Idle) isState() {}

func (AwaitingAmount) isState() {}

func (AwaitingDescription) isState() {}
