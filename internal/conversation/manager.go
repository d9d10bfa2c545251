package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/ledgerbot/internal/domain"
	"github.com/dvloznov/ledgerbot/internal/format"
	"github.com/dvloznov/ledgerbot/internal/logger"
	"github.com/dvloznov/ledgerbot/internal/parse"
)

// ErrNoFlow is returned by Input when the user has no guided flow in
// progress, so the caller can fall back to free-form entry parsing.
var ErrNoFlow = errors.New("no conversation in progress")

// Appender writes one finished transaction to the ledger.
type Appender interface {
	Append(ctx context.Context, r domain.Record) error
}

// Manager holds the per-user flow states. States are keyed by Telegram
// user ID and never interact across users.
type Manager struct {
	mu     sync.Mutex
	states map[int64]State

	ledger Appender
	fmtr   format.Formatter
	now    func() time.Time
}

// NewManager builds a flow manager over the given ledger appender.
func NewManager(ledger Appender, fmtr format.Formatter) *Manager {
	return &Manager{
		states: make(map[int64]State),
		ledger: ledger,
		fmtr:   fmtr,
		now:    time.Now,
	}
}

// Begin starts a fresh flow for the user in the given direction and
// returns the amount prompt. Any flow already in progress is discarded.
func (m *Manager) Begin(userID int64, direction domain.Direction) string {
	m.mu.Lock()
	m.states[userID] = AwaitingAmount{Direction: direction}
	m.mu.Unlock()
	return "💵 Enter the amount:"
}

// Cancel drops the user's flow, if any, and reports whether one was
// live. Used both for an explicit /cancel and for clearing a stale
// partial entry before handling an unrelated command.
func (m *Manager) Cancel(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, live := m.states[userID]
	delete(m.states, userID)
	return live
}

// Active reports whether the user has a flow in progress.
func (m *Manager) Active(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, live := m.states[userID]
	return live
}

// Input feeds one text message into the user's live flow.
//
// The returned reply is the next prompt or the final confirmation.
// Validation failures leave the state untouched so the user can retry
// the same step. When the flow completes, the appended record is
// returned alongside the confirmation; the state is reset to idle even
// if the append itself fails, so a retry starts a fresh flow instead
// of resuming a half-built one.
func (m *Manager) Input(ctx context.Context, userID int64, actor, text string) (reply string, appended *domain.Record, err error) {
	m.mu.Lock()
	state, ok := m.states[userID]
	if !ok {
		m.mu.Unlock()
		return "", nil, ErrNoFlow
	}

	switch s := state.(type) {
	case AwaitingAmount:
		amount, perr := parse.Amount(text)
		if perr != nil {
			m.mu.Unlock()
			return "", nil, perr
		}
		m.states[userID] = AwaitingDescription{Direction: s.Direction, Amount: amount}
		m.mu.Unlock()
		return "📝 Now send a description:", nil, nil

	case AwaitingDescription:
		description := strings.TrimSpace(text)
		if description == "" {
			m.mu.Unlock()
			return "", nil, parse.ErrEmptyDescription
		}
		delete(m.states, userID)
		m.mu.Unlock()

		record := domain.Record{
			Date:        civil.DateOf(m.now()),
			Actor:       actor,
			Amount:      s.Amount,
			Description: description,
			Direction:   s.Direction,
		}
		if aerr := m.ledger.Append(ctx, record); aerr != nil {
			log := logger.FromContext(ctx)
			log.Error().Err(aerr).
				Int64("user_id", userID).
				Msg("Failed to append transaction from guided flow")
			return "", nil, fmt.Errorf("append transaction: %w", aerr)
		}
		return "✅ Transaction added:\n" + m.fmtr.Entry(record), &record, nil

	default:
		// Idle is never stored in the map; treat it as no flow anyway.
		delete(m.states, userID)
		m.mu.Unlock()
		return "", nil, ErrNoFlow
	}
}
