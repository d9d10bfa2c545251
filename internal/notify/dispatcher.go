package notify

import (
	"context"
	"fmt"

	"github.com/dvloznov/ledgerbot/internal/domain"
	"github.com/dvloznov/ledgerbot/internal/logger"
)

// Transport delivers one message to one user. Best-effort: the
// dispatcher treats a failure as that recipient's problem only.
type Transport interface {
	Send(ctx context.Context, userID int64, text string) error
}

// UserDirectory lists the users who opted into notifications.
type UserDirectory interface {
	ListNotifiable(ctx context.Context) ([]domain.User, error)
}

// Dispatcher composes change messages and fans them out. It implements
// the reconciler's Notifier interface.
type Dispatcher struct {
	composer  *Composer
	users     UserDirectory
	transport Transport

	// allowed, when non-empty, restricts recipients to these IDs.
	allowed map[int64]bool
}

// NewDispatcher wires a dispatcher. allowedUsers may be nil or empty,
// which means everyone with notifications enabled receives messages.
func NewDispatcher(composer *Composer, users UserDirectory, transport Transport, allowedUsers []int64) *Dispatcher {
	var allowed map[int64]bool
	if len(allowedUsers) > 0 {
		allowed = make(map[int64]bool, len(allowedUsers))
		for _, id := range allowedUsers {
			allowed[id] = true
		}
	}
	return &Dispatcher{
		composer:  composer,
		users:     users,
		transport: transport,
		allowed:   allowed,
	}
}

// LedgerGrew sends one message per appended row to every recipient.
func (d *Dispatcher) LedgerGrew(ctx context.Context, all []domain.Record, added []domain.Record) error {
	recipients, err := d.recipients(ctx)
	if err != nil {
		return err
	}
	log := logger.FromContext(ctx)
	if len(recipients) == 0 {
		log.Info().Msg("No users with notifications enabled")
		return nil
	}

	for _, message := range d.composer.Grew(all, added) {
		d.broadcast(ctx, recipients, message)
	}
	log.Info().
		Int("rows", len(added)).
		Int("recipients", len(recipients)).
		Msg("Sent growth notifications")
	return nil
}

// LedgerShrank sends the removal notice to every recipient.
func (d *Dispatcher) LedgerShrank(ctx context.Context, removed int, remaining []domain.Record) error {
	recipients, err := d.recipients(ctx)
	if err != nil {
		return err
	}
	log := logger.FromContext(ctx)
	if len(recipients) == 0 {
		log.Info().Msg("No users with notifications enabled")
		return nil
	}

	d.broadcast(ctx, recipients, d.composer.Shrank(removed, remaining))
	log.Info().
		Int("removed", removed).
		Int("recipients", len(recipients)).
		Msg("Sent removal notifications")
	return nil
}

// broadcast delivers one message to all recipients. A failure for one
// recipient is logged and skipped; it never aborts the rest.
func (d *Dispatcher) broadcast(ctx context.Context, recipients []domain.User, message string) {
	log := logger.FromContext(ctx)
	for _, u := range recipients {
		if err := d.transport.Send(ctx, u.TelegramID, message); err != nil {
			log.Warn().Err(err).Int64("user_id", u.TelegramID).
				Msg("Failed to deliver notification")
			continue
		}
		log.Debug().Int64("user_id", u.TelegramID).Msg("Notification delivered")
	}
}

func (d *Dispatcher) recipients(ctx context.Context) ([]domain.User, error) {
	users, err := d.users.ListNotifiable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	if d.allowed == nil {
		return users, nil
	}

	filtered := users[:0]
	for _, u := range users {
		if d.allowed[u.TelegramID] {
			filtered = append(filtered, u)
		}
	}
	return filtered, nil
}
