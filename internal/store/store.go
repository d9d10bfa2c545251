// Package store persists registered users and the reconciler's
// snapshot in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dvloznov/ledgerbot/internal/domain"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	telegram_id           INTEGER PRIMARY KEY,
	username              TEXT NOT NULL DEFAULT '',
	first_name            TEXT NOT NULL DEFAULT '',
	last_name             TEXT NOT NULL DEFAULT '',
	is_admin              INTEGER NOT NULL DEFAULT 0,
	notifications_enabled INTEGER NOT NULL DEFAULT 1,
	created_at            TIMESTAMP NOT NULL,
	updated_at            TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshot (
	id          INTEGER PRIMARY KEY CHECK (id = 1),
	row_count   INTEGER NOT NULL,
	observed_at TIMESTAMP NOT NULL
);
`

// Store wraps the SQLite handle.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists. Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetUser returns the user with the given Telegram ID, or nil when the
// user is not registered. Absence is not an error.
func (s *Store) GetUser(ctx context.Context, telegramID int64) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT telegram_id, username, first_name, last_name,
		       is_admin, notifications_enabled, created_at, updated_at
		FROM users WHERE telegram_id = ?`, telegramID)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", telegramID, err)
	}
	return u, nil
}

// UpsertUser inserts the user or refreshes the profile fields of an
// existing one. The notification preference of an existing user is
// preserved; a new user starts with notifications enabled.
func (s *Store) UpsertUser(ctx context.Context, u domain.User) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (telegram_id, username, first_name, last_name,
		                   is_admin, notifications_enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(telegram_id) DO UPDATE SET
			username   = excluded.username,
			first_name = excluded.first_name,
			last_name  = excluded.last_name,
			is_admin   = excluded.is_admin,
			updated_at = excluded.updated_at`,
		u.TelegramID, u.Username, u.FirstName, u.LastName,
		u.IsAdmin, u.NotificationsEnabled, now, now)
	if err != nil {
		return fmt.Errorf("upsert user %d: %w", u.TelegramID, err)
	}
	return nil
}

// SetNotifications flips the notification preference for one user.
func (s *Store) SetNotifications(ctx context.Context, telegramID int64, enabled bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET notifications_enabled = ?, updated_at = ?
		WHERE telegram_id = ?`, enabled, time.Now(), telegramID)
	if err != nil {
		return fmt.Errorf("set notifications for %d: %w", telegramID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set notifications for %d: %w", telegramID, err)
	}
	if affected == 0 {
		return fmt.Errorf("user %d is not registered", telegramID)
	}
	return nil
}

// ListNotifiable returns every user with notifications enabled.
func (s *Store) ListNotifiable(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT telegram_id, username, first_name, last_name,
		       is_admin, notifications_enabled, created_at, updated_at
		FROM users WHERE notifications_enabled = 1
		ORDER BY telegram_id`)
	if err != nil {
		return nil, fmt.Errorf("list notifiable users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list notifiable users: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notifiable users: %w", err)
	}
	return users, nil
}

// GetSnapshot returns the persisted snapshot, or nil before the first
// reconciliation pass ever completed. Absence is not an error.
func (s *Store) GetSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	err := s.db.QueryRowContext(ctx,
		`SELECT row_count, observed_at FROM snapshot WHERE id = 1`).
		Scan(&snap.RowCount, &snap.ObservedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return &snap, nil
}

// PutSnapshot persists the snapshot, replacing any previous one.
func (s *Store) PutSnapshot(ctx context.Context, snap domain.Snapshot) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshot (id, row_count, observed_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			row_count   = excluded.row_count,
			observed_at = excluded.observed_at`,
		snap.RowCount, snap.ObservedAt)
	if err != nil {
		return fmt.Errorf("put snapshot: %w", err)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row scanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.TelegramID, &u.Username, &u.FirstName, &u.LastName,
		&u.IsAdmin, &u.NotificationsEnabled, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
