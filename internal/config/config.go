// Package config loads the bot configuration from the environment and
// fails fast on anything missing or malformed.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Participants are the two fixed people sharing the ledger. A "give"
// row moves money from A to B, a "take" row from B to A.
type Participants struct {
	A string
	B string
}

// Config holds everything the bot needs at startup.
type Config struct {
	Token                 string
	AdminUserID           int64
	GoogleCredentialsPath string
	SpreadsheetID         string
	SheetName             string
	PollInterval          time.Duration
	DBPath                string
	Debug                 bool
	Participants          Participants
	CurrencySymbol        string

	// AllowedUsers, when non-empty, restricts notification fan-out to
	// these Telegram IDs. Registration itself stays open.
	AllowedUsers []int64
}

// FromEnv builds a Config from environment variables.
//
// Required: BOT_TOKEN, ADMIN_USER_ID, GOOGLE_CREDENTIALS_PATH,
// SPREADSHEET_ID. Everything else has a default.
func FromEnv() (Config, error) {
	cfg := Config{
		SheetName:      getEnv("SHEET_NAME", "Transactions"),
		DBPath:         getEnv("DB_PATH", "ledgerbot.db"),
		Debug:          getEnv("DEBUG", "false") == "true",
		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "$"),
		Participants: Participants{
			A: getEnv("PARTICIPANT_A", "Dmitry"),
			B: getEnv("PARTICIPANT_B", "Alexander"),
		},
	}

	var err error
	if cfg.Token, err = requireEnv("BOT_TOKEN"); err != nil {
		return Config{}, err
	}
	if cfg.GoogleCredentialsPath, err = requireEnv("GOOGLE_CREDENTIALS_PATH"); err != nil {
		return Config{}, err
	}
	if cfg.SpreadsheetID, err = requireEnv("SPREADSHEET_ID"); err != nil {
		return Config{}, err
	}

	adminRaw, err := requireEnv("ADMIN_USER_ID")
	if err != nil {
		return Config{}, err
	}
	cfg.AdminUserID, err = strconv.ParseInt(adminRaw, 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("ADMIN_USER_ID must be a number: %w", err)
	}

	intervalRaw := getEnv("POLL_INTERVAL", "15s")
	cfg.PollInterval, err = time.ParseDuration(intervalRaw)
	if err != nil {
		return Config{}, fmt.Errorf("POLL_INTERVAL is not a duration: %w", err)
	}

	if raw := os.Getenv("ALLOWED_USERS"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return Config{}, fmt.Errorf("ALLOWED_USERS entry %q is not a Telegram ID: %w", part, err)
			}
			cfg.AllowedUsers = append(cfg.AllowedUsers, id)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks invariants that FromEnv cannot express per-variable.
func (c Config) Validate() error {
	if c.PollInterval < time.Second {
		return fmt.Errorf("poll interval %s is below the 1s minimum", c.PollInterval)
	}
	if c.Participants.A == "" || c.Participants.B == "" {
		return fmt.Errorf("both participant names must be set")
	}
	if c.Participants.A == c.Participants.B {
		return fmt.Errorf("participants must be two different names")
	}
	return nil
}

func requireEnv(name string) (string, error) {
	value := os.Getenv(name)
	if value == "" {
		return "", fmt.Errorf("required environment variable %s is not set", name)
	}
	return value, nil
}

func getEnv(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}
