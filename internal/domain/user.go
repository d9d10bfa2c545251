package domain

import (
	"fmt"
	"time"
)

// User is a registered Telegram user of the bot.
type User struct {
	TelegramID           int64
	Username             string
	FirstName            string
	LastName             string
	IsAdmin              bool
	NotificationsEnabled bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// DisplayName picks the name recorded as the actor on appended rows:
// first name, then username, then a synthetic fallback.
func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return fmt.Sprintf("User%d", u.TelegramID)
}
