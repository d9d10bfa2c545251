package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dvloznov/ledgerbot/internal/conversation"
	"github.com/dvloznov/ledgerbot/internal/domain"
	"github.com/dvloznov/ledgerbot/internal/logger"
	"github.com/dvloznov/ledgerbot/internal/parse"
)

// Inline keyboard callback payloads for the guided flow.
const (
	callbackGive = "flow:give"
	callbackTake = "flow:take"
)

const defaultHistoryLimit = 10

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}

	user := domain.User{
		TelegramID:           msg.From.ID,
		Username:             msg.From.UserName,
		FirstName:            msg.From.FirstName,
		LastName:             msg.From.LastName,
		IsAdmin:              msg.From.ID == b.admin,
		NotificationsEnabled: true,
	}
	if err := b.users.UpsertUser(ctx, user); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).
			Int64("user_id", user.TelegramID).
			Msg("Failed to register user")
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user)
		return
	}
	b.handleText(ctx, msg, user)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user domain.User) {
	command := msg.Command()
	chatID := msg.Chat.ID

	// A command interrupts any half-entered transaction: clear it so
	// stale amounts cannot leak into whatever comes next.
	if command != "cancel" && b.flows.Cancel(user.TelegramID) {
		log := logger.FromContext(ctx)
		log.Debug().
			Int64("user_id", user.TelegramID).
			Msg("Discarded partial entry before command")
	}

	switch command {
	case "start":
		b.reply(ctx, chatID, b.welcomeText(user))
	case "help":
		b.reply(ctx, chatID, b.helpText())
	case "add":
		b.sendDirectionKeyboard(ctx, chatID)
	case "balance":
		b.replyBalance(ctx, chatID)
	case "history":
		b.replyHistory(ctx, chatID, msg.CommandArguments())
	case "notifications":
		b.replyNotifications(ctx, chatID, user.TelegramID, msg.CommandArguments())
	case "cancel":
		if b.flows.Cancel(user.TelegramID) {
			b.reply(ctx, chatID, "❌ Entry cancelled.")
		} else {
			b.reply(ctx, chatID, "Nothing to cancel.")
		}
	default:
		b.reply(ctx, chatID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if _, err := b.tg.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("Failed to answer callback query")
	}
	if cq.From == nil || cq.Message == nil || cq.Message.Chat == nil {
		return
	}

	var direction domain.Direction
	switch cq.Data {
	case callbackGive:
		direction = domain.Give
	case callbackTake:
		direction = domain.Take
	default:
		return
	}

	prompt := b.flows.Begin(cq.From.ID, direction)
	b.reply(ctx, cq.Message.Chat.ID, prompt)
}

// handleText routes free text: a live guided flow consumes it first,
// otherwise it is treated as a quick entry like "100 lunch".
func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message, user domain.User) {
	chatID := msg.Chat.ID

	reply, appended, err := b.flows.Input(ctx, user.TelegramID, user.DisplayName(), msg.Text)
	switch {
	case errors.Is(err, conversation.ErrNoFlow):
		b.quickEntry(ctx, chatID, user, msg.Text)
	case err != nil:
		if b.flows.Active(user.TelegramID) {
			// Step validation failed; the user retries the same step.
			b.reply(ctx, chatID, "❌ "+err.Error())
		} else {
			b.reply(ctx, chatID, "⚠️ Could not record the transaction. Please try again.")
		}
	default:
		b.reply(ctx, chatID, reply)
		if appended != nil {
			b.scheduleCheck(ctx)
		}
	}
}

func (b *Bot) quickEntry(ctx context.Context, chatID int64, user domain.User, text string) {
	intent, err := parse.Transaction(text)
	if err != nil {
		b.reply(ctx, chatID, "❌ "+err.Error())
		return
	}

	record := domain.Record{
		Date:        civil.DateOf(time.Now()),
		Actor:       user.DisplayName(),
		Amount:      intent.Amount,
		Description: intent.Description,
		Direction:   intent.Direction,
	}
	if err := b.ledger.Append(ctx, record); err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("Quick entry append failed")
		b.reply(ctx, chatID, "⚠️ Could not record the transaction. Please try again.")
		return
	}

	b.reply(ctx, chatID, "✅ Transaction added:\n"+b.fmtr.Entry(record))
	b.scheduleCheck(ctx)
}

func (b *Bot) sendDirectionKeyboard(ctx context.Context, chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "What kind of transaction?")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("💰 %s → %s", b.calc.A, b.calc.B), callbackGive),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("💸 %s → %s", b.calc.B, b.calc.A), callbackTake),
		),
	)
	b.send(ctx, msg)
}

func (b *Bot) replyBalance(ctx context.Context, chatID int64) {
	rows, err := b.ledger.Records(ctx)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("Balance read failed")
		b.reply(ctx, chatID, "⚠️ Could not read the ledger. Please try again later.")
		return
	}

	bal := b.calc.Compute(rows)
	text := "💰 Balance: " + b.fmtr.Balance(bal)
	if bal.IsSettled() {
		text += "\n🤝 All square."
	} else {
		text += fmt.Sprintf("\n%s %s", bal.Narrative, b.fmtr.Currency(bal.Amount))
	}
	b.reply(ctx, chatID, text)
}

func (b *Bot) replyHistory(ctx context.Context, chatID int64, args string) {
	limit := defaultHistoryLimit
	if args = strings.TrimSpace(args); args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n < 1 || n > 100 {
			b.reply(ctx, chatID, "Usage: /history [1-100]")
			return
		}
		limit = n
	}

	rows, err := b.ledger.Records(ctx)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("History read failed")
		b.reply(ctx, chatID, "⚠️ Could not read the ledger. Please try again later.")
		return
	}
	if len(rows) == 0 {
		b.reply(ctx, chatID, "The ledger is empty.")
		return
	}

	shown := rows
	if len(shown) > limit {
		shown = shown[len(shown)-limit:]
	}

	var sb strings.Builder
	sb.WriteString("<pre>" + html.EscapeString(b.fmtr.HistoryTable(shown)) + "</pre>")
	if hidden := len(rows) - len(shown); hidden > 0 {
		fmt.Fprintf(&sb, "\n… and %d more", hidden)
	}
	sb.WriteString("\n💰 Balance: " + b.fmtr.Balance(b.calc.Compute(rows)))

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ParseMode = tgbotapi.ModeHTML
	b.send(ctx, msg)
}

func (b *Bot) replyNotifications(ctx context.Context, chatID, userID int64, args string) {
	switch strings.ToLower(strings.TrimSpace(args)) {
	case "on":
		if err := b.users.SetNotifications(ctx, userID, true); err != nil {
			log := logger.FromContext(ctx)
			log.Error().Err(err).Msg("Failed to enable notifications")
			b.reply(ctx, chatID, "⚠️ Could not update your settings.")
			return
		}
		b.reply(ctx, chatID, "🔔 Notifications enabled.")
	case "off":
		if err := b.users.SetNotifications(ctx, userID, false); err != nil {
			log := logger.FromContext(ctx)
			log.Error().Err(err).Msg("Failed to disable notifications")
			b.reply(ctx, chatID, "⚠️ Could not update your settings.")
			return
		}
		b.reply(ctx, chatID, "🔕 Notifications disabled.")
	case "":
		user, err := b.users.GetUser(ctx, userID)
		if err != nil || user == nil {
			b.reply(ctx, chatID, "Usage: /notifications on|off")
			return
		}
		status := "🔕 off"
		if user.NotificationsEnabled {
			status = "🔔 on"
		}
		b.reply(ctx, chatID, fmt.Sprintf("Notifications are %s.\nUsage: /notifications on|off", status))
	default:
		b.reply(ctx, chatID, "Usage: /notifications on|off")
	}
}

func (b *Bot) welcomeText(user domain.User) string {
	return fmt.Sprintf(
		"👋 Hi, %s!\n"+
			"I keep the shared ledger between %s and %s.\n\n"+
			"Add a transaction with /add, or just send me one message:\n"+
			"  +100 card transfer  (%s → %s)\n"+
			"  -50,25 taxi         (%s → %s)\n"+
			"  100 lunch\n\n"+
			"See /help for the full command list.",
		user.DisplayName(), b.calc.A, b.calc.B,
		b.calc.A, b.calc.B, b.calc.B, b.calc.A)
}

func (b *Bot) helpText() string {
	return fmt.Sprintf(
		"Commands:\n"+
			"/add - add a transaction step by step\n"+
			"/balance - who owes whom right now\n"+
			"/history [n] - last n entries (default %d)\n"+
			"/notifications on|off - toggle change alerts\n"+
			"/cancel - abort the current entry\n"+
			"/help - this message\n\n"+
			"Quick entry without /add:\n"+
			"  +100 card transfer  (%s → %s)\n"+
			"  -50,25 taxi         (%s → %s)\n"+
			"  100 lunch           (defaults to %s → %s)",
		defaultHistoryLimit,
		b.calc.A, b.calc.B, b.calc.B, b.calc.A, b.calc.A, b.calc.B)
}
