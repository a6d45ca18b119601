package notify

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lineupwatch/lineup-tracker/internal/domain/alert"
)

// Telegram allows roughly 30 messages per minute to a chat; spacing sends
// keeps a burst of simultaneous lineup alerts under that limit.
const telegramSendInterval = 2 * time.Second

var errTelegramTokenRequired = stderrors.New("telegram bot token is required")

type TelegramConfig struct {
	Token  string
	ChatID int64
}

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramChannel sends alerts to a single Telegram chat.
type TelegramChannel struct {
	bot    telegramSender
	chatID int64

	mu       sync.Mutex
	lastSend time.Time
}

func NewTelegramChannel(cfg TelegramConfig) (*TelegramChannel, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errTelegramTokenRequired
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	if _, err := bot.GetMe(); err != nil {
		return nil, fmt.Errorf("verify telegram bot: %w", err)
	}

	return &TelegramChannel{bot: bot, chatID: cfg.ChatID}, nil
}

func (c *TelegramChannel) Name() string { return "telegram" }

func (c *TelegramChannel) Send(ctx context.Context, a alert.Alert) error {
	if err := c.waitSendSlot(ctx); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(c.chatID, telegramText(a))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// waitSendSlot enforces the per-chat rate limit. The next allowed send time
// is claimed under the lock so concurrent callers queue behind each other.
func (c *TelegramChannel) waitSendSlot(ctx context.Context) error {
	c.mu.Lock()
	now := time.Now()
	next := c.lastSend.Add(telegramSendInterval)
	if next.Before(now) {
		next = now
	}
	c.lastSend = next
	c.mu.Unlock()

	wait := time.Until(next)
	if wait <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

func telegramText(a alert.Alert) string {
	var b strings.Builder

	switch a.Classification {
	case alert.ClassUnexpectedBenching:
		b.WriteString("🚨 *Unexpected benching*\n\n")
	case alert.ClassUnexpectedStarting:
		b.WriteString("⚡ *Unexpected starter*\n\n")
	case alert.ClassAsExpected:
		b.WriteString("✅ Lineup confirmed\n\n")
	default:
		b.WriteString("ℹ️ ")
	}
	b.WriteString(escapeTelegramMarkdown(a.Message))
	if a.Match.HomeTeam.Name != "" {
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "_%s vs %s_\n", escapeTelegramMarkdown(a.Match.HomeTeam.Name), escapeTelegramMarkdown(a.Match.AwayTeam.Name))
		fmt.Fprintf(&b, "🕐 Kick-off: %s", a.Match.KickoffAt.UTC().Format("2006-01-02 15:04 UTC"))
	}

	return b.String()
}

func escapeTelegramMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return replacer.Replace(text)
}
