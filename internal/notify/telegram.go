// Package notify delivers task outcome notifications to external
// channels. It sits outside the condition engine; notification failures
// never affect scheduling.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram sends task notifications to a Telegram chat
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger
}

// NewTelegram creates a Telegram notifier
func NewTelegram(token string, chatID int64, logger *slog.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Telegram{
		api:    api,
		chatID: chatID,
		logger: logger,
	}, nil
}

// TaskFired notifies that a task's condition was true and its action ran
func (t *Telegram) TaskFired(ctx context.Context, taskName, detail string) {
	text := fmt.Sprintf("✅ Task %q fired", taskName)
	if detail != "" {
		text += "\n" + detail
	}
	t.send(text)
}

// TaskFailed notifies that a task's condition or action failed
func (t *Telegram) TaskFailed(ctx context.Context, taskName, reason string) {
	t.send(fmt.Sprintf("❌ Task %q failed\n%s", taskName, reason))
}

func (t *Telegram) send(text string) {
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.api.Send(msg); err != nil {
		t.logger.Error("Failed to send notification",
			"component", "notify",
			"error", err)
	}
}
