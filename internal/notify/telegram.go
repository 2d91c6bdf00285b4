// Package notify pushes host-facing notices to Telegram. It is
// optional: with no token configured the Notifier is nil and every
// method is a no-op, so call sites never branch.
package notify

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger
}

// New connects to the Telegram Bot API. Returns (nil, nil) when token
// or chat id is unset; a nil Notifier is safe to use.
func New(token string, chatID int64, logger *slog.Logger) (*Notifier, error) {
	if token == "" || chatID == 0 {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}
	logger.Info("telegram notifier enabled", "bot", bot.Self.UserName)
	return &Notifier{bot: bot, chatID: chatID, logger: logger}, nil
}

func (n *Notifier) send(text string) {
	if n == nil {
		return
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error("telegram send failed", "error", err)
	}
}

// QuarterWinner announces a recorded winner and their payout.
func (n *Notifier) QuarterWinner(poolTitle, quarter, owner string, payout float64) {
	n.send(fmt.Sprintf("🏆 *%s*\n%s winner: %s ($%.2f)", poolTitle, quarter, owner, payout))
}

// PaymentVerified announces a square marked paid.
func (n *Notifier) PaymentVerified(poolTitle, owner, cellID string) {
	n.send(fmt.Sprintf("💵 *%s*\n%s paid for square %s", poolTitle, owner, cellID))
}
