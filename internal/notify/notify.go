// Package notify delivers price alerts to users.
package notify

import (
	"fmt"

	"price-monitor-bot/internal/alert"
	"price-monitor-bot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers one alert to the user's channel.
type Notifier interface {
	Notify(userID int64, item models.TrackedItem, decision alert.Decision, oldPrice, newPrice float64) error
}

// DeliveryError means the outbound channel rejected or never received the
// message. The price change stays committed regardless.
type DeliveryError struct {
	UserID int64
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver to user %d: %v", e.UserID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// TelegramNotifier sends alerts as Telegram messages.
type TelegramNotifier struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramNotifier creates a notifier on an authorized bot.
func NewTelegramNotifier(bot *tgbotapi.BotAPI) *TelegramNotifier {
	return &TelegramNotifier{bot: bot}
}

// Notify formats and sends the alert message.
func (n *TelegramNotifier) Notify(userID int64, item models.TrackedItem, decision alert.Decision, oldPrice, newPrice float64) error {
	msg := tgbotapi.NewMessage(userID, formatAlert(item, decision, oldPrice, newPrice))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.bot.Send(msg); err != nil {
		return &DeliveryError{UserID: userID, Err: err}
	}
	return nil
}

func formatAlert(item models.TrackedItem, decision alert.Decision, oldPrice, newPrice float64) string {
	var header, line string
	switch decision {
	case alert.TargetReached:
		header = "🎯 *Target Price Reached!* 🎯"
		line = fmt.Sprintf("The price hit your target of ₹%.2f!", *item.TargetPrice)
	case alert.PriceRise:
		header = "📈 *Price Alert!* 📈"
		line = "The price has increased!"
	default:
		header = "📉 *Price Alert!* 📉"
		line = "The price has dropped!"
	}

	return fmt.Sprintf(
		"%s\n\n*Product:* %s\n*Old Price:* ₹%.2f\n*New Price:* ₹%.2f\n\n%s\n\n[View Product](%s)",
		header, item.Title, oldPrice, newPrice, line, item.URL,
	)
}
