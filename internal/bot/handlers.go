package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"price-monitor-bot/internal/database"
	"price-monitor-bot/internal/models"
	"price-monitor-bot/internal/monitor"
	"price-monitor-bot/internal/scraper"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var urlRe = regexp.MustCompile(`https?://[^\s]+`)

// Handler processes incoming Telegram updates against the engine.
type Handler struct {
	bot         *tgbotapi.BotAPI
	engine      *monitor.Monitor
	adminChatID int64
}

// NewHandler creates the command handler.
func NewHandler(bot *tgbotapi.BotAPI, engine *monitor.Monitor, adminChatID int64) *Handler {
	return &Handler{bot: bot, engine: engine, adminChatID: adminChatID}
}

// Run consumes updates until the context is cancelled.
func (h *Handler) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			h.bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.Text == "" || update.Message.From == nil {
				continue
			}
			h.handleMessage(ctx, update.Message)
		}
	}
}

func (h *Handler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	text := strings.TrimSpace(message.Text)
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return
	}

	command := strings.ToLower(parts[0])
	if idx := strings.Index(command, "@"); idx > 0 {
		command = command[:idx]
	}

	switch command {
	case "/start":
		h.handleStart(message)
	case "/help":
		h.handleHelp(message.Chat.ID)
	case "/list":
		h.handleList(message)
	case "/stop":
		h.handleStop(message, parts[1:])
	case "/target":
		h.handleTarget(message, parts[1:])
	case "/history":
		h.handleHistory(message, parts[1:])
	case "/feedback":
		h.handleFeedback(message, text)
	default:
		if urlRe.MatchString(text) {
			h.handleTrack(ctx, message, urlRe.FindString(text))
		} else {
			h.reply(message.Chat.ID, "Please send a product URL, or use /help to see the commands.")
		}
	}
}

func (h *Handler) handleStart(message *tgbotapi.Message) {
	name := message.From.FirstName
	welcome := fmt.Sprintf(
		"👋 *Hi %s!*\n\n🔍 I track product prices and notify you when they change.\n\nJust send me a product link to get started, or use /help. 🛒",
		name,
	)
	h.replyMarkdown(message.Chat.ID, welcome)
}

func (h *Handler) handleHelp(chatID int64) {
	help := `📋 *Available Commands:*

• */start* - Welcome message
• */help* - Show this help
• */list* - Show your tracked products
• */stop [number]* - Stop tracking a product
• */target [number] [price]* - Alert when the price reaches a target
• */history [number]* - Recent recorded prices
• */feedback [text]* - Send feedback to the operator

*To track a product:*
Just send me the product URL directly!`
	h.replyMarkdown(chatID, help)
}

func (h *Handler) handleTrack(ctx context.Context, message *tgbotapi.Message, url string) {
	waitMsg := tgbotapi.NewMessage(message.Chat.ID, "🔍 Analyzing product... Please wait.")
	sent, sendErr := h.bot.Send(waitMsg)

	item, err := h.engine.Track(ctx, message.From.ID, url)
	var response string
	switch {
	case errors.Is(err, scraper.ErrUnsupportedSite):
		response = "❌ Sorry, I don't support this store yet. Try an Amazon, Flipkart or Myntra link."
	case err != nil:
		log.Printf("Track failed for user %d (%s): %v", message.From.ID, url, err)
		response = "❌ Sorry, I couldn't extract the price from this URL. Please try a different product."
	default:
		response = fmt.Sprintf(
			"✅ *Now Tracking!*\n\n📦 *Product:* %s\n💰 *Current Price:* ₹%.2f\n\nI'll notify you when the price changes significantly!\nUse /list to see all your tracked products.",
			item.Title, *item.CurrentPrice,
		)
	}

	if sendErr == nil {
		edit := tgbotapi.NewEditMessageText(message.Chat.ID, sent.MessageID, response)
		edit.ParseMode = tgbotapi.ModeMarkdown
		if _, err := h.bot.Send(edit); err != nil {
			h.replyMarkdown(message.Chat.ID, response)
		}
	} else {
		h.replyMarkdown(message.Chat.ID, response)
	}
}

func (h *Handler) handleList(message *tgbotapi.Message) {
	items, err := h.engine.List(message.From.ID)
	if err != nil {
		log.Printf("List failed for user %d: %v", message.From.ID, err)
		h.reply(message.Chat.ID, "❌ Could not load your products, please try again.")
		return
	}
	if len(items) == 0 {
		h.reply(message.Chat.ID, "You're not tracking any products yet! Send me a product URL to start.")
		return
	}

	var b strings.Builder
	b.WriteString("📦 *Your Tracked Products:*\n\n")
	for i, item := range items {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, shorten(itemTitle(item), 50)))
		b.WriteString(fmt.Sprintf("   💰 *Current Price:* %s\n", formatPrice(item.CurrentPrice)))
		if item.TargetPrice != nil {
			b.WriteString(fmt.Sprintf("   🎯 *Target:* ₹%.2f\n", *item.TargetPrice))
		}
		if item.LastError != "" {
			b.WriteString("   ⚠️ Last check failed\n")
		}
		b.WriteString(fmt.Sprintf("   🔗 [View Product](%s)\n\n", item.URL))
	}
	b.WriteString("Use `/stop [number]` to stop tracking a product.")
	h.replyMarkdown(message.Chat.ID, b.String())
}

func (h *Handler) handleStop(message *tgbotapi.Message, args []string) {
	index, ok := h.parseIndex(message.Chat.ID, args, "/stop 1")
	if !ok {
		return
	}
	item, err := h.engine.StopTracking(message.From.ID, index)
	if errors.Is(err, database.ErrNotFound) {
		h.reply(message.Chat.ID, "❌ Invalid product number. Use /list to see your products.")
		return
	}
	if err != nil {
		log.Printf("Stop failed for user %d: %v", message.From.ID, err)
		h.reply(message.Chat.ID, "❌ Could not remove the product, please try again.")
		return
	}
	h.reply(message.Chat.ID, fmt.Sprintf("✅ Stopped tracking: %s", shorten(itemTitle(*item), 50)))
}

func (h *Handler) handleTarget(message *tgbotapi.Message, args []string) {
	if len(args) < 2 {
		h.replyMarkdown(message.Chat.ID, "Please specify a product and a price.\nExample: `/target 1 4999`")
		return
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		h.replyMarkdown(message.Chat.ID, "❌ Please enter a valid number. Example: `/target 1 4999`")
		return
	}
	price, err := strconv.ParseFloat(args[1], 64)
	if err != nil || price <= 0 {
		h.reply(message.Chat.ID, "❌ Invalid price. Use a positive number.")
		return
	}

	item, err := h.engine.SetTargetPrice(message.From.ID, index, price)
	if errors.Is(err, database.ErrNotFound) {
		h.reply(message.Chat.ID, "❌ Invalid product number. Use /list to see your products.")
		return
	}
	if err != nil {
		log.Printf("Set target failed for user %d: %v", message.From.ID, err)
		h.reply(message.Chat.ID, "❌ Could not set the target price, please try again.")
		return
	}
	h.replyMarkdown(message.Chat.ID, fmt.Sprintf(
		"🎯 Target set! I'll alert you when *%s* reaches ₹%.2f or less.",
		shorten(itemTitle(*item), 50), price,
	))
}

func (h *Handler) handleHistory(message *tgbotapi.Message, args []string) {
	index, ok := h.parseIndex(message.Chat.ID, args, "/history 1")
	if !ok {
		return
	}
	item, points, err := h.engine.History(message.From.ID, index, 10)
	if errors.Is(err, database.ErrNotFound) {
		h.reply(message.Chat.ID, "❌ Invalid product number. Use /list to see your products.")
		return
	}
	if err != nil {
		log.Printf("History failed for user %d: %v", message.From.ID, err)
		h.reply(message.Chat.ID, "❌ Could not load the history, please try again.")
		return
	}
	if len(points) == 0 {
		h.reply(message.Chat.ID, "No prices recorded for this product yet.")
		return
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 *%s*\n\n", shorten(itemTitle(*item), 50)))
	for _, p := range points {
		b.WriteString(fmt.Sprintf("₹%.2f - %s\n", p.Price, p.CheckedAt.Format("02 Jan 15:04")))
	}
	h.replyMarkdown(message.Chat.ID, b.String())
}

func (h *Handler) handleFeedback(message *tgbotapi.Message, text string) {
	body := strings.TrimSpace(strings.TrimPrefix(text, "/feedback"))
	if body == "" {
		h.replyMarkdown(message.Chat.ID, "Please include your feedback.\nExample: `/feedback the bot missed a price drop`")
		return
	}
	if h.adminChatID == 0 {
		h.reply(message.Chat.ID, "✅ Thanks for the feedback!")
		return
	}
	forward := tgbotapi.NewMessage(h.adminChatID,
		fmt.Sprintf("Feedback from %s (%d):\n%s", message.From.FirstName, message.From.ID, body))
	if _, err := h.bot.Send(forward); err != nil {
		log.Printf("Failed to forward feedback: %v", err)
	}
	h.reply(message.Chat.ID, "✅ Thanks for the feedback!")
}

func (h *Handler) parseIndex(chatID int64, args []string, example string) (int, bool) {
	if len(args) == 0 {
		h.replyMarkdown(chatID, fmt.Sprintf("Please specify which product.\nExample: `%s`", example))
		return 0, false
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		h.replyMarkdown(chatID, fmt.Sprintf("❌ Please enter a valid number. Example: `%s`", example))
		return 0, false
	}
	return index, true
}

func (h *Handler) reply(chatID int64, text string) {
	if _, err := h.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

func (h *Handler) replyMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	if _, err := h.bot.Send(msg); err != nil {
		log.Printf("Failed to send message with markdown, retrying plain: %v", err)
		msg.ParseMode = ""
		if _, err := h.bot.Send(msg); err != nil {
			log.Printf("Failed to send message: %v", err)
		}
	}
}

func itemTitle(item models.TrackedItem) string {
	if item.Title == "" {
		return "Unknown Product"
	}
	return item.Title
}

func shorten(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func formatPrice(p *float64) string {
	if p == nil {
		return "Price not found"
	}
	return fmt.Sprintf("₹%.2f", *p)
}
