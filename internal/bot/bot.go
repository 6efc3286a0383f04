package bot

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Init connects and authorizes the Telegram bot.
func Init(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		if err.Error() == "Unauthorized" {
			return nil, fmt.Errorf("telegram token invalid or expired; get one from @BotFather")
		}
		return nil, fmt.Errorf("connect to Telegram: %w", err)
	}

	bot.Debug = false
	log.Printf("Authorized as @%s", bot.Self.UserName)
	return bot, nil
}
