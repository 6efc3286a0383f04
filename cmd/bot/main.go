package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"price-monitor-bot/config"
	"price-monitor-bot/internal/api"
	"price-monitor-bot/internal/bot"
	"price-monitor-bot/internal/database"
	"price-monitor-bot/internal/monitor"
	"price-monitor-bot/internal/notify"
	"price-monitor-bot/internal/scraper"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	telegramBot, err := bot.Init(cfg.BotToken)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram bot: %v", err)
	}

	registry := scraper.NewRegistry(cfg.FetchTimeout)
	notifier := notify.NewTelegramNotifier(telegramBot)
	engine := monitor.New(db, registry, notifier, cfg.CheckInterval, cfg.AlertThresholdPercent, cfg.MaxConcurrentChecks)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go engine.Start(ctx)

	if cfg.HTTPAddr != "" {
		go func() {
			log.Printf("HTTP listening on %s", cfg.HTTPAddr)
			if err := http.ListenAndServe(cfg.HTTPAddr, api.NewRouter(engine)); err != nil {
				log.Printf("HTTP server stopped: %v", err)
			}
		}()
	}

	handler := bot.NewHandler(telegramBot, engine, cfg.AdminChatID)
	go handler.Run(ctx)

	log.Println("Price monitor bot is running")
	<-ctx.Done()
	log.Println("Shutting down")
}
