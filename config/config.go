// Package config loads the bot's tunables from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds everything the engine and its shells need at startup.
type Config struct {
	BotToken              string
	AlertThresholdPercent float64
	CheckInterval         time.Duration
	FetchTimeout          time.Duration
	MaxConcurrentChecks   int
	DatabasePath          string
	HTTPAddr              string // empty disables the HTTP surface
	AdminChatID           int64  // 0 disables feedback forwarding
}

// Load reads configuration from environment variables, applying defaults
// for everything except the bot token.
func Load() (*Config, error) {
	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("BOT_TOKEN environment variable is required")
	}

	cfg := &Config{
		BotToken:              token,
		AlertThresholdPercent: 5,
		CheckInterval:         60 * time.Minute,
		FetchTimeout:          10 * time.Second,
		MaxConcurrentChecks:   4,
		DatabasePath:          "./products.db",
		HTTPAddr:              os.Getenv("HTTP_ADDR"),
	}

	if v := os.Getenv("PRICE_ALERT_THRESHOLD"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			cfg.AlertThresholdPercent = parsed
		}
	}
	if v := os.Getenv("CHECK_INTERVAL"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.CheckInterval = time.Duration(parsed) * time.Minute
		}
	}
	if v := os.Getenv("FETCH_TIMEOUT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.FetchTimeout = time.Duration(parsed) * time.Second
		}
	}
	if v := os.Getenv("MAX_CONCURRENT_CHECKS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.MaxConcurrentChecks = parsed
		}
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("ADMIN_CHAT_ID"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.AdminChatID = parsed
		}
	}

	return cfg, nil
}
