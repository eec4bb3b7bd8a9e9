package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	TelegramBotToken string
	DatabaseURL      string
	RedisURL         string
	APIKey           string

	DrawAPIBaseURL   string
	DrawPollSecs     int
	DrawIntervalSecs int

	MinHistory        int
	HistoryFetchLimit int
	StatsTTLHours     int
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		APIKey:           strings.TrimSpace(os.Getenv("API_KEY")),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}

	cfg.DrawAPIBaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("DRAW_API_BASE_URL")), "/")
	if cfg.DrawAPIBaseURL == "" {
		log.Println("Warning: DRAW_API_BASE_URL not set")
	}

	cfg.DrawPollSecs = 15
	if v := os.Getenv("DRAW_POLL_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DrawPollSecs = n
		}
	}

	cfg.DrawIntervalSecs = 60
	if v := os.Getenv("DRAW_INTERVAL_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DrawIntervalSecs = n
		}
	}

	cfg.MinHistory = 50
	if v := os.Getenv("MIN_HISTORY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MinHistory = n
		}
	}

	cfg.HistoryFetchLimit = 100
	if v := os.Getenv("HISTORY_FETCH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryFetchLimit = n
		}
	}

	cfg.StatsTTLHours = 24
	if v := os.Getenv("STATS_TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.StatsTTLHours = n
		}
	}

	return cfg
}
