package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Config keeps runtime settings for the bot.
type Config struct {
	Env

	// Resolved from ReminderTime and ReminderTZ by Load.
	ReminderHour     int
	ReminderMinute   int
	ReminderLocation *time.Location
}

// Env is the raw environment surface.
type Env struct {
	TelegramToken  string `env:"TELEGRAM_TOKEN, required"`
	DatabaseURL    string `env:"DATABASE_URL, default=taskbot.db"`
	MyUsername     string `env:"MY_USERNAME, required"`
	ReminderTime   string `env:"REMINDER_TIME, default=17:45"`
	ReminderTZ     string `env:"REMINDER_TZ, default=Europe/Moscow"`
	LogLevel       string `env:"LOG_LEVEL, default=info"`
	LogPretty      bool   `env:"LOG_PRETTY, default=false"`
	SendRatePerSec int    `env:"SEND_RATE_PER_SEC, default=20"`
	MetricsAddr    string `env:"METRICS_ADDR"`
}

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom decodes configuration from the given lookuper.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg.Env,
		Lookuper: lookuper,
	}); err != nil {
		return cfg, fmt.Errorf("process env: %w", err)
	}

	cfg.TelegramToken = strings.TrimSpace(cfg.TelegramToken)
	cfg.MyUsername = strings.TrimPrefix(strings.TrimSpace(cfg.MyUsername), "@")
	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if cfg.MyUsername == "" {
		return cfg, fmt.Errorf("MY_USERNAME is required")
	}

	hour, minute, err := ParseClock(cfg.ReminderTime)
	if err != nil {
		return cfg, err
	}
	cfg.ReminderHour, cfg.ReminderMinute = hour, minute

	loc, err := time.LoadLocation(strings.TrimSpace(cfg.ReminderTZ))
	if err != nil {
		return cfg, fmt.Errorf("invalid REMINDER_TZ %q: %w", cfg.ReminderTZ, err)
	}
	cfg.ReminderLocation = loc

	if cfg.SendRatePerSec <= 0 {
		cfg.SendRatePerSec = 20
	}

	return cfg, nil
}

// ParseClock accepts "HH" or "HH:MM".
func ParseClock(raw string) (int, int, error) {
	raw = strings.TrimSpace(raw)
	parts := strings.Split(raw, ":")
	if len(parts) > 2 || parts[0] == "" {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH or HH:MM", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", raw)
	}
	minute := 0
	if len(parts) == 2 {
		minute, err = strconv.Atoi(parts[1])
		if err != nil || minute < 0 || minute > 59 {
			return 0, 0, fmt.Errorf("invalid minute in %q", raw)
		}
	}
	return hour, minute, nil
}
