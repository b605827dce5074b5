package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	yaml "go.yaml.in/yaml/v3"
)

// Config keeps runtime settings for the bot, loaded from a YAML file.
type Config struct {
	Timezone     string                       `yaml:"timezone"`
	Database     string                       `yaml:"database"`
	LogLevel     string                       `yaml:"log_level"`
	Telegram     TelegramConfig               `yaml:"telegram"`
	Reminders    RemindersConfig              `yaml:"reminders"`
	WeeklyReport WeeklyReportConfig           `yaml:"weekly_report"`
	Rotation     map[string]map[string]string `yaml:"rotation"`
	Slots        map[string][]Slot            `yaml:"slots"`

	Location *time.Location `yaml:"-"`
	Catalog  Catalog        `yaml:"-"`
}

// TelegramConfig holds the bot token and the fixed recipient list.
type TelegramConfig struct {
	BotToken string      `yaml:"bot_token"`
	Users    []Recipient `yaml:"users"`
}

// Recipient is one configured chat the bot reminds and reports to.
type Recipient struct {
	ChatID string `yaml:"chat_id"`
	Name   string `yaml:"name"`
}

// RemindersConfig controls reminder timing. Times is the list of recognized
// times-of-day; rotation entries outside this list never fire.
type RemindersConfig struct {
	TimeoutMinutes int      `yaml:"timeout_minutes"`
	SnoozeMinutes  int      `yaml:"snooze_minutes"`
	Times          []string `yaml:"times"`
}

// WeeklyReportConfig schedules the weekly report delivery.
type WeeklyReportConfig struct {
	DayOfWeek string `yaml:"day_of_week"` // mon..sun
	Time      string `yaml:"time"`        // HH:MM
}

// Load reads the YAML config from CONFIG_PATH (default config.yaml),
// applies defaults and validates it.
func Load() (Config, error) {
	path := strings.TrimSpace(os.Getenv("CONFIG_PATH"))
	if path == "" {
		path = "config.yaml"
	}
	return LoadFile(path)
}

// LoadFile parses and validates the config at the given path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes raw YAML into a validated Config.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}
	if cfg.Database == "" {
		cfg.Database = "workout_reminder.db"
	}
	if cfg.Reminders.TimeoutMinutes == 0 {
		cfg.Reminders.TimeoutMinutes = 60
	}
	if cfg.Reminders.SnoozeMinutes == 0 {
		cfg.Reminders.SnoozeMinutes = 10
	}

	if cfg.Telegram.BotToken == "" {
		return cfg, fmt.Errorf("telegram.bot_token is required")
	}
	if len(cfg.Telegram.Users) == 0 {
		return cfg, fmt.Errorf("telegram.users must list at least one recipient")
	}
	if cfg.Reminders.TimeoutMinutes < 0 || cfg.Reminders.SnoozeMinutes < 0 {
		return cfg, fmt.Errorf("reminder windows must be positive")
	}
	for _, t := range cfg.Reminders.Times {
		if !validClockTime(t) {
			return cfg, fmt.Errorf("reminders.times: invalid time %q, expected HH:MM", t)
		}
	}
	if cfg.WeeklyReport.Time != "" && !validClockTime(cfg.WeeklyReport.Time) {
		return cfg, fmt.Errorf("weekly_report.time: invalid time %q, expected HH:MM", cfg.WeeklyReport.Time)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return cfg, fmt.Errorf("timezone %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc
	cfg.Catalog = BuildCatalog(cfg.Slots)

	return cfg, nil
}

// TimeoutWindow returns the reminder timeout as a duration.
func (c Config) TimeoutWindow() time.Duration {
	return time.Duration(c.Reminders.TimeoutMinutes) * time.Minute
}

// SnoozeWindow returns the snooze delay as a duration.
func (c Config) SnoozeWindow() time.Duration {
	return time.Duration(c.Reminders.SnoozeMinutes) * time.Minute
}

func validClockTime(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}
