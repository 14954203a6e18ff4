package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Records   RecordsConfig
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
	Reporting ReportingConfig
	Reminders ReminderConfig
	MongoDB   MongoDBConfig
	Flow      FlowConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port     string
	LogLevel string
}

// RecordsConfig points at the JSON record backend.
type RecordsConfig struct {
	BaseURL string
	Timeout time.Duration
}

// WhatsAppConfig contains credentials for the Meta WhatsApp Cloud API. The
// channel is disabled when AccessToken is empty.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	VerifyToken   string
	BaseURL       string
	APIVersion    string
	GroupID       string
}

// Enabled reports whether the chat channel is configured.
func (c WhatsAppConfig) Enabled() bool { return c.AccessToken != "" }

// SheetsConfig contains configuration for the Google Sheets export.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	WorkloadRange   string
}

// Enabled reports whether exporting is configured.
func (c SheetsConfig) Enabled() bool { return c.CredentialsPath != "" && c.SpreadsheetID != "" }

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	ReminderCron string
	SnapshotCron string
	Timezone     string
}

// ReminderConfig tunes the due-soon window.
type ReminderConfig struct {
	WindowDays  int
	FlagOverdue bool
}

// MongoDBConfig holds settings for the snapshot archive. Empty URI disables it.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// FlowConfig holds the chat flow timings.
type FlowConfig struct {
	DismissAfter time.Duration
	PromptExpiry time.Duration
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// A missing .env is fine when the environment is set directly.
		_ = godotenv.Load()
	}

	timeout, err := getDuration("RECORDS_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	windowDays, err := getInt("REMINDER_WINDOW_DAYS", 15)
	if err != nil {
		return nil, err
	}
	flagOverdue, err := getBool("REMINDER_FLAG_OVERDUE", false)
	if err != nil {
		return nil, err
	}
	dismissAfter, err := getDuration("FLOW_DISMISS_AFTER", 3*time.Second)
	if err != nil {
		return nil, err
	}
	promptExpiry, err := getDuration("FLOW_PROMPT_EXPIRY", 2*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getenvWithDefault("APP_PORT", "8080"),
			LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Records: RecordsConfig{
			BaseURL: getenvWithDefault("RECORDS_BASE_URL", "http://localhost:3000"),
			Timeout: timeout,
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			VerifyToken:   os.Getenv("META_VERIFY_TOKEN"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			GroupID:       os.Getenv("WHATSAPP_GROUP_ID"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_EXPORT_ID"),
			WorkloadRange:   getenvWithDefault("GOOGLE_SHEET_WORKLOAD_RANGE", "CargaHoraria!A:F"),
		},
		Reporting: ReportingConfig{
			ReminderCron: getenvWithDefault("REMINDER_CRON", "0 7 * * *"),
			SnapshotCron: getenvWithDefault("SNAPSHOT_CRON", "0 1 1 * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "America/Sao_Paulo"),
		},
		Reminders: ReminderConfig{
			WindowDays:  windowDays,
			FlagOverdue: flagOverdue,
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "equinos"),
		},
		Flow: FlowConfig{
			DismissAfter: dismissAfter,
			PromptExpiry: promptExpiry,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Records.BaseURL == "" {
		return errors.New("RECORDS_BASE_URL must be provided")
	}
	if !strings.HasPrefix(c.Records.BaseURL, "http://") && !strings.HasPrefix(c.Records.BaseURL, "https://") {
		return fmt.Errorf("RECORDS_BASE_URL must be an http(s) URL, got %q", c.Records.BaseURL)
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		case c.WhatsApp.VerifyToken == "":
			return errors.New("META_VERIFY_TOKEN must be provided")
		case c.WhatsApp.GroupID == "":
			return errors.New("WHATSAPP_GROUP_ID must be provided")
		}
	}

	if c.Sheets.Enabled() && c.Sheets.WorkloadRange == "" {
		return errors.New("GOOGLE_SHEET_WORKLOAD_RANGE must not be empty")
	}

	if c.Reporting.ReminderCron == "" || c.Reporting.SnapshotCron == "" {
		return errors.New("REMINDER_CRON and SNAPSHOT_CRON must be provided")
	}

	if _, err := time.LoadLocation(c.Reporting.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.Reporting.Timezone, err)
	}

	if c.Reminders.WindowDays <= 0 {
		return errors.New("REMINDER_WINDOW_DAYS must be positive")
	}

	return nil
}

// Location returns the configured reporting timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Reporting.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return value, nil
}

func getBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return value, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return value, nil
}
