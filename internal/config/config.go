package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	MongoDB   MongoDBConfig
	Analytics AnalyticsConfig
	Alerts    AlertsConfig
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port     string
	LogLevel string
}

// StoreConfig selects the record store implementation.
type StoreConfig struct {
	Driver string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// AnalyticsConfig bounds the dashboard analytics window.
type AnalyticsConfig struct {
	DefaultDays int
	MaxDays     int
}

// AlertsConfig holds the scheduled alert sweep settings. An empty schedule
// disables the sweep; alerts are still evaluated on each dashboard request.
type AlertsConfig struct {
	SweepSchedule string
	Timezone      string
}

// WhatsAppConfig contains credentials for the Meta WhatsApp Cloud API used
// to announce new alerts.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	NotifyTo      string
}

// Enabled reports whether alert notifications can be sent.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != "" && c.NotifyTo != ""
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	ExportSchedule  string
}

// Enabled reports whether the analytics snapshot export is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
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
		// Missing .env files are fine when configuration comes from the
		// environment directly.
		_ = godotenv.Load()
	}

	defaultDays, err := getenvInt("ANALYTICS_DEFAULT_DAYS", 30)
	if err != nil {
		return nil, err
	}
	maxDays, err := getenvInt("ANALYTICS_MAX_DAYS", 365)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getenvWithDefault("APP_PORT", "8080"),
			LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getenvWithDefault("STORE_DRIVER", StoreMongo)),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "fleet_management"),
		},
		Analytics: AnalyticsConfig{
			DefaultDays: defaultDays,
			MaxDays:     maxDays,
		},
		Alerts: AlertsConfig{
			SweepSchedule: os.Getenv("ALERT_SWEEP_SCHEDULE"),
			Timezone:      getenvWithDefault("TIMEZONE", "UTC"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			NotifyTo:      os.Getenv("ALERT_NOTIFY_TO"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
			ExportSchedule:  getenvWithDefault("SHEETS_EXPORT_SCHEDULE", "0 1 * * *"),
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

	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", c.Server.LogLevel)
	}

	switch c.Store.Driver {
	case StoreMongo:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must be provided")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STORE_DRIVER %q is not one of %s, %s", c.Store.Driver, StoreMongo, StoreMemory)
	}

	if c.Analytics.DefaultDays <= 0 {
		return errors.New("ANALYTICS_DEFAULT_DAYS must be positive")
	}
	if c.Analytics.MaxDays < c.Analytics.DefaultDays {
		return errors.New("ANALYTICS_MAX_DAYS must not be below ANALYTICS_DEFAULT_DAYS")
	}

	if c.Alerts.SweepSchedule != "" {
		if _, err := cron.ParseStandard(c.Alerts.SweepSchedule); err != nil {
			return fmt.Errorf("ALERT_SWEEP_SCHEDULE is invalid: %w", err)
		}
	}

	if c.Alerts.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	w := c.WhatsApp
	if !w.Enabled() && (w.AccessToken != "" || w.PhoneNumberID != "" || w.NotifyTo != "") {
		switch {
		case w.AccessToken == "":
			return errors.New("WHATSAPP_TOKEN must be provided")
		case w.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		default:
			return errors.New("ALERT_NOTIFY_TO must be provided")
		}
	}
	if w.Enabled() {
		if w.BaseURL == "" {
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		}
		if w.APIVersion == "" {
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if c.Sheets.Enabled() {
		if _, err := cron.ParseStandard(c.Sheets.ExportSchedule); err != nil {
			return fmt.Errorf("SHEETS_EXPORT_SCHEDULE is invalid: %w", err)
		}
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}
