package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

// ConfigFileEnv names the optional TOML file read before the environment.
const ConfigFileEnv = "FINTRACK_CONFIG"

type Config struct {
	// HTTP Server
	Port            string        `toml:"port"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	RateLimitRPM    int           `toml:"rate_limit_rpm"`
	LogLevel        string        `toml:"log_level"`

	// Auth
	JWTSecret string        `toml:"jwt_secret"`
	TokenTTL  time.Duration `toml:"token_ttl"`

	// Backend selection
	DataBackend  string `toml:"data_backend"`
	SQLiteDBPath string `toml:"sqlite_db_path"`
	DataDir      string `toml:"data_dir"`

	// AMQP
	AMQPURL      string `toml:"amqp_url"`
	AMQPExchange string `toml:"amqp_exchange"`
	AMQPQueue    string `toml:"amqp_queue"`

	// Google Sheets report target
	GoogleSpreadsheetID      string `toml:"google_spreadsheet_id"`
	GoogleSheetName          string `toml:"google_sheet_name"`
	GoogleServiceAccountJSON string `toml:"google_service_account_json"`
	GoogleServiceAccountFile string `toml:"google_service_account_file"`

	// Projection cache
	CacheSize int           `toml:"cache_size"`
	CacheTTL  time.Duration `toml:"cache_ttl"`

	// Rollover and alerts
	RolloverSchedule    string          `toml:"rollover_schedule"`
	LowBalanceThreshold decimal.Decimal `toml:"low_balance_threshold"`
	AlertHorizonDays    int             `toml:"alert_horizon_days"`
	SMTPHost            string          `toml:"smtp_host"`
	SMTPPort            int             `toml:"smtp_port"`
	SMTPUsername        string          `toml:"smtp_username"`
	SMTPPassword        string          `toml:"smtp_password"`
	AlertSender         string          `toml:"alert_sender"`
	AlertRecipient      string          `toml:"alert_recipient"`
}

var validBackends = []string{"memory", "sqlite"}

func defaults() *Config {
	return &Config{
		Port:            "8081",
		ShutdownTimeout: 10 * time.Second,
		RateLimitRPM:    120,
		LogLevel:        "info",

		TokenTTL: 24 * time.Hour,

		DataBackend:  "memory",
		SQLiteDBPath: "./data/fintrack.db",
		DataDir:      "data",

		AMQPExchange: "fintrack",
		AMQPQueue:    "report_requests",

		GoogleSheetName: "Projection",

		CacheSize: 256,
		CacheTTL:  5 * time.Minute,

		RolloverSchedule:    "5 0 * * *",
		LowBalanceThreshold: decimal.Zero,
		AlertHorizonDays:    30,
		SMTPPort:            587,
	}
}

// Load builds the configuration from defaults, then the TOML file named by
// FINTRACK_CONFIG if any, then environment variables.
func Load() (*Config, error) {
	cfg := defaults()
	if path := os.Getenv(ConfigFileEnv); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
	c.RateLimitRPM = getEnvInt("RATE_LIMIT_RPM", c.RateLimitRPM)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.TokenTTL = getEnvDuration("TOKEN_TTL", c.TokenTTL)

	c.DataBackend = getEnv("DATA_BACKEND", c.DataBackend)
	c.SQLiteDBPath = getEnv("SQLITE_DB_PATH", c.SQLiteDBPath)
	c.DataDir = getEnv("DATA_DIR", c.DataDir)

	c.AMQPURL = getEnv("AMQP_URL", c.AMQPURL)
	c.AMQPExchange = getEnv("AMQP_EXCHANGE", c.AMQPExchange)
	c.AMQPQueue = getEnv("AMQP_QUEUE", c.AMQPQueue)

	c.GoogleSpreadsheetID = getEnv("GOOGLE_SPREADSHEET_ID", c.GoogleSpreadsheetID)
	c.GoogleSheetName = getEnv("GOOGLE_SHEET_NAME", c.GoogleSheetName)
	c.GoogleServiceAccountJSON = getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", c.GoogleServiceAccountJSON)
	c.GoogleServiceAccountFile = getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", c.GoogleServiceAccountFile)

	c.CacheSize = getEnvInt("CACHE_SIZE", c.CacheSize)
	c.CacheTTL = getEnvDuration("CACHE_TTL", c.CacheTTL)

	c.RolloverSchedule = getEnv("ROLLOVER_SCHEDULE", c.RolloverSchedule)
	c.LowBalanceThreshold = getEnvDecimal("LOW_BALANCE_THRESHOLD", c.LowBalanceThreshold)
	c.AlertHorizonDays = getEnvInt("ALERT_HORIZON_DAYS", c.AlertHorizonDays)
	c.SMTPHost = getEnv("SMTP_HOST", c.SMTPHost)
	c.SMTPPort = getEnvInt("SMTP_PORT", c.SMTPPort)
	c.SMTPUsername = getEnv("SMTP_USERNAME", c.SMTPUsername)
	c.SMTPPassword = getEnv("SMTP_PASSWORD", c.SMTPPassword)
	c.AlertSender = getEnv("ALERT_SENDER", c.AlertSender)
	c.AlertRecipient = getEnv("ALERT_RECIPIENT", c.AlertRecipient)
}

// SheetsEnabled reports whether a report spreadsheet is configured.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// AlertsEnabled reports whether low-balance emails should be sent.
func (c *Config) AlertsEnabled() bool {
	return c.AlertRecipient != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SheetsEnabled() {
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when a spreadsheet ID is set")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided with a spreadsheet ID")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.JWTSecret != "" && len(c.JWTSecret) < 16 {
		errors = append(errors, "JWT secret must be at least 16 characters")
	}
	if c.TokenTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid token TTL %v: must be at least 1 minute", c.TokenTTL))
	}

	if c.CacheSize < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must not be negative", c.CacheSize))
	}
	if c.RateLimitRPM < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitRPM))
	}

	if _, err := cron.ParseStandard(c.RolloverSchedule); err != nil {
		errors = append(errors, fmt.Sprintf("invalid rollover schedule '%s': %v", c.RolloverSchedule, err))
	}
	if c.AlertHorizonDays < 1 || c.AlertHorizonDays > 365 {
		errors = append(errors, fmt.Sprintf("invalid alert horizon %d: must be between 1 and 365 days", c.AlertHorizonDays))
	}
	if c.AlertsEnabled() {
		if c.SMTPHost == "" {
			errors = append(errors, "SMTP host is required when ALERT_RECIPIENT is set")
		}
		if c.AlertSender == "" {
			errors = append(errors, "alert sender is required when ALERT_RECIPIENT is set")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}
