// Package config loads settings from defaults, an optional YAML file, a .env
// file and BUDGET_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "BUDGET_"

var (
	StorageBackends = []string{"memory", "sqlite", "tables"}
	EventsBackends  = []string{"none", "azqueue", "amqp"}
	LogFormats      = []string{"text", "json"}
)

type Config struct {
	// Identity
	UserID string `koanf:"user_id"`

	// Storage
	StorageBackend  string `koanf:"storage_backend"`
	SQLitePath      string `koanf:"sqlite_path"`
	TableServiceURL string `koanf:"table_service_url"`
	ExpensesTable   string `koanf:"expenses_table"`
	IncomeTable     string `koanf:"income_table"`

	// Blob storage for reports and imports
	BlobServiceURL   string `koanf:"blob_service_url"`
	ReportsContainer string `koanf:"reports_container"`
	UploadsContainer string `koanf:"uploads_container"`

	// Change events
	EventsBackend   string `koanf:"events_backend"`
	QueueServiceURL string `koanf:"queue_service_url"`
	EventsQueue     string `koanf:"events_queue"`
	AMQPURL         string `koanf:"amqp_url"`
	AMQPExchange    string `koanf:"amqp_exchange"`
	AMQPQueue       string `koanf:"amqp_queue"`

	// Cache
	CacheDuration time.Duration `koanf:"cache_duration"`

	// Logging
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
}

func defaults() map[string]any {
	return map[string]any{
		"storage_backend":   "sqlite",
		"sqlite_path":       "./data/budget.db",
		"expenses_table":    "expenses",
		"income_table":      "income",
		"reports_container": "reports",
		"uploads_container": "uploads",
		"events_backend":    "none",
		"events_queue":      "transaction-events",
		"amqp_exchange":     "jamiibudget.events",
		"amqp_queue":        "transaction_events",
		"cache_duration":    "5m",
		"log_level":         "info",
		"log_format":        "text",
	}
}

// Load reads the configuration. path names an optional YAML file; an empty
// path skips it.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// envKey maps BUDGET_SQLITE_PATH to sqlite_path.
func envKey(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, envPrefix))
}

// Validate validates the configuration and returns every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if !slices.Contains(StorageBackends, c.StorageBackend) {
		problems = append(problems, fmt.Sprintf("invalid storage backend '%s': must be one of %v", c.StorageBackend, StorageBackends))
	}
	switch c.StorageBackend {
	case "sqlite":
		if c.SQLitePath == "" {
			problems = append(problems, "sqlite_path cannot be empty when using sqlite backend")
		}
	case "tables":
		if c.TableServiceURL == "" {
			problems = append(problems, "table_service_url is required when using tables backend")
		}
		if c.ExpensesTable == "" || c.IncomeTable == "" {
			problems = append(problems, "expenses_table and income_table are required when using tables backend")
		}
		if c.ExpensesTable != "" && c.ExpensesTable == c.IncomeTable {
			problems = append(problems, "expenses_table and income_table must differ")
		}
	}

	if !slices.Contains(EventsBackends, c.EventsBackend) {
		problems = append(problems, fmt.Sprintf("invalid events backend '%s': must be one of %v", c.EventsBackend, EventsBackends))
	}
	switch c.EventsBackend {
	case "azqueue":
		if c.QueueServiceURL == "" {
			problems = append(problems, "queue_service_url is required when using azqueue events")
		}
		if c.EventsQueue == "" {
			problems = append(problems, "events_queue cannot be empty when using azqueue events")
		}
	case "amqp":
		if parsed, err := url.Parse(c.AMQPURL); err != nil || c.AMQPURL == "" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s'", c.AMQPURL))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" || c.AMQPQueue == "" {
			problems = append(problems, "amqp_exchange and amqp_queue cannot be empty when using amqp events")
		}
	}

	if c.CacheDuration <= 0 {
		problems = append(problems, fmt.Sprintf("invalid cache duration %s: must be positive", c.CacheDuration))
	}
	if !slices.Contains(LogFormats, c.LogFormat) {
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, LogFormats))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
