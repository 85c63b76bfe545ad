// Package config loads lifeos configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreBolt   = "bolt"
	StoreMemory = "memory"
)

// Network timeout bounds for AI and sync calls.
const (
	MinNetworkTimeout     = 15 * time.Second
	MaxNetworkTimeout     = 30 * time.Second
	DefaultNetworkTimeout = 20 * time.Second
)

// Config represents the application configuration.
type Config struct {
	Store     StoreConfig
	Log       LogConfig
	HTTPPort  string
	Timezone  string
	Network   NetworkConfig
	Tasks     TaskConfig
	Gemini    GeminiConfig
	GCS       GCSConfig
	BigQuery  BigQueryConfig
	Notion    NotionConfig
	UserID    string
	Sections  string
	CredsFile string
}

// StoreConfig selects the local key-value backend.
type StoreConfig struct {
	Kind   string
	DBPath string
}

type LogConfig struct {
	Level  string
	Format string
}

type NetworkConfig struct {
	Timeout time.Duration
}

// TaskConfig sizes the in-memory task queue used for chat and push.
type TaskConfig struct {
	Workers    int
	MaxRetries int
	Buffer     int
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type GCSConfig struct {
	Bucket string
	Prefix string
}

type BigQueryConfig struct {
	Project string
	Dataset string
}

type NotionConfig struct {
	Token     string
	NotesDBID string
}

// Load loads configuration from environment variables.
// It loads .env from the current directory when present; an explicit path must exist.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	timeout, err := parseDurationEnv("LIFEOS_NETWORK_TIMEOUT", DefaultNetworkTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid LIFEOS_NETWORK_TIMEOUT: %w", err)
	}
	workers, err := parseIntEnv("LIFEOS_TASK_WORKERS", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid LIFEOS_TASK_WORKERS: %w", err)
	}
	retries, err := parseIntEnv("LIFEOS_TASK_MAX_RETRIES", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid LIFEOS_TASK_MAX_RETRIES: %w", err)
	}

	cfg := &Config{
		Store: StoreConfig{
			Kind:   strings.ToLower(getEnvOrDefault("LIFEOS_STORE", StoreBolt)),
			DBPath: getEnvOrDefault("LIFEOS_DB_PATH", "./data/lifeos.db"),
		},
		Log: LogConfig{
			Level:  getEnvOrDefault("LIFEOS_LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LIFEOS_LOG_FORMAT", "console"),
		},
		HTTPPort: getEnvOrDefault("LIFEOS_HTTP_PORT", "8080"),
		Timezone: os.Getenv("LIFEOS_TIMEZONE"),
		Network: NetworkConfig{
			Timeout: ClampTimeout(timeout),
		},
		Tasks: TaskConfig{
			Workers:    workers,
			MaxRetries: retries,
			Buffer:     100,
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  getEnvOrDefault("LIFEOS_GEMINI_MODEL", "gemini-2.5-flash"),
		},
		GCS: GCSConfig{
			Bucket: os.Getenv("LIFEOS_GCS_BUCKET"),
			Prefix: getEnvOrDefault("LIFEOS_GCS_PREFIX", "lifeos/"),
		},
		BigQuery: BigQueryConfig{
			Project: os.Getenv("LIFEOS_BQ_PROJECT"),
			Dataset: getEnvOrDefault("LIFEOS_BQ_DATASET", "lifeos"),
		},
		Notion: NotionConfig{
			Token:     os.Getenv("NOTION_TOKEN"),
			NotesDBID: os.Getenv("NOTION_NOTES_DB_ID"),
		},
		UserID:    getEnvOrDefault("LIFEOS_USER_ID", "me"),
		Sections:  os.Getenv("LIFEOS_SECTIONS_FILE"),
		CredsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_FILE"),
	}

	return cfg, nil
}

// Validate checks settings that would otherwise fail later at startup.
func (c *Config) Validate() error {
	switch c.Store.Kind {
	case StoreBolt:
		if c.Store.DBPath == "" {
			return fmt.Errorf("LIFEOS_DB_PATH is required for the bolt store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown LIFEOS_STORE %q (want %s or %s)", c.Store.Kind, StoreBolt, StoreMemory)
	}
	if c.Tasks.Workers < 1 {
		return fmt.Errorf("LIFEOS_TASK_WORKERS must be at least 1")
	}
	if c.Tasks.MaxRetries < 0 {
		return fmt.Errorf("LIFEOS_TASK_MAX_RETRIES must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the timezone used to decide what "today" is.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid LIFEOS_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ClampTimeout keeps network timeouts inside [MinNetworkTimeout, MaxNetworkTimeout].
func ClampTimeout(d time.Duration) time.Duration {
	if d < MinNetworkTimeout {
		return MinNetworkTimeout
	}
	if d > MaxNetworkTimeout {
		return MaxNetworkTimeout
	}
	return d
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	return time.ParseDuration(value)
}
