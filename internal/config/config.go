package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr            string
	DBPath          string
	DataDir         string
	LogLevel        string
	Provider        string
	SyncWorkerCount int
	SyncQueueSize   int
	WindowDays      int
	HTTPTimeoutSecs int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:            envOr("ADDR", "127.0.0.1:8170"),
		DBPath:          envOr("DB_PATH", "file:enerscope.db"),
		DataDir:         envOr("DATA_DIR", "."),
		LogLevel:        envOr("LOG_LEVEL", "INFO"),
		Provider:        envOr("PROVIDER", "glowmarkt"),
		SyncWorkerCount: envIntOr("SYNC_WORKER_COUNT", 1),
		SyncQueueSize:   envIntOr("SYNC_QUEUE_SIZE", 8),
		WindowDays:      envIntOr("WINDOW_DAYS", 7),
		HTTPTimeoutSecs: envIntOr("HTTP_TIMEOUT_SECS", 30),
	}
}

// Validate checks the configuration for invalid values and returns an error
// describing every problem found.
func (c *Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	if c.DataDir == "" {
		problems = append(problems, "DATA_DIR cannot be empty")
	}

	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel))
	}

	switch c.Provider {
	case "glowmarkt", "n3rgy":
	default:
		problems = append(problems, fmt.Sprintf("PROVIDER must be glowmarkt or n3rgy (got %q)", c.Provider))
	}

	if c.SyncWorkerCount < 1 {
		problems = append(problems, "SYNC_WORKER_COUNT must be at least 1")
	}
	if c.SyncQueueSize < 1 {
		problems = append(problems, "SYNC_QUEUE_SIZE must be at least 1")
	}
	if c.WindowDays < 1 {
		problems = append(problems, "WINDOW_DAYS must be at least 1")
	}
	if c.HTTPTimeoutSecs < 1 {
		problems = append(problems, "HTTP_TIMEOUT_SECS must be at least 1")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
