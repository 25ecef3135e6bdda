package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabasePath string
	ExportDir    string
	Currency     string
	LogLevel     string
	WatchSpec    string
	YahooBaseURL string
}

// LoadConfig reads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath: getEnv("DATABASE_PATH", "./data/trackfolio.db"),
		ExportDir:    getEnv("EXPORT_DIR", "./reports"),
		Currency:     getEnv("CURRENCY", "USD"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		// every weekday at 18:30, after European close
		WatchSpec:    getEnv("WATCH_SPEC", "30 18 * * 1-5"),
		YahooBaseURL: getEnv("YAHOO_BASE_URL", ""),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.Currency == "" {
		return fmt.Errorf("CURRENCY is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
