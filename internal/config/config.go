// ABOUTME: Centralized configuration for the applebridge MCP server
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all configuration for the bridge
type Config struct {
	// Web fetch settings
	FetchTimeout  time.Duration
	FetchRetries  int
	FetchBaseWait time.Duration
	UserAgent     string

	// Research pipeline settings
	SearchURL        string
	MaxSearchResults int
	MaxContentPages  int

	// Messages store settings
	MessagesDBPath   string
	StoreRetries     int
	StoreRetryDelay  time.Duration
	DefaultReadLimit int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		FetchTimeout:     getEnvDuration("FETCH_TIMEOUT", 10*time.Second),
		FetchRetries:     getEnvInt("FETCH_MAX_RETRIES", 2),
		FetchBaseWait:    getEnvDuration("FETCH_RETRY_DELAY", time.Second),
		UserAgent:        getEnv("SEARCH_USER_AGENT", defaultUserAgent),
		SearchURL:        getEnv("SEARCH_URL", "https://html.duckduckgo.com/html/"),
		MaxSearchResults: getEnvInt("SEARCH_MAX_RESULTS", 10),
		MaxContentPages:  getEnvInt("RESEARCH_MAX_PAGES", 5),
		MessagesDBPath:   getEnv("MESSAGES_DB_PATH", DefaultMessagesDBPath()),
		StoreRetries:     getEnvInt("MESSAGES_DB_RETRIES", 3),
		StoreRetryDelay:  getEnvDuration("MESSAGES_DB_RETRY_DELAY", time.Second),
		DefaultReadLimit: getEnvInt("MESSAGES_READ_LIMIT", 10),
	}

	return cfg, cfg.Validate()
}

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultMessagesDBPath returns the standard location of the Messages
// database for the current user.
func DefaultMessagesDBPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("Library", "Messages", "chat.db")
	}
	return filepath.Join(homeDir, "Library", "Messages", "chat.db")
}

func (c *Config) Validate() error {
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive, got %v", c.FetchTimeout)
	}
	if c.FetchRetries < 0 || c.FetchRetries > 10 {
		return fmt.Errorf("FETCH_MAX_RETRIES must be 0-10, got %d", c.FetchRetries)
	}
	if c.MaxSearchResults < 1 || c.MaxSearchResults > 30 {
		return fmt.Errorf("SEARCH_MAX_RESULTS must be 1-30, got %d", c.MaxSearchResults)
	}
	if c.MaxContentPages < 1 || c.MaxContentPages > c.MaxSearchResults {
		return fmt.Errorf("RESEARCH_MAX_PAGES must be 1-%d, got %d", c.MaxSearchResults, c.MaxContentPages)
	}
	if c.StoreRetries < 1 || c.StoreRetries > 10 {
		return fmt.Errorf("MESSAGES_DB_RETRIES must be 1-10, got %d", c.StoreRetries)
	}
	if c.DefaultReadLimit < 1 {
		return fmt.Errorf("MESSAGES_READ_LIMIT must be positive, got %d", c.DefaultReadLimit)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}
