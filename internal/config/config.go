// ABOUTME: Centralized configuration for the assistant
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
)

// Config holds all configuration for the assistant system
type Config struct {
	// Storage settings
	DataDir string
	DBPath  string

	// OpenAI settings
	OpenAIKey  string
	ChatModel  string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration

	// Agent settings
	HistoryWindow int
	MaxToolCalls  int

	// Google OAuth settings
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string

	// Schedule settings
	Timezone    string
	BriefHour   int
	BriefMinute int
	BriefUser   string

	// Email settings
	SMTPHost     string
	SMTPPort     int
	SMTPAddress  string
	SMTPPassword string

	// Telegram bot settings
	TelegramToken string

	// Charm sync settings
	CharmHost   string
	CharmDBName string
	CharmSync   bool

	// Web channel settings
	ListenAddr string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	dataDir := os.Getenv("AIDE_DATA_DIR")
	if dataDir == "" {
		dataDir = defaultDataDir()
	}

	cfg := &Config{
		DataDir:            dataDir,
		DBPath:             getEnv("AIDE_DB_PATH", filepath.Join(dataDir, "aide.db")),
		OpenAIKey:          os.Getenv("OPENAI_API_KEY"),
		ChatModel:          getEnv("AIDE_OPENAI_MODEL", "gpt-4o-mini"),
		Timeout:            getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:         getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:         getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		HistoryWindow:      getEnvInt("AIDE_HISTORY_WINDOW", 20),
		MaxToolCalls:       getEnvInt("AIDE_MAX_TOOL_CALLS", 5),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", "http://localhost:8080/auth/callback"),
		Timezone:           getEnv("AIDE_TIMEZONE", "America/Toronto"),
		BriefHour:          getEnvInt("BRIEF_HOUR", 8),
		BriefMinute:        getEnvInt("BRIEF_MINUTE", 0),
		BriefUser:          os.Getenv("BRIEF_USER"),
		SMTPHost:           getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:           getEnvInt("SMTP_PORT", 465),
		SMTPAddress:        os.Getenv("SMTP_ADDRESS"),
		SMTPPassword:       os.Getenv("SMTP_APP_PASSWORD"),
		TelegramToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
		CharmHost:          getEnv("CHARM_HOST", "cloud.charm.sh"),
		CharmDBName:        getEnv("CHARM_DB", "aide"),
		CharmSync:          getEnvBool("CHARM_SYNC", false),
		ListenAddr:         getEnv("AIDE_LISTEN_ADDR", ":8080"),
	}

	return cfg, cfg.Validate()
}

// Validate checks ranges that would otherwise fail at an awkward time
func (c *Config) Validate() error {
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.HistoryWindow < 1 {
		return fmt.Errorf("AIDE_HISTORY_WINDOW must be at least 1, got %d", c.HistoryWindow)
	}
	if c.MaxToolCalls < 1 {
		return fmt.Errorf("AIDE_MAX_TOOL_CALLS must be at least 1, got %d", c.MaxToolCalls)
	}
	if c.BriefHour < 0 || c.BriefHour > 23 {
		return fmt.Errorf("BRIEF_HOUR must be 0-23, got %d", c.BriefHour)
	}
	if c.BriefMinute < 0 || c.BriefMinute > 59 {
		return fmt.Errorf("BRIEF_MINUTE must be 0-59, got %d", c.BriefMinute)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("AIDE_TIMEZONE %q is not a valid location: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the configured timezone. Validate guarantees it parses.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// defaultDataDir resolves the XDG data directory, honoring the
// XDG_DATA_HOME override used by tests.
func defaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = xdg.DataHome
	}
	return filepath.Join(dataHome, "aide")
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
