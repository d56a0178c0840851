// This file contains the lightweight configuration for the MCP binary, which
// reads only environment variables and never needs a database server.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/presentation-quality-server/internal/domain"
)

// LiteConfig is a simplified configuration for standalone operation.
type LiteConfig struct {
	// Data storage
	DataDir string // Base directory for data files
	History bool   // Persist analyses to a local SQLite file

	// Cache settings
	CacheMaxItems int           // Maximum items in memory cache
	CacheTTL      time.Duration // Default cache TTL

	// Logging
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: json, text
}

// DefaultLiteConfig returns a configuration with sensible defaults.
func DefaultLiteConfig() *LiteConfig {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".presentation-quality")

	return &LiteConfig{
		DataDir:       dataDir,
		CacheMaxItems: 256,
		CacheTTL:      10 * time.Minute,
		LogLevel:      "info",
		LogFormat:     "json",
	}
}

// LoadLiteConfig loads configuration from environment variables.
// Falls back to defaults if not set.
func LoadLiteConfig() *LiteConfig {
	cfg := DefaultLiteConfig()

	if v := os.Getenv("PQS_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("PQS_HISTORY"); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.History = b
		}
	}

	if v := os.Getenv("PQS_CACHE_MAX_ITEMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheMaxItems = n
		}
	}
	if v := os.Getenv("PQS_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CacheTTL = d
		}
	}

	if v := os.Getenv("PQS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PQS_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

// HistoryDBPath returns the path to the history SQLite database.
func (c *LiteConfig) HistoryDBPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// ExportDir returns the directory for JSON exports.
func (c *LiteConfig) ExportDir() string {
	return filepath.Join(c.DataDir, "exports")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *LiteConfig) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return err
	}
	return os.MkdirAll(c.ExportDir(), 0755)
}

// HistoryConfig maps the lite settings onto the shared history config.
func (c *LiteConfig) HistoryConfig() domain.HistoryConfig {
	if !c.History {
		return domain.HistoryConfig{Backend: "none"}
	}
	return domain.HistoryConfig{Backend: "sqlite", SQLitePath: c.HistoryDBPath()}
}

// CacheConfig returns an in-process cache configuration.
func (c *LiteConfig) CacheConfig() domain.CacheConfig {
	return domain.CacheConfig{Enabled: true, MaxItems: c.CacheMaxItems, TTL: c.CacheTTL}
}

// LoggingConfig returns logging settings. MCP over stdio must log to stderr.
func (c *LiteConfig) LoggingConfig() domain.LoggingConfig {
	return domain.LoggingConfig{Level: c.LogLevel, Format: c.LogFormat, Output: "stderr"}
}
