// Package config loads server configuration from YAML, environment variables
// and defaults.
package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/presentation-quality-server/internal/domain"
)

// Manager implements the ConfigManager interface using Viper. The loaded
// configuration is swapped atomically by Reload.
type Manager struct {
	file string

	mu     sync.RWMutex
	config *domain.Config
}

// NewManager creates a new configuration manager that searches the standard
// locations for config.yaml.
func NewManager() (*Manager, error) {
	return NewManagerFromFile("")
}

// NewManagerFromFile loads an explicit config file. An empty path falls back
// to the standard search locations.
func NewManagerFromFile(path string) (*Manager, error) {
	m := &Manager{file: path}
	config, err := m.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	m.config = config
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() (*domain.Config, error) {
	v := viper.New()

	if m.file != "" {
		v.SetConfigFile(m.file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/presentation-quality-server/")
	}

	// Set environment variable prefix and enable automatic env binding
	v.SetEnvPrefix("PQS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read configuration file (optional - will use defaults and env vars if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.max_body_bytes", 5<<20)
	v.SetDefault("server.mcp_path", "/mcp")

	// Analysis defaults
	v.SetDefault("analysis.max_batch_size", 20)
	v.SetDefault("analysis.batch_concurrency", 4)
	v.SetDefault("analysis.max_slides", 500)

	// Scoring defaults
	policy := domain.DefaultScoringPolicy()
	v.SetDefault("scoring.base", policy.Base)
	v.SetDefault("scoring.error_weight", policy.ErrorWeight)
	v.SetDefault("scoring.error_cap", policy.ErrorCap)
	v.SetDefault("scoring.warning_weight", policy.WarningWeight)
	v.SetDefault("scoring.warning_cap", policy.WarningCap)
	v.SetDefault("scoring.info_weight", policy.InfoWeight)
	v.SetDefault("scoring.info_cap", policy.InfoCap)
	bonuses := make([]map[string]interface{}, 0, len(policy.Bonuses))
	for _, b := range policy.Bonuses {
		bonuses = append(bonuses, map[string]interface{}{
			"slide_types": b.SlideTypes,
			"points":      b.Points,
		})
	}
	v.SetDefault("scoring.bonuses", bonuses)

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_items", 512)
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.pool_size", 10)
	v.SetDefault("cache.pool_timeout", "4s")
	v.SetDefault("cache.max_retries", 3)

	// History defaults
	v.SetDefault("history.backend", "none")
	v.SetDefault("history.sqlite_path", "./data/history.db")
	v.SetDefault("history.database_url", "")
	v.SetDefault("history.migrations_path", "")
	v.SetDefault("history.max_conns", 10)
	v.SetDefault("history.driver", "pgx")

	// Rate limit defaults
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst", 20)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.GetConfig().Server
}

// GetCacheConfig returns report cache configuration
func (m *Manager) GetCacheConfig() *domain.CacheConfig {
	return &m.GetConfig().Cache
}

// GetHistoryConfig returns history storage configuration
func (m *Manager) GetHistoryConfig() *domain.HistoryConfig {
	return &m.GetConfig().History
}

// GetScoringPolicy returns the scoring policy
func (m *Manager) GetScoringPolicy() domain.ScoringPolicy {
	return m.GetConfig().Scoring
}

// Reload re-reads the configuration. An invalid result is rejected and the
// current configuration stays in effect.
func (m *Manager) Reload() error {
	config, err := m.loadConfig()
	if err != nil {
		return err
	}
	if err := validate(config); err != nil {
		return fmt.Errorf("reloaded configuration is invalid: %w", err)
	}

	m.mu.Lock()
	m.config = config
	m.mu.Unlock()
	return nil
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	return validate(m.GetConfig())
}

func validate(config *domain.Config) error {

	// Validate server configuration
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server max_body_bytes must be positive")
	}
	if p := config.Server.MCPPath; p != "" && !strings.HasPrefix(p, "/") {
		return fmt.Errorf("server mcp_path must start with '/': %s", p)
	}

	// Validate analysis limits
	if config.Analysis.MaxBatchSize <= 0 {
		return fmt.Errorf("analysis max_batch_size must be positive: %d", config.Analysis.MaxBatchSize)
	}
	if config.Analysis.BatchConcurrency <= 0 {
		return fmt.Errorf("analysis batch_concurrency must be positive: %d", config.Analysis.BatchConcurrency)
	}
	if config.Analysis.MaxSlides <= 0 {
		return fmt.Errorf("analysis max_slides must be positive: %d", config.Analysis.MaxSlides)
	}

	// Validate scoring policy
	s := config.Scoring
	for name, w := range map[string]int{
		"error_weight": s.ErrorWeight, "error_cap": s.ErrorCap,
		"warning_weight": s.WarningWeight, "warning_cap": s.WarningCap,
		"info_weight": s.InfoWeight, "info_cap": s.InfoCap,
	} {
		if w < 0 {
			return fmt.Errorf("scoring %s must not be negative: %d", name, w)
		}
	}
	if s.Base <= 0 {
		return fmt.Errorf("scoring base must be positive: %d", s.Base)
	}

	// Validate history configuration
	switch config.History.Backend {
	case "", "none", "sqlite":
	case "postgres":
		if config.History.DatabaseURL == "" {
			return fmt.Errorf("history database_url is required for the postgres backend")
		}
		if d := config.History.Driver; d != "" && d != "pgx" && d != "pq" {
			return fmt.Errorf("unknown history driver: %s", d)
		}
	default:
		return fmt.Errorf("unknown history backend: %s", config.History.Backend)
	}

	// Validate rate limiting
	if config.RateLimit.Enabled && (config.RateLimit.RequestsPerSecond <= 0 || config.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit requires positive requests_per_second and burst")
	}

	// Validate logging configuration
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// Address returns host:port for the HTTP listener.
func (m *Manager) Address() string {
	cfg := m.GetConfig().Server
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(m.GetConfig().Environment) == "production"
}

// IsDevelopment returns true if running in development mode
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(m.GetConfig().Environment)
	return env == "development" || env == "dev" || env == ""
}
