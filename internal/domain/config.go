package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Analysis    AnalysisConfig  `mapstructure:"analysis"`
	Scoring     ScoringPolicy   `mapstructure:"scoring"`
	Cache       CacheConfig     `mapstructure:"cache"`
	History     HistoryConfig   `mapstructure:"history"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Logging     LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	MCPPath      string        `mapstructure:"mcp_path"` // empty disables MCP over HTTP
}

// AnalysisConfig bounds the batch and live-analysis surfaces.
type AnalysisConfig struct {
	MaxBatchSize     int `mapstructure:"max_batch_size"`
	BatchConcurrency int `mapstructure:"batch_concurrency"`
	MaxSlides        int `mapstructure:"max_slides"`
}

// CacheConfig represents report cache configuration
type CacheConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxItems    int           `mapstructure:"max_items"`
	TTL         time.Duration `mapstructure:"ttl"`
	RedisURL    string        `mapstructure:"redis_url"`
	PoolSize    int           `mapstructure:"pool_size"`
	PoolTimeout time.Duration `mapstructure:"pool_timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
}

// HistoryConfig selects where analysis snapshots are persisted.
type HistoryConfig struct {
	Backend        string `mapstructure:"backend"` // "none", "sqlite", "postgres"
	SQLitePath     string `mapstructure:"sqlite_path"`
	DatabaseURL    string `mapstructure:"database_url"`
	MigrationsPath string `mapstructure:"migrations_path"`
	MaxConns       int32  `mapstructure:"max_conns"`
	Driver         string `mapstructure:"driver"` // postgres client: "pgx" pool or "pq"
}

// RateLimitConfig represents per-client request limiting
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
