package domain

import (
	"context"
)

// Analyzer runs the rule catalog over a slide list.
type Analyzer interface {
	Analyze(slides []Slide, presentationType string) *Report
	Score(slides []Slide) *ScoreResult
	RunRule(ruleID string, slides []Slide) ([]Finding, error)
	AnalyzeSlide(slides []Slide, index int) ([]Finding, error)
}

// ReportCache stores finished reports keyed by request fingerprint.
type ReportCache interface {
	Get(ctx context.Context, key string) (*Report, bool)
	Set(ctx context.Context, key string, report *Report)
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetCacheConfig() *CacheConfig
	GetHistoryConfig() *HistoryConfig
	GetScoringPolicy() ScoringPolicy
	Reload() error
	Validate() error
	IsProduction() bool
	IsDevelopment() bool
}
