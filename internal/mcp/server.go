// Package mcp exposes the analysis engine as Model Context Protocol tools.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/presentation-quality-server/internal/cache"
	litecfg "github.com/presentation-quality-server/internal/config"
	"github.com/presentation-quality-server/internal/domain"
	"github.com/presentation-quality-server/internal/history"
	"github.com/presentation-quality-server/internal/logging"
	"github.com/presentation-quality-server/internal/service"
)

const (
	serverName    = "presentation-quality-mcp"
	serverVersion = "v1.0.0"
)

// LiteServer is a standalone MCP server. It needs no database server: reports
// are cached in process and history, when enabled, lives in a SQLite file.
type LiteServer struct {
	config    *litecfg.LiteConfig
	mcpServer *mcp.Server
	analyzer  *service.AnalysisService
	cache     domain.ReportCache
	history   history.Store
	logger    *logrus.Logger

	ownedCache  *cache.ReportCache
	ownsHistory bool
}

// LiteServerOption is a functional option for LiteServer.
type LiteServerOption func(*LiteServer) error

// WithHistoryStore sets a custom history store.
func WithHistoryStore(store history.Store) LiteServerOption {
	return func(s *LiteServer) error {
		s.history = store
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logrus.Logger) LiteServerOption {
	return func(s *LiteServer) error {
		s.logger = logger
		return nil
	}
}

// NewLiteServer creates a new MCP server instance with its tools, resources
// and prompts registered.
func NewLiteServer(cfg *litecfg.LiteConfig, opts ...LiteServerOption) (*LiteServer, error) {
	server := &LiteServer{
		config: cfg,
		logger: logging.NewLogger(cfg.LoggingConfig()),
	}

	for _, opt := range opts {
		if err := opt(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	reportCache, err := cache.New(cfg.CacheConfig(), server.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create report cache: %w", err)
	}
	server.cache = reportCache
	server.ownedCache = reportCache

	if server.history == nil && cfg.History {
		if err := cfg.EnsureDataDir(); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		store, err := history.Open(context.Background(), cfg.HistoryConfig(), server.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open history store: %w", err)
		}
		server.history = store
		server.ownsHistory = true
	}

	analyzer := service.NewAnalysisService(server.logger, domain.DefaultScoringPolicy())
	server.setup(analyzer)

	server.logger.Info("Lite server initialized successfully")
	return server, nil
}

// NewEmbeddedServer builds an MCP server around collaborators owned by the
// caller, for mounting next to the HTTP API. reportCache and store may be nil.
func NewEmbeddedServer(analyzer *service.AnalysisService, reportCache domain.ReportCache, store history.Store, logger *logrus.Logger) *LiteServer {
	server := &LiteServer{
		cache:   reportCache,
		history: store,
		logger:  logger,
	}
	server.setup(analyzer)
	return server
}

func (s *LiteServer) setup(analyzer *service.AnalysisService) {
	s.analyzer = analyzer
	s.mcpServer = mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)
	s.registerTools()
	s.registerResources()
	s.registerPrompts()
}

// MCPServer returns the underlying SDK server.
func (s *LiteServer) MCPServer() *mcp.Server {
	return s.mcpServer
}

// Start serves MCP over stdio until ctx is cancelled or the client leaves.
func (s *LiteServer) Start(ctx context.Context) error {
	s.logger.Info("Starting presentation quality MCP server on stdio")
	if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp server stopped: %w", err)
	}
	return nil
}

// Close releases the cache and history store this server opened. Stores
// passed in with WithHistoryStore stay open.
func (s *LiteServer) Close() error {
	var errs []error
	if s.ownedCache != nil {
		if err := s.ownedCache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if s.ownsHistory && s.history != nil {
		if err := s.history.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close history: %w", err))
		}
	}
	return errors.Join(errs...)
}
