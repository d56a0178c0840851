// Package api exposes the analysis engine over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/presentation-quality-server/internal/domain"
	"github.com/presentation-quality-server/internal/history"
	"github.com/presentation-quality-server/internal/middleware"
	"github.com/presentation-quality-server/internal/service"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	analyzer      *service.AnalysisService
	cache         domain.ReportCache
	history       history.Store
	mcpHandler    http.Handler
	logger        *logrus.Logger
	router        *gin.Engine
	server        *http.Server
	upgrader      websocket.Upgrader
}

// Option configures optional collaborators.
type Option func(*Server)

// WithCache enables report caching for /analyze-presentation.
func WithCache(cache domain.ReportCache) Option {
	return func(s *Server) { s.cache = cache }
}

// WithMCPHandler mounts an MCP streamable HTTP handler at server.mcp_path.
func WithMCPHandler(handler http.Handler) Option {
	return func(s *Server) { s.mcpHandler = handler }
}

// WithHistory enables report persistence and the /reports endpoints.
func WithHistory(store history.Store) Option {
	return func(s *Server) { s.history = store }
}

// NewServer creates a new HTTP server instance
func NewServer(configManager domain.ConfigManager, analyzer *service.AnalysisService, logger *logrus.Logger, opts ...Option) *Server {
	cfg := configManager.GetConfig()

	// Set Gin mode based on environment
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &Server{
		configManager: configManager,
		analyzer:      analyzer,
		logger:        logger,
		router:        gin.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	// Outside development the upgrader keeps gorilla's same-origin check.
	if configManager.IsDevelopment() {
		server.upgrader.CheckOrigin = func(*http.Request) bool { return true }
	}
	for _, opt := range opts {
		opt(server)
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) setupMiddleware() {
	cfg := s.configManager.GetConfig()

	s.router.Use(gin.CustomRecovery(s.handlePanic))
	s.router.Use(middleware.CorrelationID())
	s.router.Use(middleware.AuditLogger())
	s.router.Use(middleware.SecurityHeaders(s.configManager.IsProduction()))
	s.router.Use(corsMiddleware())
	if cfg.RateLimit.Enabled {
		s.router.Use(middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst).Middleware())
	}
	s.router.Use(middleware.MaxBodySize(cfg.Server.MaxBodyBytes))
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	s.router.POST("/analyze-presentation", s.handleAnalyze)
	s.router.POST("/score", s.handleScore)
	s.router.POST("/suggestions", s.handleSuggestions)
	s.router.POST("/labs", s.handleLabs)
	s.router.POST("/medications", s.handleMedications)
	s.router.POST("/batch", s.handleBatch)
	s.router.POST("/validate-quiz", s.handleValidateQuiz)
	s.router.GET("/templates", s.handleTemplates)
	s.router.GET("/rules", s.handleRules)
	s.router.GET("/ws/analyze", s.handleWebSocket)

	if s.history != nil {
		reports := s.router.Group("/reports")
		{
			reports.GET("", s.handleListReports)
			reports.GET("/export", s.handleExportReports)
			reports.POST("/import", s.handleImportReports)
			reports.GET("/:id", s.handleGetReport)
			reports.DELETE("/:id", s.handleDeleteReport)
		}
	}

	if path := s.configManager.GetServerConfig().MCPPath; s.mcpHandler != nil && path != "" {
		s.router.Any(path, gin.WrapH(s.mcpHandler))
	}

	s.router.NoRoute(func(c *gin.Context) {
		s.respondError(c, http.StatusNotFound, domain.ErrNotFoundCode, "Route not found", c.Request.URL.Path)
	})
}

// handlePanic turns a recovered panic into a 500 with the standard body.
func (s *Server) handlePanic(c *gin.Context, recovered interface{}) {
	s.logger.WithFields(logrus.Fields{
		"correlation_id": c.GetString(middleware.CorrelationIDKey),
		"path":           c.Request.URL.Path,
		"panic":          fmt.Sprint(recovered),
	}).Error("Recovered from handler panic")

	s.respondError(c, http.StatusInternalServerError, domain.ErrInternalServer, "Internal server error", "")
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-Correlation-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Length, X-Correlation-ID, X-Cache")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
