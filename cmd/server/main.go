package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/presentation-quality-server/internal/api"
	"github.com/presentation-quality-server/internal/cache"
	"github.com/presentation-quality-server/internal/config"
	"github.com/presentation-quality-server/internal/database"
	"github.com/presentation-quality-server/internal/domain"
	"github.com/presentation-quality-server/internal/history"
	"github.com/presentation-quality-server/internal/logging"
	"github.com/presentation-quality-server/internal/mcp"
	"github.com/presentation-quality-server/internal/service"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default: search . ./config /etc/presentation-quality-server)")
	migrateCmd := flag.String("migrate", "", "run history schema migrations (up|down|version) and exit")
	flag.Parse()

	// Load configuration
	configManager, err := config.NewManagerFromFile(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := logging.NewLogger(cfg.Logging)

	if *migrateCmd != "" {
		if err := runMigrations(context.Background(), cfg.History, *migrateCmd, logger); err != nil {
			logger.WithError(err).Fatal("Migration failed")
		}
		return
	}

	logger.WithField("addr", configManager.Address()).Info("Starting presentation quality server")

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analyzer := service.NewAnalysisService(logger, configManager.GetScoringPolicy())
	var opts []api.Option

	var reportCache domain.ReportCache
	if cacheCfg := configManager.GetCacheConfig(); cacheCfg.Enabled {
		c, err := cache.New(*cacheCfg, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create report cache")
		}
		defer c.Close()
		reportCache = c
		opts = append(opts, api.WithCache(reportCache))
	}

	store, err := history.Open(ctx, *configManager.GetHistoryConfig(), logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open report history")
	}
	if store != nil {
		defer store.Close()
		opts = append(opts, api.WithHistory(store))
	}

	if cfg.Server.MCPPath != "" {
		mcpServer := mcp.NewEmbeddedServer(analyzer, reportCache, store, logger)
		opts = append(opts, api.WithMCPHandler(mcpServer.HTTPHandler()))
		logger.WithField("path", cfg.Server.MCPPath).Info("MCP streamable HTTP endpoint enabled")
	}

	server := api.NewServer(configManager, analyzer, logger, opts...)
	go reloadOnHangup(ctx, configManager, logger)

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Error("Server stopped with error")
		return
	}

	logger.Info("Server stopped")
}

// reloadOnHangup re-reads the configuration on SIGHUP. Analysis limits take
// effect on the next request; listener, cache and history settings need a
// restart.
func reloadOnHangup(ctx context.Context, configManager *config.Manager, logger *logrus.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := configManager.Reload(); err != nil {
				logger.WithError(err).Error("Configuration reload failed; keeping current settings")
				continue
			}
			logger.WithField("max_slides", configManager.GetConfig().Analysis.MaxSlides).Info("Configuration reloaded")
		}
	}
}

func runMigrations(ctx context.Context, cfg domain.HistoryConfig, command string, logger *logrus.Logger) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("history.database_url is required for migrations")
	}
	runner, err := database.NewMigrationRunner(cfg.DatabaseURL, cfg.MigrationsPath, logger)
	if err != nil {
		return err
	}
	defer runner.Close()

	switch command {
	case "up":
		return runner.Up(ctx)
	case "down":
		return runner.Down(ctx)
	case "version":
		version, dirty, err := runner.Version()
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("Current schema version")
		return nil
	default:
		return fmt.Errorf("unknown migrate command %q (expected up, down or version)", command)
	}
}
