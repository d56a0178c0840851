package history

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/presentation-quality-server/internal/database"
	"github.com/presentation-quality-server/internal/domain"
)

// Backends accepted by Open.
const (
	BackendNone     = "none"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Postgres client drivers.
const (
	DriverPGX = "pgx"
	DriverPQ  = "pq"
)

// Open builds the configured store. It returns (nil, nil) for the "none"
// backend. The postgres backend runs pending migrations first.
func Open(ctx context.Context, cfg domain.HistoryConfig, logger *logrus.Logger) (Store, error) {
	switch cfg.Backend {
	case "", BackendNone:
		return nil, nil

	case BackendSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = filepath.Join(".", "data", "history.db")
		}
		store, err := NewSQLiteStore(path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite history: %w", err)
		}
		logger.WithField("path", path).Info("Report history enabled (sqlite)")
		return store, nil

	case BackendPostgres:
		runner, err := database.NewMigrationRunner(cfg.DatabaseURL, cfg.MigrationsPath, logger)
		if err != nil {
			return nil, err
		}
		if err := runner.Up(ctx); err != nil {
			runner.Close()
			return nil, err
		}
		if err := runner.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close migration runner")
		}

		if cfg.Driver == DriverPQ {
			store, err := NewPostgresStoreFromURL(cfg.DatabaseURL)
			if err != nil {
				return nil, err
			}
			logger.Info("Report history enabled (postgres, lib/pq)")
			return store, nil
		}

		db, err := database.NewConnection(ctx, database.ConfigFromHistory(cfg), logger)
		if err != nil {
			return nil, err
		}
		store, err := NewPostgresStoreFromPool(db.Pool)
		if err != nil {
			db.Close()
			return nil, err
		}
		store.onClose = db.Close
		logger.Info("Report history enabled (postgres)")
		return store, nil

	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}
