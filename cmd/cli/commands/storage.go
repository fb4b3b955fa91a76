package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/rodizio/internal/config"
	"github.com/jakechorley/rodizio/pkg/clients/sheetsclient"
	"github.com/jakechorley/rodizio/pkg/db"
	"github.com/jakechorley/rodizio/pkg/localstore"
	"github.com/jakechorley/rodizio/pkg/postgres"
)

// Storage is an opened table store for the configured backend
type Storage struct {
	Store  db.TableStore
	Lister db.TableLister
	close  func()
}

// Close releases the backend's connections
func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStorage connects to the backend selected by cfg.Storage.Backend
func OpenStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Storage, error) {
	switch cfg.Storage.Backend {
	case config.BackendSheets:
		logger.Info("Initializing sheets client")
		tokenPath := cfg.Storage.TokenFile
		if tokenPath == "" {
			var err error
			if tokenPath, err = sheetsclient.DefaultTokenPath(cfg.Env); err != nil {
				return nil, err
			}
		}
		client, err := sheetsclient.NewClient(ctx, cfg.Storage.CredentialsFile, tokenPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create sheets client: %w", err)
		}

		logger.Info("Connecting to spreadsheet", zap.String("spreadsheet_id", cfg.Storage.SpreadsheetID))
		store, err := db.NewSheetsStore(ctx, client, cfg.Storage.SpreadsheetID, cfg.Tables)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize spreadsheet store: %w", err)
		}
		return &Storage{Store: store, Lister: store}, nil

	case config.BackendPostgres:
		logger.Info("Connecting to postgres")
		pg, err := postgres.NewDB(ctx, cfg.Storage.PostgresURL)
		if err != nil {
			return nil, err
		}
		if err := pg.RunMigrations(ctx); err != nil {
			pg.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return &Storage{Store: pg, Lister: pg, close: pg.Close}, nil

	case config.BackendSQLite:
		logger.Info("Opening local store", zap.String("path", cfg.Storage.SQLitePath))
		local, err := localstore.OpenDB(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Storage{Store: local, Lister: local, close: func() {
			if err := local.Close(); err != nil {
				logger.Warn("Failed to close local store", zap.Error(err))
			}
		}}, nil
	}

	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}
