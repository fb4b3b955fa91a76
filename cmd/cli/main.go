package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/rodizio/cmd/cli/commands"
	"github.com/jakechorley/rodizio/internal/config"
	"github.com/jakechorley/rodizio/pkg/db"
	"github.com/jakechorley/rodizio/pkg/metrics"
	"github.com/jakechorley/rodizio/pkg/utils/logging"
)

var (
	env     string
	app     = &commands.AppContext{}
	storage *commands.Storage
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rodizio",
		Short: "Rodízio - weekly driver rotation from operational exports",
		Long: `A CLI tool for ingesting driver availability, loading, returns, cancellation and
refusal exports, and consolidating them into the weekly rotation priority list.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if storage != nil {
				storage.Close()
			}
			if app.Logger != nil {
				app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (selects rodizio_config.<env>.yaml and the log file prefix)")

	rootCmd.AddCommand(commands.IngestCmd(app))
	rootCmd.AddCommand(commands.WeeksCmd(app))
	rootCmd.AddCommand(commands.ViewCmd(app))
	rootCmd.AddCommand(commands.ServeCmd(app))
	rootCmd.AddCommand(commands.TablesCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, metrics and storage
func initApp() error {
	var err error
	app.Ctx = context.Background()

	// Initialize logger
	app.Logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully", zap.String("backend", app.Cfg.Storage.Backend))

	// Initialize metrics
	app.Registry = prometheus.NewRegistry()
	app.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	app.Recorder, err = metrics.NewPromRecorder(app.Registry)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	// Initialize storage
	storage, err = commands.OpenStorage(app.Ctx, app.Cfg, app.Logger)
	if err != nil {
		return err
	}

	app.Database = db.New(storage.Store, app.Cfg.Tables)
	app.Lister = storage.Lister
	app.Logger.Info("Storage initialized successfully", zap.String("backend", app.Cfg.Storage.Backend))

	return nil
}
