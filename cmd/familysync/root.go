package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/akilaweerasekara/Home-Inventory/internal/auth"
	"github.com/akilaweerasekara/Home-Inventory/internal/config"
	"github.com/akilaweerasekara/Home-Inventory/internal/metrics"
	"github.com/akilaweerasekara/Home-Inventory/internal/service"
	"github.com/akilaweerasekara/Home-Inventory/internal/storage"
	"github.com/akilaweerasekara/Home-Inventory/internal/storage/memory"
	"github.com/akilaweerasekara/Home-Inventory/internal/storage/sqlite"
	"github.com/akilaweerasekara/Home-Inventory/pkg/logging"
)

// app holds global flags and the household opened for the running command.
type app struct {
	configPath  string
	dbPath      string
	logLevel    string
	metricsFile string
	ephemeral   bool

	logger    *slog.Logger
	metrics   *metrics.Metrics
	store     *storage.Store
	household *service.Household
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "familysync",
		Short: "FamilySync - household inventory",
		Long: `FamilySync tracks where things are kept around the house.

Items are either family items, visible to everyone, or private items that
only their owner can see after unlocking with their password.

Run without arguments to start the interactive shell.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.open,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, a)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "familysync.yaml", "path to YAML config file")
	flags.StringVar(&a.dbPath, "db", "", "SQLite database path (overrides config)")
	flags.BoolVar(&a.ephemeral, "ephemeral", false, "keep state in memory only")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	root.AddCommand(
		newShellCmd(a),
		newMembersCmd(a),
		newSearchCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newResetCmd(a),
	)
	return root
}

// open loads config and opens the household for the command being run.
func (a *app) open(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("db") {
		cfg.Storage.Path = a.dbPath
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}
	if cmd.Flags().Changed("metrics-file") {
		cfg.Metrics.File = a.metricsFile
	}
	a.metricsFile = cfg.Metrics.File

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	a.logger = logging.New(cmd.ErrOrStderr(), level)

	cred, err := auth.NewCredential(cfg.Auth.Credential, cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	var provider storage.Provider
	if a.ephemeral {
		p := memory.New()
		p.SetQuota(int(cfg.Storage.QuotaBytes))
		provider = p
	} else {
		p, err := sqlite.New(cfg.Storage.Path, sqlite.WithQuota(cfg.Storage.QuotaBytes))
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		provider = p
		a.logger.Debug("Storage initialized", "database", cfg.Storage.Path)
	}

	a.metrics = metrics.New()
	a.store = storage.New(provider, a.logger, a.metrics)
	a.household, err = service.Open(cmd.Context(), a.store,
		service.WithLogger(a.logger),
		service.WithMetrics(a.metrics),
		service.WithCredential(cred),
	)
	return err
}

// close writes metrics and releases storage. Safe to call when open failed.
func (a *app) close() {
	if a.metricsFile != "" && a.metrics != nil {
		if err := a.metrics.WriteToTextfile(a.metricsFile); err != nil {
			a.logger.Error("Failed to write metrics", "path", a.metricsFile, "error", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error("Failed to close storage", "error", err)
		}
		a.store = nil
	}
}
