package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"git.sr.ht/~jakintosh/taskdesk/internal/config"
	"git.sr.ht/~jakintosh/taskdesk/internal/domain"
	"git.sr.ht/~jakintosh/taskdesk/internal/engine"
	"git.sr.ht/~jakintosh/taskdesk/internal/store"
)

var (
	flagConfig  string
	flagData    string
	flagBackend string
	verbose     bool

	logger *zap.Logger
	cfg    *config.Config
	tstore domain.Store
	list   *engine.List
)

var rootCmd = &cobra.Command{
	Use:   "taskdesk",
	Short: "taskdesk - local task manager",
	Long: `taskdesk manages a single user's task list: tasks with priority,
due date and subtasks, kept in manual order, with derived priority and
due-date views. Every change is written straight to local storage.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return err
		}
		if flagData != "" {
			cfg.DataFile = flagData
		}
		if flagBackend != "" {
			cfg.Backend = flagBackend
		}

		logger, err = buildLogger(cfg.LogLevel, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		tstore, err = openStore(cfg)
		if err != nil {
			return err
		}

		list, err = engine.Open(tstore, logger)
		if err != nil {
			var corrupt *domain.CorruptStoreError
			if !errors.As(err, &corrupt) {
				tstore.Close()
				return err
			}
			// Starting over beats refusing to launch; the store
			// already kept a backup copy of the unreadable file.
			fmt.Fprintf(os.Stderr, "warning: %v\nstarting with an empty task list (a backup of the old file was kept)\n", corrupt)
			logger.Warn("recovering from corrupt store with empty list", zap.Error(corrupt))
			list = engine.New(tstore, nil, logger)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if tstore != nil {
			_ = tstore.Close()
		}
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func buildLogger(level string, verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func openStore(cfg *config.Config) (domain.Store, error) {
	switch cfg.Backend {
	case "sqlite":
		return store.NewSQLiteStore(cfg.DataFile, logger)
	default:
		return store.NewFileStore(cfg.DataFile, logger)
	}
}

func main() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/taskdesk/taskdesk.toml)")
	rootCmd.PersistentFlags().StringVar(&flagData, "data", "", "Task store path (env: TASKDESK_DATA_FILE)")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "store", "", "Storage backend: json or sqlite (env: TASKDESK_BACKEND)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(subCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
