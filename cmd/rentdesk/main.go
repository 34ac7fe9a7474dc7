// Command rentdesk tracks return, maintenance and payment reminders for a
// small vehicle-rental desk.
//
// Usage:
//
//	rentdesk                 # Interactive shell
//	rentdesk list --filter overdue
//	rentdesk watch           # Print a digest of urgent reminders periodically
//	rentdesk serve           # MCP server over stdio
//
// Environment:
//
//	RENTDESK_STORE_PATH      Path to the reminder store (default: ~/.rentdesk/reminders.csv)
//	RENTDESK_STORE_BACKEND   csv or sqlite
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/notexe/rentdesk/internal/config"
	"github.com/notexe/rentdesk/internal/logging"
	"github.com/notexe/rentdesk/internal/reminder"
)

var (
	configPath string
	storePath  string
	backend    string
	noColor    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "rentdesk",
	Short: "Reminder desk for vehicle returns, maintenance and payments",
	Long: `rentdesk keeps track of reminders for a small vehicle-rental operation.

Reminders are typed (return, maintenance, payment), move forward through
pending -> sent -> completed, and are stored in a flat CSV file.

Run without arguments to start the interactive shell.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("error loading configuration: %w", err)
		}

		// Apply CLI flag overrides
		if storePath != "" {
			cfg.Store.Path = storePath
		}
		if backend != "" {
			cfg.Store.Backend = backend
		}
		if noColor {
			cfg.UI.ColoredOutput = false
		}

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		logger, err = logging.New(cfg.Log.Level, cfg.Log.File)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.GetDefaultConfigPath(), "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Reminder store path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "Store backend: csv or sqlite (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(listCmd, watchCmd, serveCmd)
}

// openRepository opens the configured store backend.
func openRepository() (reminder.Repository, error) {
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		return reminder.NewSQLiteStore(cfg.Store.Path, logger)
	default:
		return reminder.NewStore(cfg.Store.Path, logger)
	}
}

// openManager opens the store and loads it into a fresh manager.
func openManager() (*reminder.Manager, reminder.Repository, error) {
	repo, err := openRepository()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open reminder store: %w", err)
	}

	manager, err := reminder.NewManager(repo,
		reminder.WithDueSoonWindow(cfg.DueSoonWindow()),
		reminder.WithLogger(logger),
	)
	if err != nil {
		repo.Close()
		return nil, nil, err
	}
	return manager, repo, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
