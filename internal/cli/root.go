package cli

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"disposal-watch/internal/config"
	"disposal-watch/internal/logging"
	"disposal-watch/internal/rocdate"
	"disposal-watch/internal/store"
	"disposal-watch/internal/watch"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2025-08-30"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.WatchStore
	Syncer *watch.Syncer
}

// Today returns the logical trading date for expiry comparisons.
func (a *App) Today() time.Time {
	return rocdate.LogicalTodayAt(time.Now(), a.Config.Sync.DayCutoverHour)
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	watchStore, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, commands needing it will fail")
	} else {
		app.Store = watchStore
		app.Syncer = watch.NewSyncer(watchStore, logger)
		logger.Debug().Str("path", cfg.Store.Path).Msg("SQLite store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "disposal-watch",
		Short: "Disposal watch - regulatory trading-restriction tracker",
		Long: `Disposal watch tracks securities under regulatory disposal measures.

It normalizes official CSV exports and pasted bulletin text into a
deduplicated watch-list, derives each security's release date, and evicts
entries automatically once they are released.

Use 'disposal-watch help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/disposal-watch)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSyncCmd(app))
	rootCmd.AddCommand(newAddCmd(app))
	rootCmd.AddCommand(newListCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
	rootCmd.AddCommand(newRecordStatusCmd(app))
	rootCmd.AddCommand(newExportCmd(app))
	rootCmd.AddCommand(newImportCmd(app))
	rootCmd.AddCommand(newResetCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("disposal-watch v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}
