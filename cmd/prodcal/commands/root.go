package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nhle/production-calendar/internal/app"
	"github.com/nhle/production-calendar/internal/calendar"
	"github.com/nhle/production-calendar/internal/logging"
	"github.com/nhle/production-calendar/internal/model"
	"github.com/nhle/production-calendar/internal/store"
	"github.com/nhle/production-calendar/internal/theme"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose    bool
	configPath string

	cfg       *model.AppConfig
	db        *store.SQLiteStore
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "prodcal",
	Short: "Production calendar for scheduling and sequencing work items",
	Long: `prodcal plans production work on a month/week/day calendar. The day view
orders a day's work items and moves them through PENDING, IN_PRODUCTION
and COMPLETED.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = model.LoadConfig(configPath)
		if err != nil {
			return err
		}

		// The TUI owns the terminal; log to file only.
		interactive := cmd == cmd.Root()
		logCloser, err = logging.Init(logging.Options{
			Level:   cfg.Logging.Level,
			Verbose: verbose,
			Dir:     cfg.Logging.Dir,
			Console: !interactive,
		})
		if err != nil {
			return err
		}

		theme.Apply(cfg.Display.Theme)

		db, err = store.NewSQLiteStore(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}

		log.Debug().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("command", cmd.Name()).
			Str("database", cfg.Database.Path).
			Msg("prodcal starting")
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl := calendar.New(db, db, calendar.Options{
			WeekStartsOn:   cfg.WeekStart(),
			Logger:         log.Logger,
			RequestTimeout: cfg.RequestTimeout(),
			AtomicReorder:  cfg.Calendar.AtomicReorder,
		})
		root := app.New(db, ctrl, app.Options{
			Config:          cfg,
			ConfigPath:      configPath,
			RefreshInterval: cfg.RefreshInterval(),
			RequestTimeout:  cfg.RequestTimeout(),
			Logger:          log.Logger,
		})

		p := tea.NewProgram(root, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running calendar: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		// PersistentPostRunE is skipped when RunE fails.
		_ = closeAll()
	}
	return err
}

func closeAll() error {
	var firstErr error
	if db != nil {
		if err := db.Close(); err != nil {
			firstErr = fmt.Errorf("closing store: %w", err)
		}
		db = nil
	}
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
	return firstErr
}

// commandContext bounds a one-shot command's store calls.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	timeout := 30 * time.Second
	if cfg != nil {
		timeout = cfg.RequestTimeout()
	}
	return context.WithTimeout(cmd.Context(), timeout)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", model.DefaultConfigPath(), "config file path")
}
