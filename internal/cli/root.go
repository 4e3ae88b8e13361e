// Package cli wires the cobra command tree. Without a sub-command the
// terminal UI starts; sub-commands operate on the same data file.
package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"dayplanner/internal/config"
	appLog "dayplanner/internal/log"
	"dayplanner/internal/planner"
	"dayplanner/internal/store"
	"dayplanner/internal/tui"
)

// rootOptions holds the persistent flags shared by every sub-command.
type rootOptions struct {
	configPath string
	dataPath   string
	logLevel   string

	// now overrides the planner clock in tests.
	now func() time.Time
}

// env is everything a command needs once config and data are loaded.
type env struct {
	cfg     *config.Config
	store   *store.Store
	planner *planner.Planner
}

func (o *rootOptions) open() (*env, error) {
	path := o.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("config path: %w", err)
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		if cfg == nil {
			return nil, err
		}
		// First-run default could not be written; keep going in memory.
		appLog.Error("config save failed, using defaults", err, "path", path)
	}
	if o.dataPath != "" {
		cfg.DataFile = o.dataPath
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))

	st := store.New(cfg.DataFile)
	doc, err := st.Load()
	if err != nil {
		return nil, err
	}

	opts := []planner.Option{planner.WithLocation(cfg.Location())}
	if o.now != nil {
		opts = append(opts, planner.WithClock(o.now))
	}
	appLog.Debug("data loaded", "path", st.Path(),
		"tasks", len(doc.Tasks), "events", len(doc.Events), "notes", len(doc.Notes))

	return &env{cfg: cfg, store: st, planner: planner.New(doc, st, opts...)}, nil
}

func newRootCmd(o *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dayplanner",
		Short: "Планировщик задач, событий и заметок",
		Long: `dayplanner keeps tasks, events and notes in a single JSON file.

Run without arguments to open the terminal UI, or use the sub-commands
for scripting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(o)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&o.configPath, "config", "", "path to config.yaml (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&o.dataPath, "data", "", "data file (overrides data_file from config)")
	rootCmd.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "debug, info or error")

	rootCmd.AddCommand(taskCmd(o))
	rootCmd.AddCommand(eventCmd(o))
	rootCmd.AddCommand(noteCmd(o))
	rootCmd.AddCommand(statsCmd(o))
	rootCmd.AddCommand(icsCmd(o))
	return rootCmd
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd := newRootCmd(&rootOptions{})
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		return err
	}
	return nil
}

// runUI hands the terminal to the UI. Log lines go to log_file, or
// nowhere, while it runs.
func runUI(o *rootOptions) error {
	e, err := o.open()
	if err != nil {
		return err
	}

	var sink io.Writer = io.Discard
	if e.cfg.LogFile != "" {
		f, err := os.OpenFile(e.cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		sink = f
	}
	appLog.SetOutput(sink)
	defer appLog.SetOutput(os.Stderr)

	appLog.Info("ui starting", "data", e.store.Path())
	return tui.Run(e.planner, tui.Options{DayRollover: e.cfg.DayRollover})
}
