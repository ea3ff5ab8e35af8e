package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/VolaTeQ/litchitool/internal/config"
	"github.com/VolaTeQ/litchitool/internal/csvformat"
	"github.com/VolaTeQ/litchitool/internal/history"
	"github.com/VolaTeQ/litchitool/internal/logging"
	"github.com/VolaTeQ/litchitool/internal/mission"
	"github.com/VolaTeQ/litchitool/internal/observability"
)

var (
	configPath   string
	schemaPath   string
	prettyLogs   bool
	logLevel     string
	logFile      string
	historyFile  string
	printHistory bool
	noHeader     bool
)

// app carries what PersistentPreRunE sets up for the subcommands.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	history history.Writer
	cleanup []func()
}

var current = &app{}

var rootCmd = &cobra.Command{
	Use:           "litchitool",
	Short:         "Litchi waypoint mission toolkit",
	Long:          "litchitool converts Litchi waypoint CSV exports into binary missions and manages missions in the Litchi cloud hub.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return current.setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		current.close()
	},
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		current.close()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to configuration YAML")
	pf.StringVar(&schemaPath, "schema", "", "Path to CUE schema file (default: built-in)")
	pf.BoolVarP(&prettyLogs, "pretty", "p", false, "Use pretty and more detailed logs")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&logFile, "log-file", "", "Write logs to a rotated file instead of STDERR")
	pf.StringVar(&historyFile, "history-file", "", "Append conversion history to this JSONL file")
	pf.BoolVar(&printHistory, "print-history", false, "Print conversion history entries as JSON to STDERR")
	pf.BoolVar(&noHeader, "no-header", false, "Treat the first CSV line as a waypoint instead of a header")

	rootCmd.AddCommand(convertCmd, kmlCmd, inspectCmd, uploadCmd, missionsCmd, syncCmd, serveCmd, historyCmd)
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(configPath, schemaPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	opts := logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File}
	if logLevel != "" {
		opts.Level = logLevel
	}
	if logFile != "" {
		opts.File = logFile
	}
	if prettyLogs {
		opts.Format = "text"
		opts.AddSource = true
		if logLevel == "" {
			opts.Level = "debug"
		}
	}
	log, closeLog, err := logging.New(opts)
	if err != nil {
		return err
	}
	a.cleanup = append(a.cleanup, func() { closeLog() })
	a.log = log
	slog.SetDefault(log)

	ctx := logging.NewContext(cmd.Context(), log)
	stopTracing, err := observability.StartTracing(ctx, observability.Tracing{
		Exporter:    cfg.Tracing.Exporter,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	}, log)
	if err != nil {
		return err
	}
	a.cleanup = append(a.cleanup, stopTracing)

	path := historyFile
	if path == "" {
		path = cfg.History.File
	}
	hw, closeHistory, err := newHistoryWriter(path, printHistory)
	if err != nil {
		return err
	}
	a.history = hw
	a.cleanup = append(a.cleanup, closeHistory)

	cmd.SetContext(ctx)
	return nil
}

func (a *app) close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	a.cleanup = nil
}

// readMission ingests a CSV file with the configured mission settings.
func (a *app) readMission(path string) (*mission.Mission, error) {
	mc, err := a.cfg.MissionConfig()
	if err != nil {
		return nil, err
	}
	opts := []csvformat.Option{csvformat.WithConfig(mc)}
	if noHeader {
		opts = append(opts, csvformat.WithoutHeader())
	}
	m, err := csvformat.ReadFile(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// record writes a history entry, logging rather than failing on errors.
func (a *app) record(ctx context.Context, e history.Entry) {
	if err := a.history.Write(ctx, e); err != nil {
		logging.FromContext(ctx).Warn("history write failed", "err", err)
	}
}
