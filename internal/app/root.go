// Package app contains the Cobra command tree for messwatch.
package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/messwatch/internal/config"
	"github.com/blackwell-systems/messwatch/internal/output"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

// errReported marks a failure whose error envelope has already been
// printed; Execute exits non-zero without printing it again.
var errReported = errors.New("error envelope reported")

var rootCmd = &cobra.Command{
	Use:   "messwatch",
	Short: "Meal feedback analytics for the hostel mess",
	Long: `messwatch aggregates the per-meal ratings and comments students leave
for the hostel mess into daily, weekly and historical reports.

Reports print as JSON when --json is set or stdout is not a terminal, and as
a styled summary otherwise. Use 'messwatch serve' to expose the same reports
over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "messwatch", appVersion)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Use a subcommand:")
		fmt.Fprintln(w, "  daily       Report on one day of feedback")
		fmt.Fprintln(w, "  weekly      Report on the Monday-Sunday week containing a date")
		fmt.Fprintln(w, "  historical  Compare, trend or pattern-mine a date range")
		fmt.Fprintln(w, "  serve       Serve reports over HTTP")
		fmt.Fprintln(w, "  mcp         Serve reports as MCP tools over stdio")
		fmt.Fprintln(w, "  seed        Generate a synthetic feedback dataset")
		fmt.Fprintln(w, "  import      Load a YAML feedback fixture")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/messwatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
}

// newLogger returns a text logger writing to w at info level.
func newLogger(w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(logrus.InfoLevel)
	return log
}

// setup loads configuration and prepares logging and color for a command.
// The logger is usable even when loading fails.
func setup(cmd *cobra.Command) (*config.Config, *logrus.Logger, error) {
	log := newLogger(cmd.ErrOrStderr())
	if flagVerbose {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		output.SetNoColor(flagNoColor)
		return nil, log, fmt.Errorf("loading config: %w", err)
	}

	if !flagVerbose {
		lvl, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			log.WithField("log_level", cfg.LogLevel).Warn("unknown log level, using info")
		} else {
			log.SetLevel(lvl)
		}
	}
	output.SetNoColor(flagNoColor || !cfg.Output.Color)
	return cfg, log, nil
}
