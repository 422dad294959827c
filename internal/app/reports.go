package app

import (
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/messwatch/internal/report"
)

var dailyCmd = &cobra.Command{
	Use:   "daily <YYYY-MM-DD>",
	Short: "Report on one day of feedback",
	Long: `Aggregate the ratings and comments submitted for one calendar day:
participation, per-meal averages and distributions, comment sentiment,
topics, and a narrative summary with critical actions.`,
	Args: cobra.ArbitraryArgs,
	RunE: runDaily,
}

var weeklyCmd = &cobra.Command{
	Use:   "weekly <YYYY-MM-DD>",
	Short: "Report on the Monday-Sunday week containing a date",
	Args:  cobra.ArbitraryArgs,
	RunE:  runWeekly,
}

var historicalCmd = &cobra.Command{
	Use:   "historical <start> <end> [comparison|trend|pattern]",
	Short: "Compare, trend or pattern-mine a date range",
	Long: `Analyse the inclusive range start..end. comparison (the default) splits
the range at its midpoint and compares the halves; trend fits a slope to the
daily averages; pattern looks at weekday, monthly and submission-time
patterns.`,
	Args: cobra.ArbitraryArgs,
	RunE: runHistorical,
}

func init() {
	rootCmd.AddCommand(dailyCmd, weeklyCmd, historicalCmd)
}

// reportRunner loads configuration and builds a runner, emitting the
// failure as an error envelope.
func reportRunner(cmd *cobra.Command) (*report.Runner, error) {
	cfg, log, err := setup(cmd)
	if err != nil {
		return nil, emit(cmd, nil, report.Errorf(report.CodeInvalidArgs, err, "Invalid configuration: %v", err))
	}
	r, err := newRunner(cfg, log)
	if err != nil {
		return nil, emit(cmd, nil, report.Errorf(report.CodeInvalidArgs, err, "Invalid configuration: %v", err))
	}
	return r, nil
}

func runDaily(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return usage(cmd, "Usage: messwatch daily <YYYY-MM-DD>")
	}
	r, err := reportRunner(cmd)
	if r == nil {
		return err
	}
	env, err := r.Daily(cmd.Context(), args[0])
	return emit(cmd, env, err)
}

func runWeekly(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return usage(cmd, "Usage: messwatch weekly <YYYY-MM-DD>")
	}
	r, err := reportRunner(cmd)
	if r == nil {
		return err
	}
	env, err := r.Weekly(cmd.Context(), args[0])
	return emit(cmd, env, err)
}

func runHistorical(cmd *cobra.Command, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return usage(cmd, "Usage: messwatch historical <start> <end> [comparison|trend|pattern]")
	}
	r, err := reportRunner(cmd)
	if r == nil {
		return err
	}
	var kind string
	if len(args) == 3 {
		kind = args[2]
	}
	env, err := r.Historical(cmd.Context(), args[0], args[1], kind)
	return emit(cmd, env, err)
}
