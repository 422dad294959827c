package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/messwatch/internal/analyzer"
	"github.com/blackwell-systems/messwatch/internal/fixture"
)

var importCmd = &cobra.Command{
	Use:   "import <fixture.yaml>",
	Short: "Load a YAML feedback fixture",
	Long: `Load the users and feedback records of a YAML fixture into the
configured SQL database. Existing users and same-day feedback are updated in
place.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}

	fx, err := fixture.Load(args[0])
	if err != nil {
		return err
	}

	db, err := openSQLStore(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := db.SaveAll(cmd.Context(), fx.Users, fx.Records); err != nil {
		return fmt.Errorf("importing %s: %w", args[0], err)
	}
	log.WithField("path", args[0]).Debug("imported fixture")

	s := loadSummary{Source: "fixture", Users: len(fx.Users), Feedbacks: len(fx.Records)}
	if n := len(fx.Records); n > 0 {
		first, last := fx.Records[0].Date, fx.Records[0].Date
		for _, r := range fx.Records[1:] {
			if r.Date.Before(first) {
				first = r.Date
			}
			if r.Date.After(last) {
				last = r.Date
			}
		}
		s.StartDate = first.Format(analyzer.DateLayout)
		s.EndDate = last.Format(analyzer.DateLayout)
	}
	return printSummary(cmd, s, db)
}
