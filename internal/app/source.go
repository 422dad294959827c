package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/blackwell-systems/messwatch/internal/analyzer"
	"github.com/blackwell-systems/messwatch/internal/config"
	"github.com/blackwell-systems/messwatch/internal/feedback"
	"github.com/blackwell-systems/messwatch/internal/mongostore"
	"github.com/blackwell-systems/messwatch/internal/report"
	"github.com/blackwell-systems/messwatch/internal/store"
)

// sourceOpener returns a function that opens a fresh feedback source of the
// configured driver. Each report request calls it once.
func sourceOpener(cfg *config.Config, loc *time.Location, log logrus.FieldLogger) func(context.Context) (feedback.Source, error) {
	db := cfg.Database
	return func(ctx context.Context) (feedback.Source, error) {
		switch db.Driver {
		case "mongodb":
			s, err := mongostore.Open(ctx, mongostore.Options{
				URI:      db.URI,
				Database: db.Name,
				Timeout:  db.Timeout,
				Location: loc,
				Log:      log,
			})
			if err != nil {
				return nil, err
			}
			return s, nil
		case "postgres":
			s, err := store.Open(store.Postgres, db.DSN)
			if err != nil {
				return nil, err
			}
			return s, nil
		case "sqlite":
			s, err := store.Open(store.SQLite, db.Path)
			if err != nil {
				return nil, err
			}
			return s, nil
		}
		return nil, fmt.Errorf("unsupported driver %q", db.Driver)
	}
}

// openSQLStore opens the configured SQL database for writing.
func openSQLStore(cfg *config.Config) (*store.DB, error) {
	switch cfg.Database.Driver {
	case "postgres":
		return store.Open(store.Postgres, cfg.Database.DSN)
	case "sqlite":
		return store.Open(store.SQLite, cfg.Database.Path)
	}
	return nil, fmt.Errorf("driver %q is read-only here; use sqlite or postgres", cfg.Database.Driver)
}

// newRunner builds a report runner from configuration.
func newRunner(cfg *config.Config, log logrus.FieldLogger) (*report.Runner, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("resolving timezone: %w", err)
	}
	mode, err := analyzer.ParseMode(cfg.Classifier.Mode)
	if err != nil {
		return nil, err
	}
	l := cfg.Limits
	return &report.Runner{
		Open:     sourceOpener(cfg, loc, log),
		Location: loc,
		Options: report.Options{
			Limits: report.Limits{
				Insights:        l.Insights,
				Alerts:          l.Alerts,
				Recommendations: l.Recommendations,
				Actions:         l.Actions,
				Issues:          l.Issues,
				Highlights:      l.Highlights,
				MealComments:    l.MealComments,
			},
			Classifier: analyzer.Classifier{Mode: mode},
		},
		Log: log,
	}, nil
}
