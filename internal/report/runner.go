package report

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/messwatch/internal/analyzer"
	"github.com/blackwell-systems/messwatch/internal/feedback"
)

// Runner executes report requests. Each request opens its own source, which
// is closed before the request returns.
type Runner struct {
	// Open acquires a feedback source for one request.
	Open func(ctx context.Context) (feedback.Source, error)

	// Now returns the current time; time.Now when nil.
	Now func() time.Time

	// Location defines calendar days and "today"; UTC when nil.
	Location *time.Location

	Options Options

	// Log receives diagnostics; the standard logrus logger when nil.
	Log logrus.FieldLogger
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) location() *time.Location {
	if r.Location != nil {
		return r.Location
	}
	return time.UTC
}

func (r *Runner) log() logrus.FieldLogger {
	if r.Log != nil {
		return r.Log
	}
	return logrus.StandardLogger()
}

// today is the calendar day of now in the runner's location.
func (r *Runner) today() time.Time {
	return feedback.CalendarDay(r.now(), r.location())
}

// ParseDate parses a YYYY-MM-DD date into its UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(analyzer.DateLayout, s)
	if err != nil {
		return time.Time{}, Errorf(CodeInvalidDate, err, "Invalid date format. Use YYYY-MM-DD")
	}
	return t, nil
}

// futureDate returns the no_data envelope when day is today or later.
func (r *Runner) futureDate(day time.Time) *Envelope {
	today := r.today()
	if day.Before(today) {
		return nil
	}
	return &Envelope{
		Status:  StatusNoData,
		Type:    NoDataFutureDate,
		Message: fmt.Sprintf("Feedback will be available from %s", today.AddDate(0, 0, 1).Format(analyzer.DateLayout)),
	}
}

// recoverPanic turns a panic in a report method into an ANALYSIS_ERROR.
func (r *Runner) recoverPanic(name string, env **Envelope, err *error) {
	if p := recover(); p != nil {
		r.log().WithField("panic", p).Errorf("%s analysis panicked", name)
		*env = nil
		*err = Errorf(CodeAnalysis, nil, "%s analysis failed: %v", name, p)
	}
}

// fetch loads the records dated in [start, end) and the registered student
// count from a freshly opened source.
func (r *Runner) fetch(ctx context.Context, start, end time.Time) ([]feedback.Record, int, error) {
	if r.Open == nil {
		return nil, 0, Errorf(CodeDatabase, nil, "No feedback source configured")
	}
	begin := time.Now()

	src, err := r.Open(ctx)
	if err != nil {
		return nil, 0, Errorf(CodeDatabase, err, "Failed to connect to database: %v", err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			r.log().WithError(cerr).Warn("closing feedback source")
		}
	}()

	var (
		records []feedback.Record
		total   int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := src.FetchFeedback(gctx, start, end)
		if err != nil {
			return fmt.Errorf("fetching feedback: %w", err)
		}
		records = recs
		return nil
	})
	g.Go(func() error {
		n, err := src.CountRegisteredUsers(gctx, true)
		if err != nil {
			return fmt.Errorf("counting students: %w", err)
		}
		total = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, Errorf(CodeDatabase, err, "Database query failed: %v", err)
	}

	r.log().WithFields(logrus.Fields{
		"start":    start.Format(analyzer.DateLayout),
		"end":      end.Format(analyzer.DateLayout),
		"records":  len(records),
		"students": total,
		"elapsed":  time.Since(begin).String(),
	}).Debug("fetched feedback window")
	return records, total, nil
}

// Daily runs the daily report for date (YYYY-MM-DD).
func (r *Runner) Daily(ctx context.Context, date string) (env *Envelope, err error) {
	defer r.recoverPanic("Daily", &env, &err)

	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	if fut := r.futureDate(day); fut != nil {
		fut.Date = day.Format(analyzer.DateLayout)
		return fut, nil
	}

	records, total, err := r.fetch(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	return BuildDaily(DailyInput{Date: day, Records: records, TotalStudents: total, Options: r.Options})
}

// Weekly runs the weekly report for the ISO week containing date.
func (r *Runner) Weekly(ctx context.Context, date string) (env *Envelope, err error) {
	defer r.recoverPanic("Weekly", &env, &err)

	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	weekStart := analyzer.WeekStart(day)
	if fut := r.futureDate(weekStart); fut != nil {
		fut.WeekStart = weekStart.Format(analyzer.DateLayout)
		fut.WeekEnd = weekStart.AddDate(0, 0, 6).Format(analyzer.DateLayout)
		return fut, nil
	}

	records, total, err := r.fetch(ctx, weekStart, weekStart.AddDate(0, 0, 7))
	if err != nil {
		return nil, err
	}
	return BuildWeekly(WeeklyInput{Date: day, Records: records, TotalStudents: total, Options: r.Options})
}

// Historical runs the historical report of analysisType over [start, end].
// An empty analysisType selects comparison.
func (r *Runner) Historical(ctx context.Context, start, end, analysisType string) (env *Envelope, err error) {
	defer r.recoverPanic("Historical", &env, &err)

	from, err := ParseDate(start)
	if err != nil {
		return nil, err
	}
	to, err := ParseDate(end)
	if err != nil {
		return nil, err
	}
	if !from.Before(to) {
		return nil, Errorf(CodeInvalidDate, nil, "Start date must be before end date")
	}
	kind, err := ParseAnalysisType(analysisType)
	if err != nil {
		return nil, Errorf(CodeInvalidArgs, err, "Unknown analysis type: %s", analysisType)
	}
	if fut := r.futureDate(from); fut != nil {
		fut.StartDate = from.Format(analyzer.DateLayout)
		fut.EndDate = to.Format(analyzer.DateLayout)
		fut.AnalysisType = string(kind)
		return fut, nil
	}

	records, total, err := r.fetch(ctx, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	return BuildHistorical(HistoricalInput{
		Start:         from,
		End:           to,
		Type:          kind,
		Records:       records,
		TotalStudents: total,
		Options:       r.Options,
		Location:      r.location(),
	})
}
