package report

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/messwatch/internal/analyzer"
	"github.com/blackwell-systems/messwatch/internal/feedback"
)

func day(s string) time.Time {
	t, err := time.Parse(analyzer.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func rec(date, user string, meals map[feedback.MealSlot]*feedback.MealEntry) feedback.Record {
	return feedback.Record{Date: day(date), User: user, Meals: meals}
}

func entry(rating int, comment string) *feedback.MealEntry {
	return &feedback.MealEntry{Rating: feedback.Rating(rating), Comment: comment}
}

func breakfast(date, user string, rating int, comment string) feedback.Record {
	return rec(date, user, map[feedback.MealSlot]*feedback.MealEntry{feedback.Morning: entry(rating, comment)})
}

// fakeSource serves records filtered to the requested window.
type fakeSource struct {
	records  []feedback.Record
	students int
	fetchErr error
	countErr error

	closed     bool
	start, end time.Time
}

func (f *fakeSource) FetchFeedback(_ context.Context, start, end time.Time) ([]feedback.Record, error) {
	f.start, f.end = start, end
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []feedback.Record
	for _, r := range f.records {
		if !r.Date.Before(start) && r.Date.Before(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSource) CountRegisteredUsers(context.Context, bool) (int, error) {
	return f.students, f.countErr
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

func newRunner(src *fakeSource, now string) (*Runner, *int) {
	opened := 0
	logger, _ := test.NewNullLogger()
	return &Runner{
		Open: func(context.Context) (feedback.Source, error) {
			opened++
			return src, nil
		},
		Now: func() time.Time { return day(now).Add(10 * time.Hour) },
		Log: logger,
	}, &opened
}

func TestDaily_SingleMealScenario(t *testing.T) {
	src := &fakeSource{
		students: 10,
		records: []feedback.Record{
			breakfast("2025-10-14", "u1", 5, "delicious"),
			breakfast("2025-10-14", "u2", 3, ""),
			breakfast("2025-10-14", "u3", 1, "cold food"),
			breakfast("2025-10-15", "u1", 2, "ignored"),
		},
	}
	r, _ := newRunner(src, "2025-10-20")

	env, err := r.Daily(context.Background(), "2025-10-14")
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, env.Status)
	assert.Equal(t, "2025-10-14", env.Date)
	assert.True(t, src.closed)
	assert.Equal(t, day("2025-10-15"), src.end)

	data, ok := env.Data.(*DailyData)
	require.True(t, ok)
	assert.Equal(t, 3, data.Overview.ParticipatingStudents)
	assert.Equal(t, 30.0, data.Overview.ParticipationRate)
	assert.Equal(t, 3.0, data.Overview.OverallRating)

	avg, _ := data.AverageRatingPerMeal.Get("Breakfast")
	assert.Equal(t, 3.0, avg)
	lunch, _ := data.AverageRatingPerMeal.Get("Lunch")
	assert.Equal(t, 0.0, lunch)

	dist, _ := data.FeedbackDistributionPerMeal.Get("Breakfast")
	assert.Equal(t, analyzer.StarDistribution{OneStar: 1, ThreeStar: 1, FiveStar: 1}, dist)

	sent, _ := data.SentimentAnalysisPerMeal.Get("Breakfast")
	assert.Equal(t, 2, sent.TotalComments)
	assert.Equal(t, []string{"delicious"}, sent.PositiveFeedback)
	assert.Equal(t, []string{"cold food"}, sent.ImprovementAreas)

	require.NotEmpty(t, data.OverallSummary.CommonIssues)
	assert.Equal(t, "temperature", data.OverallSummary.CommonIssues[0].Category)
	assert.NotEmpty(t, data.OverallSummary.KeyInsights)
	assert.NotEmpty(t, data.OverallSummary.CriticalActions)
	assert.Contains(t, data.OverallSummary.PerformanceSummary, "Total Responses: 3")
}

func TestDaily_NoFeedback(t *testing.T) {
	src := &fakeSource{students: 40}
	r, _ := newRunner(src, "2025-10-20")

	env, err := r.Daily(context.Background(), "2025-10-14")
	require.NoError(t, err)
	assert.True(t, env.NoData())
	assert.Equal(t, NoDataNoFeedback, env.Type)

	data := env.Data.(*DailyNoData)
	assert.Equal(t, 40, data.Overview.TotalStudents)
	assert.Equal(t, 0, data.Overview.ParticipatingStudents)
}

func TestDaily_FutureDateSkipsSource(t *testing.T) {
	r, opened := newRunner(&fakeSource{}, "2025-10-14")

	env, err := r.Daily(context.Background(), "2025-10-14")
	require.NoError(t, err)
	assert.Equal(t, NoDataFutureDate, env.Type)
	assert.Equal(t, "Feedback will be available from 2025-10-15", env.Message)
	assert.Zero(t, *opened)
}

func TestDaily_InvalidDate(t *testing.T) {
	r, opened := newRunner(&fakeSource{}, "2025-10-20")

	_, err := r.Daily(context.Background(), "14/10/2025")
	require.Error(t, err)
	assert.Equal(t, CodeInvalidDate, AsError(err).Code)
	assert.Zero(t, *opened)
}

func TestDaily_InvalidRatingIsAnalysisError(t *testing.T) {
	src := &fakeSource{records: []feedback.Record{breakfast("2025-10-14", "u1", 7, "")}}
	r, _ := newRunner(src, "2025-10-20")

	_, err := r.Daily(context.Background(), "2025-10-14")
	require.Error(t, err)
	assert.Equal(t, CodeAnalysis, AsError(err).Code)
	assert.ErrorIs(t, err, feedback.ErrInvalidRating)
}

func TestRunner_ClosesSourceOnQueryError(t *testing.T) {
	src := &fakeSource{fetchErr: errors.New("connection reset")}
	r, _ := newRunner(src, "2025-10-20")

	_, err := r.Daily(context.Background(), "2025-10-14")
	require.Error(t, err)
	assert.Equal(t, CodeDatabase, AsError(err).Code)
	assert.True(t, src.closed)
}

func TestRunner_OpenFailure(t *testing.T) {
	logger, _ := test.NewNullLogger()
	r := &Runner{
		Open: func(context.Context) (feedback.Source, error) { return nil, errors.New("refused") },
		Now:  func() time.Time { return day("2025-10-20") },
		Log:  logger,
	}
	_, err := r.Weekly(context.Background(), "2025-10-14")
	require.Error(t, err)
	assert.Equal(t, CodeDatabase, AsError(err).Code)
	assert.Contains(t, err.Error(), "Failed to connect to database")
}

func TestRunner_RecoversPanics(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := &Runner{
		Open: func(context.Context) (feedback.Source, error) { panic("boom") },
		Now:  func() time.Time { return day("2025-10-20") },
		Log:  logger,
	}
	env, err := r.Daily(context.Background(), "2025-10-14")
	assert.Nil(t, env)
	require.Error(t, err)
	assert.Equal(t, CodeAnalysis, AsError(err).Code)
	assert.Equal(t, "Daily analysis failed: boom", AsError(err).Message)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestWeekly_MondayEffect(t *testing.T) {
	var records []feedback.Record
	for i := 0; i < 7; i++ {
		date := day("2025-10-13").AddDate(0, 0, i).Format(analyzer.DateLayout)
		rating := 4
		if i == 0 {
			rating = 2
		}
		records = append(records, breakfast(date, "u1", rating, ""))
	}
	src := &fakeSource{records: records, students: 1}
	r, _ := newRunner(src, "2025-10-25")

	env, err := r.Weekly(context.Background(), "2025-10-16")
	require.NoError(t, err)
	assert.Equal(t, "2025-10-13", env.WeekStart)
	assert.Equal(t, "2025-10-19", env.WeekEnd)
	assert.Equal(t, day("2025-10-20"), src.end)

	data := env.Data.(*WeeklyData)
	assert.Equal(t, 7, data.DailyBreakdown.Len())
	require.NotNil(t, data.Overview.WorstDay)
	assert.Equal(t, "Monday", data.Overview.WorstDay.DayName)
	require.NotNil(t, data.Overview.BestDay)
	assert.Equal(t, "2025-10-14", data.Overview.BestDay.Date)

	assert.True(t, data.Patterns.MondayEffect.Detected)
	assert.False(t, data.Patterns.WeekendDrop.Detected)
	assert.Contains(t, data.WeeklySummary.Trend.ProblematicPatterns, "Monday Blues Pattern")
}

func TestWeekly_NoFeedback(t *testing.T) {
	r, _ := newRunner(&fakeSource{students: 5}, "2025-10-25")

	env, err := r.Weekly(context.Background(), "2025-10-16")
	require.NoError(t, err)
	assert.True(t, env.NoData())
	assert.Equal(t, "No feedback data found for this week", env.Message)

	data := env.Data.(*WeeklyNoData)
	assert.NotNil(t, data.WeeklyInsights)
	assert.Equal(t, 5, data.Overview.TotalStudents)
}

func TestWeekly_FutureWeek(t *testing.T) {
	r, opened := newRunner(&fakeSource{}, "2025-10-13")

	env, err := r.Weekly(context.Background(), "2025-10-15")
	require.NoError(t, err)
	assert.Equal(t, NoDataFutureDate, env.Type)
	assert.Equal(t, "2025-10-13", env.WeekStart)
	assert.Zero(t, *opened)
}

func tenDayWindow() []feedback.Record {
	var records []feedback.Record
	for i := 0; i < 10; i++ {
		date := day("2025-09-01").AddDate(0, 0, i).Format(analyzer.DateLayout)
		rating := 3
		if i >= 5 {
			rating = 4
		}
		records = append(records, breakfast(date, "u1", rating, ""))
	}
	return records
}

func TestParticipationAnalysis_ExtremesUseFullPrecision(t *testing.T) {
	// 33.31%, 33.33% and 33.30% all round to 33.3%.
	days := []dayStat{
		{date: day("2025-10-13"), participants: 3331, rate: 3331.0 / 10000 * 100},
		{date: day("2025-10-14"), participants: 3333, rate: 3333.0 / 10000 * 100},
		{date: day("2025-10-15"), participants: 3330, rate: 3330.0 / 10000 * 100},
	}
	pa := participationAnalysis(days)

	require.NotNil(t, pa.HighestParticipationDay)
	require.NotNil(t, pa.LowestParticipationDay)
	assert.Equal(t, "2025-10-14", pa.HighestParticipationDay.Date)
	assert.Equal(t, "2025-10-15", pa.LowestParticipationDay.Date)
	assert.Equal(t, 33.3, pa.HighestParticipationDay.ParticipationRate)
	assert.Equal(t, 33.3, pa.LowestParticipationDay.ParticipationRate)
}

func TestHistorical_Comparison(t *testing.T) {
	src := &fakeSource{records: tenDayWindow(), students: 2}
	r, _ := newRunner(src, "2025-10-20")

	// Ten elapsed days put the midpoint on 2025-09-06, where ratings step up.
	env, err := r.Historical(context.Background(), "2025-09-01", "2025-09-11", "")
	require.NoError(t, err)
	assert.Equal(t, "comparison", env.AnalysisType)
	assert.Equal(t, day("2025-09-12"), src.end)

	data := env.Data.(*ComparisonData)
	assert.Equal(t, "2025-09-05", data.Overview.Period1.EndDate)
	assert.Equal(t, "2025-09-06", data.Overview.Period2.StartDate)
	assert.Equal(t, 1.0, data.Overview.OverallChange)
	assert.Equal(t, "improved", data.Overview.OverallTrend)

	mc, _ := data.MealComparisons.Get("Breakfast")
	assert.Equal(t, "improved", mc.Trend)
	assert.InDelta(t, 33.3, mc.ChangePercentage, 1e-9)
	lunch, _ := data.MealComparisons.Get("Lunch")
	assert.Equal(t, "no_data", lunch.Trend)

	require.NotEmpty(t, data.Insights)
	assert.Contains(t, data.Insights[0].Message, "Significant overall improvement")
	assert.Equal(t, 5, data.Period1Details.Overview.TotalFeedbacks)
}

func TestHistorical_Comparison_EmptyHalf(t *testing.T) {
	src := &fakeSource{records: []feedback.Record{
		breakfast("2025-10-08", "u1", 4, ""),
		breakfast("2025-10-09", "u1", 4, ""),
	}, students: 2}
	r, _ := newRunner(src, "2025-10-20")

	env, err := r.Historical(context.Background(), "2025-10-01", "2025-10-10", "comparison")
	require.NoError(t, err)

	data := env.Data.(*ComparisonData)
	assert.Equal(t, 0.0, data.Overview.Period1.OverallRating)
	assert.Equal(t, 4.0, data.Overview.Period2.OverallRating)
	assert.Equal(t, 0.0, data.Overview.OverallChange)
	assert.Equal(t, "no_data", data.Overview.OverallTrend)

	mc, _ := data.MealComparisons.Get("Breakfast")
	assert.Equal(t, "no_data", mc.Trend)
	for _, it := range data.Insights {
		assert.NotContains(t, it.Message, "overall improvement")
	}
	assert.Empty(t, data.Recommendations)
}

func TestHistorical_Trend(t *testing.T) {
	src := &fakeSource{records: tenDayWindow()}
	r, _ := newRunner(src, "2025-10-20")

	env, err := r.Historical(context.Background(), "2025-09-01", "2025-09-10", "trend")
	require.NoError(t, err)

	data := env.Data.(*TrendData)
	assert.Equal(t, 10, data.Overview.TotalDays)
	assert.Equal(t, 10, data.Overview.DataAvailableDays)
	assert.True(t, data.Overview.SlopeDefined)
	assert.Greater(t, data.Overview.OverallSlope, 0.0)

	bf, _ := data.TrendAnalysis.Get("Breakfast")
	assert.Equal(t, 4.0, bf.HighestRating)
	assert.Equal(t, 1.0, bf.RatingRange)
	dinner, _ := data.TrendAnalysis.Get("Dinner")
	assert.Equal(t, analyzer.InsufficientData, dinner.TrendDirection)
}

func TestHistorical_Pattern(t *testing.T) {
	records := tenDayWindow()
	at := time.Date(2025, 9, 1, 8, 30, 0, 0, time.UTC)
	records[0].Meals[feedback.Morning].SubmittedAt = &at
	src := &fakeSource{records: records, students: 1}
	r, _ := newRunner(src, "2025-10-20")

	env, err := r.Historical(context.Background(), "2025-09-01", "2025-09-10", "pattern")
	require.NoError(t, err)

	data := env.Data.(*PatternData)
	assert.Equal(t, []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}, data.DayOfWeekPatterns.Keys())
	assert.Equal(t, []string{"2025-09"}, data.MonthlyPatterns.Keys())

	mt, _ := data.MealTimePatterns.Get("Breakfast")
	assert.Equal(t, 1, mt.SubmissionCount)
	assert.Equal(t, 8, mt.PeakHour)
	assert.Equal(t, 100.0, data.ParticipationPatterns.AverageParticipationRate)
}

func TestHistorical_ArgumentErrors(t *testing.T) {
	r, opened := newRunner(&fakeSource{}, "2025-10-20")

	_, err := r.Historical(context.Background(), "2025-09-10", "2025-09-01", "")
	assert.Equal(t, CodeInvalidDate, AsError(err).Code)

	_, err = r.Historical(context.Background(), "2025-09-01", "2025-09-10", "forecast")
	assert.Equal(t, CodeInvalidArgs, AsError(err).Code)

	assert.Zero(t, *opened)
}

func TestHistorical_NoFeedback(t *testing.T) {
	r, _ := newRunner(&fakeSource{}, "2025-10-20")

	env, err := r.Historical(context.Background(), "2025-09-01", "2025-09-10", "trend")
	require.NoError(t, err)
	assert.True(t, env.NoData())

	b, err := json.Marshal(env)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"insights":[]`)
}

func TestReports_AreDeterministic(t *testing.T) {
	src := &fakeSource{records: tenDayWindow(), students: 3}
	r, _ := newRunner(src, "2025-10-20")

	for _, typ := range []string{"comparison", "trend", "pattern"} {
		a, err := r.Historical(context.Background(), "2025-09-01", "2025-09-10", typ)
		require.NoError(t, err)
		b, err := r.Historical(context.Background(), "2025-09-01", "2025-09-10", typ)
		require.NoError(t, err)

		ja, err := json.Marshal(a)
		require.NoError(t, err)
		jb, err := json.Marshal(b)
		require.NoError(t, err)
		assert.JSONEq(t, string(ja), string(jb), typ)
		assert.Equal(t, string(ja), string(jb), typ)
	}
}

func TestRender_ErrorEnvelope(t *testing.T) {
	now := time.Date(2025, 10, 14, 12, 0, 0, 0, time.UTC)
	out := Render(nil, Errorf(CodeInvalidDate, nil, "Invalid date format. Use YYYY-MM-DD"), now)

	b, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"error": true,
		"type": "INVALID_DATE",
		"message": "Invalid date format. Use YYYY-MM-DD",
		"timestamp": "2025-10-14T12:00:00Z",
		"data": null
	}`, string(b))
}

func TestRender_UntaggedError(t *testing.T) {
	out := Render(nil, errors.New("division by zero"), time.Now()).(*ErrorEnvelope)
	assert.Equal(t, CodeAnalysis, out.Type)
	assert.Equal(t, "division by zero", out.Message)
}

func TestRender_Success(t *testing.T) {
	env := &Envelope{Status: StatusSuccess, Date: "2025-10-14"}
	assert.Same(t, env, Render(env, nil, time.Now()))
}

func TestOrdered_MarshalsInInsertionOrder(t *testing.T) {
	var o Ordered[int]
	o.Set("Night Snacks", 4)
	o.Set("Breakfast", 1)
	o.Set("Night Snacks", 5)

	b, err := json.Marshal(o)
	require.NoError(t, err)
	assert.Equal(t, `{"Night Snacks":5,"Breakfast":1}`, string(b))

	var empty Ordered[int]
	b, err = json.Marshal(empty)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(b))
}

func TestByMeal_UsesSlotOrder(t *testing.T) {
	o := byMeal(func(s feedback.MealSlot) string { return string(s) })
	assert.Equal(t, []string{"Breakfast", "Lunch", "Dinner", "Night Snacks"}, o.Keys())
}

func TestParseAnalysisType(t *testing.T) {
	for in, want := range map[string]AnalysisType{
		"":           AnalysisComparison,
		"Trend":      AnalysisTrend,
		" pattern ":  AnalysisPattern,
		"comparison": AnalysisComparison,
	} {
		got, err := ParseAnalysisType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseAnalysisType("forecast")
	assert.Error(t, err)
}
