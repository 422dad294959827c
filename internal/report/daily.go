package report

import (
	"time"

	"github.com/blackwell-systems/messwatch/internal/analyzer"
	"github.com/blackwell-systems/messwatch/internal/feedback"
)

// DailyInput is everything the daily assembler needs.
type DailyInput struct {
	Date          time.Time
	Records       []feedback.Record
	TotalStudents int
	Options       Options
}

// DailyOverview holds the headline numbers of a day.
type DailyOverview struct {
	TotalStudents         int     `json:"totalStudents"`
	ParticipatingStudents int     `json:"participatingStudents"`
	ParticipationRate     float64 `json:"participationRate"`
	OverallRating         float64 `json:"overallRating"`
}

// MealSentiment summarises the comments left on one meal.
type MealSentiment struct {
	AverageRating float64 `json:"average_rating"`

	// TotalComments counts non-empty comments.
	TotalComments int `json:"total_comments"`

	// PositiveFeedback holds comments whose rating was 4 or 5.
	PositiveFeedback []string `json:"positive_feedback"`

	// ImprovementAreas holds comments whose rating was 1 or 2.
	ImprovementAreas []string `json:"improvement_areas"`

	// SentimentScore is the average rating scaled to 0-100.
	SentimentScore float64 `json:"sentiment_score"`

	SentimentCounts analyzer.SentimentCounts `json:"sentiment_counts"`
}

// DailySummary is the narrative block of the daily report.
type DailySummary struct {
	KeyInsights        []string           `json:"key_insights"`
	CriticalActions    []string           `json:"critical_actions"`
	PerformanceStatus  string             `json:"performance_status"`
	PerformanceSummary string             `json:"performance_summary"`
	CommonIssues       []analyzer.Finding `json:"common_issues"`
	PositiveHighlights []analyzer.Finding `json:"positive_highlights"`
}

// DailyData is the data block of a successful daily report.
type DailyData struct {
	Overview                    DailyOverview                      `json:"overview"`
	AverageRatingPerMeal        Ordered[float64]                   `json:"averageRatingPerMeal"`
	StudentRatingPerMeal        Ordered[int]                       `json:"studentRatingPerMeal"`
	FeedbackDistributionPerMeal Ordered[analyzer.StarDistribution] `json:"feedbackDistributionPerMeal"`
	SentimentAnalysisPerMeal    Ordered[MealSentiment]             `json:"sentimentAnalysisPerMeal"`
	CommentTopics               analyzer.Topics                    `json:"commentTopics"`
	OverallSummary              DailySummary                       `json:"overallSummary"`
}

// DailyNoData is the data block of a daily no_feedback report.
type DailyNoData struct {
	Overview DailyOverview `json:"overview"`
}

// BuildDaily assembles the daily report for in.Date.
func BuildDaily(in DailyInput) (*Envelope, error) {
	opts := in.Options.withDefaults()
	date := in.Date.Format(analyzer.DateLayout)

	bucket := analyzer.DayBucket(in.Records, in.Date)
	n, err := analyzer.Normalize(bucket.Records)
	if err != nil {
		return nil, Errorf(CodeAnalysis, err, "Daily analysis failed: %v", err)
	}
	if !n.Rated() {
		return &Envelope{
			Status:  StatusNoData,
			Type:    NoDataNoFeedback,
			Message: "No feedback found for this date",
			Date:    date,
			Data:    &DailyNoData{Overview: DailyOverview{TotalStudents: in.TotalStudents}},
		}, nil
	}

	meals := analyzer.ComputeMealStats(n)
	overall := analyzer.Mean(n.AllRatings)
	rate := analyzer.ParticipationRate(n.Participants, in.TotalStudents)

	data := &DailyData{
		Overview: DailyOverview{
			TotalStudents:         in.TotalStudents,
			ParticipatingStudents: n.Participants,
			ParticipationRate:     analyzer.Round(rate, 1),
			OverallRating:         analyzer.Round(overall, 2),
		},
		AverageRatingPerMeal: byMeal(func(s feedback.MealSlot) float64 {
			return analyzer.Round(meals[s].Mean, 2)
		}),
		StudentRatingPerMeal: byMeal(func(s feedback.MealSlot) int {
			return meals[s].Participants
		}),
		FeedbackDistributionPerMeal: byMeal(func(s feedback.MealSlot) analyzer.StarDistribution {
			return meals[s].Histogram.Distribution()
		}),
		SentimentAnalysisPerMeal: byMeal(func(s feedback.MealSlot) MealSentiment {
			return mealSentiment(n.Slots[s], meals[s], opts.Limits.MealComments)
		}),
		CommentTopics: analyzer.TopicCounts(n.AllComments),
	}

	findings := opts.Classifier.Scan(n.AllComments)
	ctx := &summaryContext{
		Period:            "DAY",
		Average:           overall,
		Hist:              analyzer.NewHistogram(n.AllRatings),
		Responses:         len(n.AllRatings),
		Meals:             meals,
		Issues:            analyzer.BySeverity(findings.Issues),
		ParticipationRate: rate,
		HasRoster:         in.TotalStudents > 0,
	}
	data.OverallSummary = DailySummary{
		KeyInsights:        keyInsights(ctx, opts.Limits.Insights),
		CriticalActions:    criticalActions(ctx, opts.Limits.Actions),
		PerformanceStatus:  analyzer.PerformanceStatus(overall),
		PerformanceSummary: performanceSummary(ctx),
		CommonIssues:       capFindings(ctx.Issues, opts.Limits.Issues),
		PositiveHighlights: capFindings(findings.Positives, opts.Limits.Highlights),
	}

	return &Envelope{Status: StatusSuccess, Date: date, Data: data}, nil
}

func mealSentiment(series *analyzer.SlotSeries, st analyzer.MealStat, limit int) MealSentiment {
	ms := MealSentiment{
		PositiveFeedback: []string{},
		ImprovementAreas: []string{},
	}
	if st.Count == 0 {
		return ms
	}

	ms.AverageRating = analyzer.Round(st.Mean, 2)
	ms.SentimentScore = analyzer.Round(st.Mean*20, 1)
	ms.TotalComments = st.Comments

	positive := series.NonEmptyComments(func(r int) bool { return r >= 4 })
	negative := series.NonEmptyComments(func(r int) bool { return r <= 2 })
	ms.PositiveFeedback = capComments(positive, limit)
	ms.ImprovementAreas = capComments(negative, limit)
	ms.SentimentCounts = analyzer.CountSentiment(series.Comments)
	return ms
}

func capComments(c []string, n int) []string {
	if len(c) > n {
		c = c[:n]
	}
	if c == nil {
		return []string{}
	}
	return c
}
