package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/blackwell-systems/messwatch/internal/analyzer"
	"github.com/blackwell-systems/messwatch/internal/feedback"
	"github.com/blackwell-systems/messwatch/internal/insight"
)

// AnalysisType selects the historical report variant.
type AnalysisType string

const (
	AnalysisComparison AnalysisType = "comparison"
	AnalysisTrend      AnalysisType = "trend"
	AnalysisPattern    AnalysisType = "pattern"
)

// ParseAnalysisType parses an analysis type, defaulting to comparison.
func ParseAnalysisType(s string) (AnalysisType, error) {
	switch t := AnalysisType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return AnalysisComparison, nil
	case AnalysisComparison, AnalysisTrend, AnalysisPattern:
		return t, nil
	}
	return "", fmt.Errorf("unknown analysis type %q", s)
}

// HistoricalInput is everything the historical assembler needs.
type HistoricalInput struct {
	// Start and End bound the window, both inclusive.
	Start         time.Time
	End           time.Time
	Type          AnalysisType
	Records       []feedback.Record
	TotalStudents int
	Options       Options

	// Location is used to read submission hours; UTC when nil.
	Location *time.Location
}

// HistoricalNoData is the data block of a historical no_feedback report.
type HistoricalNoData struct {
	Overview        struct{}       `json:"overview"`
	Insights        []insight.Item `json:"insights"`
	Recommendations []insight.Item `json:"recommendations"`
}

// BuildHistorical assembles the historical report of in.Type over
// [in.Start, in.End].
func BuildHistorical(in HistoricalInput) (*Envelope, error) {
	opts := in.Options.withDefaults()
	if in.Type == "" {
		in.Type = AnalysisComparison
	}
	env := &Envelope{
		StartDate:    in.Start.Format(analyzer.DateLayout),
		EndDate:      in.End.Format(analyzer.DateLayout),
		AnalysisType: string(in.Type),
	}

	buckets := analyzer.DailyBuckets(in.Records, in.Start, in.End)
	var windowed []feedback.Record
	for _, b := range buckets {
		windowed = append(windowed, b.Records...)
	}
	all, err := analyzer.Normalize(windowed)
	if err != nil {
		return nil, Errorf(CodeAnalysis, err, "Historical analysis failed: %v", err)
	}
	if !all.Rated() {
		env.Status = StatusNoData
		env.Type = NoDataNoFeedback
		env.Message = "No feedback data found for this period"
		env.Data = &HistoricalNoData{Insights: []insight.Item{}, Recommendations: []insight.Item{}}
		return env, nil
	}

	var data any
	switch in.Type {
	case AnalysisComparison:
		data, err = buildComparison(in, opts)
	case AnalysisTrend:
		data, err = buildTrend(in, buckets, opts)
	case AnalysisPattern:
		data, err = buildPattern(in, buckets, all, opts)
	default:
		return nil, Errorf(CodeInvalidArgs, nil, "Unknown analysis type: %s", in.Type)
	}
	if err != nil {
		return nil, Errorf(CodeAnalysis, err, "Historical analysis failed: %v", err)
	}

	env.Status = StatusSuccess
	env.Data = data
	return env, nil
}

// PeriodOverview is one side of a comparison.
type PeriodOverview struct {
	StartDate         string  `json:"startDate"`
	EndDate           string  `json:"endDate"`
	OverallRating     float64 `json:"overallRating"`
	ParticipationRate float64 `json:"participationRate"`
}

// ComparisonOverview compares the two halves of the window.
type ComparisonOverview struct {
	Period1       PeriodOverview `json:"period1"`
	Period2       PeriodOverview `json:"period2"`
	OverallChange float64        `json:"overallChange"`
	OverallTrend  string         `json:"overallTrend"`
}

// MealComparison compares one meal across the two periods.
type MealComparison struct {
	Period1Rating    float64 `json:"period1Rating"`
	Period2Rating    float64 `json:"period2Rating"`
	Change           float64 `json:"change"`
	ChangePercentage float64 `json:"changePercentage"`

	// Trend is improved, declined or stable; no_data when either period
	// lacks ratings for the meal.
	Trend string `json:"trend"`
}

// PeriodStats holds the headline numbers of one period.
type PeriodStats struct {
	OverallRating     float64 `json:"overallRating"`
	ParticipationRate float64 `json:"participationRate"`
	TotalFeedbacks    int     `json:"totalFeedbacks"`
	TotalRatings      int     `json:"totalRatings"`
}

// PeriodMeal summarises one meal within a period.
type PeriodMeal struct {
	AverageRating float64 `json:"averageRating"`
	Participants  int     `json:"participants"`
	TotalComments int     `json:"totalComments"`
}

// PeriodDetails is the full breakdown of one period.
type PeriodDetails struct {
	Overview        PeriodStats         `json:"overview"`
	MealPerformance Ordered[PeriodMeal] `json:"mealPerformance"`
}

// ComparisonData is the data block of a comparison report.
type ComparisonData struct {
	Overview        ComparisonOverview      `json:"overview"`
	MealComparisons Ordered[MealComparison] `json:"mealComparisons"`
	Period1Details  PeriodDetails           `json:"period1Details"`
	Period2Details  PeriodDetails           `json:"period2Details"`
	Insights        []insight.Item          `json:"insights"`
	Recommendations []insight.Item          `json:"recommendations"`
}

type periodStat struct {
	norm    *analyzer.Normalized
	meals   map[feedback.MealSlot]analyzer.MealStat
	overall float64
	rate    float64
}

func newPeriodStat(b analyzer.Bucket, totalStudents int) (periodStat, error) {
	n, err := analyzer.Normalize(b.Records)
	if err != nil {
		return periodStat{}, err
	}
	return periodStat{
		norm:    n,
		meals:   analyzer.ComputeMealStats(n),
		overall: analyzer.Mean(n.AllRatings),
		rate:    analyzer.ParticipationRate(n.Participants, totalStudents),
	}, nil
}

func (p periodStat) details() PeriodDetails {
	return PeriodDetails{
		Overview: PeriodStats{
			OverallRating:     analyzer.Round(p.overall, 2),
			ParticipationRate: analyzer.Round(p.rate, 1),
			TotalFeedbacks:    p.norm.Records,
			TotalRatings:      len(p.norm.AllRatings),
		},
		MealPerformance: byMeal(func(s feedback.MealSlot) PeriodMeal {
			st := p.meals[s]
			return PeriodMeal{
				AverageRating: analyzer.Round(st.Mean, 2),
				Participants:  st.Participants,
				TotalComments: st.Comments,
			}
		}),
	}
}

func buildComparison(in HistoricalInput, opts Options) (*ComparisonData, error) {
	b1, b2 := analyzer.SplitAtMidpoint(in.Records, in.Start, in.End)
	p1, err := newPeriodStat(b1, in.TotalStudents)
	if err != nil {
		return nil, err
	}
	p2, err := newPeriodStat(b2, in.TotalStudents)
	if err != nil {
		return nil, err
	}

	mid := analyzer.Midpoint(in.Start, in.End)

	// A period without ratings has no mean to compare against.
	var change float64
	trend := "no_data"
	if len(p1.norm.AllRatings) > 0 && len(p2.norm.AllRatings) > 0 {
		change = p2.overall - p1.overall
		trend = analyzer.ChangeTrend(change)
	}
	data := &ComparisonData{
		Overview: ComparisonOverview{
			Period1: PeriodOverview{
				StartDate:         in.Start.Format(analyzer.DateLayout),
				EndDate:           mid.AddDate(0, 0, -1).Format(analyzer.DateLayout),
				OverallRating:     analyzer.Round(p1.overall, 2),
				ParticipationRate: analyzer.Round(p1.rate, 1),
			},
			Period2: PeriodOverview{
				StartDate:         mid.Format(analyzer.DateLayout),
				EndDate:           in.End.Format(analyzer.DateLayout),
				OverallRating:     analyzer.Round(p2.overall, 2),
				ParticipationRate: analyzer.Round(p2.rate, 1),
			},
			OverallChange: analyzer.Round(change, 2),
			OverallTrend:  trend,
		},
		Period1Details: p1.details(),
		Period2Details: p2.details(),
	}

	ctx := &comparisonContext{OverallChange: change}
	for _, slot := range feedback.Slots {
		r1, r2 := p1.meals[slot], p2.meals[slot]
		mc := MealComparison{
			Period1Rating: analyzer.Round(r1.Mean, 2),
			Period2Rating: analyzer.Round(r2.Mean, 2),
			Trend:         "no_data",
		}
		if r1.Count > 0 && r2.Count > 0 {
			delta := r2.Mean - r1.Mean
			mc.Change = analyzer.Round(delta, 2)
			mc.ChangePercentage = analyzer.Round(delta/r1.Mean*100, 1)
			mc.Trend = analyzer.ChangeTrend(delta)
			ctx.Meals = append(ctx.Meals, mealChange{Slot: slot, Change: delta, Trend: mc.Trend})
		}
		data.MealComparisons.Set(slot.DisplayName(), mc)
	}

	data.Insights = insight.Cap(comparisonInsights.Run(ctx), opts.Limits.Insights)
	data.Recommendations = insight.Cap(insight.Rank(comparisonRecommendations.Run(ctx)), opts.Limits.Recommendations)
	return data, nil
}

// TrendOverview holds the headline numbers of a trend report.
type TrendOverview struct {
	TotalDays             int                `json:"totalDays"`
	DataAvailableDays     int                `json:"dataAvailableDays"`
	OverallTrendDirection analyzer.Direction `json:"overallTrendDirection"`
	OverallSlope          float64            `json:"overallSlope"`
	SlopeDefined          bool               `json:"slopeDefined"`
	AverageRating         float64            `json:"averageRating"`
}

// DailyAverage is one day of the trend series.
type DailyAverage struct {
	Date          string           `json:"date"`
	DayName       string           `json:"dayName"`
	OverallRating float64          `json:"overallRating"`
	MealRatings   Ordered[float64] `json:"mealRatings"`
}

// MealTrendStats describes one meal's trend across the window.
type MealTrendStats struct {
	AverageRating  float64            `json:"averageRating"`
	TrendSlope     float64            `json:"trendSlope"`
	TrendDirection analyzer.Direction `json:"trendDirection"`
	Volatility     float64            `json:"volatility"`
	Consistency    float64            `json:"consistency"`
	HighestRating  float64            `json:"highestRating"`
	LowestRating   float64            `json:"lowestRating"`
	RatingRange    float64            `json:"ratingRange"`
}

// TrendData is the data block of a trend report.
type TrendData struct {
	Overview        TrendOverview           `json:"overview"`
	DailyAverages   Ordered[DailyAverage]   `json:"dailyAverages"`
	TrendAnalysis   Ordered[MealTrendStats] `json:"trendAnalysis"`
	Insights        []insight.Item          `json:"insights"`
	Recommendations []insight.Item          `json:"recommendations"`
}

func buildTrend(in HistoricalInput, buckets []analyzer.Bucket, opts Options) (*TrendData, error) {
	data := &TrendData{}
	dayMeans := make([]float64, 0, len(buckets))
	mealSeries := make(map[feedback.MealSlot][]float64, len(feedback.Slots))

	for _, b := range buckets {
		n, err := analyzer.Normalize(b.Records)
		if err != nil {
			return nil, err
		}
		meals := analyzer.ComputeMealStats(n)
		mean := analyzer.Mean(n.AllRatings)
		dayMeans = append(dayMeans, mean)
		for _, slot := range feedback.Slots {
			mealSeries[slot] = append(mealSeries[slot], meals[slot].Mean)
		}
		data.DailyAverages.Set(b.Key, DailyAverage{
			Date:          b.Key,
			DayName:       b.Start.Weekday().String(),
			OverallRating: analyzer.Round(mean, 2),
			MealRatings: byMeal(func(s feedback.MealSlot) float64 {
				return analyzer.Round(meals[s].Mean, 2)
			}),
		})
	}

	rated := analyzer.NonZero(dayMeans)
	direction, slope, defined := analyzer.SeriesDirection(rated)
	data.Overview = TrendOverview{
		TotalDays:             len(buckets),
		DataAvailableDays:     len(rated),
		OverallTrendDirection: direction,
		OverallSlope:          analyzer.Round(slope, 4),
		SlopeDefined:          defined,
		AverageRating:         analyzer.Round(analyzer.MeanFloat(rated), 2),
	}

	ctx := &trendContext{}
	for _, slot := range feedback.Slots {
		series := analyzer.NonZero(mealSeries[slot])
		st := mealTrendStats(series)
		data.TrendAnalysis.Set(slot.DisplayName(), st)
		if len(series) > 0 {
			ctx.Meals = append(ctx.Meals, mealTrendRow{Slot: slot, Direction: st.TrendDirection, Volatility: analyzer.Volatility(series)})
		}
	}

	data.Insights = insight.Cap(trendInsights.Run(ctx), opts.Limits.Insights)
	data.Recommendations = insight.Cap(insight.Rank(trendRecommendations.Run(ctx)), opts.Limits.Recommendations)
	return data, nil
}

func mealTrendStats(series []float64) MealTrendStats {
	if len(series) == 0 {
		return MealTrendStats{TrendDirection: analyzer.InsufficientData}
	}
	direction, slope, _ := analyzer.SeriesDirection(series)
	hi, lo := analyzer.MaxFloat(series), analyzer.MinFloat(series)
	return MealTrendStats{
		AverageRating:  analyzer.Round(analyzer.MeanFloat(series), 2),
		TrendSlope:     analyzer.Round(slope, 4),
		TrendDirection: direction,
		Volatility:     analyzer.Round(analyzer.Volatility(series), 2),
		Consistency:    analyzer.Round(analyzer.Consistency(series), 1),
		HighestRating:  analyzer.Round(hi, 2),
		LowestRating:   analyzer.Round(lo, 2),
		RatingRange:    analyzer.Round(hi-lo, 2),
	}
}

// MealTime describes when feedback for a meal is submitted.
type MealTime struct {
	AverageHour     float64 `json:"averageHour"`
	SubmissionCount int     `json:"submissionCount"`
	PeakHour        int     `json:"peakHour"`
}

// ParticipationPatterns summarises daily participation rates.
type ParticipationPatterns struct {
	AverageParticipationRate float64 `json:"averageParticipationRate"`
	HighestParticipationRate float64 `json:"highestParticipationRate"`
	LowestParticipationRate  float64 `json:"lowestParticipationRate"`
	ParticipationVariability float64 `json:"participationVariability"`
}

// DetectedPatterns holds the day-of-week detector outcomes.
type DetectedPatterns struct {
	MondayEffect analyzer.Signal `json:"mondayEffect"`
	WeekendDrop  analyzer.Signal `json:"weekendDrop"`
}

// PatternData is the data block of a pattern report.
type PatternData struct {
	DayOfWeekPatterns     Ordered[Ordered[float64]] `json:"dayOfWeekPatterns"`
	MonthlyPatterns       Ordered[Ordered[float64]] `json:"monthlyPatterns"`
	MealTimePatterns      Ordered[MealTime]         `json:"mealTimePatterns"`
	ParticipationPatterns ParticipationPatterns     `json:"participationPatterns"`
	DetectedPatterns      DetectedPatterns          `json:"detectedPatterns"`
	Insights              []insight.Item            `json:"insights"`
	Recommendations       []insight.Item            `json:"recommendations"`
}

// mealAverages returns per-meal means of a bucket, unrounded.
func mealAverages(b analyzer.Bucket) (map[feedback.MealSlot]analyzer.MealStat, error) {
	n, err := analyzer.Normalize(b.Records)
	if err != nil {
		return nil, err
	}
	return analyzer.ComputeMealStats(n), nil
}

func roundedMeals(meals map[feedback.MealSlot]analyzer.MealStat) Ordered[float64] {
	return byMeal(func(s feedback.MealSlot) float64 { return analyzer.Round(meals[s].Mean, 2) })
}

func buildPattern(in HistoricalInput, buckets []analyzer.Bucket, all *analyzer.Normalized, opts Options) (*PatternData, error) {
	data := &PatternData{}
	var windowed []feedback.Record
	for _, b := range buckets {
		windowed = append(windowed, b.Records...)
	}

	ctx := &patternContext{}
	for _, b := range analyzer.WeekdayBuckets(windowed) {
		meals, err := mealAverages(b)
		if err != nil {
			return nil, err
		}
		data.DayOfWeekPatterns.Set(b.Key, roundedMeals(meals))
		ctx.Weekdays = append(ctx.Weekdays, weekdayRow{Day: b.Key, Meals: meals})
	}
	for _, b := range analyzer.MonthBuckets(windowed) {
		meals, err := mealAverages(b)
		if err != nil {
			return nil, err
		}
		data.MonthlyPatterns.Set(b.Key, roundedMeals(meals))
	}

	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	data.MealTimePatterns = byMeal(func(s feedback.MealSlot) MealTime {
		return mealTime(all.Slots[s].SubmittedAt, loc)
	})

	var rates []float64
	for _, b := range buckets {
		if b.Empty() {
			continue
		}
		n, err := analyzer.Normalize(b.Records)
		if err != nil {
			return nil, err
		}
		if n.Participants == 0 {
			continue
		}
		rates = append(rates, analyzer.ParticipationRate(n.Participants, in.TotalStudents))
	}
	data.ParticipationPatterns = ParticipationPatterns{
		AverageParticipationRate: analyzer.Round(analyzer.MeanFloat(rates), 1),
		HighestParticipationRate: analyzer.Round(analyzer.MaxFloat(rates), 1),
		LowestParticipationRate:  analyzer.Round(analyzer.MinFloat(rates), 1),
		ParticipationVariability: analyzer.Round(analyzer.Volatility(rates), 1),
	}
	ctx.Variability = analyzer.Volatility(rates)

	dayMeans, err := analyzer.DayMeans(buckets)
	if err != nil {
		return nil, err
	}
	overall := analyzer.Mean(all.AllRatings)
	ctx.Monday = analyzer.DetectMondayEffect(dayMeans, overall)
	ctx.Weekend = analyzer.DetectWeekendDrop(dayMeans)
	data.DetectedPatterns = DetectedPatterns{
		MondayEffect: ctx.Monday.Rounded(),
		WeekendDrop:  ctx.Weekend.Rounded(),
	}

	data.Insights = insight.Cap(patternInsightRules.Run(ctx), opts.Limits.Insights)
	data.Recommendations = insight.Cap(insight.Rank(patternRecommendationRules.Run(ctx)), opts.Limits.Recommendations)
	return data, nil
}

// mealTime summarises submission hours. The peak hour is the most frequent
// hour, earliest on ties.
func mealTime(submitted []time.Time, loc *time.Location) MealTime {
	if len(submitted) == 0 {
		return MealTime{}
	}
	var counts [24]int
	hours := make([]float64, 0, len(submitted))
	for _, t := range submitted {
		h := t.In(loc).Hour()
		counts[h]++
		hours = append(hours, float64(h))
	}
	peak := 0
	for h := 1; h < len(counts); h++ {
		if counts[h] > counts[peak] {
			peak = h
		}
	}
	return MealTime{
		AverageHour:     analyzer.Round(analyzer.MeanFloat(hours), 1),
		SubmissionCount: len(submitted),
		PeakHour:        peak,
	}
}
