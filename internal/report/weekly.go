package report

import (
	"time"

	"github.com/blackwell-systems/messwatch/internal/analyzer"
	"github.com/blackwell-systems/messwatch/internal/feedback"
	"github.com/blackwell-systems/messwatch/internal/insight"
)

// WeeklyInput is everything the weekly assembler needs.
type WeeklyInput struct {
	// Date is any day of the requested ISO week.
	Date          time.Time
	Records       []feedback.Record
	TotalStudents int
	Options       Options
}

// DayRef points at a single day and its rating.
type DayRef struct {
	Date    string  `json:"date"`
	DayName string  `json:"dayName"`
	Rating  float64 `json:"rating"`
}

// WeeklyOverview holds the headline numbers of a week.
type WeeklyOverview struct {
	WeekStart     string  `json:"weekStart"`
	WeekEnd       string  `json:"weekEnd"`
	TotalStudents int     `json:"totalStudents"`
	AverageRating float64 `json:"averageRating"`

	// AverageParticipation is the mean number of participants per day with
	// feedback.
	AverageParticipation     float64 `json:"averageParticipation"`
	AverageParticipationRate float64 `json:"averageParticipationRate"`

	// TotalFeedbacks sums the daily participant counts.
	TotalFeedbacks int     `json:"totalFeedbacks"`
	TotalRatings   int     `json:"totalRatings"`
	BestDay        *DayRef `json:"bestDay"`
	WorstDay       *DayRef `json:"worstDay"`
}

// MealPerformance summarises one meal on one day.
type MealPerformance struct {
	AverageRating      float64                   `json:"averageRating"`
	Participants       int                       `json:"participants"`
	RatingDistribution analyzer.StarDistribution `json:"ratingDistribution"`
}

// DayBreakdown summarises one day of the week.
type DayBreakdown struct {
	Date                  string                   `json:"date"`
	DayName               string                   `json:"dayName"`
	AverageRating         float64                  `json:"averageRating"`
	ParticipatingStudents int                      `json:"participatingStudents"`
	ParticipationRate     float64                  `json:"participationRate"`
	TotalRatings          int                      `json:"totalRatings"`
	MealPerformance       Ordered[MealPerformance] `json:"mealPerformance"`
}

// MealTrend tracks one meal across the days of the week with feedback.
type MealTrend struct {
	WeeklyAverage        float64 `json:"weeklyAverage"`
	AverageParticipation float64 `json:"averageParticipation"`

	// DailyRatings and DailyParticipation are index-aligned with the days
	// of the daily breakdown; 0 marks a day the meal was not rated.
	DailyRatings       []float64 `json:"dailyRatings"`
	DailyParticipation []int     `json:"dailyParticipation"`

	Trend       analyzer.Direction `json:"trend"`
	TrendSlope  float64            `json:"trendSlope"`
	Consistency float64            `json:"consistency"`
	BestDay     *DayRef            `json:"bestDay"`
	WorstDay    *DayRef            `json:"worstDay"`
}

// DayParticipation is one day's participation.
type DayParticipation struct {
	Date                  string  `json:"date"`
	DayName               string  `json:"dayName"`
	ParticipationRate     float64 `json:"participationRate"`
	ParticipatingStudents int     `json:"participatingStudents"`
}

// ParticipationAnalysis summarises participation across the week.
type ParticipationAnalysis struct {
	DailyParticipation       []DayParticipation `json:"dailyParticipation"`
	AverageParticipationRate float64            `json:"averageParticipationRate"`
	HighestParticipationDay  *DayParticipation  `json:"highestParticipationDay"`
	LowestParticipationDay   *DayParticipation  `json:"lowestParticipationDay"`
}

// WeekdayRef names a weekday and its rating.
type WeekdayRef struct {
	Day    string  `json:"day"`
	Rating float64 `json:"rating"`
}

// DayOfWeekPerformance holds weekday averages.
type DayOfWeekPerformance struct {
	AveragesByDay Ordered[float64] `json:"averagesByDay"`
	BestDay       *WeekdayRef      `json:"bestDay"`
	WorstDay      *WeekdayRef      `json:"worstDay"`
}

// WeekendVsWeekday compares weekend and weekday averages.
type WeekendVsWeekday struct {
	WeekdayAverage float64 `json:"weekdayAverage"`
	WeekendAverage float64 `json:"weekendAverage"`

	// Difference is weekend minus weekday; 0 unless both are present.
	Difference float64 `json:"difference"`
}

// WeeklyPatterns groups day-of-week findings.
type WeeklyPatterns struct {
	DayOfWeekPerformance DayOfWeekPerformance `json:"dayOfWeekPerformance"`
	WeekendVsWeekday     WeekendVsWeekday     `json:"weekendVsWeekday"`
	MondayEffect         analyzer.Signal      `json:"mondayEffect"`
	WeekendDrop          analyzer.Signal      `json:"weekendDrop"`
}

// WeeklyTrend is the trend block of the weekly summary.
type WeeklyTrend struct {
	Direction           analyzer.Direction `json:"direction"`
	Slope               float64            `json:"slope"`
	ConsistencyScore    float64            `json:"consistency_score"`
	ProblematicPatterns []string           `json:"problematic_patterns"`
}

// WeeklySummary is the narrative block of the weekly report.
type WeeklySummary struct {
	KeyInsights        []string           `json:"key_insights"`
	CriticalActions    []string           `json:"critical_actions"`
	PerformanceStatus  string             `json:"performance_status"`
	PerformanceSummary string             `json:"performance_summary"`
	Trend              WeeklyTrend        `json:"trend"`
	CommonIssues       []analyzer.Finding `json:"common_issues"`
}

// WeeklyData is the data block of a successful weekly report.
type WeeklyData struct {
	Overview              WeeklyOverview        `json:"overview"`
	DailyBreakdown        Ordered[DayBreakdown] `json:"dailyBreakdown"`
	MealTrends            Ordered[MealTrend]    `json:"mealTrends"`
	ParticipationAnalysis ParticipationAnalysis `json:"participationAnalysis"`
	WeeklyInsights        []insight.Item        `json:"weeklyInsights"`
	WeeklyAlerts          []insight.Item        `json:"weeklyAlerts"`
	Patterns              WeeklyPatterns        `json:"patterns"`
	WeeklySummary         WeeklySummary         `json:"weeklySummary"`
}

// WeeklyNoData is the data block of a weekly no_feedback report.
type WeeklyNoData struct {
	Overview       WeeklyOverview        `json:"overview"`
	DailyBreakdown Ordered[DayBreakdown] `json:"dailyBreakdown"`
	MealTrends     Ordered[MealTrend]    `json:"mealTrends"`
	WeeklyInsights []insight.Item        `json:"weeklyInsights"`
	WeeklyAlerts   []insight.Item        `json:"weeklyAlerts"`
}

// dayStat is the aggregate of one day bucket with ratings.
type dayStat struct {
	date         time.Time
	norm         *analyzer.Normalized
	meals        map[feedback.MealSlot]analyzer.MealStat
	mean         float64
	participants int
	rate         float64
}

func (d dayStat) key() string     { return d.date.Format(analyzer.DateLayout) }
func (d dayStat) dayName() string { return d.date.Weekday().String() }

func (d dayStat) ref(rating float64) *DayRef {
	return &DayRef{Date: d.key(), DayName: d.dayName(), Rating: analyzer.Round(rating, 2)}
}

// aggregateDays normalises each bucket and keeps the days with ratings.
func aggregateDays(buckets []analyzer.Bucket, totalStudents int) ([]dayStat, error) {
	var days []dayStat
	for _, b := range buckets {
		n, err := analyzer.Normalize(b.Records)
		if err != nil {
			return nil, err
		}
		if !n.Rated() {
			continue
		}
		days = append(days, dayStat{
			date:         b.Start,
			norm:         n,
			meals:        analyzer.ComputeMealStats(n),
			mean:         analyzer.Mean(n.AllRatings),
			participants: n.Participants,
			rate:         analyzer.ParticipationRate(n.Participants, totalStudents),
		})
	}
	return days, nil
}

// BuildWeekly assembles the weekly report for the ISO week containing
// in.Date.
func BuildWeekly(in WeeklyInput) (*Envelope, error) {
	opts := in.Options.withDefaults()
	weekStart := analyzer.WeekStart(in.Date)
	weekEnd := weekStart.AddDate(0, 0, 6)
	startKey, endKey := weekStart.Format(analyzer.DateLayout), weekEnd.Format(analyzer.DateLayout)

	buckets := analyzer.WeekBuckets(in.Records, in.Date)
	days, err := aggregateDays(buckets, in.TotalStudents)
	if err != nil {
		return nil, Errorf(CodeAnalysis, err, "Weekly analysis failed: %v", err)
	}
	if len(days) == 0 {
		return &Envelope{
			Status:    StatusNoData,
			Type:      NoDataNoFeedback,
			Message:   "No feedback data found for this week",
			WeekStart: startKey,
			WeekEnd:   endKey,
			Data: &WeeklyNoData{
				Overview:       WeeklyOverview{WeekStart: startKey, WeekEnd: endKey, TotalStudents: in.TotalStudents},
				WeeklyInsights: []insight.Item{},
				WeeklyAlerts:   []insight.Item{},
			},
		}, nil
	}

	var (
		allRatings   []int
		allComments  []string
		participants []float64
		dayMeans     []analyzer.DayMean
		totalFb      int
	)
	for _, d := range days {
		allRatings = append(allRatings, d.norm.AllRatings...)
		allComments = append(allComments, d.norm.AllComments...)
		participants = append(participants, float64(d.participants))
		dayMeans = append(dayMeans, analyzer.DayMean{Day: d.date.Weekday(), Mean: d.mean})
		totalFb += d.participants
	}
	overall := analyzer.Mean(allRatings)
	avgParticipation := analyzer.MeanFloat(participants)
	avgRate := 0.0
	if in.TotalStudents > 0 {
		avgRate = avgParticipation / float64(in.TotalStudents) * 100
	}

	data := &WeeklyData{
		Overview: WeeklyOverview{
			WeekStart:                startKey,
			WeekEnd:                  endKey,
			TotalStudents:            in.TotalStudents,
			AverageRating:            analyzer.Round(overall, 2),
			AverageParticipation:     analyzer.Round(avgParticipation, 1),
			AverageParticipationRate: analyzer.Round(avgRate, 1),
			TotalFeedbacks:           totalFb,
			TotalRatings:             len(allRatings),
		},
	}
	meanOf := func(d dayStat) (float64, bool) { return d.mean, true }
	if best, v, ok := analyzer.Best(days, meanOf); ok {
		data.Overview.BestDay = best.ref(v)
	}
	if worst, v, ok := analyzer.Worst(days, meanOf); ok {
		data.Overview.WorstDay = worst.ref(v)
	}

	for _, d := range days {
		data.DailyBreakdown.Set(d.key(), dayBreakdown(d))
	}

	trends := make(map[feedback.MealSlot]mealTrendStat, len(feedback.Slots))
	for _, slot := range feedback.Slots {
		mt, st := mealTrend(days, slot)
		trends[slot] = st
		data.MealTrends.Set(slot.DisplayName(), mt)
	}

	data.ParticipationAnalysis = participationAnalysis(days)
	data.Patterns = weeklyPatterns(days, dayMeans, overall)

	wctx := &weeklyContext{
		Average:     overall,
		AverageRate: avgRate,
		HasRoster:   in.TotalStudents > 0,
		Trends:      trends,
	}
	data.WeeklyInsights = insight.Cap(weeklyInsightRules.Run(wctx), opts.Limits.Insights)
	data.WeeklyAlerts = insight.Cap(insight.Rank(weeklyAlertRules.Run(wctx)), opts.Limits.Alerts)

	meanSeries := make([]float64, len(dayMeans))
	for i, dm := range dayMeans {
		meanSeries[i] = dm.Mean
	}
	direction, slope, _ := analyzer.SeriesDirection(meanSeries)

	allNorm := mergeNormalized(days)

	findings := opts.Classifier.Scan(allComments)
	sctx := &summaryContext{
		Period:    "WEEK",
		Average:   overall,
		Hist:      analyzer.NewHistogram(allRatings),
		Responses: len(allRatings),
		Meals:     analyzer.ComputeMealStats(allNorm),
		Issues:    analyzer.BySeverity(findings.Issues),
		Direction: direction,
		DayStdDev: analyzer.SampleStdDev(meanSeries),
		DayCount:  len(meanSeries),
		Monday:    data.Patterns.MondayEffect,
		Weekend:   data.Patterns.WeekendDrop,
	}
	patterns := []string{}
	if sctx.Monday.Detected {
		patterns = append(patterns, "Monday Blues Pattern")
	}
	if sctx.Weekend.Detected {
		patterns = append(patterns, "Weekend Quality Drop")
	}
	data.WeeklySummary = WeeklySummary{
		KeyInsights:        keyInsights(sctx, opts.Limits.Insights),
		CriticalActions:    criticalActions(sctx, opts.Limits.Actions),
		PerformanceStatus:  analyzer.PerformanceStatus(overall),
		PerformanceSummary: performanceSummary(sctx),
		Trend: WeeklyTrend{
			Direction:           direction,
			Slope:               analyzer.Round(slope, 4),
			ConsistencyScore:    analyzer.Round(analyzer.Consistency(meanSeries), 1),
			ProblematicPatterns: patterns,
		},
		CommonIssues: capFindings(sctx.Issues, opts.Limits.Issues),
	}

	return &Envelope{Status: StatusSuccess, WeekStart: startKey, WeekEnd: endKey, Data: data}, nil
}

// mergeNormalized concatenates the per-day series of days.
func mergeNormalized(days []dayStat) *analyzer.Normalized {
	out := &analyzer.Normalized{Slots: make(map[feedback.MealSlot]*analyzer.SlotSeries, len(feedback.Slots))}
	for _, slot := range feedback.Slots {
		out.Slots[slot] = &analyzer.SlotSeries{}
	}
	for _, d := range days {
		for _, slot := range feedback.Slots {
			src, dst := d.norm.Slots[slot], out.Slots[slot]
			dst.Ratings = append(dst.Ratings, src.Ratings...)
			dst.Comments = append(dst.Comments, src.Comments...)
			dst.SubmittedAt = append(dst.SubmittedAt, src.SubmittedAt...)
		}
		out.AllRatings = append(out.AllRatings, d.norm.AllRatings...)
		out.AllComments = append(out.AllComments, d.norm.AllComments...)
		out.Records += d.norm.Records
	}
	return out
}

func dayBreakdown(d dayStat) DayBreakdown {
	return DayBreakdown{
		Date:                  d.key(),
		DayName:               d.dayName(),
		AverageRating:         analyzer.Round(d.mean, 2),
		ParticipatingStudents: d.participants,
		ParticipationRate:     analyzer.Round(d.rate, 1),
		TotalRatings:          len(d.norm.AllRatings),
		MealPerformance: byMeal(func(s feedback.MealSlot) MealPerformance {
			st := d.meals[s]
			return MealPerformance{
				AverageRating:      analyzer.Round(st.Mean, 2),
				Participants:       st.Participants,
				RatingDistribution: st.Histogram.Distribution(),
			}
		}),
	}
}

// mealTrendStat is the unrounded trend of one meal, used by the rules.
type mealTrendStat struct {
	Slot      feedback.MealSlot
	Average   float64
	Direction analyzer.Direction
}

func mealTrend(days []dayStat, slot feedback.MealSlot) (MealTrend, mealTrendStat) {
	mt := MealTrend{
		DailyRatings:       make([]float64, 0, len(days)),
		DailyParticipation: make([]int, 0, len(days)),
	}
	raw := make([]float64, 0, len(days))
	counts := make([]float64, 0, len(days))
	for _, d := range days {
		st := d.meals[slot]
		raw = append(raw, st.Mean)
		counts = append(counts, float64(st.Count))
		mt.DailyRatings = append(mt.DailyRatings, analyzer.Round(st.Mean, 2))
		mt.DailyParticipation = append(mt.DailyParticipation, st.Count)
	}

	rated := analyzer.NonZero(raw)
	avg := analyzer.MeanFloat(rated)
	direction, slope, _ := analyzer.SeriesDirection(rated)

	mt.WeeklyAverage = analyzer.Round(avg, 2)
	mt.AverageParticipation = analyzer.Round(analyzer.MeanFloat(counts), 1)
	mt.Trend = direction
	mt.TrendSlope = analyzer.Round(slope, 4)
	mt.Consistency = analyzer.Round(analyzer.Consistency(rated), 1)

	mealMean := func(d dayStat) (float64, bool) {
		st := d.meals[slot]
		return st.Mean, st.Count > 0
	}
	if best, v, ok := analyzer.Best(days, mealMean); ok {
		mt.BestDay = best.ref(v)
	}
	if worst, v, ok := analyzer.Worst(days, mealMean); ok {
		mt.WorstDay = worst.ref(v)
	}

	return mt, mealTrendStat{Slot: slot, Average: avg, Direction: direction}
}

func participationAnalysis(days []dayStat) ParticipationAnalysis {
	pa := ParticipationAnalysis{DailyParticipation: make([]DayParticipation, 0, len(days))}
	rates := make([]float64, 0, len(days))
	for _, d := range days {
		pa.DailyParticipation = append(pa.DailyParticipation, DayParticipation{
			Date:                  d.key(),
			DayName:               d.dayName(),
			ParticipationRate:     analyzer.Round(d.rate, 1),
			ParticipatingStudents: d.participants,
		})
		rates = append(rates, d.rate)
	}
	pa.AverageParticipationRate = analyzer.Round(analyzer.MeanFloat(rates), 1)

	// Extremes are picked on the unrounded rate.
	idx := make([]int, len(days))
	for i := range idx {
		idx[i] = i
	}
	rateOf := func(i int) (float64, bool) { return days[i].rate, true }
	if hi, _, ok := analyzer.Best(idx, rateOf); ok {
		d := pa.DailyParticipation[hi]
		pa.HighestParticipationDay = &d
	}
	if lo, _, ok := analyzer.Worst(idx, rateOf); ok {
		d := pa.DailyParticipation[lo]
		pa.LowestParticipationDay = &d
	}
	return pa
}

func weeklyPatterns(days []dayStat, dayMeans []analyzer.DayMean, overall float64) WeeklyPatterns {
	var p WeeklyPatterns

	byDay := make(map[time.Weekday][]float64)
	for _, d := range days {
		wd := d.date.Weekday()
		byDay[wd] = append(byDay[wd], d.mean)
	}
	var present []time.Weekday
	for _, wd := range analyzer.Weekdays {
		if len(byDay[wd]) == 0 {
			continue
		}
		present = append(present, wd)
		p.DayOfWeekPerformance.AveragesByDay.Set(wd.String(), analyzer.Round(analyzer.MeanFloat(byDay[wd]), 2))
	}
	dayAvg := func(wd time.Weekday) (float64, bool) { return analyzer.MeanFloat(byDay[wd]), true }
	if best, v, ok := analyzer.Best(present, dayAvg); ok {
		p.DayOfWeekPerformance.BestDay = &WeekdayRef{Day: best.String(), Rating: analyzer.Round(v, 2)}
	}
	if worst, v, ok := analyzer.Worst(present, dayAvg); ok {
		p.DayOfWeekPerformance.WorstDay = &WeekdayRef{Day: worst.String(), Rating: analyzer.Round(v, 2)}
	}

	var weekday, weekend []float64
	for _, dm := range dayMeans {
		if analyzer.Weekend(dm.Day) {
			weekend = append(weekend, dm.Mean)
		} else {
			weekday = append(weekday, dm.Mean)
		}
	}
	p.WeekendVsWeekday.WeekdayAverage = analyzer.Round(analyzer.MeanFloat(weekday), 2)
	p.WeekendVsWeekday.WeekendAverage = analyzer.Round(analyzer.MeanFloat(weekend), 2)
	if len(weekday) > 0 && len(weekend) > 0 {
		p.WeekendVsWeekday.Difference = analyzer.Round(analyzer.MeanFloat(weekend)-analyzer.MeanFloat(weekday), 2)
	}

	p.MondayEffect = analyzer.DetectMondayEffect(dayMeans, overall).Rounded()
	p.WeekendDrop = analyzer.DetectWeekendDrop(dayMeans).Rounded()
	return p
}
