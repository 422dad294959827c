package app

import (
	"fmt"
	"io"

	"github.com/blackwell-systems/messwatch/internal/analyzer"
	"github.com/blackwell-systems/messwatch/internal/insight"
	"github.com/blackwell-systems/messwatch/internal/output"
	"github.com/blackwell-systems/messwatch/internal/report"
)

// renderStyled prints a terminal summary of a rendered report value.
func renderStyled(w io.Writer, v any) {
	switch v := v.(type) {
	case *report.ErrorEnvelope:
		fmt.Fprintln(w, output.StyleError.Render(fmt.Sprintf(" %s ", v.Type))+" "+v.Message)
	case *report.Envelope:
		renderEnvelope(w, v)
	}
}

func renderEnvelope(w io.Writer, env *report.Envelope) {
	fmt.Fprintln(w, output.Section(envelopeTitle(env)))
	if env.NoData() {
		fmt.Fprintln(w, " "+output.StyleWarning.Render(env.Message))
		fmt.Fprintln(w)
		return
	}

	switch d := env.Data.(type) {
	case *report.DailyData:
		renderDaily(w, d)
	case *report.WeeklyData:
		renderWeekly(w, d)
	case *report.ComparisonData:
		renderComparison(w, d)
	case *report.TrendData:
		renderTrend(w, d)
	case *report.PatternData:
		renderPattern(w, d)
	}
	fmt.Fprintln(w)
}

func envelopeTitle(env *report.Envelope) string {
	switch {
	case env.Date != "":
		return "Daily report  " + env.Date
	case env.WeekStart != "":
		return fmt.Sprintf("Weekly report  %s .. %s", env.WeekStart, env.WeekEnd)
	}
	kind := env.AnalysisType
	if kind == "" {
		kind = string(report.AnalysisComparison)
	}
	return fmt.Sprintf("Historical %s  %s .. %s", kind, env.StartDate, env.EndDate)
}

func renderDaily(w io.Writer, d *report.DailyData) {
	o := d.Overview
	fmt.Fprintln(w, output.KeyValue("Overall rating", output.Stars(o.OverallRating)))
	fmt.Fprintln(w, output.KeyValue("Participation", fmt.Sprintf("%s  (%d of %d)",
		output.ScoreBar(o.ParticipationRate, 20), o.ParticipatingStudents, o.TotalStudents)))
	fmt.Fprintln(w, output.KeyValue("Status", d.OverallSummary.PerformanceStatus))

	fmt.Fprintln(w, output.Section("Meals"))
	t := output.NewTable("Meal", "Rating", "Raters", "1★", "2★", "3★", "4★", "5★", "Sentiment").AlignRight(2, 3, 4, 5, 6, 7, 8)
	for _, meal := range d.AverageRatingPerMeal.Keys() {
		avg, _ := d.AverageRatingPerMeal.Get(meal)
		raters, _ := d.StudentRatingPerMeal.Get(meal)
		dist, _ := d.FeedbackDistributionPerMeal.Get(meal)
		sent, _ := d.SentimentAnalysisPerMeal.Get(meal)
		t.AddRow(meal, output.Stars(avg), fmt.Sprint(raters),
			fmt.Sprint(dist.OneStar), fmt.Sprint(dist.TwoStar), fmt.Sprint(dist.ThreeStar),
			fmt.Sprint(dist.FourStar), fmt.Sprint(dist.FiveStar),
			fmt.Sprintf("%.1f", sent.SentimentScore))
	}
	fmt.Fprint(w, t.Render())

	fmt.Fprintln(w, output.Section("Summary"))
	fmt.Fprintln(w, " "+d.OverallSummary.PerformanceSummary)
	renderLines(w, "Key insights", "info", d.OverallSummary.KeyInsights)
	renderLines(w, "Critical actions", "critical", d.OverallSummary.CriticalActions)
	renderFindings(w, "Common issues", "negative", d.OverallSummary.CommonIssues)
	renderFindings(w, "Positive highlights", "positive", d.OverallSummary.PositiveHighlights)
}

func renderWeekly(w io.Writer, d *report.WeeklyData) {
	o := d.Overview
	fmt.Fprintln(w, output.KeyValue("Average rating", output.Stars(o.AverageRating)))
	fmt.Fprintln(w, output.KeyValue("Participation", output.ScoreBar(o.AverageParticipationRate, 20)))
	fmt.Fprintln(w, output.KeyValue("Feedbacks / ratings", fmt.Sprintf("%d / %d", o.TotalFeedbacks, o.TotalRatings)))
	if o.BestDay != nil {
		fmt.Fprintln(w, output.KeyValue("Best day", fmt.Sprintf("%s %s (%.2f)", o.BestDay.DayName, o.BestDay.Date, o.BestDay.Rating)))
	}
	if o.WorstDay != nil {
		fmt.Fprintln(w, output.KeyValue("Worst day", fmt.Sprintf("%s %s (%.2f)", o.WorstDay.DayName, o.WorstDay.Date, o.WorstDay.Rating)))
	}

	fmt.Fprintln(w, output.Section("Days"))
	days := output.NewTable("Date", "Day", "Rating", "Students", "Participation").AlignRight(3, 4)
	for _, key := range d.DailyBreakdown.Keys() {
		day, _ := d.DailyBreakdown.Get(key)
		days.AddRow(day.Date, day.DayName, output.Stars(day.AverageRating),
			fmt.Sprint(day.ParticipatingStudents), fmt.Sprintf("%.1f%%", day.ParticipationRate))
	}
	fmt.Fprint(w, days.Render())

	fmt.Fprintln(w, output.Section("Meal trends"))
	meals := output.NewTable("Meal", "Weekly avg", "Trend", "Slope", "Consistency")
	for _, meal := range d.MealTrends.Keys() {
		mt, _ := d.MealTrends.Get(meal)
		meals.AddRow(meal, output.Stars(mt.WeeklyAverage), string(mt.Trend),
			output.TrendArrow(mt.TrendSlope), fmt.Sprintf("%.1f", mt.Consistency))
	}
	fmt.Fprint(w, meals.Render())

	s := d.WeeklySummary
	fmt.Fprintln(w, output.Section("Summary"))
	fmt.Fprintln(w, " "+s.PerformanceSummary)
	fmt.Fprintln(w, output.KeyValue("Trend", fmt.Sprintf("%s  %s", s.Trend.Direction, output.TrendArrow(s.Trend.Slope))))
	fmt.Fprintln(w, output.KeyValue("Consistency", output.ScoreBar(s.Trend.ConsistencyScore, 20)))
	renderItems(w, "Insights", d.WeeklyInsights)
	renderItems(w, "Alerts", d.WeeklyAlerts)
	renderLines(w, "Critical actions", "critical", s.CriticalActions)
	renderLines(w, "Problematic patterns", "warning", s.Trend.ProblematicPatterns)
	renderFindings(w, "Common issues", "negative", s.CommonIssues)
}

func renderComparison(w io.Writer, d *report.ComparisonData) {
	o := d.Overview
	fmt.Fprintln(w, output.KeyValue("Period 1", fmt.Sprintf("%s .. %s  %s", o.Period1.StartDate, o.Period1.EndDate, output.Stars(o.Period1.OverallRating))))
	fmt.Fprintln(w, output.KeyValue("Period 2", fmt.Sprintf("%s .. %s  %s", o.Period2.StartDate, o.Period2.EndDate, output.Stars(o.Period2.OverallRating))))
	fmt.Fprintln(w, output.KeyValue("Change", fmt.Sprintf("%s  %s", output.TrendArrow(o.OverallChange), o.OverallTrend)))

	fmt.Fprintln(w, output.Section("Meals"))
	t := output.NewTable("Meal", "Period 1", "Period 2", "Change", "%", "Trend").AlignRight(1, 2, 4)
	for _, meal := range d.MealComparisons.Keys() {
		mc, _ := d.MealComparisons.Get(meal)
		t.AddRow(meal, fmt.Sprintf("%.2f", mc.Period1Rating), fmt.Sprintf("%.2f", mc.Period2Rating),
			output.TrendArrow(mc.Change), fmt.Sprintf("%.1f", mc.ChangePercentage), mc.Trend)
	}
	fmt.Fprint(w, t.Render())

	renderItems(w, "Insights", d.Insights)
	renderItems(w, "Recommendations", d.Recommendations)
}

func renderTrend(w io.Writer, d *report.TrendData) {
	o := d.Overview
	fmt.Fprintln(w, output.KeyValue("Average rating", output.Stars(o.AverageRating)))
	fmt.Fprintln(w, output.KeyValue("Days with data", fmt.Sprintf("%d of %d", o.DataAvailableDays, o.TotalDays)))
	slope := "n/a"
	if o.SlopeDefined {
		slope = output.TrendArrow(o.OverallSlope)
	}
	fmt.Fprintln(w, output.KeyValue("Direction", fmt.Sprintf("%s  %s", o.OverallTrendDirection, slope)))

	fmt.Fprintln(w, output.Section("Meals"))
	t := output.NewTable("Meal", "Average", "Direction", "Slope", "Volatility", "Range").AlignRight(4)
	for _, meal := range d.TrendAnalysis.Keys() {
		st, _ := d.TrendAnalysis.Get(meal)
		t.AddRow(meal, output.Stars(st.AverageRating), string(st.TrendDirection),
			output.TrendArrow(st.TrendSlope), fmt.Sprintf("%.2f", st.Volatility),
			fmt.Sprintf("%.2f-%.2f", st.LowestRating, st.HighestRating))
	}
	fmt.Fprint(w, t.Render())

	renderItems(w, "Insights", d.Insights)
	renderItems(w, "Recommendations", d.Recommendations)
}

func renderPattern(w io.Writer, d *report.PatternData) {
	fmt.Fprintln(w, output.Section("Day of week"))
	var meals []string
	if days := d.DayOfWeekPatterns.Keys(); len(days) > 0 {
		row, _ := d.DayOfWeekPatterns.Get(days[0])
		meals = row.Keys()
	}
	t := output.NewTable(append([]string{"Day"}, meals...)...)
	for _, day := range d.DayOfWeekPatterns.Keys() {
		row, _ := d.DayOfWeekPatterns.Get(day)
		cells := []string{day}
		for _, meal := range meals {
			v, _ := row.Get(meal)
			cells = append(cells, ratingCell(v))
		}
		t.AddRow(cells...)
	}
	fmt.Fprint(w, t.Render())

	fmt.Fprintln(w, output.Section("Submission times"))
	times := output.NewTable("Meal", "Avg hour", "Peak hour", "Submissions").AlignRight(1, 2, 3)
	for _, meal := range d.MealTimePatterns.Keys() {
		mt, _ := d.MealTimePatterns.Get(meal)
		times.AddRow(meal, fmt.Sprintf("%.1f", mt.AverageHour), fmt.Sprintf("%02d:00", mt.PeakHour), fmt.Sprint(mt.SubmissionCount))
	}
	fmt.Fprint(w, times.Render())

	p := d.ParticipationPatterns
	fmt.Fprintln(w, output.Section("Participation"))
	fmt.Fprintln(w, output.KeyValue("Average", output.ScoreBar(p.AverageParticipationRate, 20)))
	fmt.Fprintln(w, output.KeyValue("Range", fmt.Sprintf("%.1f%% - %.1f%%", p.LowestParticipationRate, p.HighestParticipationRate)))
	fmt.Fprintln(w, output.KeyValue("Monday effect", signalText(d.DetectedPatterns.MondayEffect)))
	fmt.Fprintln(w, output.KeyValue("Weekend drop", signalText(d.DetectedPatterns.WeekendDrop)))

	renderItems(w, "Insights", d.Insights)
	renderItems(w, "Recommendations", d.Recommendations)
}

func ratingCell(v float64) string {
	if v == 0 {
		return output.StyleMuted.Render("-")
	}
	return output.RatingStyle(v).Render(fmt.Sprintf("%.2f", v))
}

func signalText(s analyzer.Signal) string {
	if !s.Detected {
		return output.StyleMuted.Render("not detected")
	}
	return output.StyleWarning.Render(fmt.Sprintf("detected (gap %.2f)", s.Gap))
}

func renderLines(w io.Writer, title, kind string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintln(w, output.Section(title))
	for _, l := range lines {
		fmt.Fprintln(w, output.Bullet(kind, l))
	}
}

func renderItems(w io.Writer, title string, items []insight.Item) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w, output.Section(title))
	for _, it := range items {
		text := it.Text()
		if it.Meal != "" {
			text = it.Meal + ": " + text
		}
		if it.Priority != 0 {
			text += output.StyleMuted.Render(" [" + it.Priority.String() + "]")
		}
		fmt.Fprintln(w, output.Bullet(string(it.Type), text))
	}
}

func renderFindings(w io.Writer, title, kind string, findings []analyzer.Finding) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintln(w, output.Section(title))
	for _, f := range findings {
		text := fmt.Sprintf("%s %s", f.Label(), output.StyleMuted.Render(fmt.Sprintf("(%s, %d)", f.Severity, f.Mentions)))
		fmt.Fprintln(w, output.Bullet(kind, text))
	}
}
