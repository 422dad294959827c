package report

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/messwatch/internal/analyzer"
	"github.com/blackwell-systems/messwatch/internal/feedback"
	"github.com/blackwell-systems/messwatch/internal/insight"
)

// summaryContext feeds the overall-summary rules shared by the daily and
// weekly reports.
type summaryContext struct {
	// Period is "DAY" or "WEEK".
	Period    string
	Average   float64
	Hist      analyzer.Histogram
	Responses int
	Meals     map[feedback.MealSlot]analyzer.MealStat

	// Issues are keyword findings, most severe first.
	Issues []analyzer.Finding

	ParticipationRate float64
	HasRoster         bool

	// Weekly only.
	Direction analyzer.Direction
	DayStdDev float64
	DayCount  int
	Monday    analyzer.Signal
	Weekend   analyzer.Signal
}

func (c *summaryContext) positiveShare() float64 {
	return c.Hist.Share(func(r int) bool { return r >= 4 })
}

func (c *summaryContext) poorShare() float64 {
	return c.Hist.Share(func(r int) bool { return r <= 2 })
}

// mealHealth splits rated meals into struggling and thriving, in slot
// order. A meal struggles below 3.0 or with more than 30% poor ratings; it
// thrives at 3.8 or above with under 15% poor ratings.
func mealHealth(meals map[feedback.MealSlot]analyzer.MealStat) (struggling, thriving []analyzer.MealStat) {
	for _, slot := range feedback.Slots {
		st, ok := meals[slot]
		if !ok || st.Count == 0 {
			continue
		}
		poor := st.Histogram.Share(func(r int) bool { return r <= 2 })
		switch {
		case st.Mean < 3.0 || poor > 30:
			struggling = append(struggling, st)
		case st.Mean >= 3.8 && poor < 15:
			thriving = append(thriving, st)
		}
	}
	return struggling, thriving
}

func mealList(stats []analyzer.MealStat) string {
	parts := make([]string, len(stats))
	for i, st := range stats {
		parts[i] = fmt.Sprintf("%s (avg: %.1f)", st.Slot.DisplayName(), st.Mean)
	}
	return strings.Join(parts, ", ")
}

func bandInsight(c *summaryContext) []insight.Item {
	var msg string
	switch {
	case c.Average >= 4.0:
		msg = fmt.Sprintf("EXCELLENT %s: %.1f/5 average with %.0f%% positive feedback", c.Period, c.Average, c.positiveShare())
	case c.Average >= 3.5:
		msg = fmt.Sprintf("GOOD %s: %.1f/5 average shows solid performance with room to improve", c.Period, c.Average)
	case c.Average >= 3.0:
		msg = fmt.Sprintf("MIXED %s: %.1f/5 average indicates inconsistent quality", c.Period, c.Average)
	default:
		msg = fmt.Sprintf("CRITICAL %s: %.1f/5 average with %.0f%% poor ratings, immediate intervention required", c.Period, c.Average, c.poorShare())
	}
	return []insight.Item{{Message: msg}}
}

func trendInsight(c *summaryContext) []insight.Item {
	switch {
	case c.Direction == "" || c.Direction == analyzer.InsufficientData:
		return nil
	case c.Direction.Upward():
		return []insight.Item{{Message: "POSITIVE TREND: quality improving through the week"}}
	case c.Direction.Downward():
		return []insight.Item{{Message: "CONCERNING TREND: quality declining through the week, investigate causes"}}
	case c.DayCount >= 3 && c.DayStdDev > 0.5:
		return []insight.Item{{Message: fmt.Sprintf("INCONSISTENT WEEK: high daily variation (%.1f std dev), focus on standardization", c.DayStdDev)}}
	}
	return nil
}

func patternInsights(c *summaryContext) []insight.Item {
	var out []insight.Item
	if c.Monday.Detected {
		out = append(out, insight.Item{Message: fmt.Sprintf("MONDAY PROBLEM: Monday averages %.1f against %.1f overall, check weekend prep", c.Monday.Subject, c.Monday.Baseline)})
	}
	if c.Weekend.Detected {
		out = append(out, insight.Item{Message: fmt.Sprintf("WEEKEND CHALLENGE: weekends average %.1f against %.1f on weekdays", c.Weekend.Subject, c.Weekend.Baseline)})
	}
	return out
}

func mealSpotlight(c *summaryContext) []insight.Item {
	struggling, thriving := mealHealth(c.Meals)
	switch {
	case len(struggling) > 0:
		return []insight.Item{{Message: fmt.Sprintf("MEAL ALERTS: %s need immediate review", mealList(struggling))}}
	case len(thriving) > 0:
		return []insight.Item{{Message: fmt.Sprintf("MEAL SUCCESSES: %s performing excellently", mealList(thriving))}}
	}
	return nil
}

func topIssue(c *summaryContext) []insight.Item {
	if len(c.Issues) == 0 {
		return nil
	}
	f := c.Issues[0]
	return []insight.Item{{Message: fmt.Sprintf("TOP ISSUE: %s complaints (%q, %s severity)", f.Category, f.Trigger, f.Severity)}}
}

func lowParticipation(c *summaryContext) []insight.Item {
	if !c.HasRoster || c.ParticipationRate >= 50 {
		return nil
	}
	return []insight.Item{{Message: fmt.Sprintf("LOW PARTICIPATION: only %.1f%% of students left feedback", c.ParticipationRate)}}
}

func bandActions(c *summaryContext) []insight.Item {
	var texts []string
	var p insight.Priority
	switch {
	case c.Average < 3.0:
		p = insight.PriorityCritical
		texts = []string{
			"Schedule an emergency kitchen staff meeting",
			"Implement daily quality monitoring for the coming week",
			"Conduct an immediate supplier quality audit",
		}
	case c.Average < 3.5:
		p = insight.PriorityHigh
		texts = []string{
			"Establish a menu review process with student representatives",
			"Add mid-service quality check protocols",
			"Run staff training on consistency standards",
		}
	}
	out := make([]insight.Item, 0, len(texts))
	for _, t := range texts {
		out = append(out, insight.Item{Action: t, Priority: p})
	}
	return out
}

func patternActions(c *summaryContext) []insight.Item {
	var out []insight.Item
	if c.Monday.Detected {
		out = append(out, insight.Item{Priority: insight.PriorityMedium, Action: "Implement a Sunday evening prep checklist and Monday morning quality verification"})
	}
	if c.Weekend.Detected {
		out = append(out, insight.Item{Priority: insight.PriorityMedium, Action: "Review weekend staffing levels and set weekend quality standards"})
	}
	return out
}

func issueActions(c *summaryContext) []insight.Item {
	var out []insight.Item
	for _, f := range c.Issues {
		switch f.Severity {
		case analyzer.SeverityCritical:
			out = append(out, insight.Item{Priority: insight.PriorityCritical, Action: f.Action})
		case analyzer.SeverityHigh:
			out = append(out, insight.Item{Priority: insight.PriorityHigh, Action: f.Action})
		}
	}
	return out
}

func worstMealFocus(c *summaryContext) []insight.Item {
	struggling, _ := mealHealth(c.Meals)
	if len(struggling) == 0 {
		return nil
	}
	return []insight.Item{{
		Priority: insight.PriorityHigh,
		Meal:     struggling[0].Slot.DisplayName(),
		Action:   fmt.Sprintf("Priority focus on %s preparation and service", struggling[0].Slot.DisplayName()),
	}}
}

var (
	summaryInsights = insight.NewEngine[summaryContext](
		bandInsight, trendInsight, patternInsights, mealSpotlight, topIssue, lowParticipation,
	)
	summaryActions = insight.NewEngine[summaryContext](
		bandActions, issueActions, worstMealFocus, patternActions,
	)
)

var maintenanceActions = []string{
	"Maintain current quality standards",
	"Continue regular performance monitoring",
	"Explore menu variety enhancements",
}

// keyInsights returns the capped key-insight lines for c.
func keyInsights(c *summaryContext, limit int) []string {
	return insight.CapStrings(insight.Messages(summaryInsights.Run(c)), limit)
}

// criticalActions returns the capped, most urgent actions for c, falling
// back to maintenance actions when nothing needs attention.
func criticalActions(c *summaryContext, limit int) []string {
	actions := insight.Messages(insight.Rank(summaryActions.Run(c)))
	if len(actions) == 0 {
		actions = append(actions, maintenanceActions...)
	}
	return insight.CapStrings(actions, limit)
}

// performanceSummary renders the one-line status summary.
func performanceSummary(c *summaryContext) string {
	label := "Day"
	if c.Period == "WEEK" {
		label = "Week"
	}
	parts := []string{fmt.Sprintf("%s Status: %s", label, analyzer.PerformanceStatus(c.Average))}
	if c.Direction != "" {
		parts = append(parts, "Trend: "+strings.ToUpper(string(c.Direction)))
	}
	parts = append(parts,
		fmt.Sprintf("Average: %.1f/5", c.Average),
		fmt.Sprintf("Total Responses: %d", c.Responses),
		fmt.Sprintf("%.0f%% positive, %.0f%% poor", c.positiveShare(), c.poorShare()),
	)
	return strings.Join(parts, " | ")
}

// capFindings returns at most n findings, never nil.
func capFindings(fs []analyzer.Finding, n int) []analyzer.Finding {
	if len(fs) > n {
		fs = fs[:n]
	}
	if fs == nil {
		return []analyzer.Finding{}
	}
	return fs
}
