package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/blackwell-systems/messwatch/internal/analyzer"
	"github.com/blackwell-systems/messwatch/internal/feedback"
	"github.com/blackwell-systems/messwatch/internal/insight"
)

type mealChange struct {
	Slot   feedback.MealSlot
	Change float64
	Trend  string
}

type comparisonContext struct {
	OverallChange float64

	// Meals holds the meals rated in both periods, in slot order.
	Meals []mealChange
}

func overallShift(c *comparisonContext) []insight.Item {
	switch {
	case c.OverallChange > 0.2:
		return []insight.Item{{Type: insight.KindPositive, Message: fmt.Sprintf("Significant overall improvement: +%.1f stars", c.OverallChange)}}
	case c.OverallChange < -0.2:
		return []insight.Item{{Type: insight.KindNegative, Message: fmt.Sprintf("Overall decline: %.1f stars", c.OverallChange)}}
	}
	return nil
}

func changedMeals(c *comparisonContext) []insight.Item {
	var up, down []string
	for _, m := range c.Meals {
		switch m.Trend {
		case "improved":
			up = append(up, m.Slot.DisplayName())
		case "declined":
			down = append(down, m.Slot.DisplayName())
		}
	}
	var out []insight.Item
	if len(up) > 0 {
		out = append(out, insight.Item{Type: insight.KindPositive, Message: "Improved meals: " + strings.Join(up, ", ")})
	}
	if len(down) > 0 {
		out = append(out, insight.Item{Type: insight.KindNegative, Message: "Declined meals: " + strings.Join(down, ", ")})
	}
	return out
}

func mealChangeActions(c *comparisonContext) []insight.Item {
	var out []insight.Item
	for _, m := range c.Meals {
		name := m.Slot.DisplayName()
		switch {
		case m.Trend == "declined" && m.Change < -0.3:
			out = append(out, insight.Item{
				Priority: insight.PriorityHigh,
				Meal:     name,
				Action:   fmt.Sprintf("Urgent review needed for %s: rating dropped %.1f stars", name, math.Abs(m.Change)),
			})
		case m.Trend == "improved" && m.Change > 0.3:
			out = append(out, insight.Item{
				Priority: insight.PriorityMedium,
				Meal:     name,
				Action:   fmt.Sprintf("Replicate success factors from the %s improvement (+%.1f stars)", name, m.Change),
			})
		}
	}
	return out
}

type mealTrendRow struct {
	Slot       feedback.MealSlot
	Direction  analyzer.Direction
	Volatility float64
}

type trendContext struct {
	// Meals holds the meals with at least one rated day, in slot order.
	Meals []mealTrendRow
}

func trendDirections(c *trendContext) []insight.Item {
	var up, down, volatile []string
	for _, m := range c.Meals {
		switch {
		case m.Direction.Upward():
			up = append(up, m.Slot.DisplayName())
		case m.Direction.Downward():
			down = append(down, m.Slot.DisplayName())
		}
		if m.Volatility > 0.5 {
			volatile = append(volatile, m.Slot.DisplayName())
		}
	}
	var out []insight.Item
	if len(up) > 0 {
		out = append(out, insight.Item{Type: insight.KindPositive, Message: "Consistently improving: " + strings.Join(up, ", ")})
	}
	if len(down) > 0 {
		out = append(out, insight.Item{Type: insight.KindNegative, Message: "Declining trends: " + strings.Join(down, ", ")})
	}
	if len(volatile) > 0 {
		out = append(out, insight.Item{Type: insight.KindWarning, Message: "Inconsistent quality: " + strings.Join(volatile, ", ")})
	}
	return out
}

func trendActions(c *trendContext) []insight.Item {
	var out []insight.Item
	for _, m := range c.Meals {
		name := m.Slot.DisplayName()
		switch {
		case m.Direction == analyzer.StronglyDeclining:
			out = append(out, insight.Item{
				Priority: insight.PriorityCritical,
				Meal:     name,
				Action:   fmt.Sprintf("Immediate intervention required for %s: strong declining trend", name),
			})
		case m.Volatility > 0.6:
			out = append(out, insight.Item{
				Priority: insight.PriorityMedium,
				Meal:     name,
				Action:   fmt.Sprintf("Improve consistency for %s: high quality variation detected", name),
			})
		}
	}
	return out
}

type weekdayRow struct {
	Day   string
	Meals map[feedback.MealSlot]analyzer.MealStat
}

// average is the mean of the rated meal averages of the weekday.
func (w weekdayRow) average() (float64, bool) {
	var means []float64
	for _, slot := range feedback.Slots {
		if st := w.Meals[slot]; st.Count > 0 {
			means = append(means, st.Mean)
		}
	}
	return analyzer.MeanFloat(means), len(means) > 0
}

type patternContext struct {
	// Weekdays holds weekdays with feedback, Monday first.
	Weekdays    []weekdayRow
	Variability float64
	Monday      analyzer.Signal
	Weekend     analyzer.Signal
}

func weekdayExtremes(c *patternContext) []insight.Item {
	avg := func(w weekdayRow) (float64, bool) { return w.average() }
	best, hi, ok := analyzer.Best(c.Weekdays, avg)
	if !ok {
		return nil
	}
	worst, lo, _ := analyzer.Worst(c.Weekdays, avg)
	return []insight.Item{
		{Type: insight.KindInfo, Message: fmt.Sprintf("Best day: %s (%.1f)", best.Day, hi)},
		{Type: insight.KindInfo, Message: fmt.Sprintf("Challenging day: %s (%.1f)", worst.Day, lo)},
	}
}

func detectedPatternInsights(c *patternContext) []insight.Item {
	var out []insight.Item
	if c.Monday.Detected {
		out = append(out, insight.Item{Type: insight.KindWarning, Message: fmt.Sprintf("Monday effect: Mondays average %.1f against %.1f overall", c.Monday.Subject, c.Monday.Baseline)})
	}
	if c.Weekend.Detected {
		out = append(out, insight.Item{Type: insight.KindWarning, Message: fmt.Sprintf("Weekend drop: weekends average %.1f against %.1f on weekdays", c.Weekend.Subject, c.Weekend.Baseline)})
	}
	return out
}

func participationSpread(c *patternContext) []insight.Item {
	if c.Variability <= 15 {
		return nil
	}
	return []insight.Item{{Type: insight.KindWarning, Message: "High participation variability detected"}}
}

func weekdayFocus(c *patternContext) []insight.Item {
	var out []insight.Item
	for _, w := range c.Weekdays {
		var poor []string
		for _, slot := range feedback.Slots {
			if st := w.Meals[slot]; st.Count > 0 && st.Mean < 3.0 {
				poor = append(poor, slot.DisplayName())
			}
		}
		if len(poor) > 0 {
			out = append(out, insight.Item{
				Priority: insight.PriorityMedium,
				Action:   fmt.Sprintf("Focus on %s %s preparation", w.Day, strings.Join(poor, ", ")),
			})
		}
	}
	return out
}

func detectedPatternActions(c *patternContext) []insight.Item {
	var out []insight.Item
	if c.Monday.Detected {
		out = append(out, insight.Item{Priority: insight.PriorityHigh, Action: "Implement a Sunday evening prep checklist and Monday morning quality verification"})
	}
	if c.Weekend.Detected {
		out = append(out, insight.Item{Priority: insight.PriorityHigh, Action: "Review weekend staffing levels and set weekend quality standards"})
	}
	return out
}

var (
	comparisonInsights        = insight.NewEngine[comparisonContext](overallShift, changedMeals)
	comparisonRecommendations = insight.NewEngine[comparisonContext](mealChangeActions)

	trendInsights        = insight.NewEngine[trendContext](trendDirections)
	trendRecommendations = insight.NewEngine[trendContext](trendActions)

	patternInsightRules        = insight.NewEngine[patternContext](weekdayExtremes, detectedPatternInsights, participationSpread)
	patternRecommendationRules = insight.NewEngine[patternContext](detectedPatternActions, weekdayFocus)
)
