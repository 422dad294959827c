package report

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/messwatch/internal/analyzer"
	"github.com/blackwell-systems/messwatch/internal/feedback"
	"github.com/blackwell-systems/messwatch/internal/insight"
)

// weeklyContext feeds the weekly insight and alert rules.
type weeklyContext struct {
	Average     float64
	AverageRate float64
	HasRoster   bool
	Trends      map[feedback.MealSlot]mealTrendStat
}

// ratedTrends returns the trends of meals rated during the week, in slot
// order.
func (c *weeklyContext) ratedTrends() []mealTrendStat {
	var out []mealTrendStat
	for _, slot := range feedback.Slots {
		if t, ok := c.Trends[slot]; ok && t.Average > 0 {
			out = append(out, t)
		}
	}
	return out
}

func weekBand(c *weeklyContext) []insight.Item {
	switch {
	case c.Average >= 4.0:
		return []insight.Item{{Type: insight.KindPositive, Message: fmt.Sprintf("Excellent week! Average rating: %.1f", c.Average), Impact: insight.ImpactHigh}}
	case c.Average >= 3.5:
		return []insight.Item{{Type: insight.KindPositive, Message: fmt.Sprintf("Good week overall. Average rating: %.1f", c.Average), Impact: insight.ImpactMedium}}
	default:
		return []insight.Item{{Type: insight.KindNegative, Message: fmt.Sprintf("Week needs improvement. Average rating: %.1f", c.Average), Impact: insight.ImpactHigh}}
	}
}

func weekMealExtremes(c *weeklyContext) []insight.Item {
	rated := c.ratedTrends()
	avg := func(t mealTrendStat) (float64, bool) { return t.Average, true }

	var out []insight.Item
	if best, v, ok := analyzer.Best(rated, avg); ok {
		out = append(out, insight.Item{
			Type:    insight.KindPositive,
			Message: fmt.Sprintf("Best performing meal: %s (%.1f)", best.Slot.DisplayName(), v),
			Impact:  insight.ImpactMedium,
		})
	}
	if worst, v, ok := analyzer.Worst(rated, avg); ok && v < 3.5 {
		out = append(out, insight.Item{
			Type:    insight.KindNegative,
			Message: fmt.Sprintf("Needs attention: %s (%.1f)", worst.Slot.DisplayName(), v),
			Impact:  insight.ImpactHigh,
		})
	}
	return out
}

func weekMealDirections(c *weeklyContext) []insight.Item {
	var up, down []string
	for _, t := range c.ratedTrends() {
		switch {
		case t.Direction.Upward():
			up = append(up, t.Slot.DisplayName())
		case t.Direction.Downward():
			down = append(down, t.Slot.DisplayName())
		}
	}
	var out []insight.Item
	if len(up) > 0 {
		out = append(out, insight.Item{Type: insight.KindPositive, Message: "Improving meals: " + strings.Join(up, ", "), Impact: insight.ImpactMedium})
	}
	if len(down) > 0 {
		out = append(out, insight.Item{Type: insight.KindWarning, Message: "Declining meals: " + strings.Join(down, ", "), Impact: insight.ImpactHigh})
	}
	return out
}

func weekMealAlerts(c *weeklyContext) []insight.Item {
	var out []insight.Item
	for _, t := range c.ratedTrends() {
		name := t.Slot.DisplayName()
		switch {
		case t.Average < 3.0:
			out = append(out, insight.Item{
				Type:    insight.KindCritical,
				Meal:    name,
				Message: fmt.Sprintf("%s consistently poor this week (%.1f)", name, t.Average),
				Action:  "Urgent review of preparation process required",
			})
		case t.Average < 3.5:
			out = append(out, insight.Item{
				Type:    insight.KindWarning,
				Meal:    name,
				Message: fmt.Sprintf("%s below expectations (%.1f)", name, t.Average),
				Action:  "Review and improve preparation",
			})
		}
	}
	return out
}

func weekParticipationAlert(c *weeklyContext) []insight.Item {
	if !c.HasRoster || c.AverageRate >= 70 {
		return nil
	}
	return []insight.Item{{
		Type:    insight.KindWarning,
		Message: fmt.Sprintf("Low weekly participation: %.1f%%", c.AverageRate),
		Action:  "Investigate timing and food availability",
	}}
}

var (
	weeklyInsightRules = insight.NewEngine[weeklyContext](weekBand, weekMealExtremes, weekMealDirections)
	weeklyAlertRules   = insight.NewEngine[weeklyContext](weekMealAlerts, weekParticipationAlert)
)
