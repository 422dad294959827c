package output

import (
	"fmt"
	"math"
	"strings"
)

// ScoreBar renders a visual progress bar for a 0-100 score such as a
// participation rate or consistency score.
// Example: "████████░░ 80%"
func ScoreBar(score float64, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := int((score / 100.0) * float64(width))
	filled = min(width, max(0, filled))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	style := StyleError
	switch {
	case score >= 70:
		style = StyleSuccess
	case score >= 40:
		style = StyleWarning
	}
	return fmt.Sprintf("%s %s", style.Render(bar), StyleMuted.Render(fmt.Sprintf("%.1f%%", score)))
}

// Stars renders a 1-5 rating mean as rounded stars plus the value.
// Example: "★★★☆☆ 3.20"
func Stars(rating float64) string {
	if rating == 0 {
		return StyleMuted.Render("no ratings")
	}
	n := int(math.Round(rating))
	n = min(5, max(0, n))
	stars := strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
	return fmt.Sprintf("%s %s", RatingStyle(rating).Render(stars), StyleMuted.Render(fmt.Sprintf("%.2f", rating)))
}

// TrendArrow returns a styled trend indicator for a rating delta.
// Positive delta shows an up arrow, negative shows down, zero shows a dash.
func TrendArrow(delta float64) string {
	switch {
	case delta > 0:
		return StyleSuccess.Render(fmt.Sprintf("▲ +%.2f", delta))
	case delta < 0:
		return StyleError.Render(fmt.Sprintf("▼ %.2f", delta))
	}
	return StyleMuted.Render("─")
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}

// Bullet renders one narrative line with a marker styled by kind
// (positive, negative, warning, critical or info).
func Bullet(kind, text string) string {
	switch kind {
	case "positive":
		return " " + StyleSuccess.Render("+") + " " + text
	case "negative", "critical":
		return " " + StyleError.Render("!") + " " + text
	case "warning":
		return " " + StyleWarning.Render("~") + " " + text
	}
	return " " + StyleMuted.Render("·") + " " + text
}

// KeyValue renders an aligned label and value.
func KeyValue(label, value string) string {
	return " " + StyleLabel.Render(label) + value
}
