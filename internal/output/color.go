// Package output provides styled terminal rendering helpers for messwatch.
package output

import "github.com/charmbracelet/lipgloss"

// Palette used by the report renderers.
var (
	ColorPrimary = lipgloss.Color("#64b5f6") // headers
	ColorSuccess = lipgloss.Color("#66bb6a") // good ratings, improvements
	ColorError   = lipgloss.Color("#ef5350") // poor ratings, declines
	ColorWarning = lipgloss.Color("#fff59d") // mixed ratings, alerts
	ColorMuted   = lipgloss.Color("#888888") // secondary text, rules
)

// Shared styles, rebuilt by SetNoColor.
var (
	StyleHeader  lipgloss.Style
	StyleSuccess lipgloss.Style
	StyleError   lipgloss.Style
	StyleWarning lipgloss.Style
	StyleMuted   lipgloss.Style
	StyleBold    lipgloss.Style
	StyleLabel   lipgloss.Style // fixed-width metric label
	StyleValue   lipgloss.Style // fixed-width metric value
)

var noColor bool

func init() {
	SetNoColor(false)
}

// SetNoColor rebuilds the shared styles with or without foreground colors
// and emphasis. Widths are kept either way so columns still line up.
func SetNoColor(disabled bool) {
	noColor = disabled

	fg := func(c lipgloss.Color) lipgloss.Style {
		if disabled {
			return lipgloss.NewStyle()
		}
		return lipgloss.NewStyle().Foreground(c)
	}
	bold := func(st lipgloss.Style) lipgloss.Style {
		return st.Bold(!disabled)
	}

	StyleHeader = bold(fg(ColorPrimary))
	StyleSuccess = fg(ColorSuccess)
	StyleError = fg(ColorError)
	StyleWarning = fg(ColorWarning)
	StyleMuted = fg(ColorMuted)
	StyleBold = bold(lipgloss.NewStyle())
	StyleLabel = lipgloss.NewStyle().Width(26)
	StyleValue = bold(lipgloss.NewStyle()).Width(12)
}

// IsNoColor reports whether SetNoColor(true) is in effect.
func IsNoColor() bool { return noColor }

// RatingStyle picks the style for a 1-5 rating mean: success from 4.0,
// warning from 3.0, error below. Zero means unrated and renders muted.
func RatingStyle(rating float64) lipgloss.Style {
	switch {
	case rating == 0:
		return StyleMuted
	case rating >= 4.0:
		return StyleSuccess
	case rating >= 3.0:
		return StyleWarning
	default:
		return StyleError
	}
}
