package analyzer

import (
	"encoding/json"
	"fmt"
)

// Band is a qualitative label for a rating mean.
type Band string

const (
	BandExcellent Band = "excellent"
	BandGood      Band = "good"
	BandAverage   Band = "average"
	BandPoor      Band = "poor"
	BandCritical  Band = "critical"
)

// RatingBand maps a rating mean to its band. Cutoffs are evaluated top-down.
func RatingBand(mean float64) Band {
	switch {
	case mean >= 4.0:
		return BandExcellent
	case mean >= 3.5:
		return BandGood
	case mean >= 3.0:
		return BandAverage
	case mean >= 2.0:
		return BandPoor
	default:
		return BandCritical
	}
}

// Direction is a qualitative label for a trend slope.
type Direction string

const (
	StronglyImproving Direction = "strongly_improving"
	Improving         Direction = "improving"
	Stable            Direction = "stable"
	Declining         Direction = "declining"
	StronglyDeclining Direction = "strongly_declining"
	InsufficientData  Direction = "insufficient_data"
)

// SlopeDirection maps a trend slope to its direction.
func SlopeDirection(slope float64) Direction {
	switch {
	case slope > 0.05:
		return StronglyImproving
	case slope > 0.02:
		return Improving
	case slope > -0.02:
		return Stable
	case slope > -0.05:
		return Declining
	default:
		return StronglyDeclining
	}
}

// SeriesDirection classifies the slope of series, or InsufficientData when
// the slope is undefined.
func SeriesDirection(series []float64) (Direction, float64, bool) {
	slope, ok := TrendSlope(series)
	if !ok {
		return InsufficientData, 0, false
	}
	return SlopeDirection(slope), slope, true
}

// Upward reports whether d is an improving direction.
func (d Direction) Upward() bool {
	return d == Improving || d == StronglyImproving
}

// Downward reports whether d is a declining direction.
func (d Direction) Downward() bool {
	return d == Declining || d == StronglyDeclining
}

// PerformanceStatus returns the summary status label for a rating mean.
func PerformanceStatus(mean float64) string {
	switch {
	case mean >= 4.0:
		return "EXCELLENT"
	case mean >= 3.5:
		return "GOOD"
	case mean >= 2.5:
		return "NEEDS IMPROVEMENT"
	default:
		return "CRITICAL"
	}
}

// ChangeTrend labels a change between two rating means.
func ChangeTrend(delta float64) string {
	switch {
	case delta > 0.1:
		return "improved"
	case delta < -0.1:
		return "declined"
	default:
		return "stable"
	}
}

// Severity ranks keyword findings.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityLabels = map[Severity]string{
	SeverityNone:     "none",
	SeverityLow:      "low",
	SeverityMedium:   "medium",
	SeverityHigh:     "high",
	SeverityCritical: "critical",
}

// String returns the severity label.
func (s Severity) String() string {
	if l, ok := severityLabels[s]; ok {
		return l
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// MarshalJSON encodes the severity as its label.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a severity label.
func (s *Severity) UnmarshalJSON(b []byte) error {
	var label string
	if err := json.Unmarshal(b, &label); err != nil {
		return err
	}
	for k, v := range severityLabels {
		if v == label {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", label)
}
