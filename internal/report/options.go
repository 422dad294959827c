package report

import "github.com/blackwell-systems/messwatch/internal/analyzer"

// Limits caps the narrative lists of a report.
type Limits struct {
	Insights        int
	Alerts          int
	Recommendations int
	Actions         int
	Issues          int
	Highlights      int
	MealComments    int
}

// Options tunes report assembly.
type Options struct {
	Limits     Limits
	Classifier analyzer.Classifier
}

// DefaultLimits returns the standard caps.
func DefaultLimits() Limits {
	return Limits{
		Insights:        4,
		Alerts:          5,
		Recommendations: 5,
		Actions:         4,
		Issues:          5,
		Highlights:      3,
		MealComments:    2,
	}
}

// DefaultOptions returns presence-mode classification with the standard
// caps.
func DefaultOptions() Options {
	return Options{
		Limits:     DefaultLimits(),
		Classifier: analyzer.Classifier{Mode: analyzer.ModePresence},
	}
}

// withDefaults fills unset limits from DefaultLimits.
func (o Options) withDefaults() Options {
	d := DefaultLimits()
	fill := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&o.Limits.Insights, d.Insights)
	fill(&o.Limits.Alerts, d.Alerts)
	fill(&o.Limits.Recommendations, d.Recommendations)
	fill(&o.Limits.Actions, d.Actions)
	fill(&o.Limits.Issues, d.Issues)
	fill(&o.Limits.Highlights, d.Highlights)
	fill(&o.Limits.MealComments, d.MealComments)
	if o.Classifier.Mode == "" {
		o.Classifier.Mode = analyzer.ModePresence
	}
	return o
}
