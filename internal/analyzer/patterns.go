package analyzer

import "time"

const (
	// MondayEffectThreshold is how far Monday must trail the overall mean.
	MondayEffectThreshold = 0.3

	// WeekendDropThreshold is how far weekends must trail weekdays.
	WeekendDropThreshold = 0.25
)

// Weekend reports whether wd is Saturday or Sunday.
func Weekend(wd time.Weekday) bool {
	return wd == time.Saturday || wd == time.Sunday
}

// DayMeans returns the rating mean of each non-empty day bucket, in bucket
// order. Buckets without ratings are skipped.
func DayMeans(buckets []Bucket) ([]DayMean, error) {
	var out []DayMean
	for _, b := range buckets {
		if b.Empty() {
			continue
		}
		n, err := Normalize(b.Records)
		if err != nil {
			return nil, err
		}
		if !n.Rated() {
			continue
		}
		out = append(out, DayMean{Day: b.Start.Weekday(), Mean: Mean(n.AllRatings)})
	}
	return out, nil
}

func splitMeans(days []DayMean, pick func(time.Weekday) bool) (in, out []float64) {
	for _, d := range days {
		if d.Mean <= 0 {
			continue
		}
		if pick(d.Day) {
			in = append(in, d.Mean)
		} else {
			out = append(out, d.Mean)
		}
	}
	return in, out
}

// DetectMondayEffect fires when the mean of Monday means is more than
// MondayEffectThreshold below overall.
func DetectMondayEffect(days []DayMean, overall float64) Signal {
	mondays, _ := splitMeans(days, func(wd time.Weekday) bool { return wd == time.Monday })
	if len(mondays) == 0 {
		return Signal{Baseline: overall}
	}
	subject := MeanFloat(mondays)
	gap := overall - subject
	return Signal{
		Detected: gap > MondayEffectThreshold,
		Subject:  subject,
		Baseline: overall,
		Gap:      gap,
	}
}

// DetectWeekendDrop fires when the mean of weekend day means is more than
// WeekendDropThreshold below the mean of weekday day means.
func DetectWeekendDrop(days []DayMean) Signal {
	weekend, weekday := splitMeans(days, Weekend)
	if len(weekend) == 0 || len(weekday) == 0 {
		return Signal{Subject: MeanFloat(weekend), Baseline: MeanFloat(weekday)}
	}
	subject, baseline := MeanFloat(weekend), MeanFloat(weekday)
	gap := baseline - subject
	return Signal{
		Detected: gap > WeekendDropThreshold,
		Subject:  subject,
		Baseline: baseline,
		Gap:      gap,
	}
}

// Rounded returns s with display rounding applied.
func (s Signal) Rounded() Signal {
	return Signal{
		Detected: s.Detected,
		Subject:  Round(s.Subject, 2),
		Baseline: Round(s.Baseline, 2),
		Gap:      Round(s.Gap, 2),
	}
}
