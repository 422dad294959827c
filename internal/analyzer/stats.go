package analyzer

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/blackwell-systems/messwatch/internal/feedback"
)

// Mean returns the arithmetic mean of ratings, or 0 when empty.
func Mean(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	m, err := stats.Mean(stats.LoadRawData(ratings))
	if err != nil {
		return 0
	}
	return m
}

// MeanFloat returns the arithmetic mean of xs, or 0 when empty.
func MeanFloat(xs []float64) float64 {
	m, err := stats.Mean(xs)
	if err != nil {
		return 0
	}
	return m
}

// MaxFloat returns the largest value in xs, or 0 when empty.
func MaxFloat(xs []float64) float64 {
	m, err := stats.Max(xs)
	if err != nil {
		return 0
	}
	return m
}

// MinFloat returns the smallest value in xs, or 0 when empty.
func MinFloat(xs []float64) float64 {
	m, err := stats.Min(xs)
	if err != nil {
		return 0
	}
	return m
}

// NewHistogram counts ratings by value. Values outside [1,5] are ignored;
// they are rejected earlier by Normalize.
func NewHistogram(ratings []int) Histogram {
	var h Histogram
	for _, r := range ratings {
		if r >= feedback.MinRating && r <= feedback.MaxRating {
			h[r-1]++
		}
	}
	return h
}

// Total returns the number of counted ratings.
func (h Histogram) Total() int {
	n := 0
	for _, c := range h {
		n += c
	}
	return n
}

// Distribution returns the JSON shape of h.
func (h Histogram) Distribution() StarDistribution {
	return StarDistribution{
		OneStar:   h[0],
		TwoStar:   h[1],
		ThreeStar: h[2],
		FourStar:  h[3],
		FiveStar:  h[4],
	}
}

// Share returns the percentage of ratings whose value satisfies keep.
func (h Histogram) Share(keep func(rating int) bool) float64 {
	total := h.Total()
	if total == 0 {
		return 0
	}
	n := 0
	for i, c := range h {
		if keep(i + 1) {
			n += c
		}
	}
	return float64(n) / float64(total) * 100
}

// ParticipationRate returns participating/total*100, or 0 when total is not
// positive. The result is not clamped: a stale total can push it past 100.
func ParticipationRate(participating, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(participating) / float64(total) * 100
}

// NonZero drops zero entries, which mark buckets without ratings.
func NonZero(series []float64) []float64 {
	out := make([]float64, 0, len(series))
	for _, v := range series {
		if v > 0 {
			out = append(out, v)
		}
	}
	return out
}

// TrendSlope returns the ordinary-least-squares slope of series against its
// index. defined is false when fewer than two points are given.
func TrendSlope(series []float64) (slope float64, defined bool) {
	if len(series) < 2 {
		return 0, false
	}
	xs := make([]float64, len(series))
	for i := range xs {
		xs[i] = float64(i)
	}
	_, slope = stat.LinearRegression(xs, series, nil, false)
	return slope, true
}

// Consistency returns max(0, 100 - sampleVariance*25), or 0 with fewer than
// two points.
func Consistency(series []float64) float64 {
	if len(series) < 2 {
		return 0
	}
	v, err := stats.SampleVariance(series)
	if err != nil {
		return 0
	}
	return math.Max(0, 100-v*25)
}

// Volatility returns the population standard deviation of series.
func Volatility(series []float64) float64 {
	sd, err := stats.StandardDeviationPopulation(series)
	if err != nil {
		return 0
	}
	return sd
}

// SampleStdDev returns the sample standard deviation, or 0 with fewer than
// two points.
func SampleStdDev(series []float64) float64 {
	if len(series) < 2 {
		return 0
	}
	sd, err := stats.StandardDeviationSample(series)
	if err != nil {
		return 0
	}
	return sd
}

// ComputeMealStats summarises every slot of n, including unrated ones.
func ComputeMealStats(n *Normalized) map[feedback.MealSlot]MealStat {
	out := make(map[feedback.MealSlot]MealStat, len(feedback.Slots))
	for _, slot := range feedback.Slots {
		series := n.Slots[slot]
		st := MealStat{Slot: slot}
		if series != nil {
			st.Count = len(series.Ratings)
			st.Mean = Mean(series.Ratings)
			st.Histogram = NewHistogram(series.Ratings)
			st.Participants = st.Count
			st.Comments = len(series.NonEmptyComments(nil))
		}
		out[slot] = st
	}
	return out
}

// Round rounds x half away from zero to the given number of decimal places.
func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
