package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/messwatch/internal/feedback"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func rec(date, user string, meals map[feedback.MealSlot]*feedback.MealEntry) feedback.Record {
	return feedback.Record{Date: day(date), User: user, Meals: meals}
}

func entry(rating int, comment string) *feedback.MealEntry {
	return &feedback.MealEntry{Rating: feedback.Rating(rating), Comment: comment}
}

func breakfastDay() []feedback.Record {
	return []feedback.Record{
		rec("2025-10-14", "u1", map[feedback.MealSlot]*feedback.MealEntry{feedback.Morning: entry(5, "delicious")}),
		rec("2025-10-14", "u2", map[feedback.MealSlot]*feedback.MealEntry{feedback.Morning: entry(3, "")}),
		rec("2025-10-14", "u3", map[feedback.MealSlot]*feedback.MealEntry{feedback.Morning: entry(1, "cold food")}),
	}
}

func TestNormalize_AlignsCommentsWithRatings(t *testing.T) {
	n, err := Normalize(breakfastDay())
	require.NoError(t, err)

	s := n.Slots[feedback.Morning]
	assert.Equal(t, []int{5, 3, 1}, s.Ratings)
	assert.Equal(t, []string{"delicious", "", "cold food"}, s.Comments)
	assert.Equal(t, []string{"delicious", "cold food"}, n.AllComments)
	assert.Equal(t, 3, n.Participants)

	for _, slot := range feedback.Slots {
		assert.Len(t, n.Slots[slot].Comments, len(n.Slots[slot].Ratings), slot)
	}
}

func TestNormalize_UnratedRecordsDoNotParticipate(t *testing.T) {
	records := []feedback.Record{
		rec("2025-10-14", "u1", map[feedback.MealSlot]*feedback.MealEntry{
			feedback.Morning: {Comment: "no rating given"},
		}),
		rec("2025-10-14", "u2", map[feedback.MealSlot]*feedback.MealEntry{feedback.Evening: entry(4, "")}),
	}
	n, err := Normalize(records)
	require.NoError(t, err)
	assert.Equal(t, 1, n.Participants)
	assert.Equal(t, 2, n.Records)
	assert.Empty(t, n.Slots[feedback.Morning].Ratings)
}

func TestNormalize_RejectsOutOfRangeRating(t *testing.T) {
	records := []feedback.Record{
		rec("2025-10-14", "u1", map[feedback.MealSlot]*feedback.MealEntry{feedback.Night: entry(6, "")}),
	}
	_, err := Normalize(records)
	require.Error(t, err)
	assert.ErrorIs(t, err, feedback.ErrInvalidRating)
}

func TestComputeMealStats_BreakfastScenario(t *testing.T) {
	n, err := Normalize(breakfastDay())
	require.NoError(t, err)

	st := ComputeMealStats(n)
	b := st[feedback.Morning]
	assert.Equal(t, 3, b.Count)
	assert.InDelta(t, 3.0, b.Mean, 1e-9)
	assert.Equal(t, StarDistribution{OneStar: 1, ThreeStar: 1, FiveStar: 1}, b.Histogram.Distribution())
	assert.Equal(t, 2, b.Comments)

	lunch := st[feedback.Afternoon]
	assert.Zero(t, lunch.Count)
	assert.Zero(t, lunch.Mean)
}

func TestHistogram_SumsToCount(t *testing.T) {
	ratings := []int{1, 2, 2, 3, 4, 4, 4, 5, 5}
	h := NewHistogram(ratings)
	assert.Equal(t, len(ratings), h.Total())
	assert.InDelta(t, float64(30)/float64(9), Mean(ratings), 1e-9)
	assert.InDelta(t, 100*5.0/9.0, h.Share(func(r int) bool { return r >= 4 }), 1e-9)
}

func TestParticipationRate(t *testing.T) {
	assert.Zero(t, ParticipationRate(5, 0))
	assert.InDelta(t, 50.0, ParticipationRate(5, 10), 1e-9)
	// A stale registered-user count is reported as is.
	assert.InDelta(t, 120.0, ParticipationRate(12, 10), 1e-9)
}

func TestTrendSlope(t *testing.T) {
	slope, ok := TrendSlope([]float64{3.0, 3.2, 3.5, 3.9})
	require.True(t, ok)
	assert.Greater(t, slope, 0.0)
	assert.True(t, SlopeDirection(slope).Upward())

	slope, ok = TrendSlope([]float64{4.5, 4.0, 3.1})
	require.True(t, ok)
	assert.Less(t, slope, 0.0)

	_, ok = TrendSlope([]float64{4.0})
	assert.False(t, ok)

	dir, _, ok := SeriesDirection(nil)
	assert.False(t, ok)
	assert.Equal(t, InsufficientData, dir)
}

func TestTrendSlope_ExactLine(t *testing.T) {
	slope, ok := TrendSlope([]float64{1, 2, 3, 4, 5})
	require.True(t, ok)
	assert.InDelta(t, 1.0, slope, 1e-12)
}

func TestNonZeroExcludesEmptyBuckets(t *testing.T) {
	assert.Equal(t, []float64{3, 4}, NonZero([]float64{0, 3, 0, 4, 0}))
}

func TestConsistencyAndVolatility(t *testing.T) {
	assert.Zero(t, Consistency([]float64{4.0}))
	assert.InDelta(t, 100.0, Consistency([]float64{4, 4, 4}), 1e-9)
	// sample variance of {2,4} is 2 -> 100 - 50
	assert.InDelta(t, 50.0, Consistency([]float64{2, 4}), 1e-9)
	assert.Zero(t, Consistency([]float64{1, 5, 1, 5}))
	assert.InDelta(t, 1.0, Volatility([]float64{2, 4}), 1e-9)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 3.67, Round(3.6666, 2))
	assert.Equal(t, 66.7, Round(66.66666, 1))
	assert.Equal(t, 0.0333, Round(0.03333333, 4))
}

func TestRatingBand(t *testing.T) {
	cases := map[float64]Band{
		4.0: BandExcellent, 3.99: BandGood, 3.5: BandGood, 3.0: BandAverage,
		2.0: BandPoor, 1.99: BandCritical,
	}
	for mean, want := range cases {
		assert.Equal(t, want, RatingBand(mean), "mean %.2f", mean)
	}
}

func TestSlopeDirection(t *testing.T) {
	cases := map[float64]Direction{
		0.06: StronglyImproving, 0.05: Improving, 0.03: Improving, 0.02: Stable,
		0: Stable, -0.02: Declining, -0.05: StronglyDeclining, -0.2: StronglyDeclining,
	}
	for slope, want := range cases {
		assert.Equal(t, want, SlopeDirection(slope), "slope %.2f", slope)
	}
}

func TestPerformanceStatusAndChangeTrend(t *testing.T) {
	assert.Equal(t, "EXCELLENT", PerformanceStatus(4.2))
	assert.Equal(t, "GOOD", PerformanceStatus(3.5))
	assert.Equal(t, "NEEDS IMPROVEMENT", PerformanceStatus(2.5))
	assert.Equal(t, "CRITICAL", PerformanceStatus(2.49))

	assert.Equal(t, "improved", ChangeTrend(1.0))
	assert.Equal(t, "declined", ChangeTrend(-0.2))
	assert.Equal(t, "stable", ChangeTrend(0.1))
}

func TestBest_EarliestKeyWinsTies(t *testing.T) {
	values := map[string]float64{"a": 4.0, "b": 4.0, "c": 2.0, "d": 2.0, "e": 0}
	keys := []string{"a", "b", "c", "d", "e"}
	get := func(k string) (float64, bool) { v := values[k]; return v, v > 0 }

	k, v, ok := Best(keys, get)
	require.True(t, ok)
	assert.Equal(t, "a", k)
	assert.Equal(t, 4.0, v)

	k, _, ok = Worst(keys, get)
	require.True(t, ok)
	assert.Equal(t, "c", k)

	_, _, ok = Best(nil, get)
	assert.False(t, ok)
}
