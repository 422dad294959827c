package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/messwatch/internal/feedback"
)

func TestDetectMondayEffect_Fires(t *testing.T) {
	days := []DayMean{
		{time.Monday, 2.0}, {time.Tuesday, 4.0}, {time.Wednesday, 4.0},
		{time.Thursday, 4.0}, {time.Friday, 4.0}, {time.Saturday, 4.0}, {time.Sunday, 4.0},
	}
	var all []float64
	for _, d := range days {
		all = append(all, d.Mean)
	}
	sig := DetectMondayEffect(days, MeanFloat(all))
	assert.True(t, sig.Detected)
	assert.Equal(t, 2.0, sig.Subject)
	assert.Greater(t, sig.Gap, MondayEffectThreshold)
}

func TestDetectMondayEffect_NoMonday(t *testing.T) {
	sig := DetectMondayEffect([]DayMean{{time.Tuesday, 1.0}}, 4.0)
	assert.False(t, sig.Detected)
}

func TestDetectMondayEffect_AtThreshold(t *testing.T) {
	sig := DetectMondayEffect([]DayMean{{time.Monday, 3.7}}, 4.0)
	assert.False(t, sig.Detected, "gap must exceed the threshold")
}

func TestDetectWeekendDrop(t *testing.T) {
	days := []DayMean{{time.Friday, 4.0}, {time.Saturday, 3.5}, {time.Sunday, 3.6}}
	sig := DetectWeekendDrop(days)
	assert.True(t, sig.Detected)
	assert.InDelta(t, 0.45, sig.Gap, 1e-9)

	sig = DetectWeekendDrop([]DayMean{{time.Friday, 4.0}, {time.Saturday, 3.9}})
	assert.False(t, sig.Detected)

	sig = DetectWeekendDrop([]DayMean{{time.Saturday, 1.0}})
	assert.False(t, sig.Detected)
}

func TestDayMeans_SkipsEmptyDays(t *testing.T) {
	records := []feedback.Record{
		rated("2025-10-13", "u1", 2),
		rated("2025-10-15", "u1", 4),
		rated("2025-10-15", "u2", 5),
	}
	means, err := DayMeans(WeekBuckets(records, day("2025-10-13")))
	require.NoError(t, err)
	require.Len(t, means, 2)
	assert.Equal(t, time.Monday, means[0].Day)
	assert.Equal(t, 2.0, means[0].Mean)
	assert.Equal(t, time.Wednesday, means[1].Day)
	assert.Equal(t, 4.5, means[1].Mean)
}
