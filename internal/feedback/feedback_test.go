package feedback

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMealSlotDisplayName(t *testing.T) {
	tests := []struct {
		slot MealSlot
		want string
	}{
		{Morning, "Breakfast"},
		{Afternoon, "Lunch"},
		{Evening, "Dinner"},
		{Night, "Night Snacks"},
		{MealSlot("brunch"), "brunch"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.slot.DisplayName())
	}
}

func TestParseMealSlot(t *testing.T) {
	s, ok := ParseMealSlot("evening")
	assert.True(t, ok)
	assert.Equal(t, Evening, s)

	_, ok = ParseMealSlot("supper")
	assert.False(t, ok)
}

func TestRecordRated(t *testing.T) {
	rec := Record{Meals: map[MealSlot]*MealEntry{
		Morning: {Comment: "no rating"},
		Night:   nil,
	}}
	assert.False(t, rec.Rated())

	rec.Meals[Evening] = &MealEntry{Rating: Rating(3)}
	assert.True(t, rec.Rated())
}

func TestCalendarDay(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	// 2025-10-13T18:30Z is midnight of 2025-10-14 in IST.
	instant := time.Date(2025, 10, 13, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC), CalendarDay(instant, ist))
	assert.Equal(t, time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC), CalendarDay(instant, nil))

	start := InLocation(time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC), ist)
	assert.True(t, start.Equal(instant))
}

func TestValidate(t *testing.T) {
	day := time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC)
	good := []Record{{
		Date: day, User: "u1",
		Meals: map[MealSlot]*MealEntry{Morning: {Rating: Rating(5)}, Night: {Rating: Rating(1)}},
	}}
	require.NoError(t, Validate(good))

	bad := append(good, Record{
		Date: day, User: "u2",
		Meals: map[MealSlot]*MealEntry{Afternoon: {Rating: Rating(0)}},
	})
	err := Validate(bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRating))

	var ire *InvalidRatingError
	require.ErrorAs(t, err, &ire)
	assert.Equal(t, "u2", ire.User)
	assert.Equal(t, Afternoon, ire.Slot)
	assert.Equal(t, 0, ire.Value)
	assert.Equal(t, "2025-10-14", ire.Date)
}

func TestValidateRating(t *testing.T) {
	for r := MinRating; r <= MaxRating; r++ {
		assert.NoError(t, ValidateRating(r))
	}
	assert.ErrorIs(t, ValidateRating(6), ErrInvalidRating)
	assert.ErrorIs(t, ValidateRating(-1), ErrInvalidRating)
}
