package feedback

import (
	"errors"
	"fmt"
)

// Rating bounds, inclusive.
const (
	MinRating = 1
	MaxRating = 5
)

// ErrInvalidRating is returned when a stored rating falls outside [1,5].
var ErrInvalidRating = errors.New("invalid rating")

// InvalidRatingError describes the offending entry.
type InvalidRatingError struct {
	User  string
	Date  string
	Slot  MealSlot
	Value int
}

func (e *InvalidRatingError) Error() string {
	return fmt.Sprintf("rating %d for user %q on %s (%s) is outside %d-%d",
		e.Value, e.User, e.Date, e.Slot, MinRating, MaxRating)
}

// Unwrap lets errors.Is match ErrInvalidRating.
func (e *InvalidRatingError) Unwrap() error {
	return ErrInvalidRating
}

// ValidateRating rejects ratings outside [1,5].
func ValidateRating(r int) error {
	if r < MinRating || r > MaxRating {
		return fmt.Errorf("%w: %d", ErrInvalidRating, r)
	}
	return nil
}

// Validate checks every rated entry of the records. The first bad rating is
// returned; ratings are never clamped.
func Validate(records []Record) error {
	for _, rec := range records {
		for _, slot := range Slots {
			entry := rec.Meals[slot]
			if !entry.Rated() {
				continue
			}
			if ValidateRating(*entry.Rating) != nil {
				return &InvalidRatingError{
					User:  rec.User,
					Date:  rec.Date.Format("2006-01-02"),
					Slot:  slot,
					Value: *entry.Rating,
				}
			}
		}
	}
	return nil
}
