// Package feedback defines the meal-feedback domain model and the data
// source contract the report pipeline reads from.
package feedback

import (
	"context"
	"time"
)

// MealSlot is one of the four daily serving periods.
type MealSlot string

// Meal slots in canonical order.
const (
	Morning   MealSlot = "morning"
	Afternoon MealSlot = "afternoon"
	Evening   MealSlot = "evening"
	Night     MealSlot = "night"
)

// Slots lists every meal slot in canonical order. Iteration over slots
// anywhere in the pipeline follows this order.
var Slots = []MealSlot{Morning, Afternoon, Evening, Night}

var displayNames = map[MealSlot]string{
	Morning:   "Breakfast",
	Afternoon: "Lunch",
	Evening:   "Dinner",
	Night:     "Night Snacks",
}

// DisplayName returns the dashboard label for the slot (e.g. "Breakfast").
func (s MealSlot) DisplayName() string {
	if name, ok := displayNames[s]; ok {
		return name
	}
	return string(s)
}

// Valid reports whether s is one of the four known slots.
func (s MealSlot) Valid() bool {
	_, ok := displayNames[s]
	return ok
}

// ParseMealSlot converts a stored slot name into a MealSlot.
func ParseMealSlot(name string) (MealSlot, bool) {
	s := MealSlot(name)
	return s, s.Valid()
}

// MealEntry is a single user's feedback for one meal slot.
type MealEntry struct {
	// Rating is 1-5; nil means the user did not rate the slot.
	Rating *int `json:"rating,omitempty" yaml:"rating,omitempty"`

	// Comment is free text and may be empty.
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`

	// SubmittedAt is only used for time-of-day pattern analysis.
	SubmittedAt *time.Time `json:"submittedAt,omitempty" yaml:"submitted_at,omitempty"`
}

// Rated reports whether the entry carries a rating.
func (e *MealEntry) Rated() bool {
	return e != nil && e.Rating != nil
}

// Record is one user's feedback for one calendar day.
type Record struct {
	// Date is the calendar day at UTC midnight.
	Date time.Time `json:"date"`

	// User is an opaque user identifier.
	User string `json:"user"`

	// Meals maps each slot to its entry; missing slots were not submitted.
	Meals map[MealSlot]*MealEntry `json:"meals"`
}

// Rated reports whether any slot of the record carries a rating.
func (r Record) Rated() bool {
	for _, slot := range Slots {
		if r.Meals[slot].Rated() {
			return true
		}
	}
	return false
}

// Source is the collaborator the report pipeline reads feedback from.
// Implementations must be safe for concurrent use by a single report run.
type Source interface {
	// FetchFeedback returns every record whose date lies in [start, end).
	FetchFeedback(ctx context.Context, start, end time.Time) ([]Record, error)

	// CountRegisteredUsers returns the number of registered users,
	// optionally excluding administrators.
	CountRegisteredUsers(ctx context.Context, excludingAdmins bool) (int, error)

	// Close releases the underlying connection.
	Close() error
}

// CalendarDay returns the UTC midnight of t's calendar day as observed in loc.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// InLocation returns the instant at which the calendar day begins in loc.
func InLocation(day time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Rating returns a pointer to r, for building entries in code and tests.
func Rating(r int) *int {
	return &r
}
