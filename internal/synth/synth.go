// Package synth generates deterministic demo feedback for seeding a store.
package synth

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/blackwell-systems/messwatch/internal/feedback"
	"github.com/blackwell-systems/messwatch/internal/store"
)

// Options controls the generated dataset.
type Options struct {
	// Start is the first calendar day generated.
	Start    time.Time
	Days     int
	Students int
	Admins   int
	Seed     int64

	// Location places submission times; UTC when nil.
	Location *time.Location
}

// Dataset is a generated set of users and their feedback.
type Dataset struct {
	Users   []store.User
	Records []feedback.Record
}

var baseParticipation = map[feedback.MealSlot]float64{
	feedback.Morning:   0.75,
	feedback.Afternoon: 0.90,
	feedback.Evening:   0.85,
	feedback.Night:     0.50,
}

// mealBias nudges a slot's ratings up or down.
var mealBias = map[feedback.MealSlot]float64{
	feedback.Morning:   0.1,
	feedback.Afternoon: -0.1,
	feedback.Evening:   0,
	feedback.Night:     -0.2,
}

// dayBias nudges a weekday's ratings up or down.
var dayBias = map[time.Weekday]float64{
	time.Sunday:    0,
	time.Monday:    -0.15,
	time.Tuesday:   0.1,
	time.Wednesday: -0.1,
	time.Thursday:  -0.2,
	time.Friday:    0.15,
	time.Saturday:  -0.05,
}

// submissionWindow is the [start, end) hour range of a slot.
var submissionWindow = map[feedback.MealSlot][2]int{
	feedback.Morning:   {9, 11},
	feedback.Afternoon: {13, 15},
	feedback.Evening:   {19, 21},
	feedback.Night:     {22, 23},
}

var commentPool = map[int][]string{
	5: {
		"Excellent taste! Really enjoyed it",
		"Perfect seasoning and fresh ingredients",
		"Delicious and well-prepared",
		"Amazing food quality today",
		"Superb quality, chef did great job",
	},
	4: {
		"Good taste, quite satisfied",
		"Well cooked and flavorful",
		"Tasty and fresh",
		"Nice variety, enjoyed the meal",
		"Quick service today",
	},
	3: {
		"Average taste, okay meal",
		"Nothing special but edible",
		"Could be better",
		"Standard meal, no complaints",
		"Okay taste, room for improvement",
	},
	2: {
		"Poor seasoning, too bland",
		"Food was cold when served",
		"Small portion, not filling",
		"Vegetables were stale",
		"Serving was late again",
	},
	1: {
		"Very poor quality",
		"Dirty plates, unhygienic service",
		"Food was ice cold and hard",
		"Stale bread, very hard",
		"Tasteless and overcooked",
	},
}

// Generate builds a dataset. The same options always yield the same data.
func Generate(opts Options) (*Dataset, error) {
	if opts.Days <= 0 {
		return nil, fmt.Errorf("days must be positive, got %d", opts.Days)
	}
	if opts.Students <= 0 {
		return nil, fmt.Errorf("students must be positive, got %d", opts.Students)
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	start := feedback.CalendarDay(opts.Start, time.UTC)
	rng := rand.New(rand.NewSource(opts.Seed))

	ds := &Dataset{}
	newID := func() (string, error) {
		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			return "", fmt.Errorf("generating user id: %w", err)
		}
		return id.String(), nil
	}

	for i := 1; i <= opts.Admins; i++ {
		id, err := newID()
		if err != nil {
			return nil, err
		}
		ds.Users = append(ds.Users, store.User{
			ID:        id,
			Name:      fmt.Sprintf("Warden %d", i),
			Email:     fmt.Sprintf("warden%d@mess.local", i),
			IsAdmin:   true,
			CreatedAt: start,
		})
	}
	students := make([]store.User, 0, opts.Students)
	for i := 1; i <= opts.Students; i++ {
		id, err := newID()
		if err != nil {
			return nil, err
		}
		students = append(students, store.User{
			ID:        id,
			Name:      fmt.Sprintf("Student %03d", i),
			Email:     fmt.Sprintf("student%03d@mess.local", i),
			CreatedAt: start,
		})
	}
	ds.Users = append(ds.Users, students...)

	for d := 0; d < opts.Days; d++ {
		date := start.AddDate(0, 0, d)
		for i, u := range students {
			roll := i + 1
			if skipsDay(roll, d) {
				continue
			}
			rec := feedback.Record{Date: date, User: u.ID, Meals: make(map[feedback.MealSlot]*feedback.MealEntry)}
			for _, slot := range feedback.Slots {
				if rng.Float64() >= participation(slot, roll) {
					continue
				}
				rating := finalRating(rng, slot, date.Weekday())
				at := submittedAt(rng, date, slot, loc)
				rec.Meals[slot] = &feedback.MealEntry{
					Rating:      feedback.Rating(rating),
					Comment:     comment(rng, rating),
					SubmittedAt: &at,
				}
			}
			if rec.Rated() {
				ds.Records = append(ds.Records, rec)
			}
		}
	}
	return ds, nil
}

// skipsDay marks roughly 15% of user-days as absent, stable per roll.
func skipsDay(roll, dayIndex int) bool {
	return (roll+dayIndex*17)%100 < 15
}

func participation(slot feedback.MealSlot, roll int) float64 {
	rate := baseParticipation[slot]
	switch seed := roll % 100; {
	case seed < 20:
		rate += 0.15
	case seed < 40:
		rate += 0.05
	case seed > 80:
		rate -= 0.20
	}
	return min(0.95, max(0.1, rate))
}

func baseRating(rng *rand.Rand) int {
	switch r := rng.Float64(); {
	case r < 0.12:
		return 1
	case r < 0.25:
		return 2
	case r < 0.50:
		return 3
	case r < 0.78:
		return 4
	default:
		return 5
	}
}

// shift moves rating one star in the direction of bias with probability
// |bias|.
func shift(rng *rand.Rand, rating int, bias float64) int {
	switch {
	case bias < 0 && rng.Float64() < -bias:
		return max(feedback.MinRating, rating-1)
	case bias > 0 && rng.Float64() < bias:
		return min(feedback.MaxRating, rating+1)
	}
	return rating
}

func finalRating(rng *rand.Rand, slot feedback.MealSlot, wd time.Weekday) int {
	rating := shift(rng, baseRating(rng), mealBias[slot])
	if rng.Float64() < 0.3 {
		switch bias := dayBias[wd]; {
		case bias < 0:
			rating = max(feedback.MinRating, rating-1)
		case bias > 0:
			rating = min(feedback.MaxRating, rating+1)
		}
	}
	return rating
}

func comment(rng *rand.Rand, rating int) string {
	if rng.Float64() < 0.3 {
		return ""
	}
	pool := commentPool[rating]
	return pool[rng.Intn(len(pool))]
}

func submittedAt(rng *rand.Rand, date time.Time, slot feedback.MealSlot, loc *time.Location) time.Time {
	w := submissionWindow[slot]
	hour := w[0] + rng.Intn(w[1]-w[0])
	minute := rng.Intn(60)
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc)
}
