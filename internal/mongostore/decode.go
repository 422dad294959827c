package mongostore

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"github.com/blackwell-systems/messwatch/internal/feedback"
)

type mealDoc struct {
	Rating      bson.RawValue `bson:"rating"`
	Comment     string        `bson:"comment"`
	SubmittedAt *time.Time    `bson:"submittedAt"`
}

type feedbackDoc struct {
	User  bson.RawValue      `bson:"user"`
	Date  time.Time          `bson:"date"`
	Meals map[string]mealDoc `bson:"meals"`
}

// decodeUser accepts an ObjectID or a plain string reference.
func decodeUser(v bson.RawValue) (string, error) {
	switch v.Type {
	case bsontype.ObjectID:
		return v.ObjectID().Hex(), nil
	case bsontype.String:
		return v.StringValue(), nil
	}
	return "", fmt.Errorf("unsupported user reference of type %s", v.Type)
}

// decodeRating returns nil for a missing or null rating. Doubles must hold
// a whole number. Values beyond the int32 range are rejected before the
// int conversion so they cannot wrap into [1,5] on 32-bit platforms.
func decodeRating(v bson.RawValue) (*int, error) {
	switch v.Type {
	case 0, bsontype.Null, bsontype.Undefined:
		return nil, nil
	case bsontype.Int32:
		return feedback.Rating(int(v.Int32())), nil
	case bsontype.Int64:
		n := v.Int64()
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, fmt.Errorf("%w: %d is out of range", feedback.ErrInvalidRating, n)
		}
		return feedback.Rating(int(n)), nil
	case bsontype.Double:
		f := v.Double()
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return nil, fmt.Errorf("%w: %v is not a whole number", feedback.ErrInvalidRating, f)
		}
		if f < math.MinInt32 || f > math.MaxInt32 {
			return nil, fmt.Errorf("%w: %v is out of range", feedback.ErrInvalidRating, f)
		}
		return feedback.Rating(int(f)), nil
	}
	return nil, fmt.Errorf("%w: unsupported type %s", feedback.ErrInvalidRating, v.Type)
}

// toRecord converts a stored document into a Record dated by its calendar
// day in loc.
func toRecord(doc feedbackDoc, loc *time.Location) (feedback.Record, error) {
	user, err := decodeUser(doc.User)
	if err != nil {
		return feedback.Record{}, err
	}
	rec := feedback.Record{
		Date:  feedback.CalendarDay(doc.Date, loc),
		User:  user,
		Meals: make(map[feedback.MealSlot]*feedback.MealEntry, len(doc.Meals)),
	}
	for name, m := range doc.Meals {
		slot, ok := feedback.ParseMealSlot(name)
		if !ok {
			continue
		}
		rating, err := decodeRating(m.Rating)
		if err != nil {
			return feedback.Record{}, fmt.Errorf("%s %s: %w", user, slot, err)
		}
		entry := &feedback.MealEntry{Rating: rating, Comment: strings.TrimSpace(m.Comment)}
		if m.SubmittedAt != nil && !m.SubmittedAt.IsZero() {
			t := *m.SubmittedAt
			entry.SubmittedAt = &t
		}
		rec.Meals[slot] = entry
	}
	return rec, nil
}
