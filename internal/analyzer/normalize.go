package analyzer

import (
	"strings"

	"github.com/blackwell-systems/messwatch/internal/feedback"
)

// Normalize flattens records into per-slot rating and comment series.
//
// Slots without a rating are dropped. A rated slot always contributes to
// both Ratings and Comments so the two stay index-aligned. Records with no
// rated slot do not count toward Participants. Ratings outside [1,5] are
// rejected with a *feedback.InvalidRatingError.
func Normalize(records []feedback.Record) (*Normalized, error) {
	if err := feedback.Validate(records); err != nil {
		return nil, err
	}

	n := &Normalized{
		Slots:   make(map[feedback.MealSlot]*SlotSeries, len(feedback.Slots)),
		Records: len(records),
	}
	for _, slot := range feedback.Slots {
		n.Slots[slot] = &SlotSeries{}
	}

	participants := make(map[string]struct{})
	for _, rec := range records {
		for _, slot := range feedback.Slots {
			entry := rec.Meals[slot]
			if !entry.Rated() {
				continue
			}
			series := n.Slots[slot]
			comment := strings.TrimSpace(entry.Comment)

			series.Ratings = append(series.Ratings, *entry.Rating)
			series.Comments = append(series.Comments, comment)
			if entry.SubmittedAt != nil {
				series.SubmittedAt = append(series.SubmittedAt, *entry.SubmittedAt)
			}

			n.AllRatings = append(n.AllRatings, *entry.Rating)
			if comment != "" {
				n.AllComments = append(n.AllComments, comment)
			}
			participants[rec.User] = struct{}{}
		}
	}
	n.Participants = len(participants)

	return n, nil
}

// NonEmptyComments returns the non-empty comments of the series whose
// aligned rating satisfies keep.
func (s *SlotSeries) NonEmptyComments(keep func(rating int) bool) []string {
	var out []string
	for i, c := range s.Comments {
		if c == "" {
			continue
		}
		if keep == nil || keep(s.Ratings[i]) {
			out = append(out, c)
		}
	}
	return out
}

// Rated reports whether any slot holds a rating.
func (n *Normalized) Rated() bool {
	return len(n.AllRatings) > 0
}
