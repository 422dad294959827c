// Package analyzer provides the aggregation core: record normalisation,
// time bucketing, descriptive statistics, qualitative classification and
// day-of-week pattern detection over meal feedback.
package analyzer

import (
	"time"

	"github.com/blackwell-systems/messwatch/internal/feedback"
)

// SlotSeries holds the rated entries of one meal slot.
type SlotSeries struct {
	// Ratings lists every rating in record order.
	Ratings []int

	// Comments is index-aligned with Ratings. A rated entry without a
	// comment contributes an empty string.
	Comments []string

	// SubmittedAt lists submission times for rated entries that have one.
	SubmittedAt []time.Time
}

// Normalized is the flat per-slot view of a set of feedback records.
type Normalized struct {
	// Slots holds one series per meal slot; every slot is present.
	Slots map[feedback.MealSlot]*SlotSeries

	// AllRatings concatenates every slot's ratings.
	AllRatings []int

	// AllComments lists the non-empty comments of rated entries.
	AllComments []string

	// Participants is the number of distinct users with a rated slot.
	Participants int

	// Records is the number of input records.
	Records int
}

// Histogram counts ratings by value; index 0 holds 1-star counts.
type Histogram [5]int

// StarDistribution is the JSON shape of a Histogram.
type StarDistribution struct {
	OneStar   int `json:"1_star"`
	TwoStar   int `json:"2_star"`
	ThreeStar int `json:"3_star"`
	FourStar  int `json:"4_star"`
	FiveStar  int `json:"5_star"`
}

// MealStat summarises one meal slot within a bucket.
type MealStat struct {
	Slot feedback.MealSlot

	// Count is the number of ratings.
	Count int

	// Mean is the unrounded arithmetic mean; 0 when Count is 0.
	Mean float64

	Histogram Histogram

	// Participants equals Count: one rating per user per slot per day.
	Participants int

	// Comments is the number of non-empty comments.
	Comments int
}

// Bucket is a time-windowed grouping of records. End is exclusive.
type Bucket struct {
	Key     string
	Start   time.Time
	End     time.Time
	Records []feedback.Record
}

// Empty reports whether the bucket holds no records.
func (b Bucket) Empty() bool {
	return len(b.Records) == 0
}

// DayMean is the mean rating of a single day bucket.
type DayMean struct {
	Day  time.Weekday
	Mean float64
}

// Signal is the outcome of a threshold-based pattern detector.
type Signal struct {
	Detected bool    `json:"detected"`
	Subject  float64 `json:"subjectAverage"`
	Baseline float64 `json:"baselineAverage"`
	Gap      float64 `json:"gap"`
}

// Finding is a keyword category that fired for a set of comments.
type Finding struct {
	Category string   `json:"category"`
	Trigger  string   `json:"trigger"`
	Severity Severity `json:"severity"`
	Action   string   `json:"action"`
	Mentions int      `json:"mentions"`
}

// Findings groups issue and positive keyword findings.
type Findings struct {
	Issues    []Finding `json:"issues"`
	Positives []Finding `json:"positives"`
}

// SentimentCounts tallies comments by polarity.
type SentimentCounts struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}
