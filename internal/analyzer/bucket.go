package analyzer

import (
	"sort"
	"time"

	"github.com/blackwell-systems/messwatch/internal/feedback"
)

const oneDay = 24 * time.Hour

// DateLayout is the key format of day buckets.
const DateLayout = "2006-01-02"

// MonthLayout is the key format of month buckets.
const MonthLayout = "2006-01"

// Weekdays lists weekdays Monday first.
var Weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// midnight truncates t to the UTC midnight of its date.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// sorted returns a copy of records ordered by date then user.
func sorted(records []feedback.Record) []feedback.Record {
	out := make([]feedback.Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].User < out[j].User
	})
	return out
}

// window collects the records dated in [start, end).
func window(key string, records []feedback.Record, start, end time.Time) Bucket {
	b := Bucket{Key: key, Start: start, End: end}
	for _, r := range records {
		d := midnight(r.Date)
		if !d.Before(start) && d.Before(end) {
			b.Records = append(b.Records, r)
		}
	}
	return b
}

// DayBucket returns the single bucket [midnight(ref), midnight(ref)+1d).
func DayBucket(records []feedback.Record, ref time.Time) Bucket {
	start := midnight(ref)
	return window(start.Format(DateLayout), sorted(records), start, start.Add(oneDay))
}

// WeekStart returns the Monday of the ISO week containing t.
func WeekStart(t time.Time) time.Time {
	d := midnight(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// WeekBuckets returns seven consecutive day buckets, Monday to Sunday, for
// the ISO week containing ref.
func WeekBuckets(records []feedback.Record, ref time.Time) []Bucket {
	start := WeekStart(ref)
	return DailyBuckets(records, start, start.AddDate(0, 0, 6))
}

// DailyBuckets returns one bucket per calendar day in [start, end]
// inclusive. Days without records yield empty buckets.
func DailyBuckets(records []feedback.Record, start, end time.Time) []Bucket {
	recs := sorted(records)
	first, last := midnight(start), midnight(end)

	var out []Bucket
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		out = append(out, window(d.Format(DateLayout), recs, d, d.Add(oneDay)))
	}
	return out
}

// Midpoint returns start plus half the whole days between start and end,
// rounded down.
func Midpoint(start, end time.Time) time.Time {
	s := midnight(start)
	days := int(midnight(end).Sub(s) / oneDay)
	return s.AddDate(0, 0, days/2)
}

// SplitAtMidpoint splits [start, end] into period1 [start, mid) and period2
// [mid, end], with mid from Midpoint.
func SplitAtMidpoint(records []feedback.Record, start, end time.Time) (Bucket, Bucket) {
	recs := sorted(records)
	s, e := midnight(start), midnight(end).Add(oneDay)
	mid := Midpoint(start, end)
	return window("period1", recs, s, mid), window("period2", recs, mid, e)
}

// WeekdayBuckets groups records by weekday name, Monday first. Weekdays
// without records are omitted.
func WeekdayBuckets(records []feedback.Record) []Bucket {
	recs := sorted(records)
	groups := make(map[time.Weekday][]feedback.Record)
	for _, r := range recs {
		wd := r.Date.Weekday()
		groups[wd] = append(groups[wd], r)
	}

	var out []Bucket
	for _, wd := range Weekdays {
		if len(groups[wd]) == 0 {
			continue
		}
		out = append(out, Bucket{Key: wd.String(), Records: groups[wd]})
	}
	return out
}

// MonthBuckets groups records by YYYY-MM, ascending.
func MonthBuckets(records []feedback.Record) []Bucket {
	recs := sorted(records)
	var out []Bucket
	for _, r := range recs {
		key := r.Date.Format(MonthLayout)
		if n := len(out); n > 0 && out[n-1].Key == key {
			out[n-1].Records = append(out[n-1].Records, r)
			continue
		}
		start := time.Date(r.Date.Year(), r.Date.Month(), 1, 0, 0, 0, 0, time.UTC)
		out = append(out, Bucket{Key: key, Start: start, End: start.AddDate(0, 1, 0), Records: []feedback.Record{r}})
	}
	return out
}

// TotalRecords sums the record counts of buckets.
func TotalRecords(buckets []Bucket) int {
	n := 0
	for _, b := range buckets {
		n += len(b.Records)
	}
	return n
}
