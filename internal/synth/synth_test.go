package synth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/messwatch/internal/feedback"
)

func opts() Options {
	return Options{
		Start:    time.Date(2025, 10, 12, 0, 0, 0, 0, time.UTC),
		Days:     7,
		Students: 40,
		Admins:   2,
		Seed:     42,
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a, err := Generate(opts())
	require.NoError(t, err)
	b, err := Generate(opts())
	require.NoError(t, err)

	assert.Equal(t, a, b)

	o := opts()
	o.Seed = 7
	c, err := Generate(o)
	require.NoError(t, err)
	assert.NotEqual(t, a.Users[0].ID, c.Users[0].ID)
}

func TestGenerate_Shape(t *testing.T) {
	ds, err := Generate(opts())
	require.NoError(t, err)

	require.Len(t, ds.Users, 42)
	admins := 0
	ids := map[string]bool{}
	for _, u := range ds.Users {
		if u.IsAdmin {
			admins++
		}
		assert.False(t, ids[u.ID], "duplicate id %s", u.ID)
		ids[u.ID] = true
	}
	assert.Equal(t, 2, admins)

	require.NotEmpty(t, ds.Records)
	require.NoError(t, feedback.Validate(ds.Records))

	first, last := opts().Start, opts().Start.AddDate(0, 0, 6)
	for _, r := range ds.Records {
		assert.True(t, r.Rated())
		assert.False(t, r.Date.Before(first) || r.Date.After(last), r.Date)
		for slot, e := range r.Meals {
			require.NotNil(t, e.SubmittedAt)
			h := e.SubmittedAt.Hour()
			w := submissionWindow[slot]
			assert.True(t, h >= w[0] && h < w[1], "%s submitted at hour %d", slot, h)
		}
	}
}

func TestGenerate_RejectsEmptyRange(t *testing.T) {
	o := opts()
	o.Days = 0
	_, err := Generate(o)
	assert.Error(t, err)

	o = opts()
	o.Students = 0
	_, err = Generate(o)
	assert.Error(t, err)
}

func TestParticipationBounds(t *testing.T) {
	for _, slot := range feedback.Slots {
		for roll := 1; roll <= 100; roll++ {
			p := participation(slot, roll)
			assert.GreaterOrEqual(t, p, 0.1)
			assert.LessOrEqual(t, p, 0.95)
		}
	}
}

func TestSkipsDay(t *testing.T) {
	skipped := 0
	for roll := 1; roll <= 100; roll++ {
		if skipsDay(roll, 0) {
			skipped++
		}
	}
	assert.Equal(t, 15, skipped)
}
