package fixture

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/messwatch/internal/feedback"
)

const sample = `
users:
  - id: u1
    name: Asha
  - id: w1
    name: Warden
    isAdmin: true
feedback:
  - date: 2025-10-14
    user: u1
    meals:
      morning:
        rating: 5
        comment: delicious
        submittedAt: 2025-10-14T09:15:00Z
      night:
        comment: skipped
`

func TestParse(t *testing.T) {
	fx, err := Parse([]byte(sample))
	require.NoError(t, err)

	require.Len(t, fx.Users, 2)
	assert.True(t, fx.Users[1].IsAdmin)

	require.Len(t, fx.Records, 1)
	r := fx.Records[0]
	assert.Equal(t, time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC), r.Date)
	assert.Equal(t, 5, *r.Meals[feedback.Morning].Rating)
	require.NotNil(t, r.Meals[feedback.Morning].SubmittedAt)
	assert.Equal(t, 9, r.Meals[feedback.Morning].SubmittedAt.Hour())
	assert.Nil(t, r.Meals[feedback.Night].Rating)
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"bad date":     "feedback:\n  - date: 14-10-2025\n    user: u1\n",
		"missing user": "feedback:\n  - date: 2025-10-14\n",
		"unknown slot": "feedback:\n  - date: 2025-10-14\n    user: u1\n    meals:\n      brunch: {rating: 3}\n",
		"bad yaml":     "users: [",
		"missing id":   "users:\n  - name: nobody\n",
	}
	for name, doc := range cases {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestParse_RejectsOutOfRangeRating(t *testing.T) {
	_, err := Parse([]byte("feedback:\n  - date: 2025-10-14\n    user: u1\n    meals:\n      evening: {rating: 0}\n"))
	assert.ErrorIs(t, err, feedback.ErrInvalidRating)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	fx, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, fx.Records, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
