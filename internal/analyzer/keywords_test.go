package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func categories(fs []Finding) []string {
	var out []string
	for _, f := range fs {
		out = append(out, f.Category)
	}
	return out
}

func TestClassifier_FlagsTemperatureFromCold(t *testing.T) {
	f := Classifier{}.Scan([]string{"delicious", "", "cold food"})

	require.NotEmpty(t, f.Issues)
	assert.Contains(t, categories(f.Issues), "temperature")
	for _, is := range f.Issues {
		if is.Category == "temperature" {
			assert.Equal(t, "cold", is.Trigger)
			assert.Equal(t, SeverityHigh, is.Severity)
			assert.Equal(t, 1, is.Mentions)
		}
	}
	assert.Equal(t, []string{"taste"}, categories(f.Positives))
}

func TestClassifier_MentionCount(t *testing.T) {
	comments := []string{"Cold rice", "cold dal again", "lukewarm tea", "fine"}

	presence := Classifier{Mode: ModePresence}.Scan(comments)
	counted := Classifier{Mode: ModeMentionCount}.Scan(comments)

	require.Len(t, presence.Issues, len(counted.Issues))
	for i := range counted.Issues {
		if counted.Issues[i].Category == "temperature" {
			assert.Equal(t, 3, counted.Issues[i].Mentions)
			assert.Equal(t, 1, presence.Issues[i].Mentions)
		}
	}
}

func TestClassifier_NoComments(t *testing.T) {
	f := Classifier{}.Scan(nil)
	assert.Empty(t, f.Issues)
	assert.Empty(t, f.Positives)
}

func TestBySeverity(t *testing.T) {
	f := Classifier{}.Scan([]string{"bland and late", "dirty plates"})
	sorted := BySeverity(f.Issues)
	assert.Equal(t, []string{"hygiene", "taste", "service"}, categories(sorted))
	assert.Equal(t, []string{"taste", "hygiene", "service"}, categories(f.Issues), "input keeps table order")
}

func TestFindingLabel(t *testing.T) {
	assert.Equal(t, "Temperature: cold", Finding{Category: "temperature", Trigger: "cold"}.Label())
}

func TestSeverityJSON(t *testing.T) {
	b, err := SeverityCritical.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `"critical"`, string(b))

	var s Severity
	require.NoError(t, s.UnmarshalJSON([]byte(`"low"`)))
	assert.Equal(t, SeverityLow, s)
	assert.Error(t, s.UnmarshalJSON([]byte(`"urgent"`)))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModePresence, m)

	m, err = ParseMode("Mentions")
	require.NoError(t, err)
	assert.Equal(t, ModeMentionCount, m)

	_, err = ParseMode("bayes")
	assert.Error(t, err)
}

func TestCommentSentiment(t *testing.T) {
	assert.Equal(t, SentimentPositive, CommentSentiment("Fresh and tasty"))
	assert.Equal(t, SentimentNegative, CommentSentiment("cold and stale"))
	assert.Equal(t, SentimentNeutral, CommentSentiment("okay"))

	sc := CountSentiment([]string{"great", "awful", "", "meh"})
	assert.Equal(t, SentimentCounts{Positive: 1, Negative: 1, Neutral: 1}, sc)
}

func TestTopicCounts_FirstTopicWins(t *testing.T) {
	got := TopicCounts([]string{"too salty", "cold and small portion", "slow staff", "nothing to say"})
	assert.Equal(t, Topics{Taste: 1, Temperature: 1, Service: 1}, got)
}
