package analyzer

import (
	"fmt"
	"sort"
	"strings"
)

// Category is one row of a keyword table.
type Category struct {
	Name     string
	Phrases  []string
	Severity Severity
	Action   string
}

// IssueCategories lists the issue keyword table in scan order.
var IssueCategories = []Category{
	{Name: "taste", Phrases: []string{"bland", "tasteless", "no taste", "bad taste"}, Severity: SeverityMedium, Action: "Review seasoning and recipe standards"},
	{Name: "temperature", Phrases: []string{"cold", "not hot", "lukewarm"}, Severity: SeverityHigh, Action: "Serve meals at proper temperature"},
	{Name: "quality", Phrases: []string{"stale", "old", "bad quality", "poor quality"}, Severity: SeverityHigh, Action: "Audit ingredient freshness and storage"},
	{Name: "quantity", Phrases: []string{"less quantity", "small portion", "not enough"}, Severity: SeverityMedium, Action: "Review portion sizes"},
	{Name: "hygiene", Phrases: []string{"dirty", "unhygienic", "not clean"}, Severity: SeverityCritical, Action: "Immediate hygiene inspection of kitchen and dining area"},
	{Name: "service", Phrases: []string{"slow service", "late", "delay"}, Severity: SeverityLow, Action: "Review serving staff allocation"},
}

// PositiveCategories lists the positive keyword table in scan order.
var PositiveCategories = []Category{
	{Name: "taste", Phrases: []string{"delicious", "tasty", "good taste", "amazing"}},
	{Name: "quality", Phrases: []string{"fresh", "good quality", "excellent"}},
	{Name: "service", Phrases: []string{"quick", "fast", "good service"}},
}

// Mode selects how a Classifier counts mentions.
type Mode string

const (
	// ModePresence reports each firing category once.
	ModePresence Mode = "presence"

	// ModeMentionCount counts the comments that mention a category.
	ModeMentionCount Mode = "mentions"
)

// ParseMode parses a classifier mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModePresence, "":
		return ModePresence, nil
	case ModeMentionCount:
		return ModeMentionCount, nil
	}
	return "", fmt.Errorf("unknown classifier mode %q", s)
}

// Classifier scans comment text against the keyword tables.
type Classifier struct {
	Mode Mode
}

// Scan classifies comments. A category fires when any of its phrases is a
// literal substring of the lower-cased concatenation of comments; the first
// matching phrase is reported as the trigger.
func (c Classifier) Scan(comments []string) Findings {
	lowered := make([]string, len(comments))
	for i, s := range comments {
		lowered[i] = strings.ToLower(s)
	}
	text := strings.Join(lowered, " ")

	return Findings{
		Issues:    c.scanTable(IssueCategories, text, lowered),
		Positives: c.scanTable(PositiveCategories, text, lowered),
	}
}

func (c Classifier) scanTable(table []Category, text string, comments []string) []Finding {
	var out []Finding
	for _, cat := range table {
		trigger := firstPhrase(text, cat.Phrases)
		if trigger == "" {
			continue
		}
		f := Finding{
			Category: cat.Name,
			Trigger:  trigger,
			Severity: cat.Severity,
			Action:   cat.Action,
			Mentions: 1,
		}
		if c.Mode == ModeMentionCount {
			f.Mentions = 0
			for _, comment := range comments {
				if firstPhrase(comment, cat.Phrases) != "" {
					f.Mentions++
				}
			}
			// A phrase can span two joined comments.
			if f.Mentions == 0 {
				f.Mentions = 1
			}
		}
		out = append(out, f)
	}
	return out
}

func firstPhrase(text string, phrases []string) string {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return p
		}
	}
	return ""
}

// BySeverity returns findings sorted by severity descending, then by
// mentions descending. Equal findings keep table order.
func BySeverity(findings []Finding) []Finding {
	out := make([]Finding, len(findings))
	copy(out, findings)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Severity != out[j].Severity {
			return out[i].Severity > out[j].Severity
		}
		return out[i].Mentions > out[j].Mentions
	})
	return out
}

// Label renders a finding as "Category: trigger".
func (f Finding) Label() string {
	if f.Category == "" {
		return f.Trigger
	}
	return strings.ToUpper(f.Category[:1]) + f.Category[1:] + ": " + f.Trigger
}

var (
	positiveWords = []string{"good", "excellent", "great", "delicious", "tasty", "fresh", "amazing", "perfect"}
	negativeWords = []string{"bad", "terrible", "cold", "stale", "salty", "bland", "poor", "awful", "horrible"}
)

// Sentiment is the polarity of a single comment.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// CommentSentiment scores a comment by counting positive and negative words
// it contains. Ties are neutral.
func CommentSentiment(comment string) Sentiment {
	lower := strings.ToLower(comment)
	pos, neg := 0, 0
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			pos++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			neg++
		}
	}
	switch {
	case pos > neg:
		return SentimentPositive
	case neg > pos:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// CountSentiment tallies non-empty comments by polarity.
func CountSentiment(comments []string) SentimentCounts {
	var sc SentimentCounts
	for _, c := range comments {
		if strings.TrimSpace(c) == "" {
			continue
		}
		switch CommentSentiment(c) {
		case SentimentPositive:
			sc.Positive++
		case SentimentNegative:
			sc.Negative++
		default:
			sc.Neutral++
		}
	}
	return sc
}

// Topics counts comments by the first topic they mention.
type Topics struct {
	Taste       int `json:"taste"`
	Temperature int `json:"temperature"`
	Quantity    int `json:"quantity"`
	Quality     int `json:"quality"`
	Service     int `json:"service"`
}

var topicWords = []struct {
	name  string
	words []string
}{
	{"taste", []string{"taste", "flavor", "spicy", "sweet", "salty", "bitter", "delicious", "bland"}},
	{"temperature", []string{"hot", "cold", "warm", "cool", "temperature"}},
	{"quantity", []string{"more", "less", "small", "big", "portion", "enough", "quantity"}},
	{"quality", []string{"fresh", "stale", "quality", "good", "bad", "excellent", "poor"}},
	{"service", []string{"service", "staff", "clean", "dirty", "quick", "slow", "timing"}},
}

// TopicCounts assigns each comment to the first topic whose words it
// contains. Comments matching no topic are not counted.
func TopicCounts(comments []string) Topics {
	var t Topics
	for _, c := range comments {
		lower := strings.ToLower(c)
		for _, topic := range topicWords {
			if firstPhrase(lower, topic.words) == "" {
				continue
			}
			switch topic.name {
			case "taste":
				t.Taste++
			case "temperature":
				t.Temperature++
			case "quantity":
				t.Quantity++
			case "quality":
				t.Quality++
			case "service":
				t.Service++
			}
			break
		}
	}
	return t
}
