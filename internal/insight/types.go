// Package insight provides the narrative rule engine: rules examine a
// report context and emit insights, alerts, recommendations and actions.
package insight

import (
	"encoding/json"
	"fmt"
)

// Kind classifies the tone of an item.
type Kind string

const (
	KindPositive Kind = "positive"
	KindNegative Kind = "negative"
	KindWarning  Kind = "warning"
	KindInfo     Kind = "info"
	KindCritical Kind = "critical"
)

// Priority levels for recommendations. The zero value means unset.
type Priority int

const (
	PriorityCritical Priority = iota + 1
	PriorityHigh
	PriorityMedium
	PriorityLow
)

var priorityLabels = map[Priority]string{
	PriorityCritical: "critical",
	PriorityHigh:     "high",
	PriorityMedium:   "medium",
	PriorityLow:      "low",
}

// String returns the priority label.
func (p Priority) String() string {
	if l, ok := priorityLabels[p]; ok {
		return l
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

// MarshalJSON encodes the priority as its label.
func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// Impact levels for insights.
const (
	ImpactHigh   = "high"
	ImpactMedium = "medium"
)

// Item is one narrative entry. Insights carry Type, Message and Impact;
// alerts carry Type, Meal, Message and Action; recommendations carry
// Priority, Meal and Action.
type Item struct {
	Type     Kind     `json:"type,omitempty"`
	Meal     string   `json:"meal,omitempty"`
	Message  string   `json:"message,omitempty"`
	Action   string   `json:"action,omitempty"`
	Impact   string   `json:"impact,omitempty"`
	Priority Priority `json:"priority,omitempty"`
}

// Text returns the Message, or the Action when there is no message.
func (it Item) Text() string {
	if it.Message != "" {
		return it.Message
	}
	return it.Action
}

// Rule examines a context and produces zero or more items.
type Rule[C any] func(ctx *C) []Item
