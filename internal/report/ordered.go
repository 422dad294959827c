package report

import (
	"bytes"
	"encoding/json"

	"github.com/blackwell-systems/messwatch/internal/feedback"
)

// Ordered is a string-keyed map that marshals its keys in insertion order.
type Ordered[T any] struct {
	keys []string
	vals map[string]T
}

// Set stores v under k, appending k on first use.
func (o *Ordered[T]) Set(k string, v T) {
	if o.vals == nil {
		o.vals = make(map[string]T)
	}
	if _, ok := o.vals[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.vals[k] = v
}

// Get returns the value stored under k.
func (o Ordered[T]) Get(k string) (T, bool) {
	v, ok := o.vals[k]
	return v, ok
}

// Keys returns the keys in insertion order.
func (o Ordered[T]) Keys() []string {
	return o.keys
}

// Len returns the number of keys.
func (o Ordered[T]) Len() int {
	return len(o.keys)
}

// MarshalJSON encodes o as a JSON object with keys in insertion order.
func (o Ordered[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(o.vals[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// byMeal builds an Ordered keyed by meal display name in slot order.
func byMeal[T any](value func(slot feedback.MealSlot) T) Ordered[T] {
	var o Ordered[T]
	for _, slot := range feedback.Slots {
		o.Set(slot.DisplayName(), value(slot))
	}
	return o
}
