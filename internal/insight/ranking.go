package insight

import "sort"

var kindWeight = map[Kind]Priority{
	KindCritical: PriorityCritical,
	KindNegative: PriorityHigh,
	KindWarning:  PriorityHigh,
	KindPositive: PriorityMedium,
	KindInfo:     PriorityLow,
}

// weight is the explicit priority, else one derived from the kind.
func weight(it Item) Priority {
	if it.Priority > 0 {
		return it.Priority
	}
	if w, ok := kindWeight[it.Type]; ok {
		return w
	}
	return PriorityLow + 1
}

// Rank sorts items most urgent first. Items of equal weight keep their
// emission order.
func Rank(items []Item) []Item {
	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return weight(sorted[i]) < weight(sorted[j])
	})
	return sorted
}

// Cap returns at most n items. A non-positive n returns an empty slice.
func Cap(items []Item, n int) []Item {
	if n <= 0 {
		return []Item{}
	}
	if len(items) > n {
		items = items[:n]
	}
	if items == nil {
		return []Item{}
	}
	return items
}

// Messages projects items to their text, dropping duplicates.
func Messages(items []Item) []string {
	out := []string{}
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		t := it.Text()
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// CapStrings returns at most n strings, never nil.
func CapStrings(s []string, n int) []string {
	if n <= 0 || s == nil {
		return []string{}
	}
	if len(s) > n {
		return s[:n]
	}
	return s
}
