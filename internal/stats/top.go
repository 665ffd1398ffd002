package stats

import "sort"

// MostDrilled returns the keys of the n aggregates with the most answers.
func MostDrilled(aggs []Aggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	items := make([]Aggregate, len(aggs))
	copy(items, aggs)
	sort.Slice(items, func(i, j int) bool {
		if items[i].Total == items[j].Total {
			return items[i].Key < items[j].Key
		}
		return items[i].Total > items[j].Total
	})
	if n > len(items) {
		n = len(items)
	}
	out := make([]string, 0, n)
	for _, it := range items[:n] {
		out = append(out, it.Key)
	}
	return out
}
