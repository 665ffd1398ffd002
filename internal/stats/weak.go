package stats

// Weakest returns up to top keys with the lowest accuracy among aggregates
// answered at least minTotal times. aggs must already be sorted weakest first.
func Weakest(aggs []Aggregate, top, minTotal int) []string {
	var out []string
	for _, a := range aggs {
		if top > 0 && len(out) >= top {
			break
		}
		if a.Total < minTotal || a.Correct == a.Total {
			continue
		}
		out = append(out, a.Key)
	}
	return out
}
