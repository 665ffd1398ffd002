// Package rangespec parses compact range notation such as "AA,AKs:0.5,KQ:30".
package rangespec

import (
	"strconv"
	"strings"

	"github.com/verte-zerg/pfdrill/internal/hand"
)

// All is the sentinel spec for the full 169-hand universe.
const All = "ALL"

// allPairsMarker marks a spec that trains every hand.
const allPairsMarker = "22+"

type entry struct {
	token  string
	weight float64
	ok     bool
}

// WeightOf returns the frequency in percent with which h appears in spec.
// Weights above 1.0 are taken as written, so a malformed file can exceed 100;
// renderers clamp for display.
// Entries are scanned left to right and the first matching entry wins.
func WeightOf(h hand.Hand, spec string) float64 {
	for _, e := range entries(spec) {
		if !e.ok {
			continue
		}
		if matches(e.token, h) {
			return e.weight
		}
	}
	return 0
}

// Expand lists the hands named by spec. Sentinel, empty and unusable specs
// expand to the full universe.
func Expand(spec string) []hand.Hand {
	if strings.TrimSpace(spec) == "" || spec == All || strings.Contains(spec, allPairsMarker) {
		return hand.All()
	}
	picked := map[hand.Hand]struct{}{}
	for _, e := range entries(spec) {
		tok := e.token
		switch {
		case hand.Hand(tok).Valid():
			picked[hand.Hand(tok)] = struct{}{}
		case len(tok) == 2 && hand.RankIndex(tok[0]) >= 0 && hand.RankIndex(tok[1]) >= 0:
			if tok[0] == tok[1] {
				picked[hand.Hand(tok)] = struct{}{}
				continue
			}
			picked[hand.Hand(tok+"s")] = struct{}{}
			picked[hand.Hand(tok+"o")] = struct{}{}
		}
	}
	if len(picked) == 0 {
		return hand.All()
	}
	out := make([]hand.Hand, 0, len(picked))
	for _, h := range hand.All() {
		if _, ok := picked[h]; ok {
			out = append(out, h)
		}
	}
	return out
}

func entries(spec string) []entry {
	if spec == "" {
		return nil
	}
	cleaned := strings.ReplaceAll(spec, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", "")
	parts := strings.Split(cleaned, ",")
	out := make([]entry, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, parseEntry(part))
	}
	return out
}

func parseEntry(item string) entry {
	token, raw, hasWeight := strings.Cut(item, ":")
	token = strings.TrimSpace(token)
	if !hasWeight {
		return entry{token: token, weight: 100, ok: true}
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || w < 0 {
		return entry{token: token}
	}
	if w <= 1.0 {
		w *= 100
	}
	return entry{token: token, weight: w, ok: true}
}

func matches(token string, h hand.Hand) bool {
	if token == string(h) {
		return true
	}
	return len(token) == 2 && token[0] != token[1] && strings.HasPrefix(string(h), token)
}
