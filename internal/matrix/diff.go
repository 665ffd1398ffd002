package matrix

import (
	"math"

	"github.com/verte-zerg/pfdrill/internal/decision"
	"github.com/verte-zerg/pfdrill/internal/hand"
	"github.com/verte-zerg/pfdrill/internal/model"
)

// Delta is a hand played at different frequencies in two spots.
type Delta struct {
	Hand          hand.Hand
	RaiseA, CallA float64
	RaiseB, CallB float64
}

// Shift is the total frequency moved between actions, in percent.
func (d Delta) Shift() float64 {
	foldA := 100 - d.RaiseA - d.CallA
	foldB := 100 - d.RaiseB - d.CallB
	return (math.Abs(d.RaiseA-d.RaiseB) + math.Abs(d.CallA-d.CallB) + math.Abs(foldA-foldB)) / 2
}

// Diff lists hands whose raise or call frequency differs between a and b,
// in grid order.
func Diff(a, b model.Spot) []Delta {
	var out []Delta
	for _, h := range hand.Grid() {
		ra, ca := decision.Frequencies(a, h)
		rb, cb := decision.Frequencies(b, h)
		if ra == rb && ca == cb {
			continue
		}
		out = append(out, Delta{Hand: h, RaiseA: ra, CallA: ca, RaiseB: rb, CallB: cb})
	}
	return out
}
