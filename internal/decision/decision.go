// Package decision determines the correct action for a drilled hand.
package decision

import (
	"github.com/verte-zerg/pfdrill/internal/hand"
	"github.com/verte-zerg/pfdrill/internal/model"
	"github.com/verte-zerg/pfdrill/internal/rangespec"
)

// Frequencies returns the raise and call percentages for h in spot. Open
// spots report the full range as the raise frequency and never call.
func Frequencies(spot model.Spot, h hand.Hand) (raise, call float64) {
	if spot.Kind() == model.SpotOpen {
		return rangespec.WeightOf(h, spot.Ranges.Full), 0
	}
	return rangespec.WeightOf(h, spot.Ranges.Raise()), rangespec.WeightOf(h, spot.Ranges.Call)
}

// Decide maps a percentile roll in [0,100) to the correct action.
//
// Facing a bet the roll is split into contiguous buckets in the order raise,
// call, fold. Opening is binary: any weight in the full range means raise.
func Decide(spot model.Spot, h hand.Hand, roll int) model.Action {
	raise, call := Frequencies(spot, h)
	if spot.Kind() == model.SpotOpen {
		if raise > 0 {
			return model.ActionRaise
		}
		return model.ActionFold
	}
	r := float64(roll)
	switch {
	case r < raise:
		return model.ActionRaise
	case r < raise+call:
		return model.ActionCall
	default:
		return model.ActionFold
	}
}

// LegalActions lists the buttons offered for spot.
func LegalActions(spot model.Spot) []model.Action {
	if spot.Kind() == model.SpotOpen {
		return []model.Action{model.ActionFold, model.ActionRaise}
	}
	return []model.Action{model.ActionFold, model.ActionCall, model.ActionRaise}
}

// IsLegal reports whether a is offered for spot.
func IsLegal(spot model.Spot, a model.Action) bool {
	for _, legal := range LegalActions(spot) {
		if legal == a {
			return true
		}
	}
	return false
}
