// Package srs adjusts spaced-repetition sampling weights.
package srs

import (
	"context"
	"fmt"

	"github.com/verte-zerg/pfdrill/internal/hand"
	"github.com/verte-zerg/pfdrill/internal/model"
)

const (
	// Default is the weight of a hand that was never rated.
	Default = 100
	// Min keeps mastered hands in rotation.
	Min = 1
	// Max bounds how much a single hand can dominate.
	Max = 2000
)

const (
	hardFactor   = 2.5
	easyDivisor  = 4.0
	decayDivisor = 1.5
	nudgeFactor  = 1.2
)

// WeightStore reads and writes single weights.
type WeightStore interface {
	Weight(ctx context.Context, key model.WeightKey) (int, error)
	SetWeight(ctx context.Context, key model.WeightKey, weight int) error
}

// Next returns the weight after rating a hand currently weighted w.
func Next(w int, rating model.Rating) int {
	v := float64(w)
	switch rating {
	case model.RatingHard:
		v *= hardFactor
	case model.RatingEasy:
		v /= easyDivisor
	case model.RatingNormal:
		if v > Default {
			v /= decayDivisor
		} else {
			v *= nudgeFactor
		}
	}
	if v < Min {
		v = Min
	}
	if v > Max {
		v = Max
	}
	return int(v)
}

// Update applies rating to the stored weight for key and persists the result.
func Update(ctx context.Context, st WeightStore, key model.WeightKey, rating model.Rating) (int, error) {
	switch rating {
	case model.RatingHard, model.RatingNormal, model.RatingEasy:
	default:
		return 0, fmt.Errorf("unknown rating %q", rating)
	}
	current, err := st.Weight(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("failed to read weight: %w", err)
	}
	next := Next(current, rating)
	if err := st.SetWeight(ctx, key, next); err != nil {
		return 0, fmt.Errorf("failed to save weight: %w", err)
	}
	return next, nil
}

// WeightFunc returns a lookup over weights that defaults absent hands to Default.
func WeightFunc(weights map[hand.Hand]int) func(hand.Hand) int {
	return func(h hand.Hand) int {
		if w, ok := weights[h]; ok {
			return w
		}
		return Default
	}
}
