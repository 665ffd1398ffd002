// Package generator draws randomized drill inputs.
package generator

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/pfdrill/internal/hand"
	"github.com/verte-zerg/pfdrill/internal/model"
)

// Generator produces random spots, hands, rolls and suits.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Generator.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Sample picks one candidate with probability proportional to its weight.
// Non-positive weights count as 1 so no candidate is ever excluded.
func (g *Generator) Sample(candidates []hand.Hand, weight func(hand.Hand) int) hand.Hand {
	if len(candidates) == 0 {
		return ""
	}
	weights := make([]float64, len(candidates))
	total := 0.0
	for i, h := range candidates {
		w := float64(weight(h))
		if w < 1 {
			w = 1
		}
		weights[i] = w
		total += w
	}

	r := g.rnd.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return candidates[i]
		}
	}
	return candidates[len(candidates)-1]
}

// Roll returns a uniform percentile in [0,100).
func (g *Generator) Roll() int {
	return g.rnd.Intn(100)
}

// PickSpot selects a spot uniformly from pool.
func (g *Generator) PickSpot(pool []model.SpotKey) model.SpotKey {
	if len(pool) == 0 {
		return model.SpotKey{}
	}
	return pool[g.rnd.Intn(len(pool))]
}

// Deal assigns concrete suits to h.
func (g *Generator) Deal(h hand.Hand) (hand.HoleCards, error) {
	return hand.Deal(g.rnd, h)
}
