// Package hand defines canonical preflop starting hands.
package hand

import (
	"fmt"
	"strings"
)

// Ranks lists the rank symbols from highest to lowest.
const Ranks = "AKQJT98765432"

// Size is the number of distinct starting hands.
const Size = 169

// Hand is a canonical starting hand such as "AA", "AKs" or "AKo".
type Hand string

var (
	all  []Hand
	grid [len(Ranks)][len(Ranks)]Hand
	set  map[Hand]struct{}
)

func init() {
	all = make([]Hand, 0, Size)
	set = make(map[Hand]struct{}, Size)
	for i := 0; i < len(Ranks); i++ {
		for j := i; j < len(Ranks); j++ {
			r1, r2 := Ranks[i], Ranks[j]
			if i == j {
				all = append(all, Hand([]byte{r1, r2}))
				continue
			}
			all = append(all, Hand([]byte{r1, r2, 's'}), Hand([]byte{r1, r2, 'o'}))
		}
	}
	for _, h := range all {
		set[h] = struct{}{}
	}
	for row := 0; row < len(Ranks); row++ {
		for col := 0; col < len(Ranks); col++ {
			grid[row][col] = At(row, col)
		}
	}
}

// All returns the 169 canonical hands in a fixed order. The slice is a copy.
func All() []Hand {
	out := make([]Hand, len(all))
	copy(out, all)
	return out
}

// At returns the hand shown at the given matrix cell: pairs on the diagonal,
// suited hands above it and offsuit hands below it.
func At(row, col int) Hand {
	r1, r2 := Ranks[row], Ranks[col]
	switch {
	case row == col:
		return Hand([]byte{r1, r2})
	case row < col:
		return Hand([]byte{r1, r2, 's'})
	default:
		return Hand([]byte{r2, r1, 'o'})
	}
}

// Grid returns the hands in row-major matrix order.
func Grid() []Hand {
	out := make([]Hand, 0, Size)
	for row := range grid {
		out = append(out, grid[row][:]...)
	}
	return out
}

// Parse validates s and returns it as a Hand.
func Parse(s string) (Hand, error) {
	h := Hand(strings.TrimSpace(s))
	if !h.Valid() {
		return "", fmt.Errorf("invalid hand %q", s)
	}
	return h, nil
}

// Valid reports whether h is one of the 169 canonical hands.
func (h Hand) Valid() bool {
	_, ok := set[h]
	return ok
}

// IsPair reports whether both cards share a rank.
func (h Hand) IsPair() bool {
	return len(h) == 2 && h[0] == h[1]
}

// IsSuited reports whether h is a suited non-pair.
func (h Hand) IsSuited() bool {
	return len(h) == 3 && h[2] == 's'
}

// IsOffsuit reports whether h is an offsuit non-pair.
func (h Hand) IsOffsuit() bool {
	return len(h) == 3 && h[2] == 'o'
}

// RankIndex returns the position of r in Ranks, or -1.
func RankIndex(r byte) int {
	return strings.IndexByte(Ranks, r)
}
