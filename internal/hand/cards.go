package hand

import (
	"fmt"
	"math/rand"

	"github.com/paulhankin/poker"
)

// Suits in display order.
var Suits = []poker.Suit{poker.Spade, poker.Heart, poker.Diamond, poker.Club}

// Card is a concrete hole card.
type Card struct {
	Rank byte
	Suit poker.Suit
	card poker.Card
}

// HoleCards are the two concrete cards dealt for a hand class.
type HoleCards [2]Card

// NewCard builds a card from a rank symbol in Ranks and a suit.
func NewCard(rank byte, suit poker.Suit) (Card, error) {
	idx := RankIndex(rank)
	if idx < 0 {
		return Card{}, fmt.Errorf("invalid rank %q", rank)
	}
	c, err := poker.MakeCard(suit, libraryRank(idx))
	if err != nil {
		return Card{}, fmt.Errorf("invalid card %c: %w", rank, err)
	}
	return Card{Rank: rank, Suit: suit, card: c}, nil
}

// Poker returns the card as a poker library value.
func (c Card) Poker() poker.Card {
	return c.card
}

// Symbol returns the suit glyph.
func (c Card) Symbol() string {
	return SuitSymbol(c.Suit)
}

// String renders the card as rank followed by suit glyph, e.g. "A♠".
func (c Card) String() string {
	return string(c.Rank) + c.Symbol()
}

// SuitSymbol returns the glyph for a suit.
func SuitSymbol(s poker.Suit) string {
	switch s {
	case poker.Spade:
		return "♠"
	case poker.Heart:
		return "♥"
	case poker.Diamond:
		return "♦"
	case poker.Club:
		return "♣"
	default:
		return "?"
	}
}

// Deal assigns random suits to h: one suit for suited hands, two distinct
// suits for pairs and offsuit hands.
func Deal(rnd *rand.Rand, h Hand) (HoleCards, error) {
	if !h.Valid() {
		return HoleCards{}, fmt.Errorf("invalid hand %q", h)
	}
	first := Suits[rnd.Intn(len(Suits))]
	second := first
	if !h.IsSuited() {
		others := make([]poker.Suit, 0, len(Suits)-1)
		for _, s := range Suits {
			if s != first {
				others = append(others, s)
			}
		}
		second = others[rnd.Intn(len(others))]
	}
	c0, err := NewCard(h[0], first)
	if err != nil {
		return HoleCards{}, err
	}
	c1, err := NewCard(h[1], second)
	if err != nil {
		return HoleCards{}, err
	}
	return HoleCards{c0, c1}, nil
}

// libraryRank maps an index into Ranks to the library's rank numbering,
// where the ace is 1 and the deuce is 2.
func libraryRank(idx int) poker.Rank {
	if idx == 0 {
		return poker.Rank(1)
	}
	return poker.Rank(14 - idx)
}
