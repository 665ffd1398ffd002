package rangespec

import (
	"testing"

	"github.com/verte-zerg/pfdrill/internal/hand"
)

func TestWeightOf(t *testing.T) {
	tests := []struct {
		name string
		hand hand.Hand
		spec string
		want float64
	}{
		{name: "empty spec", hand: "AA", spec: "", want: 0},
		{name: "bare hand is full weight", hand: "AA", spec: "KK,AA", want: 100},
		{name: "first match wins", hand: "AA", spec: "AA:50,AA:90", want: 50},
		{name: "shorthand covers suited", hand: "AKs", spec: "AK:30", want: 30},
		{name: "shorthand covers offsuit", hand: "AKo", spec: "AK:30", want: 30},
		{name: "fraction rescaled", hand: "QQ", spec: "QQ:0.5", want: 50},
		{name: "percent kept", hand: "QQ", spec: "QQ:50", want: 50},
		{name: "one means full", hand: "QQ", spec: "QQ:1", want: 100},
		{name: "large weight kept as written", hand: "AA", spec: "AA:150", want: 150},
		{name: "no match", hand: "72o", spec: "AA,KK", want: 0},
		{name: "pair token is not a prefix", hand: "AKs", spec: "AA", want: 0},
		{name: "exact beats later shorthand", hand: "AKs", spec: "AKs:80,AK:20", want: 80},
		{name: "shorthand before exact", hand: "AKs", spec: "AK:20,AKs:80", want: 20},
		{name: "line breaks normalized", hand: "JTs", spec: "AA,\r\nJTs:0.25", want: 25},
		{name: "spaces around entries", hand: "KQo", spec: " AA , KQo : 40 ", want: 40},
		{name: "malformed weight skipped", hand: "AA", spec: "AA:abc,AA:70", want: 70},
		{name: "suited token does not cover offsuit", hand: "AKo", spec: "AKs", want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := WeightOf(tc.hand, tc.spec); got != tc.want {
				t.Fatalf("WeightOf(%s, %q) = %v, want %v", tc.hand, tc.spec, got, tc.want)
			}
		})
	}
}

func TestWeightOfIsStable(t *testing.T) {
	spec := "AA:50,AK:0.3,T9s"
	for i := 0; i < 3; i++ {
		if got := WeightOf("AKo", spec); got != 30 {
			t.Fatalf("expected 30, got %v", got)
		}
	}
}

func TestExpandFullUniverse(t *testing.T) {
	for _, spec := range []string{"", "ALL", "22+,A2s+", "   ", "zz,??"} {
		if got := Expand(spec); len(got) != hand.Size {
			t.Fatalf("Expand(%q): expected %d hands, got %d", spec, hand.Size, len(got))
		}
	}
}

func TestExpand(t *testing.T) {
	got := Expand("AA,AK:0.5,KQs:30,AK,T9o")
	want := []hand.Hand{"AA", "AKs", "AKo", "KQs", "T9o"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestExpandPairShorthand(t *testing.T) {
	got := Expand("77:0.5")
	if len(got) != 1 || got[0] != "77" {
		t.Fatalf("expected [77], got %v", got)
	}
}
