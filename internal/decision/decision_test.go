package decision

import (
	"testing"

	"github.com/verte-zerg/pfdrill/internal/model"
)

func TestDecideDefendBuckets(t *testing.T) {
	spot := model.Spot{
		Type:   model.SpotDefend,
		Ranges: model.Ranges{ThreeBet: "AKs:20", Call: "AKs:30"},
	}
	tests := []struct {
		roll int
		want model.Action
	}{
		{0, model.ActionRaise},
		{10, model.ActionRaise},
		{19, model.ActionRaise},
		{20, model.ActionCall},
		{25, model.ActionCall},
		{49, model.ActionCall},
		{50, model.ActionFold},
		{60, model.ActionFold},
		{99, model.ActionFold},
	}
	for _, tc := range tests {
		if got := Decide(spot, "AKs", tc.roll); got != tc.want {
			t.Fatalf("roll %d: expected %s, got %s", tc.roll, tc.want, got)
		}
	}
}

func TestDecidePrefersFourBetRange(t *testing.T) {
	spot := model.Spot{
		Type:   model.SpotDefend,
		Ranges: model.Ranges{ThreeBet: "QQ", FourBet: "KK", Call: "QQ"},
	}
	if got := Decide(spot, "QQ", 10); got != model.ActionCall {
		t.Fatalf("expected call when 4bet range excludes QQ, got %s", got)
	}
	if got := Decide(spot, "KK", 99); got != model.ActionRaise {
		t.Fatalf("expected 4bet with KK, got %s", got)
	}
}

func TestDecideOpenIsBinary(t *testing.T) {
	spot := model.Spot{Type: model.SpotOpen, Ranges: model.Ranges{Full: "AA,KQs:0.1", Call: "72o"}}
	if got := Decide(spot, "KQs", 99); got != model.ActionRaise {
		t.Fatalf("expected raise for any positive weight, got %s", got)
	}
	if got := Decide(spot, "72o", 0); got != model.ActionFold {
		t.Fatalf("expected fold outside full range, got %s", got)
	}
}

func TestKindFallback(t *testing.T) {
	defend := model.Spot{Setup: model.Setup{VillainPos: "BTN"}, Ranges: model.Ranges{Call: "AA"}}
	if got := Decide(defend, "AA", 0); got != model.ActionCall {
		t.Fatalf("expected villain position to imply defend, got %s", got)
	}
	if !IsLegal(defend, model.ActionCall) {
		t.Fatalf("call must be legal when defending")
	}
	open := model.Spot{Ranges: model.Ranges{Full: "AA"}}
	if IsLegal(open, model.ActionCall) {
		t.Fatalf("call must not be legal when opening")
	}
}
