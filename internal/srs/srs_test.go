package srs

import (
	"context"
	"testing"

	"github.com/verte-zerg/pfdrill/internal/hand"
	"github.com/verte-zerg/pfdrill/internal/model"
)

type memStore map[model.WeightKey]int

func (m memStore) Weight(_ context.Context, key model.WeightKey) (int, error) {
	if w, ok := m[key]; ok {
		return w, nil
	}
	return Default, nil
}

func (m memStore) SetWeight(_ context.Context, key model.WeightKey, w int) error {
	m[key] = w
	return nil
}

func TestNext(t *testing.T) {
	tests := []struct {
		w      int
		rating model.Rating
		want   int
	}{
		{100, model.RatingHard, 250},
		{250, model.RatingEasy, 62},
		{250, model.RatingNormal, 166},
		{100, model.RatingNormal, 120},
		{50, model.RatingNormal, 60},
		{1000, model.RatingHard, 2000},
		{3, model.RatingEasy, 1},
	}
	for _, tc := range tests {
		if got := Next(tc.w, tc.rating); got != tc.want {
			t.Fatalf("Next(%d, %s) = %d, want %d", tc.w, tc.rating, got, tc.want)
		}
	}
}

func TestNextStaysBounded(t *testing.T) {
	w := Default
	for i := 0; i < 20; i++ {
		w = Next(w, model.RatingHard)
	}
	if w != Max {
		t.Fatalf("expected clamp at %d, got %d", Max, w)
	}
	for i := 0; i < 20; i++ {
		w = Next(w, model.RatingEasy)
	}
	if w != Min {
		t.Fatalf("expected clamp at %d, got %d", Min, w)
	}
}

func TestUpdatePersists(t *testing.T) {
	st := memStore{}
	key := model.WeightKey{Spot: model.SpotKey{Source: "s", Scenario: "c", Name: "n"}, Hand: "AKs"}
	ctx := context.Background()
	w, err := Update(ctx, st, key, model.RatingHard)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if w != 250 || st[key] != 250 {
		t.Fatalf("expected 250, got %d (stored %d)", w, st[key])
	}
	w, err = Update(ctx, st, key, model.RatingEasy)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if w != 62 {
		t.Fatalf("expected 62, got %d", w)
	}
	if _, err := Update(ctx, st, key, model.Rating("bogus")); err == nil {
		t.Fatalf("expected error for unknown rating")
	}
}

func TestWeightFuncDefaults(t *testing.T) {
	fn := WeightFunc(map[hand.Hand]int{"AA": 7})
	if fn("AA") != 7 || fn("KK") != Default {
		t.Fatalf("unexpected weights: AA=%d KK=%d", fn("AA"), fn("KK"))
	}
}
