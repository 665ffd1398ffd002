package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/pfdrill/internal/model"
	"github.com/verte-zerg/pfdrill/internal/srs"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "pfdrill.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

var testSpot = model.SpotKey{Source: "GTO", Scenario: "Def vs 3bet", Name: "BB_vs|BTN"}

func TestWeightsRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	key := model.WeightKey{Spot: testSpot, Hand: "AKs"}

	w, err := st.Weight(ctx, key)
	if err != nil {
		t.Fatalf("weight: %v", err)
	}
	if w != srs.Default {
		t.Fatalf("expected default weight, got %d", w)
	}
	if _, err := srs.Update(ctx, st, key, model.RatingHard); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := srs.Update(ctx, st, key, model.RatingEasy); err != nil {
		t.Fatalf("update: %v", err)
	}
	weights, err := st.Weights(ctx, testSpot)
	if err != nil {
		t.Fatalf("weights: %v", err)
	}
	if len(weights) != 1 || weights["AKs"] != 62 {
		t.Fatalf("unexpected weights: %v", weights)
	}
	other := model.SpotKey{Source: "GTO", Scenario: "Def vs 3bet", Name: "BB_vs"}
	weights, err = st.Weights(ctx, other)
	if err != nil {
		t.Fatalf("weights: %v", err)
	}
	if len(weights) != 0 {
		t.Fatalf("weights must not leak between spots with similar names: %v", weights)
	}
}

func TestHistoryListAndDelete(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	for i, age := range []int{10, 5, 1} {
		rec := model.HistoryRecord{
			Date:     now.AddDate(0, 0, -age),
			Spot:     testSpot,
			Hand:     "AKs",
			Correct:  i%2 == 0,
			Expected: model.ActionCall,
			Chosen:   model.ActionFold,
		}
		if err := st.AppendHistory(ctx, rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	records, err := st.ListHistory(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 3 || !records[0].Date.Before(records[2].Date) {
		t.Fatalf("expected 3 records oldest first, got %+v", records)
	}
	if records[0].Spot != testSpot || !records[0].Correct || records[0].Expected != model.ActionCall {
		t.Fatalf("unexpected record: %+v", records[0])
	}

	last, err := st.ListHistory(ctx, model.StatsConfig{Last: 2})
	if err != nil {
		t.Fatalf("list last: %v", err)
	}
	if len(last) != 2 || !last[1].Date.Equal(records[2].Date) {
		t.Fatalf("expected last two records, got %+v", last)
	}

	n, err := st.DeleteHistory(ctx, model.Prune{Mode: model.PruneOlderThan, Days: 7}, now)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one old row deleted, got %d", n)
	}
	n, err = st.DeleteHistory(ctx, model.Prune{Mode: model.PruneWithin, Days: 2}, now)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one recent row deleted, got %d", n)
	}
	n, err = st.DeleteHistory(ctx, model.Prune{Mode: model.PruneAll}, now)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected remaining row deleted, got %d", n)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	empty, err := st.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(empty.Sources) != 0 || len(empty.Spots) != 0 {
		t.Fatalf("expected empty settings, got %+v", empty)
	}
	want := model.Settings{Sources: []string{"GTO"}, Scenarios: []string{"Def vs 3bet"}}
	if err := st.SaveSettings(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	want.Spots = []model.SpotKey{testSpot}
	if err := st.SaveSettings(ctx, want); err != nil {
		t.Fatalf("save again: %v", err)
	}
	got, err := st.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Sources) != 1 || got.Sources[0] != "GTO" || len(got.Spots) != 1 || got.Spots[0] != testSpot {
		t.Fatalf("unexpected settings: %+v", got)
	}
}
