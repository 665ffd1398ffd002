package ranges

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/pfdrill/internal/model"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadMissingDir(t *testing.T) {
	db, errs := Load(filepath.Join(t.TempDir(), "missing"))
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if len(db) != 0 {
		t.Fatalf("expected empty database")
	}
}

func TestLoadMergesScenarios(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{
		"source": "GTO",
		"scenario": "Def vs 3bet",
		"spots": {
			"BB vs BTN": {"setup": {"hero_pos": "BB", "villain_pos": "BTN"}, "ranges": {"call": "AK", "3bet": "AA"}},
			"SB vs BTN": {"setup": {"hero_pos": "SB", "villain_pos": "BTN"}, "ranges": {"call": "QQ"}}
		}
	}`)
	writeFile(t, dir, "b.json", `{
		"source": "GTO",
		"scenario": "Def vs 3bet",
		"spots": {
			"SB vs BTN": {"setup": {"hero_pos": "SB", "villain_pos": "BTN"}, "ranges": {"call": "JJ"}},
			"CO vs BTN": {"setup": {"hero_pos": "CO", "villain_pos": "BTN"}, "ranges": {"call": "TT"}}
		}
	}`)

	db, errs := Load(dir)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	spots := db["GTO"]["Def vs 3bet"]
	if len(spots) != 3 {
		t.Fatalf("expected union of 3 spots, got %d", len(spots))
	}
	if got := spots["SB vs BTN"].Ranges.Call; got != "JJ" {
		t.Fatalf("expected later file to win, got %q", got)
	}
	if got := spots["BB vs BTN"].Ranges.Raise(); got != "AA" {
		t.Fatalf("expected 3bet range, got %q", got)
	}
}

func TestLoadToleratesMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.json", `{"source": `)
	writeFile(t, dir, "good.yaml", `
source: Coach
scenario: Open Raise
spots:
  UTG open:
    spot_type: open
    setup:
      hero_pos: EP
    ranges:
      full: "AA,KK,AKs"
`)
	writeFile(t, dir, "notes.txt", "ignored")

	db, errs := Load(dir)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	var fileErr *FileError
	if !errors.As(errs[0], &fileErr) || filepath.Base(fileErr.Path) != "bad.json" {
		t.Fatalf("expected FileError for bad.json, got %v", errs[0])
	}
	spot, ok := Lookup(db, model.SpotKey{Source: "Coach", Scenario: "Open Raise", Name: "UTG open"})
	if !ok {
		t.Fatalf("expected yaml spot to load")
	}
	if spot.Kind() != model.SpotOpen || spot.Ranges.Full != "AA,KK,AKs" {
		t.Fatalf("unexpected spot: %+v", spot)
	}
}

func TestLoadLenientBetSizes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{
		"source": "GTO",
		"scenario": "Defend",
		"spots": {
			"BB vs BTN": {"setup": {"villain_pos": "BTN", "villain_bet": "2.5", "hero_bet": 1}, "ranges": {"call": "KK"}},
			"BB vs CO": {"setup": {"villain_pos": "CO", "villain_bet": "3bb", "hero_bet": null}, "ranges": {"call": "QQ"}}
		}
	}`)
	writeFile(t, dir, "b.yaml", `
source: GTO
scenario: Squeeze
spots:
  SB vs BTN:
    setup:
      villain_pos: BTN
      villain_bet: "2.2"
      hero_bet: 0.5
    ranges:
      3bet: AA
`)
	db, errs := Load(dir)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	tests := []struct {
		key           model.SpotKey
		hero, villain model.BetSize
	}{
		{model.SpotKey{Source: "GTO", Scenario: "Defend", Name: "BB vs BTN"}, 1, 2.5},
		{model.SpotKey{Source: "GTO", Scenario: "Defend", Name: "BB vs CO"}, 0, 3},
		{model.SpotKey{Source: "GTO", Scenario: "Squeeze", Name: "SB vs BTN"}, 0.5, 2.2},
	}
	for _, tc := range tests {
		spot, ok := Lookup(db, tc.key)
		if !ok {
			t.Fatalf("%s: spot missing", tc.key)
		}
		if spot.Setup.HeroBet != tc.hero || spot.Setup.VillainBet != tc.villain {
			t.Fatalf("%s: bets %v/%v, want %v/%v", tc.key, spot.Setup.HeroBet, spot.Setup.VillainBet, tc.hero, tc.villain)
		}
	}
}

func TestMergeUnknownNames(t *testing.T) {
	db := model.Database{}
	Merge(db, File{Spots: map[string]model.Spot{"x": {}}})
	if _, ok := db[Unknown][Unknown]["x"]; !ok {
		t.Fatalf("expected spot under Unknown/Unknown")
	}
}

func TestCacheReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	calls := 0
	stamp := time.Unix(100, 0)
	c := NewCache(dir)
	c.loadFn = func(string) (model.Database, []error) {
		calls++
		return model.Database{}, nil
	}
	c.statDir = func(string) (time.Time, int) { return stamp, 1 }

	c.Get()
	c.Get()
	if calls != 1 {
		t.Fatalf("expected one load for unchanged dir, got %d", calls)
	}
	stamp = stamp.Add(time.Second)
	c.Get()
	if calls != 2 {
		t.Fatalf("expected reload after change, got %d", calls)
	}
	c.Reload()
	if calls != 3 {
		t.Fatalf("expected forced reload, got %d", calls)
	}
}

func TestSelect(t *testing.T) {
	db := model.Database{
		"A": {"Open": {"EP": {}, "MP": {}}, "Def": {"BB": {}}},
		"B": {"Open": {"CO": {}}},
	}

	pool, applied := Select(db, model.Settings{})
	if len(pool) != 1 || pool[0].Scenario != "Def" {
		t.Fatalf("expected fallback to first source/scenario, got %v", pool)
	}
	if applied.Sources[0] != "A" || applied.Scenarios[0] != "Def" {
		t.Fatalf("unexpected applied settings: %+v", applied)
	}

	pool, _ = Select(db, model.Settings{Sources: []string{"A", "B", "C"}, Scenarios: []string{"Open"}})
	if len(pool) != 3 {
		t.Fatalf("expected 3 open spots, got %v", pool)
	}

	want := model.SpotKey{Source: "B", Scenario: "Open", Name: "CO"}
	pool, applied = Select(db, model.Settings{Spots: []model.SpotKey{want, {Source: "Z", Scenario: "Z", Name: "Z"}}})
	if len(pool) != 1 || pool[0] != want || len(applied.Spots) != 1 {
		t.Fatalf("expected explicit spot selection, got %v", pool)
	}
}
