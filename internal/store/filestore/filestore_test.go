package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/pfdrill/internal/model"
	"github.com/verte-zerg/pfdrill/internal/srs"
)

var testSpot = model.SpotKey{Source: "GTO", Scenario: "Open", Name: "UTG"}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return st
}

func TestWeightsNestedLayout(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	key := model.WeightKey{Spot: testSpot, Hand: "AKs"}
	if _, err := srs.Update(ctx, st, key, model.RatingHard); err != nil {
		t.Fatalf("update: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(st.dir, WeightsFile))
	if err != nil {
		t.Fatalf("read weights: %v", err)
	}
	var data map[string]map[string]map[string]map[string]int
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data["GTO"]["Open"]["UTG"]["AKs"] != 250 {
		t.Fatalf("unexpected layout: %s", raw)
	}

	w, err := st.Weight(ctx, model.WeightKey{Spot: testSpot, Hand: "KK"})
	if err != nil {
		t.Fatalf("weight: %v", err)
	}
	if w != srs.Default {
		t.Fatalf("expected default for unrated hand, got %d", w)
	}
}

func TestHistoryHeaderAndAppend(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	date := time.Date(2024, 5, 10, 9, 30, 0, 0, time.Local)
	for i := 0; i < 2; i++ {
		rec := model.HistoryRecord{Date: date, Spot: testSpot, Hand: "AKs", Correct: true, Expected: model.ActionRaise, Chosen: model.ActionRaise}
		if err := st.AppendHistory(ctx, rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	raw, err := os.ReadFile(filepath.Join(st.dir, HistoryFile))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus two rows, got %q", raw)
	}
	if lines[0] != strings.Join(Header, ",") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != "2024-05-10 09:30:00,UTG,AKs,1,RAISE,GTO,Open,RAISE" {
		t.Fatalf("unexpected row %q", lines[1])
	}
}

func TestAppendToEmptyHistoryWritesHeader(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if err := os.WriteFile(filepath.Join(st.dir, HistoryFile), nil, 0o644); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	rec := model.HistoryRecord{Date: time.Now(), Spot: testSpot, Hand: "AA", Correct: true, Expected: model.ActionRaise, Chosen: model.ActionRaise}
	if err := st.AppendHistory(ctx, rec); err != nil {
		t.Fatalf("append: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(st.dir, HistoryFile))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(raw), strings.Join(Header, ",")+"\n") {
		t.Fatalf("expected header in empty file, got %q", raw)
	}
	records, err := st.ListHistory(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].Hand != "AA" {
		t.Fatalf("expected the appended record, got %+v", records)
	}
}

func TestLegacyRowsReadable(t *testing.T) {
	st := openTestStore(t)
	content := "Date,Spot,Hand,Result,CorrectAction\n2024-01-02 10:00:00,BTN,AA,0,RAISE\n"
	if err := os.WriteFile(filepath.Join(st.dir, HistoryFile), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	records, err := st.ListHistory(context.Background(), model.StatsConfig{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	rec := records[0]
	if rec.Spot.Name != "BTN" || rec.Hand != "AA" || rec.Correct || rec.Expected != model.ActionRaise || rec.Chosen != "" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestDeleteHistoryModes(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.Local)
	seed := func(t *testing.T) *Store {
		st := openTestStore(t)
		for _, age := range []int{10, 5, 1} {
			rec := model.HistoryRecord{Date: now.AddDate(0, 0, -age), Spot: testSpot, Hand: "QQ", Expected: model.ActionCall, Chosen: model.ActionFold}
			if err := st.AppendHistory(ctx, rec); err != nil {
				t.Fatalf("append: %v", err)
			}
		}
		return st
	}

	tests := []struct {
		name      string
		prune     model.Prune
		deleted   int
		remaining int
	}{
		{"all", model.Prune{Mode: model.PruneAll}, 3, 0},
		{"older than", model.Prune{Mode: model.PruneOlderThan, Days: 7}, 1, 2},
		{"within", model.Prune{Mode: model.PruneWithin, Days: 7}, 2, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			st := seed(t)
			n, err := st.DeleteHistory(ctx, tc.prune, now)
			if err != nil {
				t.Fatalf("delete: %v", err)
			}
			if n != tc.deleted {
				t.Fatalf("deleted %d rows, want %d", n, tc.deleted)
			}
			records, err := st.ListHistory(ctx, model.StatsConfig{})
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(records) != tc.remaining {
				t.Fatalf("remaining %d rows, want %d", len(records), tc.remaining)
			}
			raw, err := os.ReadFile(filepath.Join(st.dir, HistoryFile))
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if !strings.HasPrefix(string(raw), strings.Join(Header, ",")+"\n") {
				t.Fatalf("header lost after delete: %q", raw)
			}
		})
	}
}

func TestDeleteHistoryMissingFile(t *testing.T) {
	st := openTestStore(t)
	n, err := st.DeleteHistory(context.Background(), model.Prune{Mode: model.PruneAll}, time.Now())
	if err != nil || n != 0 {
		t.Fatalf("expected no-op, got n=%d err=%v", n, err)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	want := model.Settings{Sources: []string{"GTO"}, Scenarios: []string{"Open"}, Spots: []model.SpotKey{testSpot}}
	if err := st.SaveSettings(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := st.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Spots) != 1 || got.Spots[0] != testSpot || got.Sources[0] != "GTO" {
		t.Fatalf("unexpected settings: %+v", got)
	}
}
