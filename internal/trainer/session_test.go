package trainer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/verte-zerg/pfdrill/internal/decision"
	"github.com/verte-zerg/pfdrill/internal/generator"
	"github.com/verte-zerg/pfdrill/internal/model"
	"github.com/verte-zerg/pfdrill/internal/store/filestore"
)

var (
	defendKey = model.SpotKey{Source: "GTO", Scenario: "Defend", Name: "BB_vs_BTN"}
	openKey   = model.SpotKey{Source: "GTO", Scenario: "Open", Name: "UTG"}
)

func testDatabase() model.Database {
	return model.Database{
		"GTO": {
			"Defend": {
				"BB_vs_BTN": {
					Type:   model.SpotDefend,
					Setup:  model.Setup{HeroPos: "BB", VillainPos: "BTN", VillainBet: 2.5, HeroBet: 1},
					Ranges: model.Ranges{ThreeBet: "AKs:20", Call: "AKs:30", Training: "AKs"},
				},
			},
			"Open": {
				"UTG": {
					Type:   model.SpotOpen,
					Setup:  model.Setup{HeroPos: "UTG"},
					Ranges: model.Ranges{Full: "AA,KK", Training: "AA"},
				},
			},
		},
	}
}

func newTestSession(t *testing.T, pool ...model.SpotKey) (*Session, *filestore.Store) {
	t.Helper()
	st, err := filestore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	s := NewSession(testDatabase(), pool, st, generator.NewWithSeed(7))
	s.now = func() time.Time { return time.Date(2024, 5, 10, 12, 0, 0, 0, time.Local) }
	return s, st
}

func TestSessionLifecycle(t *testing.T) {
	s, st := newTestSession(t, defendKey)
	ctx := context.Background()

	if _, err := s.Rate(ctx, model.RatingHard); !errors.Is(err, ErrNotAnswered) {
		t.Fatalf("expected ErrNotAnswered before answering, got %v", err)
	}
	d, err := s.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if d.Key != defendKey || d.Hand != "AKs" {
		t.Fatalf("unexpected drill: %+v", d)
	}
	if d.Raise != 20 || d.Call != 30 {
		t.Fatalf("unexpected frequencies raise=%v call=%v", d.Raise, d.Call)
	}
	if d.Expected != decision.Decide(d.Spot, d.Hand, d.Roll) {
		t.Fatalf("expected action %s does not match roll %d", d.Expected, d.Roll)
	}
	again, err := s.Next(ctx)
	if err != nil || again.Roll != d.Roll || again.Hand != d.Hand {
		t.Fatalf("pending drill must be stable, got %+v err=%v", again, err)
	}

	res, err := s.Answer(ctx, d.Expected)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if !res.Correct || s.State() != Answered {
		t.Fatalf("unexpected result %+v state %s", res, s.State())
	}
	if _, err := s.Answer(ctx, d.Expected); !errors.Is(err, ErrNotAwaiting) {
		t.Fatalf("expected ErrNotAwaiting on second answer, got %v", err)
	}
	if _, err := s.Next(ctx); !errors.Is(err, ErrPendingRating) {
		t.Fatalf("expected ErrPendingRating, got %v", err)
	}

	w, err := s.Rate(ctx, model.RatingHard)
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if w != 250 || s.State() != AwaitingInput {
		t.Fatalf("expected weight 250 and awaiting state, got %d %s", w, s.State())
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("rating must clear the current drill")
	}

	records, err := st.ListHistory(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].Spot != defendKey || records[0].Chosen != d.Expected {
		t.Fatalf("unexpected history: %+v", records)
	}
	if score := s.Score(); score.Answered != 1 || score.Correct != 1 || score.Accuracy() != 100 {
		t.Fatalf("unexpected score: %+v", score)
	}
}

func TestSessionRejectsIllegalAction(t *testing.T) {
	s, _ := newTestSession(t, openKey)
	ctx := context.Background()
	d, err := s.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if d.Expected != model.ActionRaise || len(d.Legal) != 2 {
		t.Fatalf("unexpected open drill: %+v", d)
	}
	if _, err := s.Answer(ctx, model.ActionCall); !errors.Is(err, ErrIllegalAction) {
		t.Fatalf("expected ErrIllegalAction, got %v", err)
	}
	if s.State() != AwaitingInput {
		t.Fatalf("illegal action must not change state")
	}
	res, err := s.Answer(ctx, model.ActionFold)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if res.Correct || s.Score().Answered != 1 || s.Score().Correct != 0 {
		t.Fatalf("fold with AA must be wrong: %+v", res)
	}
}

func TestSessionEmptyPool(t *testing.T) {
	s, _ := newTestSession(t)
	if _, err := s.Next(context.Background()); !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("expected ErrEmptyPool, got %v", err)
	}
}

func TestSetPoolDropsPendingDrill(t *testing.T) {
	s, _ := newTestSession(t, defendKey)
	ctx := context.Background()
	if _, err := s.Next(ctx); err != nil {
		t.Fatalf("next: %v", err)
	}
	s.SetPool(testDatabase(), []model.SpotKey{openKey})
	d, err := s.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if d.Key != openKey {
		t.Fatalf("expected drill from new pool, got %s", d.Key)
	}
}
