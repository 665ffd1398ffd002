package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/pfdrill/internal/generator"
	"github.com/verte-zerg/pfdrill/internal/model"
	"github.com/verte-zerg/pfdrill/internal/store/filestore"
	"github.com/verte-zerg/pfdrill/internal/trainer"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDrillFlow(t *testing.T) {
	st, err := filestore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	key := model.SpotKey{Source: "GTO", Scenario: "Open", Name: "HJ"}
	db := model.Database{"GTO": {"Open": {"HJ": {
		Type:   model.SpotOpen,
		Setup:  model.Setup{HeroPos: "HJ"},
		Ranges: model.Ranges{Full: "AA", Training: "AA"},
	}}}}
	session := trainer.NewSession(db, []model.SpotKey{key}, st, generator.NewWithSeed(3))
	m := NewModel(session, st)
	if !m.hasDrill || m.drill.Hand != "AA" {
		t.Fatalf("expected AA drill, got %+v", m.drill)
	}
	if !strings.Contains(m.View(), "Hero HJ") {
		t.Fatalf("view should describe the seat: %s", m.View())
	}

	m.Update(keyRunes("c"))
	if m.result != nil || m.errMsg == "" {
		t.Fatalf("call must be rejected in an open spot")
	}
	m.Update(keyRunes("r"))
	if m.result == nil || !m.result.Correct {
		t.Fatalf("expected correct raise, got %+v", m.result)
	}
	if !strings.Contains(m.View(), "Correct: RAISE") {
		t.Fatalf("feedback missing from view")
	}
	m.Update(keyRunes("1"))
	if m.result != nil || m.weight != 250 {
		t.Fatalf("rating should advance with weight 250, got result=%v weight=%d", m.result, m.weight)
	}
	if m.allTotal != 1 || session.Score().Answered != 1 {
		t.Fatalf("unexpected counters: all=%d session=%+v", m.allTotal, session.Score())
	}
}

func TestEnterRatesNormal(t *testing.T) {
	st, err := filestore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	key := model.SpotKey{Source: "GTO", Scenario: "Open", Name: "CO"}
	db := model.Database{"GTO": {"Open": {"CO": {
		Type:   model.SpotOpen,
		Ranges: model.Ranges{Full: "KK", Training: "KK"},
	}}}}
	m := NewModel(trainer.NewSession(db, []model.SpotKey{key}, st, generator.NewWithSeed(5)), st)

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.result != nil {
		t.Fatalf("enter must not answer a drill")
	}
	m.Update(keyRunes("r"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.result != nil || m.weight != 120 {
		t.Fatalf("enter should rate normal (weight 120), got weight %d", m.weight)
	}
}
