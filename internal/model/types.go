// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/pfdrill/internal/hand"
)

// SpotKeySeparator joins key parts in the textual form used by the CLI and HTTP API.
const SpotKeySeparator = "|"

// SpotKey identifies a spot within the ranges database.
type SpotKey struct {
	Source   string `json:"source" yaml:"source"`
	Scenario string `json:"scenario" yaml:"scenario"`
	Name     string `json:"spot" yaml:"spot"`
}

// String renders the key as "source|scenario|spot".
func (k SpotKey) String() string {
	return strings.Join([]string{k.Source, k.Scenario, k.Name}, SpotKeySeparator)
}

// ParseSpotKey parses "source|scenario|spot". The spot name may itself contain the separator.
func ParseSpotKey(s string) (SpotKey, error) {
	parts := strings.SplitN(s, SpotKeySeparator, 3)
	if len(parts) != 3 {
		return SpotKey{}, fmt.Errorf("invalid spot key %q (expected source|scenario|spot)", s)
	}
	key := SpotKey{
		Source:   strings.TrimSpace(parts[0]),
		Scenario: strings.TrimSpace(parts[1]),
		Name:     strings.TrimSpace(parts[2]),
	}
	if key.Source == "" || key.Scenario == "" || key.Name == "" {
		return SpotKey{}, fmt.Errorf("invalid spot key %q (empty part)", s)
	}
	return key, nil
}

// SpotType tells whether hero opens the pot or faces a bet.
type SpotType string

const (
	SpotOpen   SpotType = "open"
	SpotDefend SpotType = "defend"
)

// Setup describes table positions and bet sizes for a spot.
type Setup struct {
	HeroPos    string  `json:"hero_pos,omitempty" yaml:"hero_pos,omitempty"`
	VillainPos string  `json:"villain_pos,omitempty" yaml:"villain_pos,omitempty"`
	ButtonPos  string  `json:"btn_pos,omitempty" yaml:"btn_pos,omitempty"`
	HeroBet    BetSize `json:"hero_bet,omitempty" yaml:"hero_bet,omitempty"`
	VillainBet BetSize `json:"villain_bet,omitempty" yaml:"villain_bet,omitempty"`
}

// Ranges holds the range strings of a spot by category.
type Ranges struct {
	Call     string `json:"call,omitempty" yaml:"call,omitempty"`
	ThreeBet string `json:"3bet,omitempty" yaml:"3bet,omitempty"`
	FourBet  string `json:"4bet,omitempty" yaml:"4bet,omitempty"`
	Full     string `json:"full,omitempty" yaml:"full,omitempty"`
	Training string `json:"training,omitempty" yaml:"training,omitempty"`
	Source   string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Raise returns the raising range: 4bet when present, otherwise 3bet.
func (r Ranges) Raise() string {
	if r.FourBet != "" {
		return r.FourBet
	}
	return r.ThreeBet
}

// TrainingRange returns the hands to drill: training, then source, then full.
func (r Ranges) TrainingRange() string {
	switch {
	case r.Training != "":
		return r.Training
	case r.Source != "":
		return r.Source
	default:
		return r.Full
	}
}

// Spot is a single drillable decision point.
type Spot struct {
	Type   SpotType       `json:"spot_type,omitempty" yaml:"spot_type,omitempty"`
	Setup  Setup          `json:"setup" yaml:"setup"`
	Ranges Ranges         `json:"ranges" yaml:"ranges"`
	Stats  map[string]any `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// Kind returns the declared spot type. Files without spot_type fall back to
// defend when the setup names a villain, open otherwise.
func (s Spot) Kind() SpotType {
	switch s.Type {
	case SpotOpen, SpotDefend:
		return s.Type
	}
	if s.Setup.VillainPos != "" {
		return SpotDefend
	}
	return SpotOpen
}

// Database maps source -> scenario -> spot name -> spot.
type Database map[string]map[string]map[string]Spot

// Action is a preflop decision.
type Action string

const (
	ActionFold  Action = "FOLD"
	ActionCall  Action = "CALL"
	ActionRaise Action = "RAISE"
)

// ParseAction accepts action names case-insensitively, plus single-letter shortcuts.
func ParseAction(s string) (Action, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FOLD", "F":
		return ActionFold, nil
	case "CALL", "C":
		return ActionCall, nil
	case "RAISE", "R":
		return ActionRaise, nil
	default:
		return "", fmt.Errorf("unknown action %q", s)
	}
}

// Rating is the learner's self-assessed difficulty.
type Rating string

const (
	RatingHard   Rating = "hard"
	RatingNormal Rating = "normal"
	RatingEasy   Rating = "easy"
)

// ParseRating accepts rating names case-insensitively.
func ParseRating(s string) (Rating, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hard":
		return RatingHard, nil
	case "normal", "norm":
		return RatingNormal, nil
	case "easy":
		return RatingEasy, nil
	default:
		return "", fmt.Errorf("unknown rating %q", s)
	}
}

// WeightKey identifies one spaced-repetition weight.
type WeightKey struct {
	Spot SpotKey
	Hand hand.Hand
}

// HistoryRecord is one answered drill.
type HistoryRecord struct {
	Date     time.Time `json:"date"`
	Spot     SpotKey   `json:"spot"`
	Hand     hand.Hand `json:"hand"`
	Correct  bool      `json:"correct"`
	Expected Action    `json:"correct_action"`
	Chosen   Action    `json:"chosen_action,omitempty"`
}

// Settings records the last applied drill filter.
type Settings struct {
	Sources   []string  `json:"sources,omitempty"`
	Scenarios []string  `json:"scenarios,omitempty"`
	Spots     []SpotKey `json:"spots,omitempty"`
}

// PruneMode selects which history rows a deletion removes.
type PruneMode string

const (
	// PruneAll removes every row.
	PruneAll PruneMode = "all"
	// PruneOlderThan removes rows dated before now minus Days.
	PruneOlderThan PruneMode = "older-than"
	// PruneWithin removes rows dated within the last Days.
	PruneWithin PruneMode = "within"
)

// Prune describes a history deletion.
type Prune struct {
	Mode PruneMode
	Days int
}

// ParsePruneMode validates a prune mode name.
func ParsePruneMode(s string) (PruneMode, error) {
	switch PruneMode(strings.ToLower(strings.TrimSpace(s))) {
	case PruneAll:
		return PruneAll, nil
	case PruneOlderThan:
		return PruneOlderThan, nil
	case PruneWithin:
		return PruneWithin, nil
	default:
		return "", fmt.Errorf("unknown prune mode %q (use all, older-than or within)", s)
	}
}

// Cutoff returns now minus Days.
func (p Prune) Cutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -p.Days)
}

// Removes reports whether a row dated at d is deleted by p.
func (p Prune) Removes(d, now time.Time) bool {
	switch p.Mode {
	case PruneAll:
		return true
	case PruneOlderThan:
		return d.Before(p.Cutoff(now))
	case PruneWithin:
		return !d.Before(p.Cutoff(now))
	default:
		return false
	}
}

// Validate checks that the prune has a known mode and a usable day count.
func (p Prune) Validate() error {
	if _, err := ParsePruneMode(string(p.Mode)); err != nil {
		return err
	}
	if p.Mode != PruneAll && p.Days < 0 {
		return fmt.Errorf("days must be >= 0")
	}
	return nil
}

// Config defines drill settings.
type Config struct {
	SpotsDir  string
	Sources   []string
	Scenarios []string
	Spots     []SpotKey
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Source      string
	Scenario    string
	Since       *time.Time
	Last        int
	CurveWindow int
}
