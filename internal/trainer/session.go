// Package trainer runs the drill loop: deal a spot and hand, judge the
// answer, record it and feed the self-rating back into the sampling weights.
package trainer

import (
	"context"
	"fmt"
	"time"

	"github.com/verte-zerg/pfdrill/internal/decision"
	"github.com/verte-zerg/pfdrill/internal/generator"
	"github.com/verte-zerg/pfdrill/internal/hand"
	"github.com/verte-zerg/pfdrill/internal/model"
	"github.com/verte-zerg/pfdrill/internal/ranges"
	"github.com/verte-zerg/pfdrill/internal/rangespec"
	"github.com/verte-zerg/pfdrill/internal/srs"
)

// State is the position of a session in the drill loop.
type State int

const (
	// AwaitingInput means a drill is shown, or about to be drawn, and needs an action.
	AwaitingInput State = iota
	// Answered means the action was judged and a rating is expected.
	Answered
)

func (s State) String() string {
	if s == Answered {
		return "answered"
	}
	return "awaiting"
}

// Drill is one dealt decision. Expected is fixed when the drill is drawn.
type Drill struct {
	Key      model.SpotKey
	Spot     model.Spot
	Hand     hand.Hand
	Cards    hand.HoleCards
	Roll     int
	Raise    float64
	Call     float64
	Expected model.Action
	Legal    []model.Action
}

// Result is the outcome of answering a drill.
type Result struct {
	Drill   Drill
	Chosen  model.Action
	Correct bool
}

// Score counts answers given during a session.
type Score struct {
	Answered int
	Correct  int
}

// Accuracy returns the correct share in percent.
func (s Score) Accuracy() float64 {
	if s.Answered == 0 {
		return 0
	}
	return float64(s.Correct) * 100 / float64(s.Answered)
}

// Session is not safe for concurrent use; callers serialize access.
type Session struct {
	db    model.Database
	pool  []model.SpotKey
	store Store
	gen   *generator.Generator
	now   func() time.Time

	state   State
	current *Drill
	last    *Result
	score   Score
}

// NewSession builds a session drilling spots from pool. A nil gen uses a
// time-seeded generator.
func NewSession(db model.Database, pool []model.SpotKey, st Store, gen *generator.Generator) *Session {
	if gen == nil {
		gen = generator.New()
	}
	return &Session{
		db:    db,
		pool:  pool,
		store: st,
		gen:   gen,
		now:   time.Now,
	}
}

// SetPool swaps the database and pool, discarding any pending drill.
func (s *Session) SetPool(db model.Database, pool []model.SpotKey) {
	s.db = db
	s.pool = pool
	s.state = AwaitingInput
	s.current = nil
	s.last = nil
}

func (s *Session) Pool() []model.SpotKey {
	out := make([]model.SpotKey, len(s.pool))
	copy(out, s.pool)
	return out
}

func (s *Session) Database() model.Database { return s.db }

func (s *Session) State() State { return s.state }

func (s *Session) Score() Score { return s.score }

// Current returns the pending drill, if any.
func (s *Session) Current() (Drill, bool) {
	if s.current == nil {
		return Drill{}, false
	}
	return *s.current, true
}

// LastResult returns the most recent answer while it awaits a rating.
func (s *Session) LastResult() (Result, bool) {
	if s.state != Answered || s.last == nil {
		return Result{}, false
	}
	return *s.last, true
}

// Next draws a drill. A drill that is already pending is returned unchanged.
func (s *Session) Next(ctx context.Context) (Drill, error) {
	if s.state == Answered {
		return Drill{}, ErrPendingRating
	}
	if s.current != nil {
		return *s.current, nil
	}
	if len(s.pool) == 0 {
		return Drill{}, ErrEmptyPool
	}

	key := s.gen.PickSpot(s.pool)
	spot, ok := ranges.Lookup(s.db, key)
	if !ok {
		return Drill{}, fmt.Errorf("spot %s not in database", key)
	}
	candidates := rangespec.Expand(spot.Ranges.TrainingRange())
	weights, err := s.store.Weights(ctx, key)
	if err != nil {
		return Drill{}, fmt.Errorf("failed to load weights: %w", err)
	}
	h := s.gen.Sample(candidates, srs.WeightFunc(weights))
	cards, err := s.gen.Deal(h)
	if err != nil {
		return Drill{}, err
	}
	roll := s.gen.Roll()
	raise, call := decision.Frequencies(spot, h)

	s.current = &Drill{
		Key:      key,
		Spot:     spot,
		Hand:     h,
		Cards:    cards,
		Roll:     roll,
		Raise:    raise,
		Call:     call,
		Expected: decision.Decide(spot, h, roll),
		Legal:    decision.LegalActions(spot),
	}
	return *s.current, nil
}

// Answer judges action against the pending drill and records it.
func (s *Session) Answer(ctx context.Context, action model.Action) (Result, error) {
	if s.state != AwaitingInput || s.current == nil {
		return Result{}, ErrNotAwaiting
	}
	d := *s.current
	if !decision.IsLegal(d.Spot, action) {
		return Result{}, fmt.Errorf("%w: %s", ErrIllegalAction, action)
	}
	res := Result{Drill: d, Chosen: action, Correct: action == d.Expected}
	rec := model.HistoryRecord{
		Date:     s.now(),
		Spot:     d.Key,
		Hand:     d.Hand,
		Correct:  res.Correct,
		Expected: d.Expected,
		Chosen:   action,
	}
	if err := s.store.AppendHistory(ctx, rec); err != nil {
		return Result{}, fmt.Errorf("failed to record answer: %w", err)
	}
	s.score.Answered++
	if res.Correct {
		s.score.Correct++
	}
	s.state = Answered
	s.last = &res
	return res, nil
}

// Rate applies the self-rating to the answered hand and returns its new weight.
func (s *Session) Rate(ctx context.Context, rating model.Rating) (int, error) {
	if s.state != Answered || s.last == nil {
		return 0, ErrNotAnswered
	}
	key := model.WeightKey{Spot: s.last.Drill.Key, Hand: s.last.Drill.Hand}
	w, err := srs.Update(ctx, s.store, key, rating)
	if err != nil {
		return 0, err
	}
	s.state = AwaitingInput
	s.current = nil
	s.last = nil
	return w, nil
}
