package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/verte-zerg/pfdrill/internal/hand"
	"github.com/verte-zerg/pfdrill/internal/matrix"
	"github.com/verte-zerg/pfdrill/internal/model"
	"github.com/verte-zerg/pfdrill/internal/ranges"
	"github.com/verte-zerg/pfdrill/internal/stats"
	"github.com/verte-zerg/pfdrill/internal/trainer"
)

var (
	errBadRequest = errors.New("bad request")
	errNotFound   = errors.New("not found")
)

type spotInfo struct {
	model.SpotKey
	Type  model.SpotType `json:"type"`
	Setup model.Setup    `json:"setup"`
}

type drillBody struct {
	Spot  model.SpotKey  `json:"spot"`
	Type  model.SpotType `json:"type"`
	Setup model.Setup    `json:"setup"`
	Hand  hand.Hand      `json:"hand"`
	Cards []string       `json:"cards"`
	Roll  int            `json:"roll"`
	Legal []model.Action `json:"legal"`
}

type answerBody struct {
	Correct  bool         `json:"correct"`
	Chosen   model.Action `json:"chosen"`
	Expected model.Action `json:"expected"`
	Raise    float64      `json:"raise"`
	Call     float64      `json:"call"`
	Fold     float64      `json:"fold"`
}

func newDrillBody(d trainer.Drill) drillBody {
	cards := make([]string, 0, len(d.Cards))
	for _, c := range d.Cards {
		cards = append(cards, c.String())
	}
	return drillBody{
		Spot:  d.Key,
		Type:  d.Spot.Kind(),
		Setup: d.Spot.Setup,
		Hand:  d.Hand,
		Cards: cards,
		Roll:  d.Roll,
		Legal: d.Legal,
	}
}

func newAnswerBody(res trainer.Result) answerBody {
	fold := 100 - res.Drill.Raise - res.Drill.Call
	if fold < 0 {
		fold = 0
	}
	return answerBody{
		Correct:  res.Correct,
		Chosen:   res.Chosen,
		Expected: res.Drill.Expected,
		Raise:    res.Drill.Raise,
		Call:     res.Drill.Call,
		Fold:     fold,
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.store.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleSpots(w http.ResponseWriter, r *http.Request) {
	db, errs := s.cache.Get()
	s.writeSpots(w, db, errs)
}

// handleReload rereads the spots directory and rebuilds the pool unless a
// drill is in flight.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, errs := s.cache.Reload()
	if err := s.refresh(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	s.writeSpots(w, db, errs)
}

func (s *Server) writeSpots(w http.ResponseWriter, db model.Database, errs []error) {
	keys := ranges.Keys(db)
	spots := make([]spotInfo, 0, len(keys))
	for _, k := range keys {
		spot, _ := ranges.Lookup(db, k)
		spots = append(spots, spotInfo{SpotKey: k, Type: spot.Kind(), Setup: spot.Setup})
	}
	problems := make([]string, 0, len(errs))
	for _, e := range errs {
		problems = append(problems, e.Error())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"dir":       s.cache.Dir(),
		"sources":   ranges.Sources(db),
		"scenarios": ranges.Scenarios(db, ranges.Sources(db)),
		"spots":     spots,
		"errors":    problems,
	})
}

func (s *Server) handleDrill(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	d, err := s.session.Next(r.Context())
	if errors.Is(err, trainer.ErrPendingRating) {
		res, _ := s.session.LastResult()
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":  err.Error(),
			"drill":  newDrillBody(res.Drill),
			"answer": newAnswerBody(res),
		})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newDrillBody(d))
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	action, err := model.ParseAction(req.Action)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.session.Answer(r.Context(), action)
	if err != nil {
		writeError(w, err)
		return
	}
	score := s.session.Score()
	writeJSON(w, http.StatusOK, map[string]any{
		"result": newAnswerBody(res),
		"score":  map[string]any{"answered": score.Answered, "correct": score.Correct, "accuracy": score.Accuracy()},
	})
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rating string `json:"rating"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	rating, err := model.ParseRating(req.Rating)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	weight, err := s.session.Rate(r.Context(), rating)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"weight": weight})
}

func (s *Server) handleMatrix(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key, err := model.ParseSpotKey(q.Get("spot"))
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	db, _ := s.cache.Get()
	spot, ok := ranges.Lookup(db, key)
	if !ok {
		writeError(w, fmt.Errorf("%w: spot %s", errNotFound, key))
		return
	}
	var highlight hand.Hand
	if raw := q.Get("highlight"); raw != "" {
		h, err := hand.Parse(raw)
		if err != nil {
			writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		highlight = h
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := matrix.RenderHTML(w, matrix.Build(spot, highlight)); err != nil {
		writeError(w, err)
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cfg := model.StatsConfig{Source: q.Get("source"), Scenario: q.Get("scenario")}
	if raw := q.Get("last"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, fmt.Errorf("%w: last must be a non-negative integer", errBadRequest))
			return
		}
		cfg.Last = n
	}
	rep, err := stats.BuildReport(r.Context(), s.store, cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	records := rep.Records
	if records == nil {
		records = []model.HistoryRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"records":  records,
		"total":    rep.Totals.Total,
		"correct":  rep.Totals.Correct,
		"accuracy": rep.Totals.Accuracy(),
		"weakest":  stats.Weakest(rep.Hands, 10, 2),
		"drilled":  stats.MostDrilled(rep.Hands, 10),
	})
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode, err := model.ParsePruneMode(strings.TrimSpace(q.Get("mode")))
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	p := model.Prune{Mode: mode}
	if mode != model.PruneAll {
		days, err := strconv.Atoi(q.Get("days"))
		if err != nil {
			writeError(w, fmt.Errorf("%w: days must be an integer", errBadRequest))
			return
		}
		p.Days = days
	}
	if err := p.Validate(); err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	n, err := s.store.DeleteHistory(r.Context(), p, s.now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": n})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.LoadSettings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	s.mu.Lock()
	pool := s.session.Pool()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"settings": settings, "pool": pool})
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req model.Settings
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	db, _ := s.cache.Get()
	pool, applied := ranges.Select(db, req)
	if err := s.store.SaveSettings(r.Context(), applied); err != nil {
		writeError(w, err)
		return
	}
	s.mu.Lock()
	s.session.SetPool(db, pool)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"settings": applied, "pool": pool})
}
