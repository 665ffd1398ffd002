// Package server exposes the drill loop over HTTP.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"reflect"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/verte-zerg/pfdrill/internal/generator"
	"github.com/verte-zerg/pfdrill/internal/model"
	"github.com/verte-zerg/pfdrill/internal/ranges"
	"github.com/verte-zerg/pfdrill/internal/trainer"
)

//go:embed web/*
var webFS embed.FS

// Server holds one drill session. Handlers serialize on mu, so the API is
// meant for a single user.
type Server struct {
	mu      sync.Mutex
	cache   *ranges.Cache
	store   trainer.Store
	session *trainer.Session
	now     func() time.Time
}

// New loads the spot database and saved filter and prepares a session.
func New(ctx context.Context, cache *ranges.Cache, st trainer.Store, gen *generator.Generator) (*Server, error) {
	settings, err := st.LoadSettings(ctx)
	if err != nil {
		return nil, err
	}
	db, errs := cache.Get()
	for _, e := range errs {
		log.Printf("skipping range file: %v", e)
	}
	pool, _ := ranges.Select(db, settings)
	return &Server{
		cache:   cache,
		store:   st,
		session: trainer.NewSession(db, pool, st, gen),
		now:     time.Now,
	}, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	sub, _ := fs.Sub(webFS, "web")
	r.Handle("/web/*", http.StripPrefix("/web/", http.FileServer(http.FS(sub))))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/web/index.html", http.StatusFound)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/spots", s.handleSpots)
		r.Post("/spots/reload", s.handleReload)
		r.Get("/drill", s.handleDrill)
		r.Post("/answer", s.handleAnswer)
		r.Post("/rate", s.handleRate)
		r.Get("/matrix", s.handleMatrix)
		r.Get("/history", s.handleHistory)
		r.Delete("/history", s.handleDeleteHistory)
		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)
	})
	return r
}

// refresh picks up changed range files when no drill is in flight.
func (s *Server) refresh(ctx context.Context) error {
	if s.session.State() != trainer.AwaitingInput {
		return nil
	}
	if _, pending := s.session.Current(); pending {
		return nil
	}
	db, _ := s.cache.Get()
	if sameDatabase(db, s.session.Database()) {
		return nil
	}
	settings, err := s.store.LoadSettings(ctx)
	if err != nil {
		return err
	}
	pool, _ := ranges.Select(db, settings)
	s.session.SetPool(db, pool)
	return nil
}

// sameDatabase compares snapshot identity; the cache returns the same map
// until files change.
func sameDatabase(a, b model.Database) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, trainer.ErrIllegalAction):
		status = http.StatusBadRequest
	case errors.Is(err, errNotFound), errors.Is(err, trainer.ErrEmptyPool):
		status = http.StatusNotFound
	case errors.Is(err, trainer.ErrNotAwaiting), errors.Is(err, trainer.ErrNotAnswered), errors.Is(err, trainer.ErrPendingRating):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}
