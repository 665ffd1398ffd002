package main

import (
	"context"
	"fmt"
	"time"

	"github.com/verte-zerg/pfdrill/internal/config"
	"github.com/verte-zerg/pfdrill/internal/store"
	"github.com/verte-zerg/pfdrill/internal/store/filestore"
	"github.com/verte-zerg/pfdrill/internal/store/pgstore"
	"github.com/verte-zerg/pfdrill/internal/trainer"
)

var timeNow = time.Now

// openBackend opens the configured persistence backend.
func openBackend(ctx context.Context, r config.Resolved) (trainer.Store, error) {
	loc := r.StoreLocation()
	switch r.Backend {
	case config.BackendPostgres:
		if loc == "" {
			return nil, fmt.Errorf("postgres backend needs --database-url or %s", config.EnvDatabaseURL)
		}
		st, err := pgstore.Open(ctx, loc)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		return st, nil
	case config.BackendFiles:
		st, err := filestore.Open(loc)
		if err != nil {
			return nil, fmt.Errorf("failed to open data dir: %w", err)
		}
		return st, nil
	default:
		st, err := store.Open(loc)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %w", err)
		}
		return st, nil
	}
}
