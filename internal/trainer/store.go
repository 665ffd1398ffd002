package trainer

import (
	"context"
	"time"

	"github.com/verte-zerg/pfdrill/internal/hand"
	"github.com/verte-zerg/pfdrill/internal/model"
)

// Store persists weights, history and settings. The SQLite, file and
// PostgreSQL backends all satisfy it.
type Store interface {
	Weight(ctx context.Context, key model.WeightKey) (int, error)
	SetWeight(ctx context.Context, key model.WeightKey, weight int) error
	Weights(ctx context.Context, spot model.SpotKey) (map[hand.Hand]int, error)
	AppendHistory(ctx context.Context, rec model.HistoryRecord) error
	ListHistory(ctx context.Context, cfg model.StatsConfig) ([]model.HistoryRecord, error)
	DeleteHistory(ctx context.Context, p model.Prune, now time.Time) (int, error)
	LoadSettings(ctx context.Context) (model.Settings, error)
	SaveSettings(ctx context.Context, settings model.Settings) error
	Close() error
}
