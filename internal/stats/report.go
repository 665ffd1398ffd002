package stats

import (
	"context"

	"github.com/verte-zerg/pfdrill/internal/model"
)

// HistorySource lists stored answers.
type HistorySource interface {
	ListHistory(ctx context.Context, cfg model.StatsConfig) ([]model.HistoryRecord, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Records  []model.HistoryRecord
	Totals   Aggregate
	Spots    []Aggregate
	Hands    []Aggregate
	Actions  []Aggregate
	Days     []DayPoint
	Mistakes []Mistake
	// Recent covers the last CurveWindow answers.
	Recent Aggregate
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, src HistorySource, cfg model.StatsConfig) (Report, error) {
	records, err := src.ListHistory(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(records) > cfg.Last {
		records = records[len(records)-cfg.Last:]
	}
	recent := records
	if cfg.CurveWindow > 0 && len(recent) > cfg.CurveWindow {
		recent = recent[len(recent)-cfg.CurveWindow:]
	}
	return Report{
		Records:  records,
		Totals:   Summary(records),
		Spots:    BySpot(records),
		Hands:    ByHand(records),
		Actions:  ByAction(records),
		Days:     DailyAccuracy(records),
		Mistakes: Mistakes(records),
		Recent:   Summary(recent),
	}, nil
}
