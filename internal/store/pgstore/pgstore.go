// Package pgstore keeps weights, history and settings in PostgreSQL so several
// trainers can share progress.
package pgstore

import (
	"context"
	"embed"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/verte-zerg/pfdrill/internal/hand"
	"github.com/verte-zerg/pfdrill/internal/model"
	"github.com/verte-zerg/pfdrill/internal/srs"
)

//go:embed schema.sql
var schema embed.FS

const settingsKey = "filters"

type Store struct {
	pool *pgxpool.Pool
}

// Open connects to dsn and applies the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	st := &Store{pool: p}
	if err := st.Migrate(ctx); err != nil {
		p.Close()
		return nil, err
	}
	return st, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Migrate runs the embedded schema. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, string(sqlBytes))
	return err
}

func (s *Store) Weight(ctx context.Context, key model.WeightKey) (int, error) {
	var w int
	err := s.pool.QueryRow(ctx, `
		SELECT weight FROM srs_weights
		 WHERE source = $1 AND scenario = $2 AND spot = $3 AND hand = $4
	`, key.Spot.Source, key.Spot.Scenario, key.Spot.Name, string(key.Hand)).Scan(&w)
	if errors.Is(err, pgx.ErrNoRows) {
		return srs.Default, nil
	}
	return w, err
}

func (s *Store) SetWeight(ctx context.Context, key model.WeightKey, weight int) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO srs_weights(source, scenario, spot, hand, weight)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (source, scenario, spot, hand) DO UPDATE
		  SET weight = EXCLUDED.weight
	`, key.Spot.Source, key.Spot.Scenario, key.Spot.Name, string(key.Hand), weight)
	return err
}

func (s *Store) Weights(ctx context.Context, spot model.SpotKey) (map[hand.Hand]int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT hand, weight FROM srs_weights
		 WHERE source = $1 AND scenario = $2 AND spot = $3
	`, spot.Source, spot.Scenario, spot.Name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[hand.Hand]int{}
	for rows.Next() {
		var h string
		var w int
		if err := rows.Scan(&h, &w); err != nil {
			return nil, err
		}
		out[hand.Hand(h)] = w
	}
	return out, rows.Err()
}

func (s *Store) AppendHistory(ctx context.Context, rec model.HistoryRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO history(answered_at, source, scenario, spot, hand, result, correct_action, chosen_action)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, rec.Date, rec.Spot.Source, rec.Spot.Scenario, rec.Spot.Name, string(rec.Hand),
		rec.Correct, string(rec.Expected), string(rec.Chosen))
	return err
}

// ListHistory returns records matching cfg ordered oldest first.
func (s *Store) ListHistory(ctx context.Context, cfg model.StatsConfig) ([]model.HistoryRecord, error) {
	var (
		clauses = []string{"TRUE"}
		args    []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if cfg.Source != "" {
		clauses = append(clauses, "source = "+arg(cfg.Source))
	}
	if cfg.Scenario != "" {
		clauses = append(clauses, "scenario = "+arg(cfg.Scenario))
	}
	if cfg.Since != nil {
		clauses = append(clauses, "answered_at >= "+arg(*cfg.Since))
	}
	rows, err := s.pool.Query(ctx, `
		SELECT answered_at, source, scenario, spot, hand, result, correct_action, chosen_action
		  FROM history
		 WHERE `+strings.Join(clauses, " AND ")+`
		 ORDER BY answered_at ASC, id ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.HistoryRecord
	for rows.Next() {
		var (
			rec              model.HistoryRecord
			h, expected, got string
		)
		if err := rows.Scan(&rec.Date, &rec.Spot.Source, &rec.Spot.Scenario, &rec.Spot.Name, &h, &rec.Correct, &expected, &got); err != nil {
			return nil, err
		}
		rec.Date = rec.Date.Local()
		rec.Hand = hand.Hand(h)
		rec.Expected = model.Action(expected)
		rec.Chosen = model.Action(got)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(out) > cfg.Last {
		out = out[len(out)-cfg.Last:]
	}
	return out, nil
}

func (s *Store) DeleteHistory(ctx context.Context, p model.Prune, now time.Time) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	var (
		sql  = `DELETE FROM history`
		args []any
	)
	switch p.Mode {
	case model.PruneOlderThan:
		sql += ` WHERE answered_at < $1`
		args = append(args, p.Cutoff(now))
	case model.PruneWithin:
		sql += ` WHERE answered_at >= $1`
		args = append(args, p.Cutoff(now))
	}
	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *Store) LoadSettings(ctx context.Context) (model.Settings, error) {
	var settings model.Settings
	err := s.pool.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, settingsKey).Scan(&settings)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Settings{}, nil
	}
	return settings, err
}

func (s *Store) SaveSettings(ctx context.Context, settings model.Settings) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO settings(key, value) VALUES ($1,$2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, settingsKey, settings)
	return err
}
