// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/pfdrill/internal/hand"
	"github.com/verte-zerg/pfdrill/internal/model"
	"github.com/verte-zerg/pfdrill/internal/srs"

	_ "modernc.org/sqlite" // SQLite driver.
)

const settingsKey = "filters"

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for weights, history and settings.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS srs_weights (
			source TEXT NOT NULL,
			scenario TEXT NOT NULL,
			spot TEXT NOT NULL,
			hand TEXT NOT NULL,
			weight INTEGER NOT NULL,
			PRIMARY KEY (source, scenario, spot, hand)
		);`,
		`CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY,
			answered_at TEXT NOT NULL,
			source TEXT NOT NULL,
			scenario TEXT NOT NULL,
			spot TEXT NOT NULL,
			hand TEXT NOT NULL,
			result INTEGER NOT NULL,
			correct_action TEXT NOT NULL,
			chosen_action TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_history_answered_at ON history(answered_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Weight returns the stored weight for key, or srs.Default.
func (s *Store) Weight(ctx context.Context, key model.WeightKey) (int, error) {
	var w int
	err := s.db.QueryRowContext(ctx,
		`SELECT weight FROM srs_weights WHERE source = ? AND scenario = ? AND spot = ? AND hand = ?`,
		key.Spot.Source, key.Spot.Scenario, key.Spot.Name, string(key.Hand),
	).Scan(&w)
	if errors.Is(err, sql.ErrNoRows) {
		return srs.Default, nil
	}
	if err != nil {
		return 0, err
	}
	return w, nil
}

// SetWeight stores the weight for key.
func (s *Store) SetWeight(ctx context.Context, key model.WeightKey, weight int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO srs_weights (source, scenario, spot, hand, weight) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (source, scenario, spot, hand) DO UPDATE SET weight = excluded.weight`,
		key.Spot.Source, key.Spot.Scenario, key.Spot.Name, string(key.Hand), weight,
	)
	return err
}

// Weights returns every stored weight for a spot.
func (s *Store) Weights(ctx context.Context, spot model.SpotKey) (map[hand.Hand]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT hand, weight FROM srs_weights WHERE source = ? AND scenario = ? AND spot = ?`,
		spot.Source, spot.Scenario, spot.Name,
	)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	out := map[hand.Hand]int{}
	for rows.Next() {
		var h string
		var w int
		if err := rows.Scan(&h, &w); err != nil {
			return nil, err
		}
		out[hand.Hand(h)] = w
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// AppendHistory stores an answered drill.
func (s *Store) AppendHistory(ctx context.Context, rec model.HistoryRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (answered_at, source, scenario, spot, hand, result, correct_action, chosen_action)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Date.UTC().Format(timeLayout),
		rec.Spot.Source,
		rec.Spot.Scenario,
		rec.Spot.Name,
		string(rec.Hand),
		boolToInt(rec.Correct),
		string(rec.Expected),
		string(rec.Chosen),
	)
	return err
}

// ListHistory returns records matching cfg ordered oldest first.
func (s *Store) ListHistory(ctx context.Context, cfg model.StatsConfig) ([]model.HistoryRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Source != "" {
		clauses = append(clauses, "source = ?")
		args = append(args, cfg.Source)
	}
	if cfg.Scenario != "" {
		clauses = append(clauses, "scenario = ?")
		args = append(args, cfg.Scenario)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "answered_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT answered_at, source, scenario, spot, hand, result, correct_action, chosen_action
		FROM history
		WHERE %s
		ORDER BY answered_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.HistoryRecord
	for rows.Next() {
		var rec model.HistoryRecord
		var answeredAt, h, expected, chosen string
		var result int
		if err := rows.Scan(&answeredAt, &rec.Spot.Source, &rec.Spot.Scenario, &rec.Spot.Name, &h, &result, &expected, &chosen); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, answeredAt)
		if err != nil {
			return nil, err
		}
		rec.Date = parsed.Local()
		rec.Hand = hand.Hand(h)
		rec.Correct = result != 0
		rec.Expected = model.Action(expected)
		rec.Chosen = model.Action(chosen)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(records) > cfg.Last {
		records = records[len(records)-cfg.Last:]
	}
	return records, nil
}

// DeleteHistory removes rows selected by p and returns how many were deleted.
func (s *Store) DeleteHistory(ctx context.Context, p model.Prune, now time.Time) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	cutoff := p.Cutoff(now).UTC().Format(timeLayout)
	var res sql.Result
	var err error
	switch p.Mode {
	case model.PruneAll:
		res, err = s.db.ExecContext(ctx, `DELETE FROM history`)
	case model.PruneOlderThan:
		res, err = s.db.ExecContext(ctx, `DELETE FROM history WHERE answered_at < ?`, cutoff)
	case model.PruneWithin:
		res, err = s.db.ExecContext(ctx, `DELETE FROM history WHERE answered_at >= ?`, cutoff)
	}
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// LoadSettings returns the saved filter, or zero settings when none were saved.
func (s *Store) LoadSettings(ctx context.Context) (model.Settings, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, settingsKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Settings{}, nil
	}
	if err != nil {
		return model.Settings{}, err
	}
	var settings model.Settings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return model.Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return settings, nil
}

// SaveSettings stores the applied filter.
func (s *Store) SaveSettings(ctx context.Context, settings model.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		settingsKey, string(raw),
	)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
