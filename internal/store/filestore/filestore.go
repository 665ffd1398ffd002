// Package filestore persists weights, history and settings as plain files:
// a JSON weight map, a CSV history log and a JSON settings document.
package filestore

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/verte-zerg/pfdrill/internal/hand"
	"github.com/verte-zerg/pfdrill/internal/model"
	"github.com/verte-zerg/pfdrill/internal/srs"
)

const (
	WeightsFile  = "srs_data.json"
	HistoryFile  = "history_log.csv"
	SettingsFile = "user_settings.json"
)

// DateLayout is the history timestamp format.
const DateLayout = "2006-01-02 15:04:05"

// Header lists the history columns. The first five are the legacy layout.
var Header = []string{"Date", "Spot", "Hand", "Result", "CorrectAction", "Source", "Scenario", "Chosen"}

const legacyColumns = 5

// weightFile nests source -> scenario -> spot -> hand -> weight.
type weightFile map[string]map[string]map[string]map[string]int

// Store keeps its data in a directory. Every write rewrites or appends a whole
// file; concurrent processes sharing the directory can lose updates.
type Store struct {
	dir string
	mu  sync.Mutex
}

// Open prepares dir for use.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Close implements the store contract; files are not held open.
func (s *Store) Close() error {
	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// Weight returns the stored weight for key, or srs.Default.
func (s *Store) Weight(_ context.Context, key model.WeightKey) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.readWeights()
	if err != nil {
		return 0, err
	}
	if w, ok := data[key.Spot.Source][key.Spot.Scenario][key.Spot.Name][string(key.Hand)]; ok {
		return w, nil
	}
	return srs.Default, nil
}

// SetWeight rewrites the weight file with the new value for key.
func (s *Store) SetWeight(_ context.Context, key model.WeightKey, weight int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.readWeights()
	if err != nil {
		return err
	}
	sp := key.Spot
	if data[sp.Source] == nil {
		data[sp.Source] = map[string]map[string]map[string]int{}
	}
	if data[sp.Source][sp.Scenario] == nil {
		data[sp.Source][sp.Scenario] = map[string]map[string]int{}
	}
	if data[sp.Source][sp.Scenario][sp.Name] == nil {
		data[sp.Source][sp.Scenario][sp.Name] = map[string]int{}
	}
	data[sp.Source][sp.Scenario][sp.Name][string(key.Hand)] = weight
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return writeFileAtomic(s.path(WeightsFile), raw)
}

// Weights returns every stored weight for a spot.
func (s *Store) Weights(_ context.Context, spot model.SpotKey) (map[hand.Hand]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.readWeights()
	if err != nil {
		return nil, err
	}
	out := map[hand.Hand]int{}
	for h, w := range data[spot.Source][spot.Scenario][spot.Name] {
		out[hand.Hand(h)] = w
	}
	return out, nil
}

func (s *Store) readWeights() (weightFile, error) {
	raw, err := os.ReadFile(s.path(WeightsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return weightFile{}, nil
		}
		return nil, err
	}
	data := weightFile{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", WeightsFile, err)
	}
	return data, nil
}

// AppendHistory appends one row, creating the file with a header first.
func (s *Store) AppendHistory(_ context.Context, rec model.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path(HistoryFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}
	w := csv.NewWriter(f)
	// An empty file, new or truncated, still needs the header.
	if fi.Size() == 0 {
		if err := w.Write(Header); err != nil {
			_ = f.Close()
			return err
		}
	}
	if err := w.Write(encodeRecord(rec)); err != nil {
		_ = f.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ListHistory returns rows matching cfg in file order.
func (s *Store) ListHistory(_ context.Context, cfg model.StatsConfig) ([]model.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.readHistory()
	if err != nil {
		return nil, err
	}
	var out []model.HistoryRecord
	for _, row := range rows {
		rec, err := decodeRecord(row)
		if err != nil {
			continue
		}
		if cfg.Source != "" && rec.Spot.Source != cfg.Source {
			continue
		}
		if cfg.Scenario != "" && rec.Spot.Scenario != cfg.Scenario {
			continue
		}
		if cfg.Since != nil && rec.Date.Before(*cfg.Since) {
			continue
		}
		out = append(out, rec)
	}
	if cfg.Last > 0 && len(out) > cfg.Last {
		out = out[len(out)-cfg.Last:]
	}
	return out, nil
}

// DeleteHistory rewrites the log without the rows selected by p. The header
// is always kept. Rows with unreadable dates survive every mode but PruneAll.
func (s *Store) DeleteHistory(_ context.Context, p model.Prune, now time.Time) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.path(HistoryFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return 0, nil
	}
	rows, err := s.readHistory()
	if err != nil {
		return 0, err
	}
	kept := make([][]string, 0, len(rows))
	for _, row := range rows {
		if p.Mode == model.PruneAll {
			continue
		}
		rec, err := decodeRecord(row)
		if err == nil && p.Removes(rec.Date, now) {
			continue
		}
		kept = append(kept, row)
	}

	tmp, err := os.CreateTemp(s.dir, "history-*.csv")
	if err != nil {
		return 0, err
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()
	w := csv.NewWriter(tmp)
	if err := w.Write(Header); err != nil {
		return 0, err
	}
	if err := w.WriteAll(kept); err != nil {
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return 0, err
	}
	return len(rows) - len(kept), nil
}

func (s *Store) readHistory() ([][]string, error) {
	f, err := os.Open(s.path(HistoryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close for read-only history.
			_ = cerr
		}
	}()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var rows [][]string
	header := true
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", HistoryFile, err)
		}
		if header {
			header = false
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func encodeRecord(rec model.HistoryRecord) []string {
	result := "0"
	if rec.Correct {
		result = "1"
	}
	return []string{
		rec.Date.Format(DateLayout),
		rec.Spot.Name,
		string(rec.Hand),
		result,
		string(rec.Expected),
		rec.Spot.Source,
		rec.Spot.Scenario,
		string(rec.Chosen),
	}
}

func decodeRecord(row []string) (model.HistoryRecord, error) {
	if len(row) < legacyColumns {
		return model.HistoryRecord{}, fmt.Errorf("short history row: %d columns", len(row))
	}
	date, err := time.ParseInLocation(DateLayout, row[0], time.Local)
	if err != nil {
		return model.HistoryRecord{}, err
	}
	result, err := strconv.Atoi(row[3])
	if err != nil {
		return model.HistoryRecord{}, err
	}
	rec := model.HistoryRecord{
		Date:     date,
		Spot:     model.SpotKey{Name: row[1]},
		Hand:     hand.Hand(row[2]),
		Correct:  result != 0,
		Expected: model.Action(row[4]),
	}
	if len(row) >= len(Header) {
		rec.Spot.Source = row[5]
		rec.Spot.Scenario = row[6]
		rec.Chosen = model.Action(row[7])
	}
	return rec, nil
}

// LoadSettings reads the settings document; a missing file yields zero settings.
func (s *Store) LoadSettings(_ context.Context) (model.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := os.ReadFile(s.path(SettingsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return model.Settings{}, nil
		}
		return model.Settings{}, err
	}
	var settings model.Settings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return model.Settings{}, fmt.Errorf("failed to decode %s: %w", SettingsFile, err)
	}
	return settings, nil
}

// SaveSettings overwrites the settings document.
func (s *Store) SaveSettings(_ context.Context, settings model.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return writeFileAtomic(s.path(SettingsFile), raw)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
