// Package ranges loads range definition files into a ranges database.
package ranges

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/pfdrill/internal/model"
)

// Unknown names a missing source or scenario.
const Unknown = "Unknown"

// File is the on-disk shape of a range definition file.
type File struct {
	Source   string                `json:"source" yaml:"source"`
	Scenario string                `json:"scenario" yaml:"scenario"`
	Spots    map[string]model.Spot `json:"spots" yaml:"spots"`
}

// FileError reports a range file that could not be read or decoded.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", filepath.Base(e.Path), e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// IsRangeFile reports whether name has a supported range file extension.
func IsRangeFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Load reads every range file in dir and merges them into a fresh database.
// A missing directory yields an empty database. Files that fail to decode are
// reported and skipped; the rest still load.
func Load(dir string) (model.Database, []error) {
	db := model.Database{}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return db, nil
		}
		return db, []error{fmt.Errorf("failed to read spots directory: %w", err)}
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsRangeFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		path := filepath.Join(dir, name)
		file, err := ReadFile(path)
		if err != nil {
			errs = append(errs, &FileError{Path: path, Err: err})
			continue
		}
		Merge(db, file)
	}
	return db, errs
}

// ReadFile decodes a single JSON or YAML range file.
func ReadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	var file File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return File{}, err
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&file); err != nil {
			return File{}, err
		}
	}
	return file, nil
}

// Merge adds the spots of file into db. Spots already present under the same
// source, scenario and name are replaced.
func Merge(db model.Database, file File) {
	src := strings.TrimSpace(file.Source)
	if src == "" {
		src = Unknown
	}
	sc := strings.TrimSpace(file.Scenario)
	if sc == "" {
		sc = Unknown
	}
	if _, ok := db[src]; !ok {
		db[src] = map[string]map[string]model.Spot{}
	}
	if _, ok := db[src][sc]; !ok {
		db[src][sc] = map[string]model.Spot{}
	}
	for name, spot := range file.Spots {
		db[src][sc][name] = spot
	}
}
