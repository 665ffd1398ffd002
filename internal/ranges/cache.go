package ranges

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/verte-zerg/pfdrill/internal/model"
)

// Cache keeps the last loaded database for a directory and reloads it when
// the directory or any range file in it changes.
type Cache struct {
	mu      sync.Mutex
	dir     string
	stamp   time.Time
	count   int
	db      model.Database
	errs    []error
	loaded  bool
	loadFn  func(string) (model.Database, []error)
	statDir func(string) (time.Time, int)
}

// NewCache returns a cache for dir.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir, loadFn: Load, statDir: dirStamp}
}

// Dir returns the cached directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Get returns the current snapshot, reloading from disk when files changed.
// Callers must treat the returned database as read-only.
func (c *Cache) Get() (model.Database, []error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stamp, count := c.statDir(c.dir)
	if c.loaded && stamp.Equal(c.stamp) && count == c.count {
		return c.db, c.errs
	}
	c.db, c.errs = c.loadFn(c.dir)
	c.stamp = stamp
	c.count = count
	c.loaded = true
	return c.db, c.errs
}

// Reload drops the snapshot and loads the directory again.
func (c *Cache) Reload() (model.Database, []error) {
	c.mu.Lock()
	c.loaded = false
	c.mu.Unlock()
	return c.Get()
}

// dirStamp returns the newest modification time among dir and its range
// files, along with the number of range files.
func dirStamp(dir string) (time.Time, int) {
	info, err := os.Stat(dir)
	if err != nil {
		return time.Time{}, 0
	}
	latest := info.ModTime()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return latest, 0
	}
	count := 0
	for _, entry := range entries {
		if entry.IsDir() || !IsRangeFile(entry.Name()) {
			continue
		}
		count++
		fi, err := os.Stat(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		if fi.ModTime().After(latest) {
			latest = fi.ModTime()
		}
	}
	return latest, count
}
