package ranges

import (
	"sort"

	"github.com/verte-zerg/pfdrill/internal/model"
)

// Sources returns the sorted source names.
func Sources(db model.Database) []string {
	out := make([]string, 0, len(db))
	for src := range db {
		out = append(out, src)
	}
	sort.Strings(out)
	return out
}

// Scenarios returns the sorted scenario names available under the given sources.
func Scenarios(db model.Database, sources []string) []string {
	seen := map[string]struct{}{}
	for _, src := range sources {
		for sc := range db[src] {
			seen[sc] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for sc := range seen {
		out = append(out, sc)
	}
	sort.Strings(out)
	return out
}

// Keys returns every spot key in the database, sorted.
func Keys(db model.Database) []model.SpotKey {
	var out []model.SpotKey
	for src, scenarios := range db {
		for sc, spots := range scenarios {
			for name := range spots {
				out = append(out, model.SpotKey{Source: src, Scenario: sc, Name: name})
			}
		}
	}
	sortKeys(out)
	return out
}

// Lookup returns the spot for key.
func Lookup(db model.Database, key model.SpotKey) (model.Spot, bool) {
	spot, ok := db[key.Source][key.Scenario][key.Name]
	return spot, ok
}

// Pool returns the spots belonging to the selected sources and scenarios.
func Pool(db model.Database, sources, scenarios []string) []model.SpotKey {
	var out []model.SpotKey
	for _, src := range sources {
		for _, sc := range scenarios {
			spots, ok := db[src][sc]
			if !ok {
				continue
			}
			for name := range spots {
				out = append(out, model.SpotKey{Source: src, Scenario: sc, Name: name})
			}
		}
	}
	sortKeys(out)
	return dedupeKeys(out)
}

// PoolFromKeys keeps the keys that exist in db.
func PoolFromKeys(db model.Database, keys []model.SpotKey) []model.SpotKey {
	out := make([]model.SpotKey, 0, len(keys))
	for _, key := range keys {
		if _, ok := Lookup(db, key); ok {
			out = append(out, key)
		}
	}
	sortKeys(out)
	return dedupeKeys(out)
}

// Select resolves a drill pool from settings. Explicit spot keys win; then the
// source/scenario filter; with nothing usable it falls back to the first source
// and its first scenario.
func Select(db model.Database, settings model.Settings) ([]model.SpotKey, model.Settings) {
	if len(settings.Spots) > 0 {
		if pool := PoolFromKeys(db, settings.Spots); len(pool) > 0 {
			return pool, model.Settings{Spots: pool}
		}
	}
	sources := intersect(settings.Sources, Sources(db))
	if len(sources) == 0 {
		sources = firstOf(Sources(db))
	}
	available := Scenarios(db, sources)
	scenarios := intersect(settings.Scenarios, available)
	if len(scenarios) == 0 {
		scenarios = firstOf(available)
	}
	applied := model.Settings{Sources: sources, Scenarios: scenarios}
	return Pool(db, sources, scenarios), applied
}

func intersect(want, have []string) []string {
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[h] = struct{}{}
	}
	var out []string
	for _, w := range want {
		if _, ok := set[w]; ok {
			out = append(out, w)
		}
	}
	return out
}

func firstOf(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	return values[:1]
}

func sortKeys(keys []model.SpotKey) {
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Scenario != b.Scenario {
			return a.Scenario < b.Scenario
		}
		return a.Name < b.Name
	})
}

func dedupeKeys(keys []model.SpotKey) []model.SpotKey {
	if len(keys) < 2 {
		return keys
	}
	out := keys[:1]
	for _, k := range keys[1:] {
		if k != out[len(out)-1] {
			out = append(out, k)
		}
	}
	return out
}
