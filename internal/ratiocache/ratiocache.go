// Package ratiocache is a disk-backed cache of ICPMP lower-bound
// search results, keyed by a signature of a requirement's work pattern
// and headcount. The offset search in pkg/icpmp re-runs the same
// feasible-N search every time a requirement repeats across solve
// runs (e.g. a recurring weekly roster); caching its result lets a
// repeat requirement skip straight to the previously-found headcount
// and offsets instead of re-searching.
//
// The cache is a single JSON file, replaced atomically on every write
// so a crash mid-write can never leave a half-written, corrupt cache
// behind for the next process to load.
package ratiocache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/paiban/roster/pkg/logger"
)

const cacheVersion = "1.0"

// Entry is one cached ICPMP outcome.
type Entry struct {
	PatternHash   string    `json:"patternHash"`
	Pattern       string    `json:"pattern"`
	PatternLength int       `json:"patternLength"`
	LowerBound    int       `json:"lowerBound"`
	Offsets       []int     `json:"offsets"`
	CalendarDays  int       `json:"calendarDays"`
	LastUpdated   time.Time `json:"lastUpdated"`
	LastUsed      time.Time `json:"lastUsed"`
	UsageCount    int       `json:"usageCount"`
}

type fileFormat struct {
	Version string           `json:"version"`
	Entries map[string]Entry `json:"entries"`
}

// Cache is a read-mostly, atomically-persisted store of ICPMP outcomes.
type Cache struct {
	mu   sync.Mutex
	path string
	data fileFormat
}

// Open loads path if it exists, or starts from an empty cache. The
// parent directory is created if missing so a fresh deployment doesn't
// need to pre-provision it.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	c := &Cache{path: path, data: fileFormat{Version: cacheVersion, Entries: map[string]Entry{}}}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ratio cache: %w", err)
	}

	var loaded fileFormat
	if err := json.Unmarshal(raw, &loaded); err != nil {
		logger.Warn().Str("path", path).Err(err).Msg("ratio cache file is corrupt, starting empty")
		return c, nil
	}
	if loaded.Entries == nil {
		loaded.Entries = map[string]Entry{}
	}
	c.data = loaded
	return c, nil
}

// Get returns the cached outcome for the given requirement signature.
// On hit, it bumps usage stats and persists them.
func (c *Cache) Get(req RequirementSignature) (Entry, bool) {
	key := req.Hash()

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.data.Entries[key]
	if !ok {
		return Entry{}, false
	}

	entry.UsageCount++
	entry.LastUsed = time.Now().UTC()
	c.data.Entries[key] = entry

	if err := c.flushLocked(); err != nil {
		logger.Warn().Err(err).Msg("failed to persist ratio cache usage stats")
	}

	logger.Info().
		Str("pattern_hash", key).
		Int("lower_bound", entry.LowerBound).
		Int("usage_count", entry.UsageCount).
		Msg("ratio cache hit")

	return entry, true
}

// Save records (or overwrites) the outcome for a requirement signature.
func (c *Cache) Save(req RequirementSignature, lowerBound int, offsets []int) error {
	key := req.Hash()
	now := time.Now().UTC()

	c.mu.Lock()
	defer c.mu.Unlock()

	existing, had := c.data.Entries[key]
	entry := Entry{
		PatternHash:   key,
		Pattern:       req.patternString(),
		PatternLength: len(req.Pattern),
		LowerBound:    lowerBound,
		Offsets:       append([]int(nil), offsets...),
		CalendarDays:  req.CalendarDays,
		LastUpdated:   now,
		LastUsed:      now,
	}
	if had {
		entry.UsageCount = existing.UsageCount
	}
	c.data.Entries[key] = entry

	if err := c.flushLocked(); err != nil {
		return fmt.Errorf("save ratio cache entry: %w", err)
	}

	logger.Info().
		Str("pattern_hash", key).
		Int("lower_bound", lowerBound).
		Msg("ratio cache entry saved")
	return nil
}

// Invalidate removes a cached entry, e.g. when its requirement's work
// pattern changes.
func (c *Cache) Invalidate(req RequirementSignature) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data.Entries, req.Hash())
	return c.flushLocked()
}

// Stats summarizes the current cache contents.
type Stats struct {
	TotalEntries int
	TotalUsage   int
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{TotalEntries: len(c.data.Entries)}
	for _, e := range c.data.Entries {
		stats.TotalUsage += e.UsageCount
	}
	return stats
}

// flushLocked serializes the cache to a temp file in the same
// directory and renames it over the real path, so a concurrent reader
// never observes a partially-written file.
func (c *Cache) flushLocked() error {
	encoded, err := json.MarshalIndent(c.data, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".ratio_cache-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, c.path)
}
