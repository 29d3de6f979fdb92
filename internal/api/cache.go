package api

import (
	"os"
	"strconv"
	"sync"

	"github.com/tennisscore/tennisscore/pkg/scoring"
)

// ScoreCache is a thread-safe LRU cache of current match scores keyed by
// match ID.
type ScoreCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*scoring.Score
	order   []string // oldest first
}

// NewScoreCache creates a cache with the given maximum number of entries.
// If maxSize <= 0, it defaults to 256.
func NewScoreCache(maxSize int) *ScoreCache {
	if maxSize <= 0 {
		maxSize = 256
	}
	return &ScoreCache{
		maxSize: maxSize,
		entries: make(map[string]*scoring.Score),
	}
}

// NewScoreCacheFromEnv creates a cache with size from SCORE_CACHE_SIZE,
// falling back to fallback.
func NewScoreCacheFromEnv(fallback int) *ScoreCache {
	size := fallback
	if v := os.Getenv("SCORE_CACHE_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			size = parsed
		}
	}
	return NewScoreCache(size)
}

// Get returns a copy of the cached score so callers cannot corrupt it.
func (c *ScoreCache) Get(matchID string) (*scoring.Score, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.entries[matchID]
	if !ok {
		return nil, false
	}

	c.moveToEnd(matchID)
	return s.Clone(), true
}

// Put stores a copy of score, evicting the least recently used entry if full.
func (c *ScoreCache) Put(matchID string, score *scoring.Score) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[matchID]; ok {
		c.entries[matchID] = score.Clone()
		c.moveToEnd(matchID)
		return
	}

	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[matchID] = score.Clone()
	c.order = append(c.order, matchID)
}

// Len returns the number of cached scores.
func (c *ScoreCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ScoreCache) moveToEnd(id string) {
	for i, k := range c.order {
		if k == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, id)
			return
		}
	}
}
