package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/leonmuri/Progol-aleatorio2/internal/draw"
	"github.com/leonmuri/Progol-aleatorio2/internal/logger"
)

// Entry is one resolved ticket together with the stages that produced it.
type Entry struct {
	Matches    []draw.MatchRecord `json:"matches"`
	Info       draw.DrawInfo      `json:"draw"`
	MatchStage draw.Stage         `json:"match_stage"`
	InfoStage  draw.Stage         `json:"info_stage"`
	AcquiredAt time.Time          `json:"acquired_at"`
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	out := e
	out.Matches = draw.CloneMatches(e.Matches)
	out.Info = e.Info.Clone()
	return out
}

// BestEffort reports whether any part of the entry came from a fallback stage.
func (e Entry) BestEffort() bool {
	return e.MatchStage.BestEffort() || e.InfoStage.BestEffort()
}

// Stage returns the least trusted of the two stages, for callers that show
// a single badge.
func (e Entry) Stage() draw.Stage {
	return draw.Weakest(e.MatchStage, e.InfoStage)
}

// Cache memoizes the last resolution. Entries never expire; only a forced
// refresh replaces them. Resolutions are serialised, so a refresh completes
// before any other caller reads the cache.
type Cache struct {
	mu      sync.Mutex
	resolve func(context.Context) Entry
	entry   *Entry
}

// NewCache wraps resolve, which must always return a usable entry.
func NewCache(resolve func(context.Context) Entry) *Cache {
	return &Cache{resolve: resolve}
}

// GetOrResolve returns the cached entry, running resolve on the first call
// or when force is set.
func (c *Cache) GetOrResolve(ctx context.Context, force bool) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entry != nil && !force {
		logger.IncrCounter("cache.hits")
		return c.entry.Clone()
	}

	logger.IncrCounter("cache.misses")
	entry := c.resolve(ctx)
	c.entry = &entry
	return entry.Clone()
}

// Peek returns the cached entry without resolving.
func (c *Cache) Peek() (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entry == nil {
		return Entry{}, false
	}
	return c.entry.Clone(), true
}

// Invalidate drops the cached entry.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
}
