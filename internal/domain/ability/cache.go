package ability

import "sync"

// Cache holds the last-known ability score per PersonID. It is process-wide:
// entries are only ever upserted by confirmed fetch responses and are never
// expired, so scores stay reusable across lineups. Last fetch wins.
type Cache struct {
	mu     sync.RWMutex
	scores map[string]float64
}

func NewCache() *Cache {
	return &Cache{scores: make(map[string]float64)}
}

// NewCacheFrom seeds a cache from a restored snapshot.
func NewCacheFrom(scores map[string]float64) *Cache {
	c := NewCache()
	for id, score := range scores {
		c.scores[id] = score
	}
	return c
}

// Merge upserts every entry unconditionally.
func (c *Cache) Merge(entries map[string]float64) {
	if len(entries) == 0 {
		return
	}

	c.mu.Lock()
	for id, score := range entries {
		c.scores[id] = score
	}
	c.mu.Unlock()
}

// Get returns the current score for a player and whether one is known.
func (c *Cache) Get(personID string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	score, ok := c.scores[personID]
	return score, ok
}

// Sum totals the known scores for the given ids, treating unknown as zero.
func (c *Cache) Sum(personIDs []string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := 0.0
	for _, id := range personIDs {
		total += c.scores[id]
	}
	return total
}

// Snapshot copies the full mapping for persistence.
func (c *Cache) Snapshot() map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]float64, len(c.scores))
	for id, score := range c.scores {
		out[id] = score
	}
	return out
}

// Clear empties the mapping.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.scores = make(map[string]float64)
	c.mu.Unlock()
}

// Len reports how many players have a known score.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.scores)
}
