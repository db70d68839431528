package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"
	"time"

	"cellar/internal/domain"
	"cellar/internal/metrics"
	"cellar/internal/port"
)

// PairingCache is a small LRU of pairing responses with a TTL. Invalidate
// drops everything and bumps a generation so in-flight Puts from before
// the invalidation are discarded.
type PairingCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	order   []string
	maxSize int
	ttl     time.Duration
	gen     uint64
}

type cacheEntry struct {
	response  *domain.PairingResponse
	timestamp time.Time
	gen       uint64
}

func NewPairingCache(maxSize int, ttl time.Duration) *PairingCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PairingCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// cacheKey uses the dish as the pairer embeds it: trimmed, case kept.
func cacheKey(q domain.PairingQuery) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(q.Dish))
	b.WriteByte(0)
	b.WriteString(strconv.Itoa(q.Limit))
	b.WriteByte(0)
	b.WriteString(q.UserID)
	hash := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(hash[:16])
}

// Generation returns the current invalidation generation.
func (c *PairingCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

func (c *PairingCache) Get(q domain.PairingQuery) (*domain.PairingResponse, bool) {
	key := cacheKey(q)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		return nil, false
	}
	if time.Since(entry.timestamp) > c.ttl || entry.gen != c.gen {
		delete(c.entries, key)
		c.removeFromOrder(key)
		return nil, false
	}

	c.moveToEnd(key)
	return entry.response, true
}

// Put stores resp if gen is still the current generation.
func (c *PairingCache) Put(q domain.PairingQuery, resp *domain.PairingResponse, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return
	}

	key := cacheKey(q)
	entry := &cacheEntry{response: resp, timestamp: time.Now(), gen: c.gen}

	if _, exists := c.entries[key]; exists {
		c.entries[key] = entry
		c.moveToEnd(key)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[key] = entry
	c.order = append(c.order, key)
}

func (c *PairingCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
	c.gen++
}

func (c *PairingCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *PairingCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *PairingCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *PairingCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// CachedPairer serves repeated pairing queries from a PairingCache.
// Degraded responses are never cached.
type CachedPairer struct {
	pairer port.Pairer
	cache  *PairingCache
}

func NewCachedPairer(pairer port.Pairer, cache *PairingCache) *CachedPairer {
	return &CachedPairer{pairer: pairer, cache: cache}
}

func (p *CachedPairer) Pair(ctx context.Context, q domain.PairingQuery) (*domain.PairingResponse, error) {
	if resp, hit := p.cache.Get(q); hit {
		metrics.PairingRequests.WithLabelValues("cached").Inc()
		return resp, nil
	}

	gen := p.cache.Generation()
	resp, err := p.pairer.Pair(ctx, q)
	if err != nil {
		return nil, err
	}
	if !resp.Degraded {
		p.cache.Put(q, resp, gen)
	}
	return resp, nil
}

// Invalidate drops cached responses after the catalog changes.
func (p *CachedPairer) Invalidate() {
	p.cache.Invalidate()
}
