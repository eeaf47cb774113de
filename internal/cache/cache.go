// Package cache deduplicates translation work. Entries are keyed by
// a fingerprint of the source text and expire on a fixed schedule
// from insertion; a hit does not renew the entry, so text that stays
// on screen re-translates once per lifetime window.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// Fingerprint derives the cache key for a piece of detected text.
func Fingerprint(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// PositionFingerprint summarizes where text was seen. Informational
// only; lookup is keyed by text so translations survive scrolling.
func PositionFingerprint(x, y, w, h int) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%d,%d,%d,%d", x, y, w, h)))
	return hex.EncodeToString(sum[:])
}

// Entry is one cached translation.
type Entry struct {
	SourceText          string    `json:"source_text"`
	TranslatedText      string    `json:"translated_text"`
	LastSeen            time.Time `json:"last_seen"`
	PositionFingerprint string    `json:"position_fingerprint,omitempty"`
}

// Cache is a thread-safe translation store with time-based expiry.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]Entry
	lifetime time.Duration
	now      func() time.Time
}

// New creates a cache whose entries expire lifetime after insertion.
func New(lifetime time.Duration) *Cache {
	return &Cache{
		entries:  make(map[string]Entry),
		lifetime: lifetime,
		now:      time.Now,
	}
}

// Lookup returns the entry for fp if present and fresh. A stale
// entry is evicted on the spot and reported as a miss. Hits do not
// refresh LastSeen.
func (c *Cache) Lookup(fp string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[fp]
	if !ok {
		return Entry{}, false
	}
	if c.now().Sub(e.LastSeen) > c.lifetime {
		delete(c.entries, fp)
		return Entry{}, false
	}
	return e, true
}

// Insert stores a translation under fp, stamping it with the current
// time. An existing entry is overwritten and its clock restarts.
func (c *Cache) Insert(fp string, e Entry) {
	e.LastSeen = c.now()
	c.mu.Lock()
	c.entries[fp] = e
	c.mu.Unlock()
}

// Sweep removes every expired entry and returns how many went.
func (c *Cache) Sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for fp, e := range c.entries {
		if now.Sub(e.LastSeen) > c.lifetime {
			delete(c.entries, fp)
			removed++
		}
	}
	return removed
}

// Clear drops all entries and returns how many were held.
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[string]Entry)
	return n
}

// Len returns the number of entries, including any not yet swept.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Items returns a copy of the current entries keyed by fingerprint.
func (c *Cache) Items() map[string]Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]Entry, len(c.entries))
	for fp, e := range c.entries {
		out[fp] = e
	}
	return out
}
