package dict

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/nofnotg/anamnesis/internal/model"
)

// CachedDictionary wraps a Dictionary with an in-memory lookup cache.
// The same normalized text recurs heavily inside a document and across a
// batch, so hits and misses are both cached.
type CachedDictionary struct {
	dict  *Dictionary
	cache *gocache.Cache
	ttl   time.Duration
}

type cachedLookup struct {
	match Match
	ok    bool
}

// NewCachedDictionary wraps the dictionary with a TTL cache
func NewCachedDictionary(d *Dictionary, ttl, cleanup time.Duration) *CachedDictionary {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	return &CachedDictionary{
		dict:  d,
		cache: gocache.New(ttl, cleanup),
		ttl:   ttl,
	}
}

// Lookup is Dictionary.Lookup behind the cache
func (c *CachedDictionary) Lookup(kind model.EntityKind, normalizedText string) (Match, bool) {
	key := cacheKey(kind, normalizedText)
	if v, found := c.cache.Get(key); found {
		hit := v.(cachedLookup)
		return hit.match, hit.ok
	}
	match, ok := c.dict.Lookup(kind, normalizedText)
	c.cache.Set(key, cachedLookup{match: match, ok: ok}, c.ttl)
	return match, ok
}

// Flush clears the lookup cache (after a dictionary reload)
func (c *CachedDictionary) Flush() {
	c.cache.Flush()
}

func cacheKey(kind model.EntityKind, text string) string {
	hash := sha256.Sum256([]byte(string(kind) + "|" + text))
	return "anamnesis:dict:v1:" + hex.EncodeToString(hash[:])
}
