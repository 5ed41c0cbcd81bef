package jsonpath

import (
	"regexp"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// regexCacheCapacity is the 32-entry bound from spec §4.3.
const regexCacheCapacity = 32

// patternCache is the process-wide bounded regex pattern cache. Access
// is read-mostly: a read attempt first, and only a write (map
// insertion) when a pattern hasn't been compiled yet. Per spec §5,
// cache-miss compilations are not deduplicated under contention — two
// goroutines racing to compile the same new pattern both compile it,
// and the last insert wins; that's preferred over holding a lock across
// regexp.Compile.
type patternCache struct {
	mu    sync.RWMutex
	cache *lru.Cache[string, *regexp.Regexp]
}

func newPatternCache() *patternCache {
	c, _ := lru.New[string, *regexp.Regexp](regexCacheCapacity)
	return &patternCache{cache: c}
}

var globalPatternCache = newPatternCache()

// compile returns a compiled *regexp.Regexp for pattern, using the
// shared cache. translatePattern adapts the I-Regexp subset RFC 9535
// mandates to Go's RE2 syntax (see pattern_translate.go).
func (p *patternCache) compile(pattern string) (*regexp.Regexp, error) {
	p.mu.RLock()
	if re, ok := p.cache.Get(pattern); ok {
		p.mu.RUnlock()
		return re, nil
	}
	p.mu.RUnlock()

	translated, err := translatePattern(pattern)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(translated)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	// Admission is skipped once the bounded cache is full: patterns
	// already cached stay cached, and a new pattern past capacity is
	// compiled and returned without being stored.
	if p.cache.Len() < regexCacheCapacity {
		p.cache.Add(pattern, re)
	}
	p.mu.Unlock()

	return re, nil
}
