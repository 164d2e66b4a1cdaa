package features

import "github.com/cespare/xxhash"

type cacheKey struct {
	index    int
	outcomes uint64
}

// CachedGenerator runs an ordered list of generators as one and remembers
// their combined output for the current sentence. Entries are keyed by the
// token position and the outcomes assigned before it. A sentence with
// different tokens, UpdateAdaptiveData or ClearAdaptiveData drops them all.
type CachedGenerator struct {
	generators []Generator
	seq        sequence
	cache      map[cacheKey][]string
	buf        []byte
	hits       int
	misses     int
}

// NewCachedGenerator composes generators in the given order
func NewCachedGenerator(generators ...Generator) *CachedGenerator {
	return &CachedGenerator{
		generators: generators,
		cache:      make(map[cacheKey][]string),
	}
}

func (c *CachedGenerator) Generate(dst []string, tokens []string, index int, previousOutcomes []string) []string {
	var seq sequence
	seq, c.buf = sequenceOf(tokens, c.buf)
	if seq != c.seq {
		c.invalidate()
		c.seq = seq
	}

	key := cacheKey{index: index, outcomes: c.hashOutcomes(previousOutcomes, index)}
	if features, ok := c.cache[key]; ok {
		c.hits++
		return append(dst, features...)
	}
	c.misses++

	var features []string
	for _, g := range c.generators {
		features = g.Generate(features, tokens, index, previousOutcomes)
	}
	c.cache[key] = features

	return append(dst, features...)
}

// hashOutcomes hashes the outcomes visible at index
func (c *CachedGenerator) hashOutcomes(previousOutcomes []string, index int) uint64 {
	if index > len(previousOutcomes) {
		index = len(previousOutcomes)
	}
	if index < 0 {
		index = 0
	}
	c.buf = c.buf[:0]
	for _, o := range previousOutcomes[:index] {
		c.buf = append(c.buf, o...)
		c.buf = append(c.buf, sep)
	}
	return xxhash.Sum64(c.buf)
}

func (c *CachedGenerator) invalidate() {
	clear(c.cache)
	c.seq = sequence{}
}

func (c *CachedGenerator) UpdateAdaptiveData(tokens, outcomes []string) {
	for _, g := range c.generators {
		Update(g, tokens, outcomes)
	}
	c.invalidate()
}

func (c *CachedGenerator) ClearAdaptiveData() {
	for _, g := range c.generators {
		Clear(g)
	}
	c.invalidate()
}

// Generators returns the composed generators in order
func (c *CachedGenerator) Generators() []Generator {
	return c.generators
}

// Stats returns the number of cache hits and misses so far
func (c *CachedGenerator) Stats() (hits, misses int) {
	return c.hits, c.misses
}
