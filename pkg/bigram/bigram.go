// Package bigram implements probability encoding/combination and the
// BigramCache: a bounded, bloom-filter-guarded memoisation of
// prevWordTriePos -> {triePos -> probability}.
package bigram

import (
	"github.com/beamkey/decoder/pkg/decode"
)

// CombineProbabilities merges an 8-bit unigram probability with an optional
// 4-bit bigram delta:
//
//	step = (MAX_PROBABILITY - unigram) / (1.5 + MAX_BIGRAM_ENCODED_PROBABILITY)
//	combined = unigram + round((bigramEncoded + 1) * step)
//
// When bigramEncoded is decode.NotAProbability (no bigram entry), the
// back-off formula applies: combined = max(unigram - 8, 0).
func CombineProbabilities(unigram, bigramEncoded int) int {
	if unigram == decode.NotAProbability {
		return decode.NotAProbability
	}
	if bigramEncoded == decode.NotAProbability {
		combined := unigram - 8
		if combined < 0 {
			combined = 0
		}
		return combined
	}
	step := float64(decode.MaxProbability-unigram) / (1.5 + float64(decode.MaxBigramEncodedProbability))
	combined := unigram + roundHalfUp(float64(bigramEncoded+1)*step)
	if combined > decode.MaxProbability {
		combined = decode.MaxProbability
	}
	return combined
}

func roundHalfUp(f float64) int {
	if f >= 0 {
		return int(f + 0.5)
	}
	return -int(-f + 0.5)
}

// maxContexts is the default number of prevWordTriePos contexts a Cache
// holds before evicting the least-recently-used one.
const maxContexts = 24

// context holds one prevWordTriePos's memoised bigram probabilities plus a
// small bloom filter to short-circuit negative lookups without touching the
// map.
type context struct {
	probs map[decode.TriePos]int
	bloom bloomFilter
}

// Cache is an LRU-bounded mapping from a previous word's trie position to
// its memoised bigram probabilities.
type Cache struct {
	maxContexts int
	contexts    map[decode.TriePos]*context
	lru         []decode.TriePos // most-recently-used at the end
}

// NewCache creates a cache with the default context bound.
func NewCache() *Cache { return NewCacheWithCapacity(maxContexts) }

// NewCacheWithCapacity creates a cache bounded to capacity contexts.
func NewCacheWithCapacity(capacity int) *Cache {
	if capacity <= 0 {
		capacity = maxContexts
	}
	return &Cache{
		maxContexts: capacity,
		contexts:    make(map[decode.TriePos]*context, capacity),
		lru:         make([]decode.TriePos, 0, capacity),
	}
}

// Get returns the memoised probability for (prevWordPos, wordPos), and
// whether it was present. A bloom-filter negative short-circuits the inner
// map lookup.
func (c *Cache) Get(prevWordPos, wordPos decode.TriePos) (int, bool) {
	ctx, ok := c.contexts[prevWordPos]
	if !ok {
		return 0, false
	}
	c.touch(prevWordPos)
	if !ctx.bloom.mightContain(wordPos) {
		return 0, false
	}
	p, ok := ctx.probs[wordPos]
	return p, ok
}

// Put memoises a probability, creating the context if needed and evicting
// the least-recently-used context if the cache is at capacity.
func (c *Cache) Put(prevWordPos, wordPos decode.TriePos, probability int) {
	ctx, ok := c.contexts[prevWordPos]
	if !ok {
		if len(c.contexts) >= c.maxContexts {
			c.evictLRU()
		}
		ctx = &context{probs: make(map[decode.TriePos]int)}
		c.contexts[prevWordPos] = ctx
	}
	ctx.probs[wordPos] = probability
	ctx.bloom.add(wordPos)
	c.touch(prevWordPos)
}

func (c *Cache) touch(pos decode.TriePos) {
	for i, p := range c.lru {
		if p == pos {
			c.lru = append(c.lru[:i], c.lru[i+1:]...)
			break
		}
	}
	c.lru = append(c.lru, pos)
}

func (c *Cache) evictLRU() {
	if len(c.lru) == 0 {
		return
	}
	oldest := c.lru[0]
	c.lru = c.lru[1:]
	delete(c.contexts, oldest)
}

// Len reports how many contexts are currently cached.
func (c *Cache) Len() int { return len(c.contexts) }

// bloomFilter is a tiny fixed-size bit-array bloom filter sized for the
// small per-context fan-out of bigram lists (tens to low hundreds of
// entries), using two hash mixes of the trie position.
type bloomFilter struct {
	bits [4]uint64
}

func (b *bloomFilter) add(pos decode.TriePos) {
	h1, h2 := bloomHashes(pos)
	b.setBit(h1)
	b.setBit(h2)
}

func (b *bloomFilter) mightContain(pos decode.TriePos) bool {
	h1, h2 := bloomHashes(pos)
	return b.getBit(h1) && b.getBit(h2)
}

func (b *bloomFilter) setBit(h uint32) {
	word := h / 64 % 4
	bit := h % 64
	b.bits[word] |= 1 << bit
}

func (b *bloomFilter) getBit(h uint32) bool {
	word := h / 64 % 4
	bit := h % 64
	return b.bits[word]&(1<<bit) != 0
}

func bloomHashes(pos decode.TriePos) (uint32, uint32) {
	v := uint32(pos)
	h1 := v*2654435761 + 1
	h2 := v*2246822519 + 3266489917
	return h1, h2
}
