package bigram

import (
	"testing"

	"github.com/beamkey/decoder/pkg/decode"
)

func TestCombineProbabilitiesNoUnigram(t *testing.T) {
	if got := CombineProbabilities(decode.NotAProbability, 5); got != decode.NotAProbability {
		t.Fatalf("expected NotAProbability passthrough, got %d", got)
	}
}

func TestCombineProbabilitiesBackoffWithNoBigram(t *testing.T) {
	got := CombineProbabilities(100, decode.NotAProbability)
	if got != 92 {
		t.Fatalf("expected backed-off probability 92, got %d", got)
	}
}

func TestCombineProbabilitiesBackoffClampsAtZero(t *testing.T) {
	got := CombineProbabilities(4, decode.NotAProbability)
	if got != 0 {
		t.Fatalf("expected clamped backoff of 0, got %d", got)
	}
}

func TestCombineProbabilitiesWithBigramBoost(t *testing.T) {
	unigram := 100
	max := CombineProbabilities(unigram, decode.MaxBigramEncodedProbability)
	min := CombineProbabilities(unigram, 0)
	if !(max > min) {
		t.Fatalf("expected a larger bigram delta to boost probability more: max=%d min=%d", max, min)
	}
	if max > decode.MaxProbability {
		t.Fatalf("expected combined probability clamped at MaxProbability, got %d", max)
	}
}

func TestCombineProbabilitiesNeverExceedsMax(t *testing.T) {
	got := CombineProbabilities(decode.MaxProbability, decode.MaxBigramEncodedProbability)
	if got != decode.MaxProbability {
		t.Fatalf("expected combined probability capped at %d, got %d", decode.MaxProbability, got)
	}
}

func TestCachePutThenGet(t *testing.T) {
	c := NewCache()
	c.Put(10, 20, 123)
	p, ok := c.Get(10, 20)
	if !ok || p != 123 {
		t.Fatalf("expected memoised probability 123, got %d ok=%v", p, ok)
	}
}

func TestCacheGetMissingContext(t *testing.T) {
	c := NewCache()
	if _, ok := c.Get(1, 2); ok {
		t.Fatal("expected a miss for an unknown context")
	}
}

func TestCacheGetMissingWordInKnownContext(t *testing.T) {
	c := NewCache()
	c.Put(10, 20, 50)
	if _, ok := c.Get(10, 21); ok {
		t.Fatal("expected a miss for an unmemoised word position in a known context")
	}
}

func TestCacheEvictsLeastRecentlyUsedContext(t *testing.T) {
	c := NewCacheWithCapacity(2)
	c.Put(1, 100, 1)
	c.Put(2, 100, 2)
	// touch context 1 so context 2 becomes the LRU victim
	c.Get(1, 100)
	c.Put(3, 100, 3)

	if c.Len() != 2 {
		t.Fatalf("expected cache to stay at capacity 2, got %d", c.Len())
	}
	if _, ok := c.Get(2, 100); ok {
		t.Fatal("expected context 2 to have been evicted as least-recently-used")
	}
	if _, ok := c.Get(1, 100); !ok {
		t.Fatal("expected context 1 to survive eviction (recently touched)")
	}
	if _, ok := c.Get(3, 100); !ok {
		t.Fatal("expected the newly inserted context 3 to be present")
	}
}

func TestBloomFilterNoFalseNegatives(t *testing.T) {
	var b bloomFilter
	positions := []decode.TriePos{1, 7, 42, 1000, 99999}
	for _, p := range positions {
		b.add(p)
	}
	for _, p := range positions {
		if !b.mightContain(p) {
			t.Fatalf("bloom filter produced a false negative for %d", p)
		}
	}
}
