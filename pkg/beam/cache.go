// Package beam implements the NodeCache beam controller: the four priority
// queues (active, next-active, terminals, continuation) that Traversal
// drives the search frontier through.
package beam

import (
	"github.com/beamkey/decoder/pkg/decode"
	"github.com/beamkey/decoder/pkg/dicnode"
)

const (
	// LargeQueueCapacity is used for dictionaries at or above the size
	// threshold (256 KiB).
	LargeQueueCapacity = 310
	// SmallQueueCapacity is used below the threshold, to reduce memory
	// footprint on constrained devices.
	SmallQueueCapacity = 100
	// DictionarySizeThresholdBytes picks between the two capacities above.
	DictionarySizeThresholdBytes = 256 * 1024
	// cacheBackLength tolerates short backspace bursts before invalidating
	// the continuation cache.
	cacheBackLength = 3
)

// Cache owns the four queues and the shared input-index cursor.
type Cache struct {
	pool *dicnode.Pool

	active       *dicnode.Queue
	nextActive   *dicnode.Queue
	terminals    *dicnode.Queue
	continuation *dicnode.Queue

	inputIndex           int
	lastCachedInputIndex int
}

// NewCache allocates a pool sized for capacity and four queues over it.
func NewCache(capacity int) *Cache {
	pool := dicnode.NewPool(capacity)
	return &Cache{
		pool:         pool,
		active:       dicnode.NewQueue(pool, capacity),
		nextActive:   dicnode.NewQueue(pool, capacity),
		terminals:    dicnode.NewQueue(pool, decode.MaxResults),
		continuation: dicnode.NewQueue(pool, capacity),
	}
}

// CapacityFor picks LargeQueueCapacity or SmallQueueCapacity from a
// dictionary's on-disk size.
func CapacityFor(dictionaryBytes int64) int {
	if dictionaryBytes >= DictionarySizeThresholdBytes {
		return LargeQueueCapacity
	}
	return SmallQueueCapacity
}

// Reset clears every queue, resizes next-active and terminals, and resets
// the input-index cursor.
func (c *Cache) Reset(nextActiveSize, terminalSize int) {
	c.inputIndex = 0
	c.lastCachedInputIndex = 0
	c.active.Clear()
	c.nextActive.Clear()
	c.nextActive.SetMaxSize(nextActiveSize)
	c.terminals.Clear()
	c.terminals.SetMaxSize(terminalSize)
	c.continuation.Clear()
}

// ContinueSearch resumes a previously cached beam: active/nextActive/
// terminals are cleared, then every node held in continuation becomes the
// new active set, and inputIndex rewinds to when it was cached.
func (c *Cache) ContinueSearch() {
	c.active.Clear()
	c.nextActive.Clear()
	c.terminals.Clear()
	c.inputIndex = c.lastCachedInputIndex
	for {
		var n dicnode.DicNode
		if !c.continuation.CopyPop(&n) {
			break
		}
		c.active.CopyPush(&n)
	}
}

// AdvanceActiveDicNodes swaps active and nextActive, preserving each
// queue's configured max size, and empties the queue that becomes the new
// nextActive.
func (c *Cache) AdvanceActiveDicNodes() {
	activeMax := c.active.MaxSize()
	nextMax := c.nextActive.MaxSize()
	c.active, c.nextActive = c.nextActive, c.active
	c.active.SetMaxSize(activeMax)
	c.nextActive.SetMaxSize(nextMax)
	c.nextActive.Clear()
}

// AdvanceInputIndex increments the cursor, never past inputSize.
func (c *Cache) AdvanceInputIndex(inputSize int) {
	if c.inputIndex < inputSize {
		c.inputIndex++
	}
}

func (c *Cache) InputIndex() int     { return c.inputIndex }
func (c *Cache) ActiveSize() int     { return c.active.Size() }
func (c *Cache) TerminalSize() int   { return c.terminals.Size() }
func (c *Cache) Pool() *dicnode.Pool { return c.pool }

// IsLookAheadCorrectionInputIndex reports whether inputIndex is exactly one
// behind the cache cursor: the point at which a look-ahead correction
// (transposition/insertion fork) is viable.
func (c *Cache) IsLookAheadCorrectionInputIndex(inputIndex int) bool {
	return inputIndex == c.inputIndex-1
}

// IsCacheBorderForTyping reports whether we're at the input index where the
// continuation cache should be captured for this call, tolerating short
// backspace bursts (CACHE_BACK_LENGTH).
func (c *Cache) IsCacheBorderForTyping(inputSize int) bool {
	cacheInputIndex := inputSize - cacheBackLength
	return cacheInputIndex == c.inputIndex && cacheInputIndex != c.lastCachedInputIndex
}

// UpdateLastCachedInputIndex records that the continuation cache was just
// captured at the current input index.
func (c *Cache) UpdateLastCachedInputIndex() {
	c.lastCachedInputIndex = c.inputIndex
}

func (c *Cache) HasContinuation() bool { return c.continuation.Size() > 0 }

func (c *Cache) CopyPushActive(n *dicnode.DicNode) bool       { return c.active.CopyPush(n) }
func (c *Cache) CopyPushNextActive(n *dicnode.DicNode) bool   { return c.nextActive.CopyPush(n) }
func (c *Cache) CopyPushTerminal(n *dicnode.DicNode) bool     { return c.terminals.CopyPush(n) }
func (c *Cache) CopyPushContinuation(n *dicnode.DicNode) bool { return c.continuation.CopyPush(n) }

func (c *Cache) PopActive(dest *dicnode.DicNode) bool   { return c.active.CopyPop(dest) }
func (c *Cache) PopTerminal(dest *dicnode.DicNode) bool { return c.terminals.CopyPop(dest) }

// SetCommitPoint drains continuation, keeping only nodes whose stored
// previous-word context still matches the top candidate's first
// commitPoint characters (excluding spaces/apostrophes), and pushing them
// back, then moves the cache's input index back by commitPoint. Kept nodes
// are pushed back unchanged: their previous-word buffers and per-node input
// indices are not shortened. Returns the best candidate that continuation
// held before filtering.
//
// The original engine's authors flagged this truncation path as possibly
// defective. This implementation re-derives the behavior from the stated
// invariant (keep only nodes whose previous-word prefix is consistent with
// the committed text) rather than a literal port, and is covered by
// explicit tests in cache_test.go.
func (c *Cache) SetCommitPoint(commitPoint int) *dicnode.DicNode {
	popped := make([]dicnode.DicNode, 0, c.continuation.Size())
	for {
		var n dicnode.DicNode
		if !c.continuation.CopyPop(&n) {
			break
		}
		popped = append(popped, n)
	}
	if len(popped) == 0 {
		return nil
	}
	// CopyPop drains worst-first; the last element popped was the best
	// (top) candidate before any pops, matching the original's
	// push_front-while-popping reversal.
	top := popped[len(popped)-1]

	prefix := commitPrefix(top.PrevWordCodePoints(), commitPoint)

	for i := range popped {
		n := &popped[i]
		if truncateToPrefix(n, prefix) {
			c.continuation.CopyPush(n)
		}
	}
	c.inputIndex -= commitPoint
	if c.inputIndex < 0 {
		c.inputIndex = 0
	}
	return &top
}

// commitPrefix returns the first commitPoint "real" code points of word
// (spaces and apostrophes don't count toward the commit-point length).
func commitPrefix(word []decode.CodePoint, commitPoint int) []decode.CodePoint {
	out := make([]decode.CodePoint, 0, commitPoint)
	for _, cp := range word {
		if len(out) >= commitPoint {
			break
		}
		if cp == ' ' || cp == '\'' {
			continue
		}
		out = append(out, cp)
	}
	return out
}

// truncateToPrefix reports whether n's previous-word context is consistent
// with prefix: the node is kept as-is (its own prevWord buffer already
// starts with the same committed text) and only dropped when it diverges.
func truncateToPrefix(n *dicnode.DicNode, prefix []decode.CodePoint) bool {
	word := n.PrevWordCodePoints()
	// Compare ignoring spaces/apostrophes, same as when prefix was built.
	j := 0
	for _, cp := range word {
		if j >= len(prefix) {
			break
		}
		if cp == ' ' || cp == '\'' {
			continue
		}
		if cp != prefix[j] {
			return false
		}
		j++
	}
	return j >= len(prefix)
}
