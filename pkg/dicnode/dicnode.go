// Package dicnode implements the beam-search state object (DicNode) and the
// fixed-capacity, slot-recycling node pool and priority queue that hold the
// search frontier.
package dicnode

import (
	"github.com/beamkey/decoder/pkg/decode"
)

// DicNode represents one state in the beam: having consumed some prefix of
// the input and being at some position in the dictionary's patricia trie.
//
// DicNodes are value objects. They are born from the root (InitAsRoot) or
// by expansion of a parent (InitAsChild / InitAsPassingChild), copied by
// value into pool slots, recycled when popped or pruned, and finally
// consumed when taken as terminals.
type DicNode struct {
	// --- identity in the trie ---
	pos                   decode.TriePos
	childrenPos           decode.TriePos
	depth                 int
	leavingDepth          int
	terminal              bool
	hasChildren           bool
	blacklistedOrNotAWord bool
	probability           int

	// --- output buffer ---
	outputWord [decode.MaxWordLength]decode.CodePoint

	// --- previous-word context ---
	prevWordCodePoints        [decode.MaxWordLength]decode.CodePoint
	prevWordLength            int
	prevWordStart             int
	prevWordTerminalPos       decode.TriePos
	prevWordCount             int
	spacePositions            [decode.MaxPrevWords]int
	prevWordEndInputIndex     [decode.MaxPrevWords]int
	secondWordFirstInputIndex int

	// --- input state ---
	inputIndex    [decode.MaxPointerCount]int
	prevCodePoint [decode.MaxPointerCount]decode.CodePoint
	rawLength     float64

	// --- scoring state ---
	spatialDistance                             float64
	languageDistance                             float64
	normalizedCompoundDistance                   float64
	editCorrectionCount                          int
	proximityCorrectionCount                     int
	exactMatch                                   bool
	digraphIndex                                 decode.DigraphIndex
	doubleLetterLevel                            int
	normalizedCompoundDistanceAfterFirstWord     float64
	hasNormalizedCompoundDistanceAfterFirstWord  bool

	used bool
}

// IsUsed reports whether this slot currently holds a live node.
func (n *DicNode) IsUsed() bool { return n.used }

// remove marks the slot as free. Called by the pool, never by search code.
func (n *DicNode) remove() { n.used = false }

// InitAsRoot resets a slot into the root state of a fresh search, or of a
// resumed search after a committed word.
func (n *DicNode) InitAsRoot(rootPos decode.TriePos, prevWordTerminalPos decode.TriePos) {
	*n = DicNode{}
	n.used = true
	n.pos = rootPos
	n.childrenPos = rootPos
	n.depth = 0
	n.leavingDepth = 0
	n.prevWordTerminalPos = prevWordTerminalPos
	n.digraphIndex = decode.NotADigraphIndex
}

// InitAsRootWithPreviousWord starts a new word following a committed one.
// The parent's output becomes this node's previous-word context, after any
// earlier previous-word context and a space separator; the first-word
// distance snapshot carries over, and
// the previous-word count increments.
func (n *DicNode) InitAsRootWithPreviousWord(parent *DicNode, rootPos decode.TriePos) {
	prevLen := parent.depth
	var prevCP [decode.MaxWordLength]decode.CodePoint
	// Concatenate the parent's own previous-word prefix (if any) with its
	// freshly completed word, separated by a single space, bounded by
	// MaxWordLength.
	copyLen := 0
	if parent.prevWordLength > 0 {
		copyLen = copy(prevCP[:], parent.prevWordCodePoints[:parent.prevWordLength])
		if copyLen < decode.MaxWordLength {
			prevCP[copyLen] = ' '
			copyLen++
		}
	}
	if copyLen < decode.MaxWordLength {
		n2 := copy(prevCP[copyLen:], parent.outputWord[:prevLen])
		copyLen += n2
	}

	*n = DicNode{}
	n.used = true
	n.pos = rootPos
	n.childrenPos = rootPos
	n.depth = 0
	n.leavingDepth = 0
	n.prevWordTerminalPos = parent.pos
	n.prevWordCodePoints = prevCP
	n.prevWordLength = copyLen
	n.prevWordStart = copyLen
	n.prevWordCount = parent.prevWordCount + 1
	if n.prevWordCount-1 < decode.MaxPrevWords {
		n.spacePositions[n.prevWordCount-1] = copyLen
	}
	n.digraphIndex = decode.NotADigraphIndex
	n.inputIndex = parent.inputIndex
	n.prevCodePoint = parent.prevCodePoint
	n.spatialDistance = parent.spatialDistance
	n.languageDistance = parent.languageDistance
	n.normalizedCompoundDistance = parent.normalizedCompoundDistance
	n.editCorrectionCount = parent.editCorrectionCount
	n.proximityCorrectionCount = parent.proximityCorrectionCount
	n.exactMatch = parent.exactMatch
	n.rawLength = parent.rawLength
	n.secondWordFirstInputIndex = parent.inputIndex[0]

	if parent.hasNormalizedCompoundDistanceAfterFirstWord {
		n.normalizedCompoundDistanceAfterFirstWord = parent.normalizedCompoundDistanceAfterFirstWord
		n.hasNormalizedCompoundDistanceAfterFirstWord = true
	} else {
		n.normalizedCompoundDistanceAfterFirstWord = parent.normalizedCompoundDistance
		n.hasNormalizedCompoundDistanceAfterFirstWord = true
	}
}

// InitAsPassingChild advances depth by one within the same PtNode's merged
// code-point run; every other field is inherited unchanged.
func (n *DicNode) InitAsPassingChild(parent *DicNode) {
	*n = *parent
	n.depth = parent.depth + 1
}

// InitAsChild steps into a child PtNode, appending its leading code point to
// the output buffer.
func (n *DicNode) InitAsChild(parent *DicNode, pos, childrenPos decode.TriePos, probability int,
	isTerminal, hasChildren, blacklisted bool, mergedCodePoints []decode.CodePoint) {
	*n = *parent
	n.pos = pos
	n.childrenPos = childrenPos
	n.probability = probability
	n.terminal = isTerminal
	n.hasChildren = hasChildren
	n.blacklistedOrNotAWord = blacklisted
	n.depth = parent.depth + 1
	n.leavingDepth = n.depth + len(mergedCodePoints) - 1
	if n.depth-1 < decode.MaxWordLength && len(mergedCodePoints) > 0 {
		n.outputWord[n.depth-1] = mergedCodePoints[0]
	}
}

// AddCost applies a per-edge spatial/language cost and updates pruning and
// error-tracking state. AddCost is restricted to Weighting implementations;
// other callers must not invoke it directly (see design notes on "friend"
// access: Go has no access-control equivalent, so this is enforced only by
// convention: pkg/traversal applies the costs that pkg/weighting computes).
func (n *DicNode) AddCost(spatial, language float64, doNormalize bool, inputSize int, errorType decode.ErrorType) {
	n.spatialDistance += spatial
	n.languageDistance += language
	total := n.spatialDistance + n.languageDistance
	if doNormalize {
		denom := n.totalInputIndex()
		if denom < 1 {
			denom = 1
		}
		n.normalizedCompoundDistance = total / float64(denom)
	} else {
		n.normalizedCompoundDistance = total
	}
	if errorType.IsEditCorrection() {
		n.editCorrectionCount++
	}
	if errorType.IsProximityCorrection() {
		n.proximityCorrectionCount++
	}
	if errorType != decode.NotAnError {
		n.exactMatch = false
	}
}

func (n *DicNode) totalInputIndex() int {
	total := 0
	for _, idx := range n.inputIndex {
		total += idx
	}
	return total
}

// ForwardInputIndex advances the per-pointer cursor, optionally recording
// the just-emitted code point as "previous code point" for that pointer.
func (n *DicNode) ForwardInputIndex(pointerID, count int, overwritePrevCodePoint bool) {
	if count == 0 {
		return
	}
	n.inputIndex[pointerID] += count
	if overwritePrevCodePoint {
		n.prevCodePoint[0] = n.NodeCodePoint()
	}
}

// SaveNormalizedCompoundDistanceAfterFirstWordIfNoneYet snapshots the
// current compound distance the first time a word boundary is crossed; used
// by auto-commit confidence scoring.
func (n *DicNode) SaveNormalizedCompoundDistanceAfterFirstWordIfNoneYet() {
	if !n.hasNormalizedCompoundDistanceAfterFirstWord {
		n.normalizedCompoundDistanceAfterFirstWord = n.normalizedCompoundDistance
		n.hasNormalizedCompoundDistanceAfterFirstWord = true
	}
}

// --- read-only accessors ---

func (n *DicNode) Pos() decode.TriePos         { return n.pos }
func (n *DicNode) ChildrenPos() decode.TriePos { return n.childrenPos }
func (n *DicNode) Depth() int                  { return n.depth }
func (n *DicNode) LeavingDepth() int           { return n.leavingDepth }
func (n *DicNode) IsLeavingNode() bool         { return n.depth == n.leavingDepth }
func (n *DicNode) IsTerminal() bool            { return n.terminal }
func (n *DicNode) HasChildren() bool           { return n.hasChildren }
func (n *DicNode) IsBlacklistedOrNotAWord() bool { return n.blacklistedOrNotAWord }
func (n *DicNode) Probability() int            { return n.probability }

func (n *DicNode) NodeCodePoint() decode.CodePoint {
	if n.depth == 0 || n.depth-1 >= decode.MaxWordLength {
		return decode.NotACodePoint
	}
	return n.outputWord[n.depth-1]
}

// OutputWord returns the code points written so far, root to current depth.
func (n *DicNode) OutputWord() []decode.CodePoint { return n.outputWord[:n.depth] }

func (n *DicNode) PrevWordCodePoints() []decode.CodePoint {
	return n.prevWordCodePoints[:n.prevWordLength]
}
func (n *DicNode) PrevWordLength() int            { return n.prevWordLength }
func (n *DicNode) PrevWordCount() int             { return n.prevWordCount }
func (n *DicNode) PrevWordTerminalPos() decode.TriePos { return n.prevWordTerminalPos }
func (n *DicNode) SpaceCount() int                { return n.prevWordCount }
func (n *DicNode) SecondWordFirstInputIndex() int { return n.secondWordFirstInputIndex }

func (n *DicNode) InputIndex(pointerID int) int { return n.inputIndex[pointerID] }
func (n *DicNode) TotalInputIndex() int         { return n.totalInputIndex() }
func (n *DicNode) PrevCodePoint(pointerID int) decode.CodePoint { return n.prevCodePoint[pointerID] }
func (n *DicNode) RawLength() float64           { return n.rawLength }

func (n *DicNode) AddRawLength(delta float64)   { n.rawLength += delta }
func (n *DicNode) SetDoubleLetterLevel(v int)   { n.doubleLetterLevel = v }
func (n *DicNode) DoubleLetterLevel() int       { return n.doubleLetterLevel }

func (n *DicNode) SpatialDistance() float64              { return n.spatialDistance }
func (n *DicNode) LanguageDistance() float64              { return n.languageDistance }
func (n *DicNode) NormalizedCompoundDistance() float64    { return n.normalizedCompoundDistance }
func (n *DicNode) EditCorrectionCount() int               { return n.editCorrectionCount }
func (n *DicNode) ProximityCorrectionCount() int          { return n.proximityCorrectionCount }
func (n *DicNode) IsExactMatch() bool                     { return n.exactMatch }
func (n *DicNode) DigraphIndex() decode.DigraphIndex       { return n.digraphIndex }
func (n *DicNode) IsInDigraph() bool {
	return n.digraphIndex != decode.NotADigraphIndex
}
func (n *DicNode) AdvanceDigraphIndex() {
	switch n.digraphIndex {
	case decode.NotADigraphIndex:
		n.digraphIndex = decode.FirstDigraphCodePoint
	case decode.FirstDigraphCodePoint:
		n.digraphIndex = decode.SecondDigraphCodePoint
	default:
		n.digraphIndex = decode.NotADigraphIndex
	}
}
func (n *DicNode) SetDigraphIndex(idx decode.DigraphIndex) { n.digraphIndex = idx }

func (n *DicNode) NormalizedCompoundDistanceAfterFirstWord() (float64, bool) {
	return n.normalizedCompoundDistanceAfterFirstWord, n.hasNormalizedCompoundDistanceAfterFirstWord
}

// Compare implements the total order the priority queue prunes by. It
// returns true when the receiver is "worse" (should be evicted first / is
// considered greater by the max-heap), matching DicNode::compare in the
// original engine:
//  1. unused sorts after used; among unused, compare by identity
//  2. exact matches sort before non-exact
//  3. smaller normalizedCompoundDistance wins (larger is "worse")
//  4. greater depth wins on ties
//  5. lexicographic code-point comparison of the output word
//  6. identity as the final tie-breaker
func (n *DicNode) Compare(right *DicNode) bool {
	if !n.used && !right.used {
		return uintptr(ptrOf(n)) > uintptr(ptrOf(right))
	}
	if !n.used {
		return true
	}
	if !right.used {
		return false
	}
	if n.exactMatch != right.exactMatch {
		return !n.exactMatch
	}
	const minDiff = 0.000001
	diff := right.normalizedCompoundDistance - n.normalizedCompoundDistance
	if diff > minDiff {
		return false
	} else if diff < -minDiff {
		return true
	}
	depthDiff := right.depth - n.depth
	if depthDiff != 0 {
		return depthDiff > 0
	}
	for i := 0; i < n.depth && i < decode.MaxWordLength; i++ {
		if n.outputWord[i] != right.outputWord[i] {
			return right.outputWord[i] > n.outputWord[i]
		}
	}
	return uintptr(ptrOf(n)) > uintptr(ptrOf(right))
}
