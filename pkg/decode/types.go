// Package decode holds the value types shared by the beam-search decoder's
// sub-packages (dicnode, dict, proximity, weighting, traversal, scoring,
// bigram). It exists so those packages can refer to the same code-point,
// error, and proximity vocabulary without importing each other in a cycle.
package decode

// CodePoint is a single Unicode scalar value, as consumed from the trie or
// from a proximity sample.
type CodePoint = rune

// NotACodePoint is the sentinel for an absent code point.
const NotACodePoint CodePoint = -1

// TriePos is an opaque byte offset into a dictionary buffer.
type TriePos int32

// NotADictPos is the sentinel for an absent trie position.
const NotADictPos TriePos = -1

const (
	// MaxWordLength bounds the code-point capacity of any DicNode output
	// buffer, including a previous-word prefix.
	MaxWordLength = 48
	// MaxPointerCount is the number of simultaneous input pointers tracked
	// per DicNode. Soft-keyboard typing and single-finger gesture input
	// both use one pointer; this is kept as a named constant rather than a
	// literal so a multi-pointer mode can widen it later.
	MaxPointerCount = 1
	// MaxResults bounds the terminal queue / output suggestion list.
	MaxResults = 18
	// MaxPrevWords bounds how many already-committed words a DicNode
	// carries as bigram context (auto-commit only ever looks at the most
	// recent one, but the search keeps a short ring for multi-word
	// suggestions like "a b c").
	MaxPrevWords = 4
)

// ErrorType classifies the edge a DicNode took to reach its current trie
// position. The Weighting layer reports one of these per expansion; it
// drives both the edit/proximity counters and final-score promotion.
type ErrorType int

const (
	NotAnError ErrorType = iota
	Proximity
	AdditionalProximity
	Substitution
	Insertion
	Transposition
	Omission
	Digraph
	NewWord
	Completion
	Terminal
)

// IsEditCorrection reports whether an edge of this type increments the
// DicNode edit-correction counter.
func (e ErrorType) IsEditCorrection() bool {
	switch e {
	case Substitution, Insertion, Transposition, Omission:
		return true
	default:
		return false
	}
}

// IsProximityCorrection reports whether an edge of this type increments the
// DicNode proximity-correction counter.
func (e ErrorType) IsProximityCorrection() bool {
	return e == Proximity || e == AdditionalProximity
}

// ProximityType classifies how close an input sample is to a candidate
// code point, per the ProximityState contract.
type ProximityType int

const (
	PTMatch ProximityType = iota
	PTProximity
	PTAdditionalProximity
	PTSubstitution
	PTUnrelated
)

// DigraphIndex walks the three-state ring a DicNode's digraph expansion
// cycles through: not currently in a digraph, matched the first composing
// code point, matched the second.
type DigraphIndex int

const (
	NotADigraphIndex DigraphIndex = iota
	FirstDigraphCodePoint
	SecondDigraphCodePoint
)

// SuggestionKind classifies an emitted suggestion.
type SuggestionKind int

const (
	CorrectionKind SuggestionKind = iota
	WhitelistKind
	ShortcutKind
)

// MaxValueForWeighting is the sentinel compound distance that marks a node
// as unconditionally prunable: both unigram and bigram probability
// sentinels collapse to this value.
const MaxValueForWeighting = 1.0e9

// NotAProbability is the sentinel for "no frequency information".
const NotAProbability = -1

// MaxProbability is the maximum encodable unigram probability (8-bit).
const MaxProbability = 255

// MaxBigramEncodedProbability is the maximum 4-bit bigram delta.
const MaxBigramEncodedProbability = 15

// MaxChildCountToAvoidInfiniteLoop caps how many PtNodes a single trie-array
// traversal may visit before the dictionary is presumed corrupted.
const MaxChildCountToAvoidInfiniteLoop = 100_000
