// Package dict defines the abstract DictPolicy collaborator and ships one
// concrete, in-memory reference implementation backed by go-patricia
// (PatriciaDictPolicy). The on-disk dictionary buffer format itself is out
// of this system's scope; DictPolicy is the only contract Traversal
// depends on.
package dict

import (
	"github.com/beamkey/decoder/pkg/decode"
	"github.com/beamkey/decoder/pkg/dicnode"
)

// Shortcut is a stored expansion attached to a terminal, e.g. "omw" -> "on
// my way".
type Shortcut struct {
	Target      string
	Probability int
	Whitelist   bool
}

// HeaderPolicy exposes the handful of dictionary-wide settings Traversal and
// Weighting need (locale-ish knobs live in the real binary header; here we
// keep only what the core consumes).
type HeaderPolicy interface {
	MaxWordLength() int
	RequiresGermanUmlautDigraphs() bool
	RequiresFrenchLigatureDigraphs() bool
}

// ShortcutsPolicy resolves the shortcut list attached to a terminal.
type ShortcutsPolicy interface {
	ShortcutsAt(pos decode.TriePos) []Shortcut
}

// Policy is the abstract dictionary collaborator Traversal expands against.
// Implementations must enumerate children in dictionary order (lexicographic
// on the child's leading code point), since that order shapes tie-breaking
// in DicNode.Compare.
type Policy interface {
	RootPosition() decode.TriePos

	// CreateAndGetAllChildDicNodes appends one DicNode per child of parent
	// to out, in dictionary order. Returns false if the dictionary is
	// found corrupted while enumerating; the caller should treat
	// whatever was appended before the corruption was detected as final
	// for this parent.
	CreateAndGetAllChildDicNodes(parent *dicnode.DicNode, out *[]dicnode.DicNode) bool

	// CodePointsAndProbability writes up to maxCount code points starting
	// at nodePos into out, and the unigram probability of that position,
	// returning how many code points were written.
	CodePointsAndProbability(nodePos decode.TriePos, maxCount int, out []decode.CodePoint) (int, int)

	// TerminalPositionOfWord looks up a word's terminal trie position, or
	// decode.NotADictPos if absent. forceLowerCase folds the word first.
	TerminalPositionOfWord(word []decode.CodePoint, forceLowerCase bool) decode.TriePos

	// Probability combines a unigram and bigram-encoded probability.
	Probability(unigram, bigramEncoded int) int

	// ProbabilityOfPtNode returns the combined probability of nodePos
	// given the previous word ended at prevWordsPos (decode.NotADictPos if
	// there is no previous word), applying bigram back-off as needed.
	ProbabilityOfPtNode(prevWordsPos, nodePos decode.TriePos) int

	// IterateNgramEntries calls listener for every (wordPos, encodedProb)
	// bigram entry recorded under prevWordsPos.
	IterateNgramEntries(prevWordsPos decode.TriePos, listener func(wordPos decode.TriePos, encodedProbability int))

	ShortcutPositionOfPtNode(nodePos decode.TriePos) decode.TriePos

	Header() HeaderPolicy
	Shortcuts() ShortcutsPolicy

	// IsCorrupted reports whether a prior traversal detected a structural
	// problem (cyclic sibling links, out-of-bounds offsets). Once set, it
	// stays set for the lifetime of the policy.
	IsCorrupted() bool
}
