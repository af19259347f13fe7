package dict

import (
	"sort"
	"strings"

	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/beamkey/decoder/pkg/decode"
	"github.com/beamkey/decoder/pkg/dicnode"
)

// ptNode is one node of the in-memory trie PatriciaDictPolicy compiles at
// Build time. Unlike the on-disk format this system treats as external,
// each ptNode here holds exactly one code point rather than a
// merged run: the DictPolicy contract allows a one-code-point "merge" (it
// only affects leavingDepth bookkeeping), so this keeps construction simple
// while remaining a faithful implementation of the interface.
type ptNode struct {
	codePoint   decode.CodePoint
	depth       int
	terminal    bool
	probability int
	blacklisted bool
	children    []decode.TriePos // sorted by codePoint
}

// PatriciaDictPolicy is a reference DictPolicy backed by an explicit
// node array (one code point per node) for traversal, and a github.com/tchap/go-patricia
// trie used as a prefix-keyed word -> terminal-position index for fast
// whole-word lookups (TerminalPositionOfWord) independent of the traversal
// array.
type PatriciaDictPolicy struct {
	nodes     []ptNode
	wordIndex *patricia.Trie // lowercase word -> decode.TriePos (int)

	bigrams   map[decode.TriePos]map[decode.TriePos]int // prevPos -> wordPos -> encoded prob
	shortcuts map[decode.TriePos][]Shortcut

	header    HeaderPolicy
	corrupted bool
}

// BigramEntry is one (previous word, next word, encoded probability) triple
// supplied at Build time.
type BigramEntry struct {
	Prev               string
	Word               string
	EncodedProbability int
}

// Builder accumulates words, bigrams, and shortcuts before compiling a
// PatriciaDictPolicy.
type Builder struct {
	words     map[string]int
	bigrams   []BigramEntry
	shortcuts map[string][]Shortcut
	header    HeaderPolicy
}

// NewBuilder creates an empty dictionary builder.
func NewBuilder() *Builder {
	return &Builder{
		words:     make(map[string]int),
		shortcuts: make(map[string][]Shortcut),
		header:    DefaultHeaderPolicy{},
	}
}

// AddWord inserts or overwrites a unigram word/probability pair.
// Probability is clamped to [0, decode.MaxProbability].
func (b *Builder) AddWord(word string, probability int) *Builder {
	if probability < 0 {
		probability = 0
	}
	if probability > decode.MaxProbability {
		probability = decode.MaxProbability
	}
	b.words[strings.ToLower(word)] = probability
	return b
}

// AddBigram records an encoded bigram delta (0..MaxBigramEncodedProbability)
// for the ordered pair (prev, word).
func (b *Builder) AddBigram(prev, word string, encodedProbability int) *Builder {
	b.bigrams = append(b.bigrams, BigramEntry{
		Prev: strings.ToLower(prev), Word: strings.ToLower(word), EncodedProbability: encodedProbability,
	})
	return b
}

// AddShortcut attaches a shortcut expansion to a word's terminal.
func (b *Builder) AddShortcut(word string, shortcut Shortcut) *Builder {
	key := strings.ToLower(word)
	b.shortcuts[key] = append(b.shortcuts[key], shortcut)
	return b
}

// WithHeader overrides the default header policy.
func (b *Builder) WithHeader(h HeaderPolicy) *Builder {
	b.header = h
	return b
}

// Build compiles the accumulated entries into a PatriciaDictPolicy.
func (b *Builder) Build() *PatriciaDictPolicy {
	p := &PatriciaDictPolicy{
		wordIndex: patricia.NewTrie(),
		bigrams:   make(map[decode.TriePos]map[decode.TriePos]int),
		shortcuts: make(map[decode.TriePos][]Shortcut),
		header:    b.header,
	}
	// Root sentinel at index 0.
	p.nodes = append(p.nodes, ptNode{codePoint: decode.NotACodePoint, depth: 0})

	// childMap[parent][codePoint] = child index, kept only during
	// construction; the loop after word insertion sorts each parent's
	// fan-out once.
	childMap := make(map[decode.TriePos]map[decode.CodePoint]decode.TriePos)

	words := make([]string, 0, len(b.words))
	for w := range b.words {
		words = append(words, w)
	}
	sort.Strings(words)

	wordPos := make(map[string]decode.TriePos, len(words))
	for _, w := range words {
		cur := decode.TriePos(0)
		for _, r := range w {
			if childMap[cur] == nil {
				childMap[cur] = make(map[decode.CodePoint]decode.TriePos)
			}
			child, ok := childMap[cur][r]
			if !ok {
				child = decode.TriePos(len(p.nodes))
				p.nodes = append(p.nodes, ptNode{codePoint: r, depth: p.nodes[cur].depth + 1})
				childMap[cur][r] = child
			}
			cur = child
		}
		p.nodes[cur].terminal = true
		p.nodes[cur].probability = b.words[w]
		wordPos[w] = cur
		p.wordIndex.Insert(patricia.Prefix(w), int(cur))
	}

	for parent, kids := range childMap {
		codePoints := make([]decode.CodePoint, 0, len(kids))
		for cp := range kids {
			codePoints = append(codePoints, cp)
		}
		sort.Slice(codePoints, func(i, j int) bool { return codePoints[i] < codePoints[j] })
		ordered := make([]decode.TriePos, len(codePoints))
		for i, cp := range codePoints {
			ordered[i] = kids[cp]
		}
		p.nodes[parent].children = ordered
	}

	for _, bg := range b.bigrams {
		prevPos, ok := wordPos[bg.Prev]
		if !ok {
			continue
		}
		wPos, ok := wordPos[bg.Word]
		if !ok {
			continue
		}
		if p.bigrams[prevPos] == nil {
			p.bigrams[prevPos] = make(map[decode.TriePos]int)
		}
		p.bigrams[prevPos][wPos] = bg.EncodedProbability
	}

	for word, list := range b.shortcuts {
		pos, ok := wordPos[word]
		if !ok {
			continue
		}
		p.shortcuts[pos] = list
	}

	return p
}

// --- Policy interface ---

func (p *PatriciaDictPolicy) RootPosition() decode.TriePos { return 0 }

func (p *PatriciaDictPolicy) CreateAndGetAllChildDicNodes(parent *dicnode.DicNode, out *[]dicnode.DicNode) bool {
	node := p.nodeAt(parent.ChildrenPos())
	if node == nil {
		return true
	}
	if len(node.children) > decode.MaxChildCountToAvoidInfiniteLoop {
		p.corrupted = true
		return false
	}
	for _, childPos := range node.children {
		child := p.nodeAt(childPos)
		if child == nil {
			p.corrupted = true
			return false
		}
		var dn dicnode.DicNode
		dn.InitAsChild(parent, childPos, childPos, child.probability, child.terminal,
			len(child.children) > 0, child.blacklisted, []decode.CodePoint{child.codePoint})
		*out = append(*out, dn)
	}
	return true
}

func (p *PatriciaDictPolicy) CodePointsAndProbability(nodePos decode.TriePos, maxCount int, out []decode.CodePoint) (int, int) {
	node := p.nodeAt(nodePos)
	if node == nil {
		return 0, decode.NotAProbability
	}
	if maxCount > 0 && len(out) > 0 {
		out[0] = node.codePoint
		return 1, node.probability
	}
	return 0, node.probability
}

func (p *PatriciaDictPolicy) TerminalPositionOfWord(word []decode.CodePoint, forceLowerCase bool) decode.TriePos {
	s := string(word)
	if forceLowerCase {
		s = strings.ToLower(s)
	}
	item := p.wordIndex.Get(patricia.Prefix(s))
	if item == nil {
		return decode.NotADictPos
	}
	pos, ok := item.(int)
	if !ok {
		return decode.NotADictPos
	}
	if !p.nodes[pos].terminal {
		return decode.NotADictPos
	}
	return decode.TriePos(pos)
}

func (p *PatriciaDictPolicy) Probability(unigram, bigramEncoded int) int {
	return combineProbabilities(unigram, bigramEncoded)
}

func (p *PatriciaDictPolicy) ProbabilityOfPtNode(prevWordsPos, nodePos decode.TriePos) int {
	node := p.nodeAt(nodePos)
	if node == nil || !node.terminal {
		return decode.NotAProbability
	}
	if bg, ok := p.bigrams[prevWordsPos]; ok {
		if enc, ok := bg[nodePos]; ok {
			return p.Probability(node.probability, enc)
		}
	}
	return p.Probability(node.probability, decode.NotAProbability)
}

func (p *PatriciaDictPolicy) IterateNgramEntries(prevWordsPos decode.TriePos, listener func(decode.TriePos, int)) {
	for wordPos, enc := range p.bigrams[prevWordsPos] {
		listener(wordPos, enc)
	}
}

func (p *PatriciaDictPolicy) ShortcutPositionOfPtNode(nodePos decode.TriePos) decode.TriePos {
	if _, ok := p.shortcuts[nodePos]; ok {
		return nodePos
	}
	return decode.NotADictPos
}

func (p *PatriciaDictPolicy) Header() HeaderPolicy       { return p.header }
func (p *PatriciaDictPolicy) Shortcuts() ShortcutsPolicy { return (*shortcutsView)(p) }
func (p *PatriciaDictPolicy) IsCorrupted() bool          { return p.corrupted }

func (p *PatriciaDictPolicy) nodeAt(pos decode.TriePos) *ptNode {
	if pos < 0 || int(pos) >= len(p.nodes) {
		return nil
	}
	return &p.nodes[pos]
}

// shortcutsView adapts PatriciaDictPolicy to ShortcutsPolicy without
// exposing its internals.
type shortcutsView PatriciaDictPolicy

func (s *shortcutsView) ShortcutsAt(pos decode.TriePos) []Shortcut {
	return (*PatriciaDictPolicy)(s).shortcuts[pos]
}

// DefaultHeaderPolicy is a fixed, typing-oriented header.
type DefaultHeaderPolicy struct{}

func (DefaultHeaderPolicy) MaxWordLength() int                   { return decode.MaxWordLength }
func (DefaultHeaderPolicy) RequiresGermanUmlautDigraphs() bool   { return true }
func (DefaultHeaderPolicy) RequiresFrenchLigatureDigraphs() bool { return true }

func combineProbabilities(unigram, bigramEncoded int) int {
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
	combined := unigram + int(float64(bigramEncoded+1)*step+0.5)
	if combined > decode.MaxProbability {
		combined = decode.MaxProbability
	}
	return combined
}
