// Package traversal drives the beam search: popping nodes from the active
// queue, expanding them against the dictionary and proximity input, and
// feeding the next-active and terminal queues.
package traversal

import (
	"github.com/beamkey/decoder/pkg/beam"
	"github.com/beamkey/decoder/pkg/decode"
	"github.com/beamkey/decoder/pkg/dict"
	"github.com/beamkey/decoder/pkg/dicnode"
	"github.com/beamkey/decoder/pkg/proximity"
	"github.com/beamkey/decoder/pkg/weighting"
)

// minContinuousSuggestionInputSize is the smallest input size for which a
// cached continuation may be reused.
const minContinuousSuggestionInputSize = 2

// maxWordLengthMargin bounds totalInputIndex plus depth during expansion, leaving three
// code points of headroom for a trailing multi-word suffix.
const maxWordLengthMargin = decode.MaxWordLength - 3

// Session owns one decode call's collaborators: the dictionary, the
// proximity/gesture input, the cost model, and the beam cache. One Session
// is created per keyboard session and reused across calls so its cache's
// continuation queue can be carried forward: single-threaded, synchronous,
// one session per thread.
type Session struct {
	Cache     *beam.Cache
	Dict      dict.Policy
	Proximity proximity.State
	Weighting weighting.Weighting
	Digraphs  *dict.DigraphTable

	// AllowCorrections gates every edit/proximity correction edge; when
	// false only exact matches and completions are explored (used for
	// "strict" re-decodes of an already-committed word).
	AllowCorrections bool

	// Capacity is the pool size passed to beam.NewCache for this session,
	// recorded here so Decode can re-establish it on every Reset.
	Capacity int

	// Cancelled is polled at each input-index checkpoint; a nil Cancelled
	// never cancels.
	Cancelled func() bool
}

// NewSession builds a Session sized to dictionaryBytes via the
// large-vs-small capacity table.
func NewSession(dictionary dict.Policy, prox proximity.State, weight weighting.Weighting, digraphs *dict.DigraphTable, dictionaryBytes int64) *Session {
	capacity := beam.CapacityFor(dictionaryBytes)
	return &Session{
		Cache:            beam.NewCache(capacity),
		Dict:             dictionary,
		Proximity:        prox,
		Weighting:        weight,
		Digraphs:         digraphs,
		AllowCorrections: true,
		Capacity:         capacity,
	}
}

// Decode runs one full beam search to completion and returns the terminal
// nodes found, worst-first (as drained from the terminal priority queue);
// Scoring is responsible for ranking and formatting them into suggestions.
// prevWordTriePos is decode.NotADictPos for a first word. commitPoint, when
// positive, first truncates any cached continuation to the given number of
// already-committed code points (the partial auto-commit path).
func (s *Session) Decode(inputSize int, prevWordTriePos decode.TriePos, commitPoint int) []dicnode.DicNode {
	if inputSize <= 0 {
		return nil
	}

	if commitPoint > 0 {
		s.Cache.SetCommitPoint(commitPoint)
	}

	if inputSize >= minContinuousSuggestionInputSize && s.Proximity.IsContinuousSuggestionPossible() && s.Cache.HasContinuation() {
		s.Cache.ContinueSearch()
	} else {
		s.Cache.Reset(s.Capacity, decode.MaxResults)
		var root dicnode.DicNode
		root.InitAsRoot(s.Dict.RootPosition(), prevWordTriePos)
		s.Cache.CopyPushActive(&root)
	}

	for s.Cache.ActiveSize() > 0 {
		if s.Cancelled != nil && s.Cancelled() {
			break
		}
		s.expandCurrentDicNodes(inputSize)
		s.Cache.AdvanceActiveDicNodes()
		s.Cache.AdvanceInputIndex(inputSize)
		if s.Cache.IsCacheBorderForTyping(inputSize) {
			s.Cache.UpdateLastCachedInputIndex()
		}
	}

	terminals := make([]dicnode.DicNode, 0, decode.MaxResults)
	for {
		var n dicnode.DicNode
		if !s.Cache.PopTerminal(&n) {
			break
		}
		terminals = append(terminals, n)
	}
	return terminals
}

func (s *Session) expandCurrentDicNodes(inputSize int) {
	for {
		var node dicnode.DicNode
		if !s.Cache.PopActive(&node) {
			return
		}
		if node.TotalInputIndex()+node.Depth() > maxWordLengthMargin {
			continue
		}
		if s.Cache.IsCacheBorderForTyping(inputSize) {
			s.Cache.CopyPushContinuation(&node)
		}

		if node.IsInDigraph() {
			s.finishDigraph(&node, inputSize)
			continue
		}

		s.expandNormally(&node, inputSize)
	}
}

// finishDigraph advances a node that is mid-digraph: the current input
// sample is checked against the expected second (or continuing) constituent
// code point of the composite glyph the node's trie position already
// represents, per the three-state digraph ring.
func (s *Session) finishDigraph(node *dicnode.DicNode, inputSize int) {
	if s.Digraphs == nil {
		return
	}
	inputIndex := node.InputIndex(0)
	expected := s.Digraphs.CodePointForIndex(node.NodeCodePoint(), node.DigraphIndex())
	if inputIndex >= inputSize || s.Proximity.PrimaryCodePointAt(inputIndex) != expected {
		return
	}
	child := *node
	child.AddCost(0, 0, s.Weighting.NeedsToNormalizeCompoundDistance(), inputSize, decode.Digraph)
	child.ForwardInputIndex(0, 1, true)
	child.AdvanceDigraphIndex()
	if child.DigraphIndex() == decode.NotADigraphIndex {
		s.processExpandedDicNode(node, &child, inputSize)
	} else {
		s.pushNextActive(&child, inputSize)
	}
}

func (s *Session) expandNormally(node *dicnode.DicNode, inputSize int) {
	lookAheadViable := s.AllowCorrections && s.Cache.IsLookAheadCorrectionInputIndex(node.InputIndex(0))

	if s.AllowCorrections && s.isSpaceSubstitutionLegal(node) {
		nw := s.newWordChild(node, s.Weighting.GetSpaceSubstitutionCost())
		nw.ForwardInputIndex(0, 1, true)
		s.pushNextActive(&nw, inputSize)
	}

	var children []dicnode.DicNode
	if !s.Dict.CreateAndGetAllChildDicNodes(node, &children) {
		return
	}

	for i := range children {
		s.expandChild(node, &children[i], inputSize)
	}

	if lookAheadViable {
		s.forkTransposition(node, inputSize)
		s.forkInsertion(node, inputSize)
		s.pushNextActive(node, inputSize)
	}
}

func (s *Session) expandChild(parent, child *dicnode.DicNode, inputSize int) {
	inputIndex := parent.InputIndex(0)
	isCompletion := inputIndex >= inputSize

	if isCompletion {
		c := *child
		cost := s.Weighting.GetCompletionCost(parent, &c)
		c.AddCost(0, cost, s.Weighting.NeedsToNormalizeCompoundDistance(), inputSize, decode.Completion)
		s.processExpandedDicNode(parent, &c, inputSize)
		return
	}

	if s.Digraphs != nil && s.Digraphs.HasDigraph(child.NodeCodePoint()) {
		expected := s.Digraphs.CodePointForIndex(child.NodeCodePoint(), decode.FirstDigraphCodePoint)
		if s.Proximity.PrimaryCodePointAt(inputIndex) == expected {
			dch := *child
			dch.SetDigraphIndex(decode.FirstDigraphCodePoint)
			dch.AddCost(0, 0, s.Weighting.NeedsToNormalizeCompoundDistance(), inputSize, decode.Digraph)
			dch.ForwardInputIndex(0, 1, true)
			s.pushNextActive(&dch, inputSize)
		}
	}

	if s.AllowCorrections {
		och := *child
		cost := s.Weighting.GetOmissionCost(parent, &och)
		och.AddCost(0, cost, s.Weighting.NeedsToNormalizeCompoundDistance(), inputSize, decode.Omission)
		s.processExpandedDicNode(parent, &och, inputSize)
	}

	pt := s.Proximity.ProximityType(inputIndex, child.NodeCodePoint(), true)
	if pt == decode.PTUnrelated {
		return
	}
	spatial, errType, upd := s.Weighting.GetMatchedCost(s.Proximity, parent, child)
	if !s.AllowCorrections && errType != decode.NotAnError {
		return
	}
	mch := *child
	mch.AddCost(spatial, 0, s.Weighting.NeedsToNormalizeCompoundDistance(), inputSize, errType)
	mch.ForwardInputIndex(upd.PointerID, upd.AdvanceBy, upd.OverwritePrevCodePoint)
	mch.AddRawLength(upd.RawLengthDelta)
	s.processExpandedDicNode(parent, &mch, inputSize)
}

func (s *Session) forkTransposition(node *dicnode.DicNode, inputSize int) {
	idx := node.InputIndex(0)
	if idx+1 >= inputSize {
		return
	}
	cp0 := s.Proximity.PrimaryCodePointAt(idx)
	cp1 := s.Proximity.PrimaryCodePointAt(idx + 1)

	var children []dicnode.DicNode
	if !s.Dict.CreateAndGetAllChildDicNodes(node, &children) {
		return
	}
	for i := range children {
		if children[i].NodeCodePoint() != cp1 {
			continue
		}
		var grandchildren []dicnode.DicNode
		if !s.Dict.CreateAndGetAllChildDicNodes(&children[i], &grandchildren) {
			continue
		}
		for j := range grandchildren {
			if grandchildren[j].NodeCodePoint() != cp0 {
				continue
			}
			tch := grandchildren[j]
			cost := s.Weighting.GetTranspositionCost(s.Proximity, node, &tch)
			tch.AddCost(cost, 0, s.Weighting.NeedsToNormalizeCompoundDistance(), inputSize, decode.Transposition)
			tch.ForwardInputIndex(0, 2, true)
			s.processExpandedDicNode(node, &tch, inputSize)
		}
	}
}

func (s *Session) forkInsertion(node *dicnode.DicNode, inputSize int) {
	ich := *node
	cost := s.Weighting.GetInsertionCost(s.Proximity, node, &ich)
	ich.AddCost(cost, 0, s.Weighting.NeedsToNormalizeCompoundDistance(), inputSize, decode.Insertion)
	ich.ForwardInputIndex(0, 1, true)
	s.pushNextActive(&ich, inputSize)
}

// processExpandedDicNode finalises a freshly-costed child: terminal
// handling, space-omission forking, and admission to nextActive, per spec
// §4.4's "processExpandedDicNode" step.
func (s *Session) processExpandedDicNode(parent, child *dicnode.DicNode, inputSize int) {
	if shouldPrune(child) {
		return
	}
	if child.IsTerminal() {
		s.processTerminalDicNode(child, inputSize)
	}
	if s.AllowCorrections && s.isSpaceOmissionLegal(child) {
		nw := s.newWordChild(child, s.Weighting.GetSpaceOmissionCost())
		s.pushNextActive(&nw, inputSize)
	}
	if child.HasChildren() {
		s.pushNextActive(child, inputSize)
	}
}

func (s *Session) processTerminalDicNode(child *dicnode.DicNode, inputSize int) {
	term := *child
	spatial := s.Weighting.GetTerminalSpatialCost(s.Proximity, &term)
	insertion := s.Weighting.GetTerminalInsertionCost(s.Proximity, &term)

	var probability int
	if term.PrevWordTerminalPos() != decode.NotADictPos {
		probability = s.Dict.ProbabilityOfPtNode(term.PrevWordTerminalPos(), term.Pos())
	} else {
		probability = s.Dict.Probability(term.Probability(), decode.NotAProbability)
	}
	language := s.Weighting.GetTerminalLanguageCost(&term, probability)

	term.AddCost(spatial+insertion, language, s.Weighting.NeedsToNormalizeCompoundDistance(), inputSize, decode.Terminal)
	term.SaveNormalizedCompoundDistanceAfterFirstWordIfNoneYet()
	if shouldPrune(&term) {
		return
	}
	s.Cache.CopyPushTerminal(&term)
}

func (s *Session) newWordChild(parent *dicnode.DicNode, languageCost float64) dicnode.DicNode {
	var nw dicnode.DicNode
	nw.InitAsRootWithPreviousWord(parent, s.Dict.RootPosition())
	nw.AddCost(0, languageCost, s.Weighting.NeedsToNormalizeCompoundDistance(), 0, decode.NewWord)
	return nw
}

func (s *Session) pushNextActive(n *dicnode.DicNode, inputSize int) {
	if shouldPrune(n) {
		return
	}
	s.Cache.CopyPushNextActive(n)
}

func shouldPrune(n *dicnode.DicNode) bool {
	if n.NormalizedCompoundDistance() >= decode.MaxValueForWeighting {
		return true
	}
	return n.TotalInputIndex()+n.Depth() > maxWordLengthMargin
}

func (s *Session) isSpaceSubstitutionLegal(node *dicnode.DicNode) bool {
	return node.IsTerminal() && node.PrevWordCount() < decode.MaxPrevWords
}

func (s *Session) isSpaceOmissionLegal(child *dicnode.DicNode) bool {
	return child.IsTerminal() && child.PrevWordCount() < decode.MaxPrevWords
}
