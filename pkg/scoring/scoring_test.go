package scoring

import (
	"testing"

	"github.com/beamkey/decoder/pkg/decode"
	"github.com/beamkey/decoder/pkg/dict"
	"github.com/beamkey/decoder/pkg/dicnode"
)

func TestCalculateFinalScoreZeroDistanceIsPerfect(t *testing.T) {
	score := CalculateFinalScore(0, 5, 0, 0, false, true, false, true, false)
	if score != maxPerfectScore+exactMatchBoost+perfectMatchBoost {
		t.Fatalf("expected perfect exact match score, got %d", score)
	}
}

func TestCalculateFinalScoreProbabilityZeroIsAlwaysZero(t *testing.T) {
	if got := CalculateFinalScore(0, 5, 0, 0, false, true, true, true, false); got != 0 {
		t.Fatalf("expected a zero-probability word to always score 0, got %d", got)
	}
}

func TestCalculateFinalScoreDecreasesWithDistance(t *testing.T) {
	near := CalculateFinalScore(1, 5, 1, 0, false, true, false, false, false)
	far := CalculateFinalScore(10, 5, 1, 0, false, true, false, false, false)
	if near <= far {
		t.Fatalf("expected a smaller compound distance to score higher: near=%d far=%d", near, far)
	}
}

func TestCalculateFinalScoreNeverNegative(t *testing.T) {
	got := CalculateFinalScore(10000, 5, 5, 5, true, true, false, false, true)
	if got < 0 {
		t.Fatalf("expected score to be clamped at 0, got %d", got)
	}
}

func TestComputeFirstWordConfidenceNoPreviousWord(t *testing.T) {
	var n dicnode.DicNode
	n.InitAsRoot(0, decode.NotADictPos)
	if got := ComputeFirstWordConfidence(&n); got != NotAFirstWordConfidence {
		t.Fatalf("expected NotAFirstWordConfidence for a node with no previous word, got %d", got)
	}
}

func buildRankTestPolicy() dict.Policy {
	return dict.NewBuilder().
		WithHeader(dict.DefaultHeaderPolicy{}).
		AddWord("cat", 200).
		AddWord("omw", 200).
		AddShortcut("omw", dict.Shortcut{Target: "on my way", Probability: 220}).
		Build()
}

// terminalFor walks the real trie one code point at a time, mirroring how
// Traversal builds terminals via CreateAndGetAllChildDicNodes, so OutputWord
// ends up holding the full word rather than just its last code point.
func terminalFor(policy dict.Policy, word string) dicnode.DicNode {
	return terminalForWithFlag(policy, word, false)
}

func terminalForWithFlag(policy dict.Policy, word string, blacklisted bool) dicnode.DicNode {
	var cur dicnode.DicNode
	cur.InitAsRoot(policy.RootPosition(), decode.NotADictPos)
	runes := []rune(word)
	for i, r := range runes {
		var children []dicnode.DicNode
		policy.CreateAndGetAllChildDicNodes(&cur, &children)
		for _, c := range children {
			if c.NodeCodePoint() == decode.CodePoint(r) {
				if i == len(runes)-1 && blacklisted {
					c.InitAsChild(&cur, c.Pos(), c.ChildrenPos(), c.Probability(), c.IsTerminal(), c.HasChildren(), true, []decode.CodePoint{r})
				}
				cur = c
				break
			}
		}
	}
	cur.AddCost(0, 0, true, len(word), decode.NotAnError)
	return cur
}

func TestRankSkipsBlacklistedTerminals(t *testing.T) {
	policy := buildRankTestPolicy()
	term := terminalForWithFlag(policy, "cat", true)

	out := Rank([]dicnode.DicNode{term}, 3, policy, Policy{}, nil)
	if len(out) != 0 {
		t.Fatalf("expected blacklisted terminal to be excluded, got %d suggestions", len(out))
	}
}

func TestRankDeduplicatesConvergingPaths(t *testing.T) {
	policy := buildRankTestPolicy()
	a := terminalFor(policy, "cat")
	b := terminalFor(policy, "cat")
	b.AddCost(1, 0, true, 3, decode.Substitution) // slightly worse second path to the same word

	out := Rank([]dicnode.DicNode{a, b}, 3, policy, Policy{}, nil)
	count := 0
	for _, s := range out {
		if string(s.CodePoints) == "cat" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one 'cat' suggestion after dedup, got %d", count)
	}
}

func TestRankSortedDescendingByScore(t *testing.T) {
	policy := buildRankTestPolicy()
	good := terminalFor(policy, "cat")
	worse := terminalFor(policy, "omw")
	worse.AddCost(5, 0, true, 3, decode.Substitution)

	out := Rank([]dicnode.DicNode{good, worse}, 3, policy, Policy{}, nil)
	for i := 1; i < len(out); i++ {
		if out[i].Score > out[i-1].Score {
			t.Fatalf("expected suggestions sorted by descending score, got %d then %d", out[i-1].Score, out[i].Score)
		}
	}
}

func TestRankEmitsShortcutForSingleWordTerminal(t *testing.T) {
	policy := buildRankTestPolicy()
	term := terminalFor(policy, "omw")

	out := Rank([]dicnode.DicNode{term}, 3, policy, Policy{}, nil)
	found := false
	for _, s := range out {
		if s.Kind == decode.ShortcutKind && string(s.CodePoints) == "on my way" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a shortcut suggestion 'on my way' to be emitted for 'omw'")
	}
}

func TestSafetyNetForMostProbableStringSuppressedWhenBehind(t *testing.T) {
	suggestions := []Suggestion{{CodePoints: []decode.CodePoint("top"), Score: 100, Kind: decode.CorrectionKind}}
	mostProbable := &Suggestion{CodePoints: []decode.CodePoint("probable"), Score: 50, Kind: decode.WhitelistKind}

	out := SafetyNetForMostProbableString(suggestions, mostProbable)
	if len(out) != 1 {
		t.Fatalf("expected the lower-scoring most-probable entry to be suppressed, got %d entries", len(out))
	}
}

func TestSafetyNetForMostProbableStringNilIsNoOp(t *testing.T) {
	suggestions := []Suggestion{{Score: 1}}
	out := SafetyNetForMostProbableString(suggestions, nil)
	if len(out) != 1 {
		t.Fatalf("expected nil mostProbable to be a no-op, got %d entries", len(out))
	}
}
