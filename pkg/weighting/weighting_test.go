package weighting

import (
	"testing"

	"github.com/beamkey/decoder/pkg/decode"
	"github.com/beamkey/decoder/pkg/dicnode"
	"github.com/beamkey/decoder/pkg/proximity"
)

func typingGrid() *proximity.KeyGrid {
	g := proximity.NewKeyGrid([]proximity.Key{
		{CodePoint: 'a', X: 0, Y: 0, Additional: []decode.CodePoint{'s'}},
		{CodePoint: 's', X: 100, Y: 0, Additional: []decode.CodePoint{'a', 'd'}},
	})
	g.LoadSamples([]proximity.Sample{{PrimaryCodePoint: 'a', X: 0, Y: 0, Used: true}})
	return g
}

func TestTypingGetMatchedCostExactMatch(t *testing.T) {
	typing := NewTyping()
	grid := typingGrid()
	var parent, child dicnode.DicNode
	parent.InitAsRoot(0, decode.NotADictPos)
	child.InitAsChild(&parent, 1, 1, 200, false, true, false, []decode.CodePoint{'a'})

	cost, errType, update := typing.GetMatchedCost(grid, &parent, &child)
	if cost != typing.MatchCost {
		t.Fatalf("expected exact match cost %v, got %v", typing.MatchCost, cost)
	}
	if errType != decode.NotAnError {
		t.Fatalf("expected NotAnError, got %v", errType)
	}
	if update.AdvanceBy != 1 {
		t.Fatalf("expected advance by 1, got %d", update.AdvanceBy)
	}
}

func TestTypingGetMatchedCostProximity(t *testing.T) {
	typing := NewTyping()
	grid := typingGrid()
	var parent, child dicnode.DicNode
	parent.InitAsRoot(0, decode.NotADictPos)
	child.InitAsChild(&parent, 1, 1, 200, false, true, false, []decode.CodePoint{'s'})

	cost, errType, _ := typing.GetMatchedCost(grid, &parent, &child)
	if cost != typing.ProximityCost {
		t.Fatalf("expected proximity cost %v, got %v", typing.ProximityCost, cost)
	}
	if errType != decode.Proximity {
		t.Fatalf("expected Proximity error type, got %v", errType)
	}
}

func TestTypingGetTerminalLanguageCostNoProbability(t *testing.T) {
	typing := NewTyping()
	var terminal dicnode.DicNode
	if got := typing.GetTerminalLanguageCost(&terminal, decode.NotAProbability); got != decode.MaxValueForWeighting {
		t.Fatalf("expected max cost for a missing probability, got %v", got)
	}
}

func TestTypingGetTerminalLanguageCostHigherProbabilityIsCheaper(t *testing.T) {
	typing := NewTyping()
	var terminal dicnode.DicNode
	cheap := typing.GetTerminalLanguageCost(&terminal, 250)
	expensive := typing.GetTerminalLanguageCost(&terminal, 10)
	if cheap >= expensive {
		t.Fatalf("expected a higher probability to cost less: cheap=%v expensive=%v", cheap, expensive)
	}
}

func TestTypingGetTransitionCostSumsComponents(t *testing.T) {
	typing := NewTyping()
	if got := typing.GetTransitionCost(10, 20); got != 30 {
		t.Fatalf("expected typing transition cost to be additive, got %v", got)
	}
}

func TestTypingIsProximityDicNode(t *testing.T) {
	typing := NewTyping()
	var n dicnode.DicNode
	n.InitAsRoot(0, decode.NotADictPos)
	if typing.IsProximityDicNode(&n) {
		t.Fatal("expected a fresh root node to not be flagged as a proximity node")
	}
}

func TestGestureThresholdBaseFallsBackWhenZero(t *testing.T) {
	g := NewGesture(map[decode.CodePoint]struct{ X, Y int }{}, 0)
	if g.thresholdBase() != 1 {
		t.Fatalf("expected a zero key width to fall back to threshold base 1, got %v", g.thresholdBase())
	}
}

func TestGestureGetMatchedCostMissingKeyIsMaxCost(t *testing.T) {
	g := NewGesture(map[decode.CodePoint]struct{ X, Y int }{}, 120)
	grid := typingGrid()
	var parent, child dicnode.DicNode
	parent.InitAsRoot(0, decode.NotADictPos)
	child.InitAsChild(&parent, 1, 1, 200, false, true, false, []decode.CodePoint{'z'})

	cost, errType, _ := g.GetMatchedCost(grid, &parent, &child)
	if cost != decode.MaxValueForWeighting {
		t.Fatalf("expected max cost for a key with no declared centre, got %v", cost)
	}
	if errType != decode.Substitution {
		t.Fatalf("expected Substitution error type, got %v", errType)
	}
}

func TestGestureGetMatchedCostOnPath(t *testing.T) {
	keyCenters := map[decode.CodePoint]struct{ X, Y int }{
		'a': {X: 0, Y: 0},
		's': {X: 100, Y: 0},
	}
	g := NewGesture(keyCenters, 120)
	grid := proximity.NewKeyGrid([]proximity.Key{{CodePoint: 'a'}, {CodePoint: 's'}})
	grid.LoadSamples([]proximity.Sample{
		{PrimaryCodePoint: 'a', X: 0, Y: 0, Used: true},
		{PrimaryCodePoint: 's', X: 100, Y: 0, Used: true},
	})

	var parent, child dicnode.DicNode
	parent.InitAsRoot(0, decode.NotADictPos)
	child.InitAsChild(&parent, 1, 1, 200, false, true, false, []decode.CodePoint{'s'})

	cost, errType, _ := g.GetMatchedCost(grid, &parent, &child)
	if cost > 1 {
		t.Fatalf("expected near-zero cost for a key sitting right on the path, got %v", cost)
	}
	if errType != decode.NotAnError {
		t.Fatalf("expected NotAnError for a key on the path, got %v", errType)
	}
}

func TestGestureTransitionCostDampensLanguageWhenSpatialIsClose(t *testing.T) {
	g := NewGesture(nil, 120)
	close := g.GetTransitionCost(0, 100)
	far := g.GetTransitionCost(1000, 100)
	if close >= far {
		t.Fatalf("expected a close spatial match to dampen the language cost: close=%v far=%v", close, far)
	}
}

func TestGestureIsProximityDicNode(t *testing.T) {
	g := NewGesture(nil, 120)
	var n dicnode.DicNode
	n.InitAsRoot(0, decode.NotADictPos)
	if g.IsProximityDicNode(&n) {
		t.Fatal("expected a node with zero spatial distance to not be flagged as a proximity node")
	}
}
