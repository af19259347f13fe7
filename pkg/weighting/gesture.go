package weighting

import (
	"math"

	"github.com/beamkey/decoder/pkg/decode"
	"github.com/beamkey/decoder/pkg/dicnode"
	"github.com/beamkey/decoder/pkg/proximity"
)

// Gesture costs a key against the swiped polyline's geometry rather than
// against discrete taps: the matched cost is the minimum perpendicular
// distance from the key's centre to the segment between two consecutive
// input samples, and the terminal cost additionally rejects paths whose
// sample deviation from the straight line between the first and last input
// samples is implausibly large (spec §4.6). That deviation does not depend
// on the terminal's keys.
type Gesture struct {
	KeyCenters map[decode.CodePoint]struct{ X, Y int }

	// MostCommonKeyWidth sizes the deviation-rejection threshold:
	// thresholdBase = MostCommonKeyWidth / 48, and a path is rejected if its
	// maximum sample deviation exceeds 86 * thresholdBase.
	MostCommonKeyWidth int

	ReverseDirectionPenalty float64
	SubstitutionCost        float64
	OmissionCost            float64
	InsertionCost           float64
	TranspositionCost       float64
	SpaceOmissionCost       float64
	SpaceSubstitutionCost   float64
	CompletionCostPerChar   float64
}

// NewGesture returns a Gesture policy over keyCenters, sized to
// mostCommonKeyWidth (in the same units as keyCenters' coordinates).
func NewGesture(keyCenters map[decode.CodePoint]struct{ X, Y int }, mostCommonKeyWidth int) *Gesture {
	return &Gesture{
		KeyCenters:              keyCenters,
		MostCommonKeyWidth:      mostCommonKeyWidth,
		ReverseDirectionPenalty: 30,
		SubstitutionCost:        20,
		OmissionCost:            15,
		InsertionCost:           15,
		TranspositionCost:       20,
		SpaceOmissionCost:       10,
		SpaceSubstitutionCost:   40,
		CompletionCostPerChar:   3,
	}
}

func (g *Gesture) thresholdBase() float64 {
	if g.MostCommonKeyWidth <= 0 {
		return 1
	}
	return float64(g.MostCommonKeyWidth) / 48.0
}

func (g *Gesture) GetMatchedCost(state proximity.State, parent, child *dicnode.DicNode) (float64, decode.ErrorType, InputStateUpdate) {
	cp := child.NodeCodePoint()
	center, ok := g.KeyCenters[cp]
	inputIndex := parent.InputIndex(0)
	size := state.Size()

	if !ok || size == 0 {
		return decode.MaxValueForWeighting, decode.Substitution, InputStateUpdate{PointerID: 0, AdvanceBy: 1, OverwritePrevCodePoint: true}
	}

	startIdx := inputIndex
	endIdx := inputIndex + 1
	if endIdx >= size {
		endIdx = size - 1
	}
	if startIdx >= size {
		startIdx = size - 1
	}

	dist := perpendicularDistance(
		float64(state.InputX(startIdx)), float64(state.InputY(startIdx)),
		float64(state.InputX(endIdx)), float64(state.InputY(endIdx)),
		float64(center.X), float64(center.Y),
	)

	dx := float64(state.InputX(endIdx) - state.InputX(startIdx))
	dy := float64(state.InputY(endIdx) - state.InputY(startIdx))
	toKeyX := float64(center.X) - float64(state.InputX(startIdx))
	toKeyY := float64(center.Y) - float64(state.InputY(startIdx))
	dotDirection := dx*toKeyX + dy*toKeyY

	cost := dist
	if dotDirection < 0 {
		cost += g.ReverseDirectionPenalty
	}

	errType := decode.NotAnError
	if dist > g.thresholdBase()*4 {
		errType = decode.Substitution
	}

	advance := endIdx - inputIndex
	if advance < 1 {
		advance = 1
	}
	return cost, errType, InputStateUpdate{
		PointerID:              0,
		AdvanceBy:              advance,
		RawLengthDelta:         math.Hypot(dx, dy),
		OverwritePrevCodePoint: true,
	}
}

func (g *Gesture) GetOmissionCost(parent, child *dicnode.DicNode) float64 { return g.OmissionCost }

func (g *Gesture) GetInsertionCost(state proximity.State, parent, child *dicnode.DicNode) float64 {
	return g.InsertionCost
}

func (g *Gesture) GetTranspositionCost(state proximity.State, parent, child *dicnode.DicNode) float64 {
	return g.TranspositionCost
}

func (g *Gesture) GetSubstitutionCost(state proximity.State, parent, child *dicnode.DicNode) float64 {
	return g.SubstitutionCost
}

func (g *Gesture) GetAdditionalProximityCost() float64 { return g.SubstitutionCost * 0.5 }

func (g *Gesture) GetCompletionCost(parent, child *dicnode.DicNode) float64 {
	return g.CompletionCostPerChar
}

// GetTerminalInsertionCost folds in the deviation-rejection rule: a path
// whose maximum sample deviation from the line between the first and last
// input samples exceeds 86 * thresholdBase is rejected outright.
func (g *Gesture) GetTerminalInsertionCost(state proximity.State, terminal *dicnode.DicNode) float64 {
	maxDeviation := g.maxSampleDeviation(state, terminal)
	if maxDeviation > 86*g.thresholdBase() {
		return decode.MaxValueForWeighting
	}
	return maxDeviation * 0.1
}

func (g *Gesture) maxSampleDeviation(state proximity.State, terminal *dicnode.DicNode) float64 {
	size := state.Size()
	if size < 2 {
		return 0
	}
	x0, y0 := float64(state.InputX(0)), float64(state.InputY(0))
	x1, y1 := float64(state.InputX(size-1)), float64(state.InputY(size-1))
	maxDev := 0.0
	for i := 0; i < size; i++ {
		d := perpendicularDistance(x0, y0, x1, y1, float64(state.InputX(i)), float64(state.InputY(i)))
		if d > maxDev {
			maxDev = d
		}
	}
	return maxDev
}

func (g *Gesture) GetTerminalLanguageCost(terminal *dicnode.DicNode, probability int) float64 {
	if probability == decode.NotAProbability {
		return decode.MaxValueForWeighting
	}
	return float64(decode.MaxProbability-probability) * 0.2
}

func (g *Gesture) GetTerminalSpatialCost(state proximity.State, terminal *dicnode.DicNode) float64 {
	return g.maxSampleDeviation(state, terminal) * 0.05
}

func (g *Gesture) GetSpaceOmissionCost() float64     { return g.SpaceOmissionCost }
func (g *Gesture) GetSpaceSubstitutionCost() float64 { return g.SpaceSubstitutionCost }

func (g *Gesture) GetNewWordBigramLanguageCost(probability int) float64 {
	if probability == decode.NotAProbability {
		return decode.MaxValueForWeighting
	}
	return math.Max(0, float64(decode.MaxProbability-probability)*0.15)
}

// GetTransitionCost scales the language component down when the spatial
// signal already clearly identifies the key (small spatial cost): gesture
// matching leans on geometry first, frequency second.
func (g *Gesture) GetTransitionCost(spatial, language float64) float64 {
	if spatial < g.thresholdBase() {
		return spatial + language*0.5
	}
	return spatial + language
}

func (g *Gesture) NeedsToNormalizeCompoundDistance() bool { return false }

func (g *Gesture) IsProximityDicNode(node *dicnode.DicNode) bool {
	return node.SpatialDistance() > 0
}

// perpendicularDistance returns the distance from point (px, py) to the
// segment (x1, y1)-(x2, y2), clamped to the segment's endpoints.
func perpendicularDistance(x1, y1, x2, y2, px, py float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(px-x1, py-y1)
	}
	t := ((px-x1)*dx + (py-y1)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	closestX := x1 + t*dx
	closestY := y1 + t*dy
	return math.Hypot(px-closestX, py-closestY)
}
