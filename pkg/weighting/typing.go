package weighting

import (
	"math"

	"github.com/beamkey/decoder/pkg/decode"
	"github.com/beamkey/decoder/pkg/dicnode"
	"github.com/beamkey/decoder/pkg/proximity"
)

// Typing costs are flat penalties keyed on edge kind, not geometry: tap
// input gives no useful polyline to measure against, so correctness is
// scored purely by which correction rule fired.
type Typing struct {
	MatchCost               float64
	ProximityCost            float64
	AdditionalProximityCost  float64
	SubstitutionCost         float64
	InsertionCost            float64
	TranspositionCost        float64
	OmissionCost             float64
	SpaceOmissionCost        float64
	SpaceSubstitutionCost    float64
	CompletionCostPerChar    float64
}

// NewTyping returns a Typing policy with the original engine's default
// relative weights.
func NewTyping() *Typing {
	return &Typing{
		MatchCost:               0,
		ProximityCost:           25,
		AdditionalProximityCost: 45,
		SubstitutionCost:        70,
		InsertionCost:           50,
		TranspositionCost:       40,
		OmissionCost:            60,
		SpaceOmissionCost:       40,
		SpaceSubstitutionCost:   80,
		CompletionCostPerChar:   5,
	}
}

func (t *Typing) GetMatchedCost(state proximity.State, parent, child *dicnode.DicNode) (float64, decode.ErrorType, InputStateUpdate) {
	inputIndex := parent.InputIndex(0)
	cp := child.NodeCodePoint()
	errType := classify(state, inputIndex, cp)
	var cost float64
	switch errType {
	case decode.NotAnError:
		cost = t.MatchCost
	case decode.Proximity:
		cost = t.ProximityCost
	case decode.AdditionalProximity:
		cost = t.AdditionalProximityCost
	default:
		cost = t.SubstitutionCost
	}
	return cost, errType, InputStateUpdate{
		PointerID:              0,
		AdvanceBy:              1,
		OverwritePrevCodePoint: true,
	}
}

func (t *Typing) GetOmissionCost(parent, child *dicnode.DicNode) float64 { return t.OmissionCost }

func (t *Typing) GetInsertionCost(state proximity.State, parent, child *dicnode.DicNode) float64 {
	return t.InsertionCost
}

func (t *Typing) GetTranspositionCost(state proximity.State, parent, child *dicnode.DicNode) float64 {
	return t.TranspositionCost
}

func (t *Typing) GetSubstitutionCost(state proximity.State, parent, child *dicnode.DicNode) float64 {
	return t.SubstitutionCost
}

func (t *Typing) GetAdditionalProximityCost() float64 { return t.AdditionalProximityCost }

func (t *Typing) GetCompletionCost(parent, child *dicnode.DicNode) float64 {
	return t.CompletionCostPerChar
}

func (t *Typing) GetTerminalInsertionCost(state proximity.State, terminal *dicnode.DicNode) float64 {
	return t.InsertionCost
}

func (t *Typing) GetTerminalLanguageCost(terminal *dicnode.DicNode, probability int) float64 {
	if probability == decode.NotAProbability {
		return decode.MaxValueForWeighting
	}
	return float64(decode.MaxProbability-probability) * 0.5
}

func (t *Typing) GetTerminalSpatialCost(state proximity.State, terminal *dicnode.DicNode) float64 {
	return 0
}

func (t *Typing) GetSpaceOmissionCost() float64      { return t.SpaceOmissionCost }
func (t *Typing) GetSpaceSubstitutionCost() float64  { return t.SpaceSubstitutionCost }

func (t *Typing) GetNewWordBigramLanguageCost(probability int) float64 {
	if probability == decode.NotAProbability {
		return decode.MaxValueForWeighting
	}
	return math.Max(0, float64(decode.MaxProbability-probability)*0.3)
}

func (t *Typing) GetTransitionCost(spatial, language float64) float64 { return spatial + language }

func (t *Typing) NeedsToNormalizeCompoundDistance() bool { return true }

func (t *Typing) IsProximityDicNode(node *dicnode.DicNode) bool {
	return node.ProximityCorrectionCount() > 0
}
