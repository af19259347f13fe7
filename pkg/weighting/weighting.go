// Package weighting implements the per-edge cost model Traversal consults
// while expanding the beam: two concrete policies, Typing and Gesture,
// behind one Weighting interface.
package weighting

import (
	"github.com/beamkey/decoder/pkg/decode"
	"github.com/beamkey/decoder/pkg/dicnode"
	"github.com/beamkey/decoder/pkg/proximity"
)

// InputStateUpdate carries the input-index/raw-length/previous-code-point
// updates a matched-cost computation produces, for the caller to apply via
// DicNode.ForwardInputIndex / AddRawLength once the cost has been charged.
type InputStateUpdate struct {
	PointerID              int
	AdvanceBy              int
	RawLengthDelta         float64
	OverwritePrevCodePoint bool
}

// Weighting is the per-edge cost function contract. Every Get* method
// returns a spatial or language cost in the same units AddCost accumulates;
// Traversal is the only caller, and it always follows a cost call with
// child.AddCost(...) using the returned value and decode.ErrorType.
type Weighting interface {
	// GetMatchedCost returns the spatial cost of child matching (exactly, or
	// via proximity/digraph) the current input sample, and how to advance
	// input state. Case-only and accent-only differences are not matched as
	// equivalents.
	GetMatchedCost(state proximity.State, parent, child *dicnode.DicNode) (float64, decode.ErrorType, InputStateUpdate)

	GetOmissionCost(parent, child *dicnode.DicNode) float64
	GetInsertionCost(state proximity.State, parent, child *dicnode.DicNode) float64
	GetTranspositionCost(state proximity.State, parent, child *dicnode.DicNode) float64
	GetSubstitutionCost(state proximity.State, parent, child *dicnode.DicNode) float64
	GetAdditionalProximityCost() float64
	GetCompletionCost(parent, child *dicnode.DicNode) float64

	GetTerminalInsertionCost(state proximity.State, terminal *dicnode.DicNode) float64
	GetTerminalLanguageCost(terminal *dicnode.DicNode, probability int) float64
	GetTerminalSpatialCost(state proximity.State, terminal *dicnode.DicNode) float64

	GetSpaceOmissionCost() float64
	GetSpaceSubstitutionCost() float64
	GetNewWordBigramLanguageCost(probability int) float64

	// GetTransitionCost combines a spatial and language delta into the cost
	// charged for a single edge (identity for Typing; Gesture scales the
	// language component down when the spatial signal already dominates).
	GetTransitionCost(spatial, language float64) float64

	NeedsToNormalizeCompoundDistance() bool
	IsProximityDicNode(node *dicnode.DicNode) bool
}

// classify determines the semantic error type for a child's code point
// from its proximity type against the input sample, used by Typing to tell
// clean matches from corrections. It has no case-only or accent-only
// category: such a child is classified by proximity type like any other
// code point.
func classify(state proximity.State, inputIndex int, childCodePoint decode.CodePoint) decode.ErrorType {
	pt := state.ProximityType(inputIndex, childCodePoint, true)
	switch pt {
	case decode.PTMatch:
		return decode.NotAnError
	case decode.PTProximity:
		return decode.Proximity
	case decode.PTAdditionalProximity:
		return decode.AdditionalProximity
	case decode.PTSubstitution:
		return decode.Substitution
	default:
		return decode.Substitution
	}
}
