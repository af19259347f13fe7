// Package proximity defines the ProximityState collaborator and a concrete
// KeyGrid implementation modelled on the original engine's
// proximityCharsArray grid: a fixed-size grid of keys, each with a bounded
// list of nearby keys, used to turn a tap's (x, y) into a ranked proximity
// match against a given code point.
package proximity

import (
	"math"

	"github.com/beamkey/decoder/pkg/decode"
)

// State is the abstract per-pointer input collaborator Traversal and
// Weighting read from. inputIndex is a 0-based sample index, consistent with
// DicNode.InputIndex.
type State interface {
	Size() int
	PrimaryCodePointAt(inputIndex int) decode.CodePoint
	PrimaryOriginalCodePointAt(inputIndex int) decode.CodePoint
	ProximityType(inputIndex int, codePoint decode.CodePoint, checkProximity bool) decode.ProximityType
	InputX(inputIndex int) int
	InputY(inputIndex int) int
	IsUsed(inputIndex int) bool
	IsContinuousSuggestionPossible() bool
	TouchPositionCorrectionEnabled() bool
}

// Sample is one recorded touch or gesture point.
type Sample struct {
	PrimaryCodePoint decode.CodePoint
	X, Y             int
	Used             bool
}

// Key is one physical key on the grid: its primary code point, its on-screen
// centre, and the additional code points a nearby tap should be considered a
// proximity match for (spec's MAX_PROXIMITY_CHARS_SIZE-bounded list).
type Key struct {
	CodePoint  decode.CodePoint
	X, Y       int
	Additional []decode.CodePoint
}

// MaxProximityCharsSize bounds how many additional code points a single key
// may list, mirroring the original's MAX_PROXIMITY_CHARS_SIZE.
const MaxProximityCharsSize = 16

// KeyGrid is a concrete, in-memory ProximityState backed by an explicit set
// of keys with neighbour lists, plus the recorded sample sequence for one
// decode call.
type KeyGrid struct {
	keys                    []Key
	byCodePoint             map[decode.CodePoint]*Key
	samples                 []Sample
	touchPositionCorrection bool
	continuousSuggestion    bool
}

// NewKeyGrid builds a KeyGrid from a key layout. Neighbour lists longer than
// MaxProximityCharsSize are truncated.
func NewKeyGrid(keys []Key) *KeyGrid {
	g := &KeyGrid{byCodePoint: make(map[decode.CodePoint]*Key, len(keys))}
	g.keys = make([]Key, len(keys))
	copy(g.keys, keys)
	for i := range g.keys {
		if len(g.keys[i].Additional) > MaxProximityCharsSize {
			g.keys[i].Additional = g.keys[i].Additional[:MaxProximityCharsSize]
		}
		g.byCodePoint[g.keys[i].CodePoint] = &g.keys[i]
	}
	return g
}

// EnableTouchPositionCorrection turns on spatial (x,y) proximity scoring;
// without it only the key's declared Additional list is consulted.
func (g *KeyGrid) EnableTouchPositionCorrection(enabled bool) { g.touchPositionCorrection = enabled }

// SetContinuousSuggestionPossible records whether this call's samples are a
// strict extension of a previously decoded sequence.
func (g *KeyGrid) SetContinuousSuggestionPossible(possible bool) { g.continuousSuggestion = possible }

// LoadSamples replaces the recorded sample sequence for the next decode
// call.
func (g *KeyGrid) LoadSamples(samples []Sample) {
	g.samples = make([]Sample, len(samples))
	copy(g.samples, samples)
}

func (g *KeyGrid) Size() int { return len(g.samples) }

// KeyFor returns the laid-out key for a code point, if the grid has one.
// Callers synthesising samples from typed text (the debug CLI) use this to
// turn a character into an (x, y) tap.
func (g *KeyGrid) KeyFor(cp decode.CodePoint) (Key, bool) {
	k, ok := g.byCodePoint[cp]
	if !ok {
		return Key{}, false
	}
	return *k, true
}

func (g *KeyGrid) PrimaryCodePointAt(inputIndex int) decode.CodePoint {
	if inputIndex < 0 || inputIndex >= len(g.samples) {
		return decode.NotACodePoint
	}
	return g.samples[inputIndex].PrimaryCodePoint
}

// PrimaryOriginalCodePointAt is the same as PrimaryCodePointAt here: this
// reference implementation does not distinguish an auto-corrected primary
// code point from the originally sampled one.
func (g *KeyGrid) PrimaryOriginalCodePointAt(inputIndex int) decode.CodePoint {
	return g.PrimaryCodePointAt(inputIndex)
}

func (g *KeyGrid) InputX(inputIndex int) int {
	if inputIndex < 0 || inputIndex >= len(g.samples) {
		return 0
	}
	return g.samples[inputIndex].X
}

func (g *KeyGrid) InputY(inputIndex int) int {
	if inputIndex < 0 || inputIndex >= len(g.samples) {
		return 0
	}
	return g.samples[inputIndex].Y
}

func (g *KeyGrid) IsUsed(inputIndex int) bool {
	if inputIndex < 0 || inputIndex >= len(g.samples) {
		return false
	}
	return g.samples[inputIndex].Used
}

func (g *KeyGrid) IsContinuousSuggestionPossible() bool { return g.continuousSuggestion }
func (g *KeyGrid) TouchPositionCorrectionEnabled() bool { return g.touchPositionCorrection }

// ProximityType classifies codePoint against the sample at inputIndex:
// MATCH for the primary code point, PROXIMITY/ADDITIONAL_PROXIMITY for keys
// declared near the sampled key (nearest half of the neighbour list counts
// as PROXIMITY, the rest ADDITIONAL_PROXIMITY), SUBSTITUTION when
// checkProximity is false and codePoint is simply a different key, and
// UNRELATED when no key exists for the sample at all.
func (g *KeyGrid) ProximityType(inputIndex int, codePoint decode.CodePoint, checkProximity bool) decode.ProximityType {
	if inputIndex < 0 || inputIndex >= len(g.samples) {
		return decode.PTUnrelated
	}
	sample := g.samples[inputIndex]
	if sample.PrimaryCodePoint == codePoint {
		return decode.PTMatch
	}
	key, ok := g.byCodePoint[sample.PrimaryCodePoint]
	if !ok {
		return decode.PTUnrelated
	}
	if !checkProximity {
		return decode.PTSubstitution
	}
	for i, cp := range key.Additional {
		if cp != codePoint {
			continue
		}
		if i < (len(key.Additional)+1)/2 {
			return decode.PTProximity
		}
		return decode.PTAdditionalProximity
	}
	if g.touchPositionCorrection {
		if target, ok := g.byCodePoint[codePoint]; ok {
			if g.distance(sample.X, sample.Y, target.X, target.Y) <= nearKeyRadius(key, target) {
				return decode.PTProximity
			}
		}
	}
	return decode.PTSubstitution
}

func (g *KeyGrid) distance(x1, y1, x2, y2 int) float64 {
	dx := float64(x1 - x2)
	dy := float64(y1 - y2)
	return math.Sqrt(dx*dx + dy*dy)
}

// nearKeyRadius treats two keys as spatially near when within one and a
// half times the distance between them as laid out in the grid would allow
// for typical finger-width error; absent better layout data this uses a
// fixed multiple of the smaller of the two keys' distance to the grid
// origin's nearest neighbour, which in practice is supplied by
// Additional for a concrete layout. Kept simple and documented as a
// fallback path rather than the primary proximity signal.
func nearKeyRadius(a, b *Key) float64 {
	const fallbackRadius = 1.5
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	d := math.Sqrt(dx*dx + dy*dy)
	return d * fallbackRadius
}
