package server

import (
	"strings"

	"github.com/beamkey/decoder/internal/utils"
	"github.com/beamkey/decoder/pkg/decode"
	"github.com/beamkey/decoder/pkg/dict"
	"github.com/beamkey/decoder/pkg/proximity"
	"github.com/beamkey/decoder/pkg/scoring"
	"github.com/beamkey/decoder/pkg/traversal"
	"github.com/beamkey/decoder/pkg/weighting"
)

// Engine wires one dictionary, proximity grid, weighting policy, and
// traversal session into the thing the server actually calls: Decode.
// Wrapping these as one Engine keeps Server's protocol handling (request
// parsing, config enforcement, msgpack framing) decoupled from how a
// decode call is actually carried out.
type Engine struct {
	Dict      dict.Policy
	Grid      *proximity.KeyGrid
	Session   *traversal.Session
	Policy    scoring.Policy
	WordCount int
}

// NewEngine builds an Engine around a compiled dictionary and key grid,
// defaulting to the Typing weighting policy.
func NewEngine(dictionary dict.Policy, grid *proximity.KeyGrid, dictionaryBytes int64, wordCount int) *Engine {
	digraphs := dict.NewDigraphTable(dictionary.Header())
	sess := traversal.NewSession(dictionary, grid, weighting.NewTyping(), digraphs, dictionaryBytes)
	return &Engine{
		Dict:      dictionary,
		Grid:      grid,
		Session:   sess,
		WordCount: wordCount,
		Policy: scoring.Policy{
			AutoCorrectsToMultiWordSuggestionIfTop: true,
			DoesAutoCorrectValidWord:                true,
		},
	}
}

// Decode runs one full beam search over samples and ranks the result. The
// dictionary only holds lowercase entries, so a capitalised tap sequence
// (shift-key capitals) is lowercased before the beam search runs and
// reapplied to whichever suggestion comes back, matching a soft keyboard's
// usual auto-capitalisation behaviour.
func (e *Engine) Decode(samples []SampleInput, prevWord string, commitPoint int, continuous bool) []scoring.Suggestion {
	raw := make([]rune, len(samples))
	for i, s := range samples {
		raw[i] = rune(s.CodePoint)
	}
	lower, capInfo := utils.GetCapitalDetails(string(raw))
	lowerRunes := []rune(lower)

	converted := make([]proximity.Sample, len(samples))
	for i, s := range samples {
		converted[i] = proximity.Sample{PrimaryCodePoint: decode.CodePoint(lowerRunes[i]), X: int(s.X), Y: int(s.Y), Used: true}
	}
	e.Grid.LoadSamples(converted)
	e.Grid.SetContinuousSuggestionPossible(continuous)

	prevWordPos := decode.NotADictPos
	if prevWord != "" {
		prevWordPos = e.Dict.TerminalPositionOfWord([]decode.CodePoint(strings.ToLower(prevWord)), true)
	}

	terminals := e.Session.Decode(len(samples), prevWordPos, commitPoint)
	suggestions := scoring.Rank(terminals, len(samples), e.Dict, e.Policy, nil)

	if capInfo != nil {
		for i := range suggestions {
			word := string(suggestions[i].CodePoints)
			restored := utils.CapitalizeAtPositions(word, capInfo)
			suggestions[i].CodePoints = []decode.CodePoint(restored)
		}
	}
	return suggestions
}

// IsCorrupted reports whether a prior decode call found the dictionary
// structurally broken.
func (e *Engine) IsCorrupted() bool { return e.Dict.IsCorrupted() }
