// Package scoring turns the raw terminal DicNodes a Session.Decode call
// produces into the final ranked suggestion list: final score computation,
// first-word auto-commit confidence, and shortcut emission.
package scoring

import (
	"sort"

	"github.com/beamkey/decoder/internal/utils"
	"github.com/beamkey/decoder/pkg/decode"
	"github.com/beamkey/decoder/pkg/dict"
	"github.com/beamkey/decoder/pkg/dicnode"
)

// NotAFirstWordConfidence is returned by ComputeFirstWordConfidence when the
// terminal has no committed previous word at all.
const NotAFirstWordConfidence = -1

// AutoCommitThreshold is the first-word-confidence value at or above which
// a multi-word terminal's first word may be auto-committed.
const AutoCommitThreshold = 1_000_000

// maxPerfectScore anchors CalculateFinalScore's monotone mapping from
// compound distance to an integer score: a distance of zero maps here, and
// every unit of distance subtracts scorePerDistanceUnit.
const (
	maxPerfectScore        = 1_000_000
	scorePerDistanceUnit   = 1_000
	exactMatchBoost        = 50_000
	perfectMatchBoost      = 20_000
	accentErrorDemotion    = 5_000
	caseErrorDemotion      = 2_000
	digraphDemotion        = 1_000
	forceCommitDemotion    = 10_000
)

// Policy bundles the small set of scoring knobs that are policy-specific
// rather than fixed formulae.
type Policy struct {
	AutoCorrectsToMultiWordSuggestionIfTop bool
	DoesAutoCorrectValidWord               bool
}

// CalculateFinalScore maps a terminal's compound distance (and the error
// types it accumulated along the way) to an integer score, monotone
// decreasing in distance, with fixed promotions/demotions for exact match,
// strict perfect match (zero edit or proximity corrections at all), digraph
// presence, and forced multi-word commits. No accent-only or case-only
// demotion is applied: accentErrorDemotion and caseErrorDemotion are not
// used here, and no input reports those error types.
func CalculateFinalScore(compoundDistance float64, inputSize int, editCorrections, proximityCorrections int,
	forceCommit, boostExactMatches, hasProbabilityZero, isExactMatch, isDigraph bool) int {

	if hasProbabilityZero {
		return 0
	}

	score := maxPerfectScore - int(compoundDistance*scorePerDistanceUnit)
	if score < 0 {
		score = 0
	}

	if isExactMatch && boostExactMatches {
		score += exactMatchBoost
		if editCorrections == 0 && proximityCorrections == 0 {
			score += perfectMatchBoost
		}
	}
	if isDigraph {
		score -= digraphDemotion
	}
	if forceCommit {
		score -= forceCommitDemotion
	}
	if score < 0 {
		score = 0
	}
	return score
}

// ComputeFirstWordConfidence combines the number of words already
// committed, the normalised compound distance at the end of the first word,
// and the terminal's total output length into a single confidence integer;
// higher means more confident the first word should be auto-committed.
// Returns NotAFirstWordConfidence when the terminal carries no previous
// word (there has been no space yet).
func ComputeFirstWordConfidence(terminal *dicnode.DicNode) int {
	if terminal.PrevWordCount() == 0 {
		return NotAFirstWordConfidence
	}
	afterFirstWord, ok := terminal.NormalizedCompoundDistanceAfterFirstWord()
	if !ok {
		return NotAFirstWordConfidence
	}
	spaceBonus := terminal.PrevWordCount() * 200_000
	lengthBonus := terminal.PrevWordLength() * 10_000
	distancePenalty := int(afterFirstWord * scorePerDistanceUnit)
	confidence := spaceBonus + lengthBonus - distancePenalty
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}

// Suggestion is one emitted result.
type Suggestion struct {
	CodePoints             []decode.CodePoint
	Score                  int
	Kind                   decode.SuggestionKind
	SecondWordFirstInputIndex int
	ProximityCorrections   int
	EditCorrections        int
}

// Rank finalises terminals into a score-sorted suggestion list, bounded to
// decode.MaxResults, including shortcut entries for single-word terminals.
// policy and dictionary supply the small set of knobs and lookups final
// scoring needs beyond the terminal itself.
func Rank(terminals []dicnode.DicNode, inputSize int, dictionary dict.Policy, policy Policy, sameAsTyped func(*dicnode.DicNode) bool) []Suggestion {
	out := make([]Suggestion, 0, len(terminals))
	// Multiple beam paths (e.g. a matched traversal and a proximity-corrected
	// one) can converge on the same output word; only the first, highest
	// scoring occurrence survives once sorted.
	seen := utils.NewSuggestionFilter("")
	for i := range terminals {
		t := &terminals[i]
		if t.IsBlacklistedOrNotAWord() {
			continue
		}
		word := string(t.OutputWord())
		if !seen.ShouldInclude(word) {
			continue
		}
		forceCommit := t.PrevWordCount() > 0 && policy.AutoCorrectsToMultiWordSuggestionIfTop &&
			ComputeFirstWordConfidence(t) >= AutoCommitThreshold
		isDigraph := t.IsInDigraph()
		score := CalculateFinalScore(t.NormalizedCompoundDistance(), inputSize,
			t.EditCorrectionCount(), t.ProximityCorrectionCount(), forceCommit,
			true, t.Probability() == 0 && t.PrevWordTerminalPos() == decode.NotADictPos, t.IsExactMatch(), isDigraph)

		out = append(out, Suggestion{
			CodePoints:                append([]decode.CodePoint(nil), t.OutputWord()...),
			Score:                     score,
			Kind:                      decode.CorrectionKind,
			SecondWordFirstInputIndex: t.SecondWordFirstInputIndex(),
			ProximityCorrections:      t.ProximityCorrectionCount(),
			EditCorrections:           t.EditCorrectionCount(),
		})

		if t.PrevWordCount() == 0 {
			out = append(out, shortcutsFor(t, score, dictionary, sameAsTyped)...)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	// Multiple beam paths (e.g. a matched traversal and a proximity-corrected
	// one) can converge on the same output word; only the first, highest
	// scoring occurrence survives once sorted.
	seen = utils.NewSuggestionFilter("")
	deduped := out[:0]
	for _, s := range out {
		if seen.ShouldInclude(string(s.CodePoints)) {
			deduped = append(deduped, s)
		}
	}
	out = deduped
	if len(out) > decode.MaxResults {
		out = out[:decode.MaxResults]
	}
	return out
}

func shortcutsFor(t *dicnode.DicNode, baseScore int, dictionary dict.Policy, sameAsTyped func(*dicnode.DicNode) bool) []Suggestion {
	shortcutPos := dictionary.ShortcutPositionOfPtNode(t.Pos())
	if shortcutPos == decode.NotADictPos {
		return nil
	}
	entries := dictionary.Shortcuts().ShortcutsAt(shortcutPos)
	if len(entries) == 0 {
		return nil
	}
	out := make([]Suggestion, 0, len(entries))
	for _, sc := range entries {
		kind := decode.ShortcutKind
		if sc.Whitelist && sameAsTyped != nil && sameAsTyped(t) {
			kind = decode.WhitelistKind
		}
		score := baseScore
		if sc.Probability > 0 {
			score = sc.Probability * scorePerDistanceUnit
		}
		out = append(out, Suggestion{
			CodePoints: []decode.CodePoint([]rune(sc.Target)),
			Score:      score,
			Kind:       kind,
		})
	}
	return out
}

// SafetyNetForMostProbableString drops mostProbable from the result set
// when its score does not beat the top regular (non-shortcut) suggestion:
// a most-probable-string slot is suppressed if its score is worse than the
// top regular suggestion.
func SafetyNetForMostProbableString(suggestions []Suggestion, mostProbable *Suggestion) []Suggestion {
	if mostProbable == nil {
		return suggestions
	}
	for _, s := range suggestions {
		if s.Kind == decode.CorrectionKind && s.Score >= mostProbable.Score {
			return suggestions
		}
	}
	return append(suggestions, *mostProbable)
}
