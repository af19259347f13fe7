package traversal

import (
	"testing"

	"github.com/beamkey/decoder/pkg/decode"
	"github.com/beamkey/decoder/pkg/dict"
	"github.com/beamkey/decoder/pkg/proximity"
	"github.com/beamkey/decoder/pkg/weighting"
)

func buildSession(words ...string) (*Session, *proximity.KeyGrid) {
	builder := dict.NewBuilder().WithHeader(dict.DefaultHeaderPolicy{})
	for _, w := range words {
		builder.AddWord(w, 200)
	}
	dictionary := builder.Build()
	grid := proximity.NewKeyGrid(proximity.DefaultQWERTYKeys())
	digraphs := dict.NewDigraphTable(dictionary.Header())
	sess := NewSession(dictionary, grid, weighting.NewTyping(), digraphs, 0)
	return sess, grid
}

func samplesFor(grid *proximity.KeyGrid, word string) []proximity.Sample {
	samples := make([]proximity.Sample, 0, len(word))
	for _, r := range word {
		cp := decode.CodePoint(r)
		key, ok := grid.KeyFor(cp)
		if !ok {
			continue
		}
		samples = append(samples, proximity.Sample{PrimaryCodePoint: cp, X: key.X, Y: key.Y, Used: true})
	}
	return samples
}

func TestDecodeExactWordProducesTerminal(t *testing.T) {
	sess, grid := buildSession("hello", "world", "help")
	samples := samplesFor(grid, "hello")
	grid.LoadSamples(samples)

	terminals := sess.Decode(len(samples), decode.NotADictPos, 0)
	if len(terminals) == 0 {
		t.Fatal("expected at least one terminal for an exact dictionary word")
	}

	found := false
	for i := range terminals {
		if string(terminals[i].OutputWord()) == "hello" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected 'hello' to be among the decoded terminals")
	}
}

func TestDecodeEmptyInputReturnsNil(t *testing.T) {
	sess, _ := buildSession("hello")
	if got := sess.Decode(0, decode.NotADictPos, 0); got != nil {
		t.Fatalf("expected nil terminals for zero input size, got %v", got)
	}
}

func TestDecodeTypoCorrectsToNearestWord(t *testing.T) {
	sess, grid := buildSession("hello", "world")
	samples := samplesFor(grid, "hrllo") // one substituted key
	grid.LoadSamples(samples)

	terminals := sess.Decode(len(samples), decode.NotADictPos, 0)
	found := false
	for i := range terminals {
		if string(terminals[i].OutputWord()) == "hello" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a single-substitution typo to still surface 'hello' as a candidate")
	}
}

func TestDecodeNoAllowCorrectionsRejectsTypo(t *testing.T) {
	sess, grid := buildSession("hello")
	sess.AllowCorrections = false
	samples := samplesFor(grid, "hrllo")
	grid.LoadSamples(samples)

	terminals := sess.Decode(len(samples), decode.NotADictPos, 0)
	for i := range terminals {
		if string(terminals[i].OutputWord()) == "hello" {
			t.Fatal("expected corrections to be disabled, so a typo should not resolve to 'hello'")
		}
	}
}

func TestDecodePoolIntegrityAfterMultipleCalls(t *testing.T) {
	sess, grid := buildSession("hello", "world", "help", "held")
	for i := 0; i < 5; i++ {
		samples := samplesFor(grid, "hello")
		grid.LoadSamples(samples)
		sess.Decode(len(samples), decode.NotADictPos, 0)
	}
	if used := sess.Cache.Pool().UsedSlots(); used != 0 {
		t.Fatalf("expected all pool slots released between independent decode calls, got %d used", used)
	}
}
