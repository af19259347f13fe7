package dict

import (
	"testing"

	"github.com/beamkey/decoder/pkg/decode"
)

type digraphHeader struct {
	german, french bool
}

func (h digraphHeader) MaxWordLength() int                   { return decode.MaxWordLength }
func (h digraphHeader) RequiresGermanUmlautDigraphs() bool   { return h.german }
func (h digraphHeader) RequiresFrenchLigatureDigraphs() bool { return h.french }

func TestDigraphTableRespectsHeaderFlags(t *testing.T) {
	table := NewDigraphTable(digraphHeader{german: true, french: false})
	if !table.HasDigraph('ä') {
		t.Fatal("expected German umlaut digraphs to be registered")
	}
	if table.HasDigraph('æ') {
		t.Fatal("expected French ligature digraphs to be absent when not required")
	}
}

func TestDigraphTableCodePointForIndex(t *testing.T) {
	table := NewDigraphTable(digraphHeader{german: true})
	if got := table.CodePointForIndex('ä', decode.FirstDigraphCodePoint); got != 'a' {
		t.Fatalf("expected first digraph code point 'a', got %q", got)
	}
	if got := table.CodePointForIndex('ä', decode.SecondDigraphCodePoint); got != 'e' {
		t.Fatalf("expected second digraph code point 'e', got %q", got)
	}
}

func TestDigraphTableUnknownGlyphReturnsNotACodePoint(t *testing.T) {
	table := NewDigraphTable(digraphHeader{})
	if got := table.CodePointForIndex('z', decode.FirstDigraphCodePoint); got != decode.NotACodePoint {
		t.Fatalf("expected NotACodePoint for an unregistered glyph, got %q", got)
	}
}
