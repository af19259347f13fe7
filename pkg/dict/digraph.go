package dict

import "github.com/beamkey/decoder/pkg/decode"

// digraph pairs two ASCII code points that, when a dictionary requires it,
// stand in for a single composite glyph (e.g. "ae" for "ä"). Traversal walks
// both code points of a digraph as alternatives to the composite glyph via
// DigraphIndex, so a lexicon built without accented characters
// still matches typed digraphs and vice versa.
type digraph struct {
	first, second   decode.CodePoint
	compositeGlyph  decode.CodePoint
}

// germanUmlautDigraphs mirrors the German umlaut table: "ae"/"oe"/"ue" stand
// in for ä/ö/ü.
var germanUmlautDigraphs = []digraph{
	{'a', 'e', 'ä'},
	{'o', 'e', 'ö'},
	{'u', 'e', 'ü'},
}

// frenchLigatureDigraphs mirrors the French ligature table: "ae"/"oe" stand
// in for æ/œ.
var frenchLigatureDigraphs = []digraph{
	{'a', 'e', 'æ'},
	{'o', 'e', 'œ'},
}

// DigraphTable resolves composite glyphs to their two-code-point digraph
// expansion for a given HeaderPolicy, matching the digraph correction edge.
type DigraphTable struct {
	byComposite map[decode.CodePoint]digraph
}

// NewDigraphTable builds the table applicable to header: German umlaut
// digraphs, French ligature digraphs, both, or neither, per the header's
// flags.
func NewDigraphTable(header HeaderPolicy) *DigraphTable {
	t := &DigraphTable{byComposite: make(map[decode.CodePoint]digraph)}
	if header.RequiresGermanUmlautDigraphs() {
		for _, d := range germanUmlautDigraphs {
			t.byComposite[d.compositeGlyph] = d
		}
	}
	if header.RequiresFrenchLigatureDigraphs() {
		for _, d := range frenchLigatureDigraphs {
			t.byComposite[d.compositeGlyph] = d
		}
	}
	return t
}

// HasDigraph reports whether compositeGlyph has a registered digraph
// expansion.
func (t *DigraphTable) HasDigraph(compositeGlyph decode.CodePoint) bool {
	_, ok := t.byComposite[compositeGlyph]
	return ok
}

// CodePointForIndex returns the first or second code point of
// compositeGlyph's digraph expansion, or decode.NotACodePoint if
// compositeGlyph has none or index is decode.NotADigraphIndex.
func (t *DigraphTable) CodePointForIndex(compositeGlyph decode.CodePoint, index decode.DigraphIndex) decode.CodePoint {
	d, ok := t.byComposite[compositeGlyph]
	if !ok {
		return decode.NotACodePoint
	}
	switch index {
	case decode.FirstDigraphCodePoint:
		return d.first
	case decode.SecondDigraphCodePoint:
		return d.second
	default:
		return decode.NotACodePoint
	}
}
