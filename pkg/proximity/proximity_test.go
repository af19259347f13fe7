package proximity

import (
	"testing"

	"github.com/beamkey/decoder/pkg/decode"
)

func testGrid() *KeyGrid {
	g := NewKeyGrid([]Key{
		{CodePoint: 'a', X: 0, Y: 0, Additional: []decode.CodePoint{'s'}},
		{CodePoint: 's', X: 100, Y: 0, Additional: []decode.CodePoint{'a', 'd'}},
		{CodePoint: 'd', X: 200, Y: 0, Additional: []decode.CodePoint{'s'}},
	})
	g.LoadSamples([]Sample{{PrimaryCodePoint: 'a', X: 0, Y: 0, Used: true}})
	return g
}

func TestProximityTypeMatch(t *testing.T) {
	g := testGrid()
	if got := g.ProximityType(0, 'a', true); got != decode.PTMatch {
		t.Fatalf("expected PTMatch for the primary code point, got %v", got)
	}
}

func TestProximityTypeProximityFromDeclaredList(t *testing.T) {
	g := testGrid()
	if got := g.ProximityType(0, 's', true); got != decode.PTProximity {
		t.Fatalf("expected PTProximity for a declared neighbour, got %v", got)
	}
}

func TestProximityTypeSubstitutionWhenNotCheckingProximity(t *testing.T) {
	g := testGrid()
	if got := g.ProximityType(0, 's', false); got != decode.PTSubstitution {
		t.Fatalf("expected PTSubstitution when checkProximity is false, got %v", got)
	}
}

func TestProximityTypeUnrelatedOutOfRange(t *testing.T) {
	g := testGrid()
	if got := g.ProximityType(5, 'a', true); got != decode.PTUnrelated {
		t.Fatalf("expected PTUnrelated for an out-of-range input index, got %v", got)
	}
}

func TestProximityTypeSubstitutionForDistantUnlistedKey(t *testing.T) {
	g := testGrid()
	if got := g.ProximityType(0, 'd', true); got != decode.PTSubstitution {
		t.Fatalf("expected PTSubstitution for an unlisted, far-away key, got %v", got)
	}
}

func TestKeyForLookup(t *testing.T) {
	g := testGrid()
	k, ok := g.KeyFor('s')
	if !ok {
		t.Fatal("expected a key to be found for 's'")
	}
	if k.X != 100 {
		t.Fatalf("expected key 's' at x=100, got %d", k.X)
	}
	if _, ok := g.KeyFor('z'); ok {
		t.Fatal("expected no key to be found for an unmapped code point")
	}
}

func TestSizeAndAccessorsReflectLoadedSamples(t *testing.T) {
	g := testGrid()
	if g.Size() != 1 {
		t.Fatalf("expected size 1, got %d", g.Size())
	}
	if g.PrimaryCodePointAt(0) != 'a' {
		t.Fatalf("expected primary code point 'a', got %q", g.PrimaryCodePointAt(0))
	}
	if !g.IsUsed(0) {
		t.Fatal("expected sample 0 to be marked used")
	}
	if g.IsUsed(5) {
		t.Fatal("expected an out-of-range index to report unused")
	}
}

func TestDefaultQWERTYKeysCoversAlphabet(t *testing.T) {
	keys := DefaultQWERTYKeys()
	if len(keys) != 26 {
		t.Fatalf("expected 26 QWERTY keys, got %d", len(keys))
	}
	grid := NewKeyGrid(keys)
	for _, r := range "qwertyuiopasdfghjklzxcvbnm" {
		if _, ok := grid.KeyFor(decode.CodePoint(r)); !ok {
			t.Fatalf("expected a laid-out key for %q", r)
		}
	}
}
