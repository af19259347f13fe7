package proximity

import "github.com/beamkey/decoder/pkg/decode"

// qwertyRows lists a standard QWERTY layout row by row, used to derive key
// centres and each key's immediate left/right neighbours for
// DefaultQWERTYKeys. Row 2 and row 3 are inset to match a physical keyboard's
// stagger.
var qwertyRows = []string{
	"qwertyuiop",
	"asdfghjkl",
	"zxcvbnm",
}

// keyWidth and keyHeight are the spacing used to place DefaultQWERTYKeys on
// an evenly spaced virtual grid; only relative distances matter since all
// spatial costs in weighting are expressed in units of key width.
const (
	keyWidth  = 120
	keyHeight = 120
)

// DefaultQWERTYKeys builds a Key layout for a standard QWERTY keyboard,
// suitable for NewKeyGrid when no device-specific layout is available (used
// by the CLI and as the entrypoint's fallback). Each key's Additional list
// holds its immediate row neighbours, matching the original engine's
// default proximityCharsArray shape for a non-curved keyboard.
func DefaultQWERTYKeys() []Key {
	var keys []Key
	for row, letters := range qwertyRows {
		rowInset := row * (keyWidth / 2)
		for col, r := range letters {
			cp := decode.CodePoint(r)
			var additional []decode.CodePoint
			if col > 0 {
				additional = append(additional, decode.CodePoint(letters[col-1]))
			}
			if col < len(letters)-1 {
				additional = append(additional, decode.CodePoint(letters[col+1]))
			}
			keys = append(keys, Key{
				CodePoint:  cp,
				X:          rowInset + col*keyWidth,
				Y:          row * keyHeight,
				Additional: additional,
			})
		}
	}
	return keys
}

// MostCommonKeyWidth returns the spacing DefaultQWERTYKeys lays its keys out
// with, for callers that need to parametrise a gesture Weighting's threshold
// base (the 86 * (mostCommonKeyWidth/48) sample-deviation rule).
func MostCommonKeyWidth() int { return keyWidth }
