package fonts

import (
	"golang.org/x/text/encoding/charmap"
)

// EncodeWinAnsi converts text to the single-byte WinAnsiEncoding used with
// the standard fonts. Runes outside the code page become '?'.
func EncodeWinAnsi(text string) []byte {
	out := make([]byte, 0, len(text))
	for _, r := range text {
		b, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			b = '?'
		}
		out = append(out, b)
	}
	return out
}

// DecodeWinAnsi is the inverse of EncodeWinAnsi.
func DecodeWinAnsi(b []byte) string {
	s, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

// WithStyle returns the member of the same family with the given weight
// and slant.
func (s Standard) WithStyle(bold, italic bool) Standard {
	if !s.Valid() {
		return s
	}
	family := int(s) / 4 * 4
	off := 0
	if bold {
		off++
	}
	if italic {
		off += 2
	}
	return Standard(family + off)
}

// Bold reports whether s is a bold face.
func (s Standard) Bold() bool { return s.Valid() && int(s)%4%2 == 1 }

// Italic reports whether s is an italic or oblique face.
func (s Standard) Italic() bool { return s.Valid() && int(s)%4 >= 2 }
