package document

import (
	"bytes"
	"unicode/utf8"

	"github.com/wudi/pdfbridge/ir/raw"
	"golang.org/x/text/encoding/unicode"
)

// pdfDocHigh maps PDFDocEncoding bytes 0x80-0xA0 to runes; the rest of the
// upper half matches Latin-1.
var pdfDocHigh = [...]rune{
	0x2022, 0x2020, 0x2021, 0x2026, 0x2014, 0x2013, 0x0192, 0x2044,
	0x2039, 0x203A, 0x2212, 0x2030, 0x201E, 0x201C, 0x201D, 0x2018,
	0x2019, 0x201A, 0x2122, 0xFB01, 0xFB02, 0x0141, 0x0152, 0x0160,
	0x0178, 0x017D, 0x0131, 0x0142, 0x0153, 0x0161, 0x017E, utf8.RuneError,
	0x20AC,
}

var (
	utf16BOM = []byte{0xFE, 0xFF}
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
)

// decodeText turns a PDF text string into UTF-8.
func decodeText(b []byte) string {
	switch {
	case bytes.HasPrefix(b, utf16BOM):
		out, err := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder().Bytes(b)
		if err == nil {
			return string(out)
		}
	case bytes.HasPrefix(b, utf8BOM):
		return string(b[len(utf8BOM):])
	}
	var sb bytes.Buffer
	for _, c := range b {
		if c >= 0x80 && c <= 0xA0 {
			sb.WriteRune(pdfDocHigh[c-0x80])
			continue
		}
		sb.WriteRune(rune(c))
	}
	return sb.String()
}

// encodeText returns s as a PDF text string: PDFDocEncoding when every rune
// has a direct Latin-1 code outside the remapped block, UTF-16BE otherwise.
func encodeText(s string) raw.StringObj {
	simple := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF || (r >= 0x7F && r <= 0xA0) || (r < 0x20 && r != '\n' && r != '\r' && r != '\t') {
			out, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(s))
			if err != nil {
				break
			}
			return raw.Str(out)
		}
		simple = append(simple, byte(r))
	}
	return raw.Str(simple)
}

// textValue resolves obj and decodes it when it is a string.
func (d *Document) textValue(obj raw.Object) (string, bool) {
	o, err := d.resolve(obj)
	if err != nil {
		return "", false
	}
	s, ok := o.(raw.StringObj)
	if !ok {
		return "", false
	}
	return decodeText(s.Bytes), true
}
