package fonts_test

import (
	"math"
	"testing"

	"github.com/go-text/typesetting/language"
	"github.com/wudi/pdfbridge/fonts"
)

func TestDetectScript(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect language.Script
	}{
		{"latin", "Hello World", language.Latin},
		{"arabic", "مرحبا بالعالم", language.Arabic},
		{"cyrillic", "Привет мир", language.Cyrillic},
		{"latin dominant", "Hello World مرحبا", language.Latin},
		{"han", "你好世界", language.Han},
		{"digits only", "12345", language.Latin},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := fonts.DetectScript([]rune(tc.input)); got != tc.expect {
				t.Fatalf("expected %v, got %v", tc.expect, got)
			}
		})
	}
}

func TestWidthScalesWithSize(t *testing.T) {
	w12, err := fonts.Width(fonts.Helvetica, 12, "Hello")
	if err != nil {
		t.Fatalf("width: %v", err)
	}
	if w12 <= 0 {
		t.Fatalf("expected positive width, got %v", w12)
	}
	w24, _ := fonts.Width(fonts.Helvetica, 24, "Hello")
	if math.Abs(w24-2*w12) > 1e-6 {
		t.Fatalf("width should scale linearly: %v vs %v", w12, w24)
	}
	if w, _ := fonts.Width(fonts.Helvetica, 12, ""); w != 0 {
		t.Fatalf("empty text should have zero width, got %v", w)
	}
}

func TestCourierIsMonospaced(t *testing.T) {
	a, _ := fonts.Width(fonts.Courier, 10, "iiii")
	b, _ := fonts.Width(fonts.Courier, 10, "MMMM")
	if math.Abs(a-b) > 1e-6 {
		t.Fatalf("courier widths differ: %v vs %v", a, b)
	}
	p1, _ := fonts.Width(fonts.Helvetica, 10, "iiii")
	p2, _ := fonts.Width(fonts.Helvetica, 10, "MMMM")
	if p1 >= p2 {
		t.Fatalf("proportional font should give i narrower than M")
	}
}

func TestStandardNames(t *testing.T) {
	if fonts.Count != 12 {
		t.Fatalf("expected 12 standard fonts, got %d", fonts.Count)
	}
	s, ok := fonts.ByName("Courier-BoldOblique")
	if !ok || s != fonts.CourierBoldOblique {
		t.Fatalf("lookup failed: %v %v", s, ok)
	}
	if fonts.Standard(12).Valid() || fonts.Standard(-1).BaseFont() != "" {
		t.Fatalf("out of range font should be invalid")
	}
	m, err := fonts.FontMetrics(fonts.TimesRoman)
	if err != nil || m.Ascent <= 0 || m.Descent >= 0 {
		t.Fatalf("unexpected metrics %+v %v", m, err)
	}
	if _, err := fonts.Width(fonts.Standard(40), 10, "x"); err == nil {
		t.Fatalf("expected error for unknown font")
	}
}

func TestStyleVariants(t *testing.T) {
	if got := fonts.Helvetica.WithStyle(true, true); got != fonts.HelveticaBoldOblique {
		t.Fatalf("expected Helvetica-BoldOblique, got %v", got)
	}
	if got := fonts.CourierBoldOblique.WithStyle(false, false); got != fonts.Courier {
		t.Fatalf("expected Courier, got %v", got)
	}
	if !fonts.TimesBoldItalic.Bold() || !fonts.TimesBoldItalic.Italic() || fonts.TimesItalic.Bold() {
		t.Fatalf("style predicates wrong")
	}
}

func TestWinAnsiEncoding(t *testing.T) {
	got := fonts.EncodeWinAnsi("café • €√")
	want := []byte{'c', 'a', 'f', 0xE9, ' ', 0x95, ' ', 0x80, '?'}
	if string(got) != string(want) {
		t.Fatalf("expected % x, got % x", want, got)
	}
	if back := fonts.DecodeWinAnsi(got[:6]); back != "café •" {
		t.Fatalf("decode gave %q", back)
	}
}
