package fonts

import (
	"bytes"
	"fmt"
	"sync"

	gofont "github.com/go-text/typesetting/font"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Standard is one of the twelve base fonts every PDF viewer provides
// without embedding. Ordinals are stable.
type Standard int

const (
	TimesRoman Standard = iota
	TimesBold
	TimesItalic
	TimesBoldItalic
	Helvetica
	HelveticaBold
	HelveticaOblique
	HelveticaBoldOblique
	Courier
	CourierBold
	CourierOblique
	CourierBoldOblique
)

var baseNames = [...]string{
	"Times-Roman", "Times-Bold", "Times-Italic", "Times-BoldItalic",
	"Helvetica", "Helvetica-Bold", "Helvetica-Oblique", "Helvetica-BoldOblique",
	"Courier", "Courier-Bold", "Courier-Oblique", "Courier-BoldOblique",
}

// Count is the number of standard fonts.
const Count = len(baseNames)

func (s Standard) Valid() bool { return s >= 0 && int(s) < Count }

// BaseFont is the PostScript name written into /BaseFont.
func (s Standard) BaseFont() string {
	if !s.Valid() {
		return ""
	}
	return baseNames[s]
}

func (s Standard) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Standard(%d)", int(s))
	}
	return baseNames[s]
}

// ByName resolves a /BaseFont name.
func ByName(name string) (Standard, bool) {
	for i, n := range baseNames {
		if n == name {
			return Standard(i), true
		}
	}
	return 0, false
}

// Metric faces. The Go fonts stand in for the proprietary originals: the
// proportional family for Times and Helvetica, Go Mono for Courier.
func faceData(s Standard) []byte {
	switch s {
	case TimesBold, HelveticaBold:
		return gobold.TTF
	case TimesItalic, HelveticaOblique:
		return goitalic.TTF
	case TimesBoldItalic, HelveticaBoldOblique:
		return gobolditalic.TTF
	case Courier:
		return gomono.TTF
	case CourierBold:
		return gomonobold.TTF
	case CourierOblique:
		return gomonoitalic.TTF
	case CourierBoldOblique:
		return gomonobolditalic.TTF
	}
	return goregular.TTF
}

type loaded struct {
	once    sync.Once
	face    *gofont.Face
	metrics Metrics
	err     error
}

var faces [Count]loaded

// Metrics are vertical font metrics in 1/1000 em.
type Metrics struct {
	Ascent    float64
	Descent   float64 // negative
	CapHeight float64
}

func load(s Standard) (*loaded, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown standard font %d", int(s))
	}
	l := &faces[s]
	l.once.Do(func() {
		data := faceData(s)
		l.face, l.err = gofont.ParseTTF(bytes.NewReader(data))
		if l.err != nil {
			l.err = fmt.Errorf("parse %s: %w", s, l.err)
			return
		}
		l.metrics, l.err = sfntMetrics(data)
	})
	return l, l.err
}

func sfntMetrics(data []byte) (Metrics, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return Metrics{}, fmt.Errorf("parse sfnt: %w", err)
	}
	upem := f.UnitsPerEm()
	var buf sfnt.Buffer
	m, err := f.Metrics(&buf, fixed.Int26_6(upem)<<6, xfont.HintingNone)
	if err != nil {
		return Metrics{}, err
	}
	scale := func(v fixed.Int26_6) float64 { return float64(v) / 64 * 1000 / float64(upem) }
	out := Metrics{Ascent: scale(m.Ascent), Descent: -scale(m.Descent), CapHeight: scale(m.CapHeight)}
	if out.CapHeight == 0 {
		out.CapHeight = out.Ascent
	}
	return out, nil
}

// FontMetrics returns the vertical metrics of s.
func FontMetrics(s Standard) (Metrics, error) {
	l, err := load(s)
	if err != nil {
		return Metrics{}, err
	}
	return l.metrics, nil
}
