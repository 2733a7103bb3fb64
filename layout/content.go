package layout

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/wudi/pdfbridge/fonts"
)

// Page is a finished page: its size, content stream operators, the fonts
// the content selects by /F<ordinal> and its link annotations.
type Page struct {
	Width, Height float64
	Content       []byte
	Fonts         []fonts.Standard
	Links         []Link
}

type Link struct {
	Rect [4]float64
	URI  string
}

// ContentBuilder is the Builder that renders to content streams.
type ContentBuilder struct {
	pages []*Page
}

func NewContentBuilder() *ContentBuilder { return &ContentBuilder{} }

// Pages returns the pages built so far.
func (b *ContentBuilder) Pages() []*Page { return b.pages }

func (b *ContentBuilder) NewPage(width, height float64) PageBuilder {
	p := &Page{Width: width, Height: height}
	b.pages = append(b.pages, p)
	return &contentPage{page: p, used: make(map[fonts.Standard]bool)}
}

func (b *ContentBuilder) MeasureText(text string, fontSize float64, font fonts.Standard) float64 {
	w, err := fonts.Width(font, fontSize, text)
	if err != nil {
		return float64(len(text)) * fontSize / 2
	}
	return w
}

type contentPage struct {
	page *Page
	buf  bytes.Buffer
	used map[fonts.Standard]bool
}

func (p *contentPage) DrawText(text string, x, y float64, opts TextOptions) {
	p.used[opts.Font] = true
	fmt.Fprintf(&p.buf, "BT %s %s %s rg /F%d %s Tf %s %s Td ",
		Num(opts.Color.R), Num(opts.Color.G), Num(opts.Color.B),
		int(opts.Font), Num(opts.FontSize), Num(x), Num(y))
	WriteString(&p.buf, fonts.EncodeWinAnsi(text))
	p.buf.WriteString(" Tj ET\n")
}

func (p *contentPage) DrawLine(x1, y1, x2, y2 float64, opts LineOptions) {
	c := opts.StrokeColor
	fmt.Fprintf(&p.buf, "q %s %s %s RG %s w %s %s m %s %s l S Q\n",
		Num(c.R), Num(c.G), Num(c.B), Num(opts.LineWidth), Num(x1), Num(y1), Num(x2), Num(y2))
}

func (p *contentPage) AddLink(rect [4]float64, uri string) {
	p.page.Links = append(p.page.Links, Link{Rect: rect, URI: uri})
}

func (p *contentPage) Finish() {
	p.page.Content = append([]byte(nil), p.buf.Bytes()...)
	p.page.Fonts = p.page.Fonts[:0]
	for f := fonts.Standard(0); int(f) < fonts.Count; f++ {
		if p.used[f] {
			p.page.Fonts = append(p.page.Fonts, f)
		}
	}
}

// Num formats a content stream number with at most four decimals.
func Num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	for len(s) > 1 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	s = trimDot(s)
	if s == "-0" {
		return "0"
	}
	return s
}

func trimDot(s string) string {
	if len(s) > 0 && s[len(s)-1] == '.' {
		return s[:len(s)-1]
	}
	return s
}

// WriteString writes b as a literal string operand.
func WriteString(buf *bytes.Buffer, b []byte) {
	buf.WriteByte('(')
	for _, c := range b {
		switch c {
		case '(', ')', '\\':
			buf.WriteByte('\\')
			buf.WriteByte(c)
		case '\r':
			buf.WriteString(`\r`)
		case '\n':
			buf.WriteString(`\n`)
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte(')')
}
