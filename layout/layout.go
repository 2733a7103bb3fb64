// Package layout typesets plain text, Markdown and HTML onto pages drawn
// with the standard fonts.
package layout

import (
	"strings"

	"github.com/wudi/pdfbridge/fonts"
)

// Builder creates pages and measures text.
type Builder interface {
	NewPage(width, height float64) PageBuilder
	MeasureText(text string, fontSize float64, font fonts.Standard) float64
}

// PageBuilder draws onto one page.
type PageBuilder interface {
	DrawText(text string, x, y float64, opts TextOptions)
	DrawLine(x1, y1, x2, y2 float64, opts LineOptions)
	AddLink(rect [4]float64, uri string)
	Finish()
}

type Color struct{ R, G, B float64 }

type TextOptions struct {
	Font     fonts.Standard
	FontSize float64
	Color    Color
}

type LineOptions struct {
	StrokeColor Color
	LineWidth   float64
}

// Engine lays out structured content onto pages from a Builder.
type Engine struct {
	b Builder

	DefaultFont     fonts.Standard
	DefaultFontSize float64
	LineHeight      float64 // multiplier
	Margins         Margins

	currentPage PageBuilder
	cursorX     float64
	cursorY     float64
	pageWidth   float64
	pageHeight  float64
}

type Margins struct {
	Top, Bottom, Left, Right float64
}

type Option func(*Engine)

func WithDefaultFont(font fonts.Standard) Option {
	return func(e *Engine) { e.DefaultFont = font }
}

func WithDefaultFontSize(size float64) Option {
	return func(e *Engine) { e.DefaultFontSize = size }
}

func WithLineHeight(height float64) Option {
	return func(e *Engine) { e.LineHeight = height }
}

func WithMargins(margins Margins) Option {
	return func(e *Engine) { e.Margins = margins }
}

func WithPageSize(width, height float64) Option {
	return func(e *Engine) {
		e.pageWidth = width
		e.pageHeight = height
	}
}

// A4 portrait in points.
const (
	A4Width  = 595.2756
	A4Height = 841.8898
)

func NewEngine(b Builder, opts ...Option) *Engine {
	e := &Engine{
		b:               b,
		DefaultFont:     fonts.Helvetica,
		DefaultFontSize: 12,
		LineHeight:      1.2,
		Margins:         Margins{Top: 50, Bottom: 50, Left: 50, Right: 50},
		pageWidth:       A4Width,
		pageHeight:      A4Height,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) ensurePage() {
	if e.currentPage == nil {
		e.newPage()
	}
}

func (e *Engine) newPage() {
	e.currentPage = e.b.NewPage(e.pageWidth, e.pageHeight)
	e.cursorX = e.Margins.Left
	e.cursorY = e.pageHeight - e.Margins.Top
}

// checkPageBreak starts a new page when height does not fit above the
// bottom margin.
func (e *Engine) checkPageBreak(height float64) {
	if e.currentPage == nil {
		e.newPage()
		return
	}
	if e.cursorY-height < e.Margins.Bottom {
		e.currentPage.Finish()
		e.newPage()
	}
}

func (e *Engine) finish() {
	if e.currentPage != nil {
		e.currentPage.Finish()
		e.currentPage = nil
	}
}

// TextSpan is a run of text with one style.
type TextSpan struct {
	Text          string
	Font          fonts.Standard
	FontSize      float64
	Link          string
	Color         Color
	Underline     bool
	Strikethrough bool
}

func (e *Engine) renderParagraphSpacing() {
	if e.currentPage != nil {
		e.cursorY -= e.DefaultFontSize * e.LineHeight / 2
	}
}

func (e *Engine) renderTextWrapped(text string, x float64, fontSize, lineHeight float64) {
	e.renderSpans([]TextSpan{{Text: text, Font: e.DefaultFont, FontSize: fontSize}}, x, lineHeight)
}

// renderSpans fills lines from x to the right margin, breaking at spaces
// and inside words that are wider than a whole line.
func (e *Engine) renderSpans(spans []TextSpan, x, lineHeight float64) {
	if len(spans) == 0 {
		return
	}
	e.ensurePage()
	maxWidth := e.pageWidth - e.Margins.Right - x

	type wordSpan struct {
		text  string
		span  TextSpan
		width float64
	}
	var line []wordSpan
	lineWidth := 0.0

	flushLine := func() {
		for len(line) > 0 && line[len(line)-1].text == " " {
			line = line[:len(line)-1]
		}
		if len(line) == 0 {
			return
		}
		e.checkPageBreak(lineHeight)
		curX := x
		for _, ws := range line {
			baseline := e.cursorY - ws.span.FontSize
			e.currentPage.DrawText(ws.text, curX, baseline, TextOptions{Font: ws.span.Font, FontSize: ws.span.FontSize, Color: ws.span.Color})
			if ws.span.Underline {
				e.currentPage.DrawLine(curX, baseline-2, curX+ws.width, baseline-2, LineOptions{StrokeColor: ws.span.Color, LineWidth: 0.5})
			}
			if ws.span.Strikethrough {
				mid := baseline + ws.span.FontSize/3
				e.currentPage.DrawLine(curX, mid, curX+ws.width, mid, LineOptions{StrokeColor: ws.span.Color, LineWidth: 0.5})
			}
			if ws.span.Link != "" {
				e.currentPage.AddLink([4]float64{curX, baseline, curX + ws.width, e.cursorY}, ws.span.Link)
			}
			curX += ws.width
		}
		e.cursorY -= lineHeight
		line = nil
		lineWidth = 0
	}

	for _, span := range spans {
		if span.Text == "" {
			continue
		}
		if span.FontSize == 0 {
			span.FontSize = e.DefaultFontSize
		}
		spaceW := e.b.MeasureText(" ", span.FontSize, span.Font)

		for _, token := range tokenize(span.Text) {
			if token == " " {
				if len(line) == 0 {
					continue
				}
				if lineWidth+spaceW > maxWidth {
					flushLine()
				} else {
					line = append(line, wordSpan{text: " ", span: span, width: spaceW})
					lineWidth += spaceW
				}
				continue
			}
			w := e.b.MeasureText(token, span.FontSize, span.Font)
			switch {
			case lineWidth+w <= maxWidth:
				line = append(line, wordSpan{text: token, span: span, width: w})
				lineWidth += w
			case w <= maxWidth:
				flushLine()
				line = append(line, wordSpan{text: token, span: span, width: w})
				lineWidth = w
			default:
				flushLine()
				var sub strings.Builder
				subWidth := 0.0
				for _, r := range token {
					rw := e.b.MeasureText(string(r), span.FontSize, span.Font)
					if subWidth+rw > maxWidth && sub.Len() > 0 {
						line = append(line, wordSpan{text: sub.String(), span: span, width: subWidth})
						flushLine()
						sub.Reset()
						subWidth = 0
					}
					sub.WriteRune(r)
					subWidth += rw
				}
				if sub.Len() > 0 {
					line = append(line, wordSpan{text: sub.String(), span: span, width: subWidth})
					lineWidth = subWidth
				}
			}
		}
	}
	flushLine()
}

// tokenize splits text into words and single-space separators.
func tokenize(text string) []string {
	var tokens []string
	var cur strings.Builder
	for _, r := range text {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
			if len(tokens) == 0 || tokens[len(tokens)-1] != " " {
				tokens = append(tokens, " ")
			}
			continue
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

func headingSize(base float64, level int) float64 {
	switch {
	case level <= 1:
		return base * 2
	case level == 2:
		return base * 1.5
	default:
		return base * 1.25
	}
}

func (e *Engine) renderHeading(text string, level int) {
	size := headingSize(e.DefaultFontSize, level)
	e.renderSpans([]TextSpan{{Text: text, Font: e.DefaultFont.WithStyle(true, false), FontSize: size}}, e.Margins.Left, size*e.LineHeight)
	e.renderParagraphSpacing()
}

func (e *Engine) renderBullet(marker string, indent float64, spans []TextSpan) {
	e.ensurePage()
	lineHeight := e.DefaultFontSize * e.LineHeight
	e.checkPageBreak(lineHeight)
	x := e.Margins.Left + indent
	e.currentPage.DrawText(marker, x, e.cursorY-e.DefaultFontSize, TextOptions{Font: e.DefaultFont, FontSize: e.DefaultFontSize})
	e.renderSpans(spans, x+15, lineHeight)
}

func (e *Engine) renderCode(code string) {
	lineHeight := e.DefaultFontSize * e.LineHeight
	font := fonts.Courier
	for _, l := range strings.Split(strings.TrimRight(code, "\n"), "\n") {
		e.ensurePage()
		e.checkPageBreak(lineHeight)
		if l != "" {
			e.currentPage.DrawText(strings.ReplaceAll(l, "\t", "    "), e.Margins.Left+10, e.cursorY-e.DefaultFontSize, TextOptions{Font: font, FontSize: e.DefaultFontSize * 0.9})
		}
		e.cursorY -= lineHeight
	}
	e.renderParagraphSpacing()
}

func (e *Engine) renderRule() {
	e.ensurePage()
	e.checkPageBreak(e.DefaultFontSize)
	y := e.cursorY - e.DefaultFontSize/2
	e.currentPage.DrawLine(e.Margins.Left, y, e.pageWidth-e.Margins.Right, y, LineOptions{LineWidth: 0.5})
	e.cursorY -= e.DefaultFontSize
}

// RenderText sets plain text: each input line is wrapped separately and
// blank lines are kept.
func (e *Engine) RenderText(text string) error {
	lineHeight := e.DefaultFontSize * e.LineHeight
	for _, l := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(l) == "" {
			e.ensurePage()
			e.checkPageBreak(lineHeight)
			e.cursorY -= lineHeight
			continue
		}
		e.renderTextWrapped(l, e.Margins.Left, e.DefaultFontSize, lineHeight)
	}
	e.ensurePage()
	e.finish()
	return nil
}
