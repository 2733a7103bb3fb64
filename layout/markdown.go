package layout

import (
	"strconv"

	"github.com/wudi/pdfbridge/fonts"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// RenderMarkdown typesets CommonMark source.
func (e *Engine) RenderMarkdown(source string) error {
	if hasMath(source) {
		return e.renderMathMarkdown(source)
	}
	src := []byte(source)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	e.walkMarkdown(doc, src, 0)
	e.ensurePage()
	e.finish()
	return nil
}

func (e *Engine) walkMarkdown(node ast.Node, src []byte, depth int) {
	lineHeight := e.DefaultFontSize * e.LineHeight
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Heading:
			e.renderHeading(plainText(n, src), n.Level)
		case *ast.Paragraph, *ast.TextBlock:
			e.renderSpans(e.markdownSpans(n, src, spanStyle{}), e.Margins.Left+float64(depth)*15, lineHeight)
			if _, ok := n.(*ast.Paragraph); ok {
				e.renderParagraphSpacing()
			}
		case *ast.List:
			e.renderMarkdownList(n, src, depth)
		case *ast.Blockquote:
			e.walkMarkdown(n, src, depth+1)
		case *ast.FencedCodeBlock:
			e.renderCode(blockLines(n, src))
		case *ast.CodeBlock:
			e.renderCode(blockLines(n, src))
		case *ast.ThematicBreak:
			e.renderRule()
		}
	}
}

func (e *Engine) renderMarkdownList(list *ast.List, src []byte, depth int) {
	number := list.Start
	if number == 0 {
		number = 1
	}
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "•"
		if list.IsOrdered() {
			marker = strconv.Itoa(number) + "."
			number++
		}
		first := item.FirstChild()
		var spans []TextSpan
		if first != nil && (first.Kind() == ast.KindParagraph || first.Kind() == ast.KindTextBlock) {
			spans = e.markdownSpans(first, src, spanStyle{})
			first = first.NextSibling()
		}
		e.renderBullet(marker, float64(depth)*15, spans)
		for rest := first; rest != nil; rest = rest.NextSibling() {
			if sub, ok := rest.(*ast.List); ok {
				e.renderMarkdownList(sub, src, depth+1)
			}
		}
	}
	if depth == 0 {
		e.renderParagraphSpacing()
	}
}

type spanStyle struct {
	bold, italic, code, strike bool
	link                       string
}

func (e *Engine) markdownSpans(node ast.Node, src []byte, st spanStyle) []TextSpan {
	var spans []TextSpan
	emit := func(s string) {
		font := e.DefaultFont.WithStyle(st.bold, st.italic)
		color := Color{}
		if st.code {
			font = fonts.Courier.WithStyle(st.bold, st.italic)
		}
		if st.link != "" {
			color = Color{B: 0.8}
		}
		spans = append(spans, TextSpan{Text: s, Font: font, FontSize: e.DefaultFontSize, Link: st.link, Color: color, Underline: st.link != "", Strikethrough: st.strike})
	}
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Text:
			emit(string(n.Segment.Value(src)))
			if n.SoftLineBreak() || n.HardLineBreak() {
				emit(" ")
			}
		case *ast.String:
			emit(string(n.Value))
		case *ast.Emphasis:
			inner := st
			if n.Level >= 2 {
				inner.bold = true
			} else {
				inner.italic = true
			}
			spans = append(spans, e.markdownSpans(n, src, inner)...)
		case *ast.CodeSpan:
			inner := st
			inner.code = true
			spans = append(spans, e.markdownSpans(n, src, inner)...)
		case *ast.Link:
			inner := st
			inner.link = string(n.Destination)
			spans = append(spans, e.markdownSpans(n, src, inner)...)
		case *ast.AutoLink:
			prev := st
			st.link = string(n.URL(src))
			emit(string(n.Label(src)))
			st = prev
		case *ast.Image:
			// alt text only
			spans = append(spans, e.markdownSpans(n, src, st)...)
		default:
			spans = append(spans, e.markdownSpans(n, src, st)...)
		}
	}
	return spans
}

func plainText(node ast.Node, src []byte) string {
	var out []byte
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			out = append(out, t.Segment.Value(src)...)
			if t.SoftLineBreak() {
				out = append(out, ' ')
			}
		case *ast.String:
			out = append(out, t.Value...)
		}
		return ast.WalkContinue, nil
	})
	return string(out)
}

func blockLines(node ast.Node, src []byte) string {
	var out []byte
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		out = append(out, seg.Value(src)...)
	}
	return string(out)
}
