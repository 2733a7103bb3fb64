package layout

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wudi/pdfbridge/fonts"
)

// RenderHTML typesets the block structure of an HTML document. Styles,
// tables and images are not interpreted.
func (e *Engine) RenderHTML(source string) error {
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return err
	}
	e.walkHTML(doc, 0)
	e.ensurePage()
	e.finish()
	return nil
}

func (e *Engine) walkHTML(n *html.Node, depth int) {
	lineHeight := e.DefaultFontSize * e.LineHeight
	if n.Type == html.TextNode {
		if text := strings.TrimSpace(collapseSpace(n.Data)); text != "" {
			e.renderTextWrapped(text, e.Margins.Left+float64(depth)*15, e.DefaultFontSize, lineHeight)
		}
		return
	}
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Head, atom.Script, atom.Style, atom.Title:
			return
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			e.renderHeading(collapseSpace(extractText(n)), int(n.Data[1]-'0'))
			return
		case atom.P, atom.Div, atom.Blockquote:
			if hasBlockChild(n) {
				break
			}
			e.renderSpans(e.htmlSpans(n, spanStyle{}), e.Margins.Left+float64(depth)*15, lineHeight)
			e.renderParagraphSpacing()
			return
		case atom.Ul, atom.Ol:
			e.renderHTMLList(n, depth)
			return
		case atom.Pre:
			e.renderCode(extractText(n))
			return
		case atom.Math:
			if text := strings.TrimSpace(collapseSpace(extractText(n))); text != "" {
				e.renderTextWrapped(text, e.Margins.Left+float64(depth)*15, e.DefaultFontSize, lineHeight)
			}
			return
		case atom.Hr:
			e.renderRule()
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		e.walkHTML(c, depth)
	}
}

func (e *Engine) renderHTMLList(list *html.Node, depth int) {
	number := 1
	if s := attr(list, "start"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			number = v
		}
	}
	for li := list.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		marker := "•"
		if list.DataAtom == atom.Ol {
			marker = strconv.Itoa(number) + "."
			number++
		}
		e.renderBullet(marker, float64(depth)*15, e.htmlSpans(li, spanStyle{}))
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.DataAtom == atom.Ul || c.DataAtom == atom.Ol) {
				e.renderHTMLList(c, depth+1)
			}
		}
	}
	if depth == 0 {
		e.renderParagraphSpacing()
	}
}

// htmlSpans flattens inline content. Nested lists are left to the caller.
func (e *Engine) htmlSpans(n *html.Node, st spanStyle) []TextSpan {
	var spans []TextSpan
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			text := collapseSpace(c.Data)
			if text == "" {
				continue
			}
			font := e.DefaultFont.WithStyle(st.bold, st.italic)
			if st.code {
				font = fonts.Courier.WithStyle(st.bold, st.italic)
			}
			span := TextSpan{Text: text, Font: font, FontSize: e.DefaultFontSize, Strikethrough: st.strike}
			if st.link != "" {
				span.Link, span.Underline, span.Color = st.link, true, Color{B: 0.8}
			}
			spans = append(spans, span)
		case html.ElementNode:
			inner := st
			switch c.DataAtom {
			case atom.Ul, atom.Ol:
				continue
			case atom.Br:
				spans = append(spans, TextSpan{Text: " ", Font: e.DefaultFont, FontSize: e.DefaultFontSize})
				continue
			case atom.B, atom.Strong:
				inner.bold = true
			case atom.I, atom.Em:
				inner.italic = true
			case atom.Code, atom.Tt, atom.Kbd:
				inner.code = true
			case atom.S, atom.Del, atom.Strike:
				inner.strike = true
			case atom.A:
				inner.link = attr(c, "href")
			}
			spans = append(spans, e.htmlSpans(c, inner)...)
		}
	}
	return spans
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.P, atom.Div, atom.Ul, atom.Ol, atom.Pre, atom.Blockquote, atom.Hr,
			atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func extractText(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return sb.String()
}

// collapseSpace folds runs of white space to one space, keeping a single
// leading or trailing space so adjacent inline runs stay separated.
func collapseSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s != "" {
			return " "
		}
		return ""
	}
	out := strings.Join(fields, " ")
	if strings.TrimLeft(s, " \t\r\n") != s {
		out = " " + out
	}
	if strings.TrimRight(s, " \t\r\n") != s {
		out += " "
	}
	return out
}
