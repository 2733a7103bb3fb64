package document

import (
	"fmt"
	"strconv"

	"github.com/wudi/pdfbridge/fonts"
	"github.com/wudi/pdfbridge/ir/raw"
	"github.com/wudi/pdfbridge/layout"
)

// TypesetOptions control the typesetting constructors.
type TypesetOptions struct {
	Width, Height float64
	Font          fonts.Standard
	Size          float64
}

func (o TypesetOptions) engine(b layout.Builder) (*layout.Engine, error) {
	if o.Width <= 0 || o.Height <= 0 {
		return nil, fmt.Errorf("%w: page %v x %v", ErrBadArgument, o.Width, o.Height)
	}
	if !o.Font.Valid() {
		return nil, fmt.Errorf("%w: font %d", ErrBadArgument, int(o.Font))
	}
	if o.Size <= 0 {
		return nil, fmt.Errorf("%w: font size %v", ErrBadArgument, o.Size)
	}
	return layout.NewEngine(b,
		layout.WithPageSize(o.Width, o.Height),
		layout.WithDefaultFont(o.Font),
		layout.WithDefaultFontSize(o.Size),
	), nil
}

// TextToPDF typesets plain text.
func TextToPDF(text string, o TypesetOptions) (*Document, error) {
	return typeset(o, func(e *layout.Engine) error { return e.RenderText(text) })
}

// MarkdownToPDF typesets CommonMark source.
func MarkdownToPDF(source string, o TypesetOptions) (*Document, error) {
	return typeset(o, func(e *layout.Engine) error { return e.RenderMarkdown(source) })
}

// HTMLToPDF typesets an HTML document.
func HTMLToPDF(source string, o TypesetOptions) (*Document, error) {
	return typeset(o, func(e *layout.Engine) error { return e.RenderHTML(source) })
}

func typeset(o TypesetOptions, render func(*layout.Engine) error) (*Document, error) {
	cb := layout.NewContentBuilder()
	e, err := o.engine(cb)
	if err != nil {
		return nil, err
	}
	if err := render(e); err != nil {
		return nil, err
	}
	pages := cb.Pages()
	if len(pages) == 0 {
		return Blank(o.Width, o.Height, 1)
	}
	d, err := Blank(o.Width, o.Height, 0)
	if err != nil {
		return nil, err
	}
	fontRefs := make(map[fonts.Standard]raw.RefObj)
	refs := make([]raw.ObjectRef, 0, len(pages))
	for _, p := range pages {
		fontDict := raw.Dict()
		for _, f := range p.Fonts {
			ref, ok := fontRefs[f]
			if !ok {
				fd := raw.Dict()
				fd.SetKey("Type", raw.NameLiteral("Font"))
				fd.SetKey("Subtype", raw.NameLiteral("Type1"))
				fd.SetKey("BaseFont", raw.NameLiteral(f.BaseFont()))
				fd.SetKey("Encoding", raw.NameLiteral("WinAnsiEncoding"))
				ref = d.Add(fd)
				fontRefs[f] = ref
			}
			fontDict.SetKey("F"+strconv.Itoa(int(f)), ref)
		}
		res := raw.Dict()
		res.SetKey("Font", fontDict)
		page := raw.Dict()
		page.SetKey("Type", raw.NameLiteral("Page"))
		page.SetKey("MediaBox", Box{0, 0, p.Width, p.Height}.array())
		page.SetKey("Resources", res)
		page.SetKey("Contents", d.newContentStream(p.Content, false))
		if len(p.Links) > 0 {
			annots := raw.NewArray()
			for _, l := range p.Links {
				action := raw.Dict()
				action.SetKey("S", raw.NameLiteral("URI"))
				action.SetKey("URI", raw.Str([]byte(l.URI)))
				a := raw.Dict()
				a.SetKey("Type", raw.NameLiteral("Annot"))
				a.SetKey("Subtype", raw.NameLiteral("Link"))
				a.SetKey("Rect", raw.NumberArray(l.Rect[0], l.Rect[1], l.Rect[2], l.Rect[3]))
				a.SetKey("Border", raw.NumberArray(0, 0, 0))
				a.SetKey("A", action)
				annots.Append(d.Add(a))
			}
			page.SetKey("Annots", annots)
		}
		refs = append(refs, d.Add(page).R)
	}
	if err := d.setPages(refs); err != nil {
		return nil, err
	}
	d.Name = "typeset"
	return d, nil
}
