package engine

import (
	"github.com/wudi/pdfbridge/document"
	"github.com/wudi/pdfbridge/fonts"
)

// textStamp reads the 22 stamp arguments that follow doc and range.
func (a *args) textStamp(i int) document.TextStamp {
	t := document.TextStamp{
		Text:        a.str(i),
		Position:    a.position(i + 1),
		LineSpacing: a.float(i + 4),
		Bates:       a.int(i + 5),
		Font:        fonts.Standard(a.enum(i+6, "font", fonts.Count)),
		Size:        a.float(i + 7),
		Color:       [3]float64{a.float(i + 8), a.float(i + 9), a.float(i + 10)},
	}
	t.Underneath = a.bool(i + 11)
	t.RelativeToCropBox = a.bool(i + 12)
	t.Outline = a.bool(i + 13)
	t.Opacity = a.float(i + 14)
	t.Justification = document.Justification(a.enum(i+15, "justification", 3))
	t.Midline = a.bool(i + 16)
	t.Topline = a.bool(i + 17)
	t.Filename = a.str(i + 18)
	t.LineWidth = a.float(i + 19)
	t.EmbedFonts = a.bool(i + 20)
	t.DryRun = a.bool(i + 21)
	return t
}

func (e *Engine) stampExports() map[string]native {
	stamp := func(under bool) native {
		return func(a *args) (any, error) {
			s, d, pages := a.doc(0), a.doc(1), a.pages(2)
			if a.err != nil {
				return nil, a.err
			}
			return nil, d.Stamp(s, pages, under)
		}
	}
	merge := func(a *args, docsAt int) document.MergeOptions {
		return document.MergeOptions{RetainNumbering: a.bool(docsAt + 1), RemoveDuplicateFonts: a.bool(docsAt + 2)}
	}
	return map[string]native{
		"addText": func(a *args) (any, error) {
			d, pages, t := a.doc(0), a.pages(1), a.textStamp(2)
			if a.err != nil {
				return nil, a.err
			}
			return nil, d.AddText(pages, t)
		},
		"removeText": pageOp((*document.Document).RemoveText),
		"textWidth": func(a *args) (any, error) {
			f, text := a.enum(0, "font", fonts.Count), a.str(1)
			if a.err != nil {
				return nil, a.err
			}
			return document.TextWidth(fonts.Standard(f), text)
		},
		"stampOn":    stamp(false),
		"stampUnder": stamp(true),
		"combinePages": func(a *args) (any, error) {
			under, over := a.doc(0), a.doc(1)
			if a.err != nil {
				return nil, a.err
			}
			d, err := document.CombinePages(under, over)
			if err != nil {
				return nil, err
			}
			return e.addDoc(d)
		},
		"merge": func(a *args) (any, error) {
			docs, opts := a.docs(0), merge(a, 0)
			if a.err != nil {
				return nil, a.err
			}
			d, err := document.Merge(docs, opts)
			if err != nil {
				return nil, err
			}
			return e.addDoc(d)
		},
		"mergeSame": func(a *args) (any, error) {
			docs, opts, ranges := a.docs(0), merge(a, 0), a.ranges(3)
			if a.err != nil {
				return nil, a.err
			}
			d, err := document.MergeSame(docs, ranges, opts)
			if err != nil {
				return nil, err
			}
			return e.addDoc(d)
		},
		"selectPages": func(a *args) (any, error) {
			d, pages := a.doc(0), a.pages(1)
			if a.err != nil {
				return nil, a.err
			}
			out, err := d.SelectPages(pages)
			if err != nil {
				return nil, err
			}
			return e.addDoc(out)
		},
	}
}
