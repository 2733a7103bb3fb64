package engine

import (
	"github.com/wudi/pdfbridge/document"
)

// pageOp applies f to the pages of the range argument at index 1.
func pageOp(f func(d *document.Document, pages []int) error) native {
	return func(a *args) (any, error) {
		d, pages := a.doc(0), a.pages(1)
		if a.err != nil {
			return nil, a.err
		}
		return nil, f(d, pages)
	}
}

// docCountOp applies f with the integer argument at index 1.
func docCountOp(f func(d *document.Document, n int) error) native {
	return func(a *args) (any, error) {
		d, n := a.doc(0), a.int(1)
		if a.err != nil {
			return nil, a.err
		}
		return nil, f(d, n)
	}
}

func (e *Engine) geometryExports() map[string]native {
	return map[string]native{
		"scalePages": func(a *args) (any, error) {
			d, pages, sx, sy := a.doc(0), a.pages(1), a.float(2), a.float(3)
			if a.err != nil {
				return nil, a.err
			}
			return nil, d.ScalePages(pages, sx, sy)
		},
		"scaleToFit": func(a *args) (any, error) {
			d, pages, w, h, s := a.doc(0), a.pages(1), a.float(2), a.float(3), a.float(4)
			if a.err != nil {
				return nil, a.err
			}
			return nil, d.ScaleToFit(pages, w, h, s)
		},
		"scaleToFitPaper": func(a *args) (any, error) {
			d, pages := a.doc(0), a.pages(1)
			p, s := a.enum(2, "paper", document.PaperCount), a.float(3)
			if a.err != nil {
				return nil, a.err
			}
			w, h, err := document.Paper(p).Size()
			if err != nil {
				return nil, err
			}
			return nil, d.ScaleToFit(pages, w, h, s)
		},
		"scaleContents": func(a *args) (any, error) {
			d, pages, pos, s := a.doc(0), a.pages(1), a.position(2), a.float(5)
			if a.err != nil {
				return nil, a.err
			}
			return nil, d.ScaleContents(pages, pos, s)
		},
		"shiftContents": func(a *args) (any, error) {
			d, pages, dx, dy := a.doc(0), a.pages(1), a.float(2), a.float(3)
			if a.err != nil {
				return nil, a.err
			}
			return nil, d.ShiftContents(pages, dx, dy)
		},
		"rotate": func(a *args) (any, error) {
			d, pages, angle := a.doc(0), a.pages(1), a.int(2)
			if a.err != nil {
				return nil, a.err
			}
			return nil, d.SetRotation(pages, angle)
		},
		"rotateBy": func(a *args) (any, error) {
			d, pages, angle := a.doc(0), a.pages(1), a.int(2)
			if a.err != nil {
				return nil, a.err
			}
			return nil, d.RotateBy(pages, angle)
		},
		"rotateContents": func(a *args) (any, error) {
			d, pages, angle := a.doc(0), a.pages(1), a.float(2)
			if a.err != nil {
				return nil, a.err
			}
			return nil, d.RotateContents(pages, angle)
		},
		"upright": pageOp((*document.Document).Upright),
		"hFlip":   pageOp((*document.Document).HFlip),
		"vFlip":   pageOp((*document.Document).VFlip),
		"crop": func(a *args) (any, error) {
			d, pages := a.doc(0), a.pages(1)
			x, y, w, h := a.float(2), a.float(3), a.float(4), a.float(5)
			if a.err != nil {
				return nil, a.err
			}
			return nil, d.Crop(pages, x, y, w, h)
		},
		"removeBox": func(a *args) (any, error) {
			d, pages, name := a.doc(0), a.pages(1), a.str(2)
			if a.err != nil {
				return nil, a.err
			}
			return nil, d.RemoveBox(pages, name)
		},
		// Boxes travel as minx, maxx, miny, maxy.
		"setBox": func(a *args) (any, error) {
			d, pages, name := a.doc(0), a.pages(1), a.str(2)
			b := document.Box{MinX: a.float(3), MaxX: a.float(4), MinY: a.float(5), MaxY: a.float(6)}
			if a.err != nil {
				return nil, a.err
			}
			return nil, d.SetBox(pages, name, b)
		},
		"getBox": func(a *args) (any, error) {
			d, page, name := a.doc(0), a.int(1), a.str(2)
			if a.err != nil {
				return nil, a.err
			}
			return d.PageBox(page, name)
		},
		"hasBox": func(a *args) (any, error) {
			d, page, name := a.doc(0), a.int(1), a.str(2)
			if a.err != nil {
				return nil, a.err
			}
			return d.HasBox(page, name)
		},
		"getPageRotation": func(a *args) (any, error) {
			d, page := a.doc(0), a.int(1)
			if a.err != nil {
				return nil, a.err
			}
			return d.Rotation(page)
		},
		"padBefore":   pageOp((*document.Document).PadBefore),
		"padAfter":    pageOp((*document.Document).PadAfter),
		"padEvery":    docCountOp((*document.Document).PadEvery),
		"padMultiple": docCountOp(func(d *document.Document, n int) error {
			if abs(n) > e.maxPages() {
				return badArgument("pad multiple %d, limit %d", n, e.maxPages())
			}
			return d.PadMultiple(n)
		}),
	}
}

// position reads anchor, x and y from consecutive arguments.
func (a *args) position(i int) document.Position {
	return document.Position{
		Anchor: document.Anchor(a.enum(i, "anchor", document.AnchorCount)),
		X:      a.float(i + 1),
		Y:      a.float(i + 2),
	}
}
