package engine

import (
	"github.com/wudi/pdfbridge/document"
	"github.com/wudi/pdfbridge/pagespec"
)

func (e *Engine) labelExports() map[string]native {
	label := func(f func(l document.Label) (any, error)) native {
		return func(a *args) (any, error) {
			i := a.index(0, len(e.labels))
			if a.err != nil {
				return nil, a.err
			}
			return f(e.labels[i])
		}
	}
	return map[string]native{
		"addPageLabels": func(a *args) (any, error) {
			d, style, prefix, start := a.doc(0), a.int(1), a.str(2), a.int(3)
			pages, progress := a.pages(4), a.bool(5)
			if a.err != nil {
				return nil, a.err
			}
			if style < int(document.NoNumbering) || style >= document.LabelStyleCount {
				return nil, badArgument("label style %d out of range", style)
			}
			return nil, d.AddPageLabels(document.LabelStyle(style), prefix, start, pages, progress)
		},
		"removePageLabels": func(a *args) (any, error) {
			d := a.doc(0)
			if a.err != nil {
				return nil, a.err
			}
			return nil, d.RemovePageLabels()
		},
		"getPageLabelStringForPage": func(a *args) (any, error) {
			d, page := a.doc(0), a.int(1)
			if a.err != nil {
				return nil, a.err
			}
			return d.PageLabel(page)
		},
		"startGetPageLabels": func(a *args) (any, error) {
			d := a.doc(0)
			if a.err != nil {
				return nil, a.err
			}
			labels, err := d.Labels()
			if err != nil {
				return nil, err
			}
			e.labels = labels
			return len(labels), nil
		},
		"getPageLabelStyle":  label(func(l document.Label) (any, error) { return int(l.Style), nil }),
		"getPageLabelPrefix": label(func(l document.Label) (any, error) { return l.Prefix, nil }),
		"getPageLabelOffset": label(func(l document.Label) (any, error) { return l.Start, nil }),
		"getPageLabelRange": label(func(l document.Label) (any, error) {
			return e.addRange(pagespec.Interval(l.First, l.Last))
		}),
		"endGetPageLabels": func(*args) (any, error) {
			e.labels = nil
			return nil, nil
		},
	}
}
