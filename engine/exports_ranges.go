package engine

import (
	"github.com/wudi/pdfbridge/pagespec"
)

func (e *Engine) rangeExports() map[string]native {
	unary := func(f func(pagespec.Range) pagespec.Range) native {
		return func(a *args) (any, error) {
			r := a.rng(0)
			if a.err != nil {
				return nil, a.err
			}
			return e.addRange(f(r))
		}
	}
	binary := func(f func(x, y pagespec.Range) pagespec.Range) native {
		return func(a *args) (any, error) {
			x, y := a.rng(0), a.rng(1)
			if a.err != nil {
				return nil, a.err
			}
			return e.addRange(f(x, y))
		}
	}
	return map[string]native{
		"blankRange": func(*args) (any, error) { return e.addRange(pagespec.Range{}) },
		"deleteRange": func(a *args) (any, error) {
			h := a.handle(0)
			if a.err != nil {
				return nil, a.err
			}
			if _, ok := e.ranges.Free(h); !ok {
				_, err := e.rng(h)
				return nil, err
			}
			return nil, nil
		},
		"rangeCount": func(*args) (any, error) { return e.ranges.Len(), nil },
		"parsePagespec": func(a *args) (any, error) {
			d, spec := a.doc(0), a.str(1)
			if a.err != nil {
				return nil, a.err
			}
			r, err := pagespec.Parse(spec, d.SpecView())
			if err != nil {
				return nil, err
			}
			return e.addRange(r)
		},
		// validatePagespec checks syntax only; words such as end are
		// accepted without a document.
		"validatePagespec": func(a *args) (any, error) {
			spec := a.str(0)
			if a.err != nil {
				return nil, a.err
			}
			return pagespec.Validate(spec) == nil, nil
		},
		"stringOfPagespec": func(a *args) (any, error) {
			_, r := a.doc(0), a.rng(1)
			if a.err != nil {
				return nil, a.err
			}
			return pagespec.Format(r), nil
		},
		"range": func(a *args) (any, error) {
			from, to := a.int(0), a.int(1)
			if a.err != nil {
				return nil, a.err
			}
			if from < 1 || to < 1 {
				return nil, NewError(CodePageRange).Detail("range %d-%d", from, to).Build()
			}
			if n := abs(to-from) + 1; n > e.maxPages() {
				return nil, NewError(CodePageRange).Detail("range %d-%d spans %d pages, limit %d", from, to, n, e.maxPages()).Build()
			}
			return e.addRange(pagespec.Interval(from, to))
		},
		"all": func(a *args) (any, error) {
			d := a.doc(0)
			if a.err != nil {
				return nil, a.err
			}
			n, err := d.PageCount()
			if err != nil {
				return nil, err
			}
			return e.addRange(pagespec.All(n))
		},
		"even":             unary(pagespec.Even),
		"odd":              unary(pagespec.Odd),
		"removeDuplicates": unary(pagespec.Dedup),
		"rangeUnion":       binary(pagespec.Union),
		"difference":       binary(pagespec.Difference),
		"rangeLength": func(a *args) (any, error) {
			r := a.rng(0)
			if a.err != nil {
				return nil, a.err
			}
			return r.Len(), nil
		},
		"rangeGet": func(a *args) (any, error) {
			r, i := a.rng(0), a.int(1)
			if a.err != nil {
				return nil, a.err
			}
			return r.Get(i)
		},
		"rangeAdd": func(a *args) (any, error) {
			r, p := a.rng(0), a.int(1)
			if a.err != nil {
				return nil, a.err
			}
			if p < 1 {
				return nil, NewError(CodePageRange).Detail("page %d", p).Build()
			}
			return e.addRange(pagespec.Add(r, p))
		},
		"isInRange": func(a *args) (any, error) {
			r, p := a.rng(0), a.int(1)
			if a.err != nil {
				return nil, a.err
			}
			return r.Contains(p), nil
		},
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
