package engine

import (
	"context"
	"os"

	"github.com/wudi/pdfbridge/document"
	"github.com/wudi/pdfbridge/observability"
)

func (e *Engine) load(data []byte, password, name string, lazy bool) (*document.Document, error) {
	d, err := document.Load(context.Background(), data, document.LoadOptions{
		Password: password,
		Lazy:     lazy,
		Limits:   e.cfg.Limits,
		Logger:   e.log,
	})
	if err != nil {
		if codeOf(err) == CodeGeneric {
			return nil, NewError(CodeParse).Detail("%s", name).Cause(err).Build()
		}
		return nil, err
	}
	d.Name = name
	return d, nil
}

func (e *Engine) loadFile(path, password string, lazy bool) (*document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return e.load(data, password, path, lazy)
}

func (e *Engine) documentExports() map[string]native {
	fromFile := func(lazy bool) native {
		return func(a *args) (any, error) {
			path, pw := a.str(0), a.str(1)
			if a.err != nil {
				return nil, a.err
			}
			d, err := e.loadFile(path, pw, lazy || e.fast)
			if err != nil {
				return nil, err
			}
			return e.addDoc(d)
		}
	}
	fromMemory := func(lazy bool) native {
		return func(a *args) (any, error) {
			data, pw := a.bytes(0), a.str(1)
			if a.err != nil {
				return nil, a.err
			}
			d, err := e.load(data, pw, "memory", lazy || e.fast)
			if err != nil {
				return nil, err
			}
			return e.addDoc(d)
		}
	}
	return map[string]native{
		"fromFile":       fromFile(false),
		"fromFileLazy":   fromFile(true),
		"fromMemory":     fromMemory(false),
		"fromMemoryLazy": fromMemory(true),
		"blankDocument": func(a *args) (any, error) {
			w, h, n := a.float(0), a.float(1), a.int(2)
			if a.err != nil {
				return nil, a.err
			}
			if n > e.maxPages() {
				return nil, badArgument("blank document of %d pages, limit %d", n, e.maxPages())
			}
			d, err := document.Blank(w, h, n)
			if err != nil {
				return nil, err
			}
			return e.addDoc(d)
		},
		"blankDocumentPaper": func(a *args) (any, error) {
			p, n := a.enum(0, "paper", document.PaperCount), a.int(1)
			if a.err != nil {
				return nil, a.err
			}
			if n > e.maxPages() {
				return nil, badArgument("blank document of %d pages, limit %d", n, e.maxPages())
			}
			d, err := document.BlankPaper(document.Paper(p), n)
			if err != nil {
				return nil, err
			}
			return e.addDoc(d)
		},
		"deletePdf": func(a *args) (any, error) {
			h := a.handle(0)
			if a.err != nil {
				return nil, a.err
			}
			if _, ok := e.docs.Free(h); !ok {
				_, err := e.doc(h)
				return nil, err
			}
			e.log.Debug("document deleted", observability.Uint32("handle", uint32(h)))
			return nil, nil
		},
		// replacePdf moves the document named by the second handle into the
		// first. The second handle becomes invalid.
		"replacePdf": func(a *args) (any, error) {
			target, source := a.handle(0), a.handle(1)
			if a.err != nil {
				return nil, a.err
			}
			if _, err := e.doc(target); err != nil {
				return nil, err
			}
			if target == source {
				return nil, badArgument("cannot replace a document with itself")
			}
			d, ok := e.docs.Free(source)
			if !ok {
				_, err := e.doc(source)
				return nil, err
			}
			e.docs.Set(target, d)
			return nil, nil
		},
		"startEnumeratePDFs": func(*args) (any, error) {
			e.enumerated = e.docs.Handles()
			return len(e.enumerated), nil
		},
		"enumeratePDFsKey": func(a *args) (any, error) {
			i := a.index(0, len(e.enumerated))
			if a.err != nil {
				return nil, a.err
			}
			return e.enumerated[i], nil
		},
		"enumeratePDFsInfo": func(a *args) (any, error) {
			i := a.index(0, len(e.enumerated))
			if a.err != nil {
				return nil, a.err
			}
			d, err := e.doc(e.enumerated[i])
			if err != nil {
				return nil, err
			}
			return d.Name, nil
		},
		"endEnumeratePDFs": func(*args) (any, error) {
			e.enumerated = nil
			return nil, nil
		},
		"pages": func(a *args) (any, error) {
			d := a.doc(0)
			if a.err != nil {
				return nil, a.err
			}
			return d.PageCount()
		},
		"pagesFast": func(a *args) (any, error) {
			pw, path := a.str(0), a.str(1)
			if a.err != nil {
				return nil, a.err
			}
			d, err := e.loadFile(path, pw, true)
			if err != nil {
				return nil, err
			}
			return d.PageCount()
		},
		"pagesFastMemory": func(a *args) (any, error) {
			pw, data := a.str(0), a.bytes(1)
			if a.err != nil {
				return nil, a.err
			}
			d, err := e.load(data, pw, "memory", true)
			if err != nil {
				return nil, err
			}
			return d.PageCount()
		},
		"isLinearized": func(a *args) (any, error) {
			path := a.str(0)
			if a.err != nil {
				return nil, a.err
			}
			d, err := e.loadFile(path, "", true)
			if err != nil {
				return nil, err
			}
			return d.Linearized(), nil
		},
	}
}
