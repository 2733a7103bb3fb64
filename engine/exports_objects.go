package engine

import (
	"github.com/wudi/pdfbridge/document"
	"github.com/wudi/pdfbridge/fonts"
)

// typesetOptions reads width, height, font and size.
func (a *args) typesetOptions(i int) document.TypesetOptions {
	return document.TypesetOptions{
		Width:  a.float(i),
		Height: a.float(i + 1),
		Font:   fonts.Standard(a.enum(i+2, "font", fonts.Count)),
		Size:   a.float(i + 3),
	}
}

func (e *Engine) objectExports() map[string]native {
	docOp := func(f func(*document.Document) error) native {
		return func(a *args) (any, error) {
			d := a.doc(0)
			if a.err != nil {
				return nil, a.err
			}
			return nil, f(d)
		}
	}
	typeset := func(f func(string, document.TypesetOptions) (*document.Document, error)) native {
		return func(a *args) (any, error) {
			opts, src := a.typesetOptions(0), a.bytes(4)
			if a.err != nil {
				return nil, a.err
			}
			d, err := f(string(src), opts)
			if err != nil {
				return nil, err
			}
			return e.addDoc(d)
		}
	}
	return map[string]native{
		"compress":   docOp((*document.Document).Compress),
		"decompress": docOp((*document.Document).Decompress),
		"squeezeInMemory": docOp(func(d *document.Document) error {
			_, err := d.Squeeze()
			return err
		}),
		"outputJSONMemory": func(a *args) (any, error) {
			d := a.doc(0)
			opts := document.JSONOptions{ParseContent: a.bool(1), NoStreamData: a.bool(2), Decompress: a.bool(3)}
			if a.err != nil {
				return nil, a.err
			}
			return d.JSON(opts)
		},
		"textToPDFMemory":     typeset(document.TextToPDF),
		"markdownToPDFMemory": typeset(document.MarkdownToPDF),
		"htmlToPDFMemory":     typeset(document.HTMLToPDF),
		"textToPDFPaper": func(a *args) (any, error) {
			p := a.enum(0, "paper", document.PaperCount)
			f, size, src := a.enum(1, "font", fonts.Count), a.float(2), a.bytes(3)
			if a.err != nil {
				return nil, a.err
			}
			w, h, err := document.Paper(p).Size()
			if err != nil {
				return nil, err
			}
			d, err := document.TextToPDF(string(src), document.TypesetOptions{Width: w, Height: h, Font: fonts.Standard(f), Size: size})
			if err != nil {
				return nil, err
			}
			return e.addDoc(d)
		},
	}
}
