package document

import (
	"fmt"

	"github.com/wudi/pdfbridge/ir/raw"
	"github.com/wudi/pdfbridge/writer"
)

// Blank returns a document of n empty w x h pages.
func Blank(w, h float64, n int) (*Document, error) {
	if w <= 0 || h <= 0 || n < 0 {
		return nil, fmt.Errorf("%w: blank %v x %v x %d", ErrBadArgument, w, h, n)
	}
	d := &Document{objects: make(map[raw.ObjectRef]raw.Object), trailer: raw.Dict(), version: writer.DefaultVersion, Name: "blank"}
	pagesRef := d.Add(raw.Dict())
	cat := raw.Dict()
	cat.SetKey("Type", raw.NameLiteral("Catalog"))
	cat.SetKey("Pages", pagesRef)
	d.trailer.SetKey("Root", d.Add(cat))
	refs := make([]raw.ObjectRef, 0, n)
	for i := 0; i < n; i++ {
		page := raw.Dict()
		page.SetKey("Type", raw.NameLiteral("Page"))
		page.SetKey("MediaBox", Box{0, 0, w, h}.array())
		page.SetKey("Resources", raw.Dict())
		refs = append(refs, d.Add(page).R)
	}
	if err := d.setPages(refs); err != nil {
		return nil, err
	}
	return d, nil
}

// BlankPaper returns a document of n empty pages of the given paper size.
func BlankPaper(p Paper, n int) (*Document, error) {
	w, h, err := p.Size()
	if err != nil {
		return nil, err
	}
	return Blank(w, h, n)
}
