package document

import (
	"fmt"
	"math"

	"github.com/wudi/pdfbridge/ir/raw"
	"github.com/wudi/pdfbridge/pagespec"
)

var inheritable = []string{"Resources", "MediaBox", "CropBox", "Rotate"}

// pageRefs returns the leaves of the page tree in order.
func (d *Document) pageRefs() ([]raw.ObjectRef, error) {
	if d.pages != nil {
		return d.pages, nil
	}
	cat, err := d.catalog()
	if err != nil {
		return nil, err
	}
	root, ok := cat.Lookup("Pages")
	if !ok {
		return nil, fmt.Errorf("%w: catalog has no /Pages", ErrMalformed)
	}
	pages := []raw.ObjectRef{}
	seen := make(map[raw.ObjectRef]bool)
	var walk func(obj raw.Object, depth int) error
	walk = func(obj raw.Object, depth int) error {
		ref, ok := obj.(raw.RefObj)
		if !ok {
			return fmt.Errorf("%w: direct page tree node", ErrMalformed)
		}
		if seen[ref.R] || depth > 64 {
			return fmt.Errorf("%w: page tree loop at object %d", ErrMalformed, ref.R.Num)
		}
		seen[ref.R] = true
		node, err := d.dict(ref)
		if err != nil {
			return err
		}
		if node == nil {
			return fmt.Errorf("%w: page tree node %d is not a dictionary", ErrMalformed, ref.R.Num)
		}
		kidsObj, hasKids := node.Lookup("Kids")
		if typ, _ := node.NameValue("Type"); typ == "Page" || !hasKids {
			pages = append(pages, ref.R)
			return nil
		}
		kids, err := d.resolve(kidsObj)
		if err != nil {
			return err
		}
		arr, _ := kids.(*raw.ArrayObj)
		if arr == nil {
			return fmt.Errorf("%w: /Kids is not an array", ErrMalformed)
		}
		for _, k := range arr.Items {
			if err := walk(k, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root, 0); err != nil {
		return nil, err
	}
	d.pages = pages
	return pages, nil
}

// PageCount returns the number of pages.
func (d *Document) PageCount() (int, error) {
	refs, err := d.pageRefs()
	return len(refs), err
}

func (d *Document) checkPage(page int) (raw.ObjectRef, error) {
	refs, err := d.pageRefs()
	if err != nil {
		return raw.ObjectRef{}, err
	}
	if page < 1 || page > len(refs) {
		return raw.ObjectRef{}, fmt.Errorf("%w: page %d of %d", ErrPageRange, page, len(refs))
	}
	return refs[page-1], nil
}

func (d *Document) pageDict(page int) (*raw.DictObj, error) {
	ref, err := d.checkPage(page)
	if err != nil {
		return nil, err
	}
	pd, err := d.dict(raw.RefObj{R: ref})
	if err != nil {
		return nil, err
	}
	if pd == nil {
		return nil, fmt.Errorf("%w: page %d is not a dictionary", ErrMalformed, page)
	}
	return pd, nil
}

// inherited looks key up on the page and then its ancestors.
func (d *Document) inherited(page *raw.DictObj, key string) (raw.Object, bool, error) {
	node := page
	for i := 0; node != nil && i < 64; i++ {
		if v, ok := node.Lookup(key); ok {
			o, err := d.resolve(v)
			return o, true, err
		}
		parent, err := d.lookupDict(node, "Parent")
		if err != nil {
			return nil, false, err
		}
		node = parent
	}
	return nil, false, nil
}

// flatten pushes inheritable attributes down to every page and rebuilds
// the tree as a single /Pages node holding all pages.
func (d *Document) flatten() error {
	if d.flat {
		return nil
	}
	refs, err := d.pageRefs()
	if err != nil {
		return err
	}
	for _, ref := range refs {
		pd, err := d.dict(raw.RefObj{R: ref})
		if err != nil {
			return err
		}
		if pd == nil {
			continue
		}
		for _, key := range inheritable {
			if _, ok := pd.Lookup(key); ok {
				continue
			}
			v, ok, err := d.inherited(pd, key)
			if err != nil {
				return err
			}
			if ok {
				pd.SetKey(key, raw.Clone(v))
			}
		}
		if _, ok := pd.Lookup("MediaBox"); !ok {
			pd.SetKey("MediaBox", raw.NumberArray(0, 0, 612, 792))
		}
	}
	if err := d.setPages(refs); err != nil {
		return err
	}
	d.flat = true
	return nil
}

// setPages makes refs the page list. Every page must already carry its
// inheritable attributes. A page object listed twice is copied.
func (d *Document) setPages(refs []raw.ObjectRef) error {
	cat, err := d.catalog()
	if err != nil {
		return err
	}
	rootRef, ok := cat.Lookup("Pages")
	r, isRef := rootRef.(raw.RefObj)
	if !ok || !isRef {
		r = d.Add(raw.Dict())
		cat.SetKey("Pages", r)
	}
	used := make(map[raw.ObjectRef]bool, len(refs))
	kids := raw.NewArray()
	final := make([]raw.ObjectRef, 0, len(refs))
	for _, ref := range refs {
		if used[ref] {
			pd, err := d.dict(raw.RefObj{R: ref})
			if err != nil {
				return err
			}
			ref = d.Add(raw.Clone(pd)).R
		}
		used[ref] = true
		pd, err := d.dict(raw.RefObj{R: ref})
		if err != nil {
			return err
		}
		if pd != nil {
			pd.SetKey("Type", raw.NameLiteral("Page"))
			pd.SetKey("Parent", r)
		}
		kids.Append(raw.RefObj{R: ref})
		final = append(final, ref)
	}
	root := raw.Dict()
	root.SetKey("Type", raw.NameLiteral("Pages"))
	root.SetKey("Kids", kids)
	root.SetKey("Count", raw.NumberInt(int64(len(final))))
	d.Set(r.R, root)
	d.pages = final
	d.flat = true
	return nil
}

// Box is a rectangle in default user space.
type Box struct {
	MinX, MinY, MaxX, MaxY float64
}

func (b Box) Width() float64  { return b.MaxX - b.MinX }
func (b Box) Height() float64 { return b.MaxY - b.MinY }

func (b Box) array() *raw.ArrayObj { return raw.NumberArray(b.MinX, b.MinY, b.MaxX, b.MaxY) }

func (d *Document) toBox(obj raw.Object) (Box, bool) {
	o, err := d.resolve(obj)
	if err != nil {
		return Box{}, false
	}
	arr, ok := o.(*raw.ArrayObj)
	if !ok || arr.Len() != 4 {
		return Box{}, false
	}
	var v [4]float64
	for i, item := range arr.Items {
		n, ok := d.number(item)
		if !ok {
			return Box{}, false
		}
		v[i] = n
	}
	return Box{
		MinX: math.Min(v[0], v[2]), MinY: math.Min(v[1], v[3]),
		MaxX: math.Max(v[0], v[2]), MaxY: math.Max(v[1], v[3]),
	}, true
}

// boxNames are the page boundary keys.
var boxNames = []string{"MediaBox", "CropBox", "TrimBox", "ArtBox", "BleedBox"}

func normalizeBoxName(name string) (string, error) {
	if len(name) > 0 && name[0] == '/' {
		name = name[1:]
	}
	for _, n := range boxNames {
		if n == name {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: unknown box %q", ErrBadArgument, name)
}

// PageBox returns a page boundary. A missing CropBox falls back to the
// MediaBox and the other boxes fall back to the CropBox.
func (d *Document) PageBox(page int, name string) (Box, error) {
	name, err := normalizeBoxName(name)
	if err != nil {
		return Box{}, err
	}
	pd, err := d.pageDict(page)
	if err != nil {
		return Box{}, err
	}
	return d.pageBox(pd, name)
}

func (d *Document) pageBox(pd *raw.DictObj, name string) (Box, error) {
	v, ok, err := d.inherited(pd, name)
	if err != nil {
		return Box{}, err
	}
	if name != "MediaBox" && name != "CropBox" {
		if !ok {
			return d.pageBox(pd, "CropBox")
		}
		if b, valid := d.toBox(v); valid {
			return b, nil
		}
		return d.pageBox(pd, "CropBox")
	}
	if ok {
		if b, valid := d.toBox(v); valid {
			return b, nil
		}
	}
	if name == "CropBox" {
		return d.pageBox(pd, "MediaBox")
	}
	return Box{0, 0, 612, 792}, nil
}

// HasBox reports whether the page itself, or an ancestor, sets the box.
func (d *Document) HasBox(page int, name string) (bool, error) {
	name, err := normalizeBoxName(name)
	if err != nil {
		return false, err
	}
	pd, err := d.pageDict(page)
	if err != nil {
		return false, err
	}
	_, ok, err := d.inherited(pd, name)
	return ok, err
}

// Rotation returns the page rotation normalized to 0, 90, 180 or 270.
func (d *Document) Rotation(page int) (int, error) {
	pd, err := d.pageDict(page)
	if err != nil {
		return 0, err
	}
	return d.rotation(pd)
}

func (d *Document) rotation(pd *raw.DictObj) (int, error) {
	v, ok, err := d.inherited(pd, "Rotate")
	if err != nil || !ok {
		return 0, err
	}
	n, _ := d.number(v)
	return normalizeAngle(int(n)), nil
}

func normalizeAngle(a int) int {
	a %= 360
	if a < 0 {
		a += 360
	}
	return a
}

// Landscape reports whether the page, as displayed, is wider than tall.
// Out of range pages are not landscape.
func (d *Document) Landscape(page int) bool {
	pd, err := d.pageDict(page)
	if err != nil {
		return false
	}
	box, err := d.pageBox(pd, "CropBox")
	if err != nil {
		return false
	}
	rot, _ := d.rotation(pd)
	w, h := box.Width(), box.Height()
	if rot == 90 || rot == 270 {
		w, h = h, w
	}
	return w > h
}

type specView struct{ d *Document }

func (v specView) PageCount() (int, error) { return v.d.PageCount() }
func (v specView) Landscape(p int) bool    { return v.d.Landscape(p) }

// SpecView adapts the document for page specification parsing. A broken
// page tree fails the parse with the page tree error.
func (d *Document) SpecView() pagespec.Document { return specView{d} }
