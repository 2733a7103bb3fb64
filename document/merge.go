package document

import (
	"fmt"
	"sort"

	"github.com/wudi/pdfbridge/ir/raw"
	"github.com/wudi/pdfbridge/writer"
)

// importPages copies the given pages of src (all when pages is nil), and
// everything they reference, into d under fresh object numbers. The new
// page objects are returned but not yet part of d's page tree.
func (d *Document) importPages(src *Document, pages []int) ([]raw.ObjectRef, error) {
	c, err := src.Clone()
	if err != nil {
		return nil, err
	}
	if err := c.flatten(); err != nil {
		return nil, err
	}
	refs, err := c.pageRefs()
	if err != nil {
		return nil, err
	}
	if pages != nil {
		if _, err := c.pageSet(pages); err != nil {
			return nil, err
		}
		picked := make([]raw.ObjectRef, len(pages))
		for i, p := range pages {
			picked[i] = refs[p-1]
		}
		refs = picked
	}
	for _, ref := range refs {
		if pd, _ := c.dict(raw.RefObj{R: ref}); pd != nil {
			pd.Delete("Parent")
		}
	}

	mapping := make(map[raw.ObjectRef]raw.ObjectRef)
	var order []raw.ObjectRef
	var visit func(ref raw.ObjectRef) error
	visit = func(ref raw.ObjectRef) error {
		if _, done := mapping[ref]; done {
			return nil
		}
		d.maxNum++
		mapping[ref] = raw.ObjectRef{Num: d.maxNum}
		order = append(order, ref)
		obj, err := c.Get(ref)
		if err != nil {
			return err
		}
		var inner []raw.ObjectRef
		raw.Walk(obj, func(o raw.Object) {
			if r, ok := o.(raw.RefObj); ok {
				inner = append(inner, r.R)
			}
		})
		for _, r := range inner {
			if err := visit(r); err != nil {
				return err
			}
		}
		return nil
	}
	for _, ref := range refs {
		if err := visit(ref); err != nil {
			return nil, err
		}
	}
	for _, ref := range order {
		obj, _ := c.Get(ref)
		obj = raw.Rewrite(obj, func(r raw.RefObj) raw.Object {
			if to, ok := mapping[r.R]; ok {
				return raw.RefObj{R: to}
			}
			return raw.NullObj{}
		})
		d.objects[mapping[ref]] = obj
	}
	out := make([]raw.ObjectRef, len(refs))
	for i, ref := range refs {
		out[i] = mapping[ref]
	}
	return out, nil
}

// SelectPages returns a new document made of pages, in order. A page may
// appear more than once.
func (d *Document) SelectPages(pages []int) (*Document, error) {
	if _, err := d.pageSet(pages); err != nil {
		return nil, err
	}
	c, err := d.Clone()
	if err != nil {
		return nil, err
	}
	if err := c.flatten(); err != nil {
		return nil, err
	}
	refs, err := c.pageRefs()
	if err != nil {
		return nil, err
	}
	labels, err := c.pageLabels()
	if err != nil {
		return nil, err
	}
	picked := make([]raw.ObjectRef, len(pages))
	var kept []pageLabel
	for i, p := range pages {
		picked[i] = refs[p-1]
		if labels != nil {
			kept = append(kept, labels[p-1])
		}
	}
	if err := c.setPages(picked); err != nil {
		return nil, err
	}
	if labels != nil {
		if err := c.writeLabels(kept); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MergeOptions control Merge.
type MergeOptions struct {
	// RetainNumbering keeps each input's page labels. Otherwise the result
	// has none.
	RetainNumbering bool
	// RemoveDuplicateFonts shares identical font objects between inputs.
	RemoveDuplicateFonts bool
}

// Merge concatenates docs into a new document. Document-level structure
// (outlines, names, metadata) comes from the first input.
func Merge(docs []*Document, opts MergeOptions) (*Document, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: nothing to merge", ErrBadArgument)
	}
	out, err := docs[0].Clone()
	if err != nil {
		return nil, err
	}
	out.protection = nil
	out.trailer.Delete("Encrypt")
	out.trailer.Delete("ID")
	if err := out.flatten(); err != nil {
		return nil, err
	}
	first, err := out.pageRefs()
	if err != nil {
		return nil, err
	}
	refs := append([]raw.ObjectRef(nil), first...)
	var labels []pageLabel
	if opts.RetainNumbering {
		if labels, err = out.expandedLabels(); err != nil {
			return nil, err
		}
	}
	for _, doc := range docs[1:] {
		imported, err := out.importPages(doc, nil)
		if err != nil {
			return nil, err
		}
		refs = append(refs, imported...)
		if opts.RetainNumbering {
			more, err := doc.expandedLabels()
			if err != nil {
				return nil, err
			}
			labels = append(labels, more...)
		}
		if newerVersion(doc.version, out.version) {
			out.version = doc.version
		}
	}
	if err := out.setPages(refs); err != nil {
		return nil, err
	}
	if opts.RetainNumbering {
		if err := out.writeLabels(labels); err != nil {
			return nil, err
		}
	} else if cat, err := out.catalog(); err == nil {
		cat.Delete("PageLabels")
	}
	if opts.RemoveDuplicateFonts {
		out.dedupe(isFontObject)
	}
	return out, nil
}

// MergeSame merges the given page selection of each document.
func MergeSame(docs []*Document, ranges [][]int, opts MergeOptions) (*Document, error) {
	if len(ranges) != len(docs) {
		return nil, fmt.Errorf("%w: %d documents but %d ranges", ErrBadArgument, len(docs), len(ranges))
	}
	parts := make([]*Document, len(docs))
	for i, doc := range docs {
		part, err := doc.SelectPages(ranges[i])
		if err != nil {
			return nil, err
		}
		parts[i] = part
	}
	return Merge(parts, opts)
}

func newerVersion(a, b string) bool {
	var amaj, amin, bmaj, bmin int
	fmt.Sscanf(a, "%d.%d", &amaj, &amin)
	fmt.Sscanf(b, "%d.%d", &bmaj, &bmin)
	return amaj > bmaj || (amaj == bmaj && amin > bmin)
}

func isFontObject(obj raw.Object) bool {
	var dict *raw.DictObj
	switch v := obj.(type) {
	case *raw.DictObj:
		dict = v
	case *raw.StreamObj:
		dict = v.Dict
		for _, k := range []string{"Length1", "Length2", "Length3"} {
			if _, ok := dict.Lookup(k); ok {
				return true
			}
		}
		if st, _ := dict.NameValue("Subtype"); st == "Type1C" || st == "CIDFontType0C" || st == "OpenType" {
			return true
		}
		return false
	default:
		return false
	}
	typ, _ := dict.NameValue("Type")
	return typ == "Font" || typ == "FontDescriptor" || typ == "Encoding"
}

// dedupe merges objects with identical serializations for which keep
// holds, repeating until nothing changes so that parents of merged objects
// can merge too. It returns the number of objects removed.
func (d *Document) dedupe(keep func(raw.Object) bool) int {
	if err := d.loadAll(); err != nil {
		return 0
	}
	w := writer.New()
	removed := 0
	for {
		refs := make([]raw.ObjectRef, 0, len(d.objects))
		for ref := range d.objects {
			refs = append(refs, ref)
		}
		sort.Slice(refs, func(i, j int) bool { return refs[i].Num < refs[j].Num })
		canon := make(map[string]raw.ObjectRef)
		mapping := make(map[raw.ObjectRef]raw.ObjectRef)
		for _, ref := range refs {
			obj := d.objects[ref]
			if !keep(obj) {
				continue
			}
			data, err := w.SerializeObject(raw.ObjectRef{}, obj)
			if err != nil {
				continue
			}
			key := string(data)
			if first, ok := canon[key]; ok {
				mapping[ref] = first
				continue
			}
			canon[key] = ref
		}
		if len(mapping) == 0 {
			return removed
		}
		rewrite := func(r raw.RefObj) raw.Object {
			if to, ok := mapping[r.R]; ok {
				return raw.RefObj{R: to}
			}
			return r
		}
		for ref := range mapping {
			delete(d.objects, ref)
		}
		for ref, obj := range d.objects {
			d.objects[ref] = raw.Rewrite(obj, rewrite)
		}
		raw.Rewrite(d.trailer, rewrite)
		removed += len(mapping)
		d.pages = nil
	}
}
