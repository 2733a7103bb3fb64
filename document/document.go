// Package document implements editing operations over a parsed PDF object
// graph: page tree, geometry, stamps, metadata, labels, attachments and
// output.
package document

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/wudi/pdfbridge/ir/raw"
	"github.com/wudi/pdfbridge/observability"
	"github.com/wudi/pdfbridge/parser"
	"github.com/wudi/pdfbridge/security"
	"github.com/wudi/pdfbridge/writer"
)

// Document is one editable PDF. It is not safe for concurrent use.
type Document struct {
	objects    map[raw.ObjectRef]raw.Object
	trailer    *raw.DictObj
	version    string
	linearized bool

	lazy    raw.Source
	pending map[raw.ObjectRef]bool

	protection *parser.Protection

	maxNum           int
	pages            []raw.ObjectRef // nil when stale
	flat             bool
	hadObjectStreams bool

	// Name describes where the document came from.
	Name string
}

// LoadOptions control Load.
type LoadOptions struct {
	Password string
	Lazy     bool
	Limits   security.Limits
	Logger   observability.Logger
}

// Load parses data. With Lazy set only the cross-reference information is
// read; objects are parsed when first used and a damaged object is
// reported by the operation that touches it.
func Load(ctx context.Context, data []byte, opts LoadOptions) (*Document, error) {
	p := parser.NewDocumentParser(parser.Config{Password: opts.Password, Lazy: opts.Lazy, Limits: opts.Limits})
	rd, prot, err := p.ParseProtected(ctx, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	d := fromRaw(rd)
	d.protection = prot
	if _, err := d.catalog(); err != nil {
		return nil, err
	}
	observability.OrNop(opts.Logger).Debug("document loaded",
		observability.Int("objects", len(d.objects)),
		observability.Int("pending", len(d.pending)),
		observability.Bool("encrypted", prot != nil))
	return d, nil
}

func fromRaw(rd *raw.Document) *Document {
	d := &Document{
		objects:    rd.Objects,
		trailer:    rd.Trailer,
		version:    rd.Version,
		linearized: rd.Linearized,
		lazy:       rd.Lazy,
	}
	if d.objects == nil {
		d.objects = make(map[raw.ObjectRef]raw.Object)
	}
	if d.trailer == nil {
		d.trailer = raw.Dict()
	}
	if d.version == "" {
		d.version = writer.DefaultVersion
	}
	if len(rd.Pending) > 0 {
		d.pending = make(map[raw.ObjectRef]bool, len(rd.Pending))
		for _, ref := range rd.Pending {
			d.pending[ref] = true
		}
	}
	for ref, obj := range d.objects {
		d.bump(ref.Num)
		if st, ok := obj.(*raw.StreamObj); ok {
			if typ, _ := st.Dict.NameValue("Type"); typ == "ObjStm" {
				d.hadObjectStreams = true
			}
		}
	}
	for ref := range d.pending {
		d.bump(ref.Num)
	}
	if n, ok := d.trailer.IntValue("Size"); ok {
		d.bump(int(n) - 1)
	}
	return d
}

func (d *Document) bump(n int) {
	if n > d.maxNum {
		d.maxNum = n
	}
}

// Linearized reports whether the source file was linearized.
func (d *Document) Linearized() bool { return d.linearized }

// Get returns the object with the given reference, loading it on first use
// for lazily parsed documents. A missing object is the null object.
func (d *Document) Get(ref raw.ObjectRef) (raw.Object, error) {
	if obj, ok := d.objects[ref]; ok {
		return obj, nil
	}
	if d.pending[ref] {
		obj, err := d.lazy.Load(context.Background(), ref)
		if err != nil {
			return nil, fmt.Errorf("%w: object %d: %v", ErrMalformed, ref.Num, err)
		}
		delete(d.pending, ref)
		d.objects[ref] = obj
		return obj, nil
	}
	return raw.NullObj{}, nil
}

// resolve follows references until a direct object is reached.
func (d *Document) resolve(obj raw.Object) (raw.Object, error) {
	for i := 0; i < 32; i++ {
		ref, ok := obj.(raw.RefObj)
		if !ok {
			return obj, nil
		}
		var err error
		if obj, err = d.Get(ref.R); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: reference chain too long", ErrMalformed)
}

// dict resolves obj to a dictionary; anything else yields nil. A stream
// yields its dictionary.
func (d *Document) dict(obj raw.Object) (*raw.DictObj, error) {
	if obj == nil {
		return nil, nil
	}
	o, err := d.resolve(obj)
	if err != nil {
		return nil, err
	}
	switch v := o.(type) {
	case *raw.DictObj:
		return v, nil
	case *raw.StreamObj:
		return v.Dict, nil
	}
	return nil, nil
}

func (d *Document) lookupDict(parent *raw.DictObj, key string) (*raw.DictObj, error) {
	if parent == nil {
		return nil, nil
	}
	v, ok := parent.Lookup(key)
	if !ok {
		return nil, nil
	}
	return d.dict(v)
}

func (d *Document) number(obj raw.Object) (float64, bool) {
	o, err := d.resolve(obj)
	if err != nil {
		return 0, false
	}
	if n, ok := o.(raw.NumberObj); ok {
		return n.Float(), true
	}
	return 0, false
}

// Add stores obj under a fresh object number.
func (d *Document) Add(obj raw.Object) raw.RefObj {
	d.maxNum++
	ref := raw.ObjectRef{Num: d.maxNum}
	d.objects[ref] = obj
	return raw.RefObj{R: ref}
}

// Set replaces the object behind ref.
func (d *Document) Set(ref raw.ObjectRef, obj raw.Object) {
	delete(d.pending, ref)
	d.objects[ref] = obj
	d.bump(ref.Num)
}

func (d *Document) catalog() (*raw.DictObj, error) {
	root, ok := d.trailer.Lookup("Root")
	if !ok {
		return nil, fmt.Errorf("%w: trailer has no /Root", ErrMalformed)
	}
	cat, err := d.dict(root)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, fmt.Errorf("%w: /Root is not a dictionary", ErrMalformed)
	}
	return cat, nil
}

// loadAll materializes every pending object.
func (d *Document) loadAll() error {
	if len(d.pending) == 0 {
		return nil
	}
	refs := make([]raw.ObjectRef, 0, len(d.pending))
	for ref := range d.pending {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Num < refs[j].Num })
	for _, ref := range refs {
		if _, err := d.Get(ref); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns an independent deep copy. Pending objects are loaded first.
func (d *Document) Clone() (*Document, error) {
	if err := d.loadAll(); err != nil {
		return nil, err
	}
	c := &Document{
		objects:    make(map[raw.ObjectRef]raw.Object, len(d.objects)),
		trailer:    raw.Clone(d.trailer).(*raw.DictObj),
		version:    d.version,
		linearized: d.linearized,
		protection: d.protection,
		maxNum:     d.maxNum,
		flat:       d.flat,
		Name:       d.Name,

		hadObjectStreams: d.hadObjectStreams,
	}
	for ref, obj := range d.objects {
		c.objects[ref] = raw.Clone(obj)
	}
	return c, nil
}

// ReplaceWith moves the content of other into d; other must not be used
// afterwards.
func (d *Document) ReplaceWith(other *Document) {
	*d = *other
	*other = Document{}
}

// Raw returns the object graph for writing. It loads pending objects and
// drops objects unreachable from the trailer.
func (d *Document) Raw() (*raw.Document, error) {
	if err := d.loadAll(); err != nil {
		return nil, err
	}
	d.collectGarbage()
	return &raw.Document{Objects: d.objects, Trailer: d.trailer, Version: d.version}, nil
}

// collectGarbage removes objects that cannot be reached from the trailer.
func (d *Document) collectGarbage() {
	seen := make(map[raw.ObjectRef]bool, len(d.objects))
	var stack []raw.ObjectRef
	mark := func(o raw.Object) {
		raw.Walk(o, func(x raw.Object) {
			if r, ok := x.(raw.RefObj); ok && !seen[r.R] {
				seen[r.R] = true
				stack = append(stack, r.R)
			}
		})
	}
	trailer := raw.Clone(d.trailer).(*raw.DictObj)
	trailer.Delete("Encrypt")
	mark(trailer)
	for len(stack) > 0 {
		ref := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if obj, ok := d.objects[ref]; ok {
			mark(obj)
		}
	}
	for ref := range d.objects {
		if !seen[ref] {
			delete(d.objects, ref)
		}
	}
}

// Version returns the header version, e.g. "1.7".
func (d *Document) Version() string { return d.version }
