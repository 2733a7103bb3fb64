package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/wudi/pdfbridge/filters"
	"github.com/wudi/pdfbridge/ir/raw"
	"github.com/wudi/pdfbridge/recovery"
	"github.com/wudi/pdfbridge/scanner"
	"github.com/wudi/pdfbridge/security"
	"github.com/wudi/pdfbridge/xref"
)

type Cache interface {
	Get(ref raw.ObjectRef) (raw.Object, bool)
	Put(ref raw.ObjectRef, obj raw.Object)
}

// ObjectLoader materialises indirect objects listed in an xref table.
type ObjectLoader interface {
	Load(ctx context.Context, ref raw.ObjectRef) (raw.Object, error)
}

// ErrObjectNotFound is returned for object numbers absent from the xref table.
var ErrObjectNotFound = errors.New("object not found in xref")

type ObjectLoaderBuilder struct {
	reader    io.ReaderAt
	xrefTable xref.Table
	security  security.Handler
	limits    security.Limits
	cache     Cache
	recovery  recovery.Strategy
	skip      map[int]bool
}

func (b *ObjectLoaderBuilder) WithXRef(table xref.Table) *ObjectLoaderBuilder {
	b.xrefTable = table
	return b
}
func (b *ObjectLoaderBuilder) WithReader(r io.ReaderAt) *ObjectLoaderBuilder {
	b.reader = r
	return b
}
func (b *ObjectLoaderBuilder) WithSecurity(h security.Handler) *ObjectLoaderBuilder {
	b.security = h
	return b
}
func (b *ObjectLoaderBuilder) WithLimits(l security.Limits) *ObjectLoaderBuilder {
	b.limits = l
	return b
}
func (b *ObjectLoaderBuilder) WithCache(c Cache) *ObjectLoaderBuilder { b.cache = c; return b }
func (b *ObjectLoaderBuilder) WithRecovery(s recovery.Strategy) *ObjectLoaderBuilder {
	b.recovery = s
	return b
}

// WithoutDecryption marks object numbers whose strings are stored in clear,
// such as the /Encrypt dictionary itself.
func (b *ObjectLoaderBuilder) WithoutDecryption(nums ...int) *ObjectLoaderBuilder {
	if b.skip == nil {
		b.skip = make(map[int]bool)
	}
	for _, n := range nums {
		b.skip[n] = true
	}
	return b
}

func (b *ObjectLoaderBuilder) Build() (ObjectLoader, error) {
	if b.reader == nil || b.xrefTable == nil {
		return nil, errors.New("reader and xrefTable required")
	}
	sec := b.security
	if sec == nil {
		sec = security.NoopHandler()
	}
	rec := b.recovery
	if rec == nil {
		rec = recovery.Default()
	}
	return &objectLoader{
		data:      scanner.ReadAll(b.reader),
		xrefTable: b.xrefTable,
		security:  sec,
		limits:    b.limits,
		cache:     b.cache,
		recovery:  rec,
		skip:      b.skip,
		objstm:    make(map[int]map[int]raw.Object),
	}, nil
}

type objectLoader struct {
	data      []byte
	xrefTable xref.Table
	security  security.Handler
	limits    security.Limits
	cache     Cache
	recovery  recovery.Strategy
	skip      map[int]bool

	mu     sync.Mutex
	objstm map[int]map[int]raw.Object
}

func (o *objectLoader) Load(ctx context.Context, ref raw.ObjectRef) (raw.Object, error) {
	if o.cache != nil {
		if obj, ok := o.cache.Get(ref); ok {
			return obj, nil
		}
	}
	o.mu.Lock()
	obj, err := o.loadLocked(ctx, ref, 0)
	o.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if o.cache != nil {
		o.cache.Put(ref, obj)
	}
	return obj, nil
}

func (o *objectLoader) scannerConfig() scanner.Config {
	return scanner.Config{MaxStringLength: o.limits.MaxStringLength, MaxStreamLength: o.limits.MaxStreamLength}
}

func (o *objectLoader) loadLocked(ctx context.Context, ref raw.ObjectRef, depth int) (raw.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if depth > 8 {
		return nil, fmt.Errorf("object %d: reference chain too deep", ref.Num)
	}
	offset, gen, found := o.xrefTable.Lookup(ref.Num)
	if !found {
		if streamNum, idx, ok := o.xrefTable.ObjStream(ref.Num); ok {
			return o.loadFromObjectStream(ctx, ref, streamNum, idx, depth)
		}
		return nil, fmt.Errorf("%w: %d", ErrObjectNotFound, ref.Num)
	}
	obj, err := o.scanObject(ctx, ref.Num, offset, gen, depth)
	if err != nil {
		action := o.recovery.OnError(ctx, err, recovery.Location{ByteOffset: offset, ObjectNum: ref.Num, ObjectGen: gen, Component: "parser"})
		if action == recovery.ActionFail {
			return nil, err
		}
		return raw.NullObj{}, nil
	}
	return obj, nil
}

func (o *objectLoader) scanObject(ctx context.Context, objNum int, offset int64, gen int, depth int) (raw.Object, error) {
	s := scanner.NewBytes(o.data, o.scannerConfig())
	if err := s.SeekTo(offset); err != nil {
		return nil, err
	}
	tr := raw.NewTokenReader(s)
	if err := expectHeader(tr, objNum, gen); err != nil {
		return nil, err
	}
	obj, err := raw.ParseObject(tr)
	if err != nil {
		return nil, fmt.Errorf("object %d: %w", objNum, err)
	}
	if dict, ok := obj.(*raw.DictObj); ok {
		length, err := o.streamLength(ctx, dict, depth)
		if err != nil {
			return nil, err
		}
		tr.SetStreamLengthHint(length)
		if tok, err := tr.Next(); err == nil {
			if tok.Type == scanner.TokenStream {
				data := make([]byte, len(tok.Bytes))
				copy(data, tok.Bytes)
				obj = raw.NewStream(dict, data)
			} else {
				tr.Unread(tok)
			}
		}
		tr.SetStreamLengthHint(-1)
	}
	if o.skip[objNum] || isXRefStream(obj) {
		return obj, nil
	}
	return o.decryptObject(raw.ObjectRef{Num: objNum, Gen: gen}, obj)
}

func expectHeader(tr *raw.TokenReader, objNum, gen int) error {
	num, err := tr.Next()
	if err != nil {
		return err
	}
	g, err := tr.Next()
	if err != nil {
		return err
	}
	kw, err := tr.Next()
	if err != nil {
		return err
	}
	if num.Type != scanner.TokenNumber || int(num.Int) != objNum {
		return fmt.Errorf("object %d: header number mismatch at %d", objNum, num.Pos)
	}
	if g.Type != scanner.TokenNumber || int(g.Int) != gen {
		return fmt.Errorf("object %d: header generation mismatch", objNum)
	}
	if kw.Type != scanner.TokenKeyword || kw.Str != "obj" {
		return fmt.Errorf("object %d: expected obj keyword", objNum)
	}
	return nil
}

// streamLength resolves /Length, which may itself be an indirect object.
func (o *objectLoader) streamLength(ctx context.Context, dict *raw.DictObj, depth int) (int64, error) {
	val, ok := dict.Lookup("Length")
	if !ok {
		return -1, nil
	}
	switch v := val.(type) {
	case raw.NumberObj:
		return v.Int(), nil
	case raw.RefObj:
		obj, err := o.loadLocked(ctx, v.R, depth+1)
		if err != nil {
			return -1, nil
		}
		if n, ok := obj.(raw.NumberObj); ok {
			return n.Int(), nil
		}
	}
	return -1, nil
}

func (o *objectLoader) loadFromObjectStream(ctx context.Context, ref raw.ObjectRef, streamNum, idx, depth int) (raw.Object, error) {
	if objs, ok := o.objstm[streamNum]; ok {
		if obj, ok := objs[ref.Num]; ok {
			return obj, nil
		}
		return nil, fmt.Errorf("%w: %d in object stream %d", ErrObjectNotFound, ref.Num, streamNum)
	}
	streamObj, err := o.loadLocked(ctx, raw.ObjectRef{Num: streamNum}, depth+1)
	if err != nil {
		return nil, err
	}
	st, ok := streamObj.(*raw.StreamObj)
	if !ok {
		return nil, fmt.Errorf("object stream %d is not a stream", streamNum)
	}
	names, params := filters.ExtractFilters(st.Dict)
	data, err := filters.NewDefault(filters.Limits{MaxDecompressedSize: o.limits.MaxDecompressedSize}).
		Decode(ctx, st.Data, names, params)
	if err != nil {
		return nil, fmt.Errorf("object stream %d: %w", streamNum, err)
	}
	n, _ := st.Dict.IntValue("N")
	first, _ := st.Dict.IntValue("First")
	if first < 0 || first > int64(len(data)) {
		return nil, errors.New("object stream /First exceeds length")
	}

	s := scanner.NewBytes(data[:first], o.scannerConfig())
	pairs := make([]int64, 0, 2*n)
	for int64(len(pairs)) < 2*n {
		tok, err := s.Next()
		if err != nil {
			break
		}
		if tok.Type == scanner.TokenNumber && tok.IsInt {
			pairs = append(pairs, tok.Int)
		}
	}
	body := data[first:]
	objs := make(map[int]raw.Object, n)
	for i := 0; i+1 < len(pairs); i += 2 {
		num, off := int(pairs[i]), pairs[i+1]
		if off < 0 || off > int64(len(body)) {
			continue
		}
		bs := scanner.NewBytes(body, o.scannerConfig())
		bs.SeekTo(off)
		obj, err := raw.ParseObject(raw.NewTokenReader(bs))
		if err != nil {
			o.recovery.OnError(ctx, err, recovery.Location{ObjectNum: num, Component: "parser"})
			continue
		}
		objs[num] = obj
	}
	o.objstm[streamNum] = objs
	if obj, ok := objs[ref.Num]; ok {
		return obj, nil
	}
	return nil, fmt.Errorf("%w: %d in object stream %d", ErrObjectNotFound, ref.Num, streamNum)
}

func (o *objectLoader) decryptObject(ref raw.ObjectRef, obj raw.Object) (raw.Object, error) {
	if !o.security.IsEncrypted() {
		return obj, nil
	}
	switch v := obj.(type) {
	case raw.StringObj:
		dec, err := o.security.Decrypt(ref.Num, ref.Gen, v.Bytes, security.DataClassString)
		if err != nil {
			return nil, err
		}
		return raw.StringObj{Bytes: dec, Hex: v.Hex}, nil
	case *raw.ArrayObj:
		for i, item := range v.Items {
			dec, err := o.decryptObject(ref, item)
			if err != nil {
				return nil, err
			}
			v.Items[i] = dec
		}
		return v, nil
	case *raw.DictObj:
		for key, item := range v.KV {
			dec, err := o.decryptObject(ref, item)
			if err != nil {
				return nil, err
			}
			v.KV[key] = dec
		}
		return v, nil
	case *raw.StreamObj:
		if _, err := o.decryptObject(ref, v.Dict); err != nil {
			return nil, err
		}
		class := security.DataClassStream
		if typ, _ := v.Dict.NameValue("Type"); typ == "Metadata" {
			class = security.DataClassMetadataStream
		}
		if identityCrypt(v.Dict) {
			return v, nil
		}
		dec, err := o.security.Decrypt(ref.Num, ref.Gen, v.Data, class)
		if err != nil {
			return nil, err
		}
		v.Data = dec
		v.Dict.SetKey("Length", raw.NumberInt(int64(len(dec))))
		return v, nil
	}
	return obj, nil
}

// identityCrypt reports a stream-level /Crypt filter naming Identity.
func identityCrypt(d *raw.DictObj) bool {
	names, params := filters.ExtractFilters(d)
	for i, n := range names {
		if n != "Crypt" {
			continue
		}
		if i < len(params) {
			if p, ok := params[i].(*raw.DictObj); ok {
				name, _ := p.NameValue("Name")
				return name == "" || name == "Identity"
			}
		}
		return true
	}
	return false
}

func isXRefStream(obj raw.Object) bool {
	st, ok := obj.(*raw.StreamObj)
	if !ok {
		return false
	}
	typ, _ := st.Dict.NameValue("Type")
	return typ == "XRef"
}
