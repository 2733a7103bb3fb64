package writer

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/wudi/pdfbridge/filters"
	"github.com/wudi/pdfbridge/ir/raw"
	"github.com/wudi/pdfbridge/security"
)

type impl struct{ interceptors []Interceptor }

func (w *impl) SerializeObject(ref raw.ObjectRef, obj raw.Object) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d %d obj\n", ref.Num, ref.Gen)
	writePrimitive(&buf, obj)
	buf.WriteString("\nendobj\n")
	return buf.Bytes(), nil
}

type xrefEntry struct {
	typ    int
	field2 int64
	field3 int
}

func (w *impl) Write(ctx context.Context, doc *raw.Document, out io.Writer, cfg Config) error {
	if doc == nil || doc.Trailer == nil {
		return errors.New("document has no trailer")
	}
	root, ok := doc.Trailer.Lookup("Root")
	if !ok {
		return errors.New("trailer has no /Root")
	}
	if cfg.Linearize {
		cfg.ObjectStreams, cfg.XRefStreams = false, false
	}
	if cfg.ObjectStreams {
		cfg.XRefStreams = true
	}

	objects := make(map[raw.ObjectRef]raw.Object, len(doc.Objects))
	maxNum := 0
	for ref, obj := range doc.Objects {
		obj = raw.Clone(obj)
		if st, ok := obj.(*raw.StreamObj); ok && cfg.Compress {
			compressStream(st)
		}
		objects[ref] = obj
		if ref.Num > maxNum {
			maxNum = ref.Num
		}
	}
	ordered := make([]raw.ObjectRef, 0, len(objects))
	for ref := range objects {
		ordered = append(ordered, ref)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Num < ordered[j].Num })

	ids := w.fileID(doc, ordered, objects, cfg)
	trailer := raw.Dict()
	trailer.SetKey("Root", root)
	if info, ok := doc.Trailer.Lookup("Info"); ok {
		trailer.SetKey("Info", info)
	}
	trailer.SetKey("ID", raw.NewArray(raw.HexStr(ids[0]), raw.HexStr(ids[1])))

	var handler security.Handler
	var encRef raw.ObjectRef
	if cfg.Encryption != nil {
		encDict, h, err := security.BuildStandardEncryption(*cfg.Encryption, ids[0])
		if err != nil {
			return fmt.Errorf("encryption: %w", err)
		}
		handler = h
		maxNum++
		encRef = raw.ObjectRef{Num: maxNum}
		objects[encRef] = encDict
		ordered = append(ordered, encRef)
		trailer.SetKey("Encrypt", raw.Ref(encRef.Num, 0))
	} else if cfg.Keep != nil && cfg.Keep.Handler != nil && cfg.Keep.Dict != nil {
		handler = cfg.Keep.Handler
		maxNum++
		encRef = raw.ObjectRef{Num: maxNum}
		objects[encRef] = raw.Clone(cfg.Keep.Dict)
		ordered = append(ordered, encRef)
		trailer.SetKey("Encrypt", raw.Ref(encRef.Num, 0))
	}

	var packed map[int]bool
	if cfg.ObjectStreams {
		packed = make(map[int]bool)
		for _, ref := range ordered {
			if _, isStream := objects[ref].(*raw.StreamObj); !isStream && ref.Gen == 0 && ref != encRef {
				packed[ref.Num] = true
			}
		}
		if len(packed) == 0 {
			packed = nil
		}
	}

	header := fmt.Sprintf("%%PDF-%s\n%%\xE2\xE3\xCF\xD3\n", headerVersion(doc, cfg))
	if cfg.Linearize {
		return w.writeLinearized(ctx, out, header, objects, trailer, handler, encRef)
	}

	var buf bytes.Buffer
	buf.WriteString(header)
	entries := make(map[int]xrefEntry)
	emit := func(ref raw.ObjectRef, obj raw.Object) error {
		data, err := w.prepare(ctx, ref, obj, handler, encRef)
		if err != nil {
			return err
		}
		offset := int64(buf.Len())
		buf.Write(data)
		entries[ref.Num] = xrefEntry{typ: 1, field2: offset, field3: ref.Gen}
		return w.written(ctx, ref, len(data))
	}

	for _, ref := range ordered {
		if packed[ref.Num] {
			continue
		}
		if err := emit(ref, objects[ref]); err != nil {
			return err
		}
	}
	if packed != nil {
		nums := make([]int, 0, len(packed))
		for n := range packed {
			nums = append(nums, n)
		}
		sort.Ints(nums)
		const perStream = 100
		for start := 0; start < len(nums); start += perStream {
			end := start + perStream
			if end > len(nums) {
				end = len(nums)
			}
			maxNum++
			streamRef := raw.ObjectRef{Num: maxNum}
			stm := buildObjectStream(nums[start:end], objects)
			for i, n := range nums[start:end] {
				entries[n] = xrefEntry{typ: 2, field2: int64(streamRef.Num), field3: i}
			}
			if err := emit(streamRef, stm); err != nil {
				return err
			}
		}
	}

	size := maxNum + 1
	if cfg.XRefStreams {
		xrefNum := size
		size++
		xrefOffset := int64(buf.Len())
		entries[xrefNum] = xrefEntry{typ: 1, field2: xrefOffset}
		trailer.SetKey("Type", raw.NameLiteral("XRef"))
		trailer.SetKey("Size", raw.NumberInt(int64(size)))
		trailer.SetKey("W", raw.NewArray(raw.NumberInt(1), raw.NumberInt(4), raw.NumberInt(2)))
		rows := xrefStreamRows(entries, size)
		trailer.SetKey("Filter", raw.NameLiteral("FlateDecode"))
		data, _ := w.SerializeObject(raw.ObjectRef{Num: xrefNum}, raw.NewStream(trailer, filters.Deflate(rows)))
		buf.Write(data)
		fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefOffset)
	} else {
		xrefOffset := buf.Len()
		fmt.Fprintf(&buf, "xref\n0 %d\n", size)
		buf.WriteString("0000000000 65535 f \n")
		for i := 1; i < size; i++ {
			if e, ok := entries[i]; ok {
				fmt.Fprintf(&buf, "%010d %05d n \n", e.field2, e.field3)
			} else {
				buf.WriteString("0000000000 00000 f \n")
			}
		}
		trailer.SetKey("Size", raw.NumberInt(int64(size)))
		buf.WriteString("trailer\n")
		writePrimitive(&buf, trailer)
		fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)
	}

	_, err := out.Write(buf.Bytes())
	return err
}

func headerVersion(doc *raw.Document, cfg Config) string {
	version := cfg.Version
	if version == "" {
		version = doc.Version
	}
	if version == "" {
		version = DefaultVersion
	}
	if cfg.XRefStreams && version < "1.5" {
		version = "1.5"
	}
	return version
}

// prepare runs the interceptors, encrypts unless ref is the /Encrypt
// dictionary, and serializes.
func (w *impl) prepare(ctx context.Context, ref raw.ObjectRef, obj raw.Object, handler security.Handler, encRef raw.ObjectRef) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, ic := range w.interceptors {
		if err := ic.BeforeWrite(ctx, ref, obj); err != nil {
			return nil, err
		}
	}
	if handler != nil && ref != encRef {
		obj = encryptObject(obj, ref, handler)
	}
	return w.SerializeObject(ref, obj)
}

func (w *impl) written(ctx context.Context, ref raw.ObjectRef, n int) error {
	for _, ic := range w.interceptors {
		if err := ic.AfterWrite(ctx, ref, int64(n)); err != nil {
			return err
		}
	}
	return nil
}

func compressStream(st *raw.StreamObj) {
	if st.Dict == nil {
		st.Dict = raw.Dict()
	}
	if _, ok := st.Dict.Lookup("Filter"); ok {
		return
	}
	if len(st.Data) < 32 {
		return
	}
	st.Data = filters.Deflate(st.Data)
	st.Dict.SetKey("Filter", raw.NameLiteral("FlateDecode"))
	st.Dict.Delete("DecodeParms")
}

func buildObjectStream(nums []int, objects map[raw.ObjectRef]raw.Object) *raw.StreamObj {
	var header, body bytes.Buffer
	for _, n := range nums {
		fmt.Fprintf(&header, "%d %d ", n, body.Len())
		writePrimitive(&body, objects[raw.ObjectRef{Num: n}])
		body.WriteByte('\n')
	}
	d := raw.Dict()
	d.SetKey("Type", raw.NameLiteral("ObjStm"))
	d.SetKey("N", raw.NumberInt(int64(len(nums))))
	d.SetKey("First", raw.NumberInt(int64(header.Len())))
	d.SetKey("Filter", raw.NameLiteral("FlateDecode"))
	return raw.NewStream(d, filters.Deflate(append(header.Bytes(), body.Bytes()...)))
}

func xrefStreamRows(entries map[int]xrefEntry, size int) []byte {
	rows := make([]byte, 0, size*7)
	for i := 0; i < size; i++ {
		e, ok := entries[i]
		if !ok {
			e = xrefEntry{}
			if i == 0 {
				e.field3 = 65535
			}
		}
		off := uint32(e.field2)
		rows = append(rows, byte(e.typ), byte(off>>24), byte(off>>16), byte(off>>8), byte(off), byte(e.field3>>8), byte(e.field3))
	}
	return rows
}

// fileID keeps the first /ID element of the source and renews the second.
func (w *impl) fileID(doc *raw.Document, ordered []raw.ObjectRef, objects map[raw.ObjectRef]raw.Object, cfg Config) [2][]byte {
	h := sha256.New()
	for _, ref := range ordered {
		data, _ := w.SerializeObject(ref, objects[ref])
		h.Write(data)
	}
	sum := h.Sum(nil)[:16]
	first := security.FirstFileID(doc.Trailer)
	if len(first) == 0 {
		first = sum
	}
	if cfg.Deterministic {
		return [2][]byte{first, sum}
	}
	second := make([]byte, 16)
	if _, err := rand.Read(second); err != nil {
		second = sum
	}
	return [2][]byte{first, second}
}

func encryptObject(obj raw.Object, ref raw.ObjectRef, handler security.Handler) raw.Object {
	switch v := obj.(type) {
	case raw.StringObj:
		encrypted, err := handler.Encrypt(ref.Num, ref.Gen, v.Bytes, security.DataClassString)
		if err != nil {
			return obj
		}
		return raw.StringObj{Bytes: encrypted, Hex: true}
	case *raw.ArrayObj:
		arr := raw.NewArray()
		for _, item := range v.Items {
			arr.Append(encryptObject(item, ref, handler))
		}
		return arr
	case *raw.DictObj:
		d := raw.Dict()
		for k, val := range v.KV {
			d.SetKey(k, encryptObject(val, ref, handler))
		}
		return d
	case *raw.StreamObj:
		class := security.DataClassStream
		if typ, _ := v.Dict.NameValue("Type"); typ == "Metadata" {
			class = security.DataClassMetadataStream
		} else if typ == "XRef" {
			return obj
		}
		data, err := handler.Encrypt(ref.Num, ref.Gen, v.Data, class)
		if err != nil {
			return obj
		}
		dd, _ := encryptObject(v.Dict, ref, handler).(*raw.DictObj)
		return raw.NewStream(dd, data)
	default:
		return obj
	}
}
