package writer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/wudi/pdfbridge/ir/raw"
	"github.com/wudi/pdfbridge/security"
)

// linearizer splits the object graph into the first page section, objects
// shared between the first page and later pages, and everything else, then
// renumbers in file order: linearization dictionary, first page objects,
// hint stream, shared objects, the rest.
type linearizer struct {
	objects map[raw.ObjectRef]raw.Object
	catalog raw.ObjectRef
	pages   []raw.ObjectRef
	// reach[i] is every object page i needs, /Parent links excluded.
	reach  []map[raw.ObjectRef]bool
	first  map[raw.ObjectRef]bool
	shared map[raw.ObjectRef]bool
	newRef map[raw.ObjectRef]raw.ObjectRef

	linRef, hintRef raw.ObjectRef
	firstMax        int
	size            int
}

func newLinearizer(objects map[raw.ObjectRef]raw.Object, catalog raw.ObjectRef) *linearizer {
	return &linearizer{
		objects: objects,
		catalog: catalog,
		first:   make(map[raw.ObjectRef]bool),
		shared:  make(map[raw.ObjectRef]bool),
		newRef:  make(map[raw.ObjectRef]raw.ObjectRef),
	}
}

func (l *linearizer) classify() error {
	cat, ok := l.objects[l.catalog].(*raw.DictObj)
	if !ok {
		return errors.New("linearize: catalog is not a dictionary")
	}
	root, ok := cat.Lookup("Pages")
	rootRef, isRef := root.(raw.RefObj)
	if !ok || !isRef {
		return errors.New("linearize: catalog has no page tree")
	}
	l.collectPages(rootRef.R, make(map[raw.ObjectRef]bool))
	if len(l.pages) == 0 {
		return errors.New("linearize: document has no pages")
	}

	l.reach = make([]map[raw.ObjectRef]bool, len(l.pages))
	later := make(map[raw.ObjectRef]bool)
	for i, p := range l.pages {
		l.reach[i] = make(map[raw.ObjectRef]bool)
		l.closure(p, l.reach[i])
		if i > 0 {
			for ref := range l.reach[i] {
				later[ref] = true
			}
		}
	}
	for ref := range l.reach[0] {
		if later[ref] {
			l.shared[ref] = true
		} else {
			l.first[ref] = true
		}
	}
	delete(l.shared, l.catalog)
	l.first[l.catalog] = true
	return nil
}

func (l *linearizer) collectPages(ref raw.ObjectRef, seen map[raw.ObjectRef]bool) {
	if seen[ref] {
		return
	}
	seen[ref] = true
	d, ok := l.objects[ref].(*raw.DictObj)
	if !ok {
		return
	}
	kids, hasKids := d.Lookup("Kids")
	if typ, _ := d.NameValue("Type"); typ == "Page" || !hasKids {
		l.pages = append(l.pages, ref)
		return
	}
	arr, ok := kids.(*raw.ArrayObj)
	if !ok {
		return
	}
	for _, k := range arr.Items {
		if r, ok := k.(raw.RefObj); ok {
			l.collectPages(r.R, seen)
		}
	}
}

func (l *linearizer) closure(root raw.ObjectRef, into map[raw.ObjectRef]bool) {
	stack := []raw.ObjectRef{root}
	for len(stack) > 0 {
		ref := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if into[ref] {
			continue
		}
		obj, ok := l.objects[ref]
		if !ok {
			continue
		}
		into[ref] = true
		for _, r := range refsOf(obj) {
			if !into[r] {
				stack = append(stack, r)
			}
		}
	}
}

// refsOf lists the references inside obj. /Parent is skipped so a page
// does not pull in the whole page tree.
func refsOf(obj raw.Object) []raw.ObjectRef {
	var out []raw.ObjectRef
	var visit func(raw.Object)
	visit = func(o raw.Object) {
		switch v := o.(type) {
		case raw.RefObj:
			out = append(out, v.R)
		case *raw.ArrayObj:
			for _, item := range v.Items {
				visit(item)
			}
		case *raw.DictObj:
			for _, k := range v.SortedKeys() {
				if k != "Parent" {
					visit(v.KV[k])
				}
			}
		case *raw.StreamObj:
			visit(v.Dict)
		}
	}
	visit(obj)
	return out
}

// renumber returns the objects under their new numbers with every
// reference rewritten. References to missing objects become null.
func (l *linearizer) renumber() map[raw.ObjectRef]raw.Object {
	sorted := func(set map[raw.ObjectRef]bool) []raw.ObjectRef {
		out := make([]raw.ObjectRef, 0, len(set))
		for ref := range set {
			out = append(out, ref)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Num < out[j].Num })
		return out
	}
	rest := make(map[raw.ObjectRef]bool)
	for ref := range l.objects {
		if !l.first[ref] && !l.shared[ref] {
			rest[ref] = true
		}
	}

	next := 1
	assign := func(refs []raw.ObjectRef) {
		for _, ref := range refs {
			l.newRef[ref] = raw.ObjectRef{Num: next}
			next++
		}
	}
	l.linRef = raw.ObjectRef{Num: next}
	next++
	assign(sorted(l.first))
	l.firstMax = next - 1
	l.hintRef = raw.ObjectRef{Num: next}
	next++
	assign(sorted(l.shared))
	assign(sorted(rest))
	l.size = next

	out := make(map[raw.ObjectRef]raw.Object, len(l.objects))
	for old, obj := range l.objects {
		out[l.newRef[old]] = raw.Rewrite(obj, l.mapRef)
	}
	return out
}

func (l *linearizer) mapRef(r raw.RefObj) raw.Object {
	if n, ok := l.newRef[r.R]; ok {
		return raw.RefObj{R: n}
	}
	return raw.NullObj{}
}

// hintData builds the page offset and shared object hint tables. It
// returns the stream data and the offset of the shared object table.
func (l *linearizer) hintData(offsets, lengths map[int]int64) ([]byte, int) {
	sharedList := make([]raw.ObjectRef, 0, len(l.shared))
	for ref := range l.shared {
		sharedList = append(sharedList, ref)
	}
	sort.Slice(sharedList, func(i, j int) bool { return l.newRef[sharedList[i]].Num < l.newRef[sharedList[j]].Num })
	sharedIndex := make(map[raw.ObjectRef]int, len(sharedList))
	for i, ref := range sharedList {
		sharedIndex[ref] = i
	}

	type pageHint struct {
		objects, shared, firstShared int64
		length                       int64
	}
	hints := make([]pageHint, len(l.pages))
	for i := range l.pages {
		h := pageHint{firstShared: -1}
		for ref := range l.reach[i] {
			switch {
			case l.shared[ref]:
				h.shared++
				if idx := int64(sharedIndex[ref]); h.firstShared < 0 || idx < h.firstShared {
					h.firstShared = idx
				}
			case i == 0 && l.first[ref], i > 0 && !l.first[ref]:
				h.objects++
				h.length += lengths[l.newRef[ref].Num]
			}
		}
		if h.firstShared < 0 {
			h.firstShared = 0
		}
		hints[i] = h
	}

	minObjects, minLength := hints[0].objects, hints[0].length
	var maxObjects, maxLength, maxShared, maxIndex int64
	for _, h := range hints {
		minObjects, minLength = min(minObjects, h.objects), min(minLength, h.length)
		maxShared, maxIndex = max(maxShared, h.shared), max(maxIndex, h.firstShared)
	}
	for _, h := range hints {
		maxObjects, maxLength = max(maxObjects, h.objects-minObjects), max(maxLength, h.length-minLength)
	}
	bObjects, bLength, bShared, bIndex := bitsNeeded(maxObjects), bitsNeeded(maxLength), bitsNeeded(maxShared), bitsNeeded(maxIndex)

	var buf bytes.Buffer
	bw := &bitWriter{buf: &buf}
	bw.write(uint64(minObjects), 32)
	bw.write(uint64(offsets[l.newRef[l.pages[0]].Num]), 32)
	bw.write(uint64(bObjects), 16)
	bw.write(uint64(minLength), 32)
	bw.write(uint64(bLength), 16)
	// Content stream offsets and lengths are not recorded.
	for i := 0; i < 2; i++ {
		bw.write(0, 32)
		bw.write(0, 16)
	}
	bw.write(uint64(bShared), 16)
	bw.write(uint64(bIndex), 16)
	bw.write(0, 16)
	bw.write(0, 16)
	for _, h := range hints {
		bw.write(uint64(h.objects-minObjects), bObjects)
		bw.write(uint64(h.length-minLength), bLength)
		bw.write(uint64(h.shared), bShared)
		bw.write(uint64(h.firstShared), bIndex)
	}
	bw.flush()
	sharedAt := buf.Len()

	var firstNum int
	var firstShared, maxSharedLen int64
	if len(sharedList) > 0 {
		firstNum = l.newRef[sharedList[0]].Num
		firstShared = offsets[firstNum]
	}
	for _, ref := range sharedList {
		maxSharedLen = max(maxSharedLen, lengths[l.newRef[ref].Num])
	}
	bLen := bitsNeeded(maxSharedLen)
	bw.write(uint64(firstNum), 32)
	bw.write(uint64(firstShared), 32)
	bw.write(uint64(len(sharedList)), 32)
	bw.write(uint64(bLen), 16)
	for _, ref := range sharedList {
		bw.write(uint64(lengths[l.newRef[ref].Num]), bLen)
	}
	bw.flush()
	return buf.Bytes(), sharedAt
}

func bitsNeeded(v int64) uint {
	var n uint
	for ; v > 0; v >>= 1 {
		n++
	}
	return n
}

type bitWriter struct {
	buf  *bytes.Buffer
	acc  uint64
	bits uint
}

func (w *bitWriter) write(v uint64, n uint) {
	if n == 0 {
		return
	}
	w.acc = w.acc<<n | v&(1<<n-1)
	w.bits += n
	for w.bits >= 8 {
		w.bits -= 8
		w.buf.WriteByte(byte(w.acc >> w.bits))
	}
}

func (w *bitWriter) flush() {
	if w.bits > 0 {
		w.buf.WriteByte(byte(w.acc << (8 - w.bits)))
	}
	w.acc, w.bits = 0, 0
}

// linLayout is one placement of every object in the file.
type linLayout struct {
	offsets, lengths map[int]int64
	firstXRef        int64
	mainXRef         int64
	fileLen          int64
}

func (w *impl) writeLinearized(ctx context.Context, out io.Writer, header string, objects map[raw.ObjectRef]raw.Object, trailer *raw.DictObj, handler security.Handler, encRef raw.ObjectRef) error {
	root, _ := trailer.Lookup("Root")
	rootRef, ok := root.(raw.RefObj)
	if !ok {
		return errors.New("linearize: /Root is not a reference")
	}
	l := newLinearizer(objects, rootRef.R)
	if err := l.classify(); err != nil {
		return err
	}
	renumbered := l.renumber()
	if encRef.Num != 0 {
		encRef = l.newRef[encRef]
	}
	trailer = raw.Rewrite(raw.Clone(trailer), l.mapRef).(*raw.DictObj)
	trailer.Delete("Prev")

	bodies := make(map[int][]byte, len(renumbered))
	for ref, obj := range renumbered {
		data, err := w.prepare(ctx, ref, obj, handler, encRef)
		if err != nil {
			return err
		}
		bodies[ref.Num] = data
	}

	firstTrailer := raw.Dict()
	firstTrailer.SetKey("Size", raw.NumberInt(int64(l.size)))
	for _, k := range []string{"Root", "Info", "ID", "Encrypt"} {
		if v, ok := trailer.Lookup(k); ok {
			firstTrailer.SetKey(k, v)
		}
	}
	trailer.SetKey("Size", raw.NumberInt(int64(l.size)))

	lin := raw.Dict()
	lin.SetKey("Linearized", raw.NumberInt(1))
	lin.SetKey("O", raw.NumberInt(int64(l.newRef[l.pages[0]].Num)))
	lin.SetKey("N", raw.NumberInt(int64(len(l.pages))))
	for _, k := range []string{"L", "E", "T"} {
		lin.SetKey(k, raw.NumberInt(0))
	}
	lin.SetKey("H", raw.NewArray(raw.NumberInt(0), raw.NumberInt(0)))
	hint := raw.NewStream(raw.Dict(), nil)
	hint.Dict.SetKey("S", raw.NumberInt(0))

	// Offsets depend on the sizes of the linearization dictionary and the
	// hint stream, which record offsets; iterate to a fixed point.
	var layout linLayout
	var linBytes, hintBytes []byte
	converged := false
	for pass := 0; pass < 8 && !converged; pass++ {
		var err error
		linBytes, err = w.SerializeObject(l.linRef, lin)
		if err != nil {
			return err
		}
		if hintBytes, err = w.prepare(ctx, l.hintRef, hint, handler, encRef); err != nil {
			return err
		}
		bodies[l.linRef.Num], bodies[l.hintRef.Num] = linBytes, hintBytes
		trailer.SetKey("Prev", raw.NumberInt(0))
		layout = l.place(int64(len(header)), bodies, firstTrailer, trailer)
		trailer.SetKey("Prev", raw.NumberInt(layout.firstXRef))
		layout = l.place(int64(len(header)), bodies, firstTrailer, trailer)

		data, sharedAt := l.hintData(layout.offsets, layout.lengths)
		hintOff := layout.offsets[l.hintRef.Num]
		want := map[string]int64{
			"L": layout.fileLen,
			"E": hintOff,
			"T": layout.mainXRef,
		}
		converged = bytes.Equal(data, hint.Data)
		for k, v := range want {
			if cur, _ := lin.IntValue(k); cur != v {
				converged = false
				lin.SetKey(k, raw.NumberInt(v))
			}
		}
		h := raw.NewArray(raw.NumberInt(hintOff), raw.NumberInt(layout.lengths[l.hintRef.Num]))
		if !bytes.Equal(serializePrimitive(h), serializePrimitive(mustLookup(lin, "H"))) {
			converged = false
			lin.SetKey("H", h)
		}
		if cur, _ := hint.Dict.IntValue("S"); cur != int64(sharedAt) {
			converged = false
			hint.Dict.SetKey("S", raw.NumberInt(int64(sharedAt)))
		}
		hint.Data = data
	}
	if !converged {
		return errors.New("linearize: layout did not settle")
	}

	var buf bytes.Buffer
	buf.WriteString(header)
	buf.Write(bodies[l.linRef.Num])
	l.writeXRef(&buf, 0, l.firstMax+1, layout.offsets)
	buf.WriteString("trailer\n")
	writePrimitive(&buf, firstTrailer)
	buf.WriteString("\nstartxref\n0\n%%EOF\n")
	for n := 2; n < l.size; n++ {
		if data, ok := bodies[n]; ok {
			buf.Write(data)
			if err := w.written(ctx, raw.ObjectRef{Num: n}, len(data)); err != nil {
				return err
			}
		}
	}
	l.writeXRef(&buf, l.firstMax+1, l.size, layout.offsets)
	buf.WriteString("trailer\n")
	writePrimitive(&buf, trailer)
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", layout.mainXRef)
	if int64(buf.Len()) != layout.fileLen {
		return fmt.Errorf("linearize: wrote %d bytes, planned %d", buf.Len(), layout.fileLen)
	}
	_, err := out.Write(buf.Bytes())
	return err
}

// place computes offsets for the file order: header, linearization
// dictionary, first page xref, first page objects, hint stream, the rest,
// main xref.
func (l *linearizer) place(pos int64, bodies map[int][]byte, firstTrailer, trailer *raw.DictObj) linLayout {
	lay := linLayout{offsets: make(map[int]int64), lengths: make(map[int]int64)}
	for n, data := range bodies {
		lay.lengths[n] = int64(len(data))
	}
	lay.offsets[l.linRef.Num] = pos
	pos += lay.lengths[l.linRef.Num]
	lay.firstXRef = pos
	pos += xrefLen(0, l.firstMax+1)
	pos += int64(len("trailer\n") + len(serializePrimitive(firstTrailer)) + len("\nstartxref\n0\n%%EOF\n"))
	for n := 2; n < l.size; n++ {
		if _, ok := bodies[n]; ok {
			lay.offsets[n] = pos
			pos += lay.lengths[n]
		}
	}
	lay.mainXRef = pos
	pos += xrefLen(l.firstMax+1, l.size)
	pos += int64(len("trailer\n") + len(serializePrimitive(trailer)))
	pos += int64(len(fmt.Sprintf("\nstartxref\n%d\n%%%%EOF\n", lay.mainXRef)))
	lay.fileLen = pos
	return lay
}

func xrefLen(from, to int) int64 {
	return int64(len("xref\n") + len(fmt.Sprintf("%d %d\n", from, to-from)) + 20*(to-from))
}

func (l *linearizer) writeXRef(buf *bytes.Buffer, from, to int, offsets map[int]int64) {
	fmt.Fprintf(buf, "xref\n%d %d\n", from, to-from)
	for n := from; n < to; n++ {
		switch off, ok := offsets[n]; {
		case n == 0:
			buf.WriteString("0000000000 65535 f \n")
		case ok:
			fmt.Fprintf(buf, "%010d 00000 n \n", off)
		default:
			buf.WriteString("0000000000 00000 f \n")
		}
	}
}

func mustLookup(d *raw.DictObj, key string) raw.Object {
	v, _ := d.Lookup(key)
	return v
}
