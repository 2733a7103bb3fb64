package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dop251/goja"
	"github.com/wudi/pdfbridge/document"
	"github.com/wudi/pdfbridge/pagespec"
)

// native implements one export. The returned value is converted by
// toValue; a nil result is undefined.
type native func(a *args) (any, error)

// args reads positional arguments. The first conversion failure is kept
// in err and later reads return zero values.
type args struct {
	e    *Engine
	call goja.FunctionCall
	err  error
}

func (a *args) arg(i int) goja.Value {
	if a.err != nil {
		return nil
	}
	v := a.call.Argument(i)
	if goja.IsUndefined(v) {
		a.err = badArgument("missing argument %d", i)
		return nil
	}
	return v
}

func (a *args) int(i int) int {
	v := a.arg(i)
	if v == nil {
		return 0
	}
	return int(v.ToInteger())
}

func (a *args) float(i int) float64 {
	v := a.arg(i)
	if v == nil {
		return 0
	}
	return v.ToFloat()
}

func (a *args) bool(i int) bool {
	v := a.arg(i)
	if v == nil {
		return false
	}
	return v.ToBoolean()
}

func (a *args) str(i int) string {
	v := a.arg(i)
	if v == nil {
		return ""
	}
	return v.String()
}

// bytes copies a buffer argument. The caller's ArrayBuffer is never
// retained.
func (a *args) bytes(i int) []byte {
	v := a.arg(i)
	if v == nil {
		return nil
	}
	switch b := v.Export().(type) {
	case goja.ArrayBuffer:
		return append([]byte(nil), b.Bytes()...)
	case []byte:
		return append([]byte(nil), b...)
	case string:
		return []byte(b)
	}
	a.err = badArgument("argument %d is not a buffer", i)
	return nil
}

func (a *args) ints(i int) []int {
	v := a.arg(i)
	if v == nil {
		return nil
	}
	var out []int
	if err := a.e.vm.ExportTo(v, &out); err != nil {
		a.err = badArgument("argument %d is not an integer array", i)
		return nil
	}
	return out
}

func (a *args) handle(i int) Handle {
	return Handle(uint32(a.int(i)))
}

func (a *args) doc(i int) *document.Document {
	h := a.handle(i)
	if a.err != nil {
		return nil
	}
	d, err := a.e.doc(h)
	if err != nil {
		a.err = err
	}
	return d
}

func (a *args) docs(i int) []*document.Document {
	hs := a.ints(i)
	out := make([]*document.Document, 0, len(hs))
	for _, h := range hs {
		if a.err != nil {
			return nil
		}
		d, err := a.e.doc(Handle(uint32(h)))
		if err != nil {
			a.err = err
			return nil
		}
		out = append(out, d)
	}
	return out
}

func (a *args) rng(i int) pagespec.Range {
	h := a.handle(i)
	if a.err != nil {
		return pagespec.Range{}
	}
	r, err := a.e.rng(h)
	if err != nil {
		a.err = err
	}
	return r
}

func (a *args) ranges(i int) [][]int {
	hs := a.ints(i)
	out := make([][]int, 0, len(hs))
	for _, h := range hs {
		if a.err != nil {
			return nil
		}
		r, err := a.e.rng(Handle(uint32(h)))
		if err != nil {
			a.err = err
			return nil
		}
		out = append(out, r.Pages())
	}
	return out
}

// pages reads a range argument as a page list.
func (a *args) pages(i int) []int {
	return a.rng(i).Pages()
}

// enum reads an ordinal and checks it against count.
func (a *args) enum(i int, what string, count int) int {
	n := a.int(i)
	if a.err == nil && (n < 0 || n >= count) {
		a.err = badArgument("%s %d out of range", what, n)
	}
	return n
}

// index checks an iteration index against a snapshot length.
func (a *args) index(i, n int) int {
	k := a.int(i)
	if a.err == nil && (k < 0 || k >= n) {
		a.err = badArgument("index %d of %d", k, n)
	}
	return k
}

func (e *Engine) toValue(v any) goja.Value {
	switch x := v.(type) {
	case nil:
		return goja.Undefined()
	case goja.Value:
		return x
	case Handle:
		return e.vm.ToValue(int64(x))
	case []byte:
		return e.vm.ToValue(e.vm.NewArrayBuffer(append([]byte(nil), x...)))
	case document.Box:
		return e.vm.NewArray(x.MinX, x.MaxX, x.MinY, x.MaxY)
	}
	return e.vm.ToValue(v)
}

// wrap adapts a native to goja's calling convention. Failures go to the
// error slot and the call returns undefined.
func (e *Engine) wrap(name string, fn native) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) (ret goja.Value) {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(*goja.Exception); ok {
					panic(r)
				}
				e.fail(NewError(CodeVM).Op(name).Detail("panic: %v", r).Build())
				ret = goja.Undefined()
			}
		}()
		a := &args{e: e, call: call}
		v, err := fn(a)
		if err == nil {
			err = a.err
		}
		if err != nil {
			e.fail(Classify(name, err))
			return goja.Undefined()
		}
		return e.toValue(v)
	}
}

// install registers the natives under __native and runs the prelude,
// which defines the pdf_ globals.
func (e *Engine) install() error {
	natives := e.vm.NewObject()
	table := e.exports()
	for name, fn := range table {
		if err := natives.Set(name, e.wrap(name, fn)); err != nil {
			return err
		}
	}
	if err := e.vm.Set("__native", natives); err != nil {
		return err
	}
	if err := e.vm.Set("__errorState", func(goja.FunctionCall) goja.Value {
		return e.vm.NewArray(int64(e.slot.code), e.slot.msg, e.slot.serial)
	}); err != nil {
		return err
	}
	if err := e.vm.Set("__clearError", func(goja.FunctionCall) goja.Value {
		e.clearError()
		return goja.Undefined()
	}); err != nil {
		return err
	}
	if err := e.vm.Set("__fault", func(call goja.FunctionCall) goja.Value {
		op := call.Argument(0).String()
		e.fail(NewError(CodeVM).Op(op).Detail("%s", call.Argument(1).String()).Build())
		return goja.Undefined()
	}); err != nil {
		return err
	}
	if _, err := e.vm.RunScript("prelude.js", prelude); err != nil {
		return err
	}
	for name := range table {
		if _, ok := e.Function("pdf_" + name); !ok {
			return fmt.Errorf("prelude did not define pdf_%s", name)
		}
	}
	return nil
}

// exportNames lists the pdf_ globals in sorted order.
func (e *Engine) exportNames() []string {
	var names []string
	for _, k := range e.vm.GlobalObject().Keys() {
		if strings.HasPrefix(k, "pdf_") {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

// Exports lists the names of every installed entry point.
func (e *Engine) Exports() []string {
	return append(e.exportNames(), "__errorState", "__clearError")
}

// exports collects every native.
func (e *Engine) exports() map[string]native {
	m := make(map[string]native)
	for _, part := range []map[string]native{
		e.lifecycleExports(),
		e.documentExports(),
		e.rangeExports(),
		e.fileExports(),
		e.geometryExports(),
		e.stampExports(),
		e.metadataExports(),
		e.labelExports(),
		e.attachmentExports(),
		e.objectExports(),
	} {
		for k, v := range part {
			m[k] = v
		}
	}
	return m
}
