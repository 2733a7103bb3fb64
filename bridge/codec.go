package bridge

import (
	"strconv"

	"github.com/dop251/goja"
	"github.com/wudi/pdfbridge/observability"
)

// DefaultMaxBufferSize bounds buffers copied out of the engine.
const DefaultMaxBufferSize = 1 << 30

// Codec converts between Go values and runtime values.
type Codec struct {
	vm        *goja.Runtime
	maxBuffer int
	log       observability.Logger
}

// Encoder appends the runtime arguments for v.
type Encoder[T any] func(c *Codec, v T, args []goja.Value) []goja.Value

// Decoder converts a result. A value of the wrong shape decodes to the
// zero value.
type Decoder[T any] func(c *Codec, v goja.Value) T

// Unit is the result of an operation that returns nothing.
type Unit struct{}

func absent(v goja.Value) bool {
	return v == nil || goja.IsUndefined(v) || goja.IsNull(v)
}

func EncInt(c *Codec, v int, args []goja.Value) []goja.Value {
	return append(args, c.vm.ToValue(v))
}

func EncFloat(c *Codec, v float64, args []goja.Value) []goja.Value {
	return append(args, c.vm.ToValue(v))
}

func EncBool(c *Codec, v bool, args []goja.Value) []goja.Value {
	return append(args, c.vm.ToValue(v))
}

func EncString(c *Codec, v string, args []goja.Value) []goja.Value {
	return append(args, c.vm.ToValue(v))
}

// EncEnum passes an enumeration by ordinal.
func EncEnum[E ~int](c *Codec, v E, args []goja.Value) []goja.Value {
	return append(args, c.vm.ToValue(int(v)))
}

func EncDoc(c *Codec, v Doc, args []goja.Value) []goja.Value {
	return append(args, c.vm.ToValue(int64(v)))
}

func EncRange(c *Codec, v Range, args []goja.Value) []goja.Value {
	return append(args, c.vm.ToValue(int64(v)))
}

// EncBytes wraps b in an ArrayBuffer without copying. The engine copies
// whatever it keeps.
func EncBytes(c *Codec, b []byte, args []goja.Value) []goja.Value {
	return append(args, c.vm.ToValue(c.vm.NewArrayBuffer(b)))
}

// encList builds a runtime array element by element.
func encList[T any](c *Codec, vs []T, conv func(T) any, args []goja.Value) []goja.Value {
	items := make([]any, len(vs))
	for i, v := range vs {
		items[i] = conv(v)
	}
	return append(args, c.vm.NewArray(items...))
}

func EncInts(c *Codec, vs []int, args []goja.Value) []goja.Value {
	return encList(c, vs, func(v int) any { return int64(v) }, args)
}

func EncDocs(c *Codec, vs []Doc, args []goja.Value) []goja.Value {
	return encList(c, vs, func(v Doc) any { return int64(v) }, args)
}

func EncRanges(c *Codec, vs []Range, args []goja.Value) []goja.Value {
	return encList(c, vs, func(v Range) any { return int64(v) }, args)
}

// EncPosition passes anchor, x and y as three arguments.
func EncPosition(c *Codec, p Position, args []goja.Value) []goja.Value {
	args = EncEnum(c, p.Anchor, args)
	return append(args, c.vm.ToValue(p.X), c.vm.ToValue(p.Y))
}

// EncBox passes minx, maxx, miny and maxy.
func EncBox(c *Codec, b Box, args []goja.Value) []goja.Value {
	return append(args, c.vm.ToValue(b.MinX), c.vm.ToValue(b.MaxX), c.vm.ToValue(b.MinY), c.vm.ToValue(b.MaxY))
}

func DecUnit(*Codec, goja.Value) Unit { return Unit{} }

func DecInt(_ *Codec, v goja.Value) int {
	if absent(v) {
		return 0
	}
	return int(v.ToInteger())
}

func DecFloat(_ *Codec, v goja.Value) float64 {
	if absent(v) {
		return 0
	}
	return v.ToFloat()
}

func DecBool(_ *Codec, v goja.Value) bool {
	if absent(v) {
		return false
	}
	return v.ToBoolean()
}

func DecString(_ *Codec, v goja.Value) string {
	if absent(v) {
		return ""
	}
	return v.String()
}

// DecEnum decodes an ordinal.
func DecEnum[E ~int](c *Codec, v goja.Value) E {
	return E(DecInt(c, v))
}

func DecDoc(c *Codec, v goja.Value) Doc { return Doc(DecInt(c, v)) }

func DecRange(c *Codec, v goja.Value) Range { return Range(DecInt(c, v)) }

func (c *Codec) list(v goja.Value) []goja.Value {
	if absent(v) {
		return nil
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	n := int(obj.Get("length").ToInteger())
	out := make([]goja.Value, n)
	for i := range out {
		out[i] = obj.Get(strconv.Itoa(i))
	}
	return out
}

func DecInts(c *Codec, v goja.Value) []int {
	items := c.list(v)
	out := make([]int, len(items))
	for i, item := range items {
		out[i] = DecInt(c, item)
	}
	return out
}

// DecBox reads a 4-tuple of minx, maxx, miny, maxy by index.
func DecBox(c *Codec, v goja.Value) Box {
	items := c.list(v)
	if len(items) < 4 {
		return Box{}
	}
	return Box{
		MinX: DecFloat(c, items[0]),
		MaxX: DecFloat(c, items[1]),
		MinY: DecFloat(c, items[2]),
		MaxY: DecFloat(c, items[3]),
	}
}

// DecBytes copies an ArrayBuffer result into a new slice. A buffer over
// the size limit is dropped with a warning and decodes to nil.
func DecBytes(c *Codec, v goja.Value) []byte {
	if absent(v) {
		return nil
	}
	ab, ok := v.Export().(goja.ArrayBuffer)
	if !ok {
		return nil
	}
	src := ab.Bytes()
	if len(src) > c.maxBuffer {
		c.log.Warn("result buffer over limit",
			observability.Int("size", len(src)),
			observability.Int("limit", c.maxBuffer))
		return nil
	}
	out := make([]byte, len(src))
	copy(out, src)
	return out
}
