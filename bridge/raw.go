package bridge

import (
	"errors"
	"sort"

	"github.com/dop251/goja"
)

// ErrUnknownOperation is the cause of an Invoke with an undeclared name.
var ErrUnknownOperation = errors.New("unknown operation")

// Operations lists every declared operation name.
func (c *Client) Operations() []string {
	names := make([]string, 0, len(opNames))
	for name := range opNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke calls a declared operation with loosely typed arguments. []byte
// arguments travel as buffers; other values are converted by the runtime.
// Buffer results come back as []byte, handles and counts as int64.
func (c *Client) Invoke(name string, args ...any) (any, error) {
	if !opNames[name] {
		return nil, c.ch.fail(&Error{Code: CodeBadArgument, Kind: string(ErrBadArgument.Kind), Op: name,
			Message: name + ": unknown operation", Cause: ErrUnknownOperation})
	}
	if c.gw == nil {
		return nil, c.ch.fail(errClosed(name))
	}
	vals := make([]goja.Value, 0, len(args))
	for _, a := range args {
		if b, ok := a.([]byte); ok {
			vals = EncBytes(c.codec, b, vals)
			continue
		}
		vals = append(vals, c.codec.vm.ToValue(a))
	}
	v, err := c.gw.invoke(name, vals)
	if err != nil || absent(v) {
		return nil, err
	}
	if _, ok := v.Export().(goja.ArrayBuffer); ok {
		return DecBytes(c.codec, v), nil
	}
	return v.Export(), nil
}
