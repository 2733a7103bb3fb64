package bridge

import "github.com/dop251/goja"

// opNames holds every entry point an Op was declared for. The gateway
// resolves them all when a Client starts.
var opNames = map[string]bool{}

func declare(name string) string {
	opNames[name] = true
	return name
}

// Op0 is an operation without arguments.
type Op0[R any] struct {
	Name string
	R    Decoder[R]
}

func op0[R any](name string, r Decoder[R]) Op0[R] {
	return Op0[R]{declare(name), r}
}

func (o Op0[R]) Call(c *Client) (R, error) {
	return finish(c, o.Name, nil, o.R)
}

type Op1[A, R any] struct {
	Name string
	A    Encoder[A]
	R    Decoder[R]
}

func op1[A, R any](name string, a Encoder[A], r Decoder[R]) Op1[A, R] {
	return Op1[A, R]{declare(name), a, r}
}

func (o Op1[A, R]) Call(c *Client, a A) (R, error) {
	return finish(c, o.Name, o.A(c.codec, a, make([]goja.Value, 0, 1)), o.R)
}

type Op2[A, B, R any] struct {
	Name string
	A    Encoder[A]
	B    Encoder[B]
	R    Decoder[R]
}

func op2[A, B, R any](name string, a Encoder[A], b Encoder[B], r Decoder[R]) Op2[A, B, R] {
	return Op2[A, B, R]{declare(name), a, b, r}
}

func (o Op2[A, B, R]) Call(c *Client, a A, b B) (R, error) {
	args := o.A(c.codec, a, make([]goja.Value, 0, 2))
	return finish(c, o.Name, o.B(c.codec, b, args), o.R)
}

type Op3[A, B, C, R any] struct {
	Name string
	A    Encoder[A]
	B    Encoder[B]
	C    Encoder[C]
	R    Decoder[R]
}

func op3[A, B, C, R any](name string, a Encoder[A], b Encoder[B], c Encoder[C], r Decoder[R]) Op3[A, B, C, R] {
	return Op3[A, B, C, R]{declare(name), a, b, c, r}
}

func (o Op3[A, B, C, R]) Call(cl *Client, a A, b B, c C) (R, error) {
	args := o.A(cl.codec, a, make([]goja.Value, 0, 3))
	args = o.B(cl.codec, b, args)
	return finish(cl, o.Name, o.C(cl.codec, c, args), o.R)
}

type Op4[A, B, C, D, R any] struct {
	Name string
	A    Encoder[A]
	B    Encoder[B]
	C    Encoder[C]
	D    Encoder[D]
	R    Decoder[R]
}

func op4[A, B, C, D, R any](name string, a Encoder[A], b Encoder[B], c Encoder[C], d Encoder[D], r Decoder[R]) Op4[A, B, C, D, R] {
	return Op4[A, B, C, D, R]{declare(name), a, b, c, d, r}
}

func (o Op4[A, B, C, D, R]) Call(cl *Client, a A, b B, c C, d D) (R, error) {
	args := o.A(cl.codec, a, make([]goja.Value, 0, 4))
	args = o.B(cl.codec, b, args)
	args = o.C(cl.codec, c, args)
	return finish(cl, o.Name, o.D(cl.codec, d, args), o.R)
}

type Op5[A, B, C, D, E, R any] struct {
	Name string
	A    Encoder[A]
	B    Encoder[B]
	C    Encoder[C]
	D    Encoder[D]
	E    Encoder[E]
	R    Decoder[R]
}

func op5[A, B, C, D, E, R any](name string, a Encoder[A], b Encoder[B], c Encoder[C], d Encoder[D], e Encoder[E], r Decoder[R]) Op5[A, B, C, D, E, R] {
	return Op5[A, B, C, D, E, R]{declare(name), a, b, c, d, e, r}
}

func (o Op5[A, B, C, D, E, R]) Call(cl *Client, a A, b B, c C, d D, e E) (R, error) {
	args := o.A(cl.codec, a, make([]goja.Value, 0, 5))
	args = o.B(cl.codec, b, args)
	args = o.C(cl.codec, c, args)
	args = o.D(cl.codec, d, args)
	return finish(cl, o.Name, o.E(cl.codec, e, args), o.R)
}

func finish[R any](c *Client, name string, args []goja.Value, dec Decoder[R]) (R, error) {
	var zero R
	if c.gw == nil {
		return zero, c.ch.fail(errClosed(name))
	}
	v, err := c.gw.invoke(name, args)
	if err != nil {
		return zero, err
	}
	return dec(c.codec, v), nil
}
