package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/dop251/goja"
	"github.com/wudi/pdfbridge/document"
	"github.com/wudi/pdfbridge/filters"
	"github.com/wudi/pdfbridge/pagespec"
	"github.com/wudi/pdfbridge/security"
)

// Code is a stable error-slot code.
type Code int

const (
	CodeNone Code = iota
	CodeGeneric
	CodeBadArgument
	CodeInvalidHandle
	CodePageRange
	CodeParse
	CodeEncryption
	CodeIO
	CodeUnsupported
	CodeVM
)

// Kind names a code for logs and messages.
type Kind string

const (
	KindNone          Kind = "none"
	KindGeneric       Kind = "generic"
	KindBadArgument   Kind = "bad_argument"
	KindInvalidHandle Kind = "invalid_handle"
	KindPageRange     Kind = "page_range"
	KindParse         Kind = "parse"
	KindEncryption    Kind = "encryption"
	KindIO            Kind = "io"
	KindUnsupported   Kind = "unsupported"
	KindVM            Kind = "vm_fault"
)

var kinds = [...]Kind{KindNone, KindGeneric, KindBadArgument, KindInvalidHandle, KindPageRange, KindParse, KindEncryption, KindIO, KindUnsupported, KindVM}

// Kind returns the name of c.
func (c Code) Kind() Kind {
	if c < 0 || int(c) >= len(kinds) {
		return KindGeneric
	}
	return kinds[c]
}

// Error is a failed engine operation.
type Error struct {
	Code   Code
	Kind   Kind
	Op     string
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// ErrorBuilder constructs an Error.
type ErrorBuilder struct {
	err Error
}

// NewError starts an error with the given code.
func NewError(code Code) *ErrorBuilder {
	return &ErrorBuilder{err: Error{Code: code, Kind: code.Kind()}}
}

func (b *ErrorBuilder) Op(op string) *ErrorBuilder {
	b.err.Op = op
	return b
}

func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

func (b *ErrorBuilder) Detail(msg string, args ...any) *ErrorBuilder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

func (b *ErrorBuilder) Build() *Error {
	e := b.err
	return &e
}

// Classify turns any error from the document layer into an *Error.
func Classify(op string, err error) *Error {
	if err == nil {
		return nil
	}
	var ee *Error
	if errors.As(err, &ee) {
		if ee.Op == "" {
			c := *ee
			c.Op = op
			return &c
		}
		return ee
	}
	return NewError(codeOf(err)).Op(op).Cause(err).Build()
}

func codeOf(err error) Code {
	var interrupted *goja.InterruptedError
	var pathErr *fs.PathError
	switch {
	case errors.Is(err, document.ErrPageRange), errors.Is(err, pagespec.ErrOutOfRange),
		errors.Is(err, pagespec.ErrSyntax), errors.Is(err, pagespec.ErrIndex):
		return CodePageRange
	case errors.Is(err, document.ErrBadArgument):
		return CodeBadArgument
	case errors.Is(err, security.ErrBadPassword), errors.Is(err, document.ErrNotEncrypted):
		return CodeEncryption
	case errors.Is(err, document.ErrMalformed):
		return CodeParse
	case errors.Is(err, document.ErrUnsupported), errors.Is(err, filters.ErrUnsupported):
		return CodeUnsupported
	case errors.As(err, &pathErr), errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return CodeIO
	case errors.As(err, &interrupted):
		return CodeVM
	}
	return CodeGeneric
}

func badArgument(format string, args ...any) *Error {
	return NewError(CodeBadArgument).Detail(format, args...).Build()
}
