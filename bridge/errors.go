package bridge

import (
	"fmt"

	"github.com/wudi/pdfbridge/engine"
)

// Error codes reported by the engine. Values are stable.
const (
	CodeNone          = int(engine.CodeNone)
	CodeGeneric       = int(engine.CodeGeneric)
	CodeBadArgument   = int(engine.CodeBadArgument)
	CodeInvalidHandle = int(engine.CodeInvalidHandle)
	CodePageRange     = int(engine.CodePageRange)
	CodeParse         = int(engine.CodeParse)
	CodeEncryption    = int(engine.CodeEncryption)
	CodeIO            = int(engine.CodeIO)
	CodeUnsupported   = int(engine.CodeUnsupported)
	CodeVM            = int(engine.CodeVM)
)

// Error is a failed call.
type Error struct {
	Code    int
	Kind    string
	Op      string
	Message string
	// Cause is set when the runtime itself failed the call.
	Cause error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error with the same code, so errors.Is(err,
// ErrInvalidHandle) works for every operation.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func codeError(code int) *Error {
	return &Error{Code: code, Kind: string(engine.Code(code).Kind())}
}

// Sentinels for errors.Is.
var (
	ErrGeneric       = codeError(CodeGeneric)
	ErrBadArgument   = codeError(CodeBadArgument)
	ErrInvalidHandle = codeError(CodeInvalidHandle)
	ErrPageRange     = codeError(CodePageRange)
	ErrParse         = codeError(CodeParse)
	ErrEncryption    = codeError(CodeEncryption)
	ErrIO            = codeError(CodeIO)
	ErrUnsupported   = codeError(CodeUnsupported)
	ErrVM            = codeError(CodeVM)
)
