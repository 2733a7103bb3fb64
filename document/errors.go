package document

import (
	"errors"
	"fmt"

	"github.com/wudi/pdfbridge/ir/raw"
)

var (
	// ErrPageRange reports a page number outside the document.
	ErrPageRange = errors.New("page out of range")
	// ErrBadArgument reports an invalid parameter value.
	ErrBadArgument = errors.New("bad argument")
	// ErrMalformed reports document structure that cannot be interpreted.
	ErrMalformed = errors.New("malformed document")
	// ErrUnsupported reports a feature this package does not implement.
	ErrUnsupported = errors.New("unsupported")
	// ErrNotEncrypted is returned by operations that need an encrypted document.
	ErrNotEncrypted = errors.New("document is not encrypted")
)

// ObjectError ties a failure to one object.
type ObjectError struct {
	Ref raw.ObjectRef
	Err error
}

func (e *ObjectError) Error() string { return fmt.Sprintf("object %d: %v", e.Ref.Num, e.Err) }
func (e *ObjectError) Unwrap() error { return e.Err }
