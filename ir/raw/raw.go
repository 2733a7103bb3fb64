package raw

import (
	"context"
	"fmt"
	"io"
)

// ObjectRef uniquely identifies an indirect PDF object.
type ObjectRef struct {
	Num int
	Gen int
}

func (r ObjectRef) String() string { return fmt.Sprintf("%d %d R", r.Num, r.Gen) }

// Object is the base interface for all raw PDF objects.
type Object interface {
	Type() string
	IsIndirect() bool
}

// Dictionary represents a PDF dictionary object.
type Dictionary interface {
	Object
	Get(key Name) (Object, bool)
	Set(key Name, value Object)
	Keys() []Name
	Len() int
}

// Array represents a PDF array object.
type Array interface {
	Object
	Get(index int) (Object, bool)
	Len() int
	Append(obj Object)
}

// Stream represents a raw (undecoded) PDF stream.
type Stream interface {
	Object
	Dictionary() Dictionary
	RawData() []byte
	Length() int64
}

// Name represents a PDF name object.
type Name interface {
	Object
	Value() string
}

// Source resolves indirect objects that were not materialised at parse time.
type Source interface {
	Load(ctx context.Context, ref ObjectRef) (Object, error)
}

// Permissions describes allowed actions expressed in the parsed document.
type Permissions struct {
	Print, Modify, Copy, ModifyAnnotations, FillForms, ExtractAccessible, Assemble, PrintHighQuality bool
}

// AllPermissions grants every action.
func AllPermissions() Permissions {
	return Permissions{true, true, true, true, true, true, true, true}
}

// EncryptionInfo records how a parsed document was protected.
type EncryptionInfo struct {
	Filter          string
	V, R, Length    int
	EncryptMetadata bool
	Permissions     Permissions
	OwnerAuth       bool
}

// Document is the root container for raw PDF objects.
//
// When Lazy is set, only the trailer and the objects in Objects have been
// read; the remaining xref entries listed in Pending are loaded on demand.
type Document struct {
	Objects    map[ObjectRef]Object
	Trailer    *DictObj
	Version    string // e.g., "1.7"
	Encryption *EncryptionInfo
	Linearized bool
	Lazy       Source
	Pending    []ObjectRef
}

// Parser converts bytes into a raw.Document.
type Parser interface {
	Parse(ctx context.Context, r io.ReaderAt) (*Document, error)
}
