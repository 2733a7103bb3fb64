package writer

import (
	"context"
	"io"

	"github.com/wudi/pdfbridge/ir/raw"
	"github.com/wudi/pdfbridge/security"
)

const DefaultVersion = "1.7"

type Config struct {
	// Version overrides the header version; empty keeps the document's.
	Version string
	// Compress flate-encodes streams that carry no filter.
	Compress bool
	// XRefStreams writes a cross-reference stream instead of a table.
	XRefStreams bool
	// ObjectStreams packs non-stream objects into object streams. It
	// implies XRefStreams.
	ObjectStreams bool
	// Deterministic derives /ID from content instead of randomness.
	Deterministic bool
	// Linearize orders the first page ahead of the rest and writes a
	// linearization dictionary, hint stream and two xref tables. Object
	// and xref streams are not used in linearized output.
	Linearize bool
	// Encryption, when set, protects the output with the standard handler.
	Encryption *security.EncryptOptions
	// Keep re-protects the output with the handler a document was opened
	// with. Ignored when Encryption is set.
	Keep *KeepEncryption
}

// KeepEncryption carries an authenticated handler and its /Encrypt
// dictionary. The document trailer must still hold the original /ID.
type KeepEncryption struct {
	Dict    *raw.DictObj
	Handler security.Handler
}

type Writer interface {
	Write(ctx context.Context, doc *raw.Document, out io.Writer, cfg Config) error
	SerializeObject(ref raw.ObjectRef, obj raw.Object) ([]byte, error)
}

type Interceptor interface {
	BeforeWrite(ctx context.Context, ref raw.ObjectRef, obj raw.Object) error
	AfterWrite(ctx context.Context, ref raw.ObjectRef, bytesWritten int64) error
}

type WriterBuilder struct{ interceptors []Interceptor }

func (b *WriterBuilder) WithInterceptor(i Interceptor) *WriterBuilder {
	b.interceptors = append(b.interceptors, i)
	return b
}
func (b *WriterBuilder) Build() Writer { return &impl{interceptors: b.interceptors} }

// New returns a writer without interceptors.
func New() Writer { return (&WriterBuilder{}).Build() }
