package document

import (
	"bytes"
	"context"
	"io"

	"github.com/wudi/pdfbridge/fonts"
	"github.com/wudi/pdfbridge/security"
	"github.com/wudi/pdfbridge/writer"
)

// SaveOptions control Save.
type SaveOptions struct {
	// Linearize writes a linearized file. It takes precedence over the
	// object stream options.
	Linearize bool
	// MakeID replaces both /ID elements. Ignored for documents that keep
	// their original encryption, whose keys depend on the first element.
	MakeID bool
	// PreserveObjectStreams writes object streams when the source had them.
	PreserveObjectStreams bool
	// GenerateObjectStreams always writes object streams.
	GenerateObjectStreams bool
	// CompressObjectStreams compresses streams without filters too.
	CompressObjectStreams bool
	// Encrypt re-protects the output. When nil a document opened with a
	// password keeps its original protection.
	Encrypt *security.EncryptOptions
	// Demo stamps a notice at the foot of every page of the output.
	Demo bool
}

// DemoNotice is the text stamped by SaveOptions.Demo.
const DemoNotice = "Produced by pdfbridge in demo mode"

// Save writes the document. The document itself is not modified.
func (d *Document) Save(ctx context.Context, out io.Writer, opts SaveOptions) error {
	src := d
	if opts.Demo || opts.MakeID {
		c, err := d.Clone()
		if err != nil {
			return err
		}
		src = c
	}
	if opts.Demo {
		n, err := src.PageCount()
		if err != nil {
			return err
		}
		stamp := TextStamp{
			Text:        DemoNotice,
			Position:    Position{Anchor: Bottom, X: 10},
			Font:        fonts.Helvetica,
			Size:        8,
			Opacity:     1,
			LineSpacing: 1,
			Color:       [3]float64{0.5, 0.5, 0.5},
		}
		if err := src.AddText(allPages(n), stamp); err != nil {
			return err
		}
	}
	if opts.MakeID && src.protection == nil {
		src.trailer.Delete("ID")
	}
	rd, err := src.Raw()
	if err != nil {
		return err
	}
	cfg := writer.Config{
		Linearize:     opts.Linearize,
		ObjectStreams: opts.GenerateObjectStreams || (opts.PreserveObjectStreams && d.hadObjectStreams),
		Compress:      opts.CompressObjectStreams,
		Encryption:    opts.Encrypt,
	}
	if cfg.Encryption == nil && src.protection != nil {
		cfg.Keep = &writer.KeepEncryption{Dict: src.protection.Dict, Handler: src.protection.Handler}
	}
	return writer.New().Write(ctx, rd, out, cfg)
}

// Bytes is Save into memory.
func (d *Document) Bytes(ctx context.Context, opts SaveOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Save(ctx, &buf, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func allPages(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
