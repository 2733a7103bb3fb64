package filters

import (
	"bytes"
	stdlzw "compress/lzw"
	"context"
	"io"

	"github.com/wudi/pdfbridge/ir/raw"
	"golang.org/x/image/tiff/lzw"
)

type lzwDecoder struct{}

func (lzwDecoder) Name() string { return "LZWDecode" }
func NewLZWDecoder() Decoder    { return lzwDecoder{} }

// Decode handles both code-width schedules: the default EarlyChange 1,
// shared with TIFF, and EarlyChange 0, which is the GIF schedule.
func (lzwDecoder) Decode(ctx context.Context, in []byte, params raw.Dictionary) ([]byte, error) {
	early := true
	if d, ok := params.(*raw.DictObj); ok && d != nil {
		if v, ok := d.IntValue("EarlyChange"); ok && v == 0 {
			early = false
		}
	}
	var r io.ReadCloser
	if early {
		r = lzw.NewReader(bytes.NewReader(in), lzw.MSB, 8)
	} else {
		r = stdlzw.NewReader(bytes.NewReader(in), stdlzw.MSB, 8)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil && len(out) == 0 {
		return nil, err
	}
	return applyPredictor(out, params)
}
