package filters

import (
	"bytes"
	"compress/flate"
	"context"
	"errors"
	"testing"

	"github.com/wudi/pdfbridge/ir/raw"
)

func TestFlateDecodeZlib(t *testing.T) {
	dec := NewFlateDecoder()
	out, err := dec.Decode(context.Background(), Deflate([]byte("hello world")), nil)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if string(out) != "hello world" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestFlateDecodeBareDeflate(t *testing.T) {
	var buf bytes.Buffer
	w, _ := flate.NewWriter(&buf, flate.BestSpeed)
	w.Write([]byte("hello world"))
	w.Close()

	out, err := NewFlateDecoder().Decode(context.Background(), buf.Bytes(), nil)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if string(out) != "hello world" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestFlateDecodeWithPNGPredictor(t *testing.T) {
	// Two rows of three columns, Up filter on the second row.
	rows := []byte{0, 1, 2, 3, 2, 1, 1, 1}
	params := raw.Dict()
	params.SetKey("Predictor", raw.NumberInt(12))
	params.SetKey("Columns", raw.NumberInt(3))

	out, err := NewFlateDecoder().Decode(context.Background(), Deflate(rows), params)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	want := []byte{1, 2, 3, 2, 3, 4}
	if !bytes.Equal(out, want) {
		t.Fatalf("expected %v, got %v", want, out)
	}
}

func TestRunLengthDecode(t *testing.T) {
	in := []byte{2, 'a', 'b', 'c', 254, 'z', 128}
	out, err := NewRunLengthDecoder().Decode(context.Background(), in, nil)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if string(out) != "abczzz" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestASCIIDecoders(t *testing.T) {
	out, err := NewASCIIHexDecoder().Decode(context.Background(), []byte("48 65 6C6C 6F>"), nil)
	if err != nil || string(out) != "Hello" {
		t.Fatalf("hex decode: %q %v", out, err)
	}
	out, err = NewASCII85Decoder().Decode(context.Background(), []byte("<~87cURD]i,\"Ebo7~>"), nil)
	if err != nil || string(out) != "Hello World" {
		t.Fatalf("ascii85 decode: %q %v", out, err)
	}
}

func TestPipelineUnknownFilter(t *testing.T) {
	p := NewDefault(Limits{})
	if p.CanDecode([]string{"FlateDecode", "DCTDecode"}) {
		t.Fatalf("DCTDecode should not be decodable")
	}
	_, err := p.Decode(context.Background(), []byte("x"), []string{"DCTDecode"}, nil)
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestExtractFilters(t *testing.T) {
	d := raw.Dict()
	d.SetKey("Filter", raw.NewArray(raw.NameLiteral("ASCIIHexDecode"), raw.NameLiteral("FlateDecode")))
	names, params := ExtractFilters(d)
	if len(names) != 2 || names[1] != "FlateDecode" {
		t.Fatalf("unexpected names %v", names)
	}
	if len(params) != 0 {
		t.Fatalf("expected no params, got %d", len(params))
	}
}

func TestLZWDecodeEarlyChange(t *testing.T) {
	// "-----A---B" from the LZWDecode example, with EarlyChange 1.
	in := []byte{0x80, 0x0B, 0x60, 0x50, 0x22, 0x0C, 0x0C, 0x85, 0x01}
	out, err := NewLZWDecoder().Decode(context.Background(), in, nil)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if string(out) != "-----A---B" {
		t.Fatalf("unexpected output: %q", out)
	}
}
