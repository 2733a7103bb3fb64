package xref

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/wudi/pdfbridge/filters"
	"github.com/wudi/pdfbridge/ir/raw"
	"github.com/wudi/pdfbridge/recovery"
	"github.com/wudi/pdfbridge/scanner"
)

// Table maps object numbers to where their bodies live.
type Table interface {
	Lookup(objNum int) (offset int64, gen int, found bool)
	// ObjStream reports the containing object stream of a compressed object.
	ObjStream(objNum int) (streamNum, index int, ok bool)
	Objects() []int
	Type() string
	Trailer() *raw.DictObj
}

// Resolver locates and parses xref information in a PDF.
type Resolver interface {
	Resolve(ctx context.Context, r io.ReaderAt) (Table, error)
	Linearized() bool
	Repaired() bool
}

type ResolverConfig struct {
	MaxXRefDepth int
	Recovery     recovery.Strategy
}

// ErrNoXRef is returned when no cross-reference information can be located.
var ErrNoXRef = errors.New("xref not found")

// NewResolver returns a resolver that understands classic tables, xref
// streams, hybrid files and incremental updates.
func NewResolver(cfg ResolverConfig) Resolver {
	if cfg.MaxXRefDepth <= 0 {
		cfg.MaxXRefDepth = 64
	}
	if cfg.Recovery == nil {
		cfg.Recovery = recovery.Default()
	}
	return &resolver{cfg: cfg}
}

type EntryKind int

const (
	EntryFree EntryKind = iota
	EntryInUse
	EntryCompressed
)

type entry struct {
	kind   EntryKind
	offset int64 // byte offset, or containing stream number when compressed
	gen    int   // generation, or index within the stream when compressed
}

type table struct {
	kind    string
	entries map[int]entry
	trailer *raw.DictObj
}

func (t *table) Lookup(objNum int) (int64, int, bool) {
	e, ok := t.entries[objNum]
	if !ok || e.kind != EntryInUse {
		return 0, 0, false
	}
	return e.offset, e.gen, true
}

func (t *table) ObjStream(objNum int) (int, int, bool) {
	e, ok := t.entries[objNum]
	if !ok || e.kind != EntryCompressed {
		return 0, 0, false
	}
	return int(e.offset), e.gen, true
}

func (t *table) Objects() []int {
	out := make([]int, 0, len(t.entries))
	for k, e := range t.entries {
		if e.kind != EntryFree {
			out = append(out, k)
		}
	}
	sort.Ints(out)
	return out
}

func (t *table) Type() string          { return t.kind }
func (t *table) Trailer() *raw.DictObj { return t.trailer }

type resolver struct {
	cfg        ResolverConfig
	linearized bool
	repaired   bool
}

func (r *resolver) Linearized() bool { return r.linearized }
func (r *resolver) Repaired() bool   { return r.repaired }

func (r *resolver) Resolve(ctx context.Context, rd io.ReaderAt) (Table, error) {
	data := scanner.ReadAll(rd)
	r.linearized = detectLinearized(data)
	t, err := r.resolveChain(ctx, data)
	if err == nil {
		return t, nil
	}
	action := r.cfg.Recovery.OnError(ctx, err, recovery.Location{Component: "xref"})
	if action != recovery.ActionFix {
		return nil, err
	}
	repaired, rerr := repair(ctx, data)
	if rerr != nil {
		return nil, fmt.Errorf("%w (repair: %v)", err, rerr)
	}
	r.repaired = true
	return repaired, nil
}

func (r *resolver) resolveChain(ctx context.Context, data []byte) (*table, error) {
	start, err := findStartXRef(data)
	if err != nil {
		return nil, err
	}
	merged := &table{kind: "table", entries: make(map[int]entry)}
	seen := make(map[int64]bool)
	queue := []int64{start}
	for depth := 0; len(queue) > 0; depth++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if depth >= r.cfg.MaxXRefDepth {
			return nil, fmt.Errorf("xref chain deeper than %d", r.cfg.MaxXRefDepth)
		}
		off := queue[0]
		queue = queue[1:]
		if seen[off] {
			continue
		}
		seen[off] = true
		if off < 0 || off >= int64(len(data)) {
			return nil, fmt.Errorf("xref offset out of range: %d", off)
		}

		var section *table
		if bytes.HasPrefix(data[off:], []byte("xref")) {
			section, err = parseClassic(data, off)
		} else {
			section, err = parseStream(ctx, data, off)
		}
		if err != nil {
			return nil, err
		}
		// Sections are visited newest first; earlier visits win.
		for num, e := range section.entries {
			if _, ok := merged.entries[num]; !ok {
				merged.entries[num] = e
			}
		}
		if merged.trailer == nil {
			merged.trailer = section.trailer
			merged.kind = section.kind
		}
		if stm, ok := section.trailer.IntValue("XRefStm"); ok {
			queue = append([]int64{stm}, queue...)
		}
		if prev, ok := section.trailer.IntValue("Prev"); ok {
			queue = append(queue, prev)
		}
	}
	if merged.trailer == nil {
		return nil, ErrNoXRef
	}
	if _, ok := merged.trailer.Lookup("Root"); !ok {
		return nil, errors.New("trailer has no /Root")
	}
	merged.trailer.Delete("Prev")
	merged.trailer.Delete("XRefStm")
	return merged, nil
}

func findStartXRef(data []byte) (int64, error) {
	idx := bytes.LastIndex(data, []byte("startxref"))
	if idx < 0 {
		return 0, ErrNoXRef
	}
	s := scanner.NewBytes(data, scanner.Config{})
	if err := s.SeekTo(int64(idx + len("startxref"))); err != nil {
		return 0, err
	}
	tok, err := s.Next()
	if err != nil || tok.Type != scanner.TokenNumber || !tok.IsInt {
		return 0, errors.New("malformed startxref")
	}
	return tok.Int, nil
}

func parseClassic(data []byte, off int64) (*table, error) {
	s := scanner.NewBytes(data, scanner.Config{})
	if err := s.SeekTo(off + int64(len("xref"))); err != nil {
		return nil, err
	}
	t := &table{kind: "table", entries: make(map[int]entry)}
	for {
		tok, err := s.Next()
		if err != nil {
			return nil, fmt.Errorf("xref section at %d: %w", off, err)
		}
		if tok.Type == scanner.TokenKeyword && tok.Str == "trailer" {
			break
		}
		if tok.Type != scanner.TokenNumber || !tok.IsInt {
			return nil, fmt.Errorf("invalid xref subsection header at %d", tok.Pos)
		}
		first := int(tok.Int)
		countTok, err := s.Next()
		if err != nil || countTok.Type != scanner.TokenNumber {
			return nil, fmt.Errorf("invalid xref subsection count at %d", tok.Pos)
		}
		for i := 0; i < int(countTok.Int); i++ {
			offTok, err1 := s.Next()
			genTok, err2 := s.Next()
			kindTok, err3 := s.Next()
			if err := errors.Join(err1, err2, err3); err != nil {
				return nil, fmt.Errorf("unexpected end of xref section: %w", err)
			}
			if offTok.Type != scanner.TokenNumber || genTok.Type != scanner.TokenNumber || kindTok.Type != scanner.TokenKeyword {
				return nil, fmt.Errorf("invalid xref entry at %d", offTok.Pos)
			}
			e := entry{kind: EntryFree, offset: offTok.Int, gen: int(genTok.Int)}
			if kindTok.Str == "n" {
				e.kind = EntryInUse
			}
			t.entries[first+i] = e
		}
	}
	trailer, err := raw.ParseObject(raw.NewTokenReader(s))
	if err != nil {
		return nil, fmt.Errorf("parse trailer: %w", err)
	}
	dict, ok := trailer.(*raw.DictObj)
	if !ok {
		return nil, errors.New("trailer is not a dictionary")
	}
	t.trailer = dict
	return t, nil
}

func parseStream(ctx context.Context, data []byte, off int64) (*table, error) {
	s := scanner.NewBytes(data, scanner.Config{})
	if err := s.SeekTo(off); err != nil {
		return nil, err
	}
	obj, err := ReadIndirect(s)
	if err != nil {
		return nil, fmt.Errorf("xref stream at %d: %w", off, err)
	}
	stream, ok := obj.(*raw.StreamObj)
	if !ok {
		return nil, fmt.Errorf("no xref table or stream at %d", off)
	}
	if typ, _ := stream.Dict.NameValue("Type"); typ != "XRef" {
		return nil, fmt.Errorf("object at %d is not an xref stream", off)
	}
	names, params := filters.ExtractFilters(stream.Dict)
	body, err := filters.NewDefault(filters.Limits{}).Decode(ctx, stream.Data, names, params)
	if err != nil {
		return nil, fmt.Errorf("decode xref stream: %w", err)
	}

	widths, err := intArray(stream.Dict, "W")
	if err != nil || len(widths) != 3 {
		return nil, errors.New("xref stream has invalid /W")
	}
	size, _ := stream.Dict.IntValue("Size")
	index, err := intArray(stream.Dict, "Index")
	if err != nil || len(index) == 0 {
		index = []int64{0, size}
	}
	rowLen := int(widths[0] + widths[1] + widths[2])
	if rowLen <= 0 {
		return nil, errors.New("xref stream has zero-width rows")
	}

	t := &table{kind: "stream", entries: make(map[int]entry), trailer: stream.Dict}
	pos := 0
	for i := 0; i+1 < len(index); i += 2 {
		first, count := int(index[i]), int(index[i+1])
		for j := 0; j < count; j++ {
			if pos+rowLen > len(body) {
				return nil, errors.New("xref stream truncated")
			}
			row := body[pos : pos+rowLen]
			pos += rowLen
			typ := int64(1)
			if widths[0] > 0 {
				typ = field(row[:widths[0]])
			}
			f2 := field(row[widths[0] : widths[0]+widths[1]])
			f3 := field(row[widths[0]+widths[1]:])
			var e entry
			switch typ {
			case 0:
				e = entry{kind: EntryFree}
			case 1:
				e = entry{kind: EntryInUse, offset: f2, gen: int(f3)}
			case 2:
				e = entry{kind: EntryCompressed, offset: f2, gen: int(f3)}
			default:
				continue
			}
			t.entries[first+j] = e
		}
	}
	return t, nil
}

// ReadIndirect reads "n g obj ... endobj" at the scanner's position.
func ReadIndirect(s scanner.Scanner) (raw.Object, error) {
	numTok, err := s.Next()
	if err != nil {
		return nil, err
	}
	genTok, err := s.Next()
	if err != nil {
		return nil, err
	}
	objTok, err := s.Next()
	if err != nil {
		return nil, err
	}
	if numTok.Type != scanner.TokenNumber || genTok.Type != scanner.TokenNumber ||
		objTok.Type != scanner.TokenKeyword || objTok.Str != "obj" {
		return nil, fmt.Errorf("expected object header at %d", numTok.Pos)
	}
	return raw.ParseIndirectBody(raw.NewTokenReader(s))
}

func field(b []byte) int64 {
	var v int64
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return v
}

func intArray(d *raw.DictObj, key string) ([]int64, error) {
	o, ok := d.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("missing /%s", key)
	}
	arr, ok := o.(*raw.ArrayObj)
	if !ok {
		return nil, fmt.Errorf("/%s is not an array", key)
	}
	out := make([]int64, 0, len(arr.Items))
	for _, it := range arr.Items {
		n, ok := it.(raw.NumberObj)
		if !ok {
			return nil, fmt.Errorf("/%s has a non-number entry", key)
		}
		out = append(out, n.Int())
	}
	return out, nil
}

func detectLinearized(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(head, []byte("/Linearized"))
}
