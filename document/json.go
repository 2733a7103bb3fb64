package document

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"unicode/utf8"

	"github.com/wudi/pdfbridge/filters"
	"github.com/wudi/pdfbridge/ir/raw"
	"github.com/wudi/pdfbridge/scanner"
)

// JSONOptions control JSON.
type JSONOptions struct {
	// ParseContent replaces page content stream data with operator lists.
	ParseContent bool
	// NoStreamData omits stream data.
	NoStreamData bool
	// Decompress decodes streams before output where possible.
	Decompress bool
}

// JSON dumps the object graph as an array of [number, object] pairs, the
// trailer first as object 0. Names are "/Name" strings, strings are
// {"S": text} or {"H": hex}, references are {"I": number} and streams
// are {"D": dict, "S"|"H": data} or {"D": dict, "O": operators}.
func (d *Document) JSON(opts JSONOptions) ([]byte, error) {
	if err := d.loadAll(); err != nil {
		return nil, err
	}
	content := make(map[raw.ObjectRef]bool)
	if opts.ParseContent {
		refs, err := d.pageRefs()
		if err != nil {
			return nil, err
		}
		for _, ref := range refs {
			pd, err := d.dict(raw.RefObj{R: ref})
			if err != nil || pd == nil {
				continue
			}
			list, err := d.contentList(pd)
			if err != nil {
				return nil, err
			}
			for _, item := range list {
				if r, ok := item.(raw.RefObj); ok {
					content[r.R] = true
				}
			}
		}
	}
	refs := make([]raw.ObjectRef, 0, len(d.objects))
	for ref := range d.objects {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Num < refs[j].Num })

	out := make([][2]any, 0, len(refs)+1)
	out = append(out, [2]any{0, jsonValue(d.trailer)})
	pipeline := filters.NewDefault(filters.Limits{})
	for _, ref := range refs {
		obj := d.objects[ref]
		st, ok := obj.(*raw.StreamObj)
		if !ok {
			out = append(out, [2]any{ref.Num, jsonValue(obj)})
			continue
		}
		dict := raw.Clone(st.Dict).(*raw.DictObj)
		data := st.Data
		names, params := filters.ExtractFilters(st.Dict)
		decoded := len(names) == 0
		if len(names) > 0 && (opts.Decompress || content[ref]) && pipeline.CanDecode(names) {
			if b, err := pipeline.Decode(context.Background(), data, names, params); err == nil {
				data, decoded = b, true
				dict.Delete("Filter")
				dict.Delete("DecodeParms")
			}
		}
		entry := map[string]any{"D": jsonValue(dict)}
		switch {
		case content[ref] && decoded:
			if ops, err := contentOps(data); err == nil {
				entry["O"] = ops
				break
			}
			fallthrough
		case !opts.NoStreamData:
			for k, v := range jsonString(data) {
				entry[k] = v
			}
		}
		out = append(out, [2]any{ref.Num, entry})
	}
	return json.MarshalIndent(out, "", " ")
}

func jsonString(b []byte) map[string]any {
	if utf8.Valid(b) {
		return map[string]any{"S": string(b)}
	}
	return map[string]any{"H": hex.EncodeToString(b)}
}

func jsonValue(obj raw.Object) any {
	switch v := obj.(type) {
	case raw.NameObj:
		return "/" + v.Val
	case raw.NumberObj:
		if v.IsInt {
			return v.I
		}
		return v.F
	case raw.BoolObj:
		return v.V
	case raw.StringObj:
		return jsonString(v.Bytes)
	case raw.RefObj:
		return map[string]any{"I": v.R.Num}
	case *raw.ArrayObj:
		items := make([]any, len(v.Items))
		for i, item := range v.Items {
			items[i] = jsonValue(item)
		}
		return items
	case *raw.DictObj:
		m := make(map[string]any, len(v.KV))
		for k, item := range v.KV {
			m["/"+k] = jsonValue(item)
		}
		return m
	case *raw.StreamObj:
		return map[string]any{"D": jsonValue(v.Dict)}
	}
	return nil
}

var errInlineImage = errors.New("inline image")

// contentOps splits a content stream into [operand..., "operator"] lists.
// Streams with inline images are not split.
func contentOps(data []byte) ([][]any, error) {
	tr := raw.NewTokenReader(scanner.NewBytes(data, scanner.Config{}))
	var ops [][]any
	var operands []any
	for {
		tok, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if tok.Type == scanner.TokenKeyword && tok.Str != "]" && tok.Str != ">>" {
			if tok.Str == "BI" {
				return nil, errInlineImage
			}
			ops = append(ops, append(operands, tok.Str))
			operands = nil
			continue
		}
		tr.Unread(tok)
		obj, err := raw.ParseObject(tr)
		if err != nil {
			return nil, err
		}
		operands = append(operands, jsonValue(obj))
	}
	return ops, nil
}
