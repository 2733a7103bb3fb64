package raw

import (
	"fmt"

	"github.com/wudi/pdfbridge/scanner"
)

// ParseIndirectBody reads an object after its "n g obj" header, including a
// trailing stream payload and the optional endobj keyword.
func ParseIndirectBody(tr *TokenReader) (Object, error) {
	obj, err := ParseObject(tr)
	if err != nil {
		return nil, err
	}
	if dict, ok := obj.(*DictObj); ok {
		if n, ok := dict.IntValue("Length"); ok {
			tr.SetStreamLengthHint(n)
		}
		if streamTok, err := tr.Next(); err == nil {
			if streamTok.Type == scanner.TokenStream {
				obj = NewStream(dict, copyBytes(streamTok.Bytes))
			} else {
				tr.Unread(streamTok)
			}
		}
		tr.SetStreamLengthHint(-1)
	}
	if t, err := tr.Next(); err == nil {
		if t.Type != scanner.TokenKeyword || t.Str != "endobj" {
			tr.Unread(t)
		}
	}
	return obj, nil
}

// ParseObject reads one direct object from the token stream.
func ParseObject(tr *TokenReader) (Object, error) {
	tok, err := tr.Next()
	if err != nil {
		return nil, err
	}
	switch tok.Type {
	case scanner.TokenName:
		return NameObj{Val: tok.Str}, nil
	case scanner.TokenNumber:
		if tok.IsInt {
			return NumberObj{I: tok.Int, IsInt: true}, nil
		}
		return NumberObj{F: tok.Float}, nil
	case scanner.TokenBoolean:
		return BoolObj{V: tok.Bool}, nil
	case scanner.TokenNull:
		return NullObj{}, nil
	case scanner.TokenString:
		return StringObj{Bytes: copyBytes(tok.Bytes), Hex: tok.Hex}, nil
	case scanner.TokenArray:
		return parseArray(tr)
	case scanner.TokenDict:
		return parseDict(tr)
	case scanner.TokenRef:
		return RefObj{R: ObjectRef{Num: int(tok.Int), Gen: tok.Gen}}, nil
	}
	return nil, fmt.Errorf("unexpected token %v %q at %d", tok.Type, tok.Str, tok.Pos)
}

func parseArray(tr *TokenReader) (Object, error) {
	arr := &ArrayObj{}
	for {
		tok, err := tr.Next()
		if err != nil {
			return nil, err
		}
		if tok.Type == scanner.TokenKeyword && tok.Str == "]" {
			break
		}
		tr.Unread(tok)
		item, err := ParseObject(tr)
		if err != nil {
			return nil, err
		}
		arr.Append(item)
	}
	return arr, nil
}

func parseDict(tr *TokenReader) (Object, error) {
	d := Dict()
	for {
		tok, err := tr.Next()
		if err != nil {
			return nil, err
		}
		if tok.Type == scanner.TokenKeyword && tok.Str == ">>" {
			break
		}
		if tok.Type != scanner.TokenName {
			return nil, fmt.Errorf("expected name in dict, got %v at %d", tok.Type, tok.Pos)
		}
		val, err := ParseObject(tr)
		if err != nil {
			return nil, err
		}
		d.SetKey(tok.Str, val)
	}
	return d, nil
}

// TokenReader adds push-back to a scanner.
type TokenReader struct {
	s   scanner.Scanner
	buf []scanner.Token
}

func NewTokenReader(s scanner.Scanner) *TokenReader { return &TokenReader{s: s} }

func (r *TokenReader) Next() (scanner.Token, error) {
	if l := len(r.buf); l > 0 {
		t := r.buf[l-1]
		r.buf = r.buf[:l-1]
		return t, nil
	}
	return r.s.Next()
}

func (r *TokenReader) Unread(tok scanner.Token) {
	r.buf = append(r.buf, tok)
}

// SetStreamLengthHint passes a /Length value to the scanner for the next
// stream payload; a negative value clears it.
func (r *TokenReader) SetStreamLengthHint(n int64) {
	r.s.SetNextStreamLength(n)
}

func copyBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
