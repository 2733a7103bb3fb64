package scanner

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func newScanner(t *testing.T, data string, cfg Config) Scanner {
	t.Helper()
	return New(bytes.NewReader([]byte(data)), cfg)
}

func nextToken(t *testing.T, s Scanner) Token {
	t.Helper()
	tok, err := s.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return tok
}

func TestScanner_BasicTokens(t *testing.T) {
	s := newScanner(t, "%PDF-1.7\n1 0 obj\n<< /Name /Value /Nums [1 2 3] /Flag true /Null null >>\nendobj", Config{})

	want := []struct {
		typ TokenType
		str string
		num int64
	}{
		{TokenNumber, "", 1}, {TokenNumber, "", 0}, {TokenKeyword, "obj", 0},
		{TokenDict, "", 0},
		{TokenName, "Name", 0}, {TokenName, "Value", 0},
		{TokenName, "Nums", 0}, {TokenArray, "", 0},
		{TokenNumber, "", 1}, {TokenNumber, "", 2}, {TokenNumber, "", 3}, {TokenKeyword, "]", 0},
		{TokenName, "Flag", 0}, {TokenBoolean, "", 0},
		{TokenName, "Null", 0}, {TokenNull, "", 0},
		{TokenKeyword, ">>", 0}, {TokenKeyword, "endobj", 0},
	}
	for i, w := range want {
		tok := nextToken(t, s)
		if tok.Type != w.typ {
			t.Fatalf("token %d: expected type %v, got %+v", i, w.typ, tok)
		}
		switch w.typ {
		case TokenNumber:
			if !tok.IsInt || tok.Int != w.num {
				t.Fatalf("token %d: expected integer %d, got %+v", i, w.num, tok)
			}
		case TokenName, TokenKeyword:
			if tok.Str != w.str {
				t.Fatalf("token %d: expected %q, got %+v", i, w.str, tok)
			}
		case TokenBoolean:
			if !tok.Bool {
				t.Fatalf("token %d: expected true, got %+v", i, tok)
			}
		}
	}
	if _, err := s.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF after endobj, got %v", err)
	}
}

func TestScanner_NameHexEscapes(t *testing.T) {
	s := newScanner(t, "/Name#20With#23Hash", Config{})
	tok := nextToken(t, s)
	if tok.Type != TokenName {
		t.Fatalf("expected name, got %+v", tok)
	}
	if tok.Str != "Name With#Hash" {
		t.Fatalf("unexpected name decode: %v", tok.Str)
	}
}

func TestScanner_LiteralStringEscapes(t *testing.T) {
	s := newScanner(t, "(Hi\\n\\050\\051\\t)", Config{})
	tok := nextToken(t, s)
	if tok.Type != TokenString {
		t.Fatalf("expected string, got %+v", tok)
	}
	if !bytes.Equal(tok.Bytes, []byte("Hi\n()\t")) {
		t.Fatalf("unexpected literal string: %q", tok.Bytes)
	}
}

func TestScanner_LiteralStringLineContinuation(t *testing.T) {
	s := newScanner(t, "(Line\\\r\ncontinued)", Config{})
	tok := nextToken(t, s)
	if tok.Type != TokenString {
		t.Fatalf("expected string, got %+v", tok)
	}
	if got := string(tok.Bytes); got != "Linecontinued" {
		t.Fatalf("unexpected literal string with continuation: %q", got)
	}
}

func TestScanner_HexStringOddLength(t *testing.T) {
	s := newScanner(t, "<48656c6c6f3>", Config{})
	tok := nextToken(t, s)
	want := []byte("Hello0")
	if tok.Type != TokenString || !bytes.Equal(tok.Bytes, want) {
		t.Fatalf("expected padded hex string %q, got %+v", want, tok)
	}
}

func TestScanner_ReferenceDetection(t *testing.T) {
	s := newScanner(t, "12 5 R %comment\n", Config{})
	tok := nextToken(t, s)
	if tok.Type != TokenRef {
		t.Fatalf("expected ref, got %+v", tok)
	}
	if tok.Int != 12 || tok.Gen != 5 {
		t.Fatalf("unexpected ref value: %+v", tok)
	}
}

func TestScanner_StreamWithLength(t *testing.T) {
	data := "stream\r\nabcde\r\nendstream"
	s := newScanner(t, data, Config{})
	s.SetNextStreamLength(5)
	tok := nextToken(t, s)
	if tok.Type != TokenStream {
		t.Fatalf("expected stream token, got %+v", tok)
	}
	if string(tok.Bytes) != "abcde" {
		t.Fatalf("unexpected stream payload: %q", tok.Bytes)
	}
}

func TestScanner_StreamFallbackToEndstream(t *testing.T) {
	data := "stream\nabc\r\nendstream\n"
	s := newScanner(t, data, Config{})
	tok := nextToken(t, s)
	if tok.Type != TokenStream {
		t.Fatalf("expected stream token, got %+v", tok)
	}
	if got := string(tok.Bytes); got != "abc" {
		t.Fatalf("unexpected stream payload: %q", got)
	}
}

func TestScanner_MaxStringLength(t *testing.T) {
	s := newScanner(t, "<000102>", Config{MaxStringLength: 2})
	if _, err := s.Next(); !errors.Is(err, ErrLimit) {
		t.Fatalf("expected limit error for hex string, got %v", err)
	}
	s = newScanner(t, "(abcdef)", Config{MaxStringLength: 3})
	if _, err := s.Next(); !errors.Is(err, ErrLimit) {
		t.Fatalf("expected limit error for literal string, got %v", err)
	}
}

func TestScanner_StreamCRPrecedingEndstream(t *testing.T) {
	s := newScanner(t, "stream\ndata\rendstream\r", Config{})
	tok := nextToken(t, s)
	if tok.Type != TokenStream || string(tok.Bytes) != "data" {
		t.Fatalf("unexpected stream token: %+v", tok)
	}
}

func TestScanner_MaxStreamLength(t *testing.T) {
	s := newScanner(t, "stream\nabcdef\nendstream", Config{MaxStreamLength: 3})
	s.SetNextStreamLength(6)
	if _, err := s.Next(); !errors.Is(err, ErrLimit) {
		t.Fatalf("expected stream limit error, got %v", err)
	}
}

func TestScanner_WrongLengthHintFallsBack(t *testing.T) {
	s := newScanner(t, "stream\nabcdef\nendstream", Config{})
	s.SetNextStreamLength(2)
	tok := nextToken(t, s)
	if string(tok.Bytes) != "abcdef" {
		t.Fatalf("expected fallback to endstream search, got %q", tok.Bytes)
	}
}

func TestScanner_UnterminatedStrings(t *testing.T) {
	for _, in := range []string{"(abc", "<abc"} {
		s := newScanner(t, in, Config{})
		if _, err := s.Next(); !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Fatalf("%s: expected unexpected EOF, got %v", in, err)
		}
	}
}

func TestScanner_SeekTo(t *testing.T) {
	s := NewBytes([]byte("1 0 obj 42 endobj"), Config{})
	if err := s.SeekTo(8); err != nil {
		t.Fatalf("seek: %v", err)
	}
	tok := nextToken(t, s)
	if tok.Type != TokenNumber || tok.Int != 42 {
		t.Fatalf("expected 42 after seek, got %+v", tok)
	}
	if err := s.SeekTo(1000); err == nil {
		t.Fatalf("expected out of range seek error")
	}
}
