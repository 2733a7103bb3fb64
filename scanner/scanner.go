package scanner

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
)

type TokenType int

const (
	TokenDict    TokenType = iota // '<<'
	TokenArray                    // '['
	TokenName                     // '/Name'
	TokenString                   // literal or hex string
	TokenNumber                   // numeric value
	TokenBoolean                  // true/false
	TokenNull                     // null
	TokenRef                      // indirect ref '5 0 R'
	TokenStream                   // stream payload following 'stream'
	TokenKeyword                  // other keywords (obj, endobj, >>, ], etc.)
)

func (t TokenType) String() string {
	switch t {
	case TokenDict:
		return "dict"
	case TokenArray:
		return "array"
	case TokenName:
		return "name"
	case TokenString:
		return "string"
	case TokenNumber:
		return "number"
	case TokenBoolean:
		return "boolean"
	case TokenNull:
		return "null"
	case TokenRef:
		return "ref"
	case TokenStream:
		return "stream"
	default:
		return "keyword"
	}
}

// Token is one lexical item. Which payload field is set depends on Type:
// Str for names and keywords, Bytes for strings and streams, Int/Float for
// numbers, Int/Gen for references.
type Token struct {
	Type  TokenType
	Str   string
	Bytes []byte
	Int   int64
	Float float64
	IsInt bool
	Bool  bool
	Gen   int
	Hex   bool
	Pos   int64
}

type Scanner interface {
	Next() (Token, error)
	Position() int64
	SeekTo(offset int64) error
	SetNextStreamLength(n int64)
}

type Config struct {
	MaxStringLength int64
	MaxStreamLength int64
}

var ErrLimit = errors.New("scanner limit exceeded")

type ReaderAt interface {
	ReadAt(p []byte, off int64) (n int, err error)
}

type pdfScanner struct {
	data          []byte
	pos           int64
	cfg           Config
	nextStreamLen int64
}

// New loads the entire ReaderAt into memory and returns a scanner.
func New(r ReaderAt, cfg Config) Scanner {
	return NewBytes(ReadAll(r), cfg)
}

// NewBytes scans data in place.
func NewBytes(data []byte, cfg Config) Scanner {
	return &pdfScanner{data: data, cfg: cfg, nextStreamLen: -1}
}

// ReadAll drains a ReaderAt from offset zero.
func ReadAll(r ReaderAt) []byte {
	if b, ok := r.(interface{ Bytes() []byte }); ok {
		return b.Bytes()
	}
	var buf bytes.Buffer
	const chunk = int64(32 * 1024)
	tmp := make([]byte, chunk)
	for off := int64(0); ; off += chunk {
		n, err := r.ReadAt(tmp, off)
		if n > 0 {
			buf.Write(tmp[:n])
		}
		if err != nil || int64(n) < chunk {
			break
		}
	}
	return buf.Bytes()
}

func (s *pdfScanner) Position() int64 { return s.pos }

func (s *pdfScanner) SeekTo(offset int64) error {
	if offset < 0 || offset > int64(len(s.data)) {
		return fmt.Errorf("seek to %d out of range", offset)
	}
	s.pos = offset
	return nil
}

func (s *pdfScanner) SetNextStreamLength(n int64) { s.nextStreamLen = n }

func (s *pdfScanner) Next() (Token, error) {
	s.skipWSAndComments()
	if s.pos >= int64(len(s.data)) {
		return Token{}, io.EOF
	}
	start := s.pos
	c := s.data[s.pos]
	switch c {
	case '<':
		if s.peek(1) == '<' {
			s.pos += 2
			return Token{Type: TokenDict, Str: "<<", Pos: start}, nil
		}
		return s.scanHexString()
	case '>':
		if s.peek(1) == '>' {
			s.pos += 2
			return Token{Type: TokenKeyword, Str: ">>", Pos: start}, nil
		}
		s.pos++
		return Token{Type: TokenKeyword, Str: ">", Pos: start}, nil
	case '[':
		s.pos++
		return Token{Type: TokenArray, Str: "[", Pos: start}, nil
	case ']':
		s.pos++
		return Token{Type: TokenKeyword, Str: "]", Pos: start}, nil
	case '{', '}':
		s.pos++
		return Token{Type: TokenKeyword, Str: string(c), Pos: start}, nil
	case '(':
		return s.scanLiteralString()
	case '/':
		return s.scanName()
	}
	if isDigitStart(c) {
		return s.scanNumberOrRef()
	}
	return s.scanKeyword()
}

func (s *pdfScanner) peek(n int64) byte {
	if s.pos+n >= int64(len(s.data)) {
		return 0
	}
	return s.data[s.pos+n]
}

func (s *pdfScanner) skipWSAndComments() {
	for s.pos < int64(len(s.data)) {
		c := s.data[s.pos]
		if isWhitespace(c) {
			s.pos++
			continue
		}
		if c == '%' {
			for s.pos < int64(len(s.data)) && !isEOL(s.data[s.pos]) {
				s.pos++
			}
			continue
		}
		return
	}
}

func (s *pdfScanner) scanName() (Token, error) {
	start := s.pos
	s.pos++ // '/'
	var b []byte
	for s.pos < int64(len(s.data)) {
		c := s.data[s.pos]
		if isWhitespace(c) || isDelimiter(c) {
			break
		}
		if c == '#' && s.pos+2 < int64(len(s.data)) && isHex(s.data[s.pos+1]) && isHex(s.data[s.pos+2]) {
			b = append(b, fromHex(s.data[s.pos+1])<<4|fromHex(s.data[s.pos+2]))
			s.pos += 3
			continue
		}
		b = append(b, c)
		s.pos++
	}
	return Token{Type: TokenName, Str: string(b), Pos: start}, nil
}

func (s *pdfScanner) scanLiteralString() (Token, error) { /* PDF 7.3.4.2 */
	start := s.pos
	s.pos++ // '('
	depth := 1
	var out []byte
	for s.pos < int64(len(s.data)) {
		if s.cfg.MaxStringLength > 0 && int64(len(out)) > s.cfg.MaxStringLength {
			return Token{}, ErrLimit
		}
		c := s.data[s.pos]
		switch c {
		case '\\':
			s.pos++
			if s.pos >= int64(len(s.data)) {
				return Token{}, io.ErrUnexpectedEOF
			}
			e := s.data[s.pos]
			switch {
			case e >= '0' && e <= '7':
				v := 0
				for i := 0; i < 3 && s.pos < int64(len(s.data)); i++ {
					d := s.data[s.pos]
					if d < '0' || d > '7' {
						break
					}
					v = v*8 + int(d-'0')
					s.pos++
				}
				out = append(out, byte(v))
				continue
			case e == '\r':
				s.pos++
				if s.pos < int64(len(s.data)) && s.data[s.pos] == '\n' {
					s.pos++
				}
				continue
			case e == '\n':
				s.pos++
				continue
			default:
				out = append(out, translateEscape(e))
			}
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				s.pos++
				return Token{Type: TokenString, Bytes: out, Pos: start}, nil
			}
			out = append(out, c)
		default:
			out = append(out, c)
		}
		s.pos++
	}
	return Token{}, io.ErrUnexpectedEOF
}

func (s *pdfScanner) scanHexString() (Token, error) {
	start := s.pos
	s.pos++ // '<'
	var out []byte
	var hi byte
	half := false
	for s.pos < int64(len(s.data)) {
		c := s.data[s.pos]
		s.pos++
		if c == '>' {
			if half {
				out = append(out, hi<<4)
			}
			return Token{Type: TokenString, Bytes: out, Hex: true, Pos: start}, nil
		}
		if isWhitespace(c) {
			continue
		}
		if s.cfg.MaxStringLength > 0 && int64(len(out)) >= s.cfg.MaxStringLength {
			return Token{}, ErrLimit
		}
		if !isHex(c) {
			return Token{}, fmt.Errorf("invalid hex digit %q at %d", c, s.pos-1)
		}
		if half {
			out = append(out, hi<<4|fromHex(c))
			half = false
		} else {
			hi = fromHex(c)
			half = true
		}
	}
	return Token{}, io.ErrUnexpectedEOF
}

func (s *pdfScanner) scanKeyword() (Token, error) {
	start := s.pos
	for s.pos < int64(len(s.data)) {
		c := s.data[s.pos]
		if isWhitespace(c) || isDelimiter(c) {
			break
		}
		s.pos++
	}
	if s.pos == start {
		// A stray delimiter such as ')'.
		s.pos++
		return Token{Type: TokenKeyword, Str: string(s.data[start]), Pos: start}, nil
	}
	word := string(s.data[start:s.pos])
	switch word {
	case "true":
		return Token{Type: TokenBoolean, Bool: true, Str: word, Pos: start}, nil
	case "false":
		return Token{Type: TokenBoolean, Bool: false, Str: word, Pos: start}, nil
	case "null":
		return Token{Type: TokenNull, Str: word, Pos: start}, nil
	case "stream":
		return s.scanStream(start)
	}
	return Token{Type: TokenKeyword, Str: word, Pos: start}, nil
}

func (s *pdfScanner) scanStream(start int64) (Token, error) {
	// The keyword is followed by CRLF or LF.
	if s.pos < int64(len(s.data)) && s.data[s.pos] == '\r' {
		s.pos++
	}
	if s.pos < int64(len(s.data)) && s.data[s.pos] == '\n' {
		s.pos++
	}
	dataStart := s.pos
	hint := s.nextStreamLen
	s.nextStreamLen = -1
	if s.cfg.MaxStreamLength > 0 && hint > s.cfg.MaxStreamLength {
		return Token{}, ErrLimit
	}
	if hint >= 0 && dataStart+hint <= int64(len(s.data)) {
		end := dataStart + hint
		probe := end
		for probe < int64(len(s.data)) && isWhitespace(s.data[probe]) {
			probe++
		}
		if bytes.HasPrefix(s.data[probe:], []byte("endstream")) {
			s.pos = probe + int64(len("endstream"))
			return Token{Type: TokenStream, Bytes: s.data[dataStart:end], Pos: start}, nil
		}
	}
	idx := bytes.Index(s.data[dataStart:], []byte("endstream"))
	if idx < 0 {
		return Token{}, fmt.Errorf("unterminated stream at %d", start)
	}
	end := dataStart + int64(idx)
	s.pos = end + int64(len("endstream"))
	if end > dataStart && s.data[end-1] == '\n' {
		end--
	}
	if end > dataStart && s.data[end-1] == '\r' {
		end--
	}
	return Token{Type: TokenStream, Bytes: s.data[dataStart:end], Pos: start}, nil
}

func (s *pdfScanner) scanNumberOrRef() (Token, error) {
	start := s.pos
	tok, ok := s.scanNumber()
	if !ok {
		return s.scanKeyword()
	}
	if !tok.IsInt || tok.Int < 0 {
		return tok, nil
	}
	// Look ahead for "<gen> R".
	save := s.pos
	s.skipWSAndComments()
	if s.pos < int64(len(s.data)) && s.data[s.pos] >= '0' && s.data[s.pos] <= '9' {
		gen, ok := s.scanNumber()
		if ok && gen.IsInt {
			s.skipWSAndComments()
			if s.pos < int64(len(s.data)) && s.data[s.pos] == 'R' {
				after := s.peek(1)
				if after == 0 || isWhitespace(after) || isDelimiter(after) {
					s.pos++
					return Token{Type: TokenRef, Int: tok.Int, Gen: int(gen.Int), Pos: start}, nil
				}
			}
		}
	}
	s.pos = save
	return tok, nil
}

func (s *pdfScanner) scanNumber() (Token, bool) {
	start := s.pos
	for s.pos < int64(len(s.data)) {
		c := s.data[s.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' {
			s.pos++
			continue
		}
		break
	}
	text := string(s.data[start:s.pos])
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return Token{Type: TokenNumber, Int: i, IsInt: true, Pos: start}, true
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return Token{Type: TokenNumber, Float: f, Pos: start}, true
	}
	// Malformed numbers such as "--5" are read leniently as zero.
	if len(text) > 0 {
		return Token{Type: TokenNumber, IsInt: true, Pos: start}, true
	}
	s.pos = start
	return Token{}, false
}

func isDigitStart(c byte) bool { return c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9') }

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

func isEOL(c byte) bool { return c == '\r' || c == '\n' }

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func fromHex(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

func translateEscape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	default:
		return c
	}
}
