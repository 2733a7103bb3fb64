package pagespec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrSyntax reports a malformed specification.
	ErrSyntax = errors.New("bad page specification")
	// ErrOutOfRange reports a page outside the document.
	ErrOutOfRange = errors.New("page out of range")
)

// Document is what a specification is resolved against.
type Document interface {
	PageCount() (int, error)
	// Landscape reports whether the page is wider than it is tall once
	// its rotation is applied.
	Landscape(page int) bool
}

// Count is a Document of n portrait pages.
type Count int

func (c Count) PageCount() (int, error) { return int(c), nil }
func (c Count) Landscape(int) bool      { return false }

// Spec is a compiled page specification, independent of any document.
type Spec struct {
	not    bool
	groups []group
}

type filter int

const (
	filterNone filter = iota
	filterOdd
	filterEven
)

type groupKind int

const (
	kindInterval groupKind = iota
	kindAll
	kindReverse
	kindPortrait
	kindLandscape
)

type bound struct {
	n       int
	end     bool // "end"
	fromEnd bool // "~n"
}

type group struct {
	kind     groupKind
	from, to bound
	filter   filter
}

// Compile parses spec without reference to a document. Words are
// case-insensitive and surrounding spaces are ignored.
func Compile(spec string) (Spec, error) {
	s := strings.TrimSpace(spec)
	var out Spec
	if len(s) >= 3 && strings.EqualFold(s[:3], "NOT") {
		out.not = true
		s = strings.TrimSpace(s[3:])
	}
	if s == "" {
		return Spec{}, fmt.Errorf("%w: empty", ErrSyntax)
	}
	for _, part := range strings.Split(s, ",") {
		g, err := parseGroup(strings.ToLower(strings.TrimSpace(part)))
		if err != nil {
			return Spec{}, fmt.Errorf("%w: %q: %v", ErrSyntax, part, err)
		}
		out.groups = append(out.groups, g)
	}
	return out, nil
}

// Validate checks spec syntactically. It cannot detect pages beyond the end
// of a particular document.
func Validate(spec string) error {
	_, err := Compile(spec)
	return err
}

// Parse compiles spec and resolves it against doc.
func Parse(spec string, doc Document) (Range, error) {
	c, err := Compile(spec)
	if err != nil {
		return Range{}, err
	}
	return c.Resolve(doc)
}

func parseGroup(s string) (group, error) {
	if s == "" {
		return group{}, errors.New("empty group")
	}
	switch s {
	case "all":
		return group{kind: kindAll}, nil
	case "odd":
		return group{kind: kindAll, filter: filterOdd}, nil
	case "even":
		return group{kind: kindAll, filter: filterEven}, nil
	case "reverse":
		return group{kind: kindReverse}, nil
	case "portrait":
		return group{kind: kindPortrait}, nil
	case "landscape":
		return group{kind: kindLandscape}, nil
	}
	var g group
	switch {
	case strings.HasSuffix(s, "odd"):
		g.filter, s = filterOdd, strings.TrimSpace(strings.TrimSuffix(s, "odd"))
	case strings.HasSuffix(s, "even"):
		g.filter, s = filterEven, strings.TrimSpace(strings.TrimSuffix(s, "even"))
	}
	from, to, isInterval := strings.Cut(s, "-")
	var err error
	if g.from, err = parseBound(from); err != nil {
		return group{}, err
	}
	g.to = g.from
	if isInterval {
		if g.to, err = parseBound(to); err != nil {
			return group{}, err
		}
	}
	return g, nil
}

func parseBound(s string) (bound, error) {
	s = strings.TrimSpace(s)
	if s == "end" {
		return bound{end: true}, nil
	}
	var b bound
	if strings.HasPrefix(s, "~") {
		b.fromEnd = true
		s = s[1:]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || strings.HasPrefix(s, "+") {
		return bound{}, fmt.Errorf("bad page number %q", s)
	}
	b.n = n
	return b, nil
}

func (b bound) resolve(n int) (int, error) {
	switch {
	case b.end:
		if n == 0 {
			return 0, fmt.Errorf("%w: end of empty document", ErrOutOfRange)
		}
		return n, nil
	case b.fromEnd:
		p := n - b.n + 1
		if p < 1 {
			return 0, fmt.Errorf("%w: ~%d of %d", ErrOutOfRange, b.n, n)
		}
		return p, nil
	}
	if b.n > n {
		return 0, fmt.Errorf("%w: %d of %d", ErrOutOfRange, b.n, n)
	}
	return b.n, nil
}

// Resolve evaluates the specification against doc. A failure to count
// the pages of doc is returned unchanged.
func (s Spec) Resolve(doc Document) (Range, error) {
	n, err := doc.PageCount()
	if err != nil {
		return Range{}, err
	}
	var pages []int
	for _, g := range s.groups {
		r, err := g.resolve(doc, n)
		if err != nil {
			return Range{}, err
		}
		pages = append(pages, r.pages...)
	}
	r := Range{pages: pages}
	if s.not {
		r = Complement(r, n)
	}
	return r, nil
}

func (g group) resolve(doc Document, n int) (Range, error) {
	var r Range
	switch g.kind {
	case kindAll:
		r = All(n)
	case kindReverse:
		r = Reverse(All(n))
	case kindPortrait:
		r = All(n).filter(func(p int) bool { return !doc.Landscape(p) })
	case kindLandscape:
		r = All(n).filter(doc.Landscape)
	default:
		a, err := g.from.resolve(n)
		if err != nil {
			return Range{}, err
		}
		b, err := g.to.resolve(n)
		if err != nil {
			return Range{}, err
		}
		r = Interval(a, b)
	}
	switch g.filter {
	case filterOdd:
		r = Odd(r)
	case filterEven:
		r = Even(r)
	}
	return r, nil
}
