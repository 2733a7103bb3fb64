// Package pagespec parses page specifications and combines page ranges.
//
// A Range is an ordered list of 1-based page numbers. Ranges are values:
// every combinator returns a new Range and leaves its inputs untouched.
package pagespec

import (
	"errors"
	"fmt"
)

// ErrIndex is returned by Get for an index outside the range.
var ErrIndex = errors.New("range index out of bounds")

type Range struct {
	pages []int
}

// Of builds a range holding pages in the given order.
func Of(pages ...int) Range {
	return Range{pages: append([]int(nil), pages...)}
}

// Interval returns the inclusive run a..b, descending when a > b.
func Interval(a, b int) Range {
	step := 1
	if a > b {
		step = -1
	}
	out := make([]int, 0, abs(b-a)+1)
	for p := a; ; p += step {
		out = append(out, p)
		if p == b {
			break
		}
	}
	return Range{pages: out}
}

// All returns 1..n.
func All(n int) Range {
	if n <= 0 {
		return Range{}
	}
	return Interval(1, n)
}

func (r Range) Len() int { return len(r.pages) }

// Pages returns a copy of the page list.
func (r Range) Pages() []int { return append([]int(nil), r.pages...) }

func (r Range) Get(i int) (int, error) {
	if i < 0 || i >= len(r.pages) {
		return 0, fmt.Errorf("%w: %d of %d", ErrIndex, i, len(r.pages))
	}
	return r.pages[i], nil
}

func (r Range) Contains(page int) bool {
	for _, p := range r.pages {
		if p == page {
			return true
		}
	}
	return false
}

func (r Range) Equal(o Range) bool {
	if len(r.pages) != len(o.pages) {
		return false
	}
	for i := range r.pages {
		if r.pages[i] != o.pages[i] {
			return false
		}
	}
	return true
}

func (r Range) filter(keep func(int) bool) Range {
	out := make([]int, 0, len(r.pages))
	for _, p := range r.pages {
		if keep(p) {
			out = append(out, p)
		}
	}
	return Range{pages: out}
}

func Even(r Range) Range { return r.filter(func(p int) bool { return p%2 == 0 }) }
func Odd(r Range) Range  { return r.filter(func(p int) bool { return p%2 == 1 }) }

// Union returns a's pages followed by the pages of b that a lacks.
func Union(a, b Range) Range {
	seen := a.set()
	out := append(make([]int, 0, a.Len()+b.Len()), a.pages...)
	for _, p := range b.pages {
		if !seen[p] {
			out = append(out, p)
		}
	}
	return Range{pages: out}
}

// Difference returns the pages of a that are not in b.
func Difference(a, b Range) Range {
	drop := b.set()
	return a.filter(func(p int) bool { return !drop[p] })
}

// Dedup keeps the first occurrence of each page.
func Dedup(r Range) Range {
	seen := make(map[int]bool, len(r.pages))
	return r.filter(func(p int) bool {
		if seen[p] {
			return false
		}
		seen[p] = true
		return true
	})
}

// Add appends page unless it is already present.
func Add(r Range, page int) Range {
	if r.Contains(page) {
		return Of(r.pages...)
	}
	return Range{pages: append(r.Pages(), page)}
}

// Complement returns the pages 1..n missing from r, ascending.
func Complement(r Range, n int) Range {
	return Difference(All(n), r)
}

// Reverse returns the pages of r in reverse order.
func Reverse(r Range) Range {
	out := make([]int, len(r.pages))
	for i, p := range r.pages {
		out[len(out)-1-i] = p
	}
	return Range{pages: out}
}

func (r Range) set() map[int]bool {
	m := make(map[int]bool, len(r.pages))
	for _, p := range r.pages {
		m[p] = true
	}
	return m
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
