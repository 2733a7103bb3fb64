package pagespec

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type tenPages struct{}

func (tenPages) PageCount() (int, error) { return 10, nil }

// Pages 2 and 3 are landscape.
func (tenPages) Landscape(p int) bool { return p == 2 || p == 3 }

func TestParse(t *testing.T) {
	tests := []struct {
		spec string
		want []int
	}{
		{"all", []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{"1,3,5", []int{1, 3, 5}},
		{"3-1", []int{3, 2, 1}},
		{"9-end", []int{9, 10}},
		{"~1", []int{10}},
		{"~3-~1", []int{8, 9, 10}},
		{"even", []int{2, 4, 6, 8, 10}},
		{"odd", []int{1, 3, 5, 7, 9}},
		{"1-6odd", []int{1, 3, 5}},
		{"end-7even", []int{10, 8}},
		{"reverse", []int{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}},
		{"landscape", []int{2, 3}},
		{"portrait", []int{1, 4, 5, 6, 7, 8, 9, 10}},
		{"NOT 2-9", []int{1, 10}},
		{" 1 , END ", []int{1, 10}},
	}
	for _, tc := range tests {
		t.Run(tc.spec, func(t *testing.T) {
			r, err := Parse(tc.spec, tenPages{})
			if err != nil {
				t.Fatalf("parse %q: %v", tc.spec, err)
			}
			if diff := cmp.Diff(tc.want, r.Pages()); diff != "" {
				t.Fatalf("pages mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, spec := range []string{"11", "~11", "0", "", "1,,2", "a-b", "1-", "-3", "+2"} {
		_, err := Parse(spec, Count(10))
		if err == nil {
			t.Fatalf("expected error for %q", spec)
		}
	}
	if _, err := Parse("11", Count(10)); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if _, err := Parse("1-x", Count(10)); !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected ErrSyntax, got %v", err)
	}
}

func TestValidateIgnoresPageCount(t *testing.T) {
	if err := Validate("1-500,~40,end"); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := Validate("1-2-3"); err == nil {
		t.Fatalf("expected syntax error")
	}
}

func TestFormatRoundTrip(t *testing.T) {
	tests := []struct {
		pages []int
		want  string
	}{
		{[]int{1, 2, 3, 4}, "1-4"},
		{[]int{5, 4, 3, 9}, "5-3,9"},
		{[]int{1, 3, 5}, "1,3,5"},
		{[]int{2, 3, 3, 2}, "2-3,3-2"},
		{nil, "NOT all"},
	}
	for _, tc := range tests {
		got := Format(Of(tc.pages...))
		if got != tc.want {
			t.Fatalf("format %v: expected %q, got %q", tc.pages, tc.want, got)
		}
		back, err := Parse(got, Count(10))
		if err != nil {
			t.Fatalf("reparse %q: %v", got, err)
		}
		if !back.Equal(Of(tc.pages...)) {
			t.Fatalf("round trip %v gave %v", tc.pages, back.Pages())
		}
	}
}

type brokenTree struct{}

var errBrokenTree = errors.New("page tree loop")

func (brokenTree) PageCount() (int, error) { return 0, errBrokenTree }
func (brokenTree) Landscape(int) bool      { return false }

func TestResolvePropagatesPageCountError(t *testing.T) {
	for _, spec := range []string{"1", "all", "NOT 2", "end"} {
		if _, err := Parse(spec, brokenTree{}); !errors.Is(err, errBrokenTree) {
			t.Fatalf("parse %q: expected page count error, got %v", spec, err)
		}
	}
}

func TestCombinatorLaws(t *testing.T) {
	a := Of(1, 2, 3, 4)
	b := Of(3, 4, 5)
	c := Of(7, 8)

	if u := Union(a, b); u.Len() >= a.Len()+b.Len() {
		t.Fatalf("overlapping union should be shorter, got %v", u.Pages())
	}
	if u := Union(a, c); u.Len() != a.Len()+c.Len() {
		t.Fatalf("disjoint union length %d", u.Len())
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4, 5}, Union(a, b).Pages()); diff != "" {
		t.Fatalf("union order (-want +got):\n%s", diff)
	}
	if Difference(a, a).Len() != 0 {
		t.Fatalf("difference with self should be empty")
	}
	if diff := cmp.Diff([]int{1, 2}, Difference(a, b).Pages()); diff != "" {
		t.Fatalf("difference (-want +got):\n%s", diff)
	}
	r := Of(3, 1, 3, 2, 1)
	once := Dedup(r)
	if !Dedup(once).Equal(once) || !once.Equal(Of(3, 1, 2)) {
		t.Fatalf("dedup: %v", once.Pages())
	}
	if !r.Equal(Of(3, 1, 3, 2, 1)) {
		t.Fatalf("input mutated: %v", r.Pages())
	}
}

func TestRangeAccessors(t *testing.T) {
	r := Interval(4, 2)
	if p, err := r.Get(0); err != nil || p != 4 {
		t.Fatalf("get(0) = %d, %v", p, err)
	}
	if _, err := r.Get(3); !errors.Is(err, ErrIndex) {
		t.Fatalf("expected ErrIndex, got %v", err)
	}
	added := Add(r, 9)
	if added.Len() != 4 || r.Len() != 3 {
		t.Fatalf("add should not mutate input")
	}
	if Add(r, 3).Len() != 3 {
		t.Fatalf("adding a present page should be a no-op")
	}
	if !added.Contains(9) || r.Contains(9) {
		t.Fatalf("membership mismatch")
	}
	pages := r.Pages()
	pages[0] = 100
	if r.Contains(100) {
		t.Fatalf("pages should return a copy")
	}
	if diff := cmp.Diff([]int{2, 4}, Even(Interval(1, 5)).Pages()); diff != "" {
		t.Fatalf("even (-want +got):\n%s", diff)
	}
}
