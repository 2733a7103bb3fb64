package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestArenaStaleHandles(t *testing.T) {
	a := NewArena[string](SpaceDocument)
	h1 := a.Alloc("one")
	if h1 == 0 {
		t.Fatalf("zero handle issued")
	}
	if v, ok := a.Get(h1); !ok || v != "one" {
		t.Fatalf("get: %q %v", v, ok)
	}
	if _, ok := a.Free(h1); !ok {
		t.Fatalf("free failed")
	}
	if _, ok := a.Get(h1); ok {
		t.Fatalf("freed handle still resolves")
	}
	h2 := a.Alloc("two")
	if h2.slot() != h1.slot() {
		t.Fatalf("slot not reused: %d vs %d", h2.slot(), h1.slot())
	}
	if h2 == h1 {
		t.Fatalf("reused slot kept its generation")
	}
	if _, ok := a.Get(h1); ok {
		t.Fatalf("stale handle resolves to the new value")
	}
	if _, ok := a.Free(h1); ok {
		t.Fatalf("double free accepted")
	}
}

func TestArenaSpacesAreDisjoint(t *testing.T) {
	docs := NewArena[int](SpaceDocument)
	ranges := NewArena[int](SpaceRange)
	d := docs.Alloc(1)
	r := ranges.Alloc(2)
	if _, ok := ranges.Get(d); ok {
		t.Fatalf("document handle resolved in the range arena")
	}
	if _, ok := docs.Get(r); ok {
		t.Fatalf("range handle resolved in the document arena")
	}
	if _, ok := docs.Get(0); ok {
		t.Fatalf("handle 0 resolved")
	}
}

func TestArenaHandlesAndReset(t *testing.T) {
	a := NewArena[int](SpaceRange)
	var hs []Handle
	for i := 0; i < 4; i++ {
		hs = append(hs, a.Alloc(i))
	}
	a.Free(hs[1])
	if diff := cmp.Diff([]Handle{hs[0], hs[2], hs[3]}, a.Handles()); diff != "" {
		t.Fatalf("handles (-want +got):\n%s", diff)
	}
	if !a.Set(hs[2], 20) {
		t.Fatalf("set on live handle failed")
	}
	if v, _ := a.Get(hs[2]); v != 20 {
		t.Fatalf("set value %d", v)
	}
	a.Reset()
	if a.Len() != 0 || len(a.Handles()) != 0 {
		t.Fatalf("reset left %d values", a.Len())
	}
	for _, h := range hs {
		if _, ok := a.Get(h); ok {
			t.Fatalf("handle %d survived reset", h)
		}
	}
}

func TestArenaGenerationSkipsZero(t *testing.T) {
	a := NewArena[int](SpaceDocument)
	h := a.Alloc(0)
	for i := 0; i < 300; i++ {
		a.Free(h)
		h = a.Alloc(i)
		if h.gen() == 0 {
			t.Fatalf("generation wrapped to zero")
		}
	}
}
