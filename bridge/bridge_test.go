package bridge

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func startup(t *testing.T, cfg Config) *Client {
	t.Helper()
	c, err := Startup(cfg)
	if err != nil {
		t.Fatalf("startup: %v", err)
	}
	t.Cleanup(func() { c.OnExit() })
	return c
}

func blank(t *testing.T, c *Client, n int) Doc {
	t.Helper()
	d, err := c.BlankDocumentPaper(A4Portrait, n)
	if err != nil {
		t.Fatalf("blank document: %v", err)
	}
	return d
}

func pagesOf(t *testing.T, c *Client, r Range) []int {
	t.Helper()
	got, err := c.RangePages(r)
	if err != nil {
		t.Fatalf("range pages: %v", err)
	}
	return got
}

func TestPagespecAll(t *testing.T) {
	c := startup(t, Config{})
	d := blank(t, c, 5)
	r, err := c.ParsePagespec(d, "all")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	all, err := c.All(d)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if diff := cmp.Diff(pagesOf(t, c, all), pagesOf(t, c, r)); diff != "" {
		t.Fatalf("\"all\" differs from All (-want +got):\n%s", diff)
	}
}

func TestPagespecRoundTrip(t *testing.T) {
	c := startup(t, Config{})
	d := blank(t, c, 20)
	for _, spec := range []string{"1", "1-5", "3,1,2", "20-15", "1-3,7,9-12", "2,4,6", "NOT all"} {
		r, err := c.ParsePagespec(d, spec)
		if err != nil {
			t.Fatalf("parse %q: %v", spec, err)
		}
		s, err := c.StringOfPagespec(d, r)
		if err != nil {
			t.Fatalf("render %q: %v", spec, err)
		}
		again, err := c.ParsePagespec(d, s)
		if err != nil {
			t.Fatalf("reparse %q: %v", s, err)
		}
		if diff := cmp.Diff(pagesOf(t, c, r), pagesOf(t, c, again)); diff != "" {
			t.Fatalf("%q -> %q changed pages (-want +got):\n%s", spec, s, diff)
		}
	}
}

func TestRangeAlgebraLaws(t *testing.T) {
	c := startup(t, Config{})
	a, _ := c.RangeOf(1, 2, 3, 4)
	b, _ := c.RangeOf(3, 4, 5)

	u, err := c.RangeUnion(a, b)
	if err != nil {
		t.Fatalf("union: %v", err)
	}
	bNotA, _ := c.Difference(b, a)
	la, _ := c.RangeLength(a)
	lb, _ := c.RangeLength(bNotA)
	lu, _ := c.RangeLength(u)
	if lu != la+lb {
		t.Fatalf("union length %d, want %d", lu, la+lb)
	}

	empty, _ := c.Difference(a, a)
	if n, _ := c.RangeLength(empty); n != 0 {
		t.Fatalf("difference with self has %d pages", n)
	}

	if got := pagesOf(t, c, mustRangeOf(t, c, 1, 1, 2, 1, 3)); !cmp.Equal(got, []int{1, 2, 3}) {
		t.Fatalf("range of repeated pages = %v", got)
	}
	dup, err := c.ParsePagespec(blank(t, c, 3), "1,1,2,1,3")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff([]int{1, 1, 2, 1, 3}, pagesOf(t, c, dup)); diff != "" {
		t.Fatalf("duplicates (-want +got):\n%s", diff)
	}
	once, _ := c.RemoveDuplicates(dup)
	twice, _ := c.RemoveDuplicates(once)
	if diff := cmp.Diff(pagesOf(t, c, once), pagesOf(t, c, twice)); diff != "" {
		t.Fatalf("dedup not idempotent (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, pagesOf(t, c, once)); diff != "" {
		t.Fatalf("dedup (-want +got):\n%s", diff)
	}
	if got := pagesOf(t, c, a); !cmp.Equal(got, []int{1, 2, 3, 4}) {
		t.Fatalf("input range mutated: %v", got)
	}
}

func mustRangeOf(t *testing.T, c *Client, pages ...int) Range {
	t.Helper()
	r, err := c.RangeOf(pages...)
	if err != nil {
		t.Fatalf("range of %v: %v", pages, err)
	}
	return r
}

func TestPagespecAgainstTenPages(t *testing.T) {
	c := startup(t, Config{})
	d := blank(t, c, 10)
	for spec, want := range map[string][]int{
		"9-end": {9, 10},
		"~1":    {10},
		"even":  {2, 4, 6, 8, 10},
		"3-1":   {3, 2, 1},
	} {
		r, err := c.ParsePagespec(d, spec)
		if err != nil {
			t.Fatalf("parse %q: %v", spec, err)
		}
		if diff := cmp.Diff(want, pagesOf(t, c, r)); diff != "" {
			t.Fatalf("%q (-want +got):\n%s", spec, diff)
		}
	}
	_, err := c.ParsePagespec(d, "11")
	if !errors.Is(err, ErrPageRange) {
		t.Fatalf("expected page range error, got %v", err)
	}
	if c.LastError() != CodePageRange {
		t.Fatalf("channel code %d", c.LastError())
	}
}

func TestUseAfterDelete(t *testing.T) {
	c := startup(t, Config{})
	d := blank(t, c, 2)
	if err := c.DeletePdf(d); err != nil {
		t.Fatalf("delete: %v", err)
	}
	n, err := c.Pages(d)
	if !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("expected invalid handle, got %v", err)
	}
	if n != 0 {
		t.Fatalf("failed call returned %d", n)
	}
	if c.LastError() != CodeInvalidHandle || c.LastErrorString() == "" {
		t.Fatalf("channel %d %q", c.LastError(), c.LastErrorString())
	}
	var be *Error
	if !errors.As(err, &be) || be.Op != "pages" {
		t.Fatalf("error op: %+v", be)
	}
}

func TestErrorChannelSticky(t *testing.T) {
	c := startup(t, Config{})
	if _, err := c.Pages(Doc(99)); err == nil {
		t.Fatalf("expected failure")
	}
	d := blank(t, c, 1)
	if _, err := c.Pages(d); err != nil {
		t.Fatalf("a later call failed: %v", err)
	}
	if c.LastError() != CodeInvalidHandle {
		t.Fatalf("successful call cleared the channel: %d", c.LastError())
	}
	c.ClearError()
	if c.LastError() != CodeNone || c.LastErrorString() != "" {
		t.Fatalf("clear left %d %q", c.LastError(), c.LastErrorString())
	}
	if _, err := c.Pages(d); err != nil || c.LastError() != CodeNone {
		t.Fatalf("after clear: %v code %d", err, c.LastError())
	}
}

func TestReplacePdf(t *testing.T) {
	c := startup(t, Config{})
	old := blank(t, c, 1)
	repl := blank(t, c, 3)
	if err := c.SetTitle(repl, "replacement"); err != nil {
		t.Fatalf("set title: %v", err)
	}
	if err := c.ReplacePdf(old, repl); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if n, err := c.Pages(old); err != nil || n != 3 {
		t.Fatalf("old handle: %d pages, %v", n, err)
	}
	if title, _ := c.GetTitle(old); title != "replacement" {
		t.Fatalf("title %q", title)
	}
	if _, err := c.Pages(repl); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("replacement handle still valid: %v", err)
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	c := startup(t, Config{})
	d := blank(t, c, 4)
	if err := c.SetTitle(d, "Bytes both ways"); err != nil {
		t.Fatalf("set title: %v", err)
	}
	data, err := c.ToMemory(d, false, true)
	if err != nil || len(data) == 0 {
		t.Fatalf("to memory: %d bytes, %v", len(data), err)
	}
	for _, lazy := range []bool{false, true} {
		load := c.FromMemory
		if lazy {
			load = c.FromMemoryLazy
		}
		again, err := load(data, "")
		if err != nil {
			t.Fatalf("from memory: %v", err)
		}
		if n, _ := c.Pages(again); n != 4 {
			t.Fatalf("pages %d", n)
		}
		if title, _ := c.GetTitle(again); title != "Bytes both ways" {
			t.Fatalf("title %q", title)
		}
	}
	// The engine copied the input; scribbling on it changes nothing.
	kept, _ := c.FromMemoryLazy(data, "")
	for i := range data {
		data[i] = 0
	}
	if n, err := c.Pages(kept); err != nil || n != 4 {
		t.Fatalf("engine kept a reference to caller bytes: %d %v", n, err)
	}
}

func TestBufferLimit(t *testing.T) {
	c := startup(t, Config{MaxBufferSize: 16})
	d := blank(t, c, 1)
	data, err := c.ToMemory(d, false, false)
	if err != nil {
		t.Fatalf("oversized result is not an engine error: %v", err)
	}
	if data != nil {
		t.Fatalf("expected nil buffer, got %d bytes", len(data))
	}
	if c.LastError() != CodeNone {
		t.Fatalf("channel code %d", c.LastError())
	}
}

func TestResolvePerCall(t *testing.T) {
	c := startup(t, Config{ResolvePerCall: true})
	d := blank(t, c, 2)
	if n, err := c.Pages(d); err != nil || n != 2 {
		t.Fatalf("pages: %d %v", n, err)
	}
}

func TestStartupRejectsMissingEntryPoint(t *testing.T) {
	c := startup(t, Config{})
	c.eng.Runtime().GlobalObject().Delete("pdf_pages")
	if _, err := newGateway(c.eng, c.codec, &c.ch, c.log, false); err == nil {
		t.Fatalf("expected missing entry point error")
	}
	gw, err := newGateway(c.eng, c.codec, &c.ch, c.log, true)
	if err != nil {
		t.Fatalf("per-call gateway: %v", err)
	}
	if _, err := gw.invoke("pages", nil); err == nil {
		t.Fatalf("expected call to a missing entry point to fail")
	}
	if c.LastError() != CodeGeneric || !strings.Contains(c.LastErrorString(), "no entry point") {
		t.Fatalf("channel after missing entry point: %d %q", c.LastError(), c.LastErrorString())
	}
}

func TestUnknownOperationSetsChannel(t *testing.T) {
	c := startup(t, Config{})
	if _, err := c.Invoke("noSuchOperation"); !errors.Is(err, ErrUnknownOperation) {
		t.Fatalf("expected unknown operation, got %v", err)
	}
	if c.LastError() != CodeBadArgument {
		t.Fatalf("channel code %d, want %d", c.LastError(), CodeBadArgument)
	}
	c.ClearError()
	if c.LastError() != CodeNone || c.LastErrorString() != "" {
		t.Fatalf("channel not cleared: %d %q", c.LastError(), c.LastErrorString())
	}
}

func TestEnumeratePdfs(t *testing.T) {
	c := startup(t, Config{})
	a := blank(t, c, 1)
	b := blank(t, c, 1)
	list, err := c.EnumeratePdfs()
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	var got []Doc
	for _, info := range list {
		got = append(got, info.Doc)
	}
	if diff := cmp.Diff([]Doc{a, b}, got); diff != "" {
		t.Fatalf("documents (-want +got):\n%s", diff)
	}
	if err := c.OnExit(); err != nil {
		t.Fatalf("exit: %v", err)
	}
	if _, err := c.Pages(a); err == nil {
		t.Fatalf("call after OnExit succeeded")
	}
	if c.LastError() != CodeGeneric || !strings.Contains(c.LastErrorString(), "shut down") {
		t.Fatalf("channel after OnExit: %d %q", c.LastError(), c.LastErrorString())
	}
	if _, err := c.Invoke("pages", a); err == nil || c.LastError() != CodeGeneric {
		t.Fatalf("raw call after OnExit: %v, channel %d", err, c.LastError())
	}
}

func TestOperationsAreDeclared(t *testing.T) {
	c := startup(t, Config{})
	exported := map[string]bool{}
	for _, name := range c.eng.Exports() {
		exported[name] = true
	}
	for name := range opNames {
		if !exported[entryPrefix+name] {
			t.Fatalf("op %s has no engine export", name)
		}
	}
	if len(opNames) < 140 {
		t.Fatalf("only %d operations declared", len(opNames))
	}
}
