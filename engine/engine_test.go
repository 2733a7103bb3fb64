package engine

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dop251/goja"
	"github.com/google/go-cmp/cmp"

	"github.com/wudi/pdfbridge/security"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewBuilder().Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

// call invokes pdf_<name> and returns the exported result with the error
// code of the slot afterwards.
func call(t *testing.T, e *Engine, name string, args ...any) (any, Code) {
	t.Helper()
	fn, ok := e.Function("pdf_" + name)
	if !ok {
		t.Fatalf("no export %s", name)
	}
	vals := make([]goja.Value, len(args))
	for i, a := range args {
		vals[i] = e.Runtime().ToValue(a)
	}
	_, _, before := e.ErrorState()
	v, _ := e.Call(name, fn, vals...)
	code, _, after := e.ErrorState()
	if after == before {
		code = CodeNone
	}
	return v.Export(), code
}

func mustCall(t *testing.T, e *Engine, name string, args ...any) any {
	t.Helper()
	v, code := call(t, e, name, args...)
	if code != CodeNone {
		_, msg, _ := e.ErrorState()
		t.Fatalf("%s failed: %s", name, msg)
	}
	return v
}

func TestExportsInstalled(t *testing.T) {
	e := newEngine(t)
	names := e.Exports()
	for _, want := range []string{
		"pdf_fromFile", "pdf_parsePagespec", "pdf_mergeSimple", "pdf_getTitle",
		"pdf_setModificationDate", "pdf_setMediabox", "pdf_getBleedBox", "pdf_removeCrop",
		"pdf_hideToolbar", "pdf_addTextSimple", "__errorState", "__clearError",
	} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("missing export %s", want)
		}
	}
	if got := mustCall(t, e, "version"); got != Version {
		t.Fatalf("version %v", got)
	}
}

func TestBlankDocumentAndRanges(t *testing.T) {
	e := newEngine(t)
	doc := mustCall(t, e, "blankDocument", 200.0, 300.0, 10)
	if n := mustCall(t, e, "pages", doc); n != int64(10) {
		t.Fatalf("pages %v", n)
	}
	all := mustCall(t, e, "all", doc)
	for spec, want := range map[string]string{"9-end": "9-10", "~1": "10", "1,3-5": "1,3-5", "10-8": "10-8"} {
		r := mustCall(t, e, "parsePagespec", doc, spec)
		if got := mustCall(t, e, "stringOfPagespec", doc, r); got != want {
			t.Fatalf("%s rendered %v", spec, got)
		}
	}
	if _, code := call(t, e, "parsePagespec", doc, "11"); code != CodePageRange {
		t.Fatalf("page 11 of 10: code %d", code)
	}
	even := mustCall(t, e, "even", all)
	if n := mustCall(t, e, "rangeLength", even); n != int64(5) {
		t.Fatalf("even length %v", n)
	}
	diff := mustCall(t, e, "difference", all, all)
	if n := mustCall(t, e, "rangeLength", diff); n != int64(0) {
		t.Fatalf("difference with self %v", n)
	}
	if p := mustCall(t, e, "rangeGet", even, 1); p != int64(4) {
		t.Fatalf("rangeGet %v", p)
	}
	if _, code := call(t, e, "rangeGet", even, 5); code != CodePageRange {
		t.Fatalf("index past end: code %d", code)
	}
	if ok := mustCall(t, e, "validatePagespec", "1-3,x"); ok != false {
		t.Fatalf("bad spec validated")
	}
}

func TestUseAfterDelete(t *testing.T) {
	e := newEngine(t)
	doc := mustCall(t, e, "blankDocument", 100.0, 100.0, 1)
	mustCall(t, e, "deletePdf", doc)
	v, code := call(t, e, "pages", doc)
	if code != CodeInvalidHandle {
		t.Fatalf("expected invalid handle, got %d", code)
	}
	if v != nil {
		t.Fatalf("failed call returned %v", v)
	}
	r := mustCall(t, e, "blankRange")
	if _, code := call(t, e, "pages", r); code != CodeInvalidHandle {
		t.Fatalf("range handle accepted as document: %d", code)
	}
}

func TestReplacePdf(t *testing.T) {
	e := newEngine(t)
	a := mustCall(t, e, "blankDocument", 100.0, 100.0, 1)
	b := mustCall(t, e, "blankDocument", 100.0, 100.0, 4)
	mustCall(t, e, "replacePdf", a, b)
	if n := mustCall(t, e, "pages", a); n != int64(4) {
		t.Fatalf("replaced document has %v pages", n)
	}
	if _, code := call(t, e, "pages", b); code != CodeInvalidHandle {
		t.Fatalf("source handle still valid")
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	e := newEngine(t)
	doc := mustCall(t, e, "blankDocument", 100.0, 100.0, 3)
	mustCall(t, e, "setTitle", doc, "Round trip")
	buf := mustCall(t, e, "toMemory", doc, false, false)
	ab, ok := buf.(goja.ArrayBuffer)
	if !ok {
		t.Fatalf("toMemory returned %T", buf)
	}
	again := mustCall(t, e, "fromMemory", e.Runtime().NewArrayBuffer(ab.Bytes()), "")
	if n := mustCall(t, e, "pages", again); n != int64(3) {
		t.Fatalf("pages %v", n)
	}
	if title := mustCall(t, e, "getTitle", again); title != "Round trip" {
		t.Fatalf("title %v", title)
	}
	if _, code := call(t, e, "fromMemory", e.Runtime().NewArrayBuffer([]byte("not a pdf")), ""); code != CodeParse {
		t.Fatalf("garbage load: code %d", code)
	}
}

func TestErrorSlotIsSticky(t *testing.T) {
	e := newEngine(t)
	if _, code := call(t, e, "pages", 12345); code != CodeInvalidHandle {
		t.Fatalf("code %d", code)
	}
	mustCall(t, e, "blankRange")
	code, msg, serial := e.ErrorState()
	if code != CodeInvalidHandle || !strings.Contains(msg, "pages") {
		t.Fatalf("slot cleared by a successful call: %d %q", code, msg)
	}
	clear, _ := e.Function("__clearError")
	if _, err := e.Call("__clearError", clear); err != nil {
		t.Fatalf("clear: %v", err)
	}
	code, msg, after := e.ErrorState()
	if code != CodeNone || msg != "" || after != serial {
		t.Fatalf("after clear: %d %q serial %d->%d", code, msg, serial, after)
	}
}

func TestMissingArgument(t *testing.T) {
	e := newEngine(t)
	if _, code := call(t, e, "deletePdf"); code != CodeBadArgument {
		t.Fatalf("code %d", code)
	}
	if _, code := call(t, e, "blankDocumentPaper", 99, 1); code != CodeBadArgument {
		t.Fatalf("bad paper: code %d", code)
	}
}

func TestEnumeration(t *testing.T) {
	e := newEngine(t)
	a := mustCall(t, e, "blankDocument", 100.0, 100.0, 1)
	b := mustCall(t, e, "blankDocumentPaper", 4, 1)
	n := mustCall(t, e, "startEnumeratePDFs")
	if n != int64(2) {
		t.Fatalf("enumerated %v", n)
	}
	got := []any{mustCall(t, e, "enumeratePDFsKey", 0), mustCall(t, e, "enumeratePDFsKey", 1)}
	if diff := cmp.Diff([]any{a, b}, got); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}
	mustCall(t, e, "endEnumeratePDFs")
	mustCall(t, e, "onExit")
	if e.Documents() != 0 {
		t.Fatalf("onExit left %d documents", e.Documents())
	}
}

func TestLabelsAndAttachments(t *testing.T) {
	e := newEngine(t)
	doc := mustCall(t, e, "blankDocument", 100.0, 100.0, 4)
	r := mustCall(t, e, "range", 1, 2)
	mustCall(t, e, "addPageLabels", doc, 2, "p-", 1, r, false)
	if l := mustCall(t, e, "getPageLabelStringForPage", doc, 2); l != "p-ii" {
		t.Fatalf("label %v", l)
	}
	if n := mustCall(t, e, "startGetPageLabels", doc); n.(int64) < 1 {
		t.Fatalf("labels %v", n)
	}
	if p := mustCall(t, e, "getPageLabelPrefix", 0); p != "p-" {
		t.Fatalf("prefix %v", p)
	}
	mustCall(t, e, "endGetPageLabels")

	mustCall(t, e, "attachFileFromMemory", e.Runtime().NewArrayBuffer([]byte("payload")), "a.txt", doc)
	mustCall(t, e, "startGetAttachments", doc)
	if n := mustCall(t, e, "numberGetAttachments"); n != int64(1) {
		t.Fatalf("attachments %v", n)
	}
	data := mustCall(t, e, "getAttachmentData", 0).(goja.ArrayBuffer)
	if string(data.Bytes()) != "payload" {
		t.Fatalf("attachment data %q", data.Bytes())
	}
	mustCall(t, e, "endGetAttachments")
}

func TestGeometryBoxTuple(t *testing.T) {
	e := newEngine(t)
	doc := mustCall(t, e, "blankDocument", 200.0, 100.0, 2)
	all := mustCall(t, e, "all", doc)
	mustCall(t, e, "setCropBox", doc, all, 10.0, 110.0, 20.0, 70.0)
	got := mustCall(t, e, "getCropBox", doc, 1)
	if diff := cmp.Diff([]any{int64(10), int64(110), int64(20), int64(70)}, got); diff != "" {
		t.Fatalf("crop box (-want +got):\n%s", diff)
	}
	if has := mustCall(t, e, "hasBox", doc, 2, "/CropBox"); has != true {
		t.Fatalf("hasBox %v", has)
	}
	mustCall(t, e, "removeCrop", doc, all)
	if has := mustCall(t, e, "hasBox", doc, 2, "/CropBox"); has != false {
		t.Fatalf("crop box not removed")
	}
}

func TestCallTimeout(t *testing.T) {
	e, err := NewBuilder().WithCallTimeout(20 * time.Millisecond).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer e.Close()
	if _, err := e.Runtime().RunString("function spin() { for (;;) {} }"); err != nil {
		t.Fatalf("define: %v", err)
	}
	fn, _ := e.Function("spin")
	if _, err := e.Call("spin", fn); err == nil {
		t.Fatalf("expected interrupt")
	}
	if code, _, _ := e.ErrorState(); code != CodeVM {
		t.Fatalf("code %d", code)
	}
	if n := mustCall(t, e, "rangeCount"); n != int64(0) {
		t.Fatalf("runtime unusable after interrupt: %v", n)
	}
}

func TestPageCountLimit(t *testing.T) {
	limits := security.DefaultLimits()
	limits.MaxPages = 50
	e, err := NewBuilder().WithLimits(limits).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(e.Close)

	if _, code := call(t, e, "range", 1, 1<<40); code != CodePageRange {
		t.Fatalf("huge range: code %d", code)
	}
	if _, code := call(t, e, "range", 1<<40, 1); code != CodePageRange {
		t.Fatalf("huge descending range: code %d", code)
	}
	if r := mustCall(t, e, "range", 1, 50); mustCall(t, e, "rangeLength", r) != int64(50) {
		t.Fatalf("range at the limit rejected")
	}
	if _, code := call(t, e, "blankDocument", 10.0, 10.0, 1<<40); code != CodeBadArgument {
		t.Fatalf("huge blank document: code %d", code)
	}
	if _, code := call(t, e, "blankDocumentPaper", 0, 51); code != CodeBadArgument {
		t.Fatalf("blank paper document over limit: code %d", code)
	}
	doc := mustCall(t, e, "blankDocument", 10.0, 10.0, 3)
	if _, code := call(t, e, "padMultiple", doc, 1<<40); code != CodeBadArgument {
		t.Fatalf("huge pad multiple: code %d", code)
	}
	if n := mustCall(t, e, "pages", doc); n != int64(3) {
		t.Fatalf("rejected pad changed the document: %v pages", n)
	}
}

// loopedPageTree is a well formed file whose page tree node lists itself
// as a kid.
func loopedPageTree() []byte {
	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	var offsets []int
	for _, body := range []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [2 0 R] /Count 1 >>",
	} {
		offsets = append(offsets, b.Len())
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}
	xref := b.Len()
	b.WriteString("xref\n0 3\n0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size 3 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xref)
	return []byte(b.String())
}

func TestParsePagespecReportsBrokenPageTree(t *testing.T) {
	e := newEngine(t)
	doc := mustCall(t, e, "fromMemory", e.Runtime().NewArrayBuffer(loopedPageTree()), "")
	if _, code := call(t, e, "parsePagespec", doc, "1"); code != CodeParse {
		t.Fatalf("parse against looped page tree: code %d, want %d", code, CodeParse)
	}
	if _, code := call(t, e, "parsePagespec", doc, "all"); code != CodeParse {
		t.Fatalf("all against looped page tree: code %d, want %d", code, CodeParse)
	}
}
