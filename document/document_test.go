package document

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/wudi/pdfbridge/fonts"
	"github.com/wudi/pdfbridge/ir/raw"
	"github.com/wudi/pdfbridge/security"
)

func blank(t *testing.T, n int) *Document {
	t.Helper()
	d, err := BlankPaper(A4Portrait, n)
	if err != nil {
		t.Fatalf("blank: %v", err)
	}
	return d
}

func reload(t *testing.T, d *Document, opts SaveOptions, password string) *Document {
	t.Helper()
	data, err := d.Bytes(context.Background(), opts)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := Load(context.Background(), data, LoadOptions{Password: password})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return out
}

func pageCount(t *testing.T, d *Document) int {
	t.Helper()
	n, err := d.PageCount()
	if err != nil {
		t.Fatalf("page count: %v", err)
	}
	return n
}

func TestRoundTripKeepsPagesAndTitle(t *testing.T) {
	d := blank(t, 3)
	if err := d.SetInfo(InfoTitle, "Quarterly report – draft"); err != nil {
		t.Fatalf("set title: %v", err)
	}
	for _, lazy := range []bool{false, true} {
		data, err := d.Bytes(context.Background(), SaveOptions{GenerateObjectStreams: lazy})
		if err != nil {
			t.Fatalf("save: %v", err)
		}
		out, err := Load(context.Background(), data, LoadOptions{Lazy: lazy})
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if n := pageCount(t, out); n != 3 {
			t.Fatalf("expected 3 pages, got %d", n)
		}
		if title, _ := out.GetInfo(InfoTitle); title != "Quarterly report – draft" {
			t.Fatalf("title %q", title)
		}
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	if _, err := Load(context.Background(), []byte("not a pdf"), LoadOptions{}); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestPageBoxesAndGeometry(t *testing.T) {
	d, err := Blank(200, 100, 2)
	if err != nil {
		t.Fatalf("blank: %v", err)
	}
	if err := d.ScalePages([]int{1}, 2, 3); err != nil {
		t.Fatalf("scale: %v", err)
	}
	box, err := d.PageBox(1, "/MediaBox")
	if err != nil {
		t.Fatalf("box: %v", err)
	}
	if diff := cmp.Diff(Box{0, 0, 400, 300}, box); diff != "" {
		t.Fatalf("media box (-want +got):\n%s", diff)
	}
	if err := d.Crop([]int{2}, 10, 10, 100, 50); err != nil {
		t.Fatalf("crop: %v", err)
	}
	if ok, _ := d.HasBox(2, "CropBox"); !ok {
		t.Fatalf("crop box not set")
	}
	if ok, _ := d.HasBox(1, "CropBox"); ok {
		t.Fatalf("crop box leaked to page 1")
	}
	trim, _ := d.PageBox(2, "TrimBox")
	if trim != (Box{10, 10, 110, 60}) {
		t.Fatalf("trim box should default to crop box, got %+v", trim)
	}
	if !d.Landscape(2) {
		t.Fatalf("200x100 page should be landscape")
	}
	if err := d.RotateBy([]int{2}, 90); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if rot, _ := d.Rotation(2); rot != 90 {
		t.Fatalf("rotation %d", rot)
	}
	if d.Landscape(2) {
		t.Fatalf("rotated crop box should be portrait")
	}
	if err := d.SetRotation([]int{1}, 45); !errors.Is(err, ErrBadArgument) {
		t.Fatalf("expected bad argument, got %v", err)
	}
	if err := d.ScalePages([]int{3}, 1, 1); !errors.Is(err, ErrPageRange) {
		t.Fatalf("expected page range error, got %v", err)
	}
	if err := d.RemoveBox([]int{1}, "MediaBox"); !errors.Is(err, ErrBadArgument) {
		t.Fatalf("media box must not be removable, got %v", err)
	}
}

func TestUprightKeepsAppearance(t *testing.T) {
	d, _ := Blank(200, 100, 1)
	if err := d.SetRotation([]int{1}, 90); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if err := d.Upright([]int{1}); err != nil {
		t.Fatalf("upright: %v", err)
	}
	box, _ := d.PageBox(1, "MediaBox")
	if box.Width() != 100 || box.Height() != 200 {
		t.Fatalf("expected 100x200 after upright, got %+v", box)
	}
	if rot, _ := d.Rotation(1); rot != 0 {
		t.Fatalf("rotation %d", rot)
	}
}

func TestPadding(t *testing.T) {
	tests := []struct {
		name string
		op   func(*Document) error
		want int
	}{
		{"before", func(d *Document) error { return d.PadBefore([]int{1, 3}) }, 7},
		{"after", func(d *Document) error { return d.PadAfter([]int{5}) }, 6},
		{"every", func(d *Document) error { return d.PadEvery(2) }, 7},
		{"multiple", func(d *Document) error { return d.PadMultiple(4) }, 8},
		{"multiple front", func(d *Document) error { return d.PadMultiple(-3) }, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := blank(t, 5)
			if err := tt.op(d); err != nil {
				t.Fatalf("pad: %v", err)
			}
			if n := pageCount(t, d); n != tt.want {
				t.Fatalf("expected %d pages, got %d", tt.want, n)
			}
		})
	}
}

func TestAddAndRemoveText(t *testing.T) {
	d := blank(t, 2)
	pd, _ := d.pageDict(1)
	before, _ := d.contentList(pd)
	stamp := TextStamp{
		Text:     "Page %Page of %EndPage\nBates %Bates",
		Position: Position{Anchor: TopRight, X: 20},
		Font:     fonts.TimesBold,
		Size:     12,
		Opacity:  0.5,
		Bates:    100,
	}
	if err := d.AddText([]int{1, 2}, stamp); err != nil {
		t.Fatalf("add text: %v", err)
	}
	pd, _ = d.pageDict(2)
	data, err := d.pageContent(pd)
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	for _, want := range []string{"(Page 2 of 2) Tj", "(Bates 101) Tj", " gs", "/PdfBridgeF 12 Tf"} {
		if !bytes.Contains(data, []byte(want)) {
			t.Fatalf("missing %q in\n%s", want, data)
		}
	}
	if err := d.RemoveText([]int{1, 2}); err != nil {
		t.Fatalf("remove text: %v", err)
	}
	pd, _ = d.pageDict(1)
	after, _ := d.contentList(pd)
	if len(after) != len(before) {
		t.Fatalf("expected %d content streams after removal, got %d", len(before), len(after))
	}
	if err := d.AddText([]int{1}, TextStamp{Text: "x", Font: fonts.Standard(99), Size: 10}); !errors.Is(err, ErrBadArgument) {
		t.Fatalf("expected bad font, got %v", err)
	}
}

func TestTextWidth(t *testing.T) {
	w, err := TextWidth(fonts.Courier, "abcd")
	if err != nil {
		t.Fatalf("width: %v", err)
	}
	one, _ := TextWidth(fonts.Courier, "a")
	if diff := w - 4*one; one <= 0 || diff < -2 || diff > 2 {
		t.Fatalf("courier should be monospaced: %d vs %d", w, one)
	}
}

func TestStampAndCombine(t *testing.T) {
	base := blank(t, 3)
	over, _ := TextToPDF("overlay", TypesetOptions{Width: 595, Height: 842, Font: fonts.Helvetica, Size: 12})
	if err := base.Stamp(over, []int{1, 3}, false); err != nil {
		t.Fatalf("stamp: %v", err)
	}
	pd, _ := base.pageDict(3)
	data, _ := base.pageContent(pd)
	if !bytes.Contains(data, []byte("Do Q")) {
		t.Fatalf("stamp not drawn:\n%s", data)
	}
	long := blank(t, 5)
	combined, err := CombinePages(over, long)
	if err != nil {
		t.Fatalf("combine: %v", err)
	}
	if n := pageCount(t, combined); n != 5 {
		t.Fatalf("combined should have 5 pages, got %d", n)
	}
	reload(t, combined, SaveOptions{}, "")
}

func TestSelectAndMerge(t *testing.T) {
	a := blank(t, 3)
	b, _ := Blank(100, 100, 2)
	if err := b.AddPageLabels(LowercaseRoman, "", 1, []int{1, 2}, false); err != nil {
		t.Fatalf("labels: %v", err)
	}
	sel, err := a.SelectPages([]int{3, 1, 1})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if n := pageCount(t, sel); n != 3 {
		t.Fatalf("selection has %d pages", n)
	}
	if n := pageCount(t, a); n != 3 {
		t.Fatalf("select must not change its input")
	}
	merged, err := Merge([]*Document{a, b}, MergeOptions{RetainNumbering: true, RemoveDuplicateFonts: true})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if n := pageCount(t, merged); n != 5 {
		t.Fatalf("merged has %d pages", n)
	}
	var got []string
	for p := 1; p <= 5; p++ {
		l, _ := merged.PageLabel(p)
		got = append(got, l)
	}
	if diff := cmp.Diff([]string{"1", "2", "3", "i", "ii"}, got); diff != "" {
		t.Fatalf("labels (-want +got):\n%s", diff)
	}
	box, _ := merged.PageBox(4, "MediaBox")
	if box.Width() != 100 {
		t.Fatalf("imported page lost its size: %+v", box)
	}
	same, err := MergeSame([]*Document{a, a}, [][]int{{1}, {2, 3}}, MergeOptions{})
	if err != nil {
		t.Fatalf("merge same: %v", err)
	}
	if n := pageCount(t, same); n != 3 {
		t.Fatalf("merge same has %d pages", n)
	}
	if _, err := MergeSame([]*Document{a}, nil, MergeOptions{}); !errors.Is(err, ErrBadArgument) {
		t.Fatalf("expected bad argument, got %v", err)
	}
}

func TestPageLabels(t *testing.T) {
	d := blank(t, 6)
	if err := d.AddPageLabels(UppercaseRoman, "", 1, []int{1, 2}, false); err != nil {
		t.Fatalf("roman: %v", err)
	}
	if err := d.AddPageLabels(DecimalArabic, "A-", 1, []int{3, 4, 6}, true); err != nil {
		t.Fatalf("decimal: %v", err)
	}
	var got []string
	for p := 1; p <= 6; p++ {
		l, err := d.PageLabel(p)
		if err != nil {
			t.Fatalf("label %d: %v", p, err)
		}
		got = append(got, l)
	}
	if diff := cmp.Diff([]string{"I", "II", "A-1", "A-2", "5", "A-3"}, got); diff != "" {
		t.Fatalf("labels (-want +got):\n%s", diff)
	}
	labels, err := d.Labels()
	if err != nil {
		t.Fatalf("labels: %v", err)
	}
	want := []Label{
		{Style: UppercaseRoman, Start: 1, First: 1, Last: 2},
		{Style: DecimalArabic, Prefix: "A-", Start: 1, First: 3, Last: 4},
		{Style: DecimalArabic, Start: 5, First: 5, Last: 5},
		{Style: DecimalArabic, Prefix: "A-", Start: 3, First: 6, Last: 6},
	}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Fatalf("label table (-want +got):\n%s", diff)
	}
	out := reload(t, d, SaveOptions{}, "")
	if l, _ := out.PageLabel(4); l != "A-2" {
		t.Fatalf("label lost on save: %q", l)
	}
	if err := out.RemovePageLabels(); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if l, _ := out.PageLabel(1); l != "1" {
		t.Fatalf("expected plain number, got %q", l)
	}
	if got := formatNumber(UppercaseLetters, 28); got != "BB" {
		t.Fatalf("letters %q", got)
	}
}

func TestMetadata(t *testing.T) {
	d := blank(t, 1)
	if err := d.SetInfo(InfoAuthor, "Ana <ana@example.org>"); err != nil {
		t.Fatalf("author: %v", err)
	}
	if err := d.SetInfo(InfoCreationDate, "D:20240102030405+01'00'"); err != nil {
		t.Fatalf("date: %v", err)
	}
	if err := d.CreateMetadata(); err != nil {
		t.Fatalf("create metadata: %v", err)
	}
	if err := d.SetInfo(InfoTitle, "Title & more"); err != nil {
		t.Fatalf("title: %v", err)
	}
	xmp, err := d.Metadata()
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	for _, want := range []string{"Ana &lt;ana@example.org&gt;", "2024-01-02T03:04:05+01:00", `<rdf:li xml:lang="x-default">Title &amp; more</rdf:li>`} {
		if !strings.Contains(string(xmp), want) {
			t.Fatalf("missing %q in\n%s", want, xmp)
		}
	}
	if err := d.RemoveMetadata(); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if xmp, _ := d.Metadata(); xmp != nil {
		t.Fatalf("metadata not removed")
	}
	if err := d.SetVersion(1, 4); err != nil || d.MinorVersion() != 4 || d.MajorVersion() != 1 {
		t.Fatalf("version %s %v", d.Version(), err)
	}
	if err := d.SetPageLayout(TwoColumnRight); err != nil {
		t.Fatalf("layout: %v", err)
	}
	if l, _ := d.PageLayout(); l != TwoColumnRight {
		t.Fatalf("layout %d", l)
	}
	if m, _ := d.PageMode(); m != UseNone {
		t.Fatalf("default page mode %d", m)
	}
	if err := d.SetViewerPreference(HideToolbar, true); err != nil {
		t.Fatalf("prefs: %v", err)
	}
	if v, _ := d.ViewerPreference(HideToolbar); !v {
		t.Fatalf("hide toolbar not set")
	}
}

func TestTextStrings(t *testing.T) {
	for _, s := range []string{"plain", "café", "€ • —", "日本語"} {
		enc := encodeText(s)
		if got := decodeText(enc.Bytes); got != s {
			t.Fatalf("%q decoded as %q", s, got)
		}
	}
	if enc := encodeText("café"); bytes.HasPrefix(enc.Bytes, utf16BOM) {
		t.Fatalf("latin-1 text should not need UTF-16")
	}
}

func TestAttachments(t *testing.T) {
	d := blank(t, 1)
	if err := d.Attach("b.txt", []byte("second")); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := d.Attach("a.txt", []byte("first")); err != nil {
		t.Fatalf("attach: %v", err)
	}
	out := reload(t, d, SaveOptions{}, "")
	got, err := out.Attachments()
	if err != nil {
		t.Fatalf("attachments: %v", err)
	}
	want := []Attachment{{Name: "a.txt", Data: []byte("first")}, {Name: "b.txt", Data: []byte("second")}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("attachments (-want +got):\n%s", diff)
	}
	if err := out.RemoveAttachments(); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got, _ := out.Attachments(); len(got) != 0 {
		t.Fatalf("attachments left: %v", got)
	}
}

func TestEncryption(t *testing.T) {
	d := blank(t, 2)
	d.SetInfo(InfoTitle, "secret")
	opts, err := AES128bitTrue.Options("u", "o", []Permission{NoPrint, NoCopy})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	data, err := d.Bytes(context.Background(), SaveOptions{Encrypt: opts})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := Load(context.Background(), data, LoadOptions{Password: "wrong"}); !errors.Is(err, security.ErrBadPassword) {
		t.Fatalf("expected bad password, got %v", err)
	}
	enc, err := Load(context.Background(), data, LoadOptions{Password: "u"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !enc.IsEncrypted() {
		t.Fatalf("expected encrypted document")
	}
	if kind, ok := enc.EncryptionKind(); !ok || kind != AES128bitTrue {
		t.Fatalf("kind %d %v", kind, ok)
	}
	if banned, _ := enc.HasPermission(NoPrint); !banned {
		t.Fatalf("printing should be banned")
	}
	if banned, _ := enc.HasPermission(NoEdit); banned {
		t.Fatalf("editing should be allowed")
	}

	kept := reload(t, enc, SaveOptions{}, "o")
	if !kept.IsEncrypted() {
		t.Fatalf("protection should survive a plain save")
	}
	if err := enc.DecryptOwner("u"); !errors.Is(err, security.ErrBadPassword) {
		t.Fatalf("user password must not pass as owner, got %v", err)
	}
	if err := enc.Decrypt("u"); err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	plain := reload(t, enc, SaveOptions{}, "")
	if plain.IsEncrypted() {
		t.Fatalf("decrypted document written encrypted")
	}
	if title, _ := plain.GetInfo(InfoTitle); title != "secret" {
		t.Fatalf("title %q", title)
	}
	if err := plain.Decrypt(""); !errors.Is(err, ErrNotEncrypted) {
		t.Fatalf("expected not encrypted, got %v", err)
	}
	if _, err := EncryptionMethod(8).Options("", "", nil); !errors.Is(err, ErrBadArgument) {
		t.Fatalf("expected bad method, got %v", err)
	}
}

func TestCompressionAndSqueeze(t *testing.T) {
	d := blank(t, 2)
	for i := 0; i < 2; i++ {
		f := raw.Dict()
		f.SetKey("Type", raw.NameLiteral("Font"))
		f.SetKey("BaseFont", raw.NameLiteral("Helvetica"))
		pd, _ := d.pageDict(i + 1)
		if _, err := d.addResource(pd, "Font", "F", d.Add(f)); err != nil {
			t.Fatalf("resource: %v", err)
		}
	}
	removed, err := d.Squeeze()
	if err != nil {
		t.Fatalf("squeeze: %v", err)
	}
	if removed < 1 {
		t.Fatalf("expected the duplicate font to go, removed %d", removed)
	}
	if err := d.Decompress(); err != nil {
		t.Fatalf("decompress: %v", err)
	}
	for _, obj := range d.objects {
		if st, ok := obj.(*raw.StreamObj); ok {
			if _, has := st.Dict.Lookup("Filter"); has {
				t.Fatalf("stream still filtered after decompress")
			}
		}
	}
	reload(t, d, SaveOptions{}, "")
}

func TestJSON(t *testing.T) {
	d := blank(t, 1)
	if err := d.AddText([]int{1}, TextStamp{Text: "hi", Font: fonts.Helvetica, Size: 10}); err != nil {
		t.Fatalf("add text: %v", err)
	}
	out, err := d.JSON(JSONOptions{ParseContent: true, Decompress: true})
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	for _, want := range []string{`"/Type": "/Catalog"`, `"Tj"`, `"S": "hi"`} {
		if !strings.Contains(string(out), want) {
			t.Fatalf("missing %s in\n%s", want, out)
		}
	}
	bare, _ := d.JSON(JSONOptions{NoStreamData: true})
	if strings.Contains(string(bare), "Tj") {
		t.Fatalf("stream data should be omitted")
	}
}

func TestTypesetting(t *testing.T) {
	opts := TypesetOptions{Width: 300, Height: 200, Font: fonts.TimesRoman, Size: 12}
	long := strings.Repeat("a line of text that will wrap around the narrow page\n", 40)
	d, err := TextToPDF(long, opts)
	if err != nil {
		t.Fatalf("text: %v", err)
	}
	if n := pageCount(t, d); n < 2 {
		t.Fatalf("expected several pages, got %d", n)
	}
	md, err := MarkdownToPDF("# Title\n\nSee [site](https://example.org).", opts)
	if err != nil {
		t.Fatalf("markdown: %v", err)
	}
	pd, _ := md.pageDict(1)
	if _, ok := pd.Lookup("Annots"); !ok {
		t.Fatalf("link annotation missing")
	}
	h, err := HTMLToPDF("<p>Hello <b>bold</b></p>", opts)
	if err != nil {
		t.Fatalf("html: %v", err)
	}
	reload(t, h, SaveOptions{Demo: true}, "")
	if _, err := TextToPDF("x", TypesetOptions{Width: 0, Height: 1, Size: 1}); !errors.Is(err, ErrBadArgument) {
		t.Fatalf("expected bad argument, got %v", err)
	}
}
