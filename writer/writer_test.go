package writer_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/wudi/pdfbridge/ir/raw"
	"github.com/wudi/pdfbridge/parser"
	"github.com/wudi/pdfbridge/security"
	"github.com/wudi/pdfbridge/writer"
)

func sampleDoc() *raw.Document {
	catalog := raw.Dict()
	catalog.SetKey("Type", raw.NameLiteral("Catalog"))
	catalog.SetKey("Pages", raw.Ref(2, 0))
	pages := raw.Dict()
	pages.SetKey("Type", raw.NameLiteral("Pages"))
	pages.SetKey("Kids", raw.NewArray(raw.Ref(3, 0)))
	pages.SetKey("Count", raw.NumberInt(1))
	page := raw.Dict()
	page.SetKey("Type", raw.NameLiteral("Page"))
	page.SetKey("Parent", raw.Ref(2, 0))
	page.SetKey("MediaBox", raw.NumberArray(0, 0, 595.28, 841.89))
	page.SetKey("Contents", raw.Ref(4, 0))
	content := raw.NewStream(raw.Dict(), []byte(strings.Repeat("0 0 m 100 100 l S\n", 4)))
	info := raw.Dict()
	info.SetKey("Title", raw.Str([]byte("Hello (world)")))

	trailer := raw.Dict()
	trailer.SetKey("Root", raw.Ref(1, 0))
	trailer.SetKey("Info", raw.Ref(5, 0))
	return &raw.Document{
		Objects: map[raw.ObjectRef]raw.Object{
			{Num: 1}: catalog, {Num: 2}: pages, {Num: 3}: page, {Num: 4}: content, {Num: 5}: info,
		},
		Trailer: trailer,
		Version: "1.4",
	}
}

func roundTrip(t *testing.T, cfg writer.Config, password string) *raw.Document {
	t.Helper()
	var out bytes.Buffer
	if err := writer.New().Write(context.Background(), sampleDoc(), &out, cfg); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc, err := parser.NewDocumentParser(parser.Config{Password: password}).Parse(context.Background(), bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatalf("reparse: %v\n%s", err, out.Bytes())
	}
	return doc
}

func checkContent(t *testing.T, doc *raw.Document) {
	t.Helper()
	info, ok := doc.Objects[raw.ObjectRef{Num: 5}].(*raw.DictObj)
	if !ok {
		t.Fatalf("info dictionary missing")
	}
	if title, _ := info.Lookup("Title"); string(title.(raw.StringObj).Bytes) != "Hello (world)" {
		t.Fatalf("title mangled: %#v", title)
	}
	page := doc.Objects[raw.ObjectRef{Num: 3}].(*raw.DictObj)
	box, _ := page.Lookup("MediaBox")
	if got := box.(*raw.ArrayObj).Items[2].(raw.NumberObj).Float(); got != 595.28 {
		t.Fatalf("media box width %v", got)
	}
}

func TestWriteClassicRoundTrip(t *testing.T) {
	doc := roundTrip(t, writer.Config{}, "")
	if doc.Version != "1.4" {
		t.Fatalf("expected source version, got %s", doc.Version)
	}
	checkContent(t, doc)
}

func TestWriteObjectStreamsRoundTrip(t *testing.T) {
	doc := roundTrip(t, writer.Config{ObjectStreams: true, Compress: true}, "")
	if doc.Version != "1.5" {
		t.Fatalf("object streams need 1.5, got %s", doc.Version)
	}
	checkContent(t, doc)
	st := doc.Objects[raw.ObjectRef{Num: 4}].(*raw.StreamObj)
	if f, _ := st.Dict.NameValue("Filter"); f != "FlateDecode" {
		t.Fatalf("content stream should be compressed")
	}
}

func TestWriteEncryptedRoundTrip(t *testing.T) {
	for _, m := range []security.Method{security.MethodRC4_128, security.MethodAES256ISO} {
		t.Run(m.String(), func(t *testing.T) {
			cfg := writer.Config{Encryption: &security.EncryptOptions{Method: m, UserPassword: "u", OwnerPassword: "o", EncryptMetadata: true}}
			doc := roundTrip(t, cfg, "u")
			if doc.Encryption == nil {
				t.Fatalf("expected encryption info")
			}
			checkContent(t, doc)
		})
	}
}

func TestWriteDeterministicID(t *testing.T) {
	var a, b bytes.Buffer
	cfg := writer.Config{Deterministic: true}
	if err := writer.New().Write(context.Background(), sampleDoc(), &a, cfg); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := writer.New().Write(context.Background(), sampleDoc(), &b, cfg); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatalf("deterministic output differs")
	}
}

func TestSerializeEscapesNames(t *testing.T) {
	d := raw.Dict()
	d.SetKey("A B", raw.NameLiteral("x/y"))
	got, _ := writer.New().SerializeObject(raw.ObjectRef{Num: 1}, d)
	if !strings.Contains(string(got), "/A#20B /x#2Fy") {
		t.Fatalf("unexpected serialization %q", got)
	}
}

func TestWriteKeepsSourceEncryption(t *testing.T) {
	var first bytes.Buffer
	cfg := writer.Config{Encryption: &security.EncryptOptions{Method: security.MethodAES128, UserPassword: "u", OwnerPassword: "o", EncryptMetadata: true}}
	if err := writer.New().Write(context.Background(), sampleDoc(), &first, cfg); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc, prot, err := parser.NewDocumentParser(parser.Config{Password: "u"}).ParseProtected(context.Background(), bytes.NewReader(first.Bytes()))
	if err != nil || prot == nil {
		t.Fatalf("parse protected: %v %v", prot, err)
	}

	var second bytes.Buffer
	if err := writer.New().Write(context.Background(), doc, &second, writer.Config{Keep: &writer.KeepEncryption{Dict: prot.Dict, Handler: prot.Handler}}); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if _, err := parser.NewDocumentParser(parser.Config{}).Parse(context.Background(), bytes.NewReader(second.Bytes())); err == nil {
		t.Fatalf("rewritten file should still require the password")
	}
	again, err := parser.NewDocumentParser(parser.Config{Password: "o"}).Parse(context.Background(), bytes.NewReader(second.Bytes()))
	if err != nil {
		t.Fatalf("reparse with owner password: %v", err)
	}
	checkContent(t, again)
}

func TestWriteLinearized(t *testing.T) {
	for name, cfg := range map[string]writer.Config{
		"plain":     {Linearize: true},
		"compress":  {Linearize: true, Compress: true, ObjectStreams: true},
		"encrypted": {Linearize: true, Encryption: &security.EncryptOptions{Method: security.MethodAES128, UserPassword: "u", OwnerPassword: "o", EncryptMetadata: true}},
	} {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			if err := writer.New().Write(context.Background(), sampleDoc(), &out, cfg); err != nil {
				t.Fatalf("write: %v", err)
			}
			doc, err := parser.NewDocumentParser(parser.Config{Password: "u"}).Parse(context.Background(), bytes.NewReader(out.Bytes()))
			if err != nil {
				t.Fatalf("reparse: %v\n%s", err, out.Bytes())
			}
			if !doc.Linearized {
				t.Fatalf("output not detected as linearized")
			}
			lin, ok := doc.Objects[raw.ObjectRef{Num: 1}].(*raw.DictObj)
			if !ok {
				t.Fatalf("object 1 is not the linearization dictionary")
			}
			if l, _ := lin.IntValue("L"); l != int64(out.Len()) {
				t.Fatalf("/L %d, file is %d bytes", l, out.Len())
			}
			if n, _ := lin.IntValue("N"); n != 1 {
				t.Fatalf("/N %d", n)
			}

			root, _ := doc.Trailer.Lookup("Root")
			cat := doc.Objects[root.(raw.RefObj).R].(*raw.DictObj)
			pagesRef, _ := cat.Lookup("Pages")
			pages := doc.Objects[pagesRef.(raw.RefObj).R].(*raw.DictObj)
			kids, _ := pages.Lookup("Kids")
			pageRef := kids.(*raw.ArrayObj).Items[0].(raw.RefObj).R
			if o, _ := lin.IntValue("O"); o != int64(pageRef.Num) {
				t.Fatalf("/O %d, first page is object %d", o, pageRef.Num)
			}
			page := doc.Objects[pageRef].(*raw.DictObj)
			contents, _ := page.Lookup("Contents")
			if _, ok := doc.Objects[contents.(raw.RefObj).R].(*raw.StreamObj); !ok {
				t.Fatalf("content stream lost in renumbering")
			}
			infoRef, _ := doc.Trailer.Lookup("Info")
			info := doc.Objects[infoRef.(raw.RefObj).R].(*raw.DictObj)
			if title, _ := info.Lookup("Title"); string(title.(raw.StringObj).Bytes) != "Hello (world)" {
				t.Fatalf("title mangled: %#v", title)
			}
		})
	}
}
