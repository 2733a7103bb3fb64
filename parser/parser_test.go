package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/wudi/pdfbridge/filters"
	"github.com/wudi/pdfbridge/ir/raw"
	"github.com/wudi/pdfbridge/security"
)

// buildPDF lays out numbered object bodies with a classic xref table.
func buildPDF(bodies []string, trailerExtra string) []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("%PDF-1.7\n")
	offsets := make([]int, len(bodies)+1)
	for i, body := range bodies {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xrefOff := buf.Len()
	fmt.Fprintf(buf, "xref\n0 %d\n0000000000 65535 f \n", len(bodies)+1)
	for i := 1; i <= len(bodies); i++ {
		fmt.Fprintf(buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(buf, "trailer\n<< /Size %d /Root 1 0 R %s >>\nstartxref\n%d\n%%%%EOF\n", len(bodies)+1, trailerExtra, xrefOff)
	return buf.Bytes()
}

func TestDocumentParserParsesClassicXRef(t *testing.T) {
	data := buildPDF([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [] /Count 0 >>",
		"<< /Length 5 >>\nstream\nhello\nendstream",
	}, "")
	doc, err := NewDocumentParser(Config{}).Parse(context.Background(), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.Version != "1.7" {
		t.Fatalf("expected version 1.7, got %q", doc.Version)
	}
	if len(doc.Objects) != 3 {
		t.Fatalf("expected 3 objects, got %d", len(doc.Objects))
	}
	st, ok := doc.Objects[raw.ObjectRef{Num: 3}].(*raw.StreamObj)
	if !ok || string(st.Data) != "hello" {
		t.Fatalf("unexpected stream %#v", doc.Objects[raw.ObjectRef{Num: 3}])
	}
}

func TestDocumentParserIndirectLength(t *testing.T) {
	data := buildPDF([]string{
		"<< /Type /Catalog >>",
		"<< /Length 3 0 R >>\nstream\nab endstream inside\nendstream",
		"19",
	}, "")
	doc, err := NewDocumentParser(Config{}).Parse(context.Background(), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	st := doc.Objects[raw.ObjectRef{Num: 2}].(*raw.StreamObj)
	if string(st.Data) != "ab endstream inside" {
		t.Fatalf("indirect length not honoured: %q", st.Data)
	}
}

func TestDocumentParserLazy(t *testing.T) {
	data := buildPDF([]string{"<< /Type /Catalog >>", "(two)"}, "")
	doc, err := NewDocumentParser(Config{Lazy: true}).Parse(context.Background(), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(doc.Objects) != 0 || len(doc.Pending) != 2 || doc.Lazy == nil {
		t.Fatalf("expected deferred objects, got %d loaded %d pending", len(doc.Objects), len(doc.Pending))
	}
	obj, err := doc.Lazy.Load(context.Background(), raw.ObjectRef{Num: 2})
	if err != nil {
		t.Fatalf("lazy load: %v", err)
	}
	if s, ok := obj.(raw.StringObj); !ok || string(s.Bytes) != "two" {
		t.Fatalf("unexpected object %#v", obj)
	}
}

func TestDocumentParserObjectStream(t *testing.T) {
	inner := "<< /Type /Catalog /Pages 3 0 R >> << /Type /Pages /Kids [] /Count 0 >>"
	header := "1 0 3 34 "
	payload := filters.Deflate([]byte(header + inner))

	buf := &bytes.Buffer{}
	buf.WriteString("%PDF-1.5\n")
	off2 := buf.Len()
	fmt.Fprintf(buf, "2 0 obj\n<< /Type /ObjStm /N 2 /First %d /Filter /FlateDecode /Length %d >>\nstream\n", len(header), len(payload))
	buf.Write(payload)
	buf.WriteString("\nendstream\nendobj\n")

	// Objects 1 and 3 live compressed in object stream 2.
	rows := []byte{
		0, 0, 0, 0xFF,
		2, 0, 2, 0,
		1, byte(off2 >> 8), byte(off2), 0,
		2, 0, 2, 1,
	}
	xsOff := buf.Len()
	fmt.Fprintf(buf, "4 0 obj\n<< /Type /XRef /Size 5 /Root 1 0 R /W [1 2 1] /Index [0 4] /Length %d >>\nstream\n", len(rows))
	buf.Write(rows)
	fmt.Fprintf(buf, "\nendstream\nendobj\nstartxref\n%d\n%%%%EOF\n", xsOff)

	doc, err := NewDocumentParser(Config{}).Parse(context.Background(), bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	cat, ok := doc.Objects[raw.ObjectRef{Num: 1}].(*raw.DictObj)
	if !ok {
		t.Fatalf("catalog missing: %#v", doc.Objects)
	}
	if typ, _ := cat.NameValue("Type"); typ != "Catalog" {
		t.Fatalf("unexpected catalog %v", cat.KV)
	}
	if _, ok := doc.Objects[raw.ObjectRef{Num: 3}].(*raw.DictObj); !ok {
		t.Fatalf("pages object missing")
	}
}

func TestDocumentParserDecrypts(t *testing.T) {
	fileID := []byte("0123456789abcdef")
	enc, h, err := security.BuildStandardEncryption(security.EncryptOptions{
		Method:       security.MethodAES128,
		UserPassword: "pw",
	}, fileID)
	if err != nil {
		t.Fatalf("build encryption: %v", err)
	}
	secret, err := h.Encrypt(2, 0, []byte("secret"), security.DataClassString)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	encBody := serializeForTest(enc)
	data := buildPDF([]string{
		"<< /Type /Catalog >>",
		fmt.Sprintf("<%x>", secret),
		encBody,
	}, fmt.Sprintf("/Encrypt 3 0 R /ID [<%x> <%x>]", fileID, fileID))

	if _, err := NewDocumentParser(Config{}).Parse(context.Background(), bytes.NewReader(data)); !errors.Is(err, security.ErrBadPassword) {
		t.Fatalf("expected bad password error, got %v", err)
	}
	doc, err := NewDocumentParser(Config{Password: "pw"}).Parse(context.Background(), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	s, ok := doc.Objects[raw.ObjectRef{Num: 2}].(raw.StringObj)
	if !ok || string(s.Bytes) != "secret" {
		t.Fatalf("string not decrypted: %#v", doc.Objects[raw.ObjectRef{Num: 2}])
	}
	if doc.Encryption == nil || doc.Encryption.R != 4 {
		t.Fatalf("encryption info missing: %+v", doc.Encryption)
	}
	if _, ok := doc.Objects[raw.ObjectRef{Num: 3}]; ok {
		t.Fatalf("encryption dictionary should not be listed as a document object")
	}
}

// serializeForTest writes the small subset of objects an /Encrypt dictionary uses.
func serializeForTest(obj raw.Object) string {
	switch v := obj.(type) {
	case *raw.DictObj:
		var b bytes.Buffer
		b.WriteString("<<")
		for _, k := range v.SortedKeys() {
			fmt.Fprintf(&b, " /%s %s", k, serializeForTest(v.KV[k]))
		}
		b.WriteString(" >>")
		return b.String()
	case raw.NameObj:
		return "/" + v.Val
	case raw.NumberObj:
		return fmt.Sprintf("%d", v.Int())
	case raw.BoolObj:
		return fmt.Sprintf("%t", v.V)
	case raw.StringObj:
		return fmt.Sprintf("<%x>", v.Bytes)
	}
	return "null"
}
