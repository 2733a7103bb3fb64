package raw

import (
	"testing"

	"github.com/wudi/pdfbridge/scanner"
)

func parse(t *testing.T, src string) Object {
	t.Helper()
	obj, err := ParseObject(NewTokenReader(scanner.NewBytes([]byte(src), scanner.Config{})))
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return obj
}

func TestParseObjectNested(t *testing.T) {
	obj := parse(t, "<< /Kids [1 0 R 2 0 R] /Count 2 /Box [0 0 612.5 792] /T (x) >>")
	d, ok := obj.(*DictObj)
	if !ok {
		t.Fatalf("expected dict, got %T", obj)
	}
	if n, _ := d.IntValue("Count"); n != 2 {
		t.Fatalf("count %d", n)
	}
	kids, _ := d.Lookup("Kids")
	if r := kids.(*ArrayObj).Items[1].(RefObj); r.R.Num != 2 {
		t.Fatalf("unexpected ref %v", r.R)
	}
	box, _ := d.Lookup("Box")
	if f := box.(*ArrayObj).Items[2].(NumberObj).Float(); f != 612.5 {
		t.Fatalf("unexpected width %v", f)
	}
}

func TestParseIndirectBodyStream(t *testing.T) {
	tr := NewTokenReader(scanner.NewBytes([]byte("<< /Length 3 >>\nstream\nabc\nendstream\nendobj 5"), scanner.Config{}))
	obj, err := ParseIndirectBody(tr)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	st, ok := obj.(*StreamObj)
	if !ok || string(st.Data) != "abc" {
		t.Fatalf("unexpected stream %#v", obj)
	}
	next, err := ParseObject(tr)
	if err != nil || next.(NumberObj).Int() != 5 {
		t.Fatalf("tokens after endobj should remain readable")
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := Dict()
	orig.SetKey("A", NewArray(NumberInt(1), Str([]byte("s"))))
	cp := Clone(orig).(*DictObj)
	arr, _ := cp.Lookup("A")
	arr.(*ArrayObj).Items[0] = NumberInt(9)
	o, _ := orig.Lookup("A")
	if o.(*ArrayObj).Items[0].(NumberObj).Int() != 1 {
		t.Fatalf("clone shares storage with original")
	}
}

func TestRewriteRenumbers(t *testing.T) {
	obj := parse(t, "<< /P 3 0 R /K [4 0 R (x)] >>")
	Rewrite(obj, func(r RefObj) Object { return Ref(r.R.Num+10, 0) })
	var refs []int
	Walk(obj, func(o Object) {
		if r, ok := o.(RefObj); ok {
			refs = append(refs, r.R.Num)
		}
	})
	if len(refs) != 2 || refs[0] != 14 || refs[1] != 13 {
		t.Fatalf("unexpected refs %v", refs)
	}
}

func TestNumberHelpers(t *testing.T) {
	if n := Number(3); !n.IsInt || n.I != 3 {
		t.Fatalf("integral float should become an integer: %+v", n)
	}
	if n := Number(2.5); n.IsInt {
		t.Fatalf("fractional value should stay a float")
	}
}
