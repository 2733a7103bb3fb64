package document

import (
	"context"
	"fmt"

	"github.com/wudi/pdfbridge/filters"
	"github.com/wudi/pdfbridge/ir/raw"
)

// Compress flate-encodes every stream that has no filter.
func (d *Document) Compress() error {
	if err := d.loadAll(); err != nil {
		return err
	}
	for _, obj := range d.objects {
		st, ok := obj.(*raw.StreamObj)
		if !ok {
			continue
		}
		if _, has := st.Dict.Lookup("Filter"); has {
			continue
		}
		st.Data = filters.Deflate(st.Data)
		st.Dict.SetKey("Filter", raw.NameLiteral("FlateDecode"))
		st.Dict.SetKey("Length", raw.NumberInt(int64(len(st.Data))))
	}
	return nil
}

// Decompress removes every filter this package can decode. Streams using
// other filters, such as image codecs, are left alone.
func (d *Document) Decompress() error {
	if err := d.loadAll(); err != nil {
		return err
	}
	pipeline := filters.NewDefault(filters.Limits{})
	for ref, obj := range d.objects {
		st, ok := obj.(*raw.StreamObj)
		if !ok {
			continue
		}
		names, params := filters.ExtractFilters(st.Dict)
		if len(names) == 0 || !pipeline.CanDecode(names) {
			continue
		}
		data, err := pipeline.Decode(context.Background(), st.Data, names, params)
		if err != nil {
			return &ObjectError{Ref: ref, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
		}
		st.Data = data
		st.Dict.Delete("Filter")
		st.Dict.Delete("DecodeParms")
		st.Dict.SetKey("Length", raw.NumberInt(int64(len(data))))
	}
	return nil
}

// Squeeze shrinks the document: unreachable objects are dropped,
// identical objects are shared and unfiltered streams are compressed.
// It returns the number of objects removed.
func (d *Document) Squeeze() (int, error) {
	if err := d.loadAll(); err != nil {
		return 0, err
	}
	before := len(d.objects)
	d.collectGarbage()
	d.dedupe(func(obj raw.Object) bool {
		dict, ok := obj.(*raw.DictObj)
		if !ok {
			return true
		}
		switch typ, _ := dict.NameValue("Type"); typ {
		case "Page", "Pages", "Catalog":
			return false
		}
		return true
	})
	d.collectGarbage()
	if err := d.Compress(); err != nil {
		return 0, err
	}
	return before - len(d.objects), nil
}
