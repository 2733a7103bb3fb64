package document

import (
	"fmt"
	"sort"

	"github.com/wudi/pdfbridge/filters"
	"github.com/wudi/pdfbridge/ir/raw"
)

// Attachment is an embedded file. Page is 0 for document-level
// attachments and the page number for file attachment annotations.
type Attachment struct {
	Name string
	Page int
	Data []byte
}

// Attach embeds data under name at document level.
func (d *Document) Attach(name string, data []byte) error {
	if name == "" {
		return fmt.Errorf("%w: empty attachment name", ErrBadArgument)
	}
	cat, err := d.catalog()
	if err != nil {
		return err
	}
	params := raw.Dict()
	params.SetKey("Size", raw.NumberInt(int64(len(data))))
	sd := raw.Dict()
	sd.SetKey("Type", raw.NameLiteral("EmbeddedFile"))
	sd.SetKey("Params", params)
	sd.SetKey("Filter", raw.NameLiteral("FlateDecode"))
	stream := d.Add(raw.NewStream(sd, filters.Deflate(data)))

	ef := raw.Dict()
	ef.SetKey("F", stream)
	spec := raw.Dict()
	spec.SetKey("Type", raw.NameLiteral("Filespec"))
	spec.SetKey("F", encodeText(name))
	spec.SetKey("UF", encodeText(name))
	spec.SetKey("EF", ef)

	entries, err := d.embeddedFiles()
	if err != nil {
		return err
	}
	entries = append(entries, nameEntry{name, d.Add(spec)})
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	names, err := d.lookupDict(cat, "Names")
	if err != nil {
		return err
	}
	if names == nil {
		names = raw.Dict()
	} else {
		names = raw.Clone(names).(*raw.DictObj)
	}
	arr := raw.NewArray()
	for _, e := range entries {
		arr.Append(encodeText(e.name))
		arr.Append(e.value)
	}
	tree := raw.Dict()
	tree.SetKey("Names", arr)
	names.SetKey("EmbeddedFiles", d.Add(tree))
	cat.SetKey("Names", names)
	return nil
}

type nameEntry struct {
	name  string
	value raw.Object
}

// embeddedFiles flattens the /EmbeddedFiles name tree.
func (d *Document) embeddedFiles() ([]nameEntry, error) {
	cat, err := d.catalog()
	if err != nil {
		return nil, err
	}
	names, err := d.lookupDict(cat, "Names")
	if err != nil {
		return nil, err
	}
	root, err := d.lookupDict(names, "EmbeddedFiles")
	if err != nil || root == nil {
		return nil, err
	}
	var out []nameEntry
	var walk func(node *raw.DictObj, depth int) error
	walk = func(node *raw.DictObj, depth int) error {
		if node == nil || depth > 32 {
			return nil
		}
		if v, ok := node.Lookup("Names"); ok {
			o, err := d.resolve(v)
			if err != nil {
				return err
			}
			if arr, ok := o.(*raw.ArrayObj); ok {
				for i := 0; i+1 < len(arr.Items); i += 2 {
					n, _ := d.textValue(arr.Items[i])
					out = append(out, nameEntry{n, arr.Items[i+1]})
				}
			}
		}
		if v, ok := node.Lookup("Kids"); ok {
			o, err := d.resolve(v)
			if err != nil {
				return err
			}
			if arr, ok := o.(*raw.ArrayObj); ok {
				for _, k := range arr.Items {
					kd, err := d.dict(k)
					if err != nil {
						return err
					}
					if err := walk(kd, depth+1); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}
	return out, walk(root, 0)
}

// fileSpecData returns the embedded stream of a file specification.
func (d *Document) fileSpecData(spec raw.Object) ([]byte, error) {
	sd, err := d.dict(spec)
	if err != nil || sd == nil {
		return nil, err
	}
	ef, err := d.lookupDict(sd, "EF")
	if err != nil || ef == nil {
		return nil, err
	}
	for _, k := range []string{"UF", "F"} {
		if v, ok := ef.Lookup(k); ok {
			return d.streamData(v)
		}
	}
	return nil, nil
}

func (d *Document) fileSpecName(spec raw.Object, fallback string) string {
	sd, _ := d.dict(spec)
	if sd == nil {
		return fallback
	}
	for _, k := range []string{"UF", "F"} {
		if v, ok := sd.Lookup(k); ok {
			if s, ok := d.textValue(v); ok {
				return s
			}
		}
	}
	return fallback
}

// Attachments lists document-level attachments followed by file
// attachment annotations in page order.
func (d *Document) Attachments() ([]Attachment, error) {
	entries, err := d.embeddedFiles()
	if err != nil {
		return nil, err
	}
	var out []Attachment
	for _, e := range entries {
		data, err := d.fileSpecData(e.value)
		if err != nil {
			return nil, err
		}
		out = append(out, Attachment{Name: d.fileSpecName(e.value, e.name), Data: data})
	}
	n, err := d.PageCount()
	if err != nil {
		return nil, err
	}
	for p := 1; p <= n; p++ {
		annots, err := d.fileAnnotations(p)
		if err != nil {
			return nil, err
		}
		for _, ad := range annots {
			fs, ok := ad.Lookup("FS")
			if !ok {
				continue
			}
			data, err := d.fileSpecData(fs)
			if err != nil {
				return nil, err
			}
			out = append(out, Attachment{Name: d.fileSpecName(fs, ""), Page: p, Data: data})
		}
	}
	return out, nil
}

func (d *Document) fileAnnotations(page int) ([]*raw.DictObj, error) {
	pd, err := d.pageDict(page)
	if err != nil {
		return nil, err
	}
	v, ok := pd.Lookup("Annots")
	if !ok {
		return nil, nil
	}
	o, err := d.resolve(v)
	if err != nil {
		return nil, err
	}
	arr, _ := o.(*raw.ArrayObj)
	if arr == nil {
		return nil, nil
	}
	var out []*raw.DictObj
	for _, a := range arr.Items {
		ad, err := d.dict(a)
		if err != nil {
			return nil, err
		}
		if ad == nil {
			continue
		}
		if st, _ := ad.NameValue("Subtype"); st == "FileAttachment" {
			out = append(out, ad)
		}
	}
	return out, nil
}

// RemoveAttachments deletes document-level attachments and file
// attachment annotations.
func (d *Document) RemoveAttachments() error {
	cat, err := d.catalog()
	if err != nil {
		return err
	}
	names, err := d.lookupDict(cat, "Names")
	if err != nil {
		return err
	}
	if names != nil {
		names = raw.Clone(names).(*raw.DictObj)
		names.Delete("EmbeddedFiles")
		cat.SetKey("Names", names)
	}
	n, err := d.PageCount()
	if err != nil {
		return err
	}
	for p := 1; p <= n; p++ {
		pd, err := d.pageDict(p)
		if err != nil {
			return err
		}
		v, ok := pd.Lookup("Annots")
		if !ok {
			continue
		}
		o, err := d.resolve(v)
		if err != nil {
			return err
		}
		arr, _ := o.(*raw.ArrayObj)
		if arr == nil {
			continue
		}
		kept := raw.NewArray()
		for _, a := range arr.Items {
			ad, err := d.dict(a)
			if err != nil {
				return err
			}
			if ad != nil {
				if st, _ := ad.NameValue("Subtype"); st == "FileAttachment" {
					continue
				}
			}
			kept.Append(a)
		}
		pd.SetKey("Annots", kept)
	}
	return nil
}
