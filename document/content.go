package document

import (
	"bytes"
	"context"
	"fmt"
	"math"

	"github.com/wudi/pdfbridge/filters"
	"github.com/wudi/pdfbridge/ir/raw"
	"github.com/wudi/pdfbridge/layout"
)

// stampKey marks content streams added by AddText so RemoveText can find
// them again.
const stampKey = "PdfBridgeStamp"

// Matrix is an affine transform [a b c d e f].
type Matrix [6]float64

var Identity = Matrix{1, 0, 0, 1, 0, 0}

func Translate(x, y float64) Matrix { return Matrix{1, 0, 0, 1, x, y} }
func Scale(sx, sy float64) Matrix   { return Matrix{sx, 0, 0, sy, 0, 0} }

// Rotate turns counter-clockwise by deg degrees.
func Rotate(deg float64) Matrix {
	r := deg * math.Pi / 180
	c, s := math.Cos(r), math.Sin(r)
	return Matrix{c, s, -s, c, 0, 0}
}

// Then returns m followed by n.
func (m Matrix) Then(n Matrix) Matrix {
	return Matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// ApplyBox transforms the corners of b and returns their bounding box.
func (m Matrix) ApplyBox(b Box) Box {
	xs := [4]float64{}
	ys := [4]float64{}
	xs[0], ys[0] = m.Apply(b.MinX, b.MinY)
	xs[1], ys[1] = m.Apply(b.MaxX, b.MinY)
	xs[2], ys[2] = m.Apply(b.MinX, b.MaxY)
	xs[3], ys[3] = m.Apply(b.MaxX, b.MaxY)
	out := Box{MinX: xs[0], MaxX: xs[0], MinY: ys[0], MaxY: ys[0]}
	for i := 1; i < 4; i++ {
		out.MinX, out.MaxX = math.Min(out.MinX, xs[i]), math.Max(out.MaxX, xs[i])
		out.MinY, out.MaxY = math.Min(out.MinY, ys[i]), math.Max(out.MaxY, ys[i])
	}
	return out
}

func (m Matrix) operator() string {
	return fmt.Sprintf("%s %s %s %s %s %s cm", layout.Num(m[0]), layout.Num(m[1]), layout.Num(m[2]), layout.Num(m[3]), layout.Num(m[4]), layout.Num(m[5]))
}

// contentList returns the page's content streams as references.
func (d *Document) contentList(pd *raw.DictObj) ([]raw.Object, error) {
	v, ok := pd.Lookup("Contents")
	if !ok {
		return nil, nil
	}
	if _, isRef := v.(raw.RefObj); isRef {
		o, err := d.resolve(v)
		if err != nil {
			return nil, err
		}
		if arr, isArr := o.(*raw.ArrayObj); isArr {
			return append([]raw.Object(nil), arr.Items...), nil
		}
		return []raw.Object{v}, nil
	}
	switch c := v.(type) {
	case *raw.ArrayObj:
		return append([]raw.Object(nil), c.Items...), nil
	case *raw.StreamObj:
		return []raw.Object{d.Add(c)}, nil
	}
	return nil, nil
}

func (d *Document) newContentStream(data []byte, tagged bool) raw.RefObj {
	dict := raw.Dict()
	if tagged {
		dict.SetKey(stampKey, raw.Bool(true))
	}
	return d.Add(raw.NewStream(dict, data))
}

// addContent puts data before or after the existing content. Existing
// content is wrapped in q/Q so its graphics state cannot leak into ours.
func (d *Document) addContent(pd *raw.DictObj, data []byte, before, tagged bool) error {
	list, err := d.contentList(pd)
	if err != nil {
		return err
	}
	stream := d.newContentStream(data, tagged)
	var out []raw.Object
	if before {
		out = append([]raw.Object{stream}, list...)
	} else {
		if len(list) > 0 {
			out = append(out, d.newContentStream([]byte("q\n"), tagged))
			out = append(out, list...)
			out = append(out, d.newContentStream([]byte("\nQ\n"), tagged))
		}
		out = append(out, stream)
	}
	pd.SetKey("Contents", raw.NewArray(out...))
	return nil
}

// transformContent applies m to everything drawn on the page.
func (d *Document) transformContent(pd *raw.DictObj, m Matrix) error {
	list, err := d.contentList(pd)
	if err != nil {
		return err
	}
	pre := d.newContentStream([]byte("q "+m.operator()+"\n"), false)
	post := d.newContentStream([]byte("\nQ\n"), false)
	out := append([]raw.Object{pre}, list...)
	out = append(out, post)
	pd.SetKey("Contents", raw.NewArray(out...))
	return d.transformAnnotations(pd, m)
}

// transformAnnotations moves annotation rectangles with the content.
func (d *Document) transformAnnotations(pd *raw.DictObj, m Matrix) error {
	annots, ok := pd.Lookup("Annots")
	if !ok {
		return nil
	}
	arrObj, err := d.resolve(annots)
	if err != nil {
		return err
	}
	arr, _ := arrObj.(*raw.ArrayObj)
	if arr == nil {
		return nil
	}
	for _, a := range arr.Items {
		ad, err := d.dict(a)
		if err != nil || ad == nil {
			continue
		}
		if rect, ok := ad.Lookup("Rect"); ok {
			if b, valid := d.toBox(rect); valid {
				ad.SetKey("Rect", m.ApplyBox(b).array())
			}
		}
	}
	return nil
}

// streamData returns the decoded data of a stream object.
func (d *Document) streamData(obj raw.Object) ([]byte, error) {
	o, err := d.resolve(obj)
	if err != nil {
		return nil, err
	}
	st, ok := o.(*raw.StreamObj)
	if !ok {
		return nil, nil
	}
	names, params := filters.ExtractFilters(st.Dict)
	if len(names) == 0 {
		return st.Data, nil
	}
	out, err := filters.NewDefault(filters.Limits{}).Decode(context.Background(), st.Data, names, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return out, nil
}

// pageContent returns the concatenated, decoded content of a page.
func (d *Document) pageContent(pd *raw.DictObj) ([]byte, error) {
	list, err := d.contentList(pd)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	for _, item := range list {
		data, err := d.streamData(item)
		if err != nil {
			return nil, err
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// ownResources gives the page a direct resource dictionary it does not
// share with other pages and returns it.
func (d *Document) ownResources(pd *raw.DictObj) (*raw.DictObj, error) {
	v, _, err := d.inherited(pd, "Resources")
	if err != nil {
		return nil, err
	}
	var res *raw.DictObj
	if src, ok := v.(*raw.DictObj); ok {
		res = raw.Clone(src).(*raw.DictObj)
	} else {
		res = raw.Dict()
	}
	pd.SetKey("Resources", res)
	return res, nil
}

// addResource files obj under category (Font, XObject, ExtGState) and
// returns the name used, which starts with prefix and does not clash.
func (d *Document) addResource(pd *raw.DictObj, category, prefix string, obj raw.Object) (string, error) {
	res, err := d.ownResources(pd)
	if err != nil {
		return "", err
	}
	sub, err := d.lookupDict(res, category)
	if err != nil {
		return "", err
	}
	if sub == nil {
		sub = raw.Dict()
	} else {
		sub = raw.Clone(sub).(*raw.DictObj)
	}
	res.SetKey(category, sub)
	name := prefix
	for i := 1; ; i++ {
		if _, taken := sub.Lookup(name); !taken {
			break
		}
		name = fmt.Sprintf("%s%d", prefix, i)
	}
	sub.SetKey(name, obj)
	return name, nil
}
