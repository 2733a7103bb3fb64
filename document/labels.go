package document

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/wudi/pdfbridge/ir/raw"
)

// LabelStyle is the numbering style of a page label. Ordinals are stable.
type LabelStyle int

const (
	DecimalArabic LabelStyle = iota
	UppercaseRoman
	LowercaseRoman
	UppercaseLetters
	LowercaseLetters
)

// LabelStyleCount is the number of label styles.
const LabelStyleCount = 5

// NoNumbering marks a label that is only its prefix.
const NoNumbering LabelStyle = -1

var labelStyleNames = [LabelStyleCount]string{"D", "R", "r", "A", "a"}

func styleFromName(n string) LabelStyle {
	for i, s := range labelStyleNames {
		if s == n {
			return LabelStyle(i)
		}
	}
	return NoNumbering
}

// Label is one entry of the page label table. It applies from page First
// to page Last.
type Label struct {
	Style       LabelStyle
	Prefix      string
	Start       int
	First, Last int
}

type pageLabel struct {
	style  LabelStyle
	prefix string
	value  int
}

func (l pageLabel) String() string {
	return l.prefix + formatNumber(l.style, l.value)
}

func formatNumber(style LabelStyle, n int) string {
	switch style {
	case DecimalArabic:
		return strconv.Itoa(n)
	case UppercaseRoman:
		return roman(n)
	case LowercaseRoman:
		return strings.ToLower(roman(n))
	case UppercaseLetters, LowercaseLetters:
		if n <= 0 {
			return ""
		}
		base := 'A'
		if style == LowercaseLetters {
			base = 'a'
		}
		return strings.Repeat(string(base+rune((n-1)%26)), (n-1)/26+1)
	}
	return ""
}

// labelEntries reads the /PageLabels number tree.
func (d *Document) labelEntries() ([]int, []*raw.DictObj, error) {
	cat, err := d.catalog()
	if err != nil {
		return nil, nil, err
	}
	root, err := d.lookupDict(cat, "PageLabels")
	if err != nil || root == nil {
		return nil, nil, err
	}
	type entry struct {
		index int
		dict  *raw.DictObj
	}
	var entries []entry
	var walk func(node *raw.DictObj, depth int) error
	walk = func(node *raw.DictObj, depth int) error {
		if node == nil || depth > 32 {
			return nil
		}
		if v, ok := node.Lookup("Nums"); ok {
			o, err := d.resolve(v)
			if err != nil {
				return err
			}
			if arr, ok := o.(*raw.ArrayObj); ok {
				for i := 0; i+1 < len(arr.Items); i += 2 {
					n, ok := d.number(arr.Items[i])
					if !ok {
						continue
					}
					ld, err := d.dict(arr.Items[i+1])
					if err != nil {
						return err
					}
					if ld != nil {
						entries = append(entries, entry{int(n), ld})
					}
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
	if err := walk(root, 0); err != nil {
		return nil, nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].index < entries[j].index })
	idx := make([]int, len(entries))
	dicts := make([]*raw.DictObj, len(entries))
	for i, e := range entries {
		idx[i], dicts[i] = e.index, e.dict
	}
	return idx, dicts, nil
}

// pageLabels expands the label table to one label per page, or nil when
// the document has no labels.
func (d *Document) pageLabels() ([]pageLabel, error) {
	idx, dicts, err := d.labelEntries()
	if err != nil || idx == nil {
		return nil, err
	}
	n, err := d.PageCount()
	if err != nil {
		return nil, err
	}
	out := make([]pageLabel, n)
	for i := range out {
		out[i] = pageLabel{style: DecimalArabic, value: i + 1}
	}
	for k, first := range idx {
		last := n
		if k+1 < len(idx) {
			last = idx[k+1]
		}
		ld := dicts[k]
		style := NoNumbering
		if s, ok := ld.NameValue("S"); ok {
			style = styleFromName(s)
		}
		prefix := ""
		if v, ok := ld.Lookup("P"); ok {
			prefix, _ = d.textValue(v)
		}
		start := 1
		if v, ok := ld.Lookup("St"); ok {
			if f, ok := d.number(v); ok {
				start = int(f)
			}
		}
		for p := first; p < last && p < n; p++ {
			if p < 0 {
				continue
			}
			out[p] = pageLabel{style: style, prefix: prefix, value: start + p - first}
		}
	}
	return out, nil
}

// expandedLabels is pageLabels with plain page numbers for documents
// without labels.
func (d *Document) expandedLabels() ([]pageLabel, error) {
	labels, err := d.pageLabels()
	if err != nil || labels != nil {
		return labels, err
	}
	n, err := d.PageCount()
	if err != nil {
		return nil, err
	}
	labels = make([]pageLabel, n)
	for i := range labels {
		labels[i] = pageLabel{style: DecimalArabic, value: i + 1}
	}
	return labels, nil
}

func continues(prev, cur pageLabel) bool {
	if prev.style != cur.style || prev.prefix != cur.prefix {
		return false
	}
	return cur.style == NoNumbering || cur.value == prev.value+1
}

// writeLabels stores one label per page as a compact number tree.
func (d *Document) writeLabels(labels []pageLabel) error {
	cat, err := d.catalog()
	if err != nil {
		return err
	}
	nums := raw.NewArray()
	for i, l := range labels {
		if i > 0 && continues(labels[i-1], l) {
			continue
		}
		ld := raw.Dict()
		ld.SetKey("Type", raw.NameLiteral("PageLabel"))
		if l.style != NoNumbering {
			ld.SetKey("S", raw.NameLiteral(labelStyleNames[l.style]))
			if l.value != 1 {
				ld.SetKey("St", raw.NumberInt(int64(l.value)))
			}
		}
		if l.prefix != "" {
			ld.SetKey("P", encodeText(l.prefix))
		}
		nums.Append(raw.NumberInt(int64(i)))
		nums.Append(ld)
	}
	if len(nums.Items) == 0 {
		cat.Delete("PageLabels")
		return nil
	}
	tree := raw.Dict()
	tree.SetKey("Nums", nums)
	cat.SetKey("PageLabels", d.Add(tree))
	return nil
}

// AddPageLabels labels pages with style and prefix, numbering from start.
// Each contiguous run of pages restarts at start unless progress is set,
// in which case numbering continues across runs.
func (d *Document) AddPageLabels(style LabelStyle, prefix string, start int, pages []int, progress bool) error {
	if style != NoNumbering && (style < 0 || style >= LabelStyleCount) {
		return fmt.Errorf("%w: label style %d", ErrBadArgument, int(style))
	}
	if start < 1 {
		return fmt.Errorf("%w: label start %d", ErrBadArgument, start)
	}
	set, err := d.pageSet(pages)
	if err != nil {
		return err
	}
	labels, err := d.expandedLabels()
	if err != nil {
		return err
	}
	value := start
	for p := 1; p <= len(labels); p++ {
		if !set[p] {
			continue
		}
		if !progress && !set[p-1] {
			value = start
		}
		labels[p-1] = pageLabel{style: style, prefix: prefix, value: value}
		value++
	}
	return d.writeLabels(labels)
}

// RemovePageLabels deletes the label table.
func (d *Document) RemovePageLabels() error {
	cat, err := d.catalog()
	if err != nil {
		return err
	}
	cat.Delete("PageLabels")
	return nil
}

// PageLabel returns the label shown for page, which is the page number
// when the document has no labels.
func (d *Document) PageLabel(page int) (string, error) {
	if _, err := d.checkPage(page); err != nil {
		return "", err
	}
	labels, err := d.expandedLabels()
	if err != nil {
		return "", err
	}
	return labels[page-1].String(), nil
}

// Labels returns the label table in page order.
func (d *Document) Labels() ([]Label, error) {
	labels, err := d.pageLabels()
	if err != nil {
		return nil, err
	}
	var out []Label
	for i, l := range labels {
		if i > 0 && continues(labels[i-1], l) {
			out[len(out)-1].Last = i + 1
			continue
		}
		out = append(out, Label{Style: l.style, Prefix: l.prefix, Start: l.value, First: i + 1, Last: i + 1})
	}
	return out, nil
}
