package document

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wudi/pdfbridge/fonts"
	"github.com/wudi/pdfbridge/ir/raw"
	"github.com/wudi/pdfbridge/layout"
)

type Justification int

const (
	LeftJustify Justification = iota
	CentreJustify
	RightJustify
)

// TextStamp describes text added to pages by AddText.
//
// Text may contain several lines separated by newlines and the page
// variables %Page, %PageDiv2, %EndPage, %Label, %Roman, %roman, %filename
// and %Bates.
type TextStamp struct {
	Text              string
	Position          Position
	LineSpacing       float64 // multiple of the font size; 0 means 1
	Bates             int     // first value of %Bates
	Font              fonts.Standard
	Size              float64
	Color             [3]float64
	Underneath        bool
	RelativeToCropBox bool
	Outline           bool
	Opacity           float64 // 0 means opaque
	Justification     Justification
	Midline           bool // Y names the middle of capitals, not the baseline
	Topline           bool // Y names the top of capitals
	Filename          string
	LineWidth         float64 // outline stroke width
	EmbedFonts        bool    // standard fonts are never embedded
	DryRun            bool    // lay out and validate only
}

func (t TextStamp) validate() error {
	if !t.Font.Valid() {
		return fmt.Errorf("%w: font %d", ErrBadArgument, int(t.Font))
	}
	if t.Size <= 0 {
		return fmt.Errorf("%w: font size %v", ErrBadArgument, t.Size)
	}
	if t.Position.Anchor < 0 || t.Position.Anchor >= AnchorCount {
		return fmt.Errorf("%w: anchor %d", ErrBadArgument, int(t.Position.Anchor))
	}
	if t.Justification < LeftJustify || t.Justification > RightJustify {
		return fmt.Errorf("%w: justification %d", ErrBadArgument, int(t.Justification))
	}
	if t.Opacity < 0 || t.Opacity > 1 {
		return fmt.Errorf("%w: opacity %v", ErrBadArgument, t.Opacity)
	}
	return nil
}

// TextWidth returns the width of text at 1pt in thousandths of a point.
func TextWidth(font fonts.Standard, text string) (int, error) {
	w, err := fonts.Width(font, 1000, text)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadArgument, err)
	}
	return int(math.Round(w)), nil
}

// AddText stamps text onto pages.
func (d *Document) AddText(pages []int, t TextStamp) error {
	if err := t.validate(); err != nil {
		return err
	}
	total, err := d.PageCount()
	if err != nil {
		return err
	}
	metrics, err := fonts.FontMetrics(t.Font)
	if err != nil {
		return err
	}
	if _, err := d.pageSet(pages); err != nil {
		return err
	}
	if err := d.flatten(); err != nil {
		return err
	}
	if t.DryRun {
		return nil
	}
	font := raw.Dict()
	font.SetKey("Type", raw.NameLiteral("Font"))
	font.SetKey("Subtype", raw.NameLiteral("Type1"))
	font.SetKey("BaseFont", raw.NameLiteral(t.Font.BaseFont()))
	font.SetKey("Encoding", raw.NameLiteral("WinAnsiEncoding"))
	fontRef := d.Add(font)
	var gsRef raw.Object
	if t.Opacity > 0 && t.Opacity < 1 {
		gs := raw.Dict()
		gs.SetKey("Type", raw.NameLiteral("ExtGState"))
		gs.SetKey("ca", raw.Number(t.Opacity))
		gs.SetKey("CA", raw.Number(t.Opacity))
		gsRef = d.Add(gs)
	}
	for i, page := range pages {
		pd, err := d.pageDict(page)
		if err != nil {
			return err
		}
		text, err := d.expandVariables(t, page, total, t.Bates+i)
		if err != nil {
			return err
		}
		fontName, err := d.addResource(pd, "Font", "PdfBridgeF", fontRef)
		if err != nil {
			return err
		}
		gsName := ""
		if gsRef != nil {
			if gsName, err = d.addResource(pd, "ExtGState", "PdfBridgeGS", gsRef); err != nil {
				return err
			}
		}
		boxName := "MediaBox"
		if t.RelativeToCropBox {
			boxName = "CropBox"
		}
		box, err := d.pageBox(pd, boxName)
		if err != nil {
			return err
		}
		data, err := textOperators(t, text, box, metrics, fontName, gsName)
		if err != nil {
			return err
		}
		if err := d.addContent(pd, data, t.Underneath, true); err != nil {
			return err
		}
	}
	return nil
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, `\n`, "\n"), "\n")
}

func textOperators(t TextStamp, text string, box Box, m fonts.Metrics, fontName, gsName string) ([]byte, error) {
	lines := splitLines(text)
	widths := make([]float64, len(lines))
	var block float64
	for i, l := range lines {
		w, err := fonts.Width(t.Font, t.Size, l)
		if err != nil {
			return nil, err
		}
		widths[i] = w
		block = math.Max(block, w)
	}
	spacing := t.LineSpacing
	if spacing <= 0 {
		spacing = 1
	}
	lead := t.Size * spacing
	blockH := float64(len(lines)-1) * lead
	capH := m.CapHeight * t.Size / 1000

	px, py := t.Position.Point(box)
	var x0, y0 float64
	frame := Identity
	switch t.Position.Anchor {
	case PosCentre, Top, Bottom:
		x0 = px - block/2
	case PosLeft, TopLeft, Left, BottomLeft:
		x0 = px
	case PosRight, TopRight, Right, BottomRight:
		x0 = px - block
	}
	switch t.Position.Anchor {
	case PosCentre, PosLeft, PosRight:
		y0 = py
	case Top, TopLeft, TopRight:
		y0 = py - capH
	case Left, Right:
		y0 = py + blockH/2 - capH/2
	case BottomLeft, Bottom, BottomRight:
		y0 = py + blockH
	case Diagonal, ReverseDiagonal:
		angle := math.Atan2(box.Height(), box.Width()) * 180 / math.Pi
		if t.Position.Anchor == ReverseDiagonal {
			angle = -angle
		}
		cx, cy := (box.MinX+box.MaxX)/2, (box.MinY+box.MaxY)/2
		frame = Rotate(angle).Then(Translate(cx, cy))
		x0, y0 = -block/2, blockH/2-capH/2
	}
	if t.Midline {
		y0 -= capH / 2
	} else if t.Topline {
		y0 -= capH
	}

	var buf bytes.Buffer
	buf.WriteString("q\n")
	if gsName != "" {
		fmt.Fprintf(&buf, "/%s gs\n", gsName)
	}
	r, g, b := layout.Num(t.Color[0]), layout.Num(t.Color[1]), layout.Num(t.Color[2])
	fmt.Fprintf(&buf, "%s %s %s rg %s %s %s RG\n", r, g, b, r, g, b)
	if t.Outline {
		lw := t.LineWidth
		if lw <= 0 {
			lw = 1
		}
		fmt.Fprintf(&buf, "%s w 1 Tr\n", layout.Num(lw))
	}
	for i, l := range lines {
		dx := 0.0
		switch t.Justification {
		case CentreJustify:
			dx = (block - widths[i]) / 2
		case RightJustify:
			dx = block - widths[i]
		}
		tm := Translate(x0+dx, y0-float64(i)*lead).Then(frame)
		fmt.Fprintf(&buf, "BT /%s %s Tf %s %s %s %s %s %s Tm ", fontName, layout.Num(t.Size),
			layout.Num(tm[0]), layout.Num(tm[1]), layout.Num(tm[2]), layout.Num(tm[3]), layout.Num(tm[4]), layout.Num(tm[5]))
		layout.WriteString(&buf, fonts.EncodeWinAnsi(l))
		buf.WriteString(" Tj ET\n")
	}
	buf.WriteString("Q\n")
	return buf.Bytes(), nil
}

func (d *Document) expandVariables(t TextStamp, page, total, bates int) (string, error) {
	text := t.Text
	if !strings.Contains(text, "%") {
		return text, nil
	}
	label := ""
	if strings.Contains(text, "%Label") {
		var err error
		if label, err = d.PageLabel(page); err != nil {
			return "", err
		}
	}
	r := strings.NewReplacer(
		"%PageDiv2", strconv.Itoa((page+1)/2),
		"%Page", strconv.Itoa(page),
		"%EndPage", strconv.Itoa(total),
		"%Label", label,
		"%Roman", roman(page),
		"%roman", strings.ToLower(roman(page)),
		"%filename", t.Filename,
		"%Bates", strconv.Itoa(bates),
	)
	return r.Replace(text), nil
}

// RemoveText deletes text added by AddText.
func (d *Document) RemoveText(pages []int) error {
	return d.forEachPage(pages, func(_ int, pd *raw.DictObj) error {
		list, err := d.contentList(pd)
		if err != nil {
			return err
		}
		kept := make([]raw.Object, 0, len(list))
		for _, item := range list {
			sd, err := d.dict(item)
			if err != nil {
				return err
			}
			if sd != nil {
				if _, tagged := sd.Lookup(stampKey); tagged {
					continue
				}
			}
			kept = append(kept, item)
		}
		pd.SetKey("Contents", raw.NewArray(kept...))
		return nil
	})
}

// formXObject turns page p of d into a form XObject stored in d.
func (d *Document) formXObject(pd *raw.DictObj) (raw.RefObj, error) {
	data, err := d.pageContent(pd)
	if err != nil {
		return raw.RefObj{}, err
	}
	box, err := d.pageBox(pd, "MediaBox")
	if err != nil {
		return raw.RefObj{}, err
	}
	form := raw.Dict()
	form.SetKey("Type", raw.NameLiteral("XObject"))
	form.SetKey("Subtype", raw.NameLiteral("Form"))
	form.SetKey("BBox", box.array())
	if res, _, err := d.inherited(pd, "Resources"); err != nil {
		return raw.RefObj{}, err
	} else if res != nil {
		form.SetKey("Resources", raw.Clone(res))
	}
	return d.Add(raw.NewStream(form, data)), nil
}

func (d *Document) drawForm(pd *raw.DictObj, form raw.RefObj, under bool) error {
	name, err := d.addResource(pd, "XObject", "PdfBridgeX", form)
	if err != nil {
		return err
	}
	return d.addContent(pd, []byte("q /"+name+" Do Q\n"), under, false)
}

// Stamp draws page 1 of stamp over (or under) each page in pages.
func (d *Document) Stamp(stamp *Document, pages []int, under bool) error {
	if _, err := d.pageSet(pages); err != nil {
		return err
	}
	if err := d.flatten(); err != nil {
		return err
	}
	imported, err := d.importPages(stamp, []int{1})
	if err != nil {
		return err
	}
	if len(imported) == 0 {
		return fmt.Errorf("%w: stamp has no pages", ErrBadArgument)
	}
	spd, err := d.dict(raw.RefObj{R: imported[0]})
	if err != nil {
		return err
	}
	form, err := d.formXObject(spd)
	if err != nil {
		return err
	}
	return d.forEachPage(pages, func(_ int, pd *raw.DictObj) error {
		return d.drawForm(pd, form, under)
	})
}

// CombinePages returns a new document whose page i is over's page i drawn
// on under's page i. The shorter document is padded with blank pages.
func CombinePages(under, over *Document) (*Document, error) {
	out, err := under.Clone()
	if err != nil {
		return nil, err
	}
	if err := out.flatten(); err != nil {
		return nil, err
	}
	imported, err := out.importPages(over, nil)
	if err != nil {
		return nil, err
	}
	refs, err := out.pageRefs()
	if err != nil {
		return nil, err
	}
	refs = append([]raw.ObjectRef(nil), refs...)
	for i, oref := range imported {
		opd, err := out.dict(raw.RefObj{R: oref})
		if err != nil {
			return nil, err
		}
		if i >= len(refs) {
			blank, err := out.blankPageLike(opd)
			if err != nil {
				return nil, err
			}
			refs = append(refs, blank)
		}
		form, err := out.formXObject(opd)
		if err != nil {
			return nil, err
		}
		upd, err := out.dict(raw.RefObj{R: refs[i]})
		if err != nil {
			return nil, err
		}
		if err := out.drawForm(upd, form, false); err != nil {
			return nil, err
		}
	}
	if err := out.setPages(refs); err != nil {
		return nil, err
	}
	return out, nil
}

func roman(n int) string {
	if n <= 0 {
		return ""
	}
	vals := []int{1000, 900, 500, 400, 100, 90, 50, 40, 10, 9, 5, 4, 1}
	syms := []string{"M", "CM", "D", "CD", "C", "XC", "L", "XL", "X", "IX", "V", "IV", "I"}
	var b strings.Builder
	for i, v := range vals {
		for n >= v {
			b.WriteString(syms[i])
			n -= v
		}
	}
	return b.String()
}
