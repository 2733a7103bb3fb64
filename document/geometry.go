package document

import (
	"fmt"
	"math"

	"github.com/wudi/pdfbridge/ir/raw"
)

// Anchor names a location on a page. Ordinals are stable.
type Anchor int

const (
	PosCentre Anchor = iota
	PosLeft
	PosRight
	Top
	TopLeft
	TopRight
	Left
	BottomLeft
	Bottom
	BottomRight
	Right
	Diagonal
	ReverseDiagonal
)

// AnchorCount is the number of anchors.
const AnchorCount = 13

// Position is an anchor and up to two coordinates. PosCentre, PosLeft and
// PosRight use X and Y as a point; the edge anchors use X as an offset
// from the edge; the diagonals use neither.
type Position struct {
	Anchor Anchor
	X, Y   float64
}

// Point returns the page location a position names within box.
func (p Position) Point(b Box) (float64, float64) {
	cx, cy := (b.MinX+b.MaxX)/2, (b.MinY+b.MaxY)/2
	o := p.X
	switch p.Anchor {
	case PosCentre, PosLeft, PosRight:
		return p.X, p.Y
	case Top:
		return cx, b.MaxY - o
	case TopLeft:
		return b.MinX + o, b.MaxY - o
	case TopRight:
		return b.MaxX - o, b.MaxY - o
	case Left:
		return b.MinX + o, cy
	case BottomLeft:
		return b.MinX + o, b.MinY + o
	case Bottom:
		return cx, b.MinY + o
	case BottomRight:
		return b.MaxX - o, b.MinY + o
	case Right:
		return b.MaxX - o, cy
	}
	return cx, cy
}

// forEachPage flattens the page tree and calls fn for every page in pages.
func (d *Document) forEachPage(pages []int, fn func(page int, pd *raw.DictObj) error) error {
	if _, err := d.pageSet(pages); err != nil {
		return err
	}
	if err := d.flatten(); err != nil {
		return err
	}
	for _, p := range pages {
		pd, err := d.pageDict(p)
		if err != nil {
			return err
		}
		if err := fn(p, pd); err != nil {
			return err
		}
	}
	return nil
}

// transformPages applies m(page) to content and every page box.
func (d *Document) transformPages(pages []int, m func(page int, pd *raw.DictObj) (Matrix, error)) error {
	return d.forEachPage(pages, func(page int, pd *raw.DictObj) error {
		mat, err := m(page, pd)
		if err != nil {
			return err
		}
		if err := d.transformContent(pd, mat); err != nil {
			return err
		}
		for _, name := range boxNames {
			if v, ok := pd.Lookup(name); ok {
				if b, valid := d.toBox(v); valid {
					pd.SetKey(name, mat.ApplyBox(b).array())
				}
			}
		}
		return nil
	})
}

// ScalePages scales pages and their content by sx, sy.
func (d *Document) ScalePages(pages []int, sx, sy float64) error {
	if sx <= 0 || sy <= 0 {
		return fmt.Errorf("%w: scale %v x %v", ErrBadArgument, sx, sy)
	}
	return d.transformPages(pages, func(int, *raw.DictObj) (Matrix, error) {
		return Scale(sx, sy), nil
	})
}

// ScaleToFit scales the content of each page to fit a w x h page,
// keeping its aspect ratio and centring it. scale shrinks the result
// further; 1 fills the page.
func (d *Document) ScaleToFit(pages []int, w, h, scale float64) error {
	if w <= 0 || h <= 0 || scale <= 0 {
		return fmt.Errorf("%w: fit %v x %v at %v", ErrBadArgument, w, h, scale)
	}
	return d.forEachPage(pages, func(page int, pd *raw.DictObj) error {
		box, err := d.pageBox(pd, "MediaBox")
		if err != nil {
			return err
		}
		s := math.Min(w/box.Width(), h/box.Height()) * scale
		dx := (w - box.Width()*s) / 2
		dy := (h - box.Height()*s) / 2
		m := Translate(-box.MinX, -box.MinY).Then(Scale(s, s)).Then(Translate(dx, dy))
		if err := d.transformContent(pd, m); err != nil {
			return err
		}
		pd.SetKey("MediaBox", Box{0, 0, w, h}.array())
		for _, name := range boxNames[1:] {
			pd.Delete(name)
		}
		return nil
	})
}

// ScaleContents scales content about the point pos names on the crop box.
func (d *Document) ScaleContents(pages []int, pos Position, scale float64) error {
	if scale <= 0 {
		return fmt.Errorf("%w: scale %v", ErrBadArgument, scale)
	}
	return d.forEachPage(pages, func(page int, pd *raw.DictObj) error {
		box, err := d.pageBox(pd, "CropBox")
		if err != nil {
			return err
		}
		px, py := pos.Point(box)
		return d.transformContent(pd, Translate(-px, -py).Then(Scale(scale, scale)).Then(Translate(px, py)))
	})
}

// ShiftContents moves content by dx, dy.
func (d *Document) ShiftContents(pages []int, dx, dy float64) error {
	return d.forEachPage(pages, func(_ int, pd *raw.DictObj) error {
		return d.transformContent(pd, Translate(dx, dy))
	})
}

// SetRotation sets /Rotate; angle must be a multiple of 90.
func (d *Document) SetRotation(pages []int, angle int) error {
	if angle%90 != 0 {
		return fmt.Errorf("%w: rotation %d", ErrBadArgument, angle)
	}
	return d.forEachPage(pages, func(_ int, pd *raw.DictObj) error {
		pd.SetKey("Rotate", raw.NumberInt(int64(normalizeAngle(angle))))
		return nil
	})
}

// RotateBy adds angle, a multiple of 90, to the current rotation.
func (d *Document) RotateBy(pages []int, angle int) error {
	if angle%90 != 0 {
		return fmt.Errorf("%w: rotation %d", ErrBadArgument, angle)
	}
	return d.forEachPage(pages, func(_ int, pd *raw.DictObj) error {
		cur, err := d.rotation(pd)
		if err != nil {
			return err
		}
		pd.SetKey("Rotate", raw.NumberInt(int64(normalizeAngle(cur+angle))))
		return nil
	})
}

// RotateContents turns content clockwise by angle degrees about the
// centre of the media box.
func (d *Document) RotateContents(pages []int, angle float64) error {
	return d.forEachPage(pages, func(_ int, pd *raw.DictObj) error {
		box, err := d.pageBox(pd, "MediaBox")
		if err != nil {
			return err
		}
		cx, cy := (box.MinX+box.MaxX)/2, (box.MinY+box.MaxY)/2
		return d.transformContent(pd, Translate(-cx, -cy).Then(Rotate(-angle)).Then(Translate(cx, cy)))
	})
}

// uprightMatrix maps a page shown with /Rotate rot onto an unrotated
// page with its media box at the origin.
func uprightMatrix(rot int, box Box) Matrix {
	w, h := box.Width(), box.Height()
	m := Translate(-box.MinX, -box.MinY)
	switch rot {
	case 90:
		return m.Then(Matrix{0, -1, 1, 0, 0, w})
	case 180:
		return m.Then(Matrix{-1, 0, 0, -1, w, h})
	case 270:
		return m.Then(Matrix{0, 1, -1, 0, h, 0})
	}
	return m
}

// Upright removes /Rotate while keeping each page's appearance.
func (d *Document) Upright(pages []int) error {
	return d.transformPages(pages, func(_ int, pd *raw.DictObj) (Matrix, error) {
		rot, err := d.rotation(pd)
		if err != nil {
			return Identity, err
		}
		box, err := d.pageBox(pd, "MediaBox")
		if err != nil {
			return Identity, err
		}
		pd.Delete("Rotate")
		return uprightMatrix(rot, box), nil
	})
}

// HFlip mirrors content left to right within the media box.
func (d *Document) HFlip(pages []int) error {
	return d.forEachPage(pages, func(_ int, pd *raw.DictObj) error {
		box, err := d.pageBox(pd, "MediaBox")
		if err != nil {
			return err
		}
		return d.transformContent(pd, Matrix{-1, 0, 0, 1, box.MinX + box.MaxX, 0})
	})
}

// VFlip mirrors content top to bottom within the media box.
func (d *Document) VFlip(pages []int) error {
	return d.forEachPage(pages, func(_ int, pd *raw.DictObj) error {
		box, err := d.pageBox(pd, "MediaBox")
		if err != nil {
			return err
		}
		return d.transformContent(pd, Matrix{1, 0, 0, -1, 0, box.MinY + box.MaxY})
	})
}

// SetBox sets a page boundary on every page in pages.
func (d *Document) SetBox(pages []int, name string, b Box) error {
	name, err := normalizeBoxName(name)
	if err != nil {
		return err
	}
	if b.Width() < 0 || b.Height() < 0 {
		return fmt.Errorf("%w: inverted box", ErrBadArgument)
	}
	return d.forEachPage(pages, func(_ int, pd *raw.DictObj) error {
		pd.SetKey(name, b.array())
		return nil
	})
}

// RemoveBox deletes a page boundary. The media box cannot be removed.
func (d *Document) RemoveBox(pages []int, name string) error {
	name, err := normalizeBoxName(name)
	if err != nil {
		return err
	}
	if name == "MediaBox" {
		return fmt.Errorf("%w: media box is required", ErrBadArgument)
	}
	return d.forEachPage(pages, func(_ int, pd *raw.DictObj) error {
		pd.Delete(name)
		return nil
	})
}

// Crop sets the crop box to x, y, w, h.
func (d *Document) Crop(pages []int, x, y, w, h float64) error {
	return d.SetBox(pages, "CropBox", Box{x, y, x + w, y + h})
}

func (d *Document) blankPageLike(pd *raw.DictObj) (raw.ObjectRef, error) {
	box, err := d.pageBox(pd, "MediaBox")
	if err != nil {
		return raw.ObjectRef{}, err
	}
	page := raw.Dict()
	page.SetKey("Type", raw.NameLiteral("Page"))
	page.SetKey("MediaBox", box.array())
	page.SetKey("Resources", raw.Dict())
	if rot, _ := d.rotation(pd); rot != 0 {
		page.SetKey("Rotate", raw.NumberInt(int64(rot)))
	}
	return d.Add(page).R, nil
}

// pad inserts a blank page sized like page p before or after each page
// for which want(p) holds.
func (d *Document) pad(want func(p int) bool, before bool) error {
	if err := d.flatten(); err != nil {
		return err
	}
	refs, err := d.pageRefs()
	if err != nil {
		return err
	}
	out := make([]raw.ObjectRef, 0, len(refs))
	for i, ref := range refs {
		if !want(i + 1) {
			out = append(out, ref)
			continue
		}
		pd, err := d.dict(raw.RefObj{R: ref})
		if err != nil {
			return err
		}
		blank, err := d.blankPageLike(pd)
		if err != nil {
			return err
		}
		if before {
			out = append(out, blank, ref)
		} else {
			out = append(out, ref, blank)
		}
	}
	return d.setPages(out)
}

func (d *Document) pageSet(pages []int) (map[int]bool, error) {
	n, err := d.PageCount()
	if err != nil {
		return nil, err
	}
	set := make(map[int]bool, len(pages))
	for _, p := range pages {
		if p < 1 || p > n {
			return nil, fmt.Errorf("%w: page %d of %d", ErrPageRange, p, n)
		}
		set[p] = true
	}
	return set, nil
}

// PadBefore inserts a blank page before each page in pages.
func (d *Document) PadBefore(pages []int) error {
	set, err := d.pageSet(pages)
	if err != nil {
		return err
	}
	return d.pad(func(p int) bool { return set[p] }, true)
}

// PadAfter inserts a blank page after each page in pages.
func (d *Document) PadAfter(pages []int) error {
	set, err := d.pageSet(pages)
	if err != nil {
		return err
	}
	return d.pad(func(p int) bool { return set[p] }, false)
}

// PadEvery inserts a blank page after every n pages, but not after the
// last page.
func (d *Document) PadEvery(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: pad every %d", ErrBadArgument, n)
	}
	count, err := d.PageCount()
	if err != nil {
		return err
	}
	return d.pad(func(p int) bool { return p%n == 0 && p < count }, false)
}

// PadMultiple adds blank pages, sized like the last page, until the page
// count is a multiple of n. A negative n adds them at the front, sized like
// the first page.
func (d *Document) PadMultiple(n int) error {
	if n == 0 {
		return fmt.Errorf("%w: pad multiple 0", ErrBadArgument)
	}
	if err := d.flatten(); err != nil {
		return err
	}
	refs, err := d.pageRefs()
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return nil
	}
	front := n < 0
	if front {
		n = -n
	}
	missing := (n - len(refs)%n) % n
	if missing == 0 {
		return nil
	}
	model := refs[len(refs)-1]
	if front {
		model = refs[0]
	}
	pd, err := d.dict(raw.RefObj{R: model})
	if err != nil {
		return err
	}
	var blanks []raw.ObjectRef
	for i := 0; i < missing; i++ {
		b, err := d.blankPageLike(pd)
		if err != nil {
			return err
		}
		blanks = append(blanks, b)
	}
	if front {
		return d.setPages(append(blanks, refs...))
	}
	return d.setPages(append(append([]raw.ObjectRef(nil), refs...), blanks...))
}
