package bridge

import "github.com/dop251/goja"

// Doc names a document held by the engine. 0 is never valid.
type Doc int

// Range names a page range held by the engine. 0 is never valid.
type Range int

// Position is an anchor with up to two coordinates.
type Position struct {
	Anchor Anchor
	X, Y   float64
}

// Box is a page boundary.
type Box struct {
	MinX, MaxX, MinY, MaxY float64
}

// PdfInfo is one entry of EnumeratePdfs.
type PdfInfo struct {
	Doc  Doc
	Name string
}

// WriteOptions control output.
type WriteOptions struct {
	Linearize             bool
	MakeID                bool
	PreserveObjectStreams bool
	GenerateObjectStreams bool
	CompressObjectStreams bool
}

func EncWriteOptions(c *Codec, o WriteOptions, args []goja.Value) []goja.Value {
	for _, b := range []bool{o.Linearize, o.MakeID, o.PreserveObjectStreams, o.GenerateObjectStreams, o.CompressObjectStreams} {
		args = EncBool(c, b, args)
	}
	return args
}

// EncryptOptions describe encrypted output.
type EncryptOptions struct {
	Method        EncryptionMethod
	Permissions   []Permission // banned
	OwnerPassword string
	UserPassword  string
	Linearize     bool
	MakeID        bool
}

func EncEncryptOptions(c *Codec, o EncryptOptions, args []goja.Value) []goja.Value {
	args = EncEnum(c, o.Method, args)
	args = encList(c, o.Permissions, func(p Permission) any { return int64(p) }, args)
	args = EncString(c, o.OwnerPassword, args)
	args = EncString(c, o.UserPassword, args)
	args = EncBool(c, o.Linearize, args)
	return EncBool(c, o.MakeID, args)
}

// PageLabel describes labels added by AddPageLabels.
type PageLabel struct {
	Style  LabelStyle
	Prefix string
	Offset int // number of the first page
}

func EncPageLabel(c *Codec, l PageLabel, args []goja.Value) []goja.Value {
	args = EncEnum(c, l.Style, args)
	args = EncString(c, l.Prefix, args)
	return EncInt(c, l.Offset, args)
}

// TextStamp describes text added by AddText. Text may hold several lines
// and the variables %Page, %PageDiv2, %EndPage, %Label, %Roman, %roman,
// %filename and %Bates.
type TextStamp struct {
	Text              string
	Position          Position
	LineSpacing       float64
	Bates             int
	Font              Font
	Size              float64
	R, G, B           float64
	Underneath        bool
	RelativeToCropBox bool
	Outline           bool
	Opacity           float64
	Justification     Justification
	Midline           bool
	Topline           bool
	Filename          string
	LineWidth         float64
	EmbedFonts        bool
	// Metrics lays the text out without changing the document.
	Metrics bool
}

// EncTextStamp expands a stamp into its 22 positional arguments.
func EncTextStamp(c *Codec, t TextStamp, args []goja.Value) []goja.Value {
	args = EncString(c, t.Text, args)
	args = EncPosition(c, t.Position, args)
	args = EncFloat(c, t.LineSpacing, args)
	args = EncInt(c, t.Bates, args)
	args = EncEnum(c, t.Font, args)
	args = EncFloat(c, t.Size, args)
	args = EncFloat(c, t.R, args)
	args = EncFloat(c, t.G, args)
	args = EncFloat(c, t.B, args)
	args = EncBool(c, t.Underneath, args)
	args = EncBool(c, t.RelativeToCropBox, args)
	args = EncBool(c, t.Outline, args)
	args = EncFloat(c, t.Opacity, args)
	args = EncEnum(c, t.Justification, args)
	args = EncBool(c, t.Midline, args)
	args = EncBool(c, t.Topline, args)
	args = EncString(c, t.Filename, args)
	args = EncFloat(c, t.LineWidth, args)
	args = EncBool(c, t.EmbedFonts, args)
	return EncBool(c, t.Metrics, args)
}

// fontSize is the trailing pair of AddTextSimple and the typesetters.
type fontSize struct {
	Font Font
	Size float64
}

func encFontSize(c *Codec, f fontSize, args []goja.Value) []goja.Value {
	return EncFloat(c, f.Size, EncEnum(c, f.Font, args))
}

// rect is x, y, width, height.
type rect struct{ X, Y, W, H float64 }

func encRect(c *Codec, r rect, args []goja.Value) []goja.Value {
	for _, v := range []float64{r.X, r.Y, r.W, r.H} {
		args = EncFloat(c, v, args)
	}
	return args
}

// pair is two floats passed in order.
type pair struct{ A, B float64 }

func encPair(c *Codec, p pair, args []goja.Value) []goja.Value {
	return EncFloat(c, p.B, EncFloat(c, p.A, args))
}
