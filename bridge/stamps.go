package bridge

import "github.com/dop251/goja"

// simpleText is the text and position of AddTextSimple.
type simpleText struct {
	Text     string
	Position Position
}

func encSimpleText(c *Codec, t simpleText, args []goja.Value) []goja.Value {
	return EncPosition(c, t.Position, EncString(c, t.Text, args))
}

var (
	opAddText       = op3("addText", EncDoc, EncRange, EncTextStamp, DecUnit)
	opAddTextSimple = op4("addTextSimple", EncDoc, EncRange, encSimpleText, encFontSize, DecUnit)
	opRemoveText    = op2("removeText", EncDoc, EncRange, DecUnit)
	opTextWidth     = op2("textWidth", EncEnum[Font], EncString, DecInt)
	opStampOn       = op3("stampOn", EncDoc, EncDoc, EncRange, DecUnit)
	opStampUnder    = op3("stampUnder", EncDoc, EncDoc, EncRange, DecUnit)
	opCombinePages  = op2("combinePages", EncDoc, EncDoc, DecDoc)

	opMergeSimple = op1("mergeSimple", EncDocs, DecDoc)
	opMerge       = op3("merge", EncDocs, EncBool, EncBool, DecDoc)
	opMergeSame   = op4("mergeSame", EncDocs, EncBool, EncBool, EncRanges, DecDoc)
	opSelectPages = op2("selectPages", EncDoc, EncRange, DecDoc)
)

// AddText stamps text on the pages of r.
func (c *Client) AddText(d Doc, r Range, t TextStamp) error {
	return unit(opAddText.Call(c, d, r, t))
}

// AddTextSimple stamps black text with default settings.
func (c *Client) AddTextSimple(d Doc, r Range, text string, pos Position, font Font, size float64) error {
	return unit(opAddTextSimple.Call(c, d, r, simpleText{text, pos}, fontSize{font, size}))
}

// RemoveText removes text added by AddText.
func (c *Client) RemoveText(d Doc, r Range) error { return unit(opRemoveText.Call(c, d, r)) }

// TextWidth returns the width of text at 1pt in thousandths of a point.
func (c *Client) TextWidth(font Font, text string) (int, error) {
	return opTextWidth.Call(c, font, text)
}

// StampOn draws page 1 of stamp over the pages of r in d.
func (c *Client) StampOn(stamp, d Doc, r Range) error {
	return unit(opStampOn.Call(c, stamp, d, r))
}

func (c *Client) StampUnder(stamp, d Doc, r Range) error {
	return unit(opStampUnder.Call(c, stamp, d, r))
}

// CombinePages overlays each page of over on the same page of under.
func (c *Client) CombinePages(under, over Doc) (Doc, error) {
	return opCombinePages.Call(c, under, over)
}

func (c *Client) MergeSimple(docs []Doc) (Doc, error) { return opMergeSimple.Call(c, docs) }

// Merge concatenates docs into a new document.
func (c *Client) Merge(docs []Doc, retainNumbering, removeDuplicateFonts bool) (Doc, error) {
	return opMerge.Call(c, docs, retainNumbering, removeDuplicateFonts)
}

// MergeSame merges the pages ranges[i] of docs[i].
func (c *Client) MergeSame(docs []Doc, retainNumbering, removeDuplicateFonts bool, ranges []Range) (Doc, error) {
	return opMergeSame.Call(c, docs, retainNumbering, removeDuplicateFonts, ranges)
}

// SelectPages returns a new document with the pages of r in order.
func (c *Client) SelectPages(d Doc, r Range) (Doc, error) { return opSelectPages.Call(c, d, r) }
