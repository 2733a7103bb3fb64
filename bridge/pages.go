package bridge

var (
	opScalePages      = op4("scalePages", EncDoc, EncRange, EncFloat, EncFloat, DecUnit)
	opScaleToFit      = op5("scaleToFit", EncDoc, EncRange, EncFloat, EncFloat, EncFloat, DecUnit)
	opScaleToFitPaper = op4("scaleToFitPaper", EncDoc, EncRange, EncEnum[Paper], EncFloat, DecUnit)
	opScaleContents   = op4("scaleContents", EncDoc, EncRange, EncPosition, EncFloat, DecUnit)
	opShiftContents   = op3("shiftContents", EncDoc, EncRange, encPair, DecUnit)
	opRotate          = op3("rotate", EncDoc, EncRange, EncInt, DecUnit)
	opRotateBy        = op3("rotateBy", EncDoc, EncRange, EncInt, DecUnit)
	opRotateContents  = op3("rotateContents", EncDoc, EncRange, EncFloat, DecUnit)
	opUpright         = op2("upright", EncDoc, EncRange, DecUnit)
	opHFlip           = op2("hFlip", EncDoc, EncRange, DecUnit)
	opVFlip           = op2("vFlip", EncDoc, EncRange, DecUnit)
	opCrop            = op3("crop", EncDoc, EncRange, encRect, DecUnit)
	opRemoveCrop      = op2("removeCrop", EncDoc, EncRange, DecUnit)
	opRemoveTrim      = op2("removeTrim", EncDoc, EncRange, DecUnit)
	opRemoveArt       = op2("removeArt", EncDoc, EncRange, DecUnit)
	opRemoveBleed     = op2("removeBleed", EncDoc, EncRange, DecUnit)
	opSetMediabox     = op3("setMediabox", EncDoc, EncRange, EncBox, DecUnit)
	opSetCropBox      = op3("setCropBox", EncDoc, EncRange, EncBox, DecUnit)
	opSetTrimBox      = op3("setTrimBox", EncDoc, EncRange, EncBox, DecUnit)
	opSetArtBox       = op3("setArtBox", EncDoc, EncRange, EncBox, DecUnit)
	opSetBleedBox     = op3("setBleedBox", EncDoc, EncRange, EncBox, DecUnit)
	opGetMediaBox     = op2("getMediaBox", EncDoc, EncInt, DecBox)
	opGetCropBox      = op2("getCropBox", EncDoc, EncInt, DecBox)
	opGetTrimBox      = op2("getTrimBox", EncDoc, EncInt, DecBox)
	opGetArtBox       = op2("getArtBox", EncDoc, EncInt, DecBox)
	opGetBleedBox     = op2("getBleedBox", EncDoc, EncInt, DecBox)
	opHasBox          = op3("hasBox", EncDoc, EncInt, EncString, DecBool)
	opPageRotation    = op2("getPageRotation", EncDoc, EncInt, DecInt)
	opPadBefore       = op2("padBefore", EncDoc, EncRange, DecUnit)
	opPadAfter        = op2("padAfter", EncDoc, EncRange, DecUnit)
	opPadEvery        = op2("padEvery", EncDoc, EncInt, DecUnit)
	opPadMultiple     = op2("padMultiple", EncDoc, EncInt, DecUnit)
)

func unit(_ Unit, err error) error { return err }

// ScalePages scales pages and content by sx, sy.
func (c *Client) ScalePages(d Doc, r Range, sx, sy float64) error {
	return unit(opScalePages.Call(c, d, r, sx, sy))
}

// ScaleToFit fits the content of each page to a w x h page, centred.
// scale below 1 leaves a margin.
func (c *Client) ScaleToFit(d Doc, r Range, w, h, scale float64) error {
	return unit(opScaleToFit.Call(c, d, r, w, h, scale))
}

func (c *Client) ScaleToFitPaper(d Doc, r Range, p Paper, scale float64) error {
	return unit(opScaleToFitPaper.Call(c, d, r, p, scale))
}

// ScaleContents scales content about the point pos names.
func (c *Client) ScaleContents(d Doc, r Range, pos Position, scale float64) error {
	return unit(opScaleContents.Call(c, d, r, pos, scale))
}

func (c *Client) ShiftContents(d Doc, r Range, dx, dy float64) error {
	return unit(opShiftContents.Call(c, d, r, pair{dx, dy}))
}

// Rotate sets the viewing rotation, a multiple of 90.
func (c *Client) Rotate(d Doc, r Range, angle int) error {
	return unit(opRotate.Call(c, d, r, angle))
}

func (c *Client) RotateBy(d Doc, r Range, angle int) error {
	return unit(opRotateBy.Call(c, d, r, angle))
}

// RotateContents turns page content clockwise by angle degrees.
func (c *Client) RotateContents(d Doc, r Range, angle float64) error {
	return unit(opRotateContents.Call(c, d, r, angle))
}

// Upright removes viewing rotation without changing how pages look.
func (c *Client) Upright(d Doc, r Range) error { return unit(opUpright.Call(c, d, r)) }

func (c *Client) HFlip(d Doc, r Range) error { return unit(opHFlip.Call(c, d, r)) }

func (c *Client) VFlip(d Doc, r Range) error { return unit(opVFlip.Call(c, d, r)) }

// Crop sets the crop box from an origin and size.
func (c *Client) Crop(d Doc, r Range, x, y, w, h float64) error {
	return unit(opCrop.Call(c, d, r, rect{x, y, w, h}))
}

func (c *Client) RemoveCrop(d Doc, r Range) error  { return unit(opRemoveCrop.Call(c, d, r)) }
func (c *Client) RemoveTrim(d Doc, r Range) error  { return unit(opRemoveTrim.Call(c, d, r)) }
func (c *Client) RemoveArt(d Doc, r Range) error   { return unit(opRemoveArt.Call(c, d, r)) }
func (c *Client) RemoveBleed(d Doc, r Range) error { return unit(opRemoveBleed.Call(c, d, r)) }

func (c *Client) SetMediabox(d Doc, r Range, b Box) error {
	return unit(opSetMediabox.Call(c, d, r, b))
}

func (c *Client) SetCropBox(d Doc, r Range, b Box) error {
	return unit(opSetCropBox.Call(c, d, r, b))
}

func (c *Client) SetTrimBox(d Doc, r Range, b Box) error {
	return unit(opSetTrimBox.Call(c, d, r, b))
}

func (c *Client) SetArtBox(d Doc, r Range, b Box) error {
	return unit(opSetArtBox.Call(c, d, r, b))
}

func (c *Client) SetBleedBox(d Doc, r Range, b Box) error {
	return unit(opSetBleedBox.Call(c, d, r, b))
}

// GetMediaBox returns the media box of page. Missing boxes default as in
// a viewer.
func (c *Client) GetMediaBox(d Doc, page int) (Box, error) { return opGetMediaBox.Call(c, d, page) }
func (c *Client) GetCropBox(d Doc, page int) (Box, error)  { return opGetCropBox.Call(c, d, page) }
func (c *Client) GetTrimBox(d Doc, page int) (Box, error)  { return opGetTrimBox.Call(c, d, page) }
func (c *Client) GetArtBox(d Doc, page int) (Box, error)   { return opGetArtBox.Call(c, d, page) }
func (c *Client) GetBleedBox(d Doc, page int) (Box, error) { return opGetBleedBox.Call(c, d, page) }

// HasBox reports whether page sets the named box, e.g. "/TrimBox".
func (c *Client) HasBox(d Doc, page int, box string) (bool, error) {
	return opHasBox.Call(c, d, page, box)
}

func (c *Client) PageRotation(d Doc, page int) (int, error) {
	return opPageRotation.Call(c, d, page)
}

// PadBefore inserts a blank page before each page of r.
func (c *Client) PadBefore(d Doc, r Range) error { return unit(opPadBefore.Call(c, d, r)) }

func (c *Client) PadAfter(d Doc, r Range) error { return unit(opPadAfter.Call(c, d, r)) }

// PadEvery inserts a blank page after every n pages.
func (c *Client) PadEvery(d Doc, n int) error { return unit(opPadEvery.Call(c, d, n)) }

// PadMultiple pads the end so the page count is a multiple of n.
func (c *Client) PadMultiple(d Doc, n int) error { return unit(opPadMultiple.Call(c, d, n)) }
