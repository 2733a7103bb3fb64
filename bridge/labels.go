package bridge

var (
	opAddPageLabels             = op4("addPageLabels", EncDoc, EncPageLabel, EncRange, EncBool, DecUnit)
	opRemovePageLabels          = op1("removePageLabels", EncDoc, DecUnit)
	opGetPageLabelStringForPage = op2("getPageLabelStringForPage", EncDoc, EncInt, DecString)
	opStartGetPageLabels        = op1("startGetPageLabels", EncDoc, DecInt)
	opGetPageLabelStyle         = op1("getPageLabelStyle", EncInt, DecEnum[LabelStyle])
	opGetPageLabelPrefix        = op1("getPageLabelPrefix", EncInt, DecString)
	opGetPageLabelOffset        = op1("getPageLabelOffset", EncInt, DecInt)
	opGetPageLabelRange         = op1("getPageLabelRange", EncInt, DecRange)
	opEndGetPageLabels          = op0("endGetPageLabels", DecUnit)
)

// AddPageLabels labels the pages of r. Each contiguous run of r restarts
// at l.Offset unless progress is set, in which case numbering continues
// across runs.
func (c *Client) AddPageLabels(d Doc, l PageLabel, r Range, progress bool) error {
	return unit(opAddPageLabels.Call(c, d, l, r, progress))
}

func (c *Client) RemovePageLabels(d Doc) error { return unit(opRemovePageLabels.Call(c, d)) }

// GetPageLabelStringForPage returns the label a viewer shows for page.
func (c *Client) GetPageLabelStringForPage(d Doc, page int) (string, error) {
	return opGetPageLabelStringForPage.Call(c, d, page)
}

// StartGetPageLabels snapshots the label table of d and returns its size.
func (c *Client) StartGetPageLabels(d Doc) (int, error) { return opStartGetPageLabels.Call(c, d) }

func (c *Client) GetPageLabelStyle(i int) (LabelStyle, error) { return opGetPageLabelStyle.Call(c, i) }
func (c *Client) GetPageLabelPrefix(i int) (string, error)    { return opGetPageLabelPrefix.Call(c, i) }
func (c *Client) GetPageLabelOffset(i int) (int, error)       { return opGetPageLabelOffset.Call(c, i) }

// GetPageLabelRange returns a new range of the pages entry i covers.
func (c *Client) GetPageLabelRange(i int) (Range, error) { return opGetPageLabelRange.Call(c, i) }

func (c *Client) EndGetPageLabels() error { return unit(opEndGetPageLabels.Call(c)) }
