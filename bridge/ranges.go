package bridge

var (
	opBlankRange       = op0("blankRange", DecRange)
	opDeleteRange      = op1("deleteRange", EncRange, DecUnit)
	opRangeCount       = op0("rangeCount", DecInt)
	opParsePagespec    = op2("parsePagespec", EncDoc, EncString, DecRange)
	opValidatePagespec = op1("validatePagespec", EncString, DecBool)
	opStringOfPagespec = op2("stringOfPagespec", EncDoc, EncRange, DecString)
	opRange            = op2("range", EncInt, EncInt, DecRange)
	opAll              = op1("all", EncDoc, DecRange)
	opEven             = op1("even", EncRange, DecRange)
	opOdd              = op1("odd", EncRange, DecRange)
	opRangeUnion       = op2("rangeUnion", EncRange, EncRange, DecRange)
	opDifference       = op2("difference", EncRange, EncRange, DecRange)
	opRemoveDuplicates = op1("removeDuplicates", EncRange, DecRange)
	opRangeLength      = op1("rangeLength", EncRange, DecInt)
	opRangeGet         = op2("rangeGet", EncRange, EncInt, DecInt)
	opRangeAdd         = op2("rangeAdd", EncRange, EncInt, DecRange)
	opIsInRange        = op2("isInRange", EncRange, EncInt, DecBool)
)

// BlankRange returns a new empty range. Ranges stay allocated until
// DeleteRange; a dropped handle leaks.
func (c *Client) BlankRange() (Range, error) { return opBlankRange.Call(c) }

func (c *Client) DeleteRange(r Range) error {
	_, err := opDeleteRange.Call(c, r)
	return err
}

// RangeCount returns the number of live ranges.
func (c *Client) RangeCount() (int, error) { return opRangeCount.Call(c) }

// ParsePagespec resolves spec against the pages of d, for example
// "1,3-5,end", "2-end odd", "NOT 1" or "landscape".
func (c *Client) ParsePagespec(d Doc, spec string) (Range, error) {
	return opParsePagespec.Call(c, d, spec)
}

// ValidatePagespec checks the syntax of spec.
func (c *Client) ValidatePagespec(spec string) (bool, error) {
	return opValidatePagespec.Call(c, spec)
}

// StringOfPagespec renders r with contiguous runs collapsed.
func (c *Client) StringOfPagespec(d Doc, r Range) (string, error) {
	return opStringOfPagespec.Call(c, d, r)
}

// Range returns a..b inclusive, descending when a > b.
func (c *Client) Range(a, b int) (Range, error) { return opRange.Call(c, a, b) }

func (c *Client) All(d Doc) (Range, error) { return opAll.Call(c, d) }

func (c *Client) Even(r Range) (Range, error) { return opEven.Call(c, r) }

func (c *Client) Odd(r Range) (Range, error) { return opOdd.Call(c, r) }

// RangeUnion returns a followed by the pages of b not in a.
func (c *Client) RangeUnion(a, b Range) (Range, error) { return opRangeUnion.Call(c, a, b) }

// Difference returns the pages of a not in b.
func (c *Client) Difference(a, b Range) (Range, error) { return opDifference.Call(c, a, b) }

func (c *Client) RemoveDuplicates(r Range) (Range, error) { return opRemoveDuplicates.Call(c, r) }

func (c *Client) RangeLength(r Range) (int, error) { return opRangeLength.Call(c, r) }

// RangeGet returns the page at 0-based index i.
func (c *Client) RangeGet(r Range, i int) (int, error) { return opRangeGet.Call(c, r, i) }

// RangeAdd returns r with page appended.
func (c *Client) RangeAdd(r Range, page int) (Range, error) { return opRangeAdd.Call(c, r, page) }

func (c *Client) IsInRange(r Range, page int) (bool, error) { return opIsInRange.Call(c, r, page) }

// RangePages reads a whole range.
func (c *Client) RangePages(r Range) ([]int, error) {
	n, err := c.RangeLength(r)
	if err != nil {
		return nil, err
	}
	out := make([]int, n)
	for i := range out {
		if out[i], err = c.RangeGet(r, i); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// RangeOf builds a range holding pages in order of first appearance.
// Repeated pages are dropped, as with RangeAdd. Use ParsePagespec with a
// comma list to build a range that keeps duplicates.
func (c *Client) RangeOf(pages ...int) (Range, error) {
	r, err := c.BlankRange()
	if err != nil {
		return 0, err
	}
	for _, p := range pages {
		next, err := c.RangeAdd(r, p)
		c.DeleteRange(r)
		if err != nil {
			return 0, err
		}
		r = next
	}
	return r, nil
}
