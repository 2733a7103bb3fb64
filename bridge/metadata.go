package bridge

var (
	opGetVersion               = op1("getVersion", EncDoc, DecInt)
	opGetMajorVersion          = op1("getMajorVersion", EncDoc, DecInt)
	opSetVersion               = op2("setVersion", EncDoc, EncInt, DecUnit)
	opSetFullVersion           = op3("setFullVersion", EncDoc, EncInt, EncInt, DecUnit)
	opGetMetadata              = op1("getMetadata", EncDoc, DecBytes)
	opSetMetadataFromByteArray = op2("setMetadataFromByteArray", EncDoc, EncBytes, DecUnit)
	opRemoveMetadata           = op1("removeMetadata", EncDoc, DecUnit)
	opCreateMetadata           = op1("createMetadata", EncDoc, DecUnit)
	opSetPageLayout            = op2("setPageLayout", EncDoc, EncEnum[Layout], DecUnit)
	opGetPageLayout            = op1("getPageLayout", EncDoc, DecEnum[Layout])
	opSetPageMode              = op2("setPageMode", EncDoc, EncEnum[PageMode], DecUnit)
	opGetPageMode              = op1("getPageMode", EncDoc, DecEnum[PageMode])
	opHideToolbar              = op2("hideToolbar", EncDoc, EncBool, DecUnit)
	opHideMenubar              = op2("hideMenubar", EncDoc, EncBool, DecUnit)
	opHideWindowUI             = op2("hideWindowUI", EncDoc, EncBool, DecUnit)
	opFitWindow                = op2("fitWindow", EncDoc, EncBool, DecUnit)
	opCenterWindow             = op2("centerWindow", EncDoc, EncBool, DecUnit)
	opDisplayDocTitle          = op2("displayDocTitle", EncDoc, EncBool, DecUnit)
)

// infoField is a getter and setter pair over one info dictionary entry.
type infoField struct {
	get Op1[Doc, string]
	set Op2[Doc, string, Unit]
}

func newInfoField(name string) infoField {
	return infoField{op1("get"+name, EncDoc, DecString), op2("set"+name, EncDoc, EncString, DecUnit)}
}

var (
	infoTitle            = newInfoField("Title")
	infoAuthor           = newInfoField("Author")
	infoSubject          = newInfoField("Subject")
	infoKeywords         = newInfoField("Keywords")
	infoCreator          = newInfoField("Creator")
	infoProducer         = newInfoField("Producer")
	infoCreationDate     = newInfoField("CreationDate")
	infoModificationDate = newInfoField("ModificationDate")
)

// GetVersion returns the minor PDF version, 7 for PDF 1.7.
func (c *Client) GetVersion(d Doc) (int, error) { return opGetVersion.Call(c, d) }

func (c *Client) GetMajorVersion(d Doc) (int, error) { return opGetMajorVersion.Call(c, d) }

// SetVersion sets the version to 1.minor.
func (c *Client) SetVersion(d Doc, minor int) error { return unit(opSetVersion.Call(c, d, minor)) }

func (c *Client) SetFullVersion(d Doc, major, minor int) error {
	return unit(opSetFullVersion.Call(c, d, major, minor))
}

// Info dictionary entries. Setters also update XMP metadata when the
// document has it. Dates use the PDF form D:YYYYMMDDHHmmSSOHH'mm'.

func (c *Client) GetTitle(d Doc) (string, error)    { return infoTitle.get.Call(c, d) }
func (c *Client) SetTitle(d Doc, v string) error    { return unit(infoTitle.set.Call(c, d, v)) }
func (c *Client) GetAuthor(d Doc) (string, error)   { return infoAuthor.get.Call(c, d) }
func (c *Client) SetAuthor(d Doc, v string) error   { return unit(infoAuthor.set.Call(c, d, v)) }
func (c *Client) GetSubject(d Doc) (string, error)  { return infoSubject.get.Call(c, d) }
func (c *Client) SetSubject(d Doc, v string) error  { return unit(infoSubject.set.Call(c, d, v)) }
func (c *Client) GetKeywords(d Doc) (string, error) { return infoKeywords.get.Call(c, d) }
func (c *Client) SetKeywords(d Doc, v string) error { return unit(infoKeywords.set.Call(c, d, v)) }
func (c *Client) GetCreator(d Doc) (string, error)  { return infoCreator.get.Call(c, d) }
func (c *Client) SetCreator(d Doc, v string) error  { return unit(infoCreator.set.Call(c, d, v)) }
func (c *Client) GetProducer(d Doc) (string, error) { return infoProducer.get.Call(c, d) }
func (c *Client) SetProducer(d Doc, v string) error { return unit(infoProducer.set.Call(c, d, v)) }

func (c *Client) GetCreationDate(d Doc) (string, error) { return infoCreationDate.get.Call(c, d) }
func (c *Client) SetCreationDate(d Doc, v string) error {
	return unit(infoCreationDate.set.Call(c, d, v))
}

func (c *Client) GetModificationDate(d Doc) (string, error) {
	return infoModificationDate.get.Call(c, d)
}

func (c *Client) SetModificationDate(d Doc, v string) error {
	return unit(infoModificationDate.set.Call(c, d, v))
}

// GetMetadata returns the XMP packet, or nil when there is none.
func (c *Client) GetMetadata(d Doc) ([]byte, error) { return opGetMetadata.Call(c, d) }

func (c *Client) SetMetadataFromByteArray(d Doc, xmp []byte) error {
	return unit(opSetMetadataFromByteArray.Call(c, d, xmp))
}

func (c *Client) RemoveMetadata(d Doc) error { return unit(opRemoveMetadata.Call(c, d)) }

// CreateMetadata builds an XMP packet from the info dictionary.
func (c *Client) CreateMetadata(d Doc) error { return unit(opCreateMetadata.Call(c, d)) }

func (c *Client) SetPageLayout(d Doc, l Layout) error { return unit(opSetPageLayout.Call(c, d, l)) }
func (c *Client) GetPageLayout(d Doc) (Layout, error) { return opGetPageLayout.Call(c, d) }
func (c *Client) SetPageMode(d Doc, m PageMode) error { return unit(opSetPageMode.Call(c, d, m)) }
func (c *Client) GetPageMode(d Doc) (PageMode, error) { return opGetPageMode.Call(c, d) }

// Viewer preferences.

func (c *Client) HideToolbar(d Doc, v bool) error  { return unit(opHideToolbar.Call(c, d, v)) }
func (c *Client) HideMenubar(d Doc, v bool) error  { return unit(opHideMenubar.Call(c, d, v)) }
func (c *Client) HideWindowUI(d Doc, v bool) error { return unit(opHideWindowUI.Call(c, d, v)) }
func (c *Client) FitWindow(d Doc, v bool) error    { return unit(opFitWindow.Call(c, d, v)) }
func (c *Client) CenterWindow(d Doc, v bool) error { return unit(opCenterWindow.Call(c, d, v)) }
func (c *Client) DisplayDocTitle(d Doc, v bool) error {
	return unit(opDisplayDocTitle.Call(c, d, v))
}
