package bridge

var (
	opFromFile           = op2("fromFile", EncString, EncString, DecDoc)
	opFromFileLazy       = op2("fromFileLazy", EncString, EncString, DecDoc)
	opFromMemory         = op2("fromMemory", EncBytes, EncString, DecDoc)
	opFromMemoryLazy     = op2("fromMemoryLazy", EncBytes, EncString, DecDoc)
	opBlankDocument      = op3("blankDocument", EncFloat, EncFloat, EncInt, DecDoc)
	opBlankDocumentPaper = op2("blankDocumentPaper", EncEnum[Paper], EncInt, DecDoc)
	opDeletePdf          = op1("deletePdf", EncDoc, DecUnit)
	opReplacePdf         = op2("replacePdf", EncDoc, EncDoc, DecUnit)
	opStartEnumerate     = op0("startEnumeratePDFs", DecInt)
	opEnumerateKey       = op1("enumeratePDFsKey", EncInt, DecDoc)
	opEnumerateInfo      = op1("enumeratePDFsInfo", EncInt, DecString)
	opEndEnumerate       = op0("endEnumeratePDFs", DecUnit)
)

// FromFile loads a PDF file, authenticating with userpw when encrypted.
func (c *Client) FromFile(path, userpw string) (Doc, error) {
	return opFromFile.Call(c, path, userpw)
}

// FromFileLazy loads a file, parsing objects only when they are used.
// Damage is reported by the operation that reaches it.
func (c *Client) FromFileLazy(path, userpw string) (Doc, error) {
	return opFromFileLazy.Call(c, path, userpw)
}

// FromMemory loads a PDF from data. The engine keeps its own copy.
func (c *Client) FromMemory(data []byte, userpw string) (Doc, error) {
	return opFromMemory.Call(c, data, userpw)
}

func (c *Client) FromMemoryLazy(data []byte, userpw string) (Doc, error) {
	return opFromMemoryLazy.Call(c, data, userpw)
}

// BlankDocument makes a document of n blank w x h pages.
func (c *Client) BlankDocument(w, h float64, n int) (Doc, error) {
	return opBlankDocument.Call(c, w, h, n)
}

func (c *Client) BlankDocumentPaper(p Paper, n int) (Doc, error) {
	return opBlankDocumentPaper.Call(c, p, n)
}

// DeletePdf invalidates d.
func (c *Client) DeletePdf(d Doc) error {
	_, err := opDeletePdf.Call(c, d)
	return err
}

// ReplacePdf makes old name the document of replacement. replacement is
// invalid afterwards.
func (c *Client) ReplacePdf(old, replacement Doc) error {
	_, err := opReplacePdf.Call(c, old, replacement)
	return err
}

// StartEnumeratePdfs snapshots the live documents and returns how many
// there are.
func (c *Client) StartEnumeratePdfs() (int, error) { return opStartEnumerate.Call(c) }

func (c *Client) EnumeratePdfsKey(i int) (Doc, error) { return opEnumerateKey.Call(c, i) }

func (c *Client) EnumeratePdfsInfo(i int) (string, error) { return opEnumerateInfo.Call(c, i) }

func (c *Client) EndEnumeratePdfs() error {
	_, err := opEndEnumerate.Call(c)
	return err
}

// EnumeratePdfs lists the live documents with where each came from.
func (c *Client) EnumeratePdfs() ([]PdfInfo, error) {
	n, err := c.StartEnumeratePdfs()
	if err != nil {
		return nil, err
	}
	defer c.EndEnumeratePdfs()
	out := make([]PdfInfo, n)
	for i := range out {
		if out[i].Doc, err = c.EnumeratePdfsKey(i); err != nil {
			return nil, err
		}
		if out[i].Name, err = c.EnumeratePdfsInfo(i); err != nil {
			return nil, err
		}
	}
	return out, nil
}
