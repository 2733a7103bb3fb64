package bridge

var (
	opToFile            = op4("toFile", EncDoc, EncString, EncBool, EncBool, DecUnit)
	opToFileExt         = op3("toFileExt", EncDoc, EncString, EncWriteOptions, DecUnit)
	opToMemory          = op3("toMemory", EncDoc, EncBool, EncBool, DecBytes)
	opToMemoryExt       = op2("toMemoryExt", EncDoc, EncWriteOptions, DecBytes)
	opPages             = op1("pages", EncDoc, DecInt)
	opPagesFast         = op2("pagesFast", EncString, EncString, DecInt)
	opPagesFastMemory   = op2("pagesFastMemory", EncString, EncBytes, DecInt)
	opIsLinearized      = op1("isLinearized", EncString, DecBool)
	opToFileEncrypted   = op3("toFileEncrypted", EncDoc, EncEncryptOptions, EncString, DecUnit)
	opToMemoryEncrypted = op2("toMemoryEncrypted", EncDoc, EncEncryptOptions, DecBytes)
	opDecryptPdf        = op2("decryptPdf", EncDoc, EncString, DecUnit)
	opDecryptPdfOwner   = op2("decryptPdfOwner", EncDoc, EncString, DecUnit)
	opIsEncrypted       = op1("isEncrypted", EncDoc, DecBool)
	opHasPermission     = op2("hasPermission", EncDoc, EncEnum[Permission], DecBool)
	opEncryptionKind    = op1("encryptionKind", EncDoc, DecEnum[EncryptionMethod])
)

// ToFile writes d to path. Linearization is accepted but not performed.
func (c *Client) ToFile(d Doc, path string, linearize, makeID bool) error {
	_, err := opToFile.Call(c, d, path, linearize, makeID)
	return err
}

func (c *Client) ToFileExt(d Doc, path string, o WriteOptions) error {
	_, err := opToFileExt.Call(c, d, path, o)
	return err
}

// ToMemory serializes d. A result over Config.MaxBufferSize is nil.
func (c *Client) ToMemory(d Doc, linearize, makeID bool) ([]byte, error) {
	return opToMemory.Call(c, d, linearize, makeID)
}

func (c *Client) ToMemoryExt(d Doc, o WriteOptions) ([]byte, error) {
	return opToMemoryExt.Call(c, d, o)
}

func (c *Client) Pages(d Doc) (int, error) { return opPages.Call(c, d) }

// PagesFast counts the pages of a file without keeping it.
func (c *Client) PagesFast(userpw, path string) (int, error) {
	return opPagesFast.Call(c, userpw, path)
}

func (c *Client) PagesFastMemory(userpw string, data []byte) (int, error) {
	return opPagesFastMemory.Call(c, userpw, data)
}

func (c *Client) IsLinearized(path string) (bool, error) { return opIsLinearized.Call(c, path) }

// ToFileEncrypted writes d encrypted.
func (c *Client) ToFileEncrypted(d Doc, o EncryptOptions, path string) error {
	_, err := opToFileEncrypted.Call(c, d, o, path)
	return err
}

func (c *Client) ToMemoryEncrypted(d Doc, o EncryptOptions) ([]byte, error) {
	return opToMemoryEncrypted.Call(c, d, o)
}

// DecryptPdf removes encryption after checking userpw. The owner password
// is accepted too.
func (c *Client) DecryptPdf(d Doc, userpw string) error {
	_, err := opDecryptPdf.Call(c, d, userpw)
	return err
}

func (c *Client) DecryptPdfOwner(d Doc, ownerpw string) error {
	_, err := opDecryptPdfOwner.Call(c, d, ownerpw)
	return err
}

func (c *Client) IsEncrypted(d Doc) (bool, error) { return opIsEncrypted.Call(c, d) }

// HasPermission reports whether d carries the restriction p.
func (c *Client) HasPermission(d Doc, p Permission) (bool, error) {
	return opHasPermission.Call(c, d, p)
}

// EncryptionKind returns NotEncrypted for a plain document.
func (c *Client) EncryptionKind(d Doc) (EncryptionMethod, error) {
	return opEncryptionKind.Call(c, d)
}
