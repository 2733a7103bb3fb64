package bridge

var (
	opAttachFileFromMemory = op3("attachFileFromMemory", EncBytes, EncString, EncDoc, DecUnit)
	opRemoveAttachedFiles  = op1("removeAttachedFiles", EncDoc, DecUnit)
	opStartGetAttachments  = op1("startGetAttachments", EncDoc, DecUnit)
	opNumberGetAttachments = op0("numberGetAttachments", DecInt)
	opGetAttachmentName    = op1("getAttachmentName", EncInt, DecString)
	opGetAttachmentPage    = op1("getAttachmentPage", EncInt, DecInt)
	opGetAttachmentData    = op1("getAttachmentData", EncInt, DecBytes)
	opEndGetAttachments    = op0("endGetAttachments", DecUnit)
)

// AttachFileFromMemory embeds data in d under name.
func (c *Client) AttachFileFromMemory(data []byte, name string, d Doc) error {
	return unit(opAttachFileFromMemory.Call(c, data, name, d))
}

func (c *Client) RemoveAttachedFiles(d Doc) error { return unit(opRemoveAttachedFiles.Call(c, d)) }

// StartGetAttachments snapshots the document-level and page attachments
// of d.
func (c *Client) StartGetAttachments(d Doc) error { return unit(opStartGetAttachments.Call(c, d)) }

func (c *Client) NumberGetAttachments() (int, error)      { return opNumberGetAttachments.Call(c) }
func (c *Client) GetAttachmentName(i int) (string, error) { return opGetAttachmentName.Call(c, i) }

// GetAttachmentPage returns 0 for a document-level attachment.
func (c *Client) GetAttachmentPage(i int) (int, error)    { return opGetAttachmentPage.Call(c, i) }
func (c *Client) GetAttachmentData(i int) ([]byte, error) { return opGetAttachmentData.Call(c, i) }

func (c *Client) EndGetAttachments() error { return unit(opEndGetAttachments.Call(c)) }
