package bridge

import "github.com/dop251/goja"

// JSONOptions control OutputJSONMemory.
type JSONOptions struct {
	ParseContent bool // content streams as operator lists
	NoStreamData bool
	Decompress   bool
}

func encJSONOptions(c *Codec, o JSONOptions, args []goja.Value) []goja.Value {
	args = EncBool(c, o.ParseContent, args)
	args = EncBool(c, o.NoStreamData, args)
	return EncBool(c, o.Decompress, args)
}

// pageSize is a width and height.
type pageSize = pair

var (
	opCompress            = op1("compress", EncDoc, DecUnit)
	opDecompress          = op1("decompress", EncDoc, DecUnit)
	opSqueezeInMemory     = op1("squeezeInMemory", EncDoc, DecUnit)
	opOutputJSONMemory    = op2("outputJSONMemory", EncDoc, encJSONOptions, DecBytes)
	opTextToPDFMemory     = op3("textToPDFMemory", encPair, encFontSize, EncBytes, DecDoc)
	opTextToPDFPaper      = op3("textToPDFPaper", EncEnum[Paper], encFontSize, EncBytes, DecDoc)
	opMarkdownToPDFMemory = op3("markdownToPDFMemory", encPair, encFontSize, EncBytes, DecDoc)
	opHTMLToPDFMemory     = op3("htmlToPDFMemory", encPair, encFontSize, EncBytes, DecDoc)
)

// Compress flate-compresses every unfiltered stream.
func (c *Client) Compress(d Doc) error { return unit(opCompress.Call(c, d)) }

func (c *Client) Decompress(d Doc) error { return unit(opDecompress.Call(c, d)) }

// SqueezeInMemory shares identical objects, drops unreachable ones and
// compresses streams.
func (c *Client) SqueezeInMemory(d Doc) error { return unit(opSqueezeInMemory.Call(c, d)) }

// OutputJSONMemory dumps the object graph of d as JSON.
func (c *Client) OutputJSONMemory(d Doc, o JSONOptions) ([]byte, error) {
	return opOutputJSONMemory.Call(c, d, o)
}

// TextToPDFMemory typesets plain text on w x h pages.
func (c *Client) TextToPDFMemory(w, h float64, font Font, size float64, text []byte) (Doc, error) {
	return opTextToPDFMemory.Call(c, pageSize{w, h}, fontSize{font, size}, text)
}

func (c *Client) TextToPDFPaper(p Paper, font Font, size float64, text []byte) (Doc, error) {
	return opTextToPDFPaper.Call(c, p, fontSize{font, size}, text)
}

// MarkdownToPDFMemory typesets CommonMark source.
func (c *Client) MarkdownToPDFMemory(w, h float64, font Font, size float64, src []byte) (Doc, error) {
	return opMarkdownToPDFMemory.Call(c, pageSize{w, h}, fontSize{font, size}, src)
}

// HTMLToPDFMemory typesets a subset of HTML: headings, paragraphs, lists,
// emphasis and links.
func (c *Client) HTMLToPDFMemory(w, h float64, font Font, size float64, src []byte) (Doc, error) {
	return opHTMLToPDFMemory.Call(c, pageSize{w, h}, fontSize{font, size}, src)
}
