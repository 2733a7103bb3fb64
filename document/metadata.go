package document

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/wudi/pdfbridge/ir/raw"
)

// MajorVersion returns the major part of the header version.
func (d *Document) MajorVersion() int {
	var major, minor int
	fmt.Sscanf(d.version, "%d.%d", &major, &minor)
	return major
}

// MinorVersion returns the minor part of the header version.
func (d *Document) MinorVersion() int {
	var major, minor int
	fmt.Sscanf(d.version, "%d.%d", &major, &minor)
	return minor
}

// SetVersion sets the header version. The catalog /Version key, which can
// only raise the version, is dropped.
func (d *Document) SetVersion(major, minor int) error {
	if major < 1 || major > 2 || minor < 0 || minor > 9 {
		return fmt.Errorf("%w: version %d.%d", ErrBadArgument, major, minor)
	}
	d.version = fmt.Sprintf("%d.%d", major, minor)
	if cat, err := d.catalog(); err == nil {
		cat.Delete("Version")
	}
	return nil
}

// Info keys understood by GetInfo and SetInfo.
const (
	InfoTitle        = "Title"
	InfoAuthor       = "Author"
	InfoSubject      = "Subject"
	InfoKeywords     = "Keywords"
	InfoCreator      = "Creator"
	InfoProducer     = "Producer"
	InfoCreationDate = "CreationDate"
	InfoModDate      = "ModDate"
)

func (d *Document) info(create bool) (*raw.DictObj, error) {
	info, err := d.lookupDict(d.trailer, "Info")
	if err != nil || info != nil || !create {
		return info, err
	}
	info = raw.Dict()
	d.trailer.SetKey("Info", d.Add(info))
	return info, nil
}

// GetInfo returns an entry of the document information dictionary, or ""
// when it is absent.
func (d *Document) GetInfo(key string) (string, error) {
	info, err := d.info(false)
	if err != nil || info == nil {
		return "", err
	}
	v, ok := info.Lookup(key)
	if !ok {
		return "", nil
	}
	s, _ := d.textValue(v)
	return s, nil
}

// SetInfo sets an entry of the document information dictionary and the
// matching XMP property when the document has XMP metadata.
func (d *Document) SetInfo(key, value string) error {
	info, err := d.info(true)
	if err != nil {
		return err
	}
	info.SetKey(key, encodeText(value))
	xmp, err := d.Metadata()
	if err != nil || xmp == nil {
		return err
	}
	prop, ok := xmpProperties[key]
	if !ok {
		return nil
	}
	if key == InfoCreationDate || key == InfoModDate {
		value = xmpDate(value)
	}
	return d.SetMetadata(setXMPProperty(xmp, prop, value))
}

type xmpProperty struct {
	name      string
	container string // rdf:Alt, rdf:Seq, rdf:Bag or "" for a simple value
}

var xmpProperties = map[string]xmpProperty{
	InfoTitle:        {"dc:title", "rdf:Alt"},
	InfoAuthor:       {"dc:creator", "rdf:Seq"},
	InfoSubject:      {"dc:description", "rdf:Alt"},
	InfoKeywords:     {"pdf:Keywords", ""},
	InfoCreator:      {"xmp:CreatorTool", ""},
	InfoProducer:     {"pdf:Producer", ""},
	InfoCreationDate: {"xmp:CreateDate", ""},
	InfoModDate:      {"xmp:ModifyDate", ""},
}

func xmlEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '&':
			b.WriteString("&amp;")
		case '"':
			b.WriteString("&quot;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (p xmpProperty) element(value string) string {
	v := xmlEscape(value)
	switch p.container {
	case "rdf:Alt":
		v = `<rdf:Alt><rdf:li xml:lang="x-default">` + v + `</rdf:li></rdf:Alt>`
	case "rdf:Seq", "rdf:Bag":
		v = "<" + p.container + "><rdf:li>" + v + "</rdf:li></" + p.container + ">"
	}
	return "<" + p.name + ">" + v + "</" + p.name + ">"
}

var descriptionEnd = regexp.MustCompile(`</rdf:Description>`)

// setXMPProperty replaces the property in the packet, or adds it to the
// first rdf:Description.
func setXMPProperty(xmp []byte, p xmpProperty, value string) []byte {
	name := regexp.QuoteMeta(p.name)
	elem := regexp.MustCompile(`(?s)<` + name + `(\s[^>]*)?>.*?</` + name + `>|<` + name + `(\s[^>]*)?/>`)
	if loc := elem.FindIndex(xmp); loc != nil {
		return append(append(append([]byte(nil), xmp[:loc[0]]...), p.element(value)...), xmp[loc[1]:]...)
	}
	attr := regexp.MustCompile(`\s` + name + `="[^"]*"`)
	if loc := attr.FindIndex(xmp); loc != nil {
		repl := " " + p.name + `="` + xmlEscape(value) + `"`
		if p.container != "" {
			xmp = append(append([]byte(nil), xmp[:loc[0]]...), xmp[loc[1]:]...)
		} else {
			return append(append(append([]byte(nil), xmp[:loc[0]]...), repl...), xmp[loc[1]:]...)
		}
	}
	if loc := descriptionEnd.FindIndex(xmp); loc != nil {
		return append(append(append([]byte(nil), xmp[:loc[0]]...), p.element(value)...), xmp[loc[0]:]...)
	}
	return xmp
}

// xmpDate converts a PDF date (D:YYYYMMDDHHmmSSOHH'mm') to ISO 8601.
// Unparseable input is returned unchanged.
func xmpDate(s string) string {
	t := strings.TrimPrefix(s, "D:")
	if len(t) < 4 {
		return s
	}
	digits := func(from, n int, def string) string {
		if len(t) >= from+n {
			return t[from : from+n]
		}
		return def
	}
	out := digits(0, 4, "") + "-" + digits(4, 2, "01") + "-" + digits(6, 2, "01") +
		"T" + digits(8, 2, "00") + ":" + digits(10, 2, "00") + ":" + digits(12, 2, "00")
	if len(t) > 14 {
		switch tz := t[14:]; tz[0] {
		case 'Z':
			out += "Z"
		case '+', '-':
			h := strings.Trim(tzPart(tz[1:], 0), "'")
			m := strings.Trim(tzPart(tz[1:], 1), "'")
			if h == "" {
				h = "00"
			}
			if m == "" {
				m = "00"
			}
			out += string(tz[0]) + h + ":" + m
		}
	}
	return out
}

func tzPart(s string, i int) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '\'' })
	if i < len(parts) {
		return parts[i]
	}
	return ""
}

// Metadata returns the decoded XMP packet, or nil when there is none.
func (d *Document) Metadata() ([]byte, error) {
	cat, err := d.catalog()
	if err != nil {
		return nil, err
	}
	v, ok := cat.Lookup("Metadata")
	if !ok {
		return nil, nil
	}
	return d.streamData(v)
}

// SetMetadata replaces the XMP packet.
func (d *Document) SetMetadata(xmp []byte) error {
	cat, err := d.catalog()
	if err != nil {
		return err
	}
	dict := raw.Dict()
	dict.SetKey("Type", raw.NameLiteral("Metadata"))
	dict.SetKey("Subtype", raw.NameLiteral("XML"))
	cat.SetKey("Metadata", d.Add(raw.NewStream(dict, append([]byte(nil), xmp...))))
	return nil
}

// RemoveMetadata deletes the XMP packet.
func (d *Document) RemoveMetadata() error {
	cat, err := d.catalog()
	if err != nil {
		return err
	}
	cat.Delete("Metadata")
	return nil
}

// CreateMetadata builds an XMP packet from the information dictionary,
// replacing any existing one.
func (d *Document) CreateMetadata() error {
	var body bytes.Buffer
	for _, key := range []string{InfoTitle, InfoAuthor, InfoSubject, InfoKeywords, InfoCreator, InfoProducer, InfoCreationDate, InfoModDate} {
		v, err := d.GetInfo(key)
		if err != nil {
			return err
		}
		if v == "" {
			continue
		}
		if key == InfoCreationDate || key == InfoModDate {
			v = xmpDate(v)
		}
		body.WriteString("   " + xmpProperties[key].element(v) + "\n")
	}
	packet := `<?xpacket begin="` + "\ufeff" + `" id="W5M0MpCehiHzreSzNTczkc9d"?>
<x:xmpmeta xmlns:x="adobe:ns:meta/">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about=""
    xmlns:dc="http://purl.org/dc/elements/1.1/"
    xmlns:pdf="http://ns.adobe.com/pdf/1.3/"
    xmlns:xmp="http://ns.adobe.com/xap/1.0/">
` + body.String() + `  </rdf:Description>
 </rdf:RDF>
</x:xmpmeta>
<?xpacket end="w"?>`
	return d.SetMetadata([]byte(packet))
}

// Layout is the /PageLayout value. Ordinals are stable.
type Layout int

const (
	SinglePage Layout = iota
	OneColumn
	TwoColumnLeft
	TwoColumnRight
	TwoPageLeft
	TwoPageRight
)

// LayoutCount is the number of layouts.
const LayoutCount = 6

var layoutNames = []string{"SinglePage", "OneColumn", "TwoColumnLeft", "TwoColumnRight", "TwoPageLeft", "TwoPageRight"}

// PageMode is the /PageMode value. Ordinals are stable.
type PageMode int

const (
	UseNone PageMode = iota
	UseOutlines
	UseThumbs
	UseOC
	UseAttachments
)

// PageModeCount is the number of page modes.
const PageModeCount = 5

var pageModeNames = []string{"UseNone", "UseOutlines", "UseThumbs", "UseOC", "UseAttachments"}

func (d *Document) setCatalogName(key string, names []string, v int) error {
	if v < 0 || v >= len(names) {
		return fmt.Errorf("%w: %s %d", ErrBadArgument, key, v)
	}
	cat, err := d.catalog()
	if err != nil {
		return err
	}
	cat.SetKey(key, raw.NameLiteral(names[v]))
	return nil
}

func (d *Document) catalogName(key string, names []string) (int, error) {
	cat, err := d.catalog()
	if err != nil {
		return 0, err
	}
	v, ok := cat.Lookup(key)
	if !ok {
		return 0, nil
	}
	o, err := d.resolve(v)
	if err != nil {
		return 0, err
	}
	if n, ok := o.(raw.NameObj); ok {
		for i, name := range names {
			if name == n.Val {
				return i, nil
			}
		}
	}
	return 0, nil
}

func (d *Document) SetPageLayout(l Layout) error {
	return d.setCatalogName("PageLayout", layoutNames, int(l))
}

func (d *Document) SetPageMode(m PageMode) error {
	return d.setCatalogName("PageMode", pageModeNames, int(m))
}

// PageLayout returns the page layout; SinglePage when unset.
func (d *Document) PageLayout() (Layout, error) {
	v, err := d.catalogName("PageLayout", layoutNames)
	return Layout(v), err
}

// PageMode returns the page mode; UseNone when unset.
func (d *Document) PageMode() (PageMode, error) {
	v, err := d.catalogName("PageMode", pageModeNames)
	return PageMode(v), err
}

// Viewer preference keys.
const (
	HideToolbar     = "HideToolbar"
	HideMenubar     = "HideMenubar"
	CenterWindow    = "CenterWindow"
	DisplayDocTitle = "DisplayDocTitle"
)

// SetViewerPreference sets a boolean entry of /ViewerPreferences.
func (d *Document) SetViewerPreference(key string, v bool) error {
	switch key {
	case HideToolbar, HideMenubar, CenterWindow, DisplayDocTitle, "HideWindowUI", "FitWindow":
	default:
		return fmt.Errorf("%w: viewer preference %q", ErrBadArgument, key)
	}
	cat, err := d.catalog()
	if err != nil {
		return err
	}
	prefs, err := d.lookupDict(cat, "ViewerPreferences")
	if err != nil {
		return err
	}
	if prefs == nil {
		prefs = raw.Dict()
	} else {
		prefs = raw.Clone(prefs).(*raw.DictObj)
	}
	prefs.SetKey(key, raw.Bool(v))
	cat.SetKey("ViewerPreferences", prefs)
	return nil
}

// ViewerPreference reports a boolean entry of /ViewerPreferences.
func (d *Document) ViewerPreference(key string) (bool, error) {
	cat, err := d.catalog()
	if err != nil {
		return false, err
	}
	prefs, err := d.lookupDict(cat, "ViewerPreferences")
	if err != nil || prefs == nil {
		return false, err
	}
	v, ok := prefs.Lookup(key)
	if !ok {
		return false, nil
	}
	o, err := d.resolve(v)
	if err != nil {
		return false, err
	}
	b, _ := o.(raw.BoolObj)
	return b.V, nil
}
