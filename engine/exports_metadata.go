package engine

import (
	"github.com/wudi/pdfbridge/document"
)

func (e *Engine) metadataExports() map[string]native {
	docOp := func(f func(*document.Document) error) native {
		return func(a *args) (any, error) {
			d := a.doc(0)
			if a.err != nil {
				return nil, a.err
			}
			return nil, f(d)
		}
	}
	docInt := func(f func(*document.Document) int) native {
		return func(a *args) (any, error) {
			d := a.doc(0)
			if a.err != nil {
				return nil, a.err
			}
			return f(d), nil
		}
	}
	return map[string]native{
		"getVersion":      docInt((*document.Document).MinorVersion),
		"getMajorVersion": docInt((*document.Document).MajorVersion),
		"setFullVersion": func(a *args) (any, error) {
			d, major, minor := a.doc(0), a.int(1), a.int(2)
			if a.err != nil {
				return nil, a.err
			}
			return nil, d.SetVersion(major, minor)
		},
		"getInfo": func(a *args) (any, error) {
			d, key := a.doc(0), a.str(1)
			if a.err != nil {
				return nil, a.err
			}
			return d.GetInfo(key)
		},
		"setInfo": func(a *args) (any, error) {
			d, key, value := a.doc(0), a.str(1), a.str(2)
			if a.err != nil {
				return nil, a.err
			}
			return nil, d.SetInfo(key, value)
		},
		"getMetadata": func(a *args) (any, error) {
			d := a.doc(0)
			if a.err != nil {
				return nil, a.err
			}
			return d.Metadata()
		},
		"setMetadataFromByteArray": func(a *args) (any, error) {
			d, xmp := a.doc(0), a.bytes(1)
			if a.err != nil {
				return nil, a.err
			}
			return nil, d.SetMetadata(xmp)
		},
		"removeMetadata": docOp((*document.Document).RemoveMetadata),
		"createMetadata": docOp((*document.Document).CreateMetadata),
		"setPageLayout": func(a *args) (any, error) {
			d, l := a.doc(0), a.enum(1, "layout", document.LayoutCount)
			if a.err != nil {
				return nil, a.err
			}
			return nil, d.SetPageLayout(document.Layout(l))
		},
		"getPageLayout": func(a *args) (any, error) {
			d := a.doc(0)
			if a.err != nil {
				return nil, a.err
			}
			l, err := d.PageLayout()
			return int(l), err
		},
		"setPageMode": func(a *args) (any, error) {
			d, m := a.doc(0), a.enum(1, "page mode", document.PageModeCount)
			if a.err != nil {
				return nil, a.err
			}
			return nil, d.SetPageMode(document.PageMode(m))
		},
		"getPageMode": func(a *args) (any, error) {
			d := a.doc(0)
			if a.err != nil {
				return nil, a.err
			}
			m, err := d.PageMode()
			return int(m), err
		},
		"setViewerPreference": func(a *args) (any, error) {
			d, key, v := a.doc(0), a.str(1), a.bool(2)
			if a.err != nil {
				return nil, a.err
			}
			return nil, d.SetViewerPreference(key, v)
		},
		"getViewerPreference": func(a *args) (any, error) {
			d, key := a.doc(0), a.str(1)
			if a.err != nil {
				return nil, a.err
			}
			return d.ViewerPreference(key)
		},
	}
}
