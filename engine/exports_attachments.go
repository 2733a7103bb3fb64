package engine

func (e *Engine) attachmentExports() map[string]native {
	return map[string]native{
		"attachFileFromMemory": func(a *args) (any, error) {
			data, name, d := a.bytes(0), a.str(1), a.doc(2)
			if a.err != nil {
				return nil, a.err
			}
			return nil, d.Attach(name, data)
		},
		"removeAttachedFiles": func(a *args) (any, error) {
			d := a.doc(0)
			if a.err != nil {
				return nil, a.err
			}
			return nil, d.RemoveAttachments()
		},
		"startGetAttachments": func(a *args) (any, error) {
			d := a.doc(0)
			if a.err != nil {
				return nil, a.err
			}
			list, err := d.Attachments()
			if err != nil {
				return nil, err
			}
			e.attachments = list
			return nil, nil
		},
		"numberGetAttachments": func(*args) (any, error) { return len(e.attachments), nil },
		"getAttachmentName": func(a *args) (any, error) {
			i := a.index(0, len(e.attachments))
			if a.err != nil {
				return nil, a.err
			}
			return e.attachments[i].Name, nil
		},
		"getAttachmentPage": func(a *args) (any, error) {
			i := a.index(0, len(e.attachments))
			if a.err != nil {
				return nil, a.err
			}
			return e.attachments[i].Page, nil
		},
		"getAttachmentData": func(a *args) (any, error) {
			i := a.index(0, len(e.attachments))
			if a.err != nil {
				return nil, a.err
			}
			return e.attachments[i].Data, nil
		},
		"endGetAttachments": func(*args) (any, error) {
			e.attachments = nil
			return nil, nil
		},
	}
}
