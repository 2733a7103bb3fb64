package engine

import (
	"context"
	"os"

	"github.com/wudi/pdfbridge/document"
)

func (e *Engine) save(d *document.Document, opts document.SaveOptions) ([]byte, error) {
	opts.Demo = e.demo
	return d.Bytes(context.Background(), opts)
}

// saveOptions reads linearize, makeID, preserve, generate and compress
// flags from consecutive arguments starting at i.
func (a *args) saveOptions(i int) document.SaveOptions {
	return document.SaveOptions{
		Linearize:             a.bool(i),
		MakeID:                a.bool(i + 1),
		PreserveObjectStreams: a.bool(i + 2),
		GenerateObjectStreams: a.bool(i + 3),
		CompressObjectStreams: a.bool(i + 4),
	}
}

// encryptOptions reads method, permissions, owner and user passwords,
// linearize and makeID from consecutive arguments starting at i.
func (a *args) encryptOptions(i int) document.SaveOptions {
	method := a.enum(i, "encryption method", document.EncryptionMethodCount)
	perms := a.ints(i + 1)
	owner, user := a.str(i+2), a.str(i+3)
	opts := document.SaveOptions{Linearize: a.bool(i + 4), MakeID: a.bool(i + 5)}
	if a.err != nil {
		return opts
	}
	bans := make([]document.Permission, len(perms))
	for k, p := range perms {
		bans[k] = document.Permission(p)
	}
	enc, err := document.EncryptionMethod(method).Options(user, owner, bans)
	if err != nil {
		a.err = err
		return opts
	}
	opts.Encrypt = enc
	return opts
}

func (e *Engine) fileExports() map[string]native {
	return map[string]native{
		"toFileExt": func(a *args) (any, error) {
			d, path, opts := a.doc(0), a.str(1), a.saveOptions(2)
			if a.err != nil {
				return nil, a.err
			}
			out, err := e.save(d, opts)
			if err != nil {
				return nil, err
			}
			return nil, os.WriteFile(path, out, 0o644)
		},
		"toMemoryExt": func(a *args) (any, error) {
			d, opts := a.doc(0), a.saveOptions(1)
			if a.err != nil {
				return nil, a.err
			}
			return e.save(d, opts)
		},
		"toFileEncrypted": func(a *args) (any, error) {
			d, opts, path := a.doc(0), a.encryptOptions(1), a.str(7)
			if a.err != nil {
				return nil, a.err
			}
			out, err := e.save(d, opts)
			if err != nil {
				return nil, err
			}
			return nil, os.WriteFile(path, out, 0o644)
		},
		"toMemoryEncrypted": func(a *args) (any, error) {
			d, opts := a.doc(0), a.encryptOptions(1)
			if a.err != nil {
				return nil, a.err
			}
			return e.save(d, opts)
		},
		"decryptPdf": func(a *args) (any, error) {
			d, pw := a.doc(0), a.str(1)
			if a.err != nil {
				return nil, a.err
			}
			return nil, d.Decrypt(pw)
		},
		"decryptPdfOwner": func(a *args) (any, error) {
			d, pw := a.doc(0), a.str(1)
			if a.err != nil {
				return nil, a.err
			}
			return nil, d.DecryptOwner(pw)
		},
		"isEncrypted": func(a *args) (any, error) {
			d := a.doc(0)
			if a.err != nil {
				return nil, a.err
			}
			return d.IsEncrypted(), nil
		},
		"hasPermission": func(a *args) (any, error) {
			d, p := a.doc(0), a.enum(1, "permission", document.PermissionCount)
			if a.err != nil {
				return nil, a.err
			}
			return d.HasPermission(document.Permission(p))
		},
		// encryptionKind is -1 for an unencrypted document.
		"encryptionKind": func(a *args) (any, error) {
			d := a.doc(0)
			if a.err != nil {
				return nil, a.err
			}
			if m, ok := d.EncryptionKind(); ok {
				return int(m), nil
			}
			return -1, nil
		},
	}
}
