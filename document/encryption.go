package document

import (
	"errors"
	"fmt"

	"github.com/wudi/pdfbridge/ir/raw"
	"github.com/wudi/pdfbridge/security"
)

// Permission is a restriction an encrypted document may carry. Ordinals
// are stable.
type Permission int

const (
	NoEdit Permission = iota
	NoPrint
	NoCopy
	NoAnnot
	NoForms
	NoExtract
	NoAssemble
	NoHqPrint
)

// PermissionCount is the number of permissions.
const PermissionCount = 8

func (p Permission) allowed(perms raw.Permissions) bool {
	switch p {
	case NoEdit:
		return perms.Modify
	case NoPrint:
		return perms.Print
	case NoCopy:
		return perms.Copy
	case NoAnnot:
		return perms.ModifyAnnotations
	case NoForms:
		return perms.FillForms
	case NoExtract:
		return perms.ExtractAccessible
	case NoAssemble:
		return perms.Assemble
	case NoHqPrint:
		return perms.PrintHighQuality
	}
	return true
}

// Restrict removes the permissions banned by bans.
func Restrict(bans []Permission) (raw.Permissions, error) {
	perms := raw.AllPermissions()
	for _, b := range bans {
		switch b {
		case NoEdit:
			perms.Modify = false
		case NoPrint:
			perms.Print = false
		case NoCopy:
			perms.Copy = false
		case NoAnnot:
			perms.ModifyAnnotations = false
		case NoForms:
			perms.FillForms = false
		case NoExtract:
			perms.ExtractAccessible = false
		case NoAssemble:
			perms.Assemble = false
		case NoHqPrint:
			perms.PrintHighQuality = false
		default:
			return perms, fmt.Errorf("%w: permission %d", ErrBadArgument, int(b))
		}
	}
	return perms, nil
}

// EncryptionMethod is an encryption scheme together with whether metadata
// is encrypted. Ordinals are stable.
type EncryptionMethod int

const (
	PDF40bit EncryptionMethod = iota
	PDF128bit
	AES128bitFalse
	AES128bitTrue
	AES256bitFalse
	AES256bitTrue
	AES256bitISOFalse
	AES256bitISOTrue
)

// EncryptionMethodCount is the number of encryption methods.
const EncryptionMethodCount = 8

// Options builds writer encryption options.
func (m EncryptionMethod) Options(user, owner string, bans []Permission) (*security.EncryptOptions, error) {
	methods := [...]security.Method{
		security.MethodRC4_40, security.MethodRC4_128,
		security.MethodAES128, security.MethodAES128,
		security.MethodAES256, security.MethodAES256,
		security.MethodAES256ISO, security.MethodAES256ISO,
	}
	if m < 0 || int(m) >= len(methods) {
		return nil, fmt.Errorf("%w: encryption method %d", ErrBadArgument, int(m))
	}
	perms, err := Restrict(bans)
	if err != nil {
		return nil, err
	}
	return &security.EncryptOptions{
		Method:          methods[m],
		UserPassword:    user,
		OwnerPassword:   owner,
		Permissions:     perms,
		EncryptMetadata: m < AES128bitFalse || m%2 == 1,
	}, nil
}

// IsEncrypted reports whether the document was opened from an encrypted
// file and will be written encrypted.
func (d *Document) IsEncrypted() bool { return d.protection != nil }

// HasPermission reports whether the document carries the restriction p.
// Unencrypted documents carry none.
func (d *Document) HasPermission(p Permission) (bool, error) {
	if p < 0 || p >= PermissionCount {
		return false, fmt.Errorf("%w: permission %d", ErrBadArgument, int(p))
	}
	if d.protection == nil {
		return false, nil
	}
	return !p.allowed(d.protection.Handler.Permissions()), nil
}

// EncryptionKind returns the method the document is encrypted with, and
// false when it is not encrypted.
func (d *Document) EncryptionKind() (EncryptionMethod, bool) {
	if d.protection == nil {
		return 0, false
	}
	info := d.protection.Handler.Info()
	meta := 0
	if info.EncryptMetadata {
		meta = 1
	}
	switch {
	case info.R >= 6:
		return AES256bitISOFalse + EncryptionMethod(meta), true
	case info.R == 5:
		return AES256bitFalse + EncryptionMethod(meta), true
	case info.R == 4 && d.usesAES():
		return AES128bitFalse + EncryptionMethod(meta), true
	case info.R == 2:
		return PDF40bit, true
	}
	return PDF128bit, true
}

func (d *Document) usesAES() bool {
	cf, _ := d.protection.Dict.Lookup("CF")
	cfd, _ := cf.(*raw.DictObj)
	if cfd == nil {
		return false
	}
	name, ok := d.protection.Dict.NameValue("StmF")
	if !ok {
		return false
	}
	v, _ := cfd.Lookup(name)
	fd, _ := v.(*raw.DictObj)
	if fd == nil {
		return false
	}
	cfm, _ := fd.NameValue("CFM")
	return cfm == "AESV2" || cfm == "AESV3"
}

// Decrypt removes encryption after checking the user password. Owner
// passwords are accepted too.
func (d *Document) Decrypt(userPassword string) error {
	return d.decrypt(userPassword, false)
}

// DecryptOwner removes encryption after checking the owner password.
func (d *Document) DecryptOwner(ownerPassword string) error {
	return d.decrypt(ownerPassword, true)
}

func (d *Document) decrypt(password string, owner bool) error {
	if d.protection == nil {
		return ErrNotEncrypted
	}
	h := d.protection.Handler
	if err := h.Authenticate(password); err != nil {
		if errors.Is(err, security.ErrBadPassword) {
			return err
		}
		return fmt.Errorf("%w: %v", security.ErrBadPassword, err)
	}
	if owner && !h.OwnerAuthenticated() {
		return fmt.Errorf("%w: not the owner password", security.ErrBadPassword)
	}
	d.protection = nil
	d.trailer.Delete("Encrypt")
	return nil
}
