package security

import (
	"crypto/aes"
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/wudi/pdfbridge/ir/raw"
)

// Method selects the algorithm of the standard security handler.
type Method int

const (
	MethodRC4_40 Method = iota
	MethodRC4_128
	MethodAES128
	// MethodAES256 is the revision 5 scheme from Acrobat 9.
	MethodAES256
	// MethodAES256ISO is revision 6 as standardised in PDF 2.0.
	MethodAES256ISO
)

func (m Method) String() string {
	switch m {
	case MethodRC4_40:
		return "RC4-40"
	case MethodRC4_128:
		return "RC4-128"
	case MethodAES128:
		return "AES-128"
	case MethodAES256:
		return "AES-256"
	case MethodAES256ISO:
		return "AES-256-ISO"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

type EncryptOptions struct {
	Method          Method
	UserPassword    string
	OwnerPassword   string
	Permissions     raw.Permissions
	EncryptMetadata bool
}

// BuildStandardEncryption constructs an /Encrypt dictionary and a handler
// already keyed for writing objects.
func BuildStandardEncryption(opts EncryptOptions, fileID []byte) (*raw.DictObj, Handler, error) {
	p := PermissionsValue(opts.Permissions)
	enc := raw.Dict()
	enc.SetKey("Filter", raw.NameLiteral("Standard"))
	enc.SetKey("P", raw.NumberInt(int64(p)))
	if !opts.EncryptMetadata && opts.Method >= MethodAES128 {
		enc.SetKey("EncryptMetadata", raw.Bool(false))
	}
	h := &standardHandler{p: p, fileID: fileID, encryptMeta: opts.EncryptMetadata || opts.Method < MethodAES128, authed: true, owner: true}

	switch opts.Method {
	case MethodRC4_40, MethodRC4_128, MethodAES128:
		h.v, h.r, h.keyBytes, h.streamAlgo, h.stringAlgo = 1, 2, 5, algoRC4, algoRC4
		if opts.Method == MethodRC4_128 {
			h.v, h.r, h.keyBytes = 2, 3, 16
		}
		if opts.Method == MethodAES128 {
			h.v, h.r, h.keyBytes, h.streamAlgo, h.stringAlgo = 4, 4, 16, algoAES, algoAES
			enc.SetKey("CF", cryptFilterDict("AESV2", 16))
			enc.SetKey("StmF", raw.NameLiteral("StdCF"))
			enc.SetKey("StrF", raw.NameLiteral("StdCF"))
		}
		owner := opts.OwnerPassword
		if owner == "" {
			owner = opts.UserPassword
		}
		user := pdfDocPassword(opts.UserPassword)
		h.o = computeO(pdfDocPassword(owner), user, h.keyBytes, h.r)
		h.key = computeKey(user, h.o, p, fileID, h.keyBytes, h.r, h.encryptMeta)
		h.u = computeU(h.key, fileID, h.r)
	case MethodAES256, MethodAES256ISO:
		h.v, h.r, h.keyBytes, h.streamAlgo, h.stringAlgo = 5, 6, 32, algoAES, algoAES
		if opts.Method == MethodAES256 {
			h.r = 5
		}
		if err := h.initAES256(opts); err != nil {
			return nil, nil, err
		}
		enc.SetKey("CF", cryptFilterDict("AESV3", 32))
		enc.SetKey("StmF", raw.NameLiteral("StdCF"))
		enc.SetKey("StrF", raw.NameLiteral("StdCF"))
		enc.SetKey("OE", raw.Str(h.oe))
		enc.SetKey("UE", raw.Str(h.ue))
		enc.SetKey("Perms", raw.Str(h.perms))
	default:
		return nil, nil, fmt.Errorf("unknown encryption method %d", int(opts.Method))
	}

	enc.SetKey("V", raw.NumberInt(int64(h.v)))
	enc.SetKey("R", raw.NumberInt(int64(h.r)))
	enc.SetKey("Length", raw.NumberInt(int64(h.keyBytes*8)))
	enc.SetKey("O", raw.Str(h.o))
	enc.SetKey("U", raw.Str(h.u))
	return enc, h, nil
}

func (h *standardHandler) initAES256(opts EncryptOptions) error {
	h.key = make([]byte, 32)
	salts := make([]byte, 32)
	if _, err := rand.Read(h.key); err != nil {
		return err
	}
	if _, err := rand.Read(salts); err != nil {
		return err
	}
	user := saslPassword(opts.UserPassword)
	owner := saslPassword(opts.OwnerPassword)
	if opts.OwnerPassword == "" {
		owner = user
	}

	h.u = concat(h.hash(user, salts[0:8], nil), salts[0:16])
	ue, err := aesCBCRaw(h.hash(user, salts[8:16], nil), h.key, true)
	if err != nil {
		return err
	}
	h.ue = ue
	h.o = concat(h.hash(owner, salts[16:24], h.u), salts[16:32])
	oe, err := aesCBCRaw(h.hash(owner, salts[24:32], h.u), h.key, true)
	if err != nil {
		return err
	}
	h.oe = oe

	perms := make([]byte, 16)
	binary.LittleEndian.PutUint32(perms[:4], uint32(h.p))
	binary.LittleEndian.PutUint32(perms[4:8], 0xFFFFFFFF)
	perms[8] = 'F'
	if h.encryptMeta {
		perms[8] = 'T'
	}
	copy(perms[9:12], "adb")
	if _, err := rand.Read(perms[12:]); err != nil {
		return err
	}
	block, err := aes.NewCipher(h.key)
	if err != nil {
		return err
	}
	h.perms = make([]byte, 16)
	block.Encrypt(h.perms, perms)
	return nil
}

func cryptFilterDict(cfm string, length int) *raw.DictObj {
	std := raw.Dict()
	std.SetKey("Type", raw.NameLiteral("CryptFilter"))
	std.SetKey("CFM", raw.NameLiteral(cfm))
	std.SetKey("AuthEvent", raw.NameLiteral("DocOpen"))
	std.SetKey("Length", raw.NumberInt(int64(length)))
	cf := raw.Dict()
	cf.SetKey("StdCF", std)
	return cf
}
