package security

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rand"
	"crypto/rc4"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/wudi/pdfbridge/ir/raw"
)

// DataClass identifies the kind of payload being encrypted or decrypted.
type DataClass int

const (
	DataClassStream DataClass = iota
	DataClassString
	DataClassMetadataStream
)

// ErrBadPassword is returned when neither the user nor the owner password matches.
var ErrBadPassword = errors.New("invalid password")

type Handler interface {
	IsEncrypted() bool
	Authenticate(password string) error
	// OwnerAuthenticated reports whether the last successful
	// Authenticate matched the owner password.
	OwnerAuthenticated() bool
	Decrypt(objNum, gen int, data []byte, class DataClass) ([]byte, error)
	Encrypt(objNum, gen int, data []byte, class DataClass) ([]byte, error)
	Permissions() raw.Permissions
	EncryptMetadata() bool
	Info() raw.EncryptionInfo
}

type HandlerBuilder struct {
	encryptDict *raw.DictObj
	trailer     *raw.DictObj
	fileID      []byte
}

func (b *HandlerBuilder) WithEncryptDict(d *raw.DictObj) *HandlerBuilder { b.encryptDict = d; return b }
func (b *HandlerBuilder) WithTrailer(d *raw.DictObj) *HandlerBuilder     { b.trailer = d; return b }
func (b *HandlerBuilder) WithFileID(id []byte) *HandlerBuilder           { b.fileID = id; return b }

func (b *HandlerBuilder) Build() (Handler, error) {
	if b.encryptDict == nil {
		return noEncryptionHandler{}, nil
	}
	d := b.encryptDict
	if f, _ := d.NameValue("Filter"); f != "" && f != "Standard" {
		return nil, fmt.Errorf("unsupported security handler %s", f)
	}
	v := intVal(d, "V", 0)
	r := intVal(d, "R", 2)
	if v > 5 || r > 6 {
		return nil, fmt.Errorf("encryption V=%d R=%d not supported", v, r)
	}
	keyLen := intVal(d, "Length", 40)
	if v >= 4 {
		keyLen = 128
	}
	if v == 5 {
		keyLen = 256
	}
	if keyLen%8 != 0 || keyLen < 40 {
		return nil, errors.New("encryption length must be a multiple of 8")
	}
	id := b.fileID
	if len(id) == 0 {
		id = FirstFileID(b.trailer)
	}

	base := algoRC4
	if v == 5 {
		base = algoAES
	}
	filters, err := parseCryptFilters(d, base)
	if err != nil {
		return nil, err
	}
	stm, err := resolveCryptFilter(d, "StmF", v, base, filters)
	if err != nil {
		return nil, err
	}
	str, err := resolveCryptFilter(d, "StrF", v, base, filters)
	if err != nil {
		return nil, err
	}
	encryptMeta := true
	if bv, ok := d.Lookup("EncryptMetadata"); ok {
		if bo, ok := bv.(raw.BoolObj); ok {
			encryptMeta = bo.V
		}
	}
	return &standardHandler{
		v:           v,
		r:           r,
		keyBytes:    keyLen / 8,
		o:           stringVal(d, "O"),
		u:           stringVal(d, "U"),
		oe:          stringVal(d, "OE"),
		ue:          stringVal(d, "UE"),
		perms:       stringVal(d, "Perms"),
		p:           int32(intVal(d, "P", -4)),
		fileID:      id,
		encryptMeta: encryptMeta,
		streamAlgo:  stm,
		stringAlgo:  str,
	}, nil
}

type cryptAlgo int

const (
	algoNone cryptAlgo = iota
	algoRC4
	algoAES
)

type standardHandler struct {
	key         []byte
	v, r        int
	keyBytes    int
	o, u        []byte
	oe, ue      []byte
	perms       []byte
	p           int32
	fileID      []byte
	encryptMeta bool
	authed      bool
	owner       bool
	streamAlgo  cryptAlgo
	stringAlgo  cryptAlgo
}

func (h *standardHandler) IsEncrypted() bool        { return true }
func (h *standardHandler) EncryptMetadata() bool    { return h.encryptMeta }
func (h *standardHandler) OwnerAuthenticated() bool { return h.owner }

func (h *standardHandler) Info() raw.EncryptionInfo {
	return raw.EncryptionInfo{
		Filter:          "Standard",
		V:               h.v,
		R:               h.r,
		Length:          h.keyBytes * 8,
		EncryptMetadata: h.encryptMeta,
		Permissions:     h.Permissions(),
		OwnerAuth:       h.owner,
	}
}

// Authenticate tries password as the user password, then as the owner password.
func (h *standardHandler) Authenticate(password string) error {
	if h.r >= 5 {
		return h.authenticateAES256(password)
	}
	pwd := pdfDocPassword(password)
	if key, ok := h.checkUser(pwd); ok {
		h.key, h.authed, h.owner = key, true, false
		return nil
	}
	userPwd := h.recoverUserPassword(pwd)
	if key, ok := h.checkUser(userPwd); ok {
		h.key, h.authed, h.owner = key, true, true
		return nil
	}
	return ErrBadPassword
}

func (h *standardHandler) checkUser(pwd []byte) ([]byte, bool) {
	key := computeKey(pwd, h.o, h.p, h.fileID, h.keyBytes, h.r, h.encryptMeta)
	want := computeU(key, h.fileID, h.r)
	n := 32
	if h.r >= 3 {
		n = 16
	}
	if len(h.u) < n || !bytes.Equal(want[:n], h.u[:n]) {
		return nil, false
	}
	return key, true
}

// recoverUserPassword decrypts /O with a key derived from the owner password.
func (h *standardHandler) recoverUserPassword(ownerPwd []byte) []byte {
	key := ownerKey(ownerPwd, h.keyBytes, h.r)
	out := append([]byte(nil), h.o...)
	if len(out) > 32 {
		out = out[:32]
	}
	if h.r == 2 {
		return rc4Simple(key, out)
	}
	for i := 19; i >= 0; i-- {
		out = rc4Simple(xorKey(key, byte(i)), out)
	}
	return out
}

func (h *standardHandler) authenticateAES256(password string) error {
	pwd := saslPassword(password)
	if len(h.u) < 48 || len(h.o) < 48 {
		return errors.New("malformed /U or /O entry")
	}
	if bytes.Equal(h.hash(pwd, h.o[32:40], h.u[:48]), h.o[:32]) {
		key, err := aesCBCRaw(h.hash(pwd, h.o[40:48], h.u[:48]), h.oe, false)
		if err != nil {
			return err
		}
		h.key, h.authed, h.owner = key, true, true
		return h.checkPerms()
	}
	if bytes.Equal(h.hash(pwd, h.u[32:40], nil), h.u[:32]) {
		key, err := aesCBCRaw(h.hash(pwd, h.u[40:48], nil), h.ue, false)
		if err != nil {
			return err
		}
		h.key, h.authed, h.owner = key, true, false
		return h.checkPerms()
	}
	return ErrBadPassword
}

func (h *standardHandler) hash(pwd, salt, udata []byte) []byte {
	if h.r == 5 {
		sum := sha256.Sum256(concat(pwd, salt, udata))
		return sum[:]
	}
	return rev6Hash(pwd, salt, udata)
}

func (h *standardHandler) checkPerms() error {
	if len(h.perms) != 16 {
		return nil
	}
	block, err := aes.NewCipher(h.key)
	if err != nil {
		return err
	}
	out := make([]byte, 16)
	block.Decrypt(out, h.perms)
	if !bytes.Equal(out[9:12], []byte("adb")) {
		return errors.New("invalid /Perms entry")
	}
	h.p = int32(binary.LittleEndian.Uint32(out[:4]))
	return nil
}

func (h *standardHandler) ensureAuth() error {
	if h.authed {
		return nil
	}
	return h.Authenticate("")
}

func (h *standardHandler) algoFor(class DataClass) cryptAlgo {
	switch class {
	case DataClassString:
		return h.stringAlgo
	case DataClassMetadataStream:
		if !h.encryptMeta {
			return algoNone
		}
	}
	return h.streamAlgo
}

func (h *standardHandler) Decrypt(objNum, gen int, data []byte, class DataClass) ([]byte, error) {
	if err := h.ensureAuth(); err != nil {
		return nil, err
	}
	algo := h.algoFor(class)
	if algo == algoNone || len(data) == 0 {
		return data, nil
	}
	key := objectKey(h.key, objNum, gen, h.r, algo == algoAES)
	if algo == algoAES {
		return aesCrypt(key, data, false)
	}
	return rc4Simple(key, data), nil
}

func (h *standardHandler) Encrypt(objNum, gen int, data []byte, class DataClass) ([]byte, error) {
	if err := h.ensureAuth(); err != nil {
		return nil, err
	}
	algo := h.algoFor(class)
	if algo == algoNone {
		return data, nil
	}
	key := objectKey(h.key, objNum, gen, h.r, algo == algoAES)
	if algo == algoAES {
		return aesCrypt(key, data, true)
	}
	return rc4Simple(key, data), nil
}

func (h *standardHandler) Permissions() raw.Permissions {
	if h.owner {
		return raw.AllPermissions()
	}
	return PermissionsFromP(h.p)
}

type noEncryptionHandler struct{}

func (noEncryptionHandler) IsEncrypted() bool                  { return false }
func (noEncryptionHandler) Authenticate(password string) error { return nil }
func (noEncryptionHandler) OwnerAuthenticated() bool           { return true }
func (noEncryptionHandler) Decrypt(objNum, gen int, data []byte, class DataClass) ([]byte, error) {
	return data, nil
}
func (noEncryptionHandler) Encrypt(objNum, gen int, data []byte, class DataClass) ([]byte, error) {
	return data, nil
}
func (noEncryptionHandler) Permissions() raw.Permissions { return raw.AllPermissions() }
func (noEncryptionHandler) EncryptMetadata() bool        { return false }
func (noEncryptionHandler) Info() raw.EncryptionInfo     { return raw.EncryptionInfo{} }

// NoopHandler returns a reusable pass-through encryption handler.
func NoopHandler() Handler { return noEncryptionHandler{} }

var passwordPadding = []byte{
	0x28, 0xBF, 0x4E, 0x5E, 0x4E, 0x75, 0x8A, 0x41,
	0x64, 0x00, 0x4E, 0x56, 0xFF, 0xFA, 0x01, 0x08,
	0x2E, 0x2E, 0x00, 0xB6, 0xD0, 0x68, 0x3E, 0x80,
	0x2F, 0x0C, 0xA9, 0xFE, 0x64, 0x53, 0x69, 0x7A,
}

func padPassword(pwd []byte) []byte {
	padded := make([]byte, 32)
	n := copy(padded, pwd)
	copy(padded[n:], passwordPadding)
	return padded
}

// pdfDocPassword maps a password to single bytes; runes outside Latin-1 become '?'.
func pdfDocPassword(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			r = '?'
		}
		out = append(out, byte(r))
	}
	return out
}

// saslPassword normalises an AES-256 password to NFKC UTF-8, at most 127 bytes.
func saslPassword(s string) []byte {
	b := norm.NFKC.Bytes([]byte(s))
	if len(b) > 127 {
		b = b[:127]
	}
	return b
}

// rev6Hash is the iterated SHA-2/AES hash of revision 6 handlers.
func rev6Hash(pwd, salt, udata []byte) []byte {
	sum := sha256.Sum256(concat(pwd, salt, udata))
	k := sum[:]
	for round := 0; ; round++ {
		k1 := bytes.Repeat(concat(pwd, k, udata), 64)
		e, err := aesCBCRawIV(k[:16], k[16:32], k1)
		if err != nil {
			return k[:32]
		}
		mod := 0
		for _, c := range e[:16] {
			mod += int(c)
		}
		switch mod % 3 {
		case 0:
			s := sha256.Sum256(e)
			k = s[:]
		case 1:
			s := sha512.Sum384(e)
			k = s[:]
		default:
			s := sha512.Sum512(e)
			k = s[:]
		}
		if round >= 63 && int(e[len(e)-1]) <= round-31 {
			break
		}
	}
	return k[:32]
}

func ownerKey(ownerPwd []byte, keyBytes, r int) []byte {
	sum := md5.Sum(padPassword(ownerPwd))
	if r >= 3 {
		for i := 0; i < 50; i++ {
			sum = md5.Sum(sum[:])
		}
	}
	if r == 2 {
		keyBytes = 5
	}
	return sum[:keyBytes]
}

func computeO(ownerPwd, userPwd []byte, keyBytes, r int) []byte {
	key := ownerKey(ownerPwd, keyBytes, r)
	out := rc4Simple(key, padPassword(userPwd))
	if r >= 3 {
		for i := 1; i <= 19; i++ {
			out = rc4Simple(xorKey(key, byte(i)), out)
		}
	}
	return out
}

func computeKey(pwd, o []byte, p int32, fileID []byte, keyBytes, r int, encryptMeta bool) []byte {
	if r == 2 {
		keyBytes = 5
	}
	var pBuf [4]byte
	binary.LittleEndian.PutUint32(pBuf[:], uint32(p))
	data := concat(padPassword(pwd), o, pBuf[:], fileID)
	if r >= 4 && !encryptMeta {
		data = append(data, 0xFF, 0xFF, 0xFF, 0xFF)
	}
	sum := md5.Sum(data)
	if r >= 3 {
		for i := 0; i < 50; i++ {
			sum = md5.Sum(sum[:keyBytes])
		}
	}
	return append([]byte(nil), sum[:keyBytes]...)
}

func computeU(key, fileID []byte, r int) []byte {
	if r == 2 {
		return rc4Simple(key, passwordPadding)
	}
	sum := md5.Sum(concat(passwordPadding, fileID))
	out := rc4Simple(key, sum[:])
	for i := 1; i <= 19; i++ {
		out = rc4Simple(xorKey(key, byte(i)), out)
	}
	return append(out, make([]byte, 16)...)
}

// PermissionsValue builds the /P flags for a permission set.
func PermissionsValue(p raw.Permissions) int32 {
	val := int32(-4) // bits 1-2 must be 0
	clear := func(allowed bool, bit uint) {
		if !allowed {
			val &^= 1 << bit
		}
	}
	clear(p.Print, 2)
	clear(p.Modify, 3)
	clear(p.Copy, 4)
	clear(p.ModifyAnnotations, 5)
	clear(p.FillForms, 8)
	clear(p.ExtractAccessible, 9)
	clear(p.Assemble, 10)
	clear(p.PrintHighQuality, 11)
	return val
}

// PermissionsFromP decodes /P flags.
func PermissionsFromP(p int32) raw.Permissions {
	return raw.Permissions{
		Print:             p&(1<<2) != 0,
		Modify:            p&(1<<3) != 0,
		Copy:              p&(1<<4) != 0,
		ModifyAnnotations: p&(1<<5) != 0,
		FillForms:         p&(1<<8) != 0,
		ExtractAccessible: p&(1<<9) != 0,
		Assemble:          p&(1<<10) != 0,
		PrintHighQuality:  p&(1<<11) != 0,
	}
}

// FirstFileID returns the first element of a trailer's /ID array.
func FirstFileID(trailer *raw.DictObj) []byte {
	o, ok := trailer.Lookup("ID")
	if !ok {
		return nil
	}
	arr, ok := o.(*raw.ArrayObj)
	if !ok || len(arr.Items) == 0 {
		return nil
	}
	s, _ := arr.Items[0].(raw.StringObj)
	return s.Bytes
}

func parseCryptFilters(d *raw.DictObj, base cryptAlgo) (map[string]cryptAlgo, error) {
	out := make(map[string]cryptAlgo)
	cfObj, ok := d.Lookup("CF")
	if !ok {
		return out, nil
	}
	cf, ok := cfObj.(*raw.DictObj)
	if !ok {
		return nil, errors.New("CF must be a dictionary")
	}
	for name, obj := range cf.KV {
		entry, ok := obj.(*raw.DictObj)
		if !ok {
			return nil, errors.New("crypt filter entry must be a dictionary")
		}
		algo := base
		switch cfm, _ := entry.NameValue("CFM"); cfm {
		case "":
		case "V2":
			algo = algoRC4
		case "AESV2", "AESV3":
			algo = algoAES
		case "None":
			algo = algoNone
		default:
			return nil, fmt.Errorf("unsupported crypt filter method %s", cfm)
		}
		out[name] = algo
	}
	return out, nil
}

func resolveCryptFilter(d *raw.DictObj, key string, v int, base cryptAlgo, filters map[string]cryptAlgo) (cryptAlgo, error) {
	if v < 4 {
		return algoRC4, nil
	}
	name, _ := d.NameValue(key)
	switch name {
	case "", "Identity":
		return algoNone, nil
	}
	if algo, ok := filters[name]; ok {
		return algo, nil
	}
	return algoNone, fmt.Errorf("crypt filter %s not defined", name)
}

func objectKey(fileKey []byte, objNum, gen int, r int, useAES bool) []byte {
	if r >= 5 {
		return fileKey
	}
	key := append([]byte{}, fileKey...)
	key = append(key, byte(objNum), byte(objNum>>8), byte(objNum>>16), byte(gen), byte(gen>>8))
	if useAES {
		key = append(key, 0x73, 0x41, 0x6C, 0x54) // "sAlT"
	}
	n := len(fileKey) + 5
	if n > 16 {
		n = 16
	}
	sum := md5.Sum(key)
	return sum[:n]
}

func xorKey(key []byte, b byte) []byte {
	out := make([]byte, len(key))
	for i := range key {
		out[i] = key[i] ^ b
	}
	return out
}

func rc4Simple(key []byte, data []byte) []byte {
	out := make([]byte, len(data))
	c, err := rc4.NewCipher(key)
	if err != nil {
		return out
	}
	c.XORKeyStream(out, data)
	return out
}

// aesCrypt handles per-object AES-CBC with a leading IV and PKCS#5 padding.
func aesCrypt(key []byte, data []byte, encrypt bool) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if encrypt {
		padLen := aes.BlockSize - len(data)%aes.BlockSize
		plain := make([]byte, len(data), len(data)+padLen)
		copy(plain, data)
		plain = append(plain, bytes.Repeat([]byte{byte(padLen)}, padLen)...)
		out := make([]byte, aes.BlockSize+len(plain))
		if _, err := rand.Read(out[:aes.BlockSize]); err != nil {
			return nil, err
		}
		cipher.NewCBCEncrypter(block, out[:aes.BlockSize]).CryptBlocks(out[aes.BlockSize:], plain)
		return out, nil
	}
	if len(data) < aes.BlockSize {
		return nil, errors.New("aes ciphertext too short")
	}
	ct := data[aes.BlockSize:]
	if len(ct)%aes.BlockSize != 0 {
		return nil, errors.New("aes ciphertext not multiple of blocksize")
	}
	out := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, data[:aes.BlockSize]).CryptBlocks(out, ct)
	if len(out) == 0 {
		return out, nil
	}
	pad := int(out[len(out)-1])
	if pad <= 0 || pad > aes.BlockSize || pad > len(out) {
		return nil, errors.New("invalid aes padding")
	}
	return out[:len(out)-pad], nil
}

// aesCBCRaw runs AES-CBC with a zero IV and no padding.
func aesCBCRaw(key, data []byte, encrypt bool) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(data)%aes.BlockSize != 0 {
		return nil, errors.New("aes data not multiple of blocksize")
	}
	iv := make([]byte, aes.BlockSize)
	out := make([]byte, len(data))
	if encrypt {
		cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, data)
	} else {
		cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, data)
	}
	return out, nil
}

func aesCBCRawIV(key, iv, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, data)
	return out, nil
}

func concat(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func intVal(d *raw.DictObj, key string, def int) int {
	if v, ok := d.IntValue(key); ok {
		return int(v)
	}
	return def
}

func stringVal(d *raw.DictObj, key string) []byte {
	o, ok := d.Lookup(key)
	if !ok {
		return nil
	}
	s, _ := o.(raw.StringObj)
	return s.Bytes
}
