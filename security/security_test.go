package security

import (
	"bytes"
	"errors"
	"testing"

	"github.com/wudi/pdfbridge/ir/raw"
)

func reopen(t *testing.T, enc *raw.DictObj, fileID []byte) Handler {
	t.Helper()
	h, err := (&HandlerBuilder{}).WithEncryptDict(enc).WithFileID(fileID).Build()
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	return h
}

func TestStandardRoundTripAllMethods(t *testing.T) {
	fileID := []byte("0123456789abcdef")
	perms := raw.Permissions{Print: true, Copy: true}
	for _, m := range []Method{MethodRC4_40, MethodRC4_128, MethodAES128, MethodAES256, MethodAES256ISO} {
		t.Run(m.String(), func(t *testing.T) {
			enc, writer, err := BuildStandardEncryption(EncryptOptions{
				Method:          m,
				UserPassword:    "user",
				OwnerPassword:   "owner",
				Permissions:     perms,
				EncryptMetadata: true,
			}, fileID)
			if err != nil {
				t.Fatalf("build encryption: %v", err)
			}
			plain := []byte("secret data")
			cipherText, err := writer.Encrypt(7, 0, plain, DataClassStream)
			if err != nil {
				t.Fatalf("encrypt: %v", err)
			}
			if bytes.Equal(cipherText, plain) {
				t.Fatalf("ciphertext equals plaintext")
			}

			reader := reopen(t, enc, fileID)
			if err := reader.Authenticate("wrong"); !errors.Is(err, ErrBadPassword) {
				t.Fatalf("expected bad password, got %v", err)
			}
			if err := reader.Authenticate("user"); err != nil {
				t.Fatalf("user password: %v", err)
			}
			if reader.OwnerAuthenticated() {
				t.Fatalf("user password should not grant owner access")
			}
			if got := reader.Permissions(); !got.Print || got.Modify {
				t.Fatalf("unexpected permissions %+v", got)
			}
			out, err := reader.Decrypt(7, 0, cipherText, DataClassStream)
			if err != nil {
				t.Fatalf("decrypt: %v", err)
			}
			if !bytes.Equal(out, plain) {
				t.Fatalf("roundtrip mismatch: got %q", out)
			}

			owner := reopen(t, enc, fileID)
			if err := owner.Authenticate("owner"); err != nil {
				t.Fatalf("owner password: %v", err)
			}
			if !owner.OwnerAuthenticated() {
				t.Fatalf("expected owner access")
			}
			if out, err := owner.Decrypt(7, 0, cipherText, DataClassStream); err != nil || !bytes.Equal(out, plain) {
				t.Fatalf("owner decrypt: %q %v", out, err)
			}
		})
	}
}

func TestEmptyUserPasswordOpensWithoutPrompt(t *testing.T) {
	enc, writer, err := BuildStandardEncryption(EncryptOptions{Method: MethodRC4_128, OwnerPassword: "owner"}, []byte("id"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	data, _ := writer.Encrypt(1, 0, []byte("abc"), DataClassString)
	h := reopen(t, enc, []byte("id"))
	out, err := h.Decrypt(1, 0, data, DataClassString)
	if err != nil || string(out) != "abc" {
		t.Fatalf("implicit empty password: %q %v", out, err)
	}
}

func TestPermissionsValueRoundTrip(t *testing.T) {
	p := raw.Permissions{Print: true, Assemble: true}
	if got := PermissionsFromP(PermissionsValue(p)); got != p {
		t.Fatalf("expected %+v, got %+v", p, got)
	}
	if PermissionsValue(raw.AllPermissions())&3 != 0 {
		t.Fatalf("low bits must be clear")
	}
}

func TestUnencryptedMetadataStreamsPassThrough(t *testing.T) {
	_, h, err := BuildStandardEncryption(EncryptOptions{Method: MethodAES128}, []byte("id"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	out, err := h.Encrypt(3, 0, []byte("<x:xmpmeta/>"), DataClassMetadataStream)
	if err != nil || string(out) != "<x:xmpmeta/>" {
		t.Fatalf("metadata should stay clear: %q %v", out, err)
	}
}
