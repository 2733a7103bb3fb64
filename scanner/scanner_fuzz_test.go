package scanner

import (
	"bytes"
	"testing"
)

func FuzzScanner(f *testing.F) {
	for _, seed := range []string{
		"1 0 obj << /Type /Page /MediaBox [0 0 612 792] >> endobj",
		"<< /Length 5 >> stream\nhello\nendstream",
		"(nested (parens) \\) and \\053)",
		"<48 65 6C 6C 6F>",
		"/A#20B 3 0 R",
		"xref\n0 1\n0000000000 65535 f \ntrailer << /Size 1 >>",
	} {
		f.Add([]byte(seed))
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		s := New(bytes.NewReader(data), Config{MaxStringLength: 1024, MaxStreamLength: 1024})
		for i := 0; i <= len(data); i++ {
			if _, err := s.Next(); err != nil {
				return
			}
		}
		t.Fatalf("scanner produced more tokens than input bytes")
	})
}
