package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/wudi/pdfbridge/document"
	"github.com/wudi/pdfbridge/pagespec"
	"github.com/wudi/pdfbridge/security"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want Code
	}{
		{fmt.Errorf("page 9: %w", document.ErrPageRange), CodePageRange},
		{fmt.Errorf("parse: %w", pagespec.ErrSyntax), CodePageRange},
		{document.ErrBadArgument, CodeBadArgument},
		{fmt.Errorf("open: %w", security.ErrBadPassword), CodeEncryption},
		{&document.ObjectError{Err: document.ErrMalformed}, CodeParse},
		{document.ErrUnsupported, CodeUnsupported},
		{&fs.PathError{Op: "open", Path: "x", Err: fs.ErrNotExist}, CodeIO},
		{errors.New("boom"), CodeGeneric},
		{NewError(CodeInvalidHandle).Build(), CodeInvalidHandle},
	}
	for _, tt := range tests {
		got := Classify("op", tt.err)
		if got.Code != tt.want {
			t.Fatalf("%v: got code %d, want %d", tt.err, got.Code, tt.want)
		}
		if got.Op != "op" {
			t.Fatalf("%v: op %q", tt.err, got.Op)
		}
	}
	if Classify("op", nil) != nil {
		t.Fatalf("nil error classified")
	}
}

func TestErrorIsByCode(t *testing.T) {
	var b *ErrorBuilder = NewError(CodeParse).Op("fromMemory").Detail("bad xref")
	err := fmt.Errorf("wrapped: %w", b.Build())
	if !errors.Is(err, NewError(CodeParse).Build()) {
		t.Fatalf("expected match by code")
	}
	if errors.Is(err, NewError(CodeIO).Build()) {
		t.Fatalf("unexpected match")
	}
	want := "fromMemory: parse: bad xref"
	var e *Error
	if !errors.As(err, &e) || e.Error() != want {
		t.Fatalf("message %q", e.Error())
	}
}
