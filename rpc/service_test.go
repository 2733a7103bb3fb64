package rpc

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/rpc/v2/json2"
	"github.com/wudi/pdfbridge/bridge"
)

func serve(t *testing.T) *httptest.Server {
	t.Helper()
	c, err := bridge.Startup(bridge.Config{})
	if err != nil {
		t.Fatalf("startup: %v", err)
	}
	h, err := NewHandler(c, nil)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		srv.Close()
		c.OnExit()
	})
	return srv
}

func call(t *testing.T, srv *httptest.Server, method string, args, reply any) error {
	t.Helper()
	body, err := json2.EncodeClientRequest(method, args)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	resp, err := http.Post(srv.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	return json2.DecodeClientResponse(resp.Body, reply)
}

func TestCallAndPoll(t *testing.T) {
	srv := serve(t)
	var doc CallReply
	if err := call(t, srv, "pdf.Call", &CallArgs{Op: "blankDocumentPaper", Args: []any{4, 3}}, &doc); err != nil {
		t.Fatalf("blank: %v", err)
	}
	var pages CallReply
	if err := call(t, srv, "pdf.Call", &CallArgs{Op: "pages", Args: []any{doc.Result}}, &pages); err != nil {
		t.Fatalf("pages: %v", err)
	}
	if pages.Result != float64(3) {
		t.Fatalf("pages %v", pages.Result)
	}

	var state ErrorReply
	if err := call(t, srv, "pdf.LastError", &NoArgs{}, &state); err != nil || state.Code != 0 {
		t.Fatalf("clean state: %+v %v", state, err)
	}
	var bad CallReply
	if err := call(t, srv, "pdf.Call", &CallArgs{Op: "pages", Args: []any{777}}, &bad); err != nil {
		t.Fatalf("engine failure surfaced as rpc error: %v", err)
	}
	if bad.Result != nil {
		t.Fatalf("failed call returned %v", bad.Result)
	}
	if err := call(t, srv, "pdf.LastError", &NoArgs{}, &state); err != nil || state.Code != bridge.CodeInvalidHandle {
		t.Fatalf("polled state: %+v %v", state, err)
	}
	if err := call(t, srv, "pdf.ClearError", &NoArgs{}, &ErrorReply{}); err != nil {
		t.Fatalf("clear: %v", err)
	}
	state = ErrorReply{}
	if err := call(t, srv, "pdf.LastError", &NoArgs{}, &state); err != nil || state.Code != 0 || state.Message != "" {
		t.Fatalf("after clear: %+v %v", state, err)
	}
}

func TestBuffers(t *testing.T) {
	srv := serve(t)
	var doc CallReply
	if err := call(t, srv, "pdf.Call", &CallArgs{Op: "blankDocument", Args: []any{100, 100, 2}}, &doc); err != nil {
		t.Fatalf("blank: %v", err)
	}
	var out struct {
		Result []byte `json:"result"`
	}
	if err := call(t, srv, "pdf.Call", &CallArgs{Op: "toMemory", Args: []any{doc.Result, false, false}}, &out); err != nil {
		t.Fatalf("to memory: %v", err)
	}
	if !bytes.HasPrefix(out.Result, []byte("%PDF-")) {
		t.Fatalf("not a pdf: %q", out.Result[:min(len(out.Result), 16)])
	}
	var count CallReply
	args := &CallArgs{Op: "pagesFastMemory", Args: []any{""}, Buffers: map[int][]byte{1: out.Result}}
	if err := call(t, srv, "pdf.Call", args, &count); err != nil {
		t.Fatalf("pages fast: %v", err)
	}
	if count.Result != float64(2) {
		t.Fatalf("pages %v", count.Result)
	}
}

func TestUnknownOperation(t *testing.T) {
	srv := serve(t)
	err := call(t, srv, "pdf.Call", &CallArgs{Op: "formatDisk"}, &CallReply{})
	if err == nil {
		t.Fatalf("expected an rpc error")
	}
	if e, ok := err.(*json2.Error); !ok || e.Code != json2.E_NO_METHOD {
		t.Fatalf("unexpected error %#v", err)
	}
	var ops OperationsReply
	if err := call(t, srv, "pdf.Operations", &NoArgs{}, &ops); err != nil || len(ops.Operations) == 0 {
		t.Fatalf("operations: %d %v", len(ops.Operations), err)
	}
}
