// Package rpc serves a bridge.Client over JSON-RPC 2.0.
//
// Engine failures do not fail the RPC: as with a foreign function
// interface, callers poll LastError after each call and clear it with
// ClearError.
package rpc

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"github.com/wudi/pdfbridge/bridge"
	"github.com/wudi/pdfbridge/observability"
)

// ServiceName prefixes every method, as in "pdf.Call".
const ServiceName = "pdf"

// Service exposes the operation table. Calls are serialized.
type Service struct {
	mu  sync.Mutex
	c   *bridge.Client
	log observability.Logger
}

// NoArgs is the parameter of methods without arguments.
type NoArgs struct{}

// CallArgs names an operation and its positional arguments. Buffers
// holds byte arguments by position and overrides Args there.
type CallArgs struct {
	Op      string         `json:"op"`
	Args    []any          `json:"args"`
	Buffers map[int][]byte `json:"buffers,omitempty"`
}

// CallReply holds the operation result. Byte results are base64 encoded
// by JSON.
type CallReply struct {
	Result any `json:"result"`
}

type ErrorReply struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type OperationsReply struct {
	Operations []string `json:"operations"`
}

// NewHandler returns an HTTP handler serving c.
func NewHandler(c *bridge.Client, log observability.Logger) (http.Handler, error) {
	s := rpc.NewServer()
	s.RegisterCodec(json2.NewCodec(), "application/json")
	svc := &Service{c: c, log: observability.OrNop(log).With(observability.String("component", "rpc"))}
	if err := s.RegisterService(svc, ServiceName); err != nil {
		return nil, err
	}
	return s, nil
}

// Call runs one operation. Only unknown operations fail the request.
func (s *Service) Call(_ *http.Request, args *CallArgs, reply *CallReply) error {
	vals := append([]any(nil), args.Args...)
	for i, b := range args.Buffers {
		for len(vals) <= i {
			vals = append(vals, nil)
		}
		vals[i] = b
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.c.Invoke(args.Op, vals...)
	if err != nil {
		if errors.Is(err, bridge.ErrUnknownOperation) {
			return &json2.Error{Code: json2.E_NO_METHOD, Message: err.Error()}
		}
		s.log.Debug("operation failed", observability.String("op", args.Op), observability.Error("error", err))
	}
	reply.Result = res
	return nil
}

func (s *Service) LastError(_ *http.Request, _ *NoArgs, reply *ErrorReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reply.Code = s.c.LastError()
	reply.Message = s.c.LastErrorString()
	return nil
}

func (s *Service) ClearError(_ *http.Request, _ *NoArgs, _ *ErrorReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.ClearError()
	return nil
}

func (s *Service) Operations(_ *http.Request, _ *NoArgs, reply *OperationsReply) error {
	reply.Operations = s.c.Operations()
	return nil
}
