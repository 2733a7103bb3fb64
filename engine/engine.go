package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"
	"github.com/wudi/pdfbridge/document"
	"github.com/wudi/pdfbridge/observability"
	"github.com/wudi/pdfbridge/pagespec"
	"github.com/wudi/pdfbridge/security"
)

// Version is reported by the version export.
const Version = "pdfbridge 1.2.0"

// Config controls an Engine.
type Config struct {
	// CallTimeout interrupts a call that runs longer. Zero disables it.
	CallTimeout time.Duration
	// Limits bounds every document parse.
	Limits security.Limits
	Logger observability.Logger
}

// Builder assembles a Config.
type Builder struct {
	cfg Config
}

func NewBuilder() *Builder {
	return &Builder{cfg: Config{Limits: security.DefaultLimits()}}
}

func (b *Builder) WithLogger(l observability.Logger) *Builder {
	b.cfg.Logger = l
	return b
}

func (b *Builder) WithLimits(l security.Limits) *Builder {
	b.cfg.Limits = l
	return b
}

func (b *Builder) WithCallTimeout(d time.Duration) *Builder {
	b.cfg.CallTimeout = d
	return b
}

func (b *Builder) Build() (*Engine, error) {
	return New(b.cfg)
}

type errorSlot struct {
	code   Code
	msg    string
	serial int64
}

// Engine owns one goja runtime with the PDF exports installed. It is not
// safe for concurrent use.
type Engine struct {
	vm  *goja.Runtime
	cfg Config
	log observability.Logger

	docs   *Arena[*document.Document]
	ranges *Arena[pagespec.Range]

	slot errorSlot
	fast bool
	demo bool

	// Snapshots for the start/get/end iteration exports.
	enumerated  []Handle
	labels      []document.Label
	attachments []document.Attachment
}

// New builds a runtime and installs the exports.
func New(cfg Config) (*Engine, error) {
	if cfg.Limits == (security.Limits{}) {
		cfg.Limits = security.DefaultLimits()
	}
	e := &Engine{
		vm:     goja.New(),
		cfg:    cfg,
		log:    newLogger(cfg.Logger),
		docs:   NewArena[*document.Document](SpaceDocument),
		ranges: NewArena[pagespec.Range](SpaceRange),
	}
	if err := e.install(); err != nil {
		return nil, fmt.Errorf("install exports: %w", err)
	}
	e.log.Debug("engine started", observability.Int("exports", len(e.exportNames())))
	return e, nil
}

// Runtime exposes the underlying VM for value construction.
func (e *Engine) Runtime() *goja.Runtime { return e.vm }

// Function looks up a global function by name.
func (e *Engine) Function(name string) (goja.Callable, bool) {
	if e.vm == nil {
		return nil, false
	}
	v := e.vm.Get(name)
	if v == nil {
		return nil, false
	}
	return goja.AssertFunction(v)
}

// Call invokes fn. An interrupted or faulting call is recorded in the
// error slot as well as returned.
func (e *Engine) Call(name string, fn goja.Callable, args ...goja.Value) (goja.Value, error) {
	if e.vm == nil {
		return goja.Undefined(), errors.New("engine closed")
	}
	if e.cfg.CallTimeout > 0 {
		t := time.AfterFunc(e.cfg.CallTimeout, func() {
			e.vm.Interrupt(fmt.Errorf("%s: call exceeded %v", name, e.cfg.CallTimeout))
		})
		defer func() {
			t.Stop()
			e.vm.ClearInterrupt()
		}()
	}
	v, err := fn(goja.Undefined(), args...)
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			e.fail(NewError(CodeVM).Op(name).Detail("interrupted").Cause(interrupted.Unwrap()).Build())
		} else {
			e.fail(NewError(CodeVM).Op(name).Cause(err).Build())
		}
		return goja.Undefined(), err
	}
	return v, nil
}

// ErrorState returns the current error slot.
func (e *Engine) ErrorState() (Code, string, int64) {
	return e.slot.code, e.slot.msg, e.slot.serial
}

func (e *Engine) fail(err *Error) {
	e.slot.code = err.Code
	e.slot.msg = err.Error()
	e.slot.serial++
	e.log.Debug("call failed",
		observability.String("op", err.Op),
		observability.Int("code", int(err.Code)),
		observability.Error("error", err))
}

func (e *Engine) clearError() {
	e.slot.code, e.slot.msg = CodeNone, ""
}

// Close drops every handle and releases the runtime.
func (e *Engine) Close() {
	if e.vm == nil {
		return
	}
	e.reset()
	e.vm = nil
	e.log.Debug("engine closed")
}

func (e *Engine) reset() {
	e.docs.Reset()
	e.ranges.Reset()
	e.enumerated, e.labels, e.attachments = nil, nil, nil
}

// Documents returns the number of live document handles.
func (e *Engine) Documents() int { return e.docs.Len() }

// Ranges returns the number of live range handles.
func (e *Engine) Ranges() int { return e.ranges.Len() }

func (e *Engine) addDoc(d *document.Document) (Handle, error) {
	h := e.docs.Alloc(d)
	if h == 0 {
		return 0, NewError(CodeGeneric).Detail("too many documents").Build()
	}
	e.log.Debug("document allocated", observability.Uint32("handle", uint32(h)), observability.String("name", d.Name))
	return h, nil
}

func (e *Engine) addRange(r pagespec.Range) (Handle, error) {
	h := e.ranges.Alloc(r)
	if h == 0 {
		return 0, NewError(CodeGeneric).Detail("too many ranges").Build()
	}
	return h, nil
}

func (e *Engine) doc(h Handle) (*document.Document, error) {
	d, ok := e.docs.Get(h)
	if !ok {
		return nil, NewError(CodeInvalidHandle).Detail("no document with handle %d", uint32(h)).Build()
	}
	return d, nil
}

func (e *Engine) rng(h Handle) (pagespec.Range, error) {
	r, ok := e.ranges.Get(h)
	if !ok {
		return pagespec.Range{}, NewError(CodeInvalidHandle).Detail("no range with handle %d", uint32(h)).Build()
	}
	return r, nil
}

// maxPages bounds ranges and blank documents built from caller numbers.
func (e *Engine) maxPages() int {
	if e.cfg.Limits.MaxPages > 0 {
		return e.cfg.Limits.MaxPages
	}
	return security.DefaultLimits().MaxPages
}
