package bridge

import (
	"fmt"
	"sort"
	"time"

	"github.com/dop251/goja"
	"github.com/wudi/pdfbridge/engine"
	"github.com/wudi/pdfbridge/observability"
)

const (
	entryPrefix = "pdf_"
	errorState  = "__errorState"
	clearError  = "__clearError"
)

// Gateway calls engine entry points and drains the engine's error slot
// into the channel after each call.
type Gateway struct {
	eng     *engine.Engine
	codec   *Codec
	ch      *channel
	log     observability.Logger
	perCall bool

	entries map[string]goja.Callable
	state   goja.Callable
	reset   goja.Callable
}

func newGateway(eng *engine.Engine, codec *Codec, ch *channel, log observability.Logger, perCall bool) (*Gateway, error) {
	g := &Gateway{eng: eng, codec: codec, ch: ch, log: log, perCall: perCall}
	var ok bool
	if g.state, ok = eng.Function(errorState); !ok {
		return nil, fmt.Errorf("engine has no %s entry point", errorState)
	}
	if g.reset, ok = eng.Function(clearError); !ok {
		return nil, fmt.Errorf("engine has no %s entry point", clearError)
	}
	if perCall {
		return g, nil
	}
	g.entries = make(map[string]goja.Callable, len(opNames))
	var missing []string
	for name := range opNames {
		fn, ok := eng.Function(entryPrefix + name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		g.entries[name] = fn
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("engine is missing entry points: %v", missing)
	}
	return g, nil
}

func (g *Gateway) lookup(name string) (goja.Callable, bool) {
	if g.perCall {
		return g.eng.Function(entryPrefix + name)
	}
	fn, ok := g.entries[name]
	return fn, ok
}

// invoke calls one entry point with exactly len(args) arguments. The
// returned error is non-nil only when this call failed.
func (g *Gateway) invoke(name string, args []goja.Value) (goja.Value, error) {
	fn, ok := g.lookup(name)
	if !ok {
		return goja.Undefined(), g.ch.fail(&Error{Code: CodeGeneric, Kind: string(engine.KindGeneric), Op: name,
			Message: fmt.Sprintf("%s: no entry point", name)})
	}
	start := time.Now()
	v, callErr := g.eng.Call(name, fn, args...)
	failed := g.refresh()
	g.log.Debug("call",
		observability.String("op", name),
		observability.Int("arity", len(args)),
		observability.Duration("duration", time.Since(start)),
		observability.Int("code", g.ch.code))
	if !failed {
		return v, nil
	}
	return goja.Undefined(), &Error{
		Code:    g.ch.code,
		Kind:    string(engine.Code(g.ch.code).Kind()),
		Op:      name,
		Message: g.ch.msg,
		Cause:   callErr,
	}
}

// refresh copies the engine error slot into the channel and reports
// whether the slot changed since the previous call.
func (g *Gateway) refresh() bool {
	v, err := g.state(goja.Undefined())
	if err != nil {
		g.ch.code, g.ch.msg = CodeVM, err.Error()
		return true
	}
	items := g.codec.list(v)
	if len(items) < 3 {
		return false
	}
	serial := items[2].ToInteger()
	failed := serial != g.ch.serial
	g.ch.code = DecInt(g.codec, items[0])
	g.ch.msg = DecString(g.codec, items[1])
	g.ch.serial = serial
	return failed
}

func (g *Gateway) clear() {
	if _, err := g.reset(goja.Undefined()); err != nil {
		g.log.Warn("clear error slot", observability.Error("error", err))
	}
}
