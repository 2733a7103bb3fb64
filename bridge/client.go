package bridge

import (
	"errors"
	"fmt"

	"github.com/wudi/pdfbridge/engine"
	"github.com/wudi/pdfbridge/observability"
)

// Config controls Startup.
type Config struct {
	// MaxBufferSize bounds byte results copied out of the engine.
	// Default DefaultMaxBufferSize.
	MaxBufferSize int
	// ResolvePerCall looks entry points up on every call instead of once
	// at startup.
	ResolvePerCall bool
	Logger         observability.Logger
	// Debug installs a development zap logger when Logger is nil.
	Debug  bool
	Engine engine.Config
}

// Client is a started engine.
type Client struct {
	eng   *engine.Engine
	codec *Codec
	gw    *Gateway
	ch    channel
	log   observability.Logger
}

// Startup builds the engine runtime and resolves every entry point. It
// must run before any other call.
func Startup(cfg Config) (*Client, error) {
	log := cfg.Logger
	if log == nil && cfg.Debug {
		l, err := observability.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("logger: %w", err)
		}
		log = l
	}
	log = observability.OrNop(log)
	if cfg.MaxBufferSize <= 0 {
		cfg.MaxBufferSize = DefaultMaxBufferSize
	}
	ecfg := cfg.Engine
	if ecfg.Logger == nil {
		ecfg.Logger = log
	}
	eng, err := engine.New(ecfg)
	if err != nil {
		return nil, fmt.Errorf("start engine: %w", err)
	}
	c := &Client{
		eng:   eng,
		codec: &Codec{vm: eng.Runtime(), maxBuffer: cfg.MaxBufferSize, log: log.With(observability.String("component", "codec"))},
		log:   log,
	}
	gw, err := newGateway(eng, c.codec, &c.ch, log.With(observability.String("component", "gateway")), cfg.ResolvePerCall)
	if err != nil {
		eng.Close()
		return nil, err
	}
	c.gw = gw
	return c, nil
}

func errClosed(op string) *Error {
	return &Error{Code: CodeGeneric, Kind: string(engine.KindGeneric), Op: op, Message: op + ": client is shut down",
		Cause: errors.New("client is shut down")}
}

var (
	opVersion = op0("version", DecString)
	opSetFast = op0("setFast", DecUnit)
	opSetSlow = op0("setSlow", DecUnit)
	opSetDemo = op1("setDemo", EncBool, DecUnit)
	opOnExit  = op0("onExit", DecUnit)
)

// Version returns the engine version string.
func (c *Client) Version() (string, error) { return opVersion.Call(c) }

// SetFast makes later loads lazy: objects are parsed on first use.
func (c *Client) SetFast() error {
	_, err := opSetFast.Call(c)
	return err
}

// SetSlow restores eager loading.
func (c *Client) SetSlow() error {
	_, err := opSetSlow.Call(c)
	return err
}

// SetDemo stamps a demo notice on every page written while on.
func (c *Client) SetDemo(on bool) error {
	_, err := opSetDemo.Call(c, on)
	return err
}

// OnExit drops every handle and releases the runtime. The client is
// unusable afterwards.
func (c *Client) OnExit() error {
	if c.gw == nil {
		return nil
	}
	_, err := opOnExit.Call(c)
	c.eng.Close()
	c.gw = nil
	c.log.Debug("client shut down")
	return err
}
