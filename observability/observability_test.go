package observability

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerForwardsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewZapLogger(zap.New(core)).With(String("component", "bridge"))

	l.Warn("call failed", Int("code", 3), Uint32("handle", 0x10000001), Error("error", errors.New("boom")))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["component"] != "bridge" || ctx["code"] != int64(3) || ctx["error"] != "boom" {
		t.Fatalf("unexpected context %v", ctx)
	}
	if entries[0].Level != zap.WarnLevel {
		t.Fatalf("unexpected level %v", entries[0].Level)
	}
}

func TestOrNop(t *testing.T) {
	if _, ok := OrNop(nil).(NopLogger); !ok {
		t.Fatalf("nil logger should become NopLogger")
	}
	l := NewZapLogger(nil)
	if OrNop(l) != l {
		t.Fatalf("non-nil logger should pass through")
	}
	l.Debug("ignored")
}
