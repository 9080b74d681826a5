package log

import (
	"context"
	"log/slog"
	"testing"
)

func TestWithComponent(t *testing.T) {
	l := New(slog.LevelInfo, ComponentApp)
	h := l.WithComponent(ComponentHTTP)
	if h.Component() != ComponentHTTP {
		t.Fatalf("component = %q", h.Component())
	}
	if l.Component() != ComponentApp {
		t.Fatalf("original logger changed: %q", l.Component())
	}
}

func TestFromContextFallback(t *testing.T) {
	l := FromContext(context.Background())
	if l == nil || l.Logger == nil {
		t.Fatal("nil fallback logger")
	}
	if l.Component() != ComponentApp {
		t.Fatalf("fallback component = %q", l.Component())
	}
}

func TestFromContextRoundtrip(t *testing.T) {
	want := New(slog.LevelDebug, ComponentLedger)
	ctx := context.WithValue(context.Background(), LoggerContextKey, want)
	if got := FromContext(ctx); got != want {
		t.Fatal("context logger not returned")
	}
}
