package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf).With().Str("trace_id", "abc").Logger()
	ctx := l.WithContext(context.Background())

	FromContext(ctx).Info().Msg("hello")
	if !strings.Contains(buf.String(), `"trace_id":"abc"`) {
		t.Fatalf("log output %q missing trace_id", buf.String())
	}
}

func TestFromContextFallsBackToGlobal(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	got := FromContext(context.Background())
	if got != &log.Logger {
		t.Fatal("FromContext(empty) did not return the global logger")
	}
	got.Info().Msg("fallback")
	if !strings.Contains(buf.String(), "fallback") {
		t.Errorf("global logger output = %q, want the fallback line", buf.String())
	}
}
