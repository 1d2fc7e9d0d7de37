package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"panic": zapcore.PanicLevel,
		"fatal": zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestSetLevelFromString checks that known names apply and unknown names fail.
func TestSetLevelFromString(t *testing.T) {
	t.Parallel()

	require.NoError(t, SetLevelFromString(""))
	require.Error(t, SetLevelFromString("chatty"))
}

// TestContextHelpers verifies that a logger placed in the context is returned back.
func TestContextHelpers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := NewWithWriter(&buf, zapcore.DebugLevel)
	ctx := ToContext(context.Background(), l)

	require.Same(t, l, FromContext(ctx))
	require.Same(t, global, FromContext(context.Background()))

	ctx = WithKV(WithName(ctx, "controller"), "mode", "detector")
	InfoKV(ctx, "Mode entered")

	require.Contains(t, buf.String(), "controller")
	require.Contains(t, buf.String(), "Mode entered")
	require.Contains(t, buf.String(), "detector")
}
