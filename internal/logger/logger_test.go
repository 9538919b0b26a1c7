package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    LogLevel
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{"DEBUG", DebugLevel, false},
		{"info", InfoLevel, false},
		{"warn", WarnLevel, false},
		{"warning", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"verbose", InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLogLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", ConsoleFormat, false},
		{"console", ConsoleFormat, false},
		{"TEXT", ConsoleFormat, false},
		{"json", JSONFormat, false},
		{"xml", ConsoleFormat, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			assert.Equal(t, tt.wantErr, err != nil)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestZapLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, DebugLevel.zapLevel())
	assert.Equal(t, zapcore.WarnLevel, WarnLevel.zapLevel())
	assert.Equal(t, zapcore.ErrorLevel, ErrorLevel.zapLevel())
	assert.Equal(t, zapcore.InfoLevel, LogLevel("bogus").zapLevel())
}

func TestNew_LevelIsApplied(t *testing.T) {
	for _, format := range []Format{ConsoleFormat, JSONFormat} {
		t.Run(string(format), func(t *testing.T) {
			lgr, err := New(Options{Level: WarnLevel, Format: format})
			require.NoError(t, err)

			assert.False(t, lgr.Core().Enabled(zapcore.InfoLevel))
			assert.True(t, lgr.Core().Enabled(zapcore.WarnLevel))
		})
	}
}

func TestContextRoundTrip(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := WithLogger(context.Background(), zap.New(core))

	FromContext(ctx).With(zap.String("cycle_id", "abc")).Info("Worklist refreshed", zap.Int("work_items", 3))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Worklist refreshed", entry.Message)
	assert.Equal(t, "abc", entry.ContextMap()["cycle_id"])
	assert.EqualValues(t, 3, entry.ContextMap()["work_items"])
}

func TestFromContext_Fallback(t *testing.T) {
	first := FromContext(context.Background())
	require.NotNil(t, first)
	assert.Same(t, first, FromContext(context.Background()))

	// Must not panic
	first.Debug("fallback logger works")
}

func TestSetup(t *testing.T) {
	ctx, err := Setup(context.Background(), Options{Level: ErrorLevel, Format: JSONFormat})
	require.NoError(t, err)

	lgr := FromContext(ctx)
	assert.NotSame(t, lgr, FromContext(context.Background()))
	assert.False(t, lgr.Core().Enabled(zapcore.WarnLevel))

	ctx, err = SetupContext(context.Background(), DebugLevel)
	require.NoError(t, err)
	assert.True(t, FromContext(ctx).Core().Enabled(zapcore.DebugLevel))
}
