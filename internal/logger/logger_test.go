package logger

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestInitLogger(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	InitLogger("test")
	require.NotNil(t, Log)
	assert.False(t, Log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, Log.Core().Enabled(zapcore.WarnLevel))
}

func TestNewLogger_Stages(t *testing.T) {
	for _, stage := range []string{"prod", "dev", "local", "test", ""} {
		l := newLogger(stage, zapcore.InfoLevel)
		require.NotNil(t, l, stage)
		assert.False(t, l.Core().Enabled(zapcore.DebugLevel), stage)
		assert.True(t, l.Core().Enabled(zapcore.InfoLevel), stage)
	}
}

func TestStructuredLogger_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sl := NewStructuredLogger(ComponentFactory).WithLogger(zap.New(core))

	sl.WithCaller("0xabc").
		WithCorrelationID("corr-1").
		WithField("campaign", "0xdef").
		Info("redeemed")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "factory", fields["component"])
	assert.Equal(t, "0xabc", fields["caller_address"])
	assert.Equal(t, "corr-1", fields["correlation_id"])
	assert.Equal(t, "0xdef", fields["campaign"])
}

func TestStructuredLogger_WithFieldDoesNotLeak(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := NewStructuredLogger(ComponentAPI).WithLogger(zap.New(core))

	base.WithField("k", "v").Info("child")
	base.Info("parent")

	require.Equal(t, 2, logs.Len())
	_, ok := logs.All()[1].ContextMap()["k"]
	assert.False(t, ok)
}

func TestStructuredLogger_LogOperation(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sl := NewStructuredLogger(ComponentAirdrop).WithLogger(zap.New(core))

	require.NoError(t, sl.LogOperation("redeem", func() error { return nil }))
	err := sl.LogOperation("redeem", func() error { return errors.New("LeafAlreadyRedeemed") })
	require.Error(t, err)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "LeafAlreadyRedeemed", entries[1].ContextMap()["error"])

	sl.LogHTTPRequest("GET", "/health", 200, time.Millisecond)
	assert.Equal(t, int64(200), logs.All()[2].ContextMap()["http_status"])
}
