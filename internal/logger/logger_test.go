package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	Use(zap.New(core))
	t.Cleanup(func() { Use(zap.NewNop()) })
	return logs
}

func TestInit(t *testing.T) {
	Init()
	assert.NotNil(t, log)
}

func TestConfigure(t *testing.T) {
	require.NoError(t, Configure("debug", true))
	require.NoError(t, Configure("", false))
	assert.Error(t, Configure("loud", false))
}

func TestInfo(t *testing.T) {
	logs := observe(t, zapcore.InfoLevel)

	Info("test message", "key", "value")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "test message", entry.Message)
	assert.Equal(t, "value", entry.ContextMap()["key"])
}

func TestErrorf(t *testing.T) {
	logs := observe(t, zapcore.InfoLevel)

	Errorf("test %s", "error")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "test error", logs.All()[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[0].Level)
}

func TestDebugFiltered(t *testing.T) {
	logs := observe(t, zapcore.InfoLevel)

	Debug("hidden")
	Debugf("hidden %d", 2)

	assert.Equal(t, 0, logs.Len())
}

func TestWarn(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	Warn("careful")
	Warnf("careful %d", 2)

	assert.Equal(t, 2, logs.FilterMessage("careful").Len()+logs.FilterMessage("careful 2").Len())
}

func TestWithError(t *testing.T) {
	logs := observe(t, zapcore.InfoLevel)

	WithError(errors.New("boom")).Info("test with error")

	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].ContextMap()["error"], "boom")
}

func TestWithFields(t *testing.T) {
	logs := observe(t, zapcore.InfoLevel)

	WithFields(map[string]interface{}{"key1": "value1", "key2": 123}).Info("test with fields")

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "value1", ctx["key1"])
	assert.EqualValues(t, 123, ctx["key2"])
}
