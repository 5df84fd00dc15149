package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLoggerFromCore(core).With(String("step", "coordinates"))

	l.Info("added atoms", Int("atoms", 10), Bool("dry_run", true), Err(errors.New("boom")))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "added atoms", entry.Message)
	ctx := entry.ContextMap()
	assert.Equal(t, "coordinates", ctx["step"])
	assert.Equal(t, int64(10), ctx["atoms"])
	assert.Equal(t, true, ctx["dry_run"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("nonsense"))
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelDebug, Format: "console"})
	require.NoError(t, err)
	require.NotNil(t, l)
	l.Named("test").Debug("hello")

	_, err = NewLogger(LogConfig{OutputPaths: []string{"/nonexistent/dir/log.txt"}})
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)

	SetDefault(nil)
	assert.Equal(t, prev, Default())

	n := NewNopLogger()
	SetDefault(n)
	assert.Equal(t, n, Default())
}
