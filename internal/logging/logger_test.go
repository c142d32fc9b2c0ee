package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelWarn, "merge")

	logger.Debug("debug %d", 1)
	logger.Info("info %d", 2)
	logger.Warn("warn %d", 3)
	logger.Error("error %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, "warn 3")
	assert.Contains(t, out, "error 4")
	assert.Contains(t, out, "[merge]")
}

func TestSinkLoggerDefaultComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelInfo, "")

	logger.Info("hello")
	assert.Contains(t, buf.String(), "[SWARM]")
}

func TestMultiFansOutAndFlattens(t *testing.T) {
	var a, b bytes.Buffer
	inner := Multi(New(&a, LevelDebug, "a"))
	logger := Multi(inner, New(&b, LevelDebug, "b"), nil)

	logger.Info("fan out")

	require.Contains(t, a.String(), "fan out")
	require.Contains(t, b.String(), "fan out")
}

func TestMultiEmptyIsNop(t *testing.T) {
	logger := Multi(nil, Logger(nil))
	assert.Equal(t, Nop(), logger)
}

func TestOrNop(t *testing.T) {
	assert.Equal(t, Nop(), OrNop(nil))

	var typedNil *sinkLogger
	assert.Equal(t, Nop(), OrNop(typedNil))

	var buf bytes.Buffer
	logger := New(&buf, LevelDebug, "x")
	assert.Equal(t, logger, OrNop(logger))
}

func TestLevelString(t *testing.T) {
	for level, want := range map[Level]string{
		LevelDebug: "DEBUG", LevelInfo: "INFO", LevelWarn: "WARN", LevelError: "ERROR",
	} {
		assert.Equal(t, want, level.String())
	}
	assert.True(t, strings.HasPrefix(Level(42).String(), "UNKNOWN"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("ERROR"))
	assert.Equal(t, LevelInfo, ParseLevel("info"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}
