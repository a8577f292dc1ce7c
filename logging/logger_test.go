package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLevel("debug"))
	assert.Equal(t, LogLevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, LogLevelError, ParseLevel("error"))
	assert.Equal(t, LogLevelInfo, ParseLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLevel("verbose"))
}

func TestNew_FormatsAndLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: LogLevelWarn, Format: "json", Output: &buf})

	logger.Info("dropped")
	logger.Warn("kept", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
	assert.Contains(t, out, `"k":"v"`)
}

func TestFlowLogger(t *testing.T) {
	var buf bytes.Buffer
	fl := NewFlowLogger(New(&Config{Level: LogLevelDebug, Format: "text", Output: &buf}))

	fl.WithFlow("expense").WithActor("Nikhil", "919705184409").StepStart(0, "send 'hi'")
	fl.Fallback("classifier", errors.New("rate limited"))

	out := buf.String()
	assert.Contains(t, out, "expense")
	assert.Contains(t, out, "919705184409")
	assert.Contains(t, out, "rate limited")

	t.Run("nil logger is tolerated", func(t *testing.T) {
		fl := NewFlowLogger(nil)
		fl.Info("noop")
		fl.StepResult(1, "send_text", true, "")
	})
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "ERROR", LogLevelError.String())
	assert.True(t, strings.HasPrefix(LogLevel(42).String(), "UNKNOWN"))
}
