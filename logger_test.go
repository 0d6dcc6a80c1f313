package reqlog

import (
	"bytes"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMessage(t *testing.T) {
	assert.Equal(t, "hello", Message("hello").LogEntry())
}

func TestPrintLogger(t *testing.T) {
	var buf bytes.Buffer
	l := PrintLogger{W: &buf}
	l.Log(Message("one"))
	Printf(l, "%d-%s", 2, "two")
	assert.Equal(t, "one\n2-two\n", buf.String())
}

func TestPrintLoggerDefaultsToStdout(t *testing.T) {
	defer func() { os_Stdout = os.Stdout }()
	var buf bytes.Buffer
	os_Stdout = &buf

	PrintLogger{}.Log(Message("to stdout"))
	assert.Equal(t, "to stdout\n", buf.String())
}

func TestSinkLogger(t *testing.T) {
	var lines []string
	l := SinkLogger{Sink: func(line string) { lines = append(lines, line) }}

	type point struct{ X, Y int }
	l.Log(Message("a"))
	Debug(l, point{1, 2})
	assert.Equal(t, []string{"a", "{X:1 Y:2}"}, lines)
}

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := ZapLogger{L: zap.New(core)}

	l.Log(Message("via zap"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "via zap", logs.All()[0].Message)
	assert.Equal(t, zapcore.InfoLevel, logs.All()[0].Level)
}

func TestLoggersAreInterchangeable(t *testing.T) {
	useFakeClock(t, 0)

	// The same producer can target any Logger.
	produce := func(l Logger) { Printf(l, "handled %s", "thing") }

	var buf bytes.Buffer
	r := NewRequest(httptest.NewRequest("GET", "/", nil))
	for _, l := range []Logger{PrintLogger{W: &buf}, r} {
		produce(l)
	}
	assert.Equal(t, "handled thing\n", buf.String())
	assert.Equal(t, []string{"[Sat Feb  3 04:05:06 2001] handled thing"}, r.Drain())
}
