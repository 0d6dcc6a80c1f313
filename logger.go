package reqlog

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
)

// Injected for testing
var time_Now = time.Now
var os_Stdout io.Writer = os.Stdout
var os_Stderr io.Writer = os.Stderr

// Loggable is anything that can render itself as a single log line.
type Loggable interface {
	LogEntry() string
}

// Logger is anything that accepts rendered log lines. Call sites produce
// entries through Logger so the destination can be swapped between stdout, the
// request's own buffer, or any other sink.
type Logger interface {
	Log(entry Loggable)
}

// AutoLogger is a value that can log a rendering of itself to itself.
// *Request is one.
type AutoLogger interface {
	Logger
	Loggable
}

// AutoLog renders l and logs the result to l.
func AutoLog(l AutoLogger) {
	l.Log(Message(l.LogEntry()))
}

// Message is a plain string log entry that renders as itself.
type Message string

func (m Message) LogEntry() string { return string(m) }

// Printf logs a formatted message to l.
func Printf(l Logger, format string, args ...any) {
	l.Log(Message(fmt.Sprintf(format, args...)))
}

// Debug logs a Go-syntax-ish dump of v, with field names, to l.
func Debug(l Logger, v any) {
	l.Log(Message(fmt.Sprintf("%+v", v)))
}

// PrintLogger writes each entry on its own line to W, or to stdout if W is nil.
type PrintLogger struct {
	W io.Writer
}

func (p PrintLogger) Log(entry Loggable) {
	w := p.W
	if w == nil {
		w = os_Stdout
	}
	fmt.Fprintln(w, entry.LogEntry())
}

// SinkLogger forwards each rendered entry to Sink.
type SinkLogger struct {
	Sink func(line string)
}

func (s SinkLogger) Log(entry Loggable) { s.Sink(entry.LogEntry()) }

// ZapLogger forwards each rendered entry to a zap logger at info level.
type ZapLogger struct {
	L *zap.Logger
}

func (z ZapLogger) Log(entry Loggable) { z.L.Info(entry.LogEntry()) }
