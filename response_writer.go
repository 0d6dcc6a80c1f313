package reqlog

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// ResponseWriter wraps http.ResponseWriter and records what was sent, so the
// post-response hooks can log it.
type ResponseWriter struct {
	http.ResponseWriter
	Size int // bytes of body written so far
	Code int // status code sent, or 0 if nothing has been sent yet
}

// WrapResponseWriter returns the tracking writer both as an http.ResponseWriter
// and as a *ResponseWriter, so later handlers asking for either one get it.
func WrapResponseWriter(w http.ResponseWriter) (http.ResponseWriter, *ResponseWriter) {
	rw := &ResponseWriter{ResponseWriter: w}
	return rw, rw
}

// Summary returns the log entry describing the response as sent so far.
func (w *ResponseWriter) Summary(elapsed time.Duration) Loggable {
	return responseSummary{code: w.Code, size: w.Size, elapsed: elapsed}
}

type responseSummary struct {
	code, size int
	elapsed    time.Duration
}

func (s responseSummary) LogEntry() string {
	return fmt.Sprintf("Response { status: %d, size: %dB, elapsed: %s }", s.code, s.size, s.elapsed)
}

func (w *ResponseWriter) WriteHeader(code int) {
	if w.Code == 0 {
		w.Code = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *ResponseWriter) Write(p []byte) (int, error) {
	if w.Code == 0 {
		w.Code = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.Size += n
	return n, err
}

var errNotHijacker = errors.New("reqlog: underlying ResponseWriter does not implement http.Hijacker")

// Hijack takes over the connection. A hijacked response that never wrote a
// status is recorded as 101 Switching Protocols.
func (w *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errNotHijacker
	}
	if w.Code == 0 {
		w.Code = http.StatusSwitchingProtocols
	}
	return h.Hijack()
}

func (w *ResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap returns the original writer, for http.ResponseController.
func (w *ResponseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
