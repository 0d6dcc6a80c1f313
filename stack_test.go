package reqlog

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func say(s string) func(http.ResponseWriter) {
	return func(w http.ResponseWriter) { fmt.Fprintf(w, "%s:", s) }
}

func TestWrapOrder(t *testing.T) {
	mw := New().Then(say("a")).Wrap(say("b"), say("e")).Then(Wrap{say("c"), say("d")})

	w := httptest.NewRecorder()
	mw.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, "a:b:c:d:e:", w.Body.String())
}

func TestStackProvide(t *testing.T) {
	type Path string
	w := httptest.NewRecorder()
	New().Provide(Path("unused")).Then(
		func(r *http.Request) Path { return Path(r.URL.Path) },
		func(w http.ResponseWriter, r *http.Request, p Path) {
			fmt.Fprintf(w, "%s %s", r.Method, p)
		},
	).ServeHTTP(w, httptest.NewRequest("GET", "/foo/bar", nil))
	assert.Equal(t, "GET /foo/bar", w.Body.String())
}

func TestStackAcceptsHttpHandlers(t *testing.T) {
	w := httptest.NewRecorder()
	New().Then(http.NotFoundHandler()).ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// serve runs one request through TheUsual and returns the response and the
// bytes flushed to the log.
func serve(t *testing.T, method, path string, handlers ...any) (*httptest.ResponseRecorder, string) {
	t.Helper()
	var logFile bytes.Buffer
	f := NewDiskLogFinalizer(&logFile)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "[::1]:56596"
	TheUsual(f).Then(handlers...).ServeHTTP(w, req)
	return w, logFile.String()
}

func TestTheUsual(t *testing.T) {
	useFakeClock(t, 13*time.Millisecond)

	sendMsg := func(r *Request, w http.ResponseWriter) {
		Printf(r, "sending greeting")
		w.Write([]byte("Test\n"))
	}

	w, logs := serve(t, "GET", "/", sendMsg)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Test\n", w.Body.String(), "logging doesn't touch the response")

	lines := strings.Split(logs, "\n")
	require.Len(t, lines, 3, "logs: %q", logs)
	// The clock advances 13ms on every reading: request start, request entry,
	// handler entry, response elapsed, response entry.
	assert.Equal(t, "[Sat Feb  3 04:05:06 2001] Request { method: GET, url: /, proto: HTTP/1.1, "+
		"remote_addr: [::1]:56596, headers: { } }", lines[0])
	assert.Equal(t, "[Sat Feb  3 04:05:06 2001] sending greeting", lines[1])
	assert.Equal(t, "[Sat Feb  3 04:05:06 2001] Response { status: 200, size: 5B, elapsed: 39ms }", lines[2])
}

func TestTheUsualWithError(t *testing.T) {
	useFakeClock(t, 0)

	fail := func() error { return errors.New("It went horribly wrong") }
	w, logs := serve(t, "DELETE", "/fail", fail)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal Server Error\n", w.Body.String())
	assert.Contains(t, logs, "] Error { (500) Failure: It went horribly wrong }\n")
	assert.Contains(t, logs, "] Response { status: 500, size: 22B, elapsed: 0s }")
}

func TestTheUsualWithCustomError(t *testing.T) {
	notFound := func() error {
		return Error{Code: http.StatusNotFound, ClientMsg: "No such thing", LogMsg: "lookup failed"}
	}
	w, logs := serve(t, "GET", "/thing/3", notFound)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No such thing\n", w.Body.String())
	assert.Contains(t, logs, "Error { (404) lookup failed }")
}

func TestTheUsualWithDone(t *testing.T) {
	redirect := func(w http.ResponseWriter, r *http.Request) error {
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
		return Done
	}
	neverCalled := func() { t.Error("handler after Done was called") }

	w, logs := serve(t, "GET", "/", redirect, neverCalled)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.NotContains(t, logs, "Error {")
	assert.Contains(t, logs, "status: 302")
}

func TestTheUsualWithPanic(t *testing.T) {
	panics := func(w http.ResponseWriter) { w.Write([]byte("Hi there")); panic("oops") }

	w, logs := serve(t, "PUT", "/slowfail", panics)
	assert.Equal(t, "Hi thereInternal Server Error\n", w.Body.String())
	assert.Contains(t, logs, "Panic executing middleware")
	assert.Contains(t, logs, "oops")
}

func TestTheUsualNoLog(t *testing.T) {
	w, logs := serve(t, "GET", "/favicon.ico", NoLog, http.NotFound)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, logs)
}

func TestHandleErrorJson(t *testing.T) {
	var logFile bytes.Buffer
	mw := New().
		Then(NewDiskLogFinalizer(&logFile).Wrap()).
		OnErr(HandleErrorJson).
		Then(func() error {
			return Error{Code: 400, ClientMsg: "bad \"id\"", LogMsg: "parse", Cause: errors.New("nope")}
		})

	w := httptest.NewRecorder()
	mw.ServeHTTP(w, httptest.NewRequest("GET", "/api", nil))
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"bad \"id\""}`, w.Body.String())
	assert.Contains(t, logFile.String(), "Error { (400) parse: nope }")
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := fmt.Errorf("wrapped: %w", Error{Code: 418, Cause: cause})
	assert.ErrorIs(t, err, cause)

	var e Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 418, e.Code)
	assert.Equal(t, "[418] : root cause", e.Error())
}

func TestPoisonedFinalizerLeavesResponseAlone(t *testing.T) {
	logFile := &recordingWriter{panics: true}
	f := NewDiskLogFinalizer(logFile)
	f.Diagnostic = func(error) {}
	f.Finalize(newRequestWith("poison"))
	require.True(t, f.Poisoned())

	mw := TheUsual(f).Then(func(w http.ResponseWriter) {
		w.Header().Set("X-Test", "yes")
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte("Test\n"))
	})
	w := httptest.NewRecorder()
	mw.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "Test\n", w.Body.String())
	assert.Equal(t, "yes", w.Header().Get("X-Test"))
	assert.Empty(t, logFile.writes, "nothing reaches the log")
}
