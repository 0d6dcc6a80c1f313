package reqlog

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

// Logs is the per-request buffer of log entries waiting to be flushed. Entries
// keep their insertion order.
type Logs struct {
	entries []string
}

// Append adds an entry to the end of the buffer.
func (l *Logs) Append(entry string) { l.entries = append(l.entries, entry) }

// Entries returns the buffered entries in insertion order.
func (l *Logs) Entries() []string { return l.entries }

// Request is the per-request exchange object handed to handlers in place of
// a bare *http.Request. It carries the request's log buffer, which is only
// allocated once something is logged.
//
// Handlers take *reqlog.Request to add entries to the request's log:
//
//	func MyAuthCheck(r *reqlog.Request) (User, error) {
//	    user, err := decodeAuthCookie(r.Request)
//	    if user != nil {
//	        reqlog.Printf(r, "authenticated as %s", user.Id())
//	    }
//	    return user, err
//	}
type Request struct {
	*http.Request
	Start time.Time
	// set to true to discard this request's log entries
	Quiet bool

	mu   sync.Mutex
	logs *Logs
}

// NewRequest wraps r without logging anything.
func NewRequest(r *http.Request) *Request {
	return &Request{Request: r, Start: time_Now()}
}

// Append adds an already formatted entry to the request's log buffer,
// allocating the buffer on first use. It is safe to call from multiple
// goroutines serving the same request.
func (r *Request) Append(entry string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.logs == nil {
		r.logs = &Logs{}
	}
	r.logs.Append(entry)
}

// Drain detaches the request's log buffer and returns its entries in the
// order they were added. It returns nil if nothing was logged, including when
// the buffer has already been drained.
func (r *Request) Drain() []string {
	r.mu.Lock()
	logs := r.logs
	r.logs = nil
	r.mu.Unlock()
	if logs == nil {
		return nil
	}
	return logs.Entries()
}

// HasLogs reports whether a log buffer is currently attached.
func (r *Request) HasLogs() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.logs != nil
}

// Log timestamps the rendered entry and appends it to the request's buffer.
func (r *Request) Log(entry Loggable) {
	r.Append(timestamp(time_Now()) + entry.LogEntry())
}

// LogEntry renders the request: method, URL, protocol, remote address and
// headers, with header names sorted.
func (r *Request) LogEntry() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Request { method: %s, url: %s, proto: %s, remote_addr: %s, headers: {",
		r.Method, r.URL, r.Proto, remoteIp(r.Request))

	names := make([]string, 0, len(r.Header))
	for name := range r.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, " %s: %q", name, r.Header[name])
	}
	b.WriteString(" } }")
	return b.String()
}

func timestamp(t time.Time) string {
	return "[" + t.UTC().Format(time.ANSIC) + "] "
}

// remoteIp extracts the remote IP from the request.  Adapted from code in
// Martini:
//
//	https://github.com/go-martini/martini/blob/1d33529c15f19/logger.go#L14..L20
func remoteIp(r *http.Request) string {
	if addr := r.Header.Get("X-Real-IP"); addr != "" {
		return addr
	} else if addr := r.Header.Get("X-Forwarded-For"); addr != "" {
		return addr
	}
	return r.RemoteAddr
}
