// Package reqlog is an HTTP middleware stack that collects log entries for
// each request while it is being handled and writes them to a log file, as one
// block, once the response is done.
//
// # Example
//
// Here's a simple complete program using reqlog:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//	    "net/http"
//	    "os"
//
//	    "github.com/augustoroman/reqlog"
//	)
//
//	func main() {
//	    f, err := os.OpenFile("requests.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    mw := reqlog.TheUsual(reqlog.NewDiskLogFinalizer(f))
//	    http.Handle("/", mw.Then(func(w http.ResponseWriter) {
//	        fmt.Fprintf(w, "Hello world!")
//	    }))
//	    log.Fatal(http.ListenAndServe(":9001", nil))
//	}
//
// # Request logs
//
// The pre-request hook LogRequest wraps the *http.Request in a *reqlog.Request
// and logs a rendering of it. Any later handler can take the *reqlog.Request
// and add its own entries:
//
//	func LoadUser(r *reqlog.Request, db *UserDB) (*User, error) {
//	    u, err := db.Lookup(r.FormValue("id"))
//	    reqlog.Printf(r, "loaded user %v", u)
//	    return u, err
//	}
//
// Every entry is prefixed with a UTC timestamp. The request's buffer is only
// allocated on the first entry, so requests that log nothing cost nothing.
//
// After the response has been written, DiskLogFinalizer.Finalize drains the
// buffer and writes the entries, joined by newlines, to the log file in one
// call under a lock. Failures to write are reported on stderr (or to
// DiskLogFinalizer.Diagnostic) and never affect the response.
//
// # Loggers
//
// Code that produces entries talks to the Logger interface, so the destination
// can change without touching it: the request itself buffers entries,
// PrintLogger prints them, SinkLogger hands them to a function and ZapLogger
// sends them to a zap logger. Anything implementing both Logger and Loggable
// can log itself with AutoLog.
//
// # Handlers
//
// Stack calls each handler with the arguments it asks for, by type, taken from
// values provided earlier in the stack or returned by earlier handlers. A
// handler that returns a non-nil error aborts the stack; the most recently
// registered error handler is called instead, and then the deferred handlers.
// Argument availability is checked when handlers are added, not when requests
// are served.
package reqlog
