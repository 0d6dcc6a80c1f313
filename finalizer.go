package reqlog

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/augustoroman/reqlog/metrics"
)

// DiskLogFinalizer writes each request's buffered log entries to a shared
// output, typically a file opened in append mode. One finalizer serves the
// whole process; the lock is held only for the single write of one request's
// block, so blocks from different requests never interleave.
//
// Logging never affects the response: write failures are reported through
// Diagnostic and otherwise ignored.
type DiskLogFinalizer struct {
	// Diagnostic receives write failures. If nil, they are printed to stderr.
	Diagnostic func(err error)
	// Metrics, if set, counts flushes, failures and dropped blocks.
	Metrics *metrics.Metrics

	mu  sync.Mutex
	out io.Writer
	// set when a write panics; later blocks are dropped
	poisoned bool
}

// NewDiskLogFinalizer returns a finalizer writing to out. The caller opens
// (and eventually closes) out.
func NewDiskLogFinalizer(out io.Writer) *DiskLogFinalizer {
	return &DiskLogFinalizer{out: out}
}

// Wrap returns the hook pair that logs each request on the way in and flushes
// its entries on the way out:
//
//	mw := reqlog.New().Then(f.Wrap(), MyHandler)
func (f *DiskLogFinalizer) Wrap() Wrap {
	return Wrap{LogRequest, f.Finalize}
}

// Finalize drains r's log buffer and appends the entries, joined by "\n", to
// the output in a single write. Requests that logged nothing, or were marked
// Quiet, cost no lock and no I/O.
func (f *DiskLogFinalizer) Finalize(r *Request) {
	entries := r.Drain()
	if len(entries) == 0 || r.Quiet {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.poisoned {
		f.Metrics.Skipped()
		return
	}
	f.write(entries)
}

// Poisoned reports whether a previous write panicked. A poisoned finalizer
// drops every subsequent block.
func (f *DiskLogFinalizer) Poisoned() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.poisoned
}

// write must be called with f.mu held.
func (f *DiskLogFinalizer) write(entries []string) {
	defer func() {
		if x := recover(); x != nil {
			f.poisoned = true
			f.Metrics.WriteFailed()
			f.report(fmt.Errorf("panic writing log file: %v", x))
		}
	}()

	block := []byte(strings.Join(entries, "\n"))
	if _, err := f.out.Write(block); err != nil {
		f.Metrics.WriteFailed()
		f.report(err)
		return
	}
	f.Metrics.Flushed(len(entries), len(block))
}

func (f *DiskLogFinalizer) report(err error) {
	if f.Diagnostic != nil {
		f.Diagnostic(err)
		return
	}
	fmt.Fprintf(os_Stderr, "Failed to write to log file! %v\n", err)
}
