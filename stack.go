package reqlog

import (
	"net/http"

	"github.com/augustoroman/reqlog/chain"
)

// New returns an empty Stack whose handlers may take the http.ResponseWriter
// and *http.Request.
func New() Stack {
	return Stack{
		chain.Chain{}.
			Reserve((*http.ResponseWriter)(nil)).
			Reserve((*http.Request)(nil)),
	}
}

// TheUsual returns a Stack with request logging through f and the default
// error handling installed. Each request is logged on the way in, its
// response is logged on the way out, and the request's entries are then
// flushed by f. Handlers added after it may take *reqlog.Request and
// *reqlog.ResponseWriter.
func TheUsual(f *DiskLogFinalizer) Stack {
	return New().
		Then(WrapResponseWriter, f.Wrap()).
		Defer(LogResponse).
		OnErr(HandleError)
}

// Stack is the sequence of middleware handlers run for every request. It
// implements http.Handler and is immutable: every method returns a new Stack.
type Stack struct{ c chain.Chain }

// StackOf returns a Stack running c. The chain must reserve exactly the values
// that whoever runs it will supply; ServeHTTP supplies an http.ResponseWriter
// and an *http.Request.
func StackOf(c chain.Chain) Stack { return Stack{c} }

// Chain returns the underlying handler chain, for adapters that need to
// reserve and supply extra values.
func (s Stack) Chain() chain.Chain { return s.c }

// Provide makes val available to subsequent handlers, replacing any earlier
// value of the same type.
func (s Stack) Provide(val any) Stack { return Stack{s.c.Provide(val)} }

// ProvideAs makes val available as the interface type pointed to by ifacePtr:
//
//	s.ProvideAs(myConcreteImpl, (*SomeInterface)(nil))
func (s Stack) ProvideAs(val, ifacePtr any) Stack { return Stack{s.c.ProvideAs(val, ifacePtr)} }

// Then adds handlers to the stack. A handler may be any function whose
// arguments have been provided earlier in the stack, an http.Handler, or a Wrap.
func (s Stack) Then(handlers ...any) Stack {
	c := s.c
	for _, h := range handlers {
		switch h := h.(type) {
		case Wrap:
			c = c.Then(toHandlerFunc(h.Before)).Defer(toHandlerFunc(h.After))
		default:
			c = c.Then(toHandlerFunc(h))
		}
	}
	return Stack{c}
}

// Wrap adds before as a normal handler and after as a deferred one.
func (s Stack) Wrap(before, after any) Stack { return s.Then(Wrap{before, after}) }

// OnErr adds an error handler for errors returned by handlers added after it.
// Error handlers may not return any values.
func (s Stack) OnErr(handler any) Stack { return Stack{s.c.OnErr(handler)} }

// Defer adds a handler to run after all normal handlers (and the error
// handler, if any) have completed. Deferred handlers run in reverse order.
func (s Stack) Defer(handler any) Stack { return Stack{s.c.Defer(toHandlerFunc(handler))} }

// ServeHTTP runs the stack for one request.
func (s Stack) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.c.MustRun((*http.ResponseWriter)(&w), r)
}
