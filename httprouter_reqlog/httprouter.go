// Package httprouter_reqlog runs reqlog stacks under httprouter and provides
// httprouter's path parameters to the handlers.
package httprouter_reqlog

import (
	"net/http"

	"github.com/augustoroman/reqlog"
	"github.com/julienschmidt/httprouter"
)

// New returns an empty Stack whose handlers may also take httprouter.Params.
func New() Stack { return extend(reqlog.New()) }

// TheUsual is reqlog.TheUsual with httprouter.Params available.
func TheUsual(f *reqlog.DiskLogFinalizer) Stack { return extend(reqlog.TheUsual(f)) }

func extend(s reqlog.Stack) Stack {
	return Stack{reqlog.StackOf(s.Chain().Reserve((httprouter.Params)(nil)))}
}

// Stack is a reqlog.Stack that also provides httprouter.Params. httprouter
// wants a function rather than an http.Handler, so register the H method:
//
//	s := httprouter_reqlog.TheUsual(finalizer)
//	router := httprouter.New()
//	router.GET("/user/:id", s.Then(getUser).H)
//
//	func getUser(w http.ResponseWriter, r *reqlog.Request, p httprouter.Params) error {
//	    reqlog.Printf(r, "looking up %s", p.ByName("id"))
//	    ...
//	}
type Stack struct{ s reqlog.Stack }

// H runs the stack. Pass it to httprouter.
func (s Stack) H(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	s.s.Chain().MustRun((*http.ResponseWriter)(&w), r, p)
}

// Provide is the same as (reqlog.Stack).Provide.
func (s Stack) Provide(val any) Stack { return Stack{s.s.Provide(val)} }

// ProvideAs is the same as (reqlog.Stack).ProvideAs.
func (s Stack) ProvideAs(val, ifacePtr any) Stack { return Stack{s.s.ProvideAs(val, ifacePtr)} }

// Then is the same as (reqlog.Stack).Then.
func (s Stack) Then(handlers ...any) Stack { return Stack{s.s.Then(handlers...)} }

// OnErr is the same as (reqlog.Stack).OnErr.
func (s Stack) OnErr(handler any) Stack { return Stack{s.s.OnErr(handler)} }

// Defer is the same as (reqlog.Stack).Defer.
func (s Stack) Defer(handler any) Stack { return Stack{s.s.Defer(handler)} }

// Wrap is the same as (reqlog.Stack).Wrap.
func (s Stack) Wrap(before, after any) Stack { return Stack{s.s.Wrap(before, after)} }
