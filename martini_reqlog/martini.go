// Package martini_reqlog runs reqlog stacks as martini handlers and provides
// martini's route parameters to the handlers.
package martini_reqlog

import (
	"net/http"

	"github.com/augustoroman/reqlog"
	"github.com/go-martini/martini"
)

// New returns an empty Stack whose handlers may also take martini.Params.
func New() Stack { return extend(reqlog.New()) }

// TheUsual is reqlog.TheUsual with martini.Params available.
func TheUsual(f *reqlog.DiskLogFinalizer) Stack { return extend(reqlog.TheUsual(f)) }

func extend(s reqlog.Stack) Stack {
	return Stack{reqlog.StackOf(s.Chain().Reserve((martini.Params)(nil)))}
}

// Stack is a reqlog.Stack that also provides martini.Params. Register the H
// method with martini:
//
//	m := martini.Classic()
//	m.Get("/say/:greeting/:name", s.Then(greet).H)
type Stack struct{ s reqlog.Stack }

// H runs the stack. martini injects its arguments.
func (s Stack) H(w http.ResponseWriter, r *http.Request, p martini.Params) {
	s.s.Chain().MustRun((*http.ResponseWriter)(&w), r, p)
}

func (s Stack) Provide(val any) Stack             { return Stack{s.s.Provide(val)} }
func (s Stack) ProvideAs(val, ifacePtr any) Stack { return Stack{s.s.ProvideAs(val, ifacePtr)} }
func (s Stack) Then(handlers ...any) Stack        { return Stack{s.s.Then(handlers...)} }
func (s Stack) OnErr(handler any) Stack           { return Stack{s.s.OnErr(handler)} }
func (s Stack) Defer(handler any) Stack           { return Stack{s.s.Defer(handler)} }
func (s Stack) Wrap(before, after any) Stack      { return Stack{s.s.Wrap(before, after)} }
