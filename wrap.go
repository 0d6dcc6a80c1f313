package reqlog

import "net/http"

// Wrap is a pair of hooks: Before runs during the normal course of middleware
// handling and After is deferred until the rest of the stack, including any
// error handler, has run. Values returned by Before are available to After.
//
// After runs whenever Before ran, even if a later handler failed or panicked,
// which makes Wrap the place for work that brackets a request: timing,
// logging, allocation and cleanup. After may take the error type to see how
// the request ended.
type Wrap struct {
	Before any
	After  any
}

func toHandlerFunc(h any) any {
	if handlerInterface, ok := h.(http.Handler); ok {
		return handlerInterface.ServeHTTP
	}
	return h
}
