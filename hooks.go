package reqlog

import "net/http"

// LogRequest is the pre-request hook: it wraps r and logs a rendering of it
// to its own buffer.
func LogRequest(r *http.Request) *Request {
	req := NewRequest(r)
	AutoLog(req)
	return req
}

// LogResponse is a post-response hook that logs the response status, size and
// the time since the request started.
func LogResponse(r *Request, w *ResponseWriter) {
	r.Log(w.Summary(time_Now().Sub(r.Start)))
}

// NoLog suppresses log output for this request. For example:
//
//	// suppress logging of the favicon request to reduce log spam.
//	router.Handle("/favicon.ico", stack.Then(reqlog.NoLog, notFound))
func NoLog(r *Request) { r.Quiet = true }
