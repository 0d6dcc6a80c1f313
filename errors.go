package reqlog

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an error implementation that lets a handler tell the error handler
// three things:
//   - The HTTP status code that should be used in the response.
//   - The client-facing message that should be sent.  Typically this is a
//     sanitized error message, such as "Internal Server Error".
//   - Internal debugging detail, a log message and the underlying error, that
//     goes into the request's log entries.
//
// Note that Cause may be nil.
type Error struct {
	Code      int
	ClientMsg string
	LogMsg    string
	Cause     error
}

func (e Error) Error() string {
	return fmt.Sprintf("[%d] %s: %v", e.Code, e.LogMsg, e.Cause)
}

func (e Error) Unwrap() error { return e.Cause }

// Done is a sentinel error value that can be used to interrupt the middleware
// chain without triggering the default error handling.  HandleError will not
// attempt to write any status code or client message, nor will it add the error
// to the log.
var Done = errors.New("<done>")

func handleErrorCommon(r *Request, err error) Error {
	var e Error
	if !errors.As(err, &e) {
		e = Error{LogMsg: "Failure", Cause: err}
	}
	if e.Code == 0 {
		e.Code = http.StatusInternalServerError
	}
	if e.ClientMsg == "" {
		e.ClientMsg = http.StatusText(e.Code)
	}
	if e.LogMsg != "" {
		msg := fmt.Sprintf("Error { (%d) %s", e.Code, e.LogMsg)
		if e.Cause != nil {
			msg += ": " + e.Cause.Error()
		}
		r.Log(Message(msg + " }"))
	}
	return e
}

// HandleError is the default error handler included in reqlog.TheUsual.
// If the error is a reqlog.Error, it responds with the specified status code
// and client message.  Otherwise, it responds with a 500.  In both cases, the
// underlying error is added to the request's log.
//
// If the error is reqlog.Done, HandleError does nothing.
func HandleError(w http.ResponseWriter, r *Request, err error) {
	if errors.Is(err, Done) {
		return
	}
	e := handleErrorCommon(r, err)
	http.Error(w, e.ClientMsg, e.Code)
}

// HandleErrorJson is identical to HandleError except that it responds to the
// client as JSON instead of plain text.
//
// If the error is reqlog.Done, HandleErrorJson does nothing.
func HandleErrorJson(w http.ResponseWriter, r *Request, err error) {
	if errors.Is(err, Done) {
		return
	}
	e := handleErrorCommon(r, err)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(e.Code)
	fmt.Fprintf(w, "{\"error\":%q}\n", e.ClientMsg)
}
