package reqlog_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/augustoroman/reqlog"
)

type UserID string

func UserIDFromQuery(r *reqlog.Request) (UserID, error) {
	uid := UserID(r.URL.Query().Get("id"))
	if uid == "" {
		return "", reqlog.Error{Code: http.StatusBadRequest, ClientMsg: "Missing id", LogMsg: "Request missing id"}
	}
	reqlog.Printf(r, "user %s", uid)
	return uid, nil
}

func Hello(w http.ResponseWriter, uid UserID) {
	fmt.Fprintf(w, "Hello %s\n", uid)
}

func ExampleTheUsual() {
	var logFile strings.Builder
	mw := reqlog.TheUsual(reqlog.NewDiskLogFinalizer(&logFile)).
		Then(UserIDFromQuery, Hello)

	w := httptest.NewRecorder()
	mw.ServeHTTP(w, httptest.NewRequest("GET", "/?id=bob", nil))
	fmt.Print(w.Body.String())

	// Strip the timestamps and details to keep the output stable.
	for _, line := range strings.Split(logFile.String(), "\n") {
		fmt.Println(shorten(line, 20))
	}

	// Output:
	// Hello bob
	// Request { method: GE
	// user bob
	// Response { status: 2
}

func ExampleAutoLog() {
	r := reqlog.NewRequest(httptest.NewRequest("GET", "/", nil))
	reqlog.AutoLog(r)
	reqlog.Printf(r, "second entry")

	logger := reqlog.PrintLogger{W: os.Stdout}
	for _, entry := range r.Drain() {
		logger.Log(reqlog.Message(shorten(entry, 15)))
	}

	// Output:
	// Request { metho
	// second entry
}

// shorten drops the timestamp prefix of a log entry and truncates it to n bytes.
func shorten(entry string, n int) string {
	_, msg, _ := strings.Cut(entry, "] ")
	if len(msg) > n {
		msg = msg[:n]
	}
	return msg
}
