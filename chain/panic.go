package chain

import (
	"bytes"
	"fmt"
	"runtime"
	"strings"
	"text/tabwriter"
)

// PanicError is the error that is returned if a handler panics. It includes
// the panic'd value (Val), the raw Go stack trace (RawStack), and the handlers
// that had been called so far, most recent first (MiddlewareStack).
type PanicError struct {
	Val             any
	RawStack        string
	MiddlewareStack []FuncInfo
}

func newPanicError(x any, history []FuncInfo) PanicError {
	var stack [8192]byte
	n := runtime.Stack(stack[:], false)

	mw := make([]FuncInfo, len(history))
	for i, fn := range history {
		mw[len(history)-1-i] = fn
	}
	return PanicError{Val: x, RawStack: string(stack[:n]), MiddlewareStack: mw}
}

// FilteredStack returns the stack trace without the chain's own frames and
// without reflect call frames. The reflect filtering may also hide frames from
// user code that uses reflection.
func (p PanicError) FilteredStack() []string {
	lines := strings.Split(p.RawStack, "\n")
	var filtered []string
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if strings.HasPrefix(line, "github.com/augustoroman/reqlog/chain.") &&
			!strings.HasPrefix(line, "github.com/augustoroman/reqlog/chain.Chain.Run(") {
			i++ // skip the file:line that follows
			continue
		}
		if strings.HasPrefix(line, "reflect.Value.call") || strings.HasPrefix(line, "reflect.Value.Call") {
			i++
			continue
		}
		filtered = append(filtered, line)
	}
	return filtered
}

func (p PanicError) Error() string {
	var mw bytes.Buffer
	w := tabwriter.NewWriter(&mw, 5, 7, 2, ' ', 0)
	for _, fn := range p.MiddlewareStack {
		fmt.Fprintf(w, "    %s\t%s\n", fn.Name, fn.Func.Type())
	}
	w.Flush()

	name := "<unknown>"
	if len(p.MiddlewareStack) > 0 {
		name = p.MiddlewareStack[0].Name
	}
	return fmt.Sprintf(
		"Panic executing middleware %s: %v\n"+
			"  Middleware executed:\n%s"+
			"  Filtered call stack:\n    %s",
		name, p.Val, mw.String(), strings.Join(p.FilteredStack(), "\n    "))
}
