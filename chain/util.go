package chain

import (
	"fmt"
	"reflect"
	"runtime"
	"sort"
	"strings"
)

func panicf(msgfmt string, args ...any) {
	panic(fmt.Errorf(msgfmt, args...))
}

// ordinalize renders an argument position as 1st, 2nd, 3rd, 4th, ... 11th, 12th.
func ordinalize(pos int) string {
	suffix := "th"
	if n := pos % 100; n < 11 || n > 13 {
		switch pos % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", pos, suffix)
}

// FuncInfo describes a registered handler function.
type FuncInfo struct {
	Name string // fully-qualified name, e.g.: github.com/foo/bar.FuncName
	File string
	Line int
	Func reflect.Value
}

func valueOfFunction(handler any) (FuncInfo, error) {
	if handler == nil {
		return FuncInfo{}, fmt.Errorf("should be a function, handler is <nil>")
	}
	val := reflect.ValueOf(handler)
	if val.Kind() != reflect.Func {
		return FuncInfo{}, fmt.Errorf("should be a function, handler is %s", val.Type())
	}
	if val.IsNil() {
		return FuncInfo{}, fmt.Errorf("should be a function, handler is a nil %s", val.Type())
	}
	info := runtime.FuncForPC(val.Pointer())
	file, line := info.FileLine(val.Pointer())
	return FuncInfo{info.Name(), file, line, val}, nil
}

// checkCanCall verifies every argument of fn is available. When one isn't, the
// error lists what is and suggests ProvideAs if an available concrete type
// implements a missing interface.
func checkCanCall(available map[reflect.Type]bool, fn FuncInfo) error {
	fnType := fn.Func.Type()
	for i := 0; i < fnType.NumIn(); i++ {
		t := fnType.In(i)
		if available[t] {
			continue
		}

		var provided, candidates []string
		for typ := range available {
			provided = append(provided, typ.String())
			if t.Kind() == reflect.Interface && typ.Implements(t) {
				candidates = append(candidates, typ.String())
			}
		}
		sort.Strings(provided)
		sort.Strings(candidates)

		hint := ""
		switch {
		case t.Kind() == reflect.Interface && len(candidates) == 0:
			hint = fmt.Sprintf(" Type %s is an interface, but not implemented "+
				"by any of the provided types.", t)
		case len(candidates) > 0:
			hint = fmt.Sprintf(" Type %s is an interface implemented by %s. "+
				"Use ProvideAs(val, (*%s)(nil)) to provide it as the interface.",
				t, strings.Join(candidates, ", "), t.Name())
		}

		return fmt.Errorf("can't be called: type %s required for %s arg of %s (%s) "+
			"has not been provided. Types that have been provided: %s.%s",
			t, ordinalize(i+1), fn.Name, fnType, provided, hint)
	}
	return nil
}
