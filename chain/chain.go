// Package chain is a reflection-based dependency-injected handler chain that
// powers the reqlog middleware stack.
//
// Every run of a chain owns a bag of values keyed by their type. Handlers draw
// their arguments from the bag and store their return values back into it, so
// per-request state flows from one handler to the next without globals or an
// untyped context.
package chain

import (
	"fmt"
	"log"
	"reflect"
	"sort"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// DefaultErrorHandler is called when an error in the chain occurs and no error
// handler has been registered.
var DefaultErrorHandler any = func(err error) {
	log.Printf("Unhandled error: %v", err)
}

// Chain holds the sequence of handlers to execute. Chain is immutable: all
// operations return a new chain.
type Chain struct{ steps []step }

type stepKind uint8

const (
	kReserved stepKind = iota
	kValue
	kHandler
	kDeferred
	kErrorHandler
)

// step is a single value or handler in the chain.
type step struct {
	kind stepKind
	// kValue only.
	val reflect.Value
	// kReserved: the reserved type. kValue: the type the value is provided as.
	// Handlers: the function type.
	typ reflect.Type
	fn  FuncInfo
}

func (c Chain) with(steps ...step) Chain {
	s := make([]step, 0, len(c.steps)+len(steps))
	s = append(s, c.steps...)
	return Chain{append(s, steps...)}
}

// Reserve declares that a value of the given type will be passed to Run. A
// pointer to an interface reserves the interface type itself. Reserve bypasses
// the checks that guarantee handlers can be called, so only frameworks that
// also control the Run call should use it.
func (c Chain) Reserve(typePtr any) Chain {
	typ := reflect.TypeOf(typePtr)
	if typ.Kind() == reflect.Ptr && typ.Elem().Kind() == reflect.Interface {
		typ = typ.Elem()
	}
	return c.with(step{kind: kReserved, typ: typ})
}

// Provide makes an immediate value available to subsequent handlers. It cannot
// provide an interface type; use ProvideAs for that.
func (c Chain) Provide(value any) Chain {
	if value == nil {
		panicf("Provide(nil) is not allowed -- " +
			"did you mean to use ProvideAs(val, (*IFace)(nil))?")
	}
	return c.with(step{kind: kValue, val: reflect.ValueOf(value), typ: reflect.TypeOf(value)})
}

// ProvideAs makes value available to subsequent handlers as the interface type
// pointed to by ifacePtr, e.g. ProvideAs(db, (*Database)(nil)).
func (c Chain) ProvideAs(value, ifacePtr any) Chain {
	typ := reflect.TypeOf(ifacePtr)
	if typ == nil || typ.Kind() != reflect.Ptr || typ.Elem().Kind() != reflect.Interface {
		panicf("ifacePtr must be a pointer to an interface for ProvideAs, instead got %v", typ)
	}
	typ = typ.Elem()
	val := reflect.ValueOf(value)
	if !val.IsValid() || !val.Type().Implements(typ) {
		panicf("%v doesn't implement %s", reflect.TypeOf(value), typ)
	}
	return c.with(step{kind: kValue, val: val, typ: typ})
}

// available computes the types that handlers added next may rely on. Deferred
// and error handlers never contribute since they may not return values.
func (c Chain) available() map[reflect.Type]bool {
	m := map[reflect.Type]bool{}
	for _, s := range c.steps {
		switch s.kind {
		case kReserved:
			m[s.typ] = true
		case kValue:
			m[s.val.Type()] = true
			m[s.typ] = true
		case kHandler:
			for i := 0; i < s.typ.NumOut(); i++ {
				m[s.typ.Out(i)] = true
			}
		}
	}
	return m
}

// Then appends one or more handlers. Each handler must be a function whose
// arguments are all available from earlier steps; this is checked here, not
// when the chain runs. A non-nil error return aborts the chain.
func (c Chain) Then(handlers ...any) Chain {
	avail := c.available()
	steps := make([]step, 0, len(handlers))
	for i, h := range handlers {
		fn, err := valueOfFunction(h)
		if err == nil {
			err = checkCanCall(avail, fn)
		}
		if err != nil {
			panicf("%s arg of Then(...) %v", ordinalize(i+1), err)
		}
		t := fn.Func.Type()
		for j := 0; j < t.NumOut(); j++ {
			avail[t.Out(j)] = true
		}
		steps = append(steps, step{kind: kHandler, typ: t, fn: fn})
	}
	return c.with(steps...)
}

// OnErr registers an error handler for failures of handlers added after it.
// Error handlers may take the error type and may not return anything.
func (c Chain) OnErr(errorHandler any) Chain {
	return c.with(c.terminal(kErrorHandler, "Error handler", errorHandler))
}

// Defer adds a handler that runs after the normal handlers and any error
// handler. Deferred handlers run in reverse registration order, and only if
// the chain got as far as registering them.
func (c Chain) Defer(handler any) Chain {
	return c.with(c.terminal(kDeferred, "Defer(...) arg", handler))
}

func (c Chain) terminal(kind stepKind, what string, h any) step {
	fn, err := valueOfFunction(h)
	if err != nil {
		panicf("%s %v", what, err)
	}
	avail := c.available()
	avail[errorType] = true
	if err := checkCanCall(avail, fn); err != nil {
		panicf("%s %v", what, err)
	}
	if t := fn.Func.Type(); t.NumOut() > 0 {
		panicf("%s %s may not have any return values, signature is %s", what, fn.Name, t)
	}
	return step{kind: kind, typ: fn.Func.Type(), fn: fn}
}

// Run executes the chain using reservedValues as the values of the reserved
// types, in any order. A pointer to an interface value provides the interface
// type. Run only fails if the reserved values don't match the Reserve calls;
// handler errors and panics are routed to the error handler instead.
func (c Chain) Run(reservedValues ...any) error {
	b, err := c.seed(reservedValues)
	if err != nil {
		return err
	}

	onErr := FuncInfo{Name: "chain.DefaultErrorHandler", Func: reflect.ValueOf(DefaultErrorHandler)}
	var deferred []FuncInfo
	var history []FuncInfo

	for _, s := range c.steps {
		if b.err() != nil {
			break
		}
		switch s.kind {
		case kValue:
			b[s.val.Type()] = s.val
			b[s.typ] = s.val
		case kHandler:
			b.call(s.fn, &history)
		case kDeferred:
			deferred = append(deferred, s.fn)
		case kErrorHandler:
			onErr = s.fn
		}
	}

	var late []error
	if b.err() != nil {
		if err := b.call(onErr, &history); err != nil {
			late = append(late, err)
		}
	}
	for i := len(deferred) - 1; i >= 0; i-- {
		if err := b.call(deferred[i], &history); err != nil {
			late = append(late, err)
		}
	}

	// Nothing is left to handle errors raised by the error handler or the
	// deferred handlers.
	if len(late) > 0 {
		report := FuncInfo{Name: "chain.DefaultErrorHandler", Func: reflect.ValueOf(DefaultErrorHandler)}
		for _, err := range late {
			b.setErr(err)
			b.call(report, &history)
		}
	}
	return nil
}

// MustRun is Run, but panics if the reserved values are wrong.
func (c Chain) MustRun(reservedValues ...any) {
	if err := c.Run(reservedValues...); err != nil {
		panic(err)
	}
}

func (c Chain) seed(vals []any) (bag, error) {
	b := bag{}
	provided := map[reflect.Type]bool{}
	for i, v := range vals {
		if v == nil {
			return nil, fmt.Errorf("reserved value may not be <nil> (%s arg of Run(...))",
				ordinalize(i+1))
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Ptr && rv.Elem().Kind() == reflect.Interface {
			rv = rv.Elem()
		}
		b[rv.Type()] = rv
		provided[rv.Type()] = true
	}

	unreserved := map[reflect.Type]bool{}
	for t := range provided {
		unreserved[t] = true
	}

	for _, s := range c.steps {
		if s.kind != kReserved {
			continue
		}
		if _, ok := b[s.typ]; !ok {
			return nil, fmt.Errorf("cannot run chain, type %s was reserved but "+
				"no initial value was provided; provided types: %s", s.typ, typeNames(provided))
		}
		delete(unreserved, s.typ)
	}
	// Deferred and error handlers may always ask for the error, even a nil one.
	b.setErr(nil)

	if len(unreserved) != 0 {
		return nil, fmt.Errorf("Run(...) was called with additional types that were "+
			"not reserved: %s", typeNames(unreserved))
	}
	return b, nil
}

func typeNames(types map[reflect.Type]bool) []string {
	names := make([]string, 0, len(types))
	for t := range types {
		names = append(names, t.String())
	}
	sort.Strings(names)
	return names
}

// bag is the per-run set of values, keyed by type.
type bag map[reflect.Type]reflect.Value

func (b bag) err() error {
	v, ok := b[errorType]
	if !ok || v.IsNil() {
		return nil
	}
	return v.Interface().(error)
}

func (b bag) setErr(err error) {
	b[errorType] = reflect.ValueOf(&err).Elem()
}

// call invokes fn with arguments from the bag and stores its results. It
// returns the error fn returned or panicked with, if any.
func (b bag) call(fn FuncInfo, history *[]FuncInfo) (raised error) {
	t := fn.Func.Type()
	in := make([]reflect.Value, t.NumIn())
	for i := range in {
		in[i] = b[t.In(i)]
		// The registration checks make this unreachable.
		if !in[i].IsValid() {
			panicf("Cannot inject %s arg of type %s into %s (%s)",
				ordinalize(i+1), t.In(i), fn.Name, t)
		}
	}
	*history = append(*history, fn)
	defer func() {
		if x := recover(); x != nil {
			raised = newPanicError(x, *history)
			b.setErr(raised)
		}
	}()
	for _, out := range fn.Func.Call(in) {
		b[out.Type()] = out
		if out.Type() == errorType && !out.IsNil() {
			raised = out.Interface().(error)
		}
	}
	return raised
}
