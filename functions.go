// functions.go — native (host-implemented) functions and the standard
// library registry.
//
// Natives receive their arguments the same way script functions do: the call
// protocol binds them by name in the call scope before invoking, and the
// implementation reads them back with ctx.GetVariable. The first unnamed
// argument of a call is always bound as "input".
package stencil

import "regexp"

// Native is a function value implemented in Go.
type Native struct {
	// Name is the registration name, used in diagnostics, profiles, and by
	// ToCode.
	Name string

	impl func(ctx *Context) Value

	// depImpl, when set, replaces the default dependency behavior (walk the
	// arguments, return Dummy) for natives whose result exposes structure
	// the walk must continue into.
	depImpl func(ctx *Context, dep Dependency) Value

	// regexParams names string parameters that hold regular expressions;
	// closure simplification precompiles default bindings for them
	// (closure.go).
	regexParams []string
}

// Value wraps the native as a function value.
func (f *Native) Value() Value { return Value{Tag: STFunction, Data: f} }

func (f *Native) eval(ctx *Context, openScope bool) Value {
	if openScope {
		h := ctx.OpenScope()
		defer ctx.CloseScope(h)
	}
	return f.impl(ctx)
}

func (f *Native) dependencies(ctx *Context, dep Dependency) Value {
	if f.depImpl != nil {
		return f.depImpl(ctx, dep)
	}
	return Dummy
}

func (f *Native) code() string { return f.Name }

func (f *Native) regexParam(name string) bool {
	for _, p := range f.regexParams {
		if p == name {
			return true
		}
	}
	return false
}

// InitScriptFunctions installs the standard library into the context's
// current (normally root) scope. Call it once, right after NewContext.
func InitScriptFunctions(ctx *Context) {
	registerBasicFunctions(ctx)
	registerStringFunctions(ctx)
	registerImageFunctions(ctx)
}

func register(ctx *Context, n *Native) {
	ctx.SetVariable(n.Name, n.Value())
}

/* ---------- argument helpers ---------- */

// fail converts a Go-side conversion error into an error value.
func fail(err error) Value { return NewError(err.Error()) }

// optArg fetches an optional argument; ok is false when unbound.
func optArg(ctx *Context, name string) (Value, bool) {
	return ctx.LookupVariable(name)
}

// argRegex fetches a pattern argument: either a precompiled regex value
// (from closure simplification) or a string compiled on the spot.
func argRegex(ctx *Context, name string) (*regexp.Regexp, Value) {
	v := ctx.GetVariable(name)
	switch v.Tag {
	case STRegex:
		return v.Data.(*regexp.Regexp), Nil
	case STError:
		return nil, v
	}
	s, err := v.ToString()
	if err != nil {
		return nil, fail(err)
	}
	re, cerr := regexp.Compile(s)
	if cerr != nil {
		return nil, NewErrorf("error in regular expression: %v", cerr)
	}
	return re, Nil
}

// callFunction invokes a function-valued argument with one named argument,
// using the standard call protocol.
func callFunction(ctx *Context, fun Value, argName string, arg Value) Value {
	h := ctx.OpenScope()
	defer ctx.CloseScope(h)
	ctx.SetVariable(argName, arg)
	return fun.Eval(ctx, false)
}

// wrongArgument builds the standard bad-argument diagnostic.
func wrongArgument(fn, param string, got Value) Value {
	return NewErrorf("%s: invalid '%s' argument: %s", fn, param, got.TypeName())
}
