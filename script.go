// script.go — parsed scripts and script-defined function values.
package stencil

// Script is a parsed expression tree, the unit the host evaluates. A Script
// is itself a function value: the entry points Context.Eval and
// Context.Dependencies invoke it like any other callable.
type Script struct {
	body S
	// Source is the text the script was parsed from; diagnostics quote it.
	Source string
}

// Body exposes the parsed tree (read-only by convention).
func (s *Script) Body() S { return s.body }

// Value wraps the script as a function value.
func (s *Script) Value() Value { return Value{Tag: STFunction, Data: s} }

func (s *Script) eval(ctx *Context, openScope bool) Value {
	if openScope {
		h := ctx.OpenScope()
		defer ctx.CloseScope(h)
	}
	e := evaluator{ctx: ctx, mode: modeReal}
	return e.eval(s.body)
}

func (s *Script) dependencies(ctx *Context, dep Dependency) Value {
	e := evaluator{ctx: ctx, mode: modeDeps, dep: dep}
	return e.eval(s.body)
}

func (s *Script) code() string { return FormatNode(s.body) }

// ScriptFun is the payload of a `{ body }` function literal. It has no
// parameter list: arguments are whatever names the call protocol bound in
// the call scope, read via variable lookup — the original's convention, which
// is also how natives receive arguments (functions.go).
type ScriptFun struct {
	body S
}

func (f *ScriptFun) eval(ctx *Context, openScope bool) Value {
	if openScope {
		h := ctx.OpenScope()
		defer ctx.CloseScope(h)
	}
	e := evaluator{ctx: ctx, mode: modeReal}
	return e.eval(f.body)
}

func (f *ScriptFun) dependencies(ctx *Context, dep Dependency) Value {
	e := evaluator{ctx: ctx, mode: modeDeps, dep: dep}
	return e.eval(f.body)
}

func (f *ScriptFun) code() string { return "{ " + FormatNode(f.body) + " }" }
