// context.go — the evaluation context: a stack of lexical scopes.
//
// SCOPING SEMANTICS
// -----------------
// A Context owns a stack of scopes, innermost last. OpenScope pushes a frame
// and returns a handle; CloseScope pops back to that handle and must receive
// the most recently issued unclosed handle — scopes nest strictly (LIFO), and
// closing out of order panics, because it indicates a lexical-scope bug in
// the evaluator itself, never bad script input.
//
// SetVariable binds in the innermost frame: binding a name that exists in an
// outer frame shadows it, never mutates it. Lookup walks innermost to
// outermost, first match wins.
//
// A Context is confined to one goroutine by contract; evaluation is fully
// synchronous and there is no locking inside.
package stencil

import "log/slog"

// ScopeHandle identifies an open scope; CloseScope validates it is the top.
type ScopeHandle int

// Context is the evaluation state scripts run against. Construct with
// NewContext, install the standard library with InitScriptFunctions, then
// bracket each evaluation unit with OpenScope/CloseScope.
type Context struct {
	scopes   []map[string]Value
	profiler *Profiler
	logger   *slog.Logger
}

// Option configures a Context at construction.
type Option func(*Context)

// WithProfiler attaches a call profiler; the evaluator records per-function
// call counts and wall time into it. Zero cost when absent.
func WithProfiler(p *Profiler) Option {
	return func(ctx *Context) { ctx.profiler = p }
}

// WithLogger attaches a structured logger for evaluator diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(ctx *Context) { ctx.logger = l }
}

// NewContext returns a context with a single root scope (where the standard
// functions are installed).
func NewContext(opts ...Option) *Context {
	ctx := &Context{scopes: []map[string]Value{{}}}
	for _, o := range opts {
		o(ctx)
	}
	return ctx
}

// OpenScope pushes a fresh innermost scope.
func (ctx *Context) OpenScope() ScopeHandle {
	ctx.scopes = append(ctx.scopes, map[string]Value{})
	return ScopeHandle(len(ctx.scopes))
}

// CloseScope pops the scope identified by h, unbinding every name introduced
// since the matching OpenScope. h must be the most recently issued unclosed
// handle; anything else (out-of-order close, double close, closing the root)
// panics.
func (ctx *Context) CloseScope(h ScopeHandle) {
	if int(h) != len(ctx.scopes) || len(ctx.scopes) <= 1 {
		panic("stencil: scope closed out of order")
	}
	ctx.scopes = ctx.scopes[:len(ctx.scopes)-1]
}

// SetVariable binds name in the innermost scope, shadowing outer bindings.
func (ctx *Context) SetVariable(name string, v Value) {
	ctx.scopes[len(ctx.scopes)-1][name] = v
}

// LookupVariable walks scopes innermost to outermost.
func (ctx *Context) LookupVariable(name string) (Value, bool) {
	for i := len(ctx.scopes) - 1; i >= 0; i-- {
		if v, ok := ctx.scopes[i][name]; ok {
			return v, true
		}
	}
	return Nil, false
}

// GetVariable is LookupVariable with the evaluator's miss semantics: an
// undefined name is a lazy "no such variable" error value.
func (ctx *Context) GetVariable(name string) Value {
	if v, ok := ctx.LookupVariable(name); ok {
		return v
	}
	return NewErrorf("no such variable '%s'", name)
}

// hasLocal reports whether name is bound in the innermost scope only; the
// closure default-argument protocol uses it (closure.go).
func (ctx *Context) hasLocal(name string) bool {
	_, ok := ctx.scopes[len(ctx.scopes)-1][name]
	return ok
}

// Eval executes a parsed script against this context.
// openScope=false means the caller brackets the evaluation with its own
// OpenScope/CloseScope pair (the interactive shell's session scope works this
// way, so bindings persist between commands).
func (ctx *Context) Eval(s *Script, openScope bool) Value {
	result := Value{Tag: STFunction, Data: s}.Eval(ctx, openScope)
	if ctx.logger != nil && result.Tag == STError {
		ctx.logger.Debug("script evaluated to an error",
			slog.String("error", result.Data.(*ScriptError).Msg))
	}
	return result
}

// Dependencies performs the shadow dependency walk of a parsed script:
// identical traversal to Eval, abstract effects, threading dep through every
// value-producing operation. The result is an abstract stand-in for the
// value Eval would produce. The walk runs in its own scope, so declarations
// it encounters do not outlive it.
func (ctx *Context) Dependencies(s *Script, dep Dependency) Value {
	h := ctx.OpenScope()
	defer ctx.CloseScope(h)
	return Value{Tag: STFunction, Data: s}.Dependencies(ctx, dep)
}
