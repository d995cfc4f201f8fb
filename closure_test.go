package stencil

import "testing"

// evalPersistent evaluates without a private scope, so bindings survive
// between calls (the way the interactive console runs a session).
func evalPersistent(t *testing.T, ctx *Context, src string) Value {
	t.Helper()
	script, errs := Parse(src)
	if len(errs) > 0 {
		t.Fatalf("parse error for %q: %v", src, errs[0].Error())
	}
	return ctx.Eval(script, false)
}

func newTestContext() *Context {
	ctx := NewContext()
	InitScriptFunctions(ctx)
	return ctx
}

func Test_Closure_DefaultsFillMissingArguments(t *testing.T) {
	wantStr(t, evalSrc(t, `g := to_upper@(input: "hi"); g()`), "HI")
	wantInt(t, evalSrc(t, `f := { a + b }; g := f@(b: 10); g(a: 1)`), 11)
}

func Test_Closure_CallerBindingsWin(t *testing.T) {
	// A default never overrides an argument the caller passed.
	wantStr(t, evalSrc(t, `g := to_upper@(input: "hi"); g("yo")`), "YO")
	wantInt(t, evalSrc(t, `f := { a + b }; g := f@(a: 1, b: 1); g(a: 5)`), 6)
}

func Test_Closure_NestingOuterWins(t *testing.T) {
	// The outer closure binds first at call time, so its default wins.
	wantInt(t, evalSrc(t, `f := { a + b }; (f@(a: 1)@(a: 10, b: 2))()`), 12)
	wantInt(t, evalSrc(t, `f := { a + b }; (f@(a: 1, b: 5)@(b: 2))()`), 3)
}

func Test_Closure_SimplifyMergesNesting(t *testing.T) {
	ctx := newTestContext()
	evalPersistent(t, ctx, `f := { a + b }`)
	v := evalPersistent(t, ctx, `f@(a: 1)@(b: 2)`)
	cl := v.Data.(*ScriptClosure)

	// Simplification runs on first use.
	wantInt(t, evalPersistent(t, ctx, `g := f@(a: 1)@(b: 2); g()`), 3)
	cl.simplify()
	if !cl.simplified {
		t.Fatalf("closure should be simplified")
	}
	if len(cl.Bindings) != 2 {
		t.Fatalf("want 2 merged bindings, got %d", len(cl.Bindings))
	}
	if _, ok := cl.Fun.Data.(*ScriptClosure); ok {
		t.Fatalf("nested closure should be flattened")
	}
}

func Test_Closure_PrecompilesRegexBindings(t *testing.T) {
	ctx := newTestContext()
	v := evalPersistent(t, ctx, `r := replace@(match: "a+", replace: "-")`)
	wantStr(t, evalPersistent(t, ctx, `r("caat")`), "c-t")

	cl := v.Data.(*ScriptClosure)
	b, ok := cl.Binding("match")
	if !ok {
		t.Fatalf("missing match binding")
	}
	if b.Tag != STRegex {
		t.Fatalf("match binding should be precompiled, got %#v", b)
	}
	// Non-pattern parameters stay strings.
	if b, _ := cl.Binding("replace"); b.Tag != STString {
		t.Fatalf("replace binding should stay a string, got %#v", b)
	}
}

func Test_Closure_BadRegexSurfacesOnUse(t *testing.T) {
	wantErrorContains(t, evalSrc(t, `r := replace@(match: "[", replace: "-"); r("x")`),
		"regular expression")
}

func Test_Closure_ToCodeRoundTrips(t *testing.T) {
	ctx := newTestContext()
	v := evalPersistent(t, ctx, `to_upper@(input: "hi")`)
	code := ToCode(v)
	script, errs := Parse(code)
	if len(errs) > 0 {
		t.Fatalf("closure code %q does not parse: %v", code, errs[0].Error())
	}
	back := ctx.Eval(script, true)
	if back.Tag != STFunction {
		t.Fatalf("want function, got %#v", back)
	}
}
