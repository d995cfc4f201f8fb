package stencil

import (
	"strings"
	"testing"
)

/* ---------- helpers ---------- */

func evalSrc(t *testing.T, src string) Value {
	t.Helper()
	ctx := NewContext()
	InitScriptFunctions(ctx)
	return evalIn(t, ctx, src)
}

func evalIn(t *testing.T, ctx *Context, src string) Value {
	t.Helper()
	script, errs := Parse(src)
	if len(errs) > 0 {
		t.Fatalf("parse error for %q: %v", src, errs[0].Error())
	}
	return ctx.Eval(script, true)
}

func wantInt(t *testing.T, v Value, n int64) {
	t.Helper()
	if v.Tag != STInt || v.Data.(int64) != n {
		t.Fatalf("want int %d, got %#v", n, v)
	}
}

func wantDouble(t *testing.T, v Value, f float64) {
	t.Helper()
	if v.Tag != STDouble || v.Data.(float64) != f {
		t.Fatalf("want double %g, got %#v", f, v)
	}
}

func wantStr(t *testing.T, v Value, s string) {
	t.Helper()
	if v.Tag != STString || v.Data.(string) != s {
		t.Fatalf("want str %q, got %#v", s, v)
	}
}

func wantBool(t *testing.T, v Value, b bool) {
	t.Helper()
	if v.Tag != STBool || v.Data.(bool) != b {
		t.Fatalf("want bool %v, got %#v", b, v)
	}
}

func wantNil(t *testing.T, v Value) {
	t.Helper()
	if v.Tag != STNil {
		t.Fatalf("want nil, got %#v", v)
	}
}

func wantErrorContains(t *testing.T, v Value, substr string) {
	t.Helper()
	if v.Tag != STError {
		t.Fatalf("want error value containing %q, got %#v", substr, v)
	}
	msg := v.Data.(*ScriptError).Msg
	if !strings.Contains(strings.ToLower(msg), strings.ToLower(substr)) {
		t.Fatalf("want error containing %q, got %q", substr, msg)
	}
}

/* ---------- literals & operators ---------- */

func Test_Eval_Literals(t *testing.T) {
	wantInt(t, evalSrc(t, "42"), 42)
	wantDouble(t, evalSrc(t, "2.5"), 2.5)
	wantStr(t, evalSrc(t, `"hi"`), "hi")
	wantBool(t, evalSrc(t, "true"), true)
	wantBool(t, evalSrc(t, "false"), false)
	wantNil(t, evalSrc(t, "nil"))
}

func Test_Eval_Arithmetic(t *testing.T) {
	wantInt(t, evalSrc(t, "1 + 2"), 3)
	wantInt(t, evalSrc(t, "1 + 2 * 3"), 7)
	wantInt(t, evalSrc(t, "10 - 4"), 6)
	wantInt(t, evalSrc(t, "7 mod 4"), 3)
	wantDouble(t, evalSrc(t, "5 / 2"), 2.5)
	wantDouble(t, evalSrc(t, "1.5 + 1"), 2.5)
	wantInt(t, evalSrc(t, "-3 + 5"), 2)
	wantErrorContains(t, evalSrc(t, "1 / 0"), "division by zero")
	wantErrorContains(t, evalSrc(t, "1 mod 0"), "division by zero")
}

func Test_Eval_StringConcat(t *testing.T) {
	wantStr(t, evalSrc(t, `"a" + "b"`), "ab")
	// A string operand turns + into concatenation.
	wantStr(t, evalSrc(t, `"n=" + 3`), "n=3")
	wantStr(t, evalSrc(t, `3 + "!"`), "3!")
	// nil is the identity of +.
	wantStr(t, evalSrc(t, `nil + "x"`), "x")
	wantInt(t, evalSrc(t, "nil + 3"), 3)
}

func Test_Eval_Comparisons(t *testing.T) {
	wantBool(t, evalSrc(t, "3 < 4"), true)
	wantBool(t, evalSrc(t, "4 <= 4"), true)
	wantBool(t, evalSrc(t, "5 > 6"), false)
	wantBool(t, evalSrc(t, "2.5 >= 2"), true)
	wantBool(t, evalSrc(t, `"abc" < "abd"`), true)
	wantBool(t, evalSrc(t, "1 == 1"), true)
	wantBool(t, evalSrc(t, "1 != 2"), true)
}

func Test_Eval_Logic(t *testing.T) {
	wantBool(t, evalSrc(t, "true and false"), false)
	wantBool(t, evalSrc(t, "true or false"), true)
	wantBool(t, evalSrc(t, "true xor true"), false)
	wantBool(t, evalSrc(t, "true xor false"), true)
	wantBool(t, evalSrc(t, "not false"), true)
	// Short-circuiting: the right side is never evaluated, so the undefined
	// variable is never forced.
	wantBool(t, evalSrc(t, "false and no_such_thing"), false)
	wantBool(t, evalSrc(t, "true or no_such_thing"), true)
}

func Test_Eval_If(t *testing.T) {
	wantStr(t, evalSrc(t, `if 3 < 4 then "y" else "n"`), "y")
	wantStr(t, evalSrc(t, `if 3 > 4 then "y" else "n"`), "n")
	wantNil(t, evalSrc(t, `if false then "y"`))
	// String conditions use the tolerant flag spellings.
	wantStr(t, evalSrc(t, `if "yes" then "y" else "n"`), "y")
	wantErrorContains(t, evalSrc(t, `if "maybe" then 1 else 2`), "convert")
}

/* ---------- variables & functions ---------- */

func Test_Eval_Variables(t *testing.T) {
	wantInt(t, evalSrc(t, "x := 2\nx * x"), 4)
	wantErrorContains(t, evalSrc(t, "to_string(no_such)"), "no such variable 'no_such'")
}

func Test_Eval_FunctionScopesShadow(t *testing.T) {
	// The binding inside the function shadows the outer x and vanishes
	// with the call scope.
	v := evalSrc(t, `
x := 1
f := { x := 2; x }
f() + x
`)
	wantInt(t, v, 3)
}

func Test_Eval_FunctionArguments(t *testing.T) {
	wantStr(t, evalSrc(t, `f := { input + input }; f("ab")`), "abab")
	wantInt(t, evalSrc(t, `f := { a + b }; f(a: 2, b: 3)`), 5)
}

func Test_Eval_CallingNonFunctionYieldsValue(t *testing.T) {
	wantInt(t, evalSrc(t, "x := 3; x()"), 3)
}

/* ---------- collections ---------- */

func Test_Eval_Collections(t *testing.T) {
	wantInt(t, evalSrc(t, "[1, 2, 3][1]"), 2)
	wantInt(t, evalSrc(t, "[1, 2, 3][-1]"), 3)
	wantInt(t, evalSrc(t, "[a: 1, b: 2].b"), 2)
	wantInt(t, evalSrc(t, `xs := [a: 1, b: 2]; xs["a"]`), 1)
	wantInt(t, evalSrc(t, "length([1, 2, 3])"), 3)
	wantErrorContains(t, evalSrc(t, "to_string([1][5])"), "out of range")
}

func Test_Eval_CollectionConcat(t *testing.T) {
	wantInt(t, evalSrc(t, "length([1, 2] + [3])"), 3)
	wantInt(t, evalSrc(t, "([1] + [a: 9]).a"), 9)
}

func Test_Eval_LazyErrorsInsideCollections(t *testing.T) {
	// An erroneous element costs nothing until something forces it.
	wantInt(t, evalSrc(t, "[no_such_variable, 7][1]"), 7)
	wantErrorContains(t, evalSrc(t, "to_string([no_such_variable, 7][0])"), "no such variable")
}

/* ---------- loops ---------- */

func Test_Eval_ForEach(t *testing.T) {
	wantInt(t, evalSrc(t, "for each x in [1, 2, 3] do x"), 6)
	wantStr(t, evalSrc(t, `for each w in ["a", "b", "c"] do w`), "abc")
	wantNil(t, evalSrc(t, "for each x in [] do x"))
	// The loop variable's _key twin carries the entry key.
	wantStr(t, evalSrc(t, "for each v in [a: 1, b: 2] do v_key"), "ab")
	// Collection accumulation builds a mapped list.
	wantInt(t, evalSrc(t, "(for each x in [1, 2] do [x * 10])[1]"), 20)
}

func Test_Eval_ForRange(t *testing.T) {
	// The range runs from the lower bound up to, not including, the upper.
	wantInt(t, evalSrc(t, "for i from 0 to 4 do i"), 6)
	wantNil(t, evalSrc(t, "for i from 3 to 3 do i"))
	wantStr(t, evalSrc(t, `for i from 1 to 4 do to_string(i)`), "123")
}

func Test_Eval_LoopVariableScoped(t *testing.T) {
	wantErrorContains(t, evalSrc(t, "for each x in [1] do x\nto_string(x)"), "no such variable")
}

/* ---------- whitespace-sensitive calls ---------- */

func Test_Eval_CallRequiresAdjacentParen(t *testing.T) {
	// f(x) is a call; f (x) is the value f followed by a parse error, since
	// two expressions cannot sit on one line.
	wantStr(t, evalSrc(t, `to_upper("hi")`), "HI")
	_, errs := Parse(`f := { 1 }; f (2)`)
	if len(errs) == 0 {
		t.Fatalf("want parse error for non-adjacent call parenthesis")
	}
}

/* ---------- error propagation ---------- */

func Test_Eval_ErrorsPropagateWhenForced(t *testing.T) {
	wantErrorContains(t, evalSrc(t, "1 + no_such"), "no such variable")
	wantErrorContains(t, evalSrc(t, "no_such < 3"), "no such variable")
	wantErrorContains(t, evalSrc(t, "no_such == 3"), "no such variable")
}
