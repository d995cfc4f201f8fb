package stencil

import (
	"testing"
	"time"
)

func Test_Value_ToString(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Nil, ""},
		{Dummy, ""},
		{Int(42), "42"},
		{Bool(true), "true"},
		{Bool(false), "false"},
		{Double(2.5), "2.5"},
		{Double(3), "3"}, // no trailing ".0" — matches the int spelling
		{Str("hi"), "hi"},
		{ColorV(RGB(0, 0, 0)), "#000000"},
		{ColorV(Color{R: 1, G: 2, B: 3, A: 128}), "#01020380"},
	}
	for _, c := range cases {
		got, err := c.v.ToString()
		if err != nil {
			t.Fatalf("ToString(%#v): %v", c.v, err)
		}
		if got != c.want {
			t.Fatalf("ToString(%#v): want %q, got %q", c.v, c.want, got)
		}
	}
}

func Test_Value_NumericConversions(t *testing.T) {
	if n, err := Str("17").ToInt(); err != nil || n != 17 {
		t.Fatalf("want 17, got %d (%v)", n, err)
	}
	if f, err := Str("2.5").ToDouble(); err != nil || f != 2.5 {
		t.Fatalf("want 2.5, got %g (%v)", f, err)
	}
	// Doubles truncate toward zero.
	if n, err := Double(-2.9).ToInt(); err != nil || n != -2 {
		t.Fatalf("want -2, got %d (%v)", n, err)
	}
	if n, err := Bool(true).ToInt(); err != nil || n != 1 {
		t.Fatalf("want 1, got %d (%v)", n, err)
	}
	if n, err := Nil.ToInt(); err != nil || n != 0 {
		t.Fatalf("nil should read as 0, got %d (%v)", n, err)
	}
	if _, err := Str("many").ToInt(); err == nil {
		t.Fatalf("want conversion error")
	}
}

func Test_Value_ToBool(t *testing.T) {
	for _, s := range []string{"true", "yes"} {
		if b, err := Str(s).ToBool(); err != nil || !b {
			t.Fatalf("%q should be true (%v)", s, err)
		}
	}
	for _, s := range []string{"false", "no", ""} {
		if b, err := Str(s).ToBool(); err != nil || b {
			t.Fatalf("%q should be false (%v)", s, err)
		}
	}
	if _, err := Str("maybe").ToBool(); err == nil {
		t.Fatalf("want conversion error for \"maybe\"")
	}
	// Numbers are not implicitly truthy.
	if _, err := Int(1).ToBool(); err == nil {
		t.Fatalf("want conversion error for int → bool")
	}
}

func Test_Value_ToColor(t *testing.T) {
	c, err := Str("#ff8000").ToColor()
	if err != nil || c != RGB(255, 128, 0) {
		t.Fatalf("got %v (%v)", c, err)
	}
	c, err = Str("red").ToColor()
	if err != nil || c != RGB(255, 0, 0) {
		t.Fatalf("got %v (%v)", c, err)
	}
	if _, err := Str("#zz0000").ToColor(); err == nil {
		t.Fatalf("want conversion error")
	}
	c, err = Nil.ToColor()
	if err != nil || c != (Color{}) {
		t.Fatalf("nil should read as transparent, got %v (%v)", c, err)
	}
}

func Test_Value_ToDateTime(t *testing.T) {
	want := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)
	got, err := Str("2024-03-15 12:30:00").ToDateTime()
	if err != nil || !got.Equal(want) {
		t.Fatalf("got %v (%v)", got, err)
	}
	if _, err := Str("2024-03-15").ToDateTime(); err != nil {
		t.Fatalf("date-only form should parse: %v", err)
	}
}

func Test_Value_ErrorValuesAreLazy(t *testing.T) {
	e := NewError("boom")
	if e.Tag != STError {
		t.Fatalf("want error value, got %#v", e)
	}
	// Member access and indexing on an error stay the same error.
	if m := e.GetMember("x"); m.Tag != STError || m.Data.(*ScriptError).Msg != "boom" {
		t.Fatalf("got %#v", m)
	}
	if m := e.GetIndex(0); m.Tag != STError {
		t.Fatalf("got %#v", m)
	}
	// Conversion forces the failure.
	if _, err := e.ToString(); err == nil || err.Error() != "boom" {
		t.Fatalf("got %v", err)
	}
}

func Test_Value_DummyAbsorbs(t *testing.T) {
	if m := Dummy.GetMember("anything"); m.Tag != STDummy {
		t.Fatalf("got %#v", m)
	}
	if m := Dummy.GetIndex(3); m.Tag != STDummy {
		t.Fatalf("got %#v", m)
	}
	if it := Dummy.MakeIterator(); it.Tag != STDummy {
		t.Fatalf("got %#v", it)
	}
	if s, err := Dummy.ToString(); err != nil || s != "" {
		t.Fatalf("got %q (%v)", s, err)
	}
}

func Test_Value_MemberMissIsRecoverable(t *testing.T) {
	c := NewCollection()
	c.Put("a", Int(1))
	v := c.Value()
	miss := v.GetMember("b")
	if miss.Tag != STError {
		t.Fatalf("want lazy error, got %#v", miss)
	}
	hit := v.GetMember("a")
	wantInt(t, hit, 1)
}

func Test_ToCode_RoundTripsPrimitives(t *testing.T) {
	values := []Value{
		Nil,
		Int(-7),
		Bool(true),
		Double(2.5),
		Str("a \"b\"\nc"),
		ColorV(RGB(255, 0, 128)),
		ColorV(Color{R: 1, G: 2, B: 3, A: 4}),
	}
	ctx := NewContext()
	InitScriptFunctions(ctx)
	for _, v := range values {
		code := ToCode(v)
		script, errs := Parse(code)
		if len(errs) > 0 {
			t.Fatalf("ToCode(%#v) = %q does not parse: %v", v, code, errs[0].Error())
		}
		back := ctx.Eval(script, true)
		eq, err := Equal(v, back)
		if err != nil {
			t.Fatalf("Equal: %v", err)
		}
		if !eq {
			t.Fatalf("round trip of %#v via %q gave %#v", v, code, back)
		}
	}
}

func Test_ToCode_Collections(t *testing.T) {
	c := NewCollection()
	c.Append(Int(1))
	c.Put("name", Str("x"))
	if got := ToCode(c.Value()); got != `[1, name: "x"]` {
		t.Fatalf("got %q", got)
	}
}
