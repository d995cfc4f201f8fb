package stencil

import "testing"

// testHost is a tracked object: it serves members from a map and records
// every dependency the walk touches.
type testHost struct {
	fields   map[string]Value
	touched  []string
	wholeDep int
}

func (h *testHost) TypeName() string { return "card" }

func (h *testHost) GetMember(name string) (Value, bool) {
	v, ok := h.fields[name]
	return v, ok
}

func (h *testHost) DependencyMember(name string, dep Dependency) Value {
	h.touched = append(h.touched, name)
	return Dummy
}

func (h *testHost) DependencyThis(dep Dependency) { h.wholeDep++ }

func depWalk(t *testing.T, host *testHost, src string) Value {
	t.Helper()
	ctx := NewContext()
	InitScriptFunctions(ctx)
	ctx.SetVariable("card", ObjectV(host))
	script, errs := Parse(src)
	if len(errs) > 0 {
		t.Fatalf("parse error for %q: %v", src, errs[0].Error())
	}
	return ctx.Dependencies(script, Dependency{Kind: DepMember, Name: "result"})
}

func wantTouched(t *testing.T, host *testHost, names ...string) {
	t.Helper()
	if len(host.touched) != len(names) {
		t.Fatalf("want touched %v, got %v", names, host.touched)
	}
	for i, n := range names {
		if host.touched[i] != n {
			t.Fatalf("want touched %v, got %v", names, host.touched)
		}
	}
}

func Test_Dependencies_MemberReads(t *testing.T) {
	host := &testHost{fields: map[string]Value{}}
	result := depWalk(t, host, "card.name + card.cost")
	wantTouched(t, host, "name", "cost")
	if result.Tag != STDummy {
		t.Fatalf("abstract result should be dummy, got %#v", result)
	}
}

func Test_Dependencies_BothBranchesWalked(t *testing.T) {
	// Real evaluation takes one branch; the walk must take both.
	host := &testHost{fields: map[string]Value{}}
	depWalk(t, host, `if card.cost > 3 then card.name else card.color`)
	wantTouched(t, host, "cost", "name", "color")
}

func Test_Dependencies_LoopBodyWalkedOnce(t *testing.T) {
	host := &testHost{fields: map[string]Value{}}
	depWalk(t, host, "for each x in [1, 2, 3] do card.name")
	wantTouched(t, host, "name")
}

func Test_Dependencies_ThroughCalls(t *testing.T) {
	host := &testHost{fields: map[string]Value{}}
	depWalk(t, host, "to_upper(card.name)")
	wantTouched(t, host, "name")
}

func Test_Dependencies_ThroughScriptFunctions(t *testing.T) {
	host := &testHost{fields: map[string]Value{}}
	depWalk(t, host, "f := { input.name }; f(card)")
	wantTouched(t, host, "name")
}

func Test_Dependencies_IndexDependsOnWhole(t *testing.T) {
	host := &testHost{fields: map[string]Value{}}
	depWalk(t, host, "card[3]")
	if host.wholeDep == 0 {
		t.Fatalf("indexing should register a whole-value dependency")
	}
}

func Test_Dependencies_UntrackedHostFallsThrough(t *testing.T) {
	// An untracked inner object is walked through to reach tracked ones.
	inner := &testHost{fields: map[string]Value{}}
	outer := &plainHost{fields: map[string]Value{"child": ObjectV(inner)}}
	ctx := NewContext()
	ctx.SetVariable("box", ObjectV(outer))
	script, errs := Parse("box.child.name")
	if len(errs) > 0 {
		t.Fatalf("parse: %v", errs[0].Error())
	}
	ctx.Dependencies(script, Dependency{Kind: DepMember, Name: "r"})
	wantTouched(t, inner, "name")
}

// plainHost implements ScriptableObject but not DependencyTracker.
type plainHost struct {
	fields map[string]Value
}

func (h *plainHost) TypeName() string { return "box" }

func (h *plainHost) GetMember(name string) (Value, bool) {
	v, ok := h.fields[name]
	return v, ok
}

func Test_Dependencies_RealEvalUnaffected(t *testing.T) {
	host := &testHost{fields: map[string]Value{"name": Str("Ace")}}
	ctx := NewContext()
	InitScriptFunctions(ctx)
	ctx.SetVariable("card", ObjectV(host))
	wantStr(t, evalIn(t, ctx, "card.name"), "Ace")
	if len(host.touched) != 0 {
		t.Fatalf("real evaluation must not record dependencies: %v", host.touched)
	}
}

func Test_Dependencies_DeclarationsDoNotLeak(t *testing.T) {
	// The walk brackets its own scope; := inside the script must not leave
	// bindings behind in a reused context.
	ctx := NewContext()
	InitScriptFunctions(ctx)
	script, errs := Parse("x := 1; to_upper := 2; x")
	if len(errs) > 0 {
		t.Fatalf("parse: %v", errs[0].Error())
	}
	ctx.Dependencies(script, Dependency{Kind: DepMember, Name: "r"})
	if _, ok := ctx.LookupVariable("x"); ok {
		t.Fatalf("declaration leaked out of the dependency walk")
	}
	wantStr(t, evalIn(t, ctx, `to_upper("ok")`), "OK")
}

func Test_Dependencies_RenderSymbolDependsOnBothObjects(t *testing.T) {
	// render_symbol rasterizes from its arguments in full, so the walk
	// registers a whole-value dependency on the tracked filter object.
	host := &testHost{fields: map[string]Value{}}
	depWalk(t, host, "render_symbol(circle_symbol(), filter: card)")
	if host.wholeDep == 0 {
		t.Fatalf("rendering should register a whole-value dependency on the filter")
	}
}

func Test_DependencyName_DelegatesToContainer(t *testing.T) {
	container := &testHost{fields: map[string]Value{}}
	v := Str("x")
	v.DependencyName(ObjectV(container), Dependency{Kind: DepMember, Name: "d"})
	wantTouched(t, container, "string")
}
