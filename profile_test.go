package stencil

import (
	"strings"
	"testing"
	"time"
)

func Test_Profiler_RecordsAndSorts(t *testing.T) {
	p := NewProfiler()
	p.Record("fast", time.Millisecond)
	p.Record("slow", 10*time.Millisecond)
	p.Record("fast", 3*time.Millisecond)

	profiles := p.Profiles()
	if len(profiles) != 2 {
		t.Fatalf("want 2 profiles, got %d", len(profiles))
	}
	if profiles[0].Name != "slow" {
		t.Fatalf("biggest total should sort first, got %q", profiles[0].Name)
	}
	if profiles[1].Calls != 2 || profiles[1].Total != 4*time.Millisecond {
		t.Fatalf("got %+v", profiles[1])
	}
	if profiles[1].Avg() != 2*time.Millisecond {
		t.Fatalf("avg: got %v", profiles[1].Avg())
	}
}

func Test_Profiler_Report(t *testing.T) {
	p := NewProfiler()
	p.Record("to_upper", time.Millisecond)
	out := p.Report()
	if !strings.Contains(out, "Function") || !strings.Contains(out, "to_upper") {
		t.Fatalf("report missing entries:\n%s", out)
	}
}

func Test_Profiler_Reset(t *testing.T) {
	p := NewProfiler()
	p.Record("x", time.Millisecond)
	p.Reset()
	if len(p.Profiles()) != 0 {
		t.Fatalf("reset should discard stats")
	}
}

func Test_Profiler_CountsNamedCalls(t *testing.T) {
	p := NewProfiler()
	ctx := NewContext(WithProfiler(p))
	InitScriptFunctions(ctx)
	evalIn(t, ctx, `to_upper("a") + to_upper("b") + to_lower("C")`)

	byName := map[string]FunctionProfile{}
	for _, fp := range p.Profiles() {
		byName[fp.Name] = fp
	}
	if byName["to_upper"].Calls != 2 {
		t.Fatalf("want 2 to_upper calls, got %+v", byName)
	}
	if byName["to_lower"].Calls != 1 {
		t.Fatalf("want 1 to_lower call, got %+v", byName)
	}
}

func Test_Profiler_CountsScriptFunctions(t *testing.T) {
	p := NewProfiler()
	ctx := NewContext(WithProfiler(p))
	InitScriptFunctions(ctx)
	evalIn(t, ctx, `f := { input * 2 }; f(1) + f(2) + f(3)`)

	for _, fp := range p.Profiles() {
		if fp.Name == "f" {
			if fp.Calls != 3 {
				t.Fatalf("want 3 calls of f, got %d", fp.Calls)
			}
			return
		}
	}
	t.Fatalf("script function calls not recorded: %+v", p.Profiles())
}
