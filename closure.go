package stencil

import "regexp"

// ClosureBinding is one default argument attached by `f @(name: expr)`.
type ClosureBinding struct {
	Name  string
	Value Value
}

// ScriptClosure wraps a function value with default arguments. Defaults are
// applied when the function is called, but only for names the caller did not
// bind: closure bindings never shadow explicit arguments.
type ScriptClosure struct {
	Fun      Value
	Bindings []ClosureBinding

	simplified bool
}

// NewClosure builds a closure over fun. The bindings slice is taken over by
// the closure and must not be mutated afterwards.
func NewClosure(fun Value, bindings []ClosureBinding) *ScriptClosure {
	return &ScriptClosure{Fun: fun, Bindings: bindings}
}

// Binding returns the bound default for name, if any.
func (c *ScriptClosure) Binding(name string) (Value, bool) {
	for _, b := range c.Bindings {
		if b.Name == name {
			return b.Value, true
		}
	}
	return Nil, false
}

func (c *ScriptClosure) applyBindings(ctx *Context) {
	for _, b := range c.Bindings {
		if !ctx.hasLocal(b.Name) {
			ctx.SetVariable(b.Name, b.Value)
		}
	}
}

func (c *ScriptClosure) eval(ctx *Context, openScope bool) Value {
	c.simplify()
	if openScope {
		h := ctx.OpenScope()
		defer ctx.CloseScope(h)
	}
	c.applyBindings(ctx)
	return c.Fun.Eval(ctx, false)
}

func (c *ScriptClosure) dependencies(ctx *Context, dep Dependency) Value {
	c.simplify()
	c.applyBindings(ctx)
	return c.Fun.Dependencies(ctx, dep)
}

func (c *ScriptClosure) code() string {
	s := ToCode(c.Fun) + " @("
	for i, b := range c.Bindings {
		if i > 0 {
			s += ", "
		}
		s += b.Name + ": " + ToCode(b.Value)
	}
	return s + ")"
}

// simplify normalizes the closure once, then remembers the result:
//   - a closure over another closure merges into a single binding list;
//   - string bindings for a native's regex parameters are precompiled, so
//     repeated calls reuse the compiled pattern.
func (c *ScriptClosure) simplify() {
	if c.simplified {
		return
	}
	c.simplified = true

	for {
		inner, ok := c.Fun.Data.(*ScriptClosure)
		if !ok {
			break
		}
		inner.simplify()
		// The outer closure binds first at call time, so on a name collision
		// its default wins; keep that order in the merged list.
		merged := make([]ClosureBinding, 0, len(c.Bindings)+len(inner.Bindings))
		merged = append(merged, c.Bindings...)
		for _, b := range inner.Bindings {
			if _, dup := c.Binding(b.Name); !dup {
				merged = append(merged, b)
			}
		}
		c.Fun = inner.Fun
		c.Bindings = merged
	}

	if nat, ok := c.Fun.Data.(*Native); ok {
		for i, b := range c.Bindings {
			if b.Value.Tag != STString || !nat.regexParam(b.Name) {
				continue
			}
			re, err := regexp.Compile(b.Value.Data.(string))
			if err != nil {
				c.Bindings[i].Value = NewErrorf("error in regular expression: %v", err)
				continue
			}
			c.Bindings[i].Value = Regex(re)
		}
	}
}
