// functions_basic.go — conversions, collection helpers, and arithmetic
// builtins.
package stencil

import (
	"sort"
	"strings"
)

func registerBasicFunctions(ctx *Context) {
	register(ctx, &Native{Name: "to_string", impl: func(ctx *Context) Value {
		s, err := ctx.GetVariable("input").ToString()
		if err != nil {
			return fail(err)
		}
		return Str(s)
	}})

	register(ctx, &Native{Name: "to_int", impl: func(ctx *Context) Value {
		n, err := ctx.GetVariable("input").ToInt()
		if err != nil {
			return fail(err)
		}
		return Int(n)
	}})

	register(ctx, &Native{Name: "to_number", impl: func(ctx *Context) Value {
		f, err := ctx.GetVariable("input").ToDouble()
		if err != nil {
			return fail(err)
		}
		return Double(f)
	}})

	register(ctx, &Native{Name: "to_boolean", impl: func(ctx *Context) Value {
		b, err := ctx.GetVariable("input").ToBool()
		if err != nil {
			return fail(err)
		}
		return Bool(b)
	}})

	register(ctx, &Native{Name: "to_color", impl: func(ctx *Context) Value {
		c, err := ctx.GetVariable("input").ToColor()
		if err != nil {
			return fail(err)
		}
		return ColorV(c)
	}})

	register(ctx, &Native{Name: "to_date", impl: func(ctx *Context) Value {
		t, err := ctx.GetVariable("input").ToDateTime()
		if err != nil {
			return fail(err)
		}
		return DateTime(t)
	}})

	register(ctx, &Native{Name: "type_name", impl: func(ctx *Context) Value {
		return Str(ctx.GetVariable("input").TypeName())
	}})

	register(ctx, &Native{Name: "to_code", impl: func(ctx *Context) Value {
		return Str(ToCode(ctx.GetVariable("input")))
	}})

	register(ctx, &Native{Name: "length", impl: func(ctx *Context) Value {
		v := ctx.GetVariable("input")
		switch v.Tag {
		case STString:
			return Int(int64(len([]rune(v.Data.(string)))))
		case STError:
			return v
		default:
			return Int(int64(v.ItemCount()))
		}
	}})

	// position(list, of: x) — index of the first element equal to x, or -1.
	register(ctx, &Native{Name: "position", impl: func(ctx *Context) Value {
		list := ctx.GetVariable("input")
		want := ctx.GetVariable("of")
		it := list.MakeIterator()
		if it.Tag == STError {
			return it
		}
		var idx int
		for {
			item, ok := it.Next(nil, &idx)
			if !ok {
				return Int(-1)
			}
			eq, err := Equal(item, want)
			if err != nil {
				return fail(err)
			}
			if eq {
				return Int(int64(idx))
			}
		}
	}})

	// contains(thing, find: x) — substring test for strings, element test
	// for collections.
	register(ctx, &Native{Name: "contains", impl: func(ctx *Context) Value {
		v := ctx.GetVariable("input")
		find := ctx.GetVariable("find")
		if v.Tag == STString {
			sub, err := find.ToString()
			if err != nil {
				return fail(err)
			}
			return Bool(strings.Contains(v.Data.(string), sub))
		}
		it := v.MakeIterator()
		if it.Tag == STError {
			return it
		}
		for {
			item, ok := it.Next(nil, nil)
			if !ok {
				return Bool(false)
			}
			eq, err := Equal(item, find)
			if err != nil {
				return fail(err)
			}
			if eq {
				return Bool(true)
			}
		}
	}})

	// sort_list sorts by each element's canonical string form (the same
	// form equality compares by), stably.
	register(ctx, &Native{Name: "sort_list", impl: func(ctx *Context) Value {
		list := ctx.GetVariable("input")
		items, errV := drain(list)
		if errV.Tag == STError {
			return errV
		}
		keys := make([]string, len(items))
		for i, v := range items {
			s, err := v.ToString()
			if err != nil {
				return fail(err)
			}
			keys[i] = s
		}
		order := make([]int, len(items))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool { return keys[order[a]] < keys[order[b]] })
		out := NewCollection()
		for _, i := range order {
			out.Append(items[i])
		}
		return out.Value()
	}})

	// filter_list(list, filter: fun) keeps elements the predicate accepts.
	register(ctx, &Native{Name: "filter_list", impl: func(ctx *Context) Value {
		list := ctx.GetVariable("input")
		pred := ctx.GetVariable("filter")
		if pred.Tag != STFunction {
			return wrongArgument("filter_list", "filter", pred)
		}
		it := list.MakeIterator()
		if it.Tag == STError {
			return it
		}
		out := NewCollection()
		for {
			item, ok := it.Next(nil, nil)
			if !ok {
				return out.Value()
			}
			keep, err := callFunction(ctx, pred, "input", item).ToBool()
			if err != nil {
				return fail(err)
			}
			if keep {
				out.Append(item)
			}
		}
	}})

	register(ctx, &Native{Name: "reverse_list", impl: func(ctx *Context) Value {
		items, errV := drain(ctx.GetVariable("input"))
		if errV.Tag == STError {
			return errV
		}
		out := NewCollection()
		for i := len(items) - 1; i >= 0; i-- {
			out.Append(items[i])
		}
		return out.Value()
	}})

	// min/max reduce a collection; abs takes a number.
	register(ctx, &Native{Name: "min", impl: func(ctx *Context) Value {
		return extremum(ctx.GetVariable("input"), func(a, b float64) bool { return a < b })
	}})
	register(ctx, &Native{Name: "max", impl: func(ctx *Context) Value {
		return extremum(ctx.GetVariable("input"), func(a, b float64) bool { return a > b })
	}})
	register(ctx, &Native{Name: "abs", impl: func(ctx *Context) Value {
		v := ctx.GetVariable("input")
		if v.Tag == STInt {
			n := v.Data.(int64)
			if n < 0 {
				n = -n
			}
			return Int(n)
		}
		f, err := v.ToDouble()
		if err != nil {
			return fail(err)
		}
		if f < 0 {
			f = -f
		}
		return Double(f)
	}})
}

// drain realizes an iterable into a slice.
func drain(v Value) ([]Value, Value) {
	it := v.MakeIterator()
	if it.Tag == STError {
		return nil, it
	}
	var items []Value
	for {
		item, ok := it.Next(nil, nil)
		if !ok {
			return items, Nil
		}
		items = append(items, item)
	}
}

// extremum picks the element of a collection whose numeric reading wins
// under better; the original element (not its converted form) is returned.
func extremum(list Value, better func(a, b float64) bool) Value {
	items, errV := drain(list)
	if errV.Tag == STError {
		return errV
	}
	if len(items) == 0 {
		return Nil
	}
	best := items[0]
	bestF, err := best.ToDouble()
	if err != nil {
		return fail(err)
	}
	for _, v := range items[1:] {
		f, err := v.ToDouble()
		if err != nil {
			return fail(err)
		}
		if better(f, bestF) {
			best, bestF = v, f
		}
	}
	return best
}
