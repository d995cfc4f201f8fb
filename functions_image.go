// functions_image.go — color, symbol, and filter builtins.
package stencil

func registerImageFunctions(ctx *Context) {
	register(ctx, &Native{Name: "rgb", impl: func(ctx *Context) Value {
		r, g, b, errV := chanArgs(ctx)
		if errV.Tag == STError {
			return errV
		}
		return ColorV(RGB(r, g, b))
	}})

	register(ctx, &Native{Name: "rgba", impl: func(ctx *Context) Value {
		r, g, b, errV := chanArgs(ctx)
		if errV.Tag == STError {
			return errV
		}
		a, errV := chanArg(ctx, "a")
		if errV.Tag == STError {
			return errV
		}
		return ColorV(Color{R: r, G: g, B: b, A: a})
	}})

	// solid_fill(fill: color, border: color) — a one-color filter.
	register(ctx, &Native{Name: "solid_fill", impl: func(ctx *Context) Value {
		fill, err := ctx.GetVariable("fill").ToColor()
		if err != nil {
			return fail(err)
		}
		border, err := ctx.GetVariable("border").ToColor()
		if err != nil {
			return fail(err)
		}
		return FilterValue(NewSolidFill(fill, border))
	}})

	// linear_gradient(fill_1:, border_1:, fill_2:, border_2:,
	//                 from_x:, from_y:, to_x:, to_y:)
	// Axis coordinates default to the unit square's diagonal.
	register(ctx, &Native{Name: "linear_gradient", impl: func(ctx *Context) Value {
		colors, errV := gradientArgs(ctx)
		if errV.Tag == STError {
			return errV
		}
		x1, errV := coordArg(ctx, "from_x", 0)
		if errV.Tag == STError {
			return errV
		}
		y1, errV := coordArg(ctx, "from_y", 0)
		if errV.Tag == STError {
			return errV
		}
		x2, errV := coordArg(ctx, "to_x", 1)
		if errV.Tag == STError {
			return errV
		}
		y2, errV := coordArg(ctx, "to_y", 1)
		if errV.Tag == STError {
			return errV
		}
		return FilterValue(NewLinearGradient(colors, x1, y1, x2, y2))
	}})

	register(ctx, &Native{Name: "radial_gradient", impl: func(ctx *Context) Value {
		colors, errV := gradientArgs(ctx)
		if errV.Tag == STError {
			return errV
		}
		return FilterValue(NewRadialGradient(colors))
	}})

	register(ctx, &Native{Name: "circle_symbol", impl: func(ctx *Context) Value {
		return SymbolValue(CircleSymbol{})
	}})

	// render_symbol(symbol, filter: f) — a lazy image; rasterization happens
	// when a host forces it with a size.
	register(ctx, &Native{Name: "render_symbol", impl: func(ctx *Context) Value {
		symV := ctx.GetVariable("input")
		sym, ok := symbolFromValue(symV)
		if !ok {
			return wrongArgument("render_symbol", "input", symV)
		}
		fltV := ctx.GetVariable("filter")
		flt, ok := filterFromValue(fltV)
		if !ok {
			return wrongArgument("render_symbol", "filter", fltV)
		}
		return Image(RenderedSymbol{Symbol: sym, Filter: flt})
	}, depImpl: func(ctx *Context, dep Dependency) Value {
		// Rasterization reads both objects in full: a change to either
		// invalidates the rendered image.
		ctx.GetVariable("input").DependencyThis(dep)
		ctx.GetVariable("filter").DependencyThis(dep)
		return Dummy
	}})
}

/* ---------- script wrappers ---------- */

// filterHost exposes a SymbolFilter to scripts as an object value.
type filterHost struct {
	F SymbolFilter
}

func (h *filterHost) TypeName() string { return "symbol filter" }

func (h *filterHost) GetMember(name string) (Value, bool) {
	if name == "fill_type" {
		return Str(h.F.FillType()), true
	}
	return Nil, false
}

// FilterValue wraps a filter as a script value.
func FilterValue(f SymbolFilter) Value { return ObjectV(&filterHost{F: f}) }

func filterFromValue(v Value) (SymbolFilter, bool) {
	if v.Tag != STObject {
		return nil, false
	}
	h, ok := v.Data.(*Object).Host.(*filterHost)
	if !ok {
		return nil, false
	}
	return h.F, true
}

// symbolHost exposes a Symbol to scripts as an object value.
type symbolHost struct {
	S Symbol
}

func (h *symbolHost) TypeName() string { return "symbol" }

func (h *symbolHost) GetMember(string) (Value, bool) { return Nil, false }

// SymbolValue wraps a symbol shape as a script value.
func SymbolValue(s Symbol) Value { return ObjectV(&symbolHost{S: s}) }

func symbolFromValue(v Value) (Symbol, bool) {
	if v.Tag != STObject {
		return nil, false
	}
	h, ok := v.Data.(*Object).Host.(*symbolHost)
	if !ok {
		return nil, false
	}
	return h.S, true
}

/* ---------- argument helpers ---------- */

func chanArg(ctx *Context, name string) (uint8, Value) {
	n, err := ctx.GetVariable(name).ToInt()
	if err != nil {
		return 0, fail(err)
	}
	if n < 0 {
		n = 0
	}
	if n > 255 {
		n = 255
	}
	return uint8(n), Nil
}

func chanArgs(ctx *Context) (r, g, b uint8, errV Value) {
	if r, errV = chanArg(ctx, "r"); errV.Tag == STError {
		return
	}
	if g, errV = chanArg(ctx, "g"); errV.Tag == STError {
		return
	}
	b, errV = chanArg(ctx, "b")
	return
}

func coordArg(ctx *Context, name string, def float64) (float64, Value) {
	v, ok := optArg(ctx, name)
	if !ok {
		return def, Nil
	}
	f, err := v.ToDouble()
	if err != nil {
		return 0, fail(err)
	}
	return f, Nil
}

func gradientArgs(ctx *Context) (gradientColors, Value) {
	var g gradientColors
	for _, slot := range []struct {
		name string
		dst  *Color
	}{
		{"fill_1", &g.Fill1},
		{"border_1", &g.Border1},
		{"fill_2", &g.Fill2},
		{"border_2", &g.Border2},
	} {
		c, err := ctx.GetVariable(slot.name).ToColor()
		if err != nil {
			return g, fail(err)
		}
		*slot.dst = c
	}
	return g, Nil
}
