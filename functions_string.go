// functions_string.go — text builtins. The pattern-taking functions accept
// either a string (compiled per call) or a precompiled regex value; attaching
// the pattern with `@(match: "...")` makes closure simplification compile it
// once (closure.go).
package stencil

import (
	"fmt"
	"strings"
	"unicode"
)

func registerStringFunctions(ctx *Context) {
	register(ctx, &Native{Name: "to_upper", impl: func(ctx *Context) Value {
		s, err := ctx.GetVariable("input").ToString()
		if err != nil {
			return fail(err)
		}
		return Str(strings.ToUpper(s))
	}})

	register(ctx, &Native{Name: "to_lower", impl: func(ctx *Context) Value {
		s, err := ctx.GetVariable("input").ToString()
		if err != nil {
			return fail(err)
		}
		return Str(strings.ToLower(s))
	}})

	register(ctx, &Native{Name: "to_title", impl: func(ctx *Context) Value {
		s, err := ctx.GetVariable("input").ToString()
		if err != nil {
			return fail(err)
		}
		return Str(titleCase(s))
	}})

	register(ctx, &Native{Name: "trim", impl: func(ctx *Context) Value {
		s, err := ctx.GetVariable("input").ToString()
		if err != nil {
			return fail(err)
		}
		return Str(strings.TrimSpace(s))
	}})

	// substring(text, begin: i, end: j) — rune positions, clamped; begin
	// defaults to 0 and end to the length.
	register(ctx, &Native{Name: "substring", impl: func(ctx *Context) Value {
		s, err := ctx.GetVariable("input").ToString()
		if err != nil {
			return fail(err)
		}
		runes := []rune(s)
		begin, end := int64(0), int64(len(runes))
		if v, ok := optArg(ctx, "begin"); ok {
			if begin, err = v.ToInt(); err != nil {
				return fail(err)
			}
		}
		if v, ok := optArg(ctx, "end"); ok {
			if end, err = v.ToInt(); err != nil {
				return fail(err)
			}
		}
		begin = clampIndex(begin, int64(len(runes)))
		end = clampIndex(end, int64(len(runes)))
		if begin > end {
			return Str("")
		}
		return Str(string(runes[begin:end]))
	}})

	register(ctx, &Native{Name: "split_text", regexParams: []string{"match"}, impl: func(ctx *Context) Value {
		s, err := ctx.GetVariable("input").ToString()
		if err != nil {
			return fail(err)
		}
		re, errV := argRegex(ctx, "match")
		if errV.Tag == STError {
			return errV
		}
		out := NewCollection()
		for _, piece := range re.Split(s, -1) {
			out.Append(Str(piece))
		}
		return out.Value()
	}})

	// replace(text, match: pattern, replace: text-or-function). A function
	// replacement is called once per match with the matched text as input.
	register(ctx, &Native{Name: "replace", regexParams: []string{"match"}, impl: func(ctx *Context) Value {
		s, err := ctx.GetVariable("input").ToString()
		if err != nil {
			return fail(err)
		}
		re, errV := argRegex(ctx, "match")
		if errV.Tag == STError {
			return errV
		}
		rep := ctx.GetVariable("replace")
		if rep.Tag == STFunction {
			var callErr error
			out := re.ReplaceAllStringFunc(s, func(m string) string {
				r, err := callFunction(ctx, rep, "input", Str(m)).ToString()
				if err != nil && callErr == nil {
					callErr = err
				}
				return r
			})
			if callErr != nil {
				return fail(callErr)
			}
			return Str(out)
		}
		repS, err := rep.ToString()
		if err != nil {
			return fail(err)
		}
		return Str(re.ReplaceAllString(s, repS))
	}})

	register(ctx, &Native{Name: "match", regexParams: []string{"match"}, impl: func(ctx *Context) Value {
		s, err := ctx.GetVariable("input").ToString()
		if err != nil {
			return fail(err)
		}
		re, errV := argRegex(ctx, "match")
		if errV.Tag == STError {
			return errV
		}
		return Bool(re.MatchString(s))
	}})

	// filter_text keeps only the matching parts, concatenated.
	register(ctx, &Native{Name: "filter_text", regexParams: []string{"match"}, impl: func(ctx *Context) Value {
		s, err := ctx.GetVariable("input").ToString()
		if err != nil {
			return fail(err)
		}
		re, errV := argRegex(ctx, "match")
		if errV.Tag == STError {
			return errV
		}
		return Str(strings.Join(re.FindAllString(s, -1), ""))
	}})

	// format(value, format: "%03d") — one printf-style verb; the value is
	// converted to match the verb's kind.
	register(ctx, &Native{Name: "format", impl: func(ctx *Context) Value {
		v := ctx.GetVariable("input")
		f, err := ctx.GetVariable("format").ToString()
		if err != nil {
			return fail(err)
		}
		if f == "" {
			s, err := v.ToString()
			if err != nil {
				return fail(err)
			}
			return Str(s)
		}
		switch f[len(f)-1] {
		case 'd', 'o', 'x', 'X', 'b':
			n, err := v.ToInt()
			if err != nil {
				return fail(err)
			}
			return Str(fmt.Sprintf(f, n))
		case 'f', 'e', 'E', 'g', 'G':
			x, err := v.ToDouble()
			if err != nil {
				return fail(err)
			}
			return Str(fmt.Sprintf(f, x))
		case 's':
			s, err := v.ToString()
			if err != nil {
				return fail(err)
			}
			return Str(fmt.Sprintf(f, s))
		default:
			return NewErrorf("format: unsupported format string %q", f)
		}
	}})
}

func clampIndex(i, n int64) int64 {
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

func titleCase(s string) string {
	var b strings.Builder
	startOfWord := true
	for _, r := range s {
		if startOfWord {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(r)
		}
		startOfWord = unicode.IsSpace(r)
	}
	return b.String()
}
