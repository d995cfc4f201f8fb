// value.go — the Stencil runtime value model.
//
// OVERVIEW
// --------
// Every quantity a Stencil script touches is a Value: a tagged carrier over a
// closed set of variants (nil, int, bool, double, string, color, image,
// function, object, collection, regex, datetime, iterator, dummy, error).
// The tag determines which shape Value.Data holds; payloads are shared by
// pointer, and values are immutable once constructed — a "mutation" builds a
// new Value, so a value may safely be referenced from any number of scopes and
// collections at once.
//
// Three protocols live on Value:
//
//   - Conversions (ToString, ToDouble, ToInt, ToBool, ToColor, ToDateTime,
//     ToImage): total over every variant. Variants with no meaningful reading
//     of a conversion return a conversion error; nil has a non-failing default
//     for all of them. Converting an error value surfaces its deferred failure.
//   - Member/index access (GetMember, GetIndex, ItemCount, MakeIterator):
//     misses are recoverable — they produce a lazy error value, never a hard
//     failure.
//   - Evaluation (Eval, Dependencies): function-typed values are invocable;
//     non-functions evaluate to themselves. Dependencies is the abstract twin
//     of Eval used by the dependency walk (see dependency.go).
//
// Error values (STError) are first-class: constructing one never fails, and
// the wrapped failure surfaces only when the value is converted, compared, or
// called. That lets a collection carry erroneous elements that cost nothing
// unless a consumer actually forces them.
package stencil

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ScriptType enumerates all runtime kinds a Value may hold.
type ScriptType int

const (
	STNil ScriptType = iota
	STInt
	STBool
	STDouble
	STString
	STColor
	STImage
	STFunction
	STObject
	STCollection
	STRegex
	STDateTime
	STIterator
	STDummy
	STError
)

// Value is the universal runtime carrier used by the evaluator.
//
// Fields:
//   - Tag  — discriminant indicating which variant is active.
//   - Data — payload appropriate for Tag:
//     STNil, STDummy: nil
//     STInt:          int64
//     STBool:         bool
//     STDouble:       float64
//     STString:       string
//     STColor:        Color
//     STImage:        GeneratedImage
//     STFunction:     callable (*Native, *ScriptFun, *Script, *ScriptClosure)
//     STObject:       *Object
//     STCollection:   *Collection
//     STRegex:        *regexp.Regexp
//     STDateTime:     time.Time
//     STIterator:     ScriptIterator
//     STError:        *ScriptError
type Value struct {
	Tag  ScriptType
	Data any
}

// Nil is the singleton nil Value.
var Nil = Value{Tag: STNil}

// Dummy is the absorbing placeholder produced by the dependency walk.
// Member access, indexing, calling and converting a dummy all stay dummy
// (or a harmless zero), so abstract evaluation never faults.
var Dummy = Value{Tag: STDummy}

// Primitive constructors.
func Int(n int64) Value          { return Value{Tag: STInt, Data: n} }
func Bool(b bool) Value          { return Value{Tag: STBool, Data: b} }
func Double(f float64) Value     { return Value{Tag: STDouble, Data: f} }
func Str(s string) Value         { return Value{Tag: STString, Data: s} }
func ColorV(c Color) Value       { return Value{Tag: STColor, Data: c} }
func DateTime(t time.Time) Value { return Value{Tag: STDateTime, Data: t} }

// Regex wraps a compiled pattern as a value. Regex values are created by the
// string builtins and by closure simplification (see closure.go).
func Regex(re *regexp.Regexp) Value { return Value{Tag: STRegex, Data: re} }

// Image wraps a lazy image generator as a value.
func Image(img GeneratedImage) Value { return Value{Tag: STImage, Data: img} }

// Type returns the variant tag.
func (v Value) Type() ScriptType { return v.Tag }

// TypeName is the stable human-readable label used in error messages and by
// the persistence layer.
func (v Value) TypeName() string {
	switch v.Tag {
	case STNil:
		return "nil"
	case STInt:
		return "integer"
	case STBool:
		return "boolean"
	case STDouble:
		return "double"
	case STString:
		return "string"
	case STColor:
		return "color"
	case STImage:
		return "image"
	case STFunction:
		if f, ok := v.Data.(*Native); ok {
			return "function '" + f.Name + "'"
		}
		return "function"
	case STObject:
		return v.Data.(*Object).Host.TypeName()
	case STCollection:
		return "collection"
	case STRegex:
		return "regular expression"
	case STDateTime:
		return "date/time"
	case STIterator:
		return "iterator"
	case STDummy:
		return "dummy"
	case STError:
		return "error"
	default:
		return "unknown"
	}
}

// String renders a short debug representation; user-facing rendering is
// ToCode (code.go) and ToString.
func (v Value) String() string {
	switch v.Tag {
	case STNil:
		return "nil"
	case STInt:
		return strconv.FormatInt(v.Data.(int64), 10)
	case STBool:
		return strconv.FormatBool(v.Data.(bool))
	case STDouble:
		return strconv.FormatFloat(v.Data.(float64), 'g', -1, 64)
	case STString:
		return fmt.Sprintf("%q", v.Data.(string))
	case STCollection:
		return fmt.Sprintf("<collection len=%d>", v.ItemCount())
	case STError:
		return fmt.Sprintf("<error: %s>", v.Data.(*ScriptError).Msg)
	default:
		return "<" + v.TypeName() + ">"
	}
}

/* ---------- conversions ---------- */

// ToString converts to the value's canonical string form.
// Defaults: nil → "", dummy → "".
func (v Value) ToString() (string, error) {
	switch v.Tag {
	case STNil, STDummy:
		return "", nil
	case STInt:
		return strconv.FormatInt(v.Data.(int64), 10), nil
	case STBool:
		if v.Data.(bool) {
			return "true", nil
		}
		return "false", nil
	case STDouble:
		return formatDouble(v.Data.(float64)), nil
	case STString:
		return v.Data.(string), nil
	case STColor:
		return v.Data.(Color).String(), nil
	case STDateTime:
		return v.Data.(time.Time).Format(dateTimeLayout), nil
	case STError:
		return "", v.Data.(*ScriptError)
	default:
		return "", v.conversionError("string")
	}
}

// ToDouble converts to a double. Defaults: nil/dummy → 0.
func (v Value) ToDouble() (float64, error) {
	switch v.Tag {
	case STNil, STDummy:
		return 0, nil
	case STInt:
		return float64(v.Data.(int64)), nil
	case STDouble:
		return v.Data.(float64), nil
	case STString:
		f, err := strconv.ParseFloat(v.Data.(string), 64)
		if err != nil {
			return 0, &ScriptError{Msg: fmt.Sprintf("can't convert %q to a number", v.Data.(string))}
		}
		return f, nil
	case STError:
		return 0, v.Data.(*ScriptError)
	default:
		return 0, v.conversionError("double")
	}
}

// ToInt converts to an integer. Doubles truncate toward zero.
// Defaults: nil/dummy → 0, booleans → 0/1.
func (v Value) ToInt() (int64, error) {
	switch v.Tag {
	case STNil, STDummy:
		return 0, nil
	case STInt:
		return v.Data.(int64), nil
	case STBool:
		if v.Data.(bool) {
			return 1, nil
		}
		return 0, nil
	case STDouble:
		return int64(v.Data.(float64)), nil
	case STString:
		n, err := strconv.ParseInt(v.Data.(string), 10, 64)
		if err != nil {
			return 0, &ScriptError{Msg: fmt.Sprintf("can't convert %q to an integer", v.Data.(string))}
		}
		return n, nil
	case STError:
		return 0, v.Data.(*ScriptError)
	default:
		return 0, v.conversionError("integer")
	}
}

// ToBool converts to a boolean. Strings accept the original's tolerant flag
// spellings: "true"/"yes" are true, "false"/"no"/"" are false, anything else
// is a conversion error. Numbers do not convert (conditions require booleans).
func (v Value) ToBool() (bool, error) {
	switch v.Tag {
	case STNil, STDummy:
		return false, nil
	case STBool:
		return v.Data.(bool), nil
	case STString:
		switch v.Data.(string) {
		case "true", "yes":
			return true, nil
		case "false", "no", "":
			return false, nil
		}
		return false, &ScriptError{Msg: fmt.Sprintf("can't convert %q to a boolean", v.Data.(string))}
	case STError:
		return false, v.Data.(*ScriptError)
	default:
		return false, v.conversionError("boolean")
	}
}

// ToColor converts to a color. Strings parse "#rrggbb(aa)" and a small named
// table. Default: nil/dummy → fully transparent.
func (v Value) ToColor() (Color, error) {
	switch v.Tag {
	case STNil, STDummy:
		return Color{}, nil
	case STColor:
		return v.Data.(Color), nil
	case STString:
		c, ok := ParseColor(v.Data.(string))
		if !ok {
			return Color{}, &ScriptError{Msg: fmt.Sprintf("can't convert %q to a color", v.Data.(string))}
		}
		return c, nil
	case STError:
		return Color{}, v.Data.(*ScriptError)
	default:
		return Color{}, v.conversionError("color")
	}
}

// ToDateTime converts to a date/time. Strings parse "2006-01-02 15:04:05"
// and the date-only prefix. Default: nil/dummy → the zero time.
func (v Value) ToDateTime() (time.Time, error) {
	switch v.Tag {
	case STNil, STDummy:
		return time.Time{}, nil
	case STDateTime:
		return v.Data.(time.Time), nil
	case STString:
		t, err := parseDateTime(v.Data.(string))
		if err != nil {
			return time.Time{}, &ScriptError{Msg: fmt.Sprintf("can't convert %q to a date", v.Data.(string))}
		}
		return t, nil
	case STError:
		return time.Time{}, v.Data.(*ScriptError)
	default:
		return time.Time{}, v.conversionError("date")
	}
}

// ToImage converts to a lazy image. Colors yield a solid fill; nil and dummy
// yield a blank (fully transparent) image.
func (v Value) ToImage() (GeneratedImage, error) {
	switch v.Tag {
	case STNil, STDummy:
		return BlankImage{}, nil
	case STImage:
		return v.Data.(GeneratedImage), nil
	case STColor:
		return SolidImage{Color: v.Data.(Color)}, nil
	case STError:
		return nil, v.Data.(*ScriptError)
	default:
		return nil, v.conversionError("image")
	}
}

func (v Value) conversionError(want string) error {
	return &ScriptError{Msg: fmt.Sprintf("can't convert %s to %s", v.TypeName(), want)}
}

const dateTimeLayout = "2006-01-02 15:04:05"

func parseDateTime(s string) (time.Time, error) {
	if t, err := time.Parse(dateTimeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// formatDouble renders the shortest round-trippable form. A double with no
// fractional part prints without a decimal point; under Equal that is
// indistinguishable from the int reading, which is the intended cross-kind
// string bias (compare.go).
func formatDouble(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

/* ---------- member / index / iteration ---------- */

// GetMember fetches a named member. A miss is recoverable: it yields a lazy
// error value, never a hard failure.
func (v Value) GetMember(name string) Value {
	switch v.Tag {
	case STCollection:
		return v.Data.(*Collection).Member(name)
	case STObject:
		if m, ok := v.Data.(*Object).Host.GetMember(name); ok {
			return m
		}
		return NewErrorf("%s has no member '%s'", v.TypeName(), name)
	case STDummy:
		return Dummy
	case STError:
		return v
	default:
		return NewErrorf("%s has no member '%s'", v.TypeName(), name)
	}
}

// GetIndex fetches the item at a zero-based position. Out-of-range is a
// recoverable miss, like GetMember.
func (v Value) GetIndex(index int) Value {
	switch v.Tag {
	case STCollection:
		return v.Data.(*Collection).Index(index)
	case STDummy:
		return Dummy
	case STError:
		return v
	default:
		return NewErrorf("%s can't be indexed", v.TypeName())
	}
}

// ItemCount reports the number of items in a collection-like value. It is 0
// for non-collections and never consumes an iterator.
func (v Value) ItemCount() int {
	if v.Tag == STCollection {
		return v.Data.(*Collection).Len()
	}
	return 0
}

// MakeIterator returns a lazy, forward-only, non-restartable iterator over a
// collection-like value. Iterating nil yields an empty sequence.
func (v Value) MakeIterator() Value {
	switch v.Tag {
	case STCollection:
		return iteratorValue(v.Data.(*Collection).iterate())
	case STIterator:
		return v
	case STNil:
		return iteratorValue(emptyIterator{})
	case STDummy:
		return Dummy
	case STError:
		return v
	default:
		return NewErrorf("can't iterate over %s", v.TypeName())
	}
}

// Next advances an iterator value. It returns (item, true) until exhaustion,
// then (_, false). keyOut/indexOut, when non-nil, receive the item's key or
// position if the underlying collection is keyed/indexed.
func (v Value) Next(keyOut *Value, indexOut *int) (Value, bool) {
	if v.Tag != STIterator {
		return Nil, false
	}
	return v.Data.(ScriptIterator).Next(keyOut, indexOut)
}

/* ---------- evaluation ---------- */

// Eval evaluates this value in the given context. Function-typed values are
// invoked: their arguments are read by name from the context's scopes (the
// call protocol binds them before invoking with openScope=false). All other
// values evaluate to themselves.
//
// openScope controls whether a fresh lexical scope is pushed around the body;
// callers that already manage the scope pass false.
func (v Value) Eval(ctx *Context, openScope bool) Value {
	if v.Tag != STFunction {
		return v
	}
	return v.Data.(callable).eval(ctx, openScope)
}

// Dependencies is the abstract twin of Eval: instead of computing a result it
// marks, via dep, everything the call would read, and returns an abstract
// stand-in shaped like the real result. Non-functions mark themselves and
// return themselves.
func (v Value) Dependencies(ctx *Context, dep Dependency) Value {
	if v.Tag == STFunction {
		return v.Data.(callable).dependencies(ctx, dep)
	}
	v.DependencyThis(dep)
	return v
}

// callable is the contract of STFunction payloads.
type callable interface {
	eval(ctx *Context, openScope bool) Value
	dependencies(ctx *Context, dep Dependency) Value
	code() string
}
