// errors.go — script errors, lazy error values, and caret-snippet rendering.
//
// Stencil separates three failure families:
//
//   - Parse errors are collected into a list and never thrown; PrettyParseError
//     renders one as a Python-style snippet with a caret under the offending
//     column (the shape the interactive shell prints).
//   - Evaluation errors (undefined variable, bad operand type, missing member)
//     become lazy STError values via NewError/NewErrorf. Building one is free;
//     the wrapped failure surfaces only when the value is converted, compared,
//     or called, so erroneous elements inside a collection never abort
//     unrelated computation unless something forces them.
//   - Scope-discipline violations are programmer errors in the evaluator's own
//     use of Context and panic (context.go); they are not reachable from
//     script input.
package stencil

import (
	"fmt"
	"strings"
)

// ScriptError is the failure wrapped by a lazy error value.
type ScriptError struct {
	Msg string
}

func (e *ScriptError) Error() string { return e.Msg }

// NewError wraps a failure as a lazy error value.
func NewError(msg string) Value {
	return Value{Tag: STError, Data: &ScriptError{Msg: msg}}
}

// NewErrorf is NewError with formatting.
func NewErrorf(format string, args ...any) Value {
	return NewError(fmt.Sprintf(format, args...))
}

// ParseError is one diagnostic from the lexer or parser. Line is 1-based,
// Col is 0-based (rendered 1-based). Incomplete marks errors caused purely by
// running out of input, so an interactive shell can prompt for continuation
// lines instead of reporting a failure.
type ParseError struct {
	Msg        string
	Line       int
	Col        int
	Incomplete bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Col+1, e.Msg)
}

// IsIncomplete reports whether a parse failed only because the input ended
// too early (every collected error is an unexpected-end-of-input error).
func IsIncomplete(errs []ParseError) bool {
	if len(errs) == 0 {
		return false
	}
	for _, e := range errs {
		if !e.Incomplete {
			return false
		}
	}
	return true
}

// PrettyParseError renders a parse error as a caret snippet:
//
//	parse error in <console> at 2:14: expected ')'
//
//	   1 | x := solid_fill(
//	   2 |   fill: rgb(0,0
//	     |              ^
//
// with up to one line of context before and after. Coordinates are clamped so
// short or empty sources render safely.
func PrettyParseError(src, srcName string, e ParseError) string {
	return prettySnippet(src, "parse error", srcName, e.Line, e.Col+1, e.Msg)
}

func prettySnippet(src, header, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line > len(lines) {
		line = len(lines)
	}

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
