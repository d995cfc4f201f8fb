// code.go — rendering values and ASTs back to source text.
//
// ToCode produces a re-parseable rendering of a value: for int, bool, double,
// string, and color, parsing the output and evaluating it yields a value
// Equal to the original. Collection, closure, and function rendering reuse
// the expression printer so the interactive shell shows results in the same
// grammar it accepts.
package stencil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ToCode returns script code that evaluates to this value (round-tripping for
// the primitive kinds; best-effort descriptive text for opaque kinds).
func ToCode(v Value) string {
	switch v.Tag {
	case STNil:
		return "nil"
	case STInt:
		return strconv.FormatInt(v.Data.(int64), 10)
	case STBool:
		return strconv.FormatBool(v.Data.(bool))
	case STDouble:
		return formatDouble(v.Data.(float64))
	case STString:
		return quoteString(v.Data.(string))
	case STColor:
		return v.Data.(Color).Code()
	case STDateTime:
		return fmt.Sprintf("to_date(%s)", quoteString(v.Data.(time.Time).Format(dateTimeLayout)))
	case STCollection:
		c := v.Data.(*Collection)
		var b strings.Builder
		b.WriteByte('[')
		for i, e := range c.entries {
			if i > 0 {
				b.WriteString(", ")
			}
			if e.key != "" {
				b.WriteString(e.key)
				b.WriteString(": ")
			}
			b.WriteString(ToCode(e.value))
		}
		b.WriteByte(']')
		return b.String()
	case STFunction:
		return v.Data.(callable).code()
	case STRegex:
		return quoteString(v.Data.(*regexp.Regexp).String())
	case STError:
		return fmt.Sprintf("error(%s)", quoteString(v.Data.(*ScriptError).Msg))
	default:
		return "<" + v.TypeName() + ">"
	}
}

// quoteString renders a double-quoted literal with the escapes the lexer
// accepts.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// FormatNode renders an AST node as single-line source text.
func FormatNode(n S) string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

func writeNode(b *strings.Builder, n S) {
	switch tag(n) {
	case "block":
		for i, k := range n[1:] {
			if i > 0 {
				b.WriteString("; ")
			}
			writeNode(b, k.(S))
		}
	case "nil":
		b.WriteString("nil")
	case "int":
		b.WriteString(strconv.FormatInt(n[1].(int64), 10))
	case "double":
		b.WriteString(formatDouble(n[1].(float64)))
	case "str":
		b.WriteString(quoteString(n[1].(string)))
	case "bool":
		b.WriteString(strconv.FormatBool(n[1].(bool)))
	case "id":
		b.WriteString(n[1].(string))
	case "declare":
		b.WriteString(n[1].(string))
		b.WriteString(" := ")
		writeNode(b, n[2].(S))
	case "binop":
		writeOperand(b, n[2].(S))
		b.WriteByte(' ')
		b.WriteString(n[1].(string))
		b.WriteByte(' ')
		writeOperand(b, n[3].(S))
	case "unop":
		op := n[1].(string)
		b.WriteString(op)
		if op == "not" {
			b.WriteByte(' ')
		}
		writeOperand(b, n[2].(S))
	case "get":
		writeOperand(b, n[1].(S))
		b.WriteByte('.')
		b.WriteString(n[2].(string))
	case "idx":
		writeOperand(b, n[1].(S))
		b.WriteByte('[')
		writeNode(b, n[2].(S))
		b.WriteByte(']')
	case "call", "bind":
		writeOperand(b, n[1].(S))
		if tag(n) == "bind" {
			b.WriteByte('@')
		}
		b.WriteByte('(')
		for i, a := range n[2:] {
			if i > 0 {
				b.WriteString(", ")
			}
			arg := a.(S)
			name := arg[1].(string)
			if !(i == 0 && name == "input") {
				b.WriteString(name)
				b.WriteString(": ")
			}
			writeNode(b, arg[2].(S))
		}
		b.WriteByte(')')
	case "array":
		b.WriteByte('[')
		for i, el := range n[1:] {
			if i > 0 {
				b.WriteString(", ")
			}
			e := el.(S)
			if tag(e) == "pair" {
				b.WriteString(e[1].(string))
				b.WriteString(": ")
				writeNode(b, e[2].(S))
			} else {
				writeNode(b, e)
			}
		}
		b.WriteByte(']')
	case "fun":
		b.WriteString("{ ")
		writeNode(b, n[1].(S))
		b.WriteString(" }")
	case "if":
		b.WriteString("if ")
		writeNode(b, n[1].(S))
		b.WriteString(" then ")
		writeNode(b, n[2].(S))
		if tag(n[3].(S)) != "nil" {
			b.WriteString(" else ")
			writeNode(b, n[3].(S))
		}
	case "foreach":
		b.WriteString("for each ")
		b.WriteString(n[1].(string))
		b.WriteString(" in ")
		writeNode(b, n[2].(S))
		b.WriteString(" do ")
		writeNode(b, n[3].(S))
	case "forrange":
		b.WriteString("for ")
		b.WriteString(n[1].(string))
		b.WriteString(" from ")
		writeNode(b, n[2].(S))
		b.WriteString(" to ")
		writeNode(b, n[3].(S))
		b.WriteString(" do ")
		writeNode(b, n[4].(S))
	default:
		fmt.Fprintf(b, "<%s>", tag(n))
	}
}

// writeOperand parenthesizes compound subexpressions; exact minimal
// parenthesization is not worth the precedence bookkeeping here.
func writeOperand(b *strings.Builder, n S) {
	switch tag(n) {
	case "binop", "unop", "declare", "if", "foreach", "forrange":
		b.WriteByte('(')
		writeNode(b, n)
		b.WriteByte(')')
	default:
		writeNode(b, n)
	}
}
