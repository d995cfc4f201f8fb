// parser.go — Pratt parser for Stencil producing compact S-expressions.
//
// The AST is a tree of S-expressions: []any whose first element is a string
// tag. The full node inventory:
//
//	("block", stmt1, stmt2, ...)            // statement sequence; value of the last
//
// Literals & identifiers:
//
//	("nil")
//	("int",    int64)
//	("double", float64)
//	("str",    string)
//	("bool",   bool)
//	("id",     string)
//
// Operators / binding:
//
//	("declare", name, expr)                 // name := expr
//	("binop", op, lhs, rhs)                 // "+","-","*","/","mod", comparisons, "and","or","xor"
//	("unop",  op, rhs)                      // "-" or "not"
//
// Postfix:
//
//	("get",  obj, name)                     // obj.name
//	("idx",  obj, indexExpr)                // obj[expr]
//	("call", callee, ("arg", name, expr)*)  // f(x, name: e); first unnamed arg binds to "input"
//	("bind", callee, ("arg", name, expr)*)  // f@(name: e) — closure with default arguments
//
// Collections, functions, control:
//
//	("array", elemOrPair*)                  // [e, key: e, ...]; ("pair", key, expr) for keyed
//	("fun", bodyBlock)                      // { body } function literal
//	("if", cond, thenExpr, elseExprOrNil)
//	("foreach", name, iterExpr, bodyExpr)   // for each x in xs do e
//	("forrange", name, fromExpr, toExpr, bodyExpr) // for x from a to b do e
//
// Parsing never throws: errors are collected into a list and the parser
// resynchronizes at the next statement boundary, so one bad line does not
// hide the diagnostics for the rest of the source. Errors caused purely by
// input ending too early are flagged Incomplete, which the interactive shell
// uses to prompt for continuation lines.
package stencil

import "fmt"

// S is the S-expression node type.
type S = []any

// L builds a node.
func L(tag string, parts ...any) S { return append([]any{tag}, parts...) }

func tag(n S) string { return n[0].(string) }

// Parse parses a complete source string. The returned Script is meaningful
// only when the error list is empty.
func Parse(src string) (*Script, []ParseError) {
	lex := NewLexer(src)
	toks, lerr := lex.Scan()
	if lerr != nil {
		return nil, []ParseError{*lerr}
	}
	p := &parser{toks: toks}
	body := p.program()
	return &Script{body: body, Source: src}, p.errs
}

type parser struct {
	toks []Token
	i    int
	errs []ParseError
}

/* ---------- token basics ---------- */

func (p *parser) atEnd() bool { return p.peek().Type == EOF }

func (p *parser) peek() Token {
	if p.i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i]
}

func (p *parser) peekIs(tt TokenType) bool { return p.peek().Type == tt }

func (p *parser) peek2Is(tt TokenType) bool {
	if p.i+1 >= len(p.toks) {
		return false
	}
	return p.toks[p.i+1].Type == tt
}

func (p *parser) prev() Token { return p.toks[p.i-1] }

func (p *parser) match(tt ...TokenType) bool {
	if p.atEnd() {
		return false
	}
	for _, t := range tt {
		if p.peek().Type == t {
			p.i++
			return true
		}
	}
	return false
}

// fail records a diagnostic at the current token and aborts the statement via
// panic; program() recovers and resynchronizes.
func (p *parser) fail(msg string) {
	g := p.peek()
	e := ParseError{Msg: msg, Line: g.Line, Col: g.Col, Incomplete: g.Type == EOF}
	p.errs = append(p.errs, e)
	panic(parseAbort{})
}

type parseAbort struct{}

func (p *parser) need(tt TokenType, msg string) Token {
	if p.match(tt) {
		return p.prev()
	}
	p.fail(msg)
	return Token{}
}

func (p *parser) skipSemis() {
	for p.match(SEMI) {
	}
}

// matchSkippingSemis consumes tt even when statement-terminating newlines
// precede it ("else" on its own line); nothing is consumed on a non-match.
func (p *parser) matchSkippingSemis(tt TokenType) bool {
	save := p.i
	p.skipSemis()
	if p.match(tt) {
		return true
	}
	p.i = save
	return false
}

// synchronize skips to the next statement boundary after an error.
func (p *parser) synchronize() {
	for !p.atEnd() {
		if p.match(SEMI) {
			return
		}
		p.i++
	}
}

/* ---------- precedence ---------- */

func lbp(t TokenType) (int, bool) {
	switch t {
	case DECLARE:
		return 10, true
	case OR, XOR:
		return 20, true
	case AND:
		return 30, true
	case EQ, NEQ:
		return 40, true
	case LESS, LESS_EQ, GREATER, GREATER_EQ:
		return 50, true
	case PLUS, MINUS:
		return 60, true
	case MULT, DIV, MOD:
		return 70, true
	}
	return 0, false
}

func binopName(t TokenType) string {
	switch t {
	case OR:
		return "or"
	case XOR:
		return "xor"
	case AND:
		return "and"
	case EQ:
		return "=="
	case NEQ:
		return "!="
	case LESS:
		return "<"
	case LESS_EQ:
		return "<="
	case GREATER:
		return ">"
	case GREATER_EQ:
		return ">="
	case PLUS:
		return "+"
	case MINUS:
		return "-"
	case MULT:
		return "*"
	case DIV:
		return "/"
	case MOD:
		return "mod"
	}
	return "?"
}

/* ---------- program / blocks ---------- */

func (p *parser) program() S {
	var items []any
	for {
		p.skipSemis()
		if p.atEnd() {
			break
		}
		e, ok := p.statement()
		if ok {
			items = append(items, e)
		}
	}
	return L("block", items...)
}

// statement parses one expression-statement, recovering from parse errors.
func (p *parser) statement() (node S, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, isAbort := r.(parseAbort); !isAbort {
				panic(r)
			}
			p.synchronize()
			node, ok = nil, false
		}
	}()
	e := p.expr(0)
	if !p.atEnd() && !p.peekIs(SEMI) && !p.peekIs(RCURLY) {
		p.fail(fmt.Sprintf("unexpected %q after expression", p.peek().Lexeme))
	}
	return e, true
}

// blockUntil parses statements until the stop token (consumed by the caller).
func (p *parser) blockUntil(stop TokenType, what string) S {
	var items []any
	for {
		p.skipSemis()
		if p.peekIs(stop) {
			break
		}
		if p.atEnd() {
			p.fail("unexpected end of input in " + what)
		}
		items = append(items, p.expr(0))
		if !p.peekIs(stop) && !p.match(SEMI) {
			p.fail(fmt.Sprintf("unexpected %q in %s", p.peek().Lexeme, what))
		}
	}
	return L("block", items...)
}

/* ---------- expressions ---------- */

func (p *parser) expr(rbp int) S {
	left := p.unary()
	for {
		t := p.peek().Type
		bp, isOp := lbp(t)
		if !isOp || bp <= rbp {
			// Postfix binds tighter than every operator.
			break
		}
		p.i++
		switch t {
		case DECLARE:
			if tag(left) != "id" {
				p.fail("left side of ':=' must be a name")
			}
			// right-associative
			left = L("declare", left[1].(string), p.expr(bp-1))
		default:
			left = L("binop", binopName(t), left, p.expr(bp))
		}
	}
	return left
}

func (p *parser) unary() S {
	if p.match(MINUS) {
		return L("unop", "-", p.unary())
	}
	if p.match(NOT) {
		// 'not' binds looser than comparison: not a == b reads not (a == b)
		return L("unop", "not", p.expr(35))
	}
	return p.postfix(p.primary())
}

func (p *parser) postfix(e S) S {
	for {
		switch {
		case p.match(PERIOD):
			if p.match(ID) {
				e = L("get", e, p.prev().Literal.(string))
			} else if p.match(STRING) {
				e = L("get", e, p.prev().Literal.(string))
			} else {
				p.fail("expected a member name after '.'")
			}
		case p.match(CLSQUARE):
			idx := p.expr(0)
			p.need(RSQUARE, "expected ']'")
			e = L("idx", e, idx)
		case p.match(CLROUND):
			e = p.arguments("call", e)
		case p.match(AT):
			p.need(CLROUND, "expected '(' after '@'")
			e = p.arguments("bind", e)
		default:
			return e
		}
	}
}

// arguments parses a (possibly empty) argument list after '('. The first
// unnamed argument binds to "input"; later arguments must be named.
func (p *parser) arguments(tagName string, callee S) S {
	parts := []any{callee}
	first := true
	p.skipSemis()
	for !p.peekIs(RROUND) {
		if p.atEnd() {
			p.fail("expected ')'")
		}
		var name string
		if p.peekIs(ID) && p.peek2Is(COLON) {
			name = p.peek().Literal.(string)
			p.i += 2
		} else if first {
			name = "input"
		} else {
			p.fail("arguments after the first must be named (name: value)")
		}
		parts = append(parts, L("arg", name, p.expr(0)))
		first = false
		p.skipSemis()
		if !p.match(COMMA) {
			break
		}
		p.skipSemis()
	}
	p.need(RROUND, "expected ')'")
	return L(tagName, parts...)
}

func (p *parser) primary() S {
	switch {
	case p.match(NILTOK):
		return L("nil")
	case p.match(INTEGER):
		return L("int", p.prev().Literal.(int64))
	case p.match(NUMBER):
		return L("double", p.prev().Literal.(float64))
	case p.match(STRING):
		return L("str", p.prev().Literal.(string))
	case p.match(BOOLEAN):
		return L("bool", p.prev().Literal.(bool))
	case p.match(ID):
		return L("id", p.prev().Literal.(string))

	case p.match(LROUND), p.match(CLROUND):
		e := p.expr(0)
		p.need(RROUND, "expected ')'")
		return e

	case p.match(LSQUARE), p.match(CLSQUARE):
		return p.arrayLiteral()

	case p.match(LCURLY):
		body := p.blockUntil(RCURLY, "function body")
		p.need(RCURLY, "expected '}'")
		return L("fun", body)

	case p.match(IF):
		cond := p.expr(0)
		if !p.matchSkippingSemis(THEN) {
			p.fail("expected 'then'")
		}
		thenE := p.expr(0)
		var elseE S = L("nil")
		if p.matchSkippingSemis(ELSE) {
			elseE = p.expr(0)
		}
		return L("if", cond, thenE, elseE)

	case p.match(FOR):
		return p.forExpr()
	}

	p.fail(fmt.Sprintf("unexpected %q", p.peek().Lexeme))
	return nil
}

func (p *parser) arrayLiteral() S {
	var parts []any
	p.skipSemis()
	for !p.peekIs(RSQUARE) {
		if p.atEnd() {
			p.fail("expected ']'")
		}
		if p.peekIs(ID) && p.peek2Is(COLON) {
			key := p.peek().Literal.(string)
			p.i += 2
			parts = append(parts, L("pair", key, p.expr(0)))
		} else {
			parts = append(parts, p.expr(0))
		}
		p.skipSemis()
		if !p.match(COMMA) {
			break
		}
		p.skipSemis()
	}
	p.need(RSQUARE, "expected ']'")
	return L("array", parts...)
}

func (p *parser) forExpr() S {
	if p.match(EACH) {
		name := p.need(ID, "expected a loop variable after 'for each'")
		p.need(IN, "expected 'in'")
		iter := p.expr(0)
		if !p.matchSkippingSemis(DO) {
			p.fail("expected 'do'")
		}
		body := p.expr(0)
		return L("foreach", name.Literal.(string), iter, body)
	}
	name := p.need(ID, "expected a loop variable after 'for'")
	p.need(FROM, "expected 'from'")
	from := p.expr(0)
	p.need(TO, "expected 'to'")
	to := p.expr(0)
	if !p.matchSkippingSemis(DO) {
		p.fail("expected 'do'")
	}
	body := p.expr(0)
	return L("forrange", name.Literal.(string), from, to, body)
}
