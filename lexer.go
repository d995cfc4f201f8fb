// lexer.go — whitespace-sensitive scanner for Stencil source.
//
// Two lexing rules carry grammar weight:
//
//   - '(' and '[' tokenize differently depending on whether whitespace
//     precedes them: "f(x)" produces CLROUND (a call), "f (x)" produces
//     LROUND (two expressions). Same for indexing with '['.
//   - Newlines terminate statements, but only after a token that can end an
//     expression, so operators and open brackets continue across lines.
//
// '#' starts a comment running to end of line.
package stencil

import (
	"fmt"
	"strconv"
	"strings"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota
	ILLEGAL

	// Punctuation
	LROUND   // "(" preceded by whitespace
	CLROUND  // "(" not preceded by whitespace (call)
	RROUND   // ")"
	LSQUARE  // "["
	CLSQUARE // "[" not preceded by whitespace (index)
	RSQUARE  // "]"
	LCURLY   // "{"
	RCURLY   // "}"
	COLON    // ":"
	COMMA    // ","
	PERIOD   // "."
	SEMI     // ";" or a statement-terminating newline
	AT       // "@" (closure bind)

	// Operators
	PLUS
	MINUS
	MULT
	DIV
	DECLARE // ":="
	EQ      // "=="
	NEQ     // "!="
	LESS
	LESS_EQ
	GREATER
	GREATER_EQ

	// Literals & identifiers
	ID
	STRING
	INTEGER
	NUMBER
	BOOLEAN
	NILTOK

	// Keywords
	AND
	OR
	XOR
	NOT
	MOD
	IF
	THEN
	ELSE
	FOR
	EACH
	FROM
	TO
	IN
	DO
)

// Token is a lexical token with optional literal value.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal any // parsed value for literals
	Line    int // 1-based
	Col     int // 0-based
}

var keywords = map[string]TokenType{
	"nil":   NILTOK,
	"true":  BOOLEAN,
	"false": BOOLEAN,
	"and":   AND,
	"or":    OR,
	"xor":   XOR,
	"not":   NOT,
	"mod":   MOD,
	"if":    IF,
	"then":  THEN,
	"else":  ELSE,
	"for":   FOR,
	"each":  EACH,
	"from":  FROM,
	"to":    TO,
	"in":    IN,
	"do":    DO,
}

// Lexer scans a Stencil source string into tokens.
type Lexer struct {
	src              string
	start            int
	cur              int
	line             int
	col              int
	tokens           []Token
	whitespaceBefore bool

	tokStartLine int
	tokStartCol  int
}

// NewLexer creates a lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1}
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	return l.src[l.cur], true
}

func (l *Lexer) peekN(n int) (byte, bool) {
	if l.cur+n >= len(l.src) {
		return 0, false
	}
	return l.src[l.cur+n], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return ch, true
}

func (l *Lexer) addToken(tt TokenType, lit any) Token {
	tok := Token{
		Type:    tt,
		Lexeme:  l.src[l.start:l.cur],
		Literal: lit,
		Line:    l.tokStartLine,
		Col:     l.tokStartCol,
	}
	l.tokens = append(l.tokens, tok)
	l.start = l.cur
	l.whitespaceBefore = false
	return tok
}

func (l *Lexer) previousToken() *Token {
	if len(l.tokens) == 0 {
		return nil
	}
	return &l.tokens[len(l.tokens)-1]
}

// canEndExpression decides whether a newline after this token terminates the
// statement (Go-style separator insertion).
func canEndExpression(t TokenType) bool {
	switch t {
	case ID, STRING, INTEGER, NUMBER, BOOLEAN, NILTOK, RROUND, RSQUARE, RCURLY:
		return true
	default:
		return false
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isHex(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool {
	return isAlpha(b) || isDigit(b)
}

func (l *Lexer) err(msg string) *ParseError {
	return &ParseError{Msg: msg, Line: l.line, Col: l.col, Incomplete: l.isAtEnd()}
}

// skipBlank consumes spaces, tabs, carriage returns, and '#' comments. A
// newline makes the following token whitespace-preceded, and, after a token
// that can end an expression, yields a synthetic SEMI.
func (l *Lexer) skipBlank() (emitSemi bool) {
	for !l.isAtEnd() {
		ch, _ := l.peek()
		switch ch {
		case ' ', '\t', '\r':
			l.whitespaceBefore = true
			l.advance()
		case '#':
			for {
				b, ok := l.peek()
				if !ok || b == '\n' {
					break
				}
				l.advance()
			}
		case '\n':
			l.whitespaceBefore = true
			if p := l.previousToken(); p != nil && canEndExpression(p.Type) && !emitSemi {
				l.tokStartLine = l.line
				l.tokStartCol = l.col
				emitSemi = true
			}
			l.advance()
		default:
			l.start = l.cur
			return emitSemi
		}
	}
	l.start = l.cur
	return emitSemi
}

// scanString parses a double-quoted string literal with the usual escapes.
func (l *Lexer) scanString() (string, *ParseError) {
	l.advance() // opening quote

	var out strings.Builder
	for !l.isAtEnd() {
		ch, _ := l.advance()
		if ch == '"' {
			return out.String(), nil
		}
		if ch == '\\' {
			esc, ok := l.advance()
			if !ok {
				return "", l.err("unfinished escape sequence")
			}
			switch esc {
			case '"':
				out.WriteByte('"')
			case '\\':
				out.WriteByte('\\')
			case '/':
				out.WriteByte('/')
			case 'n':
				out.WriteByte('\n')
			case 'r':
				out.WriteByte('\r')
			case 't':
				out.WriteByte('\t')
			case 'u':
				var hex string
				for i := 0; i < 4; i++ {
					b, ok := l.peek()
					if !ok || !isHex(b) {
						return "", l.err("unicode escape needs 4 hex digits")
					}
					hex += string(b)
					l.advance()
				}
				n, convErr := strconv.ParseInt(hex, 16, 32)
				if convErr != nil {
					return "", l.err("invalid unicode escape")
				}
				out.WriteRune(rune(n))
			default:
				return "", l.err(fmt.Sprintf("invalid escape sequence: \\%c", esc))
			}
			continue
		}
		out.WriteByte(ch)
	}
	return "", l.err("string was not terminated")
}

// scanNumber parses an integer or double; supports .5, 1., 1.23e-4.
func (l *Lexer) scanNumber() (TokenType, any, *ParseError) {
	sawDigits := false
	for {
		b, ok := l.peek()
		if !ok || !isDigit(b) {
			break
		}
		l.advance()
		sawDigits = true
	}

	sawDot := false
	if b, ok := l.peek(); ok && b == '.' {
		next, okNext := l.peekN(1)
		if sawDigits || (okNext && isDigit(next)) {
			l.advance()
			sawDot = true
			for {
				b, ok := l.peek()
				if !ok || !isDigit(b) {
					break
				}
				l.advance()
				sawDigits = true
			}
		}
	}

	sawExp := false
	if b, ok := l.peek(); ok && (b == 'e' || b == 'E') && sawDigits {
		save := l.cur
		l.advance()
		if b2, ok := l.peek(); ok && (b2 == '+' || b2 == '-') {
			l.advance()
		}
		if b3, ok := l.peek(); ok && isDigit(b3) {
			sawExp = true
			for {
				b4, ok := l.peek()
				if !ok || !isDigit(b4) {
					break
				}
				l.advance()
			}
		} else {
			l.cur = save
		}
	}

	if !sawDigits {
		return ILLEGAL, nil, l.err("malformed number")
	}

	lex := l.src[l.start:l.cur]
	if !sawDot && !sawExp {
		n, convErr := strconv.ParseInt(lex, 10, 64)
		if convErr != nil {
			return ILLEGAL, nil, l.err("invalid integer literal")
		}
		return INTEGER, n, nil
	}
	f, convErr := strconv.ParseFloat(lex, 64)
	if convErr != nil {
		return ILLEGAL, nil, l.err("invalid number literal")
	}
	return NUMBER, f, nil
}

func (l *Lexer) scanIdentifier() string {
	for {
		b, ok := l.peek()
		if !ok || !isAlphaNum(b) {
			break
		}
		l.advance()
	}
	return l.src[l.start:l.cur]
}

func (l *Lexer) scanToken() (Token, *ParseError) {
	if l.skipBlank() {
		t := l.addToken(SEMI, nil)
		l.whitespaceBefore = true
		return t, nil
	}
	l.tokStartLine = l.line
	l.tokStartCol = l.col
	l.start = l.cur

	if l.isAtEnd() {
		return l.addToken(EOF, nil), nil
	}

	ch, _ := l.advance()

	switch ch {
	case '(':
		if l.whitespaceBefore {
			return l.addToken(LROUND, "("), nil
		}
		return l.addToken(CLROUND, "("), nil
	case ')':
		return l.addToken(RROUND, ")"), nil
	case '[':
		if l.whitespaceBefore {
			return l.addToken(LSQUARE, "["), nil
		}
		return l.addToken(CLSQUARE, "["), nil
	case ']':
		return l.addToken(RSQUARE, "]"), nil
	case '{':
		return l.addToken(LCURLY, "{"), nil
	case '}':
		return l.addToken(RCURLY, "}"), nil
	case ',':
		return l.addToken(COMMA, ","), nil
	case ';':
		return l.addToken(SEMI, ";"), nil
	case '@':
		return l.addToken(AT, "@"), nil
	case '+':
		return l.addToken(PLUS, "+"), nil
	case '*':
		return l.addToken(MULT, "*"), nil
	case '/':
		return l.addToken(DIV, "/"), nil
	case '-':
		return l.addToken(MINUS, "-"), nil
	case ':':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(DECLARE, ":="), nil
		}
		return l.addToken(COLON, ":"), nil
	case '=':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(EQ, "=="), nil
		}
		return Token{}, l.err("unexpected '='; use ':=' to bind or '==' to compare")
	case '!':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(NEQ, "!="), nil
		}
		return Token{}, l.err("unexpected character: '!'")
	case '<':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(LESS_EQ, "<="), nil
		}
		return l.addToken(LESS, "<"), nil
	case '>':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(GREATER_EQ, ">="), nil
		}
		return l.addToken(GREATER, ">"), nil
	}

	// '.' : decimal-starting double or member access
	if ch == '.' {
		if b, ok := l.peek(); ok && isDigit(b) {
			l.cur = l.start
			tt, lit, err := l.scanNumber()
			if err != nil {
				return Token{}, err
			}
			return l.addToken(tt, lit), nil
		}
		return l.addToken(PERIOD, "."), nil
	}

	if ch == '"' {
		l.cur = l.start
		text, err := l.scanString()
		if err != nil {
			return Token{}, err
		}
		return l.addToken(STRING, text), nil
	}

	if isDigit(ch) {
		l.cur = l.start
		tt, lit, err := l.scanNumber()
		if err != nil {
			return Token{}, err
		}
		return l.addToken(tt, lit), nil
	}

	if isAlpha(ch) {
		l.cur = l.start
		lex := l.scanIdentifier()
		// After '.', keywords are plain member names.
		if p := l.previousToken(); p != nil && p.Type == PERIOD {
			return l.addToken(ID, lex), nil
		}
		if tt, ok := keywords[lex]; ok {
			switch tt {
			case NILTOK:
				return l.addToken(NILTOK, nil), nil
			case BOOLEAN:
				return l.addToken(BOOLEAN, lex == "true"), nil
			default:
				return l.addToken(tt, lex), nil
			}
		}
		return l.addToken(ID, lex), nil
	}

	return Token{}, l.err(fmt.Sprintf("unexpected character: %q", ch))
}

// Scan tokenizes the entire source and returns tokens (EOF included).
func (l *Lexer) Scan() ([]Token, *ParseError) {
	for {
		tok, err := l.scanToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == EOF {
			return l.tokens, nil
		}
	}
}
