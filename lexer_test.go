package stencil

import "testing"

func scanSrc(t *testing.T, src string) []Token {
	t.Helper()
	toks, err := NewLexer(src).Scan()
	if err != nil {
		t.Fatalf("scan error for %q: %v", src, err)
	}
	return toks
}

func wantTypes(t *testing.T, toks []Token, types ...TokenType) {
	t.Helper()
	if n := len(toks); n > 0 && toks[n-1].Type == EOF {
		toks = toks[:n-1]
	}
	if len(toks) != len(types) {
		t.Fatalf("want %d tokens, got %d: %#v", len(types), len(toks), toks)
	}
	for i, tt := range types {
		if toks[i].Type != tt {
			t.Fatalf("token %d: want type %d, got %d (%q)", i, tt, toks[i].Type, toks[i].Lexeme)
		}
	}
}

func Test_Lexer_CallParenIsWhitespaceSensitive(t *testing.T) {
	wantTypes(t, scanSrc(t, "f(x)"), ID, CLROUND, ID, RROUND)
	wantTypes(t, scanSrc(t, "f (x)"), ID, LROUND, ID, RROUND)
	wantTypes(t, scanSrc(t, "xs[0]"), ID, CLSQUARE, INTEGER, RSQUARE)
	wantTypes(t, scanSrc(t, "xs [0]"), ID, LSQUARE, INTEGER, RSQUARE)
}

func Test_Lexer_NewlineTerminatesCompleteExpressions(t *testing.T) {
	// After a token that can end an expression, a newline acts as ';'.
	wantTypes(t, scanSrc(t, "1\n2"), INTEGER, SEMI, INTEGER)
	// After an operator the statement continues.
	wantTypes(t, scanSrc(t, "1 +\n2"), INTEGER, PLUS, INTEGER)
	wantTypes(t, scanSrc(t, "x :=\n2"), ID, DECLARE, INTEGER)
}

func Test_Lexer_Comments(t *testing.T) {
	wantTypes(t, scanSrc(t, "1 # one\n2"), INTEGER, SEMI, INTEGER)
	wantTypes(t, scanSrc(t, "# only a comment"), nil...)
}

func Test_Lexer_Numbers(t *testing.T) {
	toks := scanSrc(t, "42 2.5 .5 1. 1e3")
	wantTypes(t, toks, INTEGER, NUMBER, NUMBER, NUMBER, NUMBER)
	if toks[0].Literal.(int64) != 42 {
		t.Fatalf("want 42, got %v", toks[0].Literal)
	}
	if toks[2].Literal.(float64) != 0.5 {
		t.Fatalf("want 0.5, got %v", toks[2].Literal)
	}
	if toks[4].Literal.(float64) != 1000 {
		t.Fatalf("want 1000, got %v", toks[4].Literal)
	}
}

func Test_Lexer_StringEscapes(t *testing.T) {
	toks := scanSrc(t, `"a\n\"b\"A"`)
	wantTypes(t, toks, STRING)
	if got := toks[0].Literal.(string); got != "a\n\"b\"A" {
		t.Fatalf("unexpected string literal: %q", got)
	}
}

func Test_Lexer_KeywordAfterPeriodIsMemberName(t *testing.T) {
	wantTypes(t, scanSrc(t, "card.to"), ID, PERIOD, ID)
	wantTypes(t, scanSrc(t, "a to b"), ID, TO, ID)
}

func Test_Lexer_UnterminatedStringIsIncomplete(t *testing.T) {
	_, err := NewLexer(`"abc`).Scan()
	if err == nil {
		t.Fatalf("want scan error")
	}
	if !err.Incomplete {
		t.Fatalf("unterminated string at end of input should be incomplete: %#v", err)
	}
}

func Test_Lexer_SingleEqualsIsRejected(t *testing.T) {
	_, err := NewLexer("x = 1").Scan()
	if err == nil {
		t.Fatalf("want scan error for '='")
	}
	if err.Incomplete {
		t.Fatalf("'=' mid-input must not be incomplete")
	}
}
