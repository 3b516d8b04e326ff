package lexer

import (
	"testing"

	"mayoc/token"
)

func kinds(toks []token.Token) []token.TokenType {
	out := make([]token.TokenType, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func assertKinds(t *testing.T, source string, want []token.TokenType) []token.Token {
	t.Helper()
	toks, err := New("test.mayo", source).Scan()
	if err != nil {
		t.Fatalf("Scan(%q) returned error: %v", source, err)
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("Scan(%q) = %v, want %v", source, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Scan(%q)[%d] = %s, want %s", source, i, got[i], want[i])
		}
	}
	return toks
}

func TestOperatorsGreedyMatch(t *testing.T) {
	assertKinds(t, "==/=*+>-<!=<=>=!!", []token.TokenType{
		token.EQUAL_EQUAL, token.SLASH_EQUAL, token.STAR, token.PLUS,
		token.GREATER, token.MINUS, token.LESS, token.NOT_EQUAL, token.LESS_EQUAL,
		token.GREATER_EQUAL, token.BANG, token.BANG, token.EOF,
	})
}

func TestRangeOperatorsDoNotSplit(t *testing.T) {
	assertKinds(t, "0..10 0..=10 f(a...)", []token.TokenType{
		token.INT, token.RANGE, token.INT,
		token.INT, token.RANGEINC, token.INT,
		token.IDENTIFIER, token.LPAREN, token.IDENTIFIER, token.ELLIPSIS, token.RPAREN,
		token.EOF,
	})
}

func TestPunctuationAndBraces(t *testing.T) {
	assertKinds(t, "(){}**;+!=<=", []token.TokenType{
		token.LPAREN, token.RPAREN, token.LCURLY, token.RCURLY,
		token.STAR, token.STAR, token.SEMICOLON, token.PLUS,
		token.NOT_EQUAL, token.LESS_EQUAL, token.EOF,
	})
}

func TestKeywordsAndBooleanLiteral(t *testing.T) {
	toks := assertKinds(t, "fn let const struct extern import return if else while for in step break continue true false",
		[]token.TokenType{
			token.FUNC, token.LET, token.CONST, token.STRUCT, token.EXTERN, token.IMPORT,
			token.RETURN, token.IF, token.ELSE, token.WHILE, token.FOR, token.IN, token.STEP,
			token.BREAK, token.CONTINUE, token.BOOLEAN, token.BOOLEAN, token.EOF,
		})
	if toks[15].Literal != true {
		t.Errorf("true literal = %v, want true", toks[15].Literal)
	}
	if toks[16].Literal != false {
		t.Errorf("false literal = %v, want false", toks[16].Literal)
	}
}

func TestDotSuppressionFormsFloat(t *testing.T) {
	toks := assertKinds(t, "3.14 7.x", []token.TokenType{
		token.FLOAT, token.INT, token.DOT, token.IDENTIFIER, token.EOF,
	})
	if toks[0].Literal != 3.14 {
		t.Errorf("float literal = %v, want 3.14", toks[0].Literal)
	}
}

func TestLineCommentSkipped(t *testing.T) {
	assertKinds(t, "1 // trailing comment\n2", []token.TokenType{
		token.INT, token.INT, token.EOF,
	})
}

func TestBlockCommentSkipped(t *testing.T) {
	assertKinds(t, "1 /* spans\nmultiple\nlines */ 2", []token.TokenType{
		token.INT, token.INT, token.EOF,
	})
}

func TestStringEscapes(t *testing.T) {
	toks, err := New("test.mayo", `"line\n\ttab\\\""`).Scan()
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	want := "line\n\ttab\\\""
	if toks[0].Literal != want {
		t.Errorf("string literal = %q, want %q", toks[0].Literal, want)
	}
}

func TestCharLiteral(t *testing.T) {
	toks, err := New("test.mayo", `'a' '\n'`).Scan()
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if toks[0].Literal != byte('a') {
		t.Errorf("char literal = %v, want 'a'", toks[0].Literal)
	}
	if toks[1].Literal != byte('\n') {
		t.Errorf("char literal = %v, want '\\n'", toks[1].Literal)
	}
}

func TestUnterminatedStringIsLexError(t *testing.T) {
	_, err := New("test.mayo", `"never closed`).Scan()
	if err == nil {
		t.Fatalf("expected an error for an unterminated string literal")
	}
}

func TestUnexpectedCharacterIsLexError(t *testing.T) {
	_, err := New("test.mayo", "let x = @").Scan()
	if err == nil {
		t.Fatalf("expected an error for an unrecognised character")
	}
}

func TestLinesAndColumnsAdvance(t *testing.T) {
	toks, err := New("test.mayo", "let x\nlet y").Scan()
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	second := toks[2] // second "let"
	if second.Line != 2 || second.Column != 1 {
		t.Errorf("second let position = %d:%d, want 2:1", second.Line, second.Column)
	}
}
