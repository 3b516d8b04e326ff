// Package lexer turns a source buffer into a flat token sequence,
// grounded on informatter-nilan/lexer/lexer.go's cursor/line/column
// scanning structure, generalized to the source language's full
// operator table, comment states and escape set (spec §4.1).
package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"mayoc/compileerror"
	"mayoc/token"
)

func isLetter(c rune) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_'
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

// issym is spec §4.1's identifier-character predicate: alphanumeric or
// underscore.
func issym(c rune) bool {
	return isLetter(c) || isDigit(c)
}

// operators is the greedy symbol table: longest match wins, so entries
// are tried longest-first by Lexer.matchOperator.
var operators = []struct {
	text string
	kind token.TokenType
}{
	{"...", token.ELLIPSIS},
	{"..=", token.RANGEINC},
	{"<<=", token.SHL_EQUAL},
	{">>=", token.SHR_EQUAL},
	{"->", token.ARROW},
	{"..", token.RANGE},
	{"==", token.EQUAL_EQUAL},
	{"!=", token.NOT_EQUAL},
	{"<=", token.LESS_EQUAL},
	{">=", token.GREATER_EQUAL},
	{"&&", token.AND},
	{"||", token.OR},
	{"<<", token.SHL},
	{">>", token.SHR},
	{"+=", token.PLUS_EQUAL},
	{"-=", token.MINUS_EQUAL},
	{"*=", token.STAR_EQUAL},
	{"/=", token.SLASH_EQUAL},
	{"%=", token.MODULO_EQUAL},
	{"&=", token.AMP_EQUAL},
	{"|=", token.PIPE_EQUAL},
	{"^=", token.CARET_EQUAL},
	{"~=", token.TILDE_EQUAL},
	{"(", token.LPAREN},
	{")", token.RPAREN},
	{"{", token.LCURLY},
	{"}", token.RCURLY},
	{"[", token.LBRACKET},
	{"]", token.RBRACKET},
	{",", token.COMMA},
	{";", token.SEMICOLON},
	{".", token.DOT},
	{":", token.COLON},
	{"+", token.PLUS},
	{"-", token.MINUS},
	{"*", token.STAR},
	{"/", token.SLASH},
	{"%", token.MODULO},
	{"&", token.AMP},
	{"|", token.PIPE},
	{"^", token.CARET},
	{"~", token.TILDE},
	{"!", token.BANG},
	{"=", token.ASSIGN},
	{"<", token.LESS},
	{">", token.GREATER},
}

// escapes maps `\c` escape characters to their expanded byte, spec
// §4.1's closed escape set.
var escapes = map[rune]byte{
	'\\': '\\', '\'': '\'', '"': '"',
	'b': '\b', 't': '\t', 'r': '\r', 'n': '\n', '0': 0,
}

type commentState int

const (
	commentNone commentState = iota
	commentLine
	commentBlock
)

// Lexer scans a rune buffer into tokens, grounded on nilan's
// Lexer{characters, position, readPosition, lineCount, column}.
type Lexer struct {
	file    string
	runes   []rune
	pos     int
	line    int
	column  int
	comment commentState
}

// New returns a Lexer over source, reporting positions against file.
func New(file, source string) *Lexer {
	return &Lexer{file: file, runes: []rune(source), line: 1, column: 1}
}

func (l *Lexer) atEnd() bool { return l.pos >= len(l.runes) }

func (l *Lexer) current() rune {
	if l.atEnd() {
		return 0
	}
	return l.runes[l.pos]
}

func (l *Lexer) peekAt(offset int) rune {
	idx := l.pos + offset
	if idx >= len(l.runes) {
		return 0
	}
	return l.runes[idx]
}

func (l *Lexer) advance() rune {
	c := l.current()
	l.pos++
	if c == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return c
}

func (l *Lexer) hasPrefix(s string) bool {
	for i, want := range s {
		if l.peekAt(i) != want {
			return false
		}
	}
	return true
}

func (l *Lexer) errf(line, column int, format string, args ...any) error {
	return compileerror.LexError{
		Pos:     compileerror.Position{File: l.file, Line: line, Column: column},
		Message: fmt.Sprintf(format, args...),
	}
}

// Scan runs the lexer to completion, returning the full token sequence
// (terminated by a TOK_NONE-equivalent token.EOF) or the first error
// encountered (spec §4.1 "Failure model": every lexer error aborts the
// compilation).
func (l *Lexer) Scan() ([]token.Token, error) {
	var tokens []token.Token
	for {
		tok, err := l.next()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) next() (token.Token, error) {
	for {
		l.skipWhitespaceAndComments()
		if l.atEnd() {
			return token.New(token.EOF, "", l.file, l.line, l.column), nil
		}
		break
	}

	line, column := l.line, l.column
	c := l.current()

	switch {
	case c == '"':
		return l.readString(line, column)
	case c == '\'':
		return l.readChar(line, column)
	case isDigit(c):
		return l.readNumber(line, column)
	case isLetter(c):
		return l.readIdentifier(line, column), nil
	}

	if kind, text, ok := l.matchOperator(); ok {
		return token.New(kind, text, l.file, line, column), nil
	}

	bad := l.advance()
	return token.Token{}, l.errf(line, column, "unexpected character %q", bad)
}

// skipWhitespaceAndComments drives the three-state comment state machine
// (none / single-line / multi-line) alongside plain whitespace skipping,
// per spec §4.1.
func (l *Lexer) skipWhitespaceAndComments() {
	for !l.atEnd() {
		c := l.current()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case l.hasPrefix("//"):
			l.comment = commentLine
			for !l.atEnd() && l.current() != '\n' {
				l.advance()
			}
			l.comment = commentNone
		case l.hasPrefix("/*"):
			l.comment = commentBlock
			l.advance()
			l.advance()
			for !l.atEnd() && !l.hasPrefix("*/") {
				l.advance()
			}
			if !l.atEnd() {
				l.advance()
				l.advance()
			}
			l.comment = commentNone
		default:
			return
		}
	}
}

func (l *Lexer) matchOperator() (token.TokenType, string, bool) {
	for _, op := range operators {
		if l.hasPrefix(op.text) {
			for range op.text {
				l.advance()
			}
			return op.kind, op.text, true
		}
	}
	return "", "", false
}

func (l *Lexer) readIdentifier(line, column int) token.Token {
	var b strings.Builder
	for !l.atEnd() && issym(l.current()) {
		b.WriteRune(l.advance())
	}
	text := b.String()
	if kind, ok := token.KeyWords[text]; ok {
		if kind == token.BOOLEAN {
			return token.NewLiteral(token.BOOLEAN, text, text == "true", l.file, line, column)
		}
		return token.New(kind, text, l.file, line, column)
	}
	return token.New(token.IDENTIFIER, text, l.file, line, column)
}

// readNumber scans decimal digits with at most one embedded `.`, which
// forms a float literal rather than terminating the word with a DOT
// token (spec §4.1's "dot-suppression" edge case, tested by
// TestDotSuppressionFormsFloat).
func (l *Lexer) readNumber(line, column int) (token.Token, error) {
	var b strings.Builder
	sawDot := false
	for !l.atEnd() {
		c := l.current()
		if isDigit(c) {
			b.WriteRune(l.advance())
			continue
		}
		if c == '.' && !sawDot && isDigit(l.peekAt(1)) {
			sawDot = true
			b.WriteRune(l.advance())
			continue
		}
		break
	}
	text := b.String()
	if sawDot {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return token.Token{}, l.errf(line, column, "invalid float literal %q", text)
		}
		return token.NewLiteral(token.FLOAT, text, v, l.file, line, column), nil
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return token.Token{}, l.errf(line, column, "invalid integer literal %q", text)
	}
	return token.NewLiteral(token.INT, text, v, l.file, line, column), nil
}

func (l *Lexer) readEscape(line, column int) (byte, error) {
	l.advance() // consume backslash
	if l.atEnd() {
		return 0, l.errf(line, column, "unterminated escape sequence")
	}
	c := l.advance()
	v, ok := escapes[c]
	if !ok {
		return 0, l.errf(line, column, "unrecognised escape character %q", c)
	}
	return v, nil
}

func (l *Lexer) readString(line, column int) (token.Token, error) {
	l.advance() // opening quote
	var b strings.Builder
	for {
		if l.atEnd() || l.current() == '\n' {
			return token.Token{}, l.errf(line, column, "unterminated string literal")
		}
		if l.current() == '"' {
			l.advance()
			break
		}
		if l.current() == '\\' {
			v, err := l.readEscape(l.line, l.column)
			if err != nil {
				return token.Token{}, err
			}
			b.WriteByte(v)
			continue
		}
		b.WriteRune(l.advance())
	}
	text := b.String()
	return token.NewLiteral(token.STRING, text, text, l.file, line, column), nil
}

func (l *Lexer) readChar(line, column int) (token.Token, error) {
	l.advance() // opening quote
	if l.atEnd() || l.current() == '\n' {
		return token.Token{}, l.errf(line, column, "unterminated character literal")
	}
	var v byte
	if l.current() == '\\' {
		esc, err := l.readEscape(l.line, l.column)
		if err != nil {
			return token.Token{}, err
		}
		v = esc
	} else {
		v = byte(l.advance())
	}
	if l.atEnd() || l.current() != '\'' {
		return token.Token{}, l.errf(line, column, "unterminated character literal")
	}
	l.advance()
	return token.NewLiteral(token.CHAR, string(v), v, l.file, line, column), nil
}
