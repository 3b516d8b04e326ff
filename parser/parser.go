// Package parser is a recursive-descent parser over a flat token
// sequence, with a single precedence-climbing function for expressions.
// Grounded on informatter-nilan/parser/parser.go's Parser{tokens,
// position}/peek/previous/advance/checkType/isMatch/consume helper
// shape, generalized to the source language's statement and type
// grammar (spec §4.2) and cross-checked against the original's
// parser_parse.c (declaration grammar, variadic parameters, trailing
// commas) and ast_eval.c (precedence table, postfix member/index loop).
package parser

import (
	"fmt"

	"mayoc/ast"
	"mayoc/compileerror"
	"mayoc/datatype"
	"mayoc/token"
)

// Parser walks a token slice by index, never backing up further than
// one token (previous()).
type Parser struct {
	file    string
	tokens  []token.Token
	pos     int
	noBrace int // >0 while parsing a condition, suppressing struct-literal parsing
}

// New returns a Parser over tokens produced by lexer.Scan.
func New(file string, tokens []token.Token) *Parser {
	return &Parser{file: file, tokens: tokens}
}

// Parse runs the parser to completion, returning the translation unit or
// the first parse error encountered (spec §4.2: parsing aborts on the
// first malformed construct, mirroring the lexer's failure model).
func Parse(file string, tokens []token.Token) (tu *ast.TranslationUnit, err error) {
	defer compileerror.Recover(&err)
	p := New(file, tokens)
	tu = p.parseTranslationUnit()
	return tu, nil
}

// ---- token-stream helpers ----

func (p *Parser) peek() token.Token     { return p.tokens[p.pos] }
func (p *Parser) previous() token.Token { return p.tokens[p.pos-1] }
func (p *Parser) atEnd() bool           { return p.peek().Kind == token.EOF }

func (p *Parser) advance() token.Token {
	if !p.atEnd() {
		p.pos++
	}
	return p.previous()
}

func (p *Parser) check(kind token.TokenType) bool {
	return !p.atEnd() && p.peek().Kind == kind
}

func (p *Parser) isMatch(kinds ...token.TokenType) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(kind token.TokenType, format string, args ...any) token.Token {
	if p.check(kind) {
		return p.advance()
	}
	p.errorf(p.peek(), format, args...)
	panic("unreachable")
}

func (p *Parser) errorf(at token.Token, format string, args ...any) {
	compileerror.Abort(compileerror.ParseError{
		Pos:     compileerror.Position{File: p.file, Line: at.Line, Column: at.Column, Length: max(1, at.Length)},
		Message: fmt.Sprintf(format, args...),
	})
}

// ---- declarations ----

func (p *Parser) parseTranslationUnit() *ast.TranslationUnit {
	pos := compileerror.Position{File: p.file, Line: 1, Column: 1}
	var body []ast.Stmt
	for !p.atEnd() {
		body = append(body, p.parseDeclaration())
	}
	return ast.NewTranslationUnit(pos, body)
}

func (p *Parser) posOf(tok token.Token) compileerror.Position {
	return compileerror.Position{File: p.file, Line: tok.Line, Column: tok.Column, Length: max(1, tok.Length)}
}

func (p *Parser) parseDeclaration() ast.Stmt {
	switch {
	case p.isMatch(token.IMPORT):
		return p.parseImport()
	case p.isMatch(token.STRUCT):
		return p.parseStructDecl()
	case p.isMatch(token.EXTERN):
		p.consume(token.FUNC, "expected 'fn' after 'extern'")
		return p.parseFuncDecl(true)
	case p.isMatch(token.FUNC):
		return p.parseFuncDecl(false)
	case p.isMatch(token.LET), p.isMatch(token.CONST):
		return p.finishVarDecl()
	}
	p.errorf(p.peek(), "expected a top-level declaration, found %s", p.peek().Kind)
	panic("unreachable")
}

func (p *Parser) parseImport() ast.Stmt {
	start := p.previous()
	path := p.consume(token.STRING, "expected a string path after 'import'")
	p.consume(token.SEMICOLON, "expected ';' after import path")
	return ast.NewImport(p.posOf(start), path.Literal.(string))
}

func (p *Parser) parseType() *datatype.Type {
	switch {
	case p.isMatch(token.STAR):
		return datatype.NewPointer(p.parseType())
	case p.isMatch(token.LBRACKET):
		size := p.consume(token.INT, "expected an array size")
		p.consume(token.RBRACKET, "expected ']' after array size")
		return datatype.NewArray(p.parseType(), int(size.Literal.(int64)))
	}
	name := p.consume(token.IDENTIFIER, "expected a type name")
	t := datatype.NewPrimitive(name.Lexeme)
	// Postfix modifiers wrap outward: `i32*[2]` is an array of 2 pointers to i32.
	for {
		switch {
		case p.isMatch(token.STAR):
			t = datatype.NewPointer(t)
		case p.isMatch(token.LBRACKET):
			size := p.consume(token.INT, "expected an array size")
			p.consume(token.RBRACKET, "expected ']' after array size")
			t = datatype.NewArray(t, int(size.Literal.(int64)))
		default:
			return t
		}
	}
}

func (p *Parser) parseParams() []ast.Param {
	p.consume(token.LPAREN, "expected '(' to start a parameter list")
	var params []ast.Param
	if !p.check(token.RPAREN) {
		for {
			if p.isMatch(token.ELLIPSIS) {
				params = append(params, ast.Param{Variadic: true})
				break
			}
			name := p.consume(token.IDENTIFIER, "expected a parameter name")
			p.consume(token.COLON, "expected ':' after parameter name")
			typ := p.parseType()
			params = append(params, ast.Param{Name: name.Lexeme, Type: typ})
			if !p.isMatch(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "expected ')' after parameter list")
	return params
}

func (p *Parser) parseFuncDecl(external bool) ast.Stmt {
	start := p.previous()
	name := p.consume(token.IDENTIFIER, "expected a function name")
	params := p.parseParams()
	var ret *datatype.Type
	if p.isMatch(token.ARROW) {
		ret = p.parseType()
	} else {
		ret = datatype.NewPrimitive("void")
	}
	if external {
		p.consume(token.SEMICOLON, "expected ';' after an extern function declaration")
		return ast.NewFuncDecl(p.posOf(start), name.Lexeme, params, ret, nil, true)
	}
	body := p.parseBlock()
	return ast.NewFuncDecl(p.posOf(start), name.Lexeme, params, ret, body, false)
}

func (p *Parser) parseStructDecl() ast.Stmt {
	start := p.previous()
	name := p.consume(token.IDENTIFIER, "expected a struct name")
	p.consume(token.LCURLY, "expected '{' to start a struct body")
	var members []ast.StructMember
	for !p.check(token.RCURLY) && !p.atEnd() {
		memberName := p.consume(token.IDENTIFIER, "expected a member name")
		p.consume(token.COLON, "expected ':' after member name")
		typ := p.parseType()
		members = append(members, ast.StructMember{Name: memberName.Lexeme, Type: typ})
		if !p.isMatch(token.COMMA) {
			break
		}
	}
	p.consume(token.RCURLY, "expected '}' to close a struct body")
	return ast.NewStructDecl(p.posOf(start), name.Lexeme, members)
}

func (p *Parser) finishVarDecl() ast.Stmt {
	start := p.previous()
	name := p.consume(token.IDENTIFIER, "expected a variable name")
	var declared *datatype.Type
	if p.isMatch(token.COLON) {
		declared = p.parseType()
	}
	var init ast.Expression
	if p.isMatch(token.ASSIGN) {
		init = p.parseExpression()
	}
	p.consume(token.SEMICOLON, "expected ';' after a variable declaration")
	return ast.NewVarDecl(p.posOf(start), name.Lexeme, declared, init)
}

// ---- statements ----

func (p *Parser) parseBlock() []ast.Stmt {
	p.consume(token.LCURLY, "expected '{' to start a block")
	var stmts []ast.Stmt
	for !p.check(token.RCURLY) && !p.atEnd() {
		stmts = append(stmts, p.parseStatement())
	}
	p.consume(token.RCURLY, "expected '}' to close a block")
	return stmts
}

func (p *Parser) parseStatement() ast.Stmt {
	switch {
	case p.isMatch(token.LET), p.isMatch(token.CONST):
		return p.finishVarDecl()
	case p.isMatch(token.IF):
		return p.finishIf()
	case p.isMatch(token.WHILE):
		return p.finishWhile()
	case p.isMatch(token.FOR):
		return p.finishFor()
	case p.isMatch(token.RETURN):
		return p.finishReturn()
	case p.isMatch(token.BREAK):
		start := p.previous()
		p.consume(token.SEMICOLON, "expected ';' after 'break'")
		return ast.NewBreak(p.posOf(start))
	case p.isMatch(token.CONTINUE):
		start := p.previous()
		p.consume(token.SEMICOLON, "expected ';' after 'continue'")
		return ast.NewContinue(p.posOf(start))
	case p.check(token.LCURLY):
		start := p.peek()
		body := p.parseBlock()
		// A bare block is sugar for `if true { ... }`; reuses If rather
		// than adding a dedicated Block statement node.
		return ast.NewIf(p.posOf(start), ast.NewBoolLiteral(p.posOf(start), true), body, nil)
	default:
		return p.finishExprStmt()
	}
}

// parseCondition parses an expression in a context where a following
// '{' must begin a block, not a struct literal — the same ambiguity Go
// resolves by banning composite literals in if/for headers.
func (p *Parser) parseCondition() ast.Expression {
	p.noBrace++
	defer func() { p.noBrace-- }()
	return p.parseExpression()
}

func (p *Parser) finishIf() ast.Stmt {
	start := p.previous()
	cond := p.parseCondition()
	then := p.parseBlock()
	var els []ast.Stmt
	if p.isMatch(token.ELSE) {
		if p.isMatch(token.IF) {
			els = []ast.Stmt{p.finishIf()}
		} else {
			els = p.parseBlock()
		}
	}
	return ast.NewIf(p.posOf(start), cond, then, els)
}

func (p *Parser) finishWhile() ast.Stmt {
	start := p.previous()
	cond := p.parseCondition()
	body := p.parseBlock()
	return ast.NewWhile(p.posOf(start), cond, body)
}

// finishFor parses `for id in from..to [step expr] { body }` and the
// inclusive variant `..=` (SPEC_FULL.md §4's supplemented for-loop
// syntax). Reverse iteration is left for codegen to derive by comparing
// From and To, rather than a separate keyword.
func (p *Parser) finishFor() ast.Stmt {
	start := p.previous()
	id := p.consume(token.IDENTIFIER, "expected a loop variable name")
	p.consume(token.IN, "expected 'in' after the loop variable")
	p.noBrace++
	from := p.parseAdditive()
	inclusive := false
	switch {
	case p.isMatch(token.RANGEINC):
		inclusive = true
	case p.isMatch(token.RANGE):
	default:
		p.noBrace--
		p.errorf(p.peek(), "expected '..' or '..=' in a for-loop range")
	}
	to := p.parseAdditive()
	var step ast.Expression
	if p.isMatch(token.STEP) {
		step = p.parseAdditive()
	}
	p.noBrace--
	body := p.parseBlock()
	return ast.NewFor(p.posOf(start), id.Lexeme, from, to, step, inclusive, body)
}

func (p *Parser) finishReturn() ast.Stmt {
	start := p.previous()
	var value ast.Expression
	if !p.check(token.SEMICOLON) {
		value = p.parseExpression()
	}
	p.consume(token.SEMICOLON, "expected ';' after a return statement")
	return ast.NewReturn(p.posOf(start), value)
}

func (p *Parser) finishExprStmt() ast.Stmt {
	start := p.peek()
	expr := p.parseExpression()
	p.consume(token.SEMICOLON, "expected ';' after an expression statement")
	return ast.NewExprStmt(p.posOf(start), expr)
}

// ---- expressions: precedence climbing ----
//
// assignment (right-assoc) > or > and > equality > relational > additive
// > multiplicative > unary (! - & *) > postfix (. [ call) > primary.

func (p *Parser) parseExpression() ast.Expression {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() ast.Expression {
	left := p.parseOr()
	if p.isMatch(token.ASSIGN) {
		pos := p.posOf(p.previous())
		right := p.parseAssignment()
		return ast.NewBinaryOp(pos, ast.OpAssign, left, right)
	}
	return left
}

func (p *Parser) parseOr() ast.Expression {
	left := p.parseAnd()
	for p.isMatch(token.OR) {
		pos := p.posOf(p.previous())
		left = ast.NewBinaryOp(pos, ast.OpOr, left, p.parseAnd())
	}
	return left
}

func (p *Parser) parseAnd() ast.Expression {
	left := p.parseEquality()
	for p.isMatch(token.AND) {
		pos := p.posOf(p.previous())
		left = ast.NewBinaryOp(pos, ast.OpAnd, left, p.parseEquality())
	}
	return left
}

func (p *Parser) parseEquality() ast.Expression {
	left := p.parseRelational()
	for p.isMatch(token.EQUAL_EQUAL, token.NOT_EQUAL) {
		op, _ := ast.TokenToBinaryOp(p.previous().Kind)
		pos := p.posOf(p.previous())
		left = ast.NewBinaryOp(pos, op, left, p.parseRelational())
	}
	return left
}

func (p *Parser) parseRelational() ast.Expression {
	left := p.parseAdditive()
	for p.isMatch(token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL) {
		op, _ := ast.TokenToBinaryOp(p.previous().Kind)
		pos := p.posOf(p.previous())
		left = ast.NewBinaryOp(pos, op, left, p.parseAdditive())
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expression {
	left := p.parseMultiplicative()
	for p.isMatch(token.PLUS, token.MINUS) {
		op, _ := ast.TokenToBinaryOp(p.previous().Kind)
		pos := p.posOf(p.previous())
		left = ast.NewBinaryOp(pos, op, left, p.parseMultiplicative())
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expression {
	left := p.parseUnary()
	for p.isMatch(token.STAR, token.SLASH, token.MODULO) {
		op, _ := ast.TokenToBinaryOp(p.previous().Kind)
		pos := p.posOf(p.previous())
		left = ast.NewBinaryOp(pos, op, left, p.parseUnary())
	}
	return left
}

// parseUnary maps both '!' and '-' onto OpNegate (spec §3's operator
// tag set has one negation tag; codegen tells boolean negation from
// arithmetic negation apart by operand type).
func (p *Parser) parseUnary() ast.Expression {
	switch {
	case p.isMatch(token.BANG, token.MINUS):
		pos := p.posOf(p.previous())
		return ast.NewUnaryOp(pos, ast.OpNegate, p.parseUnary())
	case p.isMatch(token.AMP):
		pos := p.posOf(p.previous())
		return ast.NewUnaryOp(pos, ast.OpAddressOf, p.parseUnary())
	case p.isMatch(token.STAR):
		pos := p.posOf(p.previous())
		return ast.NewUnaryOp(pos, ast.OpDereference, p.parseUnary())
	default:
		return p.parsePostfix()
	}
}

// parsePostfix drives the member-access and array-index postfix loop
// (ast_eval.c's get-member loop, generalised to multidimensional
// indexing by re-entering the loop after each ']').
func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()
	for {
		switch {
		case p.isMatch(token.DOT):
			member := p.consume(token.IDENTIFIER, "expected a member name after '.'")
			expr = ast.NewGetMember(p.posOf(member), expr, member.Lexeme)
		case p.isMatch(token.LBRACKET):
			pos := p.posOf(p.previous())
			index := p.parseExpression()
			p.consume(token.RBRACKET, "expected ']' after an array index")
			expr = ast.NewBinaryOp(pos, ast.OpArrayIndex, expr, index)
		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.peek()
	pos := p.posOf(tok)

	switch {
	case p.isMatch(token.INT):
		return ast.NewIntLiteral(pos, tok.Literal.(int64))
	case p.isMatch(token.FLOAT):
		return ast.NewFloatLiteral(pos, tok.Literal.(float64))
	case p.isMatch(token.STRING):
		return ast.NewStringLiteral(pos, tok.Literal.(string))
	case p.isMatch(token.CHAR):
		return ast.NewCharLiteral(pos, tok.Literal.(byte))
	case p.isMatch(token.BOOLEAN):
		return ast.NewBoolLiteral(pos, tok.Literal.(bool))
	case p.isMatch(token.LPAREN):
		inner := p.parseExpression()
		p.consume(token.RPAREN, "expected ')' to close a parenthesised expression")
		return inner
	case p.isMatch(token.LBRACKET):
		return p.finishArrayInit(pos)
	case p.isMatch(token.IDENTIFIER):
		return p.finishIdentifierPrimary(tok, pos)
	}

	p.errorf(tok, "expected an expression, found %s", tok.Kind)
	panic("unreachable")
}

func (p *Parser) finishArrayInit(pos compileerror.Position) ast.Expression {
	var elems []ast.Expression
	if !p.check(token.RBRACKET) {
		for {
			elems = append(elems, p.parseExpression())
			if !p.isMatch(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RBRACKET, "expected ']' to close an array literal")
	return ast.NewArrayInit(pos, elems)
}

// finishIdentifierPrimary dispatches a bare identifier into a cast
// (the identifier "cast" followed by `<Type>(expr)`), a function call, a
// struct literal, or a plain variable reference.
func (p *Parser) finishIdentifierPrimary(tok token.Token, pos compileerror.Position) ast.Expression {
	name := tok.Lexeme

	if name == "cast" && p.check(token.LESS) {
		p.advance()
		target := p.parseType()
		p.consume(token.GREATER, "expected '>' to close a cast's target type")
		p.consume(token.LPAREN, "expected '(' after a cast's target type")
		inner := p.parseExpression()
		p.consume(token.RPAREN, "expected ')' to close a cast")
		return ast.NewCast(pos, target, inner)
	}

	if p.isMatch(token.LPAREN) {
		var args []ast.Expression
		if !p.check(token.RPAREN) {
			for {
				args = append(args, p.parseExpression())
				if !p.isMatch(token.COMMA) {
					break
				}
			}
		}
		p.consume(token.RPAREN, "expected ')' after call arguments")
		return ast.NewFunctionCall(pos, name, args)
	}

	if p.noBrace == 0 && p.check(token.LCURLY) {
		return p.finishStructInit(name, pos)
	}

	return ast.NewGetVariable(pos, name)
}

func (p *Parser) finishStructInit(name string, pos compileerror.Position) ast.Expression {
	p.consume(token.LCURLY, "expected '{' to start a struct literal")
	var fields []ast.FieldInit
	for !p.check(token.RCURLY) && !p.atEnd() {
		fieldName := p.consume(token.IDENTIFIER, "expected a field name")
		p.consume(token.COLON, "expected ':' after a field name")
		value := p.parseExpression()
		fields = append(fields, ast.FieldInit{Name: fieldName.Lexeme, Expr: value})
		if !p.isMatch(token.COMMA) {
			break
		}
	}
	p.consume(token.RCURLY, "expected '}' to close a struct literal")
	return ast.NewStructInit(pos, name, fields)
}
