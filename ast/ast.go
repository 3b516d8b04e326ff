// Package ast defines the tagged abstract syntax graph of spec §3:
// translation unit, import, function/struct/variable declaration, field
// initialiser, function call, struct/array initialiser list, cast,
// if/while/for, return/break/continue, get-variable/get-member,
// binary/unary op, and the five literal kinds. Every node carries a
// source position and (for expressions) a ResolvedType slot filled by
// the semantic analyzer and read by the optimizer and IR generator.
//
// The package follows informatter-nilan's visitor-pattern Accept/Visit
// split between expressions and statements (ast/interfaces.go,
// ast/expressions.go, ast/statements.go), widened to the full node set.
package ast

import (
	"mayoc/compileerror"
	"mayoc/datatype"
	"mayoc/token"
)

// Expression is any AST node that produces a value.
type Expression interface {
	Accept(v ExpressionVisitor) any
	Pos() compileerror.Position
	Type() *datatype.Type
	SetType(t *datatype.Type)
}

// Stmt is any AST node that does not itself produce a value: a
// declaration, a control-flow construct, or an expression used for
// effect.
type Stmt interface {
	Accept(v StmtVisitor) any
	Pos() compileerror.Position
}

type exprBase struct {
	position     compileerror.Position
	resolvedType *datatype.Type
}

func (e *exprBase) Pos() compileerror.Position    { return e.position }
func (e *exprBase) Type() *datatype.Type          { return e.resolvedType }
func (e *exprBase) SetType(t *datatype.Type)      { e.resolvedType = t }

type stmtBase struct {
	position compileerror.Position
}

func (s *stmtBase) Pos() compileerror.Position { return s.position }

// ---- Operator tags (spec §3 "Operator tag") ----

type BinaryOperator int

const (
	OpAdd BinaryOperator = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpEqual
	OpNotEqual
	OpLessThan
	OpLessOrEqual
	OpGreaterThan
	OpGreaterOrEqual
	OpAnd
	OpOr
	OpArrayIndex
	OpAssign
)

type UnaryOperator int

const (
	OpAddressOf UnaryOperator = iota
	OpDereference
	OpNegate
)

// ---- Declarations / top-level and statement nodes ----

// TranslationUnit is the root node: an ordered sequence of top-level
// declarations.
type TranslationUnit struct {
	stmtBase
	Body []Stmt
}

func (n *TranslationUnit) Accept(v StmtVisitor) any { return v.VisitTranslationUnit(n) }

func NewTranslationUnit(pos compileerror.Position, body []Stmt) *TranslationUnit {
	return &TranslationUnit{stmtBase{pos}, body}
}

// Import is a parsed-but-unresolved module path (spec §1 non-goal: no
// cross-file resolution).
type Import struct {
	stmtBase
	Path string
}

func (n *Import) Accept(v StmtVisitor) any { return v.VisitImport(n) }

func NewImport(pos compileerror.Position, path string) *Import {
	return &Import{stmtBase{pos}, path}
}

// Param is one function parameter: a restricted VariableDecl with no
// initialiser, or the variadic sentinel when Variadic is true.
type Param struct {
	Name     string
	Type     *datatype.Type
	Variadic bool
}

// FuncDecl is a function declaration: name, parameters, return type,
// body (empty for extern declarations), and the External flag that
// suppresses body emission.
type FuncDecl struct {
	stmtBase
	Name       string
	Params     []Param
	ReturnType *datatype.Type
	Body       []Stmt
	External   bool
}

func (n *FuncDecl) Accept(v StmtVisitor) any { return v.VisitFuncDecl(n) }

func NewFuncDecl(pos compileerror.Position, name string, params []Param, ret *datatype.Type, body []Stmt, external bool) *FuncDecl {
	return &FuncDecl{stmtBase{pos}, name, params, ret, body, external}
}

// FixedArgCount returns the number of non-variadic parameters, used by
// codegen to locate the `...` boundary: an explicit count on the
// declaration rather than a ghost parameter in every call's argument
// list.
func (n *FuncDecl) FixedArgCount() int {
	if len(n.Params) > 0 && n.Params[len(n.Params)-1].Variadic {
		return len(n.Params) - 1
	}
	return len(n.Params)
}

func (n *FuncDecl) IsVariadic() bool {
	return len(n.Params) > 0 && n.Params[len(n.Params)-1].Variadic
}

// StructMember is one field of a struct declaration.
type StructMember struct {
	Name string
	Type *datatype.Type
}

// StructDecl is a struct type declaration: name and ordered member list.
type StructDecl struct {
	stmtBase
	Name    string
	Members []StructMember
}

func (n *StructDecl) Accept(v StmtVisitor) any { return v.VisitStructDecl(n) }

func NewStructDecl(pos compileerror.Position, name string, members []StructMember) *StructDecl {
	return &StructDecl{stmtBase{pos}, name, members}
}

// VarDecl is a variable declaration: name, declared type, and an
// optional initialiser (nil when the declaration has no `= expr`).
type VarDecl struct {
	stmtBase
	Name        string
	DeclaredType *datatype.Type
	Initializer Expression
}

func (n *VarDecl) Accept(v StmtVisitor) any { return v.VisitVarDecl(n) }

func NewVarDecl(pos compileerror.Position, name string, declared *datatype.Type, init Expression) *VarDecl {
	return &VarDecl{stmtBase{pos}, name, declared, init}
}

// If is a conditional with an optional else-body.
type If struct {
	stmtBase
	Condition Expression
	Then      []Stmt
	Else      []Stmt
}

func (n *If) Accept(v StmtVisitor) any { return v.VisitIf(n) }

func NewIf(pos compileerror.Position, cond Expression, then, els []Stmt) *If {
	return &If{stmtBase{pos}, cond, then, els}
}

// While loops while Condition is truthy.
type While struct {
	stmtBase
	Condition Expression
	Body      []Stmt
}

func (n *While) Accept(v StmtVisitor) any { return v.VisitWhile(n) }

func NewWhile(pos compileerror.Position, cond Expression, body []Stmt) *While {
	return &While{stmtBase{pos}, cond, body}
}

// For is `for id in from..to [step N] {}` (SPEC_FULL.md §4 supplements
// the original's hardcoded step=1/reverse=false with a real step clause
// and range-direction-derived Reverse).
type For struct {
	stmtBase
	Identifier string
	From, To   Expression
	Step       Expression // nil implies a step of 1
	Inclusive  bool       // true for `..=`
	Body       []Stmt
}

func (n *For) Accept(v StmtVisitor) any { return v.VisitFor(n) }

func NewFor(pos compileerror.Position, id string, from, to, step Expression, inclusive bool, body []Stmt) *For {
	return &For{stmtBase{pos}, id, from, to, step, inclusive, body}
}

// Return optionally carries a value expression.
type Return struct {
	stmtBase
	Value Expression
}

func (n *Return) Accept(v StmtVisitor) any { return v.VisitReturn(n) }

func NewReturn(pos compileerror.Position, value Expression) *Return {
	return &Return{stmtBase{pos}, value}
}

type Break struct{ stmtBase }

func (n *Break) Accept(v StmtVisitor) any { return v.VisitBreak(n) }
func NewBreak(pos compileerror.Position) *Break { return &Break{stmtBase{pos}} }

type Continue struct{ stmtBase }

func (n *Continue) Accept(v StmtVisitor) any { return v.VisitContinue(n) }
func NewContinue(pos compileerror.Position) *Continue { return &Continue{stmtBase{pos}} }

// ExprStmt is an expression evaluated for effect, followed by `;`.
type ExprStmt struct {
	stmtBase
	Expr Expression
}

func (n *ExprStmt) Accept(v StmtVisitor) any { return v.VisitExprStmt(n) }

func NewExprStmt(pos compileerror.Position, expr Expression) *ExprStmt {
	return &ExprStmt{stmtBase{pos}, expr}
}

// ---- Expression nodes ----

// FieldInit is a member name + expression, used inside struct
// initialiser lists. It is not itself an Expression (it never has a
// type of its own); it is plain payload data on StructInit.
type FieldInit struct {
	Name string
	Expr Expression
}

// GetVariable is an identifier reference.
type GetVariable struct {
	exprBase
	Name string
}

func (n *GetVariable) Accept(v ExpressionVisitor) any { return v.VisitGetVariable(n) }

func NewGetVariable(pos compileerror.Position, name string) *GetVariable {
	return &GetVariable{exprBase{position: pos}, name}
}

// GetMember is inner-expression + member name (`.` access).
type GetMember struct {
	exprBase
	Receiver Expression
	Member   string
}

func (n *GetMember) Accept(v ExpressionVisitor) any { return v.VisitGetMember(n) }

func NewGetMember(pos compileerror.Position, recv Expression, member string) *GetMember {
	return &GetMember{exprBase{position: pos}, recv, member}
}

// FunctionCall is a callee name + ordered argument expressions.
type FunctionCall struct {
	exprBase
	Name string
	Args []Expression
}

func (n *FunctionCall) Accept(v ExpressionVisitor) any { return v.VisitFunctionCall(n) }

func NewFunctionCall(pos compileerror.Position, name string, args []Expression) *FunctionCall {
	return &FunctionCall{exprBase{position: pos}, name, args}
}

// StructInit is a type name + ordered field initialisers.
type StructInit struct {
	exprBase
	TypeName string
	Fields   []FieldInit
}

func (n *StructInit) Accept(v ExpressionVisitor) any { return v.VisitStructInit(n) }

func NewStructInit(pos compileerror.Position, typeName string, fields []FieldInit) *StructInit {
	return &StructInit{exprBase{position: pos}, typeName, fields}
}

// ArrayInit is an ordered list of element expressions.
type ArrayInit struct {
	exprBase
	Elements []Expression
}

func (n *ArrayInit) Accept(v ExpressionVisitor) any { return v.VisitArrayInit(n) }

func NewArrayInit(pos compileerror.Position, elems []Expression) *ArrayInit {
	return &ArrayInit{exprBase{position: pos}, elems}
}

// Cast is target datatype + inner expression.
type Cast struct {
	exprBase
	Target *datatype.Type
	Inner  Expression
}

func (n *Cast) Accept(v ExpressionVisitor) any { return v.VisitCast(n) }

func NewCast(pos compileerror.Position, target *datatype.Type, inner Expression) *Cast {
	return &Cast{exprBase{position: pos}, target, inner}
}

// BinaryOp is operator tag + left + right. Assignment (spec: "left side
// must be a variable, array-index, or get-member") is represented as a
// BinaryOp with Op == OpAssign, per spec §3's operator tag listing
// ASSIGN among the binary operators.
type BinaryOp struct {
	exprBase
	Op    BinaryOperator
	Left  Expression
	Right Expression
}

func (n *BinaryOp) Accept(v ExpressionVisitor) any { return v.VisitBinaryOp(n) }

func NewBinaryOp(pos compileerror.Position, op BinaryOperator, left, right Expression) *BinaryOp {
	return &BinaryOp{exprBase{position: pos}, op, left, right}
}

// UnaryOp is operator tag + operand.
type UnaryOp struct {
	exprBase
	Op      UnaryOperator
	Operand Expression
}

func (n *UnaryOp) Accept(v ExpressionVisitor) any { return v.VisitUnaryOp(n) }

func NewUnaryOp(pos compileerror.Position, op UnaryOperator, operand Expression) *UnaryOp {
	return &UnaryOp{exprBase{position: pos}, op, operand}
}

// ---- Literals ----

type BoolLiteral struct {
	exprBase
	Value bool
}

func (n *BoolLiteral) Accept(v ExpressionVisitor) any { return v.VisitBoolLiteral(n) }
func NewBoolLiteral(pos compileerror.Position, value bool) *BoolLiteral {
	return &BoolLiteral{exprBase{position: pos}, value}
}

type CharLiteral struct {
	exprBase
	Value byte
}

func (n *CharLiteral) Accept(v ExpressionVisitor) any { return v.VisitCharLiteral(n) }
func NewCharLiteral(pos compileerror.Position, value byte) *CharLiteral {
	return &CharLiteral{exprBase{position: pos}, value}
}

type IntLiteral struct {
	exprBase
	Value int64
}

func (n *IntLiteral) Accept(v ExpressionVisitor) any { return v.VisitIntLiteral(n) }
func NewIntLiteral(pos compileerror.Position, value int64) *IntLiteral {
	return &IntLiteral{exprBase{position: pos}, value}
}

type FloatLiteral struct {
	exprBase
	Value float64
}

func (n *FloatLiteral) Accept(v ExpressionVisitor) any { return v.VisitFloatLiteral(n) }
func NewFloatLiteral(pos compileerror.Position, value float64) *FloatLiteral {
	return &FloatLiteral{exprBase{position: pos}, value}
}

type StringLiteral struct {
	exprBase
	Value string
}

func (n *StringLiteral) Accept(v ExpressionVisitor) any { return v.VisitStringLiteral(n) }
func NewStringLiteral(pos compileerror.Position, value string) *StringLiteral {
	return &StringLiteral{exprBase{position: pos}, value}
}

// TokenToBinaryOp maps a token kind to its binary operator tag, used by
// the parser's precedence-climbing loop.
func TokenToBinaryOp(kind token.TokenType) (BinaryOperator, bool) {
	switch kind {
	case token.PLUS:
		return OpAdd, true
	case token.MINUS:
		return OpSubtract, true
	case token.STAR:
		return OpMultiply, true
	case token.SLASH:
		return OpDivide, true
	case token.MODULO:
		return OpModulo, true
	case token.EQUAL_EQUAL:
		return OpEqual, true
	case token.NOT_EQUAL:
		return OpNotEqual, true
	case token.LESS:
		return OpLessThan, true
	case token.LESS_EQUAL:
		return OpLessOrEqual, true
	case token.GREATER:
		return OpGreaterThan, true
	case token.GREATER_EQUAL:
		return OpGreaterOrEqual, true
	case token.AND:
		return OpAnd, true
	case token.OR:
		return OpOr, true
	case token.LBRACKET:
		return OpArrayIndex, true
	case token.ASSIGN:
		return OpAssign, true
	default:
		return 0, false
	}
}
