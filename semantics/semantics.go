// Package semantics is the single top-down analysis pass of spec §4.3:
// name resolution, type validity and equality, and per-expression
// ResolvedType annotation. Grounded on the reference's semantics.c
// (_analyze_expression / _analyze_scoped_node / _analyze_global_node,
// ANALYZER_ERROR fatal-abort), restructured around compileerror's
// panic/recover pair instead of setjmp/longjmp.
package semantics

import (
	"fmt"

	"mayoc/ast"
	"mayoc/compileerror"
	"mayoc/datatype"
	"mayoc/symtable"
)

// Analyzer carries the two global namespaces (functions, structs) plus
// the current lexical variable scope and enclosing-function context
// needed to check `return`.
type Analyzer struct {
	file        string
	functions   map[string]*ast.FuncDecl
	structs     map[string]*ast.StructDecl
	structNames map[string]bool

	scope      *symtable.Scope
	currentFn  *ast.FuncDecl
	loopDepth  int
}

// Analyze runs name resolution and type checking over tu, mutating each
// expression's ResolvedType in place. It returns the first semantic
// error encountered.
func Analyze(file string, tu *ast.TranslationUnit) (err error) {
	defer compileerror.Recover(&err)

	a := &Analyzer{
		file:        file,
		functions:   map[string]*ast.FuncDecl{},
		structs:     map[string]*ast.StructDecl{},
		structNames: map[string]bool{},
		scope:       symtable.New(),
	}
	a.registerDeclarations(tu)
	a.checkStructMembers()
	for _, stmt := range tu.Body {
		if fn, ok := stmt.(*ast.FuncDecl); ok && !fn.External {
			a.checkFuncBody(fn)
		}
	}
	return nil
}

func (a *Analyzer) abort(pos compileerror.Position, format string, args ...any) {
	compileerror.Abort(compileerror.SemanticError{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// registerDeclarations is the forward-declaration pass: every function
// and struct name is visible throughout the translation unit regardless
// of textual order.
func (a *Analyzer) registerDeclarations(tu *ast.TranslationUnit) {
	for _, stmt := range tu.Body {
		switch n := stmt.(type) {
		case *ast.FuncDecl:
			if _, dup := a.functions[n.Name]; dup {
				a.abort(n.Pos(), "function %q is already declared", n.Name)
			}
			a.functions[n.Name] = n
		case *ast.StructDecl:
			if _, dup := a.structs[n.Name]; dup {
				a.abort(n.Pos(), "struct %q is already declared", n.Name)
			}
			a.structs[n.Name] = n
			a.structNames[n.Name] = true
		case *ast.Import:
			// no cross-file resolution; recorded for codegen only.
		default:
			a.abort(stmt.Pos(), "only import, struct and function declarations are allowed at global scope")
		}
	}
}

// checkStructMembers validates member types and rejects nested
// aggregates up front (SPEC_FULL.md §5 decision: a struct field whose
// type is itself a struct is a semantic error, not a later layout
// failure in codegen).
func (a *Analyzer) checkStructMembers() {
	for _, sd := range a.structs {
		seen := map[string]bool{}
		for _, m := range sd.Members {
			if seen[m.Name] {
				a.abort(sd.Pos(), "struct %q has a duplicate member %q", sd.Name, m.Name)
			}
			seen[m.Name] = true
			if !datatype.IsValid(m.Type, a.structNames) {
				a.abort(sd.Pos(), "struct %q member %q has an unknown type %s", sd.Name, m.Name, m.Type)
			}
			// Only a member whose own (non-pointer) type names a struct is
			// a nested aggregate; Underlying would also strip a pointer
			// layer and wrongly flag *Inner, so check m.Type itself here.
			if m.Type.Kind == datatype.Primitive && a.structNames[m.Type.Name] {
				a.abort(sd.Pos(), "struct %q member %q embeds aggregate type %s directly; use a pointer instead", sd.Name, m.Name, m.Type.Name)
			}
		}
	}
}

func (a *Analyzer) checkFuncBody(fn *ast.FuncDecl) {
	a.currentFn = fn
	a.pushScope()
	defer a.popScope()

	for _, p := range fn.Params {
		if p.Variadic {
			continue
		}
		if !datatype.IsValid(p.Type, a.structNames) {
			a.abort(fn.Pos(), "function %q parameter %q has an unknown type %s", fn.Name, p.Name, p.Type)
		}
		a.scope.Define(p.Name, p.Type)
	}
	if !datatype.IsValid(fn.ReturnType, a.structNames) {
		a.abort(fn.Pos(), "function %q has an unknown return type %s", fn.Name, fn.ReturnType)
	}
	if fn.Name == "main" && !datatype.Equal(fn.ReturnType, datatype.NewPrimitive("i32")) {
		a.abort(fn.Pos(), "function \"main\" must return i32, found %s", fn.ReturnType)
	}
	a.checkStmts(fn.Body)
}

func (a *Analyzer) pushScope() { a.scope = symtable.NewChild(a.scope) }
func (a *Analyzer) popScope()  { a.scope = a.scope.Parent() }

func (a *Analyzer) checkStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		a.checkStmt(s)
	}
}

func (a *Analyzer) checkStmt(stmt ast.Stmt) {
	switch n := stmt.(type) {
	case *ast.VarDecl:
		a.checkVarDecl(n)
	case *ast.If:
		a.checkCondition(n.Condition)
		a.pushScope()
		a.checkStmts(n.Then)
		a.popScope()
		a.pushScope()
		a.checkStmts(n.Else)
		a.popScope()
	case *ast.While:
		a.checkCondition(n.Condition)
		a.loopDepth++
		a.pushScope()
		a.checkStmts(n.Body)
		a.popScope()
		a.loopDepth--
	case *ast.For:
		a.checkForLoop(n)
	case *ast.Return:
		a.checkReturn(n)
	case *ast.Break:
		if a.loopDepth == 0 {
			a.abort(n.Pos(), "'break' used outside of a loop")
		}
	case *ast.Continue:
		if a.loopDepth == 0 {
			a.abort(n.Pos(), "'continue' used outside of a loop")
		}
	case *ast.ExprStmt:
		a.typeOf(n.Expr)
	default:
		a.abort(stmt.Pos(), "unsupported statement in a function body")
	}
}

func (a *Analyzer) checkCondition(cond ast.Expression) {
	t := a.typeOf(cond)
	if !datatype.Equal(t, datatype.Bool) {
		a.abort(cond.Pos(), "condition must be bool, found %s", t)
	}
}

func (a *Analyzer) checkVarDecl(n *ast.VarDecl) {
	var declared *datatype.Type
	if n.DeclaredType != nil {
		if !datatype.IsValid(n.DeclaredType, a.structNames) {
			a.abort(n.Pos(), "variable %q has an unknown type %s", n.Name, n.DeclaredType)
		}
		declared = n.DeclaredType
	}
	if n.Initializer != nil {
		initType := a.typeOf(n.Initializer)
		if declared == nil {
			declared = initType
		} else if !datatype.Equal(declared, initType) {
			a.abort(n.Pos(), "cannot initialise %q of type %s with a value of type %s", n.Name, declared, initType)
		}
	}
	if declared == nil {
		a.abort(n.Pos(), "variable %q needs either a declared type or an initialiser", n.Name)
	}
	if a.scope.DefinedHere(n.Name) {
		a.abort(n.Pos(), "%q is already declared in this scope", n.Name)
	}
	a.scope.Define(n.Name, declared)
}

func (a *Analyzer) checkForLoop(n *ast.For) {
	fromType := a.typeOf(n.From)
	toType := a.typeOf(n.To)
	if !isInteger(fromType) {
		a.abort(n.From.Pos(), "for-loop range bounds must be integers, found %s", fromType)
	}
	if !datatype.Equal(fromType, toType) {
		a.abort(n.Pos(), "for-loop range bounds must share a type, found %s and %s", fromType, toType)
	}
	if n.Step != nil {
		stepType := a.typeOf(n.Step)
		if !datatype.Equal(stepType, fromType) {
			a.abort(n.Step.Pos(), "for-loop step must match the range type %s, found %s", fromType, stepType)
		}
	}
	a.loopDepth++
	a.pushScope()
	a.scope.Define(n.Identifier, fromType)
	a.checkStmts(n.Body)
	a.popScope()
	a.loopDepth--
}

func (a *Analyzer) checkReturn(n *ast.Return) {
	want := a.currentFn.ReturnType
	if n.Value == nil {
		if !datatype.Equal(want, datatype.NewPrimitive("void")) {
			a.abort(n.Pos(), "function %q must return a value of type %s", a.currentFn.Name, want)
		}
		return
	}
	got := a.typeOf(n.Value)
	if !datatype.Equal(want, got) {
		a.abort(n.Pos(), "function %q returns %s but this statement returns %s", a.currentFn.Name, want, got)
	}
}

// typeOf resolves and returns e's type, annotating e via SetType as a
// side effect of Accept dispatch.
func (a *Analyzer) typeOf(e ast.Expression) *datatype.Type {
	e.Accept(a)
	return e.Type()
}

// ---- ast.ExpressionVisitor ----

func (a *Analyzer) VisitGetVariable(n *ast.GetVariable) any {
	v, ok := a.scope.Resolve(n.Name)
	if !ok {
		a.abort(n.Pos(), "undefined variable %q", n.Name)
	}
	t := v.(*datatype.Type)
	n.SetType(t)
	return t
}

func (a *Analyzer) VisitGetMember(n *ast.GetMember) any {
	recvType := a.typeOf(n.Receiver)
	u := datatype.Underlying(recvType)
	if u == nil || u.Kind != datatype.Primitive || !a.structNames[u.Name] {
		a.abort(n.Pos(), "%s is not a struct type", recvType)
	}
	sd := a.structs[u.Name]
	for _, m := range sd.Members {
		if m.Name == n.Member {
			n.SetType(m.Type)
			return m.Type
		}
	}
	a.abort(n.Pos(), "struct %q has no member %q", sd.Name, n.Member)
	panic("unreachable")
}

func (a *Analyzer) VisitFunctionCall(n *ast.FunctionCall) any {
	fn, ok := a.functions[n.Name]
	if !ok {
		a.abort(n.Pos(), "call to undeclared function %q", n.Name)
	}
	fixed := fn.FixedArgCount()
	if len(n.Args) < fixed || (!fn.IsVariadic() && len(n.Args) != fixed) {
		a.abort(n.Pos(), "function %q expects %d argument(s), found %d", n.Name, fixed, len(n.Args))
	}
	for i, arg := range n.Args {
		argType := a.typeOf(arg)
		if i >= fixed {
			continue // variadic tail is promoted by codegen, not type-checked here
		}
		if !datatype.Equal(fn.Params[i].Type, argType) {
			a.abort(arg.Pos(), "function %q argument %d expects %s, found %s", n.Name, i+1, fn.Params[i].Type, argType)
		}
	}
	n.SetType(fn.ReturnType)
	return fn.ReturnType
}

func (a *Analyzer) VisitStructInit(n *ast.StructInit) any {
	sd, ok := a.structs[n.TypeName]
	if !ok {
		a.abort(n.Pos(), "undeclared struct type %q", n.TypeName)
	}
	if len(n.Fields) != len(sd.Members) {
		a.abort(n.Pos(), "struct %q literal has %d field(s), expected %d", n.TypeName, len(n.Fields), len(sd.Members))
	}
	for i, f := range n.Fields {
		member := sd.Members[i]
		if f.Name != member.Name {
			a.abort(n.Pos(), "struct %q literal field %d is %q, expected %q", n.TypeName, i+1, f.Name, member.Name)
		}
		fieldType := a.typeOf(f.Expr)
		if !datatype.Equal(member.Type, fieldType) {
			a.abort(f.Expr.Pos(), "struct %q field %q expects %s, found %s", n.TypeName, f.Name, member.Type, fieldType)
		}
	}
	t := datatype.NewPrimitive(n.TypeName)
	n.SetType(t)
	return t
}

func (a *Analyzer) VisitArrayInit(n *ast.ArrayInit) any {
	if len(n.Elements) == 0 {
		a.abort(n.Pos(), "array literal must have at least one element")
	}
	elemType := a.typeOf(n.Elements[0])
	for _, e := range n.Elements[1:] {
		t := a.typeOf(e)
		if !datatype.Equal(elemType, t) {
			a.abort(e.Pos(), "array literal elements must share a type: expected %s, found %s", elemType, t)
		}
	}
	t := datatype.NewArray(elemType, len(n.Elements))
	n.SetType(t)
	return t
}

func (a *Analyzer) VisitCast(n *ast.Cast) any {
	a.typeOf(n.Inner)
	if !datatype.IsValid(n.Target, a.structNames) {
		a.abort(n.Pos(), "cast to unknown type %s", n.Target)
	}
	n.SetType(n.Target)
	return n.Target
}

// VisitBinaryOp implements the array-index, assignment and arithmetic
// typing rules of spec §4.3. Pointer/array-index decay and the
// signed/unsigned comparison rules live in datatype.Equal / IsSigned so
// both this pass and codegen read them from one place.
func (a *Analyzer) VisitBinaryOp(n *ast.BinaryOp) any {
	if n.Op == ast.OpArrayIndex {
		return a.visitArrayIndex(n)
	}
	if n.Op == ast.OpAssign {
		return a.visitAssign(n)
	}

	left := a.typeOf(n.Left)
	right := a.typeOf(n.Right)

	switch n.Op {
	case ast.OpAnd, ast.OpOr:
		if !datatype.Equal(left, datatype.Bool) || !datatype.Equal(right, datatype.Bool) {
			a.abort(n.Pos(), "logical operator expects bool operands, found %s and %s", left, right)
		}
		n.SetType(datatype.Bool)
		return datatype.Bool
	case ast.OpEqual, ast.OpNotEqual, ast.OpLessThan, ast.OpLessOrEqual, ast.OpGreaterThan, ast.OpGreaterOrEqual:
		if !datatype.Equal(left, right) {
			a.abort(n.Pos(), "cannot compare %s with %s", left, right)
		}
		n.SetType(datatype.Bool)
		return datatype.Bool
	default: // arithmetic
		if !datatype.Equal(left, right) {
			a.abort(n.Pos(), "arithmetic operator expects matching operand types, found %s and %s", left, right)
		}
		n.SetType(left)
		return left
	}
}

func (a *Analyzer) visitArrayIndex(n *ast.BinaryOp) any {
	receiver := a.typeOf(n.Left)
	index := a.typeOf(n.Right)
	if !isInteger(index) {
		a.abort(n.Right.Pos(), "array index must be an integer, found %s", index)
	}
	if receiver.Kind != datatype.Array && receiver.Kind != datatype.Pointer {
		a.abort(n.Left.Pos(), "%s is not indexable", receiver)
	}
	n.SetType(receiver.Base)
	return receiver.Base
}

func (a *Analyzer) visitAssign(n *ast.BinaryOp) any {
	if !isAssignable(n.Left) {
		a.abort(n.Left.Pos(), "left side of an assignment must be a variable, array index or member access")
	}
	left := a.typeOf(n.Left)
	right := a.typeOf(n.Right)
	if !datatype.Equal(left, right) {
		a.abort(n.Pos(), "cannot assign a value of type %s to a target of type %s", right, left)
	}
	n.SetType(left)
	return left
}

var integerPrimitives = map[string]bool{
	"i8": true, "u8": true, "i16": true, "u16": true,
	"i32": true, "u32": true, "i64": true, "u64": true,
}

func isInteger(t *datatype.Type) bool {
	u := datatype.Underlying(t)
	return u != nil && u.Kind == datatype.Primitive && integerPrimitives[u.Name]
}

func isAssignable(e ast.Expression) bool {
	switch n := e.(type) {
	case *ast.GetVariable, *ast.GetMember:
		return true
	case *ast.BinaryOp:
		return n.Op == ast.OpArrayIndex
	case *ast.UnaryOp:
		return n.Op == ast.OpDereference
	default:
		return false
	}
}

// VisitUnaryOp implements SPEC_FULL.md §5 decision 4: `&x` requires an
// addressable operand and produces a pointer to its type; `*p` requires
// a pointer operand and produces its base type (a real load, not a
// pass-through of the pointer's own type).
func (a *Analyzer) VisitUnaryOp(n *ast.UnaryOp) any {
	switch n.Op {
	case ast.OpAddressOf:
		if !isAssignable(n.Operand) {
			a.abort(n.Operand.Pos(), "cannot take the address of a non-addressable expression")
		}
		t := a.typeOf(n.Operand)
		p := datatype.NewPointer(t)
		n.SetType(p)
		return p
	case ast.OpDereference:
		t := a.typeOf(n.Operand)
		if t.Kind != datatype.Pointer {
			a.abort(n.Operand.Pos(), "cannot dereference non-pointer type %s", t)
		}
		n.SetType(t.Base)
		return t.Base
	default: // OpNegate, overloaded for both '!' and unary '-'
		t := a.typeOf(n.Operand)
		n.SetType(t)
		return t
	}
}

func (a *Analyzer) VisitBoolLiteral(n *ast.BoolLiteral) any {
	n.SetType(datatype.Bool)
	return datatype.Bool
}

func (a *Analyzer) VisitCharLiteral(n *ast.CharLiteral) any {
	n.SetType(datatype.Char)
	return datatype.Char
}

func (a *Analyzer) VisitIntLiteral(n *ast.IntLiteral) any {
	t := datatype.NewPrimitive("i32")
	n.SetType(t)
	return t
}

func (a *Analyzer) VisitFloatLiteral(n *ast.FloatLiteral) any {
	n.SetType(datatype.F32)
	return datatype.F32
}

func (a *Analyzer) VisitStringLiteral(n *ast.StringLiteral) any {
	t := datatype.NewArray(datatype.Char, len(n.Value)+1)
	n.SetType(t)
	return t
}
