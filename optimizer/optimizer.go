// Package optimizer is the post-order constant folder of spec §4.4.
// Grounded on the reference's optimizer/optimize_ast.c
// (_ast_constant_folding's DO_ON_CHILDREN recursive descent and its
// bool/bool, int/int operator-pair table), running after semantics so
// folded literals can be re-annotated with the type the replaced
// expression already carried.
package optimizer

import (
	"mayoc/ast"
	"mayoc/datatype"
)

// Fold walks every function body in tu, replacing constant-foldable
// binary expressions with their literal result in place. Division and
// modulo by a literal zero are left unfolded (SPEC_FULL.md §5 open
// question decision): codegen still emits the division and the target
// program traps at run time instead of the compiler silently deciding
// the outcome.
func Fold(tu *ast.TranslationUnit) {
	for _, stmt := range tu.Body {
		foldStmt(stmt)
	}
}

func foldStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		foldStmt(s)
	}
}

func foldStmt(stmt ast.Stmt) {
	switch n := stmt.(type) {
	case *ast.FuncDecl:
		foldStmts(n.Body)
	case *ast.VarDecl:
		if n.Initializer != nil {
			n.Initializer = foldExpr(n.Initializer)
		}
	case *ast.If:
		n.Condition = foldExpr(n.Condition)
		foldStmts(n.Then)
		foldStmts(n.Else)
	case *ast.While:
		n.Condition = foldExpr(n.Condition)
		foldStmts(n.Body)
	case *ast.For:
		n.From = foldExpr(n.From)
		n.To = foldExpr(n.To)
		if n.Step != nil {
			n.Step = foldExpr(n.Step)
		}
		foldStmts(n.Body)
	case *ast.Return:
		if n.Value != nil {
			n.Value = foldExpr(n.Value)
		}
	case *ast.ExprStmt:
		n.Expr = foldExpr(n.Expr)
	}
}

// foldExpr recurses into e's children first (post-order, matching
// DO_ON_CHILDREN) then attempts to fold e itself.
func foldExpr(e ast.Expression) ast.Expression {
	switch n := e.(type) {
	case *ast.BinaryOp:
		n.Left = foldExpr(n.Left)
		n.Right = foldExpr(n.Right)
		if n.Op == ast.OpArrayIndex || n.Op == ast.OpAssign {
			return n
		}
		return foldBinary(n)
	case *ast.UnaryOp:
		n.Operand = foldExpr(n.Operand)
		return n
	case *ast.GetMember:
		n.Receiver = foldExpr(n.Receiver)
		return n
	case *ast.FunctionCall:
		for i := range n.Args {
			n.Args[i] = foldExpr(n.Args[i])
		}
		return n
	case *ast.StructInit:
		for i := range n.Fields {
			n.Fields[i].Expr = foldExpr(n.Fields[i].Expr)
		}
		return n
	case *ast.ArrayInit:
		for i := range n.Elements {
			n.Elements[i] = foldExpr(n.Elements[i])
		}
		return n
	case *ast.Cast:
		n.Inner = foldExpr(n.Inner)
		return n
	default:
		return e
	}
}

// foldBinary folds the two operator/operand-kind pairs spec §4.4
// names: bool==/!=bool, and int{+,-,%,==,!=}int. Anything else (float
// arithmetic, comparisons with mixed kinds already rejected by
// semantics) is left for codegen to lower normally.
func foldBinary(n *ast.BinaryOp) ast.Expression {
	if lb, ok := n.Left.(*ast.BoolLiteral); ok {
		if rb, ok := n.Right.(*ast.BoolLiteral); ok {
			return foldBoolPair(n, lb, rb)
		}
	}
	if li, ok := n.Left.(*ast.IntLiteral); ok {
		if ri, ok := n.Right.(*ast.IntLiteral); ok {
			return foldIntPair(n, li, ri)
		}
	}
	return n
}

func foldBoolPair(n *ast.BinaryOp, l, r *ast.BoolLiteral) ast.Expression {
	switch n.Op {
	case ast.OpEqual:
		return boolResult(n, l.Value == r.Value)
	case ast.OpNotEqual:
		return boolResult(n, l.Value != r.Value)
	default:
		return n
	}
}

func foldIntPair(n *ast.BinaryOp, l, r *ast.IntLiteral) ast.Expression {
	switch n.Op {
	case ast.OpAdd:
		return intResult(n, l.Value+r.Value)
	case ast.OpSubtract:
		return intResult(n, l.Value-r.Value)
	case ast.OpModulo:
		if r.Value == 0 {
			return n
		}
		return intResult(n, l.Value%r.Value)
	case ast.OpEqual:
		return boolResult(n, l.Value == r.Value)
	case ast.OpNotEqual:
		return boolResult(n, l.Value != r.Value)
	default:
		return n
	}
}

func intResult(n *ast.BinaryOp, v int64) ast.Expression {
	lit := ast.NewIntLiteral(n.Pos(), v)
	lit.SetType(n.Left.Type())
	return lit
}

func boolResult(n *ast.BinaryOp, v bool) ast.Expression {
	lit := ast.NewBoolLiteral(n.Pos(), v)
	lit.SetType(datatype.Bool)
	return lit
}
