// Package astdump renders an analyzed translation unit as a JSON-friendly
// tree, standing in for nilan's parser/printer.go AST dump but built on
// the same visitor interfaces the semantic analyzer implements rather than
// nilan's dedicated expression/statement type switches.
package astdump

import "mayoc/ast"

// Dump walks tu and returns a tree of maps and slices suitable for
// json.MarshalIndent, one entry per top-level declaration in source order.
func Dump(tu *ast.TranslationUnit) any {
	d := &dumper{}
	nodes := make([]any, 0, len(tu.Body))
	for _, stmt := range tu.Body {
		nodes = append(nodes, stmt.Accept(d))
	}
	return nodes
}

type dumper struct{}

func (d *dumper) stmts(stmts []ast.Stmt) []any {
	out := make([]any, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, s.Accept(d))
	}
	return out
}

func (d *dumper) expr(e ast.Expression) any {
	if e == nil {
		return nil
	}
	return e.Accept(d)
}

func typeName(e ast.Expression) string {
	if e == nil || e.Type() == nil {
		return ""
	}
	return e.Type().String()
}

// ---- ast.StmtVisitor ----

func (d *dumper) VisitTranslationUnit(n *ast.TranslationUnit) any {
	return map[string]any{"node": "TranslationUnit", "body": d.stmts(n.Body)}
}

func (d *dumper) VisitImport(n *ast.Import) any {
	return map[string]any{"node": "Import", "path": n.Path}
}

func (d *dumper) VisitFuncDecl(n *ast.FuncDecl) any {
	params := make([]any, 0, len(n.Params))
	for _, p := range n.Params {
		if p.Variadic {
			params = append(params, map[string]any{"variadic": true})
			continue
		}
		params = append(params, map[string]any{"name": p.Name, "type": p.Type.String()})
	}
	return map[string]any{
		"node":     "FuncDecl",
		"name":     n.Name,
		"params":   params,
		"return":   n.ReturnType.String(),
		"external": n.External,
		"body":     d.stmts(n.Body),
	}
}

func (d *dumper) VisitStructDecl(n *ast.StructDecl) any {
	members := make([]any, 0, len(n.Members))
	for _, m := range n.Members {
		members = append(members, map[string]any{"name": m.Name, "type": m.Type.String()})
	}
	return map[string]any{"node": "StructDecl", "name": n.Name, "members": members}
}

func (d *dumper) VisitVarDecl(n *ast.VarDecl) any {
	out := map[string]any{"node": "VarDecl", "name": n.Name}
	if n.DeclaredType != nil {
		out["declaredType"] = n.DeclaredType.String()
	}
	if n.Initializer != nil {
		out["init"] = d.expr(n.Initializer)
	}
	return out
}

func (d *dumper) VisitIf(n *ast.If) any {
	return map[string]any{
		"node":      "If",
		"condition": d.expr(n.Condition),
		"then":      d.stmts(n.Then),
		"else":      d.stmts(n.Else),
	}
}

func (d *dumper) VisitWhile(n *ast.While) any {
	return map[string]any{"node": "While", "condition": d.expr(n.Condition), "body": d.stmts(n.Body)}
}

func (d *dumper) VisitFor(n *ast.For) any {
	out := map[string]any{
		"node":       "For",
		"identifier": n.Identifier,
		"from":       d.expr(n.From),
		"to":         d.expr(n.To),
		"inclusive":  n.Inclusive,
		"body":       d.stmts(n.Body),
	}
	if n.Step != nil {
		out["step"] = d.expr(n.Step)
	}
	return out
}

func (d *dumper) VisitReturn(n *ast.Return) any {
	out := map[string]any{"node": "Return"}
	if n.Value != nil {
		out["value"] = d.expr(n.Value)
	}
	return out
}

func (d *dumper) VisitBreak(n *ast.Break) any       { return map[string]any{"node": "Break"} }
func (d *dumper) VisitContinue(n *ast.Continue) any { return map[string]any{"node": "Continue"} }

func (d *dumper) VisitExprStmt(n *ast.ExprStmt) any {
	return map[string]any{"node": "ExprStmt", "expr": d.expr(n.Expr)}
}

// ---- ast.ExpressionVisitor ----

func (d *dumper) VisitGetVariable(n *ast.GetVariable) any {
	return map[string]any{"node": "GetVariable", "name": n.Name, "type": typeName(n)}
}

func (d *dumper) VisitGetMember(n *ast.GetMember) any {
	return map[string]any{"node": "GetMember", "receiver": d.expr(n.Receiver), "member": n.Member, "type": typeName(n)}
}

func (d *dumper) VisitFunctionCall(n *ast.FunctionCall) any {
	args := make([]any, 0, len(n.Args))
	for _, a := range n.Args {
		args = append(args, d.expr(a))
	}
	return map[string]any{"node": "FunctionCall", "name": n.Name, "args": args, "type": typeName(n)}
}

func (d *dumper) VisitStructInit(n *ast.StructInit) any {
	fields := make([]any, 0, len(n.Fields))
	for _, f := range n.Fields {
		fields = append(fields, map[string]any{"name": f.Name, "expr": d.expr(f.Expr)})
	}
	return map[string]any{"node": "StructInit", "type": n.TypeName, "fields": fields}
}

func (d *dumper) VisitArrayInit(n *ast.ArrayInit) any {
	elems := make([]any, 0, len(n.Elements))
	for _, e := range n.Elements {
		elems = append(elems, d.expr(e))
	}
	return map[string]any{"node": "ArrayInit", "elements": elems, "type": typeName(n)}
}

func (d *dumper) VisitCast(n *ast.Cast) any {
	return map[string]any{"node": "Cast", "target": n.Target.String(), "inner": d.expr(n.Inner)}
}

var binaryOpNames = map[ast.BinaryOperator]string{
	ast.OpAdd: "+", ast.OpSubtract: "-", ast.OpMultiply: "*", ast.OpDivide: "/",
	ast.OpModulo: "%", ast.OpEqual: "==", ast.OpNotEqual: "!=",
	ast.OpLessThan: "<", ast.OpLessOrEqual: "<=", ast.OpGreaterThan: ">",
	ast.OpGreaterOrEqual: ">=", ast.OpAnd: "&&", ast.OpOr: "||",
	ast.OpArrayIndex: "[]", ast.OpAssign: "=",
}

var unaryOpNames = map[ast.UnaryOperator]string{
	ast.OpAddressOf: "&", ast.OpDereference: "*", ast.OpNegate: "!/-",
}

func (d *dumper) VisitBinaryOp(n *ast.BinaryOp) any {
	return map[string]any{
		"node": "BinaryOp", "op": binaryOpNames[n.Op],
		"left": d.expr(n.Left), "right": d.expr(n.Right), "type": typeName(n),
	}
}

func (d *dumper) VisitUnaryOp(n *ast.UnaryOp) any {
	return map[string]any{
		"node": "UnaryOp", "op": unaryOpNames[n.Op],
		"operand": d.expr(n.Operand), "type": typeName(n),
	}
}

func (d *dumper) VisitBoolLiteral(n *ast.BoolLiteral) any {
	return map[string]any{"node": "BoolLiteral", "value": n.Value}
}
func (d *dumper) VisitCharLiteral(n *ast.CharLiteral) any {
	return map[string]any{"node": "CharLiteral", "value": n.Value}
}
func (d *dumper) VisitIntLiteral(n *ast.IntLiteral) any {
	return map[string]any{"node": "IntLiteral", "value": n.Value}
}
func (d *dumper) VisitFloatLiteral(n *ast.FloatLiteral) any {
	return map[string]any{"node": "FloatLiteral", "value": n.Value}
}
func (d *dumper) VisitStringLiteral(n *ast.StringLiteral) any {
	return map[string]any{"node": "StringLiteral", "value": n.Value}
}
