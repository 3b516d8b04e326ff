package parser

import (
	"testing"

	"mayoc/ast"
	"mayoc/datatype"
	"mayoc/lexer"
)

func mustParse(t *testing.T, source string) *ast.TranslationUnit {
	t.Helper()
	toks, err := lexer.New("test.mayo", source).Scan()
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	tu, err := Parse("test.mayo", toks)
	if err != nil {
		t.Fatalf("parser error: %v", err)
	}
	return tu
}

func TestParseFuncDeclWithReturn(t *testing.T) {
	tu := mustParse(t, `fn add(a: i32, b: i32) -> i32 { return a + b; }`)
	if len(tu.Body) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(tu.Body))
	}
	fn, ok := tu.Body[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("expected *ast.FuncDecl, got %T", tu.Body[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 || fn.ReturnType.Name != "i32" {
		t.Errorf("unexpected FuncDecl shape: %+v", fn)
	}
	ret, ok := fn.Body[0].(*ast.Return)
	if !ok {
		t.Fatalf("expected *ast.Return, got %T", fn.Body[0])
	}
	bin, ok := ret.Value.(*ast.BinaryOp)
	if !ok || bin.Op != ast.OpAdd {
		t.Errorf("expected a+b to parse as OpAdd BinaryOp, got %+v", ret.Value)
	}
}

func TestParseExternVariadicDecl(t *testing.T) {
	tu := mustParse(t, `extern fn printf(fmt: *char, ...) -> i32;`)
	fn := tu.Body[0].(*ast.FuncDecl)
	if !fn.External {
		t.Errorf("expected External true")
	}
	if !fn.IsVariadic() || fn.FixedArgCount() != 1 {
		t.Errorf("expected 1 fixed arg plus a variadic tail, got %+v", fn.Params)
	}
}

func TestParseStructDeclAndLiteral(t *testing.T) {
	tu := mustParse(t, `
struct Point { x: i32, y: i32 }
fn origin() -> Point {
	let p = Point{ x: 0, y: 0 };
	return p;
}
`)
	sd := tu.Body[0].(*ast.StructDecl)
	if sd.Name != "Point" || len(sd.Members) != 2 {
		t.Fatalf("unexpected StructDecl shape: %+v", sd)
	}
	fn := tu.Body[1].(*ast.FuncDecl)
	decl := fn.Body[0].(*ast.VarDecl)
	init, ok := decl.Initializer.(*ast.StructInit)
	if !ok || init.TypeName != "Point" || len(init.Fields) != 2 {
		t.Fatalf("expected a Point struct literal initializer, got %+v", decl.Initializer)
	}
}

func TestParseForRangeInclusiveWithStep(t *testing.T) {
	tu := mustParse(t, `
fn main() -> void {
	for i in 0..=10 step 2 {
		let x = i;
	}
}
`)
	fn := tu.Body[0].(*ast.FuncDecl)
	loop := fn.Body[0].(*ast.For)
	if loop.Identifier != "i" || !loop.Inclusive || loop.Step == nil {
		t.Errorf("unexpected For shape: %+v", loop)
	}
}

func TestParseCastUsesAngleBracketSyntax(t *testing.T) {
	tu := mustParse(t, `
fn main() -> void {
	let x = cast<i64>(3);
}
`)
	fn := tu.Body[0].(*ast.FuncDecl)
	decl := fn.Body[0].(*ast.VarDecl)
	cast, ok := decl.Initializer.(*ast.Cast)
	if !ok || cast.Target.Name != "i64" {
		t.Errorf("expected a Cast to i64, got %+v", decl.Initializer)
	}
}

func TestParseArrayIndexChains(t *testing.T) {
	tu := mustParse(t, `
fn main() -> void {
	let x = matrix[0][1];
}
`)
	fn := tu.Body[0].(*ast.FuncDecl)
	decl := fn.Body[0].(*ast.VarDecl)
	outer, ok := decl.Initializer.(*ast.BinaryOp)
	if !ok || outer.Op != ast.OpArrayIndex {
		t.Fatalf("expected outer OpArrayIndex, got %+v", decl.Initializer)
	}
	inner, ok := outer.Left.(*ast.BinaryOp)
	if !ok || inner.Op != ast.OpArrayIndex {
		t.Fatalf("expected inner OpArrayIndex, got %+v", outer.Left)
	}
}

func TestParseIfConditionDoesNotConsumeStructLiteral(t *testing.T) {
	tu := mustParse(t, `
fn main() -> void {
	if ready {
		return;
	}
}
`)
	fn := tu.Body[0].(*ast.FuncDecl)
	ifStmt := fn.Body[0].(*ast.If)
	if _, ok := ifStmt.Condition.(*ast.GetVariable); !ok {
		t.Errorf("expected a bare GetVariable condition, got %+v", ifStmt.Condition)
	}
}

func TestParsePointerAndArrayTypes(t *testing.T) {
	tu := mustParse(t, `fn f(p: *i32, a: [4]i32) -> void {}`)
	fn := tu.Body[0].(*ast.FuncDecl)
	if fn.Params[0].Type.Kind != datatype.Pointer {
		t.Errorf("expected pointer param type, got %+v", fn.Params[0].Type)
	}
	if fn.Params[1].Type.Kind != datatype.Array || fn.Params[1].Type.Count != 4 {
		t.Errorf("expected [4]i32 array param type, got %+v", fn.Params[1].Type)
	}
}

func TestParseUnterminatedBlockIsParseError(t *testing.T) {
	toks, err := lexer.New("test.mayo", `fn f() -> void {`).Scan()
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	if _, err := Parse("test.mayo", toks); err == nil {
		t.Fatalf("expected a parse error for an unterminated block")
	}
}
