package semantics

import (
	"testing"

	"mayoc/ast"
	"mayoc/datatype"
	"mayoc/lexer"
	"mayoc/parser"
)

func analyze(t *testing.T, source string) (*ast.TranslationUnit, error) {
	t.Helper()
	toks, err := lexer.New("test.mayo", source).Scan()
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	tu, err := parser.Parse("test.mayo", toks)
	if err != nil {
		t.Fatalf("parser error: %v", err)
	}
	return tu, Analyze("test.mayo", tu)
}

func TestAnalyzeAnnotatesBinaryOp(t *testing.T) {
	tu, err := analyze(t, `fn add(a: i32, b: i32) -> i32 { return a + b; }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fn := tu.Body[0].(*ast.FuncDecl)
	ret := fn.Body[0].(*ast.Return)
	if !datatype.Equal(ret.Value.Type(), datatype.NewPrimitive("i32")) {
		t.Errorf("expected a+b to resolve to i32, got %v", ret.Value.Type())
	}
}

func TestAnalyzeRejectsUndefinedVariable(t *testing.T) {
	_, err := analyze(t, `fn f() -> i32 { return x; }`)
	if err == nil {
		t.Fatalf("expected an error for an undefined variable")
	}
}

func TestAnalyzeRejectsArgCountMismatch(t *testing.T) {
	_, err := analyze(t, `
fn add(a: i32, b: i32) -> i32 { return a + b; }
fn main() -> i32 { return add(1); }
`)
	if err == nil {
		t.Fatalf("expected an error for a call with too few arguments")
	}
}

func TestAnalyzeRejectsTypeMismatchInReturn(t *testing.T) {
	_, err := analyze(t, `fn f() -> i32 { return true; }`)
	if err == nil {
		t.Fatalf("expected an error for a bool returned from an i32 function")
	}
}

func TestAnalyzeRejectsAssignToLiteral(t *testing.T) {
	_, err := analyze(t, `fn f() -> void { 1 = 2; }`)
	if err == nil {
		t.Fatalf("expected an error assigning to a non-lvalue")
	}
}

func TestAnalyzeRejectsBreakOutsideLoop(t *testing.T) {
	_, err := analyze(t, `fn f() -> void { break; }`)
	if err == nil {
		t.Fatalf("expected an error for break outside a loop")
	}
}

func TestAnalyzeRejectsNestedAggregateMember(t *testing.T) {
	_, err := analyze(t, `
struct Inner { x: i32 }
struct Outer { inner: Inner }
`)
	if err == nil {
		t.Fatalf("expected an error for a struct directly embedding another struct")
	}
}

func TestAnalyzeAllowsPointerToStructMember(t *testing.T) {
	_, err := analyze(t, `
struct Inner { x: i32 }
struct Outer { inner: *Inner }
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAnalyzeAcceptsStructFieldAccessAndAssignment(t *testing.T) {
	_, err := analyze(t, `
struct Point { x: i32, y: i32 }
fn run() -> void {
	let p = Point{ x: 1, y: 2 };
	p.x = 3;
}
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAnalyzeStringLiteralInitializesCharArray(t *testing.T) {
	_, err := analyze(t, `
fn run() -> void {
	let s: char[6] = "hello";
}
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAnalyzeStringLiteralDecaysToCharPointerParam(t *testing.T) {
	_, err := analyze(t, `
extern fn printf(fmt: char*, ...) -> i32;
fn run() -> void {
	printf("hi");
}
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAnalyzeRejectsForRangeTypeMismatch(t *testing.T) {
	_, err := analyze(t, `
fn main() -> void {
	for i in 0..3.0 {
		let x = i;
	}
}
`)
	if err == nil {
		t.Fatalf("expected an error for mismatched for-loop range bound types")
	}
}

func TestAnalyzeDereferenceProducesBaseType(t *testing.T) {
	tu, err := analyze(t, `
fn run() -> void {
	let x = 1;
	let p = &x;
	let y = *p;
}
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fn := tu.Body[0].(*ast.FuncDecl)
	yDecl := fn.Body[2].(*ast.VarDecl)
	if !datatype.Equal(yDecl.Initializer.Type(), datatype.NewPrimitive("i32")) {
		t.Errorf("expected *p to resolve to i32, got %v", yDecl.Initializer.Type())
	}
}
