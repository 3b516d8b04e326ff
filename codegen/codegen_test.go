package codegen

import (
	"strings"
	"testing"

	"mayoc/lexer"
	"mayoc/optimizer"
	"mayoc/parser"
	"mayoc/semantics"
)

func compile(t *testing.T, source string) string {
	t.Helper()
	toks, err := lexer.New("test.mayo", source).Scan()
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	tu, err := parser.Parse("test.mayo", toks)
	if err != nil {
		t.Fatalf("parser error: %v", err)
	}
	if err := semantics.Analyze("test.mayo", tu); err != nil {
		t.Fatalf("semantics error: %v", err)
	}
	optimizer.Fold(tu)
	out, err := Generate("test.mayo", tu)
	if err != nil {
		t.Fatalf("codegen error: %v", err)
	}
	return out
}

func TestGenerateAddFunction(t *testing.T) {
	out := compile(t, `fn add(a: i32, b: i32) -> i32 { return a + b; }`)
	for _, want := range []string{"function w $add(", "ret %r"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "export function") {
		t.Errorf("expected only main to be exported, got:\n%s", out)
	}
}

func TestGenerateMainIsExported(t *testing.T) {
	out := compile(t, `fn main() -> i32 { return 0; }`)
	if !strings.Contains(out, "export function w $main(") {
		t.Errorf("expected main to be exported, got:\n%s", out)
	}
}

func TestGenerateIfElseEmitsThreeLabels(t *testing.T) {
	out := compile(t, `
fn sign(x: i32) -> i32 {
	if x < 0 {
		return 0 - 1;
	} else {
		return 1;
	}
}
`)
	for _, want := range []string{"jnz ", "@l0", "@l1", "@l2"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestGenerateWhileLoop(t *testing.T) {
	out := compile(t, `
fn count(n: i32) -> i32 {
	let i = 0;
	while i < n {
		i = i + 1;
	}
	return i;
}
`)
	if !strings.Contains(out, "jnz ") || !strings.Contains(out, "jmp @l") {
		t.Errorf("expected a while loop with a jnz guard and a back-edge jmp, got:\n%s", out)
	}
}

func TestGenerateForRangeStep(t *testing.T) {
	out := compile(t, `
fn sum() -> i32 {
	let total = 0;
	for i in 0..10 step 2 {
		total = total + i;
	}
	return total;
}
`)
	if !strings.Contains(out, "add") {
		t.Errorf("expected a step-add instruction, got:\n%s", out)
	}
}

func TestGenerateForRangeDescendingFromLiteralBounds(t *testing.T) {
	out := compile(t, `
fn count() -> i32 {
	let total = 0;
	for i in 10..0 {
		total = total + i;
	}
	return total;
}
`)
	if !strings.Contains(out, "-1") {
		t.Errorf("expected a descending range with no explicit step to count down by -1, got:\n%s", out)
	}
	if !strings.Contains(out, "csgtw") && !strings.Contains(out, "cugtw") {
		t.Errorf("expected a '>' guard comparison for a descending range, got:\n%s", out)
	}
}

func TestGenerateForRangeDirectionFromVariableBounds(t *testing.T) {
	out := compile(t, `
fn count(lo: i32, hi: i32) -> i32 {
	let total = 0;
	for i in lo..hi {
		total = total + i;
	}
	return total;
}
`)
	for _, want := range []string{"and ", "or ", "xor "} {
		if !strings.Contains(out, want) {
			t.Errorf("expected a runtime direction check combining both comparison directions, got:\n%s", out)
		}
	}
}

func TestGenerateStructAccess(t *testing.T) {
	out := compile(t, `
struct Point { x: i32, y: i32 }
fn getX(p: *Point) -> i32 {
	return p.x;
}
`)
	if !strings.Contains(out, "type :Point = {") {
		t.Errorf("expected an aggregate type declaration, got:\n%s", out)
	}
	if !strings.Contains(out, "loadsw") {
		t.Errorf("expected a typed load for the i32 member, got:\n%s", out)
	}
}

func TestGenerateVariadicCallPromotesF32(t *testing.T) {
	out := compile(t, `
extern fn printf(fmt: *char, ...) -> i32;
fn run() -> void {
	let pi = 3.5;
	printf("%f", pi);
}
`)
	if !strings.Contains(out, "exts %r") {
		t.Errorf("expected the f32 variadic argument to be widened with exts, got:\n%s", out)
	}
	if !strings.Contains(out, "...") {
		t.Errorf("expected the QBE variadic marker in the call, got:\n%s", out)
	}
}

func TestGenerateArrayIndexAssignment(t *testing.T) {
	out := compile(t, `
fn run() -> void {
	let a = [1, 2, 3];
	a[1] = 9;
}
`)
	if !strings.Contains(out, "mul") || !strings.Contains(out, "storew") {
		t.Errorf("expected index arithmetic and a typed store, got:\n%s", out)
	}
}

func TestGenerateUnknownFunctionCallAborts(t *testing.T) {
	toks, err := lexer.New("test.mayo", `fn main() -> void { ghost(); }`).Scan()
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	tu, err := parser.Parse("test.mayo", toks)
	if err != nil {
		t.Fatalf("parser error: %v", err)
	}
	if err := semantics.Analyze("test.mayo", tu); err == nil {
		t.Fatalf("expected semantics to reject a call to an undeclared function")
	}
}

func TestGenerateAddressOfAndDereference(t *testing.T) {
	out := compile(t, `
fn run() -> void {
	let x = 1;
	let p = &x;
	let y = *p;
}
`)
	if !strings.Contains(out, "=l alloc4") {
		t.Errorf("expected a 4-byte local allocation, got:\n%s", out)
	}
}

