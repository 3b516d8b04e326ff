package main

import (
	"strings"
	"testing"

	"mayoc/codegen"
	"mayoc/lexer"
	"mayoc/optimizer"
	"mayoc/parser"
	"mayoc/semantics"
)

// TestFullPipeline runs source through lex -> parse -> analyze -> fold ->
// codegen and checks for the IR essentials of spec §8's six end-to-end
// scenarios, mirroring nilan's compiler/integration_test.go table-driven
// shape. Assertions use strings.Contains rather than exact IR text since
// temporary/label numbering is an implementation detail, not part of the
// contract.
func TestFullPipeline(t *testing.T) {
	tests := []struct {
		name          string
		source        string
		foldConstants bool
		want          []string
	}{
		{
			name:   "return a literal",
			source: `fn main() -> i32 { return 0; }`,
			want:   []string{"export function w $main(", "ret"},
		},
		{
			name:   "add two parameters",
			source: `fn add(a: i32, b: i32) -> i32 { return a + b; }`,
			want:   []string{"function w $add(w %r", "add %r", "ret %r"},
		},
		{
			name:   "string literal lowers to byte stores",
			source: `fn f() -> i32 { let s: char[6] = "hello"; return 0; }`,
			want:   []string{"alloc4 6", "storeb"},
		},
		{
			name:          "constant folded condition",
			source:        `fn f() -> bool { if 1 == 1 { return true; } else { return false; } }`,
			foldConstants: true,
			want:          []string{"jnz"},
		},
		{
			name:   "unfolded condition emits a real comparison",
			source: `fn f() -> bool { if 1 == 1 { return true; } else { return false; } }`,
			want:   []string{"ceqw", "jnz"},
		},
		{
			name:   "struct member access",
			source: `struct P { x: i32, y: i32 } fn f() -> i32 { let p: P = P { x: 3, y: 4 }; return p.y; }`,
			want:   []string{"type :P = {", "storew", "loadsw"},
		},
		{
			name:   "variadic call promotes a float argument",
			source: `extern fn printf(fmt: char*, ...) -> i32; fn f() -> i32 { return printf("%f\n", cast<f32>(1.0)); }`,
			want:   []string{"...", "exts"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := lexer.New("test.mayo", tt.source).Scan()
			if err != nil {
				t.Fatalf("lexing failed: %v", err)
			}
			tu, err := parser.Parse("test.mayo", toks)
			if err != nil {
				t.Fatalf("parsing failed: %v", err)
			}
			if err := semantics.Analyze("test.mayo", tu); err != nil {
				t.Fatalf("analysis failed: %v", err)
			}
			if tt.foldConstants {
				optimizer.Fold(tu)
			}
			out, err := codegen.Generate("test.mayo", tu)
			if err != nil {
				t.Fatalf("codegen failed: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("expected output to contain %q, got:\n%s", want, out)
				}
			}
		})
	}
}

// TestNegativeScenarios covers spec §8's six required-error cases: each
// must be rejected before codegen is reached.
func TestNegativeScenarios(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"redeclare variable in same scope", `fn f() -> i32 { let x = 1; let x = 2; return x; }`},
		{"wrong fixed argument count", `fn add(a: i32, b: i32) -> i32 { return a + b; } fn f() -> i32 { return add(1); }`},
		{"assign i32 to f32 variable", `fn f() -> void { let x: f32 = 1.0; x = 1; }`},
		{"index a non-array", `fn f() -> i32 { let x = 1; return x[0]; }`},
		{"access a non-existent struct member", `struct P { x: i32 } fn f() -> i32 { let p: P = P { x: 1 }; return p.y; }`},
		{"main returns f32", `fn main() -> f32 { return 1.0; }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := lexer.New("test.mayo", tt.source).Scan()
			if err != nil {
				return // a lex failure also satisfies "must produce an error"
			}
			tu, err := parser.Parse("test.mayo", toks)
			if err != nil {
				return
			}
			if err := semantics.Analyze("test.mayo", tu); err == nil {
				t.Fatalf("expected an error, but analysis succeeded for: %s", tt.source)
			}
		})
	}
}
