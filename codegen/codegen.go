// Package codegen lowers a typed, folded AST into textual QBE-family
// SSA IR (spec §4.5). Grounded on the reference's backend_qbe.c (type
// tables, qbe_get_ptr_with_offset / qbe_generate_expr_node) and
// backend/impl_gen.c (string/array initializer lowering, variadic call
// promotion, while/if label lowering), restructured around Go string
// building the way informatter-nilan's compiler/code.go builds its own
// instruction stream.
//
// Locals are memory-backed: every variable gets an alloc4/alloc8 slot
// and is always loaded/stored through it, rather than promoted to SSA
// registers. This mirrors the reference's own stack-frame model and
// keeps the lowering of `&x` trivial (SPEC_FULL.md §5 decision 4): the
// address of a local is simply its alloc pointer.
package codegen

import (
	"fmt"
	"strings"

	"mayoc/ast"
	"mayoc/compileerror"
	"mayoc/datatype"
)

type local struct {
	addr string
	typ  *datatype.Type
}

type stringLit struct {
	label string
	value string
}

// Generator owns one compilation's worth of output buffer plus the
// cross-function struct layout and string-literal tables. Temp and
// label counters reset per function: they are scoped to the function
// being lowered, not a single global counter for the whole translation
// unit.
type Generator struct {
	file string
	out  strings.Builder

	functions     map[string]*ast.FuncDecl
	structs       map[string]*ast.StructDecl
	structSizes   map[string]int
	structOffsets map[string]map[string]int

	strings    []stringLit
	stringSeq  int

	temp  int
	label int

	locals       map[string]local
	currentFn    *ast.FuncDecl
	breakLabels  []string
	contLabels   []string
}

// Generate lowers tu to QBE-family IR text. tu must already have passed
// semantics.Analyze (every expression carries a ResolvedType).
func Generate(file string, tu *ast.TranslationUnit) (out string, err error) {
	defer compileerror.Recover(&err)

	g := &Generator{
		file:          file,
		functions:     map[string]*ast.FuncDecl{},
		structs:       map[string]*ast.StructDecl{},
		structSizes:   map[string]int{},
		structOffsets: map[string]map[string]int{},
	}
	g.collect(tu)
	g.layoutStructs()
	for _, name := range g.structOrder(tu) {
		g.emitStructType(g.structs[name])
	}
	for _, stmt := range tu.Body {
		if fn, ok := stmt.(*ast.FuncDecl); ok && !fn.External {
			g.emitFunction(fn)
		}
	}
	g.emitStringData()
	return g.out.String(), nil
}

func (g *Generator) collect(tu *ast.TranslationUnit) {
	for _, stmt := range tu.Body {
		switch n := stmt.(type) {
		case *ast.FuncDecl:
			g.functions[n.Name] = n
		case *ast.StructDecl:
			g.structs[n.Name] = n
		}
	}
}

func (g *Generator) structOrder(tu *ast.TranslationUnit) []string {
	var order []string
	for _, stmt := range tu.Body {
		if sd, ok := stmt.(*ast.StructDecl); ok {
			order = append(order, sd.Name)
		}
	}
	return order
}

// layoutStructs computes each struct's flat byte offsets. Nested
// aggregates were already rejected by semantics, so every member's size
// is a fixed primitive or pointer/array width.
func (g *Generator) layoutStructs() {
	for name, sd := range g.structs {
		offsets := map[string]int{}
		off := 0
		for _, m := range sd.Members {
			offsets[m.Name] = off
			off += datatype.Size(m.Type, g.structSizes)
		}
		g.structOffsets[name] = offsets
		g.structSizes[name] = off
	}
}

func (g *Generator) emitStructType(sd *ast.StructDecl) {
	fmt.Fprintf(&g.out, "type :%s = { ", sd.Name)
	parts := make([]string, len(sd.Members))
	for i, m := range sd.Members {
		abi := datatype.ABIOf(m.Type)
		tag := abi.Base
		if tag == "" {
			tag = abi.Tag
		}
		parts[i] = tag
	}
	g.out.WriteString(strings.Join(parts, ", "))
	g.out.WriteString(" }\n")
}

func (g *Generator) newTemp() string {
	g.temp++
	return fmt.Sprintf("%%r%d", g.temp-1)
}

func (g *Generator) newLabel() string {
	g.label++
	return fmt.Sprintf("@l%d", g.label-1)
}

// copyImmediate lowers an integer/char/bool literal through an explicit
// copy into a fresh temp (spec §4.5), rather than splicing the immediate
// straight into whatever instruction consumes it.
func (g *Generator) copyImmediate(base, value string) string {
	tmp := g.newTemp()
	g.emitf("%s =%s copy %s", tmp, base, value)
	return tmp
}

func (g *Generator) internString(value string) string {
	for _, s := range g.strings {
		if s.value == value {
			return s.label
		}
	}
	label := fmt.Sprintf("str%d", g.stringSeq)
	g.stringSeq++
	g.strings = append(g.strings, stringLit{label: label, value: value})
	return label
}

func (g *Generator) emitStringData() {
	for _, s := range g.strings {
		fmt.Fprintf(&g.out, "data $%s = { b \"%s\", b 0 }\n", s.label, escapeForData(s.value))
	}
}

func escapeForData(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)
	return r.Replace(s)
}

func (g *Generator) emitf(format string, args ...any) {
	g.out.WriteString("\t")
	fmt.Fprintf(&g.out, format, args...)
	g.out.WriteString("\n")
}

// ---- functions ----

func (g *Generator) emitFunction(fn *ast.FuncDecl) {
	g.temp = 0
	g.label = 0
	g.locals = map[string]local{}
	g.currentFn = fn
	g.breakLabels = nil
	g.contLabels = nil

	// Only main leaves the translation unit; every other function stays
	// local to the assembled object (spec §4.5: "main is additionally
	// marked exported").
	prefix := "function"
	if fn.Name == "main" {
		prefix = "export function"
	}
	retAbi := datatype.ABIOf(fn.ReturnType)
	if retAbi.Base == "" {
		fmt.Fprintf(&g.out, "%s $%s(", prefix, fn.Name)
	} else {
		fmt.Fprintf(&g.out, "%s %s $%s(", prefix, retAbi.Base, fn.Name)
	}
	paramTemps := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		if !p.Variadic {
			paramTemps[i] = g.newTemp()
		}
	}
	g.out.WriteString(g.paramList(fn, paramTemps))
	g.out.WriteString(") {\n@start\n")

	for i, p := range fn.Params {
		if p.Variadic {
			continue
		}
		abi := datatype.ABIOf(p.Type)
		addr := g.newTemp()
		size := max(4, datatype.Size(p.Type, g.structSizes))
		g.emitf("%s =l %s %d", addr, allocOp(size), size)
		g.emitf("%s %s, %s", abi.Store, paramTemps[i], addr)
		g.locals[p.Name] = local{addr: addr, typ: p.Type}
	}

	g.emitStmts(fn.Body)
	if datatype.Equal(fn.ReturnType, datatype.NewPrimitive("void")) {
		g.emitf("ret")
	}
	g.out.WriteString("}\n")
}

func (g *Generator) paramList(fn *ast.FuncDecl, temps []string) string {
	var parts []string
	for i, p := range fn.Params {
		if p.Variadic {
			parts = append(parts, "...")
			continue
		}
		abi := datatype.ABIOf(p.Type)
		parts = append(parts, fmt.Sprintf("%s %s", abi.Tag, temps[i]))
	}
	return strings.Join(parts, ", ")
}

func allocOp(size int) string {
	if size <= 4 {
		return "alloc4"
	}
	return "alloc8"
}

// ---- statements ----

func (g *Generator) emitStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		g.emitStmt(s)
	}
}

func (g *Generator) emitStmt(stmt ast.Stmt) {
	switch n := stmt.(type) {
	case *ast.VarDecl:
		g.emitVarDecl(n)
	case *ast.If:
		g.emitIf(n)
	case *ast.While:
		g.emitWhile(n)
	case *ast.For:
		g.emitFor(n)
	case *ast.Return:
		g.emitReturn(n)
	case *ast.Break:
		g.emitf("jmp %s", g.breakLabels[len(g.breakLabels)-1])
	case *ast.Continue:
		g.emitf("jmp %s", g.contLabels[len(g.contLabels)-1])
	case *ast.ExprStmt:
		g.emitExpr(n.Expr)
	default:
		compileerror.Abort(compileerror.InternalError{Message: fmt.Sprintf("codegen: unsupported statement %T", stmt)})
	}
}

func (g *Generator) varType(n *ast.VarDecl) *datatype.Type {
	if n.DeclaredType != nil {
		return n.DeclaredType
	}
	return n.Initializer.Type()
}

func (g *Generator) emitVarDecl(n *ast.VarDecl) {
	typ := g.varType(n)
	size := max(4, datatype.Size(typ, g.structSizes))
	addr := g.newTemp()
	op := allocOp(size)
	if _, isStr := n.Initializer.(*ast.StringLiteral); isStr && typ.Kind == datatype.Array {
		op = "alloc4" // byte storage for a string literal needs no 8-byte alignment
	}
	g.emitf("%s =l %s %d", addr, op, size)
	g.locals[n.Name] = local{addr: addr, typ: typ}
	if n.Initializer != nil {
		g.storeInit(addr, typ, n.Initializer)
	}
}

func (g *Generator) emitIf(n *ast.If) {
	cond := g.emitExpr(n.Condition)
	thenLabel := g.newLabel()
	elseLabel := g.newLabel()
	endLabel := g.newLabel()
	g.emitf("jnz %s, %s, %s", cond, thenLabel, elseLabel)
	g.out.WriteString(thenLabel + "\n")
	g.emitStmts(n.Then)
	g.emitf("jmp %s", endLabel)
	g.out.WriteString(elseLabel + "\n")
	g.emitStmts(n.Else)
	g.emitf("jmp %s", endLabel)
	g.out.WriteString(endLabel + "\n")
}

func (g *Generator) emitWhile(n *ast.While) {
	startLabel := g.newLabel()
	bodyLabel := g.newLabel()
	endLabel := g.newLabel()
	g.breakLabels = append(g.breakLabels, endLabel)
	g.contLabels = append(g.contLabels, startLabel)

	g.out.WriteString(startLabel + "\n")
	cond := g.emitExpr(n.Condition)
	g.emitf("jnz %s, %s, %s", cond, bodyLabel, endLabel)
	g.out.WriteString(bodyLabel + "\n")
	g.emitStmts(n.Body)
	g.emitf("jmp %s", startLabel)
	g.out.WriteString(endLabel + "\n")

	g.breakLabels = g.breakLabels[:len(g.breakLabels)-1]
	g.contLabels = g.contLabels[:len(g.contLabels)-1]
}

// emitFor lowers `for id in from..to [step n] {}`. A literal step's sign
// decides direction when a step is given. Otherwise direction follows
// SPEC_FULL.md's supplemented `reverse` rule, derived from the sign
// relationship between `from` and `to`: statically when both bounds are
// literals, or via a runtime sign check (computed once, before the loop
// runs) when they are not. A non-literal *step* still falls back to
// ascending iteration, a narrower, separately disclosed limitation (see
// DESIGN.md).
func (g *Generator) emitFor(n *ast.For) {
	loopType := n.From.Type()
	abi := datatype.ABIOf(loopType)

	addr := g.newTemp()
	size := max(4, datatype.Size(loopType, g.structSizes))
	g.emitf("%s =l %s %d", addr, allocOp(size), size)
	g.locals[n.Identifier] = local{addr: addr, typ: loopType}
	g.storeInit(addr, loopType, n.From)

	// n.To is evaluated exactly once, before the loop starts: it names
	// the upper bound, not a per-iteration check, and re-running it every
	// pass would re-fire any side effect it carries (e.g. a call).
	bound := g.emitExpr(n.To)

	stepExpr := n.Step
	descending := false
	var descCond string // non-empty: a runtime w 0/1 value, direction unknown until now
	switch {
	case stepExpr != nil:
		if lit, ok := stepExpr.(*ast.IntLiteral); ok {
			descending = lit.Value < 0
		}
	case isIntLiteral(n.From) && isIntLiteral(n.To):
		descending = n.From.(*ast.IntLiteral).Value > n.To.(*ast.IntLiteral).Value
	default:
		fromVal := g.loadFrom(addr, loopType)
		descCond = g.newTemp()
		g.emitf("%s =w %s %s, %s", descCond, compareOpFor(">", loopType), fromVal, bound)
	}

	startLabel := g.newLabel()
	bodyLabel := g.newLabel()
	endLabel := g.newLabel()
	g.breakLabels = append(g.breakLabels, endLabel)
	g.contLabels = append(g.contLabels, startLabel)

	g.out.WriteString(startLabel + "\n")
	cur := g.loadFrom(addr, loopType)

	var cond string
	if descCond == "" {
		cmpSymbol := "<"
		if n.Inclusive {
			cmpSymbol = "<="
		}
		if descending {
			cmpSymbol = ">"
			if n.Inclusive {
				cmpSymbol = ">="
			}
		}
		cond = g.newTemp()
		g.emitf("%s =w %s %s, %s", cond, compareOpFor(cmpSymbol, loopType), cur, bound)
	} else {
		ascSymbol, descSymbol := "<", ">"
		if n.Inclusive {
			ascSymbol, descSymbol = "<=", ">="
		}
		asc := g.newTemp()
		g.emitf("%s =w %s %s, %s", asc, compareOpFor(ascSymbol, loopType), cur, bound)
		desc := g.newTemp()
		g.emitf("%s =w %s %s, %s", desc, compareOpFor(descSymbol, loopType), cur, bound)
		notDesc := g.newTemp()
		g.emitf("%s =w xor %s, 1", notDesc, descCond)
		ascTaken := g.newTemp()
		g.emitf("%s =w and %s, %s", ascTaken, notDesc, asc)
		descTaken := g.newTemp()
		g.emitf("%s =w and %s, %s", descTaken, descCond, desc)
		cond = g.newTemp()
		g.emitf("%s =w or %s, %s", cond, ascTaken, descTaken)
	}
	g.emitf("jnz %s, %s, %s", cond, bodyLabel, endLabel)
	g.out.WriteString(bodyLabel + "\n")
	g.emitStmts(n.Body)

	var stepVal string
	switch {
	case stepExpr != nil:
		stepVal = g.emitExpr(stepExpr)
	case descCond == "":
		stepVal = "1"
		if descending {
			stepVal = "-1"
		}
	default:
		stepVal = g.runtimeUnitStep(descCond, abi.Base)
	}
	cur2 := g.loadFrom(addr, loopType)
	next := g.newTemp()
	g.emitf("%s =%s add %s, %s", next, abi.Base, cur2, stepVal)
	g.emitf("%s %s, %s", abi.Store, next, addr)
	g.emitf("jmp %s", startLabel)
	g.out.WriteString(endLabel + "\n")

	g.breakLabels = g.breakLabels[:len(g.breakLabels)-1]
	g.contLabels = g.contLabels[:len(g.contLabels)-1]
}

func isIntLiteral(e ast.Expression) bool {
	_, ok := e.(*ast.IntLiteral)
	return ok
}

// runtimeUnitStep turns a runtime 0/1 "descending" flag into a +1/-1
// step value of the loop's own base type: 1 - 2*descCond, widened to
// base if the induction variable is wider than a word.
func (g *Generator) runtimeUnitStep(descCond, base string) string {
	doubled := g.newTemp()
	g.emitf("%s =w mul %s, 2", doubled, descCond)
	stepW := g.newTemp()
	g.emitf("%s =w sub 1, %s", stepW, doubled)
	if base != "l" {
		return stepW
	}
	stepL := g.newTemp()
	g.emitf("%s =l extsw %s", stepL, stepW)
	return stepL
}

func (g *Generator) emitReturn(n *ast.Return) {
	if n.Value == nil {
		g.emitf("ret")
		return
	}
	val := g.emitExpr(n.Value)
	g.emitf("ret %s", val)
}

func compareOpFor(symbol string, t *datatype.Type) string {
	op := datatype.CompareOp(symbol, t)
	base := datatype.ABIOf(t).Base
	return strings.TrimSuffix(op, "w") + base
}
