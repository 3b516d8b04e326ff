package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"mayoc/ast"
	"mayoc/compileerror"
	"mayoc/datatype"
)

// emitExpr lowers e to a single operand: an SSA temp, or a
// float-with-type-prefix immediate / `$label` data reference for the two
// literal kinds QBE accepts inline without a copy.
func (g *Generator) emitExpr(e ast.Expression) string {
	switch n := e.(type) {
	case *ast.IntLiteral:
		return g.copyImmediate("w", strconv.FormatInt(n.Value, 10))
	case *ast.BoolLiteral:
		if n.Value {
			return g.copyImmediate("w", "1")
		}
		return g.copyImmediate("w", "0")
	case *ast.CharLiteral:
		return g.copyImmediate("w", strconv.Itoa(int(n.Value)))
	case *ast.FloatLiteral:
		return fmt.Sprintf("%s_%v", datatype.ABIOf(n.Type()).Base, n.Value)
	case *ast.StringLiteral:
		return "$" + g.internString(n.Value)
	case *ast.GetVariable:
		return g.loadFrom(g.emitAddr(n), n.Type())
	case *ast.GetMember:
		return g.loadFrom(g.emitAddr(n), n.Type())
	case *ast.BinaryOp:
		return g.emitBinaryOp(n)
	case *ast.UnaryOp:
		return g.emitUnaryOp(n)
	case *ast.FunctionCall:
		return g.emitCall(n)
	case *ast.Cast:
		return g.emitCast(n)
	case *ast.ArrayInit, *ast.StructInit:
		return g.materializeComposite(e)
	default:
		compileerror.Abort(compileerror.InternalError{Message: fmt.Sprintf("codegen: unsupported expression %T", e)})
		panic("unreachable")
	}
}

// loadFrom reads a scalar value out of a memory address. Aggregate
// types (structs) are treated as their own address everywhere in this
// backend, so loadFrom is a no-op for them.
func (g *Generator) loadFrom(addr string, t *datatype.Type) string {
	abi := datatype.ABIOf(t)
	if abi.Load == "" {
		return addr
	}
	tmp := g.newTemp()
	g.emitf("%s =%s %s %s", tmp, abi.Base, abi.Load, addr)
	return tmp
}

// emitAddr resolves e's storage address. e must be one of the
// addressable expression shapes semantics.isAssignable accepts:
// variable, member access, array index, or a dereference.
func (g *Generator) emitAddr(e ast.Expression) string {
	switch n := e.(type) {
	case *ast.GetVariable:
		loc, ok := g.locals[n.Name]
		if !ok {
			compileerror.Abort(compileerror.InternalError{Message: "codegen: reference to unallocated local " + n.Name})
		}
		return loc.addr
	case *ast.GetMember:
		return g.emitMemberAddr(n)
	case *ast.BinaryOp:
		if n.Op == ast.OpArrayIndex {
			return g.emitIndexAddr(n)
		}
	case *ast.UnaryOp:
		if n.Op == ast.OpDereference {
			return g.emitExpr(n.Operand)
		}
	}
	compileerror.Abort(compileerror.InternalError{Message: fmt.Sprintf("codegen: %T is not addressable", e)})
	panic("unreachable")
}

func (g *Generator) baseAddrOf(e ast.Expression) string {
	if e.Type().Kind == datatype.Pointer {
		return g.emitExpr(e)
	}
	return g.emitAddr(e)
}

func (g *Generator) emitMemberAddr(n *ast.GetMember) string {
	base := g.baseAddrOf(n.Receiver)
	structName := datatype.Underlying(n.Receiver.Type()).Name
	offset := g.structOffsets[structName][n.Member]
	if offset == 0 {
		return base
	}
	tmp := g.newTemp()
	g.emitf("%s =l add %s, %d", tmp, base, offset)
	return tmp
}

func (g *Generator) emitIndexAddr(n *ast.BinaryOp) string {
	base := g.baseAddrOf(n.Left)
	index := g.emitExpr(n.Right)
	elemSize := datatype.Size(n.Type(), g.structSizes)
	off := g.newTemp()
	g.emitf("%s =l mul %s, %d", off, index, elemSize)
	addr := g.newTemp()
	g.emitf("%s =l add %s, %s", addr, base, off)
	return addr
}

func compareSymbol(op ast.BinaryOperator) (string, bool) {
	switch op {
	case ast.OpEqual:
		return "==", true
	case ast.OpNotEqual:
		return "!=", true
	case ast.OpLessThan:
		return "<", true
	case ast.OpLessOrEqual:
		return "<=", true
	case ast.OpGreaterThan:
		return ">", true
	case ast.OpGreaterOrEqual:
		return ">=", true
	default:
		return "", false
	}
}

func (g *Generator) emitBinaryOp(n *ast.BinaryOp) string {
	switch n.Op {
	case ast.OpArrayIndex:
		return g.loadFrom(g.emitIndexAddr(n), n.Type())
	case ast.OpAssign:
		return g.emitAssign(n)
	case ast.OpAnd, ast.OpOr:
		left := g.emitExpr(n.Left)
		right := g.emitExpr(n.Right)
		tmp := g.newTemp()
		op := "and"
		if n.Op == ast.OpOr {
			op = "or"
		}
		g.emitf("%s =w %s %s, %s", tmp, op, left, right)
		return tmp
	}

	operandType := n.Left.Type()
	left := g.emitExpr(n.Left)
	right := g.emitExpr(n.Right)
	abi := datatype.ABIOf(operandType)

	if symbol, ok := compareSymbol(n.Op); ok {
		if extOp, ok := datatype.ExtendOp(operandType); ok && operandType.Kind == datatype.Primitive {
			lx := g.newTemp()
			g.emitf("%s =w %s %s", lx, extOp, left)
			rx := g.newTemp()
			g.emitf("%s =w %s %s", rx, extOp, right)
			left, right = lx, rx
		}
		tmp := g.newTemp()
		g.emitf("%s =w %s %s, %s", tmp, compareOpFor(symbol, operandType), left, right)
		return tmp
	}

	op, unsigned := arithmeticOp(n.Op, operandType)
	mnemonic := op
	if unsigned {
		mnemonic = "u" + op
	}
	tmp := g.newTemp()
	g.emitf("%s =%s %s %s, %s", tmp, abi.Base, mnemonic, left, right)
	return tmp
}

func arithmeticOp(op ast.BinaryOperator, t *datatype.Type) (mnemonic string, unsigned bool) {
	wantsSigned := op == ast.OpDivide || op == ast.OpModulo
	u := !datatype.IsSigned(t) && wantsSigned
	switch op {
	case ast.OpAdd:
		return "add", false
	case ast.OpSubtract:
		return "sub", false
	case ast.OpMultiply:
		return "mul", false
	case ast.OpDivide:
		return "div", u
	case ast.OpModulo:
		return "rem", u
	default:
		return "add", false
	}
}

func (g *Generator) emitAssign(n *ast.BinaryOp) string {
	addr := g.emitAddr(n.Left)
	t := n.Left.Type()
	g.storeInit(addr, t, n.Right)
	return g.loadFrom(addr, t)
}

func (g *Generator) emitUnaryOp(n *ast.UnaryOp) string {
	switch n.Op {
	case ast.OpAddressOf:
		return g.emitAddr(n.Operand)
	case ast.OpDereference:
		ptr := g.emitExpr(n.Operand)
		return g.loadFrom(ptr, n.Type())
	default: // OpNegate, overloaded for '!' and unary '-'
		operand := g.emitExpr(n.Operand)
		t := n.Operand.Type()
		tmp := g.newTemp()
		if datatype.Equal(t, datatype.Bool) {
			g.emitf("%s =w xor %s, 1", tmp, operand)
			return tmp
		}
		abi := datatype.ABIOf(t)
		g.emitf("%s =%s sub 0, %s", tmp, abi.Base, operand)
		return tmp
	}
}

// emitCall lowers a direct call by name. Variadic tail arguments that
// are f32 are widened to f64 at the call boundary (backend/impl_gen.c's
// qbe_generate_function_call promotion rule); the QBE `...` marker is
// inserted once, after the fixed arguments.
func (g *Generator) emitCall(n *ast.FunctionCall) string {
	fn, ok := g.functions[n.Name]
	if !ok {
		compileerror.Abort(compileerror.InternalError{Message: "codegen: call to unknown function " + n.Name})
	}
	fixed := fn.FixedArgCount()

	var parts []string
	for i, arg := range n.Args {
		val := g.emitExpr(arg)
		argType := arg.Type()
		if i >= fixed && datatype.Equal(argType, datatype.NewPrimitive("f32")) {
			widened := g.newTemp()
			g.emitf("%s =d exts %s", widened, val)
			val = widened
			argType = datatype.NewPrimitive("f64")
		}
		if i == fixed && fn.IsVariadic() {
			parts = append(parts, "...")
		}
		abi := datatype.ABIOf(argType)
		parts = append(parts, fmt.Sprintf("%s %s", abi.Tag, val))
	}
	if fn.IsVariadic() && len(n.Args) == fixed {
		parts = append(parts, "...")
	}

	call := fmt.Sprintf("call $%s(%s)", n.Name, strings.Join(parts, ", "))
	if datatype.Equal(fn.ReturnType, datatype.NewPrimitive("void")) {
		g.emitf("%s", call)
		return "0"
	}
	retAbi := datatype.ABIOf(fn.ReturnType)
	tmp := g.newTemp()
	g.emitf("%s =%s %s", tmp, retAbi.Base, call)
	return tmp
}

// emitCast lowers a primitive-to-primitive conversion. Same-ABI casts
// (e.g. i32 -> u32) are a no-op at the bit level; widening integer
// casts sign/zero-extend; float<->int conversions use QBE's dedicated
// conversion ops.
func (g *Generator) emitCast(n *ast.Cast) string {
	inner := g.emitExpr(n.Inner)
	from := n.Inner.Type()
	to := n.Target
	fromAbi := datatype.ABIOf(from)
	toAbi := datatype.ABIOf(to)

	fromFloat := fromAbi.Base == "s" || fromAbi.Base == "d"
	toFloat := toAbi.Base == "s" || toAbi.Base == "d"

	switch {
	case fromFloat && toFloat:
		if fromAbi.Base == toAbi.Base {
			return inner
		}
		tmp := g.newTemp()
		if toAbi.Base == "d" {
			g.emitf("%s =d exts %s", tmp, inner)
		} else {
			g.emitf("%s =s truncd %s", tmp, inner)
		}
		return tmp
	case fromFloat && !toFloat:
		tmp := g.newTemp()
		op := fromAbi.Base + "to" + intSuffix(to) + "i"
		g.emitf("%s =%s %s %s", tmp, toAbi.Base, op, inner)
		return tmp
	case !fromFloat && toFloat:
		tmp := g.newTemp()
		op := intSuffix(from) + fromAbi.Base + "tof"
		g.emitf("%s =%s %s %s", tmp, toAbi.Base, op, inner)
		return tmp
	default:
		if extOp, ok := datatype.ExtendOp(to); ok && fromAbi.Base == "w" {
			tmp := g.newTemp()
			g.emitf("%s =w %s %s", tmp, extOp, inner)
			return tmp
		}
		if fromAbi.Base == "w" && toAbi.Base == "l" {
			tmp := g.newTemp()
			ext := "extsw"
			if !datatype.IsSigned(from) {
				ext = "extuw"
			}
			g.emitf("%s =l %s %s", tmp, ext, inner)
			return tmp
		}
		return inner
	}
}

// intSuffix names the signedness letter QBE's float/int conversion
// opcodes use: s in stosi/swtof, u in dtoui/ultof.
func intSuffix(t *datatype.Type) string {
	if datatype.IsSigned(t) {
		return "s"
	}
	return "u"
}

// storeInit lowers an initializer directly into addr, recursing across
// struct/array literals so composite values never round-trip through a
// scalar load. Scalars fall through to a plain typed store.
func (g *Generator) storeInit(addr string, t *datatype.Type, init ast.Expression) {
	switch v := init.(type) {
	case *ast.ArrayInit:
		elemType := t.Base
		elemSize := datatype.Size(elemType, g.structSizes)
		for i, el := range v.Elements {
			elAddr := addr
			if i > 0 {
				elAddr = g.newTemp()
				g.emitf("%s =l add %s, %d", elAddr, addr, i*elemSize)
			}
			g.storeInit(elAddr, elemType, el)
		}
	case *ast.StructInit:
		sd := g.structs[v.TypeName]
		offsets := g.structOffsets[v.TypeName]
		for _, f := range v.Fields {
			var memberType *datatype.Type
			for _, m := range sd.Members {
				if m.Name == f.Name {
					memberType = m.Type
				}
			}
			off := offsets[f.Name]
			fieldAddr := addr
			if off != 0 {
				fieldAddr = g.newTemp()
				g.emitf("%s =l add %s, %d", fieldAddr, addr, off)
			}
			g.storeInit(fieldAddr, memberType, f.Expr)
		}
	case *ast.StringLiteral:
		if t.Kind == datatype.Array {
			g.storeStringBytes(addr, v.Value)
			return
		}
		g.storeScalar(addr, t, init)
	default:
		g.storeScalar(addr, t, init)
	}
}

func (g *Generator) storeScalar(addr string, t *datatype.Type, init ast.Expression) {
	val := g.emitExpr(init)
	abi := datatype.ABIOf(t)
	g.emitf("%s %s, %s", abi.Store, val, addr)
}

// storeStringBytes writes s plus a terminating zero directly into addr,
// one storeb per byte: a char[N] initializer gets its own inline copy
// rather than a pointer into the interned $data section (spec §4.5/§8
// scenario 3: len(s)+1 storeb instructions).
func (g *Generator) storeStringBytes(addr string, s string) {
	bytes := append([]byte(s), 0)
	for i, b := range bytes {
		dst := addr
		if i > 0 {
			dst = g.newTemp()
			g.emitf("%s =l add %s, %d", dst, addr, i)
		}
		g.emitf("storeb %d, %s", b, dst)
	}
}

// materializeComposite stores an array/struct literal encountered
// outside a declaration's initializer position (e.g. passed directly
// as a call argument) into a fresh anonymous slot and returns its
// address.
func (g *Generator) materializeComposite(e ast.Expression) string {
	t := e.Type()
	size := max(4, datatype.Size(t, g.structSizes))
	addr := g.newTemp()
	g.emitf("%s =l %s %d", addr, allocOp(size), size)
	g.storeInit(addr, t, e)
	return addr
}
