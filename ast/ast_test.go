package ast

import (
	"testing"

	"mayoc/compileerror"
	"mayoc/datatype"
	"mayoc/token"
)

func TestSetTypeRoundTrips(t *testing.T) {
	v := NewGetVariable(compileerror.Position{}, "x")
	if v.Type() != nil {
		t.Fatalf("expected nil resolved type before analysis")
	}
	v.SetType(datatype.I32)
	if v.Type() != datatype.I32 {
		t.Errorf("SetType/Type round trip failed")
	}
}

func TestFuncDeclFixedArgCount(t *testing.T) {
	fn := NewFuncDecl(compileerror.Position{}, "f", []Param{
		{Name: "a", Type: datatype.I32},
		{Variadic: true},
	}, datatype.I32, nil, true)

	if fn.FixedArgCount() != 1 {
		t.Errorf("FixedArgCount() = %d, want 1", fn.FixedArgCount())
	}
	if !fn.IsVariadic() {
		t.Errorf("expected IsVariadic() true")
	}
}

func TestTokenToBinaryOp(t *testing.T) {
	op, ok := TokenToBinaryOp(token.LESS_EQUAL)
	if !ok || op != OpLessOrEqual {
		t.Errorf("TokenToBinaryOp(<=) = %v, %v, want OpLessOrEqual, true", op, ok)
	}
	if _, ok := TokenToBinaryOp(token.LCURLY); ok {
		t.Errorf("expected LCURLY to not map to a binary operator")
	}
}
