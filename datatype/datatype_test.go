package datatype

import "testing"

func TestEqualPointerArrayDecay(t *testing.T) {
	arr := NewArray(I32, 4)
	ptr := NewPointer(I32)

	if !Equal(ptr, arr) {
		t.Errorf("expected pointer-from-array decay to hold: %s == %s", ptr, arr)
	}
	if Equal(arr, ptr) {
		t.Errorf("expected decay to be one-directional: %s != %s", arr, ptr)
	}
}

func TestEqualRejectsDifferentPrimitives(t *testing.T) {
	u32 := NewPrimitive("u32")
	if Equal(I32, u32) {
		t.Errorf("i32 and u32 must not compare equal")
	}
}

func TestIsValidStructName(t *testing.T) {
	structs := map[string]bool{"Point": true}
	pt := NewPrimitive("Point")
	if !IsValid(pt, structs) {
		t.Errorf("expected struct name to be a valid type")
	}
	unknown := NewPrimitive("Nope")
	if IsValid(unknown, structs) {
		t.Errorf("expected unknown name to be invalid")
	}
}

func TestABIOfPrimitives(t *testing.T) {
	cases := map[string]string{"i32": "w", "i64": "l", "f32": "s", "f64": "d", "u8": "ub"}
	for name, wantTag := range cases {
		abi := ABIOf(NewPrimitive(name))
		if abi.Tag != wantTag {
			t.Errorf("ABIOf(%s).Tag = %q, want %q", name, abi.Tag, wantTag)
		}
	}
}

func TestABIOfPointerIsL(t *testing.T) {
	abi := ABIOf(NewPointer(I32))
	if abi.Tag != "l" || abi.Store != "storel" {
		t.Errorf("pointer ABI = %+v, want l/storel", abi)
	}
}

func TestSizeOfArray(t *testing.T) {
	arr := NewArray(I32, 3)
	if got := Size(arr, nil); got != 12 {
		t.Errorf("Size(i32[3]) = %d, want 12", got)
	}
}
