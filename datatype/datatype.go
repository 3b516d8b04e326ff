// Package datatype implements the four-kind datatype union of spec §3:
// primitive, pointer, array and variadic, with the equality, validity and
// ABI-mapping rules of spec §4.3 and §4.5. Grounded on the reference's
// variant/core_type.c / variant.c tagged union and backend_qbe.c's type
// tables.
package datatype

import "fmt"

// Kind discriminates the four datatype variants.
type Kind int

const (
	Primitive Kind = iota
	Pointer
	Array
	Variadic
)

// Type is a tagged union: Name is set for Primitive (including struct
// names), Base for Pointer/Array, Count for Array. Variadic carries no
// payload; it is only valid as the trailing parameter type of a function
// declaration.
type Type struct {
	Kind  Kind
	Name  string // primitive keyword or struct name
	Base  *Type  // pointer/array element type
	Count int    // array element count
}

// Primitives is the fixed list of built-in primitive type names from
// spec §3. Anything else is either a struct name or invalid.
var Primitives = map[string]bool{
	"void": true, "bool": true, "char": true,
	"i8": true, "u8": true, "i16": true, "u16": true,
	"i32": true, "u32": true, "i64": true, "u64": true,
	"f32": true, "f64": true,
}

// signedPrimitives are the primitive kinds whose comparisons/extensions
// use the signed opcodes (spec §4.5 signed/unsigned comparison choice).
var signedPrimitives = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true,
}

func NewPrimitive(name string) *Type { return &Type{Kind: Primitive, Name: name} }
func NewPointer(base *Type) *Type    { return &Type{Kind: Pointer, Base: base} }
func NewArray(base *Type, count int) *Type {
	return &Type{Kind: Array, Base: base, Count: count}
}
func NewVariadic() *Type { return &Type{Kind: Variadic} }

var (
	Bool = NewPrimitive("bool")
	I32  = NewPrimitive("i32")
	Char = NewPrimitive("char")
	F32  = NewPrimitive("f32")
)

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case Primitive:
		return t.Name
	case Pointer:
		return t.Base.String() + "*"
	case Array:
		return fmt.Sprintf("%s[%d]", t.Base.String(), t.Count)
	case Variadic:
		return "..."
	default:
		return "<invalid>"
	}
}

// Underlying strips pointer/array layers, returning the base primitive
// or struct-name type (spec §4.3 "Type validity").
func Underlying(t *Type) *Type {
	for t != nil && (t.Kind == Pointer || t.Kind == Array) {
		t = t.Base
	}
	return t
}

// IsValid reports whether t's underlying type is a known primitive, a
// name present in structNames, or the variadic sentinel (spec §4.3).
func IsValid(t *Type, structNames map[string]bool) bool {
	if t == nil {
		return false
	}
	if t.Kind == Variadic {
		return true
	}
	u := Underlying(t)
	if u == nil || u.Kind != Primitive {
		return false
	}
	if Primitives[u.Name] {
		return true
	}
	return structNames[u.Name]
}

// Equal implements spec §4.3's type-equality rule, including the
// one-directional pointer-from-array decay: a pointer on the left
// matches an array on the right when their bases are equal; the reverse
// does not hold.
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind == Pointer && b.Kind == Array {
		return Equal(a.Base, b.Base)
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Primitive:
		return a.Name == b.Name
	case Pointer:
		return Equal(a.Base, b.Base)
	case Array:
		return a.Count == b.Count && Equal(a.Base, b.Base)
	case Variadic:
		return true
	default:
		return false
	}
}

// IsSigned reports whether t is one of the signed integer primitives.
func IsSigned(t *Type) bool {
	u := Underlying(t)
	return u != nil && u.Kind == Primitive && signedPrimitives[u.Name]
}

// Size returns a primitive or struct's size in bytes, used for struct
// layout and array allocation sizing (spec §4.5). structSizes gives the
// sizes of already-registered struct types.
func Size(t *Type, structSizes map[string]int) int {
	switch t.Kind {
	case Pointer, Array:
		if t.Kind == Array {
			return t.Count * Size(t.Base, structSizes)
		}
		return 8
	case Primitive:
		switch t.Name {
		case "bool", "char", "i8", "u8":
			return 1
		case "i16", "u16":
			return 2
		case "i32", "u32", "f32":
			return 4
		case "i64", "u64", "f64":
			return 8
		case "void":
			return 0
		default:
			return structSizes[t.Name]
		}
	default:
		return 0
	}
}
