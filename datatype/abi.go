package datatype

// ABI describes how a source type crosses a QBE call boundary and how
// it is stored/loaded from memory, per spec §4.5's type-to-ABI table.
type ABI struct {
	Base  string // in-function SSA base type: w l s d
	Tag   string // call-boundary ABI tag: w l s d sb ub sh uh (empty for void)
	Store string // typed store instruction, empty for aggregates/void
	Load  string // typed load instruction, empty for aggregates/void
}

// primitiveABI is spec §4.5's "Type-to-ABI mapping" table verbatim.
var primitiveABI = map[string]ABI{
	"bool": {"w", "ub", "storeb", "loadub"},
	"char": {"w", "ub", "storeb", "loadub"},
	"u8":   {"w", "ub", "storeb", "loadub"},
	"i8":   {"w", "sb", "storeb", "loadsb"},
	"i16":  {"w", "sh", "storeh", "loadsh"},
	"u16":  {"w", "uh", "storeh", "loaduh"},
	"i32":  {"w", "w", "storew", "loadsw"},
	"u32":  {"w", "w", "storew", "loaduw"},
	"i64":  {"l", "l", "storel", "loadl"},
	"u64":  {"l", "l", "storel", "loadl"},
	"f32":  {"s", "s", "stores", "loads"},
	"f64":  {"d", "d", "stored", "loadd"},
	"void": {"", "", "", ""},
}

// ABIOf returns the ABI descriptor for t. For pointers and arrays it is
// the pointer ABI (l/l/storel/loadl); for struct types the Tag is the
// aggregate reference ":Name" and Base/Store/Load are empty, since
// aggregates are passed/returned by the backend's own rules, not a
// scalar load/store (spec §4.5 "struct T" row).
func ABIOf(t *Type) ABI {
	switch t.Kind {
	case Pointer, Array:
		return ABI{"l", "l", "storel", "loadl"}
	case Variadic:
		return ABI{}
	case Primitive:
		if abi, ok := primitiveABI[t.Name]; ok {
			return abi
		}
		// Unknown primitive name: a struct type referenced by name.
		return ABI{Tag: ":" + t.Name}
	default:
		return ABI{}
	}
}

// ExtendOp returns the sub-word widening-extend opcode applied before a
// comparison on a, per spec §4.5's "choose signed or unsigned
// comparison" rule. ok is false for types wider than one/two bytes,
// which need no extension before comparing.
func ExtendOp(t *Type) (op string, ok bool) {
	u := Underlying(t)
	if u == nil || u.Kind != Primitive {
		return "", false
	}
	switch u.Name {
	case "bool", "char", "u8":
		return "extub", true
	case "i8":
		return "extsb", true
	case "u16":
		return "extuh", true
	case "i16":
		return "extsh", true
	default:
		return "", false
	}
}

// CompareOp returns the comparison opcode for operator op ("==", "!=",
// "<", "<=", ">", ">=") over operands of type t, selecting the signed or
// unsigned variant per t's signedness.
func CompareOp(op string, t *Type) string {
	signed := IsSigned(t)
	switch op {
	case "==":
		return "ceqw"
	case "!=":
		return "cnew"
	case "<":
		if signed {
			return "csltw"
		}
		return "cultw"
	case "<=":
		if signed {
			return "cslew"
		}
		return "culew"
	case ">":
		if signed {
			return "csgtw"
		}
		return "cugtw"
	case ">=":
		if signed {
			return "csgew"
		}
		return "cugew"
	default:
		return ""
	}
}
