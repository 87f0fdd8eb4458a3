// Package lirgen lowers a type-checked AST into lir.Functions: virtual register allocation, control-flow lowering, the
// unified optional/error representation, class/closure lowering, and
// deterministic region cleanup honoring the memory checker's
// ownership classification.
package lirgen

import (
	"github.com/netesy/limit/internal/lir"
	"github.com/netesy/limit/internal/types"
)

// abiOf maps a checked Type onto the closed ABI set: every
// compound or reference-shaped value is a Ptr, widths narrower than the
// VM's native registers still get a full-width slot.
func abiOf(t types.Type) lir.ABIType {
	if !t.IsValid() {
		return lir.Ptr
	}
	switch t.StructuralKind() {
	case "primitive":
		switch t.String() {
		case "i32", "u32":
			return lir.I32
		case "i64", "u64":
			return lir.I64
		case "f32", "f64":
			return lir.F64
		case "bool":
			return lir.Bool
		case "void":
			return lir.Void
		default: // str, nil, any
			return lir.Ptr
		}
	case "list", "dict", "range", "tuple", "struct", "class", "interface", "union", "optional", "func", "self", "alias":
		return lir.Ptr
	}
	return lir.Ptr
}

func qualifiedFunc(module, name string) string { return module + "." + name }

func qualifiedMethod(module, class, method string) string { return module + "." + class + "." + method }
