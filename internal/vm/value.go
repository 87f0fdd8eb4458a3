// Package vm is a register-based interpreter for lir.Module. Unlike a stack machine's linear instruction pointer, a frame
// here tracks a (block, index) position and moves between blocks by
// following a terminator's explicit successor edges.
package vm

import (
	"fmt"
	"math"

	"github.com/netesy/limit/internal/lir"
)

// Value is a stack-allocated tagged union mirroring the ABI type the
// register holding it was declared with. Heap payloads (Ptr-typed
// registers) are boxed behind the Object interface.
type Value struct {
	Type lir.ABIType
	Data uint64 // int64/float64 bits, or bool 0/1, for I32/I64/F64/Bool
	Obj Object // set when Type == lir.Ptr
}

func VoidVal() Value { return Value{Type: lir.Void} }

func I32Val(v int32) Value { return Value{Type: lir.I32, Data: uint64(uint32(v))} }

func I64Val(v int64) Value { return Value{Type: lir.I64, Data: uint64(v)} }

func F64Val(v float64) Value { return Value{Type: lir.F64, Data: math.Float64bits(v)} }

func BoolVal(v bool) Value {
	var d uint64
	if v {
		d = 1
	}
	return Value{Type: lir.Bool, Data: d}
}

func PtrVal(o Object) Value { return Value{Type: lir.Ptr, Obj: o} }

func (v Value) AsI32() int32 { return int32(uint32(v.Data)) }
func (v Value) AsI64() int64 { return int64(v.Data) }
func (v Value) AsF64() float64 { return math.Float64frombits(v.Data) }
func (v Value) AsBool() bool { return v.Data != 0 }
func (v Value) IsNilPtr() bool { return v.Type == lir.Ptr && v.Obj == nil }

// AsFloat64 widens any numeric value to float64, for mixed int/float
// arithmetic the ABI type system keeps separate at the register level
// but that arrives together at a shared opcode (e.g. Add on an I32 and
// an F64 operand produced by earlier implicit widening in the type checker).
func (v Value) AsFloat64() float64 {
	switch v.Type {
	case lir.I32:
		return float64(v.AsI32())
	case lir.I64:
		return float64(v.AsI64())
	case lir.F64:
		return v.AsF64()
	default:
		return 0
	}
}

func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case lir.Ptr:
		return objectsEqual(v.Obj, o.Obj)
	default:
		return v.Data == o.Data
	}
}

func (v Value) String() string {
	switch v.Type {
	case lir.I32:
		return fmt.Sprintf("%d", v.AsI32())
	case lir.I64:
		return fmt.Sprintf("%d", v.AsI64())
	case lir.F64:
		return fmt.Sprintf("%g", v.AsF64())
	case lir.Bool:
		return fmt.Sprintf("%t", v.AsBool())
	case lir.Ptr:
		if v.Obj == nil {
			return "nil"
		}
		return v.Obj.Inspect()
	case lir.Void:
		return "void"
	default:
		return "<?>"
	}
}
