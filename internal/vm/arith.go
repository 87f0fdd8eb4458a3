package vm

import (
	"fmt"

	"github.com/netesy/limit/internal/lir"
)

func constValue(consts []lir.Const, idx int, t lir.ABIType) (Value, error) {
	if idx < 0 || idx >= len(consts) {
		return Value{}, fmt.Errorf("invalid constant index %d", idx)
	}
	c := consts[idx]
	switch c.Kind {
	case lir.ConstI32:
		return I32Val(int32(c.I)), nil
	case lir.ConstI64:
		if t == lir.I32 {
			return I32Val(int32(c.I)), nil
		}
		return I64Val(c.I), nil
	case lir.ConstF64:
		return F64Val(c.F), nil
	case lir.ConstBool:
		return BoolVal(c.B), nil
	case lir.ConstStr:
		return PtrVal(&StringObj{S: c.S}), nil
	case lir.ConstNil:
		return PtrVal(nil), nil
	}
	return Value{}, fmt.Errorf("unknown constant kind %d", c.Kind)
}

func castValue(v Value, to lir.ABIType) (Value, error) {
	switch to {
	case lir.I32:
		switch v.Type {
		case lir.I32:
			return v, nil
		case lir.I64:
			return I32Val(int32(v.AsI64())), nil
		case lir.F64:
			return I32Val(int32(v.AsF64())), nil
		}
	case lir.I64:
		switch v.Type {
		case lir.I32:
			return I64Val(int64(v.AsI32())), nil
		case lir.I64:
			return v, nil
		case lir.F64:
			return I64Val(int64(v.AsF64())), nil
		}
	case lir.F64:
		switch v.Type {
		case lir.I32, lir.I64:
			return F64Val(v.AsFloat64()), nil
		case lir.F64:
			return v, nil
		}
	case lir.Bool:
		if v.Type == lir.Bool {
			return v, nil
		}
	case lir.Ptr:
		return v, nil
	}
	return Value{}, errInvalidCast
}

func (m *Machine) execArith(fr *frame, instr lir.Instruction) error {
	a, err := fr.get(instr.Src1)
	if err != nil {
		return err
	}
	b, err := fr.get(instr.Src2)
	if err != nil {
		return err
	}

	if a.Type == lir.F64 || b.Type == lir.F64 {
		x, y := a.AsFloat64(), b.AsFloat64()
		var r float64
		switch instr.Op {
		case lir.Add:
			r = x + y
		case lir.Sub:
			r = x - y
		case lir.Mul:
			r = x * y
		case lir.Div:
			if y == 0 {
				return errDivideByZero
			}
			r = x / y
		case lir.Mod:
			if y == 0 {
				return errDivideByZero
			}
			r = float64(int64(x) % int64(y))
		}
		fr.write(instr.Dst, F64Val(r))
		return nil
	}

	x, y := a.AsI64(), b.AsI64()
	var r int64
	switch instr.Op {
	case lir.Add:
		r = x + y
	case lir.Sub:
		r = x - y
	case lir.Mul:
		r = x * y
	case lir.Div:
		if y == 0 {
			return errDivideByZero
		}
		r = x / y
	case lir.Mod:
		if y == 0 {
			return errDivideByZero
		}
		r = x % y
	}
	if instr.ResultType == lir.I32 {
		fr.write(instr.Dst, I32Val(int32(r)))
	} else {
		fr.write(instr.Dst, I64Val(r))
	}
	return nil
}

func negate(v Value) Value {
	switch v.Type {
	case lir.F64:
		return F64Val(-v.AsF64())
	case lir.I32:
		return I32Val(-v.AsI32())
	default:
		return I64Val(-v.AsI64())
	}
}

func bitwise(op lir.Opcode, a, b Value) Value {
	x, y := a.AsI64(), b.AsI64()
	var r int64
	switch op {
	case lir.And:
		r = x & y
	case lir.Or:
		r = x | y
	case lir.Xor:
		r = x ^ y
	}
	if a.Type == lir.Bool {
		return BoolVal(r != 0)
	}
	if a.Type == lir.I32 {
		return I32Val(int32(r))
	}
	return I64Val(r)
}

func compare(op lir.Opcode, a, b Value) Value {
	if op == lir.CmpEq {
		return BoolVal(a.Equal(b))
	}
	if op == lir.CmpNe {
		return BoolVal(!a.Equal(b))
	}
	var lt, eq bool
	if a.Type == lir.F64 || b.Type == lir.F64 {
		x, y := a.AsFloat64(), b.AsFloat64()
		lt, eq = x < y, x == y
	} else {
		x, y := a.AsI64(), b.AsI64()
		lt, eq = x < y, x == y
	}
	switch op {
	case lir.CmpLt:
		return BoolVal(lt)
	case lir.CmpLe:
		return BoolVal(lt || eq)
	case lir.CmpGt:
		return BoolVal(!lt && !eq)
	case lir.CmpGe:
		return BoolVal(!lt || eq)
	}
	return BoolVal(false)
}
