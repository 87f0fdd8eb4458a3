package vm

import (
	"fmt"
	"strings"

	"github.com/netesy/limit/internal/lir"
)

// exec runs one instruction, returning the run loop's next action. Only
// ctlReturn carries a meaningful result Value; every other control also
// sets Dst on fr as a side effect, the same way a real register file
// would.
func (m *Machine) exec(fr *frame, instr lir.Instruction) (control, Value, error) {
	switch instr.Op {
	case lir.Mov:
		v, err := fr.get(instr.Src1)
		if err != nil {
			return ctlNext, Value{}, err
		}
		fr.write(instr.Dst, v)

	case lir.LoadConst:
		v, err := constValue(fr.fn.Consts, instr.ConstIdx, instr.ResultType)
		if err != nil {
			return ctlNext, Value{}, err
		}
		fr.write(instr.Dst, v)

	case lir.Cast:
		v, err := fr.get(instr.Src1)
		if err != nil {
			return ctlNext, Value{}, err
		}
		cv, err := castValue(v, instr.ResultType)
		if err != nil {
			return ctlNext, Value{}, err
		}
		fr.write(instr.Dst, cv)

	case lir.Add, lir.Sub, lir.Mul, lir.Div, lir.Mod:
		if err := m.execArith(fr, instr); err != nil {
			return ctlNext, Value{}, err
		}

	case lir.Neg:
		v, err := fr.get(instr.Src1)
		if err != nil {
			return ctlNext, Value{}, err
		}
		fr.write(instr.Dst, negate(v))

	case lir.And, lir.Or, lir.Xor:
		a, err := fr.get(instr.Src1)
		if err != nil {
			return ctlNext, Value{}, err
		}
		b, err := fr.get(instr.Src2)
		if err != nil {
			return ctlNext, Value{}, err
		}
		fr.write(instr.Dst, bitwise(instr.Op, a, b))

	case lir.CmpEq, lir.CmpNe, lir.CmpLt, lir.CmpLe, lir.CmpGt, lir.CmpGe:
		a, err := fr.get(instr.Src1)
		if err != nil {
			return ctlNext, Value{}, err
		}
		b, err := fr.get(instr.Src2)
		if err != nil {
			return ctlNext, Value{}, err
		}
		fr.write(instr.Dst, compare(instr.Op, a, b))

	case lir.Jump:
		fr.jumpTo(instr.Target)
		return ctlJumped, Value{}, nil

	case lir.JumpIf, lir.JumpIfFalse:
		c, err := fr.get(instr.Src1)
		if err != nil {
			return ctlNext, Value{}, err
		}
		taken := c.AsBool()
		if instr.Op == lir.JumpIfFalse {
			taken = !taken
		}
		if taken {
			fr.jumpTo(instr.Target)
		} else {
			fr.jumpTo(instr.Target2)
		}
		return ctlJumped, Value{}, nil

	case lir.Return:
		v, err := fr.get(instr.Src1)
		if err != nil {
			return ctlNext, Value{}, err
		}
		return ctlReturn, v, nil

	case lir.Ret:
		return ctlReturn, VoidVal(), nil

	case lir.Call:
		v, err := m.execCall(fr, instr.Callee, instr.Args)
		if err != nil {
			return ctlNext, Value{}, err
		}
		fr.write(instr.Dst, v)

	case lir.CallBuiltin:
		callee, err := fr.get(instr.Src1)
		if err != nil {
			return ctlNext, Value{}, err
		}
		v, err := m.execCall(fr, calleeName(callee), instr.Args)
		if err != nil {
			return ctlNext, Value{}, err
		}
		fr.write(instr.Dst, v)

	case lir.CallIndirect:
		closureVal, err := fr.get(instr.Src1)
		if err != nil {
			return ctlNext, Value{}, err
		}
		cl, ok := closureVal.Obj.(*ClosureObj)
		if !ok {
			return ctlNext, Value{}, errNotCallable
		}
		args, err := m.readArgs(fr, instr.Args)
		if err != nil {
			return ctlNext, Value{}, err
		}
		v, err := m.callClosure(cl, args)
		if err != nil {
			return ctlNext, Value{}, err
		}
		fr.write(instr.Dst, v)

	case lir.StrConcat:
		a, err := fr.get(instr.Src1)
		if err != nil {
			return ctlNext, Value{}, err
		}
		b, err := fr.get(instr.Src2)
		if err != nil {
			return ctlNext, Value{}, err
		}
		fr.write(instr.Dst, PtrVal(&StringObj{S: a.String() + b.String()}))

	case lir.ToString:
		v, err := fr.get(instr.Src1)
		if err != nil {
			return ctlNext, Value{}, err
		}
		fr.write(instr.Dst, PtrVal(&StringObj{S: v.String()}))

	case lir.StrFormat:
		var sb strings.Builder
		tmpl := fr.fn.Consts[instr.ConstIdx].S
		parts := strings.Split(tmpl, "{}")
		for i, part := range parts {
			sb.WriteString(part)
			if i < len(instr.Elems) {
				v, err := fr.get(instr.Elems[i])
				if err != nil {
					return ctlNext, Value{}, err
				}
				sb.WriteString(v.String())
			}
		}
		fr.write(instr.Dst, PtrVal(&StringObj{S: sb.String()}))

	case lir.Print:
		v, err := fr.get(instr.Src1)
		if err != nil {
			return ctlNext, Value{}, err
		}
		fmt.Fprintln(m.stdout, v.String())

	case lir.ConstructOk:
		payload, err := fr.get(instr.Src1)
		if err != nil {
			return ctlNext, Value{}, err
		}
		fr.write(instr.Dst, PtrVal(&OptionalObj{IsErr: false, Value: payload}))

	case lir.ConstructErr:
		payload, err := fr.get(instr.ErrReg)
		if err != nil {
			return ctlNext, Value{}, err
		}
		fr.write(instr.Dst, PtrVal(&OptionalObj{IsErr: true, Err: payload}))

	case lir.IsError:
		opt, err := optionalOf(fr, instr.Src1)
		if err != nil {
			return ctlNext, Value{}, err
		}
		fr.write(instr.Dst, BoolVal(opt.IsErr))

	case lir.IsSuccess:
		opt, err := optionalOf(fr, instr.Src1)
		if err != nil {
			return ctlNext, Value{}, err
		}
		fr.write(instr.Dst, BoolVal(!opt.IsErr))

	case lir.UnwrapValue:
		opt, err := optionalOf(fr, instr.Src1)
		if err != nil {
			return ctlNext, Value{}, err
		}
		if opt.IsErr {
			fr.write(instr.Dst, opt.Err)
		} else {
			fr.write(instr.Dst, opt.Value)
		}

	case lir.CheckError:
		opt, err := optionalOf(fr, instr.Src1)
		if err != nil {
			return ctlNext, Value{}, err
		}
		fr.write(instr.Dst, BoolVal(opt.IsErr))

	case lir.PropagateError:
		v, err := fr.get(instr.ErrReg)
		if err != nil {
			return ctlNext, Value{}, err
		}
		return ctlReturn, v, nil

	case lir.TaskContextAlloc:
		fr.write(instr.Dst, PtrVal(&TaskContextObj{}))

	case lir.TaskContextInit:
		ctx, err := fr.get(instr.Src1)
		if err != nil {
			return ctlNext, Value{}, err
		}
		kind, err := fr.get(instr.Src2)
		if err != nil {
			return ctlNext, Value{}, err
		}
		if t, ok := ctx.Obj.(*TaskContextObj); ok {
			t.Kind = kind.AsI32()
		}

	case lir.TaskSetField:
		ctx, err := fr.get(instr.Src1)
		if err != nil {
			return ctlNext, Value{}, err
		}
		v, err := fr.get(instr.Src2)
		if err != nil {
			return ctlNext, Value{}, err
		}
		t, ok := ctx.Obj.(*TaskContextObj)
		if !ok {
			return ctlNext, Value{}, errNotCallable
		}
		switch instr.FieldIndex {
		case taskFieldFnIdx:
			t.Fn = v
		case taskFieldResultIdx:
			t.Result = v
		}

	case lir.TaskGetField:
		ctx, err := fr.get(instr.Src1)
		if err != nil {
			return ctlNext, Value{}, err
		}
		t, ok := ctx.Obj.(*TaskContextObj)
		if !ok {
			return ctlNext, Value{}, errNotCallable
		}
		if !t.HasRun {
			if cl, ok := t.Fn.Obj.(*ClosureObj); ok {
				result, err := m.callClosure(cl, nil)
				if err != nil {
					return ctlNext, Value{}, err
				}
				t.Result = result
				t.HasRun = true
			}
		}
		switch instr.FieldIndex {
		case taskFieldFnIdx:
			fr.write(instr.Dst, t.Fn)
		default:
			fr.write(instr.Dst, t.Result)
		}

	case lir.ChannelAlloc:
		fr.write(instr.Dst, PtrVal(&ChannelObj{}))

	case lir.ChannelPush:
		ch, err := fr.get(instr.Src1)
		if err != nil {
			return ctlNext, Value{}, err
		}
		v, err := fr.get(instr.Src2)
		if err != nil {
			return ctlNext, Value{}, err
		}
		if c, ok := ch.Obj.(*ChannelObj); ok {
			c.Items = append(c.Items, v)
		}

	case lir.ChannelPop:
		ch, err := fr.get(instr.Src1)
		if err != nil {
			return ctlNext, Value{}, err
		}
		c, ok := ch.Obj.(*ChannelObj)
		if !ok || len(c.Items) == 0 {
			return ctlNext, Value{}, errIndexOutOfBounds
		}
		fr.write(instr.Dst, c.Items[0])
		c.Items = c.Items[1:]

	case lir.ChannelHasData:
		container, err := fr.get(instr.Src1)
		if err != nil {
			return ctlNext, Value{}, err
		}
		idx, err := fr.get(instr.Src2)
		if err != nil {
			return ctlNext, Value{}, err
		}
		has := false
		switch c := container.Obj.(type) {
		case *ChannelObj:
			has = int(idx.AsI32()) < len(c.Items)
		case *ListObj:
			has = int(idx.AsI32()) < len(c.Elems)
		}
		fr.write(instr.Dst, BoolVal(has))

	case lir.SchedulerRun:
		// No real scheduler: tasks run synchronously the moment their
		// result is first observed (see TaskGetField above).

	case lir.Alloc:
		fr.write(instr.Dst, PtrVal(&InstanceObj{Module: moduleOf(fr.fn.Name), Class: instr.ClassName}))

	case lir.LoadField:
		obj, err := fr.get(instr.Src1)
		if err != nil {
			return ctlNext, Value{}, err
		}
		inst, ok := obj.Obj.(*InstanceObj)
		if !ok || instr.FieldIndex < 0 || instr.FieldIndex >= len(inst.Fields) {
			return ctlNext, Value{}, errIndexOutOfBounds
		}
		fr.write(instr.Dst, inst.Fields[instr.FieldIndex])

	case lir.StoreField:
		obj, err := fr.get(instr.Src1)
		if err != nil {
			return ctlNext, Value{}, err
		}
		v, err := fr.get(instr.Src2)
		if err != nil {
			return ctlNext, Value{}, err
		}
		inst, ok := obj.Obj.(*InstanceObj)
		if !ok {
			return ctlNext, Value{}, errIndexOutOfBounds
		}
		for instr.FieldIndex >= len(inst.Fields) {
			inst.Fields = append(inst.Fields, Value{})
		}
		inst.Fields[instr.FieldIndex] = v

	case lir.LoadVTable:
		obj, err := fr.get(instr.Src1)
		if err != nil {
			return ctlNext, Value{}, err
		}
		inst, ok := obj.Obj.(*InstanceObj)
		if !ok {
			return ctlNext, Value{}, errNotCallable
		}
		// Dispatch against the instance's own runtime class, not the
		// static ClassName the instruction carries, so an override in a
		// subclass is what actually runs.
		callee := inst.Module + "." + inst.Class + "." + instr.MethodName
		fr.write(instr.Dst, PtrVal(&ClosureObj{Callee: callee}))

	case lir.MakeList:
		elems, err := m.readArgs(fr, instr.Elems)
		if err != nil {
			return ctlNext, Value{}, err
		}
		fr.write(instr.Dst, PtrVal(&ListObj{Elems: elems}))

	case lir.MakeDict:
		d := &DictObj{}
		for i := 0; i+1 < len(instr.Elems); i += 2 {
			k, err := fr.get(instr.Elems[i])
			if err != nil {
				return ctlNext, Value{}, err
			}
			v, err := fr.get(instr.Elems[i+1])
			if err != nil {
				return ctlNext, Value{}, err
			}
			d.Set(k, v)
		}
		fr.write(instr.Dst, PtrVal(d))

	case lir.MakeTuple:
		elems, err := m.readArgs(fr, instr.Elems)
		if err != nil {
			return ctlNext, Value{}, err
		}
		fr.write(instr.Dst, PtrVal(&TupleObj{Elems: elems}))

	case lir.LoadElem:
		container, err := fr.get(instr.Src1)
		if err != nil {
			return ctlNext, Value{}, err
		}
		idx, err := fr.get(instr.Src2)
		if err != nil {
			return ctlNext, Value{}, err
		}
		v, err := loadElem(container, idx)
		if err != nil {
			return ctlNext, Value{}, err
		}
		fr.write(instr.Dst, v)

	case lir.StoreElem:
		container, err := fr.get(instr.Src1)
		if err != nil {
			return ctlNext, Value{}, err
		}
		idx, err := fr.get(instr.Src2)
		if err != nil {
			return ctlNext, Value{}, err
		}
		v, err := fr.get(instr.Src3)
		if err != nil {
			return ctlNext, Value{}, err
		}
		if err := storeElem(container, idx, v); err != nil {
			return ctlNext, Value{}, err
		}

	case lir.AllocClosure:
		env, err := m.readArgs(fr, instr.Elems)
		if err != nil {
			return ctlNext, Value{}, err
		}
		fr.write(instr.Dst, PtrVal(&ClosureObj{Callee: instr.Callee, Env: env}))

	default:
		return ctlNext, Value{}, fmt.Errorf("unimplemented opcode: %s", instr.Op)
	}
	return ctlNext, Value{}, nil
}

const (
	taskFieldFnIdx = 0
	taskFieldResultIdx = 1
)

func (m *Machine) readArgs(fr *frame, regs []lir.Reg) ([]Value, error) {
	out := make([]Value, len(regs))
	for i, r := range regs {
		v, err := fr.get(r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func optionalOf(fr *frame, r lir.Reg) (*OptionalObj, error) {
	v, err := fr.get(r)
	if err != nil {
		return nil, err
	}
	opt, ok := v.Obj.(*OptionalObj)
	if !ok {
		return nil, errInvalidCast
	}
	return opt, nil
}

// moduleOf recovers the module prefix of a qualified function/method
// name ("module.funcName" or "module.Class.method"): everything before
// the first dot.
func moduleOf(qualifiedName string) string {
	if i := strings.IndexByte(qualifiedName, '.'); i >= 0 {
		return qualifiedName[:i]
	}
	return qualifiedName
}

func calleeName(v Value) string {
	if s, ok := v.Obj.(*StringObj); ok {
		return s.S
	}
	return ""
}

func loadElem(container, idx Value) (Value, error) {
	switch c := container.Obj.(type) {
	case *ListObj:
		i := int(idx.AsI32())
		if i < 0 || i >= len(c.Elems) {
			return Value{}, errIndexOutOfBounds
		}
		return c.Elems[i], nil
	case *TupleObj:
		i := int(idx.AsI32())
		if i < 0 || i >= len(c.Elems) {
			return Value{}, errIndexOutOfBounds
		}
		return c.Elems[i], nil
	case *DictObj:
		v, ok := c.Get(idx)
		if !ok {
			return Value{}, errIndexOutOfBounds
		}
		return v, nil
	default:
		return Value{}, errIndexOutOfBounds
	}
}

func storeElem(container, idx, v Value) error {
	switch c := container.Obj.(type) {
	case *ListObj:
		i := int(idx.AsI32())
		if i < 0 || i >= len(c.Elems) {
			return errIndexOutOfBounds
		}
		c.Elems[i] = v
		return nil
	case *DictObj:
		c.Set(idx, v)
		return nil
	default:
		return errIndexOutOfBounds
	}
}
