package lir

import (
	"fmt"
	"strings"
)

// Disassemble renders f as deterministic text: one line per block header,
// one line per instruction, in block order then instruction order.
func Disassemble(f *Function) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== %s: %s ==\n", f.Name, f.ResultType)
	for _, b := range f.Blocks {
		tag := ""
		if b.IsEntry {
			tag += " entry"
		}
		if b.IsExit {
			tag += " exit"
		}
		fmt.Fprintf(&sb, "%s:%s\n", blockLabel(b), tag)
		for i, instr := range b.Instrs {
			fmt.Fprintf(&sb, " %04d %s\n", i, disasmInstr(f, instr))
		}
		if len(b.Succs) > 0 {
			names := make([]string, len(b.Succs))
			for i, s := range b.Succs {
				names[i] = blockLabel(f.Block(s))
			}
			fmt.Fprintf(&sb, " -> %s\n", strings.Join(names, ", "))
		}
	}
	return sb.String()
}

func blockLabel(b *BasicBlock) string {
	if b == nil {
		return "<invalid>"
	}
	if b.Label != "" {
		return fmt.Sprintf("bb%d(%s)", b.ID, b.Label)
	}
	return fmt.Sprintf("bb%d", b.ID)
}

func regName(r Reg) string {
	if r == NoReg {
		return "-"
	}
	return fmt.Sprintf("r%d", r)
}

func disasmInstr(f *Function, instr Instruction) string {
	switch instr.Op {
	case LoadConst:
		return fmt.Sprintf("%s %s, const[%d] %s", instr.Op, regName(instr.Dst), instr.ConstIdx, constText(f, instr.ConstIdx))
	case Mov, Cast, Neg, ToString, UnwrapValue, IsError, IsSuccess, CheckError:
		return fmt.Sprintf("%s %s, %s", instr.Op, regName(instr.Dst), regName(instr.Src1))
	case Add, Sub, Mul, Div, Mod, And, Or, Xor, CmpEq, CmpNe, CmpLt, CmpLe, CmpGt, CmpGe, StrConcat:
		return fmt.Sprintf("%s %s, %s, %s", instr.Op, regName(instr.Dst), regName(instr.Src1), regName(instr.Src2))
	case Jump:
		return fmt.Sprintf("%s bb%d", instr.Op, instr.Target)
	case JumpIf, JumpIfFalse:
		return fmt.Sprintf("%s %s, bb%d, bb%d", instr.Op, regName(instr.Src1), instr.Target, instr.Target2)
	case Return:
		return fmt.Sprintf("%s %s", instr.Op, regName(instr.Src1))
	case Ret:
		return instr.Op.String()
	case Call, CallBuiltin:
		args := make([]string, len(instr.Args))
		for i, a := range instr.Args {
			args[i] = regName(a)
		}
		return fmt.Sprintf("%s %s, %s(%s)", instr.Op, regName(instr.Dst), instr.Callee, strings.Join(args, ", "))
	case CallIndirect:
		args := make([]string, len(instr.Args))
		for i, a := range instr.Args {
			args[i] = regName(a)
		}
		return fmt.Sprintf("%s %s, %s(%s)", instr.Op, regName(instr.Dst), regName(instr.Src1), strings.Join(args, ", "))
	case StrFormat:
		return fmt.Sprintf("%s %s, const[%d]", instr.Op, regName(instr.Dst), instr.ConstIdx)
	case Print:
		return fmt.Sprintf("%s %s", instr.Op, regName(instr.Src1))
	case ConstructOk:
		return fmt.Sprintf("%s %s, %s", instr.Op, regName(instr.Dst), regName(instr.Src1))
	case ConstructErr:
		return fmt.Sprintf("%s %s, %s", instr.Op, regName(instr.Dst), regName(instr.ErrReg))
	case PropagateError:
		return fmt.Sprintf("%s %s", instr.Op, regName(instr.ErrReg))
	case TaskContextAlloc, ChannelAlloc:
		return fmt.Sprintf("%s %s", instr.Op, regName(instr.Dst))
	case TaskContextInit, TaskSetField, ChannelPush:
		return fmt.Sprintf("%s %s, %s", instr.Op, regName(instr.Src1), regName(instr.Src2))
	case TaskGetField, ChannelPop, ChannelHasData:
		return fmt.Sprintf("%s %s, %s", instr.Op, regName(instr.Dst), regName(instr.Src1))
	case SchedulerRun:
		return instr.Op.String()
	case Alloc:
		return fmt.Sprintf("%s %s, %s", instr.Op, regName(instr.Dst), instr.ClassName)
	case LoadField:
		return fmt.Sprintf("%s %s, %s.fields[%d]", instr.Op, regName(instr.Dst), regName(instr.Src1), instr.FieldIndex)
	case StoreField:
		return fmt.Sprintf("%s %s.fields[%d], %s", instr.Op, regName(instr.Src1), instr.FieldIndex, regName(instr.Src2))
	case LoadVTable:
		return fmt.Sprintf("%s %s, %s::%s", instr.Op, regName(instr.Dst), instr.ClassName, instr.MethodName)
	case MakeList, MakeTuple:
		elems := make([]string, len(instr.Elems))
		for i, e := range instr.Elems {
			elems[i] = regName(e)
		}
		return fmt.Sprintf("%s %s, [%s]", instr.Op, regName(instr.Dst), strings.Join(elems, ", "))
	case MakeDict:
		elems := make([]string, len(instr.Elems))
		for i, e := range instr.Elems {
			elems[i] = regName(e)
		}
		return fmt.Sprintf("%s %s, {%s}", instr.Op, regName(instr.Dst), strings.Join(elems, ", "))
	case LoadElem:
		return fmt.Sprintf("%s %s, %s[%s]", instr.Op, regName(instr.Dst), regName(instr.Src1), regName(instr.Src2))
	case StoreElem:
		return fmt.Sprintf("%s %s[%s], %s", instr.Op, regName(instr.Src1), regName(instr.Src2), regName(instr.Src3))
	case AllocClosure:
		elems := make([]string, len(instr.Elems))
		for i, e := range instr.Elems {
			elems[i] = regName(e)
		}
		return fmt.Sprintf("%s %s, %s, env[%s]", instr.Op, regName(instr.Dst), instr.Callee, strings.Join(elems, ", "))
	default:
		return instr.Op.String()
	}
}

func constText(f *Function, idx int) string {
	if idx < 0 || idx >= len(f.Consts) {
		return "<invalid>"
	}
	c := f.Consts[idx]
	switch c.Kind {
	case ConstI32, ConstI64:
		return fmt.Sprintf("%d", c.I)
	case ConstF64:
		return fmt.Sprintf("%g", c.F)
	case ConstBool:
		return fmt.Sprintf("%t", c.B)
	case ConstStr:
		return fmt.Sprintf("%q", c.S)
	case ConstNil:
		return "nil"
	}
	return "<?>"
}
