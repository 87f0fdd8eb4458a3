package vm

import (
	"bytes"
	"testing"

	"github.com/netesy/limit/internal/lir"
)

// buildAdd builds `fn add(a: i32, b: i32): i32 { return a + b; }`.
func buildAdd(mod *lir.Module) {
	f := lir.NewFunction("m.add", lir.I32)
	a := f.AllocReg(lir.I32)
	b := f.AllocReg(lir.I32)
	f.Params = []lir.Reg{a, b}
	f.ParamTypes = []lir.ABIType{lir.I32, lir.I32}
	sum := f.AllocReg(lir.I32)
	entry := f.AddBlock("entry")
	entry.Append(lir.Instruction{Op: lir.Add, ResultType: lir.I32, Dst: sum, Src1: a, Src2: b})
	entry.Append(lir.Instruction{Op: lir.Return, Src1: sum, Dst: lir.NoReg})
	mod.AddFunction(f)
}

func TestRunFunctionAdd(t *testing.T) {
	mod := lir.NewModule("m")
	buildAdd(mod)
	m := NewMachine(mod)

	result, err := m.RunFunction("m.add", []Value{I32Val(2), I32Val(3)})
	if err != nil {
		t.Fatalf("RunFunction: %v", err)
	}
	if result.AsI32() != 5 {
		t.Fatalf("got %d, want 5", result.AsI32())
	}
}

// buildBranch builds `fn pick(c: bool): i32 { if (c) { return 1; } return 0; }`
// using explicit Target/Target2 edges, covering the non-fallthrough CFG.
func buildBranch(mod *lir.Module) {
	f := lir.NewFunction("m.pick", lir.I32)
	c := f.AllocReg(lir.Bool)
	f.Params = []lir.Reg{c}
	f.ParamTypes = []lir.ABIType{lir.Bool}

	entry := f.AddBlock("entry")
	thenBlk := f.AddBlock("then")
	elseBlk := f.AddBlock("else")

	one := f.AllocReg(lir.I32)
	zero := f.AllocReg(lir.I32)

	entry.Append(lir.Instruction{Op: lir.JumpIfFalse, Src1: c, Target: elseBlk.ID, Target2: thenBlk.ID})
	entry.SetSuccs(thenBlk.ID, elseBlk.ID)

	oneConst := f.AddConst(lir.Const{Kind: lir.ConstI64, I: 1})
	thenBlk.Append(lir.Instruction{Op: lir.LoadConst, ResultType: lir.I32, Dst: one, HasConst: true, ConstIdx: oneConst})
	thenBlk.Append(lir.Instruction{Op: lir.Return, Src1: one, Dst: lir.NoReg})

	zeroConst := f.AddConst(lir.Const{Kind: lir.ConstI64, I: 0})
	elseBlk.Append(lir.Instruction{Op: lir.LoadConst, ResultType: lir.I32, Dst: zero, HasConst: true, ConstIdx: zeroConst})
	elseBlk.Append(lir.Instruction{Op: lir.Return, Src1: zero, Dst: lir.NoReg})

	mod.AddFunction(f)
}

func TestRunFunctionBranchBothEdges(t *testing.T) {
	mod := lir.NewModule("m")
	buildBranch(mod)
	m := NewMachine(mod)

	trueResult, err := m.RunFunction("m.pick", []Value{BoolVal(true)})
	if err != nil {
		t.Fatalf("RunFunction(true): %v", err)
	}
	if trueResult.AsI32() != 1 {
		t.Fatalf("true branch: got %d, want 1", trueResult.AsI32())
	}

	falseResult, err := m.RunFunction("m.pick", []Value{BoolVal(false)})
	if err != nil {
		t.Fatalf("RunFunction(false): %v", err)
	}
	if falseResult.AsI32() != 0 {
		t.Fatalf("false branch: got %d, want 0", falseResult.AsI32())
	}
}

func TestPrintBuiltinWritesStdout(t *testing.T) {
	mod := lir.NewModule("m")
	f := lir.NewFunction("m.greet", lir.Void)
	entry := f.AddBlock("entry")
	msgReg := f.AllocReg(lir.Ptr)
	msgConst := f.AddConst(lir.Const{Kind: lir.ConstStr, S: "hello"})
	entry.Append(lir.Instruction{Op: lir.LoadConst, ResultType: lir.Ptr, Dst: msgReg, HasConst: true, ConstIdx: msgConst})
	discard := f.AllocReg(lir.Void)
	entry.Append(lir.Instruction{Op: lir.Call, ResultType: lir.Void, Dst: discard, Callee: "print", Args: []lir.Reg{msgReg}})
	entry.Append(lir.Instruction{Op: lir.Ret})
	mod.AddFunction(f)

	m := NewMachine(mod)
	var out bytes.Buffer
	m.SetStdout(&out)

	if _, err := m.RunFunction("m.greet", nil); err != nil {
		t.Fatalf("RunFunction: %v", err)
	}
	if out.String() != "hello\n" {
		t.Fatalf("got %q, want %q", out.String(), "hello\n")
	}
}

func TestOptionalPropagateReturnsErrValue(t *testing.T) {
	mod := lir.NewModule("m")
	f := lir.NewFunction("m.failing", lir.Ptr)
	entry := f.AddBlock("entry")
	errPayload := f.AllocReg(lir.I32)
	errConst := f.AddConst(lir.Const{Kind: lir.ConstI64, I: 42})
	entry.Append(lir.Instruction{Op: lir.LoadConst, ResultType: lir.I32, Dst: errPayload, HasConst: true, ConstIdx: errConst})
	opt := f.AllocReg(lir.Ptr)
	entry.Append(lir.Instruction{Op: lir.ConstructErr, ResultType: lir.Ptr, Dst: opt, ErrReg: errPayload})
	entry.Append(lir.Instruction{Op: lir.PropagateError, ErrReg: opt})
	mod.AddFunction(f)

	m := NewMachine(mod)
	result, err := m.RunFunction("m.failing", nil)
	if err != nil {
		t.Fatalf("RunFunction: %v", err)
	}
	opt2, ok := result.Obj.(*OptionalObj)
	if !ok || !opt2.IsErr || opt2.Err.AsI32() != 42 {
		t.Fatalf("expected a propagated err(42), got %v", result)
	}
}
