package lir

import (
	"strings"
	"testing"
)

// buildAdd builds `fn add(a: i32, b: i32): i32 { return a + b; }` by hand,
// the way a hand-rolled lowering would emit it.
func buildAdd() *Function {
	f := NewFunction("add", I32)
	a := f.AllocReg(I32)
	b := f.AllocReg(I32)
	f.Params = []Reg{a, b}
	f.ParamTypes = []ABIType{I32, I32}

	sum := f.AllocReg(I32)
	entry := f.AddBlock("entry")
	entry.Append(Instruction{Op: Add, ResultType: I32, Dst: sum, Src1: a, Src2: b})
	entry.Append(Instruction{Op: Return, Src1: sum, Dst: NoReg})
	entry.IsExit = true
	return f
}

func TestValidateAccepts(t *testing.T) {
	f := buildAdd()
	if err := Validate(f); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsFallThrough(t *testing.T) {
	f := NewFunction("bad", I32)
	b := f.AddBlock("entry")
	b.Append(Instruction{Op: Ret})
	if err := Validate(f); err == nil {
		t.Fatal("expected Validate to reject a non-void function whose exit block uses bare Ret instead of Return")
	}
}

func TestValidateRejectsDanglingSuccessor(t *testing.T) {
	f := NewFunction("dangling", Void)
	b := f.AddBlock("entry")
	b.Append(Instruction{Op: Jump, Target: 7})
	b.SetSuccs(7)
	if err := Validate(f); err == nil {
		t.Fatal("expected Validate to reject a dangling successor")
	}
}

func TestValidateRejectsRegisterTypeConflict(t *testing.T) {
	f := NewFunction("conflict", Void)
	r := f.AllocReg(I32)
	b := f.AddBlock("entry")
	b.Append(Instruction{Op: Mov, ResultType: Bool, Dst: r, Src1: NoReg})
	b.Append(Instruction{Op: Ret})
	if err := Validate(f); err == nil {
		t.Fatal("expected Validate to reject a register written with the wrong ABI type")
	}
}

func TestDisassembleIsDeterministic(t *testing.T) {
	f := buildAdd()
	first := Disassemble(f)
	second := Disassemble(f)
	if first != second {
		t.Fatal("Disassemble is not deterministic across repeated calls")
	}
	if !strings.Contains(first, "add r2, r0, r1") {
		t.Fatalf("disassembly missing expected add instruction:\n%s", first)
	}
	if !strings.Contains(first, "return r2") {
		t.Fatalf("disassembly missing expected return instruction:\n%s", first)
	}
}
