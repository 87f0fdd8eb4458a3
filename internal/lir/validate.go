package lir

import "fmt"

// Validate checks the structural invariants requires of a
// lowered function: exactly one entry block, every block ends in a
// terminator, a non-void function never falls off the end, and no
// register is ever written with a different ABI type than it was
// allocated with.
func Validate(f *Function) error {
	if len(f.Blocks) == 0 {
		return fmt.Errorf("lir: function %s has no blocks", f.Name)
	}
	entries := 0
	for _, b := range f.Blocks {
		if b.IsEntry {
			entries++
		}
	}
	if entries != 1 {
		return fmt.Errorf("lir: function %s has %d entry blocks, want 1", f.Name, entries)
	}
	for _, b := range f.Blocks {
		term, ok := b.Terminator()
		if !ok {
			return fmt.Errorf("lir: function %s block %s (id %d) does not end in a terminator", f.Name, b.Label, b.ID)
		}
		if b.IsExit && f.ResultType != Void && term.Op != Return {
			return fmt.Errorf("lir: function %s exit block %s falls off the end without returning a value", f.Name, b.Label)
		}
		for _, succ := range b.Succs {
			if f.Block(succ) == nil {
				return fmt.Errorf("lir: function %s block %s has dangling successor %d", f.Name, b.Label, succ)
			}
		}
		if err := validateRegisterTypes(f, b); err != nil {
			return err
		}
	}
	return nil
}

func validateRegisterTypes(f *Function, b *BasicBlock) error {
	for idx, instr := range b.Instrs {
		if instr.Dst == NoReg {
			continue
		}
		switch instr.Op {
		case Jump, JumpIf, JumpIfFalse, Return, Ret, PropagateError, Print,
			StoreField, StoreElem, TaskContextInit, TaskSetField, ChannelPush, SchedulerRun:
			continue // no destination: Dst is an unused, zero-valued field
		}
		want := f.RegType(instr.Dst)
		if instr.ResultType != Void && instr.ResultType != want {
			return fmt.Errorf("lir: function %s block %s instr %d writes r%d as %s, register declared %s",
				f.Name, b.Label, idx, instr.Dst, instr.ResultType, want)
		}
	}
	return nil
}
