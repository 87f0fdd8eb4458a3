package lir

// BasicBlock is a straight-line run of instructions ending in exactly
// one terminator.
type BasicBlock struct {
	ID int
	Label string
	Instrs []Instruction
	IsEntry bool
	IsExit bool
	Succs []int // block IDs, derived from the terminator
}

func (b *BasicBlock) Terminator() (Instruction, bool) {
	if len(b.Instrs) == 0 {
		return Instruction{}, false
	}
	last := b.Instrs[len(b.Instrs)-1]
	if !last.Op.IsTerminator() {
		return Instruction{}, false
	}
	return last, true
}

// Append adds i to b. Callers build a block instruction-by-instruction
// and append exactly one terminator last, then call SetSuccs with the
// edges the terminator implies (Jump has one; JumpIf/JumpIfFalse have
// both Target and Target2, set directly on the instruction since a CFG
// has no implicit fallthrough edge).
func (b *BasicBlock) Append(i Instruction) {
	b.Instrs = append(b.Instrs, i)
	if i.Op.IsTerminator() && (i.Op == Return || i.Op == Ret || i.Op == PropagateError) {
		b.IsExit = true
	}
}

// SetSuccs records b's successor block IDs, in the order a disassembler
// or CFG walk should visit them.
func (b *BasicBlock) SetSuccs(ids...int) {
	b.Succs = ids
}
