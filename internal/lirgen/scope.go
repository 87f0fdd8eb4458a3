package lirgen

import (
	"github.com/netesy/limit/internal/lir"
)

// loopFrame tracks the blocks `break`/`continue` jump to inside the
// loop currently being lowered.
type loopFrame struct {
	continueTarget int // block id: header (while/loop) or step (for/iter)
	exitTarget int // block id: the loop's exit block
}

// fgen holds the per-function lowering state: the function under
// construction, the block currently being appended to, a stack of
// lexical scopes (name -> register, "Register allocation"),
// and the active loop stack for break/continue.
type fgen struct {
	gen *Generator
	f *lir.Function
	cur *lir.BasicBlock
	module string

	selfClass string

	scopes []map[string]lir.Reg
	loops []loopFrame
}

func (fg *fgen) pushScope() { fg.scopes = append(fg.scopes, map[string]lir.Reg{}) }

func (fg *fgen) popScope() { fg.scopes = fg.scopes[:len(fg.scopes)-1] }

func (fg *fgen) declare(name string, r lir.Reg) {
	fg.scopes[len(fg.scopes)-1][name] = r
}

// resolve looks a name up from the innermost scope outward; reassignment
// in the source rebinds the same scope slot to a fresh register
//, so resolve always reflects the
// most recent binding visible at this point in the lowering walk.
func (fg *fgen) resolve(name string) (lir.Reg, bool) {
	for i := len(fg.scopes) - 1; i >= 0; i-- {
		if r, ok := fg.scopes[i][name]; ok {
			return r, true
		}
	}
	return lir.NoReg, false
}

func (fg *fgen) emit(i lir.Instruction) {
	fg.cur.Append(i)
}

func (fg *fgen) emitReturn(r lir.Reg) {
	fg.emit(lir.Instruction{Op: lir.Return, Dst: lir.NoReg, Src1: r, Src2: lir.NoReg, Src3: lir.NoReg, ErrReg: lir.NoReg})
}

func (fg *fgen) loadZero(t lir.ABIType) lir.Reg {
	r := fg.f.AllocReg(t)
	var c lir.Const
	switch t {
	case lir.I32, lir.I64:
		c = lir.Const{Kind: lir.ConstI64}
	case lir.F64:
		c = lir.Const{Kind: lir.ConstF64}
	case lir.Bool:
		c = lir.Const{Kind: lir.ConstBool}
	default:
		c = lir.Const{Kind: lir.ConstNil}
	}
	idx := fg.f.AddConst(c)
	fg.emit(lir.Instruction{Op: lir.LoadConst, ResultType: t, Dst: r, Src1: lir.NoReg, Src2: lir.NoReg, Src3: lir.NoReg, ErrReg: lir.NoReg, HasConst: true, ConstIdx: idx})
	return r
}

// newBlock adds a fresh block to the function under construction; it is
// not wired into fg.cur's successors automatically — callers do that
// once every block in a construct (if/while/for/...) is known.
func (fg *fgen) newBlock(label string) *lir.BasicBlock { return fg.f.AddBlock(label) }
