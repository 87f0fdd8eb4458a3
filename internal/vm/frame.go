package vm

import "github.com/netesy/limit/internal/lir"

// frame is one ongoing call's register file and current execution
// position. Unlike a linear bytecode IP, position is (block, index):
// a terminator moves the frame to a different block's index 0 rather
// than incrementing through a flat instruction array.
type frame struct {
	fn     *lir.Function
	regs   []Value
	set    []bool // parallel to regs: whether a register has been written
	block  *lir.BasicBlock
	ip     int
	region region
}

func newFrame(fn *lir.Function) *frame {
	return &frame{
		fn:    fn,
		regs:  make([]Value, fn.NumRegs),
		set:   make([]bool, fn.NumRegs),
		block: fn.Entry(),
	}
}

func (f *frame) get(r lir.Reg) (Value, error) {
	if r == lir.NoReg {
		return Value{}, nil
	}
	i := int(r)
	if i < 0 || i >= len(f.regs) || !f.set[i] {
		return Value{}, errUninitializedReg
	}
	return f.regs[i], nil
}

func (f *frame) write(r lir.Reg, v Value) {
	if r == lir.NoReg {
		return
	}
	f.regs[r] = v
	f.set[r] = true
	if v.Type == lir.Ptr && v.Obj != nil {
		f.region.track(v.Obj)
	}
}

// jumpTo moves the frame to block id, index 0.
func (f *frame) jumpTo(id int) {
	f.block = f.fn.Block(id)
	f.ip = 0
}
