package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/netesy/limit/internal/lir"
)

// Machine is a register-based interpreter over one lir.Module. It replaces the stack-bytecode VM a linear instruction
// pointer implies: a frame's position is (block, index), and control
// flow moves between blocks by following a terminator's explicit
// successor edges rather than falling off the end of one opcode into
// the next.
type Machine struct {
	mod *lir.Module
	globals map[string]Value
	stdout io.Writer
	frames []*frame
	Debug bool
}

func NewMachine(mod *lir.Module) *Machine {
	return &Machine{mod: mod, globals: map[string]Value{}, stdout: os.Stdout}
}

func (m *Machine) SetStdout(w io.Writer) { m.stdout = w }

func (m *Machine) SetGlobal(name string, v Value) { m.globals[name] = v }

// RunFunction calls the named function with args already in
// register-call order (self first, for methods).
func (m *Machine) RunFunction(name string, args []Value) (Value, error) {
	fn, ok := m.mod.Functions[name]
	if !ok {
		return Value{}, fmt.Errorf("%w: %s", errUnknownFunction, name)
	}
	return m.call(fn, args)
}

// control is what one instruction tells the run loop to do next.
type control int

const (
	ctlNext control = iota
	ctlJumped
	ctlReturn
)

func (m *Machine) call(fn *lir.Function, args []Value) (Value, error) {
	if len(m.frames) >= maxCallDepth {
		return Value{}, errStackOverflow
	}
	if len(args) != len(fn.Params) {
		return Value{}, &RuntimeError{Func: fn.Name, Block: "<call>", Err: errArityMismatch}
	}

	fr := newFrame(fn)
	for i, a := range args {
		fr.write(fn.Params[i], a)
	}
	m.frames = append(m.frames, fr)
	defer func() { m.frames = m.frames[:len(m.frames)-1] }()

	for {
		if fr.block == nil || fr.ip >= len(fr.block.Instrs) {
			fr.region.release()
			return Value{}, &RuntimeError{Func: fn.Name, Block: blockLabel(fr.block), Err: errMalformedFunction}
		}
		instr := fr.block.Instrs[fr.ip]
		ctl, result, err := m.exec(fr, instr)
		if err != nil {
			fr.region.release()
			return Value{}, &RuntimeError{Func: fn.Name, Block: blockLabel(fr.block), Err: err}
		}
		switch ctl {
		case ctlReturn:
			// The returned object moves to the caller, whose frame tracks
			// it once the result is written to a register there.
			kept := fr.region.allocs[:0]
			for _, o := range fr.region.allocs {
				if o != result.Obj {
					kept = append(kept, o)
				}
			}
			fr.region.allocs = kept
			fr.region.release()
			return result, nil
		case ctlJumped:
			// fr.block/fr.ip already updated by the terminator handler.
		default:
			fr.ip++
		}
	}
}

func blockLabel(b *lir.BasicBlock) string {
	if b == nil {
		return "<nil>"
	}
	return b.Label
}
