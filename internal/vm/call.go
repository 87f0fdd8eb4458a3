package vm

import (
	"fmt"
	"strings"

	"github.com/netesy/limit/internal/lir"
)

// execCall resolves callee against the module's function table, falling
// back to the builtin registry when it names no user function. lirgen
// always qualifies a by-name call as "module.name" (call.go's
// lowerCall), so an unresolved qualified name is retried under its bare
// suffix before giving up as an undefined function.
func (m *Machine) execCall(fr *frame, callee string, argRegs []lir.Reg) (Value, error) {
	args, err := m.readArgs(fr, argRegs)
	if err != nil {
		return Value{}, err
	}
	return m.dispatch(callee, args)
}

func (m *Machine) dispatch(callee string, args []Value) (Value, error) {
	if fn, ok := m.mod.Functions[callee]; ok {
		return m.call(fn, args)
	}
	if b, ok := builtins[lastSegment(callee)]; ok {
		return b(m, args)
	}
	return Value{}, fmt.Errorf("%w: %s", errUnknownFunction, callee)
}

func (m *Machine) callClosure(cl *ClosureObj, args []Value) (Value, error) {
	full := make([]Value, 0, len(cl.Env)+len(args))
	full = append(full, cl.Env...)
	full = append(full, args...)
	return m.dispatch(cl.Callee, full)
}

func lastSegment(qualifiedName string) string {
	if i := strings.LastIndexByte(qualifiedName, '.'); i >= 0 {
		return qualifiedName[i+1:]
	}
	return qualifiedName
}
