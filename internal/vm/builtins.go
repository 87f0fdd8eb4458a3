package vm

import "fmt"

// builtinFunc is a Go-implemented function callable the same way a
// user-defined one is.
type builtinFunc func(m *Machine, args []Value) (Value, error)

var builtins = map[string]builtinFunc{
	"print": func(m *Machine, args []Value) (Value, error) {
		parts := make([]any, len(args))
		for i, a := range args {
			parts[i] = a.String()
		}
		fmt.Fprintln(m.stdout, parts...)
		return VoidVal(), nil
	},
	"len": func(m *Machine, args []Value) (Value, error) {
		if len(args) != 1 {
			return Value{}, errArityMismatch
		}
		switch o := args[0].Obj.(type) {
		case *ListObj:
			return I64Val(int64(len(o.Elems))), nil
		case *DictObj:
			return I64Val(int64(len(o.Keys))), nil
		case *StringObj:
			return I64Val(int64(len(o.S))), nil
		case *TupleObj:
			return I64Val(int64(len(o.Elems))), nil
		default:
			return I64Val(0), nil
		}
	},
	"push": func(m *Machine, args []Value) (Value, error) {
		if len(args) != 2 {
			return Value{}, errArityMismatch
		}
		l, ok := args[0].Obj.(*ListObj)
		if !ok {
			return Value{}, errNotCallable
		}
		l.Elems = append(l.Elems, args[1])
		return args[0], nil
	},
	"keys": func(m *Machine, args []Value) (Value, error) {
		if len(args) != 1 {
			return Value{}, errArityMismatch
		}
		d, ok := args[0].Obj.(*DictObj)
		if !ok {
			return Value{}, errNotCallable
		}
		return PtrVal(&ListObj{Elems: append([]Value{}, d.Keys...)}), nil
	},
}
