package vm

import (
	"fmt"
	"strings"
)

// Object is any heap value a Ptr-typed register can hold.
type Object interface {
	Inspect() string
}

// Releaser is implemented by heap objects that hold a resource needing
// deterministic cleanup at region exit. Objects that don't need it (plain data) simply don't
// implement it.
type Releaser interface {
	Release()
}

// StringObj is a runtime string value.
type StringObj struct{ S string }

func (s *StringObj) Inspect() string { return s.S }
func (s *StringObj) Release()        { s.S = "" }

// ListObj is a mutable, ordered sequence.
type ListObj struct{ Elems []Value }

func (l *ListObj) Inspect() string {
	parts := make([]string, len(l.Elems))
	for i, e := range l.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Release drops l's element references; it does not recurse into them
// since each Ptr-valued element is tracked and released on its own in
// the owning region.
func (l *ListObj) Release() { l.Elems = nil }

// DictObj is a key/value map; keys are compared with Value.Equal, so
// lookups are linear — acceptable for the core language's dict sizes
// and consistent with having no hashing defined over Ptr payloads yet.
type DictObj struct {
	Keys []Value
	Vals []Value
}

func (d *DictObj) Get(key Value) (Value, bool) {
	for i, k := range d.Keys {
		if k.Equal(key) {
			return d.Vals[i], true
		}
	}
	return Value{}, false
}

func (d *DictObj) Set(key, val Value) {
	for i, k := range d.Keys {
		if k.Equal(key) {
			d.Vals[i] = val
			return
		}
	}
	d.Keys = append(d.Keys, key)
	d.Vals = append(d.Vals, val)
}

func (d *DictObj) Inspect() string {
	parts := make([]string, len(d.Keys))
	for i := range d.Keys {
		parts[i] = fmt.Sprintf("%s: %s", d.Keys[i].String(), d.Vals[i].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (d *DictObj) Release() { d.Keys, d.Vals = nil, nil }

// TupleObj backs both struct literals and ranges (lirgen's
// lowerAggregateFallback boxes both into MakeTuple).
type TupleObj struct{ Elems []Value }

func (t *TupleObj) Inspect() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (t *TupleObj) Release() { t.Elems = nil }

// InstanceObj is a class instance: a class-id tag and its field slots
// in declaration order.
type InstanceObj struct {
	Module, Class string
	Fields []Value
}

func (o *InstanceObj) Inspect() string { return fmt.Sprintf("%s.%s{...}", o.Module, o.Class) }
func (o *InstanceObj) Release()        { o.Fields = nil }

// ClosureObj pairs a callee name with its captured environment, the
// runtime counterpart of AllocClosure.
type ClosureObj struct {
	Callee string
	Env []Value
}

func (c *ClosureObj) Inspect() string { return fmt.Sprintf("<closure %s>", c.Callee) }
func (c *ClosureObj) Release()        { c.Env = nil }

// OptionalObj is the runtime representation of a T?E value: exactly
// one of Value/Err is meaningful, selected by IsErr.
type OptionalObj struct {
	IsErr bool
	Value Value
	Err Value
}

func (o *OptionalObj) Inspect() string {
	if o.IsErr {
		return fmt.Sprintf("err(%s)", o.Err.String())
	}
	return fmt.Sprintf("ok(%s)", o.Value.String())
}

func (o *OptionalObj) Release() { o.Value, o.Err = Value{}, Value{} }

// TaskContextObj is the opaque handle `task`/`await` operate on
//. Fields are addressed by the small fixed index set
// lirgen's concurrency.go defines (taskFieldFn, taskFieldResult).
type TaskContextObj struct {
	Kind int32
	Fn Value
	Result Value
	HasRun bool
}

func (t *TaskContextObj) Inspect() string { return "<task>" }

// Release clears the task's closure and result so a released task
// handle can't be awaited again.
func (t *TaskContextObj) Release() {
	t.Fn, t.Result = Value{}, Value{}
	t.HasRun = false
}

// ChannelObj is a FIFO queue backing the ChannelPush/Pop/HasData
// opcodes. (`iter` indexes its container directly and makes no
// ChannelObj.)
type ChannelObj struct{ Items []Value }

func (c *ChannelObj) Inspect() string { return fmt.Sprintf("<channel len=%d>", len(c.Items)) }
func (c *ChannelObj) Release()        { c.Items = nil }

func objectsEqual(a, b Object) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch av := a.(type) {
	case *StringObj:
		bv, ok := b.(*StringObj)
		return ok && av.S == bv.S
	case *ListObj:
		bv, ok := b.(*ListObj)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !av.Elems[i].Equal(bv.Elems[i]) {
				return false
			}
		}
		return true
	case *TupleObj:
		bv, ok := b.(*TupleObj)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !av.Elems[i].Equal(bv.Elems[i]) {
				return false
			}
		}
		return true
	case *InstanceObj:
		bv, ok := b.(*InstanceObj)
		return ok && av == bv // reference identity for class instances
	default:
		return a == b
	}
}
