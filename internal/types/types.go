// Package types is the type-system core: interned type
// values, assignability, and the class/interface registries.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// Kind distinguishes primitive widths referenced by assignability rules.
type Kind int

const (
	I32 Kind = iota
	I64
	U32
	U64
	F32
	F64
	Bool
	Str
	NilKind
	Void
	Any
)

func (k Kind) String() string {
	return [...]string{"i32", "i64", "u32", "u64", "f32", "f64", "bool", "str", "nil", "void", "any"}[k]
}

// Type is an interned handle: equal types share one interning key, so
// Equal is a valid equality check (the native `==` is not; see Key).
type Type struct {
	v variant
}

// variant is the sum of concrete shapes a Type can hold.
type variant interface {
	key() string
	String() string
}

func (t Type) String() string {
	if t.v == nil {
		return "<nil>"
	}
	return t.v.String()
}

// IsValid reports whether t was produced by an Interner (vs. the zero Type).
func (t Type) IsValid() bool { return t.v != nil }

// Key returns t's interning key. Some variants (unions, tuples, funcs,
// structural records) embed slices, which makes the native `==` operator
// panic at runtime when applied to a Type holding one of them; Equal and
// Key exist so callers never reach for `==` on a Type directly.
func (t Type) Key() string {
	if t.v == nil {
		return ""
	}
	return t.v.key()
}

// Equal reports whether t and o were interned from the same key.
func (t Type) Equal(o Type) bool { return t.Key() == o.Key() }

// FuncShape exposes a function type's parameters/result/error-set to
// callers outside this package (the checker) without leaking the
// variant interface itself.
type FuncShape struct {
	Params []Param
	Result Type
	Fails bool
	MayFail ErrorSet
}

func (t Type) FuncShape() (FuncShape, bool) {
	f, ok := t.v.(funcT)
	if !ok {
		return FuncShape{}, false
	}
	return FuncShape{Params: f.params, Result: f.result, Fails: f.fails, MayFail: f.mayFail}, true
}

// StructuralKind reports a short tag for t's variant, used by callers
// that need to branch on shape (e.g. indexing) without a type switch
// over the unexported variant interface.
func (t Type) StructuralKind() string {
	switch t.v.(type) {
	case listT:
		return "list"
	case dictT:
		return "dict"
	case rangeT:
		return "range"
	case tupleT:
		return "tuple"
	case structuralT:
		return "struct"
	case classT:
		return "class"
	case interfaceT:
		return "interface"
	case unionT:
		return "union"
	case optionalErrT:
		return "optional"
	case funcT:
		return "func"
	case primitive:
		return "primitive"
	case aliasT:
		return "alias"
	case selfT:
		return "self"
	}
	return ""
}

func (t Type) ListElem() (Type, bool) {
	l, ok := t.v.(listT)
	if !ok {
		return Type{}, false
	}
	return l.of, true
}

func (t Type) DictKV() (Type, Type, bool) {
	d, ok := t.v.(dictT)
	if !ok {
		return Type{}, Type{}, false
	}
	return d.key_, d.value, true
}

// OptionalErrParts exposes `T?E`'s success type and error set.
func (t Type) OptionalErrParts() (Type, ErrorSet, bool) {
	o, ok := t.v.(optionalErrT)
	if !ok {
		return Type{}, ErrorSet{}, false
	}
	return o.success, o.errs, true
}

// ClassRef exposes a class type's declaring module and name, letting
// callers outside this package (the visibility checker) look the class
// up in the Interner's registry without guessing its module from context.
func (t Type) ClassRef() (module, name string, ok bool) {
	c, isClass := t.v.(classT)
	if !isClass {
		return "", "", false
	}
	return c.module, c.name, true
}

// UnionVariants exposes a union's member types, in order.
func (t Type) UnionVariants() ([]Type, bool) {
	u, ok := t.v.(unionT)
	if !ok {
		return nil, false
	}
	return u.variants, true
}

// ---- primitive ----

type primitive struct{ k Kind }

func (p primitive) key() string { return "prim:" + p.k.String() }
func (p primitive) String() string { return p.k.String() }

// ---- list/dict/range/tuple ----

type listT struct{ of Type }

func (l listT) key() string { return "list:" + l.of.String() }
func (l listT) String() string { return "[" + l.of.String() + "]" }

type dictT struct{ key_, value Type }

func (d dictT) key() string { return "dict:" + d.key_.String() + ":" + d.value.String() }
func (d dictT) String() string { return "{" + d.key_.String() + ": " + d.value.String() + "}" }

type rangeT struct{ of Type }

func (r rangeT) key() string { return "range:" + r.of.String() }
func (r rangeT) String() string { return r.of.String() + ".." + r.of.String() }

type tupleT struct{ elems []Type }

func (t tupleT) key() string {
	parts := make([]string, len(t.elems))
	for i, e := range t.elems {
		parts[i] = e.String()
	}
	return "tuple:" + strings.Join(parts, ",")
}
func (t tupleT) String() string {
	parts := make([]string, len(t.elems))
	for i, e := range t.elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ---- function ----

type Param struct {
	Type Type
	HasDefault bool
}

// ErrorSet is an ordered, deduplicated set of error variant Types; the
// distinguished Absent marker is represented as a nil ErrorSet.
type ErrorSet struct{ Variants []Type }

func (e ErrorSet) IsAbsent() bool { return len(e.Variants) == 0 }

func (e ErrorSet) String() string {
	if e.IsAbsent() {
		return "Absent"
	}
	parts := make([]string, len(e.Variants))
	for i, v := range e.Variants {
		parts[i] = v.String()
	}
	return strings.Join(parts, " | ")
}

// Subset reports whether every variant of e is assignable to some
// variant of other (used for `?` propagation's E ⊆ F check).
func (e ErrorSet) Subset(other ErrorSet, in *Interner) bool {
	for _, v := range e.Variants {
		ok := false
		for _, w := range other.Variants {
			if in.IsAssignable(v, w) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

type funcT struct {
	params []Param
	result Type
	mayFail ErrorSet
	fails bool // whether this function can fail at all (distinct from an empty ErrorSet, which still means Absent-fallible)
}

func (f funcT) key() string {
	parts := make([]string, len(f.params))
	for i, p := range f.params {
		parts[i] = p.Type.String()
	}
	suffix := ""
	if f.fails {
		suffix = "?" + f.mayFail.String()
	}
	return "fn:(" + strings.Join(parts, ",") + "):" + f.result.String() + suffix
}
func (f funcT) String() string {
	parts := make([]string, len(f.params))
	for i, p := range f.params {
		parts[i] = p.Type.String()
	}
	suffix := ""
	if f.fails {
		suffix = "?"
		if !f.mayFail.IsAbsent() {
			suffix += f.mayFail.String()
		}
	}
	return fmt.Sprintf("fn(%s): %s%s", strings.Join(parts, ", "), f.result.String(), suffix)
}

// ---- union ----

type unionT struct{ variants []Type } // ordered, deduplicated

func (u unionT) key() string {
	parts := make([]string, len(u.variants))
	for i, v := range u.variants {
		parts[i] = v.String()
	}
	return "union:" + strings.Join(parts, "|")
}
func (u unionT) String() string {
	parts := make([]string, len(u.variants))
	for i, v := range u.variants {
		parts[i] = v.String()
	}
	return strings.Join(parts, " | ")
}

// ---- structural record ----

type Field struct {
	Name string
	Type Type
}

type structuralT struct{ fields []Field } // order significant for layout only

func (s structuralT) key() string {
	sorted := append([]Field(nil), s.fields...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	parts := make([]string, len(sorted))
	for i, f := range sorted {
		parts[i] = f.Name + ":" + f.Type.String()
	}
	return "struct:" + strings.Join(parts, ",")
}
func (s structuralT) String() string {
	parts := make([]string, len(s.fields))
	for i, f := range s.fields {
		parts[i] = f.Name + ": " + f.Type.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ---- alias ----

type aliasT struct {
	name string
	target Type
}

func (a aliasT) key() string { return "alias:" + a.name }
func (a aliasT) String() string { return a.name }

// ---- self type ----

type selfT struct{ module, class string }

func (s selfT) key() string { return "self:" + s.module + "." + s.class }
func (s selfT) String() string { return "Self" }

// ---- optional/error union ----

type optionalErrT struct {
	success Type
	errs ErrorSet
}

func (o optionalErrT) key() string { return "opt:" + o.success.String() + "?" + o.errs.String() }
func (o optionalErrT) String() string {
	if o.errs.IsAbsent() {
		return o.success.String() + "?"
	}
	return o.success.String() + "?" + o.errs.String()
}
