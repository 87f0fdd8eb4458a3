package types

// Interner holds the process-wide (per-Compilation) type table: equal
// variants intern to the same key, so Type.Equal is a valid identity
// check (some variants embed slices, so the native `==` is not). Classes
// and interfaces are nominally keyed by (module, name) rather than by
// structural key.
type Interner struct {
	byKey map[string]Type

	classes map[classKey]*Class
	interfaces map[classKey]*Interface
}

type classKey struct{ module, name string }

func NewInterner() *Interner {
	return &Interner{
		byKey: map[string]Type{},
		classes: map[classKey]*Class{},
		interfaces: map[classKey]*Interface{},
	}
}

// intern is the single chokepoint every constructor below funnels
// through: it's what makes the table monotonic and identity-preserving.
func (in *Interner) intern(v variant) Type {
	k := v.key()
	if t, ok := in.byKey[k]; ok {
		return t
	}
	t := Type{v: v}
	in.byKey[k] = t
	return t
}

func (in *Interner) Primitive(k Kind) Type { return in.intern(primitive{k: k}) }

func (in *Interner) List(of Type) Type { return in.intern(listT{of: of}) }
func (in *Interner) Dict(key, value Type) Type { return in.intern(dictT{key_: key, value: value}) }
func (in *Interner) Range(of Type) Type { return in.intern(rangeT{of: of}) }
func (in *Interner) Tuple(elems ...Type) Type { return in.intern(tupleT{elems: elems}) }

// Func interns a function type. fails/mayFail model "may-fail: ErrorSet?"
// from — fails=false means the function cannot fail at all.
func (in *Interner) Func(params []Param, result Type, fails bool, mayFail ErrorSet) Type {
	return in.intern(funcT{params: params, result: result, fails: fails, mayFail: mayFail})
}

// Union dedups and interns a union type. A union of exactly one variant
// collapses to that variant (not wrapped).
func (in *Interner) Union(variants ...Type) Type {
	seen := map[string]bool{}
	var deduped []Type
	for _, v := range variants {
		if uv, ok := v.v.(unionT); ok {
			for _, inner := range uv.variants {
				if !seen[inner.Key()] {
					seen[inner.Key()] = true
					deduped = append(deduped, inner)
				}
			}
			continue
		}
		if !seen[v.Key()] {
			seen[v.Key()] = true
			deduped = append(deduped, v)
		}
	}
	if len(deduped) == 1 {
		return deduped[0]
	}
	return in.intern(unionT{variants: deduped})
}

func (in *Interner) Structural(fields ...Field) Type { return in.intern(structuralT{fields: fields}) }

func (in *Interner) Alias(name string, target Type) Type {
	return in.intern(aliasT{name: name, target: target})
}

func (in *Interner) SelfType(module, class string) Type {
	return in.intern(selfT{module: module, class: class})
}

// OptionalErr interns `T?` (errs.IsAbsent()) or `T?E`.
func (in *Interner) OptionalErr(success Type, errs ErrorSet) Type {
	return in.intern(optionalErrT{success: success, errs: errs})
}

// Class registers (or returns the existing) class type for (module, name).
// Re-registering mutates the existing *Class in place so forward
// references resolved during the declaration pass see the final shape.
func (in *Interner) Class(module, name string) *Class {
	k := classKey{module, name}
	if c, ok := in.classes[k]; ok {
		return c
	}
	c := &Class{Name: name, Module: module, Members: map[string]*ClassMember{}}
	in.classes[k] = c
	in.intern(classT{module: module, name: name})
	return c
}

func (in *Interner) LookupClass(module, name string) (*Class, bool) {
	c, ok := in.classes[classKey{module, name}]
	return c, ok
}

func (in *Interner) ClassType(module, name string) Type {
	in.Class(module, name) // ensure registered
	return in.intern(classT{module: module, name: name})
}

func (in *Interner) Interface(module, name string) *Interface {
	k := classKey{module, name}
	if c, ok := in.interfaces[k]; ok {
		return c
	}
	c := &Interface{Name: name, Module: module, Methods: map[string]Type{}, Fields: map[string]Type{}}
	in.interfaces[k] = c
	in.intern(interfaceT{module: module, name: name})
	return c
}

func (in *Interner) LookupInterface(module, name string) (*Interface, bool) {
	c, ok := in.interfaces[classKey{module, name}]
	return c, ok
}

func (in *Interner) InterfaceType(module, name string) Type {
	in.Interface(module, name)
	return in.intern(interfaceT{module: module, name: name})
}

// classT/interfaceT are nominal: their key is (module, name), never the
// member set, so two Class(m,"Foo") calls always intern to one Type even
// before the class body is fully populated (needed for self-referential
// and mutually-recursive class declarations).

type classT struct{ module, name string }

func (c classT) key() string { return "class:" + c.module + "." + c.name }
func (c classT) String() string { return c.name }

type interfaceT struct{ module, name string }

func (c interfaceT) key() string { return "iface:" + c.module + "." + c.name }
func (c interfaceT) String() string { return c.name }
