package types

// IsAssignable implements the assignability rules. It is used both by
// the checker for expression typing and transitively verified for
// reflexivity/transitivity/alias-transparency by the type-law tests.
func (in *Interner) IsAssignable(from, to Type) bool {
	return in.isAssignable(from, to, map[[2]string]bool{})
}

func (in *Interner) isAssignable(from, to Type, seen map[[2]string]bool) bool {
	if from.Equal(to) {
		return true
	}
	if !from.IsValid() || !to.IsValid() {
		return false
	}

	// Guard against infinite recursion through mutually-recursive
	// aliases/classes by remembering (from,to) pairs we're mid-checking.
	pairKey := [2]string{from.String(), to.String()}
	if seen[pairKey] {
		return true
	}
	seen[pairKey] = true

	// `any` absorbs everything, in both directions conceptually, but
	// assignability is directional: anything is assignable TO any.
	if p, ok := to.v.(primitive); ok && p.k == Any {
		return true
	}

	// Alias transparency: unwrap either side and retry.
	if a, ok := from.v.(aliasT); ok {
		return in.isAssignable(a.target, to, seen)
	}
	if a, ok := to.v.(aliasT); ok {
		return in.isAssignable(from, a.target, seen)
	}

	// nil is assignable only to types explicitly containing nil.
	if p, ok := from.v.(primitive); ok && p.k == NilKind {
		return in.containsNil(to, seen)
	}

	switch fv := from.v.(type) {
	case primitive:
		if tv, ok := to.v.(primitive); ok {
			return in.primitiveAssignable(fv.k, tv.k)
		}
	case listT:
		if tv, ok := to.v.(listT); ok {
			return in.isAssignable(fv.of, tv.of, seen)
		}
	case dictT:
		if tv, ok := to.v.(dictT); ok {
			return in.isAssignable(fv.key_, tv.key_, seen) && in.isAssignable(fv.value, tv.value, seen)
		}
	case rangeT:
		if tv, ok := to.v.(rangeT); ok {
			return in.isAssignable(fv.of, tv.of, seen)
		}
	case tupleT:
		if tv, ok := to.v.(tupleT); ok && len(fv.elems) == len(tv.elems) {
			for i := range fv.elems {
				if !in.isAssignable(fv.elems[i], tv.elems[i], seen) {
					return false
				}
			}
			return true
		}
	case structuralT:
		if tv, ok := to.v.(structuralT); ok {
			return in.structuralAssignable(fv, tv, seen)
		}
	case funcT:
		if tv, ok := to.v.(funcT); ok {
			return in.funcAssignable(fv, tv, seen)
		}
	case unionT:
		// L ⊆ R iff every variant of L is assignable to some variant of R.
		for _, lv := range fv.variants {
			if !in.isAssignableToUnionOrSelf(lv, to, seen) {
				return false
			}
		}
		return true
	case classT:
		if tv, ok := to.v.(classT); ok {
			fc, _ := in.LookupClass(fv.module, fv.name)
			tc, _ := in.LookupClass(tv.module, tv.name)
			return fc != nil && tc != nil && fc.IsSubclassOf(tc)
		}
		if tv, ok := to.v.(interfaceT); ok {
			fc, _ := in.LookupClass(fv.module, fv.name)
			ti, _ := in.LookupInterface(tv.module, tv.name)
			return fc != nil && ti != nil && fc.ImplementsInterface(ti)
		}
	case selfT:
		// Self resolves to the runtime class; for static assignability
		// treat it as assignable wherever its declaring class is.
		return in.isAssignable(in.ClassType(fv.module, fv.class), to, seen)
	case optionalErrT:
		if tv, ok := to.v.(optionalErrT); ok {
			if !in.isAssignable(fv.success, tv.success, seen) {
				return false
			}
			return fv.errs.Subset(tv.errs, in) || fv.errs.IsAbsent()
		}
	}

	// A bare (non-union) variant is assignable to a union on the right
	// if it's assignable to any of the union's members.
	if tv, ok := to.v.(unionT); ok {
		for _, rv := range tv.variants {
			if in.isAssignable(from, rv, seen) {
				return true
			}
		}
	}
	return false
}

func (in *Interner) isAssignableToUnionOrSelf(v, to Type, seen map[[2]string]bool) bool {
	if tv, ok := to.v.(unionT); ok {
		for _, rv := range tv.variants {
			if in.isAssignable(v, rv, seen) {
				return true
			}
		}
		return false
	}
	return in.isAssignable(v, to, seen)
}

func (in *Interner) containsNil(t Type, seen map[[2]string]bool) bool {
	if p, ok := t.v.(primitive); ok {
		return p.k == NilKind
	}
	if u, ok := t.v.(unionT); ok {
		for _, v := range u.variants {
			if in.containsNil(v, seen) {
				return true
			}
		}
	}
	if o, ok := t.v.(optionalErrT); ok {
		return in.containsNil(o.success, seen)
	}
	if a, ok := t.v.(aliasT); ok {
		return in.containsNil(a.target, seen)
	}
	return false
}

// primitiveAssignable implements numeric widening: i32->i64 implicit;
// int->float never implicit.
func (in *Interner) primitiveAssignable(from, to Kind) bool {
	if from == to {
		return true
	}
	switch {
	case from == I32 && to == I64:
		return true
	case from == U32 && to == U64:
		return true
	case from == F32 && to == F64:
		return true
	}
	return false
}

// structuralAssignable implements width subtyping: target's fields must
// be a subset of source's, each assignable, with immutable fields only
// (structural records are always immutable in this model, so that half
// of the rule is automatically satisfied).
func (in *Interner) structuralAssignable(from, to structuralT, seen map[[2]string]bool) bool {
	srcByName := map[string]Type{}
	for _, f := range from.fields {
		srcByName[f.Name] = f.Type
	}
	for _, tf := range to.fields {
		sf, ok := srcByName[tf.Name]
		if !ok || !in.isAssignable(sf, tf.Type, seen) {
			return false
		}
	}
	return true
}

// funcAssignable: contravariant in parameters, covariant in result and
// error set.
func (in *Interner) funcAssignable(from, to funcT, seen map[[2]string]bool) bool {
	if len(from.params) != len(to.params) {
		return false
	}
	for i := range from.params {
		// contravariant: to's param must be assignable to from's param
		if !in.isAssignable(to.params[i].Type, from.params[i].Type, seen) {
			return false
		}
	}
	if !in.isAssignable(from.result, to.result, seen) {
		return false
	}
	if from.fails && !to.fails {
		return false
	}
	if from.fails && to.fails && !from.mayFail.Subset(to.mayFail, in) && !from.mayFail.IsAbsent() {
		return false
	}
	return true
}

// Narrow computes the type a binding gets inside a match arm whose
// pattern is `tag`/`tag(subpatterns)` against scrutinee `t` — used by
// the exhaustiveness checker and by the type checker when typing a bound sub-pattern.
// For a union scrutinee it returns the matched variant; for anything
// else (no narrowing possible) it returns t unchanged.
func (in *Interner) Narrow(t Type, tag string) Type {
	if u, ok := t.v.(unionT); ok {
		for _, v := range u.variants {
			if v.String() == tag {
				return v
			}
		}
	}
	return t
}
