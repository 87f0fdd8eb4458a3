package types

import "testing"

func TestIsAssignableReflexive(t *testing.T) {
	in := NewInterner()
	cases := []Type{
		in.Primitive(I32),
		in.Primitive(Str),
		in.List(in.Primitive(I32)),
		in.Dict(in.Primitive(Str), in.Primitive(Bool)),
		in.OptionalErr(in.Primitive(I32), ErrorSet{Variants: []Type{in.Primitive(Str)}}),
		in.Func(nil, in.Primitive(Void), false, ErrorSet{}),
	}
	for _, ty := range cases {
		if !in.IsAssignable(ty, ty) {
			t.Errorf("expected %s assignable to itself", ty)
		}
	}
}

func TestIsAssignableTransitiveWidening(t *testing.T) {
	in := NewInterner()
	i32 := in.Primitive(I32)
	i64 := in.Primitive(I64)
	any_ := in.Primitive(Any)

	if !in.IsAssignable(i32, i64) {
		t.Fatal("expected i32 assignable to i64 (widening)")
	}
	if !in.IsAssignable(i64, any_) {
		t.Fatal("expected i64 assignable to any")
	}
	if !in.IsAssignable(i32, any_) {
		t.Fatal("expected i32 transitively assignable to any via i64")
	}
	if in.IsAssignable(i64, i32) {
		t.Fatal("widening must not be invertible: i64 is not assignable to i32")
	}
}

func TestIsAssignableAliasTransparency(t *testing.T) {
	in := NewInterner()
	i32 := in.Primitive(I32)
	myInt := in.Alias("MyInt", i32)

	if !in.IsAssignable(myInt, i32) {
		t.Fatal("expected alias assignable to its target")
	}
	if !in.IsAssignable(i32, myInt) {
		t.Fatal("expected target assignable to an alias of itself")
	}

	otherAlias := in.Alias("AlsoMyInt", i32)
	if !in.IsAssignable(myInt, otherAlias) {
		t.Fatal("expected two aliases of the same target to be mutually assignable")
	}
}

// TestOptionalErrSubsetChecksSourceErrors pins down the direction an
// optional/error value's error set is compared in: a value whose
// possible errors are a subset of the target's may flow in (a narrower
// failure mode widening into a broader one), but not the reverse.
func TestOptionalErrSubsetChecksSourceErrors(t *testing.T) {
	in := NewInterner()
	i32 := in.Primitive(I32)
	strErr := in.Primitive(Str)
	otherErr := in.Alias("OtherErr", in.Primitive(I32))

	narrow := in.OptionalErr(i32, ErrorSet{Variants: []Type{strErr}})
	wide := in.OptionalErr(i32, ErrorSet{Variants: []Type{strErr, otherErr}})

	if !in.IsAssignable(narrow, wide) {
		t.Fatal("a value that can only fail with Str should be assignable where Str-or-OtherErr is expected")
	}
	if in.IsAssignable(wide, narrow) {
		t.Fatal("a value that can fail with OtherErr must not be assignable where only Str is expected")
	}
}

// TestOptionalErrAbsentSourceAlwaysAssignable covers the never-fails
// case: a value with an Absent error set (e.g. ok(x)) can never actually
// take the error path, so it must be assignable regardless of what the
// target declares.
func TestOptionalErrAbsentSourceAlwaysAssignable(t *testing.T) {
	in := NewInterner()
	i32 := in.Primitive(I32)
	neverFails := in.OptionalErr(i32, ErrorSet{})
	declaresErrors := in.OptionalErr(i32, ErrorSet{Variants: []Type{in.Primitive(Str)}})

	if !in.IsAssignable(neverFails, declaresErrors) {
		t.Fatal("a never-failing optional value must be assignable into any declared error set")
	}
}

// TestFuncAssignableRejectsUndeclaredErrors regression-tests the
// covariance direction for a fallible function type: a function that
// may produce an error the target's signature never declares must be
// rejected, even when the target itself declares no errors at all.
func TestFuncAssignableRejectsUndeclaredErrors(t *testing.T) {
	in := NewInterner()
	i32 := in.Primitive(I32)
	someErr := in.Alias("SomeErr", i32)

	from := in.Func(nil, i32, true, ErrorSet{Variants: []Type{someErr}})
	to := in.Func(nil, i32, true, ErrorSet{})

	if in.IsAssignable(from, to) {
		t.Fatal("a function that may raise SomeErr must not be assignable to a signature declaring no errors")
	}
}

func TestFuncAssignableAcceptsNarrowerErrorSet(t *testing.T) {
	in := NewInterner()
	i32 := in.Primitive(I32)
	strErr := in.Primitive(Str)
	otherErr := in.Alias("OtherErr", i32)

	from := in.Func(nil, i32, true, ErrorSet{Variants: []Type{strErr}})
	to := in.Func(nil, i32, true, ErrorSet{Variants: []Type{strErr, otherErr}})

	if !in.IsAssignable(from, to) {
		t.Fatal("a function failing only with Str should be assignable where Str-or-OtherErr is declared")
	}
}

func TestFuncAssignableContravariantParams(t *testing.T) {
	in := NewInterner()
	i32 := in.Primitive(I32)
	i64 := in.Primitive(I64)

	// A function accepting the wider i64 can stand in for one declared
	// to accept the narrower i32 (callers only ever pass i32s).
	from := in.Func([]Param{{Type: i64}}, in.Primitive(Void), false, ErrorSet{})
	to := in.Func([]Param{{Type: i32}}, in.Primitive(Void), false, ErrorSet{})

	if !in.IsAssignable(from, to) {
		t.Fatal("expected contravariant parameter widening to be accepted")
	}
	if in.IsAssignable(to, from) {
		t.Fatal("a function only accepting i32 must not stand in for one accepting i64")
	}
}
