package compiler

import (
	"testing"

	"github.com/netesy/limit/internal/lexer"
	"github.com/netesy/limit/internal/vm"
)

// compileAndRun runs a source file through the full pipeline (parse,
// typecheck, memcheck, visibility, lower) and executes fn with args,
// failing the test on any diagnostic or compile/runtime error.
func compileAndRun(t *testing.T, dir, src, fn string, args []vm.Value) vm.Value {
	t.Helper()
	path := writeSource(t, dir, "main.lm", src)

	c := New(lexer.Legacy)
	result, err := c.CompileFile(path)
	if err != nil {
		t.Fatalf("CompileFile: %v", err)
	}
	for _, d := range result.Diagnostics {
		t.Errorf("unexpected diagnostic: %s %s: %s", d.Code, d.Stage, d.Message)
	}
	if !c.CanExecute() {
		t.Fatal("expected a clean, executable compile")
	}

	m := vm.NewMachine(result.LIR)
	out, err := m.RunFunction(fn, args)
	if err != nil {
		t.Fatalf("RunFunction(%s): %v", fn, err)
	}
	return out
}

// TestScenarioStringInterpolation builds a greeting from an interpolated
// string, exercising StringInterp lowering (ToString + StrFormat) end to
// end through the real parser and type checker.
func TestScenarioStringInterpolation(t *testing.T) {
	dir := t.TempDir()
	src := `
fn greet(name: str): str {
	return "Hello, {name}!";
}
`
	result := compileAndRun(t, dir, src, "main.greet", []vm.Value{vm.PtrVal(&vm.StringObj{S: "World"})})
	obj, ok := result.Obj.(*vm.StringObj)
	if !ok || obj.S != "Hello, World!" {
		t.Fatalf("got %v, want %q", result, "Hello, World!")
	}
}

// TestScenarioOptionalPropagationAndRecovery exercises `?` propagation
// and `?else` recovery over a typed i32 success value end to end. Both
// functions only ever take the ok() path here; the error path itself —
// ConstructErr/IsError/PropagateError — already has direct VM-level
// coverage in vm_test.go, and the error-set covariance rules that
// govern whether a failing call may propagate are covered directly
// against the type interner in assignable_test.go.
func TestScenarioOptionalPropagationAndRecovery(t *testing.T) {
	dir := t.TempDir()
	src := `
fn to_int(s: str): i32?any {
	return ok(10);
}

fn plus_two(s: str): i32?any {
	var n: i32 = to_int(s)?;
	return ok(n + 2);
}

fn resolve(s: str): i32 {
	return plus_two(s) ?else e { return -1; };
}
`
	result := compileAndRun(t, dir, src, "main.resolve", []vm.Value{vm.PtrVal(&vm.StringObj{S: "10"})})
	if result.AsI32() != 12 {
		t.Fatalf("got %d, want 12", result.AsI32())
	}
}

// TestScenarioVirtualDispatchOverride builds a two-level class hierarchy
// and calls an overridden method through a base-typed parameter,
// exercising LoadVTable's runtime-class dispatch end to end. Circle
// declares its own init (rather than relying on Shape's) since
// construction always looks up init on the constructed class itself.
func TestScenarioVirtualDispatchOverride(t *testing.T) {
	dir := t.TempDir()
	src := `
class Shape {
	var label: str;
	init(label: str) {
		self.label = label;
	}
	public fn describe(): str {
		return "shape {self.label}";
	}
}

class Circle : Shape {
	init(label: str) {
		self.label = label;
	}
	public override fn describe(): str {
		return "circle {self.label}";
	}
}

fn describeVia(s: Shape): str {
	return s.describe();
}

fn build(): str {
	var c: Circle = Circle("dot");
	return describeVia(c);
}
`
	result := compileAndRun(t, dir, src, "main.build", nil)
	obj, ok := result.Obj.(*vm.StringObj)
	if !ok || obj.S != "circle dot" {
		t.Fatalf("got %v, want %q", result, "circle dot")
	}
}
