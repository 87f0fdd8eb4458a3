package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/netesy/limit/internal/lexer"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCompileFileProducesLIR(t *testing.T) {
	dir := t.TempDir()
	main := writeSource(t, dir, "main.lm", "fn add(a: i32, b: i32): i32 { return a + b; }\n")

	c := New(lexer.Legacy)
	result, err := c.CompileFile(main)
	if err != nil {
		t.Fatalf("CompileFile: %v", err)
	}
	for _, d := range result.Diagnostics {
		t.Errorf("unexpected diagnostic: %s %s: %s", d.Code, d.Stage, d.Message)
	}
	if result.LIR == nil {
		t.Fatal("expected a lowered module")
	}
	if _, ok := result.LIR.Functions["main.add"]; !ok {
		t.Fatalf("expected main.add in lowered module, got %v", result.LIR.Functions)
	}
	if !c.CanExecute() {
		t.Fatal("expected CanExecute to be true for a clean compile")
	}
}

func TestCompileFileResolvesImports(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "helpers"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeSource(t, dir, filepath.Join("helpers", "math.lm"), "public fn square(x: i32): i32 { return x * x; }\n")
	main := writeSource(t, dir, "main.lm", "import helpers.math;\nfn run(): i32 { return 0; }\n")

	c := New(lexer.Legacy)
	result, err := c.CompileFile(main)
	if err != nil {
		t.Fatalf("CompileFile: %v", err)
	}
	if _, ok := result.LIR.Functions["helpers.math.square"]; !ok {
		t.Fatalf("expected imported module's function to be lowered too, got %v", result.LIR.Functions)
	}
}
