package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/netesy/limit/internal/ast"
	"github.com/netesy/limit/internal/lir"
	"github.com/netesy/limit/internal/lirgen"
	"github.com/netesy/limit/internal/memcheck"
	"github.com/netesy/limit/internal/parser"
	"github.com/netesy/limit/internal/source"
	"github.com/netesy/limit/internal/typecheck"
	"github.com/netesy/limit/internal/visibility"
)

// unit is one file pulled into the compilation, tagged with the module
// identifier every checker keys its diagnostics and symbols by.
type unit struct {
	module string
	file *ast.File
}

// Result is everything a driver needs after one CompileFile call: the
// lowered module (present even when visibility errors were reported,
// since those don't block LIR generation) and every diagnostic raised
// along the way.
type Result struct {
	LIR *lir.Module
	Diagnostics []source.Diagnostic
}

// CompileFile runs the whole pipeline over path and its transitive
// imports: parse, typecheck, memcheck, visibility-check, then lower to
// LIR. Each phase's failures abort the phases after it per the:
// a failing declaration-pass/typecheck/memcheck aborts LIR generation
// for every unit; a visibility failure does not.
func (c *Compilation) CompileFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c.Loader.Files.Add(path, data)
	entryModule := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	entryFile := parser.ParseFile(path, string(data), c.Loader.Mode, c.Trivia, c.Sink)

	units, err := c.collectUnits(entryModule, entryFile)
	if err != nil {
		return nil, err
	}

	for _, u := range units {
		c.Visibility.Register(u.file, u.module)
	}

	for _, u := range units {
		typecheck.New(c.Types, c.Sink, u.module).CheckFile(u.file)
	}
	for _, u := range units {
		memcheck.New(c.Sink, u.module).CheckFile(u.file)
	}
	for _, u := range units {
		visibility.New(c.Types, c.Sink).CheckFile(u.file, u.module, c.Visibility)
	}

	if hasBlockingErrors(c.Sink, source.StageVisibility) {
		return &Result{Diagnostics: c.Sink.Diagnostics()}, nil
	}

	gen := lirgen.NewGenerator(c.Types, entryModule)
	for _, u := range units {
		gen.GenFile(u.file, u.module)
	}
	mod := gen.Module()

	for _, fn := range mod.Functions {
		if err := lir.Validate(fn); err != nil {
			_ = c.Sink.Report(source.New("E500", source.StageLIR, moduleOfQualifiedName(fn.Name), source.Range{}, err.Error()))
		}
	}

	return &Result{LIR: mod, Diagnostics: c.Sink.Diagnostics()}, nil
}

// moduleOfQualifiedName recovers the module prefix of a lirgen-qualified
// function/method name ("module.funcName" or "module.Class.method").
func moduleOfQualifiedName(qualifiedName string) string {
	if i := strings.IndexByte(qualifiedName, '.'); i >= 0 {
		return qualifiedName[:i]
	}
	return qualifiedName
}

// collectUnits walks entryFile's import graph breadth-first via the
// loader, returning every reachable file exactly once.
func (c *Compilation) collectUnits(entryModule string, entryFile *ast.File) ([]unit, error) {
	units := []unit{{module: entryModule, file: entryFile}}
	seen := map[string]bool{entryModule: true}

	queue := []*ast.File{entryFile}
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]

		for _, imp := range f.Imports {
			path := strings.Join(imp.Path, ".")
			if seen[path] {
				continue
			}
			mod, err := c.Loader.Resolve(f.Name, path)
			if err != nil {
				return nil, fmt.Errorf("resolving import %q: %w", path, err)
			}
			seen[path] = true
			units = append(units, unit{module: mod.Path, file: mod.File})
			queue = append(queue, mod.File)
		}
	}
	return units, nil
}

// hasBlockingErrors reports whether the sink holds a hard failure
// outside of ignoreStage — used to let visibility errors through to LIR
// generation while still blocking on semantic/memory ones.
func hasBlockingErrors(sink *source.Sink, ignoreStage source.Stage) bool {
	for _, d := range sink.Diagnostics() {
		if d.Stage == ignoreStage {
			continue
		}
		if d.Severity == source.SeverityError || sink.Strict {
			return true
		}
	}
	return false
}

// CanExecute reports whether the compiled program may run: unlike LIR
// generation, execution is blocked by a visibility violation too.
func (c *Compilation) CanExecute() bool {
	return !c.Sink.HasErrors()
}
