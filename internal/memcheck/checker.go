package memcheck

import (
	"fmt"

	"github.com/netesy/limit/internal/ast"
	"github.com/netesy/limit/internal/source"
	"github.com/netesy/limit/internal/types"
)

// Checker walks one already type-checked file and reports ownership
// violations. It never mutates types — the type checker must have already run and
// resolved every expression's and declaration's Type()/ResolvedType.
type Checker struct {
	sink *source.Sink
	module string

	funcs map[string]*ast.FnDecl
	classes map[string]*ast.ClassDecl
}

func New(sink *source.Sink, module string) *Checker {
	return &Checker{
		sink: sink,
		module: module,
		funcs: map[string]*ast.FnDecl{},
		classes: map[string]*ast.ClassDecl{},
	}
}

func (c *Checker) errorf(code source.Code, rng source.Range, format string, args...any) {
	_ = c.sink.Report(source.New(code, source.StageMemory, c.module, rng, fmt.Sprintf(format, args...)))
}

// warnf reports an advisory diagnostic: a hard failure only under the
// sink's Strict mode.
func (c *Checker) warnf(code source.Code, rng source.Range, format string, args...any) {
	_ = c.sink.Report(source.New(code, source.StageMemory, c.module, rng, fmt.Sprintf(format, args...)).Warning())
}

func rangeOf(n ast.Node) source.Range {
	s, e := n.Range()
	return source.Range{Start: s, End: e}
}

// CheckFile runs the region/ownership walk over every top-level
// function and class method in f.
func (c *Checker) CheckFile(f *ast.File) {
	for _, d := range f.Decls {
		switch decl := d.(type) {
		case *ast.FnDecl:
			c.funcs[decl.Name] = decl
		case *ast.ClassDecl:
			c.classes[decl.Name] = decl
		}
	}
	for _, d := range f.Decls {
		switch decl := d.(type) {
		case *ast.FnDecl:
			c.checkFnBody(decl)
		case *ast.ClassDecl:
			for _, m := range decl.Members {
				if m.Method != nil {
					c.checkFnBody(m.Method)
				}
			}
		}
	}
}

// isCompound reports whether t is a heap/owned shape worth ownership
// tracking; primitives, funcs, and other value-ish shapes are passed and
// copied freely.
func isCompound(t types.Type) bool {
	switch t.StructuralKind() {
	case "class", "list", "dict", "struct", "tuple":
		return true
	}
	return false
}

func (c *Checker) checkFnBody(fn *ast.FnDecl) {
	if fn.IsAbstract {
		return
	}
	root := newFuncRegion()
	for _, p := range fn.Params {
		if !p.ResolvedType.IsValid() || !isCompound(p.ResolvedType) {
			continue
		}
		kind := ast.Ref
		if p.ForceLinear {
			kind = ast.Linear
		}
		b := &binding{name: p.Name, kind: kind, declaredAt: rangeOf(fn)}
		if kind == ast.Ref {
			b.refTarget = root // a caller-owned value always outlives the call
		}
		root.declare(b)
	}
	for _, s := range fn.Body {
		c.checkStmt(s, root, nil)
	}
	c.finalizeRegion(root)
}

// finalizeRegion reports every linear binding still alive (unmoved) when
// its region ends — linear-not-consumed.
func (c *Checker) finalizeRegion(r *region) {
	for _, name := range r.order {
		b := r.vars[name]
		if b.kind == ast.Linear && !b.moved {
			c.warnf("E253", b.declaredAt, "linear-not-consumed: %s falls out of scope without being consumed", b.name)
		}
	}
}
