package lirgen

import (
	"github.com/netesy/limit/internal/ast"
	"github.com/netesy/limit/internal/lir"
	"github.com/netesy/limit/internal/types"
)

// Generator lowers every file of a program into one lir.Module, keyed
// by fully-qualified function/method name so same-named functions in
// different modules never collide.
type Generator struct {
	in *types.Interner
	mod *lir.Module

	// fieldOrder records each class's field layout in declaration order,
	// since types.Class.Members is an unordered map.
	fieldOrder map[classKey][]string

	closureSeq int
}

type classKey struct{ module, name string }

func NewGenerator(in *types.Interner, moduleSetName string) *Generator {
	return &Generator{in: in, mod: lir.NewModule(moduleSetName), fieldOrder: map[classKey][]string{}}
}

// nextClosureID hands out a fresh, monotonically increasing suffix for
// naming nested-function lowerings uniquely within this generator.
func (g *Generator) nextClosureID() int {
	g.closureSeq++
	return g.closureSeq
}

func (g *Generator) fieldIndex(module, class, field string) int {
	order := g.fieldOrder[classKey{module, class}]
	for i, n := range order {
		if n == field {
			return i
		}
	}
	return -1
}

// GenFile lowers every top-level function and class method of f
// (declared in module) into g's Module.
func (g *Generator) GenFile(f *ast.File, module string) {
	for _, d := range f.Decls {
		switch decl := d.(type) {
		case *ast.FnDecl:
			if decl.IsAbstract {
				continue
			}
			fn := g.lowerFunction(module, qualifiedFunc(module, decl.Name), decl, "")
			g.mod.AddFunction(fn)
		case *ast.ClassDecl:
			g.genClass(module, decl)
		}
	}
}

func (g *Generator) Module() *lir.Module { return g.mod }

func (g *Generator) genClass(module string, decl *ast.ClassDecl) {
	var order []string
	for _, m := range decl.Members {
		if m.Field != nil {
			order = append(order, m.Field.Name)
		}
	}
	g.fieldOrder[classKey{module, decl.Name}] = order

	for _, m := range decl.Members {
		if m.Method == nil || m.Method.IsAbstract {
			continue
		}
		name := qualifiedMethod(module, decl.Name, m.Method.Name)
		if m.Method.IsInit {
			name = qualifiedMethod(module, decl.Name, "init")
		}
		fn := g.lowerFunction(module, name, m.Method, decl.Name)
		g.mod.AddFunction(fn)
	}
}

// lowerFunction builds one lir.Function for fn. selfClass is set when
// fn is a class method; self then occupies parameter slot 0, before
// fn's own declared parameters.
func (g *Generator) lowerFunction(module, qualifiedName string, fn *ast.FnDecl, selfClass string) *lir.Function {
	resultType := lir.Void
	if shape, ok := fn.ResolvedType.FuncShape(); ok {
		if shape.Fails {
			// A failing function returns the same boxed OptionalObj
			// ConstructOk/ConstructErr produce: a single Ptr register
			// carrying both the tag and the payload (see optional.go).
			resultType = lir.Ptr
		} else {
			resultType = abiOf(shape.Result)
		}
	}
	f := lir.NewFunction(qualifiedName, resultType)

	fg := &fgen{
		gen: g,
		f: f,
		module: module,
		selfClass: selfClass,
	}
	fg.pushScope()

	if selfClass != "" {
		selfType := g.in.SelfType(module, selfClass)
		r := f.AllocReg(abiOf(selfType))
		f.Params = append(f.Params, r)
		f.ParamTypes = append(f.ParamTypes, abiOf(selfType))
		fg.declare("self", r)
	}

	for _, p := range fn.Params {
		t := abiOf(p.ResolvedType)
		r := f.AllocReg(t)
		f.Params = append(f.Params, r)
		f.ParamTypes = append(f.ParamTypes, t)
		fg.declare(p.Name, r)
	}

	entry := f.AddBlock("entry")
	fg.cur = entry

	fg.lowerStmts(fn.Body)

	// A fallthrough off the end of a void function is an implicit
	// `return;`; a non-void function falling off the end is a checker
	// error (E208) that should never reach lowering.
	if fg.cur != nil {
		if _, ok := fg.cur.Terminator(); !ok {
			if f.ResultType == lir.Void {
				fg.cur.Append(lir.Instruction{Op: lir.Ret, Dst: lir.NoReg, Src1: lir.NoReg, Src2: lir.NoReg, Src3: lir.NoReg, ErrReg: lir.NoReg})
			} else {
				zero := fg.loadZero(f.ResultType)
				fg.emitReturn(zero)
			}
		}
	}

	fg.popScope()
	return f
}
