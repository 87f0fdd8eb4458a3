package lirgen

import (
	"fmt"

	"github.com/netesy/limit/internal/ast"
	"github.com/netesy/limit/internal/lir"
)

// lowerClosureDecl lowers a nested `fn` statement: a nested function
// that captures outer bindings lowers to a function pointer plus a
// boxed environment of captured refs/values. The
// function body is generated as its own lir.Function (named uniquely
// within the enclosing one) and AllocClosure pairs it with the
// captured registers, bound to the nested function's own name so
// subsequent calls to it resolve like any other local.
func (fg *fgen) lowerClosureDecl(decl *ast.FnDecl) {
	captured := freeVars(decl.Params, decl.Body)
	envRegs := make([]lir.Reg, 0, len(captured))
	envNames := make([]string, 0, len(captured))
	for _, name := range captured {
		if r, ok := fg.resolve(name); ok {
			envRegs = append(envRegs, r)
			envNames = append(envNames, name)
		}
	}

	qualifiedName := fmt.Sprintf("%s.closure$%d", fg.module, fg.gen.nextClosureID())
	closureFn := fg.buildClosureFunction(qualifiedName, decl, envNames)
	fg.gen.mod.AddFunction(closureFn)

	dst := fg.f.AllocReg(lir.Ptr)
	fg.emit(lir.Instruction{Op: lir.AllocClosure, ResultType: lir.Ptr, Dst: dst, Callee: qualifiedName, Elems: envRegs})
	fg.declare(decl.Name, dst)
}

// buildClosureFunction lowers decl's body as an independent function
// whose parameter list is the captured environment followed by decl's
// own declared parameters, matching how AllocClosure's boxed
// environment is unpacked at call time.
func (fg *fgen) buildClosureFunction(qualifiedName string, decl *ast.FnDecl, envNames []string) *lir.Function {
	resultType := lir.Void
	if shape, ok := decl.ResolvedType.FuncShape(); ok {
		if shape.Fails {
			resultType = lir.Ptr
		} else {
			resultType = abiOf(shape.Result)
		}
	}
	f := lir.NewFunction(qualifiedName, resultType)
	inner := &fgen{gen: fg.gen, f: f, module: fg.module, selfClass: fg.selfClass}
	inner.pushScope()

	for _, name := range envNames {
		r, _ := fg.resolve(name)
		pr := f.AllocReg(fg.f.RegType(r))
		f.Params = append(f.Params, pr)
		f.ParamTypes = append(f.ParamTypes, fg.f.RegType(r))
		inner.declare(name, pr)
	}
	for _, p := range decl.Params {
		t := abiOf(p.ResolvedType)
		r := f.AllocReg(t)
		f.Params = append(f.Params, r)
		f.ParamTypes = append(f.ParamTypes, t)
		inner.declare(p.Name, r)
	}

	entry := f.AddBlock("entry")
	inner.cur = entry
	inner.lowerStmts(decl.Body)
	if _, ok := inner.cur.Terminator(); !ok {
		if f.ResultType == lir.Void {
			inner.cur.Append(lir.Instruction{Op: lir.Ret})
		} else {
			zero := inner.loadZero(f.ResultType)
			inner.emitReturn(zero)
		}
	}
	inner.popScope()
	return f
}

// freeVars returns the names decl's body references that aren't
// declared as one of its own parameters or locals — candidates for
// capture by the enclosing function.
func freeVars(params []*ast.Param, stmts []ast.Stmt) []string {
	bound := map[string]bool{}
	for _, p := range params {
		bound[p.Name] = true
	}
	seen := map[string]bool{}
	var order []string

	record := func(name string) {
		if bound[name] || seen[name] {
			return
		}
		seen[name] = true
		order = append(order, name)
	}

	var walkExpr func(e ast.Expr)
	var walkStmt func(s ast.Stmt)

	walkExpr = func(e ast.Expr) {
		if e == nil {
			return
		}
		switch x := e.(type) {
		case *ast.Ident:
			record(x.Name)
		case *ast.BinaryExpr:
			walkExpr(x.Left)
			walkExpr(x.Right)
		case *ast.UnaryExpr:
			walkExpr(x.X)
		case *ast.Assign:
			walkExpr(x.Target)
			walkExpr(x.Value)
		case *ast.CallExpr:
			walkExpr(x.Callee)
			for _, a := range x.Args {
				walkExpr(a)
			}
		case *ast.MemberExpr:
			walkExpr(x.X)
		case *ast.IndexExpr:
			walkExpr(x.X)
			walkExpr(x.Index)
		case *ast.ListLit:
			for _, el := range x.Elems {
				walkExpr(el)
			}
		case *ast.DictLit:
			for _, en := range x.Entries {
				walkExpr(en.Key)
				walkExpr(en.Value)
			}
		case *ast.StructLit:
			for _, fld := range x.Fields {
				walkExpr(fld.Value)
			}
		case *ast.RangeExpr:
			walkExpr(x.Lo)
			walkExpr(x.Hi)
		case *ast.StringInterp:
			for _, sub := range x.Exprs {
				walkExpr(sub)
			}
		case *ast.OkExpr:
			walkExpr(x.Value)
		case *ast.ErrExpr:
			walkExpr(x.Value)
		case *ast.PropagateExpr:
			walkExpr(x.X)
		case *ast.RecoverExpr:
			walkExpr(x.X)
			walkStmt(x.Fallback)
			walkExpr(x.FallbackValue)
		case *ast.MatchExpr:
			walkExpr(x.Scrutinee)
			for _, arm := range x.Arms {
				walkExpr(arm.Guard)
				walkExpr(arm.Body)
			}
		case *ast.TaskExpr:
			walkExpr(x.Body)
		case *ast.AwaitExpr:
			walkExpr(x.X)
		}
	}

	walkStmt = func(s ast.Stmt) {
		if s == nil {
			return
		}
		switch x := s.(type) {
		case *ast.VarDecl:
			walkExpr(x.Value)
			bound[x.Name] = true
		case *ast.ExprStmt:
			walkExpr(x.X)
		case *ast.Block:
			for _, st := range x.Stmts {
				walkStmt(st)
			}
		case *ast.Return:
			walkExpr(x.Value)
		case *ast.If:
			walkExpr(x.Cond)
			walkStmt(x.Then)
			walkStmt(x.Else)
		case *ast.While:
			walkExpr(x.Cond)
			walkStmt(x.Body)
		case *ast.For:
			walkStmt(x.Init)
			walkExpr(x.Cond)
			walkExpr(x.Step)
			walkStmt(x.Body)
		case *ast.Iter:
			walkExpr(x.Iterable)
			bound[x.Name] = true
			walkStmt(x.Body)
		case *ast.Loop:
			walkStmt(x.Body)
		case *ast.ConcurrencyBlock:
			walkStmt(x.Body)
		case *ast.FnDecl:
			bound[x.Name] = true
		}
	}

	for _, s := range stmts {
		walkStmt(s)
	}
	return order
}
