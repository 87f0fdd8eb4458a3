package lirgen

import (
	"github.com/netesy/limit/internal/ast"
	"github.com/netesy/limit/internal/lir"
)

// Field indices inside the opaque task-context record the concurrency
// opcodes read and write.
const (
	taskFieldFn = 0 // the closure to run
	taskFieldResult = 1 // its return value, once scheduled
)

// lowerConcurrencyBlock lowers `parallel {... }`/`concurrent {... }`:
// allocate a task context for the block, run its body under that
// context, then hand control back to the scheduler hook.
func (fg *fgen) lowerConcurrencyBlock(x *ast.ConcurrencyBlock) {
	ctx := fg.f.AllocReg(lir.Ptr)
	fg.emit(lir.Instruction{Op: lir.TaskContextAlloc, ResultType: lir.Ptr, Dst: ctx})
	kind := fg.f.AllocReg(lir.I32)
	kindConst := fg.f.AddConst(lir.Const{Kind: lir.ConstI64, I: int64(x.Kind)})
	fg.emit(lir.Instruction{Op: lir.LoadConst, ResultType: lir.I32, Dst: kind, HasConst: true, ConstIdx: kindConst})
	fg.emit(lir.Instruction{Op: lir.TaskContextInit, Src1: ctx, Src2: kind})

	fg.pushScope()
	fg.lowerStmts(x.Body.Stmts)
	fg.popScope()

	fg.emit(lir.Instruction{Op: lir.SchedulerRun})
}

// lowerTask lowers `task { expr }` to an opaque handle: the body is
// boxed as a zero-argument closure over its free variables, bound into
// a fresh task context as the callable the scheduler later invokes.
func (fg *fgen) lowerTask(x *ast.TaskExpr) (lir.Reg, lir.ABIType) {
	body := []ast.Stmt{&ast.ExprStmt{X: x.Body}}
	captured := freeVars(nil, body)
	envRegs := make([]lir.Reg, 0, len(captured))
	envNames := make([]string, 0, len(captured))
	for _, name := range captured {
		if r, ok := fg.resolve(name); ok {
			envRegs = append(envRegs, r)
			envNames = append(envNames, name)
		}
	}

	qualifiedName := fg.module + ".task$body"
	fn := fg.buildTaskFunction(qualifiedName, x.Body, envNames)
	fg.gen.mod.AddFunction(fn)

	fnPtr := fg.f.AllocReg(lir.Ptr)
	fg.emit(lir.Instruction{Op: lir.AllocClosure, ResultType: lir.Ptr, Dst: fnPtr, Callee: qualifiedName, Elems: envRegs})

	ctx := fg.f.AllocReg(lir.Ptr)
	fg.emit(lir.Instruction{Op: lir.TaskContextAlloc, ResultType: lir.Ptr, Dst: ctx})
	fg.emit(lir.Instruction{Op: lir.TaskSetField, Src1: ctx, Src2: fnPtr, FieldIndex: taskFieldFn})
	return ctx, lir.Ptr
}

func (fg *fgen) buildTaskFunction(qualifiedName string, body ast.Expr, envNames []string) *lir.Function {
	t := abiOf(body.Type())
	f := lir.NewFunction(qualifiedName, t)
	inner := &fgen{gen: fg.gen, f: f, module: fg.module, selfClass: fg.selfClass}
	inner.pushScope()
	for _, name := range envNames {
		r, _ := fg.resolve(name)
		pr := f.AllocReg(fg.f.RegType(r))
		f.Params = append(f.Params, pr)
		f.ParamTypes = append(f.ParamTypes, fg.f.RegType(r))
		inner.declare(name, pr)
	}
	entry := f.AddBlock("entry")
	inner.cur = entry
	v, _ := inner.lowerExpr(body)
	inner.emitReturn(v)
	inner.popScope()
	return f
}

// lowerAwait drives the scheduler hook to completion for x.X's task
// context, then reads the result field the task wrote back.
func (fg *fgen) lowerAwait(x *ast.AwaitExpr) (lir.Reg, lir.ABIType) {
	ctx, _ := fg.lowerExpr(x.X)
	fg.emit(lir.Instruction{Op: lir.SchedulerRun})
	t := abiOf(x.Type())
	result := fg.f.AllocReg(t)
	fg.emit(lir.Instruction{Op: lir.TaskGetField, ResultType: t, Dst: result, Src1: ctx, FieldIndex: taskFieldResult})
	return result, t
}
