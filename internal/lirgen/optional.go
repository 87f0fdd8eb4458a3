package lirgen

import (
	"github.com/netesy/limit/internal/ast"
	"github.com/netesy/limit/internal/lir"
)

// lowerOk lowers `ok(value)`/`ok()` to ConstructOk.
func (fg *fgen) lowerOk(x *ast.OkExpr) (lir.Reg, lir.ABIType) {
	var payload lir.Reg = lir.NoReg
	if x.Value != nil {
		payload, _ = fg.lowerExpr(x.Value)
	}
	dst := fg.f.AllocReg(lir.Ptr)
	fg.emit(lir.Instruction{Op: lir.ConstructOk, ResultType: lir.Ptr, Dst: dst, Src1: payload})
	return dst, lir.Ptr
}

// lowerErr lowers `err(value)`/`err()` (the latter being the Absent marker).
func (fg *fgen) lowerErr(x *ast.ErrExpr) (lir.Reg, lir.ABIType) {
	var payload lir.Reg = lir.NoReg
	if x.Value != nil {
		payload, _ = fg.lowerExpr(x.Value)
	}
	dst := fg.f.AllocReg(lir.Ptr)
	fg.emit(lir.Instruction{Op: lir.ConstructErr, ResultType: lir.Ptr, Dst: dst, ErrReg: payload})
	return dst, lir.Ptr
}

// lowerPropagate lowers postfix `expr?`: IsError -> JumpIfFalse-over-propagate -> PropagateError,
// continuing on the success edge with the unwrapped value.
func (fg *fgen) lowerPropagate(x *ast.PropagateExpr) (lir.Reg, lir.ABIType) {
	opt, _ := fg.lowerExpr(x.X)
	isErr := fg.f.AllocReg(lir.Bool)
	fg.emit(lir.Instruction{Op: lir.IsError, ResultType: lir.Bool, Dst: isErr, Src1: opt})

	failBlock := fg.newBlock("propagate.fail")
	okBlock := fg.newBlock("propagate.ok")
	fg.emit(lir.Instruction{Op: lir.JumpIfFalse, Src1: isErr, Target: okBlock.ID, Target2: failBlock.ID})
	fg.cur.SetSuccs(okBlock.ID, failBlock.ID)

	fg.cur = failBlock
	fg.emit(lir.Instruction{Op: lir.PropagateError, ErrReg: opt})

	fg.cur = okBlock
	t := abiOf(x.Type())
	unwrapped := fg.f.AllocReg(t)
	fg.emit(lir.Instruction{Op: lir.UnwrapValue, ResultType: t, Dst: unwrapped, Src1: opt})
	return unwrapped, t
}

// lowerRecover lowers `expr ? else err { block }`: IsError ->
// JumpIfFalse-to-success -> bind err register -> evaluate block ->
// Jump-to-join.
func (fg *fgen) lowerRecover(x *ast.RecoverExpr) (lir.Reg, lir.ABIType) {
	opt, _ := fg.lowerExpr(x.X)
	isErr := fg.f.AllocReg(lir.Bool)
	fg.emit(lir.Instruction{Op: lir.IsError, ResultType: lir.Bool, Dst: isErr, Src1: opt})

	recoverBlock := fg.newBlock("recover.err")
	successBlock := fg.newBlock("recover.ok")
	joinBlock := fg.newBlock("recover.join")
	fg.emit(lir.Instruction{Op: lir.JumpIfFalse, Src1: isErr, Target: successBlock.ID, Target2: recoverBlock.ID})
	fg.cur.SetSuccs(successBlock.ID, recoverBlock.ID)

	t := abiOf(x.Type())
	result := fg.f.AllocReg(t)

	fg.cur = successBlock
	unwrapped := fg.f.AllocReg(t)
	fg.emit(lir.Instruction{Op: lir.UnwrapValue, ResultType: t, Dst: unwrapped, Src1: opt})
	fg.emit(lir.Instruction{Op: lir.Mov, ResultType: t, Dst: result, Src1: unwrapped})
	fg.cur.Append(lir.Instruction{Op: lir.Jump, Target: joinBlock.ID})
	fg.cur.SetSuccs(joinBlock.ID)

	fg.cur = recoverBlock
	fg.pushScope()
	if x.ErrName != "" {
		errReg := fg.f.AllocReg(lir.Ptr)
		fg.emit(lir.Instruction{Op: lir.UnwrapValue, ResultType: lir.Ptr, Dst: errReg, Src1: opt})
		fg.declare(x.ErrName, errReg)
	}
	fg.lowerStmts(x.Fallback.Stmts)
	if x.FallbackValue != nil {
		fv, _ := fg.lowerExpr(x.FallbackValue)
		fg.emit(lir.Instruction{Op: lir.Mov, ResultType: t, Dst: result, Src1: fv})
	}
	fg.popScope()
	if _, ok := fg.cur.Terminator(); !ok {
		fg.cur.Append(lir.Instruction{Op: lir.Jump, Target: joinBlock.ID})
		fg.cur.SetSuccs(joinBlock.ID)
	}

	fg.cur = joinBlock
	return result, t
}
