package lirgen

import (
	"github.com/netesy/limit/internal/ast"
	"github.com/netesy/limit/internal/lir"
)

// lowerIf compiles `if`/`else`: JumpIfFalse to the
// else-block, Jump to the join after each arm.
func (fg *fgen) lowerIf(x *ast.If) {
	cond, _ := fg.lowerExpr(x.Cond)
	thenBlock := fg.newBlock("if.then")
	joinBlock := fg.newBlock("if.join")

	var elseBlock *lir.BasicBlock
	if x.Else != nil {
		elseBlock = fg.newBlock("if.else")
	} else {
		elseBlock = joinBlock
	}
	fg.emit(lir.Instruction{Op: lir.JumpIfFalse, Src1: cond, Target: elseBlock.ID, Target2: thenBlock.ID})
	fg.cur.SetSuccs(thenBlock.ID, elseBlock.ID)

	fg.cur = thenBlock
	fg.pushScope()
	fg.lowerStmts(x.Then.Stmts)
	fg.popScope()
	fg.closeInto(joinBlock)

	if x.Else != nil {
		fg.cur = elseBlock
		fg.pushScope()
		switch e := x.Else.(type) {
		case *ast.Block:
			fg.lowerStmts(e.Stmts)
		default:
			fg.lowerStmt(x.Else)
		}
		fg.popScope()
		fg.closeInto(joinBlock)
	}

	fg.cur = joinBlock
}

// closeInto appends an unconditional Jump to target if fg.cur does not
// already end in a terminator (e.g. the arm returned or propagated).
func (fg *fgen) closeInto(target *lir.BasicBlock) {
	if _, ok := fg.cur.Terminator(); ok {
		return
	}
	fg.cur.Append(lir.Instruction{Op: lir.Jump, Target: target.ID})
	fg.cur.SetSuccs(target.ID)
}

func (fg *fgen) lowerWhile(x *ast.While) {
	header := fg.newBlock("while.header")
	body := fg.newBlock("while.body")
	exit := fg.newBlock("while.exit")

	fg.closeInto(header)
	fg.cur = header
	cond, _ := fg.lowerExpr(x.Cond)
	fg.emit(lir.Instruction{Op: lir.JumpIfFalse, Src1: cond, Target: exit.ID, Target2: body.ID})
	fg.cur.SetSuccs(body.ID, exit.ID)

	fg.loops = append(fg.loops, loopFrame{continueTarget: header.ID, exitTarget: exit.ID})
	fg.cur = body
	fg.pushScope()
	fg.lowerStmts(x.Body.Stmts)
	fg.popScope()
	fg.closeInto(header)
	fg.loops = fg.loops[:len(fg.loops)-1]

	fg.cur = exit
}

func (fg *fgen) lowerFor(x *ast.For) {
	fg.pushScope()
	if x.Init != nil {
		fg.lowerStmt(x.Init)
	}
	header := fg.newBlock("for.header")
	body := fg.newBlock("for.body")
	step := fg.newBlock("for.step")
	exit := fg.newBlock("for.exit")

	fg.closeInto(header)
	fg.cur = header
	if x.Cond != nil {
		cond, _ := fg.lowerExpr(x.Cond)
		fg.emit(lir.Instruction{Op: lir.JumpIfFalse, Src1: cond, Target: exit.ID, Target2: body.ID})
		fg.cur.SetSuccs(body.ID, exit.ID)
	} else {
		fg.cur.Append(lir.Instruction{Op: lir.Jump, Target: body.ID})
		fg.cur.SetSuccs(body.ID)
	}

	fg.loops = append(fg.loops, loopFrame{continueTarget: step.ID, exitTarget: exit.ID})
	fg.cur = body
	fg.pushScope()
	fg.lowerStmts(x.Body.Stmts)
	fg.popScope()
	fg.closeInto(step)
	fg.loops = fg.loops[:len(fg.loops)-1]

	fg.cur = step
	if x.Step != nil {
		fg.lowerExpr(x.Step)
	}
	fg.closeInto(header)

	fg.cur = exit
	fg.popScope()
}

// lowerIter compiles `iter (name in iterable) { body }` with index-based
// container reads: MakeIter is not a distinct family in this VM, so the
// loop variable is read by index each iteration via LoadElem against a
// running index register, matching the same exit shape as a counted
// `for`. The bounds test reuses ChannelHasData, which the VM also
// answers for a list container (index < length).
func (fg *fgen) lowerIter(x *ast.Iter) {
	container, _ := fg.lowerExpr(x.Iterable)
	fg.pushScope()
	idxConst := fg.f.AddConst(lir.Const{Kind: lir.ConstI64})
	idx := fg.f.AllocReg(lir.I32)
	fg.emit(lir.Instruction{Op: lir.LoadConst, ResultType: lir.I32, Dst: idx, HasConst: true, ConstIdx: idxConst})

	header := fg.newBlock("iter.header")
	body := fg.newBlock("iter.body")
	step := fg.newBlock("iter.step")
	exit := fg.newBlock("iter.exit")

	fg.closeInto(header)
	fg.cur = header
	hasNext := fg.f.AllocReg(lir.Bool)
	fg.emit(lir.Instruction{Op: lir.ChannelHasData, ResultType: lir.Bool, Dst: hasNext, Src1: container, Src2: idx})
	fg.emit(lir.Instruction{Op: lir.JumpIfFalse, Src1: hasNext, Target: exit.ID, Target2: body.ID})
	fg.cur.SetSuccs(body.ID, exit.ID)

	fg.loops = append(fg.loops, loopFrame{continueTarget: step.ID, exitTarget: exit.ID})
	fg.cur = body
	fg.pushScope()
	elemType := lir.Ptr
	if et, ok := x.Iterable.Type().ListElem(); ok {
		elemType = abiOf(et)
	}
	elem := fg.f.AllocReg(elemType)
	fg.emit(lir.Instruction{Op: lir.LoadElem, ResultType: elemType, Dst: elem, Src1: container, Src2: idx})
	fg.declare(x.Name, elem)
	fg.lowerStmts(x.Body.Stmts)
	fg.popScope()
	fg.closeInto(step)
	fg.loops = fg.loops[:len(fg.loops)-1]

	fg.cur = step
	one := fg.f.AllocReg(lir.I32)
	oneConst := fg.f.AddConst(lir.Const{Kind: lir.ConstI64, I: 1})
	fg.emit(lir.Instruction{Op: lir.LoadConst, ResultType: lir.I32, Dst: one, HasConst: true, ConstIdx: oneConst})
	fg.emit(lir.Instruction{Op: lir.Add, ResultType: lir.I32, Dst: idx, Src1: idx, Src2: one})
	fg.closeInto(header)

	fg.cur = exit
	fg.popScope()
}

func (fg *fgen) lowerLoop(x *ast.Loop) {
	header := fg.newBlock("loop.header")
	exit := fg.newBlock("loop.exit")

	fg.closeInto(header)
	fg.loops = append(fg.loops, loopFrame{continueTarget: header.ID, exitTarget: exit.ID})
	fg.cur = header
	fg.pushScope()
	fg.lowerStmts(x.Body.Stmts)
	fg.popScope()
	fg.closeInto(header)
	fg.loops = fg.loops[:len(fg.loops)-1]

	fg.cur = exit
}

func (fg *fgen) lowerBreak() {
	if len(fg.loops) == 0 {
		return
	}
	top := fg.loops[len(fg.loops)-1]
	fg.cur.Append(lir.Instruction{Op: lir.Jump, Target: top.exitTarget})
	fg.cur.SetSuccs(top.exitTarget)
}

func (fg *fgen) lowerContinue() {
	if len(fg.loops) == 0 {
		return
	}
	top := fg.loops[len(fg.loops)-1]
	fg.cur.Append(lir.Instruction{Op: lir.Jump, Target: top.continueTarget})
	fg.cur.SetSuccs(top.continueTarget)
}

// lowerMatchExpr compiles `match` as a linear sequence of tests, tied by
// source order. Each arm becomes a guard
// block (the `where` clause, if any) followed by a body block; a
// mismatched pattern or failed guard falls through to the next arm.
func (fg *fgen) lowerMatchExpr(x *ast.MatchExpr) (lir.Reg, lir.ABIType) {
	scrutinee, _ := fg.lowerExpr(x.Scrutinee)
	t := abiOf(x.Type())
	result := fg.f.AllocReg(t)
	joinBlock := fg.newBlock("match.join")

	for i, arm := range x.Arms {
		nextBlock := fg.newBlock("match.next")
		if i == len(x.Arms)-1 {
			nextBlock = joinBlock
		}
		matched := fg.lowerPatternTest(arm.Pattern, scrutinee)
		bodyBlock := fg.newBlock("match.body")
		fg.emit(lir.Instruction{Op: lir.JumpIfFalse, Src1: matched, Target: nextBlock.ID, Target2: bodyBlock.ID})
		fg.cur.SetSuccs(bodyBlock.ID, nextBlock.ID)

		fg.cur = bodyBlock
		fg.pushScope()
		fg.bindPattern(arm.Pattern, scrutinee)
		if arm.Guard != nil {
			guardVal, _ := fg.lowerExpr(arm.Guard)
			guardBody := fg.newBlock("match.guard.body")
			fg.emit(lir.Instruction{Op: lir.JumpIfFalse, Src1: guardVal, Target: nextBlock.ID, Target2: guardBody.ID})
			fg.cur.SetSuccs(guardBody.ID, nextBlock.ID)
			fg.cur = guardBody
		}
		v, _ := fg.lowerExpr(arm.Body)
		fg.emit(lir.Instruction{Op: lir.Mov, ResultType: t, Dst: result, Src1: v})
		fg.popScope()
		fg.closeInto(joinBlock)

		if nextBlock != joinBlock {
			fg.cur = nextBlock
		}
	}

	fg.cur = joinBlock
	return result, t
}

// lowerPatternTest emits the comparison(s) for one match arm's pattern,
// returning a Bool register. Exhaustiveness and reachability have
// already been checked; this only needs to reproduce the runtime
// test.
func (fg *fgen) lowerPatternTest(p ast.Pattern, scrutinee lir.Reg) lir.Reg {
	switch pat := p.(type) {
	case *ast.WildcardPattern, *ast.BindPattern:
		return fg.loadTrue()
	case *ast.LiteralPattern:
		litVal, _ := fg.lowerExpr(pat.Value)
		eq := fg.f.AllocReg(lir.Bool)
		fg.emit(lir.Instruction{Op: lir.CmpEq, ResultType: lir.Bool, Dst: eq, Src1: scrutinee, Src2: litVal})
		return eq
	case *ast.VariantPattern:
		tagConst := fg.f.AddConst(lir.Const{Kind: lir.ConstStr, S: pat.Tag})
		tagReg := fg.f.AllocReg(lir.Ptr)
		fg.emit(lir.Instruction{Op: lir.LoadConst, ResultType: lir.Ptr, Dst: tagReg, HasConst: true, ConstIdx: tagConst})
		eq := fg.f.AllocReg(lir.Bool)
		fg.emit(lir.Instruction{Op: lir.CmpEq, ResultType: lir.Bool, Dst: eq, Src1: scrutinee, Src2: tagReg})
		return eq
	case *ast.TuplePattern, *ast.StructPattern:
		return fg.loadTrue()
	}
	return fg.loadTrue()
}

func (fg *fgen) loadTrue() lir.Reg {
	r, _ := fg.loadConst(lir.Const{Kind: lir.ConstBool, I: 1, B: true}, lir.Bool)
	return r
}

// bindPattern declares the names a (now-matched) pattern introduces.
func (fg *fgen) bindPattern(p ast.Pattern, scrutinee lir.Reg) {
	switch pat := p.(type) {
	case *ast.BindPattern:
		fg.declare(pat.Name, scrutinee)
	case *ast.VariantPattern:
		for i, sub := range pat.SubPats {
			payload := fg.f.AllocReg(lir.Ptr)
			fg.emit(lir.Instruction{Op: lir.LoadElem, ResultType: lir.Ptr, Dst: payload, Src1: scrutinee, Src2: fg.loadIndex(i)})
			fg.bindPattern(sub, payload)
		}
	case *ast.TuplePattern:
		for i, sub := range pat.Elems {
			elem := fg.f.AllocReg(lir.Ptr)
			fg.emit(lir.Instruction{Op: lir.LoadElem, ResultType: lir.Ptr, Dst: elem, Src1: scrutinee, Src2: fg.loadIndex(i)})
			fg.bindPattern(sub, elem)
		}
	case *ast.StructPattern:
		for _, field := range pat.Fields {
			v := fg.f.AllocReg(lir.Ptr)
			fg.emit(lir.Instruction{Op: lir.LoadField, ResultType: lir.Ptr, Dst: v, Src1: scrutinee, FieldIndex: 0})
			fg.bindPattern(field.Pat, v)
		}
	}
}

func (fg *fgen) loadIndex(i int) lir.Reg {
	r, _ := fg.loadConst(lir.Const{Kind: lir.ConstI64, I: int64(i)}, lir.I32)
	return r
}
