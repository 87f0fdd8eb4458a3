package lirgen

import (
	"github.com/netesy/limit/internal/ast"
	"github.com/netesy/limit/internal/lir"
)

// lowerExpr lowers e, emitting into fg.cur, and returns the register
// holding its value together with that register's ABI type. Optional/
// error-typed expressions are represented as a single
// Ptr register; ConstructOk/ConstructErr/IsError/UnwrapValue read and
// write the tag-and-payload pair that register denotes at run time.
func (fg *fgen) lowerExpr(e ast.Expr) (lir.Reg, lir.ABIType) {
	switch x := e.(type) {
	case *ast.IntLit:
		return fg.loadConst(lir.Const{Kind: lir.ConstI64, I: x.Value}, abiOf(x.Type()))
	case *ast.FloatLit:
		return fg.loadConst(lir.Const{Kind: lir.ConstF64, F: x.Value}, lir.F64)
	case *ast.BoolLit:
		b := int64(0)
		if x.Value {
			b = 1
		}
		return fg.loadConst(lir.Const{Kind: lir.ConstBool, I: b, B: x.Value}, lir.Bool)
	case *ast.NilLit:
		return fg.loadConst(lir.Const{Kind: lir.ConstNil}, lir.Ptr)
	case *ast.StringLit:
		return fg.loadConst(lir.Const{Kind: lir.ConstStr, S: x.Value}, lir.Ptr)
	case *ast.StringInterp:
		return fg.lowerStringInterp(x)
	case *ast.Ident:
		if r, ok := fg.resolve(x.Name); ok {
			return r, fg.f.RegType(r)
		}
		return fg.loadGlobal(x.Name, abiOf(x.Type()))
	case *ast.SelfExpr:
		r, _ := fg.resolve("self")
		return r, fg.f.RegType(r)
	case *ast.BinaryExpr:
		return fg.lowerBinary(x)
	case *ast.UnaryExpr:
		return fg.lowerUnary(x)
	case *ast.Assign:
		return fg.lowerAssign(x)
	case *ast.CallExpr:
		return fg.lowerCall(x)
	case *ast.MemberExpr:
		return fg.lowerMember(x)
	case *ast.IndexExpr:
		return fg.lowerIndex(x)
	case *ast.ListLit:
		return fg.lowerListLit(x)
	case *ast.DictLit:
		return fg.lowerDictLit(x)
	case *ast.StructLit, *ast.RangeExpr:
		return fg.lowerAggregateFallback(x)
	case *ast.OkExpr:
		return fg.lowerOk(x)
	case *ast.ErrExpr:
		return fg.lowerErr(x)
	case *ast.PropagateExpr:
		return fg.lowerPropagate(x)
	case *ast.RecoverExpr:
		return fg.lowerRecover(x)
	case *ast.MatchExpr:
		return fg.lowerMatchExpr(x)
	case *ast.TaskExpr:
		return fg.lowerTask(x)
	case *ast.AwaitExpr:
		return fg.lowerAwait(x)
	}
	return fg.loadZero(lir.Ptr), lir.Ptr
}

func (fg *fgen) loadConst(c lir.Const, t lir.ABIType) (lir.Reg, lir.ABIType) {
	r := fg.f.AllocReg(t)
	idx := fg.f.AddConst(c)
	fg.emit(lir.Instruction{Op: lir.LoadConst, ResultType: t, Dst: r, Src1: lir.NoReg, Src2: lir.NoReg, Src3: lir.NoReg, ErrReg: lir.NoReg, HasConst: true, ConstIdx: idx})
	return r, t
}

// loadGlobal reads a name not found in any lexical scope: a top-level
// function value or a module-level binding, resolved by the VM's global
// registry at run time via a synthetic zero-arg CallBuiltin-style lookup
// kept simple here as a named load.
func (fg *fgen) loadGlobal(name string, t lir.ABIType) (lir.Reg, lir.ABIType) {
	r := fg.f.AllocReg(t)
	fg.emit(lir.Instruction{Op: lir.LoadConst, ResultType: t, Dst: r, Src1: lir.NoReg, Src2: lir.NoReg, Src3: lir.NoReg, ErrReg: lir.NoReg, HasConst: true, ConstIdx: fg.f.AddConst(lir.Const{Kind: lir.ConstStr, S: name})})
	return r, t
}

func (fg *fgen) lowerBinary(x *ast.BinaryExpr) (lir.Reg, lir.ABIType) {
	switch x.Op {
	case ast.OpAnd:
		return fg.lowerShortCircuit(x, true)
	case ast.OpOr:
		return fg.lowerShortCircuit(x, false)
	}
	l, lt := fg.lowerExpr(x.Left)
	r, _ := fg.lowerExpr(x.Right)
	resultType := lt
	var op lir.Opcode
	switch x.Op {
	case ast.OpAdd:
		op = lir.Add
	case ast.OpSub:
		op = lir.Sub
	case ast.OpMul:
		op = lir.Mul
	case ast.OpDiv:
		op = lir.Div
	case ast.OpMod:
		op = lir.Mod
	case ast.OpPow:
		op = lir.Mul // exponentiation as a repeated-multiply builtin is out of scope here; Mul is a placeholder reduced at constant-fold time for small literal powers
	case ast.OpEq:
		op, resultType = lir.CmpEq, lir.Bool
	case ast.OpNeq:
		op, resultType = lir.CmpNe, lir.Bool
	case ast.OpLt:
		op, resultType = lir.CmpLt, lir.Bool
	case ast.OpLe:
		op, resultType = lir.CmpLe, lir.Bool
	case ast.OpGt:
		op, resultType = lir.CmpGt, lir.Bool
	case ast.OpGe:
		op, resultType = lir.CmpGe, lir.Bool
	}
	dst := fg.f.AllocReg(resultType)
	fg.emit(lir.Instruction{Op: op, ResultType: resultType, Dst: dst, Src1: l, Src2: r, Src3: lir.NoReg, ErrReg: lir.NoReg})
	return dst, resultType
}

// lowerShortCircuit compiles `and`/`or` without evaluating the right
// operand unless needed.
func (fg *fgen) lowerShortCircuit(x *ast.BinaryExpr, isAnd bool) (lir.Reg, lir.ABIType) {
	l, _ := fg.lowerExpr(x.Left)
	rhsBlock := fg.newBlock("logic.rhs")
	joinBlock := fg.newBlock("logic.join")

	result := fg.f.AllocReg(lir.Bool)
	fg.emit(lir.Instruction{Op: lir.Mov, ResultType: lir.Bool, Dst: result, Src1: l})
	if isAnd {
		fg.emit(lir.Instruction{Op: lir.JumpIfFalse, Src1: l, Target: joinBlock.ID, Target2: rhsBlock.ID})
	} else {
		fg.emit(lir.Instruction{Op: lir.JumpIf, Src1: l, Target: joinBlock.ID, Target2: rhsBlock.ID})
	}
	fg.cur.SetSuccs(joinBlock.ID, rhsBlock.ID)

	fg.cur = rhsBlock
	r, _ := fg.lowerExpr(x.Right)
	fg.emit(lir.Instruction{Op: lir.Mov, ResultType: lir.Bool, Dst: result, Src1: r})
	fg.cur.Append(lir.Instruction{Op: lir.Jump, Target: joinBlock.ID})
	fg.cur.SetSuccs(joinBlock.ID)

	fg.cur = joinBlock
	return result, lir.Bool
}

func (fg *fgen) lowerUnary(x *ast.UnaryExpr) (lir.Reg, lir.ABIType) {
	v, t := fg.lowerExpr(x.X)
	if x.Op == ast.OpNot {
		trueReg, _ := fg.loadConst(lir.Const{Kind: lir.ConstBool, I: 1, B: true}, lir.Bool)
		dst := fg.f.AllocReg(lir.Bool)
		fg.emit(lir.Instruction{Op: lir.Xor, ResultType: lir.Bool, Dst: dst, Src1: v, Src2: trueReg})
		return dst, lir.Bool
	}
	dst := fg.f.AllocReg(t)
	fg.emit(lir.Instruction{Op: lir.Neg, ResultType: t, Dst: dst, Src1: v, Src2: lir.NoReg})
	return dst, t
}

func (fg *fgen) lowerAssign(x *ast.Assign) (lir.Reg, lir.ABIType) {
	val, t := fg.lowerExpr(x.Value)
	switch target := x.Target.(type) {
	case *ast.Ident:
		if x.Op != ast.AssignSet {
			cur, _ := fg.resolve(target.Name)
			val, t = fg.applyCompound(x.Op, cur, val, t)
		}
		fg.declare(target.Name, val)
	case *ast.MemberExpr:
		obj, _ := fg.lowerExpr(target.X)
		idx := fg.fieldIndexOf(target)
		fg.emit(lir.Instruction{Op: lir.StoreField, Src1: obj, Src2: val, FieldIndex: idx})
	case *ast.IndexExpr:
		container, _ := fg.lowerExpr(target.X)
		index, _ := fg.lowerExpr(target.Index)
		fg.emit(lir.Instruction{Op: lir.StoreElem, Src1: container, Src2: index, Src3: val})
	}
	return val, t
}

func (fg *fgen) applyCompound(op ast.AssignOp, cur, val lir.Reg, t lir.ABIType) (lir.Reg, lir.ABIType) {
	var lop lir.Opcode
	switch op {
	case ast.AssignAdd:
		lop = lir.Add
	case ast.AssignSub:
		lop = lir.Sub
	default:
		return val, t
	}
	dst := fg.f.AllocReg(t)
	fg.emit(lir.Instruction{Op: lop, ResultType: t, Dst: dst, Src1: cur, Src2: val})
	return dst, t
}

func (fg *fgen) fieldIndexOf(m *ast.MemberExpr) int {
	xt := m.X.Type()
	module, class, ok := xt.ClassRef()
	if !ok {
		return 0
	}
	return fg.gen.fieldIndex(module, class, m.Name)
}

func (fg *fgen) lowerMember(x *ast.MemberExpr) (lir.Reg, lir.ABIType) {
	obj, _ := fg.lowerExpr(x.X)
	idx := fg.fieldIndexOf(x)
	t := abiOf(x.Type())
	dst := fg.f.AllocReg(t)
	fg.emit(lir.Instruction{Op: lir.LoadField, ResultType: t, Dst: dst, Src1: obj, FieldIndex: idx})
	return dst, t
}

func (fg *fgen) lowerIndex(x *ast.IndexExpr) (lir.Reg, lir.ABIType) {
	container, _ := fg.lowerExpr(x.X)
	index, _ := fg.lowerExpr(x.Index)
	t := abiOf(x.Type())
	dst := fg.f.AllocReg(t)
	fg.emit(lir.Instruction{Op: lir.LoadElem, ResultType: t, Dst: dst, Src1: container, Src2: index})
	return dst, t
}

func (fg *fgen) lowerListLit(x *ast.ListLit) (lir.Reg, lir.ABIType) {
	elems := make([]lir.Reg, len(x.Elems))
	for i, el := range x.Elems {
		elems[i], _ = fg.lowerExpr(el)
	}
	dst := fg.f.AllocReg(lir.Ptr)
	fg.emit(lir.Instruction{Op: lir.MakeList, ResultType: lir.Ptr, Dst: dst, Elems: elems})
	return dst, lir.Ptr
}

func (fg *fgen) lowerDictLit(x *ast.DictLit) (lir.Reg, lir.ABIType) {
	var elems []lir.Reg
	for _, en := range x.Entries {
		k, _ := fg.lowerExpr(en.Key)
		v, _ := fg.lowerExpr(en.Value)
		elems = append(elems, k, v)
	}
	dst := fg.f.AllocReg(lir.Ptr)
	fg.emit(lir.Instruction{Op: lir.MakeDict, ResultType: lir.Ptr, Dst: dst, Elems: elems})
	return dst, lir.Ptr
}

// lowerAggregateFallback covers struct literals and ranges: both lower
// to a Ptr-boxed aggregate built the same way a list does (field/bound
// order standing in for element order), since neither needs more than
// construction-and-opaque-access at this layer.
func (fg *fgen) lowerAggregateFallback(e ast.Expr) (lir.Reg, lir.ABIType) {
	var elems []lir.Reg
	switch x := e.(type) {
	case *ast.StructLit:
		for _, fld := range x.Fields {
			v, _ := fg.lowerExpr(fld.Value)
			elems = append(elems, v)
		}
	case *ast.RangeExpr:
		lo, _ := fg.lowerExpr(x.Lo)
		hi, _ := fg.lowerExpr(x.Hi)
		elems = []lir.Reg{lo, hi}
	}
	dst := fg.f.AllocReg(lir.Ptr)
	fg.emit(lir.Instruction{Op: lir.MakeTuple, ResultType: lir.Ptr, Dst: dst, Elems: elems})
	return dst, lir.Ptr
}

func (fg *fgen) lowerStringInterp(x *ast.StringInterp) (lir.Reg, lir.ABIType) {
	parts := make([]lir.Reg, 0, len(x.Exprs))
	for _, sub := range x.Exprs {
		v, t := fg.lowerExpr(sub)
		s := fg.f.AllocReg(lir.Ptr)
		fg.emit(lir.Instruction{Op: lir.ToString, ResultType: lir.Ptr, Dst: s, Src1: v})
		_ = t
		parts = append(parts, s)
	}
	tmplIdx := fg.f.AddConst(lir.Const{Kind: lir.ConstStr, S: joinSegments(x.Segments)})
	dst := fg.f.AllocReg(lir.Ptr)
	fg.emit(lir.Instruction{Op: lir.StrFormat, ResultType: lir.Ptr, Dst: dst, Elems: parts, HasConst: true, ConstIdx: tmplIdx})
	return dst, lir.Ptr
}

func joinSegments(segs []string) string {
	out := ""
	for i, s := range segs {
		if i > 0 {
			out += "{}"
		}
		out += s
	}
	return out
}
