package lirgen

import (
	"github.com/netesy/limit/internal/ast"
	"github.com/netesy/limit/internal/lir"
)

// lowerCall lowers a direct function call, a class constructor call
// (ClassName(args...), reclassified by the type checker), or a method call
// (obj.method(args...), dispatched through the class's vtable).
func (fg *fgen) lowerCall(x *ast.CallExpr) (lir.Reg, lir.ABIType) {
	resultType := abiOf(x.Type())

	switch callee := x.Callee.(type) {
	case *ast.MemberExpr:
		obj, _ := fg.lowerExpr(callee.X)
		args := append([]lir.Reg{obj}, fg.lowerArgs(x.Args)...)
		module, class, isClass := callee.X.Type().ClassRef()
		dst := fg.f.AllocReg(resultType)
		if !isClass {
			fg.emit(lir.Instruction{Op: lir.Call, ResultType: resultType, Dst: dst, Callee: callee.Name, Args: args})
			return dst, resultType
		}
		cls, _ := fg.gen.in.LookupClass(module, class)
		if cls != nil && cls.Final {
			fg.emit(lir.Instruction{Op: lir.Call, ResultType: resultType, Dst: dst, Callee: qualifiedMethod(module, class, callee.Name), Args: args})
		} else {
			slot := fg.f.AllocReg(lir.Ptr)
			fg.emit(lir.Instruction{Op: lir.LoadVTable, ResultType: lir.Ptr, Dst: slot, Src1: obj, ClassName: class, MethodName: callee.Name})
			fg.emit(lir.Instruction{Op: lir.CallIndirect, ResultType: resultType, Dst: dst, Src1: slot, Args: args})
		}
		return dst, resultType
	case *ast.Ident:
		args := fg.lowerArgs(x.Args)
		dst := fg.f.AllocReg(resultType)
		if module, class, ok := x.Type().ClassRef(); ok && isConstructorCall(callee.Name, class) {
			fg.emitConstruct(module, class, args, dst)
			return dst, resultType
		}
		fg.emit(lir.Instruction{Op: lir.Call, ResultType: resultType, Dst: dst, Callee: qualifiedFunc(fg.module, callee.Name), Args: args})
		return dst, resultType
	default:
		fn, _ := fg.lowerExpr(x.Callee)
		args := fg.lowerArgs(x.Args)
		dst := fg.f.AllocReg(resultType)
		fg.emit(lir.Instruction{Op: lir.CallBuiltin, ResultType: resultType, Dst: dst, Src1: fn, Args: args})
		return dst, resultType
	}
}

func isConstructorCall(name, class string) bool { return name == class }

func (fg *fgen) lowerArgs(args []ast.Expr) []lir.Reg {
	out := make([]lir.Reg, len(args))
	for i, a := range args {
		out[i], _ = fg.lowerExpr(a)
	}
	return out
}

// emitConstruct allocates a class instance and runs its init method.
func (fg *fgen) emitConstruct(module, class string, args []lir.Reg, dst lir.Reg) {
	fg.emit(lir.Instruction{Op: lir.Alloc, ResultType: lir.Ptr, Dst: dst, ClassName: class})
	initArgs := append([]lir.Reg{dst}, args...)
	discard := fg.f.AllocReg(lir.Void)
	fg.emit(lir.Instruction{Op: lir.Call, ResultType: lir.Void, Dst: discard, Callee: qualifiedMethod(module, class, "init"), Args: initArgs})
}
