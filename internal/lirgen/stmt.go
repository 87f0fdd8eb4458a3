package lirgen

import (
	"github.com/netesy/limit/internal/ast"
	"github.com/netesy/limit/internal/lir"
)

// lowerStmts lowers stmts in order into fg.cur, stopping early if a
// statement already closed the current block with a terminator (a
// `return`/`break`/`continue`/propagate makes the remainder of the list
// unreachable, matching the checker's own reachability analysis).
func (fg *fgen) lowerStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		if _, ok := fg.cur.Terminator(); ok {
			return
		}
		fg.lowerStmt(s)
	}
}

func (fg *fgen) lowerStmt(s ast.Stmt) {
	switch x := s.(type) {
	case *ast.VarDecl:
		v, t := fg.lowerExpr(x.Value)
		_ = t
		fg.declare(x.Name, v)
	case *ast.ExprStmt:
		fg.lowerExpr(x.X)
	case *ast.Block:
		fg.pushScope()
		fg.lowerStmts(x.Stmts)
		fg.popScope()
	case *ast.Return:
		if x.Value == nil {
			fg.cur.Append(lir.Instruction{Op: lir.Ret, Dst: lir.NoReg, Src1: lir.NoReg, Src2: lir.NoReg, Src3: lir.NoReg, ErrReg: lir.NoReg})
			return
		}
		v, _ := fg.lowerExpr(x.Value)
		fg.emitReturn(v)
	case *ast.Break:
		fg.lowerBreak()
	case *ast.Continue:
		fg.lowerContinue()
	case *ast.If:
		fg.lowerIf(x)
	case *ast.While:
		fg.lowerWhile(x)
	case *ast.For:
		fg.lowerFor(x)
	case *ast.Iter:
		fg.lowerIter(x)
	case *ast.Loop:
		fg.lowerLoop(x)
	case *ast.ConcurrencyBlock:
		fg.lowerConcurrencyBlock(x)
	case *ast.FnDecl:
		fg.lowerClosureDecl(x)
	}
}
