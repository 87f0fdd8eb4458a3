package typecheck

import (
	"github.com/netesy/limit/internal/ast"
	"github.com/netesy/limit/internal/types"
)

func (c *Checker) checkStmt(s ast.Stmt) {
	switch x := s.(type) {
	case *ast.VarDecl:
		c.checkLocalVarDecl(x)
	case *ast.ExprStmt:
		c.checkExpr(x.X)
	case *ast.Block:
		c.cur = newScope(c.cur)
		for _, sub := range x.Stmts {
			c.checkStmt(sub)
		}
		c.cur = c.cur.parent
	case *ast.If:
		ct := c.checkExpr(x.Cond)
		if !c.in.IsAssignable(ct, c.in.Primitive(types.Bool)) {
			c.errorf("E201", rangeOf(x), "type mismatch: if condition must be bool, got %s", ct)
		}
		c.checkStmt(x.Then)
		if x.Else != nil {
			c.checkStmt(x.Else)
		}
	case *ast.While:
		ct := c.checkExpr(x.Cond)
		if !c.in.IsAssignable(ct, c.in.Primitive(types.Bool)) {
			c.errorf("E201", rangeOf(x), "type mismatch: while condition must be bool, got %s", ct)
		}
		c.checkStmt(x.Body)
	case *ast.For:
		c.cur = newScope(c.cur)
		if x.Init != nil {
			c.checkStmt(x.Init)
		}
		if x.Cond != nil {
			c.checkExpr(x.Cond)
		}
		if x.Step != nil {
			c.checkExpr(x.Step)
		}
		c.checkStmt(x.Body)
		c.cur = c.cur.parent
	case *ast.Iter:
		it := c.checkExpr(x.Iterable)
		elem := c.in.Primitive(types.Any)
		if e, ok := it.ListElem(); ok {
			elem = e
		}
		c.cur = newScope(c.cur)
		c.cur.define(x.Name, elem)
		c.checkStmt(x.Body)
		c.cur = c.cur.parent
	case *ast.Loop:
		c.checkStmt(x.Body)
	case *ast.Return:
		c.checkReturn(x)
	case *ast.Break, *ast.Continue:
		// no payload to check
	case *ast.ConcurrencyBlock:
		c.checkStmt(x.Body)
	case *ast.Import:
		// resolved externally by the module loader
	case *ast.FnDecl:
		// a nested function declaration: check as its own scope
		c.checkFnBody(x, c.selfClass)
	}
}

func (c *Checker) checkLocalVarDecl(x *ast.VarDecl) {
	var declared types.Type
	if x.Annotation != nil {
		declared = c.resolveType(x.Annotation)
	}
	var valueT types.Type
	if x.Value != nil {
		valueT = c.checkExpr(x.Value)
		if declared.IsValid() && !c.in.IsAssignable(valueT, declared) {
			c.errorf("E201", rangeOf(x), "type mismatch: cannot assign %s to %s", valueT, declared)
		}
	}
	if !declared.IsValid() {
		declared = valueT
	}
	x.ResolvedType = declared
	c.cur.define(x.Name, declared)
}

func (c *Checker) checkReturn(x *ast.Return) {
	if len(c.results) == 0 {
		c.errorf("E208", rangeOf(x), "return outside a function body")
		if x.Value != nil {
			c.checkExpr(x.Value)
		}
		return
	}
	rc := c.results[len(c.results)-1]
	if x.Value == nil {
		if rc.success != c.in.Primitive(types.Void) && !rc.fails {
			c.errorf("E208", rangeOf(x), "missing return: function must return a value of type %s", rc.success)
		}
		return
	}
	vt := c.checkExpr(x.Value)
	want := rc.success
	if rc.fails {
		want = c.in.OptionalErr(rc.success, rc.errs)
	}
	if !c.in.IsAssignable(vt, want) {
		c.errorf("E201", rangeOf(x), "type mismatch: return value %s is not assignable to %s", vt, want)
	}
}

// alwaysReturns reports whether stmts is guaranteed to hit a return
// statement (or otherwise never fall off the end) on every path through
// it, by looking only at its final statement — anything preceding it
// either has no effect on reachability or is itself checked recursively
// when it is that final statement.
func alwaysReturns(stmts []ast.Stmt) bool {
	if len(stmts) == 0 {
		return false
	}
	return stmtAlwaysReturns(stmts[len(stmts)-1])
}

func stmtAlwaysReturns(s ast.Stmt) bool {
	switch x := s.(type) {
	case *ast.Return:
		return true
	case *ast.Block:
		return alwaysReturns(x.Stmts)
	case *ast.If:
		if x.Else == nil {
			return false
		}
		return alwaysReturns(x.Then.Stmts) && stmtAlwaysReturns(x.Else)
	case *ast.Loop:
		// An unconditional loop never falls through on its own; it only
		// does if some break can reach past it.
		return !containsBreak(x.Body.Stmts)
	case *ast.ConcurrencyBlock:
		return alwaysReturns(x.Body.Stmts)
	}
	return false
}

// containsBreak reports whether stmts contains a break that would
// escape the loop stmts belongs to (i.e. not one nested inside a
// further loop of its own, which consumes its own breaks).
func containsBreak(stmts []ast.Stmt) bool {
	for _, s := range stmts {
		if stmtContainsBreak(s) {
			return true
		}
	}
	return false
}

func stmtContainsBreak(s ast.Stmt) bool {
	switch x := s.(type) {
	case *ast.Break:
		return true
	case *ast.Block:
		return containsBreak(x.Stmts)
	case *ast.If:
		if containsBreak(x.Then.Stmts) {
			return true
		}
		return x.Else != nil && stmtContainsBreak(x.Else)
	case *ast.ConcurrencyBlock:
		return containsBreak(x.Body.Stmts)
	}
	// While/For/Iter/Loop/FnDecl each own any break nested inside them.
	return false
}
