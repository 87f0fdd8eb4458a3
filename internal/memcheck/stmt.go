package memcheck

import "github.com/netesy/limit/internal/ast"

// capture tracks, for the duration of one concurrency block, whether an
// outer-region binding was captured by move or by reference, so the
// checker can reject a binding captured both ways.
type capture struct {
	blockRegion *region
	moved map[*binding]bool
	refd map[*binding]bool
}

func (c *Checker) checkStmt(s ast.Stmt, r *region, cap *capture) {
	switch x := s.(type) {
	case *ast.VarDecl:
		c.checkVarDecl(x, r, cap)
	case *ast.ExprStmt:
		c.checkExprUse(x.X, r, false, cap)
	case *ast.Block:
		c.checkBlock(x, r, cap)
	case *ast.If:
		c.checkExprUse(x.Cond, r, false, cap)
		c.checkBlock(x.Then, r, cap)
		if blk, ok := x.Else.(*ast.Block); ok {
			c.checkBlock(blk, r, cap)
		} else if x.Else != nil {
			c.checkStmt(x.Else, r, cap)
		}
	case *ast.While:
		c.checkExprUse(x.Cond, r, false, cap)
		c.checkBlock(x.Body, r, cap)
	case *ast.For:
		r2 := newRegion(r)
		if x.Init != nil {
			c.checkStmt(x.Init, r2, cap)
		}
		if x.Cond != nil {
			c.checkExprUse(x.Cond, r2, false, cap)
		}
		if x.Step != nil {
			c.checkExprUse(x.Step, r2, false, cap)
		}
		c.checkBlock(x.Body, r2, cap)
		c.finalizeRegion(r2)
	case *ast.Iter:
		c.checkExprUse(x.Iterable, r, false, cap)
		r2 := newRegion(r)
		r2.declare(&binding{name: x.Name, kind: ast.Ref, declaredAt: rangeOf(x), refTarget: r.root})
		c.checkStmts(x.Body.Stmts, r2, cap)
		c.finalizeRegion(r2)
	case *ast.Loop:
		c.checkBlock(x.Body, r, cap)
	case *ast.Return:
		if x.Value != nil {
			c.checkReturnValue(x.Value, r)
		}
	case *ast.Break, *ast.Continue:
		// no payload to track
	case *ast.ConcurrencyBlock:
		c.checkConcurrencyBlock(x, r)
	case *ast.Import:
		// resolved externally by the module loader
	case *ast.FnDecl:
		c.checkFnBody(x) // nested function: its own independent region tree
	}
}

func (c *Checker) checkStmts(stmts []ast.Stmt, r *region, cap *capture) {
	for _, s := range stmts {
		c.checkStmt(s, r, cap)
	}
}

func (c *Checker) checkBlock(blk *ast.Block, parent *region, cap *capture) {
	r2 := newRegion(parent)
	c.checkStmts(blk.Stmts, r2, cap)
	c.finalizeRegion(r2)
}

func (c *Checker) checkVarDecl(x *ast.VarDecl, r *region, cap *capture) {
	if x.Value != nil {
		c.checkExprUse(x.Value, r, true, cap)
	}
	if !x.ResolvedType.IsValid() || !isCompound(x.ResolvedType) {
		return
	}
	kind := ast.Linear
	// Aliasing an existing ref (`var y = x;` where x is a ref) keeps the
	// borrow rather than manufacturing a new owner.
	if id, ok := x.Value.(*ast.Ident); ok {
		if src := lookup(r, id.Name); src != nil && src.kind == ast.Ref {
			r.declare(&binding{name: x.Name, kind: ast.Ref, declaredAt: rangeOf(x), refTarget: src.refTarget})
			return
		}
	}
	r.declare(&binding{name: x.Name, kind: kind, declaredAt: rangeOf(x)})
}

func (c *Checker) checkReturnValue(e ast.Expr, r *region) {
	if id, ok := e.(*ast.Ident); ok {
		b := lookup(r, id.Name)
		if b != nil {
			id.Ownership = b.kind
			switch b.kind {
			case ast.Ref:
				if !isAncestorOrSelf(b.refTarget, r.root) {
					c.errorf("E251", rangeOf(e), "escaping-reference: %s borrows a value local to this function", id.Name)
				}
			case ast.Linear:
				if b.moved {
					c.errorf("E250", rangeOf(e), "use-after-move: %s was already moved before this return", id.Name)
				}
				b.moved = true
			}
			return
		}
	}
	c.checkExprUse(e, r, true, nil)
}

// checkConcurrencyBlock enforces capture rule: a binding
// from an enclosing region that a task body touches must be captured
// either by an explicit move or by reference, never both.
func (c *Checker) checkConcurrencyBlock(x *ast.ConcurrencyBlock, r *region) {
	r2 := newRegion(r)
	cap := &capture{blockRegion: r2, moved: map[*binding]bool{}, refd: map[*binding]bool{}}
	c.checkStmts(x.Body.Stmts, r2, cap)
	c.finalizeRegion(r2)
}
