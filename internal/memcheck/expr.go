package memcheck

import "github.com/netesy/limit/internal/ast"

// checkExprUse walks e, classifying every Ident it touches and reporting
// move violations. consuming marks a position that takes ownership of a
// linear value outright (an initializer, an argument to a linear
// parameter, a list/struct element, a plain return); everything else is
// treated as a borrow.
func (c *Checker) checkExprUse(e ast.Expr, r *region, consuming bool, cap *capture) {
	if e == nil {
		return
	}
	switch x := e.(type) {
	case *ast.Ident:
		c.useIdent(x, r, consuming, cap)
	case *ast.BinaryExpr:
		c.checkExprUse(x.Left, r, false, cap)
		c.checkExprUse(x.Right, r, false, cap)
	case *ast.UnaryExpr:
		c.checkExprUse(x.X, r, false, cap)
	case *ast.Assign:
		c.checkExprUse(x.Value, r, true, cap)
		if id, ok := x.Target.(*ast.Ident); ok {
			if b := lookup(r, id.Name); b != nil && b.kind == ast.Linear {
				b.moved = false // reassignment re-establishes ownership
			}
		} else {
			c.checkExprUse(x.Target, r, false, cap)
		}
	case *ast.CallExpr:
		c.checkCall(x, r, cap)
	case *ast.MemberExpr:
		c.checkExprUse(x.X, r, false, cap) // field access borrows the receiver
	case *ast.IndexExpr:
		c.checkExprUse(x.X, r, false, cap)
		c.checkExprUse(x.Index, r, false, cap)
	case *ast.PropagateExpr:
		c.checkExprUse(x.X, r, consuming, cap)
	case *ast.RecoverExpr:
		c.checkExprUse(x.X, r, false, cap)
		c.checkBlock(x.Fallback, r, cap)
		c.checkExprUse(x.FallbackValue, r, false, cap)
	case *ast.OkExpr:
		c.checkExprUse(x.Value, r, true, cap)
	case *ast.ErrExpr:
		c.checkExprUse(x.Value, r, true, cap)
	case *ast.RangeExpr:
		c.checkExprUse(x.Lo, r, false, cap)
		c.checkExprUse(x.Hi, r, false, cap)
	case *ast.ListLit:
		for _, el := range x.Elems {
			c.checkExprUse(el, r, true, cap)
		}
	case *ast.DictLit:
		for _, en := range x.Entries {
			c.checkExprUse(en.Key, r, false, cap)
			c.checkExprUse(en.Value, r, true, cap)
		}
	case *ast.StructLit:
		for _, f := range x.Fields {
			c.checkExprUse(f.Value, r, true, cap)
		}
	case *ast.MatchExpr:
		c.checkExprUse(x.Scrutinee, r, false, cap)
		for _, arm := range x.Arms {
			c.checkExprUse(arm.Guard, r, false, cap)
			c.checkExprUse(arm.Body, r, false, cap)
		}
	case *ast.TaskExpr:
		c.checkExprUse(x.Body, r, false, cap)
	case *ast.AwaitExpr:
		c.checkExprUse(x.X, r, false, cap)
	case *ast.StringInterp:
		for _, sub := range x.Exprs {
			c.checkExprUse(sub, r, false, cap)
		}
	}
}

func (c *Checker) useIdent(x *ast.Ident, r *region, consuming bool, cap *capture) {
	b := lookup(r, x.Name)
	if b == nil {
		return
	}
	x.Ownership = b.kind

	// Inside a concurrency block, classify every touch of a binding
	// declared outside the block as either a move-capture or a
	// ref-capture, and reject a binding that gets both.
	if cap != nil && isAncestorOrSelf(b.region, cap.blockRegion) && b.region != cap.blockRegion {
		if consuming {
			cap.moved[b] = true
		} else {
			cap.refd[b] = true
		}
		if cap.moved[b] && cap.refd[b] {
			c.errorf("E252", rangeOf(x), "double-move: %s is captured by both move and reference in the same concurrency block", x.Name)
		}
	}

	if b.kind != ast.Linear {
		return
	}
	if b.moved {
		if consuming {
			c.errorf("E252", rangeOf(x), "double-move: %s was already moved", x.Name)
		} else {
			c.errorf("E250", rangeOf(x), "use-after-move: %s was already moved", x.Name)
		}
		return
	}
	if consuming {
		b.moved = true
	}
}

func (c *Checker) checkCall(x *ast.CallExpr, r *region, cap *capture) {
	c.checkExprUse(x.Callee, r, false, cap)
	params := c.paramsForCallee(x.Callee)
	for i, a := range x.Args {
		consuming := false
		if params != nil && i < len(params) {
			consuming = params[i].ForceLinear
		}
		c.checkExprUse(a, r, consuming, cap)
	}
}

// paramsForCallee resolves a direct function-name or class-name callee
// to the parameter list that governs argument ownership; anything more
// dynamic (a member method, a value held in a variable) is treated as
// borrowing every argument, matching the ref-by-default rule.
func (c *Checker) paramsForCallee(callee ast.Expr) []*ast.Param {
	id, ok := callee.(*ast.Ident)
	if !ok {
		return nil
	}
	if fn, ok := c.funcs[id.Name]; ok {
		return fn.Params
	}
	if cls, ok := c.classes[id.Name]; ok {
		for _, m := range cls.Members {
			if m.Method != nil && m.Method.IsInit {
				return m.Method.Params
			}
		}
	}
	return nil
}
