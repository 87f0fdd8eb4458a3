package typecheck

import (
	"github.com/netesy/limit/internal/ast"
	"github.com/netesy/limit/internal/types"
)

// checkMatch types a match expression's scrutinee and every arm, then
// verifies exhaustiveness per the: guarded arms never count
// toward covering a variant, and a wildcard always covers the rest.
func (c *Checker) checkMatch(x *ast.MatchExpr) types.Type {
	scrutinee := c.checkExpr(x.Scrutinee)
	variants, kind := coverableVariants(scrutinee)
	covered := map[string]bool{}
	hasWildcard := false

	var result types.Type
	hasWildcardSoFar := false
	for i, arm := range x.Arms {
		if arm.Guard == nil {
			if hasWildcardSoFar {
				c.errorf("E205", rangeOf(arm.Pattern), "unreachable pattern: arm is preceded by a wildcard or bind pattern covering every case")
			} else if vp, ok := arm.Pattern.(*ast.VariantPattern); ok && covered[vp.Tag] {
				c.errorf("E205", rangeOf(arm.Pattern), "unreachable pattern: %s is already covered by an earlier arm", vp.Tag)
			}
		}
		narrowed := c.bindArmPattern(arm.Pattern, scrutinee)
		if arm.Guard != nil {
			gt := c.checkExpr(arm.Guard)
			if !c.in.IsAssignable(gt, c.in.Primitive(types.Bool)) {
				c.errorf("E201", rangeOf(x), "type mismatch: match guard must be bool, got %s", gt)
			}
		}
		bodyT := c.checkExpr(arm.Body)
		c.popArmScope()
		if i == 0 {
			result = bodyT
		} else if !c.in.IsAssignable(bodyT, result) {
			if c.in.IsAssignable(result, bodyT) {
				result = bodyT
			} else {
				result = c.in.Union(result, bodyT)
			}
		}
		if arm.Guard != nil {
			continue // guarded arms never count toward exhaustiveness
		}
		switch p := arm.Pattern.(type) {
		case *ast.WildcardPattern:
			hasWildcard = true
			hasWildcardSoFar = true
		case *ast.BindPattern:
			hasWildcard = true // an unconditional bind covers everything
			hasWildcardSoFar = true
		case *ast.VariantPattern:
			covered[p.Tag] = true
		}
		_ = narrowed
	}

	if !hasWildcard && kind != "" {
		var missing []string
		for _, v := range variants {
			if !covered[v] {
				missing = append(missing, v)
			}
		}
		if len(missing) > 0 {
			c.errorf("E204", rangeOf(x), "non-exhaustive match: missing %v", missing)
		}
	}
	if !result.IsValid() {
		result = c.in.Primitive(types.Void)
	}
	return result
}

// coverableVariants returns the tag set a match over t must cover, and a
// non-empty "kind" marker when t actually has a closed variant set
// (union or optional/error); other scrutinee types always require a
// wildcard/bind arm since the checker has no closed set to check.
func coverableVariants(t types.Type) ([]string, string) {
	if variants, ok := t.UnionVariants(); ok {
		var tags []string
		for _, v := range variants {
			tags = append(tags, v.String())
		}
		return tags, "union"
	}
	if _, _, ok := t.OptionalErrParts(); ok {
		return []string{"Ok", "Err"}, "optional"
	}
	return nil, ""
}

// bindArmPattern pushes a new scope (popped by popArmScope) and binds
// every name introduced by pat against scrutinee's narrowed type.
func (c *Checker) bindArmPattern(pat ast.Pattern, scrutinee types.Type) types.Type {
	c.cur = newScope(c.cur)
	c.bindPattern(pat, scrutinee)
	return scrutinee
}

func (c *Checker) popArmScope() {
	if c.cur != nil {
		c.cur = c.cur.parent
	}
}

func (c *Checker) bindPattern(pat ast.Pattern, scrutinee types.Type) {
	switch p := pat.(type) {
	case *ast.BindPattern:
		c.cur.define(p.Name, scrutinee)
	case *ast.VariantPattern:
		narrowed := c.in.Narrow(scrutinee, p.Tag)
		if len(p.SubPats) == 1 {
			c.bindPattern(p.SubPats[0], narrowed)
		} else {
			for _, sp := range p.SubPats {
				c.bindPattern(sp, c.in.Primitive(types.Any))
			}
		}
	case *ast.TuplePattern:
		for _, sp := range p.Elems {
			c.bindPattern(sp, c.in.Primitive(types.Any))
		}
	case *ast.StructPattern:
		for _, f := range p.Fields {
			c.bindPattern(f.Pat, c.in.Primitive(types.Any))
		}
	case *ast.LiteralPattern:
		c.checkExpr(p.Value)
	}
}
