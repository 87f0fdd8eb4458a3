package typecheck

import (
	"sort"
	"strings"

	"github.com/netesy/limit/internal/ast"
	"github.com/netesy/limit/internal/types"
)

// checkExpr types e, stores the result on the node, and returns it.
func (c *Checker) checkExpr(e ast.Expr) types.Type {
	t := c.checkExprInner(e)
	e.SetType(t)
	return t
}

func (c *Checker) checkExprInner(e ast.Expr) types.Type {
	switch x := e.(type) {
	case *ast.IntLit:
		return c.in.Primitive(types.I32)
	case *ast.FloatLit:
		return c.in.Primitive(types.F64)
	case *ast.BoolLit:
		return c.in.Primitive(types.Bool)
	case *ast.NilLit:
		return c.in.Primitive(types.NilKind)
	case *ast.StringLit:
		return c.in.Primitive(types.Str)
	case *ast.StringInterp:
		for _, sub := range x.Exprs {
			c.checkExpr(sub)
		}
		return c.in.Primitive(types.Str)
	case *ast.Ident:
		return c.checkIdent(x)
	case *ast.SelfExpr:
		if c.selfClass == "" {
			c.errorf("E206", rangeOf(x), "invalid self-type use: self outside a class body")
			return c.in.Primitive(types.Any)
		}
		return c.in.SelfType(c.module, c.selfClass)
	case *ast.SuperExpr:
		super, ok := c.superOf[c.selfClass]
		if !ok {
			c.errorf("E206", rangeOf(x), "invalid use of super: %s has no superclass", c.selfClass)
			return c.in.Primitive(types.Any)
		}
		return c.in.ClassType(c.module, super)
	case *ast.BinaryExpr:
		return c.checkBinary(x)
	case *ast.UnaryExpr:
		return c.checkUnary(x)
	case *ast.Assign:
		return c.checkAssign(x)
	case *ast.CallExpr:
		return c.checkCall(x)
	case *ast.MemberExpr:
		return c.checkMember(x)
	case *ast.IndexExpr:
		return c.checkIndex(x)
	case *ast.PropagateExpr:
		return c.checkPropagate(x)
	case *ast.RecoverExpr:
		return c.checkRecover(x)
	case *ast.OkExpr:
		var v types.Type
		if x.Value != nil {
			v = c.checkExpr(x.Value)
		} else {
			v = c.in.Primitive(types.Void)
		}
		return c.in.OptionalErr(v, types.ErrorSet{})
	case *ast.ErrExpr:
		var v types.Type
		if x.Value != nil {
			v = c.checkExpr(x.Value)
		} else {
			v = c.in.Primitive(types.Any)
		}
		return c.in.OptionalErr(c.in.Primitive(types.Any), types.ErrorSet{Variants: []types.Type{v}})
	case *ast.RangeExpr:
		lo := c.checkExpr(x.Lo)
		hi := c.checkExpr(x.Hi)
		if !c.in.IsAssignable(hi, lo) && !c.in.IsAssignable(lo, hi) {
			c.errorf("E201", rangeOf(x), "type mismatch: range bounds %s and %s disagree", lo, hi)
		}
		return c.in.Range(lo)
	case *ast.ListLit:
		return c.checkListLit(x)
	case *ast.DictLit:
		return c.checkDictLit(x)
	case *ast.StructLit:
		return c.checkStructLit(x)
	case *ast.MatchExpr:
		return c.checkMatch(x)
	case *ast.TaskExpr:
		return c.checkExpr(x.Body)
	case *ast.AwaitExpr:
		return c.checkExpr(x.X)
	}
	return c.in.Primitive(types.Any)
}

func (c *Checker) checkIdent(x *ast.Ident) types.Type {
	if t, ok := c.cur.lookup(x.Name); ok {
		return t
	}
	if t, ok := c.globals[x.Name]; ok {
		return t
	}
	if fn, ok := c.funcs[x.Name]; ok {
		if !fn.ResolvedType.IsValid() {
			fn.ResolvedType = c.funcTypeOf(fn)
		}
		return fn.ResolvedType
	}
	if _, ok := c.classes[x.Name]; ok {
		return c.in.ClassType(c.module, x.Name)
	}
	c.errorf("E200", rangeOf(x), "undefined name: %s", x.Name)
	return c.in.Primitive(types.Any)
}

func (c *Checker) checkBinary(x *ast.BinaryExpr) types.Type {
	l := c.checkExpr(x.Left)
	r := c.checkExpr(x.Right)
	switch x.Op {
	case ast.OpAnd, ast.OpOr:
		b := c.in.Primitive(types.Bool)
		if !c.in.IsAssignable(l, b) || !c.in.IsAssignable(r, b) {
			c.errorf("E201", rangeOf(x), "type mismatch: logical operator requires bool operands, got %s and %s", l, r)
		}
		return b
	case ast.OpEq, ast.OpNeq:
		return c.in.Primitive(types.Bool)
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		if !c.in.IsAssignable(l, r) && !c.in.IsAssignable(r, l) {
			c.errorf("E201", rangeOf(x), "type mismatch: cannot compare %s and %s", l, r)
		}
		return c.in.Primitive(types.Bool)
	default: // arithmetic
		if !c.in.IsAssignable(l, r) && !c.in.IsAssignable(r, l) {
			c.errorf("E201", rangeOf(x), "type mismatch: cannot apply arithmetic operator to %s and %s", l, r)
			return c.in.Primitive(types.Any)
		}
		if c.in.IsAssignable(l, r) {
			return r
		}
		return l
	}
}

func (c *Checker) checkUnary(x *ast.UnaryExpr) types.Type {
	t := c.checkExpr(x.X)
	if x.Op == ast.OpNot {
		if !c.in.IsAssignable(t, c.in.Primitive(types.Bool)) {
			c.errorf("E201", rangeOf(x), "type mismatch: 'not' requires a bool operand, got %s", t)
		}
		return c.in.Primitive(types.Bool)
	}
	return t
}

func (c *Checker) checkAssign(x *ast.Assign) types.Type {
	switch x.Target.(type) {
	case *ast.Ident, *ast.MemberExpr, *ast.IndexExpr:
	default:
		c.errorf("E201", rangeOf(x), "invalid assignment target")
	}
	target := c.checkExpr(x.Target)
	value := c.checkExpr(x.Value)
	if !c.in.IsAssignable(value, target) {
		c.errorf("E201", rangeOf(x), "type mismatch: cannot assign %s to %s", value, target)
	}
	return target
}

func (c *Checker) checkCall(x *ast.CallExpr) types.Type {
	if ident, ok := x.Callee.(*ast.Ident); ok {
		if decl, ok := c.classes[ident.Name]; ok {
			return c.checkConstructorCall(x, ident, decl)
		}
	}
	calleeT := c.checkExpr(x.Callee)
	return c.checkCallAgainstSignature(x, calleeT)
}

func (c *Checker) checkConstructorCall(x *ast.CallExpr, ident *ast.Ident, decl *ast.ClassDecl) types.Type {
	if decl.Abstract {
		c.errorf("E209", rangeOf(x), "abstract class instantiation: %s cannot be instantiated directly", decl.Name)
	}
	cls := c.in.Class(c.module, decl.Name)
	members := cls.AllMembers()
	if init, ok := members["init"]; ok {
		ft, isFunc := asFuncT(init.Type)
		if isFunc {
			c.checkArgs(x, ft)
		}
	} else if missing := fieldsWithoutDefault(members); len(missing) > 0 {
		c.errorf("E211", rangeOf(x), "class %s has required field(s) %s but no init to set them", decl.Name, strings.Join(missing, ", "))
	}
	for _, a := range x.Args {
		c.checkExpr(a)
	}
	return c.in.ClassType(c.module, decl.Name)
}

// fieldsWithoutDefault lists, sorted by name, every field member
// with neither an initializer expression nor a zero value supplied by an
// init — i.e. one a constructor call can never populate once the class
// is confirmed to have no init method at all.
func fieldsWithoutDefault(members map[string]*types.ClassMember) []string {
	var out []string
	for name, m := range members {
		if m.Kind == types.MemberField && !m.HasDefault {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func (c *Checker) checkCallAgainstSignature(x *ast.CallExpr, calleeT types.Type) types.Type {
	ft, ok := asFuncT(calleeT)
	if !ok {
		for _, a := range x.Args {
			c.checkExpr(a)
		}
		if calleeT.IsValid() && !calleeT.Equal(c.in.Primitive(types.Any)) {
			c.errorf("E201", rangeOf(x), "cannot call a value of type %s", calleeT)
		}
		return c.in.Primitive(types.Any)
	}
	c.checkArgs(x, ft)
	return ft.Result
}

func (c *Checker) checkArgs(x *ast.CallExpr, ft types.FuncShape) {
	if len(x.Args) != len(ft.Params) {
		hasDefaults := false
		for _, p := range ft.Params {
			if p.HasDefault {
				hasDefaults = true
			}
		}
		if !(hasDefaults && len(x.Args) <= len(ft.Params)) {
			c.errorf("E202", rangeOf(x), "arity mismatch: expected %d arguments, got %d", len(ft.Params), len(x.Args))
		}
	}
	for i, a := range x.Args {
		at := c.checkExpr(a)
		if i < len(ft.Params) && !c.in.IsAssignable(at, ft.Params[i].Type) {
			c.errorf("E201", rangeOf(a), "type mismatch: argument %d expected %s, got %s", i+1, ft.Params[i].Type, at)
		}
	}
}

func (c *Checker) checkMember(x *ast.MemberExpr) types.Type {
	xt := c.checkExpr(x.X)
	if cls, ok := c.lookupClassOf(xt); ok {
		if m, ok := cls.AllMembers()[x.Name]; ok {
			return m.Type
		}
		c.errorf("E203", rangeOf(x), "bad field: %s has no member %q", xt, x.Name)
		return c.in.Primitive(types.Any)
	}
	return c.in.Primitive(types.Any)
}

func (c *Checker) lookupClassOf(t types.Type) (*types.Class, bool) {
	if module, name, ok := t.ClassRef(); ok {
		return c.in.LookupClass(module, name)
	}
	return nil, false
}

func (c *Checker) checkIndex(x *ast.IndexExpr) types.Type {
	xt := c.checkExpr(x.X)
	idx := c.checkExpr(x.Index)
	_ = idx
	switch u := underlyingKind(xt); u {
	case "list":
		return c.listElem(xt)
	case "dict":
		return c.dictValue(xt)
	case "range":
		return c.listElem(xt)
	}
	return c.in.Primitive(types.Any)
}

func (c *Checker) checkPropagate(x *ast.PropagateExpr) types.Type {
	xt := c.checkExpr(x.X)
	success, errs, ok := decomposeOptionalErr(xt)
	if !ok {
		c.errorf("E207", rangeOf(x), "'?' requires an optional/error scrutinee, got %s", xt)
		return xt
	}
	if len(c.results) == 0 {
		c.errorf("E207", rangeOf(x), "error propagation from non-fallible function")
		return success
	}
	rc := c.results[len(c.results)-1]
	if !rc.fails {
		c.errorf("E207", rangeOf(x), "error propagation from non-fallible function")
	} else if !errs.Subset(rc.errs, c.in) {
		c.errorf("E207", rangeOf(x), "propagated error set %s is not a subset of enclosing function's %s", errs, rc.errs)
	}
	return success
}

func (c *Checker) checkRecover(x *ast.RecoverExpr) types.Type {
	xt := c.checkExpr(x.X)
	success, _, ok := decomposeOptionalErr(xt)
	if !ok {
		c.errorf("E207", rangeOf(x), "'?else' requires an optional/error scrutinee, got %s", xt)
	}
	outer := c.cur
	c.cur = newScope(outer)
	c.cur.define(x.ErrName, c.in.Primitive(types.Any))
	for _, s := range x.Fallback.Stmts {
		c.checkStmt(s)
	}
	c.cur = outer
	if x.FallbackValue != nil {
		fv := x.FallbackValue.Type()
		if success.IsValid() && fv.IsValid() && !c.in.IsAssignable(fv, success) {
			c.errorf("E201", rangeOf(x), "type mismatch: ?else fallback yields %s, expected %s", fv, success)
		}
	}
	return success
}

func (c *Checker) checkListLit(x *ast.ListLit) types.Type {
	if len(x.Elems) == 0 {
		return c.in.List(c.in.Primitive(types.Any))
	}
	elem := c.checkExpr(x.Elems[0])
	for _, e := range x.Elems[1:] {
		t := c.checkExpr(e)
		if !c.in.IsAssignable(t, elem) {
			if c.in.IsAssignable(elem, t) {
				elem = t
			} else {
				elem = c.in.Union(elem, t)
			}
		}
	}
	return c.in.List(elem)
}

func (c *Checker) checkDictLit(x *ast.DictLit) types.Type {
	if len(x.Entries) == 0 {
		return c.in.Dict(c.in.Primitive(types.Any), c.in.Primitive(types.Any))
	}
	kt := c.checkExpr(x.Entries[0].Key)
	vt := c.checkExpr(x.Entries[0].Value)
	for _, e := range x.Entries[1:] {
		c.checkExpr(e.Key)
		c.checkExpr(e.Value)
	}
	return c.in.Dict(kt, vt)
}

func (c *Checker) checkStructLit(x *ast.StructLit) types.Type {
	var fields []types.Field
	for _, f := range x.Fields {
		id, ok := f.Key.(*ast.Ident)
		name := "_"
		if ok {
			name = id.Name
		}
		vt := c.checkExpr(f.Value)
		fields = append(fields, types.Field{Name: name, Type: vt})
	}
	return c.in.Structural(fields...)
}

// --- small structural helpers over the opaque types.Type ---

func asFuncT(t types.Type) (types.FuncShape, bool) {
	return t.FuncShape()
}

func underlyingKind(t types.Type) string { return t.StructuralKind() }

func (c *Checker) listElem(t types.Type) types.Type {
	if e, ok := t.ListElem(); ok {
		return e
	}
	return c.in.Primitive(types.Any)
}

func (c *Checker) dictValue(t types.Type) types.Type {
	if _, v, ok := t.DictKV(); ok {
		return v
	}
	return c.in.Primitive(types.Any)
}

func decomposeOptionalErr(t types.Type) (types.Type, types.ErrorSet, bool) {
	return t.OptionalErrParts()
}
