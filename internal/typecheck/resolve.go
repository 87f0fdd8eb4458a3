package typecheck

import (
	"github.com/netesy/limit/internal/ast"
	"github.com/netesy/limit/internal/types"
)

// resolveType turns parsed syntax into an interned types.Type, resolving
// names against this module's aliases/classes/interfaces.
func (c *Checker) resolveType(te ast.TypeExpr) types.Type {
	if te == nil {
		return c.in.Primitive(types.Void)
	}
	switch t := te.(type) {
	case *ast.NameType:
		return c.resolveName(t)
	case *ast.OptionalErrorType:
		success := c.resolveType(t.Success)
		errs := c.errorSetOf(t.Err)
		return c.in.OptionalErr(success, errs)
	case *ast.UnionType:
		var variants []types.Type
		for _, v := range t.Variants {
			variants = append(variants, c.resolveType(v))
		}
		return c.in.Union(variants...)
	case *ast.ListType:
		return c.in.List(c.resolveType(t.Elem))
	case *ast.DictType:
		return c.in.Dict(c.resolveType(t.Key), c.resolveType(t.Value))
	case *ast.RangeType:
		return c.in.Range(c.resolveType(t.Elem))
	case *ast.TupleType:
		var elems []types.Type
		for _, e := range t.Elems {
			elems = append(elems, c.resolveType(e))
		}
		return c.in.Tuple(elems...)
	case *ast.FuncType:
		var params []types.Param
		for _, p := range t.Params {
			params = append(params, types.Param{Type: c.resolveType(p)})
		}
		result := c.in.Primitive(types.Void)
		if t.Result != nil {
			result = c.resolveType(t.Result)
		}
		return c.in.Func(params, result, false, types.ErrorSet{})
	case *ast.GenericType:
		// Generics are parsed but unchecked; every instantiation resolves to `any`.
		return c.in.Primitive(types.Any)
	}
	return c.in.Primitive(types.Any)
}

func (c *Checker) resolveName(t *ast.NameType) types.Type {
	switch t.Name {
	case "i32":
		return c.in.Primitive(types.I32)
	case "i64":
		return c.in.Primitive(types.I64)
	case "u32":
		return c.in.Primitive(types.U32)
	case "u64":
		return c.in.Primitive(types.U64)
	case "f32":
		return c.in.Primitive(types.F32)
	case "f64":
		return c.in.Primitive(types.F64)
	case "bool":
		return c.in.Primitive(types.Bool)
	case "str":
		return c.in.Primitive(types.Str)
	case "nil":
		return c.in.Primitive(types.NilKind)
	case "void":
		return c.in.Primitive(types.Void)
	case "any":
		return c.in.Primitive(types.Any)
	case "Self":
		if c.selfClass == "" {
			c.errorf("E206", rangeOf(t), "invalid self-type use: Self outside a class body")
			return c.in.Primitive(types.Any)
		}
		return c.in.SelfType(c.module, c.selfClass)
	}
	if _, ok := c.classes[t.Name]; ok {
		return c.in.ClassType(c.module, t.Name)
	}
	if _, ok := c.ifaces[t.Name]; ok {
		return c.in.InterfaceType(c.module, t.Name)
	}
	if a, ok := c.aliases[t.Name]; ok {
		return a
	}
	c.errorf("E200", rangeOf(t), "undefined name: %s", t.Name)
	return c.in.Primitive(types.Any)
}

// errorSetOf flattens an (optionally union) error type annotation into a
// types.ErrorSet; nil means the distinguished Absent marker.
func (c *Checker) errorSetOf(te ast.TypeExpr) types.ErrorSet {
	if te == nil {
		return types.ErrorSet{}
	}
	if u, ok := te.(*ast.UnionType); ok {
		var variants []types.Type
		for _, v := range u.Variants {
			variants = append(variants, c.resolveType(v))
		}
		return types.ErrorSet{Variants: variants}
	}
	return types.ErrorSet{Variants: []types.Type{c.resolveType(te)}}
}
