// Package typecheck implements the two-pass type checker: a declaration
// pass that registers every top-level shape so forward references and
// mutual recursion resolve, followed by a body pass that types every
// expression and reports the per-expression diagnostics.
package typecheck

import (
	"fmt"

	"github.com/netesy/limit/internal/ast"
	"github.com/netesy/limit/internal/source"
	"github.com/netesy/limit/internal/types"
)

// resultCtx tracks the enclosing function's declared result, used by `?`
// and `return` checking.
type resultCtx struct {
	success types.Type
	errs types.ErrorSet
	fails bool
}

// scope is one lexical binding frame; scopes chain to an enclosing frame.
type scope struct {
	vars map[string]types.Type
	linear map[string]bool
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{vars: map[string]types.Type{}, linear: map[string]bool{}, parent: parent}
}

func (s *scope) lookup(name string) (types.Type, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if t, ok := sc.vars[name]; ok {
			return t, true
		}
	}
	return types.Type{}, false
}

func (s *scope) define(name string, t types.Type) { s.vars[name] = t }

// Checker holds all state for checking one module (file).
type Checker struct {
	in *types.Interner
	sink *source.Sink
	module string

	aliases map[string]types.Type
	classes map[string]*ast.ClassDecl
	ifaces map[string]*ast.InterfaceDecl
	funcs map[string]*ast.FnDecl
	globals map[string]types.Type

	cur *scope
	results []resultCtx
	selfClass string // current method's declaring class name, "" outside a class
	superOf map[string]string
}

// New creates a checker for one module (file); module should be a stable
// identifier such as the file's import path.
func New(in *types.Interner, sink *source.Sink, module string) *Checker {
	return &Checker{
		in: in,
		sink: sink,
		module: module,
		aliases: map[string]types.Type{},
		classes: map[string]*ast.ClassDecl{},
		ifaces: map[string]*ast.InterfaceDecl{},
		funcs: map[string]*ast.FnDecl{},
		globals: map[string]types.Type{},
		superOf: map[string]string{},
	}
}

func (c *Checker) errorf(code source.Code, rng source.Range, format string, args ...any) {
	_ = c.sink.Report(source.New(code, source.StageSemantic, c.module, rng, fmt.Sprintf(format, args...)))
}

func rangeOf(n ast.Node) source.Range {
	s, e := n.Range()
	return source.Range{Start: s, End: e}
}

// CheckFile runs both passes over f.
func (c *Checker) CheckFile(f *ast.File) {
	c.declarePass(f)
	c.bodyPass(f)
}

// declarePass registers every top-level name so later references
// (forward or mutually recursive) resolve during the body pass.
func (c *Checker) declarePass(f *ast.File) {
	for _, d := range f.Decls {
		switch decl := d.(type) {
		case *ast.ClassDecl:
			c.classes[decl.Name] = decl
			if decl.Super != "" {
				c.superOf[decl.Name] = decl.Super
			}
			c.in.Class(c.module, decl.Name)
		case *ast.InterfaceDecl:
			c.ifaces[decl.Name] = decl
			c.in.Interface(c.module, decl.Name)
		case *ast.TypeAliasDecl:
			c.aliases[decl.Name] = c.resolveType(decl.Target)
		case *ast.EnumDecl:
			c.declareEnum(decl)
		case *ast.FnDecl:
			c.funcs[decl.Name] = decl
		case *ast.VarDecl:
			if decl.Annotation != nil {
				c.globals[decl.Name] = c.resolveType(decl.Annotation)
			}
		}
	}
	// Second sub-pass: now that every class/interface name exists, fill
	// in member shapes (needs alias/class resolution available above).
	for _, d := range f.Decls {
		if decl, ok := d.(*ast.ClassDecl); ok {
			c.declareClassShape(decl)
		}
		if decl, ok := d.(*ast.InterfaceDecl); ok {
			c.declareInterfaceShape(decl)
		}
		if decl, ok := d.(*ast.FnDecl); ok {
			c.declareFuncSignature(decl)
		}
	}
	// Third sub-pass: every class/interface now has its full member set,
	// so an `implements` clause can be checked for completeness.
	for _, d := range f.Decls {
		if decl, ok := d.(*ast.ClassDecl); ok {
			c.checkInterfaceConformance(decl)
		}
	}
}

// checkInterfaceConformance reports E210 when a class's `implements`
// clause names a method or field the class (including its inherited
// members) does not actually provide with a compatible type.
func (c *Checker) checkInterfaceConformance(decl *ast.ClassDecl) {
	cls := c.in.Class(c.module, decl.Name)
	members := cls.AllMembers()
	for _, ifname := range decl.Interfaces {
		if _, ok := c.ifaces[ifname]; !ok {
			continue
		}
		it := c.in.Interface(c.module, ifname)
		var missing []string
		for name, want := range it.Methods {
			m, ok := members[name]
			if !ok || m.Kind != types.MemberMethod || !c.in.IsAssignable(m.Type, want) {
				missing = append(missing, name)
			}
		}
		for name, want := range it.Fields {
			m, ok := members[name]
			if !ok || !c.in.IsAssignable(m.Type, want) {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			c.errorf("E210", rangeOf(decl), "interface not fully implemented: %s is missing %v required by %s", decl.Name, missing, ifname)
		}
	}
}

func (c *Checker) declareEnum(decl *ast.EnumDecl) {
	var variants []types.Type
	for _, v := range decl.Variants {
		if len(v.Payload) == 0 {
			variants = append(variants, c.in.Structural(types.Field{Name: "__tag", Type: c.in.Alias(v.Name, c.in.Primitive(types.Void))}))
			continue
		}
		var fields []types.Field
		for i, p := range v.Payload {
			fields = append(fields, types.Field{Name: fmt.Sprintf("_%d", i), Type: c.resolveType(p)})
		}
		variants = append(variants, c.in.Structural(fields...))
	}
	c.aliases[decl.Name] = c.in.Union(variants...)
}

func (c *Checker) declareClassShape(decl *ast.ClassDecl) {
	cls := c.in.Class(c.module, decl.Name)
	cls.Final = decl.Final
	cls.Abstract = decl.Abstract
	if decl.Super != "" {
		if _, ok := c.classes[decl.Super]; ok {
			sc := c.in.Class(c.module, decl.Super)
			cls.Super = sc
		}
	}
	for _, ifname := range decl.Interfaces {
		if _, ok := c.ifaces[ifname]; ok {
			cls.Interfaces = append(cls.Interfaces, c.in.Interface(c.module, ifname))
		}
	}
	for _, m := range decl.Members {
		vis := toTypesVisibility(m.Visibility)
		if m.Field != nil {
			ft := types.Type{}
			if m.Field.Annotation != nil {
				ft = c.resolveType(m.Field.Annotation)
			} else {
				ft = c.in.Primitive(types.Any)
			}
			cls.Members[m.Field.Name] = &types.ClassMember{
				Name: m.Field.Name, Kind: types.MemberField, Visibility: vis, Type: ft,
				DeclaringClass: decl.Name, HasDefault: m.Field.Value != nil,
			}
		}
		if m.Method != nil {
			ft := c.funcTypeOf(m.Method)
			kind := types.MemberMethod
			if m.Method.IsInit {
				kind = types.MemberInit
			}
			cls.Members[m.Method.Name] = &types.ClassMember{
				Name: m.Method.Name, Kind: kind, Visibility: vis, Type: ft,
				Abstract: m.Method.IsAbstract, Overrides: m.Overrides, DeclaringClass: decl.Name,
			}
		}
	}
}

func (c *Checker) declareInterfaceShape(decl *ast.InterfaceDecl) {
	iface := c.in.Interface(c.module, decl.Name)
	for _, fld := range decl.Fields {
		iface.Fields[fld.Name] = c.resolveType(fld.Annotation)
	}
	for _, m := range decl.Methods {
		iface.Methods[m.Name] = c.funcTypeOf(m)
	}
}

func (c *Checker) declareFuncSignature(decl *ast.FnDecl) {
	decl.ResolvedType = c.funcTypeOf(decl)
}

func (c *Checker) funcTypeOf(decl *ast.FnDecl) types.Type {
	var params []types.Param
	for _, p := range decl.Params {
		t := c.in.Primitive(types.Any)
		if p.Annotation != nil {
			t = c.resolveType(p.Annotation)
		}
		params = append(params, types.Param{Type: t, HasDefault: p.Default != nil})
	}
	result := c.in.Primitive(types.Void)
	fails := false
	var errs types.ErrorSet
	if decl.Result != nil {
		if oe, ok := decl.Result.(*ast.OptionalErrorType); ok {
			fails = true
			result = c.resolveType(oe.Success)
			errs = c.errorSetOf(oe.Err)
		} else {
			result = c.resolveType(decl.Result)
		}
	}
	return c.in.Func(params, result, fails, errs)
}

func toTypesVisibility(v ast.Visibility) types.Visibility {
	switch v {
	case ast.Public:
		return types.Public
	case ast.Protected:
		return types.Protected
	default:
		return types.Private
	}
}

// bodyPass checks every declaration's body.
func (c *Checker) bodyPass(f *ast.File) {
	for _, d := range f.Decls {
		c.checkTopDecl(d)
	}
}

func (c *Checker) checkTopDecl(d ast.Stmt) {
	switch decl := d.(type) {
	case *ast.VarDecl:
		c.checkGlobalVarDecl(decl)
	case *ast.FnDecl:
		c.checkFnBody(decl, "")
	case *ast.ClassDecl:
		c.checkClassBody(decl)
	case *ast.InterfaceDecl, *ast.TypeAliasDecl, *ast.EnumDecl:
		// no bodies to check
	}
}

func (c *Checker) checkGlobalVarDecl(decl *ast.VarDecl) {
	c.cur = newScope(nil)
	var declared types.Type
	if decl.Annotation != nil {
		declared = c.resolveType(decl.Annotation)
	}
	if decl.Value != nil {
		vt := c.checkExpr(decl.Value)
		if declared.IsValid() && !c.in.IsAssignable(vt, declared) {
			c.errorf("E201", rangeOf(decl), "type mismatch: cannot assign %s to %s", vt, declared)
		}
		if !declared.IsValid() {
			declared = vt
		}
	}
	decl.ResolvedType = declared
	c.globals[decl.Name] = declared
}

func (c *Checker) checkClassBody(decl *ast.ClassDecl) {
	prevSelf := c.selfClass
	c.selfClass = decl.Name
	defer func() { c.selfClass = prevSelf }()
	for _, m := range decl.Members {
		if m.Method != nil {
			c.checkFnBody(m.Method, decl.Name)
		}
		if m.Field != nil && m.Field.Value != nil {
			c.cur = newScope(nil)
			ft := c.in.Primitive(types.Any)
			if m.Field.Annotation != nil {
				ft = c.resolveType(m.Field.Annotation)
			}
			vt := c.checkExpr(m.Field.Value)
			if !c.in.IsAssignable(vt, ft) {
				c.errorf("E201", rangeOf(m.Field), "type mismatch: cannot assign %s to field of type %s", vt, ft)
			}
		}
	}
}

func (c *Checker) checkFnBody(decl *ast.FnDecl, className string) {
	if decl.IsAbstract {
		return
	}
	ft := decl.ResolvedType
	if !ft.IsValid() {
		ft = c.funcTypeOf(decl)
		decl.ResolvedType = ft
	}
	c.cur = newScope(nil)
	for _, p := range decl.Params {
		t := c.in.Primitive(types.Any)
		if p.Annotation != nil {
			t = c.resolveType(p.Annotation)
		}
		p.ResolvedType = t
		c.cur.define(p.Name, t)
	}
	var success types.Type
	var errs types.ErrorSet
	fails := false
	if decl.Result != nil {
		if oe, ok := decl.Result.(*ast.OptionalErrorType); ok {
			fails = true
			success = c.resolveType(oe.Success)
			errs = c.errorSetOf(oe.Err)
		} else {
			success = c.resolveType(decl.Result)
		}
	} else {
		success = c.in.Primitive(types.Void)
	}
	c.results = append(c.results, resultCtx{success: success, errs: errs, fails: fails})
	defer func() { c.results = c.results[:len(c.results)-1] }()

	for _, s := range decl.Body {
		c.checkStmt(s)
	}

	if success != c.in.Primitive(types.Void) && !fails && !alwaysReturns(decl.Body) {
		c.errorf("E208", rangeOf(decl), "missing return: function %q must return a value of type %s on every path", decl.Name, success)
	}
}
