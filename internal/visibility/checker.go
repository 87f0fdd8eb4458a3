package visibility

import (
	"fmt"
	"strings"

	"github.com/netesy/limit/internal/ast"
	"github.com/netesy/limit/internal/source"
	"github.com/netesy/limit/internal/types"
)

// Checker enforces both visibility regimes over one already type-checked
// file, using reg for cross-module lookups and in for cross-module class
// lookups and subclass relationships.
type Checker struct {
	in   *types.Interner
	sink *source.Sink
}

func New(in *types.Interner, sink *source.Sink) *Checker {
	return &Checker{in: in, sink: sink}
}

func (c *Checker) errorf(code source.Code, module string, rng source.Range, format string, args ...any) {
	_ = c.sink.Report(source.New(code, source.StageVisibility, module, rng, fmt.Sprintf(format, args...)))
}

func rangeOf(n ast.Node) source.Range {
	s, e := n.Range()
	return source.Range{Start: s, End: e}
}

// importAliases maps the name a file refers to an import by (its alias,
// or its path's last segment by default) to the imported module's name.
func importAliases(f *ast.File) map[string]string {
	out := map[string]string{}
	for _, imp := range f.Imports {
		if len(imp.Path) == 0 {
			continue
		}
		mod := strings.Join(imp.Path, ".")
		alias := imp.Alias
		if alias == "" {
			alias = imp.Path[len(imp.Path)-1]
		}
		out[alias] = mod
	}
	return out
}

// CheckFile walks f (declared in module) reporting every inaccessible
// module- or class-member reference. reg must already contain every
// module in the program (built via a prior Register pass over all
// files) so cross-module lookups resolve regardless of visit order.
func (c *Checker) CheckFile(f *ast.File, module string, reg *Registry) {
	aliases := importAliases(f)
	w := &walker{c: c, module: module, reg: reg, aliases: aliases}
	for _, d := range f.Decls {
		w.checkTopDecl(d)
	}
}

type walker struct {
	c         *Checker
	module    string
	reg       *Registry
	aliases   map[string]string
	selfClass string
}

func (w *walker) checkTopDecl(d ast.Stmt) {
	switch decl := d.(type) {
	case *ast.FnDecl:
		w.checkFnBody(decl)
	case *ast.ClassDecl:
		prev := w.selfClass
		w.selfClass = decl.Name
		for _, m := range decl.Members {
			if m.Method != nil {
				w.checkFnBody(m.Method)
			}
			if m.Field != nil && m.Field.Value != nil {
				w.checkExpr(m.Field.Value)
			}
		}
		w.selfClass = prev
	case *ast.VarDecl:
		if decl.Value != nil {
			w.checkExpr(decl.Value)
		}
	}
}

func (w *walker) checkFnBody(fn *ast.FnDecl) {
	for _, p := range fn.Params {
		if p.Default != nil {
			w.checkExpr(p.Default)
		}
	}
	for _, s := range fn.Body {
		w.checkStmt(s)
	}
}

func (w *walker) checkStmt(s ast.Stmt) {
	switch x := s.(type) {
	case *ast.VarDecl:
		if x.Value != nil {
			w.checkExpr(x.Value)
		}
	case *ast.ExprStmt:
		w.checkExpr(x.X)
	case *ast.Block:
		for _, sub := range x.Stmts {
			w.checkStmt(sub)
		}
	case *ast.If:
		w.checkExpr(x.Cond)
		w.checkStmt(x.Then)
		if x.Else != nil {
			w.checkStmt(x.Else)
		}
	case *ast.While:
		w.checkExpr(x.Cond)
		w.checkStmt(x.Body)
	case *ast.For:
		if x.Init != nil {
			w.checkStmt(x.Init)
		}
		if x.Cond != nil {
			w.checkExpr(x.Cond)
		}
		if x.Step != nil {
			w.checkExpr(x.Step)
		}
		w.checkStmt(x.Body)
	case *ast.Iter:
		w.checkExpr(x.Iterable)
		w.checkStmt(x.Body)
	case *ast.Loop:
		w.checkStmt(x.Body)
	case *ast.Return:
		if x.Value != nil {
			w.checkExpr(x.Value)
		}
	case *ast.ConcurrencyBlock:
		w.checkStmt(x.Body)
	case *ast.FnDecl:
		w.checkFnBody(x)
	}
}

func (w *walker) checkExpr(e ast.Expr) {
	if e == nil {
		return
	}
	switch x := e.(type) {
	case *ast.BinaryExpr:
		w.checkExpr(x.Left)
		w.checkExpr(x.Right)
	case *ast.UnaryExpr:
		w.checkExpr(x.X)
	case *ast.Assign:
		w.checkExpr(x.Target)
		w.checkExpr(x.Value)
	case *ast.CallExpr:
		w.checkExpr(x.Callee)
		for _, a := range x.Args {
			w.checkExpr(a)
		}
	case *ast.MemberExpr:
		w.checkMember(x)
	case *ast.IndexExpr:
		w.checkExpr(x.X)
		w.checkExpr(x.Index)
	case *ast.PropagateExpr:
		w.checkExpr(x.X)
	case *ast.RecoverExpr:
		w.checkExpr(x.X)
		for _, s := range x.Fallback.Stmts {
			w.checkStmt(s)
		}
		w.checkExpr(x.FallbackValue)
	case *ast.OkExpr:
		w.checkExpr(x.Value)
	case *ast.ErrExpr:
		w.checkExpr(x.Value)
	case *ast.RangeExpr:
		w.checkExpr(x.Lo)
		w.checkExpr(x.Hi)
	case *ast.ListLit:
		for _, el := range x.Elems {
			w.checkExpr(el)
		}
	case *ast.DictLit:
		for _, en := range x.Entries {
			w.checkExpr(en.Key)
			w.checkExpr(en.Value)
		}
	case *ast.StructLit:
		for _, fld := range x.Fields {
			w.checkExpr(fld.Value)
		}
	case *ast.MatchExpr:
		w.checkExpr(x.Scrutinee)
		for _, arm := range x.Arms {
			w.checkExpr(arm.Guard)
			w.checkExpr(arm.Body)
		}
	case *ast.TaskExpr:
		w.checkExpr(x.Body)
	case *ast.AwaitExpr:
		w.checkExpr(x.X)
	case *ast.StringInterp:
		for _, sub := range x.Exprs {
			w.checkExpr(sub)
		}
	}
}

// checkMember is the single site where both regimes are enforced: x.Name
// is either a module-qualified reference (x is an import alias) or a
// class-member access (x's inferred type is a class).
func (w *walker) checkMember(x *ast.MemberExpr) {
	w.checkExpr(x.X)

	if id, ok := x.X.(*ast.Ident); ok {
		if targetModule, ok := w.aliases[id.Name]; ok {
			w.checkModuleAccess(x, targetModule)
			return
		}
	}

	xt := x.X.Type()
	if !xt.IsValid() {
		return
	}
	module, name, ok := xt.ClassRef()
	if !ok {
		return
	}
	cls, ok := w.c.in.LookupClass(module, name)
	if !ok {
		return
	}
	w.checkClassMemberAccess(x, cls)
}

func (w *walker) checkModuleAccess(x *ast.MemberExpr, targetModule string) {
	vis, ok := w.reg.Lookup(targetModule, x.Name)
	if !ok {
		return // unresolved cross-module name: left to the module loader
	}
	if targetModule == w.module {
		return // same module: always allowed
	}
	if vis != ast.Public {
		w.c.errorf("E280", w.module, rangeOf(x), "module member is not public: %s.%s", targetModule, x.Name)
	}
}

func (w *walker) checkClassMemberAccess(x *ast.MemberExpr, cls *types.Class) {
	m, ok := cls.AllMembers()[x.Name]
	if !ok {
		return // no such field: already reported by the type checker
	}
	switch m.Visibility {
	case types.Public:
		return
	case types.Private:
		if w.selfClass == m.DeclaringClass {
			return
		}
		w.c.errorf("E270", w.module, rangeOf(x), "private class member accessed from outside %s: %s", m.DeclaringClass, x.Name)
	case types.Protected:
		if w.selfClass == m.DeclaringClass {
			return
		}
		if !w.accessorIsSubclassOfDeclaring(cls, m.DeclaringClass) {
			w.c.errorf("E271", w.module, rangeOf(x), "protected class member accessed from outside %s or a subclass: %s", m.DeclaringClass, x.Name)
		}
	}
}

// accessorIsSubclassOfDeclaring reports whether the currently enclosing
// class (w.selfClass, if any) is the member's declaring class or a
// subclass of it, searching from cls (the receiver's static class)
// upward so the declaring class is found regardless of module.
func (w *walker) accessorIsSubclassOfDeclaring(cls *types.Class, declaringClass string) bool {
	if w.selfClass == "" {
		return false
	}
	var declCls *types.Class
	for cur := cls; cur != nil; cur = cur.Super {
		if cur.Name == declaringClass {
			declCls = cur
			break
		}
	}
	if declCls == nil {
		return false
	}
	accessor, ok := w.c.in.LookupClass(w.module, w.selfClass)
	if !ok {
		return false
	}
	return accessor.IsSubclassOf(declCls)
}

