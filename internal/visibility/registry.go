// Package visibility implements the module- and class-scope visibility
// checker: two independent registries, one per regime,
// checked in two passes so cross-module references resolve regardless
// of declaration order.
package visibility

import "github.com/netesy/limit/internal/ast"

// Registry holds every module's top-level member visibilities, built
// once across every file in a program before any file is checked — a
// forward reference from module A to a not-yet-visited module B must
// still see B's declarations.
type Registry struct {
	modules map[string]map[string]ast.Visibility
}

func NewRegistry() *Registry {
	return &Registry{modules: map[string]map[string]ast.Visibility{}}
}

// Register scans f's top-level declarations and records their
// module-scope visibility under module.
func (reg *Registry) Register(f *ast.File, module string) {
	names, ok := reg.modules[module]
	if !ok {
		names = map[string]ast.Visibility{}
		reg.modules[module] = names
	}
	for _, d := range f.Decls {
		switch decl := d.(type) {
		case *ast.VarDecl:
			names[decl.Name] = decl.Visibility
		case *ast.FnDecl:
			names[decl.Name] = decl.Visibility
		case *ast.ClassDecl:
			names[decl.Name] = decl.Visibility
		case *ast.InterfaceDecl:
			names[decl.Name] = decl.Visibility
		case *ast.TypeAliasDecl:
			names[decl.Name] = decl.Visibility
		case *ast.EnumDecl:
			names[decl.Name] = decl.Visibility
		}
	}
}

// Lookup reports the visibility of module.name, and whether it exists.
func (reg *Registry) Lookup(module, name string) (ast.Visibility, bool) {
	names, ok := reg.modules[module]
	if !ok {
		return 0, false
	}
	v, ok := names[name]
	return v, ok
}
