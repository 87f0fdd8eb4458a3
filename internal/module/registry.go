package module

// Registry indexes every Module loaded during one compilation by its
// dotted import path, the same "load once, cache forever" rule the
// teacher's Loader.LoadedModules enforces by absolute directory.
type Registry struct {
	byPath map[string]*Module
}

func NewRegistry() *Registry {
	return &Registry{byPath: map[string]*Module{}}
}

func (r *Registry) Get(path string) (*Module, bool) {
	m, ok := r.byPath[path]
	return m, ok
}

func (r *Registry) Put(m *Module) {
	r.byPath[m.Path] = m
}

// All returns every registered module; order is unspecified.
func (r *Registry) All() []*Module {
	out := make([]*Module, 0, len(r.byPath))
	for _, m := range r.byPath {
		out = append(out, m)
	}
	return out
}
