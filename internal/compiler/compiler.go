// Package compiler wires the whole pipeline (lexer through LIR generation,
// plus the module loader) into one Compilation value, rather than leave
// each pass reaching for package-level globals.
package compiler

import (
	"github.com/netesy/limit/internal/lexer"
	"github.com/netesy/limit/internal/module"
	"github.com/netesy/limit/internal/source"
	"github.com/netesy/limit/internal/trivia"
	"github.com/netesy/limit/internal/types"
	"github.com/netesy/limit/internal/visibility"
)

// Compilation threads the registries every pass needs through the
// pipeline explicitly, so no pass reaches for package-level mutable
// state. Classes and interfaces live inside Types itself (types.Interner
// already keys them by module+name); a separate class registry would
// just duplicate that map, so Compilation does not carry one.
type Compilation struct {
	Types *types.Interner
	Modules *module.Registry
	Visibility *visibility.Registry
	Trivia *trivia.Pool
	Sink *source.Sink
	Loader *module.Loader
}

// New builds a fresh Compilation. mode selects whether the scanner
// attaches trivia (cst) or discards it (legacy); searchPaths are extra
// module roots tried after an importing file's own directory.
func New(mode lexer.Mode, searchPaths ...string) *Compilation {
	sink := &source.Sink{Catalog: source.DefaultCatalog()}
	pool := trivia.NewPool()
	return &Compilation{
		Types: types.NewInterner(),
		Modules: module.NewRegistry(),
		Visibility: visibility.NewRegistry(),
		Trivia: pool,
		Sink: sink,
		Loader: module.NewLoader(mode, pool, sink, searchPaths...),
	}
}
