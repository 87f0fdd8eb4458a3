// Package module resolves `import a.b.c` statements to source files and
// keeps the load-once-and-cache bookkeeping asks an external
// driver to provide (specified here directly since the loader is thin
// enough to specify directly rather than leave as a pure contract).
package module

import (
	"github.com/google/uuid"

	"github.com/netesy/limit/internal/ast"
)

// Module is one loaded, parsed source file together with the import
// path it was resolved from. A Limit module is exactly one file: an
// import statement names a single `.lm` file, not a directory of
// sub-packages.
type Module struct {
	ID string // UUID, distinct from Path — used as a registry map key
	Path string // dotted import path, e.g. "a.b.c"
	Dir string // absolute file path this module was loaded from

	File *ast.File

	// ContentHash is the SHA-256 of the source bytes, the hash a Cache
	// entry (Cache.Get/Put) is checked against; the loader itself does
	// not consult a Cache.
	ContentHash string
}

func newModule(path, dir string, f *ast.File, contentHash string) *Module {
	return &Module{ID: uuid.NewString(), Path: path, Dir: dir, File: f, ContentHash: contentHash}
}
