package module

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/netesy/limit/internal/lexer"
	"github.com/netesy/limit/internal/parser"
	"github.com/netesy/limit/internal/source"
	"github.com/netesy/limit/internal/trivia"
)

// sourceExt is the on-disk extension a dotted import path resolves to.
const sourceExt = ".lm"

// Loader resolves `import a.b.c` statements to parsed modules, caching
// by dotted path so a module imported from several files is parsed
// exactly once. Resolve parses only the named file and does not follow
// its imports, so an import cycle is not reported: the compiler's import
// walk (collectUnits) simply skips a path it has already seen.
type Loader struct {
	Registry *Registry
	SearchPaths []string // additional roots tried after the importing file's own directory
	Mode lexer.Mode
	Pool *trivia.Pool
	Sink *source.Sink

	// Files collects every file's content as it's read, so a driver can
	// later render a diagnostic's source-context snippet without
	// re-reading the filesystem.
	Files *source.FileSet

	visiting map[string]bool
}

func NewLoader(mode lexer.Mode, pool *trivia.Pool, sink *source.Sink, searchPaths ...string) *Loader {
	return &Loader{
		Registry: NewRegistry(),
		SearchPaths: searchPaths,
		Mode: mode,
		Pool: pool,
		Sink: sink,
		Files: source.NewFileSet(),
		visiting: map[string]bool{},
	}
}

// pathToFile turns a dotted import path into its relative on-disk name,
// e.g. "a.b.c" -> "a/b/c.lm".
func pathToFile(importPath string) string {
	return strings.ReplaceAll(importPath, ".", string(filepath.Separator)) + sourceExt
}

// candidates lists every absolute path worth checking for importPath,
// in resolution order: first relative to the importing file's own
// directory, then each configured module search root.
func (l *Loader) candidates(fromFile, importPath string) []string {
	rel := pathToFile(importPath)
	out := []string{filepath.Join(filepath.Dir(fromFile), rel)}
	for _, root := range l.SearchPaths {
		out = append(out, filepath.Join(root, rel))
	}
	return out
}

// Resolve loads (or returns the already-cached) Module for importPath,
// as seen from fromFile. The visited set only rejects a re-entrant
// Resolve of a path that is still being loaded; Resolve itself never
// re-enters.
func (l *Loader) Resolve(fromFile, importPath string) (*Module, error) {
	if mod, ok := l.Registry.Get(importPath); ok {
		return mod, nil
	}
	if l.visiting[importPath] {
		return nil, fmt.Errorf("circular import: %s", importPath)
	}

	var (
		file string
		data []byte
		err error
	)
	for _, cand := range l.candidates(fromFile, importPath) {
		data, err = os.ReadFile(cand)
		if err == nil {
			file = cand
			break
		}
	}
	if file == "" {
		return nil, fmt.Errorf("cannot resolve import %q: no %s file found", importPath, sourceExt)
	}

	l.visiting[importPath] = true
	defer delete(l.visiting, importPath)

	l.Files.Add(file, data)
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	f := parser.ParseFile(file, string(data), l.Mode, l.Pool, l.Sink)
	mod := newModule(importPath, file, f, hash)
	l.Registry.Put(mod)
	return mod, nil
}
