// Package ast is the abstract syntax tree used by semantic analysis and
// lowering. Every node is byte-range tagged and
// carries an optional back-pointer to the CST node that produced it.
package ast

import (
	"github.com/netesy/limit/internal/cst"
	"github.com/netesy/limit/internal/types"
)

// Node is the common shape of every AST node: its source byte range and
// (in cst mode) the CST node it was built from.
type Node interface {
	Range() (start, end int)
	CSTNode() cst.Node
}

// base is embedded by every concrete node; it is never used as a value
// on its own (ast never contains trivia, only byte positions).
type base struct {
	Start, End int
	CST cst.Node
}

func (b *base) Range() (int, int) { return b.Start, b.End }
func (b *base) CSTNode() cst.Node { return b.CST }

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by every expression node. InferredType is set by
// the type checker and read by the memory checker and the LIR
// generator.
type Expr interface {
	Node
	exprNode()
	Type() types.Type
	SetType(types.Type)
}

type exprBase struct {
	base
	inferred types.Type
}

func (e *exprBase) exprNode() {}
func (e *exprBase) Type() types.Type { return e.inferred }
func (e *exprBase) SetType(t types.Type) { e.inferred = t }

// File is the root of one parsed source file.
type File struct {
	base
	Name string
	Imports []*Import
	Decls []Stmt
}

// Import models `import a.b.c [as alias] [show ids | hide ids];`.
type Import struct {
	base
	Path []string // dotted path segments, e.g. ["a","b","c"]
	Alias string // "" if no `as`
	Show []string // non-nil only if `show` was used
	Hide []string // non-nil only if `hide` was used
}

func (i *Import) stmtNode() {}
