// Package memcheck implements the region/ownership memory checker
//: a forward walk over a type-checked AST that classifies
// every binding as linear (single-owner) or ref (non-owning), tracks
// moves through a region's lexical nesting, and reports use-after-move,
// double-move, escaping-reference, and linear-not-consumed violations.
package memcheck

import (
	"github.com/netesy/limit/internal/ast"
	"github.com/netesy/limit/internal/source"
)

// binding is one tracked name inside a region: a compound-typed local,
// parameter, or loop variable. Non-compound (primitive) bindings are
// never tracked — moving an i32 has no observable ownership effect.
type binding struct {
	name string
	kind ast.Ownership // Linear or Ref
	moved bool
	declaredAt source.Range
	region *region // region this binding belongs to

	// for a Ref binding: the region owning the value it borrows from.
	// Returning a ref whose target region is not the function's root
	// (i.e. it points at a purely local value) is an escaping reference.
	refTarget *region
}

// region models one lexical scope: a Block, a
// function body, or a for/iter loop's own init scope.
type region struct {
	parent *region
	root *region // the function-body region this region descends from
	vars map[string]*binding
	order []string // declaration order, oldest first
}

func newRegion(parent *region) *region {
	r := &region{parent: parent, vars: map[string]*binding{}}
	if parent != nil {
		r.root = parent.root
	}
	return r
}

func newFuncRegion() *region {
	r := &region{vars: map[string]*binding{}}
	r.root = r
	return r
}

func (r *region) declare(b *binding) {
	b.region = r
	r.vars[b.name] = b
	r.order = append(r.order, b.name)
}

// lookup walks outward from r to find name, returning nil if untracked
// (either never declared, or a primitive the checker never bothered to
// track).
func lookup(r *region, name string) *binding {
	for cur := r; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			return b
		}
	}
	return nil
}

// isAncestorOrSelf reports whether target is r or one of r's ancestors —
// used to decide whether a ref still lives once r exits.
func isAncestorOrSelf(target, r *region) bool {
	for cur := r; cur != nil; cur = cur.parent {
		if cur == target {
			return true
		}
	}
	return false
}
