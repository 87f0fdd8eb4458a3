package ast

// Pattern is implemented by every match-arm pattern.
type Pattern interface {
	Node
	patternNode()
}

type patternBase struct{ base }

func (p *patternBase) patternNode() {}

// WildcardPattern is `_`; always total.
type WildcardPattern struct{ patternBase }

// BindPattern binds the scrutinee (or a sub-value) to a name, e.g. `x`
// inside `Ok(x)`.
type BindPattern struct {
	patternBase
	Name string
}

// LiteralPattern matches an exact literal value.
type LiteralPattern struct {
	patternBase
	Value Expr // IntLit, FloatLit, BoolLit, StringLit, or NilLit
}

// VariantPattern matches a union/enum tag, e.g. `Red`, `Some(x)`,
// `Ok(v)`, `Err`.
type VariantPattern struct {
	patternBase
	Tag     string
	SubPats []Pattern // empty for a payload-less tag
}

// TuplePattern destructures `(a, b, ...)`.
type TuplePattern struct {
	patternBase
	Elems []Pattern
}

// StructPattern destructures `{ field: pat, ... }`.
type StructPatternField struct {
	Name string
	Pat  Pattern
}

type StructPattern struct {
	patternBase
	Fields []StructPatternField
}
