package ast

// Ident is a bare name reference.
type Ident struct {
	exprBase
	Name string
	// Ownership is filled in by the memory checker: whether this use consumes (moves) a
	// linear binding or borrows it as a ref.
	Ownership Ownership
}

// Ownership classifies an expression or binding.
type Ownership int

const (
	Unclassified Ownership = iota
	Linear
	Ref
)

// SelfExpr is `self`; SuperExpr is `super` (only valid as the receiver
// of a call inside a method).
type SelfExpr struct{ exprBase }
type SuperExpr struct{ exprBase }

type IntLit struct {
	exprBase
	Value int64
}

type FloatLit struct {
	exprBase
	Value float64
}

type BoolLit struct {
	exprBase
	Value bool
}

type NilLit struct{ exprBase }

// StringLit is a non-interpolated string literal.
type StringLit struct {
	exprBase
	Value string
}

// StringInterp is `"...{expr}...{expr}..."`; Segments and Exprs
// alternate as literal segments and expressions, always starting and ending with a (possibly
// empty) literal segment, so len(Segments) == len(Exprs)+1.
type StringInterp struct {
	exprBase
	Segments []string
	Exprs []Expr
}

// BinaryExpr covers arithmetic, comparison, and logical infix operators.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpEq
	OpNeq
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
)

type BinaryExpr struct {
	exprBase
	Op BinaryOp
	Left, Right Expr
}

type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpNot
)

type UnaryExpr struct {
	exprBase
	Op UnaryOp
	X Expr
}

// Assign covers `=`, `+=`, `-=`. Target is an Ident, MemberExpr, or
// IndexExpr.
type AssignOp int

const (
	AssignSet AssignOp = iota
	AssignAdd
	AssignSub
)

type Assign struct {
	exprBase
	Op AssignOp
	Target Expr
	Value Expr
}

// CallExpr is `callee(args...)`.
type CallExpr struct {
	exprBase
	Callee Expr
	Args []Expr
}

// MemberExpr is `x.name`.
type MemberExpr struct {
	exprBase
	X Expr
	Name string
}

// IndexExpr is `x[index]`.
type IndexExpr struct {
	exprBase
	X Expr
	Index Expr
}

// PropagateExpr is the postfix `expr?`: propagate failure to the caller.
type PropagateExpr struct {
	exprBase
	X Expr
}

// RecoverExpr is `expr ? else err { block }`.
type RecoverExpr struct {
	exprBase
	X Expr
	ErrName string
	Fallback *Block
	// FallbackValue is the trailing expression of Fallback when it ends
	// in an expression statement used as the block's value, resolved by
	// the checker; nil if the block only returns/propagates.
	FallbackValue Expr
}

// OkExpr/ErrExpr are `ok(value)` and `err([value])`, the unified
// optional/error constructors.
type OkExpr struct {
	exprBase
	Value Expr // nil means `ok()` i.e. void success
}

type ErrExpr struct {
	exprBase
	Value Expr // nil means the distinguished Absent marker
}

// RangeExpr is `lo..hi`.
type RangeExpr struct {
	exprBase
	Lo, Hi Expr
}

// ListLit is `[e1, e2,...]`.
type ListLit struct {
	exprBase
	Elems []Expr
}

// DictEntry is one `key: value` pair of a dict literal.
type DictEntry struct{ Key, Value Expr }

type DictLit struct {
	exprBase
	Entries []DictEntry
}

// StructLit is a structural record literal `{ field: value,... }`.
type StructLit struct {
	exprBase
	Fields []DictEntry // Key must be an Ident in this context
}

// NewExpr is `ClassName(args...)` — distinguished from CallExpr once the
// checker resolves ClassName to a class; kept as CallExpr at parse time
// and reclassified by the type checker to avoid a grammar ambiguity with function
// calls.

// MatchArm is one `pattern [where guard] => expr` arm of a `match`.
type MatchArm struct {
	Pattern Pattern
	Guard Expr // nil if no `where` clause
	Body Expr
}

// MatchExpr is `match scrutinee { arms... }`.
type MatchExpr struct {
	exprBase
	Scrutinee Expr
	Arms []MatchArm
}
