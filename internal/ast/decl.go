package ast

import "github.com/netesy/limit/internal/types"

// Visibility is shared by both independent regimes: module-scope member
// visibility and class-member visibility. The same three
// values are reused, but which registry a declaration's Visibility is
// checked against depends on where the declaration lives.
type Visibility int

const (
	Private Visibility = iota // default
	Protected
	Public
)

// TypeExpr is the parsed syntax for a type annotation, before resolution and checking
// resolve it to a types.Type. Kept separate from types.Type so the
// parser never needs the interner.
type TypeExpr interface {
	Node
	typeExprNode()
}

type typeExprBase struct{ base }

func (t *typeExprBase) typeExprNode() {}

// NameType is a bare name, e.g. `int`, `str`, `MyClass`, or `Self`.
type NameType struct {
	typeExprBase
	Name string
}

// OptionalErrorType is `T?` (Err == nil) or `T?E`.
type OptionalErrorType struct {
	typeExprBase
	Success TypeExpr
	Err TypeExpr // nil means the distinguished Absent marker
}

// UnionType is `T | U |...`.
type UnionType struct {
	typeExprBase
	Variants []TypeExpr
}

// ListType is `[T]`.
type ListType struct {
	typeExprBase
	Elem TypeExpr
}

// DictType is `{K: V}`.
type DictType struct {
	typeExprBase
	Key, Value TypeExpr
}

// RangeType is `T..T`.
type RangeType struct {
	typeExprBase
	Elem TypeExpr
}

// TupleType is `(T,...)`.
type TupleType struct {
	typeExprBase
	Elems []TypeExpr
}

// FuncType is `fn(T,...): T`.
type FuncType struct {
	typeExprBase
	Params []TypeExpr
	Result TypeExpr
}

// GenericType is `Name[T,...]`, parsed but not checked; the checker
// treats the instantiation as unresolved (any).
type GenericType struct {
	typeExprBase
	Name string
	Args []TypeExpr
}

// VarDecl is `var name: T = expr;` (or without the annotation).
type VarDecl struct {
	base
	Name string
	Annotation TypeExpr // nil if elided
	Value Expr
	Visibility Visibility
	// ResolvedType and Linear are filled in by the type checker and memory checker.
	ResolvedType types.Type
	Linear bool
}

func (d *VarDecl) stmtNode() {}

// Param is one function parameter.
type Param struct {
	Name string
	Annotation TypeExpr
	Default Expr // nil if none
	ForceLinear bool // explicit `linear` annotation overriding ref-by-default
	ResolvedType types.Type
}

// FnDecl is `fn name(params): Result { body }`, used both for top-level
// functions and methods (a method is the Method of a ClassMemberDecl;
// see ClassDecl).
type FnDecl struct {
	base
	Name string
	Params []*Param
	Result TypeExpr // nil means void
	Body []Stmt
	Visibility Visibility
	IsInit bool
	IsAbstract bool // declared with no body inside an abstract class
	ResolvedType types.Type
}

func (d *FnDecl) stmtNode() {}

// ClassMemberDecl wraps a field or method inside a class body together
// with its class-scope visibility (independent of module visibility,
// ).
type ClassMemberDecl struct {
	base
	Visibility Visibility
	Field *VarDecl // non-nil for a field member
	Method *FnDecl // non-nil for a method/init member
	Overrides bool // declared with an explicit override of a parent method
}

func (d *ClassMemberDecl) stmtNode() {}

// ClassDecl is `class Name [: Super] [implements I,...] { members }`.
type ClassDecl struct {
	base
	Name string
	Super string // "" if none
	Interfaces []string
	Members []*ClassMemberDecl
	Final bool
	Abstract bool
	Visibility Visibility
}

func (d *ClassDecl) stmtNode() {}

// InterfaceDecl is `interface Name { method signatures / required fields }`.
type InterfaceDecl struct {
	base
	Name string
	Methods []*FnDecl // bodies are nil (signatures only)
	Fields []*Param // required fields, reusing Param's name/annotation shape
	Visibility Visibility
}

func (d *InterfaceDecl) stmtNode() {}

// TypeAliasDecl is `type Name = T;`.
type TypeAliasDecl struct {
	base
	Name string
	Target TypeExpr
	Visibility Visibility
}

func (d *TypeAliasDecl) stmtNode() {}

// EnumDecl is an explicit `enum` block whose variants are bare tags or
// carry payloads. The parser produces it only from the `enum` keyword;
// `type Name = A | B | C;` is always a TypeAliasDecl.
type EnumVariant struct {
	Name string
	Payload []TypeExpr // empty for a bare tag
}

type EnumDecl struct {
	base
	Name string
	Variants []EnumVariant
	Visibility Visibility
}

func (d *EnumDecl) stmtNode() {}
