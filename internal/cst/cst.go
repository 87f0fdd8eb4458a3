// Package cst is the concrete syntax tree: every token, every byte,
// full source fidelity.
package cst

import "github.com/netesy/limit/internal/token"

// RuleKind tags a nonterminal with the grammar rule that produced it.
type RuleKind int

const (
	RuleProgram RuleKind = iota
	RuleVarDecl
	RuleFnDecl
	RuleClassDecl
	RuleTypeAlias
	RuleEnumDecl
	RuleImport
	RuleBlock
	RuleIf
	RuleWhile
	RuleFor
	RuleIter
	RuleMatch
	RuleMatchArm
	RuleReturn
	RuleBreak
	RuleContinue
	RuleLoop
	RuleParallel
	RuleExprStmt
	RuleType
	RuleBinaryExpr
	RuleUnaryExpr
	RuleCallExpr
	RuleIndexExpr
	RuleMemberExpr
	RulePropagateExpr
	RuleRecoverExpr
	RuleStringInterp
	RuleListLit
	RuleDictLit
	RuleRangeExpr
	RulePrimary
	RuleErrorNode

	RuleParam
	RuleArgList
	RuleStructLit
	RuleAssign
	RuleTaskExpr
	RuleAwaitExpr
	RuleInterfaceDecl
	RuleConcurrencyBlock
	RuleGenericType
	RuleUnionType
	RuleOptionalErrorType
	RuleListType
	RuleDictType
	RuleFuncType
	RuleNameType
	RuleTupleType
	RuleRangeType
	RuleOkExpr
	RuleErrExpr
	RuleSelfExpr
	RuleSuperExpr
	RuleWildcardPattern
	RuleBindPattern
	RuleLiteralPattern
	RuleVariantPattern
	RuleTuplePattern
	RuleStructPattern
)

// Node is either a Leaf (a single token) or a Nonterminal (an ordered
// list of child Nodes). Every source byte belongs to exactly one Leaf.
type Node interface {
	Range() (start, end int)
	isNode()
}

// Leaf wraps one token — significant or, for an error-recovery marker,
// an error token emitted by the scanner.
type Leaf struct {
	Tok token.Token
}

func (l *Leaf) isNode() {}
func (l *Leaf) Range() (int, int) {
	start := l.Tok.Start
	if len(l.Tok.Leading) > 0 {
		start = l.Tok.Leading[0].Start
	}
	end := l.Tok.End
	if n := len(l.Tok.Trailing); n > 0 {
		end = l.Tok.Trailing[n-1].End
	}
	return start, end
}

// Nonterminal is a grammar-rule node spanning the byte range of all its
// children, in order.
type Nonterminal struct {
	Rule RuleKind
	Children []Node
	// Error marks a recovery point: the parser couldn't complete this
	// rule and synchronized past some input.
	Error bool
}

func (n *Nonterminal) isNode() {}
func (n *Nonterminal) Range() (int, int) {
	if len(n.Children) == 0 {
		return 0, 0
	}
	start, _ := n.Children[0].Range()
	_, end := n.Children[len(n.Children)-1].Range()
	return start, end
}

func (n *Nonterminal) Push(c Node) { n.Children = append(n.Children, c) }

// NewNonterminal starts an empty nonterminal for the given rule; the
// parser pushes children (tokens and sub-rules) as it recognizes them.
func NewNonterminal(rule RuleKind) *Nonterminal { return &Nonterminal{Rule: rule} }

// Leaves walks node in order and returns every Leaf, i.e. the original
// token stream — used by the round-trip-fidelity test.
func Leaves(n Node) []*Leaf {
	var out []*Leaf
	var walk func(Node)
	walk = func(n Node) {
		switch t := n.(type) {
		case *Leaf:
			out = append(out, t)
		case *Nonterminal:
			for _, c := range t.Children {
				walk(c)
			}
		}
	}
	walk(n)
	return out
}

// Reconstruct concatenates leading trivia, lexeme, and trailing trivia
// for every leaf in order, reproducing the original source byte-for-byte.
func Reconstruct(n Node) string {
	var sb []byte
	for _, leaf := range Leaves(n) {
		for _, t := range leaf.Tok.Leading {
			sb = append(sb, t.Text...)
		}
		sb = append(sb, leaf.Tok.Lexeme...)
		for _, t := range leaf.Tok.Trailing {
			sb = append(sb, t.Text...)
		}
	}
	return string(sb)
}
