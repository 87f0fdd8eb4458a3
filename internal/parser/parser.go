// Package parser is a recursive-descent, Pratt-style parser that builds
// an AST always and, in CST mode, a lockstep CST with full source
// fidelity.
package parser

import (
	"fmt"

	"github.com/netesy/limit/internal/ast"
	"github.com/netesy/limit/internal/cst"
	"github.com/netesy/limit/internal/lexer"
	"github.com/netesy/limit/internal/source"
	"github.com/netesy/limit/internal/token"
	"github.com/netesy/limit/internal/trivia"
)

// Parser holds all mutable state for one file's parse.
type Parser struct {
	file string
	lex *lexer.Lexer
	mode lexer.Mode
	sink *source.Sink

	cur token.Token
	cstTop []*cst.Nonterminal // stack of in-progress nonterminals
}

// New creates a parser over src. When mode is lexer.CST, the returned
// Parser's Parse method also builds a CST reachable from the returned
// ast.File's CSTNode().
func New(file, src string, mode lexer.Mode, pool *trivia.Pool, sink *source.Sink) *Parser {
	p := &Parser{
		file: file,
		lex: lexer.New(file, src, mode, pool, sink),
		mode: mode,
		sink: sink,
	}
	p.cur = p.lex.Next()
	return p
}

// --- token stream plumbing, shared by every parseXxx rule ---

func (p *Parser) pushRule(kind cst.RuleKind) {
	if p.mode != lexer.CST {
		return
	}
	p.cstTop = append(p.cstTop, cst.NewNonterminal(kind))
}

// popRule closes the current rule's nonterminal, attaching it to its
// parent (or returning it to the caller at the top level).
func (p *Parser) popRule() cst.Node {
	if p.mode != lexer.CST {
		return nil
	}
	n := p.cstTop[len(p.cstTop)-1]
	p.cstTop = p.cstTop[:len(p.cstTop)-1]
	if len(p.cstTop) > 0 {
		p.cstTop[len(p.cstTop)-1].Push(n)
	}
	return n
}

// markError flags the currently-open rule as a CST error-recovery node.
func (p *Parser) markError() {
	if p.mode == lexer.CST && len(p.cstTop) > 0 {
		p.cstTop[len(p.cstTop)-1].Error = true
	}
}

// advance consumes and returns the current token, pushing it as a CST
// leaf of the innermost open rule.
func (p *Parser) advance() token.Token {
	t := p.cur
	if p.mode == lexer.CST && len(p.cstTop) > 0 {
		p.cstTop[len(p.cstTop)-1].Push(&cst.Leaf{Tok: t})
	}
	if t.Kind != token.EOF {
		p.cur = p.lex.Next()
	}
	return t
}

func (p *Parser) check(k token.Kind) bool { return p.cur.Kind == k }

func (p *Parser) match(k token.Kind) (token.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	return token.Token{}, false
}

// expect consumes k or reports E101 and calls markError; it skips no
// input and returns a synthesized token of kind k.
func (p *Parser) expect(k token.Kind, context string) token.Token {
	if p.check(k) {
		return p.advance()
	}
	p.errorf("E101", "expected %s %s, found %s", k, context, p.cur.Kind)
	p.markError()
	return token.Token{Kind: k}
}

func (p *Parser) errorf(code source.Code, format string, args ...any) {
	if p.sink == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	_ = p.sink.Report(source.New(code, source.StageParsing, p.file,
		source.Range{Start: p.cur.Start, End: p.cur.End}, msg))
}

// synchronize skips tokens until a statement boundary (";") or a closing
// delimiter, per the recovery rule.
func (p *Parser) synchronize() {
	for !p.check(token.EOF) {
		if p.cur.Kind == token.SEMI {
			p.advance()
			return
		}
		if p.cur.Kind == token.RBRACE {
			return
		}
		p.advance()
	}
}

// Parse parses a whole file: optional imports followed by top-level
// declarations.
func (p *Parser) Parse() *ast.File {
	p.pushRule(cst.RuleProgram)
	start := p.cur.Start
	f := &ast.File{Name: p.file}
	for p.check(token.IMPORT) {
		f.Imports = append(f.Imports, p.parseImport())
	}
	for !p.check(token.EOF) {
		beforePos := p.cur.Start
		d := p.parseTopLevelDecl()
		if d != nil {
			f.Decls = append(f.Decls, d)
		}
		if p.cur.Start == beforePos {
			// no progress: avoid an infinite loop on unrecoverable input
			p.advance()
		}
	}
	end := p.cur.Start
	f.Start, f.End = start, end
	f.CST = p.popRule()
	return f
}

func (p *Parser) parseImport() *ast.Import {
	p.pushRule(cst.RuleImport)
	start := p.advance().Start // 'import'
	imp := &ast.Import{}
	imp.Path = append(imp.Path, p.expect(token.IDENT, "module name").Text())
	for p.check(token.DOT) {
		p.advance()
		imp.Path = append(imp.Path, p.expect(token.IDENT, "module segment").Text())
	}
	if p.check(token.AS) {
		p.advance()
		imp.Alias = p.expect(token.IDENT, "import alias").Text()
	}
	if p.check(token.SHOW) {
		p.advance()
		imp.Show = p.parseIdentList()
	} else if p.check(token.HIDE) {
		p.advance()
		imp.Hide = p.parseIdentList()
	}
	end := p.expect(token.SEMI, "after import").End
	imp.Start, imp.End = start, end
	imp.CST = p.popRule()
	return imp
}

// ParseFile is the package-level convenience entry point used by the
// compiler driver: scan+parse file in one call.
func ParseFile(file, src string, mode lexer.Mode, pool *trivia.Pool, sink *source.Sink) *ast.File {
	return New(file, src, mode, pool, sink).Parse()
}

func (p *Parser) parseIdentList() []string {
	var out []string
	out = append(out, p.expect(token.IDENT, "name").Text())
	for p.check(token.COMMA) {
		p.advance()
		out = append(out, p.expect(token.IDENT, "name").Text())
	}
	return out
}
