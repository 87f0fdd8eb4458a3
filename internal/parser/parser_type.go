package parser

import (
	"github.com/netesy/limit/internal/ast"
	"github.com/netesy/limit/internal/cst"
	"github.com/netesy/limit/internal/token"
)

// parseType parses a full type annotation: union of postfix types, each
// of which may carry an optional-error suffix and/or a range suffix.
func (p *Parser) parseType() ast.TypeExpr {
	p.pushRule(cst.RuleType)
	start := p.cur.Start
	first := p.parsePostfixType()
	variants := []ast.TypeExpr{first}
	for p.check(token.PIPE) {
		p.advance()
		variants = append(variants, p.parsePostfixType())
	}
	var result ast.TypeExpr
	if len(variants) == 1 {
		result = first
	} else {
		u := &ast.UnionType{Variants: variants}
		u.Start, u.End = start, p.cur.Start
		result = u
	}
	cstNode := p.popRule()
	if u, ok := result.(*ast.UnionType); ok {
		u.CST = cstNode
	}
	return result
}

// parsePostfixType handles `T?`, `T?E`, and `T..` range suffixes applied
// to one primary/generic type.
func (p *Parser) parsePostfixType() ast.TypeExpr {
	start := p.cur.Start
	t := p.parsePrimaryType()

	if p.check(token.QUESTION) {
		p.advance()
		var errType ast.TypeExpr
		if p.startsType() {
			errType = p.parsePrimaryType()
		}
		oe := &ast.OptionalErrorType{Success: t, Err: errType}
		oe.Start, oe.End = start, p.cur.Start
		t = oe
	}

	if p.check(token.DOTDOT) {
		p.advance()
		p.parsePrimaryType() // homogeneous upper bound; elem type already known
		rt := &ast.RangeType{Elem: t}
		rt.Start, rt.End = start, p.cur.Start
		t = rt
	}
	return t
}

// startsType reports whether the current token can begin a type atom —
// used to decide whether a `?` is followed by an explicit error type.
func (p *Parser) startsType() bool {
	switch p.cur.Kind {
	case token.IDENT, token.LBRACKET, token.LBRACE, token.LPAREN, token.FN, token.SELF:
		return true
	}
	return false
}

func (p *Parser) parsePrimaryType() ast.TypeExpr {
	start := p.cur.Start
	switch p.cur.Kind {
	case token.FN:
		p.advance()
		p.expect(token.LPAREN, "after fn")
		var params []ast.TypeExpr
		for !p.check(token.RPAREN) && !p.check(token.EOF) {
			params = append(params, p.parseType())
			if p.check(token.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.RPAREN, "to close fn parameter types")
		var result ast.TypeExpr
		if p.check(token.COLON) {
			p.advance()
			result = p.parseType()
		}
		ft := &ast.FuncType{Params: params, Result: result}
		ft.Start, ft.End = start, p.cur.Start
		return ft

	case token.LBRACKET:
		p.advance()
		elem := p.parseType()
		p.expect(token.RBRACKET, "to close list type")
		lt := &ast.ListType{Elem: elem}
		lt.Start, lt.End = start, p.cur.Start
		return lt

	case token.LBRACE:
		p.advance()
		key := p.parseType()
		p.expect(token.COLON, "between dict key and value type")
		val := p.parseType()
		p.expect(token.RBRACE, "to close dict type")
		dt := &ast.DictType{Key: key, Value: val}
		dt.Start, dt.End = start, p.cur.Start
		return dt

	case token.LPAREN:
		p.advance()
		var elems []ast.TypeExpr
		for !p.check(token.RPAREN) && !p.check(token.EOF) {
			elems = append(elems, p.parseType())
			if p.check(token.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.RPAREN, "to close tuple type")
		tt := &ast.TupleType{Elems: elems}
		tt.Start, tt.End = start, p.cur.Start
		return tt

	case token.SELF:
		p.advance()
		nt := &ast.NameType{Name: "Self"}
		nt.Start, nt.End = start, p.cur.Start
		return nt

	case token.IDENT:
		name := p.advance().Text()
		if p.check(token.LBRACKET) {
			p.advance()
			var args []ast.TypeExpr
			for !p.check(token.RBRACKET) && !p.check(token.EOF) {
				args = append(args, p.parseType())
				if p.check(token.COMMA) {
					p.advance()
				} else {
					break
				}
			}
			p.expect(token.RBRACKET, "to close generic arguments")
			gt := &ast.GenericType{Name: name, Args: args}
			gt.Start, gt.End = start, p.cur.Start
			return gt
		}
		nt := &ast.NameType{Name: name}
		nt.Start, nt.End = start, p.cur.Start
		return nt

	default:
		p.errorf("E102", "expected a type, found %s", p.cur.Kind)
		p.markError()
		nt := &ast.NameType{Name: "any"}
		nt.Start, nt.End = start, start
		return nt
	}
}
