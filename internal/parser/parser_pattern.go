package parser

import (
	"github.com/netesy/limit/internal/ast"
	"github.com/netesy/limit/internal/token"
)

// parsePattern parses one match-arm pattern: wildcard, bind, literal, variant (possibly with
// sub-patterns), tuple, or struct destructuring.
func (p *Parser) parsePattern() ast.Pattern {
	start := p.cur.Start
	switch p.cur.Kind {
	case token.IDENT:
		name := p.cur.Text()
		if name == "_" {
			p.advance()
			n := &ast.WildcardPattern{}
			n.Start, n.End = start, p.cur.Start
			return n
		}
		p.advance()
		if p.check(token.LPAREN) {
			p.advance()
			var subs []ast.Pattern
			for !p.check(token.RPAREN) && !p.check(token.EOF) {
				subs = append(subs, p.parsePattern())
				if p.check(token.COMMA) {
					p.advance()
				} else {
					break
				}
			}
			p.expect(token.RPAREN, "to close variant pattern")
			n := &ast.VariantPattern{Tag: name, SubPats: subs}
			n.Start, n.End = start, p.cur.Start
			return n
		}
		// A lowercase bare name with no payload binds; an uppercase bare
		// name (by convention, a variant/enum tag) matches that tag.
		if isUpperFirst(name) {
			n := &ast.VariantPattern{Tag: name}
			n.Start, n.End = start, p.cur.Start
			return n
		}
		n := &ast.BindPattern{Name: name}
		n.Start, n.End = start, p.cur.Start
		return n

	case token.INT, token.FLOAT, token.TRUE, token.FALSE, token.NIL, token.STRING:
		v := p.parsePrimary()
		n := &ast.LiteralPattern{Value: v}
		n.Start, n.End = start, p.cur.Start
		return n

	case token.LPAREN:
		p.advance()
		var elems []ast.Pattern
		for !p.check(token.RPAREN) && !p.check(token.EOF) {
			elems = append(elems, p.parsePattern())
			if p.check(token.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.RPAREN, "to close tuple pattern")
		n := &ast.TuplePattern{Elems: elems}
		n.Start, n.End = start, p.cur.Start
		return n

	case token.LBRACE:
		p.advance()
		var fields []ast.StructPatternField
		for !p.check(token.RBRACE) && !p.check(token.EOF) {
			name := p.expect(token.IDENT, "struct pattern field name").Text()
			p.expect(token.COLON, "after struct pattern field name")
			pat := p.parsePattern()
			fields = append(fields, ast.StructPatternField{Name: name, Pat: pat})
			if p.check(token.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.RBRACE, "to close struct pattern")
		n := &ast.StructPattern{Fields: fields}
		n.Start, n.End = start, p.cur.Start
		return n

	default:
		p.errorf("E104", "expected a pattern, found %s", p.cur.Kind)
		p.markError()
		p.advance()
		n := &ast.WildcardPattern{}
		n.Start, n.End = start, start
		return n
	}
}

func isUpperFirst(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return c >= 'A' && c <= 'Z'
}
