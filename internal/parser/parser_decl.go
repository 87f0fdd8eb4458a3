package parser

import (
	"github.com/netesy/limit/internal/ast"
	"github.com/netesy/limit/internal/cst"
	"github.com/netesy/limit/internal/token"
)

// parseTopLevelDecl parses one file-scope declaration: a var/fn/class/
// interface/type/enum declaration, optionally preceded by a visibility
// modifier.
func (p *Parser) parseTopLevelDecl() ast.Stmt {
	switch p.cur.Kind {
	case token.VAR:
		return p.parseVarDecl(ast.Private)
	case token.FN:
		return p.parseFnDecl(ast.Private, false)
	case token.CLASS:
		return p.parseClassDecl(ast.Private)
	case token.INTERFACE:
		return p.parseInterfaceDecl(ast.Private)
	case token.TYPE:
		return p.parseTypeOrEnumDecl(ast.Private)
	case token.ENUM:
		return p.parseEnumDecl(ast.Private)
	case token.PUBLIC, token.PROTECTED, token.PRIVATE:
		return p.parseVisibleDecl()
	default:
		p.errorf("E106", "expected a top-level declaration, found %s", p.cur.Kind)
		p.markError()
		p.synchronize()
		return nil
	}
}

func (p *Parser) parseVarDecl(vis ast.Visibility) *ast.VarDecl {
	p.pushRule(cst.RuleVarDecl)
	start := p.advance().Start // 'var'
	name := p.expect(token.IDENT, "variable name").Text()
	d := &ast.VarDecl{Name: name, Visibility: vis}
	if p.check(token.COLON) {
		p.advance()
		d.Annotation = p.parseType()
	}
	if p.check(token.ASSIGN) {
		p.advance()
		d.Value = p.parseExpr()
	}
	end := p.expect(token.SEMI, "after variable declaration").End
	d.Start, d.End = start, end
	d.CST = p.popRule()
	return d
}

// parseFnDecl parses `fn name(params)[: Result] { body }`. isInit is
// true when parsing a class's init member (parseClassMember threads
// override/abstract separately).
func (p *Parser) parseFnDecl(vis ast.Visibility, isInit bool) *ast.FnDecl {
	p.pushRule(cst.RuleFnDecl)
	start := p.cur.Start
	if isInit {
		p.expect(token.INIT, "init declaration")
	} else {
		p.advance() // 'fn'
	}
	name := "init"
	if !isInit {
		name = p.expect(token.IDENT, "function name").Text()
	}
	d := &ast.FnDecl{Name: name, Visibility: vis, IsInit: isInit}
	p.expect(token.LPAREN, "after function name")
	for !p.check(token.RPAREN) && !p.check(token.EOF) {
		d.Params = append(d.Params, p.parseParam())
		if p.check(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RPAREN, "to close parameter list")
	if p.check(token.COLON) {
		p.advance()
		d.Result = p.parseType()
	}
	if p.check(token.SEMI) {
		// abstract/interface signature: no body
		p.advance()
		d.IsAbstract = true
	} else {
		d.Body = p.parseBlock().Stmts
	}
	d.Start, d.End = start, p.cur.Start
	d.CST = p.popRule()
	return d
}

func (p *Parser) parseParam() *ast.Param {
	p.pushRule(cst.RuleParam)
	forceLinear := false
	if p.check(token.LINEAR) {
		p.advance()
		forceLinear = true
	} else if p.check(token.REF) {
		p.advance()
	}
	name := p.expect(token.IDENT, "parameter name").Text()
	param := &ast.Param{Name: name, ForceLinear: forceLinear}
	if p.check(token.COLON) {
		p.advance()
		param.Annotation = p.parseType()
	}
	if p.check(token.ASSIGN) {
		p.advance()
		param.Default = p.parseExpr()
	}
	p.popRule()
	return param
}

func (p *Parser) parseClassDecl(vis ast.Visibility) *ast.ClassDecl {
	p.pushRule(cst.RuleClassDecl)
	start := p.advance().Start // 'class'
	d := &ast.ClassDecl{Visibility: vis}
	if p.check(token.ABSTRACT) {
		p.advance()
		d.Abstract = true
	}
	if p.check(token.FINAL) {
		p.advance()
		d.Final = true
	}
	d.Name = p.expect(token.IDENT, "class name").Text()
	if p.check(token.COLON) {
		p.advance()
		d.Super = p.expect(token.IDENT, "superclass name").Text()
	}
	if p.check(token.IMPLEMENTS) {
		p.advance()
		d.Interfaces = append(d.Interfaces, p.expect(token.IDENT, "interface name").Text())
		for p.check(token.COMMA) {
			p.advance()
			d.Interfaces = append(d.Interfaces, p.expect(token.IDENT, "interface name").Text())
		}
	}
	p.expect(token.LBRACE, "to start class body")
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		d.Members = append(d.Members, p.parseClassMember())
	}
	end := p.expect(token.RBRACE, "to close class body").End
	d.Start, d.End = start, end
	d.CST = p.popRule()
	return d
}

func (p *Parser) parseClassMember() *ast.ClassMemberDecl {
	start := p.cur.Start
	vis := ast.Private
	switch p.cur.Kind {
	case token.PUBLIC:
		vis = ast.Public
		p.advance()
	case token.PROTECTED:
		vis = ast.Protected
		p.advance()
	case token.PRIVATE:
		p.advance()
	}
	overrides := false
	if p.check(token.OVERRIDE) {
		p.advance()
		overrides = true
	}
	m := &ast.ClassMemberDecl{Visibility: vis, Overrides: overrides}
	switch p.cur.Kind {
	case token.INIT:
		m.Method = p.parseFnDecl(vis, true)
	case token.FN:
		m.Method = p.parseFnDecl(vis, false)
	case token.VAR:
		m.Field = p.parseVarDecl(vis)
	default:
		p.errorf("E107", "expected a field or method in class body, found %s", p.cur.Kind)
		p.markError()
		p.synchronize()
	}
	m.Start, m.End = start, p.cur.Start
	return m
}

func (p *Parser) parseInterfaceDecl(vis ast.Visibility) *ast.InterfaceDecl {
	p.pushRule(cst.RuleInterfaceDecl)
	start := p.advance().Start // 'interface'
	d := &ast.InterfaceDecl{Visibility: vis}
	d.Name = p.expect(token.IDENT, "interface name").Text()
	p.expect(token.LBRACE, "to start interface body")
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		if p.check(token.VAR) {
			v := p.parseVarDecl(ast.Public)
			param := &ast.Param{Name: v.Name, Annotation: v.Annotation}
			d.Fields = append(d.Fields, param)
			continue
		}
		d.Methods = append(d.Methods, p.parseFnDecl(ast.Public, false))
	}
	end := p.expect(token.RBRACE, "to close interface body").End
	d.Start, d.End = start, end
	d.CST = p.popRule()
	return d
}

// parseTypeOrEnumDecl parses `type Name = T;` into a TypeAliasDecl. A
// union of bare tags stays an alias whose tags are resolved as type
// names; only the `enum` keyword (parseEnumDecl) produces an EnumDecl.
func (p *Parser) parseTypeOrEnumDecl(vis ast.Visibility) ast.Stmt {
	p.pushRule(cst.RuleTypeAlias)
	start := p.advance().Start // 'type'
	name := p.expect(token.IDENT, "type name").Text()
	p.expect(token.ASSIGN, "after type name")
	target := p.parseType()
	end := p.expect(token.SEMI, "after type alias").End
	d := &ast.TypeAliasDecl{Name: name, Target: target, Visibility: vis}
	d.Start, d.End = start, end
	d.CST = p.popRule()
	return d
}

func (p *Parser) parseEnumDecl(vis ast.Visibility) *ast.EnumDecl {
	p.pushRule(cst.RuleEnumDecl)
	start := p.advance().Start // 'enum'
	d := &ast.EnumDecl{Visibility: vis}
	d.Name = p.expect(token.IDENT, "enum name").Text()
	p.expect(token.LBRACE, "to start enum body")
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		tag := p.expect(token.IDENT, "enum variant name").Text()
		v := ast.EnumVariant{Name: tag}
		if p.check(token.LPAREN) {
			p.advance()
			for !p.check(token.RPAREN) && !p.check(token.EOF) {
				v.Payload = append(v.Payload, p.parseType())
				if p.check(token.COMMA) {
					p.advance()
				} else {
					break
				}
			}
			p.expect(token.RPAREN, "to close enum variant payload")
		}
		d.Variants = append(d.Variants, v)
		if p.check(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	end := p.expect(token.RBRACE, "to close enum body").End
	d.Start, d.End = start, end
	d.CST = p.popRule()
	return d
}
