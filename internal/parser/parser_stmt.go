package parser

import (
	"github.com/netesy/limit/internal/ast"
	"github.com/netesy/limit/internal/cst"
	"github.com/netesy/limit/internal/token"
)

// parseBlock parses `{ stmts }`.
func (p *Parser) parseBlock() *ast.Block {
	p.pushRule(cst.RuleBlock)
	start := p.expect(token.LBRACE, "to start a block").Start
	b := &ast.Block{}
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		before := p.cur.Start
		s := p.parseStmt()
		if s != nil {
			b.Stmts = append(b.Stmts, s)
		}
		if p.cur.Start == before {
			p.advance()
		}
	}
	end := p.expect(token.RBRACE, "to close a block").End
	b.Start, b.End = start, end
	b.CST = p.popRule()
	return b
}

// parseStmt dispatches on the leading token of a statement.
func (p *Parser) parseStmt() ast.Stmt {
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
	case token.LBRACE:
		return p.parseBlock()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.ITER:
		return p.parseIter()
	case token.LOOP:
		return p.parseLoop()
	case token.RETURN:
		return p.parseReturn()
	case token.BREAK:
		p.pushRule(cst.RuleBreak)
		start := p.advance().Start
		end := p.expect(token.SEMI, "after break").End
		n := &ast.Break{}
		n.Start, n.End = start, end
		n.CST = p.popRule()
		return n
	case token.CONTINUE:
		p.pushRule(cst.RuleContinue)
		start := p.advance().Start
		end := p.expect(token.SEMI, "after continue").End
		n := &ast.Continue{}
		n.Start, n.End = start, end
		n.CST = p.popRule()
		return n
	case token.PARALLEL, token.CONCURRENT:
		return p.parseConcurrencyBlock()
	case token.IMPORT:
		return p.parseImport()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseVisibleDecl() ast.Stmt {
	vis := ast.Private
	switch p.cur.Kind {
	case token.PUBLIC:
		vis = ast.Public
	case token.PROTECTED:
		vis = ast.Protected
	case token.PRIVATE:
		vis = ast.Private
	}
	p.advance()
	switch p.cur.Kind {
	case token.VAR:
		return p.parseVarDecl(vis)
	case token.FN:
		return p.parseFnDecl(vis, false)
	case token.CLASS:
		return p.parseClassDecl(vis)
	case token.INTERFACE:
		return p.parseInterfaceDecl(vis)
	case token.TYPE:
		return p.parseTypeOrEnumDecl(vis)
	case token.ENUM:
		return p.parseEnumDecl(vis)
	default:
		p.errorf("E105", "expected a declaration after visibility modifier, found %s", p.cur.Kind)
		p.markError()
		return p.parseExprStmt()
	}
}

func (p *Parser) parseExprStmt() ast.Stmt {
	p.pushRule(cst.RuleExprStmt)
	start := p.cur.Start
	x := p.parseExpr()
	end := p.expect(token.SEMI, "after expression statement").End
	s := &ast.ExprStmt{X: x}
	s.Start, s.End = start, end
	s.CST = p.popRule()
	return s
}

func (p *Parser) parseIf() ast.Stmt {
	p.pushRule(cst.RuleIf)
	start := p.advance().Start // 'if'
	p.expect(token.LPAREN, "after if")
	cond := p.parseExpr()
	p.expect(token.RPAREN, "after if condition")
	then := p.parseBlock()
	n := &ast.If{Cond: cond, Then: then}
	if p.check(token.ELSE) {
		p.advance()
		if p.check(token.IF) {
			n.Else = p.parseIf()
		} else {
			n.Else = p.parseBlock()
		}
	}
	n.Start, n.End = start, p.cur.Start
	n.CST = p.popRule()
	return n
}

func (p *Parser) parseWhile() ast.Stmt {
	p.pushRule(cst.RuleWhile)
	start := p.advance().Start
	p.expect(token.LPAREN, "after while")
	cond := p.parseExpr()
	p.expect(token.RPAREN, "after while condition")
	body := p.parseBlock()
	n := &ast.While{Cond: cond, Body: body}
	n.Start, n.End = start, p.cur.Start
	n.CST = p.popRule()
	return n
}

func (p *Parser) parseFor() ast.Stmt {
	p.pushRule(cst.RuleFor)
	start := p.advance().Start
	p.expect(token.LPAREN, "after for")
	n := &ast.For{}
	if !p.check(token.SEMI) {
		if p.check(token.VAR) {
			n.Init = p.parseVarDeclNoSemiTerminator()
		} else {
			x := p.parseExpr()
			s := &ast.ExprStmt{X: x}
			s.Start, s.End = x.Range()
			n.Init = s
		}
	}
	p.expect(token.SEMI, "after for-loop initializer")
	if !p.check(token.SEMI) {
		n.Cond = p.parseExpr()
	}
	p.expect(token.SEMI, "after for-loop condition")
	if !p.check(token.RPAREN) {
		n.Step = p.parseExpr()
	}
	p.expect(token.RPAREN, "after for-loop clauses")
	n.Body = p.parseBlock()
	n.Start, n.End = start, p.cur.Start
	n.CST = p.popRule()
	return n
}

// parseVarDeclNoSemiTerminator parses `var name[: T] [= expr]` without
// consuming a trailing ";" — used only inside a for-loop's init clause,
// where the loop itself owns the separating semicolon.
func (p *Parser) parseVarDeclNoSemiTerminator() *ast.VarDecl {
	start := p.advance().Start // 'var'
	name := p.expect(token.IDENT, "variable name").Text()
	d := &ast.VarDecl{Name: name}
	if p.check(token.COLON) {
		p.advance()
		d.Annotation = p.parseType()
	}
	if p.check(token.ASSIGN) {
		p.advance()
		d.Value = p.parseExpr()
	}
	d.Start, d.End = start, p.cur.Start
	return d
}

func (p *Parser) parseIter() ast.Stmt {
	p.pushRule(cst.RuleIter)
	start := p.advance().Start
	p.expect(token.LPAREN, "after iter")
	name := p.expect(token.IDENT, "iter binding name").Text()
	p.expect(token.IN, "after iter binding name")
	iterable := p.parseExpr()
	p.expect(token.RPAREN, "after iter clause")
	body := p.parseBlock()
	n := &ast.Iter{Name: name, Iterable: iterable, Body: body}
	n.Start, n.End = start, p.cur.Start
	n.CST = p.popRule()
	return n
}

func (p *Parser) parseLoop() ast.Stmt {
	p.pushRule(cst.RuleLoop)
	start := p.advance().Start
	body := p.parseBlock()
	n := &ast.Loop{Body: body}
	n.Start, n.End = start, p.cur.Start
	n.CST = p.popRule()
	return n
}

func (p *Parser) parseReturn() ast.Stmt {
	p.pushRule(cst.RuleReturn)
	start := p.advance().Start
	n := &ast.Return{}
	if !p.check(token.SEMI) {
		n.Value = p.parseExpr()
	}
	end := p.expect(token.SEMI, "after return").End
	n.Start, n.End = start, end
	n.CST = p.popRule()
	return n
}

func (p *Parser) parseConcurrencyBlock() ast.Stmt {
	p.pushRule(cst.RuleConcurrencyBlock)
	kind := ast.Parallel
	if p.cur.Kind == token.CONCURRENT {
		kind = ast.Concurrent
	}
	start := p.advance().Start
	body := p.parseBlock()
	n := &ast.ConcurrencyBlock{Kind: kind, Body: body}
	n.Start, n.End = start, p.cur.Start
	n.CST = p.popRule()
	return n
}

func (p *Parser) parseMatchExpr() ast.Expr {
	p.pushRule(cst.RuleMatch)
	start := p.advance().Start // 'match'
	scrutinee := p.parseExpr()
	p.expect(token.LBRACE, "to start match arms")
	m := &ast.MatchExpr{Scrutinee: scrutinee}
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		m.Arms = append(m.Arms, p.parseMatchArm())
		if p.check(token.COMMA) {
			p.advance()
		}
	}
	end := p.expect(token.RBRACE, "to close match arms").End
	m.Start, m.End = start, end
	m.CST = p.popRule()
	return m
}

func (p *Parser) parseMatchArm() ast.MatchArm {
	p.pushRule(cst.RuleMatchArm)
	pat := p.parsePattern()
	var guard ast.Expr
	if p.check(token.WHERE) {
		p.advance()
		guard = p.parseExpr()
	}
	p.expect(token.FATARROW, "between a match pattern and its body")
	body := p.parseExpr()
	p.popRule()
	return ast.MatchArm{Pattern: pat, Guard: guard, Body: body}
}
