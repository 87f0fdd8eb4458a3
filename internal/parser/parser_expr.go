package parser

import (
	"github.com/netesy/limit/internal/ast"
	"github.com/netesy/limit/internal/cst"
	"github.com/netesy/limit/internal/token"
)

// parseExpr is the entry point for the full expression grammar,
// including assignment.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() ast.Expr {
	start := p.cur.Start
	left := p.parseElseRecover()
	var op ast.AssignOp
	switch p.cur.Kind {
	case token.ASSIGN:
		op = ast.AssignSet
	case token.PLUS_ASSIGN:
		op = ast.AssignAdd
	case token.MINUS_ASSIGN:
		op = ast.AssignSub
	default:
		return left
	}
	p.advance()
	value := p.parseAssignment()
	a := &ast.Assign{Op: op, Target: left, Value: value}
	a.Start, a.End = start, p.cur.Start
	return a
}

// parseElseRecover handles the postfix `expr ?else errName { block }`
// recovery form, which sits directly below assignment in precedence.
func (p *Parser) parseElseRecover() ast.Expr {
	start := p.cur.Start
	left := p.parseOr()
	if !p.check(token.QUESTION_ELSE) {
		return left
	}
	p.advance()
	errName := p.expect(token.IDENT, "error binding name after ?else").Text()
	fallback := p.parseBlock()
	r := &ast.RecoverExpr{X: left, ErrName: errName, Fallback: fallback}
	if n := len(fallback.Stmts); n > 0 {
		if es, ok := fallback.Stmts[n-1].(*ast.ExprStmt); ok {
			r.FallbackValue = es.X
		}
	}
	r.Start, r.End = start, p.cur.Start
	return r
}

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.check(token.OR) {
		p.advance()
		right := p.parseAnd()
		left = p.mkBinary(ast.OpOr, left, right)
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseNot()
	for p.check(token.AND) {
		p.advance()
		right := p.parseNot()
		left = p.mkBinary(ast.OpAnd, left, right)
	}
	return left
}

// parseNot handles the prefix `not` operator at its own precedence level.
func (p *Parser) parseNot() ast.Expr {
	if p.check(token.NOT) {
		start := p.cur.Start
		p.advance()
		x := p.parseNot()
		u := &ast.UnaryExpr{Op: ast.OpNot, X: x}
		u.Start, u.End = start, p.cur.Start
		return u
	}
	return p.parseRange()
}

// parseRange handles `lo..hi` value-level ranges, binding
// looser than equality/comparison so `a..b == c..d` parses as ranges of
// comparisons' operands rather than the reverse.
func (p *Parser) parseRange() ast.Expr {
	start := p.cur.Start
	left := p.parseEquality()
	if !p.check(token.DOTDOT) {
		return left
	}
	p.advance()
	right := p.parseEquality()
	n := &ast.RangeExpr{Lo: left, Hi: right}
	n.Start, n.End = start, p.cur.Start
	return n
}

func (p *Parser) parseEquality() ast.Expr {
	left := p.parseComparison()
	for p.check(token.EQ) || p.check(token.NEQ) {
		op := ast.OpEq
		if p.cur.Kind == token.NEQ {
			op = ast.OpNeq
		}
		p.advance()
		right := p.parseComparison()
		left = p.mkBinary(op, left, right)
	}
	return left
}

func (p *Parser) parseComparison() ast.Expr {
	left := p.parseAdditive()
	for {
		var op ast.BinaryOp
		switch p.cur.Kind {
		case token.LT:
			op = ast.OpLt
		case token.LE:
			op = ast.OpLe
		case token.GT:
			op = ast.OpGt
		case token.GE:
			op = ast.OpGe
		default:
			return left
		}
		p.advance()
		right := p.parseAdditive()
		left = p.mkBinary(op, left, right)
	}
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.check(token.PLUS) || p.check(token.MINUS) {
		op := ast.OpAdd
		if p.cur.Kind == token.MINUS {
			op = ast.OpSub
		}
		p.advance()
		right := p.parseMultiplicative()
		left = p.mkBinary(op, left, right)
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parsePower()
	for p.check(token.STAR) || p.check(token.SLASH) || p.check(token.PERCENT) {
		var op ast.BinaryOp
		switch p.cur.Kind {
		case token.STAR:
			op = ast.OpMul
		case token.SLASH:
			op = ast.OpDiv
		case token.PERCENT:
			op = ast.OpMod
		}
		p.advance()
		right := p.parsePower()
		left = p.mkBinary(op, left, right)
	}
	return left
}

// parsePower is right-associative.
func (p *Parser) parsePower() ast.Expr {
	left := p.parseUnary()
	if p.check(token.POW) {
		p.advance()
		right := p.parsePower()
		return p.mkBinary(ast.OpPow, left, right)
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	if p.check(token.MINUS) {
		start := p.cur.Start
		p.advance()
		x := p.parseUnary()
		u := &ast.UnaryExpr{Op: ast.OpNeg, X: x}
		u.Start, u.End = start, p.cur.Start
		return u
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expr {
	start := p.cur.Start
	x := p.parsePrimary()
	for {
		switch p.cur.Kind {
		case token.DOT:
			p.advance()
			name := p.expect(token.IDENT, "member name").Text()
			m := &ast.MemberExpr{X: x, Name: name}
			m.Start, m.End = start, p.cur.Start
			x = m
		case token.LPAREN:
			p.advance()
			var args []ast.Expr
			for !p.check(token.RPAREN) && !p.check(token.EOF) {
				args = append(args, p.parseExpr())
				if p.check(token.COMMA) {
					p.advance()
				} else {
					break
				}
			}
			p.expect(token.RPAREN, "to close call arguments")
			c := &ast.CallExpr{Callee: x, Args: args}
			c.Start, c.End = start, p.cur.Start
			x = c
		case token.LBRACKET:
			p.advance()
			idx := p.parseExpr()
			p.expect(token.RBRACKET, "to close index expression")
			ix := &ast.IndexExpr{X: x, Index: idx}
			ix.Start, ix.End = start, p.cur.Start
			x = ix
		case token.QUESTION:
			p.advance()
			pe := &ast.PropagateExpr{X: x}
			pe.Start, pe.End = start, p.cur.Start
			x = pe
		default:
			return x
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	start := p.cur.Start
	switch p.cur.Kind {
	case token.INT:
		lex := p.advance()
		v := parseIntLiteral(lex.Lexeme)
		n := &ast.IntLit{Value: v}
		n.Start, n.End = start, p.cur.Start
		return n
	case token.FLOAT:
		lex := p.advance()
		v := parseFloatLiteral(lex.Lexeme)
		n := &ast.FloatLit{Value: v}
		n.Start, n.End = start, p.cur.Start
		return n
	case token.TRUE, token.FALSE:
		v := p.cur.Kind == token.TRUE
		p.advance()
		n := &ast.BoolLit{Value: v}
		n.Start, n.End = start, p.cur.Start
		return n
	case token.NIL:
		p.advance()
		n := &ast.NilLit{}
		n.Start, n.End = start, p.cur.Start
		return n
	case token.SELF:
		p.advance()
		n := &ast.SelfExpr{}
		n.Start, n.End = start, p.cur.Start
		return n
	case token.SUPER:
		p.advance()
		n := &ast.SuperExpr{}
		n.Start, n.End = start, p.cur.Start
		return n
	case token.STRING:
		lex := p.advance()
		n := &ast.StringLit{Value: lex.Text()}
		n.Start, n.End = start, p.cur.Start
		return n
	case token.STRING_START:
		return p.parseStringInterp(start)
	case token.TASK:
		p.advance()
		body := p.parseExpr()
		n := &ast.TaskExpr{Body: body}
		n.Start, n.End = start, p.cur.Start
		return n
	case token.AWAIT:
		p.advance()
		x := p.parseExpr()
		n := &ast.AwaitExpr{X: x}
		n.Start, n.End = start, p.cur.Start
		return n
	case token.MATCH:
		return p.parseMatchExpr()
	case token.LPAREN:
		p.advance()
		first := p.parseExpr()
		if p.check(token.COMMA) {
			elems := []ast.Expr{first}
			for p.check(token.COMMA) {
				p.advance()
				if p.check(token.RPAREN) {
					break
				}
				elems = append(elems, p.parseExpr())
			}
			p.expect(token.RPAREN, "to close tuple literal")
			// Tuple literals reuse ListLit's shape at parse time; the
			// checker distinguishes by context (assignment target arity).
			n := &ast.ListLit{Elems: elems}
			n.Start, n.End = start, p.cur.Start
			return n
		}
		p.expect(token.RPAREN, "to close grouped expression")
		return first
	case token.LBRACKET:
		p.advance()
		var elems []ast.Expr
		for !p.check(token.RBRACKET) && !p.check(token.EOF) {
			elems = append(elems, p.parseExpr())
			if p.check(token.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.RBRACKET, "to close list literal")
		n := &ast.ListLit{Elems: elems}
		n.Start, n.End = start, p.cur.Start
		return n
	case token.LBRACE:
		return p.parseBraceLit(start)
	case token.IDENT:
		name := p.cur.Text()
		switch name {
		case "ok":
			return p.parseOkErr(start, true)
		case "err":
			return p.parseOkErr(start, false)
		}
		p.advance()
		id := &ast.Ident{Name: name}
		id.Start, id.End = start, p.cur.Start
		return id
	default:
		p.errorf("E103", "expected an expression, found %s", p.cur.Kind)
		p.markError()
		p.advance()
		n := &ast.NilLit{}
		n.Start, n.End = start, start
		return n
	}
}

func (p *Parser) parseOkErr(start int, ok bool) ast.Expr {
	p.advance() // 'ok' / 'err'
	if !p.check(token.LPAREN) {
		// bare identifier use after all
		id := &ast.Ident{Name: map[bool]string{true: "ok", false: "err"}[ok]}
		id.Start, id.End = start, p.cur.Start
		return id
	}
	p.advance()
	var value ast.Expr
	if !p.check(token.RPAREN) {
		value = p.parseExpr()
	}
	p.expect(token.RPAREN, "to close constructor arguments")
	if ok {
		n := &ast.OkExpr{Value: value}
		n.Start, n.End = start, p.cur.Start
		return n
	}
	n := &ast.ErrExpr{Value: value}
	n.Start, n.End = start, p.cur.Start
	return n
}

// parseBraceLit parses `{ }` and `{ key: value,... }` literals. Dict
// entries and structural-record fields share this surface shape, and
// the parser picks the node by key shape alone: a StructLit when every
// key is a bare Ident (the empty `{ }` included), else a DictLit.
func (p *Parser) parseBraceLit(start int) ast.Expr {
	p.pushRule(cst.RuleStructLit)
	p.advance() // '{'
	var entries []ast.DictEntry
	allIdentKeys := true
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		key := p.parseExpr()
		if _, ok := key.(*ast.Ident); !ok {
			allIdentKeys = false
		}
		p.expect(token.COLON, "between literal key and value")
		val := p.parseExpr()
		entries = append(entries, ast.DictEntry{Key: key, Value: val})
		if p.check(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RBRACE, "to close literal")
	cstNode := p.popRule()
	if allIdentKeys {
		n := &ast.StructLit{Fields: entries}
		n.Start, n.End = start, p.cur.Start
		n.CST = cstNode
		return n
	}
	n := &ast.DictLit{Entries: entries}
	n.Start, n.End = start, p.cur.Start
	n.CST = cstNode
	return n
}

// parseStringInterp assumes p.cur.Kind == token.STRING_START.
func (p *Parser) parseStringInterp(start int) ast.Expr {
	p.pushRule(cst.RuleStringInterp)
	si := &ast.StringInterp{}
	first := p.advance() // STRING_START
	si.Segments = append(si.Segments, first.Text())
	for {
		si.Exprs = append(si.Exprs, p.parseExpr())
		seg := p.advance() // STRING_SEGMENT or STRING_END (lexer resumes automatically)
		si.Segments = append(si.Segments, seg.Text())
		if seg.Kind == token.STRING_END {
			break
		}
		if seg.Kind != token.STRING_SEGMENT {
			p.markError()
			break
		}
	}
	si.Start, si.End = start, p.cur.Start
	si.CST = p.popRule()
	return si
}

func (p *Parser) mkBinary(op ast.BinaryOp, l, r ast.Expr) ast.Expr {
	start, _ := l.Range()
	_, end := r.Range()
	n := &ast.BinaryExpr{Op: op, Left: l, Right: r}
	n.Start, n.End = start, end
	return n
}
