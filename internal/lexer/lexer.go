// Package lexer scans Limit source into a token stream, optionally with
// trivia attached for lossless round-tripping.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/netesy/limit/internal/source"
	"github.com/netesy/limit/internal/token"
	"github.com/netesy/limit/internal/trivia"
)

// Lexer turns source bytes into a token stream.
type Lexer struct {
	file string
	src string
	pool *trivia.Pool
	mode Mode
	sink *source.Sink

	pos int // current byte offset
	line int
	col int

	// pendingTrivia accumulates trivia runs between two significant
	// tokens so the attachment rule (leading vs. trailing) can be
	// applied once the next significant token is known.
	pendingTrivia []token.Trivia

	// interpStack tracks nested "{" inside a string's interpolation
	// segments, so the scanner knows when "}" closes an interpolation
	// rather than some other brace.
	interpStack []rune
	// resumeString is set after a "}" that closed an interpolation
	// segment; the next Next() call resumes scanning string-literal
	// bytes instead of normal tokens.
	resumeString bool
}

// New creates a scanner over src. pool may be nil in Legacy mode (trivia
// is discarded and never interned).
func New(file, src string, mode Mode, pool *trivia.Pool, sink *source.Sink) *Lexer {
	return &Lexer{file: file, src: src, mode: mode, pool: pool, sink: sink, line: 1, col: 1}
}

// ScanAll scans the whole input and returns its significant tokens (with
// trivia attached, in CST mode) plus a trailing EOF token.
func (l *Lexer) ScanAll() []token.Token {
	var toks []token.Token
	for {
		t := l.Next()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			break
		}
	}
	return toks
}

func (l *Lexer) report(code source.Code, rng source.Range, msg string) {
	if l.sink == nil {
		return
	}
	_ = l.sink.Report(source.New(code, source.StageScanning, l.file, rng, msg))
}

func (l *Lexer) atEnd() bool { return l.pos >= len(l.src) }

func (l *Lexer) peekByte() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekByteAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) advance() byte {
	b := l.src[l.pos]
	l.pos++
	if b == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return b
}

// Next scans and returns the next significant token, consuming and
// attaching any intervening trivia per mode. Both ScanAll and a parser
// driving the lexer incrementally call this; interpolation resume
// (after a "}" that closed an interpolation segment) is handled
// automatically via resumeString, so callers never need to special-case
// string segments themselves.
func (l *Lexer) Next() token.Token {
	if l.resumeString {
		l.resumeString = false
		return l.scanStringBody(l.pos, l.line, l.col, false)
	}
	leading := l.scanTriviaRun()
	if l.atEnd() {
		eof := token.Token{Kind: token.EOF, Start: l.pos, End: l.pos, Line: l.line, Column: l.col}
		if l.mode == CST {
			eof.Leading = leading
		}
		return eof
	}

	start := l.pos
	line, col := l.line, l.col
	ch := l.peekByte()

	var tok token.Token
	switch {
	case isIdentStart(ch):
		tok = l.scanIdent(start, line, col)
	case isDigit(ch):
		tok = l.scanNumber(start, line, col)
	case ch == '"':
		tok = l.scanStringStart(start, line, col)
	case len(l.interpStack) > 0 && ch == '}' && l.interpStack[len(l.interpStack)-1] == '{':
		l.advance()
		l.interpStack = l.interpStack[:len(l.interpStack)-1]
		l.resumeString = true
		tok = l.makeTok(token.RBRACE, start, line, col)
	default:
		tok = l.scanOperator(start, line, col)
		if n := len(l.interpStack); n > 0 {
			// an ordinary brace pair nested inside an interpolation
			if tok.Kind == token.LBRACE {
				l.interpStack = append(l.interpStack, 'b')
			} else if tok.Kind == token.RBRACE && l.interpStack[n-1] == 'b' {
				l.interpStack = l.interpStack[:n-1]
			}
		}
	}

	if l.resumeString {
		// the bytes after an interpolation's "}" belong to the string
		// literal, so none of them is consumed as trivia here.
		if l.mode == CST {
			tok.Leading = leading
		}
		return tok
	}
	if l.mode == CST {
		tok.Leading = leading
		tok.Trailing = l.scanTrailingOnSameLine()
	} else {
		// still consume (and discard) trivia up to the next token so
		// position tracking stays correct; attachment is irrelevant.
		l.discardTrivia()
	}
	return tok
}

// scanTriviaRun consumes every trivia token up to the next significant
// byte and splits the run into this call's "leading" trivia (everything
// that belongs to the upcoming token) vs. what was appended as trailing
// to the previous token by scanTrailingOnSameLine. In Legacy mode this is
// only used to skip whitespace; callers discard the result.
func (l *Lexer) scanTriviaRun() []token.Trivia {
	var run []token.Trivia
	for {
		t, ok := l.scanOneTrivia()
		if !ok {
			break
		}
		run = append(run, t)
	}
	return run
}

// scanTrailingOnSameLine consumes trivia immediately after a token up to
// and including the first newline (or EOF), attaching it as trailing;
// any remaining trivia in that run becomes leading trivia of the *next*
// token via scanTriviaRun. This implements attachment rule.
func (l *Lexer) scanTrailingOnSameLine() []token.Trivia {
	var trailing []token.Trivia
	for {
		t, ok := l.peekOneTrivia()
		if !ok {
			break
		}
		if l.mode == CST && l.pool != nil {
			t.Handle = l.pool.Intern(t.Kind, t.Text)
		}
		l.consumeOneTrivia(t)
		trailing = append(trailing, t)
		if t.Kind == token.Newline {
			return trailing
		}
	}
	return trailing
}

func (l *Lexer) discardTrivia() {
	for {
		_, ok := l.scanOneTrivia()
		if !ok {
			return
		}
	}
}

// peekOneTrivia recognizes (without consuming) one trivia run starting
// at the current position: whitespace, a newline, or a comment.
func (l *Lexer) peekOneTrivia() (token.Trivia, bool) {
	if l.atEnd() {
		return token.Trivia{}, false
	}
	ch := l.peekByte()
	start := l.pos
	line, col := l.line, l.col

	switch {
	case ch == '\n':
		return token.Trivia{Kind: token.Newline, Text: "\n", Start: start, End: start + 1, Line: line, Column: col}, true
	case ch == '\r' && l.peekByteAt(1) == '\n':
		return token.Trivia{Kind: token.Newline, Text: "\r\n", Start: start, End: start + 2, Line: line, Column: col}, true
	case ch == ' ' || ch == '\t' || ch == '\r':
		i := l.pos
		for i < len(l.src) && (l.src[i] == ' ' || l.src[i] == '\t') {
			i++
		}
		if i == l.pos {
			// lone '\r' not followed by '\n': treat as one whitespace byte
			i++
		}
		return token.Trivia{Kind: token.Whitespace, Text: l.src[start:i], Start: start, End: i, Line: line, Column: col}, true
	case ch == '/' && l.peekByteAt(1) == '/':
		i := l.pos
		for i < len(l.src) && l.src[i] != '\n' {
			i++
		}
		return token.Trivia{Kind: token.LineComment, Text: l.src[start:i], Start: start, End: i, Line: line, Column: col}, true
	case ch == '/' && l.peekByteAt(1) == '*':
		i := l.pos + 2
		closed := false
		for i < len(l.src)-1 {
			if l.src[i] == '*' && l.src[i+1] == '/' {
				i += 2
				closed = true
				break
			}
			i++
		}
		if !closed {
			i = len(l.src)
			l.report("E011", source.Range{Start: start, End: i}, "unterminated block comment")
			return token.Trivia{Kind: token.TriviaError, Text: l.src[start:i], Start: start, End: i, Line: line, Column: col}, true
		}
		return token.Trivia{Kind: token.BlockComment, Text: l.src[start:i], Start: start, End: i, Line: line, Column: col}, true
	default:
		return token.Trivia{}, false
	}
}

func (l *Lexer) consumeOneTrivia(t token.Trivia) {
	for l.pos < t.End {
		l.advance()
	}
}

func (l *Lexer) scanOneTrivia() (token.Trivia, bool) {
	t, ok := l.peekOneTrivia()
	if !ok {
		return t, false
	}
	l.consumeOneTrivia(t)
	if l.mode == CST && l.pool != nil {
		t.Handle = l.pool.Intern(t.Kind, t.Text)
	}
	return t, true
}

func (l *Lexer) makeTok(kind token.Kind, start, line, col int) token.Token {
	return token.Token{Kind: kind, Lexeme: l.src[start:l.pos], Start: start, End: l.pos, Line: line, Column: col}
}

func isIdentStart(ch byte) bool { return ch == '_' || unicode.IsLetter(rune(ch)) || ch >= utf8.RuneSelf }
func isIdentCont(ch byte) bool {
	return ch == '_' || unicode.IsLetter(rune(ch)) || unicode.IsDigit(rune(ch)) || ch >= utf8.RuneSelf
}
func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func (l *Lexer) scanIdent(start, line, col int) token.Token {
	for !l.atEnd() && isIdentCont(l.peekByte()) {
		l.advance()
	}
	lexeme := l.src[start:l.pos]
	if kw, ok := token.IsKeyword(lexeme); ok {
		return token.Token{Kind: kw, Lexeme: lexeme, Start: start, End: l.pos, Line: line, Column: col}
	}
	normalized := norm.NFC.String(lexeme)
	return token.Token{
		Kind: token.IDENT, Lexeme: lexeme, Value: normalized, HasValue: normalized != lexeme,
		Start: start, End: l.pos, Line: line, Column: col,
	}
}

func (l *Lexer) scanNumber(start, line, col int) token.Token {
	for !l.atEnd() && isDigit(l.peekByte()) {
		l.advance()
	}
	isFloat := false
	if l.peekByte() == '.' && isDigit(l.peekByteAt(1)) {
		isFloat = true
		l.advance()
		for !l.atEnd() && isDigit(l.peekByte()) {
			l.advance()
		}
	}
	if l.peekByte() == 'e' || l.peekByte() == 'E' {
		save := l.pos
		i := 1
		if l.peekByteAt(i) == '+' || l.peekByteAt(i) == '-' {
			i++
		}
		if isDigit(l.peekByteAt(i)) {
			isFloat = true
			for j := 0; j < i; j++ {
				l.advance()
			}
			for !l.atEnd() && isDigit(l.peekByte()) {
				l.advance()
			}
		} else {
			l.pos = save
		}
	}
	kind := token.INT
	if isFloat {
		kind = token.FLOAT
	}
	if !l.atEnd() && isIdentStart(l.peekByte()) {
		l.report("E013", source.Range{Start: start, End: l.pos + 1}, "invalid numeric literal")
	}
	return l.makeTok(kind, start, line, col)
}

// scanStringStart begins a string literal. Simple strings with no
// interpolation are returned as a single STRING token; strings
// containing "{expr}" segments instead emit STRING_START; the
// expression's tokens come from the following Next() calls, and the
// Next() call after the matching "}" resumes string-body scanning on its
// own via resumeString (parser/literals.go and parseStringInterp hold
// the interpolation grammar).
func (l *Lexer) scanStringStart(start, line, col int) token.Token {
	l.advance() // opening quote
	return l.scanStringBody(start, line, col, true)
}

// scanStringBody scans raw text plus escapes until it hits either the
// closing quote (STRING or STRING_END) or a "{" introducing an
// interpolation segment (STRING_START/STRING_SEGMENT).
func (l *Lexer) scanStringBody(start, line, col int, first bool) token.Token {
	var decoded strings.Builder
	hadInterp := false
	mk := func(kind token.Kind) token.Token {
		return token.Token{
			Kind: kind, Lexeme: l.src[start:l.pos], Value: decoded.String(), HasValue: true,
			Start: start, End: l.pos, Line: line, Column: col,
		}
	}
	for {
		if l.atEnd() {
			l.report("E010", source.Range{Start: start, End: l.pos}, "unterminated string literal")
			kind := token.STRING
			if hadInterp {
				kind = token.STRING_END
			}
			return mk(kind)
		}
		ch := l.peekByte()
		if ch == '"' {
			l.advance()
			kind := token.STRING
			if hadInterp || !first {
				kind = token.STRING_END
			}
			return mk(kind)
		}
		if ch == '{' {
			l.advance()
			l.interpStack = append(l.interpStack, '{')
			hadInterp = true
			kind := token.STRING_START
			if !first {
				kind = token.STRING_SEGMENT
			}
			return mk(kind)
		}
		if ch == '\\' {
			esc, ok := l.scanEscape()
			if !ok {
				l.report("E012", source.Range{Start: l.pos - 1, End: l.pos + 1}, "invalid escape sequence")
			}
			decoded.WriteString(esc)
			continue
		}
		decoded.WriteByte(ch)
		l.advance()
	}
}

func (l *Lexer) scanEscape() (string, bool) {
	l.advance() // backslash
	if l.atEnd() {
		return "", false
	}
	ch := l.advance()
	switch ch {
	case 'n':
		return "\n", true
	case 't':
		return "\t", true
	case '\\':
		return "\\", true
	case '"':
		return "\"", true
	case '{':
		return "{", true
	default:
		return string(ch), false
	}
}


var operators = []struct {
	text string
	kind token.Kind
}{
	{"?else", token.QUESTION_ELSE},
	{"**", token.POW}, {"==", token.EQ}, {"!=", token.NEQ},
	{"<=", token.LE}, {">=", token.GE}, {"+=", token.PLUS_ASSIGN}, {"-=", token.MINUS_ASSIGN},
	{"::", token.COLONCOLON}, {"..", token.DOTDOT}, {"->", token.ARROW}, {"=>", token.FATARROW},
	{"+", token.PLUS}, {"-", token.MINUS}, {"*", token.STAR}, {"/", token.SLASH}, {"%", token.PERCENT},
	{"<", token.LT}, {">", token.GT}, {"=", token.ASSIGN}, {"?", token.QUESTION},
	{"{", token.LBRACE}, {"}", token.RBRACE}, {"(", token.LPAREN}, {")", token.RPAREN},
	{"[", token.LBRACKET}, {"]", token.RBRACKET}, {",", token.COMMA}, {";", token.SEMI},
	{":", token.COLON}, {".", token.DOT}, {"|", token.PIPE},
}

func (l *Lexer) scanOperator(start, line, col int) token.Token {
	rest := l.src[l.pos:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op.text) {
			for range op.text {
				l.advance()
			}
			return l.makeTok(op.kind, start, line, col)
		}
	}
	l.report("E001", source.Range{Start: start, End: start + 1}, "unknown character")
	l.advance()
	return l.makeTok(token.ILLEGAL, start, line, col)
}
