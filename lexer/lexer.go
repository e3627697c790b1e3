package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lucas-veyrier/magolor/diag"
	"github.com/lucas-veyrier/magolor/location"
	"github.com/lucas-veyrier/magolor/token"
)

// Lexer tokenizes a single Magolor source unit.
//
// A Lexer is single-use: construct one with New, call Tokenize once, and
// discard it. It never returns a Go error; lexical problems are written to
// the supplied diag.Collector as diagnostics and surfaced to the caller as
// Illegal tokens so the parser can continue past them.
type Lexer struct {
	src    []byte
	source location.SourceID
	coll   *diag.Collector
	pos    int
	line   int
	col    int
}

// New creates a Lexer over src, attributing diagnostics and spans to
// sourceID via coll.
func New(sourceID location.SourceID, src []byte, coll *diag.Collector) *Lexer {
	return &Lexer{
		src:    src,
		source: sourceID,
		coll:   coll,
		pos:    0,
		line:   1,
		col:    1,
	}
}

// Tokenize scans the whole source and returns its token stream, always
// terminated by a single EOF token. Lex errors are recorded on the
// collector passed to New and do not stop scanning.
func (l *Lexer) Tokenize() []token.Token {
	var toks []token.Token
	for {
		l.skipWhitespaceAndComments()
		if l.atEOF() {
			break
		}

		startLine, startCol, startByte := l.line, l.col, l.pos
		r := l.peekRune()

		switch {
		case r == '"':
			toks = append(toks, l.lexString(false))
		case r == '$' && l.peekByteAt(1) == '"':
			l.advance() // consume '$'
			toks = append(toks, l.lexString(true))
		case r == '@' && l.matchesRawBlockKeyword():
			toks = append(toks, l.lexRawBlock())
		case unicode.IsDigit(r):
			toks = append(toks, l.lexNumber())
		case isIdentStart(r):
			toks = append(toks, l.lexIdentifier())
		default:
			if tok, ok := l.lexOperator(); ok {
				toks = append(toks, tok)
			} else {
				l.advance()
				l.errorf(diag.E1002, startLine, startCol, startByte, l.pos,
					"unknown character %q", r)
				toks = append(toks, token.Token{
					Kind:   token.Illegal,
					Lexeme: string(r),
					Span:   l.spanFrom(startLine, startCol, startByte),
				})
			}
		}
	}

	toks = append(toks, token.Token{
		Kind: token.EOF,
		Span: l.spanFrom(l.line, l.col, l.pos),
	})
	return toks
}

// --- low-level scanning primitives ---

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.src)
}

// peekByteAt returns the byte offset bytes ahead of pos, or 0 past EOF.
func (l *Lexer) peekByteAt(offset int) byte {
	idx := l.pos + offset
	if idx < 0 || idx >= len(l.src) {
		return 0
	}
	return l.src[idx]
}

// peekRune decodes the rune at pos without advancing. Returns 0 at EOF and
// utf8.RuneError on invalid encoding.
func (l *Lexer) peekRune() rune {
	if l.atEOF() {
		return 0
	}
	r, _ := utf8.DecodeRune(l.src[l.pos:])
	return r
}

// advance consumes and returns the rune at pos, updating line/column
// bookkeeping. Advancing across '\n' increments line and resets column to 1.
func (l *Lexer) advance() rune {
	if l.atEOF() {
		return 0
	}
	r, size := utf8.DecodeRune(l.src[l.pos:])
	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) spanFrom(startLine, startCol, startByte int) location.Span {
	return location.RangeWithBytes(l.source, startLine, startCol, startByte, l.line, l.col, l.pos)
}

func (l *Lexer) errorf(code diag.Code, startLine, startCol, startByte, endByte int, format string, args ...any) {
	span := location.RangeWithBytes(l.source, startLine, startCol, startByte, l.line, l.col, endByte)
	l.coll.Collect(diag.NewIssue(diag.Error, code, fmt.Sprintf(format, args...)).WithSpan(span).Build())
}

func (l *Lexer) skipWhitespaceAndComments() {
	for !l.atEOF() {
		r := l.peekRune()
		switch {
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			l.advance()
		case r == '/' && l.peekByteAt(1) == '/':
			for !l.atEOF() && l.peekRune() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentContinue(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func (l *Lexer) lexIdentifier() token.Token {
	startLine, startCol, startByte := l.line, l.col, l.pos
	var sb strings.Builder
	for !l.atEOF() && isIdentContinue(l.peekRune()) {
		sb.WriteRune(l.advance())
	}
	text := sb.String()
	kind, ok := token.Keywords[text]
	if !ok {
		kind = token.Ident
	}
	return token.Token{Kind: kind, Lexeme: text, Span: l.spanFrom(startLine, startCol, startByte)}
}

// lexNumber consumes an integer or float literal. It promotes to a float
// literal on the first '.' that is followed by a digit; a trailing '.' not
// followed by a digit (e.g. method-call-on-literal edge cases) is left for
// the parser to treat as a separate Dot token. Overflow is not diagnosed
// here; the parser reports out-of-range literals when it converts them.
func (l *Lexer) lexNumber() token.Token {
	startLine, startCol, startByte := l.line, l.col, l.pos
	var sb strings.Builder
	isFloat := false

	for !l.atEOF() && unicode.IsDigit(l.peekRune()) {
		sb.WriteRune(l.advance())
	}
	if !l.atEOF() && l.peekRune() == '.' && unicode.IsDigit(rune(l.peekByteAt(1))) {
		isFloat = true
		sb.WriteRune(l.advance()) // '.'
		for !l.atEOF() && unicode.IsDigit(l.peekRune()) {
			sb.WriteRune(l.advance())
		}
	}

	// A letter immediately following a numeric literal (e.g. "12abc") is a
	// malformed literal: consume it so the error covers the whole token
	// instead of desyncing the next identifier scan.
	if !l.atEOF() && isIdentStart(l.peekRune()) {
		for !l.atEOF() && isIdentContinue(l.peekRune()) {
			sb.WriteRune(l.advance())
		}
		l.errorf(diag.E1003, startLine, startCol, startByte, l.pos,
			"malformed numeric literal %q", sb.String())
		return token.Token{Kind: token.Illegal, Lexeme: sb.String(), Span: l.spanFrom(startLine, startCol, startByte)}
	}

	kind := token.IntLit
	if isFloat {
		kind = token.FloatLit
	}
	return token.Token{Kind: kind, Lexeme: sb.String(), Span: l.spanFrom(startLine, startCol, startByte)}
}

// lexString consumes a string literal body, starting after any leading '$'.
// When interpolated is true, '{name}' placeholders are left untouched in
// the token's Lexeme for the parser to split out; escape sequences are
// still processed outside of placeholder bodies.
func (l *Lexer) lexString(interpolated bool) token.Token {
	startLine, startCol, startByte := l.line, l.col, l.pos
	l.advance() // opening quote

	var sb strings.Builder
	closed := false
	for !l.atEOF() {
		r := l.peekRune()
		if r == '"' {
			l.advance()
			closed = true
			break
		}
		if r == '\n' {
			break // unterminated: don't let a string span multiple lines
		}
		if r == '\\' {
			l.advance()
			esc := l.advance()
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			default:
				sb.WriteRune(esc)
			}
			continue
		}
		if interpolated && r == '{' {
			sb.WriteRune(l.advance())
			for !l.atEOF() && l.peekRune() != '}' && l.peekRune() != '\n' {
				sb.WriteRune(l.advance())
			}
			if !l.atEOF() && l.peekRune() == '}' {
				sb.WriteRune(l.advance())
			}
			continue
		}
		sb.WriteRune(l.advance())
	}

	if !closed {
		l.errorf(diag.E1001, startLine, startCol, startByte, l.pos, "unterminated string literal")
		kind := token.StringLit
		if interpolated {
			kind = token.InterpolatedStringLit
		}
		return token.Token{Kind: kind, Lexeme: sb.String(), Span: l.spanFrom(startLine, startCol, startByte)}
	}

	kind := token.StringLit
	if interpolated {
		kind = token.InterpolatedStringLit
	}
	return token.Token{Kind: kind, Lexeme: sb.String(), Span: l.spanFrom(startLine, startCol, startByte)}
}

// matchesRawBlockKeyword reports whether the upcoming text is "@cpp" (not
// consuming it). Any other '@' is lexed by lexOperator as a plain At
// token — "cpp" is the only raw target keyword the grammar defines.
func (l *Lexer) matchesRawBlockKeyword() bool {
	const kw = "cpp"
	for i := 0; i < len(kw); i++ {
		if l.peekByteAt(1+i) != kw[i] {
			return false
		}
	}
	return true
}

// lexRawBlock consumes "@cpp{ ... }", tracking brace nesting so that target
// braces inside the block don't prematurely close it.
func (l *Lexer) lexRawBlock() token.Token {
	startLine, startCol, startByte := l.line, l.col, l.pos
	l.advance() // '@'
	for i := 0; i < 3; i++ {
		l.advance() // "cpp"
	}
	l.skipWhitespaceAndComments()
	if l.atEOF() || l.peekRune() != '{' {
		l.errorf(diag.E1004, startLine, startCol, startByte, l.pos, "expected '{' after @cpp")
		return token.Token{Kind: token.Illegal, Span: l.spanFrom(startLine, startCol, startByte)}
	}
	l.advance() // opening '{'

	var sb strings.Builder
	depth := 1
	for !l.atEOF() && depth > 0 {
		r := l.peekRune()
		switch r {
		case '{':
			depth++
			sb.WriteRune(l.advance())
		case '}':
			depth--
			if depth == 0 {
				l.advance()
				continue
			}
			sb.WriteRune(l.advance())
		default:
			sb.WriteRune(l.advance())
		}
	}

	if depth != 0 {
		l.errorf(diag.E1004, startLine, startCol, startByte, l.pos, "unterminated @cpp block")
	}

	return token.Token{Kind: token.RawBlock, Lexeme: sb.String(), Span: l.spanFrom(startLine, startCol, startByte)}
}

// lexOperator attempts to scan a single- or multi-character operator or
// punctuation token via greedy longest-match.
func (l *Lexer) lexOperator() (token.Token, bool) {
	startLine, startCol, startByte := l.line, l.col, l.pos
	r := l.peekRune()

	two := func(second rune, k2 token.Kind, k1 token.Kind) token.Token {
		l.advance()
		kind := k1
		lex := string(r)
		if !l.atEOF() && l.peekRune() == second {
			l.advance()
			kind = k2
			lex = string(r) + string(second)
		}
		return token.Token{Kind: kind, Lexeme: lex, Span: l.spanFrom(startLine, startCol, startByte)}
	}

	switch r {
	case '+':
		l.advance()
		return token.Token{Kind: token.Plus, Lexeme: "+", Span: l.spanFrom(startLine, startCol, startByte)}, true
	case '-':
		l.advance()
		kind, lex := token.Minus, "-"
		if !l.atEOF() && l.peekRune() == '>' {
			l.advance()
			kind, lex = token.Arrow, "->"
		}
		return token.Token{Kind: kind, Lexeme: lex, Span: l.spanFrom(startLine, startCol, startByte)}, true
	case '*':
		l.advance()
		return token.Token{Kind: token.Star, Lexeme: "*", Span: l.spanFrom(startLine, startCol, startByte)}, true
	case '/':
		l.advance()
		return token.Token{Kind: token.Slash, Lexeme: "/", Span: l.spanFrom(startLine, startCol, startByte)}, true
	case '%':
		l.advance()
		return token.Token{Kind: token.Percent, Lexeme: "%", Span: l.spanFrom(startLine, startCol, startByte)}, true
	case '=':
		l.advance()
		if !l.atEOF() && l.peekRune() == '=' {
			l.advance()
			return token.Token{Kind: token.Eq, Lexeme: "==", Span: l.spanFrom(startLine, startCol, startByte)}, true
		}
		if !l.atEOF() && l.peekRune() == '>' {
			l.advance()
			return token.Token{Kind: token.FatArrow, Lexeme: "=>", Span: l.spanFrom(startLine, startCol, startByte)}, true
		}
		return token.Token{Kind: token.Assign, Lexeme: "=", Span: l.spanFrom(startLine, startCol, startByte)}, true
	case '!':
		return two('=', token.Ne, token.Not), true
	case '<':
		return two('=', token.Le, token.Lt), true
	case '>':
		return two('=', token.Ge, token.Gt), true
	case ':':
		l.advance()
		if !l.atEOF() && l.peekRune() == ':' {
			l.advance()
			return token.Token{Kind: token.DoubleColon, Lexeme: "::", Span: l.spanFrom(startLine, startCol, startByte)}, true
		}
		return token.Token{Kind: token.Colon, Lexeme: ":", Span: l.spanFrom(startLine, startCol, startByte)}, true
	case '&':
		if l.peekByteAt(1) == '&' {
			l.advance()
			l.advance()
			return token.Token{Kind: token.And, Lexeme: "&&", Span: l.spanFrom(startLine, startCol, startByte)}, true
		}
		return token.Token{}, false
	case '|':
		if l.peekByteAt(1) == '|' {
			l.advance()
			l.advance()
			return token.Token{Kind: token.Or, Lexeme: "||", Span: l.spanFrom(startLine, startCol, startByte)}, true
		}
		return token.Token{}, false
	case '.':
		l.advance()
		return token.Token{Kind: token.Dot, Lexeme: ".", Span: l.spanFrom(startLine, startCol, startByte)}, true
	case '(':
		l.advance()
		return token.Token{Kind: token.LParen, Lexeme: "(", Span: l.spanFrom(startLine, startCol, startByte)}, true
	case ')':
		l.advance()
		return token.Token{Kind: token.RParen, Lexeme: ")", Span: l.spanFrom(startLine, startCol, startByte)}, true
	case '{':
		l.advance()
		return token.Token{Kind: token.LBrace, Lexeme: "{", Span: l.spanFrom(startLine, startCol, startByte)}, true
	case '}':
		l.advance()
		return token.Token{Kind: token.RBrace, Lexeme: "}", Span: l.spanFrom(startLine, startCol, startByte)}, true
	case '[':
		l.advance()
		return token.Token{Kind: token.LBracket, Lexeme: "[", Span: l.spanFrom(startLine, startCol, startByte)}, true
	case ']':
		l.advance()
		return token.Token{Kind: token.RBracket, Lexeme: "]", Span: l.spanFrom(startLine, startCol, startByte)}, true
	case ',':
		l.advance()
		return token.Token{Kind: token.Comma, Lexeme: ",", Span: l.spanFrom(startLine, startCol, startByte)}, true
	case ';':
		l.advance()
		return token.Token{Kind: token.Semicolon, Lexeme: ";", Span: l.spanFrom(startLine, startCol, startByte)}, true
	case '$':
		l.advance()
		return token.Token{Kind: token.Dollar, Lexeme: "$", Span: l.spanFrom(startLine, startCol, startByte)}, true
	case '@':
		l.advance()
		return token.Token{Kind: token.At, Lexeme: "@", Span: l.spanFrom(startLine, startCol, startByte)}, true
	default:
		return token.Token{}, false
	}
}
