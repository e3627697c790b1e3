package parser

import (
	"fmt"
	"strconv"

	"github.com/lucas-veyrier/magolor/ast"
	"github.com/lucas-veyrier/magolor/diag"
	"github.com/lucas-veyrier/magolor/lexer"
	"github.com/lucas-veyrier/magolor/location"
	"github.com/lucas-veyrier/magolor/token"
	"github.com/lucas-veyrier/magolor/types"
)

// Parser consumes a token stream and produces a best-effort AST.
//
// The parser never fails outright: on a mismatched token it records a
// diagnostic on the collector, inserts a synthetic node, and continues. A
// desynchronized site is recovered by skipping to the next statement
// boundary (see synchronize). The resulting Program is always usable by
// the checker and the language server, even in the presence of errors.
type Parser struct {
	toks []token.Token
	pos  int
	coll *diag.Collector
}

// Parse tokenizes src and parses it into a Program, recording all lexical
// and syntactic diagnostics on coll.
func Parse(sourceID location.SourceID, src []byte, coll *diag.Collector) *ast.Program {
	toks := lexer.New(sourceID, src, coll).Tokenize()
	return New(toks, coll).ParseProgram()
}

// New creates a Parser over a token stream. The stream must be terminated
// by an EOF token (as produced by lexer.Tokenize).
func New(toks []token.Token, coll *diag.Collector) *Parser {
	if len(toks) == 0 {
		panic("parser.New: empty token stream (missing EOF token)")
	}
	return &Parser{toks: toks, coll: coll}
}

// --- token stream primitives ---

func (p *Parser) peek() token.Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(offset int) token.Token {
	idx := p.pos + offset
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[idx]
}

func (p *Parser) prev() token.Token {
	if p.pos == 0 {
		return p.toks[0]
	}
	return p.toks[p.pos-1]
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) atEOF() bool {
	return p.check(token.EOF)
}

func (p *Parser) match(kind token.Kind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

// expect consumes and returns the next token when it has the wanted kind.
// Otherwise it records a diagnostic at the offending token and returns it
// without consuming, so the caller's production can continue.
func (p *Parser) expect(kind token.Kind, code diag.Code, msg string) token.Token {
	if p.check(kind) {
		return p.advance()
	}
	p.errorAt(code, p.peek(), "%s", msg)
	return p.peek()
}

func (p *Parser) errorAt(code diag.Code, tok token.Token, format string, args ...any) {
	p.coll.Collect(diag.NewIssue(diag.Error, code, fmt.Sprintf(format, args...)).
		WithSpan(tok.Span).
		Build())
}

// spanFrom extends start to the end of the most recently consumed token.
func (p *Parser) spanFrom(start location.Span) location.Span {
	end := p.prev().Span.End
	if !end.IsKnown() || end.Before(start.Start) {
		return start
	}
	return location.Span{Source: start.Source, Start: start.Start, End: end}
}

// synchronize skips tokens until the next statement boundary: just past a
// semicolon, or at a token that can begin a statement or declaration. It
// bounds the damage of a badly desynchronized parse so later errors are
// still surfaced.
func (p *Parser) synchronize() {
	for !p.atEOF() {
		if p.prev().Kind == token.Semicolon {
			return
		}
		switch p.peek().Kind {
		case token.Class, token.Function, token.Using, token.Cimport,
			token.Let, token.Return, token.If, token.While, token.For,
			token.Match, token.RBrace:
			return
		}
		p.advance()
	}
}

// --- declarations ---

// ParseProgram parses the whole compilation unit.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.atEOF() {
		switch p.peek().Kind {
		case token.Using:
			prog.Usings = append(prog.Usings, p.parseUsing())
		case token.Cimport:
			prog.CImports = append(prog.CImports, p.parseCImport())
		case token.Class, token.Function, token.Public, token.Private:
			p.parseTopDecl(prog)
		default:
			p.errorAt(diag.E1101, p.peek(), "unexpected token %s at top level", p.peek().Kind)
			p.advance()
			p.synchronize()
		}
	}
	return prog
}

// parseTopDecl parses a class or function with an optional visibility
// modifier. Top-level declarations default to public.
func (p *Parser) parseTopDecl(prog *ast.Program) {
	public := true
	switch {
	case p.match(token.Public):
	case p.match(token.Private):
		public = false
	}

	switch p.peek().Kind {
	case token.Class:
		cls := p.parseClass()
		cls.Public = public
		prog.Classes = append(prog.Classes, cls)
	case token.Function:
		fn := p.parseFunction()
		fn.Public = public
		prog.Functions = append(prog.Functions, fn)
	default:
		p.errorAt(diag.E1103, p.peek(), "expected 'class' or 'fn' after visibility modifier")
		p.synchronize()
	}
}

func (p *Parser) parseUsing() ast.UsingDecl {
	start := p.expect(token.Using, diag.E1103, "expected 'using'").Span
	decl := ast.UsingDecl{}
	ident := p.expect(token.Ident, diag.E1103, "expected module name after 'using'")
	if ident.Kind == token.Ident {
		decl.Path = append(decl.Path, ident.Lexeme)
		decl.PathSpan = ident.Span
	}
	for p.match(token.Dot) {
		seg := p.expect(token.Ident, diag.E1103, "expected module name segment after '.'")
		if seg.Kind != token.Ident {
			break
		}
		decl.Path = append(decl.Path, seg.Lexeme)
		decl.PathSpan = location.Span{Source: decl.PathSpan.Source, Start: decl.PathSpan.Start, End: seg.Span.End}
	}
	p.expect(token.Semicolon, diag.E1102, "expected ';' after using declaration")
	decl.Span = p.spanFrom(start)
	return decl
}

func (p *Parser) parseCImport() ast.CImportDecl {
	start := p.expect(token.Cimport, diag.E1103, "expected 'cimport'").Span
	decl := ast.CImportDecl{}
	switch {
	case p.check(token.StringLit):
		decl.Header = p.advance().Lexeme
	case p.match(token.Lt):
		// System header: cimport <stdio.h>;
		decl.System = true
		name := p.expect(token.Ident, diag.E1103, "expected header name after '<'")
		decl.Header = name.Lexeme
		if p.match(token.Dot) {
			ext := p.expect(token.Ident, diag.E1103, "expected header extension after '.'")
			decl.Header += "." + ext.Lexeme
		}
		p.expect(token.Gt, diag.E1102, "expected '>' after system header name")
	default:
		p.errorAt(diag.E1103, p.peek(), "expected header name in quotes or angle brackets after 'cimport'")
	}
	p.expect(token.Semicolon, diag.E1102, "expected ';' after cimport declaration")
	decl.Span = p.spanFrom(start)
	return decl
}

func (p *Parser) parseClass() ast.ClassDecl {
	start := p.expect(token.Class, diag.E1103, "expected 'class'").Span
	cls := ast.ClassDecl{}
	name := p.expect(token.Ident, diag.E1103, "expected class name")
	cls.Name = name.Lexeme
	cls.NameSpan = name.Span

	if p.match(token.Colon) {
		parent := p.expect(token.Ident, diag.E1103, "expected parent class name after ':'")
		cls.Parent = parent.Lexeme
	}

	p.expect(token.LBrace, diag.E1102, "expected '{' after class name")
	for !p.check(token.RBrace) && !p.atEOF() {
		before := p.pos
		// Class members default to private.
		public := false
		static := false
		for {
			if p.match(token.Public) {
				public = true
				continue
			}
			if p.match(token.Private) {
				public = false
				continue
			}
			if p.match(token.Static) {
				static = true
				continue
			}
			break
		}

		if p.check(token.Function) {
			m := p.parseFunction()
			m.Public = public
			m.Static = static
			cls.Methods = append(cls.Methods, m)
			continue
		}

		fieldName := p.expect(token.Ident, diag.E1103, "expected field name or method declaration")
		if fieldName.Kind != token.Ident {
			if p.pos == before {
				p.advance()
			}
			p.synchronize()
			p.match(token.Semicolon)
			continue
		}
		f := ast.Field{Name: fieldName.Lexeme, NameSpan: fieldName.Span, Public: public}
		p.expect(token.Colon, diag.E1103, "expected ':' after field name")
		f.Type = p.parseType()
		p.expect(token.Semicolon, diag.E1102, "expected ';' after field declaration")
		f.Span = p.spanFrom(fieldName.Span)
		cls.Fields = append(cls.Fields, f)
	}
	p.expect(token.RBrace, diag.E1102, "expected '}' at end of class body")
	cls.Span = p.spanFrom(start)
	return cls
}

func (p *Parser) parseFunction() ast.FnDecl {
	start := p.expect(token.Function, diag.E1103, "expected 'fn'").Span
	fn := ast.FnDecl{}
	name := p.expect(token.Ident, diag.E1103, "expected function name")
	fn.Name = name.Lexeme
	fn.NameSpan = name.Span

	p.expect(token.LParen, diag.E1102, "expected '(' after function name")
	fn.Params = p.parseParams()
	p.expect(token.RParen, diag.E1102, "expected ')' after parameters")

	if p.match(token.Arrow) {
		fn.ReturnType = p.parseType()
	} else {
		fn.ReturnType = types.TVoid
	}

	fn.Body = p.parseBlockStmts()
	fn.Span = p.spanFrom(start)
	return fn
}

func (p *Parser) parseParams() []ast.Param {
	var params []ast.Param
	if p.check(token.RParen) {
		return params
	}
	for {
		name := p.expect(token.Ident, diag.E1103, "expected parameter name")
		if name.Kind != token.Ident {
			return params
		}
		p.expect(token.Colon, diag.E1103, "expected ':' after parameter name")
		typ := p.parseType()
		params = append(params, ast.Param{Name: name.Lexeme, Type: typ, Span: p.spanFrom(name.Span)})
		if !p.match(token.Comma) {
			return params
		}
	}
}

// --- types ---

// parseType parses a type annotation. Unknown identifiers parse as
// Class{name}; the checker resolves or rejects them later.
func (p *Parser) parseType() types.Type {
	if p.check(token.Function) {
		return p.parseFunctionType()
	}

	tok := p.advance()
	switch tok.Kind {
	case token.IntType:
		return types.TInt
	case token.FloatType:
		return types.TFloat
	case token.BoolType:
		return types.TBool
	case token.StringType:
		return types.TString
	case token.VoidType:
		return types.TVoid
	case token.Ident:
		// Option<T> and Array<T> are the two built-in parametric shapes;
		// every other identifier is a class reference.
		if (tok.Lexeme == "Option" || tok.Lexeme == "Array") && p.match(token.Lt) {
			inner := p.parseType()
			p.expect(token.Gt, diag.E1102, "expected '>' to close type argument")
			if tok.Lexeme == "Option" {
				return types.NewOption(inner)
			}
			return types.NewArray(inner)
		}
		return types.NewClass(tok.Lexeme)
	default:
		p.errorAt(diag.E1101, tok, "expected a type, found %s", tok.Kind)
		return types.TError
	}
}

func (p *Parser) parseFunctionType() types.Type {
	p.expect(token.Function, diag.E1103, "expected 'fn'")
	p.expect(token.LParen, diag.E1102, "expected '(' in function type")
	var params []types.Type
	if !p.check(token.RParen) {
		params = append(params, p.parseType())
		for p.match(token.Comma) {
			params = append(params, p.parseType())
		}
	}
	p.expect(token.RParen, diag.E1102, "expected ')' in function type")
	p.expect(token.Arrow, diag.E1103, "expected '->' in function type")
	ret := p.parseType()
	return types.NewFunction(params, ret)
}

// --- statements ---

func (p *Parser) parseBlockStmts() []ast.Stmt {
	p.expect(token.LBrace, diag.E1102, "expected '{'")
	var stmts []ast.Stmt
	for !p.check(token.RBrace) && !p.atEOF() {
		before := p.pos
		stmts = append(stmts, p.parseStmt())
		if p.pos == before {
			// The statement parser consumed nothing; force progress so a
			// malformed token cannot loop forever.
			p.advance()
			p.synchronize()
		}
	}
	p.expect(token.RBrace, diag.E1102, "expected '}'")
	return stmts
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.peek().Kind {
	case token.Let:
		return p.parseLet()
	case token.Return:
		return p.parseReturn()
	case token.If:
		return p.parseIf()
	case token.While:
		return p.parseWhile()
	case token.For:
		return p.parseFor()
	case token.Match:
		return p.parseMatch()
	case token.LBrace:
		start := p.peek().Span
		blk := &ast.Block{Stmts: p.parseBlockStmts()}
		blk.SetSpan(p.spanFrom(start))
		return blk
	case token.RawBlock:
		tok := p.advance()
		raw := &ast.Raw{Code: tok.Lexeme}
		raw.SetSpan(tok.Span)
		return raw
	default:
		start := p.peek().Span
		stmt := &ast.ExprStmt{X: p.parseExpr()}
		p.expect(token.Semicolon, diag.E1102, "expected ';' after expression")
		stmt.SetSpan(p.spanFrom(start))
		return stmt
	}
}

func (p *Parser) parseLet() ast.Stmt {
	start := p.expect(token.Let, diag.E1103, "expected 'let'").Span
	stmt := &ast.Let{}
	stmt.Mutable = p.match(token.Mut)
	name := p.expect(token.Ident, diag.E1103, "expected variable name after 'let'")
	stmt.Name = name.Lexeme
	stmt.NameSpan = name.Span
	if p.match(token.Colon) {
		stmt.Type = p.parseType()
	}
	p.expect(token.Assign, diag.E1103, "expected '=' in let statement")
	stmt.Init = p.parseExpr()
	p.expect(token.Semicolon, diag.E1102, "expected ';' after let statement")
	stmt.SetSpan(p.spanFrom(start))
	return stmt
}

func (p *Parser) parseReturn() ast.Stmt {
	start := p.expect(token.Return, diag.E1103, "expected 'return'").Span
	stmt := &ast.Return{}
	if !p.check(token.Semicolon) {
		stmt.Value = p.parseExpr()
	}
	p.expect(token.Semicolon, diag.E1102, "expected ';' after return statement")
	stmt.SetSpan(p.spanFrom(start))
	return stmt
}

func (p *Parser) parseIf() ast.Stmt {
	start := p.expect(token.If, diag.E1103, "expected 'if'").Span
	stmt := &ast.If{}
	p.expect(token.LParen, diag.E1102, "expected '(' after 'if'")
	stmt.Cond = p.parseExpr()
	p.expect(token.RParen, diag.E1102, "expected ')' after if condition")
	stmt.Then = p.parseBlockStmts()
	if p.match(token.Else) {
		if p.check(token.If) {
			// else-if chains nest: the else body is a single if statement.
			stmt.Else = []ast.Stmt{p.parseIf()}
		} else {
			stmt.Else = p.parseBlockStmts()
			if stmt.Else == nil {
				// An explicit empty `else {}` stays non-nil so it is kept apart
				// from an if with no else.
				stmt.Else = []ast.Stmt{}
			}
		}
	}
	stmt.SetSpan(p.spanFrom(start))
	return stmt
}

func (p *Parser) parseWhile() ast.Stmt {
	start := p.expect(token.While, diag.E1103, "expected 'while'").Span
	stmt := &ast.While{}
	p.expect(token.LParen, diag.E1102, "expected '(' after 'while'")
	stmt.Cond = p.parseExpr()
	p.expect(token.RParen, diag.E1102, "expected ')' after while condition")
	stmt.Body = p.parseBlockStmts()
	stmt.SetSpan(p.spanFrom(start))
	return stmt
}

func (p *Parser) parseFor() ast.Stmt {
	start := p.expect(token.For, diag.E1103, "expected 'for'").Span
	stmt := &ast.For{}
	p.expect(token.LParen, diag.E1102, "expected '(' after 'for'")
	name := p.expect(token.Ident, diag.E1103, "expected loop variable name")
	stmt.Var = name.Lexeme
	stmt.VarSpan = name.Span
	in := p.expect(token.Ident, diag.E1103, "expected 'in' after loop variable")
	if in.Kind == token.Ident && in.Lexeme != "in" {
		p.coll.Collect(diag.NewIssue(diag.Error, diag.E1101, fmt.Sprintf("expected 'in', found %q", in.Lexeme)).
			WithSpan(in.Span).
			WithHint("use 'for (x in array)' syntax").
			Build())
	}
	stmt.Iterable = p.parseExpr()
	p.expect(token.RParen, diag.E1102, "expected ')' after for header")
	stmt.Body = p.parseBlockStmts()
	stmt.SetSpan(p.spanFrom(start))
	return stmt
}

func (p *Parser) parseMatch() ast.Stmt {
	start := p.expect(token.Match, diag.E1103, "expected 'match'").Span
	stmt := &ast.Match{}
	stmt.Scrutinee = p.parseExpr()
	p.expect(token.LBrace, diag.E1102, "expected '{' after match expression")

	for !p.check(token.RBrace) && !p.atEOF() {
		before := p.pos
		stmt.Arms = append(stmt.Arms, p.parseMatchArm())
		if p.pos == before {
			p.advance()
			p.synchronize()
		}
	}
	p.expect(token.RBrace, diag.E1102, "expected '}' at end of match")
	stmt.SetSpan(p.spanFrom(start))
	return stmt
}

func (p *Parser) parseMatchArm() ast.MatchArm {
	armStart := p.peek().Span
	arm := ast.MatchArm{}

	switch {
	case p.match(token.Some):
		arm.Pattern = "Some"
	case p.match(token.None):
		arm.Pattern = "None"
	case p.check(token.Ident):
		arm.Pattern = p.advance().Lexeme
	default:
		p.errorAt(diag.E1104, p.peek(), "expected match pattern, found %s", p.peek().Kind)
	}

	if p.match(token.LParen) {
		binder := p.expect(token.Ident, diag.E1104, "expected binding variable name")
		arm.Binder = binder.Lexeme
		arm.BinderSpan = binder.Span
		p.expect(token.RParen, diag.E1102, "expected ')' after binding variable")
	}
	p.expect(token.FatArrow, diag.E1104, "expected '=>' in match arm")

	// An arm body is a block, a bare `return expr`, or a single statement.
	switch {
	case p.check(token.LBrace):
		arm.Body = p.parseBlockStmts()
	case p.check(token.Return):
		retStart := p.advance().Span
		ret := &ast.Return{}
		if !p.check(token.Comma) && !p.check(token.RBrace) && !p.check(token.Semicolon) {
			ret.Value = p.parseExpr()
		}
		p.match(token.Semicolon)
		ret.SetSpan(p.spanFrom(retStart))
		arm.Body = []ast.Stmt{ret}
	default:
		arm.Body = []ast.Stmt{p.parseStmt()}
	}
	p.match(token.Comma)
	arm.Span = p.spanFrom(armStart)
	return arm
}

// --- expressions ---

// parseExpr parses a full expression via precedence climbing, weakest
// binding first: || then && then equality, comparison, additive,
// multiplicative, unary, postfix chain, primary.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseOr()
}

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.check(token.Or) {
		op := p.advance()
		right := p.parseAnd()
		left = p.newBinary(op.Lexeme, left, right)
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseEquality()
	for p.check(token.And) {
		op := p.advance()
		right := p.parseEquality()
		left = p.newBinary(op.Lexeme, left, right)
	}
	return left
}

func (p *Parser) parseEquality() ast.Expr {
	left := p.parseComparison()
	for p.check(token.Eq) || p.check(token.Ne) {
		op := p.advance()
		right := p.parseComparison()
		left = p.newBinary(op.Lexeme, left, right)
	}
	return left
}

func (p *Parser) parseComparison() ast.Expr {
	left := p.parseTerm()
	for p.check(token.Lt) || p.check(token.Gt) || p.check(token.Le) || p.check(token.Ge) {
		op := p.advance()
		right := p.parseTerm()
		left = p.newBinary(op.Lexeme, left, right)
	}
	return left
}

func (p *Parser) parseTerm() ast.Expr {
	left := p.parseFactor()
	for p.check(token.Plus) || p.check(token.Minus) {
		op := p.advance()
		right := p.parseFactor()
		left = p.newBinary(op.Lexeme, left, right)
	}
	return left
}

func (p *Parser) parseFactor() ast.Expr {
	left := p.parseUnary()
	for p.check(token.Star) || p.check(token.Slash) || p.check(token.Percent) {
		op := p.advance()
		right := p.parseUnary()
		left = p.newBinary(op.Lexeme, left, right)
	}
	return left
}

func (p *Parser) newBinary(op string, left, right ast.Expr) ast.Expr {
	bin := &ast.Binary{Op: op, Left: left, Right: right}
	bin.SetSpan(mergeExprSpans(left, right))
	return bin
}

func mergeExprSpans(left, right ast.Expr) location.Span {
	ls, rs := left.Span(), right.Span()
	if ls.IsZero() {
		return rs
	}
	if rs.IsZero() || ls.Source != rs.Source {
		return ls
	}
	return location.Span{Source: ls.Source, Start: ls.Start, End: rs.End}
}

func (p *Parser) parseUnary() ast.Expr {
	if p.check(token.Not) || p.check(token.Minus) {
		op := p.advance()
		operand := p.parseUnary()
		u := &ast.Unary{Op: op.Lexeme, Operand: operand}
		u.SetSpan(p.spanFrom(op.Span))
		return u
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary expression followed by any chain of call,
// member access (`.` or `::`), and index suffixes.
func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	for {
		switch {
		case p.match(token.LParen):
			call := &ast.Call{Callee: expr}
			if !p.check(token.RParen) {
				call.Args = append(call.Args, p.parseExpr())
				for p.match(token.Comma) {
					call.Args = append(call.Args, p.parseExpr())
				}
			}
			p.expect(token.RParen, diag.E1102, "expected ')' after call arguments")
			call.SetSpan(p.spanFrom(expr.Span()))
			expr = call
		case p.match(token.Dot), p.match(token.DoubleColon):
			name := p.expect(token.Ident, diag.E1101, "expected member name")
			member := &ast.Member{Object: expr, Name: name.Lexeme, NameSpan: name.Span}
			member.SetSpan(p.spanFrom(expr.Span()))
			expr = member
		case p.match(token.LBracket):
			idx := &ast.Index{Object: expr, Idx: p.parseExpr()}
			p.expect(token.RBracket, diag.E1102, "expected ']' after index expression")
			idx.SetSpan(p.spanFrom(expr.Span()))
			expr = idx
		default:
			return expr
		}
	}
}

func (p *Parser) parseLambda() ast.Expr {
	start := p.expect(token.Function, diag.E1103, "expected 'fn'").Span
	p.expect(token.LParen, diag.E1102, "expected '(' after 'fn'")
	lam := &ast.Lambda{}
	lam.Params = p.parseParams()
	p.expect(token.RParen, diag.E1102, "expected ')' after lambda parameters")
	if p.match(token.Arrow) {
		lam.ReturnType = p.parseType()
	}
	lam.Body = p.parseBlockStmts()
	lam.SetSpan(p.spanFrom(start))
	return lam
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.peek()
	switch tok.Kind {
	case token.IntLit:
		p.advance()
		val, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			p.errorAt(diag.E1003, tok, "integer literal %q out of range", tok.Lexeme)
		}
		e := &ast.IntLit{Value: val}
		e.SetSpan(tok.Span)
		return e

	case token.FloatLit:
		p.advance()
		val, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			p.errorAt(diag.E1003, tok, "float literal %q out of range", tok.Lexeme)
		}
		e := &ast.FloatLit{Value: val}
		e.SetSpan(tok.Span)
		return e

	case token.StringLit:
		p.advance()
		e := &ast.StringLit{Value: tok.Lexeme}
		e.SetSpan(tok.Span)
		return e

	case token.InterpolatedStringLit:
		p.advance()
		e := &ast.StringLit{Value: tok.Lexeme, Interpolated: true}
		e.SetSpan(tok.Span)
		return e

	case token.True, token.False:
		p.advance()
		e := &ast.BoolLit{Value: tok.Kind == token.True}
		e.SetSpan(tok.Span)
		return e

	case token.None:
		p.advance()
		e := &ast.NoneExpr{}
		e.SetSpan(tok.Span)
		return e

	case token.Some:
		p.advance()
		p.expect(token.LParen, diag.E1102, "expected '(' after 'Some'")
		val := p.parseExpr()
		p.expect(token.RParen, diag.E1102, "expected ')' after Some value")
		e := &ast.SomeExpr{Value: val}
		e.SetSpan(p.spanFrom(tok.Span))
		return e

	case token.This:
		p.advance()
		e := &ast.ThisExpr{}
		e.SetSpan(tok.Span)
		return e

	case token.New:
		p.advance()
		name := p.expect(token.Ident, diag.E1103, "expected class name after 'new'")
		p.expect(token.LParen, diag.E1102, "expected '(' after class name")
		ctor := &ast.Construct{ClassName: name.Lexeme}
		if !p.check(token.RParen) {
			ctor.Args = append(ctor.Args, p.parseExpr())
			for p.match(token.Comma) {
				ctor.Args = append(ctor.Args, p.parseExpr())
			}
		}
		p.expect(token.RParen, diag.E1102, "expected ')' after constructor arguments")
		ctor.SetSpan(p.spanFrom(tok.Span))
		return ctor

	case token.Ident:
		p.advance()
		e := &ast.Ident{Name: tok.Lexeme}
		e.SetSpan(tok.Span)
		return e

	case token.Function:
		return p.parseLambda()

	case token.LParen:
		p.advance()
		e := p.parseExpr()
		p.expect(token.RParen, diag.E1102, "expected ')' after parenthesized expression")
		return e

	case token.LBracket:
		p.advance()
		arr := &ast.ArrayLit{}
		if !p.check(token.RBracket) {
			arr.Elems = append(arr.Elems, p.parseExpr())
			for p.match(token.Comma) {
				arr.Elems = append(arr.Elems, p.parseExpr())
			}
		}
		p.expect(token.RBracket, diag.E1102, "expected ']' after array elements")
		arr.SetSpan(p.spanFrom(tok.Span))
		return arr

	default:
		p.coll.Collect(diag.NewIssue(diag.Error, diag.E1101,
			fmt.Sprintf("unexpected token %s in expression", tok.Kind)).
			WithSpan(tok.Span).
			WithHint("expected a literal, identifier, or '('").
			Build())
		// Insert a synthetic node so the surrounding production can finish,
		// then skip the offending token.
		p.advance()
		e := &ast.IntLit{Value: 0}
		e.SetSpan(tok.Span)
		return e
	}
}
