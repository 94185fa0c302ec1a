// Package parser turns a token.Token sequence into an arena-resident AST.
//
// What: recursive-descent, one-token lookahead, building internal/ast
// nodes through a single shared *ast.Arena.
// How: one method per grammar production, mirroring the teacher repo's
// internal/engine/parser.go precedence-chain shape (equality -> comparison
// -> term -> factor -> unary -> primary), extended here with a `select`
// level between unary and call for embedded SQL, per spec.md §4.2.
// Why: grounded line-for-line on original_source/src/lang/parser.rs's
// method names and precedence order, which the Go version reproduces
// exactly rather than reinventing a different grammar shape.
package parser

import (
	"github.com/lykiadb/lykiadb/internal/ast"
	"github.com/lykiadb/lykiadb/internal/errs"
	"github.com/lykiadb/lykiadb/internal/token"
)

// Parser walks toks once, left to right, building nodes into arena.
type Parser struct {
	toks  []token.Token
	pos   int
	arena *ast.Arena
}

// Parse builds a full program from toks (normally internal/lexer.Scan's
// output, EOF-terminated). Returns the arena the program's nodes live in
// and the root StmtId, or the first parse error encountered.
func Parse(toks []token.Token) (*ast.Arena, ast.StmtId, error) {
	p := &Parser{toks: toks, arena: ast.NewArena()}
	root, err := p.program()
	if err != nil {
		return nil, 0, err
	}
	return p.arena, root, nil
}

func (p *Parser) program() (ast.StmtId, error) {
	sp := p.peek().Span
	var stmts []ast.StmtId
	for !p.isAtEnd() {
		s, err := p.declaration()
		if err != nil {
			return 0, err
		}
		stmts = append(stmts, s)
		sp = sp.Merge(p.arena.Stmt(s).Span())
	}
	return p.arena.AddStmt(&ast.Program{Stmts: stmts, Sp: sp}), nil
}

// --- token-stream plumbing ---

func (p *Parser) peek() token.Token { return p.toks[p.pos] }

func (p *Parser) peekN(n int) token.Token {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[idx]
}

func (p *Parser) isAtEnd() bool { return p.peek().Kind == token.KindEOF }

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if !p.isAtEnd() {
		p.pos++
	}
	return tok
}

func (p *Parser) checkSymbol(lexeme string) bool {
	t := p.peek()
	return t.Kind == token.KindSymbol && t.Lexeme == lexeme
}

func (p *Parser) checkSymbolIn(lexemes ...string) bool {
	for _, l := range lexemes {
		if p.checkSymbol(l) {
			return true
		}
	}
	return false
}

func (p *Parser) checkKeyword(lexeme string) bool {
	t := p.peek()
	return t.Kind == token.KindKeyword && t.Lexeme == lexeme
}

func (p *Parser) checkSQLKeyword(lexeme string) bool {
	t := p.peek()
	return t.Kind == token.KindSQLKeyword && t.Lexeme == lexeme
}

func (p *Parser) matchSymbol(lexemes ...string) bool {
	if p.checkSymbolIn(lexemes...) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) matchKeyword(lexemes ...string) bool {
	for _, l := range lexemes {
		if p.checkKeyword(l) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) matchSQLKeyword(lexemes ...string) bool {
	for _, l := range lexemes {
		if p.checkSQLKeyword(l) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) expectSymbol(lexeme string) (token.Token, error) {
	if p.checkSymbol(lexeme) {
		return p.advance(), nil
	}
	return token.Token{}, errs.NewMissingToken(p.peek(), token.KindSymbol)
}

func (p *Parser) expectSQLKeyword(lexeme string) (token.Token, error) {
	if p.checkSQLKeyword(lexeme) {
		return p.advance(), nil
	}
	return token.Token{}, errs.NewMissingToken(p.peek(), token.KindSQLKeyword)
}

func (p *Parser) expectIdentifier(dollar bool) (token.Token, error) {
	t := p.peek()
	if t.Kind == token.KindIdentifier && t.Dollar == dollar {
		return p.advance(), nil
	}
	return token.Token{}, errs.NewMissingToken(t, token.KindIdentifier)
}

// --- statements ---

func (p *Parser) declaration() (ast.StmtId, error) {
	if p.checkKeyword("var") {
		varTok := p.advance()
		return p.varDeclaration(varTok)
	}
	return p.statement()
}

func (p *Parser) varDeclaration(varTok token.Token) (ast.StmtId, error) {
	name, err := p.expectIdentifier(true)
	if err != nil {
		return 0, err
	}
	var value ast.ExprId
	if p.matchSymbol("=") {
		value, err = p.expression()
		if err != nil {
			return 0, err
		}
	} else {
		value = p.arena.AddExpr(&ast.Literal{
			Value: ast.LiteralValue{Kind: ast.LitUndefined},
			Raw:   "undefined",
			Sp:    name.Span,
		})
	}
	semi, err := p.expectSymbol(";")
	if err != nil {
		return 0, err
	}
	return p.arena.AddStmt(&ast.Declaration{
		Target: name.Name(),
		Value:  value,
		Sp:     varTok.Span.Merge(semi.Span),
	}), nil
}

func (p *Parser) statement() (ast.StmtId, error) {
	switch {
	case p.checkKeyword("if"):
		return p.ifStatement()
	case p.checkKeyword("while"):
		return p.whileStatement()
	case p.checkKeyword("for"):
		return p.forStatement()
	case p.checkKeyword("loop"):
		return p.loopStatement()
	case p.checkKeyword("break"):
		return p.breakStatement()
	case p.checkKeyword("continue"):
		return p.continueStatement()
	case p.checkKeyword("return"):
		return p.returnStatement()
	case p.checkSymbol("{"):
		return p.blockStatement()
	default:
		return p.expressionStatement()
	}
}

func (p *Parser) ifStatement() (ast.StmtId, error) {
	ifTok := p.advance()
	if _, err := p.expectSymbol("("); err != nil {
		return 0, err
	}
	cond, err := p.expression()
	if err != nil {
		return 0, err
	}
	if _, err := p.expectSymbol(")"); err != nil {
		return 0, err
	}
	thenStmt, err := p.statement()
	if err != nil {
		return 0, err
	}
	sp := ifTok.Span.Merge(p.arena.Stmt(thenStmt).Span())
	var elseId *ast.StmtId
	if p.matchKeyword("else") {
		e, err := p.statement()
		if err != nil {
			return 0, err
		}
		elseId = &e
		sp = sp.Merge(p.arena.Stmt(e).Span())
	}
	return p.arena.AddStmt(&ast.If{Cond: cond, Then: thenStmt, Else: elseId, Sp: sp}), nil
}

func (p *Parser) whileStatement() (ast.StmtId, error) {
	whileTok := p.advance()
	if _, err := p.expectSymbol("("); err != nil {
		return 0, err
	}
	cond, err := p.expression()
	if err != nil {
		return 0, err
	}
	if _, err := p.expectSymbol(")"); err != nil {
		return 0, err
	}
	body, err := p.statement()
	if err != nil {
		return 0, err
	}
	sp := whileTok.Span.Merge(p.arena.Stmt(body).Span())
	return p.arena.AddStmt(&ast.Loop{Cond: &cond, Body: body, Sp: sp}), nil
}

func (p *Parser) loopStatement() (ast.StmtId, error) {
	loopTok := p.advance()
	body, err := p.statement()
	if err != nil {
		return 0, err
	}
	sp := loopTok.Span.Merge(p.arena.Stmt(body).Span())
	return p.arena.AddStmt(&ast.Loop{Body: body, Sp: sp}), nil
}

// forStatement desugars `for (init; cond; post) body` into a Block
// wrapping init and a Loop{cond, body, post}, per spec.md §4.2 — there is
// no dedicated For AST node.
func (p *Parser) forStatement() (ast.StmtId, error) {
	forTok := p.advance()
	if _, err := p.expectSymbol("("); err != nil {
		return 0, err
	}

	var init *ast.StmtId
	switch {
	case p.matchSymbol(";"):
		// no initializer; the ';' is already consumed
	case p.checkKeyword("var"):
		varTok := p.advance()
		s, err := p.varDeclaration(varTok)
		if err != nil {
			return 0, err
		}
		init = &s
	default:
		s, err := p.expressionStatement()
		if err != nil {
			return 0, err
		}
		init = &s
	}

	var cond *ast.ExprId
	if !p.checkSymbol(";") {
		c, err := p.expression()
		if err != nil {
			return 0, err
		}
		cond = &c
	}
	if _, err := p.expectSymbol(";"); err != nil {
		return 0, err
	}

	var post *ast.ExprId
	if !p.checkSymbol(")") {
		c, err := p.expression()
		if err != nil {
			return 0, err
		}
		post = &c
	}
	if _, err := p.expectSymbol(")"); err != nil {
		return 0, err
	}

	body, err := p.statement()
	if err != nil {
		return 0, err
	}

	var postStmt *ast.StmtId
	if post != nil {
		ps := p.arena.AddStmt(&ast.Expression{Expr: *post, Sp: p.arena.Expr(*post).Span()})
		postStmt = &ps
	}

	loopSp := forTok.Span.Merge(p.arena.Stmt(body).Span())
	loopId := p.arena.AddStmt(&ast.Loop{Cond: cond, Body: body, Post: postStmt, Sp: loopSp})

	if init == nil {
		return loopId, nil
	}
	blockSp := p.arena.Stmt(*init).Span().Merge(loopSp)
	return p.arena.AddStmt(&ast.Block{Stmts: []ast.StmtId{*init, loopId}, Sp: blockSp}), nil
}

func (p *Parser) breakStatement() (ast.StmtId, error) {
	tok := p.advance()
	semi, err := p.expectSymbol(";")
	if err != nil {
		return 0, err
	}
	return p.arena.AddStmt(&ast.Break{Sp: tok.Span.Merge(semi.Span)}), nil
}

func (p *Parser) continueStatement() (ast.StmtId, error) {
	tok := p.advance()
	semi, err := p.expectSymbol(";")
	if err != nil {
		return 0, err
	}
	return p.arena.AddStmt(&ast.Continue{Sp: tok.Span.Merge(semi.Span)}), nil
}

func (p *Parser) returnStatement() (ast.StmtId, error) {
	tok := p.advance()
	var value *ast.ExprId
	if !p.checkSymbol(";") {
		v, err := p.expression()
		if err != nil {
			return 0, err
		}
		value = &v
	}
	semi, err := p.expectSymbol(";")
	if err != nil {
		return 0, err
	}
	return p.arena.AddStmt(&ast.Return{Value: value, Sp: tok.Span.Merge(semi.Span)}), nil
}

func (p *Parser) blockStatement() (ast.StmtId, error) {
	stmts, sp, err := p.block()
	if err != nil {
		return 0, err
	}
	return p.arena.AddStmt(&ast.Block{Stmts: stmts, Sp: sp}), nil
}

// block parses `{ declaration* }`, used by block statements and function
// bodies alike.
func (p *Parser) block() ([]ast.StmtId, token.Span, error) {
	open, err := p.expectSymbol("{")
	if err != nil {
		return nil, token.Span{}, err
	}
	var stmts []ast.StmtId
	for !p.checkSymbol("}") && !p.isAtEnd() {
		s, err := p.declaration()
		if err != nil {
			return nil, token.Span{}, err
		}
		stmts = append(stmts, s)
	}
	close, err := p.expectSymbol("}")
	if err != nil {
		return nil, token.Span{}, err
	}
	return stmts, open.Span.Merge(close.Span), nil
}

func (p *Parser) expressionStatement() (ast.StmtId, error) {
	expr, err := p.expression()
	if err != nil {
		return 0, err
	}
	semi, err := p.expectSymbol(";")
	if err != nil {
		return 0, err
	}
	sp := p.arena.Expr(expr).Span().Merge(semi.Span)
	return p.arena.AddStmt(&ast.Expression{Expr: expr, Sp: sp}), nil
}

// --- expressions ---

func (p *Parser) expression() (ast.ExprId, error) {
	return p.assignment()
}

// assignment is right-associative; the left side must be a bare Variable
// or parsing fails with InvalidAssignmentTarget, per spec.md §4.2.
func (p *Parser) assignment() (ast.ExprId, error) {
	startTok := p.peek()
	expr, err := p.or()
	if err != nil {
		return 0, err
	}
	if p.checkSymbol("=") {
		p.advance()
		value, err := p.assignment()
		if err != nil {
			return 0, err
		}
		v, ok := p.arena.Expr(expr).(*ast.Variable)
		if !ok {
			return 0, errs.NewInvalidAssignmentTarget(startTok)
		}
		sp := v.Sp.Merge(p.arena.Expr(value).Span())
		return p.arena.AddExpr(&ast.Assignment{Target: v.Name, Value: value, Sp: sp}), nil
	}
	return expr, nil
}

func (p *Parser) or() (ast.ExprId, error) {
	expr, err := p.and()
	if err != nil {
		return 0, err
	}
	for p.checkKeyword("or") {
		opTok := p.advance()
		right, err := p.and()
		if err != nil {
			return 0, err
		}
		sp := p.arena.Expr(expr).Span().Merge(p.arena.Expr(right).Span())
		expr = p.arena.AddExpr(&ast.Logical{Left: expr, Op: opTok, Right: right, Sp: sp})
	}
	return expr, nil
}

func (p *Parser) and() (ast.ExprId, error) {
	expr, err := p.equality()
	if err != nil {
		return 0, err
	}
	for p.checkKeyword("and") {
		opTok := p.advance()
		right, err := p.equality()
		if err != nil {
			return 0, err
		}
		sp := p.arena.Expr(expr).Span().Merge(p.arena.Expr(right).Span())
		expr = p.arena.AddExpr(&ast.Logical{Left: expr, Op: opTok, Right: right, Sp: sp})
	}
	return expr, nil
}

// binaryLevel implements one level of the precedence chain: parse next,
// then fold in zero or more (symbol next) pairs left-associatively.
func (p *Parser) binaryLevel(symbols []string, next func() (ast.ExprId, error)) (ast.ExprId, error) {
	expr, err := next()
	if err != nil {
		return 0, err
	}
	for p.checkSymbolIn(symbols...) {
		opTok := p.advance()
		right, err := next()
		if err != nil {
			return 0, err
		}
		sp := p.arena.Expr(expr).Span().Merge(p.arena.Expr(right).Span())
		expr = p.arena.AddExpr(&ast.Binary{Left: expr, Op: opTok, Right: right, Sp: sp})
	}
	return expr, nil
}

func (p *Parser) equality() (ast.ExprId, error) {
	return p.binaryLevel([]string{"==", "!="}, p.comparison)
}

func (p *Parser) comparison() (ast.ExprId, error) {
	return p.binaryLevel([]string{"<", "<=", ">", ">="}, p.term)
}

func (p *Parser) term() (ast.ExprId, error) {
	return p.binaryLevel([]string{"+", "-"}, p.factor)
}

func (p *Parser) factor() (ast.ExprId, error) {
	return p.binaryLevel([]string{"*", "/"}, p.unary)
}

func (p *Parser) unary() (ast.ExprId, error) {
	if p.checkSymbolIn("-", "!") {
		opTok := p.advance()
		operand, err := p.unary()
		if err != nil {
			return 0, err
		}
		sp := opTok.Span.Merge(p.arena.Expr(operand).Span())
		return p.arena.AddExpr(&ast.Unary{Op: opTok, Operand: operand, Sp: sp}), nil
	}
	return p.selectExpr()
}

// selectExpr is the level between unary and call where embedded SQL
// enters the expression grammar, per spec.md §4.2.
func (p *Parser) selectExpr() (ast.ExprId, error) {
	switch {
	case p.checkSQLKeyword("SELECT"):
		return p.parseSelect()
	case p.checkSQLKeyword("INSERT"):
		return p.parseInsert()
	case p.checkSQLKeyword("UPDATE"):
		return p.parseUpdate()
	case p.checkSQLKeyword("DELETE"):
		return p.parseDelete()
	default:
		return p.call()
	}
}

// call handles left-associative call chains (`f()()(x)`) and `.` member
// access (`io.print`), both folded onto the same primary expression.
func (p *Parser) call() (ast.ExprId, error) {
	expr, err := p.primary()
	if err != nil {
		return 0, err
	}
	for {
		switch {
		case p.checkSymbol("("):
			expr, err = p.finishCall(expr)
			if err != nil {
				return 0, err
			}
		case p.checkSymbol("."):
			p.advance()
			name, err := p.expectIdentifier(false)
			if err != nil {
				return 0, err
			}
			sp := p.arena.Expr(expr).Span().Merge(name.Span)
			expr = p.arena.AddExpr(&ast.Get{Object: expr, Name: name.Lexeme, Sp: sp})
		default:
			return expr, nil
		}
	}
}

func (p *Parser) finishCall(callee ast.ExprId) (ast.ExprId, error) {
	if _, err := p.expectSymbol("("); err != nil {
		return 0, err
	}
	var args []ast.ExprId
	if !p.checkSymbol(")") {
		arg, err := p.expression()
		if err != nil {
			return 0, err
		}
		args = append(args, arg)
		for p.matchSymbol(",") {
			arg, err := p.expression()
			if err != nil {
				return 0, err
			}
			args = append(args, arg)
		}
	}
	closeTok, err := p.expectSymbol(")")
	if err != nil {
		return 0, err
	}
	sp := p.arena.Expr(callee).Span().Merge(closeTok.Span)
	return p.arena.AddExpr(&ast.Call{Callee: callee, Args: args, Sp: sp}), nil
}

func (p *Parser) primary() (ast.ExprId, error) {
	tok := p.peek()
	switch tok.Kind {
	case token.KindTrue:
		p.advance()
		return p.arena.AddExpr(&ast.Literal{Value: ast.LiteralValue{Kind: ast.LitBool, Bool: true}, Raw: tok.Lexeme, Sp: tok.Span}), nil
	case token.KindFalse:
		p.advance()
		return p.arena.AddExpr(&ast.Literal{Value: ast.LiteralValue{Kind: ast.LitBool, Bool: false}, Raw: tok.Lexeme, Sp: tok.Span}), nil
	case token.KindNull:
		p.advance()
		return p.arena.AddExpr(&ast.Literal{Value: ast.LiteralValue{Kind: ast.LitNull}, Raw: tok.Lexeme, Sp: tok.Span}), nil
	case token.KindString:
		p.advance()
		return p.arena.AddExpr(&ast.Literal{Value: ast.LiteralValue{Kind: ast.LitStr, Str: tok.Literal.Str}, Raw: tok.Lexeme, Sp: tok.Span}), nil
	case token.KindNumber:
		p.advance()
		return p.arena.AddExpr(&ast.Literal{Value: ast.LiteralValue{Kind: ast.LitNum, Num: tok.Literal.Num}, Raw: tok.Lexeme, Sp: tok.Span}), nil
	case token.KindIdentifier:
		p.advance()
		return p.arena.AddExpr(&ast.Variable{Name: tok.Name(), Sp: tok.Span}), nil
	case token.KindKeyword:
		if tok.Lexeme == "fun" {
			return p.functionLiteral()
		}
		return 0, errs.NewUnexpectedToken(tok)
	case token.KindSymbol:
		if tok.Lexeme == "(" {
			p.advance()
			inner, err := p.expression()
			if err != nil {
				return 0, err
			}
			closeTok, err := p.expectSymbol(")")
			if err != nil {
				return 0, err
			}
			return p.arena.AddExpr(&ast.Grouping{Inner: inner, Sp: tok.Span.Merge(closeTok.Span)}), nil
		}
		return 0, errs.NewUnexpectedToken(tok)
	default:
		return 0, errs.NewUnexpectedToken(tok)
	}
}

// functionLiteral parses `fun [name] ( params ) { body }`. A name here is
// never auto-bound in the surrounding scope by the parser — per spec.md
// §4.2 and §8 scenario 5, that binding only happens when this expression
// is evaluated as a Declaration's initializer, handled in
// internal/interpreter, not here: there is no distinct Function statement
// in this grammar (confirmed against
// original_source/server/src/lang/ast/stmt.rs).
func (p *Parser) functionLiteral() (ast.ExprId, error) {
	funTok := p.advance()
	var name *string
	if p.peek().Kind == token.KindIdentifier && !p.peek().Dollar {
		n := p.advance()
		lexeme := n.Lexeme
		name = &lexeme
	}
	if _, err := p.expectSymbol("("); err != nil {
		return 0, err
	}
	var params []token.Token
	if !p.checkSymbol(")") {
		pTok, err := p.expectIdentifier(true)
		if err != nil {
			return 0, err
		}
		params = append(params, pTok)
		for p.matchSymbol(",") {
			pTok, err := p.expectIdentifier(true)
			if err != nil {
				return 0, err
			}
			params = append(params, pTok)
		}
	}
	if _, err := p.expectSymbol(")"); err != nil {
		return 0, err
	}
	body, bodySp, err := p.block()
	if err != nil {
		return 0, err
	}
	return p.arena.AddExpr(&ast.Function{Name: name, Params: params, Body: body, Sp: funTok.Span.Merge(bodySp)}), nil
}
