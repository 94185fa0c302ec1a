package parser

// Embedded SQL grammar: SELECT (with DISTINCT/ALL, projection list,
// FROM+JOIN, WHERE, GROUP BY, HAVING, the UNION/INTERSECT/EXCEPT compound
// tail, and ORDER BY/LIMIT/OFFSET) plus INSERT/UPDATE/DELETE as peer
// productions. Every SQL expression embeds the host grammar through
// ast.SqlExpr, so a WHERE clause, a VALUES list, or a SET assignment all
// call straight back into p.expression(). Grounded on
// original_source/server/src/lang/ast/sql.rs's shape and
// original_source/src/lang/parser.rs's select_core/sql_projection/
// sql_from, extended to cover JOIN/GROUP BY/HAVING/ORDER BY/LIMIT/OFFSET
// per spec.md §9's Open Question (parse fully; the interpreter need not
// consume all of it yet).

import (
	"github.com/lykiadb/lykiadb/internal/ast"
	"github.com/lykiadb/lykiadb/internal/token"
)

func (p *Parser) parseSelect() (ast.ExprId, error) {
	startTok := p.peek()
	query, err := p.sqlSelect()
	if err != nil {
		return 0, err
	}
	return p.arena.AddExpr(&ast.Select{Query: query, Sp: startTok.Span}), nil
}

func (p *Parser) sqlSelect() (*ast.SqlSelect, error) {
	core, err := p.sqlSelectCore()
	if err != nil {
		return nil, err
	}

	var compound []ast.SqlCompoundTerm
	for {
		var op ast.SqlCompoundOperator
		matched := true
		switch {
		case p.checkSQLKeyword("UNION"):
			p.advance()
			if p.matchSQLKeyword("ALL") {
				op = ast.SqlUnionAll
			} else {
				op = ast.SqlUnion
			}
		case p.checkSQLKeyword("INTERSECT"):
			p.advance()
			op = ast.SqlIntersect
		case p.checkSQLKeyword("EXCEPT"):
			p.advance()
			op = ast.SqlExcept
		default:
			matched = false
		}
		if !matched {
			break
		}
		term, err := p.sqlSelectCore()
		if err != nil {
			return nil, err
		}
		compound = append(compound, ast.SqlCompoundTerm{Op: op, Core: term})
	}

	var orderBy []ast.SqlOrderItem
	if p.matchSQLKeyword("ORDER") {
		if _, err := p.expectSQLKeyword("BY"); err != nil {
			return nil, err
		}
		for {
			e, err := p.expression()
			if err != nil {
				return nil, err
			}
			dir := ast.SqlAsc
			if p.matchSQLKeyword("DESC") {
				dir = ast.SqlDesc
			} else {
				p.matchSQLKeyword("ASC")
			}
			orderBy = append(orderBy, ast.SqlOrderItem{Expr: ast.SqlExpr{Expr: e}, Dir: dir})
			if !p.matchSymbol(",") {
				break
			}
		}
	}

	var limit, offset *ast.SqlExpr
	if p.matchSQLKeyword("LIMIT") {
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		limit = &ast.SqlExpr{Expr: e}
	}
	if p.matchSQLKeyword("OFFSET") {
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		offset = &ast.SqlExpr{Expr: e}
	}

	return &ast.SqlSelect{Core: core, Compound: compound, OrderBy: orderBy, Limit: limit, Offset: offset}, nil
}

func (p *Parser) sqlSelectCore() (ast.SqlSelectCore, error) {
	if _, err := p.expectSQLKeyword("SELECT"); err != nil {
		return ast.SqlSelectCore{}, err
	}
	distinct := false
	if p.matchSQLKeyword("DISTINCT") {
		distinct = true
	} else {
		p.matchSQLKeyword("ALL")
	}

	projection, err := p.sqlProjectionList()
	if err != nil {
		return ast.SqlSelectCore{}, err
	}

	var from *ast.SqlTableRef
	var joins []ast.SqlJoinClause
	if p.matchSQLKeyword("FROM") {
		ref, err := p.sqlTableRef()
		if err != nil {
			return ast.SqlSelectCore{}, err
		}
		from = &ref
		for {
			joinType, ok, err := p.sqlJoinType()
			if err != nil {
				return ast.SqlSelectCore{}, err
			}
			if !ok {
				break
			}
			table, err := p.sqlTableRef()
			if err != nil {
				return ast.SqlSelectCore{}, err
			}
			if _, err := p.expectSQLKeyword("ON"); err != nil {
				return ast.SqlSelectCore{}, err
			}
			on, err := p.expression()
			if err != nil {
				return ast.SqlSelectCore{}, err
			}
			joins = append(joins, ast.SqlJoinClause{Type: joinType, Table: table, On: ast.SqlExpr{Expr: on}})
		}
	}

	var where *ast.SqlExpr
	if p.matchSQLKeyword("WHERE") {
		e, err := p.expression()
		if err != nil {
			return ast.SqlSelectCore{}, err
		}
		where = &ast.SqlExpr{Expr: e}
	}

	var groupBy []ast.SqlExpr
	if p.matchSQLKeyword("GROUP") {
		if _, err := p.expectSQLKeyword("BY"); err != nil {
			return ast.SqlSelectCore{}, err
		}
		for {
			e, err := p.expression()
			if err != nil {
				return ast.SqlSelectCore{}, err
			}
			groupBy = append(groupBy, ast.SqlExpr{Expr: e})
			if !p.matchSymbol(",") {
				break
			}
		}
	}

	var having *ast.SqlExpr
	if p.matchSQLKeyword("HAVING") {
		e, err := p.expression()
		if err != nil {
			return ast.SqlSelectCore{}, err
		}
		having = &ast.SqlExpr{Expr: e}
	}

	return ast.SqlSelectCore{
		Distinct:   distinct,
		Projection: projection,
		From:       from,
		Joins:      joins,
		Where:      where,
		GroupBy:    groupBy,
		Having:     having,
	}, nil
}

func (p *Parser) sqlJoinType() (ast.SqlJoinType, bool, error) {
	switch {
	case p.checkSQLKeyword("JOIN"):
		p.advance()
		return ast.SqlJoinInner, true, nil
	case p.checkSQLKeyword("INNER"):
		p.advance()
		if _, err := p.expectSQLKeyword("JOIN"); err != nil {
			return 0, false, err
		}
		return ast.SqlJoinInner, true, nil
	case p.checkSQLKeyword("LEFT"):
		p.advance()
		p.matchSQLKeyword("OUTER")
		if _, err := p.expectSQLKeyword("JOIN"); err != nil {
			return 0, false, err
		}
		return ast.SqlJoinLeft, true, nil
	case p.checkSQLKeyword("RIGHT"):
		p.advance()
		p.matchSQLKeyword("OUTER")
		if _, err := p.expectSQLKeyword("JOIN"); err != nil {
			return 0, false, err
		}
		return ast.SqlJoinRight, true, nil
	default:
		return 0, false, nil
	}
}

func (p *Parser) sqlProjectionList() ([]ast.SqlProjection, error) {
	var out []ast.SqlProjection
	for {
		proj, err := p.sqlProjection()
		if err != nil {
			return nil, err
		}
		out = append(out, proj)
		if !p.matchSymbol(",") {
			break
		}
	}
	return out, nil
}

func (p *Parser) sqlProjection() (ast.SqlProjection, error) {
	if p.checkSymbol("*") {
		p.advance()
		return ast.SqlProjection{Star: true}, nil
	}
	if p.peek().Kind == token.KindIdentifier && !p.peek().Dollar &&
		p.peekN(1).Kind == token.KindSymbol && p.peekN(1).Lexeme == "." &&
		p.peekN(2).Kind == token.KindSymbol && p.peekN(2).Lexeme == "*" {
		nameTok := p.advance()
		p.advance() // '.'
		p.advance() // '*'
		return ast.SqlProjection{TableStar: nameTok.Lexeme}, nil
	}
	e, err := p.expression()
	if err != nil {
		return ast.SqlProjection{}, err
	}
	alias := ""
	if p.matchSQLKeyword("AS") {
		aliasTok, err := p.expectIdentifier(false)
		if err != nil {
			return ast.SqlProjection{}, err
		}
		alias = aliasTok.Lexeme
	}
	return ast.SqlProjection{Expr: ast.SqlExpr{Expr: e}, Alias: alias}, nil
}

// sqlTableRef parses a named, optionally schema-qualified and aliased
// table, or a parenthesized sub-select.
func (p *Parser) sqlTableRef() (ast.SqlTableRef, error) {
	if p.checkSymbol("(") {
		p.advance()
		sub, err := p.sqlSelect()
		if err != nil {
			return ast.SqlTableRef{}, err
		}
		if _, err := p.expectSymbol(")"); err != nil {
			return ast.SqlTableRef{}, err
		}
		alias, err := p.sqlOptionalAlias()
		if err != nil {
			return ast.SqlTableRef{}, err
		}
		return ast.SqlTableRef{Subquery: sub, Alias: alias}, nil
	}

	first, err := p.expectIdentifier(false)
	if err != nil {
		return ast.SqlTableRef{}, err
	}
	namespace, table := "", first.Lexeme
	if p.checkSymbol(".") {
		p.advance()
		second, err := p.expectIdentifier(false)
		if err != nil {
			return ast.SqlTableRef{}, err
		}
		namespace, table = first.Lexeme, second.Lexeme
	}
	alias, err := p.sqlOptionalAlias()
	if err != nil {
		return ast.SqlTableRef{}, err
	}
	return ast.SqlTableRef{Namespace: namespace, Table: table, Alias: alias}, nil
}

// sqlOptionalAlias accepts `AS alias` or a bare trailing identifier as an
// alias; SQL keywords (JOIN, WHERE, ...) never collide with this since
// they lex as KindSQLKeyword, not KindIdentifier.
func (p *Parser) sqlOptionalAlias() (string, error) {
	if p.matchSQLKeyword("AS") {
		aliasTok, err := p.expectIdentifier(false)
		if err != nil {
			return "", err
		}
		return aliasTok.Lexeme, nil
	}
	if p.peek().Kind == token.KindIdentifier && !p.peek().Dollar {
		return p.advance().Lexeme, nil
	}
	return "", nil
}

func (p *Parser) parseInsert() (ast.ExprId, error) {
	startTok := p.peek()
	if _, err := p.expectSQLKeyword("INSERT"); err != nil {
		return 0, err
	}
	if _, err := p.expectSQLKeyword("INTO"); err != nil {
		return 0, err
	}
	tableTok, err := p.expectIdentifier(false)
	if err != nil {
		return 0, err
	}

	var columns []string
	if p.checkSymbol("(") {
		p.advance()
		col, err := p.expectIdentifier(false)
		if err != nil {
			return 0, err
		}
		columns = append(columns, col.Lexeme)
		for p.matchSymbol(",") {
			col, err := p.expectIdentifier(false)
			if err != nil {
				return 0, err
			}
			columns = append(columns, col.Lexeme)
		}
		if _, err := p.expectSymbol(")"); err != nil {
			return 0, err
		}
	}

	if _, err := p.expectSQLKeyword("VALUES"); err != nil {
		return 0, err
	}
	if _, err := p.expectSymbol("("); err != nil {
		return 0, err
	}
	var values []ast.SqlExpr
	e, err := p.expression()
	if err != nil {
		return 0, err
	}
	values = append(values, ast.SqlExpr{Expr: e})
	for p.matchSymbol(",") {
		e, err := p.expression()
		if err != nil {
			return 0, err
		}
		values = append(values, ast.SqlExpr{Expr: e})
	}
	closeTok, err := p.expectSymbol(")")
	if err != nil {
		return 0, err
	}

	return p.arena.AddExpr(&ast.Insert{
		Query: &ast.SqlInsert{Table: tableTok.Lexeme, Columns: columns, Values: values},
		Sp:    startTok.Span.Merge(closeTok.Span),
	}), nil
}

func (p *Parser) parseUpdate() (ast.ExprId, error) {
	startTok := p.peek()
	if _, err := p.expectSQLKeyword("UPDATE"); err != nil {
		return 0, err
	}
	tableTok, err := p.expectIdentifier(false)
	if err != nil {
		return 0, err
	}
	if _, err := p.expectSQLKeyword("SET"); err != nil {
		return 0, err
	}

	var sets []ast.SqlSetClause
	lastSp := tableTok.Span
	for {
		col, err := p.expectIdentifier(false)
		if err != nil {
			return 0, err
		}
		if _, err := p.expectSymbol("="); err != nil {
			return 0, err
		}
		val, err := p.expression()
		if err != nil {
			return 0, err
		}
		lastSp = p.arena.Expr(val).Span()
		sets = append(sets, ast.SqlSetClause{Column: col.Lexeme, Value: ast.SqlExpr{Expr: val}})
		if !p.matchSymbol(",") {
			break
		}
	}

	var where *ast.SqlExpr
	if p.matchSQLKeyword("WHERE") {
		e, err := p.expression()
		if err != nil {
			return 0, err
		}
		lastSp = p.arena.Expr(e).Span()
		where = &ast.SqlExpr{Expr: e}
	}

	return p.arena.AddExpr(&ast.Update{
		Query: &ast.SqlUpdate{Table: tableTok.Lexeme, Sets: sets, Where: where},
		Sp:    startTok.Span.Merge(lastSp),
	}), nil
}

func (p *Parser) parseDelete() (ast.ExprId, error) {
	startTok := p.peek()
	if _, err := p.expectSQLKeyword("DELETE"); err != nil {
		return 0, err
	}
	if _, err := p.expectSQLKeyword("FROM"); err != nil {
		return 0, err
	}
	tableTok, err := p.expectIdentifier(false)
	if err != nil {
		return 0, err
	}

	lastSp := tableTok.Span
	var where *ast.SqlExpr
	if p.matchSQLKeyword("WHERE") {
		e, err := p.expression()
		if err != nil {
			return 0, err
		}
		lastSp = p.arena.Expr(e).Span()
		where = &ast.SqlExpr{Expr: e}
	}

	return p.arena.AddExpr(&ast.Delete{
		Query: &ast.SqlDelete{Table: tableTok.Lexeme, Where: where},
		Sp:    startTok.Span.Merge(lastSp),
	}), nil
}
